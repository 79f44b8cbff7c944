// Package marketplace exposes the gig, order and rating HTTP API and
// its Postgres store. Business rules live in internal/lifecycle; this
// package binds requests, consults the rules, talks to storage and
// invalidates the query cache.
package marketplace

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/Umary15/student-skill-share/internal/cache"
	"github.com/Umary15/student-skill-share/internal/lifecycle"
)

// Handler holds the marketplace route implementations.
type Handler struct {
	store  Store
	cache  *cache.Cache
	logger *zap.Logger

	paymentSecret string
}

// NewHandler creates the marketplace handler. paymentSecret guards the
// payment collaborator's webhook.
func NewHandler(store Store, c *cache.Cache, logger *zap.Logger, paymentSecret string) *Handler {
	return &Handler{
		store:         store,
		cache:         c,
		logger:        logger,
		paymentSecret: paymentSecret,
	}
}

// userID pulls the authenticated account id set by the JWT middleware.
func userID(c echo.Context) string {
	id, _ := c.Get("user_id").(string)
	return id
}

// fail maps domain errors onto HTTP responses. Guard rejections leave
// entity state untouched, so every branch is safe to surface as-is.
func (h *Handler) fail(c echo.Context, err error) error {
	switch {
	case errors.Is(err, lifecycle.ErrUnauthenticated):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	case errors.Is(err, lifecycle.ErrForbiddenSelfOrder):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "you cannot order your own gig"})
	case errors.Is(err, lifecycle.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not allowed"})
	case errors.Is(err, lifecycle.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	case errors.Is(err, lifecycle.ErrGigInactive):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "gig is not active"})
	case errors.Is(err, lifecycle.ErrInvalidScore):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "rating must be between 1 and 5"})
	case errors.Is(err, lifecycle.ErrInvalidTransition):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status transition"})
	case errors.Is(err, lifecycle.ErrDuplicateRating):
		return c.JSON(http.StatusConflict, echo.Map{"error": "rating already exists for this order"})
	case errors.Is(err, lifecycle.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "order changed concurrently, retry"})
	default:
		h.logger.Error("marketplace request failed", zap.Error(err), zap.String("path", c.Path()))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}
