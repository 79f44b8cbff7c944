package marketplace

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Umary15/student-skill-share/internal/cache"
	"github.com/Umary15/student-skill-share/internal/lifecycle"
	"github.com/Umary15/student-skill-share/internal/model"
)

// CreateRating - buyer rates a delivered order. The lifecycle guard
// runs here regardless of any client-side gating.
func (h *Handler) CreateRating(c echo.Context) error {
	uid := userID(c)
	if uid == "" {
		return h.fail(c, lifecycle.ErrUnauthenticated)
	}

	orderID := c.Param("id")
	if orderID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing order id"})
	}

	var req CreateRatingRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if len(req.Comment) > 1000 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "comment too long (max 1000 characters)"})
	}

	ctx := c.Request().Context()

	order, err := h.store.GetOrder(ctx, orderID)
	if err != nil {
		return h.fail(c, err)
	}

	if err := lifecycle.ValidateRating(order, uid, req.Score); err != nil {
		return h.fail(c, err)
	}

	rating := &model.Rating{
		ID:         uuid.New().String(),
		OrderID:    order.ID,
		GigID:      order.GigID,
		ReviewerID: uid,
		Score:      req.Score,
		Comment:    req.Comment,
	}

	gig, err := h.store.CreateRating(ctx, rating)
	if err != nil {
		return h.fail(c, err)
	}

	h.cache.Invalidate(lifecycle.RatingEffects(order, rating).Invalidate...)
	return c.JSON(http.StatusCreated, echo.Map{"rating": rating, "gig": gig})
}

// ListRatings - public rating feed for a gig.
func (h *Handler) ListRatings(c echo.Context) error {
	gigID := c.Param("id")
	if gigID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing gig id"})
	}

	key := cache.KeyRatings(gigID)
	if v, ok := h.cache.Get(key); ok {
		return c.JSON(http.StatusOK, echo.Map{"ratings": v})
	}

	ratings, err := h.store.ListRatings(c.Request().Context(), gigID)
	if err != nil {
		return h.fail(c, err)
	}

	h.cache.Set(key, ratings)
	return c.JSON(http.StatusOK, echo.Map{"ratings": ratings})
}
