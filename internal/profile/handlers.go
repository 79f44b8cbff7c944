package profile

import (
	"errors"
	"net/http"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type UpdateRequest struct {
	Username  string `json:"username"`
	Bio       string `json:"bio"`
	AvatarURL string `json:"avatar_url"`
}

// Handler serves public profile pages and profile edits.
type Handler struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewHandler(pool *pgxpool.Pool, logger *zap.Logger) *Handler {
	return &Handler{pool: pool, logger: logger}
}

// GetPublicProfile returns the public part of a user's profile.
// Email and earnings stay private to the owner.
func (h *Handler) GetPublicProfile(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing user id"})
	}

	var username, bio string
	var avatarURL *string
	err := h.pool.QueryRow(c.Request().Context(), `
		SELECT username, bio, avatar_url FROM profiles WHERE id = $1
	`, id).Scan(&username, &bio, &avatarURL)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "profile not found"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"id":         id,
		"username":   username,
		"bio":        bio,
		"avatar_url": avatarURL,
	})
}

// UpdateProfile patches the caller's profile. Empty fields keep their
// current value.
func (h *Handler) UpdateProfile(c echo.Context) error {
	userID, ok := c.Get("user_id").(string)
	if !ok || userID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	req := new(UpdateRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	var username, bio string
	var avatarURL *string
	err := h.pool.QueryRow(c.Request().Context(), `
		UPDATE profiles SET
			username   = COALESCE(NULLIF($2, ''), username),
			bio        = COALESCE(NULLIF($3, ''), bio),
			avatar_url = COALESCE(NULLIF($4, ''), avatar_url),
			updated_at = now()
		WHERE id = $1
		RETURNING username, bio, avatar_url
	`, userID, req.Username, req.Bio, req.AvatarURL).Scan(&username, &bio, &avatarURL)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return c.JSON(http.StatusConflict, echo.Map{"error": "username already taken"})
		}
		h.logger.Error("profile update failed", zap.String("user_id", userID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update profile"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"id":         userID,
		"username":   username,
		"bio":        bio,
		"avatar_url": avatarURL,
	})
}
