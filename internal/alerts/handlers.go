package alerts

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/Umary15/student-skill-share/internal/lifecycle"
	"github.com/Umary15/student-skill-share/internal/model"
)

// Handler serves the notification inbox.
type Handler struct {
	store  NotificationStore
	logger *zap.Logger
}

func NewHandler(store NotificationStore, logger *zap.Logger) *Handler {
	return &Handler{store: store, logger: logger}
}

// ListNotifications returns the current user's notifications, newest first.
func (h *Handler) ListNotifications(c echo.Context) error {
	userID, ok := c.Get("user_id").(string)
	if !ok || userID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	items, err := h.store.ListNotifications(c.Request().Context(), userID)
	if err != nil {
		h.logger.Error("notification list failed", zap.String("user_id", userID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load notifications"})
	}
	if items == nil {
		items = []model.Notification{}
	}
	return c.JSON(http.StatusOK, echo.Map{"notifications": items})
}

// MarkNotificationRead marks one notification as read.
func (h *Handler) MarkNotificationRead(c echo.Context) error {
	userID, ok := c.Get("user_id").(string)
	if !ok || userID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id := c.Param("id")
	if id == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing notification id"})
	}

	if err := h.store.MarkNotificationRead(c.Request().Context(), id, userID); err != nil {
		if errors.Is(err, lifecycle.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "not found or already read"})
		}
		h.logger.Error("notification update failed", zap.String("id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "ok"})
}
