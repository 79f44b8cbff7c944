package marketplace

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Umary15/student-skill-share/internal/cache"
	"github.com/Umary15/student-skill-share/internal/lifecycle"
	"github.com/Umary15/student-skill-share/internal/model"
)

// CreateOrder - buyer places an order. The amount snapshots the gig
// price at this moment and never follows later edits.
func (h *Handler) CreateOrder(c echo.Context) error {
	uid := userID(c)
	if uid == "" {
		return h.fail(c, lifecycle.ErrUnauthenticated)
	}

	var req CreateOrderRequest
	if err := c.Bind(&req); err != nil || req.GigID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid gig_id"})
	}

	ctx := c.Request().Context()

	gig, err := h.store.GetGig(ctx, req.GigID)
	if err != nil {
		return h.fail(c, err)
	}

	if err := lifecycle.ValidateCreate(uid, gig); err != nil {
		return h.fail(c, err)
	}

	order, err := h.store.CreateOrder(ctx, &model.Order{
		ID:          uuid.New().String(),
		BuyerID:     uid,
		SellerID:    gig.UserID,
		GigID:       gig.ID,
		Status:      model.OrderStatusPending,
		AmountCents: gig.PriceCents,
	})
	if err != nil {
		return h.fail(c, err)
	}

	h.cache.Invalidate(lifecycle.CreationEffects(order).Invalidate...)
	return c.JSON(http.StatusCreated, order)
}

// ListOrders - the caller's orders as buyer (default) or seller.
func (h *Handler) ListOrders(c echo.Context) error {
	uid := userID(c)
	if uid == "" {
		return h.fail(c, lifecycle.ErrUnauthenticated)
	}

	role := lifecycle.RoleBuyer
	key := cache.KeyOrdersByBuyer(uid)
	if c.QueryParam("role") == "seller" {
		role = lifecycle.RoleSeller
		key = cache.KeyOrdersBySeller(uid)
	}

	if v, ok := h.cache.Get(key); ok {
		return c.JSON(http.StatusOK, echo.Map{"orders": v})
	}

	orders, err := h.store.ListOrders(c.Request().Context(), uid, role)
	if err != nil {
		return h.fail(c, err)
	}

	h.cache.Set(key, orders)
	return c.JSON(http.StatusOK, echo.Map{"orders": orders})
}

// DeliverOrder - seller marks a paid order delivered.
func (h *Handler) DeliverOrder(c echo.Context) error {
	return h.transition(c, model.OrderStatusDelivered, "")
}

// CancelOrder - buyer or seller cancels a not-yet-terminal order.
func (h *Handler) CancelOrder(c echo.Context) error {
	return h.transition(c, model.OrderStatusCancelled, "")
}

// transition runs one participant-initiated status change. The CAS in
// the store is the serialization point; losing the race to an
// already-applied identical transition is reported as success.
func (h *Handler) transition(c echo.Context, target model.OrderStatus, paymentRef string) error {
	uid := userID(c)
	if uid == "" {
		return h.fail(c, lifecycle.ErrUnauthenticated)
	}

	orderID := c.Param("id")
	if orderID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing order id"})
	}

	ctx := c.Request().Context()

	order, err := h.store.GetOrder(ctx, orderID)
	if err != nil {
		return h.fail(c, err)
	}

	role, ok := lifecycle.RoleFor(order, uid)
	if !ok {
		// Non-participants learn nothing about the order.
		return h.fail(c, lifecycle.ErrNotFound)
	}

	return h.applyTransition(c, order, target, role, paymentRef)
}

func (h *Handler) applyTransition(c echo.Context, order *model.Order, target model.OrderStatus, role lifecycle.Role, paymentRef string) error {
	ctx := c.Request().Context()

	noop, err := lifecycle.ValidateTransition(order.Status, target, role)
	if err != nil {
		return h.fail(c, err)
	}
	if noop {
		return c.JSON(http.StatusOK, order)
	}

	updated, err := h.store.UpdateOrderStatus(ctx, order.ID, order.Status, target, paymentRef)
	if errors.Is(err, lifecycle.ErrConflict) {
		// Lost the race; if the row already carries the target status
		// the retry is a business-level no-op, not an error.
		current, rerr := h.store.GetOrder(ctx, order.ID)
		if rerr != nil {
			return h.fail(c, rerr)
		}
		if current.Status == target {
			return c.JSON(http.StatusOK, current)
		}
		return h.fail(c, lifecycle.ErrConflict)
	}
	if err != nil {
		return h.fail(c, err)
	}

	h.cache.Invalidate(lifecycle.TransitionEffects(updated, order.Status, target).Invalidate...)
	return c.JSON(http.StatusOK, updated)
}

// PaymentWebhook - the payment collaborator confirms a checkout. The
// shared secret is the only authentication on this route.
func (h *Handler) PaymentWebhook(c echo.Context) error {
	if h.paymentSecret == "" || c.Request().Header.Get("X-Payment-Secret") != h.paymentSecret {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	var req PaymentWebhookRequest
	if err := c.Bind(&req); err != nil || req.OrderID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order_id"})
	}

	order, err := h.store.GetOrder(c.Request().Context(), req.OrderID)
	if err != nil {
		return h.fail(c, err)
	}

	return h.applyTransition(c, order, model.OrderStatusPaid, lifecycle.RoleExternal, req.PaymentRef)
}
