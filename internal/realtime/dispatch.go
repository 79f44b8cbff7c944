package realtime

import (
	"context"
	"encoding/json"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/Umary15/student-skill-share/internal/lifecycle"
	"github.com/Umary15/student-skill-share/internal/model"
)

// Toaster delivers one notice to one user (persist + push).
type Toaster interface {
	Toast(ctx context.Context, n lifecycle.Notice) error
}

// Invalidator drops cached query results.
type Invalidator interface {
	Invalidate(keys ...string)
}

// OrderGetter loads the order a change row refers to.
type OrderGetter interface {
	GetOrder(ctx context.Context, id string) (*model.Order, error)
}

// Change is the payload published by the database triggers: the
// touched table, the operation, and the row before and after.
type Change struct {
	Table string          `json:"table"`
	Op    string          `json:"op"`
	Old   json.RawMessage `json:"old"`
	New   json.RawMessage `json:"new"`
}

// Dispatcher turns raw change payloads into toasts and cache
// invalidations. The feed is at-least-once, so each semantic event is
// remembered for a short window and replays inside it are dropped.
type Dispatcher struct {
	alerts Toaster
	caches Invalidator
	orders OrderGetter
	seen   *gocache.Cache
	logger *zap.Logger
}

func NewDispatcher(alerts Toaster, caches Invalidator, orders OrderGetter, dedupWindow time.Duration, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		alerts: alerts,
		caches: caches,
		orders: orders,
		seen:   gocache.New(dedupWindow, 2*dedupWindow),
		logger: logger,
	}
}

// Handle processes one notification payload. Errors are logged, never
// returned: a bad payload must not take the listener down.
func (d *Dispatcher) Handle(ctx context.Context, payload []byte) {
	var ch Change
	if err := json.Unmarshal(payload, &ch); err != nil {
		d.logger.Warn("undecodable change payload", zap.Error(err))
		return
	}

	switch {
	case ch.Table == "orders" && ch.Op == "INSERT":
		d.orderCreated(ctx, ch)
	case ch.Table == "orders" && ch.Op == "UPDATE":
		d.orderUpdated(ctx, ch)
	case ch.Table == "ratings" && ch.Op == "INSERT":
		d.ratingCreated(ctx, ch)
	default:
		d.logger.Debug("ignoring change", zap.String("table", ch.Table), zap.String("op", ch.Op))
	}
}

func (d *Dispatcher) orderCreated(ctx context.Context, ch Change) {
	var o model.Order
	if err := json.Unmarshal(ch.New, &o); err != nil {
		d.logger.Warn("undecodable order row", zap.Error(err))
		return
	}
	if !d.firstSeen(o.ID + ":" + string(o.Status)) {
		return
	}
	d.apply(ctx, lifecycle.CreationEffects(&o))
}

func (d *Dispatcher) orderUpdated(ctx context.Context, ch Change) {
	var prev, next model.Order
	if err := json.Unmarshal(ch.Old, &prev); err != nil {
		d.logger.Warn("undecodable order row", zap.Error(err))
		return
	}
	if err := json.Unmarshal(ch.New, &next); err != nil {
		d.logger.Warn("undecodable order row", zap.Error(err))
		return
	}
	if prev.Status == next.Status {
		// payment_ref or timestamp touch, nothing user-visible
		return
	}
	if !d.firstSeen(next.ID + ":" + string(next.Status)) {
		return
	}
	d.apply(ctx, lifecycle.TransitionEffects(&next, prev.Status, next.Status))
}

func (d *Dispatcher) ratingCreated(ctx context.Context, ch Change) {
	var r model.Rating
	if err := json.Unmarshal(ch.New, &r); err != nil {
		d.logger.Warn("undecodable rating row", zap.Error(err))
		return
	}
	if !d.firstSeen("rating:" + r.ID) {
		return
	}
	o, err := d.orders.GetOrder(ctx, r.OrderID)
	if err != nil {
		d.logger.Warn("rating for unknown order", zap.String("order_id", r.OrderID), zap.Error(err))
		return
	}
	d.apply(ctx, lifecycle.RatingEffects(o, &r))
}

// firstSeen records the event key and reports whether it was new.
func (d *Dispatcher) firstSeen(key string) bool {
	return d.seen.Add(key, struct{}{}, gocache.DefaultExpiration) == nil
}

func (d *Dispatcher) apply(ctx context.Context, eff lifecycle.Effects) {
	for _, n := range eff.Notices {
		if err := d.alerts.Toast(ctx, n); err != nil {
			d.logger.Error("toast enqueue failed", zap.String("user_id", n.UserID), zap.Error(err))
		}
	}
	d.caches.Invalidate(eff.Invalidate...)
}
