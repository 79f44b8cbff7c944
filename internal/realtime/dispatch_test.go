package realtime

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Umary15/student-skill-share/internal/lifecycle"
	"github.com/Umary15/student-skill-share/internal/model"
)

type recordingToaster struct {
	notices []lifecycle.Notice
}

func (r *recordingToaster) Toast(_ context.Context, n lifecycle.Notice) error {
	r.notices = append(r.notices, n)
	return nil
}

type recordingInvalidator struct {
	keys []string
}

func (r *recordingInvalidator) Invalidate(keys ...string) {
	r.keys = append(r.keys, keys...)
}

type fixedOrderGetter struct {
	order *model.Order
}

func (f *fixedOrderGetter) GetOrder(context.Context, string) (*model.Order, error) {
	if f.order == nil {
		return nil, lifecycle.ErrNotFound
	}
	return f.order, nil
}

func newTestDispatcher(order *model.Order) (*Dispatcher, *recordingToaster, *recordingInvalidator) {
	toasts := &recordingToaster{}
	inval := &recordingInvalidator{}
	d := NewDispatcher(toasts, inval, &fixedOrderGetter{order: order}, 30*time.Second, zap.NewNop())
	return d, toasts, inval
}

const orderRow = `{"id":"order-1","buyer_id":"buyer-1","seller_id":"seller-1","gig_id":"gig-1","status":%q,"amount_cents":5000}`

func orderChange(op, oldStatus, newStatus string) []byte {
	old := "null"
	if oldStatus != "" {
		old = fmt.Sprintf(orderRow, oldStatus)
	}
	return []byte(fmt.Sprintf(`{"table":"orders","op":%q,"old":%s,"new":%s}`,
		op, old, fmt.Sprintf(orderRow, newStatus)))
}

func TestDispatchOrderCreated(t *testing.T) {
	d, toasts, inval := newTestDispatcher(nil)

	d.Handle(context.Background(), orderChange("INSERT", "", "pending"))

	require.Len(t, toasts.notices, 1)
	assert.Equal(t, "seller-1", toasts.notices[0].UserID)
	assert.Equal(t, "New order received!", toasts.notices[0].Title)
	assert.NotEmpty(t, inval.keys)
}

func TestDispatchPaymentConfirmed(t *testing.T) {
	d, toasts, _ := newTestDispatcher(nil)

	d.Handle(context.Background(), orderChange("UPDATE", "pending", "paid"))

	require.Len(t, toasts.notices, 2)
	byUser := map[string]string{}
	for _, n := range toasts.notices {
		byUser[n.UserID] = n.Title
	}
	assert.Equal(t, "Payment confirmed!", byUser["buyer-1"])
	assert.Equal(t, "Payment received!", byUser["seller-1"])
}

func TestDispatchIgnoresNonStatusUpdates(t *testing.T) {
	d, toasts, inval := newTestDispatcher(nil)

	d.Handle(context.Background(), orderChange("UPDATE", "paid", "paid"))

	assert.Empty(t, toasts.notices)
	assert.Empty(t, inval.keys)
}

func TestDispatchDedupsReplays(t *testing.T) {
	d, toasts, _ := newTestDispatcher(nil)

	payload := orderChange("UPDATE", "paid", "delivered")
	d.Handle(context.Background(), payload)
	d.Handle(context.Background(), payload)

	require.Len(t, toasts.notices, 1, "replay inside the window must not toast again")
	assert.Equal(t, "Order delivered!", toasts.notices[0].Title)
}

func TestDispatchDistinctStatusesBothToast(t *testing.T) {
	d, toasts, _ := newTestDispatcher(nil)

	d.Handle(context.Background(), orderChange("UPDATE", "pending", "paid"))
	d.Handle(context.Background(), orderChange("UPDATE", "paid", "delivered"))

	// paid fans out to both parties, delivered to the buyer only
	assert.Len(t, toasts.notices, 3)
}

func TestDispatchRatingCreated(t *testing.T) {
	order := &model.Order{ID: "order-1", BuyerID: "buyer-1", SellerID: "seller-1", GigID: "gig-1", Status: model.OrderStatusDelivered}
	d, toasts, inval := newTestDispatcher(order)

	payload := []byte(`{"table":"ratings","op":"INSERT","old":null,"new":{"id":"r-1","order_id":"order-1","gig_id":"gig-1","reviewer_id":"buyer-1","score":5}}`)
	d.Handle(context.Background(), payload)
	d.Handle(context.Background(), payload)

	require.Len(t, toasts.notices, 1)
	assert.Equal(t, "seller-1", toasts.notices[0].UserID)
	assert.Equal(t, "New rating received!", toasts.notices[0].Title)
	assert.NotEmpty(t, inval.keys)
}

func TestDispatchMalformedPayload(t *testing.T) {
	d, toasts, inval := newTestDispatcher(nil)

	d.Handle(context.Background(), []byte(`{not json`))
	d.Handle(context.Background(), []byte(`{"table":"wallets","op":"INSERT","new":{}}`))

	assert.Empty(t, toasts.notices)
	assert.Empty(t, inval.keys)
}
