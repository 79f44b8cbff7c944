package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Umary15/student-skill-share/internal/cache"
	"github.com/Umary15/student-skill-share/internal/model"
)

func testOrder() *model.Order {
	return &model.Order{
		ID:          "order-1",
		BuyerID:     "buyer-1",
		SellerID:    "seller-1",
		GigID:       "gig-1",
		AmountCents: 5000,
	}
}

func noticeUsers(notices []Notice) []string {
	var users []string
	for _, n := range notices {
		users = append(users, n.UserID)
	}
	return users
}

func TestCreationEffectsNotifySeller(t *testing.T) {
	eff := CreationEffects(testOrder())

	require.Len(t, eff.Notices, 1)
	assert.Equal(t, "seller-1", eff.Notices[0].UserID)
	assert.Equal(t, "New order received!", eff.Notices[0].Title)
	assert.Contains(t, eff.Invalidate, cache.KeyOrdersBySeller("seller-1"))
}

func TestTransitionEffects(t *testing.T) {
	o := testOrder()

	t.Run("paid notifies both parties once", func(t *testing.T) {
		eff := TransitionEffects(o, model.OrderStatusPending, model.OrderStatusPaid)
		assert.ElementsMatch(t, []string{"buyer-1", "seller-1"}, noticeUsers(eff.Notices))
	})

	t.Run("delivered notifies buyer only", func(t *testing.T) {
		eff := TransitionEffects(o, model.OrderStatusPaid, model.OrderStatusDelivered)
		assert.Equal(t, []string{"buyer-1"}, noticeUsers(eff.Notices))
	})

	t.Run("cancelled notifies both parties", func(t *testing.T) {
		eff := TransitionEffects(o, model.OrderStatusPending, model.OrderStatusCancelled)
		assert.ElementsMatch(t, []string{"buyer-1", "seller-1"}, noticeUsers(eff.Notices))
	})

	t.Run("unchanged status carries no effects", func(t *testing.T) {
		eff := TransitionEffects(o, model.OrderStatusPaid, model.OrderStatusPaid)
		assert.Empty(t, eff.Notices)
		assert.Empty(t, eff.Invalidate)
	})
}

func TestTransitionEffectsInvalidationSet(t *testing.T) {
	eff := TransitionEffects(testOrder(), model.OrderStatusPending, model.OrderStatusPaid)

	assert.ElementsMatch(t, []string{
		cache.KeyOrdersByBuyer("buyer-1"),
		cache.KeyOrdersBySeller("seller-1"),
		cache.KeyGigLists(),
		cache.KeyGig("gig-1"),
		cache.KeyGigsByOwner("seller-1"),
		cache.KeyRatings("gig-1"),
	}, eff.Invalidate)
}

func TestRatingEffectsNotifySeller(t *testing.T) {
	eff := RatingEffects(testOrder(), &model.Rating{ID: "r1", OrderID: "order-1", GigID: "gig-1", Score: 5})

	require.Len(t, eff.Notices, 1)
	assert.Equal(t, "seller-1", eff.Notices[0].UserID)
	assert.Contains(t, eff.Invalidate, cache.KeyRatings("gig-1"))
}
