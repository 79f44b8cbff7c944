package lifecycle

import (
	"github.com/Umary15/student-skill-share/internal/cache"
	"github.com/Umary15/student-skill-share/internal/model"
)

// Severity of a user-facing notice.
const (
	SeverityInfo    = "info"
	SeveritySuccess = "success"
	SeverityError   = "error"
)

// Notice is one toast addressed to one party. A single change event
// produces at most one notice per interested party.
type Notice struct {
	UserID   string
	Severity string
	Title    string
	Detail   string
}

// Effects is the side-effect plan for an observed change: who gets
// told, and which cached queries can no longer be trusted.
type Effects struct {
	Notices    []Notice
	Invalidate []string
}

// invalidationSet is the broadcast set for any order/gig/rating
// mutation: both parties' order lists, the gig's lists and detail, and
// the gig's ratings. Deliberately coarse.
func invalidationSet(o *model.Order) []string {
	return []string{
		cache.KeyOrdersByBuyer(o.BuyerID),
		cache.KeyOrdersBySeller(o.SellerID),
		cache.KeyGigLists(),
		cache.KeyGig(o.GigID),
		cache.KeyGigsByOwner(o.SellerID),
		cache.KeyRatings(o.GigID),
	}
}

// CreationEffects is the plan for a newly inserted order.
func CreationEffects(o *model.Order) Effects {
	return Effects{
		Notices: []Notice{{
			UserID:   o.SellerID,
			Severity: SeveritySuccess,
			Title:    "New order received!",
			Detail:   "Someone just ordered your gig.",
		}},
		Invalidate: invalidationSet(o),
	}
}

// TransitionEffects derives the semantic event from the old and new
// status of an updated order row. Updates that do not change the
// status carry no notices, so unrelated field updates never re-toast.
func TransitionEffects(o *model.Order, from, to model.OrderStatus) Effects {
	if from == to {
		return Effects{}
	}

	eff := Effects{Invalidate: invalidationSet(o)}
	switch to {
	case model.OrderStatusPaid:
		eff.Notices = []Notice{
			{UserID: o.BuyerID, Severity: SeverityInfo, Title: "Payment confirmed!", Detail: "Your payment has been processed."},
			{UserID: o.SellerID, Severity: SeveritySuccess, Title: "Payment received!", Detail: "A buyer has paid for your gig."},
		}
	case model.OrderStatusDelivered:
		eff.Notices = []Notice{
			{UserID: o.BuyerID, Severity: SeveritySuccess, Title: "Order delivered!", Detail: "Your order has been marked as delivered."},
		}
	case model.OrderStatusCancelled:
		eff.Notices = []Notice{
			{UserID: o.BuyerID, Severity: SeverityInfo, Title: "Order cancelled", Detail: "The order has been cancelled."},
			{UserID: o.SellerID, Severity: SeverityInfo, Title: "Order cancelled", Detail: "The order has been cancelled."},
		}
	}
	return eff
}

// RatingEffects is the plan for a newly attached rating.
func RatingEffects(o *model.Order, r *model.Rating) Effects {
	return Effects{
		Notices: []Notice{{
			UserID:   o.SellerID,
			Severity: SeveritySuccess,
			Title:    "New rating received!",
			Detail:   "A buyer rated your gig.",
		}},
		Invalidate: invalidationSet(o),
	}
}
