// Package lifecycle owns the order state machine: which states exist,
// which actor may cause each transition, and the side effects every
// transition carries. Handlers enforce these rules before touching
// storage; the database CHECK constraints are the backstop, not the
// rule source.
package lifecycle

import (
	"errors"

	"github.com/Umary15/student-skill-share/internal/model"
)

var (
	ErrUnauthenticated    = errors.New("no acting identity")
	ErrForbidden          = errors.New("actor lacks rights for this action")
	ErrForbiddenSelfOrder = errors.New("cannot order your own gig")
	ErrGigInactive        = errors.New("gig is not active")
	ErrInvalidTransition  = errors.New("invalid order status transition")
	ErrInvalidScore       = errors.New("rating score must be between 1 and 5")
	ErrDuplicateRating    = errors.New("rating already exists for this order")
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("concurrent update lost the race")
)

// Role is an actor's relation to an order.
type Role string

const (
	RoleBuyer  Role = "buyer"
	RoleSeller Role = "seller"
	// RoleExternal is the payment collaborator (payment confirmations)
	// or any out-of-band process such as a timeout-driven cancel.
	RoleExternal Role = "external"
)

// RoleFor resolves userID's role on o. The second return is false when
// the user is neither party.
func RoleFor(o *model.Order, userID string) (Role, bool) {
	switch userID {
	case o.BuyerID:
		return RoleBuyer, true
	case o.SellerID:
		return RoleSeller, true
	}
	return "", false
}

// edges lists every legal transition and the roles allowed to cause it.
var edges = map[model.OrderStatus]map[model.OrderStatus][]Role{
	model.OrderStatusPending: {
		model.OrderStatusPaid:      {RoleExternal},
		model.OrderStatusCancelled: {RoleBuyer, RoleSeller, RoleExternal},
	},
	model.OrderStatusPaid: {
		model.OrderStatusDelivered: {RoleSeller},
		model.OrderStatusCancelled: {RoleBuyer, RoleSeller, RoleExternal},
	},
}

// ValidateCreate guards order creation: the buyer must not own the gig
// and the gig must still be active. Enforced here, not left to
// storage, because it is a business rule independent of persistence.
func ValidateCreate(buyerID string, gig *model.Gig) error {
	if buyerID == "" {
		return ErrUnauthenticated
	}
	if gig.UserID == buyerID {
		return ErrForbiddenSelfOrder
	}
	if !gig.IsActive {
		return ErrGigInactive
	}
	return nil
}

// ValidateTransition checks whether role may move an order from cur to
// next. A transition into the current state is a successful no-op
// (noop=true), never an error: concurrent retries of the same action
// must both be safe to issue.
func ValidateTransition(cur, next model.OrderStatus, role Role) (noop bool, err error) {
	if !next.Valid() {
		return false, ErrInvalidTransition
	}
	if cur == next {
		return true, nil
	}
	if cur.Terminal() {
		return false, ErrInvalidTransition
	}
	allowed, ok := edges[cur][next]
	if !ok {
		return false, ErrInvalidTransition
	}
	for _, r := range allowed {
		if r == role {
			return false, nil
		}
	}
	return false, ErrForbidden
}

// ValidateRating guards rating submission independently of any UI
// gating: only the buyer, only after delivery, score in range.
// Uniqueness per order is enforced by storage and surfaces as
// ErrDuplicateRating.
func ValidateRating(o *model.Order, reviewerID string, score int) error {
	if reviewerID == "" {
		return ErrUnauthenticated
	}
	if reviewerID != o.BuyerID {
		return ErrForbidden
	}
	if o.Status != model.OrderStatusDelivered {
		return ErrInvalidTransition
	}
	if score < 1 || score > 5 {
		return ErrInvalidScore
	}
	return nil
}

// NextAverage recomputes a gig's aggregate rating as a running mean
// after one accepted score.
func NextAverage(avg float64, reviews int, score int) float64 {
	return (avg*float64(reviews) + float64(score)) / float64(reviews+1)
}
