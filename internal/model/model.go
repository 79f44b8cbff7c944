// Package model contains the domain entities shared across the service.
package model

import "time"

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Valid reports whether s is one of the known order statuses.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusPaid, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether s admits no further transitions.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// GigCategory is one of the fixed service categories.
type GigCategory string

const (
	CategoryGraphics      GigCategory = "graphics"
	CategoryStudyGuides   GigCategory = "study_guides"
	CategoryProofreading  GigCategory = "proofreading"
	CategoryPresentations GigCategory = "presentations"
	CategoryTutoring      GigCategory = "tutoring"
	CategoryResumeDesign  GigCategory = "resume_design"
	CategoryBrainstorming GigCategory = "brainstorming"
	CategoryOther         GigCategory = "other"
)

// GigCategories lists every accepted category, in display order.
var GigCategories = []GigCategory{
	CategoryGraphics,
	CategoryStudyGuides,
	CategoryProofreading,
	CategoryPresentations,
	CategoryTutoring,
	CategoryResumeDesign,
	CategoryBrainstorming,
	CategoryOther,
}

// Valid reports whether c is a known category.
func (c GigCategory) Valid() bool {
	for _, known := range GigCategories {
		if c == known {
			return true
		}
	}
	return false
}

// Profile is a user account. PasswordHash is never serialized.
type Profile struct {
	ID               string    `json:"id"`
	Username         string    `json:"username"`
	Email            string    `json:"email,omitempty"`
	PasswordHash     string    `json:"-"`
	Bio              string    `json:"bio,omitempty"`
	AvatarURL        string    `json:"avatar_url,omitempty"`
	TotalEarnedCents int64     `json:"total_earned_cents"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Gig is a service listing offered by a seller.
type Gig struct {
	ID            string      `json:"id"`
	UserID        string      `json:"user_id"`
	Title         string      `json:"title"`
	Description   string      `json:"description"`
	PriceCents    int64       `json:"price_cents"`
	DeliveryDays  int         `json:"delivery_days"`
	Category      GigCategory `json:"category"`
	ImageURL      string      `json:"image_url,omitempty"`
	AverageRating float64     `json:"average_rating"`
	TotalReviews  int         `json:"total_reviews"`
	IsActive      bool        `json:"is_active"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// Order is a purchase of a gig. AmountCents snapshots the gig price at
// creation time and never tracks later edits.
type Order struct {
	ID          string      `json:"id"`
	BuyerID     string      `json:"buyer_id"`
	SellerID    string      `json:"seller_id"`
	GigID       string      `json:"gig_id"`
	Status      OrderStatus `json:"status"`
	AmountCents int64       `json:"amount_cents"`
	PaymentRef  string      `json:"payment_ref,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// Rating is a buyer's post-delivery score for an order, one per order.
type Rating struct {
	ID         string    `json:"id"`
	OrderID    string    `json:"order_id"`
	GigID      string    `json:"gig_id"`
	ReviewerID string    `json:"reviewer_id"`
	Score      int       `json:"score"`
	Comment    string    `json:"comment,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Notification is a persisted in-app toast.
type Notification struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	Severity  string     `json:"severity"`
	Title     string     `json:"title"`
	Body      string     `json:"body,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
}
