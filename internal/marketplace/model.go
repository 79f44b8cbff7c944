package marketplace

import "github.com/Umary15/student-skill-share/internal/model"

// CreateGigRequest is the payload for listing a new gig.
type CreateGigRequest struct {
	Title        string            `json:"title"`
	Description  string            `json:"description"`
	PriceCents   int64             `json:"price_cents"`
	DeliveryDays int               `json:"delivery_days"`
	Category     model.GigCategory `json:"category"`
	ImageURL     string            `json:"image_url,omitempty"`
}

// UpdateGigRequest is a partial gig update; absent fields stay as-is.
type UpdateGigRequest struct {
	Title        *string            `json:"title,omitempty"`
	Description  *string            `json:"description,omitempty"`
	PriceCents   *int64             `json:"price_cents,omitempty"`
	DeliveryDays *int               `json:"delivery_days,omitempty"`
	Category     *model.GigCategory `json:"category,omitempty"`
	ImageURL     *string            `json:"image_url,omitempty"`
	IsActive     *bool              `json:"is_active,omitempty"`
}

// CreateOrderRequest is the payload for placing an order.
type CreateOrderRequest struct {
	GigID string `json:"gig_id"`
}

// PaymentWebhookRequest is posted by the payment collaborator once a
// checkout session settles.
type PaymentWebhookRequest struct {
	OrderID    string `json:"order_id"`
	PaymentRef string `json:"payment_ref,omitempty"`
}

// CreateRatingRequest is the payload for rating a delivered order.
type CreateRatingRequest struct {
	Score   int    `json:"score"`
	Comment string `json:"comment,omitempty"`
}
