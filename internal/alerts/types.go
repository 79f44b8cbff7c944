package alerts

import "time"

// Task type constants
const (
	TaskToastDeliver = "toast:deliver"
)

// ToastPayload carries one user-facing notice through the queue.
type ToastPayload struct {
	UserID   string    `json:"user_id"`
	Severity string    `json:"severity"`
	Title    string    `json:"title"`
	Body     string    `json:"body"`
	SentAt   time.Time `json:"sent_at"`
}
