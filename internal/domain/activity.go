package domain

import "time"

type ActivityType string

const (
	ActivityView      ActivityType = "view"
	ActivitySearch    ActivityType = "search"
	ActivityAddToCart ActivityType = "add_to_cart"
	ActivityPurchase  ActivityType = "purchase"
)

// Activity is a best-effort event record. Writers must never let a failed
// insert abort the operation that produced the event.
type Activity struct {
	ID        string       `json:"id"`
	UserID    string       `json:"userId,omitempty"`
	Type      ActivityType `json:"type"`
	ProductID string       `json:"productId,omitempty"`
	Quantity  int          `json:"quantity,omitempty"`
	CreatedAt time.Time    `json:"createdAt"`
}
