package domain

import "time"

// Cart is the per-customer mutable pre-order item collection. One cart per
// customer; checkout empties it but never deletes it. Line subtotals and the
// cart total are computed from live product prices on every read, so a cart
// holds no price snapshots of its own.
type Cart struct {
	ID         string     `json:"id"`
	CustomerID string     `json:"customerId"`
	Currency   string     `json:"currency"`
	TotalCents int64      `json:"totalCents"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
	Items      []CartItem `json:"items"`
}

type CartItem struct {
	ID             string    `json:"id"`
	CartID         string    `json:"cartId"`
	ProductID      string    `json:"productId"`
	ProductName    string    `json:"productName"`
	Quantity       int       `json:"quantity"`
	UnitPriceCents int64     `json:"unitPriceCents"`
	TotalCents     int64     `json:"totalCents"`
	AddedAt        time.Time `json:"addedAt"`
}

// ItemCount reports the number of distinct lines in the cart.
func (c *Cart) ItemCount() int {
	return len(c.Items)
}
