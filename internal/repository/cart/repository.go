package cart

import (
	"context"

	"marketplace-backend/internal/domain"
)

// Repository persists carts and their items. Reads always return line
// subtotals priced from the live product rows; price snapshots happen at
// order time, not here.
type Repository interface {
	GetOrCreate(ctx context.Context, customerID string) (*domain.Cart, error)
	GetByCustomer(ctx context.Context, customerID string) (*domain.Cart, error)
	AddItem(ctx context.Context, cartID, productID string, quantity int) error
	UpdateItemQuantity(ctx context.Context, cartID, itemID string, quantity int) error
	RemoveItem(ctx context.Context, cartID, itemID string) error
	Clear(ctx context.Context, cartID string) error
}
