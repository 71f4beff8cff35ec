package order

import (
	"context"

	"marketplace-backend/internal/domain"
)

type CheckoutInput struct {
	CustomerID      string
	CartID          string
	ShippingAddress string
	Method          domain.PaymentMethod
	Notes           string
}

// StatusUpdateInput patches mutable order fields. From carries the status
// the caller observed so the update is refused if the order moved
// concurrently.
type StatusUpdateInput struct {
	From           domain.OrderStatus
	Status         *domain.OrderStatus
	TrackingNumber *string
	Notes          *string
}

type Repository interface {
	// CheckoutFromCart converts the cart into an order, order items and a
	// pending payment, decrements stock and empties the cart, all in one
	// transaction.
	CheckoutFromCart(ctx context.Context, in CheckoutInput) (*domain.Order, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	ListAll(ctx context.Context) ([]domain.Order, error)
	ListByCustomer(ctx context.Context, customerID string) ([]domain.Order, error)
	ListBySeller(ctx context.Context, sellerID string) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, id string, in StatusUpdateInput) (*domain.Order, error)
	// Cancel flips the order to cancelled, restores stock for every item
	// and fails the payment if one exists, in one transaction.
	Cancel(ctx context.Context, id string) (*domain.Order, error)
	SellerHasItems(ctx context.Context, orderID, sellerID string) (bool, error)
}
