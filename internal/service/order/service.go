package order

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"

	"marketplace-backend/internal/authz"
	"marketplace-backend/internal/cache"
	"marketplace-backend/internal/domain"
	orderrepo "marketplace-backend/internal/repository/order"
)

type Service struct {
	orders     orderRepo
	carts      cartGetter
	products   productGetter
	activities activityRecorder
	cache      cache.ProductCache
	logger     *log.Logger
}

type orderRepo interface {
	CheckoutFromCart(ctx context.Context, in orderrepo.CheckoutInput) (*domain.Order, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	ListAll(ctx context.Context) ([]domain.Order, error)
	ListByCustomer(ctx context.Context, customerID string) ([]domain.Order, error)
	ListBySeller(ctx context.Context, sellerID string) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, id string, in orderrepo.StatusUpdateInput) (*domain.Order, error)
	Cancel(ctx context.Context, id string) (*domain.Order, error)
	SellerHasItems(ctx context.Context, orderID, sellerID string) (bool, error)
}

type cartGetter interface {
	GetByCustomer(ctx context.Context, customerID string) (*domain.Cart, error)
}

type productGetter interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
}

type activityRecorder interface {
	Record(ctx context.Context, a domain.Activity) error
}

// New creates an order Service. activities and productCache may be nil.
func New(orders orderRepo, carts cartGetter, products productGetter, activities activityRecorder, productCache cache.ProductCache, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{
		orders:     orders,
		carts:      carts,
		products:   products,
		activities: activities,
		cache:      productCache,
		logger:     logger,
	}
}

type CheckoutInput struct {
	ShippingAddress string `json:"shipping_address"`
	PaymentMethod   string `json:"payment_method"`
	Notes           string `json:"notes"`
}

type StatusPatch struct {
	Status         *string `json:"status"`
	TrackingNumber *string `json:"tracking_number"`
	Notes          *string `json:"notes"`
}

// Checkout converts the customer's cart into an order. Validation fails
// fast against the cart's live view; the repository transaction re-checks
// stock under row locks before committing anything.
func (s *Service) Checkout(ctx context.Context, customer *domain.User, in CheckoutInput) (*domain.Order, error) {
	if strings.TrimSpace(in.ShippingAddress) == "" {
		return nil, domain.Validation("shipping_address is required")
	}
	method := domain.PaymentMethod(in.PaymentMethod)
	if !method.IsValid() {
		return nil, domain.Validation("payment_method must be one of credit_card, paypal, bank_transfer")
	}

	cart, err := s.carts.GetByCustomer(ctx, customer.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrEmptyCart
		}
		return nil, err
	}
	if cart.ItemCount() == 0 {
		return nil, domain.ErrEmptyCart
	}

	for _, item := range cart.Items {
		product, err := s.products.GetByID(ctx, item.ProductID)
		if err != nil {
			return nil, err
		}
		if product.Stock < item.Quantity {
			return nil, &domain.InsufficientStockError{
				ProductID:   product.ID,
				ProductName: product.Name,
				Requested:   item.Quantity,
				Available:   product.Stock,
			}
		}
	}

	order, err := s.orders.CheckoutFromCart(ctx, orderrepo.CheckoutInput{
		CustomerID:      customer.ID,
		CartID:          cart.ID,
		ShippingAddress: strings.TrimSpace(in.ShippingAddress),
		Method:          method,
		Notes:           in.Notes,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Printf("order service: checkout customer_id=%s order_id=%s total_cents=%d", customer.ID, order.ID, order.TotalCents)
	for _, item := range order.Items {
		s.record(ctx, domain.Activity{
			UserID:    customer.ID,
			Type:      domain.ActivityPurchase,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
		s.invalidateProduct(ctx, item.ProductID)
	}
	return order, nil
}

// Get returns the order if the actor may see it: admins always, sellers
// when one of their products is in it, customers their own.
func (s *Service) Get(ctx context.Context, actor *domain.User, id string) (*domain.Order, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	sells := false
	if actor.Role == domain.RoleSeller {
		sells, err = s.orders.SellerHasItems(ctx, id, actor.ID)
		if err != nil {
			return nil, err
		}
	}
	if !authz.CanViewOrder(actor, order, sells) {
		return nil, domain.ErrNotFound
	}
	return order, nil
}

// List returns the actor's role-scoped order view.
func (s *Service) List(ctx context.Context, actor *domain.User) ([]domain.Order, error) {
	switch {
	case authz.IsAdmin(actor):
		return s.orders.ListAll(ctx)
	case actor.Role == domain.RoleSeller:
		return s.orders.ListBySeller(ctx, actor.ID)
	default:
		return s.orders.ListByCustomer(ctx, actor.ID)
	}
}

// UpdateStatus patches status, tracking number or notes. Status changes
// must follow the lifecycle table; cancellation is refused here because it
// carries compensating actions and has its own operation.
func (s *Service) UpdateStatus(ctx context.Context, actor *domain.User, id string, in StatusPatch) (*domain.Order, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	sells := false
	if actor.Role == domain.RoleSeller {
		sells, err = s.orders.SellerHasItems(ctx, id, actor.ID)
		if err != nil {
			return nil, err
		}
	}
	if !authz.CanUpdateOrderStatus(actor, sells) {
		return nil, domain.ErrPermissionDenied
	}

	patch := orderrepo.StatusUpdateInput{
		From:           order.Status,
		TrackingNumber: in.TrackingNumber,
		Notes:          in.Notes,
	}
	if in.Status != nil {
		next := domain.OrderStatus(*in.Status)
		if !next.IsValid() {
			return nil, domain.Validation("invalid status")
		}
		if next == domain.OrderStatusCancelled {
			return nil, domain.Validation("cancellation must go through the cancel operation")
		}
		if next != order.Status {
			if !order.Status.CanTransitionTo(next) {
				return nil, &domain.InvalidStateError{From: order.Status, To: next}
			}
			patch.Status = &next
		}
	}

	return s.orders.UpdateStatus(ctx, id, patch)
}

// Cancel cancels the order, restoring stock and failing the payment. Only
// the order's customer or an admin may do it, and only from pending or
// processing.
func (s *Service) Cancel(ctx context.Context, actor *domain.User, id string) (*domain.Order, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !authz.CanCancelOrder(actor, order) {
		return nil, domain.ErrPermissionDenied
	}

	cancelled, err := s.orders.Cancel(ctx, id)
	if err != nil {
		return nil, err
	}
	s.logger.Printf("order service: cancelled order_id=%s by=%s", id, actor.ID)
	for _, item := range cancelled.Items {
		s.invalidateProduct(ctx, item.ProductID)
	}
	return cancelled, nil
}

// record is best-effort: a failed activity insert never fails checkout.
func (s *Service) record(ctx context.Context, a domain.Activity) {
	if s.activities == nil {
		return
	}
	if err := s.activities.Record(ctx, a); err != nil {
		s.logger.Printf("order service: record activity type=%s error=%v", a.Type, err)
	}
}

// invalidateProduct drops a stale cached product after its stock changed
// inside an order transaction.
func (s *Service) invalidateProduct(ctx context.Context, productID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, productID); err != nil {
		s.logger.Printf("order service: cache delete id=%s error=%v", productID, err)
	}
}
