package cart

import (
	"context"
	"io"
	"log"

	"marketplace-backend/internal/domain"
)

type Service struct {
	repo       cartRepo
	products   productGetter
	activities activityRecorder
	logger     *log.Logger
}

type cartRepo interface {
	GetOrCreate(ctx context.Context, customerID string) (*domain.Cart, error)
	GetByCustomer(ctx context.Context, customerID string) (*domain.Cart, error)
	AddItem(ctx context.Context, cartID, productID string, quantity int) error
	UpdateItemQuantity(ctx context.Context, cartID, itemID string, quantity int) error
	RemoveItem(ctx context.Context, cartID, itemID string) error
	Clear(ctx context.Context, cartID string) error
}

type productGetter interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
}

type activityRecorder interface {
	Record(ctx context.Context, a domain.Activity) error
}

// New creates a cart Service. activities may be nil, which disables
// activity tracking.
func New(repo cartRepo, products productGetter, activities activityRecorder, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{repo: repo, products: products, activities: activities, logger: logger}
}

// Get returns the customer's cart, creating an empty one on first use.
func (s *Service) Get(ctx context.Context, customerID string) (*domain.Cart, error) {
	return s.repo.GetOrCreate(ctx, customerID)
}

// AddItem puts quantity units of a product into the customer's cart.
// Adding a product already in the cart accumulates; the combined quantity
// must not exceed the product's live stock.
func (s *Service) AddItem(ctx context.Context, customerID, productID string, quantity int) (*domain.Cart, error) {
	if productID == "" {
		return nil, domain.Validation("product is required")
	}
	if quantity <= 0 {
		return nil, domain.Validation("quantity must be greater than zero")
	}

	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	cart, err := s.repo.GetOrCreate(ctx, customerID)
	if err != nil {
		return nil, err
	}

	requested := quantity
	for _, item := range cart.Items {
		if item.ProductID == productID {
			requested += item.Quantity
			break
		}
	}
	if product.Stock < requested {
		return nil, &domain.InsufficientStockError{
			ProductID:   product.ID,
			ProductName: product.Name,
			Requested:   requested,
			Available:   product.Stock,
		}
	}

	if err := s.repo.AddItem(ctx, cart.ID, productID, quantity); err != nil {
		return nil, err
	}
	s.record(ctx, domain.Activity{
		UserID:    customerID,
		Type:      domain.ActivityAddToCart,
		ProductID: productID,
		Quantity:  quantity,
	})
	return s.repo.GetByCustomer(ctx, customerID)
}

// UpdateItem sets the quantity of an existing cart line.
func (s *Service) UpdateItem(ctx context.Context, customerID, itemID string, quantity int) (*domain.Cart, error) {
	if itemID == "" {
		return nil, domain.Validation("item_id is required")
	}
	if quantity <= 0 {
		return nil, domain.Validation("quantity must be greater than zero")
	}

	cart, err := s.repo.GetByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	var line *domain.CartItem
	for i := range cart.Items {
		if cart.Items[i].ID == itemID {
			line = &cart.Items[i]
			break
		}
	}
	if line == nil {
		return nil, domain.ErrNotFound
	}

	product, err := s.products.GetByID(ctx, line.ProductID)
	if err != nil {
		return nil, err
	}
	if product.Stock < quantity {
		return nil, &domain.InsufficientStockError{
			ProductID:   product.ID,
			ProductName: product.Name,
			Requested:   quantity,
			Available:   product.Stock,
		}
	}

	if err := s.repo.UpdateItemQuantity(ctx, cart.ID, itemID, quantity); err != nil {
		return nil, err
	}
	return s.repo.GetByCustomer(ctx, customerID)
}

// RemoveItem deletes one line from the cart.
func (s *Service) RemoveItem(ctx context.Context, customerID, itemID string) (*domain.Cart, error) {
	if itemID == "" {
		return nil, domain.Validation("item_id is required")
	}
	cart, err := s.repo.GetByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.RemoveItem(ctx, cart.ID, itemID); err != nil {
		return nil, err
	}
	return s.repo.GetByCustomer(ctx, customerID)
}

// Clear removes every line from the cart. The cart itself persists.
func (s *Service) Clear(ctx context.Context, customerID string) (*domain.Cart, error) {
	cart, err := s.repo.GetByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Clear(ctx, cart.ID); err != nil {
		return nil, err
	}
	return s.repo.GetByCustomer(ctx, customerID)
}

// record is best-effort: a failed activity insert never fails the cart
// operation that produced it.
func (s *Service) record(ctx context.Context, a domain.Activity) {
	if s.activities == nil {
		return
	}
	if err := s.activities.Record(ctx, a); err != nil {
		s.logger.Printf("cart service: record activity type=%s error=%v", a.Type, err)
	}
}
