package cart

import (
	"context"
	"errors"
	"testing"

	"marketplace-backend/internal/domain"
)

type stubCartRepo struct {
	cart          *domain.Cart
	getErr        error
	addErr        error
	updateErr     error
	removeErr     error
	clearErr      error
	lastAddCart   string
	lastAddProd   string
	lastAddQty    int
	lastUpdateQty int
	cleared       bool
}

func (s *stubCartRepo) GetOrCreate(_ context.Context, _ string) (*domain.Cart, error) {
	return s.cart, s.getErr
}

func (s *stubCartRepo) GetByCustomer(_ context.Context, _ string) (*domain.Cart, error) {
	return s.cart, s.getErr
}

func (s *stubCartRepo) AddItem(_ context.Context, cartID, productID string, quantity int) error {
	s.lastAddCart = cartID
	s.lastAddProd = productID
	s.lastAddQty = quantity
	return s.addErr
}

func (s *stubCartRepo) UpdateItemQuantity(_ context.Context, _, _ string, quantity int) error {
	s.lastUpdateQty = quantity
	return s.updateErr
}

func (s *stubCartRepo) RemoveItem(_ context.Context, _, _ string) error {
	return s.removeErr
}

func (s *stubCartRepo) Clear(_ context.Context, _ string) error {
	s.cleared = true
	return s.clearErr
}

type stubProducts struct {
	products map[string]*domain.Product
}

func (s *stubProducts) GetByID(_ context.Context, id string) (*domain.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

type stubActivities struct {
	recorded []domain.Activity
	err      error
}

func (s *stubActivities) Record(_ context.Context, a domain.Activity) error {
	s.recorded = append(s.recorded, a)
	return s.err
}

func emptyCart() *domain.Cart {
	return &domain.Cart{ID: "cart-1", CustomerID: "cust-1"}
}

func TestAddItem_Succeeds(t *testing.T) {
	repo := &stubCartRepo{cart: emptyCart()}
	activities := &stubActivities{}
	svc := New(repo, &stubProducts{products: map[string]*domain.Product{
		"prod-1": {ID: "prod-1", Name: "P1", Stock: 10},
	}}, activities, nil)

	cart, err := svc.AddItem(context.Background(), "cust-1", "prod-1", 3)
	if err != nil {
		t.Fatalf("add item: %v", err)
	}
	if cart == nil {
		t.Fatalf("expected cart back")
	}
	if repo.lastAddCart != "cart-1" || repo.lastAddProd != "prod-1" || repo.lastAddQty != 3 {
		t.Fatalf("unexpected add call cart=%s prod=%s qty=%d", repo.lastAddCart, repo.lastAddProd, repo.lastAddQty)
	}
	if len(activities.recorded) != 1 || activities.recorded[0].Type != domain.ActivityAddToCart {
		t.Fatalf("expected one add_to_cart activity, got %+v", activities.recorded)
	}
}

func TestAddItem_Validation(t *testing.T) {
	svc := New(&stubCartRepo{cart: emptyCart()}, &stubProducts{}, nil, nil)
	ctx := context.Background()

	var validationErr *domain.ValidationError
	if _, err := svc.AddItem(ctx, "cust-1", "", 1); !errors.As(err, &validationErr) {
		t.Fatalf("expected validation error for missing product, got %v", err)
	}
	if _, err := svc.AddItem(ctx, "cust-1", "prod-1", 0); !errors.As(err, &validationErr) {
		t.Fatalf("expected validation error for zero quantity, got %v", err)
	}
	if _, err := svc.AddItem(ctx, "cust-1", "prod-1", -2); !errors.As(err, &validationErr) {
		t.Fatalf("expected validation error for negative quantity, got %v", err)
	}
}

func TestAddItem_UnknownProduct(t *testing.T) {
	svc := New(&stubCartRepo{cart: emptyCart()}, &stubProducts{}, nil, nil)
	if _, err := svc.AddItem(context.Background(), "cust-1", "ghost", 1); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAddItem_AccumulatedQuantityChecksStock(t *testing.T) {
	withLine := emptyCart()
	withLine.Items = []domain.CartItem{{ID: "line-1", ProductID: "prod-1", Quantity: 4}}
	repo := &stubCartRepo{cart: withLine}
	svc := New(repo, &stubProducts{products: map[string]*domain.Product{
		"prod-1": {ID: "prod-1", Name: "P1", Stock: 5},
	}}, nil, nil)

	_, err := svc.AddItem(context.Background(), "cust-1", "prod-1", 2)
	var stockErr *domain.InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}
	if stockErr.Requested != 6 || stockErr.Available != 5 {
		t.Fatalf("unexpected stock error %+v", stockErr)
	}
	if repo.lastAddQty != 0 {
		t.Fatalf("repository should not be called on a failed stock check")
	}
}

func TestUpdateItem_Succeeds(t *testing.T) {
	withLine := emptyCart()
	withLine.Items = []domain.CartItem{{ID: "line-1", ProductID: "prod-1", Quantity: 1}}
	repo := &stubCartRepo{cart: withLine}
	svc := New(repo, &stubProducts{products: map[string]*domain.Product{
		"prod-1": {ID: "prod-1", Name: "P1", Stock: 10},
	}}, nil, nil)

	if _, err := svc.UpdateItem(context.Background(), "cust-1", "line-1", 5); err != nil {
		t.Fatalf("update item: %v", err)
	}
	if repo.lastUpdateQty != 5 {
		t.Fatalf("unexpected quantity %d", repo.lastUpdateQty)
	}
}

func TestUpdateItem_UnknownLine(t *testing.T) {
	svc := New(&stubCartRepo{cart: emptyCart()}, &stubProducts{}, nil, nil)
	if _, err := svc.UpdateItem(context.Background(), "cust-1", "ghost", 2); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateItem_InsufficientStock(t *testing.T) {
	withLine := emptyCart()
	withLine.Items = []domain.CartItem{{ID: "line-1", ProductID: "prod-1", Quantity: 1}}
	svc := New(&stubCartRepo{cart: withLine}, &stubProducts{products: map[string]*domain.Product{
		"prod-1": {ID: "prod-1", Name: "P1", Stock: 3},
	}}, nil, nil)

	_, err := svc.UpdateItem(context.Background(), "cust-1", "line-1", 4)
	var stockErr *domain.InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}
}

func TestClear_EmptiesCart(t *testing.T) {
	repo := &stubCartRepo{cart: emptyCart()}
	svc := New(repo, &stubProducts{}, nil, nil)
	if _, err := svc.Clear(context.Background(), "cust-1"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if !repo.cleared {
		t.Fatalf("expected Clear call on repository")
	}
}

func TestAddItem_ActivityFailureDoesNotFail(t *testing.T) {
	repo := &stubCartRepo{cart: emptyCart()}
	activities := &stubActivities{err: errors.New("insert failed")}
	svc := New(repo, &stubProducts{products: map[string]*domain.Product{
		"prod-1": {ID: "prod-1", Name: "P1", Stock: 10},
	}}, activities, nil)

	if _, err := svc.AddItem(context.Background(), "cust-1", "prod-1", 1); err != nil {
		t.Fatalf("activity failure should not surface: %v", err)
	}
}
