package product

import (
	"context"
	"errors"
	"testing"

	"marketplace-backend/internal/cache"
	"marketplace-backend/internal/domain"
	productrepo "marketplace-backend/internal/repository/product"
)

type stubRepo struct {
	list       []domain.Product
	product    *domain.Product
	getErr     error
	created    *domain.Product
	createErr  error
	lastCreate domain.Product
	updated    *domain.Product
	updateErr  error
	adjusted   *domain.Product
	adjustErr  error
	lastDelta  int
}

func (s *stubRepo) List(_ context.Context) ([]domain.Product, error) {
	return s.list, nil
}

func (s *stubRepo) GetByID(_ context.Context, _ string) (*domain.Product, error) {
	return s.product, s.getErr
}

func (s *stubRepo) Create(_ context.Context, p domain.Product) (*domain.Product, error) {
	s.lastCreate = p
	if s.created != nil || s.createErr != nil {
		return s.created, s.createErr
	}
	clone := p
	clone.ID = "prod-new"
	return &clone, nil
}

func (s *stubRepo) Update(_ context.Context, _ string, _ productrepo.UpdateInput) (*domain.Product, error) {
	return s.updated, s.updateErr
}

func (s *stubRepo) AdjustStock(_ context.Context, _ string, delta int) (*domain.Product, error) {
	s.lastDelta = delta
	return s.adjusted, s.adjustErr
}

type memoryCache struct {
	products map[string]*domain.Product
	deleted  []string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{products: make(map[string]*domain.Product)}
}

func (c *memoryCache) Get(_ context.Context, id string) (*domain.Product, error) {
	if p, ok := c.products[id]; ok {
		return p, nil
	}
	return nil, cache.ErrCacheMiss
}

func (c *memoryCache) Set(_ context.Context, p *domain.Product) error {
	c.products[p.ID] = p
	return nil
}

func (c *memoryCache) Delete(_ context.Context, id string) error {
	delete(c.products, id)
	c.deleted = append(c.deleted, id)
	return nil
}

func seller() *domain.User {
	return &domain.User{ID: "seller-1", Role: domain.RoleSeller}
}

func admin() *domain.User {
	return &domain.User{ID: "admin-1", Role: domain.RoleAdmin}
}

func customer() *domain.User {
	return &domain.User{ID: "cust-1", Role: domain.RoleCustomer}
}

func TestCreate_SetsSellerAndDefaults(t *testing.T) {
	repo := &stubRepo{}
	svc := New(repo, nil, nil)

	p, err := svc.Create(context.Background(), seller(), CreateInput{
		Name:       "  Widget  ",
		PriceCents: 1999,
		Stock:      10,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if p.ID == "" {
		t.Fatalf("expected created product, got %+v", p)
	}
	if repo.lastCreate.SellerID != "seller-1" {
		t.Fatalf("seller should come from the actor, got %s", repo.lastCreate.SellerID)
	}
	if repo.lastCreate.Name != "Widget" {
		t.Fatalf("name should be trimmed, got %q", repo.lastCreate.Name)
	}
	if repo.lastCreate.Currency != "USD" {
		t.Fatalf("expected USD default, got %s", repo.lastCreate.Currency)
	}
}

func TestCreate_Authz(t *testing.T) {
	svc := New(&stubRepo{}, nil, nil)
	if _, err := svc.Create(context.Background(), customer(), CreateInput{Name: "W", PriceCents: 1}); !errors.Is(err, domain.ErrPermissionDenied) {
		t.Fatalf("customer should not create products, got %v", err)
	}
	if _, err := svc.Create(context.Background(), nil, CreateInput{Name: "W", PriceCents: 1}); !errors.Is(err, domain.ErrPermissionDenied) {
		t.Fatalf("anonymous should not create products, got %v", err)
	}
}

func TestCreate_Validation(t *testing.T) {
	svc := New(&stubRepo{}, nil, nil)
	ctx := context.Background()

	var validationErr *domain.ValidationError
	if _, err := svc.Create(ctx, seller(), CreateInput{PriceCents: 1}); !errors.As(err, &validationErr) {
		t.Fatalf("expected validation error for missing name, got %v", err)
	}
	if _, err := svc.Create(ctx, seller(), CreateInput{Name: "W", PriceCents: -1}); !errors.As(err, &validationErr) {
		t.Fatalf("expected validation error for negative price, got %v", err)
	}
	if _, err := svc.Create(ctx, seller(), CreateInput{Name: "W", Stock: -1}); !errors.As(err, &validationErr) {
		t.Fatalf("expected validation error for negative stock, got %v", err)
	}
}

func TestUpdate_OwnershipEnforced(t *testing.T) {
	owned := &domain.Product{ID: "prod-1", SellerID: "seller-1", Name: "W"}
	repo := &stubRepo{product: owned, updated: owned}
	svc := New(repo, nil, nil)
	ctx := context.Background()

	if _, err := svc.Update(ctx, seller(), "prod-1", UpdateInput{}); err != nil {
		t.Fatalf("owner update: %v", err)
	}
	if _, err := svc.Update(ctx, admin(), "prod-1", UpdateInput{}); err != nil {
		t.Fatalf("admin update: %v", err)
	}

	foreign := &domain.User{ID: "seller-2", Role: domain.RoleSeller}
	if _, err := svc.Update(ctx, foreign, "prod-1", UpdateInput{}); !errors.Is(err, domain.ErrPermissionDenied) {
		t.Fatalf("foreign seller should be denied, got %v", err)
	}
	if _, err := svc.Update(ctx, customer(), "prod-1", UpdateInput{}); !errors.Is(err, domain.ErrPermissionDenied) {
		t.Fatalf("customer should be denied, got %v", err)
	}
}

func TestGet_ReadsThroughCache(t *testing.T) {
	stored := &domain.Product{ID: "prod-1", SellerID: "seller-1", Name: "W", Stock: 3}
	repo := &stubRepo{product: stored}
	c := newMemoryCache()
	svc := New(repo, c, nil)
	ctx := context.Background()

	got, err := svc.Get(ctx, "prod-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ID != "prod-1" {
		t.Fatalf("unexpected product %+v", got)
	}
	if _, ok := c.products["prod-1"]; !ok {
		t.Fatalf("expected product cached after miss")
	}

	// A second read must not touch the repository.
	repo.product = nil
	repo.getErr = errors.New("db down")
	got, err = svc.Get(ctx, "prod-1")
	if err != nil {
		t.Fatalf("cached get: %v", err)
	}
	if got.ID != "prod-1" {
		t.Fatalf("unexpected cached product %+v", got)
	}
}

func TestAdjustStock_InvalidatesCache(t *testing.T) {
	stored := &domain.Product{ID: "prod-1", SellerID: "seller-1", Name: "W", Stock: 3}
	bumped := &domain.Product{ID: "prod-1", SellerID: "seller-1", Name: "W", Stock: 8}
	repo := &stubRepo{product: stored, adjusted: bumped}
	c := newMemoryCache()
	c.products["prod-1"] = stored
	svc := New(repo, c, nil)

	got, err := svc.AdjustStock(context.Background(), seller(), "prod-1", 5)
	if err != nil {
		t.Fatalf("adjust stock: %v", err)
	}
	if got.Stock != 8 {
		t.Fatalf("unexpected stock %d", got.Stock)
	}
	if repo.lastDelta != 5 {
		t.Fatalf("unexpected delta %d", repo.lastDelta)
	}
	if _, ok := c.products["prod-1"]; ok {
		t.Fatalf("stale cache entry should have been dropped")
	}
}

func TestAdjustStock_ZeroDelta(t *testing.T) {
	stored := &domain.Product{ID: "prod-1", SellerID: "seller-1", Name: "W"}
	svc := New(&stubRepo{product: stored}, nil, nil)

	var validationErr *domain.ValidationError
	if _, err := svc.AdjustStock(context.Background(), seller(), "prod-1", 0); !errors.As(err, &validationErr) {
		t.Fatalf("expected validation error for zero delta, got %v", err)
	}
}

func TestAdjustStock_PropagatesInsufficientStock(t *testing.T) {
	stored := &domain.Product{ID: "prod-1", SellerID: "seller-1", Name: "W", Stock: 2}
	repoErr := &domain.InsufficientStockError{ProductID: "prod-1", ProductName: "W", Requested: 5, Available: 2}
	svc := New(&stubRepo{product: stored, adjustErr: repoErr}, nil, nil)

	_, err := svc.AdjustStock(context.Background(), seller(), "prod-1", -5)
	var stockErr *domain.InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}
}
