package product

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"

	"marketplace-backend/internal/authz"
	"marketplace-backend/internal/cache"
	"marketplace-backend/internal/domain"
	productrepo "marketplace-backend/internal/repository/product"
)

type Service struct {
	repo   productrepo.Repository
	cache  cache.ProductCache
	logger *log.Logger
}

// New creates a product Service. productCache may be nil, which disables
// caching.
func New(repo productrepo.Repository, productCache cache.ProductCache, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{repo: repo, cache: productCache, logger: logger}
}

type CreateInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	PriceCents  int64  `json:"price_cents"`
	Currency    string `json:"currency"`
	Stock       int    `json:"stock"`
}

type UpdateInput struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	PriceCents  *int64  `json:"price_cents"`
}

func (s *Service) List(ctx context.Context) ([]domain.Product, error) {
	return s.repo.List(ctx)
}

// Get serves from the cache when possible and falls back to the database.
// Cache failures are logged and otherwise invisible to the caller.
func (s *Service) Get(ctx context.Context, id string) (*domain.Product, error) {
	if s.cache != nil {
		if p, err := s.cache.Get(ctx, id); err == nil {
			return p, nil
		} else if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.Printf("product service: cache get id=%s error=%v", id, err)
		}
	}
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, p); err != nil {
			s.logger.Printf("product service: cache set id=%s error=%v", id, err)
		}
	}
	return p, nil
}

func (s *Service) Create(ctx context.Context, actor *domain.User, in CreateInput) (*domain.Product, error) {
	if !authz.CanManageProducts(actor) {
		return nil, domain.ErrPermissionDenied
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, domain.Validation("name required")
	}
	if in.PriceCents < 0 {
		return nil, domain.Validation("price must not be negative")
	}
	if in.Stock < 0 {
		return nil, domain.Validation("stock must not be negative")
	}
	currency := strings.TrimSpace(in.Currency)
	if currency == "" {
		currency = "USD"
	}
	return s.repo.Create(ctx, domain.Product{
		SellerID:    actor.ID,
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		PriceCents:  in.PriceCents,
		Currency:    currency,
		Stock:       in.Stock,
	})
}

func (s *Service) Update(ctx context.Context, actor *domain.User, id string, in UpdateInput) (*domain.Product, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !authz.CanEditProduct(actor, existing) {
		return nil, domain.ErrPermissionDenied
	}
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return nil, domain.Validation("name required")
	}
	if in.PriceCents != nil && *in.PriceCents < 0 {
		return nil, domain.Validation("price must not be negative")
	}
	updated, err := s.repo.Update(ctx, id, productrepo.UpdateInput{
		Name:        in.Name,
		Description: in.Description,
		PriceCents:  in.PriceCents,
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, id)
	return updated, nil
}

// AdjustStock is the only product-facing way to change stock outside
// checkout and cancellation; all three paths share the repository's
// adjust operation.
func (s *Service) AdjustStock(ctx context.Context, actor *domain.User, id string, delta int) (*domain.Product, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !authz.CanEditProduct(actor, existing) {
		return nil, domain.ErrPermissionDenied
	}
	if delta == 0 {
		return nil, domain.Validation("delta must not be zero")
	}
	updated, err := s.repo.AdjustStock(ctx, id, delta)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, id)
	return updated, nil
}

func (s *Service) invalidate(ctx context.Context, id string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, id); err != nil {
		s.logger.Printf("product service: cache delete id=%s error=%v", id, err)
	}
}
