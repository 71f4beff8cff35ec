package cache

import (
	"context"
	"errors"

	"marketplace-backend/internal/domain"
)

// ProductCache is a read-through cache in front of the product repository.
// Implementations are best-effort: callers fall back to the database on any
// error.
type ProductCache interface {
	Get(ctx context.Context, productID string) (*domain.Product, error)
	Set(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, productID string) error
}

var ErrCacheMiss = errors.New("cache miss")
