package activity

import (
	"context"

	"marketplace-backend/internal/domain"
)

type Repository interface {
	Record(ctx context.Context, a domain.Activity) error
}
