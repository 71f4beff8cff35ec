package activity

import (
	"context"

	"marketplace-backend/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) Record(ctx context.Context, a domain.Activity) error {
	const q = `
INSERT INTO user_activities (user_id, type, product_id, quantity)
VALUES (NULLIF($1, '')::uuid, $2, NULLIF($3, '')::uuid, $4)
`
	_, err := r.pool.Exec(ctx, q, a.UserID, a.Type, a.ProductID, a.Quantity)
	return err
}
