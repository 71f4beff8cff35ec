package product

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"marketplace-backend/internal/domain"
	"marketplace-backend/internal/migrate"
)

func testPool(ctx context.Context, t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	return pool
}

func resetTables(ctx context.Context, t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	if _, err := pool.Exec(ctx, `TRUNCATE user_activities, payments, order_items, orders, cart_items, carts, products, tokens, users RESTART IDENTITY CASCADE`); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}
}

func insertSeller(ctx context.Context, t *testing.T, pool *pgxpool.Pool) string {
	t.Helper()
	var id string
	if err := pool.QueryRow(ctx, `INSERT INTO users (email, password_hash, role) VALUES ('seller@example.com', 'x', 'seller') RETURNING id::text`).Scan(&id); err != nil {
		t.Fatalf("insert seller: %v", err)
	}
	return id
}

func TestCreateAndGet(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	resetTables(ctx, t, pool)
	sellerID := insertSeller(ctx, t, pool)

	repo := NewPostgres(pool, nil)
	created, err := repo.Create(ctx, domain.Product{
		SellerID:    sellerID,
		Name:        "Widget",
		Description: "A widget",
		PriceCents:  1999,
		Currency:    "USD",
		Stock:       4,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" || created.Stock != 4 {
		t.Fatalf("unexpected product %+v", created)
	}

	got, err := repo.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "Widget" || got.SellerID != sellerID {
		t.Fatalf("unexpected product %+v", got)
	}

	if _, err := repo.GetByID(ctx, "00000000-0000-0000-0000-000000000000"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdate_PatchesOnlyGivenFields(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	resetTables(ctx, t, pool)
	sellerID := insertSeller(ctx, t, pool)

	repo := NewPostgres(pool, nil)
	created, err := repo.Create(ctx, domain.Product{
		SellerID: sellerID, Name: "Widget", Description: "old", PriceCents: 1000, Currency: "USD", Stock: 4,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	newPrice := int64(1500)
	updated, err := repo.Update(ctx, created.ID, UpdateInput{PriceCents: &newPrice})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.PriceCents != 1500 {
		t.Fatalf("expected price 1500, got %d", updated.PriceCents)
	}
	if updated.Name != "Widget" || updated.Description != "old" {
		t.Fatalf("untouched fields must survive, got %+v", updated)
	}
}

func TestAdjustStock_GuardsAtZero(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	resetTables(ctx, t, pool)
	sellerID := insertSeller(ctx, t, pool)

	repo := NewPostgres(pool, nil)
	created, err := repo.Create(ctx, domain.Product{
		SellerID: sellerID, Name: "Widget", PriceCents: 1000, Currency: "USD", Stock: 3,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	bumped, err := repo.AdjustStock(ctx, created.ID, -3)
	if err != nil {
		t.Fatalf("adjust to zero: %v", err)
	}
	if bumped.Stock != 0 {
		t.Fatalf("expected stock 0, got %d", bumped.Stock)
	}

	_, err = repo.AdjustStock(ctx, created.ID, -1)
	var stockErr *domain.InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}
	if stockErr.Available != 0 {
		t.Fatalf("unexpected stock error %+v", stockErr)
	}

	if _, err := repo.AdjustStock(ctx, "00000000-0000-0000-0000-000000000000", 1); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
