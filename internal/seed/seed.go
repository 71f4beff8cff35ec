package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

type userSeed struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Role      string
}

type productSeed struct {
	Name        string
	Description string
	PriceCents  int64
	Currency    string
	Stock       int
}

// Apply inserts basic seed data for manual testing. It is idempotent via ON CONFLICT.
func Apply(ctx context.Context, pool *pgxpool.Pool) error {
	users := []userSeed{
		{Email: "admin@example.com", Password: "admin-password", FirstName: "Ada", LastName: "Admin", Role: "admin"},
		{Email: "seller@example.com", Password: "seller-password", FirstName: "Sam", LastName: "Seller", Role: "seller"},
		{Email: "customer@example.com", Password: "customer-password", FirstName: "Cara", LastName: "Customer", Role: "customer"},
	}

	var sellerID string
	for _, u := range users {
		id, err := upsertUser(ctx, pool, u)
		if err != nil {
			return fmt.Errorf("upsert user %s: %w", u.Email, err)
		}
		if u.Role == "seller" {
			sellerID = id
		}
	}

	products := []productSeed{
		{
			Name:        "Demo T-Shirt",
			Description: "Soft cotton tee for demo purposes",
			PriceCents:  1999,
			Currency:    "USD",
			Stock:       50,
		},
		{
			Name:        "Demo Mug",
			Description: "Ceramic mug with demo logo",
			PriceCents:  1299,
			Currency:    "USD",
			Stock:       120,
		},
		{
			Name:        "Demo Poster",
			Description: "A2 poster, matte finish",
			PriceCents:  899,
			Currency:    "USD",
			Stock:       5,
		},
	}

	for _, p := range products {
		if err := upsertProduct(ctx, pool, sellerID, p); err != nil {
			return fmt.Errorf("upsert product %s: %w", p.Name, err)
		}
	}

	return nil
}

func upsertUser(ctx context.Context, pool *pgxpool.Pool, u userSeed) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	const q = `
INSERT INTO users (email, password_hash, first_name, last_name, role)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (email) DO UPDATE
SET first_name = EXCLUDED.first_name,
    last_name = EXCLUDED.last_name,
    role = EXCLUDED.role
RETURNING id::text
`
	var id string
	if err := pool.QueryRow(ctx, q, u.Email, string(hash), u.FirstName, u.LastName, u.Role).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

func upsertProduct(ctx context.Context, pool *pgxpool.Pool, sellerID string, p productSeed) error {
	// Products have no natural key, so match on (seller_id, name) by hand.
	const sel = `SELECT id::text FROM products WHERE seller_id = $1 AND name = $2`
	var id string
	err := pool.QueryRow(ctx, sel, sellerID, p.Name).Scan(&id)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return err
	}
	if err == nil {
		const upd = `
UPDATE products
SET description = $2, price_cents = $3, currency = $4, stock = $5, updated_at = now()
WHERE id = $1
`
		_, err = pool.Exec(ctx, upd, id, p.Description, p.PriceCents, p.Currency, p.Stock)
		return err
	}

	const ins = `
INSERT INTO products (seller_id, name, description, price_cents, currency, stock)
VALUES ($1, $2, $3, $4, $5, $6)
`
	_, err = pool.Exec(ctx, ins, sellerID, p.Name, p.Description, p.PriceCents, p.Currency, p.Stock)
	return err
}
