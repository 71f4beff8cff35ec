package order

import (
	"context"
	"errors"
	"io"
	"log"

	"marketplace-backend/internal/domain"
	productrepo "marketplace-backend/internal/repository/product"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

const orderColumns = `id::text, customer_id::text, status, total_cents, currency, shipping_address, tracking_number, notes, created_at, updated_at`

type checkoutLine struct {
	productID  string
	name       string
	quantity   int
	priceCents int64
	stock      int
}

func (r *postgresRepo) CheckoutFromCart(ctx context.Context, in CheckoutInput) (*domain.Order, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	// Lock the product rows behind the cart in a deterministic order so two
	// checkouts touching the same products serialize instead of deadlocking.
	const linesQuery = `
SELECT ci.product_id::text, p.name, ci.quantity, p.price_cents, p.stock
FROM cart_items ci
JOIN products p ON p.id = ci.product_id
WHERE ci.cart_id = $1
ORDER BY ci.product_id
FOR UPDATE OF p
`
	rows, err := tx.Query(ctx, linesQuery, in.CartID)
	if err != nil {
		return nil, err
	}
	var lines []checkoutLine
	for rows.Next() {
		var l checkoutLine
		if err := rows.Scan(&l.productID, &l.name, &l.quantity, &l.priceCents, &l.stock); err != nil {
			rows.Close()
			return nil, err
		}
		lines = append(lines, l)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, domain.ErrEmptyCart
	}

	// Second stock check, now under row locks: the validation pass before
	// this transaction may be stale.
	var totalCents int64
	for _, l := range lines {
		if l.stock < l.quantity {
			r.logger.Printf("order repo: checkout cart_id=%s product_id=%s requested=%d available=%d", in.CartID, l.productID, l.quantity, l.stock)
			return nil, &domain.InsufficientStockError{
				ProductID:   l.productID,
				ProductName: l.name,
				Requested:   l.quantity,
				Available:   l.stock,
			}
		}
		totalCents += l.priceCents * int64(l.quantity)
	}

	const orderInsert = `
INSERT INTO orders (customer_id, status, total_cents, shipping_address, notes)
VALUES ($1, 'pending', $2, $3, $4)
RETURNING id::text
`
	var orderID string
	if err := tx.QueryRow(ctx, orderInsert, in.CustomerID, totalCents, in.ShippingAddress, in.Notes).Scan(&orderID); err != nil {
		return nil, err
	}

	const itemInsert = `
INSERT INTO order_items (order_id, product_id, product_name, quantity, unit_price_cents, total_cents)
VALUES ($1, $2, $3, $4, $5, $6)
`
	for _, l := range lines {
		lineTotal := l.priceCents * int64(l.quantity)
		if _, err := tx.Exec(ctx, itemInsert, orderID, l.productID, l.name, l.quantity, l.priceCents, lineTotal); err != nil {
			return nil, err
		}
		if _, err := productrepo.AdjustStockTx(ctx, tx, l.productID, -l.quantity); err != nil {
			return nil, err
		}
	}

	const paymentInsert = `
INSERT INTO payments (order_id, amount_cents, method, status, transaction_id)
VALUES ($1, $2, $3, 'pending', $4)
`
	if _, err := tx.Exec(ctx, paymentInsert, orderID, totalCents, in.Method, uuid.NewString()); err != nil {
		return nil, err
	}

	// The cart is emptied, never deleted.
	if _, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, in.CartID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	r.logger.Printf("order repo: checkout customer_id=%s order_id=%s total_cents=%d items=%d", in.CustomerID, orderID, totalCents, len(lines))
	return r.GetByID(ctx, orderID)
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	const q = `
SELECT ` + orderColumns + `
FROM orders
WHERE id = $1
`
	order, err := scanOrder(r.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("order repo: get id=%s error=%v", id, err)
		return nil, err
	}

	orders := []domain.Order{*order}
	if err := r.attachItems(ctx, orders); err != nil {
		return nil, err
	}
	if err := r.attachPayments(ctx, orders); err != nil {
		return nil, err
	}
	return &orders[0], nil
}

func (r *postgresRepo) ListAll(ctx context.Context) ([]domain.Order, error) {
	const q = `
SELECT ` + orderColumns + `
FROM orders
ORDER BY created_at DESC
`
	return r.queryOrders(ctx, q)
}

func (r *postgresRepo) ListByCustomer(ctx context.Context, customerID string) ([]domain.Order, error) {
	const q = `
SELECT ` + orderColumns + `
FROM orders
WHERE customer_id = $1
ORDER BY created_at DESC
`
	return r.queryOrders(ctx, q, customerID)
}

func (r *postgresRepo) ListBySeller(ctx context.Context, sellerID string) ([]domain.Order, error) {
	const q = `
SELECT DISTINCT o.id::text, o.customer_id::text, o.status, o.total_cents, o.currency,
       o.shipping_address, o.tracking_number, o.notes, o.created_at, o.updated_at
FROM orders o
JOIN order_items oi ON oi.order_id = o.id
JOIN products p ON p.id = oi.product_id
WHERE p.seller_id = $1
ORDER BY o.created_at DESC
`
	return r.queryOrders(ctx, q, sellerID)
}

func (r *postgresRepo) UpdateStatus(ctx context.Context, id string, in StatusUpdateInput) (*domain.Order, error) {
	const q = `
UPDATE orders
SET status = COALESCE($3, status),
    tracking_number = COALESCE($4, tracking_number),
    notes = COALESCE($5, notes),
    updated_at = now()
WHERE id = $1 AND status = $2
`
	cmd, err := r.pool.Exec(ctx, q, id, in.From, in.Status, in.TrackingNumber, in.Notes)
	if err != nil {
		r.logger.Printf("order repo: update status id=%s error=%v", id, err)
		return nil, err
	}
	if cmd.RowsAffected() == 0 {
		// Gone, or moved to another status since the caller looked.
		return nil, domain.ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *postgresRepo) Cancel(ctx context.Context, id string) (*domain.Order, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var status domain.OrderStatus
	err = tx.QueryRow(ctx, `SELECT status FROM orders WHERE id = $1 FOR UPDATE`, id).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if !status.Cancellable() {
		return nil, &domain.InvalidStateError{From: status}
	}

	if _, err := tx.Exec(ctx, `UPDATE orders SET status = 'cancelled', updated_at = now() WHERE id = $1`, id); err != nil {
		return nil, err
	}

	// Compensating action: give back what checkout took.
	const itemsQuery = `
SELECT product_id::text, quantity
FROM order_items
WHERE order_id = $1
ORDER BY product_id
`
	rows, err := tx.Query(ctx, itemsQuery, id)
	if err != nil {
		return nil, err
	}
	type restore struct {
		productID string
		quantity  int
	}
	var restores []restore
	for rows.Next() {
		var it restore
		if err := rows.Scan(&it.productID, &it.quantity); err != nil {
			rows.Close()
			return nil, err
		}
		restores = append(restores, it)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, it := range restores {
		if _, err := productrepo.AdjustStockTx(ctx, tx, it.productID, it.quantity); err != nil {
			return nil, err
		}
	}

	// A missing payment is tolerated: zero rows affected is fine.
	if _, err := tx.Exec(ctx, `UPDATE payments SET status = 'failed', updated_at = now() WHERE order_id = $1`, id); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	r.logger.Printf("order repo: cancelled id=%s restored_items=%d", id, len(restores))
	return r.GetByID(ctx, id)
}

func (r *postgresRepo) SellerHasItems(ctx context.Context, orderID, sellerID string) (bool, error) {
	const q = `
SELECT EXISTS (
	SELECT 1
	FROM order_items oi
	JOIN products p ON p.id = oi.product_id
	WHERE oi.order_id = $1 AND p.seller_id = $2
)
`
	var exists bool
	if err := r.pool.QueryRow(ctx, q, orderID, sellerID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *postgresRepo) queryOrders(ctx context.Context, q string, args ...interface{}) ([]domain.Order, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		r.logger.Printf("order repo: list error=%v", err)
		return nil, err
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.attachItems(ctx, orders); err != nil {
		return nil, err
	}
	if err := r.attachPayments(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *postgresRepo) attachItems(ctx context.Context, orders []domain.Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]string, len(orders))
	byID := make(map[string]*domain.Order, len(orders))
	for i := range orders {
		ids[i] = orders[i].ID
		byID[orders[i].ID] = &orders[i]
	}

	const q = `
SELECT id::text, order_id::text, product_id::text, product_name, quantity, unit_price_cents, total_cents
FROM order_items
WHERE order_id = ANY($1)
ORDER BY product_name ASC
`
	rows, err := r.pool.Query(ctx, q, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductID,
			&item.ProductName,
			&item.Quantity,
			&item.UnitPriceCents,
			&item.TotalCents,
		); err != nil {
			return err
		}
		if o, ok := byID[item.OrderID]; ok {
			o.Items = append(o.Items, item)
		}
	}
	return rows.Err()
}

func (r *postgresRepo) attachPayments(ctx context.Context, orders []domain.Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]string, len(orders))
	byID := make(map[string]*domain.Order, len(orders))
	for i := range orders {
		ids[i] = orders[i].ID
		byID[orders[i].ID] = &orders[i]
	}

	const q = `
SELECT id::text, order_id::text, amount_cents, method, status, transaction_id, created_at, updated_at
FROM payments
WHERE order_id = ANY($1)
`
	rows, err := r.pool.Query(ctx, q, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var p domain.Payment
		if err := rows.Scan(
			&p.ID,
			&p.OrderID,
			&p.AmountCents,
			&p.Method,
			&p.Status,
			&p.TransactionID,
			&p.CreatedAt,
			&p.UpdatedAt,
		); err != nil {
			return err
		}
		if o, ok := byID[p.OrderID]; ok {
			payment := p
			o.Payment = &payment
		}
	}
	return rows.Err()
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var o domain.Order
	if err := row.Scan(
		&o.ID,
		&o.CustomerID,
		&o.Status,
		&o.TotalCents,
		&o.Currency,
		&o.ShippingAddress,
		&o.TrackingNumber,
		&o.Notes,
		&o.CreatedAt,
		&o.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &o, nil
}
