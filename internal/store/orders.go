package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type OrderRepo struct{ DB *pgxpool.Pool }

// PlaceOrder converts a cart into an order inside one transaction: the
// customer is resolved, the cart row is locked, every cart item is copied
// into an order item with the product's price at this moment, and the cart
// is deleted. Any failure rolls the whole thing back, leaving the cart
// intact. The second of two racing calls finds the cart gone and gets a
// NotFoundError; there is never a partial or duplicate order.
func (r *OrderRepo) PlaceOrder(ctx context.Context, cartID uuid.UUID, userID int64) (Order, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Order{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var customerID int64
	err = tx.QueryRow(ctx, `SELECT id FROM customers WHERE user_id=$1`, userID).Scan(&customerID)
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, NotFound("customer")
	} else if err != nil {
		return Order{}, err
	}

	// Lock the cart row so concurrent placements of the same cart
	// serialize here; the loser re-checks after commit and sees no row.
	var one int
	err = tx.QueryRow(ctx, `SELECT 1 FROM carts WHERE id=$1 FOR UPDATE`, cartID).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, NotFound("cart")
	} else if err != nil {
		return Order{}, err
	}

	rows, err := tx.Query(ctx, `
		SELECT ci.product_id, ci.quantity, p.unit_price
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.cart_id = $1`, cartID)
	if err != nil {
		return Order{}, err
	}
	var items []OrderItem
	for rows.Next() {
		var it OrderItem
		if err := rows.Scan(&it.ProductID, &it.Quantity, &it.UnitPrice); err != nil {
			rows.Close()
			return Order{}, err
		}
		items = append(items, it)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return Order{}, err
	}
	if len(items) == 0 {
		return Order{}, Invalid("cart is empty")
	}

	var o Order
	var status string
	err = tx.QueryRow(ctx, `
		INSERT INTO orders(customer_id) VALUES ($1)
		RETURNING id, customer_id, placed_at, payment_status`, customerID).
		Scan(&o.ID, &o.CustomerID, &o.PlacedAt, &status)
	if err != nil {
		return Order{}, err
	}
	o.PaymentStatus = PaymentStatus(status)

	_, err = tx.CopyFrom(ctx,
		pgx.Identifier{"order_items"},
		[]string{"order_id", "product_id", "quantity", "unit_price"},
		pgx.CopyFromSlice(len(items), func(i int) ([]any, error) {
			it := items[i]
			return []any{o.ID, it.ProductID, it.Quantity, it.UnitPrice}, nil
		}))
	if err != nil {
		return Order{}, err
	}

	ct, err := tx.Exec(ctx, `DELETE FROM carts WHERE id=$1`, cartID)
	if err != nil {
		return Order{}, err
	}
	if ct.RowsAffected() != 1 {
		return Order{}, NotFound("cart")
	}

	o.Items, err = scanOrderItems(ctx, tx, o.ID)
	if err != nil {
		return Order{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Order{}, err
	}
	return o, nil
}

func scanOrderItems(ctx context.Context, q interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}, orderID int64) ([]OrderItem, error) {
	rows, err := q.Query(ctx, `
		SELECT id, product_id, quantity, unit_price
		FROM order_items WHERE order_id=$1 ORDER BY id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []OrderItem
	for rows.Next() {
		var it OrderItem
		if err := rows.Scan(&it.ID, &it.ProductID, &it.Quantity, &it.UnitPrice); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (r *OrderRepo) Get(ctx context.Context, id int64) (Order, error) {
	var o Order
	var status string
	err := r.DB.QueryRow(ctx, `
		SELECT id, customer_id, placed_at, payment_status
		FROM orders WHERE id=$1`, id).
		Scan(&o.ID, &o.CustomerID, &o.PlacedAt, &status)
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, NotFound("order")
	} else if err != nil {
		return Order{}, err
	}
	o.PaymentStatus = PaymentStatus(status)
	o.Items, err = scanOrderItems(ctx, r.DB, id)
	return o, err
}

// Owns reports whether the order belongs to the customer owning userID.
func (r *OrderRepo) Owns(ctx context.Context, id, userID int64) (bool, error) {
	var owned bool
	err := r.DB.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM orders o
			JOIN customers c ON c.id = o.customer_id
			WHERE o.id = $1 AND c.user_id = $2
		)`, id, userID).Scan(&owned)
	return owned, err
}

// ListByUser returns the orders of the customer owning userID, newest first.
func (r *OrderRepo) ListByUser(ctx context.Context, userID int64) ([]Order, error) {
	return r.list(ctx, `
		SELECT o.id, o.customer_id, o.placed_at, o.payment_status
		FROM orders o
		JOIN customers c ON c.id = o.customer_id
		WHERE c.user_id = $1
		ORDER BY o.placed_at DESC, o.id DESC`, userID)
}

func (r *OrderRepo) ListAll(ctx context.Context) ([]Order, error) {
	return r.list(ctx, `
		SELECT id, customer_id, placed_at, payment_status
		FROM orders ORDER BY placed_at DESC, id DESC`)
}

func (r *OrderRepo) list(ctx context.Context, sql string, args ...any) ([]Order, error) {
	rows, err := r.DB.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		var o Order
		var status string
		if err := rows.Scan(&o.ID, &o.CustomerID, &o.PlacedAt, &status); err != nil {
			return nil, err
		}
		o.PaymentStatus = PaymentStatus(status)
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		if out[i].Items, err = scanOrderItems(ctx, r.DB, out[i].ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// UpdatePaymentStatus moves an order along the Pending -> Complete|Failed
// transition table. Item rows are untouched: snapshot prices never change.
func (r *OrderRepo) UpdatePaymentStatus(ctx context.Context, id int64, to PaymentStatus) (Order, error) {
	if !to.Valid() {
		return Order{}, Invalid("unknown payment status %q", string(to))
	}

	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Order{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var current string
	err = tx.QueryRow(ctx, `SELECT payment_status FROM orders WHERE id=$1 FOR UPDATE`, id).Scan(&current)
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, NotFound("order")
	} else if err != nil {
		return Order{}, err
	}
	if !CanTransition(PaymentStatus(current), to) {
		return Order{}, Invalid("cannot move payment status from %s to %s", current, string(to))
	}

	var o Order
	var status string
	err = tx.QueryRow(ctx, `
		UPDATE orders SET payment_status=$2 WHERE id=$1
		RETURNING id, customer_id, placed_at, payment_status`, id, string(to)).
		Scan(&o.ID, &o.CustomerID, &o.PlacedAt, &status)
	if err != nil {
		return Order{}, err
	}
	o.PaymentStatus = PaymentStatus(status)
	if o.Items, err = scanOrderItems(ctx, tx, id); err != nil {
		return Order{}, err
	}
	return o, tx.Commit(ctx)
}

// Delete refuses while order items exist; orders are historical records.
func (r *OrderRepo) Delete(ctx context.Context, id int64) error {
	var n int
	if err := r.DB.QueryRow(ctx, `SELECT COUNT(*) FROM order_items WHERE order_id=$1`, id).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return Conflict("order has items and cannot be deleted")
	}
	ct, err := r.DB.Exec(ctx, `DELETE FROM orders WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return NotFound("order")
	}
	return nil
}
