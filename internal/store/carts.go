package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type CartRepo struct{ DB *pgxpool.Pool }

func (r *CartRepo) Create(ctx context.Context) (Cart, error) {
	var c Cart
	err := r.DB.QueryRow(ctx, `
		INSERT INTO carts(id) VALUES ($1)
		RETURNING id, created_at`, uuid.New()).
		Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return Cart{}, err
	}
	c.Items = []CartItem{}
	c.TotalPrice = decimal.Zero
	return c, nil
}

func (r *CartRepo) Get(ctx context.Context, id uuid.UUID) (Cart, error) {
	var c Cart
	err := r.DB.QueryRow(ctx, `SELECT id, created_at FROM carts WHERE id=$1`, id).
		Scan(&c.ID, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Cart{}, NotFound("cart")
	} else if err != nil {
		return Cart{}, err
	}
	if c.Items, err = r.ListItems(ctx, id); err != nil {
		return Cart{}, err
	}
	c.TotalPrice = cartTotal(c.Items)
	return c, nil
}

func (r *CartRepo) Delete(ctx context.Context, id uuid.UUID) error {
	ct, err := r.DB.Exec(ctx, `DELETE FROM carts WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return NotFound("cart")
	}
	return nil
}

func (r *CartRepo) ListItems(ctx context.Context, cartID uuid.UUID) ([]CartItem, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT ci.id, ci.quantity, p.id, p.title, p.unit_price
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.cart_id = $1
		ORDER BY ci.id`, cartID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []CartItem{}
	for rows.Next() {
		var it CartItem
		if err := rows.Scan(&it.ID, &it.Quantity, &it.Product.ID, &it.Product.Title, &it.Product.UnitPrice); err != nil {
			return nil, err
		}
		it.TotalPrice = it.Product.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
		items = append(items, it)
	}
	return items, rows.Err()
}

// AddItem adds a product to the cart, or bumps the quantity when the
// product is already there. The (cart_id, product_id) unique constraint
// plus the upsert make concurrent adds collapse into one row.
func (r *CartRepo) AddItem(ctx context.Context, cartID uuid.UUID, productID int64, quantity int) (CartItem, error) {
	if quantity < 1 {
		return CartItem{}, Invalid("quantity must be at least 1")
	}
	if err := r.requireCart(ctx, cartID); err != nil {
		return CartItem{}, err
	}

	var exists bool
	if err := r.DB.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM products WHERE id=$1)`, productID).Scan(&exists); err != nil {
		return CartItem{}, err
	}
	if !exists {
		return CartItem{}, NotFound("product")
	}

	var itemID int64
	err := r.DB.QueryRow(ctx, `
		INSERT INTO cart_items(cart_id, product_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (cart_id, product_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
		RETURNING id`, cartID, productID, quantity).Scan(&itemID)
	if err != nil {
		return CartItem{}, err
	}
	return r.getItem(ctx, cartID, itemID)
}

func (r *CartRepo) UpdateItemQuantity(ctx context.Context, cartID uuid.UUID, itemID int64, quantity int) (CartItem, error) {
	if quantity < 1 {
		return CartItem{}, Invalid("quantity must be at least 1")
	}
	ct, err := r.DB.Exec(ctx, `
		UPDATE cart_items SET quantity=$3 WHERE id=$2 AND cart_id=$1`,
		cartID, itemID, quantity)
	if err != nil {
		return CartItem{}, err
	}
	if ct.RowsAffected() == 0 {
		return CartItem{}, NotFound("cart item")
	}
	return r.getItem(ctx, cartID, itemID)
}

func (r *CartRepo) RemoveItem(ctx context.Context, cartID uuid.UUID, itemID int64) error {
	ct, err := r.DB.Exec(ctx, `DELETE FROM cart_items WHERE id=$2 AND cart_id=$1`, cartID, itemID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return NotFound("cart item")
	}
	return nil
}

func (r *CartRepo) getItem(ctx context.Context, cartID uuid.UUID, itemID int64) (CartItem, error) {
	var it CartItem
	err := r.DB.QueryRow(ctx, `
		SELECT ci.id, ci.quantity, p.id, p.title, p.unit_price
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.id=$2 AND ci.cart_id=$1`, cartID, itemID).
		Scan(&it.ID, &it.Quantity, &it.Product.ID, &it.Product.Title, &it.Product.UnitPrice)
	if errors.Is(err, pgx.ErrNoRows) {
		return CartItem{}, NotFound("cart item")
	} else if err != nil {
		return CartItem{}, err
	}
	it.TotalPrice = it.Product.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
	return it, nil
}

func (r *CartRepo) requireCart(ctx context.Context, cartID uuid.UUID) error {
	var exists bool
	if err := r.DB.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM carts WHERE id=$1)`, cartID).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return NotFound("cart")
	}
	return nil
}

func cartTotal(items []CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.TotalPrice)
	}
	return total
}
