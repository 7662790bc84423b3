package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type ProductRepo struct{ DB *pgxpool.Pool }

// ProductInput carries the writable fields of a product.
type ProductInput struct {
	Title        string          `json:"title"`
	Slug         string          `json:"slug"`
	Description  string          `json:"description"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	Inventory    int             `json:"inventory"`
	CollectionID int64           `json:"collection_id"`
}

func (in ProductInput) validate() error {
	if in.Title == "" {
		return Invalid("title is required")
	}
	if in.Slug == "" {
		return Invalid("slug is required")
	}
	if in.UnitPrice.LessThan(decimal.NewFromFloat(0.01)) {
		return Invalid("unit_price must be at least 0.01")
	}
	if in.Inventory < 0 {
		return Invalid("inventory cannot be negative")
	}
	return nil
}

const productCols = `id, title, slug, COALESCE(description, ''), unit_price, inventory, collection_id, last_update`

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Title, &p.Slug, &p.Description, &p.UnitPrice, &p.Inventory, &p.CollectionID, &p.LastUpdate)
	return p, err
}

func (r *ProductRepo) List(ctx context.Context) ([]Product, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+productCols+` FROM products ORDER BY title`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *ProductRepo) Get(ctx context.Context, id int64) (Product, error) {
	p, err := scanProduct(r.DB.QueryRow(ctx, `SELECT `+productCols+` FROM products WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, NotFound("product")
	}
	return p, err
}

func (r *ProductRepo) Create(ctx context.Context, in ProductInput) (Product, error) {
	if err := in.validate(); err != nil {
		return Product{}, err
	}
	if err := r.requireCollection(ctx, in.CollectionID); err != nil {
		return Product{}, err
	}
	p, err := scanProduct(r.DB.QueryRow(ctx, `
		INSERT INTO products(title, slug, description, unit_price, inventory, collection_id)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6)
		RETURNING `+productCols,
		in.Title, in.Slug, in.Description, in.UnitPrice, in.Inventory, in.CollectionID))
	return p, err
}

func (r *ProductRepo) Update(ctx context.Context, id int64, in ProductInput) (Product, error) {
	if err := in.validate(); err != nil {
		return Product{}, err
	}
	if err := r.requireCollection(ctx, in.CollectionID); err != nil {
		return Product{}, err
	}
	p, err := scanProduct(r.DB.QueryRow(ctx, `
		UPDATE products
		SET title=$2, slug=$3, description=NULLIF($4, ''), unit_price=$5,
		    inventory=$6, collection_id=$7, last_update=now()
		WHERE id=$1
		RETURNING `+productCols,
		id, in.Title, in.Slug, in.Description, in.UnitPrice, in.Inventory, in.CollectionID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, NotFound("product")
	}
	return p, err
}

// Delete refuses while the product appears in any order, so historical
// order items keep a valid product reference.
func (r *ProductRepo) Delete(ctx context.Context, id int64) error {
	var n int
	if err := r.DB.QueryRow(ctx, `SELECT COUNT(*) FROM order_items WHERE product_id=$1`, id).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return Conflict("product appears in orders and cannot be deleted")
	}
	ct, err := r.DB.Exec(ctx, `DELETE FROM products WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return NotFound("product")
	}
	return nil
}

func (r *ProductRepo) requireCollection(ctx context.Context, id int64) error {
	var exists bool
	if err := r.DB.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM collections WHERE id=$1)`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return Invalid("unknown collection_id %d", id)
	}
	return nil
}
