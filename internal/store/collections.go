package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CollectionRepo struct{ DB *pgxpool.Pool }

type CollectionInput struct {
	Title             string `json:"title"`
	FeaturedProductID *int64 `json:"featured_product_id,omitempty"`
}

// The products_count column is annotated onto every read, like the list
// and detail views of the storefront always showed it.
const collectionQuery = `
	SELECT c.id, c.title, c.featured_product_id, COUNT(p.id)
	FROM collections c
	LEFT JOIN products p ON p.collection_id = c.id`

func (r *CollectionRepo) List(ctx context.Context) ([]Collection, error) {
	rows, err := r.DB.Query(ctx, collectionQuery+`
		GROUP BY c.id ORDER BY c.title`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Collection
	for rows.Next() {
		var c Collection
		if err := rows.Scan(&c.ID, &c.Title, &c.FeaturedProductID, &c.ProductsCount); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *CollectionRepo) Get(ctx context.Context, id int64) (Collection, error) {
	var c Collection
	err := r.DB.QueryRow(ctx, collectionQuery+`
		WHERE c.id=$1 GROUP BY c.id`, id).
		Scan(&c.ID, &c.Title, &c.FeaturedProductID, &c.ProductsCount)
	if errors.Is(err, pgx.ErrNoRows) {
		return Collection{}, NotFound("collection")
	}
	return c, err
}

func (r *CollectionRepo) Create(ctx context.Context, in CollectionInput) (Collection, error) {
	if in.Title == "" {
		return Collection{}, Invalid("title is required")
	}
	var id int64
	err := r.DB.QueryRow(ctx, `
		INSERT INTO collections(title, featured_product_id)
		VALUES ($1, $2) RETURNING id`, in.Title, in.FeaturedProductID).Scan(&id)
	if err != nil {
		return Collection{}, err
	}
	return r.Get(ctx, id)
}

func (r *CollectionRepo) Update(ctx context.Context, id int64, in CollectionInput) (Collection, error) {
	if in.Title == "" {
		return Collection{}, Invalid("title is required")
	}
	ct, err := r.DB.Exec(ctx, `
		UPDATE collections SET title=$2, featured_product_id=$3 WHERE id=$1`,
		id, in.Title, in.FeaturedProductID)
	if err != nil {
		return Collection{}, err
	}
	if ct.RowsAffected() == 0 {
		return Collection{}, NotFound("collection")
	}
	return r.Get(ctx, id)
}

func (r *CollectionRepo) Delete(ctx context.Context, id int64) error {
	var n int
	if err := r.DB.QueryRow(ctx, `SELECT COUNT(*) FROM products WHERE collection_id=$1`, id).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return Conflict("collection has products and cannot be deleted")
	}
	ct, err := r.DB.Exec(ctx, `DELETE FROM collections WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return NotFound("collection")
	}
	return nil
}
