package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ReviewRepo struct{ DB *pgxpool.Pool }

type ReviewInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (r *ReviewRepo) ListByProduct(ctx context.Context, productID int64) ([]Review, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, product_id, name, description, review_date
		FROM reviews WHERE product_id=$1 ORDER BY review_date DESC, id DESC`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Review
	for rows.Next() {
		var rv Review
		if err := rows.Scan(&rv.ID, &rv.ProductID, &rv.Name, &rv.Description, &rv.Date); err != nil {
			return nil, err
		}
		out = append(out, rv)
	}
	return out, rows.Err()
}

func (r *ReviewRepo) Create(ctx context.Context, productID int64, in ReviewInput) (Review, error) {
	if in.Description == "" {
		return Review{}, Invalid("description is required")
	}
	var exists bool
	if err := r.DB.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM products WHERE id=$1)`, productID).Scan(&exists); err != nil {
		return Review{}, err
	}
	if !exists {
		return Review{}, NotFound("product")
	}
	var rv Review
	err := r.DB.QueryRow(ctx, `
		INSERT INTO reviews(product_id, name, description)
		VALUES ($1, $2, $3)
		RETURNING id, product_id, name, description, review_date`,
		productID, in.Name, in.Description).
		Scan(&rv.ID, &rv.ProductID, &rv.Name, &rv.Description, &rv.Date)
	return rv, err
}

func (r *ReviewRepo) Update(ctx context.Context, productID, id int64, in ReviewInput) (Review, error) {
	if in.Description == "" {
		return Review{}, Invalid("description is required")
	}
	var rv Review
	err := r.DB.QueryRow(ctx, `
		UPDATE reviews SET name=$3, description=$4
		WHERE id=$2 AND product_id=$1
		RETURNING id, product_id, name, description, review_date`,
		productID, id, in.Name, in.Description).
		Scan(&rv.ID, &rv.ProductID, &rv.Name, &rv.Description, &rv.Date)
	if errors.Is(err, pgx.ErrNoRows) {
		return Review{}, NotFound("review")
	}
	return rv, err
}

func (r *ReviewRepo) Delete(ctx context.Context, productID, id int64) error {
	ct, err := r.DB.Exec(ctx, `DELETE FROM reviews WHERE id=$2 AND product_id=$1`, productID, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return NotFound("review")
	}
	return nil
}
