package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AddressRepo struct{ DB *pgxpool.Pool }

type AddressInput struct {
	Street string `json:"street"`
	City   string `json:"city"`
}

func (in AddressInput) validate() error {
	if in.Street == "" {
		return Invalid("street is required")
	}
	if in.City == "" {
		return Invalid("city is required")
	}
	return nil
}

func (r *AddressRepo) ListByCustomer(ctx context.Context, customerID int64) ([]Address, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, customer_id, street, city
		FROM addresses WHERE customer_id=$1 ORDER BY id`, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Address
	for rows.Next() {
		var a Address
		if err := rows.Scan(&a.ID, &a.CustomerID, &a.Street, &a.City); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *AddressRepo) Create(ctx context.Context, customerID int64, in AddressInput) (Address, error) {
	if err := in.validate(); err != nil {
		return Address{}, err
	}
	var exists bool
	if err := r.DB.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM customers WHERE id=$1)`, customerID).Scan(&exists); err != nil {
		return Address{}, err
	}
	if !exists {
		return Address{}, NotFound("customer")
	}
	var a Address
	err := r.DB.QueryRow(ctx, `
		INSERT INTO addresses(customer_id, street, city)
		VALUES ($1, $2, $3)
		RETURNING id, customer_id, street, city`,
		customerID, in.Street, in.City).
		Scan(&a.ID, &a.CustomerID, &a.Street, &a.City)
	return a, err
}

func (r *AddressRepo) Update(ctx context.Context, customerID, id int64, in AddressInput) (Address, error) {
	if err := in.validate(); err != nil {
		return Address{}, err
	}
	var a Address
	err := r.DB.QueryRow(ctx, `
		UPDATE addresses SET street=$3, city=$4
		WHERE id=$2 AND customer_id=$1
		RETURNING id, customer_id, street, city`,
		customerID, id, in.Street, in.City).
		Scan(&a.ID, &a.CustomerID, &a.Street, &a.City)
	if errors.Is(err, pgx.ErrNoRows) {
		return Address{}, NotFound("address")
	}
	return a, err
}

func (r *AddressRepo) Delete(ctx context.Context, customerID, id int64) error {
	ct, err := r.DB.Exec(ctx, `DELETE FROM addresses WHERE id=$2 AND customer_id=$1`, customerID, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return NotFound("address")
	}
	return nil
}
