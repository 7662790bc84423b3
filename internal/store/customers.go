package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CustomerRepo struct{ DB *pgxpool.Pool }

type CustomerInput struct {
	Phone      string     `json:"phone"`
	BirthDate  *time.Time `json:"birth_date,omitempty"`
	Membership Membership `json:"membership"`
}

const customerCols = `id, user_id, COALESCE(phone, ''), birth_date, membership`

func scanCustomer(row pgx.Row) (Customer, error) {
	var c Customer
	var membership string
	err := row.Scan(&c.ID, &c.UserID, &c.Phone, &c.BirthDate, &membership)
	c.Membership = Membership(membership)
	return c, err
}

func (r *CustomerRepo) List(ctx context.Context) ([]Customer, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+customerCols+` FROM customers ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *CustomerRepo) Get(ctx context.Context, id int64) (Customer, error) {
	c, err := scanCustomer(r.DB.QueryRow(ctx, `SELECT `+customerCols+` FROM customers WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Customer{}, NotFound("customer")
	}
	return c, err
}

// GetOrCreateByUserID backs /customers/me: the first request of a fresh
// identity mints its customer row. The upsert no-op keeps concurrent
// first requests from erroring on the unique user_id.
func (r *CustomerRepo) GetOrCreateByUserID(ctx context.Context, userID int64) (Customer, error) {
	_, err := r.DB.Exec(ctx, `
		INSERT INTO customers(user_id) VALUES ($1)
		ON CONFLICT (user_id) DO NOTHING`, userID)
	if err != nil {
		return Customer{}, err
	}
	return scanCustomer(r.DB.QueryRow(ctx, `SELECT `+customerCols+` FROM customers WHERE user_id=$1`, userID))
}

func (r *CustomerRepo) UpdateByUserID(ctx context.Context, userID int64, in CustomerInput) (Customer, error) {
	if in.Membership != "" && !in.Membership.Valid() {
		return Customer{}, Invalid("unknown membership %q", string(in.Membership))
	}
	membership := in.Membership
	if membership == "" {
		membership = MembershipBronze
	}
	c, err := scanCustomer(r.DB.QueryRow(ctx, `
		UPDATE customers
		SET phone=NULLIF($2, ''), birth_date=$3, membership=$4
		WHERE user_id=$1
		RETURNING `+customerCols,
		userID, in.Phone, in.BirthDate, string(membership)))
	if errors.Is(err, pgx.ErrNoRows) {
		return Customer{}, NotFound("customer")
	}
	return c, err
}
