package store

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Collection struct {
	ID                int64  `json:"id"`
	Title             string `json:"title"`
	FeaturedProductID *int64 `json:"featured_product_id,omitempty"`
	ProductsCount     int64  `json:"products_count"`
}

type Product struct {
	ID           int64           `json:"id"`
	Title        string          `json:"title"`
	Slug         string          `json:"slug"`
	Description  string          `json:"description,omitempty"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	Inventory    int             `json:"inventory"`
	CollectionID int64           `json:"collection_id"`
	LastUpdate   time.Time       `json:"last_update"`
}

// ProductSummary is the short form embedded in cart and order items.
type ProductSummary struct {
	ID        int64           `json:"id"`
	Title     string          `json:"title"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type Customer struct {
	ID         int64      `json:"id"`
	UserID     int64      `json:"user_id"`
	Phone      string     `json:"phone,omitempty"`
	BirthDate  *time.Time `json:"birth_date,omitempty"`
	Membership Membership `json:"membership"`
}

type Membership string

const (
	MembershipBronze Membership = "Bronze"
	MembershipSilver Membership = "Silver"
	MembershipGold   Membership = "Gold"
)

func (m Membership) Valid() bool {
	switch m {
	case MembershipBronze, MembershipSilver, MembershipGold:
		return true
	}
	return false
}

// Cart ids are random uuids, the only handle a client ever gets.
type Cart struct {
	ID         uuid.UUID       `json:"id"`
	CreatedAt  time.Time       `json:"created_at"`
	Items      []CartItem      `json:"items"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

type CartItem struct {
	ID         int64           `json:"id"`
	Product    ProductSummary  `json:"product"`
	Quantity   int             `json:"quantity"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

type Order struct {
	ID            int64         `json:"id"`
	CustomerID    int64         `json:"customer_id"`
	PlacedAt      time.Time     `json:"placed_at"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	Items         []OrderItem   `json:"items"`
}

// OrderItem.UnitPrice is the price captured when the order was placed.
// It is never recomputed from the product row.
type OrderItem struct {
	ID        int64           `json:"id"`
	ProductID int64           `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type Review struct {
	ID          int64     `json:"id"`
	ProductID   int64     `json:"product_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
}

type Address struct {
	ID         int64  `json:"id"`
	CustomerID int64  `json:"customer_id"`
	Street     string `json:"street"`
	City       string `json:"city"`
}
