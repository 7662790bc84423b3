package store

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

const (
	EventOrderPlaced = "OrderPlaced"
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

type OrderPlacedItem struct {
	ProductID int64           `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type OrderPlacedPayload struct {
	OrderID       int64             `json:"order_id"`
	CustomerID    int64             `json:"customer_id"`
	PaymentStatus PaymentStatus     `json:"payment_status"`
	PlacedAt      time.Time         `json:"placed_at"`
	Items         []OrderPlacedItem `json:"items"`
}

const (
	TopicOrderPlaced = "order.placed"
)

// Partition key = order id, so every event of one order keeps its ordering.
func PartitionKey(orderID int64) []byte {
	return []byte(strconv.FormatInt(orderID, 10))
}
