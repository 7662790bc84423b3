package worker

import (
	"context"
	"encoding/json"

	kafkax "github.com/ariefcatur/go-storefront/internal/kafka"
	"github.com/ariefcatur/go-storefront/internal/store"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type OrderGetter interface {
	Get(ctx context.Context, id int64) (store.Order, error)
}

type Cache interface {
	Set(ctx context.Context, id int64, body []byte)
}

type Deduper interface {
	Seen(ctx context.Context, eventID string) (bool, error)
	Mark(ctx context.Context, eventID string) error
}

// Service consumes order.placed events and warms the order cache so the
// first post-checkout poll never hits the database.
type Service struct {
	Orders OrderGetter
	Dedup  Deduper
	Cache  Cache
	Log    *zap.Logger
}

func (s *Service) HandleOrderPlaced(ctx context.Context, m kafkago.Message) error {
	var env store.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}
	if env.EventType != store.EventOrderPlaced {
		return nil
	}

	// redelivery is normal under rebalancing
	if seen, _ := s.Dedup.Seen(ctx, env.EventID); seen {
		return nil
	}

	p, err := kafkax.UnwrapPayload[store.OrderPlacedPayload](env.Payload)
	if err != nil {
		return err
	}

	order, err := s.Orders.Get(ctx, p.OrderID)
	if err != nil {
		if store.IsNotFound(err) {
			s.Log.Warn("order event for missing order", zap.Int64("order_id", p.OrderID))
			return nil
		}
		return err
	}

	body, err := json.Marshal(order)
	if err != nil {
		return err
	}
	s.Cache.Set(ctx, order.ID, body)

	// mark only after the cache is warm so a failed Get gets redelivered
	_ = s.Dedup.Mark(ctx, env.EventID)

	s.Log.Info("order placed",
		zap.Int64("order_id", order.ID),
		zap.Int64("customer_id", order.CustomerID),
		zap.Int("items", len(order.Items)),
		zap.String("trace_id", env.TraceID),
	)
	return nil
}
