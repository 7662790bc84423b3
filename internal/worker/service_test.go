package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	kafkax "github.com/ariefcatur/go-storefront/internal/kafka"
	"github.com/ariefcatur/go-storefront/internal/store"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeOrderGetter struct {
	order store.Order
	err   error
	calls int
}

func (f *fakeOrderGetter) Get(_ context.Context, id int64) (store.Order, error) {
	f.calls++
	if f.err != nil {
		return store.Order{}, f.err
	}
	if id != f.order.ID {
		return store.Order{}, store.NotFound("order")
	}
	return f.order, nil
}

type fakeDedup struct {
	seen map[string]bool
}

func (f *fakeDedup) Seen(_ context.Context, eventID string) (bool, error) {
	return f.seen[eventID], nil
}

func (f *fakeDedup) Mark(_ context.Context, eventID string) error {
	f.seen[eventID] = true
	return nil
}

type fakeCache struct {
	entries map[int64][]byte
}

func (f *fakeCache) Set(_ context.Context, id int64, body []byte) {
	f.entries[id] = body
}

func placedMessage(t *testing.T, eventID string, orderID int64) kafkago.Message {
	t.Helper()
	env := store.Envelope{
		EventID:      eventID,
		EventType:    store.EventOrderPlaced,
		EventVersion: 1,
		OccurredAt:   time.Now().UTC(),
		Producer:     "storefront-api",
		Payload: kafkax.MustMarshal(store.OrderPlacedPayload{
			OrderID:       orderID,
			CustomerID:    7,
			PaymentStatus: store.PaymentPending,
			PlacedAt:      time.Now().UTC(),
		}),
	}
	return kafkago.Message{Key: store.PartitionKey(orderID), Value: kafkax.MustMarshal(env)}
}

func newServiceRig(order store.Order) (*Service, *fakeOrderGetter, *fakeDedup, *fakeCache) {
	orders := &fakeOrderGetter{order: order}
	dedup := &fakeDedup{seen: map[string]bool{}}
	cache := &fakeCache{entries: map[int64][]byte{}}
	svc := &Service{Orders: orders, Dedup: dedup, Cache: cache, Log: zap.NewNop()}
	return svc, orders, dedup, cache
}

func TestHandleOrderPlacedWarmsCache(t *testing.T) {
	order := store.Order{ID: 42, CustomerID: 7, PaymentStatus: store.PaymentPending}
	svc, _, dedup, cache := newServiceRig(order)

	err := svc.HandleOrderPlaced(context.Background(), placedMessage(t, "evt-1", 42))
	require.NoError(t, err)

	body, ok := cache.entries[42]
	require.True(t, ok)
	var cached store.Order
	require.NoError(t, json.Unmarshal(body, &cached))
	assert.Equal(t, order.ID, cached.ID)
	assert.Equal(t, order.CustomerID, cached.CustomerID)
	assert.True(t, dedup.seen["evt-1"])
}

func TestHandleOrderPlacedSkipsRedelivery(t *testing.T) {
	svc, orders, _, cache := newServiceRig(store.Order{ID: 42, CustomerID: 7})

	msg := placedMessage(t, "evt-1", 42)
	require.NoError(t, svc.HandleOrderPlaced(context.Background(), msg))
	require.NoError(t, svc.HandleOrderPlaced(context.Background(), msg))

	assert.Equal(t, 1, orders.calls)
	assert.Len(t, cache.entries, 1)
}

func TestHandleOrderPlacedLeavesFailuresUnmarked(t *testing.T) {
	svc, orders, dedup, cache := newServiceRig(store.Order{ID: 42})
	orders.err = errors.New("connection reset")

	msg := placedMessage(t, "evt-1", 42)
	require.Error(t, svc.HandleOrderPlaced(context.Background(), msg))
	assert.False(t, dedup.seen["evt-1"])
	assert.Empty(t, cache.entries)

	// redelivery after the transient failure still warms the cache
	orders.err = nil
	require.NoError(t, svc.HandleOrderPlaced(context.Background(), msg))
	assert.True(t, dedup.seen["evt-1"])
	assert.Contains(t, cache.entries, int64(42))
}

func TestHandleOrderPlacedMissingOrder(t *testing.T) {
	svc, _, _, cache := newServiceRig(store.Order{ID: 42})

	err := svc.HandleOrderPlaced(context.Background(), placedMessage(t, "evt-2", 9000))
	require.NoError(t, err)
	assert.Empty(t, cache.entries)
}

func TestHandleOrderPlacedIgnoresOtherEventTypes(t *testing.T) {
	svc, orders, _, _ := newServiceRig(store.Order{ID: 42})

	env := store.Envelope{EventID: "evt-3", EventType: "OrderShipped", Payload: json.RawMessage(`{}`)}
	require.NoError(t, svc.HandleOrderPlaced(context.Background(), kafkago.Message{Value: kafkax.MustMarshal(env)}))
	assert.Zero(t, orders.calls)
}

func TestHandleOrderPlacedRejectsGarbage(t *testing.T) {
	svc, _, _, _ := newServiceRig(store.Order{ID: 42})

	err := svc.HandleOrderPlaced(context.Background(), kafkago.Message{Value: []byte("not json")})
	assert.Error(t, err)
}
