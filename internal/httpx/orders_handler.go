package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/ariefcatur/go-storefront/internal/kafka"
	"github.com/ariefcatur/go-storefront/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// OrderStore is the slice of the storage layer order handlers need.
type OrderStore interface {
	PlaceOrder(ctx context.Context, cartID uuid.UUID, userID int64) (store.Order, error)
	Get(ctx context.Context, id int64) (store.Order, error)
	Owns(ctx context.Context, id, userID int64) (bool, error)
	ListByUser(ctx context.Context, userID int64) ([]store.Order, error)
	ListAll(ctx context.Context) ([]store.Order, error)
	UpdatePaymentStatus(ctx context.Context, id int64, to store.PaymentStatus) (store.Order, error)
	Delete(ctx context.Context, id int64) error
}

type Publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

// OrderCache holds serialized order bodies so repeat reads skip the DB.
type OrderCache interface {
	Get(ctx context.Context, id int64) ([]byte, bool)
	Set(ctx context.Context, id int64, body []byte)
	Delete(ctx context.Context, id int64)
}

type OrdersHandler struct {
	Orders   OrderStore
	Producer Publisher
	Cache    OrderCache
	Service  string
	Log      *zap.Logger
}

type PlaceOrderReq struct {
	CartID string `json:"cart_id"`
}

func (h *OrdersHandler) Register(r *chi.Mux) {
	r.Route("/orders", func(r chi.Router) {
		r.Post("/", h.placeOrder)
		r.Get("/", h.listOrders)
		r.Get("/{id}", h.getOrder)
		r.Patch("/{id}", h.updatePaymentStatus)
		r.Delete("/{id}", h.deleteOrder)
	})
}

func (h *OrdersHandler) placeOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req PlaceOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	cartID, err := uuid.Parse(req.CartID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid cart id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	order, err := h.Orders.PlaceOrder(ctx, cartID, userID)
	if err != nil {
		var nf *store.NotFoundError
		if errors.As(err, &nf) && nf.Entity == "cart" {
			// unknown cart is a caller mistake, not a missing resource
			writeError(w, http.StatusBadRequest, "invalid cart id")
			return
		}
		respondError(w, h.Log, err)
		return
	}

	body := mustJSON(order)
	h.Cache.Set(ctx, order.ID, body)
	h.publishPlaced(order, r.Header.Get("X-Request-Id"))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_, _ = w.Write(body)
}

func (h *OrdersHandler) publishPlaced(o store.Order, traceID string) {
	items := make([]store.OrderPlacedItem, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, store.OrderPlacedItem{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		})
	}
	ev := store.Envelope{
		EventID:       uuid.NewString(),
		EventType:     store.EventOrderPlaced,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      h.Service,
		TraceID:       traceID,
		CorrelationID: string(store.PartitionKey(o.ID)),
		Payload: kafka.MustMarshal(store.OrderPlacedPayload{
			OrderID:       o.ID,
			CustomerID:    o.CustomerID,
			PaymentStatus: o.PaymentStatus,
			PlacedAt:      o.PlacedAt,
			Items:         items,
		}),
	}
	h.Producer.Publish(store.PartitionKey(o.ID), kafka.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(store.EventOrderPlaced)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

func (h *OrdersHandler) listOrders(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	var (
		orders []store.Order
		err    error
	)
	if isStaff(r) {
		orders, err = h.Orders.ListAll(ctx)
	} else {
		orders, err = h.Orders.ListByUser(ctx, userID)
	}
	if err != nil {
		respondError(w, h.Log, err)
		return
	}
	if orders == nil {
		orders = []store.Order{}
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *OrdersHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := urlID(r, "id")
	if !ok {
		writeError(w, http.StatusNotFound, "order not found")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if !isStaff(r) {
		owned, err := h.Orders.Owns(ctx, id, userID)
		if err != nil {
			respondError(w, h.Log, err)
			return
		}
		if !owned {
			// do not reveal whether someone else's order exists
			writeError(w, http.StatusNotFound, "order not found")
			return
		}
	}

	if body, ok := h.Cache.Get(ctx, id); ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(body)
		return
	}

	order, err := h.Orders.Get(ctx, id)
	if err != nil {
		respondError(w, h.Log, err)
		return
	}
	body := mustJSON(order)
	h.Cache.Set(ctx, id, body)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

type UpdateOrderReq struct {
	PaymentStatus store.PaymentStatus `json:"payment_status"`
}

func (h *OrdersHandler) updatePaymentStatus(w http.ResponseWriter, r *http.Request) {
	if !requireStaff(w, r) {
		return
	}
	id, ok := urlID(r, "id")
	if !ok {
		writeError(w, http.StatusNotFound, "order not found")
		return
	}
	var req UpdateOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	order, err := h.Orders.UpdatePaymentStatus(ctx, id, req.PaymentStatus)
	if err != nil {
		respondError(w, h.Log, err)
		return
	}
	h.Cache.Set(ctx, id, mustJSON(order))
	writeJSON(w, http.StatusOK, order)
}

func (h *OrdersHandler) deleteOrder(w http.ResponseWriter, r *http.Request) {
	if !requireStaff(w, r) {
		return
	}
	id, ok := urlID(r, "id")
	if !ok {
		writeError(w, http.StatusNotFound, "order not found")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if err := h.Orders.Delete(ctx, id); err != nil {
		respondError(w, h.Log, err)
		return
	}
	h.Cache.Delete(ctx, id)
	w.WriteHeader(http.StatusNoContent)
}

func mustJSON(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}
