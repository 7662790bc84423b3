package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/ariefcatur/go-storefront/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CartStore interface {
	Create(ctx context.Context) (store.Cart, error)
	Get(ctx context.Context, id uuid.UUID) (store.Cart, error)
	Delete(ctx context.Context, id uuid.UUID) error
	AddItem(ctx context.Context, cartID uuid.UUID, productID int64, quantity int) (store.CartItem, error)
	UpdateItemQuantity(ctx context.Context, cartID uuid.UUID, itemID int64, quantity int) (store.CartItem, error)
	RemoveItem(ctx context.Context, cartID uuid.UUID, itemID int64) error
}

type CartsHandler struct {
	Carts CartStore
	Log   *zap.Logger
}

type AddCartItemReq struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

type UpdateCartItemReq struct {
	Quantity int `json:"quantity"`
}

func (h *CartsHandler) Register(r *chi.Mux) {
	r.Route("/carts", func(r chi.Router) {
		r.Post("/", h.create)
		r.Get("/{cartID}", h.get)
		r.Delete("/{cartID}", h.delete)

		r.Route("/{cartID}/items", func(r chi.Router) {
			r.Post("/", h.addItem)
			r.Patch("/{itemID}", h.updateItem)
			r.Delete("/{itemID}", h.removeItem)
		})
	})
}

func (h *CartsHandler) create(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	c, err := h.Carts.Create(ctx)
	if err != nil {
		respondError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *CartsHandler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(r, "cartID")
	if !ok {
		writeError(w, http.StatusNotFound, "cart not found")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	c, err := h.Carts.Get(ctx, id)
	if err != nil {
		respondError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *CartsHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(r, "cartID")
	if !ok {
		writeError(w, http.StatusNotFound, "cart not found")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if err := h.Carts.Delete(ctx, id); err != nil {
		respondError(w, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CartsHandler) addItem(w http.ResponseWriter, r *http.Request) {
	cartID, ok := urlUUID(r, "cartID")
	if !ok {
		writeError(w, http.StatusNotFound, "cart not found")
		return
	}
	var req AddCartItemReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	it, err := h.Carts.AddItem(ctx, cartID, req.ProductID, req.Quantity)
	if err != nil {
		respondError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, it)
}

func (h *CartsHandler) updateItem(w http.ResponseWriter, r *http.Request) {
	cartID, ok := urlUUID(r, "cartID")
	if !ok {
		writeError(w, http.StatusNotFound, "cart not found")
		return
	}
	itemID, ok := urlID(r, "itemID")
	if !ok {
		writeError(w, http.StatusNotFound, "cart item not found")
		return
	}
	var req UpdateCartItemReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	it, err := h.Carts.UpdateItemQuantity(ctx, cartID, itemID, req.Quantity)
	if err != nil {
		respondError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, it)
}

func (h *CartsHandler) removeItem(w http.ResponseWriter, r *http.Request) {
	cartID, ok := urlUUID(r, "cartID")
	if !ok {
		writeError(w, http.StatusNotFound, "cart not found")
		return
	}
	itemID, ok := urlID(r, "itemID")
	if !ok {
		writeError(w, http.StatusNotFound, "cart item not found")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if err := h.Carts.RemoveItem(ctx, cartID, itemID); err != nil {
		respondError(w, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
