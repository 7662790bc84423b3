package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/ariefcatur/go-storefront/internal/store"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type ProductStore interface {
	List(ctx context.Context) ([]store.Product, error)
	Get(ctx context.Context, id int64) (store.Product, error)
	Create(ctx context.Context, in store.ProductInput) (store.Product, error)
	Update(ctx context.Context, id int64, in store.ProductInput) (store.Product, error)
	Delete(ctx context.Context, id int64) error
}

type ReviewStore interface {
	ListByProduct(ctx context.Context, productID int64) ([]store.Review, error)
	Create(ctx context.Context, productID int64, in store.ReviewInput) (store.Review, error)
	Update(ctx context.Context, productID, id int64, in store.ReviewInput) (store.Review, error)
	Delete(ctx context.Context, productID, id int64) error
}

type ProductsHandler struct {
	Products ProductStore
	Reviews  ReviewStore
	Log      *zap.Logger
}

func (h *ProductsHandler) Register(r *chi.Mux) {
	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.list)
		r.Post("/", h.create)
		r.Get("/{id}", h.get)
		r.Put("/{id}", h.update)
		r.Delete("/{id}", h.delete)

		r.Route("/{id}/reviews", func(r chi.Router) {
			r.Get("/", h.listReviews)
			r.Post("/", h.createReview)
			r.Put("/{reviewID}", h.updateReview)
			r.Delete("/{reviewID}", h.deleteReview)
		})
	})
}

func (h *ProductsHandler) list(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	ps, err := h.Products.List(ctx)
	if err != nil {
		respondError(w, h.Log, err)
		return
	}
	if ps == nil {
		ps = []store.Product{}
	}
	writeJSON(w, http.StatusOK, ps)
}

func (h *ProductsHandler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r, "id")
	if !ok {
		writeError(w, http.StatusNotFound, "product not found")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	p, err := h.Products.Get(ctx, id)
	if err != nil {
		respondError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *ProductsHandler) create(w http.ResponseWriter, r *http.Request) {
	var in store.ProductInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	p, err := h.Products.Create(ctx, in)
	if err != nil {
		respondError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *ProductsHandler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r, "id")
	if !ok {
		writeError(w, http.StatusNotFound, "product not found")
		return
	}
	var in store.ProductInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	p, err := h.Products.Update(ctx, id, in)
	if err != nil {
		respondError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *ProductsHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r, "id")
	if !ok {
		writeError(w, http.StatusNotFound, "product not found")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if err := h.Products.Delete(ctx, id); err != nil {
		respondError(w, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ProductsHandler) listReviews(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r, "id")
	if !ok {
		writeError(w, http.StatusNotFound, "product not found")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	rs, err := h.Reviews.ListByProduct(ctx, id)
	if err != nil {
		respondError(w, h.Log, err)
		return
	}
	if rs == nil {
		rs = []store.Review{}
	}
	writeJSON(w, http.StatusOK, rs)
}

func (h *ProductsHandler) createReview(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r, "id")
	if !ok {
		writeError(w, http.StatusNotFound, "product not found")
		return
	}
	var in store.ReviewInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	rv, err := h.Reviews.Create(ctx, id, in)
	if err != nil {
		respondError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, rv)
}

func (h *ProductsHandler) updateReview(w http.ResponseWriter, r *http.Request) {
	productID, ok := urlID(r, "id")
	if !ok {
		writeError(w, http.StatusNotFound, "product not found")
		return
	}
	reviewID, ok := urlID(r, "reviewID")
	if !ok {
		writeError(w, http.StatusNotFound, "review not found")
		return
	}
	var in store.ReviewInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	rv, err := h.Reviews.Update(ctx, productID, reviewID, in)
	if err != nil {
		respondError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, rv)
}

func (h *ProductsHandler) deleteReview(w http.ResponseWriter, r *http.Request) {
	productID, ok := urlID(r, "id")
	if !ok {
		writeError(w, http.StatusNotFound, "product not found")
		return
	}
	reviewID, ok := urlID(r, "reviewID")
	if !ok {
		writeError(w, http.StatusNotFound, "review not found")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if err := h.Reviews.Delete(ctx, productID, reviewID); err != nil {
		respondError(w, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
