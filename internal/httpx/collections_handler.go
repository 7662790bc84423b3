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

type CollectionStore interface {
	List(ctx context.Context) ([]store.Collection, error)
	Get(ctx context.Context, id int64) (store.Collection, error)
	Create(ctx context.Context, in store.CollectionInput) (store.Collection, error)
	Update(ctx context.Context, id int64, in store.CollectionInput) (store.Collection, error)
	Delete(ctx context.Context, id int64) error
}

type CollectionsHandler struct {
	Collections CollectionStore
	Log         *zap.Logger
}

func (h *CollectionsHandler) Register(r *chi.Mux) {
	r.Route("/collections", func(r chi.Router) {
		r.Get("/", h.list)
		r.Post("/", h.create)
		r.Get("/{id}", h.get)
		r.Put("/{id}", h.update)
		r.Delete("/{id}", h.delete)
	})
}

func (h *CollectionsHandler) list(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	cs, err := h.Collections.List(ctx)
	if err != nil {
		respondError(w, h.Log, err)
		return
	}
	if cs == nil {
		cs = []store.Collection{}
	}
	writeJSON(w, http.StatusOK, cs)
}

func (h *CollectionsHandler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r, "id")
	if !ok {
		writeError(w, http.StatusNotFound, "collection not found")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	c, err := h.Collections.Get(ctx, id)
	if err != nil {
		respondError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *CollectionsHandler) create(w http.ResponseWriter, r *http.Request) {
	var in store.CollectionInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	c, err := h.Collections.Create(ctx, in)
	if err != nil {
		respondError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *CollectionsHandler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r, "id")
	if !ok {
		writeError(w, http.StatusNotFound, "collection not found")
		return
	}
	var in store.CollectionInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	c, err := h.Collections.Update(ctx, id, in)
	if err != nil {
		respondError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *CollectionsHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r, "id")
	if !ok {
		writeError(w, http.StatusNotFound, "collection not found")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if err := h.Collections.Delete(ctx, id); err != nil {
		respondError(w, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
