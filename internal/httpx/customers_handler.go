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

type CustomerStore interface {
	List(ctx context.Context) ([]store.Customer, error)
	Get(ctx context.Context, id int64) (store.Customer, error)
	GetOrCreateByUserID(ctx context.Context, userID int64) (store.Customer, error)
	UpdateByUserID(ctx context.Context, userID int64, in store.CustomerInput) (store.Customer, error)
}

type AddressStore interface {
	ListByCustomer(ctx context.Context, customerID int64) ([]store.Address, error)
	Create(ctx context.Context, customerID int64, in store.AddressInput) (store.Address, error)
	Update(ctx context.Context, customerID, id int64, in store.AddressInput) (store.Address, error)
	Delete(ctx context.Context, customerID, id int64) error
}

type CustomersHandler struct {
	Customers CustomerStore
	Addresses AddressStore
	Log       *zap.Logger
}

func (h *CustomersHandler) Register(r *chi.Mux) {
	r.Route("/customers", func(r chi.Router) {
		r.Get("/", h.list)
		r.Get("/me", h.me)
		r.Put("/me", h.updateMe)
		r.Get("/{id}", h.get)

		r.Route("/{id}/addresses", func(r chi.Router) {
			r.Get("/", h.listAddresses)
			r.Post("/", h.createAddress)
			r.Put("/{addressID}", h.updateAddress)
			r.Delete("/{addressID}", h.deleteAddress)
		})
	})
}

func (h *CustomersHandler) list(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUser(w, r); !ok {
		return
	}
	if !isStaff(r) {
		writeError(w, http.StatusForbidden, "staff only")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	cs, err := h.Customers.List(ctx)
	if err != nil {
		respondError(w, h.Log, err)
		return
	}
	if cs == nil {
		cs = []store.Customer{}
	}
	writeJSON(w, http.StatusOK, cs)
}

func (h *CustomersHandler) get(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUser(w, r); !ok {
		return
	}
	if !isStaff(r) {
		writeError(w, http.StatusForbidden, "staff only")
		return
	}
	id, ok := urlID(r, "id")
	if !ok {
		writeError(w, http.StatusNotFound, "customer not found")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	c, err := h.Customers.Get(ctx, id)
	if err != nil {
		respondError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// me mints the customer record on first use, matching how an identity
// only becomes a customer once it touches the storefront.
func (h *CustomersHandler) me(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	c, err := h.Customers.GetOrCreateByUserID(ctx, userID)
	if err != nil {
		respondError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *CustomersHandler) updateMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var in store.CustomerInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if _, err := h.Customers.GetOrCreateByUserID(ctx, userID); err != nil {
		respondError(w, h.Log, err)
		return
	}
	c, err := h.Customers.UpdateByUserID(ctx, userID, in)
	if err != nil {
		respondError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *CustomersHandler) listAddresses(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r, "id")
	if !ok {
		writeError(w, http.StatusNotFound, "customer not found")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	as, err := h.Addresses.ListByCustomer(ctx, id)
	if err != nil {
		respondError(w, h.Log, err)
		return
	}
	if as == nil {
		as = []store.Address{}
	}
	writeJSON(w, http.StatusOK, as)
}

func (h *CustomersHandler) createAddress(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r, "id")
	if !ok {
		writeError(w, http.StatusNotFound, "customer not found")
		return
	}
	var in store.AddressInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	a, err := h.Addresses.Create(ctx, id, in)
	if err != nil {
		respondError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

func (h *CustomersHandler) updateAddress(w http.ResponseWriter, r *http.Request) {
	customerID, ok := urlID(r, "id")
	if !ok {
		writeError(w, http.StatusNotFound, "customer not found")
		return
	}
	addressID, ok := urlID(r, "addressID")
	if !ok {
		writeError(w, http.StatusNotFound, "address not found")
		return
	}
	var in store.AddressInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	a, err := h.Addresses.Update(ctx, customerID, addressID, in)
	if err != nil {
		respondError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *CustomersHandler) deleteAddress(w http.ResponseWriter, r *http.Request) {
	customerID, ok := urlID(r, "id")
	if !ok {
		writeError(w, http.StatusNotFound, "customer not found")
		return
	}
	addressID, ok := urlID(r, "addressID")
	if !ok {
		writeError(w, http.StatusNotFound, "address not found")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if err := h.Addresses.Delete(ctx, customerID, addressID); err != nil {
		respondError(w, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
