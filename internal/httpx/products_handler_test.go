package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ariefcatur/go-storefront/internal/store"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeProducts struct {
	products map[int64]store.Product
	nextID   int64
}

func (f *fakeProducts) List(_ context.Context) ([]store.Product, error) {
	out := make([]store.Product, 0, len(f.products))
	for _, p := range f.products {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeProducts) Get(_ context.Context, id int64) (store.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return store.Product{}, store.NotFound("product")
	}
	return p, nil
}

func (f *fakeProducts) Create(_ context.Context, in store.ProductInput) (store.Product, error) {
	if in.Title == "" {
		return store.Product{}, store.Invalid("title is required")
	}
	f.nextID++
	p := store.Product{
		ID:           f.nextID,
		Title:        in.Title,
		Slug:         in.Slug,
		UnitPrice:    in.UnitPrice,
		Inventory:    in.Inventory,
		CollectionID: in.CollectionID,
	}
	f.products[p.ID] = p
	return p, nil
}

func (f *fakeProducts) Update(_ context.Context, id int64, in store.ProductInput) (store.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return store.Product{}, store.NotFound("product")
	}
	p.Title = in.Title
	p.UnitPrice = in.UnitPrice
	f.products[id] = p
	return p, nil
}

func (f *fakeProducts) Delete(_ context.Context, id int64) error {
	if _, ok := f.products[id]; !ok {
		return store.NotFound("product")
	}
	if id == 99 {
		return store.Conflict("product is referenced by order items")
	}
	delete(f.products, id)
	return nil
}

type fakeReviews struct {
	byProduct map[int64][]store.Review
}

func (f *fakeReviews) ListByProduct(_ context.Context, productID int64) ([]store.Review, error) {
	return f.byProduct[productID], nil
}

func (f *fakeReviews) Create(_ context.Context, productID int64, in store.ReviewInput) (store.Review, error) {
	rv := store.Review{ID: int64(len(f.byProduct[productID]) + 1), ProductID: productID, Name: in.Name, Description: in.Description}
	f.byProduct[productID] = append(f.byProduct[productID], rv)
	return rv, nil
}

func (f *fakeReviews) Update(_ context.Context, productID, id int64, in store.ReviewInput) (store.Review, error) {
	for i, rv := range f.byProduct[productID] {
		if rv.ID == id {
			rv.Name, rv.Description = in.Name, in.Description
			f.byProduct[productID][i] = rv
			return rv, nil
		}
	}
	return store.Review{}, store.NotFound("review")
}

func (f *fakeReviews) Delete(_ context.Context, productID, id int64) error {
	for i, rv := range f.byProduct[productID] {
		if rv.ID == id {
			f.byProduct[productID] = append(f.byProduct[productID][:i], f.byProduct[productID][i+1:]...)
			return nil
		}
	}
	return store.NotFound("review")
}

func newProductsRig() (*fakeProducts, *fakeReviews, http.Handler) {
	products := &fakeProducts{products: map[int64]store.Product{}}
	reviews := &fakeReviews{byProduct: map[int64][]store.Review{}}
	h := &ProductsHandler{Products: products, Reviews: reviews, Log: zap.NewNop()}
	router := NewRouter(zap.NewNop())
	h.Register(router)
	return products, reviews, router
}

func TestCreateAndGetProduct(t *testing.T) {
	_, _, router := newProductsRig()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/products",
		strings.NewReader(`{"title":"Mug","slug":"mug","unit_price":"8.50","inventory":3,"collection_id":1}`)))
	require.Equal(t, http.StatusCreated, rec.Code)
	var p store.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.True(t, p.UnitPrice.Equal(decimal.RequireFromString("8.50")))

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products/1", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products/42", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateProductValidation(t *testing.T) {
	_, _, router := newProductsRig()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/products",
		strings.NewReader(`{"slug":"no-title"}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteProductBlocked(t *testing.T) {
	products, _, router := newProductsRig()
	products.products[99] = store.Product{ID: 99, Title: "Referenced"}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/products/99", nil))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestProductReviews(t *testing.T) {
	products, _, router := newProductsRig()
	products.products[1] = store.Product{ID: 1, Title: "Mug"}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/products/1/reviews",
		strings.NewReader(`{"name":"sam","description":"solid"}`)))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products/1/reviews", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var rs []store.Review
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rs))
	require.Len(t, rs, 1)
	assert.Equal(t, "sam", rs[0].Name)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/products/1/reviews/1", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
