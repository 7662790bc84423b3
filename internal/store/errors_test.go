package store

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorTaxonomy(t *testing.T) {
	nf := NotFound("cart")
	assert.True(t, IsNotFound(nf))
	assert.False(t, IsValidation(nf))
	assert.Equal(t, "cart not found", nf.Error())

	ve := Invalid("cart is empty")
	assert.True(t, IsValidation(ve))
	assert.False(t, IsNotFound(ve))
	assert.Equal(t, "cart is empty", ve.Error())

	ce := Conflict("product appears in orders and cannot be deleted")
	assert.True(t, IsConflict(ce))
	assert.False(t, IsValidation(ce))
}

func TestErrorMatchingThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("place order: %w", NotFound("customer"))
	assert.True(t, IsNotFound(wrapped))

	wrapped = fmt.Errorf("add item: %w", Invalid("quantity must be at least 1"))
	assert.True(t, IsValidation(wrapped))
}
