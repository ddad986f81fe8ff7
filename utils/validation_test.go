package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidOrderID(t *testing.T) {
	valid := []string{"A1", "order-42", "ORD_2026_0001", strings.Repeat("a", 64)}
	for _, id := range valid {
		assert.True(t, IsValidOrderID(id), "expected %q to be valid", id)
	}

	invalid := []string{"", "a b", "ord/1", "ord#1", strings.Repeat("a", 65)}
	for _, id := range invalid {
		assert.False(t, IsValidOrderID(id), "expected %q to be invalid", id)
	}
}

func TestIsValidEmail(t *testing.T) {
	assert.True(t, IsValidEmail("customer@example.com"))
	assert.True(t, IsValidEmail("a.b+tag@sub.example.co"))
	assert.False(t, IsValidEmail("not-an-email"))
	assert.False(t, IsValidEmail("missing@tld"))
}

func TestIsValidPhone(t *testing.T) {
	assert.True(t, IsValidPhone("+919876543210"))
	assert.True(t, IsValidPhone("919876543210"))
	assert.False(t, IsValidPhone("0123"))
	assert.False(t, IsValidPhone("phone"))
}

func TestFieldValidationErrorsMessage(t *testing.T) {
	errs := FieldValidationErrors{
		{Field: "amount", Message: "must be positive"},
		{Field: "currency", Message: "unsupported"},
	}
	assert.Equal(t, "amount: must be positive; currency: unsupported", errs.Error())
}
