package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type sample struct {
	Name   string  `json:"name" validate:"required,max=4"`
	Amount float64 `json:"amount" validate:"gt=0"`
}

func TestValidateUsesJSONNames(t *testing.T) {
	v := NewValidator()

	errs, ok := v.Validate(sample{Name: "abcdef", Amount: 0})
	assert.False(t, ok)
	assert.Len(t, errs, 2)
	assert.Equal(t, "name", errs[0].Field)
	assert.Equal(t, "MAX", errs[0].Code)
	assert.Equal(t, "amount", errs[1].Field)
	assert.Equal(t, "amount must be greater than 0", errs[1].Message)

	_, ok = v.Validate(sample{Name: "ok", Amount: 1})
	assert.True(t, ok)
}
