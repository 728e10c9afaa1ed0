package view

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeakCoercerConvertsScalars(t *testing.T) {
	c := WeakCoercer{}

	tests := []struct {
		name   string
		raw    any
		target string
		want   any
	}{
		{"string to int", "42", "int", 42},
		{"int to string", 7, "string", "7"},
		{"string to bool", "true", "bool", true},
		{"int to float64", 3, "float64", float64(3)},
		{"string to int64", "9000", "int64", int64(9000)},
		{"already typed", 13, "int", 13},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.Convert(tt.raw, tt.target, true)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWeakCoercerRejectsUnconvertible(t *testing.T) {
	c := WeakCoercer{}
	_, err := c.Convert("not a number", "int", true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot convert")
}

func TestWeakCoercerNilHandling(t *testing.T) {
	c := WeakCoercer{}

	_, err := c.Convert(nil, "int", true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nil")

	got, err := c.Convert(nil, "int", false)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestWeakCoercerRejectsNonScalarTarget(t *testing.T) {
	c := WeakCoercer{}
	_, err := c.Convert("x", "Address", true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "non-scalar")
}
