package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProductID_IsUUID(t *testing.T) {
	id := NewProductID()
	_, err := uuid.Parse(id.String())
	assert.NoError(t, err)
	assert.NotEqual(t, id, NewProductID())
}

func TestParseProductID(t *testing.T) {
	id, err := ParseProductID("  abc-123 ")
	require.NoError(t, err)
	assert.Equal(t, "abc-123", id.String())

	other, _ := ParseProductID("abc-123")
	assert.Equal(t, id, other)

	_, err = ParseProductID("   ")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestParseProductStatus(t *testing.T) {
	s, err := ParseProductStatus("DISCONTINUED")
	require.NoError(t, err)
	assert.Equal(t, "Discontinued", s.Label())

	_, err = ParseProductStatus("active")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}
