package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHasher_RoundTrip(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	digest, err := h.Hash("correct-horse-battery-staple")
	require.NoError(t, err)

	ok, err := h.Verify("correct-horse-battery-staple", digest)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestHasher_WrongPassword(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	digest, err := h.Hash("right-password")
	require.NoError(t, err)

	ok, err := h.Verify("wrong-password", digest)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHasher_UniqueSalts(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	d1, err := h.Hash("same-password")
	require.NoError(t, err)
	d2, err := h.Hash("same-password")
	require.NoError(t, err)

	assert.NotEqual(t, d1, d2, "each hash call must salt independently")
}

func TestHasher_MalformedDigest(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	_, err := h.Verify("anything", "not-a-bcrypt-digest")
	assert.ErrorIs(t, err, ErrInvalidCredentialFormat)
}

func TestNewHasher_ClampsCost(t *testing.T) {
	h := NewHasher(99)
	assert.Equal(t, bcrypt.DefaultCost, h.Cost)
}
