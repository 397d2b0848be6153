package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager(t *testing.T) {
	t.Parallel()

	m, err := NewManager("s3cret", "pin-service", time.Minute)
	require.NoError(t, err)

	t.Run("round_trip", func(t *testing.T) {
		token, err := m.Issue("door-controller", "pins:issue")
		require.NoError(t, err)

		claims, err := m.ValidateToken(token)
		require.NoError(t, err)
		assert.Equal(t, "door-controller", claims.Subject)
		assert.True(t, claims.HasScope("pins:issue"))
		assert.False(t, claims.HasScope("admin"))
	})

	t.Run("wrong_secret", func(t *testing.T) {
		other, err := NewManager("other", "pin-service", time.Minute)
		require.NoError(t, err)
		token, err := other.Issue("x")
		require.NoError(t, err)

		_, err = m.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong_issuer", func(t *testing.T) {
		other, err := NewManager("s3cret", "someone-else", time.Minute)
		require.NoError(t, err)
		token, err := other.Issue("x")
		require.NoError(t, err)

		_, err = m.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		short, err := NewManager("s3cret", "pin-service", time.Nanosecond)
		require.NoError(t, err)
		token, err := short.Issue("x")
		require.NoError(t, err)
		time.Sleep(1100 * time.Millisecond)

		_, err = m.ValidateToken(token)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := m.ValidateToken("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("empty_secret", func(t *testing.T) {
		_, err := NewManager("", "", time.Minute)
		assert.ErrorIs(t, err, ErrEmptySecret)
	})
}
