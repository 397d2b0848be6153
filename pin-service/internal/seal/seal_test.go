package seal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testParams = Params{Time: 1, Memory: 8, Threads: 1}

func TestSealer(t *testing.T) {
	t.Parallel()

	plain := []byte("0123456789abcdef0123456789abcdef")

	t.Run("round_trip", func(t *testing.T) {
		s, err := New("correct horse", "alice", testParams)
		require.NoError(t, err)

		sealed, err := s.Seal(plain, "door")
		require.NoError(t, err)
		assert.NotContains(t, string(sealed), string(plain))

		got, err := s.Open(sealed, "door")
		require.NoError(t, err)
		assert.Equal(t, plain, got)
	})

	t.Run("other_process_same_secret", func(t *testing.T) {
		a, err := New("correct horse", "alice", testParams)
		require.NoError(t, err)
		b, err := New("correct horse", "alice", testParams)
		require.NoError(t, err)

		sealed, err := a.Seal(plain, "door")
		require.NoError(t, err)
		got, err := b.Open(sealed, "door")
		require.NoError(t, err)
		assert.Equal(t, plain, got)
	})

	t.Run("wrong_scope", func(t *testing.T) {
		a, err := New("correct horse", "alice", testParams)
		require.NoError(t, err)
		b, err := New("correct horse", "bob", testParams)
		require.NoError(t, err)

		sealed, err := a.Seal(plain, "door")
		require.NoError(t, err)
		_, err = b.Open(sealed, "door")
		assert.ErrorIs(t, err, ErrOpen)
	})

	t.Run("wrong_slot", func(t *testing.T) {
		s, err := New("correct horse", "alice", testParams)
		require.NoError(t, err)

		sealed, err := s.Seal(plain, "door")
		require.NoError(t, err)
		_, err = s.Open(sealed, "gate")
		assert.ErrorIs(t, err, ErrOpen)
	})

	t.Run("wrong_passphrase", func(t *testing.T) {
		a, err := New("correct horse", "alice", testParams)
		require.NoError(t, err)
		b, err := New("battery staple", "alice", testParams)
		require.NoError(t, err)

		sealed, err := a.Seal(plain, "door")
		require.NoError(t, err)
		_, err = b.Open(sealed, "door")
		assert.ErrorIs(t, err, ErrOpen)
	})

	t.Run("tampered", func(t *testing.T) {
		s, err := New("correct horse", "alice", testParams)
		require.NoError(t, err)

		sealed, err := s.Seal(plain, "door")
		require.NoError(t, err)
		sealed[len(sealed)-1] ^= 0xff
		_, err = s.Open(sealed, "door")
		assert.ErrorIs(t, err, ErrOpen)

		_, err = s.Open(sealed[:10], "door")
		assert.ErrorIs(t, err, ErrOpen)
	})

	t.Run("empty_passphrase", func(t *testing.T) {
		_, err := New("", "alice", testParams)
		assert.ErrorIs(t, err, ErrEmptyPassphrase)
	})

	t.Run("default_scope", func(t *testing.T) {
		s, err := New("correct horse", "", testParams)
		require.NoError(t, err)
		want, err := CurrentScope()
		require.NoError(t, err)
		assert.Equal(t, want, s.Scope())
	})
}
