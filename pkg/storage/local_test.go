package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dir := t.TempDir()
	st, err := NewLocalStorage(LocalConfig{BasePath: dir})
	require.NoError(t, err)

	t.Run("write_read", func(t *testing.T) {
		require.NoError(t, st.Write(ctx, "a/b/state", []byte("one"), ""))
		require.NoError(t, st.Write(ctx, "a/b/state", []byte("two"), ""))

		got, err := st.Read(ctx, "a/b/state")
		require.NoError(t, err)
		assert.Equal(t, []byte("two"), got)

		entries, err := os.ReadDir(filepath.Join(dir, "a", "b"))
		require.NoError(t, err)
		require.Len(t, entries, 1, "temp files left behind")
		assert.Equal(t, "state", entries[0].Name())
	})

	t.Run("missing", func(t *testing.T) {
		_, err := st.Read(ctx, "nope")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("escape_rejected", func(t *testing.T) {
		assert.Error(t, st.Write(ctx, "../outside", []byte("x"), ""))
		_, err := st.Read(ctx, "../../etc/passwd")
		assert.Error(t, err)
	})
}

func TestNew(t *testing.T) {
	t.Parallel()

	st, err := New(context.Background(), Config{Type: "local", Local: LocalConfig{BasePath: t.TempDir()}})
	require.NoError(t, err)
	assert.IsType(t, &LocalStorage{}, st)

	_, err = New(context.Background(), Config{Type: "ftp"})
	assert.Error(t, err)
}
