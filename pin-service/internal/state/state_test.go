package state

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/weiawesome/wes-io-live/pin-service/internal/pin"
	"github.com/weiawesome/wes-io-live/pin-service/internal/seal"
	"github.com/weiawesome/wes-io-live/pkg/database"
	"github.com/weiawesome/wes-io-live/pkg/storage"
)

func newCodec(t *testing.T, scope string) *Codec {
	t.Helper()
	s, err := seal.New("test passphrase", scope, seal.Params{Time: 1, Memory: 8, Threads: 1})
	require.NoError(t, err)
	return NewCodec(s)
}

func sampleState() pin.State {
	key := make([]byte, pin.KeySize)
	for i := range key {
		key[i] = byte(i * 7)
	}
	return pin.State{Key: key, Index: 4321, Generation: 3}
}

func TestCodec(t *testing.T) {
	t.Parallel()

	codec := newCodec(t, "alice")
	want := sampleState()

	t.Run("round_trip", func(t *testing.T) {
		data, err := codec.Encode("door", want)
		require.NoError(t, err)
		assert.NotContains(t, string(data), string(want.Key))

		got, err := codec.Decode("door", data)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("other_stream_id", func(t *testing.T) {
		data, err := codec.Encode("door", want)
		require.NoError(t, err)

		_, err = codec.Decode("gate", data)
		assert.ErrorIs(t, err, ErrCorrupt)
		assert.ErrorIs(t, err, seal.ErrOpen)
	})

	t.Run("other_scope", func(t *testing.T) {
		data, err := codec.Encode("door", want)
		require.NoError(t, err)

		_, err = newCodec(t, "mallory").Decode("door", data)
		assert.ErrorIs(t, err, ErrCorrupt)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := codec.Decode("door", []byte{0xc1, 0x00})
		assert.ErrorIs(t, err, ErrCorrupt)
	})

	t.Run("unknown_version", func(t *testing.T) {
		data, err := msgpack.Marshal(&record{Version: 99})
		require.NoError(t, err)
		_, err = codec.Decode("door", data)
		assert.ErrorIs(t, err, ErrCorrupt)
	})
}

// exerciseStore runs the pin.StateStore contract against st.
func exerciseStore(t *testing.T, st pin.StateStore) {
	t.Helper()
	ctx := context.Background()

	_, found, err := st.Load(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, found)

	want := sampleState()
	require.NoError(t, st.Store(ctx, "door", want))

	got, found, err := st.Load(ctx, "door")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, want, got)

	want.Index = 4322
	require.NoError(t, st.Store(ctx, "door", want))
	got, _, err = st.Load(ctx, "door")
	require.NoError(t, err)
	assert.Equal(t, uint64(4322), got.Index)

	_, found, err = st.Load(ctx, "gate")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemoryStore(t *testing.T) {
	t.Parallel()

	st := NewMemoryStore()
	defer st.Close()
	exerciseStore(t, st)

	t.Run("copies_key", func(t *testing.T) {
		in := sampleState()
		require.NoError(t, st.Store(context.Background(), "copy", in))
		clear(in.Key)

		got, _, err := st.Load(context.Background(), "copy")
		require.NoError(t, err)
		assert.Equal(t, sampleState().Key, got.Key)
	})
}

func TestBlobStore(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	local, err := storage.NewLocalStorage(storage.LocalConfig{BasePath: dir})
	require.NoError(t, err)

	codec := newCodec(t, "alice")
	st := NewBlobStore(local, "pins", codec)
	exerciseStore(t, st)

	assert.FileExists(t, filepath.Join(dir, "pins", "door.msgpack"))

	t.Run("survives_reopen", func(t *testing.T) {
		reopened, err := storage.NewLocalStorage(storage.LocalConfig{BasePath: dir})
		require.NoError(t, err)

		got, found, err := NewBlobStore(reopened, "pins", newCodec(t, "alice")).Load(context.Background(), "door")
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, uint64(4322), got.Index)
	})
}

func TestGormStore(t *testing.T) {
	t.Parallel()

	db, err := database.New(&database.Config{
		Driver:   "sqlite",
		FilePath: filepath.Join(t.TempDir(), "pins.db"),
		LogLevel: "silent",
	})
	if err == nil {
		err = database.AutoMigrate(db, &PinStateModel{})
	}
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}

	st := NewGormStore(db, newCodec(t, "alice"))
	defer st.Close()
	exerciseStore(t, st)

	var model PinStateModel
	require.NoError(t, db.First(&model, "stream_id = ?", "door").Error)
	assert.Equal(t, int64(3), model.Generation)
}

func TestNew(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("memory", func(t *testing.T) {
		st, err := New(ctx, Config{Driver: "memory"}, nil)
		require.NoError(t, err)
		assert.IsType(t, &MemoryStore{}, st)
	})

	t.Run("local", func(t *testing.T) {
		st, err := New(ctx, Config{
			Driver:    "local",
			KeyPrefix: "pins",
			Local:     storage.LocalConfig{BasePath: t.TempDir()},
		}, newCodec(t, "alice"))
		require.NoError(t, err)
		assert.IsType(t, &BlobStore{}, st)
		exerciseStore(t, st)
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := New(ctx, Config{Driver: "floppy"}, nil)
		assert.ErrorIs(t, err, ErrUnknownDriver)
	})
}

func TestRedisStoreKey(t *testing.T) {
	t.Parallel()
	st := NewRedisStore(nil, "pin-service", nil)
	assert.Equal(t, "pin-service:state:door", st.BuildKey("door"))
}
