package state

import (
	"errors"
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/weiawesome/wes-io-live/pin-service/internal/pin"
)

const recordVersion = 1

var ErrCorrupt = errors.New("stored pin state is corrupt")

// Sealer encrypts key material bound to a slot.
type Sealer interface {
	Seal(plain []byte, slot string) ([]byte, error)
	Open(sealed []byte, slot string) ([]byte, error)
}

type record struct {
	Version    int       `msgpack:"v"`
	SealedKey  []byte    `msgpack:"k"`
	Index      uint64    `msgpack:"i"`
	Generation uint64    `msgpack:"g"`
	UpdatedAt  time.Time `msgpack:"t"`
}

// Codec turns pin.State into a msgpack record with the key sealed under the
// stream id, and back.
type Codec struct {
	sealer Sealer
	now    func() time.Time
}

func NewCodec(sealer Sealer) *Codec {
	return &Codec{
		sealer: sealer,
		now:    time.Now,
	}
}

func (c *Codec) Encode(id string, st pin.State) ([]byte, error) {
	sealed, err := c.sealer.Seal(st.Key, id)
	if err != nil {
		return nil, fmt.Errorf("failed to seal key: %w", err)
	}

	data, err := msgpack.Marshal(&record{
		Version:    recordVersion,
		SealedKey:  sealed,
		Index:      st.Index,
		Generation: st.Generation,
		UpdatedAt:  c.now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode state: %w", err)
	}
	return data, nil
}

func (c *Codec) Decode(id string, data []byte) (pin.State, error) {
	var rec record
	if err := msgpack.Unmarshal(data, &rec); err != nil {
		return pin.State{}, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	if rec.Version != recordVersion {
		return pin.State{}, fmt.Errorf("%w: unsupported version %d", ErrCorrupt, rec.Version)
	}

	key, err := c.sealer.Open(rec.SealedKey, id)
	if err != nil {
		return pin.State{}, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}

	return pin.State{
		Key:        key,
		Index:      rec.Index,
		Generation: rec.Generation,
	}, nil
}
