package pin

import (
	"crypto/rand"
	"errors"
	"fmt"
)

// KeySize is the size of keys minted by NewKey (AES-256).
const KeySize = 32

var ErrKeyDestroyed = errors.New("key material has been destroyed")

// Key holds secret key material. The bytes are kept XOR-masked with a random
// pad and only unmasked inside Use.
type Key struct {
	masked []byte
	pad    []byte
}

// NewKey mints a fresh random key.
func NewKey() (*Key, error) {
	raw := make([]byte, KeySize)
	if _, err := rand.Read(raw); err != nil {
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}
	defer clear(raw)
	return KeyFromBytes(raw)
}

// KeyFromBytes copies raw into a new Key. The caller keeps ownership of raw.
func KeyFromBytes(raw []byte) (*Key, error) {
	if len(raw) == 0 {
		return nil, errors.New("key material is empty")
	}

	pad := make([]byte, len(raw))
	if _, err := rand.Read(pad); err != nil {
		return nil, fmt.Errorf("failed to generate key pad: %w", err)
	}

	masked := make([]byte, len(raw))
	for i := range raw {
		masked[i] = raw[i] ^ pad[i]
	}
	return &Key{masked: masked, pad: pad}, nil
}

// Use calls fn with the plain key bytes. The slice is zeroed when fn returns
// and must not be retained.
func (k *Key) Use(fn func(raw []byte) error) error {
	if k == nil || k.masked == nil {
		return ErrKeyDestroyed
	}

	raw := make([]byte, len(k.masked))
	for i := range raw {
		raw[i] = k.masked[i] ^ k.pad[i]
	}
	defer clear(raw)

	return fn(raw)
}

// Bytes returns a plain copy of the key for persistence. Callers should clear
// it once stored.
func (k *Key) Bytes() ([]byte, error) {
	var out []byte
	err := k.Use(func(raw []byte) error {
		out = append([]byte(nil), raw...)
		return nil
	})
	return out, err
}

// Destroy zeroes the key. Later calls to Use fail with ErrKeyDestroyed.
func (k *Key) Destroy() {
	if k == nil {
		return
	}
	clear(k.masked)
	clear(k.pad)
	k.masked = nil
	k.pad = nil
}
