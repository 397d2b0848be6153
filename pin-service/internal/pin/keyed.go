package pin

import (
	"context"
	"fmt"
)

// Permuter is a keyed, format-preserving bijection over radix^len(digits).
// For a fixed key and tweak it must be deterministic and return a slice of
// the same length with every digit in [0, radix).
type Permuter interface {
	Encrypt(key, tweak []byte, digits []int, radix int) ([]int, error)
}

// KeyedSequence walks indices in ascending order, permutes each through a
// Permuter and emits the permuted PIN when it is not obvious. A full pass
// emits the same set as BaseSequence, in a key-dependent order.
type KeyedSequence struct {
	space Space
	index uint64
	key   *Key
	perm  Permuter
}

// NewKeyedSequence starts at start (clamped to 0). A nil key mints a fresh
// random one that lives as long as the sequence.
func NewKeyedSequence(space Space, start int64, key *Key, perm Permuter) (*KeyedSequence, error) {
	if perm == nil {
		return nil, fmt.Errorf("keyed sequence requires a permuter")
	}
	if err := space.Permutable(); err != nil {
		return nil, err
	}
	if key == nil {
		var err error
		key, err = NewKey()
		if err != nil {
			return nil, err
		}
	}

	return newKeyedSequence(space, clampStart(start), key, perm), nil
}

func newKeyedSequence(space Space, index uint64, key *Key, perm Permuter) *KeyedSequence {
	return &KeyedSequence{
		space: space,
		index: index,
		key:   key,
		perm:  perm,
	}
}

// Index is the next index to be permuted.
func (s *KeyedSequence) Index() uint64 {
	return s.index
}

// Exhausted reports whether every index has been visited.
func (s *KeyedSequence) Exhausted() bool {
	return s.index >= s.space.Size()
}

// Step permutes exactly one index and advances past it. ok is false when the
// permuted value was obvious and got skipped. On a permuter error the index
// is not advanced.
func (s *KeyedSequence) Step(ctx context.Context) (pin string, ok bool, err error) {
	if s.Exhausted() {
		return "", false, ErrExhausted
	}
	if err := ctx.Err(); err != nil {
		return "", false, err
	}

	var permuted []int
	err = s.key.Use(func(raw []byte) error {
		var perr error
		permuted, perr = s.perm.Encrypt(raw, nil, s.space.Digits(s.index), s.space.Radix())
		return perr
	})
	if err != nil {
		return "", false, fmt.Errorf("failed to permute index %d: %w", s.index, err)
	}
	if len(permuted) != s.space.Length() {
		return "", false, fmt.Errorf("permuter returned %d digits, want %d", len(permuted), s.space.Length())
	}

	s.index++
	if IsObvious(permuted) {
		return "", false, nil
	}

	pin, err = s.space.Alphabet().Render(permuted)
	if err != nil {
		return "", false, err
	}
	return pin, true, nil
}

func (s *KeyedSequence) Next(ctx context.Context) (string, error) {
	for {
		pin, ok, err := s.Step(ctx)
		if err != nil {
			return "", err
		}
		if ok {
			return pin, nil
		}
	}
}

// Close destroys the key material.
func (s *KeyedSequence) Close() {
	s.key.Destroy()
}
