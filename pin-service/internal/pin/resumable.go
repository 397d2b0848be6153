package pin

import (
	"context"
	"errors"
	"fmt"
)

// ErrBroken is returned by a ResumableSequence after a state store failure.
// Its in-memory cursor may no longer match the stored one, so it refuses to
// continue; open a new sequence to resume from the stored state.
var ErrBroken = errors.New("resumable sequence is unusable after a state store failure")

// State is the durable part of a resumable sequence. Index is always the
// next index to attempt.
type State struct {
	Key        []byte
	Index      uint64
	Generation uint64
}

// StateStore persists State per sequence id. Load reports found=false, not
// an error, when no state exists for id.
type StateStore interface {
	Load(ctx context.Context, id string) (st State, found bool, err error)
	Store(ctx context.Context, id string, st State) error
}

// Rotation describes a key rotation after the space was exhausted.
type Rotation struct {
	ID         string
	Generation uint64
	SpaceSize  uint64
}

type ResumableOption func(*ResumableSequence)

// WithRotateHook registers fn to run after each rotation has been stored.
func WithRotateHook(fn func(ctx context.Context, r Rotation)) ResumableOption {
	return func(s *ResumableSequence) {
		s.onRotate = fn
	}
}

// WithKeySource replaces NewKey for minting keys.
func WithKeySource(fn func() (*Key, error)) ResumableOption {
	return func(s *ResumableSequence) {
		s.newKey = fn
	}
}

// ResumableSequence wraps a KeyedSequence with durable key/index state. It
// never ends: on exhaustion it mints a new key, resets to index 0 and keeps
// going.
//
// The next index is stored before a value is returned, so a crash can lose
// at most the value in flight but never hands the same value out twice.
type ResumableSequence struct {
	id         string
	space      Space
	store      StateStore
	perm       Permuter
	keyed      *KeyedSequence
	generation uint64
	err        error

	onRotate func(ctx context.Context, r Rotation)
	newKey   func() (*Key, error)
}

// NewResumableSequence loads the state stored under id, or mints and stores
// a fresh key at index 0 when there is none.
func NewResumableSequence(ctx context.Context, space Space, id string, store StateStore, perm Permuter, opts ...ResumableOption) (*ResumableSequence, error) {
	if store == nil {
		return nil, fmt.Errorf("resumable sequence requires a state store")
	}
	if perm == nil {
		return nil, fmt.Errorf("resumable sequence requires a permuter")
	}
	if err := space.Permutable(); err != nil {
		return nil, err
	}

	s := &ResumableSequence{
		id:     id,
		space:  space,
		store:  store,
		perm:   perm,
		newKey: NewKey,
	}
	for _, opt := range opts {
		opt(s)
	}

	st, found, err := store.Load(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load state for %s: %w", id, err)
	}

	if !found {
		key, err := s.newKey()
		if err != nil {
			return nil, err
		}
		s.keyed = newKeyedSequence(space, 0, key, perm)
		s.generation = 1
		if err := s.persist(ctx); err != nil {
			key.Destroy()
			return nil, err
		}
		return s, nil
	}

	key, err := KeyFromBytes(st.Key)
	clear(st.Key)
	if err != nil {
		return nil, fmt.Errorf("invalid stored key for %s: %w", id, err)
	}
	s.keyed = newKeyedSequence(space, st.Index, key, perm)
	s.generation = st.Generation
	return s, nil
}

// Index is the next index to attempt under the current key.
func (s *ResumableSequence) Index() uint64 {
	return s.keyed.Index()
}

// Generation counts keys used by this sequence, starting at 1.
func (s *ResumableSequence) Generation() uint64 {
	return s.generation
}

func (s *ResumableSequence) Space() Space {
	return s.space
}

func (s *ResumableSequence) Next(ctx context.Context) (string, error) {
	if s.err != nil {
		return "", fmt.Errorf("%w: %w", ErrBroken, s.err)
	}

	for {
		if s.keyed.Exhausted() {
			if err := s.rotate(ctx); err != nil {
				s.err = err
				return "", err
			}
		}

		pin, ok, err := s.keyed.Step(ctx)
		if err != nil {
			if ctx.Err() == nil {
				s.err = err
			}
			return "", err
		}

		if err := s.persist(ctx); err != nil {
			s.err = err
			return "", err
		}
		if ok {
			return pin, nil
		}
	}
}

// rotate stores a new key at index 0 and only then swaps it in.
func (s *ResumableSequence) rotate(ctx context.Context) error {
	key, err := s.newKey()
	if err != nil {
		return err
	}

	next := newKeyedSequence(s.space, 0, key, s.perm)
	if err := s.storeState(ctx, next, s.generation+1); err != nil {
		key.Destroy()
		return err
	}

	s.keyed.Close()
	s.keyed = next
	s.generation++

	if s.onRotate != nil {
		s.onRotate(ctx, Rotation{
			ID:         s.id,
			Generation: s.generation,
			SpaceSize:  s.space.Size(),
		})
	}
	return nil
}

func (s *ResumableSequence) persist(ctx context.Context) error {
	return s.storeState(ctx, s.keyed, s.generation)
}

func (s *ResumableSequence) storeState(ctx context.Context, keyed *KeyedSequence, generation uint64) error {
	raw, err := keyed.key.Bytes()
	if err != nil {
		return err
	}
	defer clear(raw)

	err = s.store.Store(ctx, s.id, State{
		Key:        raw,
		Index:      keyed.Index(),
		Generation: generation,
	})
	if err != nil {
		return fmt.Errorf("failed to store state for %s: %w", s.id, err)
	}
	return nil
}

// Close destroys the key material held in memory. Stored state is untouched.
func (s *ResumableSequence) Close() {
	s.keyed.Close()
}
