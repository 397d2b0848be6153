package state

import (
	"context"
	"sync"

	"github.com/weiawesome/wes-io-live/pin-service/internal/pin"
)

// MemoryStore keeps state in process memory. State is lost on exit.
type MemoryStore struct {
	mu     sync.RWMutex
	states map[string]pin.State
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{states: make(map[string]pin.State)}
}

func (s *MemoryStore) Load(ctx context.Context, id string) (pin.State, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.states[id]
	if !ok {
		return pin.State{}, false, nil
	}
	st.Key = append([]byte(nil), st.Key...)
	return st, true, nil
}

func (s *MemoryStore) Store(ctx context.Context, id string, st pin.State) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.states[id]; ok {
		clear(old.Key)
	}
	st.Key = append([]byte(nil), st.Key...)
	s.states[id] = st
	return nil
}

func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, st := range s.states {
		clear(st.Key)
		delete(s.states, id)
	}
	return nil
}
