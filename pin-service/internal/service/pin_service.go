package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sync"
	"unicode/utf8"

	"github.com/weiawesome/wes-io-live/pin-service/internal/domain"
	"github.com/weiawesome/wes-io-live/pin-service/internal/pin"
	pkglog "github.com/weiawesome/wes-io-live/pkg/log"
	"github.com/weiawesome/wes-io-live/pkg/pubsub"
)

var (
	ErrInvalidStreamID = errors.New("stream id must match ^[a-z0-9][a-z0-9_-]{0,62}$")
	ErrInvalidCount    = errors.New("count out of range")
	ErrStreamNotFound  = errors.New("stream not found")
	ErrUnavailable     = errors.New("stream temporarily unavailable")
	ErrClosed          = errors.New("pin service is closed")
)

var streamIDPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,62}$`)

// ValidStreamID reports whether id can name a stream.
func ValidStreamID(id string) bool {
	return streamIDPattern.MatchString(id)
}

type stream struct {
	mu  sync.Mutex
	seq *pin.ResumableSequence
}

// pinServiceImpl implements PinService over one resumable sequence per
// stream id.
type pinServiceImpl struct {
	space     pin.Space
	store     pin.StateStore
	perm      pin.Permuter
	publisher pubsub.Publisher
	maxBatch  int

	mu      sync.Mutex
	streams map[string]*stream
	closed  bool
}

// NewPinService creates a new pin service. A nil publisher drops rotation
// events.
func NewPinService(space pin.Space, store pin.StateStore, perm pin.Permuter, publisher pubsub.Publisher, maxBatch int) PinService {
	if publisher == nil {
		publisher = pubsub.NopPublisher{}
	}
	if maxBatch < 1 {
		maxBatch = 1
	}

	return &pinServiceImpl{
		space:     space,
		store:     store,
		perm:      perm,
		publisher: publisher,
		maxBatch:  maxBatch,
		streams:   make(map[string]*stream),
	}
}

func (s *pinServiceImpl) Next(ctx context.Context, id string) (string, error) {
	batch, err := s.NextBatch(ctx, id, 1)
	if err != nil {
		return "", err
	}
	return batch.Pins[0], nil
}

// NextBatch holds the stream for the whole batch so batches never interleave.
// If a pull fails part way, the PINs already drawn are discarded; they were
// persisted as issued and are never handed out again.
func (s *pinServiceImpl) NextBatch(ctx context.Context, id string, count int) (*domain.IssuedPins, error) {
	if count < 1 || count > s.maxBatch {
		return nil, fmt.Errorf("%w: %d not in [1, %d]", ErrInvalidCount, count, s.maxBatch)
	}

	st, err := s.stream(id)
	if err != nil {
		return nil, err
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	if err := s.open(ctx, id, st); err != nil {
		return nil, err
	}

	pins, err := pin.Take(ctx, st.seq, count)
	if err != nil {
		s.handleFailure(ctx, id, st, err)
		if ctx.Err() != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	return &domain.IssuedPins{
		StreamID:   id,
		Pins:       pins,
		Generation: st.seq.Generation(),
	}, nil
}

func (s *pinServiceImpl) Validate(value string) domain.ValidatePinResponse {
	resp := domain.ValidatePinResponse{Pin: value}

	if utf8.RuneCountInString(value) != s.space.Length() {
		resp.Reason = domain.ReasonLength
		return resp
	}
	digits, err := s.space.Alphabet().Parse(value)
	if err != nil {
		resp.Reason = domain.ReasonAlphabet
		return resp
	}
	if pin.IsObvious(digits) {
		resp.Reason = domain.ReasonObvious
		return resp
	}

	resp.Valid = true
	return resp
}

func (s *pinServiceImpl) Status(ctx context.Context, id string) (*domain.StreamStatus, error) {
	if !ValidStreamID(id) {
		return nil, ErrInvalidStreamID
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrClosed
	}
	st := s.streams[id]
	s.mu.Unlock()

	if st != nil {
		st.mu.Lock()
		seq := st.seq
		var index, generation uint64
		if seq != nil {
			index, generation = seq.Index(), seq.Generation()
		}
		st.mu.Unlock()
		if seq != nil {
			return s.status(id, index, generation), nil
		}
	}

	state, found, err := s.store.Load(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	clear(state.Key)
	if !found {
		return nil, ErrStreamNotFound
	}
	return s.status(id, state.Index, state.Generation), nil
}

func (s *pinServiceImpl) status(id string, index, generation uint64) *domain.StreamStatus {
	size := s.space.Size()
	var remaining uint64
	if index < size {
		remaining = size - index
	}

	return &domain.StreamStatus{
		StreamID:   id,
		Index:      index,
		Generation: generation,
		SpaceSize:  size,
		Remaining:  remaining,
		Length:     s.space.Length(),
		Alphabet:   s.space.Alphabet().String(),
	}
}

func (s *pinServiceImpl) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	for id, st := range s.streams {
		st.mu.Lock()
		if st.seq != nil {
			st.seq.Close()
			st.seq = nil
		}
		st.mu.Unlock()
		delete(s.streams, id)
	}
	return nil
}

// stream returns the entry for id, creating an unopened one if needed.
func (s *pinServiceImpl) stream(id string) (*stream, error) {
	if !ValidStreamID(id) {
		return nil, ErrInvalidStreamID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrClosed
	}
	st, ok := s.streams[id]
	if !ok {
		st = &stream{}
		s.streams[id] = st
	}
	return st, nil
}

// open loads or creates the sequence for st. Caller holds st.mu.
func (s *pinServiceImpl) open(ctx context.Context, id string, st *stream) error {
	if st.seq != nil {
		return nil
	}

	seq, err := pin.NewResumableSequence(ctx, s.space, id, s.store, s.perm,
		pin.WithRotateHook(s.onRotate))
	if err != nil {
		l := pkglog.Ctx(ctx)
		l.Error().Err(err).Str(pkglog.FieldStreamID, id).Msg("failed to open pin stream")
		if ctx.Err() != nil {
			return err
		}
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	st.seq = seq
	l := pkglog.Ctx(ctx)
	l.Debug().
		Str(pkglog.FieldStreamID, id).
		Uint64(pkglog.FieldGeneration, seq.Generation()).
		Uint64(pkglog.FieldPinIndex, seq.Index()).
		Msg("pin stream opened")
	return nil
}

// handleFailure drops the sequence so the next call reopens it from stored
// state, which is never behind what was handed out. Caller holds st.mu.
func (s *pinServiceImpl) handleFailure(ctx context.Context, id string, st *stream, err error) {
	l := pkglog.Ctx(ctx)
	if ctx.Err() != nil {
		l.Warn().Err(err).Str(pkglog.FieldStreamID, id).Msg("pin request canceled")
	} else {
		l.Error().Err(err).Str(pkglog.FieldStreamID, id).Msg("pin stream failed, will reopen from stored state")
	}

	st.seq.Close()
	st.seq = nil
}

func (s *pinServiceImpl) onRotate(ctx context.Context, r pin.Rotation) {
	l := pkglog.Ctx(ctx)
	l.Info().
		Str(pkglog.FieldStreamID, r.ID).
		Uint64(pkglog.FieldGeneration, r.Generation).
		Uint64(pkglog.FieldSpaceSize, r.SpaceSize).
		Msg("pin stream exhausted, key rotated")

	evt, err := pubsub.NewEvent(pubsub.EventStreamRotated, r.ID, pubsub.StreamRotatedPayload{
		StreamID:   r.ID,
		Generation: r.Generation,
		SpaceSize:  r.SpaceSize,
	})
	if err != nil {
		l.Error().Err(err).Str(pkglog.FieldStreamID, r.ID).Msg("failed to build rotation event")
		return
	}

	if err := s.publisher.Publish(ctx, pubsub.StreamEventsChannel(r.ID), evt); err != nil {
		l.Warn().Err(err).
			Str(pkglog.FieldStreamID, r.ID).
			Str(pkglog.FieldEventID, evt.ID).
			Msg("failed to publish rotation event")
	}
}
