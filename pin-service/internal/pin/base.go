package pin

import "context"

// BaseSequence walks the space in ascending index order and emits every
// non-obvious PIN once.
type BaseSequence struct {
	space Space
	index uint64
}

// NewBaseSequence starts at start, clamped to 0. A start at or past the end
// of the space gives an empty sequence.
func NewBaseSequence(space Space, start int64) *BaseSequence {
	return &BaseSequence{
		space: space,
		index: clampStart(start),
	}
}

// Index is the next index to be visited.
func (s *BaseSequence) Index() uint64 {
	return s.index
}

func (s *BaseSequence) Next(ctx context.Context) (string, error) {
	for s.index < s.space.Size() {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		digits := s.space.Digits(s.index)
		s.index++
		if IsObvious(digits) {
			continue
		}
		return s.space.Alphabet().Render(digits)
	}
	return "", ErrExhausted
}
