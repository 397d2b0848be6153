// Package pin enumerates fixed-length PINs over an alphabet, skipping obvious
// ones (constant runs and +1/-1 runs). Sequences are pull-based: each call to
// Next does the work for one value and nothing runs in between.
package pin

import (
	"context"
	"errors"
	"iter"
)

var (
	// ErrExhausted is returned by finite sequences once every index has been visited.
	ErrExhausted = errors.New("pin sequence exhausted")
)

// Sequence produces PINs on demand. Implementations are not safe for
// concurrent use.
type Sequence interface {
	Next(ctx context.Context) (string, error)
}

// All adapts seq to a range-over-func iterator. Iteration stops after the
// first error; ErrExhausted ends iteration without being yielded.
func All(ctx context.Context, seq Sequence) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for {
			if err := ctx.Err(); err != nil {
				yield("", err)
				return
			}

			v, err := seq.Next(ctx)
			if errors.Is(err, ErrExhausted) {
				return
			}
			if err != nil {
				yield("", err)
				return
			}
			if !yield(v, nil) {
				return
			}
		}
	}
}

// Take pulls up to n values from seq. A finite sequence may return fewer
// values without error.
func Take(ctx context.Context, seq Sequence, n int) ([]string, error) {
	out := make([]string, 0, n)
	if n <= 0 {
		return out, nil
	}
	for v, err := range All(ctx, seq) {
		if err != nil {
			return out, err
		}
		out = append(out, v)
		if len(out) == n {
			break
		}
	}
	return out, nil
}
