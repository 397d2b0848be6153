package pin

import (
	"errors"
	"fmt"
	"math/bits"
)

const (
	DefaultLength  = 4
	DefaultCharset = "0123456789"
)

var (
	ErrEmptyAlphabet   = errors.New("alphabet must contain at least one symbol")
	ErrDuplicateSymbol = errors.New("alphabet contains duplicate symbols")
	ErrInvalidLength   = errors.New("pin length must be at least 1")
	ErrSpaceTooLarge   = errors.New("identifier space does not fit in 64 bits")
	ErrSymbolRange     = errors.New("symbol index out of alphabet range")
	ErrUnknownSymbol   = errors.New("symbol not in alphabet")
	ErrNoUsablePins    = errors.New("space has no pins a keyed sequence can emit")
)

// Alphabet is an ordered, duplicate-free list of symbols. A symbol's position
// in the list is its digit value.
type Alphabet struct {
	symbols []rune
	index   map[rune]int
}

// NewAlphabet builds an Alphabet from charset, keeping the given order.
func NewAlphabet(charset string) (*Alphabet, error) {
	symbols := []rune(charset)
	if len(symbols) == 0 {
		return nil, ErrEmptyAlphabet
	}

	index := make(map[rune]int, len(symbols))
	for i, r := range symbols {
		if _, ok := index[r]; ok {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateSymbol, r)
		}
		index[r] = i
	}

	return &Alphabet{
		symbols: symbols,
		index:   index,
	}, nil
}

// Radix returns the number of symbols.
func (a *Alphabet) Radix() int {
	return len(a.symbols)
}

// String returns the symbols in order.
func (a *Alphabet) String() string {
	return string(a.symbols)
}

// Render maps each digit to its symbol.
func (a *Alphabet) Render(digits []int) (string, error) {
	out := make([]rune, len(digits))
	for i, d := range digits {
		if d < 0 || d >= len(a.symbols) {
			return "", fmt.Errorf("%w: %d at position %d", ErrSymbolRange, d, i)
		}
		out[i] = a.symbols[d]
	}
	return string(out), nil
}

// Parse is the inverse of Render.
func (a *Alphabet) Parse(s string) ([]int, error) {
	runes := []rune(s)
	digits := make([]int, len(runes))
	for i, r := range runes {
		d, ok := a.index[r]
		if !ok {
			return nil, fmt.Errorf("%w: %q at position %d", ErrUnknownSymbol, r, i)
		}
		digits[i] = d
	}
	return digits, nil
}

// Space is the set of all PINs of a fixed length over an alphabet.
type Space struct {
	alphabet *Alphabet
	length   int
	size     uint64
}

// NewSpace returns the space of length-symbol PINs over alphabet.
func NewSpace(alphabet *Alphabet, length int) (Space, error) {
	if alphabet == nil || alphabet.Radix() == 0 {
		return Space{}, ErrEmptyAlphabet
	}
	if length < 1 {
		return Space{}, fmt.Errorf("%w, got %d", ErrInvalidLength, length)
	}

	radix := uint64(alphabet.Radix())
	size := uint64(1)
	for i := 0; i < length; i++ {
		hi, lo := bits.Mul64(size, radix)
		if hi != 0 {
			return Space{}, fmt.Errorf("%w: radix %d, length %d", ErrSpaceTooLarge, radix, length)
		}
		size = lo
	}

	return Space{
		alphabet: alphabet,
		length:   length,
		size:     size,
	}, nil
}

// NewDefaultSpace is NewSpace over charset with the given length.
func NewDefaultSpace(charset string, length int) (Space, error) {
	alphabet, err := NewAlphabet(charset)
	if err != nil {
		return Space{}, err
	}
	return NewSpace(alphabet, length)
}

func (s Space) Alphabet() *Alphabet { return s.alphabet }
func (s Space) Length() int         { return s.length }
func (s Space) Radix() int          { return s.alphabet.Radix() }

// Size is radix^length, the exclusive upper bound on indices.
func (s Space) Size() uint64 { return s.size }

// Permutable returns ErrNoUsablePins when a keyed sequence over s could never
// emit a PIN. FF1 needs a radix of at least 2, and every two-symbol PIN over a
// binary alphabet is obvious.
func (s Space) Permutable() error {
	radix := s.Radix()
	if radix < 2 {
		return fmt.Errorf("%w: radix %d", ErrNoUsablePins, radix)
	}
	if s.length == 2 && radix < 3 {
		return fmt.Errorf("%w: radix %d, length %d", ErrNoUsablePins, radix, s.length)
	}
	return nil
}

// Digits converts index to the space's digit form.
func (s Space) Digits(index uint64) []int {
	return IndexToDigits(index, s.Radix(), s.length)
}

// Render converts index to its PIN string without any filtering.
func (s Space) Render(index uint64) (string, error) {
	return s.alphabet.Render(s.Digits(index))
}

// clampStart maps a caller-supplied start index onto the space; negative
// values become 0.
func clampStart(start int64) uint64 {
	if start < 0 {
		return 0
	}
	return uint64(start)
}
