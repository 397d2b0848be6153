package pin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAlphabet(t *testing.T) {
	t.Parallel()

	t.Run("keeps_order", func(t *testing.T) {
		a, err := NewAlphabet("zyx")
		require.NoError(t, err)
		assert.Equal(t, 3, a.Radix())
		assert.Equal(t, "zyx", a.String())
	})

	t.Run("empty", func(t *testing.T) {
		_, err := NewAlphabet("")
		assert.ErrorIs(t, err, ErrEmptyAlphabet)
	})

	t.Run("duplicate", func(t *testing.T) {
		_, err := NewAlphabet("0123456780")
		assert.ErrorIs(t, err, ErrDuplicateSymbol)
	})

	t.Run("multibyte_symbols", func(t *testing.T) {
		a, err := NewAlphabet("αβγ")
		require.NoError(t, err)
		assert.Equal(t, 3, a.Radix())

		s, err := a.Render([]int{2, 0, 1})
		require.NoError(t, err)
		assert.Equal(t, "γαβ", s)
	})
}

func TestNewSpace(t *testing.T) {
	t.Parallel()

	t.Run("size", func(t *testing.T) {
		s, err := NewDefaultSpace(DefaultCharset, DefaultLength)
		require.NoError(t, err)
		assert.Equal(t, uint64(10000), s.Size())
		assert.Equal(t, 10, s.Radix())
		assert.Equal(t, 4, s.Length())
	})

	t.Run("zero_length", func(t *testing.T) {
		_, err := NewDefaultSpace(DefaultCharset, 0)
		assert.ErrorIs(t, err, ErrInvalidLength)
	})

	t.Run("overflow", func(t *testing.T) {
		_, err := NewDefaultSpace(DefaultCharset, 20)
		assert.ErrorIs(t, err, ErrSpaceTooLarge)

		s, err := NewDefaultSpace(DefaultCharset, 19)
		require.NoError(t, err)
		assert.Equal(t, uint64(10_000_000_000_000_000_000), s.Size())
	})

	t.Run("nil_alphabet", func(t *testing.T) {
		_, err := NewSpace(nil, 4)
		assert.ErrorIs(t, err, ErrEmptyAlphabet)
	})
}

func TestIndexToDigits(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []int{0, 0, 0, 0}, IndexToDigits(0, 10, 4))
	assert.Equal(t, []int{1, 2, 3, 4}, IndexToDigits(1234, 10, 4))
	assert.Equal(t, []int{9, 9, 9, 9}, IndexToDigits(9999, 10, 4))
	assert.Equal(t, []int{1, 0, 1}, IndexToDigits(5, 2, 3))

	// high-order digits are dropped
	assert.Equal(t, []int{2, 3, 4, 5}, IndexToDigits(12345, 10, 4))
}

func TestCodecRoundTrip(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		name    string
		charset string
		length  int
	}{
		{"decimal_4", DefaultCharset, 4},
		{"binary_6", "01", 6},
		{"hex_3", "0123456789abcdef", 3},
		{"single_symbol", "x", 3},
	} {
		t.Run(tc.name, func(t *testing.T) {
			s, err := NewDefaultSpace(tc.charset, tc.length)
			require.NoError(t, err)

			for i := uint64(0); i < s.Size(); i++ {
				str, err := s.Render(i)
				require.NoError(t, err)
				require.Len(t, []rune(str), tc.length)

				digits, err := s.Alphabet().Parse(str)
				require.NoError(t, err)
				require.Equal(t, i, DigitsToIndex(digits, s.Radix()))
			}
		})
	}
}

func TestPermutable(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		name    string
		charset string
		length  int
		usable  bool
	}{
		{"single_symbol", "a", 4, false},
		{"single_symbol_length_1", "a", 1, false},
		{"binary_2", "01", 2, false},
		{"binary_1", "01", 1, true},
		{"binary_3", "01", 3, true},
		{"ternary_2", "012", 2, true},
		{"decimal_4", DefaultCharset, DefaultLength, true},
	} {
		t.Run(tc.name, func(t *testing.T) {
			s, err := NewDefaultSpace(tc.charset, tc.length)
			require.NoError(t, err)

			err = s.Permutable()
			if tc.usable {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrNoUsablePins)
		})
	}
}

func TestRender(t *testing.T) {
	t.Parallel()

	a, err := NewAlphabet(DefaultCharset)
	require.NoError(t, err)

	t.Run("out_of_range", func(t *testing.T) {
		_, err := a.Render([]int{1, 10})
		assert.ErrorIs(t, err, ErrSymbolRange)

		_, err = a.Render([]int{-1})
		assert.ErrorIs(t, err, ErrSymbolRange)
	})

	t.Run("parse_unknown_symbol", func(t *testing.T) {
		_, err := a.Parse("12a4")
		assert.ErrorIs(t, err, ErrUnknownSymbol)
	})
}
