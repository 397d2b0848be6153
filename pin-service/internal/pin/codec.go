package pin

// IndexToDigits writes index in the given radix as exactly length digits,
// most significant first. Digits above length are dropped, so callers must
// keep index below radix^length.
func IndexToDigits(index uint64, radix, length int) []int {
	digits := make([]int, length)
	r := uint64(radix)
	for i := length - 1; i >= 0; i-- {
		digits[i] = int(index % r)
		index /= r
	}
	return digits
}

// DigitsToIndex is the inverse of IndexToDigits.
func DigitsToIndex(digits []int, radix int) uint64 {
	var index uint64
	r := uint64(radix)
	for _, d := range digits {
		index = index*r + uint64(d)
	}
	return index
}
