package pin

// IsObvious reports whether digits form a constant run or a run stepping by
// exactly +1 or -1, e.g. 0000, 1234, 9876. Arrays shorter than 2 are never
// obvious.
func IsObvious(digits []int) bool {
	if len(digits) < 2 {
		return false
	}

	step := digits[1] - digits[0]
	if step > 1 || step < -1 {
		return false
	}

	for i := 2; i < len(digits); i++ {
		if digits[i]-digits[i-1] != step {
			return false
		}
	}
	return true
}
