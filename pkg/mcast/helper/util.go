package helper

// Return the greatest value in a uint64 slice.
func MaxValue(values ...uint64) uint64 {
	var value uint64
	for _, v := range values {
		if v > value {
			value = v
		}
	}
	return value
}
