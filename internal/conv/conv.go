// Package conv provides checked integer conversions for values read from
// untrusted sources (manifests, blob sizes, on-disk counts).
package conv

import (
	"fmt"
	"math"
)

// Uint64ToInt converts uint64 to int, rejecting values beyond the platform
// int range.
func Uint64ToInt(v uint64) (int, error) {
	if v > uint64(math.MaxInt) {
		return 0, fmt.Errorf("integer overflow: %d does not fit in int", v)
	}
	return int(v), nil
}

// Int64ToInt converts int64 to int, rejecting negative values and values
// beyond the platform int range.
func Int64ToInt(v int64) (int, error) {
	if v < 0 {
		return 0, fmt.Errorf("integer overflow: %d is negative", v)
	}
	if uint64(v) > uint64(math.MaxInt) {
		return 0, fmt.Errorf("integer overflow: %d does not fit in int", v)
	}
	return int(v), nil
}

// IntToUint64 converts int to uint64, rejecting negative values.
func IntToUint64(v int) (uint64, error) {
	if v < 0 {
		return 0, fmt.Errorf("integer overflow: %d is negative", v)
	}
	return uint64(v), nil
}
