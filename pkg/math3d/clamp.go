package math3d

import "golang.org/x/exp/constraints"

// Clamp limits v to the closed range [lo, hi].
func Clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

