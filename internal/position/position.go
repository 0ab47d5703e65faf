// Package position implements the fractional sort keys used to order tickets
// inside a column.
package position

import (
	"errors"
	"math"
)

const (
	// Gap is the spacing between neighbours in a freshly laid out column
	Gap = 1000.0

	// MinGap is the smallest interval that can still be split safely
	MinGap = 0.001

	// tolerance absorbs float error so that 1500.001-1500 counts as a full MinGap
	tolerance = 1e-9
)

var (
	// ErrNotFinite is returned for NaN and infinite keys
	ErrNotFinite = errors.New("position must be a finite number")

	// ErrNotPositive is returned for keys <= 0
	ErrNotPositive = errors.New("position must be greater than zero")
)

// Between returns the midpoint of low and high.
// Callers check CanSplit first; an unsplittable gap is a collision, not a midpoint.
func Between(low, high float64) float64 {
	return (low + high) / 2
}

// Before returns the key placed above high at the top of a column
func Before(high float64) float64 {
	return high / 2
}

// After returns the key placed below low at the bottom of a column
func After(low float64) float64 {
	return low + Gap
}

// Fresh is the key of the first ticket in an empty column
func Fresh() float64 {
	return Gap
}

// Nudge moves a colliding key just past its occupant
func Nudge(p float64) float64 {
	return p + MinGap
}

// CanSplit reports whether the interval [low, high] is at least MinGap wide
func CanSplit(low, high float64) bool {
	return high-low >= MinGap-tolerance
}

// Dense is the compacted key of the ticket at ordinal index i
func Dense(i int) float64 {
	return float64(i)
}

// Spaced is the rebalanced key of the ticket at ordinal index i
func Spaced(i int) float64 {
	return float64(i+1) * Gap
}

// Validate checks a caller supplied key
func Validate(p float64) error {
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return ErrNotFinite
	}
	if p <= 0 {
		return ErrNotPositive
	}
	return nil
}
