package optimization

import (
	"math"
	"math/rand"

	"golang.org/x/exp/constraints"
)

// Point is a position in the search space, one coordinate per dimension.
type Point []float64

// Clone returns a copy of p that shares no memory with it.
func (p Point) Clone() Point {
	if p == nil {
		return nil
	}
	return append(Point(nil), p...)
}

// Interval is the closed range [Lower, Upper] of a single dimension.
type Interval struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// Contains reports whether v lies inside the interval.
func (iv Interval) Contains(v float64) bool {
	return iv.Lower <= v && v <= iv.Upper
}

// Bounds is the feasible box, one interval per dimension.
type Bounds []Interval

// NewBounds builds Bounds from [min, max] pairs.
func NewBounds(pairs ...[2]float64) Bounds {
	b := make(Bounds, len(pairs))
	for i, p := range pairs {
		b[i] = Interval{Lower: p[0], Upper: p[1]}
	}
	return b
}

// Dim returns the number of dimensions.
func (b Bounds) Dim() int {
	return len(b)
}

// Validate checks that b describes a non-empty box with finite limits and
// Lower <= Upper in every dimension.
func (b Bounds) Validate() error {
	if len(b) == 0 {
		return WrapErrorf(ErrInvalidBounds, "no dimensions").WithOperation("Bounds.Validate")
	}
	for i, iv := range b {
		if !isFinite(iv.Lower) || !isFinite(iv.Upper) {
			return WrapErrorf(ErrInvalidBounds, "dimension %d: limits must be finite, got [%v, %v]",
				i, iv.Lower, iv.Upper).WithOperation("Bounds.Validate")
		}
		if iv.Lower > iv.Upper {
			return WrapErrorf(ErrInvalidBounds, "dimension %d: lower %v exceeds upper %v",
				i, iv.Lower, iv.Upper).WithOperation("Bounds.Validate")
		}
	}
	return nil
}

// Contains reports whether p has the right length and every coordinate
// lies inside its interval.
func (b Bounds) Contains(p Point) bool {
	if len(p) != len(b) {
		return false
	}
	for i, iv := range b {
		if !iv.Contains(p[i]) {
			return false
		}
	}
	return true
}

// ClampInPlace moves every coordinate of p onto the nearest point of its
// interval. p must have the same length as b.
func (b Bounds) ClampInPlace(p Point) {
	for i, iv := range b {
		p[i] = Clamp(p[i], iv.Lower, iv.Upper)
	}
}

// Sample draws a point uniformly from the box, independently per dimension.
// Interpolating between the limits keeps intervals wider than MaxFloat64
// finite.
func (b Bounds) Sample(rng *rand.Rand) Point {
	p := make(Point, len(b))
	for i, iv := range b {
		r := rng.Float64()
		p[i] = Clamp(iv.Lower*(1-r)+iv.Upper*r, iv.Lower, iv.Upper)
	}
	return p
}

// Pairs returns b in the [min, max] pair form used on the wire.
func (b Bounds) Pairs() [][2]float64 {
	pairs := make([][2]float64, len(b))
	for i, iv := range b {
		pairs[i] = [2]float64{iv.Lower, iv.Upper}
	}
	return pairs
}

// Clamp limits v to [lo, hi].
func Clamp[T constraints.Float](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
