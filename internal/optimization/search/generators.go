package search

import (
	"math/rand"

	"github.com/copyleftdev/localsearch/internal/optimization"
)

// UniformStep proposes one neighbor, adding an independent offset drawn
// from U[-StepSize, StepSize] to every coordinate.
type UniformStep struct {
	StepSize float64
}

// Neighbors implements Generator.
func (g UniformStep) Neighbors(current optimization.Point, rng *rand.Rand) []optimization.Point {
	p := make(optimization.Point, len(current))
	for i, v := range current {
		p[i] = v - g.StepSize + 2*g.StepSize*rng.Float64()
	}
	return []optimization.Point{p}
}
