package search

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/copyleftdev/localsearch/internal/optimization"
)

func TestUniformStepStaysWithinStep(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	current := optimization.Point{1, -2, 3}
	g := UniformStep{StepSize: 0.5}

	for i := 0; i < 500; i++ {
		out := g.Neighbors(current, rng)
		require.Len(t, out, 1)
		require.Len(t, out[0], 3)
		for d := range current {
			require.InDelta(t, current[d], out[0][d], 0.5)
		}
	}
	assert.Equal(t, optimization.Point{1, -2, 3}, current)
}

func TestUniformStepZeroStep(t *testing.T) {
	out := UniformStep{}.Neighbors(optimization.Point{4, 5}, rand.New(rand.NewSource(1)))
	assert.Equal(t, optimization.Point{4, 5}, out[0])
}
