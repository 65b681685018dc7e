package objective

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/copyleftdev/localsearch/internal/optimization"
)

func TestSphere(t *testing.T) {
	tests := []struct {
		name string
		x    []float64
		want float64
	}{
		{name: "origin", x: []float64{0, 0}, want: 0},
		{name: "three four", x: []float64{3, 4}, want: 25},
		{name: "negative", x: []float64{-1, -2, -3}, want: 14},
		{name: "one dimension", x: []float64{0.5}, want: 0.25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sphere(tt.x))
		})
	}
}

func TestSphereIsPure(t *testing.T) {
	x := []float64{3, 4}
	first := Sphere(x)
	second := Sphere(x)

	assert.Equal(t, first, second)
	assert.Equal(t, []float64{3, 4}, x, "input is not modified")
}

func TestCatalogueMinima(t *testing.T) {
	for _, f := range All() {
		t.Run(f.Name, func(t *testing.T) {
			require.NotEmpty(t, f.Argmin)
			if f.Dim > 0 {
				require.Len(t, f.Argmin, f.Dim)
			}
			assert.InDelta(t, f.Minimum, f.Func(f.Argmin), 1e-12)

			got, ok := Lookup(f.Name)
			require.True(t, ok)
			assert.Equal(t, f.Name, got.Name)
		})
	}
}

func TestCatalogueMinimaHigherDimensions(t *testing.T) {
	tests := []struct {
		name string
		at   []float64
	}{
		{name: "sphere", at: []float64{0, 0, 0}},
		{name: "rastrigin", at: []float64{0, 0, 0, 0}},
		{name: "ackley", at: []float64{0, 0, 0}},
		{name: "rosenbrock", at: []float64{1, 1, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, ok := Lookup(tt.name)
			require.True(t, ok)
			assert.InDelta(t, f.Minimum, f.Func(tt.at), 1e-12)
		})
	}
}

func TestAllMatchesNames(t *testing.T) {
	all := All()
	require.Len(t, all, len(Names()))
	for i, name := range Names() {
		assert.Equal(t, name, all[i].Name)
	}
}

func TestLookupUnknown(t *testing.T) {
	_, ok := Lookup("himmelblau")
	assert.False(t, ok)
}

func TestNamesSorted(t *testing.T) {
	assert.Equal(t, []string{"ackley", "beale", "rastrigin", "rosenbrock", "sphere"}, Names())
}

func TestFunctionProblemCarriesDimension(t *testing.T) {
	f, ok := Lookup("beale")
	require.True(t, ok)

	p := f.Problem(optimization.NewBounds([2]float64{-4.5, 4.5}, [2]float64{-4.5, 4.5}, [2]float64{0, 1}))
	assert.ErrorIs(t, p.Validate(), optimization.ErrDimensionMismatch)

	p = f.Problem(optimization.NewBounds([2]float64{-4.5, 4.5}, [2]float64{-4.5, 4.5}))
	assert.NoError(t, p.Validate())
}

func TestAckleyFinite(t *testing.T) {
	assert.False(t, math.IsNaN(Ackley(nil)))
	assert.Greater(t, Ackley([]float64{1, 1}), 0.0)
}
