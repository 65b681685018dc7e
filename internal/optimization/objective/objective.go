// Package objective provides the functions the local search algorithms
// minimize: the sphere function and a small catalogue of standard test
// functions selectable by name.
package objective

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize/functions"

	"github.com/copyleftdev/localsearch/internal/optimization"
)

// Sphere returns the sum of squares of x. Its minimum is 0 at the origin.
func Sphere(x []float64) float64 {
	return floats.Dot(x, x)
}

// Rastrigin returns 10n + Σ(xᵢ² − 10cos(2πxᵢ)). Minimum 0 at the origin.
func Rastrigin(x []float64) float64 {
	const a = 10.0
	sum := a * float64(len(x))
	for _, v := range x {
		sum += v*v - a*math.Cos(2*math.Pi*v)
	}
	return sum
}

// Ackley returns the Ackley function. Minimum 0 at the origin.
func Ackley(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	n := float64(len(x))
	sumSq, sumCos := 0.0, 0.0
	for _, v := range x {
		sumSq += v * v
		sumCos += math.Cos(2 * math.Pi * v)
	}
	return -20*math.Exp(-0.2*math.Sqrt(sumSq/n)) - math.Exp(sumCos/n) + 20 + math.E
}

// Function is a catalogue entry.
type Function struct {
	Name string                     `json:"name"`
	Func optimization.ObjectiveFunc `json:"-"`
	// Dim is the required input length; 0 accepts any.
	Dim int `json:"dim,omitempty"`
	// Minimum is the known global minimum value.
	Minimum float64 `json:"minimum"`
	// Argmin is a point where Minimum is reached, in two dimensions when
	// Dim accepts any length.
	Argmin []float64 `json:"argmin"`
}

// Problem returns a problem over bounds that carries f's dimension check.
func (f Function) Problem(bounds optimization.Bounds) optimization.Problem {
	return optimization.Problem{
		Objective: f.Func,
		Bounds:    bounds,
		Dim:       f.Dim,
	}
}

var catalogue = map[string]Function{
	"sphere":     {Name: "sphere", Func: Sphere, Minimum: 0, Argmin: []float64{0, 0}},
	"rastrigin":  {Name: "rastrigin", Func: Rastrigin, Minimum: 0, Argmin: []float64{0, 0}},
	"ackley":     {Name: "ackley", Func: Ackley, Minimum: 0, Argmin: []float64{0, 0}},
	"rosenbrock": {Name: "rosenbrock", Func: functions.ExtendedRosenbrock{}.Func, Minimum: 0, Argmin: []float64{1, 1}},
	"beale":      {Name: "beale", Func: functions.Beale{}.Func, Dim: 2, Minimum: 0, Argmin: []float64{3, 0.5}},
}

// Lookup returns the catalogue entry called name.
func Lookup(name string) (Function, bool) {
	f, ok := catalogue[name]
	return f, ok
}

// Names lists the catalogue in sorted order.
func Names() []string {
	names := make([]string, 0, len(catalogue))
	for name := range catalogue {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All returns the catalogue entries sorted by name.
func All() []Function {
	names := Names()
	all := make([]Function, len(names))
	for i, name := range names {
		all[i] = catalogue[name]
	}
	return all
}
