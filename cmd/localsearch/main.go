// Command localsearch minimizes the sphere function on [-5, 5]² with hill
// climbing, random local search and simulated annealing, and prints what
// each one found.
package main

import (
	"fmt"
	"io"
	"math/rand"
	"os"
	"time"

	"github.com/copyleftdev/localsearch/internal/optimization"
	"github.com/copyleftdev/localsearch/internal/optimization/annealing"
	"github.com/copyleftdev/localsearch/internal/optimization/hillclimb"
	"github.com/copyleftdev/localsearch/internal/optimization/objective"
	"github.com/copyleftdev/localsearch/internal/optimization/randomsearch"
)

func main() {
	if err := run(os.Stdout, time.Now().UnixNano()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run prints the three results. Each algorithm gets its own stream derived
// from seed.
func run(w io.Writer, seed int64) error {
	bounds := optimization.NewBounds([2]float64{-5, 5}, [2]float64{-5, 5})
	base := rand.New(rand.NewSource(seed))

	searches := []struct {
		title    string
		minimize func(*rand.Rand) (optimization.Point, float64, error)
	}{
		{"Hill Climbing:", func(rng *rand.Rand) (optimization.Point, float64, error) {
			return hillclimb.Minimize(objective.Sphere, bounds, hillclimb.DefaultIterations, hillclimb.DefaultEpsilon, rng)
		}},
		{"Random Local Search:", func(rng *rand.Rand) (optimization.Point, float64, error) {
			return randomsearch.Minimize(objective.Sphere, bounds, randomsearch.DefaultIterations, randomsearch.DefaultEpsilon, rng)
		}},
		{"Simulated Annealing:", func(rng *rand.Rand) (optimization.Point, float64, error) {
			return annealing.Minimize(objective.Sphere, bounds, annealing.DefaultIterations,
				annealing.DefaultTemperature, annealing.DefaultCoolingRate, annealing.DefaultEpsilon, rng)
		}},
	}

	for i, s := range searches {
		point, value, err := s.minimize(optimization.DeriveRand(base, uint64(i)))
		if err != nil {
			return fmt.Errorf("%s %w", s.title, err)
		}
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w, s.title)
		fmt.Fprintln(w, "Solution:", []float64(point), "Value:", value)
	}
	return nil
}
