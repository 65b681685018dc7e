// Package hillclimb implements steepest-descent hill climbing over a fixed
// axis-aligned neighborhood.
package hillclimb

import (
	"context"
	"math"
	"math/rand"

	"github.com/copyleftdev/localsearch/internal/optimization"
	"github.com/copyleftdev/localsearch/internal/optimization/search"
)

// Name identifies the algorithm in logs, metrics and the API.
const Name = "hill_climbing"

const (
	DefaultIterations = 1000
	DefaultEpsilon    = 1e-6
	DefaultStepSize   = 0.1
)

// Config contains configuration for the hill climber
type Config struct {
	optimization.Settings

	// StepSize is the perturbation applied along each axis.
	StepSize float64
}

// DefaultConfig returns the default hill climbing configuration.
func DefaultConfig() Config {
	return Config{
		Settings: optimization.Settings{
			Iterations: DefaultIterations,
			Epsilon:    DefaultEpsilon,
		},
		StepSize: DefaultStepSize,
	}
}

// HillClimber moves to the best of its 2N axis neighbors until none improves
// on the current value by more than epsilon. The only randomness is the
// initial draw.
type HillClimber struct {
	cfg Config
}

// New creates a new HillClimber
func New(cfg Config) (*HillClimber, error) {
	if err := cfg.Settings.Validate(); err != nil {
		return nil, optimization.WrapErrorf(err, "invalid settings").WithComponent(Name)
	}
	if math.IsNaN(cfg.StepSize) || math.IsInf(cfg.StepSize, 0) || cfg.StepSize <= 0 {
		return nil, optimization.WrapErrorf(optimization.ErrInvalidConfig,
			"step size must be a finite positive number, got %v", cfg.StepSize).
			WithOperation("New").WithComponent(Name)
	}
	return &HillClimber{cfg: cfg}, nil
}

// Name implements optimization.Optimizer.
func (h *HillClimber) Name() string { return Name }

// Optimize runs the hill climbing process
func (h *HillClimber) Optimize(ctx context.Context, problem optimization.Problem) (*optimization.Result, error) {
	loop := &search.Loop{
		Generator:  axisNeighbors{step: h.cfg.StepSize},
		Acceptor:   steepest{epsilon: h.cfg.Epsilon},
		Iterations: h.cfg.Iterations,
		Rand:       h.cfg.NewRand(),
		Logger:     h.cfg.NamedLogger(Name),
		Observer:   h.cfg.Observer,
	}
	return loop.Run(ctx, problem)
}

// Minimize climbs from a random point in bounds with the default step size
// and returns the final point and its value.
func Minimize(objective optimization.ObjectiveFunc, bounds optimization.Bounds, iterations int, epsilon float64, rng *rand.Rand) (optimization.Point, float64, error) {
	cfg := DefaultConfig()
	cfg.Iterations = iterations
	cfg.Epsilon = epsilon
	cfg.Rand = rng

	h, err := New(cfg)
	if err != nil {
		return nil, 0, err
	}
	res, err := h.Optimize(context.Background(), optimization.Problem{Objective: objective, Bounds: bounds})
	if err != nil {
		return nil, 0, err
	}
	return res.BestSolution.Parameters, res.BestSolution.Value, nil
}

// axisNeighbors yields current ± step along every axis, in the order
// +x₀, −x₀, +x₁, −x₁, ...
type axisNeighbors struct {
	step float64
}

func (g axisNeighbors) Neighbors(current optimization.Point, _ *rand.Rand) []optimization.Point {
	out := make([]optimization.Point, 0, 2*len(current))
	for i := range current {
		up := current.Clone()
		up[i] += g.step
		down := current.Clone()
		down[i] -= g.step
		out = append(out, up, down)
	}
	return out
}

// steepest scans the neighbors in order and keeps a running best; a
// neighbor replaces it only when lower by more than epsilon.
type steepest struct {
	epsilon float64
}

func (a steepest) Decide(current optimization.Solution, candidates []optimization.Solution, _ *rand.Rand) search.Decision {
	idx := -1
	bestValue := current.Value
	for i, c := range candidates {
		if c.Value < bestValue-a.epsilon {
			idx = i
			bestValue = c.Value
		}
	}
	if idx < 0 {
		return search.Decision{Verdict: optimization.Halt}
	}
	return search.Decision{Verdict: optimization.Move, Index: idx}
}
