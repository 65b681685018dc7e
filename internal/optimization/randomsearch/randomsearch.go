// Package randomsearch implements random local search: one uniformly
// perturbed neighbor per iteration, accepted when it improves or, with a
// fixed probability, even when it does not.
package randomsearch

import (
	"context"
	"math"
	"math/rand"

	"github.com/copyleftdev/localsearch/internal/optimization"
	"github.com/copyleftdev/localsearch/internal/optimization/search"
)

// Name identifies the algorithm in logs, metrics and the API.
const Name = "random_local_search"

const (
	DefaultIterations  = 1000
	DefaultEpsilon     = 1e-6
	DefaultStepSize    = 0.5
	DefaultProbability = 0.2
)

// Config contains configuration for random local search
type Config struct {
	optimization.Settings

	// StepSize bounds the uniform offset added to each coordinate.
	StepSize float64

	// Probability of accepting a neighbor that does not improve, regardless
	// of how much worse it is.
	Probability float64
}

// DefaultConfig returns the default random local search configuration.
func DefaultConfig() Config {
	return Config{
		Settings: optimization.Settings{
			Iterations: DefaultIterations,
			Epsilon:    DefaultEpsilon,
		},
		StepSize:    DefaultStepSize,
		Probability: DefaultProbability,
	}
}

// Searcher runs random local search.
type Searcher struct {
	cfg Config
}

// New creates a new Searcher
func New(cfg Config) (*Searcher, error) {
	if err := cfg.Settings.Validate(); err != nil {
		return nil, optimization.WrapErrorf(err, "invalid settings").WithComponent(Name)
	}
	if math.IsNaN(cfg.StepSize) || math.IsInf(cfg.StepSize, 0) || cfg.StepSize < 0 {
		return nil, optimization.WrapErrorf(optimization.ErrInvalidConfig,
			"step size must be a finite non-negative number, got %v", cfg.StepSize).
			WithOperation("New").WithComponent(Name)
	}
	if !(cfg.Probability >= 0 && cfg.Probability <= 1) {
		return nil, optimization.WrapErrorf(optimization.ErrInvalidConfig,
			"probability must be in [0, 1], got %v", cfg.Probability).
			WithOperation("New").WithComponent(Name)
	}
	return &Searcher{cfg: cfg}, nil
}

// Name implements optimization.Optimizer.
func (s *Searcher) Name() string { return Name }

// Optimize runs random local search over problem. Result.Current is the
// point the walk ended on; Result.BestSolution the best point it accepted.
func (s *Searcher) Optimize(ctx context.Context, problem optimization.Problem) (*optimization.Result, error) {
	loop := &search.Loop{
		Generator:  search.UniformStep{StepSize: s.cfg.StepSize},
		Acceptor:   escape{epsilon: s.cfg.Epsilon, probability: s.cfg.Probability},
		Iterations: s.cfg.Iterations,
		Rand:       s.cfg.NewRand(),
		Logger:     s.cfg.NamedLogger(Name),
		Observer:   s.cfg.Observer,
	}
	return loop.Run(ctx, problem)
}

// Minimize runs random local search with the default step size and
// acceptance probability and returns the best point found and its value.
func Minimize(objective optimization.ObjectiveFunc, bounds optimization.Bounds, iterations int, epsilon float64, rng *rand.Rand) (optimization.Point, float64, error) {
	cfg := DefaultConfig()
	cfg.Iterations = iterations
	cfg.Epsilon = epsilon
	cfg.Rand = rng

	s, err := New(cfg)
	if err != nil {
		return nil, 0, err
	}
	res, err := s.Optimize(context.Background(), optimization.Problem{Objective: objective, Bounds: bounds})
	if err != nil {
		return nil, 0, err
	}
	return res.BestSolution.Parameters, res.BestSolution.Value, nil
}

// escape accepts improvements and, with a fixed probability, anything else.
// A neighbor within epsilon of the current value ends the run.
type escape struct {
	epsilon     float64
	probability float64
}

func (a escape) Decide(current optimization.Solution, candidates []optimization.Solution, rng *rand.Rand) search.Decision {
	neighbor := candidates[0]
	if math.Abs(current.Value-neighbor.Value) < a.epsilon {
		return search.Decision{Verdict: optimization.Converge}
	}
	if neighbor.Value < current.Value || rng.Float64() < a.probability {
		return search.Decision{Verdict: optimization.Move}
	}
	return search.Decision{Verdict: optimization.Reject}
}
