// Package annealing implements simulated annealing with a geometric cooling
// schedule and the Metropolis acceptance criterion.
package annealing

import (
	"context"
	"math"
	"math/rand"

	"go.uber.org/zap"

	"github.com/copyleftdev/localsearch/internal/optimization"
	"github.com/copyleftdev/localsearch/internal/optimization/search"
)

// Name identifies the algorithm in logs, metrics and the API.
const Name = "simulated_annealing"

const (
	DefaultIterations  = 1000
	DefaultEpsilon     = 1e-6
	DefaultTemperature = 1000
	DefaultCoolingRate = 0.95
	// DefaultStepSize is the fixed neighbor perturbation; it is not scaled
	// by the temperature or the bounds.
	DefaultStepSize = 1.0
)

// Config contains configuration for simulated annealing
type Config struct {
	optimization.Settings

	// Temperature is the starting temperature.
	Temperature float64

	// CoolingRate multiplies the temperature after every iteration.
	CoolingRate float64

	// StepSize bounds the uniform offset added to each coordinate.
	StepSize float64
}

// DefaultConfig returns the default annealing configuration.
func DefaultConfig() Config {
	return Config{
		Settings: optimization.Settings{
			Iterations: DefaultIterations,
			Epsilon:    DefaultEpsilon,
		},
		Temperature: DefaultTemperature,
		CoolingRate: DefaultCoolingRate,
		StepSize:    DefaultStepSize,
	}
}

// Annealer runs simulated annealing. It keeps no state between runs.
type Annealer struct {
	cfg Config
}

// New creates a new Annealer
func New(cfg Config) (*Annealer, error) {
	const op = "New"

	if err := cfg.Settings.Validate(); err != nil {
		return nil, optimization.WrapErrorf(err, "invalid settings").WithComponent(Name)
	}
	if math.IsNaN(cfg.Temperature) || math.IsInf(cfg.Temperature, 0) || cfg.Temperature < 0 {
		return nil, optimization.WrapErrorf(optimization.ErrInvalidConfig,
			"temperature must be a finite non-negative number, got %v", cfg.Temperature).
			WithOperation(op).WithComponent(Name)
	}
	if !(cfg.CoolingRate > 0 && cfg.CoolingRate <= 1) {
		return nil, optimization.WrapErrorf(optimization.ErrInvalidConfig,
			"cooling rate must be in (0, 1], got %v", cfg.CoolingRate).
			WithOperation(op).WithComponent(Name)
	}
	if math.IsNaN(cfg.StepSize) || math.IsInf(cfg.StepSize, 0) || cfg.StepSize < 0 {
		return nil, optimization.WrapErrorf(optimization.ErrInvalidConfig,
			"step size must be a finite non-negative number, got %v", cfg.StepSize).
			WithOperation(op).WithComponent(Name)
	}
	return &Annealer{cfg: cfg}, nil
}

// Name implements optimization.Optimizer.
func (a *Annealer) Name() string { return Name }

// Optimize runs simulated annealing over problem and returns the best point
// accepted during the run.
func (a *Annealer) Optimize(ctx context.Context, problem optimization.Problem) (*optimization.Result, error) {
	logger := a.cfg.NamedLogger(Name)
	logger.Debug("Annealing schedule",
		zap.Float64("temperature", a.cfg.Temperature),
		zap.Float64("cooling_rate", a.cfg.CoolingRate),
		zap.Float64("epsilon", a.cfg.Epsilon),
	)

	loop := &search.Loop{
		Generator: search.UniformStep{StepSize: a.cfg.StepSize},
		Acceptor: &metropolis{
			temperature: a.cfg.Temperature,
			coolingRate: a.cfg.CoolingRate,
			epsilon:     a.cfg.Epsilon,
		},
		Iterations: a.cfg.Iterations,
		Rand:       a.cfg.NewRand(),
		Logger:     logger,
		Observer:   a.cfg.Observer,
	}
	return loop.Run(ctx, problem)
}

// Minimize anneals from a random point in bounds and returns the best point
// found and its value.
func Minimize(objective optimization.ObjectiveFunc, bounds optimization.Bounds, iterations int, temp, coolingRate, epsilon float64, rng *rand.Rand) (optimization.Point, float64, error) {
	cfg := DefaultConfig()
	cfg.Iterations = iterations
	cfg.Temperature = temp
	cfg.CoolingRate = coolingRate
	cfg.Epsilon = epsilon
	cfg.Rand = rng

	a, err := New(cfg)
	if err != nil {
		return nil, 0, err
	}
	res, err := a.Optimize(context.Background(), optimization.Problem{Objective: objective, Bounds: bounds})
	if err != nil {
		return nil, 0, err
	}
	return res.BestSolution.Parameters, res.BestSolution.Value, nil
}

// metropolis holds the temperature of a single run.
type metropolis struct {
	temperature float64
	coolingRate float64
	epsilon     float64
}

// Frozen implements search.Freezer.
func (m *metropolis) Frozen() bool {
	return m.temperature < m.epsilon
}

// Step implements search.Stepper.
func (m *metropolis) Step() {
	m.temperature *= m.coolingRate
}

// Temperature implements search.Thermometer.
func (m *metropolis) Temperature() float64 {
	return m.temperature
}

func (m *metropolis) Decide(current optimization.Solution, candidates []optimization.Solution, rng *rand.Rand) search.Decision {
	neighbor := candidates[0]
	if math.Abs(neighbor.Value-current.Value) < m.epsilon {
		return search.Decision{Verdict: optimization.Converge}
	}
	delta := neighbor.Value - current.Value
	if delta < 0 || rng.Float64() < math.Exp(-delta/m.temperature) {
		return search.Decision{Verdict: optimization.Move}
	}
	return search.Decision{Verdict: optimization.Reject}
}
