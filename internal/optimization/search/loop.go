// Package search implements the loop shared by the local search algorithms.
//
// A Loop owns initialization, clamping, evaluation, best-so-far tracking and
// termination. The algorithms plug in two strategies: a Generator producing
// candidate points around the current one and an Acceptor deciding what to
// do with them. Acceptors that carry per-iteration state, such as an
// annealing temperature, may also implement Freezer, Stepper and
// Thermometer.
package search

import (
	"context"
	"math/rand"

	"go.uber.org/zap"

	"github.com/copyleftdev/localsearch/internal/optimization"
)

// Generator proposes candidate points around current. It must not modify
// current and must return fresh slices; the loop clamps them into the
// bounds before evaluation.
type Generator interface {
	Neighbors(current optimization.Point, rng *rand.Rand) []optimization.Point
}

// Decision is an acceptor's answer for one iteration. Index selects the
// candidate for Move and Converge and is ignored otherwise.
type Decision struct {
	Verdict optimization.Verdict
	Index   int
}

// Acceptor decides whether one of the evaluated candidates replaces current.
type Acceptor interface {
	Decide(current optimization.Solution, candidates []optimization.Solution, rng *rand.Rand) Decision
}

// Freezer is checked before candidates are generated; a frozen acceptor
// ends the run.
type Freezer interface {
	Frozen() bool
}

// Stepper is advanced after every iteration that did not end the run.
type Stepper interface {
	Step()
}

// Thermometer exposes an acceptor's temperature for reporting.
type Thermometer interface {
	Temperature() float64
}

// Loop drives one search run.
type Loop struct {
	Generator  Generator
	Acceptor   Acceptor
	Iterations int
	Rand       *rand.Rand
	Logger     *zap.Logger
	Observer   optimization.Observer
}

// Run searches problem and returns the best point found. The context is
// checked once per iteration.
func (l *Loop) Run(ctx context.Context, problem optimization.Problem) (*optimization.Result, error) {
	const op = "Loop.Run"

	if err := problem.Validate(); err != nil {
		return nil, err
	}
	if l.Generator == nil || l.Acceptor == nil {
		return nil, optimization.WrapErrorf(optimization.ErrInvalidConfig, "generator and acceptor are required").
			WithOperation(op).WithComponent("search")
	}

	rng := l.Rand
	if rng == nil {
		rng = optimization.Settings{}.NewRand()
	}
	logger := l.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	start := problem.Initial.Clone()
	if start == nil {
		start = problem.Bounds.Sample(rng)
	}
	startValue, err := problem.Evaluate(start)
	if err != nil {
		return nil, err
	}

	current := optimization.Solution{Parameters: start, Value: startValue}
	best := *current.Clone()
	result := &optimization.Result{
		History:     make([]optimization.Evaluation, 0, min(l.Iterations, 1024)),
		Evaluations: 1,
	}

	logger.Debug("Starting search",
		zap.Int("dimensions", problem.Bounds.Dim()),
		zap.Int("iterations", l.Iterations),
		zap.Float64s("initial", start),
		zap.Float64("initial_value", startValue),
	)

	freezer, _ := l.Acceptor.(Freezer)
	stepper, _ := l.Acceptor.(Stepper)

loop:
	for i := 0; i < l.Iterations; i++ {
		select {
		case <-ctx.Done():
			return nil, optimization.WrapErrorf(ctx.Err(), "stopped after %d iterations", i).
				WithOperation(op).WithComponent("search")
		default:
		}

		if freezer != nil && freezer.Frozen() {
			result.Reason = optimization.StopFrozen
			break
		}

		points := l.Generator.Neighbors(current.Parameters, rng)
		candidates := make([]optimization.Solution, len(points))
		for j, p := range points {
			problem.Bounds.ClampInPlace(p)
			v, err := problem.Evaluate(p)
			result.Evaluations++
			if err != nil {
				return nil, err
			}
			candidates[j] = optimization.Solution{Parameters: p, Value: v}
		}

		decision := l.Acceptor.Decide(current, candidates, rng)
		result.Iterations++

		if decision.Verdict == optimization.Move || decision.Verdict == optimization.Converge {
			chosen := candidates[decision.Index]
			current = chosen
			if chosen.Value < best.Value {
				best = *chosen.Clone()
			}
			result.History = append(result.History, optimization.Evaluation{
				Iteration: i,
				Solution:  chosen.Clone(),
				Verdict:   decision.Verdict,
			})
		}

		l.observe(i, decision.Verdict, current, best)

		switch decision.Verdict {
		case optimization.Halt:
			result.Reason = optimization.StopLocalOptimum
			break loop
		case optimization.Converge:
			result.Reason = optimization.StopConverged
			break loop
		}

		if stepper != nil {
			stepper.Step()
		}
	}

	if result.Reason == "" {
		result.Reason = optimization.StopBudget
	}
	result.Converged = result.Reason != optimization.StopBudget
	result.BestSolution = best.Clone()
	result.Current = current.Clone()
	if th, ok := l.Acceptor.(Thermometer); ok {
		result.Temperature = th.Temperature()
	}

	logger.Debug("Search finished",
		zap.String("reason", string(result.Reason)),
		zap.Int("iterations", result.Iterations),
		zap.Int("evaluations", result.Evaluations),
		zap.Float64("best_value", best.Value),
	)

	return result, nil
}

func (l *Loop) observe(i int, v optimization.Verdict, current, best optimization.Solution) {
	if l.Observer == nil {
		return
	}
	step := optimization.Step{
		Iteration: i,
		Verdict:   v,
		Current:   current,
		Best:      best,
	}
	if th, ok := l.Acceptor.(Thermometer); ok {
		step.Temperature = th.Temperature()
	}
	l.Observer(step)
}
