package optimization

import (
	"context"
	"fmt"
)

// Optimizer defines the interface for the local search algorithms
type Optimizer interface {
	// Name returns the algorithm identifier, e.g. "hill_climbing".
	Name() string

	// Optimize runs one search over the problem
	Optimize(ctx context.Context, problem Problem) (*Result, error)
}

// ObjectiveFunc defines the function to be minimized. It must be pure and
// return a finite value for every feasible point.
type ObjectiveFunc func(x []float64) float64

// Problem describes what to minimize and where.
type Problem struct {
	// Objective function to minimize
	Objective ObjectiveFunc

	// Bounds for each dimension
	Bounds Bounds

	// Dim is the input length the objective expects; 0 accepts any length
	Dim int

	// Initial fixes the starting point. A uniform random feasible point is
	// drawn when nil.
	Initial Point
}

// Validate checks the problem before a run starts.
func (p Problem) Validate() error {
	const op = "Problem.Validate"

	if p.Objective == nil {
		return WrapErrorf(ErrNilObjective, "cannot search without an objective").WithOperation(op)
	}
	if err := p.Bounds.Validate(); err != nil {
		return err
	}
	if p.Dim > 0 && p.Dim != p.Bounds.Dim() {
		return WrapErrorf(ErrDimensionMismatch, "objective expects %d dimensions, bounds have %d",
			p.Dim, p.Bounds.Dim()).WithOperation(op)
	}
	if p.Initial != nil {
		if len(p.Initial) != p.Bounds.Dim() {
			return WrapErrorf(ErrDimensionMismatch, "initial point has %d coordinates, bounds have %d",
				len(p.Initial), p.Bounds.Dim()).WithOperation(op)
		}
		if !p.Bounds.Contains(p.Initial) {
			return WrapErrorf(ErrInfeasiblePoint, "initial point %v", p.Initial).WithOperation(op)
		}
	}
	return nil
}

// Evaluate calls the objective on x and rejects non-finite values.
func (p Problem) Evaluate(x Point) (float64, error) {
	v := p.Objective(x)
	if !isFinite(v) {
		return v, WrapErrorf(ErrNonFiniteValue, "f(%v) = %v", []float64(x), v).WithOperation("Problem.Evaluate")
	}
	return v, nil
}

// Solution represents a point together with its objective value
type Solution struct {
	Parameters Point   `json:"parameters"`
	Value      float64 `json:"value"`
}

// Clone returns a deep copy of s.
func (s *Solution) Clone() *Solution {
	if s == nil {
		return nil
	}
	return &Solution{Parameters: s.Parameters.Clone(), Value: s.Value}
}

// Verdict is the outcome of an acceptance decision.
type Verdict int

const (
	// Reject keeps the current point.
	Reject Verdict = iota
	// Move replaces the current point with the chosen candidate.
	Move
	// Converge replaces the current point and ends the run.
	Converge
	// Halt keeps the current point and ends the run.
	Halt
)

func (v Verdict) String() string {
	switch v {
	case Reject:
		return "reject"
	case Move:
		return "move"
	case Converge:
		return "converge"
	case Halt:
		return "halt"
	default:
		return fmt.Sprintf("verdict(%d)", int(v))
	}
}

// MarshalText encodes the verdict by name.
func (v Verdict) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// UnmarshalText decodes a verdict name.
func (v *Verdict) UnmarshalText(text []byte) error {
	for _, candidate := range []Verdict{Reject, Move, Converge, Halt} {
		if candidate.String() == string(text) {
			*v = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown verdict %q", text)
}

// StopReason tells why a run ended.
type StopReason string

const (
	// StopBudget means the iteration budget was used up.
	StopBudget StopReason = "budget_exhausted"
	// StopLocalOptimum means no neighbor improved on the current point.
	StopLocalOptimum StopReason = "local_optimum"
	// StopConverged means a candidate's value was within epsilon of the current one.
	StopConverged StopReason = "converged"
	// StopFrozen means the annealing temperature fell below epsilon.
	StopFrozen StopReason = "frozen"
)

// Evaluation records the candidate an iteration decided on
type Evaluation struct {
	Iteration int       `json:"iteration"`
	Solution  *Solution `json:"solution"`
	Verdict   Verdict   `json:"verdict"`
}

// Step is reported to an Observer after every completed iteration.
type Step struct {
	Iteration   int
	Verdict     Verdict
	Current     Solution
	Best        Solution
	Temperature float64
}

// Observer receives progress updates. It runs on the search goroutine and
// must not retain the Solution slices.
type Observer func(Step)

// Result contains the result of an optimization run
type Result struct {
	// BestSolution is the best point accepted during the run, the initial
	// point included.
	BestSolution *Solution `json:"best_solution"`

	// Current is the point the search stood on when it stopped.
	Current *Solution `json:"current"`

	// History holds one entry per iteration that chose a candidate.
	History []Evaluation `json:"history,omitempty"`

	// Iterations is the number of candidate-generation rounds performed.
	Iterations int `json:"iterations"`

	// Evaluations counts objective calls, the initial point included.
	Evaluations int `json:"evaluations"`

	Reason StopReason `json:"reason"`

	// Converged is true when the run stopped on its own criterion rather
	// than on the iteration budget.
	Converged bool `json:"converged"`

	// Temperature is the final annealing temperature; zero for other algorithms.
	Temperature float64 `json:"temperature,omitempty"`
}
