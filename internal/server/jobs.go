package server

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	apperrors "github.com/copyleftdev/localsearch/internal/errors"
	"github.com/copyleftdev/localsearch/internal/optimization"
	"github.com/copyleftdev/localsearch/internal/optimization/annealing"
	"github.com/copyleftdev/localsearch/internal/optimization/hillclimb"
	"github.com/copyleftdev/localsearch/internal/optimization/objective"
	"github.com/copyleftdev/localsearch/internal/optimization/randomsearch"
)

// Status is the lifecycle state of a job.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Terminal reports whether the job can no longer change.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

// StartRequest describes a search to run. Pointer fields fall back to the
// configured defaults when absent.
type StartRequest struct {
	Algorithm string      `json:"algorithm"`
	Objective string      `json:"objective,omitempty"`
	Bounds    [][]float64 `json:"bounds"`
	Initial   []float64   `json:"initial,omitempty"`
	Seed      int64       `json:"seed,omitempty"`

	Iterations  *int     `json:"iterations,omitempty"`
	Epsilon     *float64 `json:"epsilon,omitempty"`
	StepSize    *float64 `json:"step_size,omitempty"`
	Probability *float64 `json:"probability,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
	CoolingRate *float64 `json:"cooling_rate,omitempty"`
}

// StartResponse acknowledges a started job.
type StartResponse struct {
	ID     string `json:"optimization_id"`
	Status Status `json:"status"`
	Seed   int64  `json:"seed"`
}

// JobStatus is a point-in-time view of a job.
type JobStatus struct {
	ID          string                 `json:"optimization_id"`
	Algorithm   string                 `json:"algorithm"`
	Objective   string                 `json:"objective"`
	Seed        int64                  `json:"seed"`
	Bounds      [][2]float64           `json:"bounds"`
	Status      Status                 `json:"status"`
	Progress    float64                `json:"progress"`
	Iteration   int                    `json:"iteration"`
	Temperature float64                `json:"temperature,omitempty"`
	StartTime   time.Time              `json:"start_time"`
	LastUpdate  time.Time              `json:"last_update"`
	EndTime     *time.Time             `json:"end_time,omitempty"`
	Best        *optimization.Solution `json:"best_solution,omitempty"`
	Current     *optimization.Solution `json:"current,omitempty"`
	Result      *optimization.Result   `json:"result,omitempty"`
	Error       string                 `json:"error,omitempty"`
}

// job is guarded by Server.jobsMu.
type job struct {
	id        string
	algorithm string
	objective string
	seed      int64
	bounds    optimization.Bounds
	budget    int

	status      Status
	startTime   time.Time
	lastUpdate  time.Time
	endTime     *time.Time
	iteration   int
	temperature float64
	best        *optimization.Solution
	current     *optimization.Solution
	result      *optimization.Result
	err         string
	cancel      context.CancelFunc
}

func (j *job) snapshot() JobStatus {
	st := JobStatus{
		ID:          j.id,
		Algorithm:   j.algorithm,
		Objective:   j.objective,
		Seed:        j.seed,
		Bounds:      j.bounds.Pairs(),
		Status:      j.status,
		Iteration:   j.iteration,
		Temperature: j.temperature,
		StartTime:   j.startTime,
		LastUpdate:  j.lastUpdate,
		EndTime:     j.endTime,
		Best:        j.best.Clone(),
		Current:     j.current.Clone(),
		Result:      j.result,
		Error:       j.err,
	}
	switch {
	case j.status == StatusCompleted:
		st.Progress = 1
	case j.budget > 0:
		st.Progress = float64(j.iteration) / float64(j.budget)
	}
	return st
}

// finish moves the job into a terminal state unless cancellation got there
// first.
func (j *job) finish(status Status, now time.Time) {
	if j.status.Terminal() {
		return
	}
	j.status = status
	j.endTime = &now
	j.lastUpdate = now
}

// plan is a validated request, ready to run.
type plan struct {
	optimizer optimization.Optimizer
	problem   optimization.Problem
	objective string
	budget    int
}

// newPlan validates req against the configuration and builds the optimizer.
// Progress is reported through observer.
func (s *Server) newPlan(req StartRequest, seed int64, observer optimization.Observer) (*plan, error) {
	name := req.Objective
	if name == "" {
		name = "sphere"
	}
	fn, ok := objective.Lookup(name)
	if !ok {
		return nil, apperrors.Invalid(nil, fmt.Sprintf("unknown objective %q, want one of %v", name, objective.Names()))
	}

	if len(req.Bounds) == 0 {
		return nil, apperrors.Invalid(nil, "bounds are required")
	}
	pairs := make([][2]float64, len(req.Bounds))
	for i, b := range req.Bounds {
		if len(b) != 2 {
			return nil, apperrors.Invalid(nil, "invalid bounds format, expected [[min1, max1], [min2, max2], ...]")
		}
		pairs[i] = [2]float64{b[0], b[1]}
	}

	problem := fn.Problem(optimization.NewBounds(pairs...))
	if len(req.Initial) > 0 {
		problem.Initial = optimization.Point(req.Initial).Clone()
	}
	if err := problem.Validate(); err != nil {
		return nil, apperrors.Invalid(err, "invalid problem")
	}

	defaults := s.cfg.Search
	settings := optimization.Settings{
		Iterations: defaults.Iterations,
		Epsilon:    defaults.Epsilon,
		Rand:       rand.New(rand.NewSource(seed)),
		Logger:     s.searchLogger,
		Observer:   observer,
	}
	if req.Iterations != nil {
		settings.Iterations = *req.Iterations
	}
	if req.Epsilon != nil {
		settings.Epsilon = *req.Epsilon
	}
	if limit := s.cfg.Optimization.MaxIterations; settings.Iterations > limit {
		return nil, apperrors.Invalid(nil, fmt.Sprintf("iterations %d exceed the limit of %d", settings.Iterations, limit))
	}

	pick := func(v *float64, def float64) float64 {
		if v != nil {
			return *v
		}
		return def
	}

	var (
		opt optimization.Optimizer
		err error
	)
	switch req.Algorithm {
	case hillclimb.Name:
		opt, err = hillclimb.New(hillclimb.Config{
			Settings: settings,
			StepSize: pick(req.StepSize, defaults.HillClimbStepSize),
		})
	case randomsearch.Name:
		opt, err = randomsearch.New(randomsearch.Config{
			Settings:    settings,
			StepSize:    pick(req.StepSize, defaults.RandomStepSize),
			Probability: pick(req.Probability, defaults.AcceptProbability),
		})
	case annealing.Name:
		opt, err = annealing.New(annealing.Config{
			Settings:    settings,
			Temperature: pick(req.Temperature, defaults.Temperature),
			CoolingRate: pick(req.CoolingRate, defaults.CoolingRate),
			StepSize:    pick(req.StepSize, defaults.AnnealingStepSize),
		})
	default:
		return nil, apperrors.Invalid(nil, fmt.Sprintf("unknown algorithm %q, want one of %v", req.Algorithm, Algorithms()))
	}
	if err != nil {
		return nil, apperrors.Invalid(err, "invalid parameters")
	}

	return &plan{
		optimizer: opt,
		problem:   problem,
		objective: name,
		budget:    settings.Iterations,
	}, nil
}

// Algorithms lists the algorithm names a StartRequest accepts.
func Algorithms() []string {
	return []string{hillclimb.Name, randomsearch.Name, annealing.Name}
}
