package server

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/copyleftdev/localsearch/internal/config"
	apperrors "github.com/copyleftdev/localsearch/internal/errors"
	"github.com/copyleftdev/localsearch/internal/logging"
	"github.com/copyleftdev/localsearch/internal/metrics"
	"github.com/copyleftdev/localsearch/internal/optimization"
	"github.com/copyleftdev/localsearch/internal/optimization/objective"
)

// Logger defines the logging interface used by the server
// This allows us to be flexible with our logging implementation
type Logger interface {
	Debug(msg string, fields ...map[string]interface{})
	Info(msg string, fields ...map[string]interface{})
	Warn(msg string, fields ...map[string]interface{})
	Error(msg string, fields ...map[string]interface{})
	Fatal(msg string, fields ...map[string]interface{})
	WithFields(fields map[string]interface{}) *logging.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithMetrics records job outcomes on rec.
func WithMetrics(rec *metrics.Recorder) Option {
	return func(s *Server) { s.metrics = rec }
}

// WithSearchLogger passes logger to the search algorithms.
func WithSearchLogger(logger *zap.Logger) Option {
	return func(s *Server) { s.searchLogger = logger }
}

// Server implements the HTTP and JSON-RPC server for the local search
// service. Each job runs in its own goroutine with its own random stream;
// at most cfg.Optimization.WorkerCount jobs search at the same time.
type Server struct {
	cfg          *config.Config
	logger       Logger
	searchLogger *zap.Logger
	metrics      *metrics.Recorder

	slots chan struct{}
	wg    sync.WaitGroup

	// seeds draws a seed for jobs that do not bring one
	seedsMu sync.Mutex
	seeds   *rand.Rand

	jobs   map[string]*job
	jobsMu sync.RWMutex // Protects the jobs map, every job in it and queued
	nextID uint64
	queued int // jobs waiting for a worker slot
}

// NewServer creates a new server instance with the given config and logger
// The logger parameter accepts any type that implements the Logger interface
func NewServer(cfg *config.Config, logger Logger, opts ...Option) *Server {
	workers := cfg.Optimization.WorkerCount
	if workers < 1 {
		workers = 1
	}

	s := &Server{
		cfg:          cfg,
		logger:       logger,
		searchLogger: zap.NewNop(),
		slots:        make(chan struct{}, workers),
		seeds:        rand.New(rand.NewSource(time.Now().UnixNano())),
		jobs:         make(map[string]*job),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = metrics.NewRecorder(nil)
	}
	return s
}

func (s *Server) RegisterRoutes(r chi.Router) {
	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/optimize", s.handleOptimize)
		r.Get("/status/{id}", s.handleStatus)
		r.Delete("/optimization/{id}", s.handleCancel)
		r.Get("/objectives", s.handleObjectives)
	})

	// JSON-RPC 2.0 endpoint
	r.Post("/rpc", s.handleJSONRPC)
}

// Start validates req and launches the job. The job waits for a free worker
// slot before it searches; when cfg.Optimization.MaxQueued jobs already wait,
// Start refuses with a KindUnavailable error.
func (s *Server) Start(req StartRequest) (*StartResponse, error) {
	seed := req.Seed
	if seed == 0 {
		s.seedsMu.Lock()
		seed = s.seeds.Int63()
		s.seedsMu.Unlock()
	}

	now := time.Now()
	j := &job{
		algorithm:  req.Algorithm,
		seed:       seed,
		status:     StatusPending,
		startTime:  now,
		lastUpdate: now,
	}

	p, err := s.newPlan(req, seed, s.observe(j))
	if err != nil {
		return nil, err
	}
	j.objective = p.objective
	j.bounds = p.problem.Bounds
	j.budget = p.budget

	s.jobsMu.Lock()
	if limit := s.cfg.Optimization.MaxQueued; limit > 0 && s.queued >= limit {
		s.jobsMu.Unlock()
		return nil, apperrors.New("job queue is full, retry later").
			WithKind(apperrors.KindUnavailable).
			WithOperation("Start").
			WithComponent("server")
	}
	ctx, cancel := context.WithCancel(context.Background())
	j.cancel = cancel
	s.queued++
	s.nextID++
	j.id = fmt.Sprintf("opt_%d_%d", now.UnixNano(), s.nextID)
	s.jobs[j.id] = j
	s.jobsMu.Unlock()

	s.logger.Info("Optimization started", map[string]interface{}{
		"optimization_id": j.id,
		"algorithm":       j.algorithm,
		"objective":       j.objective,
		"seed":            seed,
		"iterations":      p.budget,
	})

	s.wg.Add(1)
	go s.run(ctx, j, p)

	return &StartResponse{ID: j.id, Status: StatusPending, Seed: seed}, nil
}

// observe returns the progress callback of j.
func (s *Server) observe(j *job) optimization.Observer {
	return func(step optimization.Step) {
		current, best := step.Current, step.Best

		s.jobsMu.Lock()
		j.iteration = step.Iteration + 1
		j.temperature = step.Temperature
		j.current = current.Clone()
		j.best = best.Clone()
		j.lastUpdate = time.Now()
		s.jobsMu.Unlock()
	}
}

// run executes the job once a worker slot is free.
func (s *Server) run(ctx context.Context, j *job, p *plan) {
	defer s.wg.Done()
	defer j.cancel()

	dequeue := s.metrics.Queued()
	select {
	case s.slots <- struct{}{}:
		dequeue()
	case <-ctx.Done():
		dequeue()
		s.jobsMu.Lock()
		s.queued--
		j.finish(StatusCancelled, time.Now())
		s.jobsMu.Unlock()
		return
	}
	defer func() { <-s.slots }()
	release := s.metrics.Started()
	defer release()

	s.jobsMu.Lock()
	s.queued--
	if j.status == StatusPending {
		j.status = StatusRunning
		j.lastUpdate = time.Now()
	}
	s.jobsMu.Unlock()

	start := time.Now()
	result, err := p.optimizer.Optimize(ctx, p.problem)
	elapsed := time.Since(start)

	s.jobsMu.Lock()
	defer s.jobsMu.Unlock()
	s.complete(j, result, err, elapsed)
}

// complete records the outcome of a search. The caller holds jobsMu.
func (s *Server) complete(j *job, result *optimization.Result, err error, elapsed time.Duration) {
	// Cancel already settled the job.
	if j.status.Terminal() {
		return
	}

	now := time.Now()
	if err != nil {
		s.metrics.Failed(j.algorithm, elapsed)
		if apperrors.Is(err, context.Canceled) {
			j.finish(StatusCancelled, now)
			return
		}
		failure := apperrors.Wrap(err, "optimization failed").
			WithOperation("run").
			WithComponent("server")
		j.err = err.Error()
		j.finish(StatusFailed, now)
		s.logger.Error("Optimization failed", map[string]interface{}{
			"optimization_id": j.id,
			"error":           failure.Error(),
			"stack":           failure.StackTrace(),
		})
		return
	}

	s.metrics.Finished(j.algorithm, j.objective, result, elapsed)
	j.result = result
	j.best = result.BestSolution.Clone()
	j.current = result.Current.Clone()
	j.iteration = result.Iterations
	j.temperature = result.Temperature
	j.finish(StatusCompleted, now)

	s.logger.Info("Optimization completed", map[string]interface{}{
		"optimization_id": j.id,
		"reason":          string(result.Reason),
		"iterations":      result.Iterations,
		"best_value":      result.BestSolution.Value,
		"elapsed_ms":      float64(elapsed.Microseconds()) / 1000.0,
	})
}

// Status returns a snapshot of the job called id.
func (s *Server) Status(id string) (*JobStatus, error) {
	s.jobsMu.RLock()
	defer s.jobsMu.RUnlock()

	j, ok := s.jobs[id]
	if !ok {
		return nil, apperrors.NotFound("optimization %q not found", id)
	}
	st := j.snapshot()
	return &st, nil
}

// Cancel stops a pending or running job.
func (s *Server) Cancel(id string) error {
	s.jobsMu.Lock()
	defer s.jobsMu.Unlock()

	j, ok := s.jobs[id]
	if !ok {
		return apperrors.NotFound("optimization %q not found", id)
	}
	if j.status.Terminal() {
		return apperrors.Conflict("cannot cancel optimization with status: %s", j.status)
	}

	j.cancel()
	j.finish(StatusCancelled, time.Now())

	s.logger.Info("Optimization cancelled", map[string]interface{}{
		"optimization_id": id,
	})
	return nil
}

// Close cancels every job and waits for their goroutines to return.
func (s *Server) Close() error {
	s.jobsMu.Lock()
	for _, j := range s.jobs {
		j.cancel()
	}
	s.jobsMu.Unlock()

	s.wg.Wait()
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// handleOptimize handles POST /api/v1/optimize
func (s *Server) handleOptimize(w http.ResponseWriter, r *http.Request) {
	var req StartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperrors.WriteJSON(w, apperrors.Invalid(err, "invalid request body"))
		return
	}

	resp, err := s.Start(req)
	if err != nil {
		apperrors.WriteJSON(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, resp)
}

// handleStatus handles GET /api/v1/status/{id}
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	st, err := s.Status(chi.URLParam(r, "id"))
	if err != nil {
		apperrors.WriteJSON(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// handleCancel handles DELETE /api/v1/optimization/{id}
func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	if err := s.Cancel(chi.URLParam(r, "id")); err != nil {
		apperrors.WriteJSON(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "cancellation requested",
	})
}

// handleObjectives handles GET /api/v1/objectives
func (s *Server) handleObjectives(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"objectives": objective.All(),
		"algorithms": Algorithms(),
	})
}
