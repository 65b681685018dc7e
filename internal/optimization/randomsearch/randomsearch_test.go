package randomsearch

import (
	"context"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/copyleftdev/localsearch/internal/optimization"
	"github.com/copyleftdev/localsearch/internal/optimization/objective"
)

var square = optimization.NewBounds([2]float64{-5, 5}, [2]float64{-5, 5})

func run(t *testing.T, cfg Config, problem optimization.Problem) *optimization.Result {
	t.Helper()

	s, err := New(cfg)
	require.NoError(t, err)
	res, err := s.Optimize(context.Background(), problem)
	require.NoError(t, err)
	return res
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "never escape", mutate: func(c *Config) { c.Probability = 0 }},
		{name: "always escape", mutate: func(c *Config) { c.Probability = 1 }},
		{name: "probability above one", mutate: func(c *Config) { c.Probability = 1.5 }, wantErr: true},
		{name: "negative probability", mutate: func(c *Config) { c.Probability = -0.1 }, wantErr: true},
		{name: "nan probability", mutate: func(c *Config) { c.Probability = math.NaN() }, wantErr: true},
		{name: "negative step", mutate: func(c *Config) { c.StepSize = -1 }, wantErr: true},
		{name: "negative iterations", mutate: func(c *Config) { c.Iterations = -1 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)

			s, err := New(cfg)
			if tt.wantErr {
				assert.ErrorIs(t, err, optimization.ErrInvalidConfig)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, Name, s.Name())
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 1000, cfg.Iterations)
	assert.Equal(t, 1e-6, cfg.Epsilon)
	assert.Equal(t, 0.5, cfg.StepSize)
	assert.Equal(t, 0.2, cfg.Probability)
}

func TestNoEscapeOnlyImproves(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Iterations = 300
	cfg.Epsilon = 0
	cfg.Probability = 0
	cfg.Seed = 5

	res := run(t, cfg, optimization.Problem{
		Objective: objective.Sphere,
		Bounds:    square,
		Initial:   optimization.Point{4, -4},
	})

	assert.Equal(t, 300, res.Iterations, "without a convergence exit the whole budget runs")
	assert.Equal(t, optimization.StopBudget, res.Reason)
	require.NotEmpty(t, res.History)

	prev := 32.0
	for _, ev := range res.History {
		assert.Equal(t, optimization.Move, ev.Verdict)
		assert.Less(t, ev.Solution.Value, prev)
		prev = ev.Solution.Value
	}
	assert.Equal(t, res.Current, res.BestSolution)
}

func TestHugeEpsilonConvergesOnFirstNeighbor(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Epsilon = 1e9
	cfg.Seed = 8

	res := run(t, cfg, optimization.Problem{
		Objective: objective.Sphere,
		Bounds:    square,
		Initial:   optimization.Point{1, 1},
	})

	assert.Equal(t, 1, res.Iterations)
	assert.Equal(t, optimization.StopConverged, res.Reason)
	require.Len(t, res.History, 1)
	assert.Equal(t, optimization.Converge, res.History[0].Verdict)
	assert.Equal(t, res.History[0].Solution.Parameters, res.Current.Parameters,
		"the converging neighbor becomes the final point")
}

func TestAlwaysEscapeAcceptsEveryNeighbor(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Iterations = 100
	cfg.Epsilon = 0
	cfg.Probability = 1
	cfg.Seed = 13

	res := run(t, cfg, optimization.Problem{Objective: objective.Sphere, Bounds: square})

	assert.Len(t, res.History, 100)
	assert.LessOrEqual(t, res.BestSolution.Value, res.Current.Value)
	for _, ev := range res.History {
		assert.GreaterOrEqual(t, ev.Solution.Value, res.BestSolution.Value)
	}
}

func TestResultWithinBounds(t *testing.T) {
	narrow := optimization.NewBounds([2]float64{0, 0.1}, [2]float64{-5, -4.9}, [2]float64{2, 3})

	for seed := int64(1); seed <= 25; seed++ {
		cfg := DefaultConfig()
		cfg.Seed = seed

		res := run(t, cfg, optimization.Problem{Objective: objective.Sphere, Bounds: narrow})
		require.True(t, narrow.Contains(res.BestSolution.Parameters), "seed %d: %v", seed, res.BestSolution.Parameters)
		require.True(t, narrow.Contains(res.Current.Parameters), "seed %d: %v", seed, res.Current.Parameters)
		require.GreaterOrEqual(t, res.BestSolution.Value, 0.0)
	}
}

func TestSameSeedSameResult(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Seed = 2024
	problem := optimization.Problem{Objective: objective.Ackley, Bounds: square}

	first := run(t, cfg, problem)
	second := run(t, cfg, problem)

	assert.Equal(t, first.BestSolution, second.BestSolution)
	assert.Equal(t, first.Iterations, second.Iterations)
}

func TestEscapeDecide(t *testing.T) {
	current := optimization.Solution{Parameters: optimization.Point{1}, Value: 1}
	rng := rand.New(rand.NewSource(1))

	tests := []struct {
		name     string
		acceptor escape
		neighbor float64
		want     optimization.Verdict
	}{
		{name: "within epsilon", acceptor: escape{epsilon: 1e-6}, neighbor: 1 + 1e-7, want: optimization.Converge},
		{name: "improves", acceptor: escape{epsilon: 1e-6}, neighbor: 0.5, want: optimization.Move},
		{name: "worse never escapes", acceptor: escape{epsilon: 1e-6}, neighbor: 2},
		{name: "worse always escapes", acceptor: escape{epsilon: 1e-6, probability: 1}, neighbor: 2, want: optimization.Move},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cand := []optimization.Solution{{Parameters: optimization.Point{0}, Value: tt.neighbor}}
			assert.Equal(t, tt.want, tt.acceptor.Decide(current, cand, rng).Verdict)
		})
	}
}

func TestMinimize(t *testing.T) {
	point, value, err := Minimize(objective.Sphere, square, DefaultIterations, DefaultEpsilon, rand.New(rand.NewSource(4)))
	require.NoError(t, err)

	assert.True(t, square.Contains(point))
	assert.Equal(t, objective.Sphere(point), value)
	assert.GreaterOrEqual(t, value, 0.0)
}

func BenchmarkRandomLocalSearch(b *testing.B) {
	cfg := DefaultConfig()
	cfg.Epsilon = 0
	cfg.Rand = rand.New(rand.NewSource(1))
	s, err := New(cfg)
	if err != nil {
		b.Fatal(err)
	}
	problem := optimization.Problem{Objective: objective.Sphere, Bounds: square}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := s.Optimize(context.Background(), problem); err != nil {
			b.Fatal(err)
		}
	}
}
