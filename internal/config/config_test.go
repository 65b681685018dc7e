package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{})
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, 30*time.Second, cfg.HTTP.ShutdownTimeout)
	assert.Equal(t, "debug", cfg.Logging.Level, "development logs at debug level")
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, 10, cfg.Optimization.WorkerCount)
	assert.Equal(t, 100, cfg.Optimization.MaxQueued)

	assert.Equal(t, 1000, cfg.Search.Iterations)
	assert.Equal(t, 1e-6, cfg.Search.Epsilon)
	assert.Equal(t, 0.1, cfg.Search.HillClimbStepSize)
	assert.Equal(t, 0.5, cfg.Search.RandomStepSize)
	assert.Equal(t, 0.2, cfg.Search.AcceptProbability)
	assert.Equal(t, 1000.0, cfg.Search.Temperature)
	assert.Equal(t, 0.95, cfg.Search.CoolingRate)
	assert.Equal(t, 1.0, cfg.Search.AnnealingStepSize)
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{
		"ENV":                "production",
		"HTTP_PORT":          "9090",
		"LOG_FORMAT":         "text",
		"OPT_WORKER_COUNT":   "2",
		"LS_ITERATIONS":      "250",
		"LS_SA_COOLING_RATE": "0.9",
	})
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, 2, cfg.Optimization.WorkerCount)
	assert.Equal(t, 250, cfg.Search.Iterations)
	assert.Equal(t, 0.9, cfg.Search.CoolingRate)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		environ map[string]string
	}{
		{name: "not a number", environ: map[string]string{"HTTP_PORT": "eighty"}},
		{name: "port out of range", environ: map[string]string{"HTTP_PORT": "70000"}},
		{name: "no workers", environ: map[string]string{"OPT_WORKER_COUNT": "0"}},
		{name: "iterations above cap", environ: map[string]string{"OPT_MAX_ITERATIONS": "10", "LS_ITERATIONS": "11"}},
		{name: "probability above one", environ: map[string]string{"LS_RLS_PROBABILITY": "2"}},
		{name: "heating schedule", environ: map[string]string{"LS_SA_COOLING_RATE": "1.2"}},
		{name: "negative epsilon", environ: map[string]string{"LS_EPSILON": "-1"}},
		{name: "nan epsilon", environ: map[string]string{"LS_EPSILON": "NaN"}},
		{name: "zero hill climbing step", environ: map[string]string{"LS_HC_STEP_SIZE": "0"}},
		{name: "negative random step", environ: map[string]string{"LS_RLS_STEP_SIZE": "-0.5"}},
		{name: "nan probability", environ: map[string]string{"LS_RLS_PROBABILITY": "NaN"}},
		{name: "negative temperature", environ: map[string]string{"LS_SA_TEMPERATURE": "-1"}},
		{name: "nan temperature", environ: map[string]string{"LS_SA_TEMPERATURE": "NaN"}},
		{name: "nan cooling rate", environ: map[string]string{"LS_SA_COOLING_RATE": "NaN"}},
		{name: "negative annealing step", environ: map[string]string{"LS_SA_STEP_SIZE": "-1"}},
		{name: "infinite annealing step", environ: map[string]string{"LS_SA_STEP_SIZE": "+Inf"}},
		{name: "negative queue cap", environ: map[string]string{"OPT_MAX_QUEUED": "-1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFrom(tt.environ)
			assert.Error(t, err)
		})
	}
}

func TestLoadFromProcessEnvironment(t *testing.T) {
	t.Setenv("LS_RLS_STEP_SIZE", "0.25")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 0.25, cfg.Search.RandomStepSize)
}
