package config

import (
	"fmt"
	"math"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config is the server configuration, read from the environment.
type Config struct {
	Environment string `env:"ENV" envDefault:"development"`
	HTTP        struct {
		Port            int           `env:"HTTP_PORT" envDefault:"8080"`
		ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"30s"`
		WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"30s"`
		IdleTimeout     time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"120s"`
		ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"30s"`
	}
	Logging struct {
		Level  string `env:"LOG_LEVEL"`
		Format string `env:"LOG_FORMAT" envDefault:"json"`
		Output string `env:"LOG_OUTPUT" envDefault:"stderr"`
	}
	Optimization struct {
		// WorkerCount caps the number of searches running at once.
		WorkerCount int `env:"OPT_WORKER_COUNT" envDefault:"10"`
		// MaxIterations caps the iteration budget a request may ask for.
		MaxIterations int `env:"OPT_MAX_ITERATIONS" envDefault:"100000"`
		// MaxQueued caps the jobs waiting for a worker; 0 means no cap.
		MaxQueued int `env:"OPT_MAX_QUEUED" envDefault:"100"`
	}
	// Search holds the defaults applied when a request leaves a parameter out.
	Search struct {
		Iterations        int     `env:"LS_ITERATIONS" envDefault:"1000"`
		Epsilon           float64 `env:"LS_EPSILON" envDefault:"1e-6"`
		HillClimbStepSize float64 `env:"LS_HC_STEP_SIZE" envDefault:"0.1"`
		RandomStepSize    float64 `env:"LS_RLS_STEP_SIZE" envDefault:"0.5"`
		AcceptProbability float64 `env:"LS_RLS_PROBABILITY" envDefault:"0.2"`
		Temperature       float64 `env:"LS_SA_TEMPERATURE" envDefault:"1000"`
		CoolingRate       float64 `env:"LS_SA_COOLING_RATE" envDefault:"0.95"`
		AnnealingStepSize float64 `env:"LS_SA_STEP_SIZE" envDefault:"1"`
	}
}

// Load reads the configuration from the process environment.
func Load() (*Config, error) {
	return load(env.Options{})
}

// LoadFrom reads the configuration from environ instead of the process
// environment.
func LoadFrom(environ map[string]string) (*Config, error) {
	return load(env.Options{Environment: environ})
}

func load(opts env.Options) (*Config, error) {
	cfg := &Config{}

	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, err
	}

	// Set default logging level based on environment
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
		if cfg.Environment == "development" {
			cfg.Logging.Level = "debug"
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks ranges the env tags cannot express. The search defaults
// must satisfy the same limits the algorithms enforce, so a request that
// relies on them cannot fail on them.
func (c *Config) Validate() error {
	search := c.Search
	switch {
	case c.HTTP.Port <= 0 || c.HTTP.Port > 65535:
		return fmt.Errorf("HTTP_PORT out of range: %d", c.HTTP.Port)
	case c.Optimization.WorkerCount < 1:
		return fmt.Errorf("OPT_WORKER_COUNT must be at least 1, got %d", c.Optimization.WorkerCount)
	case c.Optimization.MaxIterations < 0:
		return fmt.Errorf("OPT_MAX_ITERATIONS must be non-negative, got %d", c.Optimization.MaxIterations)
	case c.Optimization.MaxQueued < 0:
		return fmt.Errorf("OPT_MAX_QUEUED must be non-negative, got %d", c.Optimization.MaxQueued)
	case search.Iterations < 0 || search.Iterations > c.Optimization.MaxIterations:
		return fmt.Errorf("LS_ITERATIONS must be in [0, %d], got %d", c.Optimization.MaxIterations, search.Iterations)
	case !finite(search.Epsilon) || search.Epsilon < 0:
		return fmt.Errorf("LS_EPSILON must be a finite non-negative number, got %v", search.Epsilon)
	case !finite(search.HillClimbStepSize) || search.HillClimbStepSize <= 0:
		return fmt.Errorf("LS_HC_STEP_SIZE must be a finite positive number, got %v", search.HillClimbStepSize)
	case !finite(search.RandomStepSize) || search.RandomStepSize < 0:
		return fmt.Errorf("LS_RLS_STEP_SIZE must be a finite non-negative number, got %v", search.RandomStepSize)
	case !(search.AcceptProbability >= 0 && search.AcceptProbability <= 1):
		return fmt.Errorf("LS_RLS_PROBABILITY must be in [0, 1], got %v", search.AcceptProbability)
	case !finite(search.Temperature) || search.Temperature < 0:
		return fmt.Errorf("LS_SA_TEMPERATURE must be a finite non-negative number, got %v", search.Temperature)
	case !(search.CoolingRate > 0 && search.CoolingRate <= 1):
		return fmt.Errorf("LS_SA_COOLING_RATE must be in (0, 1], got %v", search.CoolingRate)
	case !finite(search.AnnealingStepSize) || search.AnnealingStepSize < 0:
		return fmt.Errorf("LS_SA_STEP_SIZE must be a finite non-negative number, got %v", search.AnnealingStepSize)
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
