package optimization

import (
	"math/rand"
	"time"

	"go.uber.org/zap"
)

// Settings holds the parameters shared by every algorithm.
type Settings struct {
	// Maximum number of iterations
	Iterations int

	// Epsilon is the minimum meaningful difference between objective values.
	Epsilon float64

	// Random seed for reproducibility; 0 seeds from the clock. Ignored when
	// Rand is set.
	Seed int64

	// Rand is the random stream of the run. A *rand.Rand is not safe for
	// concurrent use, so concurrent runs need separate streams.
	Rand *rand.Rand

	// Logger receives debug output; nil disables logging.
	Logger *zap.Logger

	// Observer is called after every iteration; optional.
	Observer Observer
}

// Validate checks the shared parameters.
func (s Settings) Validate() error {
	const op = "Settings.Validate"

	if s.Iterations < 0 {
		return WrapErrorf(ErrInvalidConfig, "iterations must be non-negative, got %d", s.Iterations).WithOperation(op)
	}
	if !isFinite(s.Epsilon) || s.Epsilon < 0 {
		return WrapErrorf(ErrInvalidConfig, "epsilon must be a finite non-negative number, got %v", s.Epsilon).WithOperation(op)
	}
	return nil
}

// NewRand returns the run's random stream.
func (s Settings) NewRand() *rand.Rand {
	if s.Rand != nil {
		return s.Rand
	}
	if s.Seed == 0 {
		return rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return rand.New(rand.NewSource(s.Seed))
}

// NamedLogger returns s.Logger named after the algorithm, or a no-op logger.
func (s Settings) NamedLogger(name string) *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger.Named(name)
}

// DeriveSeed mixes a parent seed and a stream identifier into a new seed
// using the SplitMix64 finalizer, so sibling streams are decorrelated.
func DeriveSeed(parent int64, stream uint64) int64 {
	x := uint64(parent) ^ (stream + 0x9e3779b97f4a7c15)
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	x ^= x >> 31
	return int64(x)
}

// DeriveRand creates an independent stream from base. base advances by one
// draw, so repeated derivations with the same stream id still differ.
func DeriveRand(base *rand.Rand, stream uint64) *rand.Rand {
	return rand.New(rand.NewSource(DeriveSeed(base.Int63(), stream)))
}
