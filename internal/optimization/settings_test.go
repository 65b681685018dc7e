package optimization

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSettingsValidate(t *testing.T) {
	tests := []struct {
		name     string
		settings Settings
		wantErr  bool
	}{
		{name: "defaults", settings: Settings{Iterations: 1000, Epsilon: 1e-6}},
		{name: "zero iterations", settings: Settings{Iterations: 0, Epsilon: 1e-6}},
		{name: "zero epsilon", settings: Settings{Iterations: 10}},
		{name: "negative iterations", settings: Settings{Iterations: -1}, wantErr: true},
		{name: "negative epsilon", settings: Settings{Iterations: 1, Epsilon: -1e-6}, wantErr: true},
		{name: "nan epsilon", settings: Settings{Iterations: 1, Epsilon: math.NaN()}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.settings.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidConfig)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestSettingsNewRand(t *testing.T) {
	a := Settings{Seed: 42}.NewRand()
	b := Settings{Seed: 42}.NewRand()
	assert.Equal(t, a.Float64(), b.Float64(), "same seed gives the same stream")

	own := rand.New(rand.NewSource(1))
	assert.Same(t, own, Settings{Seed: 42, Rand: own}.NewRand())
}

func TestDeriveRandStreamsDiffer(t *testing.T) {
	base := rand.New(rand.NewSource(1))
	first := DeriveRand(base, 0)
	second := DeriveRand(base, 0)

	assert.NotEqual(t, first.Int63(), second.Int63())
	assert.Equal(t, DeriveSeed(7, 3), DeriveSeed(7, 3))
	assert.NotEqual(t, DeriveSeed(7, 3), DeriveSeed(7, 4))
}

func TestNamedLoggerNil(t *testing.T) {
	assert.NotNil(t, Settings{}.NamedLogger("hill_climbing"))
}
