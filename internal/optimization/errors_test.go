package optimization

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorString(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "message only",
			err:  &Error{Message: "bad step 3"},
			want: "bad step 3",
		},
		{
			name: "op and component",
			err:  (&Error{Message: "bad step"}).WithOperation("New").WithComponent("hillclimb"),
			want: "hillclimb: New: bad step",
		},
		{
			name: "wrapped sentinel",
			err:  WrapErrorf(ErrInvalidConfig, "step size %v", -1.0).WithOperation("New"),
			want: "New: step size -1: invalid configuration",
		},
		{
			name: "nil",
			err:  nil,
			want: "<nil>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestWrapErrorfNil(t *testing.T) {
	assert.Nil(t, WrapErrorf(nil, "ignored"))
}

func TestErrorChain(t *testing.T) {
	inner := WrapErrorf(ErrDimensionMismatch, "x").WithComponent("search")
	wrapped := fmt.Errorf("run: %w", inner)

	var e *Error
	assert.True(t, errors.As(wrapped, &e))
	assert.Equal(t, "search", e.Component)
	assert.True(t, errors.Is(wrapped, ErrDimensionMismatch))
}
