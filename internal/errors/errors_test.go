package errors

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/copyleftdev/localsearch/internal/logging"
)

var errBase = stderrors.New("base failure")

func TestErrorString(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{name: "message only", err: &Error{Message: "boom"}, want: "boom"},
		{name: "operation", err: &Error{Message: "boom", Operation: "start"}, want: "boom: operation=start"},
		{
			name: "everything",
			err:  &Error{Message: "boom", Operation: "start", Component: "server", Err: errBase},
			want: "boom: operation=start, component=server: base failure",
		},
		{name: "wrapped only", err: &Error{Err: errBase}, want: "base failure"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestWrapKeepsChain(t *testing.T) {
	assert.Nil(t, Wrap(nil, "ignored"))

	err := Wrap(fmt.Errorf("decode: %w", errBase), "job j1").WithOperation("run")
	assert.True(t, Is(err, errBase))
	assert.Equal(t, "job j1: operation=run: decode: base failure", err.Error())
	assert.NotEmpty(t, err.StackTrace())

	var target *Error
	require.True(t, As(err, &target))
	assert.Same(t, err, target)
	assert.Equal(t, "decode: base failure", err.Unwrap().Error())

	outer := Wrap(err, "status")
	assert.Equal(t, err.StackTrace(), outer.StackTrace(), "the innermost stack is kept")
}

func TestKinds(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		kind   Kind
		status int
	}{
		{name: "plain error", err: errBase, kind: KindInternal, status: http.StatusInternalServerError},
		{name: "invalid", err: Invalid(errBase, "bad bounds"), kind: KindInvalid, status: http.StatusBadRequest},
		{name: "not found", err: NotFound("job %q not found", "x"), kind: KindNotFound, status: http.StatusNotFound},
		{name: "conflict", err: Conflict("job is completed"), kind: KindConflict, status: http.StatusConflict},
		{name: "unavailable", err: New("queue full").WithKind(KindUnavailable), kind: KindUnavailable, status: http.StatusServiceUnavailable},
		{name: "wrapping keeps kind", err: Wrap(NotFound("gone"), "status"), kind: KindNotFound, status: http.StatusNotFound},
		{name: "std wrapping keeps kind", err: fmt.Errorf("rpc: %w", Conflict("done")), kind: KindConflict, status: http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, KindOf(tt.err))
			assert.Equal(t, tt.status, KindOf(tt.err).HTTPStatus())
		})
	}
}

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSON(rec, Invalid(errBase, "bad request"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "bad request: base failure", body.Error)
	assert.Equal(t, "invalid", body.Kind)

	rec = httptest.NewRecorder()
	WriteJSON(rec, errBase)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal Server Error", body.Error, "internal details are not leaked")
}

func TestRecoveryMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(logging.DebugLevel, &buf)

	handler := RecoveryMiddleware(logger)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("objective exploded")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/optimize", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, buf.String(), "Recovered from panic")
	assert.Contains(t, buf.String(), "objective exploded")
}
