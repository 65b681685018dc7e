package errors

import (
	"encoding/json"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/copyleftdev/localsearch/internal/logging"
)

// RecoveryMiddleware returns a middleware that recovers from panics and
// answers 500 in the same JSON shape as WriteJSON.
func RecoveryMiddleware(logger *logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				logger.Error("Recovered from panic", map[string]interface{}{
					"error":  fmt.Sprint(rec),
					"stack":  string(debug.Stack()),
					"method": r.Method,
					"path":   r.URL.Path,
					"query":  r.URL.RawQuery,
				})

				WriteJSON(w, Errorf("internal error"))
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// Response is the JSON body of an error reply.
type Response struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// WriteJSON writes err as a JSON error body with the status of its kind.
// Internal errors are reported without their details.
func WriteJSON(w http.ResponseWriter, err error) {
	kind := KindOf(err)
	msg := err.Error()
	if kind == KindInternal {
		msg = http.StatusText(http.StatusInternalServerError)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(kind.HTTPStatus())
	_ = json.NewEncoder(w).Encode(Response{Error: msg, Kind: kind.String()})
}
