package server

import (
	"bytes"
	"encoding/json"
	"net/http"

	apperrors "github.com/copyleftdev/localsearch/internal/errors"
)

// JSON-RPC 2.0 error codes.
const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeServerError    = -32000
)

type rpcRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    string `json:"data,omitempty"`
}

type rpcResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *rpcError   `json:"error,omitempty"`
}

type idParams struct {
	ID string `json:"optimization_id"`
}

// decodeParams accepts either a params object or an array whose first
// element is the object.
func decodeParams(raw json.RawMessage, v interface{}) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return apperrors.Invalid(nil, "missing required parameters")
	}
	if raw[0] == '[' {
		var list []json.RawMessage
		if err := json.Unmarshal(raw, &list); err != nil {
			return apperrors.Invalid(err, "invalid parameter format")
		}
		if len(list) == 0 {
			return apperrors.Invalid(nil, "missing required parameters")
		}
		raw = list[0]
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return apperrors.Invalid(err, "invalid parameter format, expected object")
	}
	return nil
}

// handleJSONRPC handles JSON-RPC 2.0 requests
func (s *Server) handleJSONRPC(w http.ResponseWriter, r *http.Request) {
	var request rpcRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		s.respondWithError(w, nil, &rpcError{Code: codeParseError, Message: "Parse error"})
		return
	}

	// Validate JSON-RPC 2.0 request
	if request.JSONRPC != "2.0" || request.Method == "" {
		s.respondWithError(w, request.ID, &rpcError{Code: codeInvalidRequest, Message: "Invalid Request"})
		return
	}

	result, err := s.dispatch(request.Method, request.Params)
	if err != nil {
		if rpcErr, ok := err.(*rpcError); ok {
			s.respondWithError(w, request.ID, rpcErr)
			return
		}
		code, msg := codeServerError, "Server error"
		if apperrors.KindOf(err) == apperrors.KindInvalid {
			code, msg = codeInvalidParams, "Invalid params"
		}
		s.respondWithError(w, request.ID, &rpcError{Code: code, Message: msg, Data: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, rpcResponse{JSONRPC: "2.0", ID: request.ID, Result: result})
}

func (s *Server) dispatch(method string, params json.RawMessage) (interface{}, error) {
	switch method {
	case "optimization.start":
		var req StartRequest
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return s.Start(req)
	case "optimization.status":
		var p idParams
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		return s.Status(p.ID)
	case "optimization.cancel":
		var p idParams
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		if err := s.Cancel(p.ID); err != nil {
			return nil, err
		}
		return map[string]string{"status": "cancellation requested"}, nil
	default:
		return nil, &rpcError{Code: codeMethodNotFound, Message: "Method not found"}
	}
}

func (e *rpcError) Error() string { return e.Message }

// respondWithError sends a JSON-RPC 2.0 error response
func (s *Server) respondWithError(w http.ResponseWriter, id interface{}, rpcErr *rpcError) {
	s.logger.Warn("JSON-RPC error", map[string]interface{}{
		"code":    rpcErr.Code,
		"message": rpcErr.Message,
		"data":    rpcErr.Data,
	})
	writeJSON(w, http.StatusOK, rpcResponse{JSONRPC: "2.0", ID: id, Error: rpcErr})
}
