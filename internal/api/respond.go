package api

import (
	"encoding/json"
	"net/http"

	"github.com/impactgraph/impactgraph/pkg/errors"
)

// errorEnvelope is the JSON body of every non-2xx response.
type errorEnvelope struct {
	Error     errorDetail `json:"error"`
	RequestID string      `json:"request_id,omitempty"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// statusFor maps error codes to HTTP status. Unknown and unclassified
// errors land on 500.
func statusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidFormat,
		errors.ErrCodeInvalidTheme, errors.ErrCodeInvalidBands,
		errors.ErrCodeUnsupported:
		return http.StatusBadRequest
	case errors.ErrCodeEmptyNetwork, errors.ErrCodeNotFound,
		errors.ErrCodeFileNotFound:
		return http.StatusNotFound
	case errors.ErrCodeIntegrity:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeStore, errors.ErrCodeStoreTimeout:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response", "request_id", RequestIDFrom(r.Context()), "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}

	if status >= 500 {
		s.logger.Error("request error", "request_id", RequestIDFrom(r.Context()), "err", err)
	}

	s.writeJSON(w, r, status, errorEnvelope{
		Error: errorDetail{
			Code:    string(code),
			Message: errors.UserMessage(err),
		},
		RequestID: RequestIDFrom(r.Context()),
	})
}
