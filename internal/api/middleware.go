package api

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/impactgraph/impactgraph/pkg/observability"
)

// contextKey is unexported so other packages cannot collide with our keys.
type contextKey string

const requestIDKey contextKey = "request_id"

// RequestIDFrom returns the request id stored in ctx, or "" outside a
// request.
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// requestID tags every request with a unique id. An X-Request-ID header
// supplied by the client wins, so ids survive proxy hops.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}

		ctx := context.WithValue(r.Context(), requestIDKey, id)
		w.Header().Set("X-Request-ID", id)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// logRequests logs one line per completed request with the status and
// duration attached.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		observability.HTTP().OnRequest(r.Context(), r.Method, r.URL.Path)
		next.ServeHTTP(wrapped, r)
		observability.HTTP().OnResponse(r.Context(), r.Method, r.URL.Path, wrapped.status, time.Since(start))

		logger := s.logger.With(
			"request_id", RequestIDFrom(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapped.status,
			"duration", time.Since(start),
		)
		if wrapped.status >= 500 {
			logger.Error("request failed")
		} else {
			logger.Info("request completed")
		}
	})
}

// statusWriter captures the status code a handler writes.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
