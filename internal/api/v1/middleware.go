package v1

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/vmunix/reqarr/internal/library"
)

type ctxKey struct{}

// userFrom returns the user authenticated for r.
func userFrom(ctx context.Context) *library.User {
	u, _ := ctx.Value(ctxKey{}).(*library.User)
	return u
}

// authenticate resolves the X-Api-Key header (or apikey query parameter) to
// a user and rejects the request when it does not match one.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get("X-Api-Key")
		if key == "" {
			key = r.URL.Query().Get("apikey")
		}
		if key == "" {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "API key required")
			return
		}
		u, err := s.deps.Users.GetUserByAPIKey(key)
		if err != nil {
			if errors.Is(err, library.ErrNotFound) {
				writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid API key")
				return
			}
			writeError(w, http.StatusInternalServerError, "DB_ERROR", err.Error())
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, u)))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// logRequests writes one access log line per request.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds())
	})
}

// requireEventLog wraps a handler and returns 503 if the event log is not configured.
func (s *Server) requireEventLog(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.deps.EventLog == nil {
			writeError(w, http.StatusServiceUnavailable, "NO_EVENT_LOG", "Event log not configured")
			return
		}
		next(w, r)
	}
}
