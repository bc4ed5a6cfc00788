package devserver

import (
	"context"
	"errors"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

type contextKey string

const userIDKey contextKey = "userID"

func userIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDKey).(int64)
	return id, ok
}

// instrument tags every request with a uuid request ID, logs it, and records
// request metrics.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := uuid.NewString()

		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		duration := time.Since(start)
		s.metrics.RecordRequest(r.Method, ww.Status(), duration)
		s.log.Debug(r.Context(), "request served",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", duration,
		)
	})
}

// recoverer turns handler panics into 500s instead of dropped connections.
func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.log.Error(r.Context(), "handler panic", "panic", rec, "stack", string(debug.Stack()))
				writeDetail(w, http.StatusInternalServerError, "Internal server error.")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// requireAuth validates the bearer access token and stores the user ID in the
// request context. Expired tokens get the exact detail string the client's
// renewal path keys on.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			s.metrics.RecordAuthFailure()
			writeDetail(w, http.StatusUnauthorized, "Authentication credentials were not provided.")
			return
		}

		userID, err := s.tokens.Validate(token)
		if err != nil {
			s.metrics.RecordAuthFailure()
			if errors.Is(err, ErrTokenExpired) {
				writeDetail(w, http.StatusUnauthorized, "token expired")
				return
			}
			writeDetail(w, http.StatusUnauthorized, "Invalid token.")
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
