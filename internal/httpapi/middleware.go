package httpapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"civicdesk/internal/model"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

type ctxKey int

const userKey ctxKey = iota

// UserFromContext returns the authenticated user placed there by
// requireAuth.
func UserFromContext(ctx context.Context) *model.User {
	user, _ := ctx.Value(userKey).(*model.User)
	return user
}

// requireAuth validates the bearer token and loads the account behind it,
// so downstream handlers always see fresh role and office assignment.
func (h *Handler) requireAuth(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		header := r.Header.Get("Authorization")
		if header == "" {
			writeError(w, http.StatusUnauthorized, "missing_token", "missing bearer token")
			return
		}
		if !strings.HasPrefix(header, "Bearer ") {
			writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token format")
			return
		}

		claims, err := h.auth.ParseToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid_token", "invalid or expired token")
			return
		}

		user, err := h.auth.GetUser(r.Context(), claims.UserID)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid_token", "account no longer exists")
			return
		}

		ctx := context.WithValue(r.Context(), userKey, user)
		next(w, r.WithContext(ctx), ps)
	}
}

// requireRole additionally restricts the route to the given roles.
func (h *Handler) requireRole(next httprouter.Handle, roles ...model.UserRole) httprouter.Handle {
	return h.requireAuth(func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		user := UserFromContext(r.Context())
		for _, role := range roles {
			if user.Role == role {
				next(w, r, ps)
				return
			}
		}
		writeError(w, http.StatusForbidden, "forbidden", "no permission for this operation")
	})
}

// SecurityHeaders applies a set of recommended HTTP security headers.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "frame-ancestors 'none'")
		w.Header().Set("Referrer-Policy", "no-referrer")
		w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate, private")
		next.ServeHTTP(w, r)
	})
}

// RequestLogger logs each request with method, path, status and duration.
func RequestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(recorder, r)

			logger.Info("Request handled",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", recorder.status),
				zap.String("remote", r.RemoteAddr),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
