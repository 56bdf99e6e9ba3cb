// Package middleware provides HTTP middleware for the web server.
package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/jspark-dev/rollbook/internal/session"
)

// TokenValidator checks a bearer token and returns the live session for it.
// Implemented by *session.Manager.
type TokenValidator interface {
	Validate(token string) (session.Session, bool)
}

// SessionAuth returns middleware that requires a valid session token on
// every request. The token is read from "Authorization: Bearer <token>"
// (or the X-Session-Token header as a fallback) and the resulting session
// is stored in the request context for handlers and audit entries.
func SessionAuth(v TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				slog.Warn("auth: missing session token",
					"path", r.URL.Path,
					"method", r.Method,
					"remote_addr", r.RemoteAddr,
				)
				http.Error(w, `{"error":"login required","code":"AUTH001"}`, http.StatusUnauthorized)
				return
			}

			s, ok := v.Validate(token)
			if !ok {
				slog.Warn("auth: invalid or expired session token",
					"path", r.URL.Path,
					"method", r.Method,
					"remote_addr", r.RemoteAddr,
				)
				http.Error(w, `{"error":"session expired, log in again","code":"AUTH002"}`, http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(session.NewContext(r.Context(), s)))
		})
	}
}

// bearerToken extracts the session token from the request headers.
func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	return r.Header.Get("X-Session-Token")
}
