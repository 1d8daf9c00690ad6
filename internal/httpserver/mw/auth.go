package mw

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gitdex/gitdex/internal/auth"
	"github.com/gitdex/gitdex/internal/logger"
)

// SessionCookie is the fallback token carrier for browser clients that do
// not set an Authorization header.
const SessionCookie = "gitdex_session"

type claimsKey struct{}

// RequireAdmin rejects requests without a valid admin token. The validated
// claims are stored on the request context for handlers that want them.
func RequireAdmin(svc *auth.Service, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := svc.Validate(sessionToken(r))
			if err != nil {
				log.Debug("admin auth rejected",
					logger.String("path", r.URL.Path),
					logger.String("remote_ip", r.RemoteAddr))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_ = json.NewEncoder(w).Encode(map[string]any{
					"success": false,
					"error":   "unauthorized",
				})
				return
			}
			ctx := context.WithValue(r.Context(), claimsKey{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminClaims returns the validated claims set by RequireAdmin, if any.
func AdminClaims(ctx context.Context) (auth.Claims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(auth.Claims)
	return claims, ok
}

// IsAdmin reports whether the request carries a valid admin token. For
// routes without RequireAdmin, where admin is a fast path rather than a
// requirement.
func IsAdmin(r *http.Request, svc *auth.Service) bool {
	if svc == nil {
		return false
	}
	if _, ok := AdminClaims(r.Context()); ok {
		return true
	}
	token := sessionToken(r)
	if token == "" {
		return false
	}
	_, err := svc.Validate(token)
	return err == nil
}

// sessionToken extracts the token from the Authorization header, falling
// back to the session cookie.
func sessionToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		if strings.HasPrefix(header, "Bearer ") {
			return strings.TrimSpace(header[len("Bearer "):])
		}
		return ""
	}
	if c, err := r.Cookie(SessionCookie); err == nil {
		return c.Value
	}
	return ""
}
