package mw

import (
	"net/http"

	"github.com/gitdex/gitdex/internal/logger"
	"github.com/gitdex/gitdex/internal/utils"
)

// AllowOnlyCIDRS restricts a route to the given IPs/CIDR ranges.
// An empty list means no filtering. trustProxy controls whether
// forwarded-for headers are honored when resolving the client IP.
func AllowOnlyCIDRS(allowed []string, trustProxy bool, log logger.Logger) func(http.Handler) http.Handler {
	matcher := utils.NewIPMatcher(allowed)
	if matcher.IsEmpty() {
		log.Debug("AllowOnlyCIDRS: no rules, passthrough")
		return func(next http.Handler) http.Handler { return next }
	}

	log.Debugf("AllowOnlyCIDRS: %d rules, trustProxy=%v", len(allowed), trustProxy)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := utils.ClientIP(r, trustProxy)
			if !matcher.Allow(ip) {
				log.Debugf("AllowOnlyCIDRS: %s rejected (RemoteAddr=%s)", ip, r.RemoteAddr)
				w.WriteHeader(http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
