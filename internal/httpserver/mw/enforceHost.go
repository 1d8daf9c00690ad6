package mw

import (
	"net/http"
	"strings"

	"github.com/gitdex/gitdex/internal/logger"
)

// EnforceHost rejects requests whose Host header matches none of the
// allowed patterns. Patterns may use a leading wildcard ("*.example.com").
// An empty pattern list disables the check.
func EnforceHost(allowedHosts []string, log logger.Logger) func(http.Handler) http.Handler {
	if len(allowedHosts) == 0 {
		log.Debug("EnforceHost: no patterns, passthrough")
		return func(next http.Handler) http.Handler { return next }
	}

	log.Debugf("EnforceHost: patterns=%v", allowedHosts)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, pattern := range allowedHosts {
				if matchHost(r.Host, pattern) {
					next.ServeHTTP(w, r)
					return
				}
			}
			log.Debugf("EnforceHost: host %q rejected", r.Host)
			w.WriteHeader(http.StatusForbidden)
		})
	}
}

func matchHost(host, pattern string) bool {
	if host == pattern {
		return true
	}
	// "*.example.com" matches any subdomain but not the apex.
	if after, ok := strings.CutPrefix(pattern, "*"); ok {
		return strings.HasSuffix(host, after)
	}
	return false
}
