package routes

import (
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/gitdex/gitdex/internal/httpserver/deps"
	"github.com/gitdex/gitdex/internal/httpserver/handlers"
	"github.com/gitdex/gitdex/internal/httpserver/mw"
)

func init() { Register(registerSubmit) }

// The submit endpoint is the only anonymous write surface, so it gets a
// tight per-IP budget.
func registerSubmit(r chi.Router, d deps.Deps) {
	limit := mw.RateLimit(mw.RateLimitConfig{
		Burst:             5,
		RefillPerIPPerMin: 3,
		MaxEntries:        10_000,
		IdleTTL:           15 * time.Minute,
		TrustProxy:        d.TrustProxy,
	})
	r.With(limit).Post("/api/submit", handlers.Submit(d))
}
