package routes

import (
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/gitdex/gitdex/internal/httpserver/deps"
	"github.com/gitdex/gitdex/internal/httpserver/handlers"
	"github.com/gitdex/gitdex/internal/httpserver/mw"
)

func init() { Register(registerAdmin) }

func registerAdmin(r chi.Router, d deps.Deps) {
	host := mw.EnforceHost(d.AllowedHosts, d.Logger)

	// Login is unauthenticated but brute-force limited.
	loginLimit := mw.RateLimit(mw.RateLimitConfig{
		Burst:             5,
		RefillPerIPPerMin: 2,
		MaxEntries:        10_000,
		IdleTTL:           15 * time.Minute,
		TrustProxy:        d.TrustProxy,
	})
	r.With(host, loginLimit).Post("/api/admin/login", handlers.Login(d))

	admin := r.With(host, mw.RequireAdmin(d.Auth, d.Logger))
	admin.Get("/api/admin/catalog", handlers.Catalog(d))
	admin.Post("/api/admin/approve", handlers.Approve(d))
	admin.Post("/api/admin/reject", handlers.Reject(d))
	admin.Post("/api/admin/edit", handlers.Edit(d))
	admin.Post("/api/admin/delete", handlers.Delete(d))
	admin.Post("/api/admin/analyze", handlers.Analyze(d))
	admin.Post("/api/admin/reload", handlers.Reload(d))
}
