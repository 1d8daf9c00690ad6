package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/gitdex/gitdex/internal/httpserver/deps"
	"github.com/gitdex/gitdex/internal/httpserver/handlers"
)

func init() { Register(registerSites) }

func registerSites(r chi.Router, d deps.Deps) {
	r.Get("/api/sites", handlers.Sites(d))
}
