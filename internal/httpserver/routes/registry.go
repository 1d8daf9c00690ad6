package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gitdex/gitdex/internal/httpserver/deps"
)

// Registrar mounts a group of related endpoints on the router.
type Registrar func(r chi.Router, d deps.Deps)

type Middleware = func(http.Handler) http.Handler

type entry struct {
	mount Registrar
	mws   []Middleware
}

var registry []entry

// Register queues a registrar, with optional middlewares scoped to its
// routes. Called from init() in each route file.
func Register(reg Registrar, mws ...Middleware) {
	registry = append(registry, entry{mount: reg, mws: mws})
}

// RegisterAll mounts every queued registrar. Called once at server build.
func RegisterAll(r chi.Router, d deps.Deps) {
	for _, e := range registry {
		target := chi.Router(r)
		if len(e.mws) > 0 {
			target = r.With(e.mws...)
		}
		e.mount(target, d)
	}
}
