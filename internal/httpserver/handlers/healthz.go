package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gitdex/gitdex/internal/httpserver/deps"
)

type healthzResponse struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Uptime    string `json:"uptime"`
	Version   string `json:"version,omitempty"`
	Commit    string `json:"commit,omitempty"`
	BuildDate string `json:"build_date,omitempty"`
	GoVersion string `json:"go_version,omitempty"`
}

// Healthz reports process liveness and build identity. It succeeds as
// long as the process serves requests; readiness lives in Readyz.
func Healthz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-store")
		_ = json.NewEncoder(w).Encode(healthzResponse{
			Status:    "ok",
			Service:   "gitdex",
			Uptime:    time.Since(d.StartTime).Round(time.Second).String(),
			Version:   d.Version,
			Commit:    d.Commit,
			BuildDate: d.BuildDate,
			GoVersion: d.GoVersion,
		})
	}
}
