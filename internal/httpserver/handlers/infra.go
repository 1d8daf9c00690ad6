package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gitdex/gitdex/internal/httpserver/deps"
)

type componentStatus struct {
	OK          bool   `json:"ok"`
	SitesLoaded *int   `json:"sites_loaded,omitempty"`
	LastReload  string `json:"last_reload,omitempty"`
	Mode        string `json:"mode,omitempty"`
	Impact      string `json:"impact,omitempty"`
	Error       string `json:"error,omitempty"`
}

type infraResponse struct {
	ServingMode string                     `json:"serving_mode"`
	Components  map[string]componentStatus `json:"components"`
}

func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		snap := d.Catalog.Snapshot()
		sitesCount := len(snap.Sites)
		lastReload := d.Catalog.LastReload()
		lastReloadStr := "never"
		if !lastReload.IsZero() {
			lastReloadStr = lastReload.Format("2006-01-02 15:04:05")
		}

		components := map[string]componentStatus{
			"catalog": {
				OK:          d.Catalog.Loaded(),
				SitesLoaded: &sitesCount,
				LastReload:  lastReloadStr,
			},
			"redis":    checkRedis(d),
			"analyzer": checkAnalyzer(d),
		}

		response := infraResponse{
			ServingMode: determineServingMode(components),
			Components:  components,
		}

		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(response)
	}
}

func determineServingMode(components map[string]componentStatus) string {
	if cat, exists := components["catalog"]; exists && !cat.OK {
		return "critical" // no catalog = nothing to serve
	}
	if redis, exists := components["redis"]; exists && !redis.OK && redis.Error != "client not initialized" {
		return "degraded" // configured Redis is down
	}
	return "nominal"
}

func checkRedis(d deps.Deps) componentStatus {
	if d.RedisClient == nil {
		return componentStatus{
			OK:     false,
			Mode:   "disabled",
			Impact: "catalog-cache-disabled",
			Error:  "client not initialized",
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := d.RedisClient.Ping(ctx).Err(); err != nil {
		return componentStatus{
			OK:     false,
			Mode:   "degraded",
			Impact: "catalog-cache-disabled",
			Error:  "timeout",
		}
	}
	return componentStatus{
		OK:     true,
		Mode:   "optimal",
		Impact: "catalog-cache-enabled",
		Error:  "none",
	}
}

func checkAnalyzer(d deps.Deps) componentStatus {
	if d.Analyzer == nil {
		return componentStatus{
			OK:     false,
			Mode:   "disabled",
			Impact: "submissions-published-bare",
		}
	}
	return componentStatus{OK: true, Mode: "page-metadata+llm-fallback"}
}
