package handlers

import (
	"net/http"

	"github.com/gitdex/gitdex/internal/httpserver/deps"
	"github.com/gitdex/gitdex/internal/logger"
)

// Reload triggers a manual catalog reload.
func Reload(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		select {
		case d.ReloadTrigger <- struct{}{}:
			d.Logger.Info("manual catalog reload triggered via endpoint",
				logger.String("remote_ip", r.RemoteAddr))
			respondMessage(w, http.StatusAccepted, "reload triggered")
		default:
			d.Logger.Warn("catalog reload already in progress",
				logger.String("remote_ip", r.RemoteAddr))
			respondError(w, http.StatusTooManyRequests, "reload already in progress")
		}
	}
}
