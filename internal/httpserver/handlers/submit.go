package handlers

import (
	"net/http"

	"github.com/gitdex/gitdex/internal/domain"
	"github.com/gitdex/gitdex/internal/httpserver/deps"
	"github.com/gitdex/gitdex/internal/httpserver/mw"
	"github.com/gitdex/gitdex/internal/logger"
	"github.com/gitdex/gitdex/internal/utils"
)

type submitRequest struct {
	URL string `json:"url"`
}

// Submit queues a site suggestion. An authenticated admin caller publishes
// it immediately instead.
func Submit(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req submitRequest
		if !decodeBody(w, r, &req) {
			return
		}

		// The public route carries no auth middleware; an admin token is
		// simply honored when present.
		admin := mw.IsAdmin(r, d.Auth)

		meta := domain.SubmissionMeta{
			IP:             utils.ClientIP(r, d.TrustProxy),
			AcceptLanguage: r.Header.Get("Accept-Language"),
			UserAgent:      r.UserAgent(),
		}

		result, err := d.Catalog.Submit(r.Context(), req.URL, meta, admin)
		if err != nil {
			d.Logger.Info("submission rejected",
				logger.String("url", req.URL), logger.Error(err))
			respondCatalogError(w, err)
			return
		}
		respondMessage(w, http.StatusAccepted, result.Message)
	}
}
