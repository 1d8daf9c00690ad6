package handlers

import (
	"net/http"

	"github.com/gitdex/gitdex/internal/domain"
	"github.com/gitdex/gitdex/internal/httpserver/deps"
)

// Sites serves the public listing. Adult-rated entries are held back unless
// the caller opts in with ?adult=1.
func Sites(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap := d.Catalog.Snapshot()
		includeAdult := r.URL.Query().Get("adult") == "1"

		sites := make([]domain.Site, 0, len(snap.Sites))
		for _, site := range snap.Sites {
			if !includeAdult && site.AgeRating == domain.RatingAdult {
				continue
			}
			sites = append(sites, site)
		}
		respondData(w, http.StatusOK, sites)
	}
}
