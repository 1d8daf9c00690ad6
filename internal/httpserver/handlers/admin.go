package handlers

import (
	"errors"
	"net/http"

	"github.com/gitdex/gitdex/internal/auth"
	"github.com/gitdex/gitdex/internal/catalog"
	"github.com/gitdex/gitdex/internal/domain"
	"github.com/gitdex/gitdex/internal/httpserver/deps"
	"github.com/gitdex/gitdex/internal/httpserver/mw"
	"github.com/gitdex/gitdex/internal/logger"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// Login exchanges the admin credential pair for a session token.
func Login(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if !decodeBody(w, r, &req) {
			return
		}

		token, err := d.Auth.Login(req.Username, req.Password)
		if err != nil {
			if errors.Is(err, auth.ErrBadCredentials) {
				d.Logger.Warn("login rejected",
					logger.String("username", req.Username),
					logger.String("remote_ip", r.RemoteAddr))
				respondError(w, http.StatusUnauthorized, "bad credentials")
				return
			}
			respondError(w, http.StatusInternalServerError, "login failed")
			return
		}
		// Browser clients get the token as a cookie too; API clients use
		// the bearer header.
		http.SetCookie(w, &http.Cookie{
			Name:     mw.SessionCookie,
			Value:    token,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteStrictMode,
		})
		respondData(w, http.StatusOK, loginResponse{Token: token})
	}
}

type catalogResponse struct {
	Sites      []domain.Site `json:"sites"`
	Archived   []domain.Site `json:"archived"`
	Todos      []domain.Todo `json:"todos"`
	Categories []string      `json:"categories"`
}

// Catalog serves the full admin view: live listings, archive, submission
// queue and the category list.
func Catalog(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap := d.Catalog.Snapshot()
		names := make([]string, 0, len(d.Categories))
		for _, cat := range d.Categories {
			names = append(names, cat.Name)
		}
		respondData(w, http.StatusOK, catalogResponse{
			Sites:      snap.Sites,
			Archived:   snap.Archived,
			Todos:      snap.Todos,
			Categories: names,
		})
	}
}

type urlRequest struct {
	URL string `json:"url"`
}

type approveRequest struct {
	URL string `json:"url"`
	// Site is the curated record to publish, typically prefilled from the
	// analyze endpoint and adjusted in the edit form. Absent, the URL is
	// analyzed at approval time.
	Site *domain.Site `json:"site,omitempty"`
}

// Approve publishes a pending submission.
func Approve(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req approveRequest
		if !decodeBody(w, r, &req) {
			return
		}

		result, err := d.Catalog.Approve(r.Context(), req.URL, req.Site)
		if err != nil {
			d.Logger.Warn("workflow operation failed",
				logger.String("op", "approve"),
				logger.String("url", req.URL),
				logger.Error(err))
			respondCatalogError(w, err)
			return
		}
		d.Logger.Info("workflow operation applied",
			logger.String("op", "approve"), logger.String("url", req.URL))
		respondMessage(w, http.StatusOK, result.Message)
	}
}

// Reject refuses a queued submission.
func Reject(d deps.Deps) http.HandlerFunc {
	return workflowByURL(d, "reject", func(r *http.Request, url string) (catalog.Result, error) {
		return d.Catalog.Reject(r.Context(), url)
	})
}

// Delete unpublishes a listing.
func Delete(d deps.Deps) http.HandlerFunc {
	return workflowByURL(d, "delete", func(r *http.Request, url string) (catalog.Result, error) {
		return d.Catalog.Delete(r.Context(), url)
	})
}

func workflowByURL(d deps.Deps, op string, apply func(r *http.Request, url string) (catalog.Result, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req urlRequest
		if !decodeBody(w, r, &req) {
			return
		}

		result, err := apply(r, req.URL)
		if err != nil {
			d.Logger.Warn("workflow operation failed",
				logger.String("op", op),
				logger.String("url", req.URL),
				logger.Error(err))
			respondCatalogError(w, err)
			return
		}
		d.Logger.Info("workflow operation applied",
			logger.String("op", op), logger.String("url", req.URL))
		respondMessage(w, http.StatusOK, result.Message)
	}
}

type editRequest struct {
	// OriginalURL names the record being replaced; it differs from the
	// site's URL when the edit renames a listing. Empty means site.URL.
	OriginalURL string      `json:"originalUrl"`
	Site        domain.Site `json:"site"`
}

// Edit replaces a listing with a full site payload, publishing it first if
// it is not listed yet.
func Edit(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req editRequest
		if !decodeBody(w, r, &req) {
			return
		}

		result, err := d.Catalog.Edit(r.Context(), req.OriginalURL, req.Site)
		if err != nil {
			respondCatalogError(w, err)
			return
		}
		d.Logger.Info("listing edited",
			logger.String("url", req.Site.URL),
			logger.String("original_url", req.OriginalURL))
		respondMessage(w, http.StatusOK, result.Message)
	}
}

// Analyze runs the page analyzer for a URL without touching the catalog, so
// the admin UI can prefill an edit form. Results are cached when Redis is
// configured.
func Analyze(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req urlRequest
		if !decodeBody(w, r, &req) {
			return
		}

		url, err := domain.CanonicalURL(req.URL)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid url")
			return
		}

		if d.Cache != nil {
			if site, ok, err := d.Cache.GetCachedAnalysis(r.Context(), url); err == nil && ok {
				respondData(w, http.StatusOK, site)
				return
			}
		}

		site, err := d.Analyzer.Analyze(r.Context(), url)
		if err != nil {
			d.Logger.Warn("analysis failed",
				logger.String("url", url), logger.Error(err))
			respondError(w, http.StatusBadGateway, "analysis failed")
			return
		}

		if d.Cache != nil {
			if err := d.Cache.CacheAnalysis(r.Context(), url, site); err != nil {
				d.Logger.Debug("analysis cache write failed", logger.Error(err))
			}
		}
		respondData(w, http.StatusOK, site)
	}
}
