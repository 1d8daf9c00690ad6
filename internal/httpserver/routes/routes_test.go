package routes_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/gitdex/gitdex/internal/auth"
	"github.com/gitdex/gitdex/internal/catalog"
	"github.com/gitdex/gitdex/internal/codec"
	"github.com/gitdex/gitdex/internal/domain"
	"github.com/gitdex/gitdex/internal/gitstore"
	"github.com/gitdex/gitdex/internal/httpserver/deps"
	"github.com/gitdex/gitdex/internal/httpserver/routes"
	"github.com/gitdex/gitdex/internal/logger"
	"github.com/gitdex/gitdex/internal/sources/categories"
	"github.com/gitdex/gitdex/internal/version"
)

type apiEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
}

func newAPI(t *testing.T) (http.Handler, *gitstore.MemoryProvider, deps.Deps) {
	t.Helper()
	log := logger.New("error", false)
	provider := gitstore.NewMemoryProvider(gitstore.CapTreeCommit)
	committer := gitstore.NewCommitter(provider, "auto", log)
	svc := catalog.New(provider, committer, nil, nil, log)

	provider.Seed(catalog.SitesFile, codec.EncodeSites([]domain.Site{
		{URL: "https://safe.example/", Title: "Safe", AgeRating: domain.RatingSFW},
		{URL: "https://adult.example/", Title: "Adult", AgeRating: domain.RatingAdult},
	}))
	provider.Seed(catalog.ArchivedFile, "")
	provider.Seed(catalog.PendingFile, codec.EncodeTodos([]domain.Todo{
		domain.PlaceholderTodo("https://safe.example/", domain.StatusApproved),
		domain.PlaceholderTodo("https://adult.example/", domain.StatusApproved),
		domain.PlaceholderTodo("https://queued.example/", domain.StatusPending),
	}))
	if err := svc.Load(context.Background(), true); err != nil {
		t.Fatalf("load: %v", err)
	}

	d := deps.Deps{
		Logger:        log,
		StartTime:     time.Now(),
		Version:       version.Version,
		TimeNow:       time.Now,
		Catalog:       svc,
		Auth:          auth.New("admin", "hunter2", "test-secret", time.Hour),
		Categories:    categories.Defaults,
		ReloadTrigger: make(chan struct{}, 1),
	}

	r := chi.NewRouter()
	routes.RegisterAll(r, d)
	return r, provider, d
}

func doJSON(t *testing.T, h http.Handler, method, path, token string, body any) (*httptest.ResponseRecorder, apiEnvelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env apiEnvelope
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode envelope from %q: %v", rec.Body.String(), err)
		}
	}
	return rec, env
}

func login(t *testing.T, h http.Handler) string {
	t.Helper()
	rec, env := doJSON(t, h, http.MethodPost, "/api/admin/login", "",
		map[string]string{"username": "admin", "password": "hunter2"})
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d: %s", rec.Code, rec.Body.String())
	}
	var data struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil || data.Token == "" {
		t.Fatalf("no token in login response: %s", rec.Body.String())
	}
	return data.Token
}

func TestPublicSitesHidesAdultByDefault(t *testing.T) {
	h, _, _ := newAPI(t)

	rec, env := doJSON(t, h, http.MethodGet, "/api/sites", "", nil)
	if rec.Code != http.StatusOK || !env.Success {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var sites []domain.Site
	if err := json.Unmarshal(env.Data, &sites); err != nil {
		t.Fatalf("decode sites: %v", err)
	}
	if len(sites) != 1 || sites[0].URL != "https://safe.example/" {
		t.Errorf("sites = %+v, want only the SFW entry", sites)
	}

	rec, env = doJSON(t, h, http.MethodGet, "/api/sites?adult=1", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	_ = json.Unmarshal(env.Data, &sites)
	if len(sites) != 2 {
		t.Errorf("adult=1 returned %d sites, want 2", len(sites))
	}
}

func TestSubmitQueuesAndRejectsDuplicates(t *testing.T) {
	h, provider, _ := newAPI(t)

	rec, env := doJSON(t, h, http.MethodPost, "/api/submit", "",
		map[string]string{"url": "https://fresh.example"})
	if rec.Code != http.StatusAccepted || !env.Success {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	todos := codec.DecodeTodos(provider.Content(catalog.PendingFile))
	if idx := domain.FindTodo(todos, "https://fresh.example/"); idx < 0 || todos[idx].Status != domain.StatusPending {
		t.Errorf("submission not queued: %+v", todos)
	}

	rec, env = doJSON(t, h, http.MethodPost, "/api/submit", "",
		map[string]string{"url": "https://fresh.example"})
	if rec.Code != http.StatusConflict || env.Success {
		t.Errorf("duplicate submit status = %d, body = %s", rec.Code, rec.Body.String())
	}

	rec, _ = doJSON(t, h, http.MethodPost, "/api/submit", "",
		map[string]string{"url": "ftp://nope.example"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid scheme status = %d", rec.Code)
	}
}

func TestAdminRoutesRequireToken(t *testing.T) {
	h, _, _ := newAPI(t)

	rec, _ := doJSON(t, h, http.MethodGet, "/api/admin/catalog", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("no token: status = %d, want 401", rec.Code)
	}
	rec, _ = doJSON(t, h, http.MethodGet, "/api/admin/catalog", "bogus-token", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("bad token: status = %d, want 401", rec.Code)
	}

	rec, _ = doJSON(t, h, http.MethodPost, "/api/admin/login", "",
		map[string]string{"username": "admin", "password": "wrong"})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("bad credentials: status = %d, want 401", rec.Code)
	}
}

func TestAdminSessionCookieIsAccepted(t *testing.T) {
	h, _, _ := newAPI(t)
	token := login(t, h)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/catalog", nil)
	req.AddCookie(&http.Cookie{Name: "gitdex_session", Value: token})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("cookie auth: status = %d, want 200", rec.Code)
	}
}

func TestAdminCatalogAndWorkflow(t *testing.T) {
	h, provider, _ := newAPI(t)
	token := login(t, h)

	rec, env := doJSON(t, h, http.MethodGet, "/api/admin/catalog", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("catalog status = %d", rec.Code)
	}
	var view struct {
		Sites      []domain.Site `json:"sites"`
		Todos      []domain.Todo `json:"todos"`
		Categories []string      `json:"categories"`
	}
	if err := json.Unmarshal(env.Data, &view); err != nil {
		t.Fatalf("decode catalog: %v", err)
	}
	if len(view.Sites) != 2 || len(view.Todos) != 3 || len(view.Categories) == 0 {
		t.Errorf("catalog view: sites=%d todos=%d categories=%d",
			len(view.Sites), len(view.Todos), len(view.Categories))
	}

	// Approve the queued submission.
	rec, _ = doJSON(t, h, http.MethodPost, "/api/admin/approve", token,
		map[string]string{"url": "https://queued.example"})
	if rec.Code != http.StatusOK {
		t.Fatalf("approve status = %d: %s", rec.Code, rec.Body.String())
	}
	sites := codec.DecodeSites(provider.Content(catalog.SitesFile))
	if domain.FindSite(sites, "https://queued.example/") < 0 {
		t.Errorf("approved site not published: %+v", sites)
	}

	// Approving a URL that is not queued is a 404.
	rec, _ = doJSON(t, h, http.MethodPost, "/api/admin/approve", token,
		map[string]string{"url": "https://ghost.example"})
	if rec.Code != http.StatusNotFound {
		t.Errorf("approve unknown status = %d, want 404", rec.Code)
	}

	// Delete a published site.
	rec, _ = doJSON(t, h, http.MethodPost, "/api/admin/delete", token,
		map[string]string{"url": "https://safe.example"})
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d: %s", rec.Code, rec.Body.String())
	}
	archived := codec.DecodeSites(provider.Content(catalog.ArchivedFile))
	if domain.FindSite(archived, "https://safe.example/") < 0 {
		t.Errorf("deleted site not archived: %+v", archived)
	}
}

func TestAdminEditRenamesListing(t *testing.T) {
	h, provider, _ := newAPI(t)
	token := login(t, h)

	rec, _ := doJSON(t, h, http.MethodPost, "/api/admin/edit", token, map[string]any{
		"originalUrl": "https://safe.example",
		"site": map[string]any{
			"url":   "https://renamed.example",
			"title": "Renamed",
		},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("edit status = %d: %s", rec.Code, rec.Body.String())
	}

	sites := codec.DecodeSites(provider.Content(catalog.SitesFile))
	if domain.FindSite(sites, "https://renamed.example/") < 0 {
		t.Errorf("renamed record missing: %+v", sites)
	}
	if domain.FindSite(sites, "https://safe.example/") >= 0 {
		t.Errorf("old record still listed: %+v", sites)
	}
}

func TestAdminReload(t *testing.T) {
	h, _, d := newAPI(t)
	token := login(t, h)

	rec, _ := doJSON(t, h, http.MethodPost, "/api/admin/reload", token, nil)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("reload status = %d", rec.Code)
	}
	select {
	case <-d.ReloadTrigger:
	default:
		t.Error("reload trigger not fired")
	}

	// Trigger channel is full now; a second call reports busy.
	doJSON(t, h, http.MethodPost, "/api/admin/reload", token, nil)
	rec, _ = doJSON(t, h, http.MethodPost, "/api/admin/reload", token, nil)
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("busy reload status = %d, want 429", rec.Code)
	}
}
