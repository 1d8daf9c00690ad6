package integration

import (
	"context"
	"testing"

	"github.com/gitdex/gitdex/internal/catalog"
	"github.com/gitdex/gitdex/internal/codec"
	"github.com/gitdex/gitdex/internal/domain"
	"github.com/gitdex/gitdex/internal/gitstore"
	"github.com/gitdex/gitdex/internal/logger"
)

// TestSubmissionLifecycle walks one URL through the full review flow:
// anonymous submission, admin approval, edit, and finally removal,
// checking the three data files stay consistent at every step.
func TestSubmissionLifecycle(t *testing.T) {
	log := logger.New("error", false)
	provider := gitstore.NewMemoryProvider(gitstore.CapTreeCommit)
	committer := gitstore.NewCommitter(provider, "auto", log)
	svc := catalog.New(provider, committer, nil, nil, log)
	ctx := context.Background()

	if err := svc.Load(ctx, true); err != nil {
		t.Fatalf("initial load: %v", err)
	}

	const site = "https://tools.example"
	const canonical = "https://tools.example/"

	// 1. Anonymous submission lands in the queue as pending.
	meta := domain.SubmissionMeta{
		IP:             "198.51.100.7",
		AcceptLanguage: "de-DE,de;q=0.8",
		UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) Chrome/126.0",
	}
	if _, err := svc.Submit(ctx, site, meta, false); err != nil {
		t.Fatalf("submit: %v", err)
	}

	todos := codec.DecodeTodos(provider.Content(catalog.PendingFile))
	if len(todos) != 1 || todos[0].Status != domain.StatusPending {
		t.Fatalf("queue after submit: %+v", todos)
	}
	if todos[0].OS != "Windows" || todos[0].Browser != "Chrome" || todos[0].Language != "de-DE" {
		t.Errorf("submitter metadata not captured: %+v", todos[0])
	}

	// Resubmitting while pending is refused.
	if _, err := svc.Submit(ctx, site, meta, false); err == nil {
		t.Error("duplicate submission was accepted")
	}

	// 2. Approval publishes the curated record and flips the queue row,
	// atomically.
	curated := domain.Site{URL: site, Title: "Tools", AgeRating: domain.RatingSFW}
	if _, err := svc.Approve(ctx, site, &curated); err != nil {
		t.Fatalf("approve: %v", err)
	}

	sites := codec.DecodeSites(provider.Content(catalog.SitesFile))
	if len(sites) != 1 || sites[0].URL != canonical {
		t.Fatalf("listings after approve: %+v", sites)
	}
	todos = codec.DecodeTodos(provider.Content(catalog.PendingFile))
	if todos[0].Status != domain.StatusApproved {
		t.Fatalf("queue after approve: %+v", todos)
	}

	// 3. Edit replaces the listing in place.
	edited := sites[0]
	edited.Title = "Example Tools"
	edited.Category = "Tools"
	edited.Tags = []string{"utilities"}
	if _, err := svc.Edit(ctx, canonical, edited); err != nil {
		t.Fatalf("edit: %v", err)
	}

	sites = codec.DecodeSites(provider.Content(catalog.SitesFile))
	if len(sites) != 1 || sites[0].Title != "Example Tools" || sites[0].Category != "Tools" {
		t.Fatalf("listings after edit: %+v", sites)
	}

	// 4. Delete archives the listing and rejects its queue row.
	if _, err := svc.Delete(ctx, site); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if got := codec.DecodeSites(provider.Content(catalog.SitesFile)); len(got) != 0 {
		t.Errorf("listings after delete: %+v", got)
	}
	archived := codec.DecodeSites(provider.Content(catalog.ArchivedFile))
	if len(archived) != 1 || archived[0].URL != canonical {
		t.Errorf("archive after delete: %+v", archived)
	}
	todos = codec.DecodeTodos(provider.Content(catalog.PendingFile))
	if todos[0].Status != domain.StatusRejected {
		t.Errorf("queue after delete: %+v", todos)
	}

	// 5. A fresh service instance over the same repository converges to the
	// same view, with no reconciler fixes pending.
	svc2 := catalog.New(provider, gitstore.NewCommitter(provider, "auto", log), nil, nil, log)
	if err := svc2.Load(ctx, true); err != nil {
		t.Fatalf("reload: %v", err)
	}
	snap := svc2.Snapshot()
	if len(snap.Sites) != 0 || len(snap.Archived) != 1 || len(snap.Todos) != 1 {
		t.Errorf("converged snapshot mismatch: sites=%d archived=%d todos=%d",
			len(snap.Sites), len(snap.Archived), len(snap.Todos))
	}
}

// TestOutOfBandEditsConverge simulates a curator editing the repository
// directly: the next load must absorb the changes and repair the queue.
func TestOutOfBandEditsConverge(t *testing.T) {
	log := logger.New("error", false)
	provider := gitstore.NewMemoryProvider(gitstore.CapTreeCommit)
	committer := gitstore.NewCommitter(provider, "auto", log)
	svc := catalog.New(provider, committer, nil, nil, log)
	ctx := context.Background()

	// A hand-edited repository: one listed site with no queue row, one
	// archived site whose row still says pending.
	provider.Seed(catalog.SitesFile, codec.EncodeSites([]domain.Site{
		{URL: "https://hand-added.example/", Title: "Hand Added"},
	}))
	provider.Seed(catalog.ArchivedFile, codec.EncodeSites([]domain.Site{
		{URL: "https://pulled.example/", Title: "Pulled"},
	}))
	provider.Seed(catalog.PendingFile, codec.EncodeTodos([]domain.Todo{
		domain.PlaceholderTodo("https://pulled.example/", domain.StatusPending),
	}))

	if err := svc.Load(ctx, true); err != nil {
		t.Fatalf("load: %v", err)
	}

	stored := codec.DecodeTodos(provider.Content(catalog.PendingFile))
	if len(stored) != 2 {
		t.Fatalf("queue rows = %d, want 2 (one synthesized)", len(stored))
	}
	if idx := domain.FindTodo(stored, "https://pulled.example/"); stored[idx].Status != domain.StatusRejected {
		t.Errorf("archived site's row = %+v, want rejected", stored[idx])
	}
	if idx := domain.FindTodo(stored, "https://hand-added.example/"); idx < 0 || stored[idx].Status != domain.StatusApproved {
		t.Errorf("listed site's row missing or wrong: %+v", stored)
	}
}
