package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/gitdex/gitdex/internal/catalog"
	"github.com/gitdex/gitdex/internal/codec"
	"github.com/gitdex/gitdex/internal/domain"
	"github.com/gitdex/gitdex/internal/gitstore"
	"github.com/gitdex/gitdex/internal/logger"
)

func newReloaderFixture(t *testing.T) (*catalog.Service, *gitstore.MemoryProvider, chan struct{}, *CatalogReloader) {
	t.Helper()
	log := logger.New("error", false)
	provider := gitstore.NewMemoryProvider(gitstore.CapTreeCommit)
	committer := gitstore.NewCommitter(provider, "auto", log)
	svc := catalog.New(provider, committer, nil, nil, log)
	trigger := make(chan struct{}, 1)
	reloader := NewCatalogReloader(svc, log, time.Hour, trigger)
	return svc, provider, trigger, reloader
}

func seedSites(p *gitstore.MemoryProvider, urls ...string) {
	sites := make([]domain.Site, 0, len(urls))
	todos := make([]domain.Todo, 0, len(urls))
	for _, u := range urls {
		sites = append(sites, domain.Site{URL: u, Title: u})
		todos = append(todos, domain.PlaceholderTodo(u, domain.StatusApproved))
	}
	p.Seed(catalog.SitesFile, codec.EncodeSites(sites))
	p.Seed(catalog.ArchivedFile, "")
	p.Seed(catalog.PendingFile, codec.EncodeTodos(todos))
}

func TestStartLoadsSynchronously(t *testing.T) {
	svc, provider, _, reloader := newReloaderFixture(t)
	seedSites(provider, "https://a.example/")

	if err := reloader.Start(context.Background()); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	defer reloader.Stop()

	if got := len(svc.Snapshot().Sites); got != 1 {
		t.Errorf("sites after start = %d, want 1", got)
	}
}

func TestManualTriggerReloads(t *testing.T) {
	svc, provider, trigger, reloader := newReloaderFixture(t)
	seedSites(provider, "https://a.example/")

	if err := reloader.Start(context.Background()); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	defer reloader.Stop()

	seedSites(provider, "https://a.example/", "https://b.example/")
	trigger <- struct{}{}

	deadline := time.After(2 * time.Second)
	for len(svc.Snapshot().Sites) != 2 {
		select {
		case <-deadline:
			t.Fatalf("snapshot not refreshed, sites = %d", len(svc.Snapshot().Sites))
		case <-time.After(10 * time.Millisecond):
		}
	}
}
