package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gitdex/gitdex/internal/codec"
	"github.com/gitdex/gitdex/internal/domain"
	"github.com/gitdex/gitdex/internal/gitstore"
	"github.com/gitdex/gitdex/internal/logger"
)

var (
	// ErrNotFound means the URL is in neither the listings nor the queue.
	ErrNotFound = errors.New("catalog: not found")
	// ErrDuplicate means the URL is already listed or already queued.
	ErrDuplicate = errors.New("catalog: duplicate")
	// ErrValidation means the submitted URL is not acceptable.
	ErrValidation = errors.New("catalog: invalid submission")
)

// Analyzer enriches a bare URL into a full listing. Implementations may hit
// the network; failures are tolerated and fall back to a minimal listing.
type Analyzer interface {
	Analyze(ctx context.Context, rawURL string) (domain.Site, error)
}

// Cache is an optional snapshot cache in front of the backing repository.
type Cache interface {
	GetSnapshot(ctx context.Context) (*Snapshot, bool, error)
	SetSnapshot(ctx context.Context, snap *Snapshot) error
	Invalidate(ctx context.Context) error
}

// Result is the outcome of one catalog operation.
type Result struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

// Service owns the in-memory catalog state and runs every mutation through
// the commit protocol. All operations are safe for concurrent use; mutations
// are serialized.
type Service struct {
	provider  gitstore.Provider
	committer gitstore.Committer
	analyzer  Analyzer
	cache     Cache
	log       logger.Logger

	mu         sync.RWMutex
	snap       *Snapshot
	lastReload time.Time
}

func New(provider gitstore.Provider, committer gitstore.Committer, analyzer Analyzer, cache Cache, log logger.Logger) *Service {
	return &Service{
		provider:  provider,
		committer: committer,
		analyzer:  analyzer,
		cache:     cache,
		log:       log,
		snap:      &Snapshot{Revisions: map[string]string{}},
	}
}

// Load refreshes the in-memory catalog. With force=false a cached snapshot
// is accepted; force=true always goes to the backing repository. Either way
// the queue is reconciled against the listing files, and any fix the
// reconciler made is written back.
func (s *Service) Load(ctx context.Context, force bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !force && s.cache != nil {
		cached, ok, err := s.cache.GetSnapshot(ctx)
		if err != nil {
			s.log.Warn("snapshot cache read failed", logger.Error(err))
		} else if ok {
			s.snap = cached
			s.lastReload = time.Now()
			s.log.Debug("catalog loaded from cache",
				logger.Int("sites", len(cached.Sites)),
				logger.Int("todos", len(cached.Todos)))
			return nil
		}
	}

	snap, err := s.fetch(ctx)
	if err != nil {
		return err
	}

	todos, changed := Reconcile(snap.Sites, snap.Archived, snap.Todos)
	if changed {
		fixed := snap.clone()
		fixed.Todos = todos
		if err := s.commit(ctx, snap, fixed, "Reconcile submission queue", PendingFile); err != nil {
			// Keep serving the reconciled view; the write is retried on
			// the next load.
			s.log.Warn("reconciler write-back failed", logger.Error(err))
			snap.Todos = todos
		} else {
			snap = fixed
		}
		s.log.Info("submission queue reconciled",
			logger.Int("todos", len(todos)))
	}

	s.snap = snap
	s.lastReload = time.Now()
	s.storeCache(ctx, snap)
	s.log.Info("catalog loaded",
		logger.Int("sites", len(snap.Sites)),
		logger.Int("archived", len(snap.Archived)),
		logger.Int("todos", len(snap.Todos)))
	return nil
}

// Snapshot returns the current catalog view. The returned value is shared
// and must be treated as read-only.
func (s *Service) Snapshot() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Loaded reports whether at least one load has completed.
func (s *Service) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.lastReload.IsZero()
}

// LastReload returns when the catalog was last loaded, zero before the
// first load.
func (s *Service) LastReload() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastReload
}

// Submit queues a new URL for review. Admin submissions skip the queue
// review: the site is analyzed and published immediately.
func (s *Service) Submit(ctx context.Context, rawURL string, meta domain.SubmissionMeta, admin bool) (Result, error) {
	if err := domain.ValidateSubmissionURL(rawURL); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	url, err := domain.CanonicalURL(rawURL)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.snap
	if domain.FindSite(cur.Sites, url) >= 0 {
		return Result{}, fmt.Errorf("%w: %s is already listed", ErrDuplicate, url)
	}

	if !admin {
		// Only anonymous submissions collide with the queue; an admin
		// submitting a queued URL publishes it, same as approving.
		if idx := domain.FindTodo(cur.Todos, url); idx >= 0 && cur.Todos[idx].Status == domain.StatusPending {
			return Result{}, fmt.Errorf("%w: %s is already queued", ErrDuplicate, url)
		}
		next := cur.clone()
		next.Todos = append(next.Todos, domain.NewTodo(url, meta))
		if err := s.commit(ctx, cur, next, fmt.Sprintf("Queue submission %s", url), PendingFile); err != nil {
			return Result{}, err
		}
		s.swap(ctx, next)
		return Result{OK: true, Message: "submission queued for review"}, nil
	}

	site := s.analyze(ctx, url)
	next := cur.clone()
	next.Sites = append([]domain.Site{site}, next.Sites...)
	next.Archived = removeSite(next.Archived, url)
	next.Todos = upsertTodoStatus(next.Todos, url, domain.StatusApproved)
	changed := []string{SitesFile, PendingFile}
	if len(next.Archived) != len(cur.Archived) {
		changed = append(changed, ArchivedFile)
	}
	if err := s.commit(ctx, cur, next, fmt.Sprintf("Add %s", url), changed...); err != nil {
		return Result{}, err
	}
	s.swap(ctx, next)
	return Result{OK: true, Message: "site published"}, nil
}

// Approve publishes a pending submission: the curated record is prepended
// to the live listings, the URL is removed from the archive if present, and
// its queue row is marked approved. All affected files go in one batch.
// With a nil record the site is analyzed instead, so approval works without
// a prior pass through the edit form.
func (s *Service) Approve(ctx context.Context, rawURL string, curated *domain.Site) (Result, error) {
	url, err := domain.CanonicalURL(rawURL)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.snap
	if domain.FindSite(cur.Sites, url) >= 0 {
		return Result{}, fmt.Errorf("%w: %s is already listed", ErrDuplicate, url)
	}
	idx := domain.FindTodo(cur.Todos, url)
	if idx < 0 || cur.Todos[idx].Status != domain.StatusPending {
		return Result{}, fmt.Errorf("%w: %s has no pending submission", ErrNotFound, url)
	}

	var site domain.Site
	if curated != nil {
		site = curated.Clone()
		site.URL = url
		if site.CreatedAt == "" {
			site.CreatedAt = time.Now().UTC().Format(time.RFC3339)
		}
	} else {
		site = s.analyze(ctx, url)
	}
	next := cur.clone()
	next.Sites = append([]domain.Site{site}, next.Sites...)
	next.Archived = removeSite(next.Archived, url)
	next.Todos = upsertTodoStatus(next.Todos, url, domain.StatusApproved)

	changed := []string{SitesFile, PendingFile}
	if len(next.Archived) != len(cur.Archived) {
		changed = append(changed, ArchivedFile)
	}
	if err := s.commit(ctx, cur, next, fmt.Sprintf("Approve %s", url), changed...); err != nil {
		return Result{}, err
	}
	s.swap(ctx, next)
	return Result{OK: true, Message: "submission approved"}, nil
}

// Reject flips the matching queue row to rejected. Published and archived
// listings are untouched; unpublishing a listed site is Delete's job.
func (s *Service) Reject(ctx context.Context, rawURL string) (Result, error) {
	url, err := domain.CanonicalURL(rawURL)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.snap
	idx := domain.FindTodo(cur.Todos, url)
	if idx < 0 {
		return Result{}, fmt.Errorf("%w: %s is not in the queue", ErrNotFound, url)
	}

	next := cur.clone()
	next.Todos[idx].Status = domain.StatusRejected
	if err := s.commit(ctx, cur, next, fmt.Sprintf("Reject %s", url), PendingFile); err != nil {
		return Result{}, err
	}
	s.swap(ctx, next)
	return Result{OK: true, Message: "submission rejected"}, nil
}

// Edit replaces the listing matching originalURL with site, which may carry
// a different URL (a rename keeps the record's position). An empty
// originalURL falls back to site.URL. Editing a URL that is not yet listed
// publishes it; a pending queue row for the edited URL is approved in the
// same batch.
func (s *Service) Edit(ctx context.Context, originalURL string, site domain.Site) (Result, error) {
	url, err := domain.CanonicalURL(site.URL)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	site.URL = url
	if site.CreatedAt == "" {
		site.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}
	original := url
	if originalURL != "" {
		if original, err = domain.CanonicalURL(originalURL); err != nil {
			return Result{}, fmt.Errorf("%w: %v", ErrValidation, err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.snap
	next := cur.clone()
	changed := []string{SitesFile}

	if idx := domain.FindSite(next.Sites, original); idx >= 0 {
		next.Sites[idx] = site
		if tIdx := domain.FindTodo(next.Todos, url); tIdx >= 0 && next.Todos[tIdx].Status == domain.StatusPending {
			next.Todos[tIdx].Status = domain.StatusApproved
			changed = append(changed, PendingFile)
		}
	} else {
		next.Sites = append([]domain.Site{site}, next.Sites...)
		next.Archived = removeSite(next.Archived, url)
		next.Todos = upsertTodoStatus(next.Todos, url, domain.StatusApproved)
		changed = append(changed, PendingFile)
		if len(next.Archived) != len(cur.Archived) {
			changed = append(changed, ArchivedFile)
		}
	}

	if err := s.commit(ctx, cur, next, fmt.Sprintf("Edit %s", url), changed...); err != nil {
		return Result{}, err
	}
	s.swap(ctx, next)
	return Result{OK: true, Message: "site updated"}, nil
}

// Delete unpublishes a listing: the site moves from the live listings to the
// archive and its queue row is marked rejected, all in one batch.
func (s *Service) Delete(ctx context.Context, rawURL string) (Result, error) {
	url, err := domain.CanonicalURL(rawURL)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.snap
	idx := domain.FindSite(cur.Sites, url)
	if idx < 0 {
		return Result{}, fmt.Errorf("%w: %s is not listed", ErrNotFound, url)
	}

	next := cur.clone()
	archived := next.Sites[idx].Clone()
	next.Sites = removeSite(next.Sites, url)
	next.Archived = append([]domain.Site{archived}, next.Archived...)
	next.Todos = upsertTodoStatus(next.Todos, url, domain.StatusRejected)

	if err := s.commit(ctx, cur, next, fmt.Sprintf("Remove %s", url),
		SitesFile, ArchivedFile, PendingFile); err != nil {
		return Result{}, err
	}
	s.swap(ctx, next)
	return Result{OK: true, Message: "site removed"}, nil
}

// fetch reads all three data files from the backing repository.
func (s *Service) fetch(ctx context.Context) (*Snapshot, error) {
	snap := &Snapshot{Revisions: map[string]string{}}

	sites, err := s.provider.GetFile(ctx, SitesFile)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", SitesFile, err)
	}
	archived, err := s.provider.GetFile(ctx, ArchivedFile)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", ArchivedFile, err)
	}
	pending, err := s.provider.GetFile(ctx, PendingFile)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", PendingFile, err)
	}

	snap.Sites = codec.DecodeSites(sites.Content)
	snap.Archived = codec.DecodeSites(archived.Content)
	snap.Todos = codec.DecodeTodos(pending.Content)
	snap.Revisions[SitesFile] = sites.Revision
	snap.Revisions[ArchivedFile] = archived.Revision
	snap.Revisions[PendingFile] = pending.Revision
	return snap, nil
}

// commit encodes the changed files of next and runs them through the commit
// protocol, with cur's revision tokens as preconditions. On any error the
// caller keeps cur, so a failed batch never leaks into the served state; a
// partial per-file failure additionally forces a fresh read so the served
// state matches whatever actually landed.
func (s *Service) commit(ctx context.Context, cur, next *Snapshot, message string, paths ...string) error {
	batch := gitstore.Batch{Message: message}
	for _, path := range paths {
		batch.Files = append(batch.Files, gitstore.Blob{
			Path:     path,
			Content:  s.encode(next, path),
			Revision: cur.Revisions[path],
		})
	}

	result, err := s.committer.Commit(ctx, batch)
	if err != nil {
		var partial *gitstore.PartialCommitError
		if errors.As(err, &partial) {
			if fresh, ferr := s.fetch(ctx); ferr == nil {
				s.snap = fresh
				s.storeCache(ctx, fresh)
			} else {
				s.log.Error("reload after partial commit failed", logger.Error(ferr))
			}
		}
		return fmt.Errorf("commit %q: %w", message, err)
	}

	// Revision tokens are stale after a commit; drop them so the next
	// mutation rereads before writing.
	if result.CommitID != "" {
		s.log.Debug("batch committed", logger.String("commit", result.CommitID))
	}
	if fresh, ferr := s.fetch(ctx); ferr == nil {
		next.Revisions = fresh.Revisions
	} else {
		s.log.Warn("revision refresh failed", logger.Error(ferr))
		next.Revisions = map[string]string{}
	}
	return nil
}

// swap publishes next as the served snapshot and refreshes the cache.
func (s *Service) swap(ctx context.Context, next *Snapshot) {
	s.snap = next
	s.storeCache(ctx, next)
}

func (s *Service) storeCache(ctx context.Context, snap *Snapshot) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetSnapshot(ctx, snap); err != nil {
		s.log.Warn("snapshot cache write failed", logger.Error(err))
	}
}

func (s *Service) encode(snap *Snapshot, path string) string {
	switch path {
	case SitesFile:
		return codec.EncodeSites(snap.Sites)
	case ArchivedFile:
		return codec.EncodeSites(snap.Archived)
	case PendingFile:
		return codec.EncodeTodos(snap.Todos)
	}
	return ""
}

// analyze enriches url via the configured analyzer, falling back to a bare
// listing when analysis is unavailable or fails.
func (s *Service) analyze(ctx context.Context, url string) domain.Site {
	if s.analyzer != nil {
		site, err := s.analyzer.Analyze(ctx, url)
		if err == nil {
			site.URL = url
			if site.CreatedAt == "" {
				site.CreatedAt = time.Now().UTC().Format(time.RFC3339)
			}
			return site
		}
		s.log.Warn("analysis failed, using bare listing",
			logger.String("url", url), logger.Error(err))
	}
	return domain.Site{
		URL:       url,
		Title:     url,
		AgeRating: domain.RatingSFW,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}
}

func removeSite(sites []domain.Site, url string) []domain.Site {
	idx := domain.FindSite(sites, url)
	if idx < 0 {
		return sites
	}
	return append(sites[:idx:idx], sites[idx+1:]...)
}

// upsertTodoStatus forces url's queue row to status, synthesizing a
// placeholder row when none exists. First match wins on duplicates.
func upsertTodoStatus(todos []domain.Todo, url string, status domain.TodoStatus) []domain.Todo {
	if idx := domain.FindTodo(todos, url); idx >= 0 {
		todos[idx].Status = status
		return todos
	}
	return append(todos, domain.PlaceholderTodo(url, status))
}
