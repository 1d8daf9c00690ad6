package catalog

import (
	"github.com/gitdex/gitdex/internal/domain"
)

// Data files tracked in the backing repository. Together they hold the
// whole catalog: live listings, archived listings and the submission queue.
const (
	SitesFile    = "sites.txt"
	ArchivedFile = "404.txt"
	PendingFile  = "todo.csv"
)

// Snapshot is one consistent view of the three data files, tagged with the
// revision tokens they were read at. Mutations build a new Snapshot and swap
// it in only after the commit lands, so readers never see half-applied state.
type Snapshot struct {
	Sites    []domain.Site
	Archived []domain.Site
	Todos    []domain.Todo

	// Revisions maps file path to the revision token it was read at.
	Revisions map[string]string
}

func (s *Snapshot) clone() *Snapshot {
	if s == nil {
		return &Snapshot{Revisions: map[string]string{}}
	}
	next := &Snapshot{
		Sites:     make([]domain.Site, 0, len(s.Sites)),
		Archived:  make([]domain.Site, 0, len(s.Archived)),
		Todos:     make([]domain.Todo, len(s.Todos)),
		Revisions: make(map[string]string, len(s.Revisions)),
	}
	for _, site := range s.Sites {
		next.Sites = append(next.Sites, site.Clone())
	}
	for _, site := range s.Archived {
		next.Archived = append(next.Archived, site.Clone())
	}
	copy(next.Todos, s.Todos)
	for path, rev := range s.Revisions {
		next.Revisions[path] = rev
	}
	return next
}
