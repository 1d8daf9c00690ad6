package catalog

import (
	"github.com/gitdex/gitdex/internal/domain"
)

// Reconcile aligns the submission queue with the listing files. The listing
// files win every disagreement:
//
//   - a URL present in the live listings has its todo forced to approved
//   - a URL present in the archive has its todo forced to rejected
//   - a listed or archived URL with no todo at all gets a placeholder entry
//
// When a URL appears more than once in the queue only the first entry is
// considered; later duplicates are left untouched. The input slice is not
// modified. The second return reports whether anything changed.
func Reconcile(sites, archived []domain.Site, todos []domain.Todo) ([]domain.Todo, bool) {
	out := make([]domain.Todo, len(todos))
	copy(out, todos)
	changed := false

	align := func(url string, want domain.TodoStatus) {
		idx := domain.FindTodo(out, url)
		if idx < 0 {
			out = append(out, domain.PlaceholderTodo(url, want))
			changed = true
			return
		}
		if out[idx].Status != want {
			out[idx].Status = want
			changed = true
		}
	}

	for _, site := range sites {
		align(site.URL, domain.StatusApproved)
	}
	for _, site := range archived {
		align(site.URL, domain.StatusRejected)
	}
	return out, changed
}
