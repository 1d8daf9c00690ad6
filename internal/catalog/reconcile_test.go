package catalog

import (
	"testing"

	"github.com/gitdex/gitdex/internal/domain"
)

func TestReconcileForcesListedToApproved(t *testing.T) {
	sites := []domain.Site{{URL: "https://a.example/"}}
	todos := []domain.Todo{{URL: "https://a.example/", Status: domain.StatusPending}}

	out, changed := Reconcile(sites, nil, todos)
	if !changed {
		t.Fatal("expected a change")
	}
	if out[0].Status != domain.StatusApproved {
		t.Errorf("status = %q, want approved", out[0].Status)
	}
	if todos[0].Status != domain.StatusPending {
		t.Error("input slice was modified")
	}
}

func TestReconcileForcesArchivedToRejected(t *testing.T) {
	archived := []domain.Site{{URL: "https://gone.example/"}}
	todos := []domain.Todo{{URL: "https://gone.example/", Status: domain.StatusApproved}}

	out, changed := Reconcile(nil, archived, todos)
	if !changed {
		t.Fatal("expected a change")
	}
	if out[0].Status != domain.StatusRejected {
		t.Errorf("status = %q, want rejected", out[0].Status)
	}
}

func TestReconcileSynthesizesMissingRows(t *testing.T) {
	sites := []domain.Site{{URL: "https://live.example/"}}
	archived := []domain.Site{{URL: "https://dead.example/"}}

	out, changed := Reconcile(sites, archived, nil)
	if !changed {
		t.Fatal("expected a change")
	}
	if len(out) != 2 {
		t.Fatalf("len = %d, want 2", len(out))
	}
	if out[0].URL != "https://live.example/" || out[0].Status != domain.StatusApproved {
		t.Errorf("unexpected first row: %+v", out[0])
	}
	if out[1].URL != "https://dead.example/" || out[1].Status != domain.StatusRejected {
		t.Errorf("unexpected second row: %+v", out[1])
	}
	if out[0].OS != "unknown" || out[0].IP != "0.0.0.0" {
		t.Errorf("unexpected placeholder metadata: %+v", out[0])
	}
}

func TestReconcileFirstDuplicateWins(t *testing.T) {
	sites := []domain.Site{{URL: "https://a.example/"}}
	todos := []domain.Todo{
		{URL: "https://a.example/", Status: domain.StatusPending},
		{URL: "https://a.example/", Status: domain.StatusRejected},
	}

	out, _ := Reconcile(sites, nil, todos)
	if out[0].Status != domain.StatusApproved {
		t.Errorf("first row status = %q, want approved", out[0].Status)
	}
	if out[1].Status != domain.StatusRejected {
		t.Errorf("duplicate row was touched: %+v", out[1])
	}
}

func TestReconcileIsIdempotent(t *testing.T) {
	sites := []domain.Site{{URL: "https://a.example/"}}
	archived := []domain.Site{{URL: "https://b.example/"}}
	todos := []domain.Todo{{URL: "https://c.example/", Status: domain.StatusPending}}

	once, changed := Reconcile(sites, archived, todos)
	if !changed {
		t.Fatal("first pass should change")
	}
	twice, changed := Reconcile(sites, archived, once)
	if changed {
		t.Error("second pass should be a no-op")
	}
	if len(twice) != len(once) {
		t.Errorf("second pass changed length: %d vs %d", len(twice), len(once))
	}
}

func TestReconcileConsistentQueueUntouched(t *testing.T) {
	sites := []domain.Site{{URL: "https://a.example/"}}
	todos := []domain.Todo{
		{URL: "https://a.example/", Status: domain.StatusApproved},
		{URL: "https://pending.example/", Status: domain.StatusPending},
	}

	out, changed := Reconcile(sites, nil, todos)
	if changed {
		t.Error("consistent state should not change")
	}
	if len(out) != 2 {
		t.Errorf("len = %d, want 2", len(out))
	}
}
