package ports

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/avells/cadre/pkg/domain"
)

// RunStoreContract exercises the behavior every RunStore implementation must
// share. Adapter test suites call it against their concrete store.
func RunStoreContract(t *testing.T, store RunStore) {
	t.Helper()
	ctx := context.Background()

	rec := domain.RunRecord{
		ID:       "run-1",
		Owner:    "acme",
		Workflow: "research",
		Results: domain.Results{
			"gather":  "ok",
			"analyze": &domain.ErrorRecord{Error: "unit not found: missing"},
		},
		StartedAt:  time.Now().UTC().Truncate(time.Second),
		FinishedAt: time.Now().UTC().Truncate(time.Second),
	}

	if err := store.Save(ctx, rec); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := store.Load(ctx, "run-1")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Workflow != "research" || loaded.Owner != "acme" {
		t.Errorf("loaded record mismatch: %+v", loaded)
	}
	if len(loaded.Results) != 2 {
		t.Errorf("expected 2 result slots, got %d", len(loaded.Results))
	}

	ids, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(ids) != 1 || ids[0] != "run-1" {
		t.Errorf("expected [run-1], got %v", ids)
	}

	if err := store.Delete(ctx, "run-1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := store.Load(ctx, "run-1"); !errors.Is(err, domain.ErrRunNotFound) {
		t.Errorf("expected ErrRunNotFound after delete, got %v", err)
	}
}
