package tests

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/fsmgen/pkg/domain"
	"github.com/aretw0/fsmgen/pkg/ports"
)

// OutcomeStoreContractTest is a reusable test suite that verifies if an adapter complies with ports.OutcomeStore.
func OutcomeStoreContractTest(t *testing.T, store ports.OutcomeStore) {
	t.Helper()
	ctx := context.Background()

	rec := domain.Record{
		ID:              "req-1",
		UserRequirement: "An auction contract.",
		FSM:             `{"initialState":"Open"}`,
		Code:            "contract Auction {}",
		Model:           "gpt-4o",
		FSMOutcome:      domain.OutcomeAccepted,
		CodeOutcome:     domain.OutcomeExhausted,
	}

	t.Run("Save_Load", func(t *testing.T) {
		if err := store.Save(ctx, rec); err != nil {
			t.Fatalf("unexpected error saving record: %v", err)
		}
		got, err := store.Load(ctx, rec.ID)
		if err != nil {
			t.Fatalf("unexpected error loading record: %v", err)
		}
		if got != rec {
			t.Errorf("record mismatch. got %+v, want %+v", got, rec)
		}
	})

	t.Run("Load_NotFound", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-record")
		if !errors.Is(err, domain.ErrRecordNotFound) {
			t.Errorf("expected ErrRecordNotFound, got %v", err)
		}
	})

	t.Run("List", func(t *testing.T) {
		second := rec
		second.ID = "req-2"
		if err := store.Save(ctx, second); err != nil {
			t.Fatalf("unexpected error saving record: %v", err)
		}

		ids, err := store.List(ctx)
		if err != nil {
			t.Fatalf("unexpected error listing records: %v", err)
		}
		lookup := make(map[string]bool)
		for _, id := range ids {
			lookup[id] = true
		}
		for _, id := range []string{"req-1", "req-2"} {
			if !lookup[id] {
				t.Errorf("record %s missing from list", id)
			}
		}
	})

	t.Run("Delete", func(t *testing.T) {
		if err := store.Delete(ctx, rec.ID); err != nil {
			t.Fatalf("unexpected error deleting record: %v", err)
		}
		if _, err := store.Load(ctx, rec.ID); !errors.Is(err, domain.ErrRecordNotFound) {
			t.Errorf("expected ErrRecordNotFound after delete, got %v", err)
		}
		if err := store.Delete(ctx, "non-existent-record"); err != nil {
			t.Errorf("deleting a missing record should not fail: %v", err)
		}
	})
}
