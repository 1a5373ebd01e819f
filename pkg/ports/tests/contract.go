package tests

import (
	"context"
	"testing"
	"time"

	"github.com/waymark-ai/waymark/pkg/domain"
	"github.com/waymark-ai/waymark/pkg/ports"
)

// RunStoreContract is a reusable suite verifying that an adapter complies
// with ports.Store semantics. Every persistence adapter runs it.
func RunStoreContract(t *testing.T, store ports.Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("LoadState_NotFound", func(t *testing.T) {
		_, err := store.LoadState(ctx, "contract-missing")
		if err != domain.ErrStateNotFound {
			t.Fatalf("expected ErrStateNotFound, got %v", err)
		}
	})

	t.Run("SaveState_RoundTrip", func(t *testing.T) {
		state := domain.NewWorkflowState("contract-p1")
		state.CurrentNode = "1.3"
		state.CompletedNodes = []string{"1.1", "1.3"}
		state.PendingInstructionID = "abc-123"
		state.LastUserIntent = "build the thing"
		state.UpdatedAt = time.Now().UTC().Truncate(time.Second)

		if err := store.SaveState(ctx, state); err != nil {
			t.Fatalf("save failed: %v", err)
		}

		loaded, err := store.LoadState(ctx, "contract-p1")
		if err != nil {
			t.Fatalf("load failed: %v", err)
		}
		if loaded.CurrentNode != "1.3" {
			t.Errorf("current node mismatch: got %q", loaded.CurrentNode)
		}
		if len(loaded.CompletedNodes) != 2 || loaded.CompletedNodes[1] != "1.3" {
			t.Errorf("completed nodes mismatch: got %v", loaded.CompletedNodes)
		}
		if loaded.PendingInstructionID != "abc-123" {
			t.Errorf("pending instruction mismatch: got %q", loaded.PendingInstructionID)
		}
	})

	t.Run("SaveState_Overwrite", func(t *testing.T) {
		state := domain.NewWorkflowState("contract-p2")
		state.CurrentNode = "1.1"
		if err := store.SaveState(ctx, state); err != nil {
			t.Fatalf("first save failed: %v", err)
		}

		state.CurrentNode = "2.1"
		state.PendingInstructionID = ""
		if err := store.SaveState(ctx, state); err != nil {
			t.Fatalf("second save failed: %v", err)
		}

		loaded, err := store.LoadState(ctx, "contract-p2")
		if err != nil {
			t.Fatalf("load failed: %v", err)
		}
		if loaded.CurrentNode != "2.1" {
			t.Errorf("expected overwrite to 2.1, got %q", loaded.CurrentNode)
		}
		if loaded.PendingInstructionID != "" {
			t.Errorf("expected pending instruction cleared, got %q", loaded.PendingInstructionID)
		}
	})

	t.Run("DeleteState", func(t *testing.T) {
		state := domain.NewWorkflowState("contract-p3")
		if err := store.SaveState(ctx, state); err != nil {
			t.Fatalf("save failed: %v", err)
		}
		if err := store.DeleteState(ctx, "contract-p3"); err != nil {
			t.Fatalf("delete failed: %v", err)
		}
		if _, err := store.LoadState(ctx, "contract-p3"); err != domain.ErrStateNotFound {
			t.Fatalf("expected ErrStateNotFound after delete, got %v", err)
		}

		// Deleting a missing record is not an error.
		if err := store.DeleteState(ctx, "contract-p3"); err != nil {
			t.Fatalf("delete of missing record failed: %v", err)
		}
	})

	t.Run("Intent_RoundTrip", func(t *testing.T) {
		if _, err := store.LoadIntent(ctx, "contract-p4"); err != domain.ErrIntentNotFound {
			t.Fatalf("expected ErrIntentNotFound, got %v", err)
		}

		intent := domain.NewWorkflowIntent("contract-p4", "ship an MVP")
		if err := store.SaveIntent(ctx, intent); err != nil {
			t.Fatalf("save intent failed: %v", err)
		}

		loaded, err := store.LoadIntent(ctx, "contract-p4")
		if err != nil {
			t.Fatalf("load intent failed: %v", err)
		}
		if loaded.RootIntent != "ship an MVP" || loaded.ActiveIntent != "ship an MVP" {
			t.Errorf("intent mismatch: %+v", loaded)
		}

		// Root intent survives an active-intent update.
		loaded.ActiveIntent = "pivot to B2B"
		if err := store.SaveIntent(ctx, loaded); err != nil {
			t.Fatalf("update intent failed: %v", err)
		}
		again, err := store.LoadIntent(ctx, "contract-p4")
		if err != nil {
			t.Fatalf("reload intent failed: %v", err)
		}
		if again.RootIntent != "ship an MVP" {
			t.Errorf("root intent lost: %+v", again)
		}
		if again.ActiveIntent != "pivot to B2B" {
			t.Errorf("active intent not updated: %+v", again)
		}
	})
}
