package catalog

import (
	"context"
	"testing"
)

// ============================================================================
// DeleteMany Tests
// ============================================================================

func TestDeleteMany_PartialFailure(t *testing.T) {
	store := newFakeStore(
		storedRecord("id-1", "A-1", "A", 1),
		storedRecord("id-2", "B-1", "B", 2),
		storedRecord("id-3", "C-1", "C", 3),
		storedRecord("id-4", "D-1", "D", 4),
		storedRecord("id-5", "E-1", "E", 5),
	)
	store.deleteErr["id-2"] = &RemoteError{Message: "store unavailable"}
	store.deleteErr["id-4"] = &RemoteError{Message: "store unavailable"}

	cache := NewCache(store, testDescriptors())
	if err := cache.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	notifier := &recordingNotifier{}
	bulk := NewBulkDeleter(cache, nil, notifier)

	result := bulk.DeleteMany(context.Background(), []string{"id-1", "id-2", "id-3", "id-4", "id-5"})

	if result.Succeeded != 3 {
		t.Errorf("Succeeded = %d, want 3", result.Succeeded)
	}
	if len(result.Failed) != 2 {
		t.Fatalf("Failed = %d entries, want 2", len(result.Failed))
	}
	for _, f := range result.Failed {
		if f.Key != "id-2" && f.Key != "id-4" {
			t.Errorf("unexpected failed key %q", f.Key)
		}
		if f.Err == "" {
			t.Errorf("failure for %q carries no message", f.Key)
		}
	}

	// One failure never aborts the rest: every key got its delete call.
	if len(store.deleteCalls) != 5 {
		t.Errorf("delete calls = %d, want 5", len(store.deleteCalls))
	}
	// Exactly one refresh after the batch.
	if store.listCalls != 2 {
		t.Errorf("list calls = %d, want 2 (initial load + one refresh)", store.listCalls)
	}
	if len(notifier.byKind(NoteError)) != 1 {
		t.Error("expected an error notification itemizing the failures")
	}
}

func TestDeleteMany_NoProgressNoReload(t *testing.T) {
	store := newFakeStore(storedRecord("id-1", "A-1", "A", 1))
	store.deleteErr["id-1"] = &RemoteError{Message: "store unavailable"}

	cache := NewCache(store, testDescriptors())
	if err := cache.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	bulk := NewBulkDeleter(cache, nil, nil)

	result := bulk.DeleteMany(context.Background(), []string{"id-1"})

	if result.Succeeded != 0 || len(result.Failed) != 1 {
		t.Fatalf("result = %+v, want zero successes and one failure", result)
	}
	if store.listCalls != 1 {
		t.Errorf("list calls = %d, want 1 (a failed batch must not trigger a refresh)", store.listCalls)
	}
}

func TestDeleteMany_ActivePendingDiscarded(t *testing.T) {
	store := newFakeStore(storedRecord("id-1", "A-1", "A", 1))
	cache := NewCache(store, testDescriptors())
	if err := cache.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	session := NewSession(cache, nil)
	bulk := NewBulkDeleter(cache, session, nil)

	pending := cache.InsertPending()
	if _, err := session.Begin(pending); err != nil {
		t.Fatal(err)
	}

	result := bulk.DeleteMany(context.Background(), []string{pending.Key, "id-1"})

	if result.Discarded != 1 {
		t.Errorf("Discarded = %d, want 1", result.Discarded)
	}
	if result.Succeeded != 1 {
		t.Errorf("Succeeded = %d, want 1", result.Succeeded)
	}
	if session.Editing() {
		t.Error("deleting the active pending record must abort the session")
	}
	// The pending record never had a remote identity.
	for _, key := range store.deleteCalls {
		if IsPendingKey(key) {
			t.Errorf("pending key %q sent to the remote store", key)
		}
	}
}

func TestDeleteMany_StrayPendingKeyFails(t *testing.T) {
	store := newFakeStore()
	cache := NewCache(store, testDescriptors())
	bulk := NewBulkDeleter(cache, nil, nil)

	result := bulk.DeleteMany(context.Background(), []string{"pending:1-dead"})

	if result.Succeeded != 0 || result.Discarded != 0 {
		t.Errorf("result = %+v, want no progress", result)
	}
	if len(result.Failed) != 1 {
		t.Fatalf("Failed = %d entries, want 1", len(result.Failed))
	}
	if len(store.deleteCalls) != 0 {
		t.Errorf("delete calls = %v, want none", store.deleteCalls)
	}
}
