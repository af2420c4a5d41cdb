package catalog

import (
	"context"
	"errors"
	"sync"
	"testing"
)

// recordingNotifier captures notifications for assertions.
type recordingNotifier struct {
	mu    sync.Mutex
	notes []Notification
}

func (r *recordingNotifier) Notify(n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, n)
}

func (r *recordingNotifier) byKind(kind NotificationKind) []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Notification
	for _, n := range r.notes {
		if n.Kind == kind {
			out = append(out, n)
		}
	}
	return out
}

func loadedSession(t *testing.T, store *fakeStore) (*Cache, *Session, *recordingNotifier) {
	t.Helper()
	cache := NewCache(store, testDescriptors())
	if err := cache.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	notifier := &recordingNotifier{}
	return cache, NewSession(cache, notifier), notifier
}

// ============================================================================
// Begin Tests
// ============================================================================

func TestBegin_StagesEditValues(t *testing.T) {
	store := newFakeStore(storedRecord("id-1", "W-1", "Widget", 9.99))
	cache, session, _ := loadedSession(t, store)

	rec, _ := cache.Get("id-1")
	staged, err := session.Begin(rec)
	if err != nil {
		t.Fatalf("Begin() error = %v", err)
	}

	// Staged values are in edit representation.
	if staged["price"] != "9.99" {
		t.Errorf("staged price = %v, want \"9.99\"", staged["price"])
	}
	if staged["active"] != "True" {
		t.Errorf("staged active = %v, want \"True\"", staged["active"])
	}
	if staged["category"] != "1" {
		t.Errorf("staged category = %v, want \"1\"", staged["category"])
	}
	if staged["image_url"] != "" {
		t.Errorf("staged image_url = %v, want \"\"", staged["image_url"])
	}
}

func TestBegin_SameKeyIdempotent(t *testing.T) {
	store := newFakeStore(storedRecord("id-1", "W-1", "Widget", 9.99))
	cache, session, _ := loadedSession(t, store)

	rec, _ := cache.Get("id-1")
	if _, err := session.Begin(rec); err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	if err := session.ChangeField("name", "Renamed"); err != nil {
		t.Fatal(err)
	}

	// Re-entering the same record returns the staged snapshot unchanged.
	staged, err := session.Begin(rec)
	if err != nil {
		t.Fatalf("second Begin() error = %v", err)
	}
	if staged["name"] != "Renamed" {
		t.Errorf("staged name = %v, want the in-progress edit preserved", staged["name"])
	}
}

func TestBegin_DifferentKeyRejected(t *testing.T) {
	store := newFakeStore(
		storedRecord("id-1", "W-1", "Widget", 9.99),
		storedRecord("id-2", "G-1", "Gadget", 19.99),
	)
	cache, session, notifier := loadedSession(t, store)

	first, _ := cache.Get("id-1")
	if _, err := session.Begin(first); err != nil {
		t.Fatal(err)
	}

	second, _ := cache.Get("id-2")
	_, err := session.Begin(second)
	if !errors.Is(err, ErrEditInProgress) {
		t.Fatalf("Begin() error = %v, want ErrEditInProgress", err)
	}
	if session.ActiveKey() != "id-1" {
		t.Errorf("ActiveKey() = %q, original session must be untouched", session.ActiveKey())
	}
	if len(notifier.byKind(NoteWarning)) != 1 {
		t.Error("expected a warning notification for the rejected begin")
	}
}

// ============================================================================
// ChangeField Tests
// ============================================================================

func TestChangeField_RequiresSession(t *testing.T) {
	store := newFakeStore()
	_, session, _ := loadedSession(t, store)

	err := session.ChangeField("name", "X")
	if !errors.Is(err, ErrNoActiveSession) {
		t.Fatalf("ChangeField() error = %v, want ErrNoActiveSession", err)
	}
}

func TestChangeField_UnknownField(t *testing.T) {
	store := newFakeStore(storedRecord("id-1", "W-1", "Widget", 9.99))
	cache, session, _ := loadedSession(t, store)

	rec, _ := cache.Get("id-1")
	if _, err := session.Begin(rec); err != nil {
		t.Fatal(err)
	}

	err := session.ChangeField("nope", "X")
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("ChangeField() error = %v, want *NotFoundError", err)
	}
}

// ============================================================================
// Commit Tests
// ============================================================================

func TestCommit_RequiresSession(t *testing.T) {
	store := newFakeStore()
	_, session, _ := loadedSession(t, store)

	_, err := session.Commit(context.Background())
	if !errors.Is(err, ErrNoActiveSession) {
		t.Fatalf("Commit() error = %v, want ErrNoActiveSession", err)
	}
}

func TestCommit_ValidationFailureNeverReachesStore(t *testing.T) {
	store := newFakeStore()
	cache, session, _ := loadedSession(t, store)

	pending := cache.InsertPending()
	if _, err := session.Begin(pending); err != nil {
		t.Fatal(err)
	}
	// Mandatory sku and name left empty.
	if err := session.ChangeField("price", "9.99"); err != nil {
		t.Fatal(err)
	}

	_, err := session.Commit(context.Background())
	var verrs ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("Commit() error = %v, want ValidationErrors", err)
	}
	if store.createCalls != 0 {
		t.Errorf("create calls = %d, want 0 on validation failure", store.createCalls)
	}
	if !session.Editing() {
		t.Error("session must stay in Editing after a validation failure")
	}
}

func TestCommit_CreatePendingRecord(t *testing.T) {
	store := newFakeStore()
	cache, session, notifier := loadedSession(t, store)

	pending := cache.InsertPending()
	if _, err := session.Begin(pending); err != nil {
		t.Fatal(err)
	}
	for name, value := range map[string]any{
		"sku":   "N-1",
		"name":  "New Widget",
		"price": "5.50",
	} {
		if err := session.ChangeField(name, value); err != nil {
			t.Fatal(err)
		}
	}

	persisted, err := session.Commit(context.Background())
	if err != nil {
		t.Fatalf("Commit() error = %v", err)
	}
	if persisted.IsPending() {
		t.Error("committed record still pending")
	}
	if store.createCalls != 1 {
		t.Errorf("create calls = %d, want 1", store.createCalls)
	}
	if session.Editing() {
		t.Error("session must be Idle after a successful commit")
	}
	// Commit refreshes the cache from the remote store.
	if store.listCalls != 2 {
		t.Errorf("list calls = %d, want 2 (initial load + post-commit refresh)", store.listCalls)
	}
	if len(notifier.byKind(NoteSuccess)) != 1 {
		t.Error("expected a success notification")
	}
}

func TestCommit_UpdatePersistedRecord(t *testing.T) {
	store := newFakeStore(storedRecord("id-1", "W-1", "Widget", 9.99))
	cache, session, _ := loadedSession(t, store)

	rec, _ := cache.Get("id-1")
	if _, err := session.Begin(rec); err != nil {
		t.Fatal(err)
	}
	if err := session.ChangeField("name", "Renamed"); err != nil {
		t.Fatal(err)
	}

	persisted, err := session.Commit(context.Background())
	if err != nil {
		t.Fatalf("Commit() error = %v", err)
	}
	if persisted.Key != "id-1" {
		t.Errorf("persisted key = %q, want id-1", persisted.Key)
	}
	if store.updateCalls != 1 {
		t.Errorf("update calls = %d, want 1", store.updateCalls)
	}
	if got := persisted.Fields["name"]; got != "Renamed" {
		t.Errorf("persisted name = %v, want Renamed", got)
	}
}

func TestCommit_RemoteFailureKeepsEditing(t *testing.T) {
	store := newFakeStore(storedRecord("id-1", "W-1", "Widget", 9.99))
	cache, session, _ := loadedSession(t, store)

	rec, _ := cache.Get("id-1")
	if _, err := session.Begin(rec); err != nil {
		t.Fatal(err)
	}
	store.updateErr = &RemoteError{Message: "store unavailable"}

	_, err := session.Commit(context.Background())
	var remote *RemoteError
	if !errors.As(err, &remote) {
		t.Fatalf("Commit() error = %v, want *RemoteError", err)
	}
	if !session.Editing() {
		t.Error("session must stay in Editing after a remote failure")
	}

	// The staged values survive for a retry.
	store.updateErr = nil
	if _, err := session.Commit(context.Background()); err != nil {
		t.Fatalf("retry Commit() error = %v", err)
	}
}

// blockingStore parks Update until released so a concurrent commit can
// be observed mid-flight.
type blockingStore struct {
	fakeStore
	entered chan struct{}
	release chan struct{}
}

func (b *blockingStore) Update(ctx context.Context, key string, fields map[string]any) (Record, error) {
	close(b.entered)
	<-b.release
	return b.fakeStore.Update(ctx, key, fields)
}

func TestCommit_SingleFlight(t *testing.T) {
	store := &blockingStore{
		fakeStore: fakeStore{
			records:   []Record{storedRecord("id-1", "W-1", "Widget", 9.99)},
			deleteErr: make(map[string]error),
		},
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	cache := NewCache(store, testDescriptors())
	if err := cache.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	session := NewSession(cache, nil)

	rec, _ := cache.Get("id-1")
	if _, err := session.Begin(rec); err != nil {
		t.Fatal(err)
	}

	done := make(chan error, 1)
	go func() {
		_, err := session.Commit(context.Background())
		done <- err
	}()

	<-store.entered
	_, err := session.Commit(context.Background())
	if !errors.Is(err, ErrCommitInFlight) {
		t.Errorf("concurrent Commit() error = %v, want ErrCommitInFlight", err)
	}

	close(store.release)
	if err := <-done; err != nil {
		t.Fatalf("first Commit() error = %v", err)
	}
}

// ============================================================================
// Abort Tests
// ============================================================================

func TestAbort_PendingDiscardsCacheEntry(t *testing.T) {
	store := newFakeStore()
	cache, session, _ := loadedSession(t, store)

	pending := cache.InsertPending()
	if _, err := session.Begin(pending); err != nil {
		t.Fatal(err)
	}

	session.Abort()

	if session.Editing() {
		t.Error("session must be Idle after Abort")
	}
	if _, ok := cache.Get(pending.Key); ok {
		t.Error("aborted pending record must be discarded from the cache")
	}
}

func TestAbort_PersistedLeavesCacheAlone(t *testing.T) {
	store := newFakeStore(storedRecord("id-1", "W-1", "Widget", 9.99))
	cache, session, _ := loadedSession(t, store)

	rec, _ := cache.Get("id-1")
	if _, err := session.Begin(rec); err != nil {
		t.Fatal(err)
	}
	if err := session.ChangeField("name", "Renamed"); err != nil {
		t.Fatal(err)
	}

	session.Abort()

	fresh, ok := cache.Get("id-1")
	if !ok {
		t.Fatal("record missing after Abort")
	}
	if fresh.Fields["name"] != "Widget" {
		t.Errorf("cached name = %v, aborted edits must not leak into the cache", fresh.Fields["name"])
	}
}
