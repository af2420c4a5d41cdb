package catalog

// session.go implements the inline edit state machine. A session is
// either Idle or Editing exactly one record; it stages a copy of the
// record's values in edit representation and only touches the cache on
// a successful commit (or when aborting a pending record).
//
// The session is an explicit instance owned by the caller; there is no
// ambient global edit state.

import (
	"context"
	"sync"
)

// Session tracks the single record currently being edited.
type Session struct {
	cache    *Cache
	notifier Notifier

	mu         sync.Mutex
	activeKey  string
	staged     map[string]any
	wasPending bool
	committing bool
}

// NewSession creates an idle edit session over the cache.
func NewSession(cache *Cache, notifier Notifier) *Session {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &Session{cache: cache, notifier: notifier}
}

// Editing reports whether a record is currently being edited.
func (s *Session) Editing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeKey != ""
}

// ActiveKey returns the key being edited, or "" when idle.
func (s *Session) ActiveKey() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeKey
}

// Begin starts editing the given record and returns the staged value
// snapshot in edit representation. Re-entering the record already
// being edited is idempotent and returns the existing snapshot.
// Beginning a different record while one is being edited is rejected
// and surfaced as a warning; the original session is untouched.
func (s *Session) Begin(rec Record) (map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.activeKey != "" {
		if s.activeKey == rec.Key {
			return copyValues(s.staged), nil
		}
		s.notifier.Notify(NewNotification(NoteWarning,
			"finish the current edit before starting another", s.activeKey))
		return nil, ErrEditInProgress
	}

	staged := make(map[string]any, len(s.cache.descriptors))
	for _, desc := range s.cache.descriptors {
		staged[desc.Name] = ToEditValue(desc, rec.Fields[desc.Name])
	}

	s.activeKey = rec.Key
	s.staged = staged
	s.wasPending = rec.IsPending()
	return copyValues(staged), nil
}

// ChangeField merges one edited value into the staged snapshot. Valid
// only while editing; never touches the cache.
func (s *Session) ChangeField(name string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.activeKey == "" {
		return ErrNoActiveSession
	}
	if _, ok := s.staged[name]; !ok {
		return &NotFoundError{Key: name}
	}
	s.staged[name] = value
	return nil
}

// Staged returns a copy of the staged values, or nil when idle.
func (s *Session) Staged() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.activeKey == "" {
		return nil
	}
	return copyValues(s.staged)
}

// Commit validates the staged values, coerces them to wire
// representation, and persists them: create for a pending record,
// update otherwise. On success the session returns to Idle and the
// cache is refreshed. On validation or remote failure the session
// stays in Editing and the error is returned for the caller to map
// onto the form. Commit is single-flight.
func (s *Session) Commit(ctx context.Context) (Record, error) {
	s.mu.Lock()
	if s.activeKey == "" {
		s.mu.Unlock()
		return Record{}, ErrNoActiveSession
	}
	if s.committing {
		s.mu.Unlock()
		return Record{}, ErrCommitInFlight
	}
	s.committing = true
	key := s.activeKey
	staged := copyValues(s.staged)
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.committing = false
		s.mu.Unlock()
	}()

	if errs := ValidateStaged(s.cache.descriptors, staged); len(errs) > 0 {
		return Record{}, errs
	}

	fields := make(map[string]any, len(s.cache.descriptors))
	for _, desc := range s.cache.descriptors {
		fields[desc.Name] = ToWireValue(desc, staged[desc.Name])
	}

	var persisted Record
	var err error
	if IsPendingKey(key) {
		persisted, err = s.cache.CommitCreate(ctx, Record{Key: key, Fields: fields})
	} else {
		persisted, err = s.cache.CommitUpdate(ctx, key, fields)
	}
	if err != nil {
		return Record{}, err
	}

	s.mu.Lock()
	s.activeKey = ""
	s.staged = nil
	s.wasPending = false
	s.mu.Unlock()

	if err := s.cache.Load(ctx); err != nil {
		s.notifier.Notify(NewNotification(NoteWarning,
			"record saved but the list could not be refreshed", err.Error()))
	}
	s.notifier.Notify(NewNotification(NoteSuccess, "record saved", persisted.Key))
	return persisted, nil
}

// Abort discards the staged values and returns to Idle without
// touching the cache — except for a pending record, whose cache entry
// is discarded too since nothing was ever persisted.
func (s *Session) Abort() {
	s.mu.Lock()
	key := s.activeKey
	pending := s.wasPending
	s.activeKey = ""
	s.staged = nil
	s.wasPending = false
	s.mu.Unlock()

	if key != "" && pending {
		s.cache.Discard(key)
	}
}

func copyValues(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
