package catalog

// bulk.go applies deletion across a selection of records with
// partial-failure semantics: every key is processed independently and
// one failure never aborts the rest of the batch.

import "context"

// DeleteFailure is one itemized failure from a bulk delete.
type DeleteFailure struct {
	Key string `json:"key"`
	Err string `json:"error"`
}

// BulkDeleteResult aggregates the outcome of a DeleteMany call.
type BulkDeleteResult struct {
	Succeeded int             `json:"succeeded"` // Remote deletions that succeeded
	Discarded int             `json:"discarded"` // Pending records removed locally
	Failed    []DeleteFailure `json:"failed"`
}

// BulkDeleter deletes selections of records across the cache and the
// remote store.
type BulkDeleter struct {
	cache    *Cache
	session  *Session
	notifier Notifier
}

// NewBulkDeleter creates a bulk deleter. session may be nil when no
// edit session exists in the calling context.
func NewBulkDeleter(cache *Cache, session *Session, notifier Notifier) *BulkDeleter {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &BulkDeleter{cache: cache, session: session, notifier: notifier}
}

// DeleteMany deletes each key independently and reports both the
// success count and the itemized failures.
//
// A key matching the active edit session's pending record is discarded
// locally (aborting the session) without a remote call; any other
// pending key has no remote correspondence and fails as not found.
// The cache is reloaded exactly once afterwards, and only if the batch
// made progress — a totally failed batch must not be masked by a
// benign-looking refresh.
func (b *BulkDeleter) DeleteMany(ctx context.Context, keys []string) BulkDeleteResult {
	var result BulkDeleteResult

	for _, key := range keys {
		if IsPendingKey(key) {
			if b.session != nil && b.session.ActiveKey() == key {
				b.session.Abort()
				result.Discarded++
				continue
			}
			result.Failed = append(result.Failed, DeleteFailure{
				Key: key,
				Err: (&NotFoundError{Key: key}).Error(),
			})
			continue
		}

		if err := b.cache.Remove(ctx, key); err != nil {
			result.Failed = append(result.Failed, DeleteFailure{Key: key, Err: err.Error()})
			continue
		}
		result.Succeeded++
	}

	if result.Succeeded > 0 || result.Discarded > 0 {
		if err := b.cache.Load(ctx); err != nil {
			b.notifier.Notify(NewNotification(NoteWarning,
				"records deleted but the list could not be refreshed", err.Error()))
		}
	}

	if len(result.Failed) > 0 {
		b.notifier.Notify(NewNotification(NoteError, "some records could not be deleted", result.Failed))
	} else if result.Succeeded > 0 || result.Discarded > 0 {
		b.notifier.Notify(NewNotification(NoteSuccess, "selection deleted", result.Succeeded))
	}

	return result
}
