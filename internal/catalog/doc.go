// Package catalog provides the business logic for the SKU admin console:
// the in-memory record cache mirroring the remote product store, the
// inline edit session state machine, bulk deletion, and the field type
// coercion between wire and edit representations.
//
// The package has no UI dependencies. It talks to the remote store
// through the StoreClient interface and reports user-facing events
// through the Notifier interface; rendering is the caller's concern.
//
// # Architecture
//
// The Cache exclusively owns the authoritative in-memory record set.
// A Session holds a copy of one record's values while it is being
// edited, never a live reference, so aborting an edit cannot corrupt
// cached data. Exactly one record may be in editing state at a time,
// and Commit is single-flight: a second commit while one is
// outstanding is rejected.
//
// # Identifiers
//
// Records carry either a persisted key (opaque, assigned by the remote
// store) or a pending key (locally generated, "pending:" prefix) used
// before the store assigns a real one. Pending records are never sent
// to remote read/update/delete endpoints; such attempts fail with a
// StaleOperationError.
package catalog
