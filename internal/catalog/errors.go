package catalog

// errors.go defines the error taxonomy for catalog operations.
//
// Local validation and stale-operation errors never reach the remote
// layer; remote failures are translated into RemoteError at the
// operation boundary. Nothing in this package retries automatically —
// all retries are user-initiated.

import (
	"fmt"
	"strings"
)

// ValidationError is a single field-level validation failure.
type ValidationError struct {
	Field   string // Field name
	Value   string // The offending value as entered
	Message string // Human-readable problem description
}

func (e ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// ValidationErrors aggregates the field-level failures of one commit
// attempt. It is recoverable: the session stays in Editing and the
// caller maps the entries back onto the form.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, ve := range e {
		msgs[i] = ve.Error()
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// FieldError is a structured remote-side failure tied to one field.
type FieldError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// RemoteError is any failure reported by the remote store or transport.
// When the store returns structured per-field errors they are carried
// in Fields so the caller can map them back onto the form; otherwise
// Message is surfaced as-is.
type RemoteError struct {
	Message string
	Fields  []FieldError
}

func (e *RemoteError) Error() string {
	if len(e.Fields) == 0 {
		return "remote store: " + e.Message
	}
	return fmt.Sprintf("remote store: %s (%d field errors)", e.Message, len(e.Fields))
}

// HasFieldErrors reports whether the failure is structured per-field.
func (e *RemoteError) HasFieldErrors() bool { return len(e.Fields) > 0 }

// FetchError wraps a failure to load the record set. The cache is
// cleared when it occurs; the caller decides whether to retry.
type FetchError struct {
	Err error
}

func (e *FetchError) Error() string { return "fetch records: " + e.Err.Error() }
func (e *FetchError) Unwrap() error { return e.Err }

// StaleOperationError is an attempted remote operation on a pending,
// local-only record. Pending records have no remote identity, so the
// operation can never succeed.
type StaleOperationError struct {
	Key string // The pending key
	Op  string // The attempted operation
}

func (e *StaleOperationError) Error() string {
	return fmt.Sprintf("stale operation: %s on pending record %s", e.Op, e.Key)
}

// NotFoundError is returned when a key has no record in the cache.
type NotFoundError struct {
	Key string
}

func (e *NotFoundError) Error() string { return "record not found: " + e.Key }

// Session guard errors.
var (
	ErrEditInProgress  = fmt.Errorf("another record is already being edited")
	ErrNoActiveSession = fmt.Errorf("no record is being edited")
	ErrCommitInFlight  = fmt.Errorf("a commit is already in flight")
)
