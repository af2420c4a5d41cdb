package catalog

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// pendingPrefix marks locally generated record keys that the remote
// store has not assigned a permanent identifier for yet.
const pendingPrefix = "pending:"

// LocalMeta is the typed side-channel for transient, local-only record
// state. It is never merged into the field map sent to the remote
// store.
type LocalMeta struct {
	// AttachedAssetIDs tracks asset uploads staged against the record
	// before it is persisted.
	AttachedAssetIDs []string
}

// Record is one catalog entry: a stable key plus a value for every
// field descriptor (nil when unset).
type Record struct {
	Key    string         `json:"key"`
	Fields map[string]any `json:"fields"`
	Local  LocalMeta      `json:"-"`
}

// IsPendingKey reports whether key is a locally generated pending
// identifier.
func IsPendingKey(key string) bool {
	return strings.HasPrefix(key, pendingPrefix)
}

// IsPending reports whether the record has not been persisted yet.
func (r Record) IsPending() bool { return IsPendingKey(r.Key) }

// Clone returns a deep copy of the record's fields. Sessions edit
// clones, never cache entries.
func (r Record) Clone() Record {
	fields := make(map[string]any, len(r.Fields))
	for k, v := range r.Fields {
		fields[k] = v
	}
	local := r.Local
	local.AttachedAssetIDs = append([]string(nil), r.Local.AttachedAssetIDs...)
	return Record{Key: r.Key, Fields: fields, Local: local}
}

// newPendingKey mints a pending identifier. The monotonic sequence
// keeps keys distinguishable within a cache; the uuid keeps them
// unique across instances.
func newPendingKey(seq uint64) string {
	return fmt.Sprintf("%s%d-%s", pendingPrefix, seq, uuid.NewString())
}
