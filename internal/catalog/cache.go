package catalog

// cache.go holds the in-memory mirror of the remote product store: an
// ordered record collection with optimistic local insertion for
// records the store has not created yet.
//
// Locking discipline: the mutex guards only the in-memory collection.
// Remote calls are made outside the lock so a slow store cannot stall
// readers.

import (
	"context"
	"strings"
	"sync"
)

// StoreClient is the contract the cache requires from the remote
// product store. Implementations translate transport and server
// failures into *RemoteError.
type StoreClient interface {
	List(ctx context.Context) ([]Record, error)
	Create(ctx context.Context, fields map[string]any) (Record, error)
	Update(ctx context.Context, key string, fields map[string]any) (Record, error)
	Delete(ctx context.Context, key string) error
}

// Cache is the authoritative in-memory record set. All mutation of
// cached records flows through it.
type Cache struct {
	client      StoreClient
	descriptors []FieldDescriptor

	mu         sync.Mutex
	records    []Record
	index      map[string]int
	pendingSeq uint64
}

// NewCache creates an empty cache over the given store client and
// descriptor list.
func NewCache(client StoreClient, descriptors []FieldDescriptor) *Cache {
	return &Cache{
		client:      client,
		descriptors: descriptors,
		index:       make(map[string]int),
	}
}

// Descriptors returns the ordered field schema.
func (c *Cache) Descriptors() []FieldDescriptor { return c.descriptors }

// Load replaces the entire cache with freshly fetched records. On
// failure the cache is cleared and a *FetchError is returned; the
// error is surfaced, not retried.
func (c *Cache) Load(ctx context.Context) error {
	records, err := c.client.List(ctx)
	if err != nil {
		c.mu.Lock()
		c.records = nil
		c.index = make(map[string]int)
		c.mu.Unlock()
		return &FetchError{Err: err}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.records = make([]Record, 0, len(records))
	c.index = make(map[string]int, len(records))
	for _, rec := range records {
		c.records = append(c.records, c.normalize(rec))
		c.index[rec.Key] = len(c.records) - 1
	}
	return nil
}

// normalize ensures the record carries a value (possibly nil) for
// every descriptor.
func (c *Cache) normalize(rec Record) Record {
	fields := make(map[string]any, len(c.descriptors))
	for _, desc := range c.descriptors {
		fields[desc.Name] = rec.Fields[desc.Name]
	}
	rec.Fields = fields
	return rec
}

// Records returns a snapshot of the cached records in order.
func (c *Cache) Records() []Record {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Record, len(c.records))
	for i, rec := range c.records {
		out[i] = rec.Clone()
	}
	return out
}

// Get returns a copy of the record for key.
func (c *Cache) Get(key string) (Record, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i, ok := c.index[key]
	if !ok {
		return Record{}, false
	}
	return c.records[i].Clone(), true
}

// Len returns the number of cached records.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.records)
}

// InsertPending creates a record with a fresh pending key and
// descriptor defaults and appends it to the cache.
func (c *Cache) InsertPending() Record {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.pendingSeq++
	fields := make(map[string]any, len(c.descriptors))
	for _, desc := range c.descriptors {
		fields[desc.Name] = desc.DefaultValue()
	}
	rec := Record{Key: newPendingKey(c.pendingSeq), Fields: fields}

	c.records = append(c.records, rec)
	c.index[rec.Key] = len(c.records) - 1
	return rec.Clone()
}

// CommitCreate sends a pending record to the remote store and replaces
// it in place with the persisted record the store returns. Local-only
// metadata is never part of the payload.
func (c *Cache) CommitCreate(ctx context.Context, rec Record) (Record, error) {
	if !rec.IsPending() {
		return Record{}, &StaleOperationError{Key: rec.Key, Op: "create"}
	}

	persisted, err := c.client.Create(ctx, rec.Fields)
	if err != nil {
		return Record{}, err
	}
	persisted = c.normalize(persisted)

	c.mu.Lock()
	defer c.mu.Unlock()
	if i, ok := c.index[rec.Key]; ok {
		delete(c.index, rec.Key)
		c.records[i] = persisted
		c.index[persisted.Key] = i
	}
	return persisted.Clone(), nil
}

// CommitUpdate sends an update for an existing persisted record and
// refreshes the cached copy.
func (c *Cache) CommitUpdate(ctx context.Context, key string, fields map[string]any) (Record, error) {
	if IsPendingKey(key) {
		return Record{}, &StaleOperationError{Key: key, Op: "update"}
	}

	persisted, err := c.client.Update(ctx, key, fields)
	if err != nil {
		return Record{}, err
	}
	persisted = c.normalize(persisted)

	c.mu.Lock()
	defer c.mu.Unlock()
	if i, ok := c.index[key]; ok {
		delete(c.index, key)
		c.records[i] = persisted
		c.index[persisted.Key] = i
	}
	return persisted.Clone(), nil
}

// Remove deletes a record. Persisted records are deleted remotely
// first; pending records are removed locally without a remote call.
func (c *Cache) Remove(ctx context.Context, key string) error {
	if IsPendingKey(key) {
		if !c.Discard(key) {
			return &NotFoundError{Key: key}
		}
		return nil
	}

	c.mu.Lock()
	_, ok := c.index[key]
	c.mu.Unlock()
	if !ok {
		return &NotFoundError{Key: key}
	}

	if err := c.client.Delete(ctx, key); err != nil {
		return err
	}
	c.Discard(key)
	return nil
}

// Discard removes a record from the cache only, reporting whether the
// key was present. Used when a pending record is abandoned.
func (c *Cache) Discard(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	i, ok := c.index[key]
	if !ok {
		return false
	}
	c.records = append(c.records[:i], c.records[i+1:]...)
	delete(c.index, key)
	for j := i; j < len(c.records); j++ {
		c.index[c.records[j].Key] = j
	}
	return true
}

// Search returns the records where at least one field's string
// rendering contains the query substring, case-insensitively. An
// empty query matches everything.
func (c *Cache) Search(query string) []Record {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return c.Records()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	var out []Record
	for _, rec := range c.records {
		for _, desc := range c.descriptors {
			v := rec.Fields[desc.Name]
			if v == nil {
				continue
			}
			if strings.Contains(strings.ToLower(asString(v)), query) {
				out = append(out, rec.Clone())
				break
			}
		}
	}
	return out
}
