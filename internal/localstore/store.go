package localstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/Amrutha-Gopalakrishnan/Stock-Wise/internal/common"
	"github.com/Amrutha-Gopalakrishnan/Stock-Wise/internal/logging"
)

// slotPrefix namespaces the backend keys so a shared medium can host other
// data next to the cache.
const slotPrefix = "stockwise_localdb_"

// Store is the persistent table store: named collections of records over a
// Backend. Every operation reads the full collection, mutates it and writes
// it back as one step; a mutex serializes those cycles so the store is safe
// for concurrent use from multiple goroutines.
type Store struct {
	mu      sync.Mutex
	backend Backend
	log     logging.Logger
	now     func() time.Time
}

// Option customizes a Store.
type Option func(*Store)

// WithLogger sets the logger used for corrupt-slot warnings.
func WithLogger(l logging.Logger) Option {
	return func(s *Store) { s.log = l }
}

// WithClock overrides the timestamp source, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New returns a Store over the given backend. The zero configuration logs
// nowhere and stamps records with the wall clock.
func New(backend Backend, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		log:     logging.NewNopLogger(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns a deep copy of the full collection. Mutating the result never
// affects stored state.
func (s *Store) List(ctx context.Context, table string) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	records, err := s.readTable(ctx, table)
	if err != nil {
		return nil, err
	}
	return cloneRecords(records), nil
}

// Insert appends a record to the collection. A missing LocalID is assigned,
// CreatedAtLocal defaults to now, UpdatedAtLocal is always stamped to now.
// RemoteID, Synced and LastSyncedAt are kept as supplied by the caller, so a
// record born from a confirmed remote row can be inserted already synced.
// Returns a copy of the stored record.
func (s *Store) Insert(ctx context.Context, table string, rec Record) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.readTable(ctx, table)
	if err != nil {
		return Record{}, err
	}

	now := s.now()
	if rec.LocalID == "" {
		rec.LocalID = NewLocalID(table)
	}
	if rec.CreatedAtLocal.IsZero() {
		rec.CreatedAtLocal = now
	}
	rec.UpdatedAtLocal = now
	rec.Fields = cloneFields(rec.Fields)

	records = append(records, rec)
	if err := s.writeTable(ctx, table, records); err != nil {
		return Record{}, err
	}
	return rec.Clone(), nil
}

// Update shallow-merges patch over the payload of the record with the given
// LocalID and re-stamps UpdatedAtLocal. A missing record yields
// common.ErrNotFound and leaves the collection untouched.
func (s *Store) Update(ctx context.Context, table, localID string, patch map[string]any) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.update(ctx, table, localID, patch, nil)
}

// MarkSynced merges patch like Update and additionally promotes the record to
// the synced state: RemoteID is set, Synced becomes true and LastSyncedAt is
// refreshed. This is the single path by which a local record acquires a
// confirmed remote identity.
func (s *Store) MarkSynced(ctx context.Context, table, localID, remoteID string, patch map[string]any) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	return s.update(ctx, table, localID, patch, func(rec *Record) {
		rec.RemoteID = remoteID
		rec.Synced = true
		rec.LastSyncedAt = now
	})
}

// Remove filters the record out of the collection. Removing an unknown id is
// a no-op.
func (s *Store) Remove(ctx context.Context, table, localID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.readTable(ctx, table)
	if err != nil {
		return err
	}
	kept := records[:0]
	for _, rec := range records {
		if rec.LocalID != localID {
			kept = append(kept, rec)
		}
	}
	return s.writeTable(ctx, table, kept)
}

// Clear empties the collection.
func (s *Store) Clear(ctx context.Context, table string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeTable(ctx, table, nil)
}

// update merges patch over the target's payload, applies the optional meta
// mutation and persists. Caller holds the lock.
func (s *Store) update(ctx context.Context, table, localID string, patch map[string]any, meta func(*Record)) (*Record, error) {
	records, err := s.readTable(ctx, table)
	if err != nil {
		return nil, err
	}

	idx := -1
	for i := range records {
		if records[i].LocalID == localID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, common.ErrNotFound
	}

	rec := &records[idx]
	if rec.Fields == nil {
		rec.Fields = map[string]any{}
	}
	for k, v := range patch {
		rec.Fields[k] = cloneValue(v)
	}
	if meta != nil {
		meta(rec)
	}
	rec.UpdatedAtLocal = s.now()

	if err := s.writeTable(ctx, table, records); err != nil {
		return nil, err
	}
	out := rec.Clone()
	return &out, nil
}

// readTable loads a collection from its backend slot. A slot that fails to
// parse is discarded and treated as empty; corruption never reaches callers.
func (s *Store) readTable(ctx context.Context, table string) ([]Record, error) {
	raw, err := s.backend.Get(ctx, slotPrefix+table)
	if err != nil {
		return nil, fmt.Errorf("reading table %q: %w", table, err)
	}
	if len(raw) == 0 {
		return nil, nil
	}

	var records []Record
	if err := json.Unmarshal(raw, &records); err != nil {
		s.log.Warn(ctx, "discarding corrupt table slot", "table", table, "error", err)
		if derr := s.backend.Delete(ctx, slotPrefix+table); derr != nil {
			s.log.Warn(ctx, "failed to drop corrupt table slot", "table", table, "error", derr)
		}
		return nil, nil
	}
	return records, nil
}

func (s *Store) writeTable(ctx context.Context, table string, records []Record) error {
	if records == nil {
		records = []Record{}
	}
	raw, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("serializing table %q: %w", table, err)
	}
	if err := s.backend.Put(ctx, slotPrefix+table, raw); err != nil {
		return fmt.Errorf("writing table %q: %w", table, err)
	}
	return nil
}

func cloneRecords(records []Record) []Record {
	out := make([]Record, len(records))
	for i, rec := range records {
		out[i] = rec.Clone()
	}
	return out
}
