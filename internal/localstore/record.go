package localstore

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Reserved keys under which sync metadata is persisted alongside the payload.
const (
	keyLocalID        = "localId"
	keyRemoteID       = "remoteId"
	keySynced         = "synced"
	keyCreatedAtLocal = "createdAtLocal"
	keyUpdatedAtLocal = "updatedAtLocal"
	keyLastSyncedAt   = "lastSyncedAt"
)

// Meta carries the identity and sync-state fields shared by every record.
type Meta struct {
	// LocalID is the primary key for local operations. Assigned on insert,
	// unique within a collection, never reassigned.
	LocalID string

	// RemoteID is the backend-assigned identifier, "" until the record is
	// confirmed persisted remotely.
	RemoteID string

	// Synced is true iff the record is known to match a confirmed remote row.
	Synced bool

	CreatedAtLocal time.Time
	UpdatedAtLocal time.Time

	// LastSyncedAt is the zero value until the record is first confirmed.
	LastSyncedAt time.Time
}

// Record is the unit stored in any collection: sync metadata plus an
// arbitrary entity payload. Payloads stay dynamic because patches follow
// shallow-merge JSON semantics (an absent key survives, a present key
// overwrites, including overwriting with a zero value); typed shapes live in
// the entity facade.
type Record struct {
	Meta
	Fields map[string]any
}

// MarshalJSON flattens metadata and payload into a single JSON object, the
// persisted layout of a record. Metadata keys win over payload keys.
func (r Record) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(r.Fields)+6)
	for k, v := range r.Fields {
		m[k] = v
	}
	m[keyLocalID] = r.LocalID
	if r.RemoteID != "" {
		m[keyRemoteID] = r.RemoteID
	} else {
		delete(m, keyRemoteID)
	}
	m[keySynced] = r.Synced
	m[keyCreatedAtLocal] = r.CreatedAtLocal.UTC().Format(time.RFC3339Nano)
	m[keyUpdatedAtLocal] = r.UpdatedAtLocal.UTC().Format(time.RFC3339Nano)
	if !r.LastSyncedAt.IsZero() {
		m[keyLastSyncedAt] = r.LastSyncedAt.UTC().Format(time.RFC3339Nano)
	} else {
		delete(m, keyLastSyncedAt)
	}
	return json.Marshal(m)
}

// UnmarshalJSON is the inverse of MarshalJSON: known metadata keys are lifted
// out of the object, everything else becomes the payload.
func (r *Record) UnmarshalJSON(data []byte) error {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	r.LocalID = popString(m, keyLocalID)
	r.RemoteID = popString(m, keyRemoteID)
	r.Synced = popBool(m, keySynced)
	r.CreatedAtLocal = popTime(m, keyCreatedAtLocal)
	r.UpdatedAtLocal = popTime(m, keyUpdatedAtLocal)
	r.LastSyncedAt = popTime(m, keyLastSyncedAt)
	r.Fields = m
	return nil
}

// Clone returns a deep copy. Store reads hand out clones so callers can never
// mutate stored state through a returned record.
func (r Record) Clone() Record {
	out := r
	out.Fields = cloneFields(r.Fields)
	return out
}

// ResolvedID is the identifier a record is known by outside the store:
// the remote id when present, else a payload-supplied "id", else the local id.
func (r Record) ResolvedID() string {
	if r.RemoteID != "" {
		return r.RemoteID
	}
	if id, ok := r.Fields["id"].(string); ok && id != "" {
		return id
	}
	return r.LocalID
}

// StringField returns the payload value under key as a string, or "".
func (r Record) StringField(key string) string {
	s, _ := r.Fields[key].(string)
	return s
}

// NumberField returns the payload value under key as a float64, or 0.
// Integer values (from programmatic inserts) are widened.
func (r Record) NumberField(key string) float64 {
	switch v := r.Fields[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case json.Number:
		f, _ := v.Float64()
		return f
	default:
		return 0
	}
}

// IntField returns the payload value under key truncated to an int, or 0.
func (r Record) IntField(key string) int {
	return int(r.NumberField(key))
}

// HasField reports whether the payload carries key at all, distinguishing an
// absent value from a present zero.
func (r Record) HasField(key string) bool {
	_, ok := r.Fields[key]
	return ok
}

// NewLocalID generates a fresh local identifier for a record of the given
// collection. The "local-" prefix makes never-synced ids recognizable in
// diagnostics and exports.
func NewLocalID(table string) string {
	return fmt.Sprintf("local-%s-%s", table, uuid.NewString())
}

func cloneFields(fields map[string]any) map[string]any {
	if fields == nil {
		return map[string]any{}
	}
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = cloneValue(v)
	}
	return out
}

// cloneValue deep-copies JSON-shaped values. Scalars are returned as is.
func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneFields(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return t
	}
}

func popString(m map[string]any, key string) string {
	v, _ := m[key].(string)
	delete(m, key)
	return v
}

func popBool(m map[string]any, key string) bool {
	v, _ := m[key].(bool)
	delete(m, key)
	return v
}

func popTime(m map[string]any, key string) time.Time {
	s, _ := m[key].(string)
	delete(m, key)
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
