package localstore

import (
	"context"

	"github.com/Amrutha-Gopalakrishnan/Stock-Wise/internal/common"
)

// Row is an untyped remote row, as returned by the remote backend.
type Row = map[string]any

// UpsertOption customizes a reconciliation pass.
type UpsertOption func(*upsertOptions)

type upsertOptions struct {
	remoteIDKey string
	transform   func(Row) Row
}

// WithRemoteIDKey selects which field of a remote row carries its identifier.
// The default is "id".
func WithRemoteIDKey(key string) UpsertOption {
	return func(o *upsertOptions) { o.remoteIDKey = key }
}

// WithTransform maps each remote row into the payload shape before merging.
// The transform may set a "remoteId" key to override identifier resolution.
func WithTransform(fn func(Row) Row) UpsertOption {
	return func(o *upsertOptions) { o.transform = fn }
}

// UpsertRemote merges a batch of authoritative remote rows into a collection,
// matching by remote identifier only:
//
//   - a row whose identifier matches an existing record is merged over it
//     (payload keys absent from the row survive) and the record is refreshed
//     to the synced state;
//   - a row with no local counterpart is inserted as a new record, born
//     synced;
//   - a row without an identifier cannot be reconciled and is skipped;
//   - records absent from the batch are left untouched. Reconciliation never
//     deletes.
//
// Two rows in one batch claiming the same identifier resolve last-write-wins:
// the second merges over what the first produced. Returns a copy of the full
// post-merge collection.
func (s *Store) UpsertRemote(ctx context.Context, table string, rows []Row, opts ...UpsertOption) ([]Record, error) {
	o := upsertOptions{
		remoteIDKey: "id",
		transform:   func(r Row) Row { return r },
	}
	for _, opt := range opts {
		opt(&o)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.readTable(ctx, table)
	if err != nil {
		return nil, err
	}

	now := s.now()
	for _, row := range rows {
		fields := cloneFields(o.transform(cloneFields(row)))

		remoteID := stringValue(fields[keyRemoteID])
		if remoteID == "" {
			remoteID = stringValue(row[o.remoteIDKey])
		}
		if remoteID == "" {
			continue
		}
		stripMetaKeys(fields)

		idx := -1
		for i := range records {
			if records[i].RemoteID == remoteID {
				idx = i
				break
			}
		}

		if idx == -1 {
			records = append(records, Record{
				Meta: Meta{
					LocalID:        NewLocalID(table),
					RemoteID:       remoteID,
					Synced:         true,
					CreatedAtLocal: now,
					UpdatedAtLocal: now,
					LastSyncedAt:   now,
				},
				Fields: fields,
			})
			continue
		}

		rec := &records[idx]
		if rec.Fields == nil {
			rec.Fields = map[string]any{}
		}
		for k, v := range fields {
			rec.Fields[k] = v
		}
		rec.Synced = true
		rec.LastSyncedAt = now
		rec.UpdatedAtLocal = now
	}

	if err := s.writeTable(ctx, table, records); err != nil {
		return nil, err
	}
	return cloneRecords(records), nil
}

// FindByRemoteID returns a copy of the record holding the given remote
// identity. An empty remoteID matches nothing; both that case and a missing
// record yield common.ErrNotFound.
func (s *Store) FindByRemoteID(ctx context.Context, table, remoteID string) (*Record, error) {
	if remoteID == "" {
		return nil, common.ErrNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.readTable(ctx, table)
	if err != nil {
		return nil, err
	}
	for i := range records {
		if records[i].RemoteID == remoteID {
			out := records[i].Clone()
			return &out, nil
		}
	}
	return nil, common.ErrNotFound
}

// stripMetaKeys drops metadata keys from a payload about to be merged, so a
// transform or remote row can never smuggle sync state into the payload.
func stripMetaKeys(fields map[string]any) {
	delete(fields, keyLocalID)
	delete(fields, keyRemoteID)
	delete(fields, keySynced)
	delete(fields, keyCreatedAtLocal)
	delete(fields, keyUpdatedAtLocal)
	delete(fields, keyLastSyncedAt)
}

func stringValue(v any) string {
	s, _ := v.(string)
	return s
}
