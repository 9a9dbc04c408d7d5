package localstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Amrutha-Gopalakrishnan/Stock-Wise/internal/common"
)

func TestUpsertRemote_InsertsNewRows(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	records, err := s.UpsertRemote(ctx, "products", []Row{
		{"id": "R1", "name": "Widget"},
		{"id": "R2", "name": "Gadget"},
	})
	require.NoError(t, err)
	require.Len(t, records, 2)

	for _, rec := range records {
		assert.True(t, rec.Synced)
		assert.NotEmpty(t, rec.LocalID)
		assert.False(t, rec.LastSyncedAt.IsZero())
	}
	assert.Equal(t, "R1", records[0].RemoteID)
	assert.Equal(t, "R2", records[1].RemoteID)
}

func TestUpsertRemote_MergesIntoExistingHolder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.UpsertRemote(ctx, "products", []Row{
		{"id": "R1", "name": "Widget", "current_quantity": 7},
	})
	require.NoError(t, err)

	// the second batch has no quantity column; the local value must survive
	records, err := s.UpsertRemote(ctx, "products", []Row{
		{"id": "R1", "name": "Widget v2"},
	})
	require.NoError(t, err)
	require.Len(t, records, 1, "no duplicate record for the same remote identity")

	assert.Equal(t, "Widget v2", records[0].StringField("name"))
	assert.Equal(t, 7, records[0].IntField("current_quantity"))
}

func TestUpsertRemote_IsIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rows := []Row{
		{"id": "R1", "name": "Widget"},
		{"id": "R2", "name": "Gadget"},
	}

	once, err := s.UpsertRemote(ctx, "products", rows)
	require.NoError(t, err)
	twice, err := s.UpsertRemote(ctx, "products", rows)
	require.NoError(t, err)

	require.Len(t, twice, len(once))
	for i := range once {
		assert.Equal(t, once[i].LocalID, twice[i].LocalID)
		assert.Equal(t, once[i].RemoteID, twice[i].RemoteID)
		assert.Equal(t, once[i].Fields, twice[i].Fields)
	}
}

func TestUpsertRemote_LeavesLocalOnlyRecordsAlone(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	local, err := s.Insert(ctx, "products", Record{Fields: map[string]any{"name": "Draft"}})
	require.NoError(t, err)

	records, err := s.UpsertRemote(ctx, "products", []Row{
		{"id": "R1", "name": "Widget"},
	})
	require.NoError(t, err)
	require.Len(t, records, 2)

	var found *Record
	for i := range records {
		if records[i].LocalID == local.LocalID {
			found = &records[i]
		}
	}
	require.NotNil(t, found, "local-only record survives reconciliation")
	assert.Empty(t, found.RemoteID)
	assert.False(t, found.Synced)
	assert.Equal(t, "Draft", found.StringField("name"))
}

// A local record with no remote identity is not matched by an incoming row,
// even when the payloads look alike: reconciliation matches by remote id only.
func TestUpsertRemote_DoesNotAdoptUnsyncedLookalikes(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Insert(ctx, "products", Record{Fields: map[string]any{"name": "Widget"}})
	require.NoError(t, err)

	records, err := s.UpsertRemote(ctx, "products", []Row{
		{"id": "R1", "name": "Widget"},
	})
	require.NoError(t, err)
	require.Len(t, records, 2)

	synced := 0
	for _, rec := range records {
		if rec.Synced {
			synced++
			assert.Equal(t, "R1", rec.RemoteID)
		}
	}
	assert.Equal(t, 1, synced)
}

func TestUpsertRemote_SkipsRowsWithoutIdentifier(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	records, err := s.UpsertRemote(ctx, "products", []Row{
		{"name": "No identity"},
		{"id": "", "name": "Empty identity"},
		{"id": "R1", "name": "Widget"},
	})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "R1", records[0].RemoteID)
}

func TestUpsertRemote_LastWriteWinsWithinBatch(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	records, err := s.UpsertRemote(ctx, "products", []Row{
		{"id": "R1", "name": "First"},
		{"id": "R1", "name": "Second"},
	})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Second", records[0].StringField("name"))
}

func TestUpsertRemote_TransformAndRemoteIDKey(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	records, err := s.UpsertRemote(ctx, "products",
		[]Row{{"uuid": "R1", "product_name": "Widget"}},
		WithRemoteIDKey("uuid"),
		WithTransform(func(row Row) Row {
			return Row{"name": row["product_name"]}
		}),
	)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "R1", records[0].RemoteID)
	assert.Equal(t, "Widget", records[0].StringField("name"))
	assert.False(t, records[0].HasField("product_name"))
}

func TestUpsertRemote_TransformCannotSmuggleSyncState(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	records, err := s.UpsertRemote(ctx, "products",
		[]Row{{"id": "R1", "name": "Widget"}},
		WithTransform(func(row Row) Row {
			row["synced"] = false
			row["localId"] = "hijacked"
			return row
		}),
	)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.True(t, records[0].Synced)
	assert.NotEqual(t, "hijacked", records[0].LocalID)
	assert.False(t, records[0].HasField("synced"))
}

func TestFindByRemoteID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.UpsertRemote(ctx, "products", []Row{{"id": "R1", "name": "Widget"}})
	require.NoError(t, err)

	found, err := s.FindByRemoteID(ctx, "products", "R1")
	require.NoError(t, err)
	assert.Equal(t, "Widget", found.StringField("name"))

	_, err = s.FindByRemoteID(ctx, "products", "R2")
	assert.ErrorIs(t, err, common.ErrNotFound)

	_, err = s.FindByRemoteID(ctx, "products", "")
	assert.ErrorIs(t, err, common.ErrNotFound)
}
