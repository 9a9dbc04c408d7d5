package localstore

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func setupSQLite(t *testing.T) *SQLiteBackend {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`CREATE TABLE local_tables (
		name TEXT PRIMARY KEY,
		data BLOB NOT NULL
	)`)
	require.NoError(t, err)

	return NewSQLiteBackend(db)
}

func TestSQLiteBackend_Roundtrip(t *testing.T) {
	b := setupSQLite(t)
	ctx := context.Background()

	raw, err := b.Get(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, raw, "absent slot reads as nil, not an error")

	require.NoError(t, b.Put(ctx, "slot", []byte(`[{"a":1}]`)))

	raw, err = b.Get(ctx, "slot")
	require.NoError(t, err)
	assert.Equal(t, []byte(`[{"a":1}]`), raw)

	require.NoError(t, b.Put(ctx, "slot", []byte(`[]`)))
	raw, err = b.Get(ctx, "slot")
	require.NoError(t, err)
	assert.Equal(t, []byte(`[]`), raw, "put overwrites in place")

	require.NoError(t, b.Delete(ctx, "slot"))
	raw, err = b.Get(ctx, "slot")
	require.NoError(t, err)
	assert.Nil(t, raw)

	require.NoError(t, b.Delete(ctx, "slot"), "deleting an absent slot is a no-op")
}

func TestSQLiteBackend_BacksStore(t *testing.T) {
	s := New(setupSQLite(t))
	ctx := context.Background()

	inserted, err := s.Insert(ctx, "products", Record{Fields: map[string]any{"name": "Widget"}})
	require.NoError(t, err)

	records, err := s.List(ctx, "products")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, inserted.LocalID, records[0].LocalID)
	assert.Equal(t, "Widget", records[0].StringField("name"))
}

func TestMemoryBackend_Roundtrip(t *testing.T) {
	b := NewMemoryBackend()
	ctx := context.Background()

	raw, err := b.Get(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, raw)

	require.NoError(t, b.Put(ctx, "slot", []byte("payload")))

	raw, err = b.Get(ctx, "slot")
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), raw)

	require.NoError(t, b.Delete(ctx, "slot"))
	raw, err = b.Get(ctx, "slot")
	require.NoError(t, err)
	assert.Nil(t, raw)
}

func TestMemoryBackend_CopiesOnReadAndWrite(t *testing.T) {
	b := NewMemoryBackend()
	ctx := context.Background()

	in := []byte("payload")
	require.NoError(t, b.Put(ctx, "slot", in))
	in[0] = 'X'

	out, err := b.Get(ctx, "slot")
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), out)

	out[0] = 'Y'
	again, err := b.Get(ctx, "slot")
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), again)
}
