package postgres

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Amrutha-Gopalakrishnan/Stock-Wise/internal/common"
	"github.com/Amrutha-Gopalakrishnan/Stock-Wise/internal/remote"
)

func TestBuildSelect(t *testing.T) {
	tests := []struct {
		name     string
		query    remote.Query
		wantSQL  string
		wantArgs []any
	}{
		{
			name:    "all columns",
			query:   remote.From("products"),
			wantSQL: "SELECT * FROM products",
		},
		{
			name:    "column list and order",
			query:   remote.From("products").Select("id", "name").Order("name"),
			wantSQL: "SELECT id, name FROM products ORDER BY name",
		},
		{
			name:    "descending order with limit",
			query:   remote.From("stock_transactions").Select("id").OrderDesc("created_at").Limit(50),
			wantSQL: "SELECT id FROM stock_transactions ORDER BY created_at DESC LIMIT 50",
		},
		{
			name:     "filters conjoin",
			query:    remote.From("users").Eq("role", "staff").Eq("active", true),
			wantSQL:  "SELECT * FROM users WHERE role = $1 AND active = $2",
			wantArgs: []any{"staff", true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sqlText, args, err := buildSelect(tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, sqlText)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestBuildSelect_RejectsBadIdentifiers(t *testing.T) {
	_, _, err := buildSelect(remote.From("products; drop table users"))
	assert.ErrorIs(t, err, common.ErrBadIdentifier)

	_, _, err = buildSelect(remote.From("products").Select("name, 1=1"))
	assert.ErrorIs(t, err, common.ErrBadIdentifier)

	_, _, err = buildSelect(remote.From("products").Eq("id OR true", "x"))
	assert.ErrorIs(t, err, common.ErrBadIdentifier)

	_, _, err = buildSelect(remote.From("products").Order("name DESC"))
	assert.ErrorIs(t, err, common.ErrBadIdentifier)
}

func TestCheckIdent(t *testing.T) {
	assert.NoError(t, checkIdent("stock_transactions"))
	assert.NoError(t, checkIdent("_private"))
	assert.ErrorIs(t, checkIdent(""), common.ErrBadIdentifier)
	assert.ErrorIs(t, checkIdent("Products"), common.ErrBadIdentifier)
	assert.ErrorIs(t, checkIdent("1st"), common.ErrBadIdentifier)
}

func TestNormalizeValue(t *testing.T) {
	assert.Equal(t, "hello", normalizeValue([]byte("hello")))
	assert.Equal(t, float64(7), normalizeValue(int64(7)))
	assert.Equal(t, 1.5, normalizeValue(1.5))
	assert.Nil(t, normalizeValue(nil))

	ts := time.Date(2025, 6, 1, 10, 30, 0, 0, time.FixedZone("X", 3600))
	assert.Equal(t, "2025-06-01T09:30:00Z", normalizeValue(ts))

	raw := [16]byte{0x11, 0x22, 0x33, 0x44, 0x55, 0x66, 0x77, 0x88,
		0x99, 0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff, 0x00}
	assert.Equal(t, "11223344-5566-7788-99aa-bbccddeeff00", normalizeValue(raw))
}

func TestSortedKeys(t *testing.T) {
	keys := sortedKeys(remote.Row{"b": 1, "a": 2, "c": 3})
	assert.Equal(t, []string{"a", "b", "c"}, keys)
}

func TestIsTransient(t *testing.T) {
	assert.True(t, isTransient(errors.New("dial tcp 127.0.0.1:5432: connection refused")))
	assert.True(t, isTransient(errors.New("read tcp: i/o timeout")))
	assert.False(t, isTransient(errors.New("duplicate key value violates unique constraint")))
	assert.False(t, isTransient(assert.AnError))
}
