package inventory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Amrutha-Gopalakrishnan/Stock-Wise/internal/localstore"
)

func TestMapStockTransaction_Defaults(t *testing.T) {
	rec := localstore.Record{
		Meta:   localstore.Meta{LocalID: "local-stock_transactions-1", CreatedAtLocal: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)},
		Fields: map[string]any{"quantity": 3},
	}

	tx := mapStockTransaction(rec)
	assert.Equal(t, TypeAdjustment, tx.Type, "missing type renders as adjustment")
	assert.Equal(t, rec.CreatedAtLocal, tx.CreatedAt, "no remote timestamp, local one stands in")
	assert.Equal(t, 3, tx.Quantity)
}

func TestMapStockTransaction_RemoteTimestampWins(t *testing.T) {
	rec := localstore.Record{
		Meta: localstore.Meta{CreatedAtLocal: time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)},
		Fields: map[string]any{
			"created_at": "2025-06-01T10:30:00Z",
		},
	}

	tx := mapStockTransaction(rec)
	assert.Equal(t, time.Date(2025, 6, 1, 10, 30, 0, 0, time.UTC), tx.CreatedAt)
}

func TestMapUser_Defaults(t *testing.T) {
	u := mapUser(localstore.Record{Fields: map[string]any{}})
	assert.Equal(t, "Staff User", u.FullName)
	assert.Equal(t, RoleStaff, u.Role)
}

func TestRef_ResolvesIdentifierInOrder(t *testing.T) {
	withRemote := localstore.Record{
		Meta:   localstore.Meta{LocalID: "L1", RemoteID: "R1"},
		Fields: map[string]any{"id": "payload-id"},
	}
	assert.Equal(t, "R1", newRef(withRemote).ID)

	withPayload := localstore.Record{
		Meta:   localstore.Meta{LocalID: "L1"},
		Fields: map[string]any{"id": "payload-id"},
	}
	assert.Equal(t, "payload-id", newRef(withPayload).ID)

	localOnly := localstore.Record{Meta: localstore.Meta{LocalID: "L1"}}
	assert.Equal(t, "L1", newRef(localOnly).ID)
}
