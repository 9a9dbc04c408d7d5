package inventory

import (
	"context"
	"fmt"

	"github.com/Amrutha-Gopalakrishnan/Stock-Wise/internal/localstore"
)

// AddStockTransaction applies a stock movement to the local view and records
// it. The product's new quantity is computed from the signed delta and
// clamped at zero:
//
//	TypeOut subtracts, TypeIn adds, and any other type (including
//	TypeAdjustment) adds the quantity unchanged. This matches the remote
//	stored procedure, which treats an adjustment as an incoming delta.
//
// A product that is not known locally contributes a current quantity of 0 and
// is left alone; the transaction is still recorded. Returns the mapped
// transaction view and the computed stock level.
func (db *DB) AddStockTransaction(ctx context.Context, in StockTransactionInput) (StockTransaction, int, error) {
	products, err := db.store.List(ctx, TableProducts)
	if err != nil {
		return StockTransaction{}, 0, err
	}

	product := findByAnyID(products, in.ProductID)

	current := 0
	if product != nil {
		current = product.IntField("current_quantity")
	}

	delta := in.Quantity
	if in.Type == TypeOut {
		delta = -in.Quantity
	}
	next := current + delta
	if next < 0 {
		next = 0
	}

	if product != nil {
		if _, err := db.store.Update(ctx, TableProducts, product.LocalID, map[string]any{
			"current_quantity": next,
		}); err != nil {
			return StockTransaction{}, 0, fmt.Errorf("updating product stock: %w", err)
		}
	}

	rec, err := db.store.Insert(ctx, TableStockTransactions, localstore.Record{
		Meta:   localstore.Meta{RemoteID: in.ID, Synced: in.ID != ""},
		Fields: in.fields(),
	})
	if err != nil {
		return StockTransaction{}, 0, fmt.Errorf("recording stock transaction: %w", err)
	}

	return mapStockTransaction(rec), next, nil
}

// SetStockLevel pins a product's current quantity to an authoritative value,
// typically the one returned by the remote stock procedure. An unknown
// product gets a placeholder record holding just the identifier and quantity,
// so the call never fails for a product the cache has not seen yet.
func (db *DB) SetStockLevel(ctx context.Context, productID string, quantity int) error {
	products, err := db.store.List(ctx, TableProducts)
	if err != nil {
		return err
	}

	if product := findByAnyID(products, productID); product != nil {
		_, err := db.store.Update(ctx, TableProducts, product.LocalID, map[string]any{
			"current_quantity": quantity,
		})
		return err
	}

	_, err = db.store.Insert(ctx, TableProducts, localstore.Record{
		Meta:   localstore.Meta{RemoteID: productID},
		Fields: map[string]any{"current_quantity": quantity},
	})
	return err
}
