package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Amrutha-Gopalakrishnan/Stock-Wise/internal/common"
	"github.com/Amrutha-Gopalakrishnan/Stock-Wise/internal/localstore"
	"github.com/Amrutha-Gopalakrishnan/Stock-Wise/internal/logging"
)

// DB exposes the per-entity surface over one localstore.Store instance.
type DB struct {
	store *localstore.Store
	log   logging.Logger
}

func New(store *localstore.Store, log logging.Logger) *DB {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &DB{store: store, log: log}
}

// Products returns the mapped view of every locally known product.
func (db *DB) Products(ctx context.Context) ([]Product, error) {
	return getCollection(ctx, db, TableProducts, mapProduct)
}

// SaveProducts reconciles a batch of remote product rows into the store and
// returns the full post-merge view.
func (db *DB) SaveProducts(ctx context.Context, rows []localstore.Row) ([]Product, error) {
	return saveCollection(ctx, db, TableProducts, rows, mapProduct)
}

// UpsertProduct merges the input into the record holding its remote identity,
// or inserts a new record when none does.
func (db *DB) UpsertProduct(ctx context.Context, in ProductInput) (Product, error) {
	rec, err := db.upsert(ctx, TableProducts, in.ID, in.fields())
	if err != nil {
		return Product{}, err
	}
	return mapProduct(rec), nil
}

func (db *DB) Categories(ctx context.Context) ([]Category, error) {
	return getCollection(ctx, db, TableCategories, mapCategory)
}

func (db *DB) SaveCategories(ctx context.Context, rows []localstore.Row) ([]Category, error) {
	return saveCollection(ctx, db, TableCategories, rows, mapCategory)
}

func (db *DB) UpsertCategory(ctx context.Context, in CategoryInput) (Category, error) {
	rec, err := db.upsert(ctx, TableCategories, in.ID, in.fields())
	if err != nil {
		return Category{}, err
	}
	return mapCategory(rec), nil
}

func (db *DB) Suppliers(ctx context.Context) ([]Supplier, error) {
	return getCollection(ctx, db, TableSuppliers, mapSupplier)
}

func (db *DB) SaveSuppliers(ctx context.Context, rows []localstore.Row) ([]Supplier, error) {
	return saveCollection(ctx, db, TableSuppliers, rows, mapSupplier)
}

func (db *DB) UpsertSupplier(ctx context.Context, in SupplierInput) (Supplier, error) {
	rec, err := db.upsert(ctx, TableSuppliers, in.ID, in.fields())
	if err != nil {
		return Supplier{}, err
	}
	return mapSupplier(rec), nil
}

func (db *DB) StockTransactions(ctx context.Context) ([]StockTransaction, error) {
	return getCollection(ctx, db, TableStockTransactions, mapStockTransaction)
}

func (db *DB) SaveStockTransactions(ctx context.Context, rows []localstore.Row) ([]StockTransaction, error) {
	return saveCollection(ctx, db, TableStockTransactions, rows, mapStockTransaction)
}

func (db *DB) UpsertUser(ctx context.Context, in UserInput) (User, error) {
	rec, err := db.upsert(ctx, TableUsers, in.ID, in.fields())
	if err != nil {
		return User{}, err
	}
	return mapUser(rec), nil
}

func (db *DB) Users(ctx context.Context) ([]User, error) {
	return getCollection(ctx, db, TableUsers, mapUser)
}

// StaffUser returns the first user with the staff role, falling back to the
// first user of any role. A record with no role counts as staff.
// common.ErrNotFound when no users are known locally.
func (db *DB) StaffUser(ctx context.Context) (*User, error) {
	records, err := db.store.List(ctx, TableUsers)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, common.ErrNotFound
	}
	for _, rec := range records {
		role := rec.StringField("role")
		if role == "" || strings.EqualFold(role, RoleStaff) {
			u := mapUser(rec)
			return &u, nil
		}
	}
	u := mapUser(records[0])
	return &u, nil
}

// upsert implements the shared merge-or-insert path: a payload carrying a
// remote id lands on the record already holding that identity (confirming
// it as synced), anything else becomes a new record, born synced only if a
// remote id was supplied.
func (db *DB) upsert(ctx context.Context, table, remoteID string, fields map[string]any) (localstore.Record, error) {
	if remoteID != "" {
		existing, err := db.store.FindByRemoteID(ctx, table, remoteID)
		if err != nil && !errors.Is(err, common.ErrNotFound) {
			return localstore.Record{}, err
		}
		if err == nil {
			rec, err := db.store.MarkSynced(ctx, table, existing.LocalID, remoteID, fields)
			if err != nil {
				return localstore.Record{}, fmt.Errorf("merging into %q: %w", table, err)
			}
			return *rec, nil
		}
	}
	rec, err := db.store.Insert(ctx, table, localstore.Record{
		Meta:   localstore.Meta{RemoteID: remoteID, Synced: remoteID != ""},
		Fields: fields,
	})
	if err != nil {
		return localstore.Record{}, fmt.Errorf("inserting into %q: %w", table, err)
	}
	return rec, nil
}

func getCollection[T any](ctx context.Context, db *DB, table string, mapper func(localstore.Record) T) ([]T, error) {
	records, err := db.store.List(ctx, table)
	if err != nil {
		return nil, err
	}
	return mapAll(records, mapper), nil
}

// saveCollection is the reconciliation entry point shared by all Save*
// methods: remote rows are authoritative, so each is stamped with its own id
// as the remote identity before the merge.
func saveCollection[T any](ctx context.Context, db *DB, table string, rows []localstore.Row, mapper func(localstore.Record) T) ([]T, error) {
	records, err := db.store.UpsertRemote(ctx, table, rows)
	if err != nil {
		return nil, err
	}
	return mapAll(records, mapper), nil
}

// findByAnyID locates a record by remote id, payload id or local id, in that
// order of meaning but matching any of the three.
func findByAnyID(records []localstore.Record, id string) *localstore.Record {
	if id == "" {
		return nil
	}
	for i := range records {
		rec := &records[i]
		if rec.RemoteID == id || rec.StringField("id") == id || rec.LocalID == id {
			return rec
		}
	}
	return nil
}
