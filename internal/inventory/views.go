package inventory

import (
	"time"

	"github.com/Amrutha-Gopalakrishnan/Stock-Wise/internal/localstore"
)

// Collection names in the local store.
const (
	TableProducts          = "products"
	TableCategories        = "categories"
	TableSuppliers         = "suppliers"
	TableStockTransactions = "stock_transactions"
	TableUsers             = "users"
)

// unknownName is rendered where a category or supplier name is not known yet.
const unknownName = "—"

// Ref identifies an entity view: the resolved identifier (remote when known,
// local otherwise) plus the diagnostic pair exposing where the view came from.
type Ref struct {
	ID      string `json:"id"`
	LocalID string `json:"_localId"`
	Synced  bool   `json:"_synced"`
}

// Product is the projection of a product record consumed by the UI layer.
type Product struct {
	Ref
	Name             string  `json:"name"`
	SKU              string  `json:"sku"`
	UnitPrice        float64 `json:"unit_price"`
	CategoryName     string  `json:"category_name"`
	SupplierName     string  `json:"supplier_name"`
	CurrentQuantity  int     `json:"current_quantity"`
	CategoryID       string  `json:"category_id,omitempty"`
	SupplierID       string  `json:"supplier_id,omitempty"`
	ReorderThreshold int     `json:"reorder_threshold,omitempty"`
	ReorderQuantity  int     `json:"reorder_quantity,omitempty"`
}

type Category struct {
	Ref
	Name string `json:"name"`
}

type Supplier struct {
	Ref
	Name         string `json:"name"`
	ContactPhone string `json:"contact_phone,omitempty"`
	ContactEmail string `json:"contact_email,omitempty"`
	Address      string `json:"address,omitempty"`
}

// StockTransaction is a recorded stock movement. Type is one of TypeIn,
// TypeOut or TypeAdjustment.
type StockTransaction struct {
	Ref
	ProductID string    `json:"product_id,omitempty"`
	Type      string    `json:"transaction_type"`
	Quantity  int       `json:"quantity"`
	Reason    string    `json:"reason,omitempty"`
	LoggedBy  string    `json:"logged_by,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type User struct {
	Ref
	FullName string `json:"full_name"`
	Role     string `json:"role"`
	Email    string `json:"email,omitempty"`
}

func newRef(rec localstore.Record) Ref {
	return Ref{ID: rec.ResolvedID(), LocalID: rec.LocalID, Synced: rec.Synced}
}

func mapProduct(rec localstore.Record) Product {
	return Product{
		Ref:              newRef(rec),
		Name:             rec.StringField("name"),
		SKU:              rec.StringField("sku"),
		UnitPrice:        rec.NumberField("unit_price"),
		CategoryName:     stringOr(rec, "category_name", unknownName),
		SupplierName:     stringOr(rec, "supplier_name", unknownName),
		CurrentQuantity:  rec.IntField("current_quantity"),
		CategoryID:       rec.StringField("category_id"),
		SupplierID:       rec.StringField("supplier_id"),
		ReorderThreshold: rec.IntField("reorder_threshold"),
		ReorderQuantity:  rec.IntField("reorder_quantity"),
	}
}

func mapCategory(rec localstore.Record) Category {
	return Category{Ref: newRef(rec), Name: rec.StringField("name")}
}

func mapSupplier(rec localstore.Record) Supplier {
	return Supplier{
		Ref:          newRef(rec),
		Name:         rec.StringField("name"),
		ContactPhone: rec.StringField("contact_phone"),
		ContactEmail: rec.StringField("contact_email"),
		Address:      rec.StringField("address"),
	}
}

func mapStockTransaction(rec localstore.Record) StockTransaction {
	return StockTransaction{
		Ref:       newRef(rec),
		ProductID: rec.StringField("product_id"),
		Type:      stringOr(rec, "transaction_type", TypeAdjustment),
		Quantity:  rec.IntField("quantity"),
		Reason:    rec.StringField("reason"),
		LoggedBy:  rec.StringField("logged_by"),
		CreatedAt: createdAt(rec),
	}
}

func mapUser(rec localstore.Record) User {
	return User{
		Ref:      newRef(rec),
		FullName: stringOr(rec, "full_name", "Staff User"),
		Role:     stringOr(rec, "role", RoleStaff),
		Email:    rec.StringField("email"),
	}
}

func stringOr(rec localstore.Record, key, fallback string) string {
	if s := rec.StringField(key); s != "" {
		return s
	}
	return fallback
}

// createdAt prefers the remote creation timestamp carried in the payload and
// falls back to the local one.
func createdAt(rec localstore.Record) time.Time {
	if s := rec.StringField("created_at"); s != "" {
		if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
			return t
		}
	}
	return rec.CreatedAtLocal
}

func mapAll[T any](records []localstore.Record, mapper func(localstore.Record) T) []T {
	out := make([]T, 0, len(records))
	for _, rec := range records {
		out = append(out, mapper(rec))
	}
	return out
}
