package inventory

import "time"

// Transaction types. An adjustment is applied as a direct incoming delta,
// identical to TypeIn; see DB.AddStockTransaction.
const (
	TypeIn         = "in"
	TypeOut        = "out"
	TypeAdjustment = "adjustment"
)

// User roles.
const (
	RoleStaff = "staff"
	RoleAdmin = "admin"
)

// Inputs follow upsert merge semantics: a zero-valued string and a nil
// pointer mean "leave the stored value alone", a non-zero value overwrites.
// ID, when set, is the remote identifier and makes the upsert target (or
// create) the record holding that remote identity.

type ProductInput struct {
	ID               string
	Name             string
	SKU              string
	UnitPrice        *float64
	CategoryID       string
	SupplierID       string
	CategoryName     string
	SupplierName     string
	CurrentQuantity  *int
	ReorderThreshold *int
	ReorderQuantity  *int
}

func (in ProductInput) fields() map[string]any {
	f := map[string]any{}
	putString(f, "id", in.ID)
	putString(f, "name", in.Name)
	putString(f, "sku", in.SKU)
	putFloat(f, "unit_price", in.UnitPrice)
	putString(f, "category_id", in.CategoryID)
	putString(f, "supplier_id", in.SupplierID)
	putString(f, "category_name", in.CategoryName)
	putString(f, "supplier_name", in.SupplierName)
	putInt(f, "current_quantity", in.CurrentQuantity)
	putInt(f, "reorder_threshold", in.ReorderThreshold)
	putInt(f, "reorder_quantity", in.ReorderQuantity)
	return f
}

type CategoryInput struct {
	ID   string
	Name string
}

func (in CategoryInput) fields() map[string]any {
	f := map[string]any{}
	putString(f, "id", in.ID)
	putString(f, "name", in.Name)
	return f
}

type SupplierInput struct {
	ID           string
	Name         string
	ContactPhone string
	ContactEmail string
	Address      string
}

func (in SupplierInput) fields() map[string]any {
	f := map[string]any{}
	putString(f, "id", in.ID)
	putString(f, "name", in.Name)
	putString(f, "contact_phone", in.ContactPhone)
	putString(f, "contact_email", in.ContactEmail)
	putString(f, "address", in.Address)
	return f
}

type StockTransactionInput struct {
	// ID is the remote transaction identifier when the movement was already
	// confirmed by the backend; the local record is then born synced.
	ID        string
	ProductID string
	Type      string
	Quantity  int
	Reason    string
	LoggedBy  string
	CreatedAt time.Time
}

func (in StockTransactionInput) fields() map[string]any {
	f := map[string]any{}
	putString(f, "id", in.ID)
	putString(f, "product_id", in.ProductID)
	putString(f, "transaction_type", in.Type)
	f["quantity"] = in.Quantity
	putString(f, "reason", in.Reason)
	putString(f, "logged_by", in.LoggedBy)
	if !in.CreatedAt.IsZero() {
		f["created_at"] = in.CreatedAt.UTC().Format(time.RFC3339Nano)
	}
	return f
}

type UserInput struct {
	ID       string
	FullName string
	Role     string
	Email    string
}

func (in UserInput) fields() map[string]any {
	f := map[string]any{}
	putString(f, "id", in.ID)
	putString(f, "full_name", in.FullName)
	putString(f, "role", in.Role)
	putString(f, "email", in.Email)
	return f
}

func putString(f map[string]any, key, v string) {
	if v != "" {
		f[key] = v
	}
}

func putInt(f map[string]any, key string, v *int) {
	if v != nil {
		f[key] = *v
	}
}

func putFloat(f map[string]any, key string, v *float64) {
	if v != nil {
		f[key] = *v
	}
}
