// Package syncx coordinates the remote backend and the local cache as an
// explicit two-stage pipeline: try the remote path, fold any remote result
// into the local store, and always answer from the local view. Every result
// is tagged with the path that produced it, so callers can distinguish
// remote-confirmed data from a local-only fallback without side channels.
package syncx

import (
	"context"
	"errors"

	"github.com/Amrutha-Gopalakrishnan/Stock-Wise/internal/common"
	"github.com/Amrutha-Gopalakrishnan/Stock-Wise/internal/inventory"
	"github.com/Amrutha-Gopalakrishnan/Stock-Wise/internal/logging"
	"github.com/Amrutha-Gopalakrishnan/Stock-Wise/internal/remote"
)

// Source tags which path produced a result.
type Source string

const (
	// SourceRemote means the remote backend confirmed the operation and the
	// local store was updated from its answer.
	SourceRemote Source = "remote"

	// SourceLocal means the result came from the local store alone, either
	// because no remote backend is configured or because the remote call
	// failed (see Result.RemoteErr).
	SourceLocal Source = "local"
)

// Result carries a value, the path that produced it and, when the remote
// stage was attempted and failed, the failure for caller-level reporting.
type Result[T any] struct {
	Value     T
	Source    Source
	RemoteErr error
}

// Validation errors for stock movements.
var (
	ErrMissingProduct  = errors.New("product id is required")
	ErrMissingActor    = errors.New("logged_by is required")
	ErrInvalidQuantity = errors.New("quantity must be positive")
	ErrInvalidType     = errors.New("unknown transaction type")
)

// Coordinator owns the two-stage pipeline. A nil remote client puts it in
// offline mode: every operation completes against the local store with
// Source set to SourceLocal.
type Coordinator struct {
	remote   remote.Client
	notifier remote.Notifier
	inv      *inventory.DB
	log      logging.Logger
}

func New(inv *inventory.DB, client remote.Client, notifier remote.Notifier, log logging.Logger) *Coordinator {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Coordinator{remote: client, notifier: notifier, inv: inv, log: log}
}

// Online reports whether a remote backend is configured.
func (c *Coordinator) Online() bool {
	return c.remote != nil
}

// RefreshProducts pulls the product catalog and current stock levels from the
// remote backend, reconciles them into the cache and returns the merged view.
// On remote failure the current local view is returned tagged SourceLocal.
func (c *Coordinator) RefreshProducts(ctx context.Context) (Result[[]inventory.Product], error) {
	remoteErr := c.remoteErrOr(func() error {
		rows, err := c.remote.Select(ctx, remote.From(inventory.TableProducts).
			Select("id", "name", "sku", "unit_price", "category_id", "supplier_id",
				"reorder_threshold", "reorder_quantity").
			Order("name"))
		if err != nil {
			return err
		}

		levels, err := c.remote.Select(ctx, remote.From("stock_levels").
			Select("product_id", "current_quantity"))
		if err != nil {
			return err
		}

		quantities := make(map[string]any, len(levels))
		for _, lvl := range levels {
			if id, ok := lvl["product_id"].(string); ok {
				quantities[id] = lvl["current_quantity"]
			}
		}
		for _, row := range rows {
			if id, ok := row["id"].(string); ok {
				if qty, ok := quantities[id]; ok {
					row["current_quantity"] = qty
				}
			}
		}

		_, err = c.inv.SaveProducts(ctx, rows)
		return err
	})

	return finishRefresh(ctx, c, remoteErr, c.inv.Products)
}

// RefreshCategories reconciles the remote category list into the cache.
func (c *Coordinator) RefreshCategories(ctx context.Context) (Result[[]inventory.Category], error) {
	remoteErr := c.remoteErrOr(func() error {
		rows, err := c.remote.Select(ctx, remote.From(inventory.TableCategories).
			Select("id", "name").Order("name"))
		if err != nil {
			return err
		}
		_, err = c.inv.SaveCategories(ctx, rows)
		return err
	})
	return finishRefresh(ctx, c, remoteErr, c.inv.Categories)
}

// RefreshSuppliers reconciles the remote supplier list into the cache.
func (c *Coordinator) RefreshSuppliers(ctx context.Context) (Result[[]inventory.Supplier], error) {
	remoteErr := c.remoteErrOr(func() error {
		rows, err := c.remote.Select(ctx, remote.From(inventory.TableSuppliers).
			Select("id", "name", "contact_phone", "contact_email", "address").
			Order("name"))
		if err != nil {
			return err
		}
		_, err = c.inv.SaveSuppliers(ctx, rows)
		return err
	})
	return finishRefresh(ctx, c, remoteErr, c.inv.Suppliers)
}

// RefreshStockTransactions reconciles the remote movement log into the cache,
// newest first.
func (c *Coordinator) RefreshStockTransactions(ctx context.Context) (Result[[]inventory.StockTransaction], error) {
	remoteErr := c.remoteErrOr(func() error {
		rows, err := c.remote.Select(ctx, remote.From(inventory.TableStockTransactions).
			Select("id", "product_id", "transaction_type", "quantity", "reason",
				"logged_by", "created_at").
			OrderDesc("created_at"))
		if err != nil {
			return err
		}
		_, err = c.inv.SaveStockTransactions(ctx, rows)
		return err
	})
	return finishRefresh(ctx, c, remoteErr, c.inv.StockTransactions)
}

// StaffUser resolves the acting staff user: the remote backend's first staff
// row when reachable (cached locally on the way through), the cached staff
// user otherwise. common.ErrNotFound when neither path knows one.
func (c *Coordinator) StaffUser(ctx context.Context) (Result[*inventory.User], error) {
	var remoteUser *inventory.User
	remoteErr := c.remoteErrOr(func() error {
		rows, err := c.remote.Select(ctx, remote.From(inventory.TableUsers).
			Select("id", "full_name", "role").
			Eq("role", inventory.RoleStaff).
			Order("created_at").
			Limit(1))
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			return common.ErrNotFound
		}
		u, err := c.inv.UpsertUser(ctx, inventory.UserInput{
			ID:       stringAt(rows[0], "id"),
			FullName: stringAt(rows[0], "full_name"),
			Role:     inventory.RoleStaff,
		})
		if err != nil {
			return err
		}
		remoteUser = &u
		return nil
	})

	if remoteErr == nil && remoteUser != nil {
		return Result[*inventory.User]{Value: remoteUser, Source: SourceRemote}, nil
	}
	if remoteErr != nil && !errors.Is(remoteErr, common.ErrNoRemote) {
		c.log.Warn(ctx, "falling back to cached staff user", "error", remoteErr)
	}

	user, err := c.inv.StaffUser(ctx)
	if err != nil {
		return Result[*inventory.User]{Source: SourceLocal, RemoteErr: remoteErr}, err
	}
	return Result[*inventory.User]{Value: user, Source: SourceLocal, RemoteErr: remoteErr}, nil
}

// CreateProduct writes a product through the pipeline: remote insert first
// (plus its stock-level row and an audit entry, both best effort), then the
// unconditional local upsert. When the remote insert succeeded the local
// record is born synced under the returned id.
func (c *Coordinator) CreateProduct(ctx context.Context, in inventory.ProductInput) (Result[inventory.Product], error) {
	remoteErr := c.remoteErrOr(func() error {
		row := remote.Row{"name": in.Name, "sku": in.SKU}
		if in.CategoryID != "" {
			row["category_id"] = in.CategoryID
		}
		if in.SupplierID != "" {
			row["supplier_id"] = in.SupplierID
		}
		if in.UnitPrice != nil {
			row["unit_price"] = *in.UnitPrice
		}
		if in.ReorderThreshold != nil {
			row["reorder_threshold"] = *in.ReorderThreshold
		}
		if in.ReorderQuantity != nil {
			row["reorder_quantity"] = *in.ReorderQuantity
		}

		stored, err := c.remote.Insert(ctx, inventory.TableProducts, row, "id")
		if err != nil {
			return err
		}
		in.ID = stringAt(stored, "id")

		initial := 0
		if in.CurrentQuantity != nil {
			initial = *in.CurrentQuantity
		}
		if _, err := c.remote.Insert(ctx, "stock_levels", remote.Row{
			"product_id":       in.ID,
			"current_quantity": initial,
		}); err != nil {
			c.log.Warn(ctx, "could not create stock level row", "product", in.ID, "error", err)
		}

		c.audit(ctx, "create_product", inventory.TableProducts, in.ID, remote.Row{
			"name": in.Name, "sku": in.SKU,
		})
		return nil
	})

	if remoteErr != nil && !errors.Is(remoteErr, common.ErrNoRemote) {
		c.log.Warn(ctx, "remote product insert failed, keeping local copy", "error", remoteErr)
	}

	product, err := c.inv.UpsertProduct(ctx, in)
	if err != nil {
		return Result[inventory.Product]{Source: SourceLocal, RemoteErr: remoteErr}, err
	}
	return Result[inventory.Product]{Value: product, Source: c.sourceFor(remoteErr), RemoteErr: remoteErr}, nil
}

// CreateSupplier mirrors CreateProduct for suppliers.
func (c *Coordinator) CreateSupplier(ctx context.Context, in inventory.SupplierInput) (Result[inventory.Supplier], error) {
	remoteErr := c.remoteErrOr(func() error {
		row := remote.Row{"name": in.Name}
		if in.ContactPhone != "" {
			row["contact_phone"] = in.ContactPhone
		}
		if in.ContactEmail != "" {
			row["contact_email"] = in.ContactEmail
		}
		if in.Address != "" {
			row["address"] = in.Address
		}

		stored, err := c.remote.Insert(ctx, inventory.TableSuppliers, row, "id")
		if err != nil {
			return err
		}
		in.ID = stringAt(stored, "id")
		return nil
	})

	if remoteErr != nil && !errors.Is(remoteErr, common.ErrNoRemote) {
		c.log.Warn(ctx, "remote supplier insert failed, keeping local copy", "error", remoteErr)
	}

	supplier, err := c.inv.UpsertSupplier(ctx, in)
	if err != nil {
		return Result[inventory.Supplier]{Source: SourceLocal, RemoteErr: remoteErr}, err
	}
	return Result[inventory.Supplier]{Value: supplier, Source: c.sourceFor(remoteErr), RemoteErr: remoteErr}, nil
}

// StockOutcome is the answer to a recorded movement: the transaction view and
// the stock level after it, remote-authoritative when available.
type StockOutcome struct {
	Transaction inventory.StockTransaction
	NewStock    int
}

// RecordStockTransaction runs a stock movement through the pipeline:
//
//  1. the remote atomic procedure is attempted first; on success its
//     transaction id and new stock level are authoritative;
//  2. the movement is applied locally regardless, so the cache stays
//     consistent even while offline;
//  3. the winning stock level is pinned on the local product record.
func (c *Coordinator) RecordStockTransaction(ctx context.Context, in inventory.StockTransactionInput) (Result[StockOutcome], error) {
	zero := Result[StockOutcome]{Source: SourceLocal}
	if err := validateTransaction(in); err != nil {
		return zero, err
	}

	remoteStock := -1
	remoteErr := c.remoteErrOr(func() error {
		res, err := c.remote.RecordStockTransaction(ctx, remote.TransactionRequest{
			ProductID: in.ProductID,
			Type:      in.Type,
			Quantity:  in.Quantity,
			Reason:    in.Reason,
			LoggedBy:  in.LoggedBy,
		})
		if err != nil {
			return err
		}
		in.ID = res.TransactionID
		remoteStock = res.NewStock
		return nil
	})

	if remoteErr != nil && !errors.Is(remoteErr, common.ErrNoRemote) {
		c.log.Warn(ctx, "remote stock procedure failed, applying locally", "product", in.ProductID, "error", remoteErr)
	}

	transaction, localStock, err := c.inv.AddStockTransaction(ctx, in)
	if err != nil {
		return Result[StockOutcome]{Source: SourceLocal, RemoteErr: remoteErr}, err
	}

	newStock := localStock
	if remoteStock >= 0 {
		newStock = remoteStock
	}
	if err := c.inv.SetStockLevel(ctx, in.ProductID, newStock); err != nil {
		return Result[StockOutcome]{Source: SourceLocal, RemoteErr: remoteErr}, err
	}

	return Result[StockOutcome]{
		Value:     StockOutcome{Transaction: transaction, NewStock: newStock},
		Source:    c.sourceFor(remoteErr),
		RemoteErr: remoteErr,
	}, nil
}

// RefreshAll re-pulls every collection. Local failures abort; remote
// failures are already absorbed by the individual refreshers.
func (c *Coordinator) RefreshAll(ctx context.Context) error {
	var errs []error
	if _, err := c.RefreshProducts(ctx); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.RefreshCategories(ctx); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.RefreshSuppliers(ctx); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.RefreshStockTransactions(ctx); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.StaffUser(ctx); err != nil && !errors.Is(err, common.ErrNotFound) {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Watch subscribes to change cues for a table. Without a notifier it returns
// a no-op teardown; the caller keeps working from the cache.
func (c *Coordinator) Watch(ctx context.Context, table string, onChange func()) (remote.Unsubscribe, error) {
	if c.notifier == nil {
		return func() {}, nil
	}
	return c.notifier.Subscribe(ctx, table, onChange)
}

// remoteErrOr runs the remote stage and returns its failure, or ErrNoRemote
// in offline mode. A nil result means the remote path fully succeeded.
func (c *Coordinator) remoteErrOr(stage func() error) error {
	if c.remote == nil {
		return common.ErrNoRemote
	}
	return stage()
}

func (c *Coordinator) sourceFor(remoteErr error) Source {
	if remoteErr == nil {
		return SourceRemote
	}
	return SourceLocal
}

// finishRefresh answers a refresher from the local view, tagging the result
// with whether the remote stage got its data in first.
func finishRefresh[T any](ctx context.Context, c *Coordinator, remoteErr error, read func(context.Context) ([]T, error)) (Result[[]T], error) {
	if remoteErr != nil && !errors.Is(remoteErr, common.ErrNoRemote) {
		c.log.Warn(ctx, "remote refresh failed, serving cached view", "error", remoteErr)
	}
	values, err := read(ctx)
	if err != nil {
		return Result[[]T]{Source: SourceLocal, RemoteErr: remoteErr}, err
	}
	return Result[[]T]{Value: values, Source: c.sourceFor(remoteErr), RemoteErr: remoteErr}, nil
}

func validateTransaction(in inventory.StockTransactionInput) error {
	if in.ProductID == "" {
		return ErrMissingProduct
	}
	if in.Quantity <= 0 {
		return ErrInvalidQuantity
	}
	switch in.Type {
	case inventory.TypeIn, inventory.TypeOut, inventory.TypeAdjustment:
	default:
		return ErrInvalidType
	}
	if in.LoggedBy == "" {
		return ErrMissingActor
	}
	return nil
}

// audit writes a best-effort audit row; failures are logged, never surfaced.
func (c *Coordinator) audit(ctx context.Context, action, entityType, entityID string, changes remote.Row) {
	if _, err := c.remote.Insert(ctx, "audit_logs", remote.Row{
		"action":      action,
		"entity_type": entityType,
		"entity_id":   entityID,
		"changes":     changes,
	}); err != nil {
		c.log.Warn(ctx, "audit log write failed", "action", action, "error", err)
	}
}

func stringAt(row remote.Row, key string) string {
	s, _ := row[key].(string)
	return s
}
