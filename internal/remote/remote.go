// Package remote defines the boundary with the remote inventory backend:
// a narrow table query/write surface, the stock-transaction procedure and a
// change-notification hook. The local cache consumes only these interfaces;
// concrete transports live in subpackages.
package remote

import "context"

// Row is one remote row, keyed by column name.
type Row = map[string]any

// Filter is an equality predicate on one column.
type Filter struct {
	Column string
	Value  any
}

// Query describes a select over one remote table. Build it by chaining:
//
//	remote.From("products").Select("id", "name").Eq("sku", sku).Order("name").Limit(10)
type Query struct {
	Table      string
	Columns    []string
	Filters    []Filter
	OrderBy    string
	Descending bool
	RowLimit   int
}

// From starts a query against the named table.
func From(table string) Query {
	return Query{Table: table}
}

// Select restricts the returned columns; without it all columns are returned.
func (q Query) Select(columns ...string) Query {
	q.Columns = append(q.Columns[:len(q.Columns):len(q.Columns)], columns...)
	return q
}

// Eq adds an equality filter. Multiple filters are conjoined.
func (q Query) Eq(column string, value any) Query {
	q.Filters = append(q.Filters[:len(q.Filters):len(q.Filters)], Filter{Column: column, Value: value})
	return q
}

// Order sorts ascending by the given column.
func (q Query) Order(column string) Query {
	q.OrderBy = column
	q.Descending = false
	return q
}

// OrderDesc sorts descending by the given column.
func (q Query) OrderDesc(column string) Query {
	q.OrderBy = column
	q.Descending = true
	return q
}

// Limit caps the number of returned rows; 0 means no limit.
func (q Query) Limit(n int) Query {
	q.RowLimit = n
	return q
}

// TransactionRequest is the input to the remote stock procedure.
type TransactionRequest struct {
	ProductID string
	Type      string
	Quantity  int
	Reason    string
	LoggedBy  string
}

// TransactionResult is what the remote stock procedure returns: the id of the
// recorded transaction and the authoritative post-movement stock level.
type TransactionResult struct {
	TransactionID string
	NewStock      int
}

// Client is the remote table/RPC surface the cache reconciles against.
type Client interface {
	// Select runs a query and returns the matching rows.
	Select(ctx context.Context, q Query) ([]Row, error)

	// Insert persists one row and returns it as stored. When returning
	// columns are given only those come back; otherwise all columns do.
	Insert(ctx context.Context, table string, row Row, returning ...string) (Row, error)

	// Update applies patch to every row matching the filter.
	Update(ctx context.Context, table string, patch Row, where Filter) error

	// RecordStockTransaction invokes the backend's atomic stock procedure,
	// the authoritative counterpart of the local fallback arithmetic.
	RecordStockTransaction(ctx context.Context, req TransactionRequest) (TransactionResult, error)
}

// Unsubscribe tears down one subscription. Safe to call once.
type Unsubscribe func()

// Notifier delivers change cues for remote tables. A notification carries no
// payload beyond "something changed"; subscribers are expected to re-read
// through the regular query path, never to patch state from the event.
type Notifier interface {
	Subscribe(ctx context.Context, table string, onChange func()) (Unsubscribe, error)
}
