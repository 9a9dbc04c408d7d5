// Package postgres implements the remote backend interfaces over PostgreSQL:
// plain SQL for the table surface, the record_stock_transaction function for
// atomic stock updates, and LISTEN/NOTIFY for change cues.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/sethvargo/go-retry"

	"github.com/Amrutha-Gopalakrishnan/Stock-Wise/internal/common"
	"github.com/Amrutha-Gopalakrishnan/Stock-Wise/internal/logging"
	"github.com/Amrutha-Gopalakrishnan/Stock-Wise/internal/remote"
)

// identPattern validates table and column names before they are interpolated
// into SQL. Values always travel as placeholders.
var identPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// Client implements remote.Client over a Postgres connection pool.
type Client struct {
	db  *sql.DB
	log logging.Logger
}

// New opens a pool for dsn and verifies connectivity.
func New(ctx context.Context, dsn string, log logging.Logger) (*Client, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening postgres pool: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Client{db: db, log: log}, nil
}

func (c *Client) Close() error {
	return c.db.Close()
}

// Select builds and runs the SQL equivalent of the query description.
func (c *Client) Select(ctx context.Context, q remote.Query) ([]remote.Row, error) {
	sqlText, args, err := buildSelect(q)
	if err != nil {
		return nil, err
	}

	var result []remote.Row
	err = c.withRetry(ctx, func(ctx context.Context) error {
		rows, err := c.db.QueryContext(ctx, sqlText, args...)
		if err != nil {
			return fmt.Errorf("select %s: %w", q.Table, err)
		}
		defer rows.Close()

		result, err = collectRows(rows)
		return err
	})
	return result, err
}

// Insert persists row and reads it back via RETURNING.
func (c *Client) Insert(ctx context.Context, table string, row remote.Row, returning ...string) (remote.Row, error) {
	if err := checkIdent(table); err != nil {
		return nil, err
	}
	if len(row) == 0 {
		return nil, fmt.Errorf("insert into %s: empty row", table)
	}

	columns := sortedKeys(row)
	placeholders := make([]string, 0, len(columns))
	args := make([]any, 0, len(columns))
	for i, col := range columns {
		if err := checkIdent(col); err != nil {
			return nil, err
		}
		placeholders = append(placeholders, fmt.Sprintf("$%d", i+1))
		args = append(args, row[col])
	}

	ret := "*"
	if len(returning) > 0 {
		for _, col := range returning {
			if err := checkIdent(col); err != nil {
				return nil, err
			}
		}
		ret = strings.Join(returning, ", ")
	}

	sqlText := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING %s",
		table, strings.Join(columns, ", "), strings.Join(placeholders, ", "), ret)

	var stored remote.Row
	err := c.withRetry(ctx, func(ctx context.Context) error {
		rows, err := c.db.QueryContext(ctx, sqlText, args...)
		if err != nil {
			return fmt.Errorf("insert into %s: %w", table, err)
		}
		defer rows.Close()

		collected, err := collectRows(rows)
		if err != nil {
			return err
		}
		if len(collected) == 0 {
			return fmt.Errorf("insert into %s: %w", table, common.ErrNotFound)
		}
		stored = collected[0]
		return nil
	})
	return stored, err
}

// Update applies patch to every row matching the filter.
func (c *Client) Update(ctx context.Context, table string, patch remote.Row, where remote.Filter) error {
	if err := checkIdent(table); err != nil {
		return err
	}
	if err := checkIdent(where.Column); err != nil {
		return err
	}
	if len(patch) == 0 {
		return nil
	}

	columns := sortedKeys(patch)
	assignments := make([]string, 0, len(columns))
	args := make([]any, 0, len(columns)+1)
	for i, col := range columns {
		if err := checkIdent(col); err != nil {
			return err
		}
		assignments = append(assignments, fmt.Sprintf("%s = $%d", col, i+1))
		args = append(args, patch[col])
	}
	args = append(args, where.Value)

	sqlText := fmt.Sprintf("UPDATE %s SET %s WHERE %s = $%d",
		table, strings.Join(assignments, ", "), where.Column, len(args))

	return c.withRetry(ctx, func(ctx context.Context) error {
		if _, err := c.db.ExecContext(ctx, sqlText, args...); err != nil {
			return fmt.Errorf("update %s: %w", table, err)
		}
		return nil
	})
}

// RecordStockTransaction calls the backend's atomic stock procedure.
func (c *Client) RecordStockTransaction(ctx context.Context, req remote.TransactionRequest) (remote.TransactionResult, error) {
	query := `SELECT transaction_id::text, new_stock
		FROM record_stock_transaction($1, $2, $3, $4, $5)`

	var result remote.TransactionResult
	err := c.withRetry(ctx, func(ctx context.Context) error {
		row := c.db.QueryRowContext(ctx, query,
			req.ProductID, req.Type, req.Quantity, req.Reason, req.LoggedBy)
		if err := row.Scan(&result.TransactionID, &result.NewStock); err != nil {
			return fmt.Errorf("record_stock_transaction: %w", err)
		}
		return nil
	})
	return result, err
}

// withRetry retries transient failures with a short fibonacci backoff. The
// caller falls back to the local store after this gives up; retries never
// leak into the cache layer.
func (c *Client) withRetry(ctx context.Context, op func(context.Context) error) error {
	backoff := retry.WithMaxRetries(3, retry.NewFibonacci(100*time.Millisecond))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := op(ctx)
		if err == nil {
			return nil
		}
		if isTransient(err) {
			return retry.RetryableError(err)
		}
		return err
	})
}

func isTransient(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "broken pipe") ||
		strings.Contains(msg, "i/o timeout")
}

func buildSelect(q remote.Query) (string, []any, error) {
	if err := checkIdent(q.Table); err != nil {
		return "", nil, err
	}

	cols := "*"
	if len(q.Columns) > 0 {
		for _, col := range q.Columns {
			if err := checkIdent(col); err != nil {
				return "", nil, err
			}
		}
		cols = strings.Join(q.Columns, ", ")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "SELECT %s FROM %s", cols, q.Table)

	var args []any
	for i, f := range q.Filters {
		if err := checkIdent(f.Column); err != nil {
			return "", nil, err
		}
		if i == 0 {
			b.WriteString(" WHERE ")
		} else {
			b.WriteString(" AND ")
		}
		fmt.Fprintf(&b, "%s = $%d", f.Column, i+1)
		args = append(args, f.Value)
	}

	if q.OrderBy != "" {
		if err := checkIdent(q.OrderBy); err != nil {
			return "", nil, err
		}
		fmt.Fprintf(&b, " ORDER BY %s", q.OrderBy)
		if q.Descending {
			b.WriteString(" DESC")
		}
	}

	if q.RowLimit > 0 {
		fmt.Fprintf(&b, " LIMIT %d", q.RowLimit)
	}

	return b.String(), args, nil
}

// collectRows scans every row into a map, normalizing driver types into the
// JSON-shaped values the local store works with.
func collectRows(rows *sql.Rows) ([]remote.Row, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var result []remote.Row
	for rows.Next() {
		values := make([]any, len(columns))
		targets := make([]any, len(columns))
		for i := range values {
			targets[i] = &values[i]
		}
		if err := rows.Scan(targets...); err != nil {
			return nil, err
		}

		row := make(remote.Row, len(columns))
		for i, col := range columns {
			row[col] = normalizeValue(values[i])
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

func normalizeValue(v any) any {
	switch t := v.(type) {
	case []byte:
		return string(t)
	case [16]byte:
		return uuid.UUID(t).String()
	case time.Time:
		return t.UTC().Format(time.RFC3339Nano)
	case int64:
		return float64(t)
	default:
		return t
	}
}

func checkIdent(name string) error {
	if !identPattern.MatchString(name) {
		return fmt.Errorf("%q: %w", name, common.ErrBadIdentifier)
	}
	return nil
}

func sortedKeys(row remote.Row) []string {
	keys := make([]string, 0, len(row))
	for k := range row {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
