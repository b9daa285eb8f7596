// Package dbx provides tiny DB abstractions shared by repositories:
// a minimal read-only interface (Querier) implemented by *sql.DB, *sql.Conn
// and *sql.Tx, a schema probe, and rendering of loosely-typed SQLite values.
package dbx

import (
	"context"
	"database/sql"
	"encoding/hex"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Querier is the subset of database/sql used by our repos. It has no Exec.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// TableExists reports whether a table with the given name is present.
func TableExists(ctx context.Context, q Querier, name string) (bool, error) {
	var n int
	err := q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?`, name).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check table %s: %w", name, err)
	}
	return n > 0, nil
}

// Int converts a column value scanned into `any` to a nullable integer.
// Integral REAL values and numeric TEXT are accepted; anything else is NULL.
func Int(v any) sql.NullInt64 {
	switch x := v.(type) {
	case int64:
		return sql.NullInt64{Int64: x, Valid: true}
	case float64:
		if x == math.Trunc(x) && x >= math.MinInt64 && x < math.MaxInt64 {
			return sql.NullInt64{Int64: int64(x), Valid: true}
		}
	case bool:
		if x {
			return sql.NullInt64{Int64: 1, Valid: true}
		}
		return sql.NullInt64{Int64: 0, Valid: true}
	case []byte:
		return Int(string(x))
	case string:
		if n, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64); err == nil {
			return sql.NullInt64{Int64: n, Valid: true}
		}
	}
	return sql.NullInt64{}
}

// Text renders a column value scanned into `any`. SQLite is dynamically
// typed, so checksum and message columns can come back as TEXT, INTEGER,
// REAL or BLOB. BLOBs that are not valid UTF-8 are rendered as upper-case hex.
func Text(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		if utf8.Valid(x) {
			return string(x)
		}
		return strings.ToUpper(hex.EncodeToString(x))
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		if x {
			return "1"
		}
		return "0"
	default:
		return fmt.Sprint(x)
	}
}
