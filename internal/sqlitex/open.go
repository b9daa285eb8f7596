// Package sqlitex opens evidence databases without modifying them and gates
// every query behind SQLite's integrity check.
//
// # Guarantees
//
//   - Connections are opened with mode=ro&immutable=1 (see URI): no write,
//     no lock, no -wal/-shm/-journal file is created next to the evidence.
//   - A database with a non-empty -wal or -journal is copied, together with
//     those sidecars, to a temporary directory and read from there, so its
//     current content is extracted while the originals stay untouched.
//   - Long Windows paths are opened through their \\?\ form; callers keep
//     using the logical path.
//   - Open failures are classified as common.ErrOpen, integrity failures as
//     common.ErrCorrupt. Neither is fatal to a run.
//
// Typical Usage
//
//	err := sqlitex.WithDatabase(ctx, sqlitex.OpenChecked, path, func(ctx context.Context, q dbx.Querier) error {
//	    rows, err := q.QueryContext(ctx, "SELECT ...")
//	    ...
//	})
package sqlitex

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/dmitrijs2005/teralogger/internal/common"
	"github.com/dmitrijs2005/teralogger/internal/dbx"

	_ "modernc.org/sqlite" // pure-Go SQLite driver
)

// DriverName is the database/sql driver registered by modernc.org/sqlite.
const DriverName = "sqlite"

// Open returns a read-only handle to the database at path. The handle is
// limited to a single connection and has already read the database header,
// so a file that is not SQLite fails here rather than at the first query.
//
// When HasLiveSidecar(path) is true the handle reads a staged copy of the
// database and its sidecars instead, so uncheckpointed WAL frames are seen.
// Closing the handle removes the copy.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", common.ErrOpen, path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s: is a directory", common.ErrOpen, path)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", common.ErrOpen, path, err)
	}

	var db *sql.DB
	if HasLiveSidecar(abs) {
		db, err = openStaged(abs)
	} else {
		db, err = sql.Open(DriverName, URI(abs, runtime.GOOS))
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", common.ErrOpen, path, err)
	}
	db.SetMaxOpenConns(1)

	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sqlite_master`).Scan(&n); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %s: %w", common.ErrOpen, path, err)
	}

	return db, nil
}

// OpenChecked is Open followed by CheckIntegrity. On any failure the handle
// is closed before returning.
func OpenChecked(ctx context.Context, path string) (*sql.DB, error) {
	db, err := Open(ctx, path)
	if err != nil {
		return nil, err
	}
	if err := CheckIntegrity(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return db, nil
}

// Opener opens and integrity-checks a database. OpenChecked is the
// production implementation; tests substitute sqlmock handles.
type Opener func(ctx context.Context, path string) (*sql.DB, error)

// WithDatabase runs fn against a checked, read-only connection and closes it
// on every exit path, including panics inside fn.
func WithDatabase(ctx context.Context, open Opener, path string, fn func(ctx context.Context, q dbx.Querier) error) error {
	if open == nil {
		open = OpenChecked
	}
	db, err := open(ctx, path)
	if err != nil {
		return err
	}
	defer db.Close()

	return fn(ctx, db)
}
