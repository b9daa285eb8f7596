package sqlitex

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
)

// liveSuffixes are the sidecars that hold database state the main file does
// not: committed frames not yet checkpointed (-wal) or the pages needed to
// roll back an interrupted transaction (-journal).
var liveSuffixes = []string{"-wal", "-journal"}

// stagingDir is where working copies are made. Empty means os.TempDir.
var stagingDir = ""

// HasLiveSidecar reports whether a non-empty -wal or -journal sits next to
// path. Such a database is read from a staged copy so the sidecar is applied
// without touching the evidence.
func HasLiveSidecar(path string) bool {
	for _, s := range liveSuffixes {
		if fi, err := os.Stat(path + s); err == nil && fi.Mode().IsRegular() && fi.Size() > 0 {
			return true
		}
	}
	return false
}

// stagedConnector serves connections to a working copy and removes the copy
// when the owning *sql.DB is closed.
type stagedConnector struct {
	drv driver.Driver
	dsn string
	dir string
}

func (c *stagedConnector) Connect(context.Context) (driver.Conn, error) {
	return c.drv.Open(c.dsn)
}

func (c *stagedConnector) Driver() driver.Driver {
	return c.drv
}

// Close is called by (*sql.DB).Close after every connection is closed.
func (c *stagedConnector) Close() error {
	return os.RemoveAll(c.dir)
}

// openStaged copies abs and its live sidecars into a fresh directory and
// opens the copy. The -shm index is not copied; SQLite rebuilds it.
func openStaged(abs string) (*sql.DB, error) {
	dir, err := os.MkdirTemp(stagingDir, "teralogger-*")
	if err != nil {
		return nil, fmt.Errorf("staging dir: %w", err)
	}

	copyPath := filepath.Join(dir, filepath.Base(abs))
	if err := copyFile(abs, copyPath); err != nil {
		_ = os.RemoveAll(dir)
		return nil, err
	}
	for _, s := range liveSuffixes {
		if _, err := os.Stat(abs + s); err != nil {
			continue
		}
		if err := copyFile(abs+s, copyPath+s); err != nil {
			_ = os.RemoveAll(dir)
			return nil, err
		}
	}

	probe, err := sql.Open(DriverName, "")
	if err != nil {
		_ = os.RemoveAll(dir)
		return nil, err
	}
	drv := probe.Driver()
	_ = probe.Close()

	return sql.OpenDB(&stagedConnector{
		drv: drv,
		dsn: stagedURI(copyPath, runtime.GOOS),
		dir: dir,
	}), nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("stage %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("stage %s: %w", src, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return fmt.Errorf("stage %s: %w", src, err)
	}
	return out.Close()
}
