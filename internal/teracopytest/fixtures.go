// Package teracopytest builds TeraCopy-shaped SQLite databases for tests.
//
// The schema lives in embedded goose migrations (migrations/main for the job
// index, migrations/history for per-job databases) so fixtures and the
// repositories agree on one description of the layout. A history database
// without the Log table is produced by migrating only up to version 1.
package teracopytest

import (
	"bytes"
	"context"
	"database/sql"
	"embed"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/teralogger/internal/timex"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*/*.sql
var migrations embed.FS

const (
	mainDir    = "migrations/main"
	historyDir = "migrations/history"

	// historyFilesOnly is the history schema version before the Log table.
	historyFilesOnly = 1
)

// HistoryFolder is the subfolder TeraCopy keeps per-job databases in.
const HistoryFolder = "History"

// goose configuration is package-global.
var gooseMu sync.Mutex

// Job is one row of the job index.
type Job struct {
	Name      string
	Started   time.Time
	Finished  time.Time
	Operation int64
	Source    string
	Target    string
}

// File is one row of a history database's Files table. Zero times are
// stored as NULL.
type File struct {
	Source    string
	State     int64
	Size      int64
	IsFolder  int64
	Creation  time.Time
	Access    time.Time
	Write     time.Time
	SourceCRC string
	TargetCRC string
	Message   string
	Marked    int64
	Hidden    int64
}

// LogLine is one row of the Log table.
type LogLine struct {
	Timestamp time.Time
	Message   string
}

// History describes one per-job database.
type History struct {
	Files []File
	// WithLog creates the Log table even when Log is empty.
	WithLog bool
	Log     []LogLine
}

func migrate(t testing.TB, db *sql.DB, dir string, upTo int64) {
	t.Helper()
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("sqlite3"); err != nil {
		t.Fatalf("goose dialect: %v", err)
	}

	ctx := context.Background()
	var err error
	if upTo > 0 {
		err = goose.UpToContext(ctx, db, dir, upTo)
	} else {
		err = goose.UpContext(ctx, db, dir)
	}
	if err != nil {
		t.Fatalf("goose up %s: %v", dir, err)
	}
}

func create(t testing.TB, path string) *sql.DB {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	db.SetMaxOpenConns(1)
	return db
}

func julian(ts time.Time) any {
	if ts.IsZero() {
		return nil
	}
	return timex.TimeToJulian(ts)
}

// WriteMain creates <root>/main.db holding jobs and returns its path.
func WriteMain(t testing.TB, root string, jobs ...Job) string {
	t.Helper()
	path := filepath.Join(root, "main.db")
	db := create(t, path)
	defer db.Close()

	migrate(t, db, mainDir, 0)
	for _, j := range jobs {
		_, err := db.Exec(`INSERT INTO list (Name, Started, Finished, Operation, Source, Target) VALUES (?, ?, ?, ?, ?, ?)`,
			j.Name, julian(j.Started), julian(j.Finished), j.Operation, j.Source, j.Target)
		if err != nil {
			t.Fatalf("insert job %s: %v", j.Name, err)
		}
	}
	return path
}

// WriteHistory creates <root>/History/<name> and returns its path.
func WriteHistory(t testing.TB, root, name string, h History) string {
	t.Helper()
	path := filepath.Join(root, HistoryFolder, name)
	db := create(t, path)
	defer db.Close()

	withLog := h.WithLog || len(h.Log) > 0
	if withLog {
		migrate(t, db, historyDir, 0)
	} else {
		migrate(t, db, historyDir, historyFilesOnly)
	}

	insertFiles(t, db, h.Files)
	for _, l := range h.Log {
		if _, err := db.Exec(`INSERT INTO Log (Timestamp, Message) VALUES (?, ?)`, julian(l.Timestamp), l.Message); err != nil {
			t.Fatalf("insert log: %v", err)
		}
	}
	return path
}

func insertFiles(t testing.TB, db *sql.DB, files []File) {
	t.Helper()
	for _, f := range files {
		_, err := db.Exec(`INSERT INTO Files
			(Source, State, Size, IsFolder, Creation, Access, Write, SourceCRC, TargetCRC, Message, Marked, Hidden)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			f.Source, f.State, f.Size, f.IsFolder,
			julian(f.Creation), julian(f.Access), julian(f.Write),
			f.SourceCRC, f.TargetCRC, f.Message, f.Marked, f.Hidden)
		if err != nil {
			t.Fatalf("insert file %s: %v", f.Source, err)
		}
	}
}

// WriteLiveHistory creates <root>/History/<name> as it looks when copied
// from a profile TeraCopy still has open: h is in the main file, pending
// rows are committed only to the -wal sidecar. It returns the path.
func WriteLiveHistory(t testing.TB, root, name string, h History, pending ...File) string {
	t.Helper()
	live := WriteHistory(t, t.TempDir(), name, h)

	db := create(t, live)
	defer db.Close()
	for _, pragma := range []string{`PRAGMA journal_mode=WAL`, `PRAGMA wal_autocheckpoint=0`} {
		if _, err := db.Exec(pragma); err != nil {
			t.Fatalf("%s: %v", pragma, err)
		}
	}
	insertFiles(t, db, pending)

	path := filepath.Join(root, HistoryFolder, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	for _, suffix := range []string{"", "-wal"} {
		b, err := os.ReadFile(live + suffix)
		if err != nil {
			t.Fatalf("read live%s: %v", suffix, err)
		}
		if err := os.WriteFile(path+suffix, b, 0o600); err != nil {
			t.Fatalf("copy live%s: %v", suffix, err)
		}
	}
	return path
}

// WriteGarbage writes a file with a .db name that is not a database.
func WriteGarbage(t testing.TB, path string) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, bytes.Repeat([]byte("garbage "), 1024), 0o600); err != nil {
		t.Fatalf("write garbage: %v", err)
	}
	return path
}

// WriteCorruptHistory creates a history database whose header and schema
// are intact but whose Files b-tree is destroyed, so it opens cleanly and
// then fails PRAGMA integrity_check.
func WriteCorruptHistory(t testing.TB, root, name string) string {
	t.Helper()
	path := filepath.Join(root, HistoryFolder, name)
	db := create(t, path)

	if _, err := db.Exec(`CREATE TABLE Files (Source TEXT, Pad TEXT)`); err != nil {
		t.Fatalf("create: %v", err)
	}
	pad := strings.Repeat("x", 300)
	for i := 0; i < 200; i++ {
		if _, err := db.Exec(`INSERT INTO Files VALUES ('/src/file', ?)`, pad); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}
	if err := db.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer f.Close()
	// Page 2 is the root page of Files.
	if _, err := f.WriteAt(bytes.Repeat([]byte{0xFF}, 4096), 4096); err != nil {
		t.Fatalf("corrupt: %v", err)
	}
	return path
}
