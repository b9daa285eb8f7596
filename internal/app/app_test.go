package app

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/teralogger/internal/common"
	"github.com/dmitrijs2005/teralogger/internal/config"
	"github.com/dmitrijs2005/teralogger/internal/manifest"
	"github.com/dmitrijs2005/teralogger/internal/models"
	"github.com/dmitrijs2005/teralogger/internal/report"
	"github.com/dmitrijs2005/teralogger/internal/sqlitex"
	"github.com/dmitrijs2005/teralogger/internal/teracopytest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var jan1 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// --- helpers ---

func newTestApp(t *testing.T, input string) (*App, *bytes.Buffer) {
	t.Helper()
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.InputPath = input
	cfg.OutputPath = t.TempDir()

	var console bytes.Buffer
	a := NewApp(cfg, &console)
	a.now = func() time.Time { return jan1 }
	return a, &console
}

func readTSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	r := csv.NewReader(f)
	r.Comma = '\t'
	records, err := r.ReadAll()
	require.NoError(t, err)
	return records
}

// caseFolder builds a TeraCopy data folder with one matched, one unmatched,
// one corrupt and one non-database history file.
func caseFolder(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	teracopytest.WriteMain(t, root, teracopytest.Job{
		Name: "J1.db", Started: jan1, Finished: jan1.Add(5 * time.Minute),
		Operation: 1, Source: "/src", Target: "/dst",
	})
	teracopytest.WriteHistory(t, root, "J1.db", teracopytest.History{
		Files: []teracopytest.File{{Source: "/src/a.txt", State: 1, Size: 100, Marked: 1}},
	})
	teracopytest.WriteHistory(t, root, "J9.db", teracopytest.History{
		Files: []teracopytest.File{{Source: "/other/b.txt", State: 3, Message: "Access denied"}},
		Log:   []teracopytest.LogLine{{Timestamp: jan1, Message: "Job started"}},
	})
	teracopytest.WriteCorruptHistory(t, root, "bad.db")
	teracopytest.WriteGarbage(t, filepath.Join(root, teracopytest.HistoryFolder, "junk.db"))
	return root
}

func TestRun_EndToEnd(t *testing.T) {
	input := caseFolder(t)
	a, console := newTestApp(t, input)

	s, err := a.Run(context.Background())
	require.NoError(t, err)
	require.NotNil(t, s)

	assert.Equal(t, 4, s.HistoryFiles)
	assert.Equal(t, 2, s.Processed)
	assert.Equal(t, 0, s.Partial)
	assert.Equal(t, 2, s.Skipped)
	assert.Equal(t, 0, s.Staged)
	assert.Equal(t, 2, s.FileEntries)
	assert.Equal(t, 1, s.LogEntries)
	assert.Equal(t, 1, s.MatchedJobs)
	assert.Equal(t, 1, s.UnmatchedFiles)
	assert.True(t, s.InputsUnchanged)

	rows := readTSV(t, s.HistoryReport)
	require.Len(t, rows, 3)
	assert.Equal(t, report.HistoryHeader, rows[0])

	j1 := rows[1]
	assert.Equal(t, []string{"2024-01-01 00:00:00", "2024-01-01 00:05:00", "Copy", "/src/a.txt", "/src", "/dst", "OK", "100", "No"}, j1[:9])
	assert.Equal(t, "Yes", j1[15])
	assert.Equal(t, "", j1[16])
	assert.Equal(t, filepath.Join(input, "History", "J1.db"), j1[17])

	j9 := rows[2]
	for _, i := range []int{0, 1, 2, 4, 5} {
		assert.Equal(t, models.NotAvailable, j9[i])
	}
	assert.Equal(t, "Error", j9[6])
	assert.Equal(t, "Access denied", j9[14])

	logs := readTSV(t, s.EventLogReport)
	require.Len(t, logs, 2)
	assert.Equal(t, report.LogHeader, logs[0])
	assert.Equal(t, []string{"2024-01-01 00:00:00", "Job started", filepath.Join(input, "History", "J9.db")}, logs[1])

	runLog, err := os.ReadFile(s.RunLog)
	require.NoError(t, err)
	assert.Contains(t, string(runLog), "reason=corrupt")
	assert.Contains(t, string(runLog), "reason=open")
	assert.Contains(t, string(runLog), "job index processed")
	assert.Contains(t, string(runLog), "run="+filepath.Base(s.RunDir))
	assert.NotContains(t, string(runLog), "level=DEBUG")
	assert.Equal(t, console.String(), string(runLog))

	// Nothing was written next to the evidence.
	for _, name := range []string{"main.db", "History/J1.db", "History/J9.db"} {
		for _, suffix := range []string{"-wal", "-shm", "-journal"} {
			_, err := os.Stat(filepath.Join(input, name+suffix))
			assert.True(t, os.IsNotExist(err), name+suffix)
		}
	}

	data, err := os.ReadFile(s.Manifest)
	require.NoError(t, err)
	var m manifest.Manifest
	require.NoError(t, json.Unmarshal(data, &m))
	assert.True(t, m.Unchanged)
	assert.Len(t, m.Inputs, 5)
	assert.Len(t, m.Outputs, 2)
	assert.Empty(t, m.Changes)
}

func TestRun_NoLogRowsOmitsEventLog(t *testing.T) {
	input := t.TempDir()
	teracopytest.WriteHistory(t, input, "J1.db", teracopytest.History{
		Files:   []teracopytest.File{{Source: "/src/a.txt"}},
		WithLog: true,
	})
	a, _ := newTestApp(t, input)

	s, err := a.Run(context.Background())
	require.NoError(t, err)

	assert.Empty(t, s.EventLogReport)
	entries, err := os.ReadDir(s.RunDir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasPrefix(e.Name(), "TeraLogger_Teracopy_EventLog_"), e.Name())
	}

	rows := readTSV(t, s.HistoryReport)
	require.Len(t, rows, 2)
	assert.Equal(t, models.NotAvailable, rows[1][0])
}

func TestRun_LiveSidecarReadFromStagedCopy(t *testing.T) {
	input := t.TempDir()
	teracopytest.WriteMain(t, input, teracopytest.Job{Name: "J1.db", Started: jan1, Operation: 1, Source: "/src", Target: "/dst"})
	j1 := teracopytest.WriteLiveHistory(t, input, "J1.db",
		teracopytest.History{Files: []teracopytest.File{{Source: "/src/a.txt", State: 1}}},
		teracopytest.File{Source: "/src/b.txt", State: 1},
	)
	a, _ := newTestApp(t, input)
	a.config.LogLevel = "debug"

	s, err := a.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, s.Processed)
	assert.Equal(t, 1, s.Staged)
	assert.Equal(t, 2, s.FileEntries)
	assert.Equal(t, 1, s.MatchedJobs)
	assert.True(t, s.InputsUnchanged)

	rows := readTSV(t, s.HistoryReport)
	require.Len(t, rows, 3)
	assert.Equal(t, "/src/a.txt", rows[1][3])
	assert.Equal(t, "/src/b.txt", rows[2][3])

	runLog, err := os.ReadFile(s.RunLog)
	require.NoError(t, err)
	assert.Contains(t, string(runLog), "live sidecar present")
	assert.Contains(t, string(runLog), "history databases listed")
	assert.Contains(t, string(runLog), "input hashed")

	data, err := os.ReadFile(s.Manifest)
	require.NoError(t, err)
	var m manifest.Manifest
	require.NoError(t, json.Unmarshal(data, &m))
	var hashed []string
	for _, d := range m.Inputs {
		hashed = append(hashed, d.Path)
	}
	assert.Contains(t, hashed, j1+"-wal")

	_, err = os.Stat(j1 + "-shm")
	assert.True(t, os.IsNotExist(err), "no -shm next to the evidence")
}

func TestRun_TableFailureCountsAsPartial(t *testing.T) {
	input := t.TempDir()
	path := filepath.Join(input, teracopytest.HistoryFolder, "J1.db")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	db, err := sql.Open(sqlitex.DriverName, path)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE Files (Source TEXT)`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	a, _ := newTestApp(t, input)
	s, err := a.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, s.Processed)
	assert.Equal(t, 1, s.Partial)
	assert.Equal(t, 0, s.Skipped)
	assert.Equal(t, 0, s.MatchedJobs)
	assert.Equal(t, 0, s.UnmatchedFiles)

	runLog, err := os.ReadFile(s.RunLog)
	require.NoError(t, err)
	assert.Contains(t, string(runLog), "files table not read")
	assert.Contains(t, string(runLog), "reason=query")
	assert.Contains(t, string(runLog), "reason=not_found")
}

func TestRun_NilConsoleStillWritesRunLog(t *testing.T) {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.InputPath = caseFolder(t)
	cfg.OutputPath = t.TempDir()

	s, err := NewApp(cfg, nil).Run(context.Background())
	require.NoError(t, err)
	runLog, err := os.ReadFile(s.RunLog)
	require.NoError(t, err)
	assert.Contains(t, string(runLog), "run finished")
}

func TestConsoleLogger_NilConsoleDiscards(t *testing.T) {
	a := &App{}
	assert.NotPanics(t, func() {
		a.consoleLogger(slog.LevelInfo).Info(context.Background(), "dropped")
	})
}

func TestRun_EmptyInputStillWritesHeader(t *testing.T) {
	a, _ := newTestApp(t, t.TempDir())

	s, err := a.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, s.HistoryFiles)
	rows := readTSV(t, s.HistoryReport)
	require.Len(t, rows, 1)
	assert.Equal(t, report.HistoryHeader, rows[0])
}

func TestRun_TwoRunsAreDistinct(t *testing.T) {
	input := caseFolder(t)
	a, _ := newTestApp(t, input)

	first, err := a.Run(context.Background())
	require.NoError(t, err)
	second, err := a.Run(context.Background())
	require.NoError(t, err)

	assert.NotEqual(t, first.RunDir, second.RunDir)
	_, err = os.Stat(first.HistoryReport)
	assert.NoError(t, err)
	_, err = os.Stat(second.HistoryReport)
	assert.NoError(t, err)
}

func TestRun_Preconditions(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *config.Config)
	}{
		{name: "missing input", mutate: func(c *config.Config) { c.InputPath = filepath.Join(c.OutputPath, "nope") }},
		{name: "missing output", mutate: func(c *config.Config) { c.OutputPath = filepath.Join(c.InputPath, "nope") }},
		{name: "bad log level", mutate: func(c *config.Config) { c.LogLevel = "chatty" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, _ := newTestApp(t, t.TempDir())
			out := a.config.OutputPath
			tt.mutate(a.config)

			s, err := a.Run(context.Background())
			require.ErrorIs(t, err, common.ErrPrecondition)
			assert.Nil(t, s)

			entries, err := os.ReadDir(out)
			require.NoError(t, err)
			assert.Empty(t, entries)
		})
	}
}

type fakeUploader struct {
	dir  string
	keys []string
	err  error
}

func (f *fakeUploader) UploadDir(_ context.Context, dir string) ([]string, error) {
	f.dir = dir
	return f.keys, f.err
}

func withUploader(t *testing.T, up dirUploader, err error) {
	t.Helper()
	orig := newUploader
	newUploader = func(context.Context, config.ArchiveConfig) (dirUploader, error) { return up, err }
	t.Cleanup(func() { newUploader = orig })
}

func TestRun_Archive(t *testing.T) {
	up := &fakeUploader{keys: []string{"a", "b", "c"}}
	withUploader(t, up, nil)

	a, _ := newTestApp(t, caseFolder(t))
	a.config.Archive.Bucket = "evidence"

	s, err := a.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, s.RunDir, up.dir)
	assert.Equal(t, 3, s.Archived)
}

func TestRun_ArchiveFailureKeepsLocalOutput(t *testing.T) {
	up := &fakeUploader{keys: []string{"a"}, err: errors.Join(common.ErrWrite, errors.New("access denied"))}
	withUploader(t, up, nil)

	a, _ := newTestApp(t, caseFolder(t))
	a.config.Archive.Bucket = "evidence"

	s, err := a.Run(context.Background())
	require.ErrorIs(t, err, common.ErrWrite)
	require.NotNil(t, s)
	assert.Equal(t, 1, s.Archived)

	_, statErr := os.Stat(s.HistoryReport)
	assert.NoError(t, statErr)
	_, statErr = os.Stat(s.Manifest)
	assert.NoError(t, statErr)
}

func TestRun_ArchiveDisabledByDefault(t *testing.T) {
	withUploader(t, nil, errors.New("must not be called"))

	a, _ := newTestApp(t, t.TempDir())
	s, err := a.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, s.Archived)
}
