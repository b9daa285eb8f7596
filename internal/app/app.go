// Package app runs one extraction: it validates the configuration, creates
// the run directory, reads the job index and every history database in
// path order, writes the reports and the evidence manifest, and optionally
// archives the run.
//
// Only precondition failures stop a run. Unreadable databases are skipped
// and logged; report, manifest and archive failures are collected and
// returned once everything else has been attempted.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/dmitrijs2005/teralogger/internal/archive"
	"github.com/dmitrijs2005/teralogger/internal/buildinfo"
	"github.com/dmitrijs2005/teralogger/internal/common"
	"github.com/dmitrijs2005/teralogger/internal/config"
	"github.com/dmitrijs2005/teralogger/internal/filex"
	"github.com/dmitrijs2005/teralogger/internal/logging"
	"github.com/dmitrijs2005/teralogger/internal/manifest"
	"github.com/dmitrijs2005/teralogger/internal/models"
	"github.com/dmitrijs2005/teralogger/internal/report"
	"github.com/dmitrijs2005/teralogger/internal/repositories/repomanager"
	"github.com/dmitrijs2005/teralogger/internal/services"
	"github.com/dmitrijs2005/teralogger/internal/sqlitex"
)

// dirUploader is the archive surface the run needs.
type dirUploader interface {
	UploadDir(ctx context.Context, dir string) ([]string, error)
}

// newUploader is a seam for tests.
var newUploader = func(ctx context.Context, cfg config.ArchiveConfig) (dirUploader, error) {
	return archive.New(ctx, cfg)
}

type App struct {
	config  *config.Config
	console io.Writer
	loader  *services.JobIndexLoader
	extract *services.Extractor
	now     func() time.Time
}

// NewApp wires the production pipeline. Log records are mirrored to
// console, which may be nil.
func NewApp(cfg *config.Config, console io.Writer) *App {
	repos := repomanager.NewSQLiteRepositoryManager()
	return &App{
		config:  cfg,
		console: console,
		loader:  services.NewJobIndexLoader(sqlitex.OpenChecked, repos),
		extract: services.NewExtractor(sqlitex.OpenChecked, repos),
		now:     time.Now,
	}
}

// run carries the state of one Run call.
type run struct {
	app     *App
	logger  logging.Logger
	dir     filex.RunDir
	summary *Summary

	rows []models.ReportRow
	logs []models.LogRow

	writeErrs []error
}

// Run performs one extraction. A nil Summary means the run never started
// and the error wraps common.ErrPrecondition. Otherwise the returned error,
// if any, joins the write failures of the run.
func (a *App) Run(ctx context.Context) (*Summary, error) {
	start := a.now()

	if err := a.config.Validate(); err != nil {
		return nil, err
	}
	level, err := logging.ParseLevel(a.config.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrPrecondition, err)
	}

	dir, err := filex.CreateRunDir(a.config.OutputPath, start)
	if err != nil {
		return nil, err
	}

	r := &run{app: a, dir: dir, summary: &Summary{RunDir: dir.Path}}

	logger, closeLog, err := logging.NewRunLogger(a.console, dir.RunLog(), level)
	if err != nil {
		r.fail(fmt.Errorf("%w: %w", common.ErrWrite, err))
		logger, closeLog = a.consoleLogger(level), func() error { return nil }
	} else {
		r.summary.RunLog = dir.RunLog()
	}
	defer closeLog()
	r.logger = logger.With("run", dir.Name())

	r.execute(ctx)

	r.summary.Elapsed = a.now().Sub(start)
	r.logger.Info(ctx, "run finished",
		"processed", r.summary.Processed,
		"partial", r.summary.Partial,
		"skipped", r.summary.Skipped,
		"staged", r.summary.Staged,
		"file_entries", r.summary.FileEntries,
		"log_entries", r.summary.LogEntries,
		"elapsed", r.summary.Elapsed.String(),
	)

	return r.summary, errors.Join(r.writeErrs...)
}

func (a *App) consoleLogger(level slog.Level) *logging.SlogLogger {
	if a.console == nil {
		return logging.Discard()
	}
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(a.console, &slog.HandlerOptions{Level: level})))
}

func (r *run) fail(err error) {
	r.writeErrs = append(r.writeErrs, err)
}

func (r *run) execute(ctx context.Context) {
	cfg := r.app.config
	r.logger.Info(ctx, "run started",
		"version", buildinfo.Version(),
		"input", cfg.InputPath,
		"output", r.dir.Path,
	)

	historyDir := filepath.Join(cfg.InputPath, cfg.HistoryDir)
	dbs, err := filex.HistoryDatabases(historyDir)
	if err != nil {
		r.logger.Error(ctx, "cannot list history databases", "dir", historyDir, "error", err)
	}
	r.summary.HistoryFiles = len(dbs)
	r.logger.Info(ctx, "history databases found", "dir", historyDir, "count", len(dbs))
	r.logger.Debug(ctx, "history databases listed", "paths", dbs)

	inputs := evidenceFiles(cfg.InputPath, dbs)
	before, hashErrs := manifest.HashAll(inputs)
	for _, e := range hashErrs {
		r.logger.Warn(ctx, "cannot hash input", "error", e)
	}
	for _, d := range before {
		r.logger.Debug(ctx, "input hashed", "path", d.Path, "size", d.Size, "sha256", d.SHA256)
	}

	index := r.loadIndex(ctx)

	for _, db := range dbs {
		r.processHistory(ctx, index, db)
	}

	r.writeReports(ctx)
	r.writeManifest(ctx, inputs, before)
	r.archive(ctx)
}

// evidenceFiles lists main.db, the history databases and any sidecars.
func evidenceFiles(inputRoot string, dbs []string) []string {
	var out []string
	add := func(p string) {
		out = append(out, p)
		out = append(out, filex.Sidecars(p)...)
	}
	mainDB := filepath.Join(inputRoot, services.IndexFileName)
	if _, err := os.Stat(mainDB); err == nil {
		add(mainDB)
	}
	for _, db := range dbs {
		add(db)
	}
	return out
}

func (r *run) loadIndex(ctx context.Context) models.JobIndex {
	mainDB := filepath.Join(r.app.config.InputPath, services.IndexFileName)
	r.noteLiveSidecar(ctx, r.logger, mainDB)

	index, status, err := r.app.loader.Load(ctx, r.app.config.InputPath)
	switch status {
	case services.IndexAbsent:
		r.logger.Warn(ctx, "job index not found, history rows will not be matched", "file", services.IndexFileName, "reason", common.ReasonOf(err))
	case services.IndexEmpty:
		r.logger.Warn(ctx, "job index is empty", "file", services.IndexFileName)
	case services.IndexFailed:
		r.logger.Error(ctx, "job index skipped", "reason", common.ReasonOf(err), "error", err)
	default:
		r.logger.Info(ctx, "job index processed", "jobs", len(index))
	}
	return index
}

func (r *run) processHistory(ctx context.Context, index models.JobIndex, db string) {
	display := sqlitex.DisplayPath(db)
	log := r.logger.With("db", display)
	log.Debug(ctx, "history database opening", "sidecars", filex.Sidecars(db))
	r.noteLiveSidecar(ctx, log, db)

	ex, err := r.app.extract.Extract(ctx, db)
	if err != nil {
		r.summary.Skipped++
		log.Error(ctx, "history database skipped", "reason", common.ReasonOf(err), "error", err)
		return
	}

	if ex.FilesErr != nil {
		log.Error(ctx, "files table not read", "reason", common.ReasonOf(ex.FilesErr), "error", ex.FilesErr)
	}
	if ex.LogErr != nil {
		log.Error(ctx, "log table not read", "reason", common.ReasonOf(ex.LogErr), "error", ex.LogErr)
	}
	if ex.Err() != nil {
		r.summary.Partial++
	} else {
		r.summary.Processed++
	}

	rows, matched := services.Reconcile(index, db, display, ex.Files)
	logs := services.ReconcileLogs(display, ex.Logs)

	r.rows = append(r.rows, rows...)
	r.logs = append(r.logs, logs...)
	r.summary.FileEntries += len(rows)
	r.summary.LogEntries += len(logs)
	switch {
	case ex.FilesErr != nil:
		// No file rows, so there is nothing to attribute to a job.
	case matched:
		r.summary.MatchedJobs++
	default:
		r.summary.UnmatchedFiles++
	}

	log.Info(ctx, "history database processed",
		"files", len(rows),
		"log_entries", len(logs),
		"log_table", ex.LogTableFound,
		"job_matched", matched,
	)
}

// noteLiveSidecar records that db carries a -wal or -journal and will be
// read from a staged copy.
func (r *run) noteLiveSidecar(ctx context.Context, log logging.Logger, db string) {
	if !sqlitex.HasLiveSidecar(db) {
		return
	}
	r.summary.Staged++
	log.Warn(ctx, "live sidecar present, reading staged copy with sidecar applied",
		"path", sqlitex.DisplayPath(db), "sidecars", filex.Sidecars(db))
}

func (r *run) writeReports(ctx context.Context) {
	path := r.dir.HistoryReport()
	if err := report.WriteHistory(path, r.rows); err != nil {
		r.fail(err)
		r.logger.Error(ctx, "history report not written", "error", err)
	} else {
		r.summary.HistoryReport = path
		r.logger.Info(ctx, "history report written", "path", path, "rows", len(r.rows))
	}

	if len(r.logs) == 0 {
		r.logger.Info(ctx, "no event log entries, event log report not written")
		return
	}

	path = r.dir.EventLogReport()
	if err := report.WriteLog(path, r.logs); err != nil {
		r.fail(err)
		r.logger.Error(ctx, "event log report not written", "error", err)
		return
	}
	r.summary.EventLogReport = path
	r.logger.Info(ctx, "event log report written", "path", path, "rows", len(r.logs))
}

func (r *run) writeManifest(ctx context.Context, inputs []string, before []manifest.Digest) {
	// Sidecars that appeared during the run must be caught too.
	after, _ := manifest.HashAll(appendSidecars(inputs))
	changes := manifest.Compare(before, after)

	r.summary.InputsUnchanged = len(changes) == 0
	if len(changes) > 0 {
		for _, c := range changes {
			r.logger.Warn(ctx, "input changed during run", "path", c.Path, "before", c.Before, "after", c.After)
		}
	} else {
		r.logger.Info(ctx, "inputs verified unchanged", "files", len(before))
	}

	var outputs []string
	for _, p := range []string{r.summary.HistoryReport, r.summary.EventLogReport} {
		if p != "" {
			outputs = append(outputs, p)
		}
	}
	outDigests, _ := manifest.HashAll(outputs)

	m := &manifest.Manifest{
		Tool:      "teralogger",
		Version:   buildinfo.Version(),
		Created:   r.app.now().UTC(),
		InputRoot: r.app.config.InputPath,
		RunDir:    r.dir.Path,
		Inputs:    before,
		Outputs:   outDigests,
		Unchanged: len(changes) == 0,
		Changes:   changes,
	}

	path := r.dir.Manifest()
	if err := manifest.Write(path, m); err != nil {
		r.fail(err)
		r.logger.Error(ctx, "manifest not written", "error", err)
		return
	}
	r.summary.Manifest = path
	r.logger.Info(ctx, "manifest written", "path", path)
}

// appendSidecars adds sidecars that exist now for the databases in paths.
func appendSidecars(paths []string) []string {
	seen := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		seen[p] = struct{}{}
	}
	out := append([]string(nil), paths...)
	for _, p := range paths {
		for _, s := range filex.Sidecars(p) {
			if _, ok := seen[s]; !ok {
				seen[s] = struct{}{}
				out = append(out, s)
			}
		}
	}
	return out
}

func (r *run) archive(ctx context.Context) {
	cfg := r.app.config.Archive
	if !cfg.Enabled() {
		return
	}

	up, err := newUploader(ctx, cfg)
	if err != nil {
		r.fail(err)
		r.logger.Error(ctx, "archive not uploaded", "error", err)
		return
	}

	keys, err := up.UploadDir(ctx, r.dir.Path)
	r.summary.Archived = len(keys)
	if err != nil {
		r.fail(err)
		r.logger.Error(ctx, "archive upload failed", "bucket", cfg.Bucket, "uploaded", len(keys), "error", err)
		return
	}
	r.logger.Info(ctx, "run archived", "bucket", cfg.Bucket, "objects", len(keys))
}
