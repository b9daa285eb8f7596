package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/teralogger/internal/common"
	"github.com/dmitrijs2005/teralogger/internal/dbx"
	"github.com/dmitrijs2005/teralogger/internal/models"
	"github.com/dmitrijs2005/teralogger/internal/repositories/history"
	"github.com/dmitrijs2005/teralogger/internal/repositories/repomanager"
	"github.com/dmitrijs2005/teralogger/internal/sqlitex"
)

// Extraction is everything read from one history database.
type Extraction struct {
	Files []models.FileTransferRecord
	Logs  []models.LogEntry

	// LogTableFound separates "no Log table" from "empty Log table".
	LogTableFound bool

	// FilesErr and LogErr are set, wrapping common.ErrQuery, when the
	// respective table could not be read. One never prevents the other.
	FilesErr error
	LogErr   error
}

// Err joins the per-table errors.
func (e *Extraction) Err() error {
	return errors.Join(e.FilesErr, e.LogErr)
}

// Extractor reads history databases.
type Extractor struct {
	open  sqlitex.Opener
	repos repomanager.RepositoryManager
}

// NewExtractor constructs an Extractor. A nil open uses sqlitex.OpenChecked.
func NewExtractor(open sqlitex.Opener, repos repomanager.RepositoryManager) *Extractor {
	if open == nil {
		open = sqlitex.OpenChecked
	}
	return &Extractor{open: open, repos: repos}
}

// Extract opens path read-only, gates it on the integrity check and reads
// both tables. A database that cannot be opened or fails the check returns
// a common.ErrOpen or common.ErrCorrupt error and no rows; table-level
// failures are reported on the Extraction instead.
func (e *Extractor) Extract(ctx context.Context, path string) (*Extraction, error) {
	ex := &Extraction{}

	err := sqlitex.WithDatabase(ctx, e.open, path, func(ctx context.Context, q dbx.Querier) error {
		repo := e.repos.History(q)

		files, err := repo.Files(ctx)
		if err != nil {
			ex.FilesErr = fmt.Errorf("%w: %s.%s: %w", common.ErrQuery, path, history.FilesTable, err)
		} else {
			ex.Files = files
		}

		found, err := repo.HasLog(ctx)
		if err != nil {
			ex.LogErr = fmt.Errorf("%w: %s.%s: %w", common.ErrQuery, path, history.LogTable, err)
			return nil
		}
		ex.LogTableFound = found
		if !found {
			return nil
		}

		logs, err := repo.LogEntries(ctx)
		if err != nil {
			ex.LogErr = fmt.Errorf("%w: %s.%s: %w", common.ErrQuery, path, history.LogTable, err)
			return nil
		}
		ex.Logs = logs
		return nil
	})
	if err != nil {
		return nil, err
	}

	return ex, nil
}
