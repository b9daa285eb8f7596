package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/teralogger/internal/common"
	"github.com/dmitrijs2005/teralogger/internal/dbx"
	"github.com/dmitrijs2005/teralogger/internal/models"
	"github.com/dmitrijs2005/teralogger/internal/repositories/repomanager"
	"github.com/dmitrijs2005/teralogger/internal/sqlitex"
)

// IndexFileName is the job index database at the input root.
const IndexFileName = "main.db"

// LoadStatus describes how the job index load ended.
type LoadStatus string

const (
	IndexLoaded LoadStatus = "loaded"
	IndexAbsent LoadStatus = "absent"
	IndexEmpty  LoadStatus = "empty"
	IndexFailed LoadStatus = "failed"
)

// JobIndexLoader reads the job index of a TeraCopy data folder.
type JobIndexLoader struct {
	open  sqlitex.Opener
	repos repomanager.RepositoryManager
}

// NewJobIndexLoader constructs a loader. A nil open uses sqlitex.OpenChecked.
func NewJobIndexLoader(open sqlitex.Opener, repos repomanager.RepositoryManager) *JobIndexLoader {
	if open == nil {
		open = sqlitex.OpenChecked
	}
	return &JobIndexLoader{open: open, repos: repos}
}

// Load reads <inputRoot>/main.db. The returned index is never nil: when the
// file is absent, empty or unreadable, an empty index is returned so every
// later lookup misses. IndexAbsent carries common.ErrNotFound; IndexFailed
// carries common.ErrOpen, common.ErrCorrupt or common.ErrQuery. Neither is
// fatal.
//
// When several jobs share a name the last row wins.
func (l *JobIndexLoader) Load(ctx context.Context, inputRoot string) (models.JobIndex, LoadStatus, error) {
	index := models.JobIndex{}
	path := filepath.Join(inputRoot, IndexFileName)

	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return index, IndexAbsent, fmt.Errorf("%w: %s", common.ErrNotFound, path)
	}

	var records []models.JobRecord
	err := sqlitex.WithDatabase(ctx, l.open, path, func(ctx context.Context, q dbx.Querier) error {
		var err error
		records, err = l.repos.Jobs(q).List(ctx)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", common.ErrQuery, path, err)
		}
		return nil
	})
	if err != nil {
		return index, IndexFailed, err
	}

	for _, r := range records {
		index[r.Name] = r
	}
	if len(index) == 0 {
		return index, IndexEmpty, nil
	}
	return index, IndexLoaded, nil
}
