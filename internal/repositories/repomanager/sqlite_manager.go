// Package repomanager vends the SQLite-backed repositories for TeraCopy
// databases, each bound to a read-only connection supplied by the caller.
package repomanager

import (
	"github.com/dmitrijs2005/teralogger/internal/dbx"
	"github.com/dmitrijs2005/teralogger/internal/repositories/history"
	"github.com/dmitrijs2005/teralogger/internal/repositories/jobs"
)

// SQLiteRepositoryManager is the production RepositoryManager.
type SQLiteRepositoryManager struct{}

// Jobs returns a jobs.Repository bound to db.
func (m *SQLiteRepositoryManager) Jobs(db dbx.Querier) jobs.Repository {
	return jobs.NewSQLiteRepository(db)
}

// History returns a history.Repository bound to db.
func (m *SQLiteRepositoryManager) History(db dbx.Querier) history.Repository {
	return history.NewSQLiteRepository(db)
}

func NewSQLiteRepositoryManager() RepositoryManager {
	return &SQLiteRepositoryManager{}
}
