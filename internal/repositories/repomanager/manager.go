package repomanager

import (
	"github.com/dmitrijs2005/teralogger/internal/dbx"
	"github.com/dmitrijs2005/teralogger/internal/repositories/history"
	"github.com/dmitrijs2005/teralogger/internal/repositories/jobs"
)

type RepositoryManager interface {
	Jobs(db dbx.Querier) jobs.Repository
	History(db dbx.Querier) history.Repository
}
