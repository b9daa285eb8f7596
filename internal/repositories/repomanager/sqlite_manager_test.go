package repomanager

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/teralogger/internal/repositories/history"
	"github.com/dmitrijs2005/teralogger/internal/repositories/jobs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteRepositoryManager_VendsSQLiteRepositories(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	m := NewSQLiteRepositoryManager()

	assert.IsType(t, &jobs.SQLiteRepository{}, m.Jobs(db))
	assert.IsType(t, &history.SQLiteRepository{}, m.History(db))
}
