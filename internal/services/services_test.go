package services

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/teralogger/internal/repositories/repomanager"
	"github.com/dmitrijs2005/teralogger/internal/sqlitex"
	"github.com/stretchr/testify/require"
)

var (
	jan1      = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	jan1Plus5 = jan1.Add(5 * time.Minute)
)

// --- helpers ---

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return db, mock
}

// mockOpener hands out db in place of a real checked connection.
func mockOpener(db *sql.DB) sqlitex.Opener {
	return func(context.Context, string) (*sql.DB, error) { return db, nil }
}

func repos() repomanager.RepositoryManager {
	return repomanager.NewSQLiteRepositoryManager()
}

func touch(t *testing.T, path string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, nil, 0o600))
	return path
}
