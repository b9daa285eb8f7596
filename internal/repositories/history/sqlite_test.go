package history

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/teralogger/internal/timex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T, withLog bool) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE Files (
  Source TEXT, State INTEGER, Size INTEGER, IsFolder INTEGER,
  Creation REAL, Access REAL, Write REAL,
  SourceCRC TEXT, TargetCRC TEXT, Message TEXT,
  Marked INTEGER, Hidden INTEGER
);
`)
	require.NoError(t, err)

	if withLog {
		_, err = db.Exec(`CREATE TABLE Log (Timestamp REAL, Message TEXT);`)
		require.NoError(t, err)
	}
	return db
}

func TestFiles_ReadsAllColumns(t *testing.T) {
	db := setupDB(t, false)
	ctx := context.Background()

	_, err := db.Exec(`INSERT INTO Files VALUES
	  ('/src/a.txt', 1, 100, 0, 2460310.5, 2460310.5, 2460310.5, 'AAAA', 'AAAA', NULL, 1, 0),
	  ('/src/dir', 0, NULL, 1, NULL, NULL, NULL, NULL, NULL, 'skipped by user', 0, 1)`)
	require.NoError(t, err)

	got, err := NewSQLiteRepository(db).Files(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)

	a := got[0]
	assert.Equal(t, "/src/a.txt", a.Source)
	assert.Equal(t, sql.NullInt64{Int64: 1, Valid: true}, a.State)
	assert.Equal(t, sql.NullInt64{Int64: 100, Valid: true}, a.Size)
	assert.Equal(t, sql.NullInt64{Int64: 0, Valid: true}, a.IsFolder)
	assert.Equal(t, "2024-01-01 00:00:00", timex.Format(a.Creation))
	assert.Equal(t, "2024-01-01 00:00:00", timex.Format(a.Access))
	assert.Equal(t, "2024-01-01 00:00:00", timex.Format(a.Write))
	assert.Equal(t, "AAAA", a.SourceCRC)
	assert.Equal(t, "AAAA", a.TargetCRC)
	assert.Equal(t, "", a.Message)
	assert.Equal(t, int64(1), a.Marked.Int64)
	assert.Equal(t, int64(0), a.Hidden.Int64)

	d := got[1]
	assert.False(t, d.Size.Valid)
	assert.False(t, d.Creation.Valid)
	assert.Equal(t, "skipped by user", d.Message)
	assert.Equal(t, int64(1), d.Hidden.Int64)
}

func TestHasLog(t *testing.T) {
	ctx := context.Background()

	ok, err := NewSQLiteRepository(setupDB(t, false)).HasLog(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = NewSQLiteRepository(setupDB(t, true)).HasLog(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLogEntries(t *testing.T) {
	db := setupDB(t, true)
	ctx := context.Background()

	_, err := db.Exec(`INSERT INTO Log VALUES (2460310.5, 'Job started'), (NULL, 'no time')`)
	require.NoError(t, err)

	got, err := NewSQLiteRepository(db).LogEntries(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "2024-01-01 00:00:00", timex.Format(got[0].Timestamp))
	assert.Equal(t, "Job started", got[0].Message)
	assert.False(t, got[1].Timestamp.Valid)
}

func TestLogEntries_MissingTableIsError(t *testing.T) {
	_, err := NewSQLiteRepository(setupDB(t, false)).LogEntries(context.Background())
	require.Error(t, err)
}

func TestFiles_QueryShape(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	q := `^SELECT Source, State, Size, IsFolder, Creation, Access, Write, SourceCRC, TargetCRC, Message, Marked, Hidden FROM Files$`
	mock.ExpectQuery(q).WillReturnError(errors.New("no such column: Hidden"))

	_, err = NewSQLiteRepository(db).Files(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no such column")
	require.NoError(t, mock.ExpectationsWereMet())
}
