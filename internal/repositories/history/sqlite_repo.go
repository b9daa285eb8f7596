package history

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/dmitrijs2005/teralogger/internal/dbx"
	"github.com/dmitrijs2005/teralogger/internal/models"
	"github.com/dmitrijs2005/teralogger/internal/timex"
)

type SQLiteRepository struct {
	db dbx.Querier
	sq sq.StatementBuilderType
}

func NewSQLiteRepository(db dbx.Querier) *SQLiteRepository {
	return &SQLiteRepository{db: db, sq: sq.StatementBuilder}
}

func (r *SQLiteRepository) Files(ctx context.Context) ([]models.FileTransferRecord, error) {

	query, args, err := r.sq.
		Select("Source", "State", "Size", "IsFolder", "Creation", "Access", "Write",
			"SourceCRC", "TargetCRC", "Message", "Marked", "Hidden").
		From(FilesTable).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build files query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error selecting files: %w", err)
	}
	defer rows.Close()

	var result []models.FileTransferRecord

	for rows.Next() {
		var (
			source, state, size, isFolder any
			creation, access, write       any
			sourceCRC, targetCRC, message any
			marked, hidden                any
		)
		err := rows.Scan(&source, &state, &size, &isFolder, &creation, &access, &write,
			&sourceCRC, &targetCRC, &message, &marked, &hidden)
		if err != nil {
			return nil, fmt.Errorf("error scanning file: %w", err)
		}
		result = append(result, models.FileTransferRecord{
			Source:    dbx.Text(source),
			State:     dbx.Int(state),
			Size:      dbx.Int(size),
			IsFolder:  dbx.Int(isFolder),
			Creation:  timex.FromJulianValue(creation),
			Access:    timex.FromJulianValue(access),
			Write:     timex.FromJulianValue(write),
			SourceCRC: dbx.Text(sourceCRC),
			TargetCRC: dbx.Text(targetCRC),
			Message:   dbx.Text(message),
			Marked:    dbx.Int(marked),
			Hidden:    dbx.Int(hidden),
		})
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *SQLiteRepository) HasLog(ctx context.Context) (bool, error) {
	return dbx.TableExists(ctx, r.db, LogTable)
}

func (r *SQLiteRepository) LogEntries(ctx context.Context) ([]models.LogEntry, error) {

	query, args, err := r.sq.Select("Timestamp", "Message").From(LogTable).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build log query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error selecting log: %w", err)
	}
	defer rows.Close()

	var result []models.LogEntry

	for rows.Next() {
		var ts, message any
		if err := rows.Scan(&ts, &message); err != nil {
			return nil, fmt.Errorf("error scanning log entry: %w", err)
		}
		result = append(result, models.LogEntry{
			Timestamp: timex.FromJulianValue(ts),
			Message:   dbx.Text(message),
		})
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}
