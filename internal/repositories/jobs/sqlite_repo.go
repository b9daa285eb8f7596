package jobs

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

func (r *SQLiteRepository) List(ctx context.Context) ([]models.JobRecord, error) {

	query, args, err := r.sq.
		Select("Name", "Started", "Finished", "Operation", "Source", "Target").
		From(Table).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build job query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error selecting jobs: %w", err)
	}
	defer rows.Close()

	var result []models.JobRecord

	for rows.Next() {
		var name, started, finished, operation, source, target any
		if err := rows.Scan(&name, &started, &finished, &operation, &source, &target); err != nil {
			return nil, fmt.Errorf("error scanning job: %w", err)
		}
		result = append(result, models.JobRecord{
			Name:      dbx.Text(name),
			Started:   timex.FromJulianValue(started),
			Finished:  timex.FromJulianValue(finished),
			Operation: dbx.Int(operation),
			Source:    dbx.Text(source),
			Target:    dbx.Text(target),
		})
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}
