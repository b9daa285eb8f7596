package jobs

import (
	"context"

	"github.com/dmitrijs2005/teralogger/internal/models"
)

// Table is the job index table inside main.db.
const Table = "list"

// Repository reads job records from a job index database.
type Repository interface {
	// List returns every job in table order. Timestamps that cannot be
	// interpreted are returned as NULL rather than failing the query.
	List(ctx context.Context) ([]models.JobRecord, error)
}
