package history

import (
	"context"

	"github.com/dmitrijs2005/teralogger/internal/models"
)

const (
	FilesTable = "Files"
	LogTable   = "Log"
)

// Repository reads the tables of one history database.
type Repository interface {
	// Files returns every row of the Files table in table order.
	Files(ctx context.Context) ([]models.FileTransferRecord, error)

	// HasLog reports whether the optional Log table exists.
	HasLog(ctx context.Context) (bool, error)

	// LogEntries returns every row of the Log table in table order. Callers
	// should check HasLog first; a missing table is an error here.
	LogEntries(ctx context.Context) ([]models.LogEntry, error)
}
