package models

import "database/sql"

// FileTransferRecord is one row of a history database's Files table.
// Codes are kept raw; translation happens during reconciliation.
type FileTransferRecord struct {
	Source string

	State    sql.NullInt64
	Size     sql.NullInt64
	IsFolder sql.NullInt64

	Creation sql.NullTime
	Access   sql.NullTime
	Write    sql.NullTime

	SourceCRC string
	TargetCRC string
	Message   string

	Marked sql.NullInt64
	Hidden sql.NullInt64
}

// LogEntry is one row of a history database's optional Log table.
type LogEntry struct {
	Timestamp sql.NullTime
	Message   string
}
