// Package models defines the records read from TeraCopy databases and the
// rows written to reports.
package models

import "database/sql"

// JobRecord is one row of the job index (the `list` table of main.db).
type JobRecord struct {
	// Name is the history database file name, e.g. "9F2C...db". It is the
	// join key against History/*.db.
	Name string

	// Started and Finished are converted from Julian day numbers.
	Started  sql.NullTime
	Finished sql.NullTime

	// Operation is the raw operation code (1 Copy, 2 Move, 3 Test, 6 Delete).
	Operation sql.NullInt64

	// Source and Target are the job's root folders.
	Source string
	Target string
}

// JobIndex maps job name to its record. It is built once per run and only
// read afterwards.
type JobIndex map[string]JobRecord

// Lookup returns the job whose name equals key exactly.
func (idx JobIndex) Lookup(key string) (JobRecord, bool) {
	j, ok := idx[key]
	return j, ok
}
