// Package jobs reads the TeraCopy job index.
//
// # Overview
//
// TeraCopy keeps one row per transfer job in the `list` table of main.db:
// the job's history database name, start/finish time (Julian days), the
// operation code and the source/target root folders. Repository exposes that
// table as []models.JobRecord; SQLiteRepository implements it over a
// read-only dbx.Querier.
//
// Typical Usage
//
//	repo := jobs.NewSQLiteRepository(db)
//	records, err := repo.List(ctx)
package jobs
