// Package history reads a single TeraCopy per-job history database.
//
// # Overview
//
// Each job writes History/<name>.db with a `Files` table (one row per file
// the job touched) and, in newer TeraCopy builds only, a `Log` table of
// timestamped messages. The two tables are read by independent methods so a
// failure on one never hides the other.
//
// Key Types
//
//   - type Repository        — contract used by the extractor
//   - type SQLiteRepository  — implementation over a read-only dbx.Querier
package history
