// Package services implements the extraction pipeline on top of the
// repositories: loading the job index, pulling rows out of one history
// database, and reconciling those rows into report lines.
//
// Every database is opened through a sqlitex.Opener, so the read-only and
// integrity guarantees hold for each call, and each connection is closed
// before the call returns.
//
// Key Types
//
//   - type JobIndexLoader  — reads main.db into a models.JobIndex
//   - type Extractor       — reads Files and Log from one history database
//   - func Reconcile       — joins file rows with their job by file name
package services
