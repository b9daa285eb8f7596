// Package common defines the error taxonomy shared by every stage of the
// extraction pipeline. Callers should use errors.Is (or ReasonOf) to match
// these values; producers wrap them with fmt.Errorf("...: %w", ...).
package common

import "errors"

var (
	// ErrOpen: the database file is missing, unreadable, or not a database.
	ErrOpen = errors.New("cannot open database")

	// ErrCorrupt: PRAGMA integrity_check did not report "ok", or failed.
	ErrCorrupt = errors.New("database failed integrity check")

	// ErrQuery: a single table query failed on an otherwise readable database.
	ErrQuery = errors.New("query failed")

	// ErrWrite: an output file (report, manifest, archive object) was not written.
	ErrWrite = errors.New("write failed")

	// ErrPrecondition: input/output roots are unusable. The only fatal error.
	ErrPrecondition = errors.New("precondition failed")

	// ErrNotFound: an optional input is absent.
	ErrNotFound = errors.New("not found")
)
