// Package codes translates the integer codes TeraCopy stores into the labels
// used in reports. Every function is total: codes outside the known tables
// render as "Unknown (<n>)" because new TeraCopy versions add values and an
// unrecognised code must never stop an extraction.
package codes

import (
	"database/sql"
	"fmt"
)

var (
	states = map[int64]string{
		0: "Added",
		1: "OK",
		2: "Verified",
		3: "Error",
		4: "Skipped",
		5: "Deleted",
		6: "Moved",
	}

	yesNo = map[int64]string{
		0: "No",
		1: "Yes",
	}

	// Marked and Hidden leave the cell blank for 0 so set flags stand out.
	flags = map[int64]string{
		0: "",
		1: "Yes",
	}

	operations = map[int64]string{
		1: "Copy",
		2: "Move",
		3: "Test",
		6: "Delete",
	}
)

// Unknown is the placeholder for codes outside a table.
func Unknown(code int64) string {
	return fmt.Sprintf("Unknown (%d)", code)
}

func lookup(table map[int64]string, code int64) string {
	if label, ok := table[code]; ok {
		return label
	}
	return Unknown(code)
}

// State labels the per-file transfer state.
func State(code int64) string { return lookup(states, code) }

// IsFolder labels the folder flag.
func IsFolder(code int64) string { return lookup(yesNo, code) }

// Marked labels the user-marked flag.
func Marked(code int64) string { return lookup(flags, code) }

// Hidden labels the hidden flag.
func Hidden(code int64) string { return lookup(flags, code) }

// Operation labels the job operation type.
func Operation(code int64) string { return lookup(operations, code) }

// Label applies fn to a nullable column; NULL renders as "".
func Label(v sql.NullInt64, fn func(int64) string) string {
	if !v.Valid {
		return ""
	}
	return fn(v.Int64)
}
