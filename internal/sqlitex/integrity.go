package sqlitex

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/teralogger/internal/common"
	"github.com/dmitrijs2005/teralogger/internal/dbx"
)

// maxReportedProblems bounds how many integrity_check lines end up in the
// error message; a badly damaged file can produce hundreds.
const maxReportedProblems = 3

// CheckIntegrity runs PRAGMA integrity_check. Anything other than a single
// "ok" row, and any failure to run or read the check, is common.ErrCorrupt.
func CheckIntegrity(ctx context.Context, q dbx.Querier) error {
	rows, err := q.QueryContext(ctx, `PRAGMA integrity_check`)
	if err != nil {
		return fmt.Errorf("%w: %w", common.ErrCorrupt, err)
	}
	defer rows.Close()

	var lines []string
	for rows.Next() {
		var line string
		if err := rows.Scan(&line); err != nil {
			return fmt.Errorf("%w: %w", common.ErrCorrupt, err)
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("%w: %w", common.ErrCorrupt, err)
	}

	if len(lines) == 1 && lines[0] == "ok" {
		return nil
	}
	if len(lines) == 0 {
		return fmt.Errorf("%w: integrity_check returned no result", common.ErrCorrupt)
	}

	shown := lines
	if len(shown) > maxReportedProblems {
		shown = shown[:maxReportedProblems]
	}
	msg := strings.Join(shown, "; ")
	if extra := len(lines) - len(shown); extra > 0 {
		msg += fmt.Sprintf(" (+%d more)", extra)
	}
	return fmt.Errorf("%w: %s", common.ErrCorrupt, msg)
}
