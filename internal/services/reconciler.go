package services

import (
	"path/filepath"
	"strconv"

	"github.com/dmitrijs2005/teralogger/internal/codes"
	"github.com/dmitrijs2005/teralogger/internal/models"
	"github.com/dmitrijs2005/teralogger/internal/timex"
)

// JoinKey is the job index key for a history database: its base file name,
// extension included.
func JoinKey(dbPath string) string {
	return filepath.Base(dbPath)
}

// Reconcile turns the file rows of one history database into report rows.
// The job is looked up by JoinKey(dbPath); on a miss the five job-derived
// columns hold models.NotAvailable. displayPath fills Job File Path.
// The second result reports whether the job was found.
func Reconcile(index models.JobIndex, dbPath, displayPath string, records []models.FileTransferRecord) ([]models.ReportRow, bool) {
	job, ok := index.Lookup(JoinKey(dbPath))

	start, end, op, src, dst := models.NotAvailable, models.NotAvailable, models.NotAvailable, models.NotAvailable, models.NotAvailable
	if ok {
		start = timex.Format(job.Started)
		end = timex.Format(job.Finished)
		op = codes.Label(job.Operation, codes.Operation)
		src = job.Source
		dst = job.Target
	}

	rows := make([]models.ReportRow, 0, len(records))
	for _, r := range records {
		rows = append(rows, models.ReportRow{
			JobStart:          start,
			JobEnd:            end,
			JobType:           op,
			SourceFilePath:    r.Source,
			SourceFolder:      src,
			DestinationFolder: dst,
			Status:            codes.Label(r.State, codes.State),
			FileSize:          size(r),
			IsFolder:          codes.Label(r.IsFolder, codes.IsFolder),
			FileCreation:      timex.Format(r.Creation),
			FileAccess:        timex.Format(r.Access),
			FileWrite:         timex.Format(r.Write),
			SourceCRC:         r.SourceCRC,
			TargetCRC:         r.TargetCRC,
			Message:           r.Message,
			Marked:            codes.Label(r.Marked, codes.Marked),
			Hidden:            codes.Label(r.Hidden, codes.Hidden),
			JobFilePath:       displayPath,
		})
	}
	return rows, ok
}

func size(r models.FileTransferRecord) string {
	if !r.Size.Valid {
		return ""
	}
	return strconv.FormatInt(r.Size.Int64, 10)
}

// ReconcileLogs turns Log rows into event-log report rows tagged with the
// database they came from.
func ReconcileLogs(displayPath string, logs []models.LogEntry) []models.LogRow {
	rows := make([]models.LogRow, 0, len(logs))
	for _, l := range logs {
		rows = append(rows, models.LogRow{
			Timestamp: timex.Format(l.Timestamp),
			Message:   l.Message,
			Source:    displayPath,
		})
	}
	return rows
}
