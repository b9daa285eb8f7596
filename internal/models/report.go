package models

// NotAvailable fills the job-derived columns of a ReportRow whose history
// database has no entry in the job index. It is never empty, so "no matching
// job" stays distinct from "job field was blank".
const NotAvailable = "Not Available"

// ReportRow is one reconciled, translated line of the history report.
// Field order matches the report header.
type ReportRow struct {
	JobStart          string
	JobEnd            string
	JobType           string
	SourceFilePath    string
	SourceFolder      string
	DestinationFolder string
	Status            string
	FileSize          string
	IsFolder          string
	FileCreation      string
	FileAccess        string
	FileWrite         string
	SourceCRC         string
	TargetCRC         string
	Message           string
	Marked            string
	Hidden            string
	JobFilePath       string
}

// Values returns the row in column order.
func (r ReportRow) Values() []string {
	return []string{
		r.JobStart, r.JobEnd, r.JobType,
		r.SourceFilePath, r.SourceFolder, r.DestinationFolder,
		r.Status, r.FileSize, r.IsFolder,
		r.FileCreation, r.FileAccess, r.FileWrite,
		r.SourceCRC, r.TargetCRC, r.Message,
		r.Marked, r.Hidden, r.JobFilePath,
	}
}

// LogRow is one line of the event-log report.
type LogRow struct {
	Timestamp string
	Message   string
	Source    string
}

func (r LogRow) Values() []string {
	return []string{r.Timestamp, r.Message, r.Source}
}
