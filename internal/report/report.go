// Package report writes the tab-separated history and event-log reports.
//
// Files are written to "<path>.partial" and renamed into place only after
// every row has been flushed and the file closed, so a failed write never
// leaves a truncated report under the final name.
package report

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/dmitrijs2005/teralogger/internal/common"
	"github.com/dmitrijs2005/teralogger/internal/models"
)

const partialSuffix = ".partial"

var (
	HistoryHeader = []string{
		"Job Start", "Job End", "Job Type",
		"Source File Path", "Source Folder", "Destination Folder",
		"Status", "File Size", "Is Folder",
		"File Creation Date", "File Access Date", "File Write Date",
		"Source CRC", "Target CRC", "Message",
		"Marked", "Hidden", "Job File Path",
	}

	LogHeader = []string{"Timestamp", "Message", "Source"}
)

// WriteHistory writes the history report. The header is written even when
// rows is empty.
func WriteHistory(path string, rows []models.ReportRow) error {
	return write(path, HistoryHeader, len(rows), func(i int) []string { return rows[i].Values() })
}

// WriteLog writes the event-log report.
func WriteLog(path string, rows []models.LogRow) error {
	return write(path, LogHeader, len(rows), func(i int) []string { return rows[i].Values() })
}

func write(path string, header []string, n int, row func(int) []string) (err error) {
	tmp := path + partialSuffix

	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", common.ErrWrite, path, err)
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(tmp)
			err = fmt.Errorf("%w: %s: %w", common.ErrWrite, path, err)
		}
	}()

	w := csv.NewWriter(f)
	w.Comma = '\t'

	if err = w.Write(header); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		if err = w.Write(row(i)); err != nil {
			return err
		}
	}
	w.Flush()
	if err = w.Error(); err != nil {
		return err
	}
	if err = f.Sync(); err != nil {
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
