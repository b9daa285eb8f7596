package app

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Summary is what a run reports back to the examiner.
type Summary struct {
	HistoryFiles int
	// Processed databases were read completely; Partial ones opened but lost
	// a table; Skipped ones could not be opened or failed integrity.
	Processed int
	Partial   int
	Skipped   int
	// Staged counts databases read from a copy with their -wal or -journal
	// applied.
	Staged int

	FileEntries    int
	LogEntries     int
	MatchedJobs    int
	UnmatchedFiles int

	InputsUnchanged bool
	Archived        int

	RunDir         string
	HistoryReport  string
	EventLogReport string
	RunLog         string
	Manifest       string

	Elapsed time.Duration
}

// isTerminal is a seam for tests.
var isTerminal = func(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
)

type line struct {
	label string
	value string
	warn  bool
}

func (s *Summary) lines() []line {
	none := func(p string) string {
		if p == "" {
			return "(not written)"
		}
		return p
	}

	verified := "yes"
	if !s.InputsUnchanged {
		verified = "NO, see manifest"
	}

	out := []line{
		{label: "History databases", value: fmt.Sprint(s.HistoryFiles)},
		{label: "Processed", value: fmt.Sprint(s.Processed)},
		{label: "Partially read", value: fmt.Sprint(s.Partial), warn: s.Partial > 0},
		{label: "Skipped", value: fmt.Sprint(s.Skipped), warn: s.Skipped > 0},
		{label: "Read with sidecar", value: fmt.Sprint(s.Staged)},
		{label: "File entries", value: fmt.Sprint(s.FileEntries)},
		{label: "Log entries", value: fmt.Sprint(s.LogEntries)},
		{label: "Matched jobs", value: fmt.Sprint(s.MatchedJobs)},
		{label: "Unmatched databases", value: fmt.Sprint(s.UnmatchedFiles), warn: s.UnmatchedFiles > 0},
		{label: "Inputs unchanged", value: verified, warn: !s.InputsUnchanged},
		{label: "Output directory", value: s.RunDir},
		{label: "History report", value: none(s.HistoryReport), warn: s.HistoryReport == ""},
		{label: "Event log report", value: none(s.EventLogReport)},
		{label: "Run log", value: none(s.RunLog)},
		{label: "Manifest", value: none(s.Manifest), warn: s.Manifest == ""},
	}
	if s.Archived > 0 {
		out = append(out, line{label: "Archived objects", value: fmt.Sprint(s.Archived)})
	}
	return append(out, line{label: "Elapsed", value: s.Elapsed.Round(time.Millisecond).String()})
}

// Print writes the summary to w, styled when w is a terminal.
func (s *Summary) Print(w io.Writer) {
	styled := isTerminal(w)

	width := 0
	for _, l := range s.lines() {
		width = max(width, len(l.label))
	}

	var b strings.Builder
	title := "TeraLogger summary"
	if styled {
		title = titleStyle.Render(title)
	}
	b.WriteString(title + "\n")

	for _, l := range s.lines() {
		label := fmt.Sprintf("  %-*s", width+1, l.label+":")
		value := l.value
		if styled {
			label = labelStyle.Render(label)
			if l.warn {
				value = warnStyle.Render(value)
			} else {
				value = okStyle.Render(value)
			}
		}
		b.WriteString(label + " " + value + "\n")
	}

	fmt.Fprint(w, b.String())
}
