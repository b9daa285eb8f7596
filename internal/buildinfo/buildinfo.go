// Package buildinfo holds version data injected at link time:
//
//	go build -ldflags "-X github.com/dmitrijs2005/teralogger/internal/buildinfo.buildVersion=v1.2.0"
package buildinfo

import (
	"fmt"
	"io"
)

const notAvailable = "N/A"

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func value(s string) string {
	if s == "" {
		return notAvailable
	}
	return s
}

// Version returns the injected version or "N/A".
func Version() string {
	return value(buildVersion)
}

// PrintBuildData writes the banner shown at startup.
func PrintBuildData(w io.Writer) {
	fmt.Fprintf(w, "Build version: %s\n", value(buildVersion))
	fmt.Fprintf(w, "Build date: %s\n", value(buildDate))
	fmt.Fprintf(w, "Build commit: %s\n", value(buildCommit))
}
