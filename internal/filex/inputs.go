package filex

import (
	"os"
	"path/filepath"
	"sort"
)

// SidecarSuffixes are the files SQLite keeps next to a database.
var SidecarSuffixes = []string{"-wal", "-shm", "-journal"}

// HistoryDatabases lists <dir>/*.db sorted by path. A missing dir yields an
// empty list.
func HistoryDatabases(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.db"))
	if err != nil {
		return nil, err
	}
	files := matches[:0]
	for _, m := range matches {
		fi, err := os.Stat(m)
		if err == nil && fi.IsDir() {
			continue
		}
		files = append(files, m)
	}
	sort.Strings(files)
	return files, nil
}

// Sidecars returns the sidecar files that currently exist next to db.
func Sidecars(db string) []string {
	var out []string
	for _, s := range SidecarSuffixes {
		if _, err := os.Lstat(db + s); err == nil {
			out = append(out, db+s)
		}
	}
	return out
}
