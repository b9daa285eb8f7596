// Package filex lays out the output side of a run: the run directory and the
// names of the files written into it.
package filex

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dmitrijs2005/teralogger/internal/common"
	"github.com/google/uuid"
)

// StampLayout formats the run timestamp used in every output name.
const StampLayout = "20060102-150405"

const (
	RunDirPrefix     = "TeraLogger_Out_"
	HistoryPrefix    = "TeraLogger_Teracopy_History_"
	EventLogPrefix   = "TeraLogger_Teracopy_EventLog_"
	RunLogPrefix     = "TeraLogger_RunLog_"
	ManifestPrefix   = "TeraLogger_Manifest_"
	reportExt        = ".tsv"
	runLogExt        = ".txt"
	manifestExt      = ".json"
	maxRunDirRetries = 3
)

// Stamp renders now in local time as YYYYMMDD-HHMMSS.
func Stamp(now time.Time) string {
	return now.Format(StampLayout)
}

// RunDir is a freshly created output directory and the stamp shared by the
// files written into it.
type RunDir struct {
	Path  string
	Stamp string
}

// CreateRunDir creates <root>/TeraLogger_Out_<stamp>_<id>, where id is the
// first 8 hex digits of a random UUID. An existing directory is never
// reused; on a name collision a new id is drawn. Failures wrap
// common.ErrPrecondition.
func CreateRunDir(root string, now time.Time) (RunDir, error) {
	stamp := Stamp(now)

	var lastErr error
	for i := 0; i < maxRunDirRetries; i++ {
		id := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
		p := filepath.Join(root, RunDirPrefix+stamp+"_"+id)

		err := os.Mkdir(p, 0o755)
		if err == nil {
			return RunDir{Path: p, Stamp: stamp}, nil
		}
		lastErr = err
		if !errors.Is(err, fs.ErrExist) {
			break
		}
	}

	return RunDir{}, fmt.Errorf("%w: create run directory in %s: %w", common.ErrPrecondition, root, lastErr)
}

func (d RunDir) HistoryReport() string {
	return filepath.Join(d.Path, HistoryPrefix+d.Stamp+reportExt)
}

func (d RunDir) EventLogReport() string {
	return filepath.Join(d.Path, EventLogPrefix+d.Stamp+reportExt)
}

func (d RunDir) RunLog() string {
	return filepath.Join(d.Path, RunLogPrefix+d.Stamp+runLogExt)
}

func (d RunDir) Manifest() string {
	return filepath.Join(d.Path, ManifestPrefix+d.Stamp+manifestExt)
}

// Name is the base name of the run directory.
func (d RunDir) Name() string {
	return filepath.Base(d.Path)
}
