// Package manifest records cryptographic hashes of the evidence databases
// before and after a run, and of every report the run produced.
//
// Each file is hashed once with SHA-256 and BLAKE2b-256 in a single pass.
// A difference between the before and after hashes of an input means the
// read-only guarantee did not hold and is reported to the examiner.
package manifest

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/dmitrijs2005/teralogger/internal/common"
	"golang.org/x/crypto/blake2b"
)

// Digest is the hash record of one file.
type Digest struct {
	Path       string `json:"path"`
	Size       int64  `json:"size"`
	SHA256     string `json:"sha256"`
	BLAKE2b256 string `json:"blake2b_256"`
}

// Change is an input whose hashes differ between two snapshots. An empty
// Before or After means the file appeared or disappeared.
type Change struct {
	Path   string `json:"path"`
	Before string `json:"before_sha256"`
	After  string `json:"after_sha256"`
}

// Manifest is the JSON document written next to the reports.
type Manifest struct {
	Tool      string    `json:"tool"`
	Version   string    `json:"version"`
	Created   time.Time `json:"created"`
	InputRoot string    `json:"input_root"`
	RunDir    string    `json:"run_dir"`
	Inputs    []Digest  `json:"inputs"`
	Outputs   []Digest  `json:"outputs"`
	// Unchanged is true when every input hashed the same after the run.
	Unchanged bool     `json:"inputs_unchanged"`
	Changes   []Change `json:"changes,omitempty"`
}

// HashFile computes the digests of path.
func HashFile(path string) (Digest, error) {
	f, err := os.Open(path)
	if err != nil {
		return Digest{}, err
	}
	defer f.Close()

	s := sha256.New()
	b, err := blake2b.New256(nil)
	if err != nil {
		return Digest{}, err
	}

	n, err := io.Copy(io.MultiWriter(s, b), f)
	if err != nil {
		return Digest{}, fmt.Errorf("hash %s: %w", path, err)
	}

	return Digest{
		Path:       path,
		Size:       n,
		SHA256:     hex.EncodeToString(s.Sum(nil)),
		BLAKE2b256: hex.EncodeToString(b.Sum(nil)),
	}, nil
}

// HashAll hashes every path. Files that cannot be read are skipped and
// their errors returned alongside the digests that succeeded.
func HashAll(paths []string) ([]Digest, []error) {
	out := make([]Digest, 0, len(paths))
	var errs []error
	for _, p := range paths {
		d, err := HashFile(p)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out = append(out, d)
	}
	return out, errs
}

// Compare returns the inputs whose SHA-256 differs between before and after,
// sorted by path.
func Compare(before, after []Digest) []Change {
	b := make(map[string]string, len(before))
	for _, d := range before {
		b[d.Path] = d.SHA256
	}
	a := make(map[string]string, len(after))
	for _, d := range after {
		a[d.Path] = d.SHA256
	}

	var changes []Change
	for p, h := range b {
		if a[p] != h {
			changes = append(changes, Change{Path: p, Before: h, After: a[p]})
		}
	}
	for p, h := range a {
		if _, ok := b[p]; !ok {
			changes = append(changes, Change{Path: p, After: h})
		}
	}
	sort.Slice(changes, func(i, j int) bool { return changes[i].Path < changes[j].Path })
	return changes
}

// Write stores m as indented JSON at path.
func Write(path string, m *Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %s: %w", common.ErrWrite, path, err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("%w: %s: %w", common.ErrWrite, path, err)
	}
	return nil
}
