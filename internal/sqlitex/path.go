package sqlitex

import (
	"net/url"
	"strings"
)

const (
	longPathPrefix = `\\?\`
	longUNCPrefix  = `\\?\UNC\`
)

// ExtendedLengthPath returns the Windows extended-length form of an
// absolute path (\\?\C:\... or \\?\UNC\server\share\...), which lifts the
// MAX_PATH limit that forensic images routinely exceed. On other operating
// systems, and for relative or already-extended paths, p is returned as is.
func ExtendedLengthPath(p, goos string) string {
	if goos != "windows" {
		return p
	}
	p = strings.ReplaceAll(p, "/", `\`)
	switch {
	case strings.HasPrefix(p, longPathPrefix):
		return p
	case strings.HasPrefix(p, `\\`):
		return longUNCPrefix + p[2:]
	case len(p) >= 3 && p[1] == ':' && p[2] == '\\':
		return longPathPrefix + p
	default:
		return p
	}
}

// DisplayPath strips the extended-length prefix again so reports and logs
// show the path the examiner passed in.
func DisplayPath(p string) string {
	switch {
	case strings.HasPrefix(p, longUNCPrefix):
		return `\\` + p[len(longUNCPrefix):]
	case strings.HasPrefix(p, longPathPrefix):
		return p[len(longPathPrefix):]
	default:
		return p
	}
}

// URI builds the read-only SQLite URI filename for p.
//
// mode=ro refuses writes; immutable=1 tells SQLite the file cannot change,
// so it takes no locks and never creates or replays -wal, -shm or -journal
// sidecars. Characters with meaning in a URI are percent-encoded; on Windows
// backslashes are encoded too, as SQLite decodes %5C back to '\'.
func URI(p, goos string) string {
	q := url.Values{}
	q.Set("mode", "ro")
	q.Set("immutable", "1")
	return uri(p, goos, q.Encode())
}

// stagedURI opens a private working copy. The copy must be writable so
// SQLite can replay its -wal or roll back its -journal; query_only keeps the
// connection itself from changing anything.
func stagedURI(p, goos string) string {
	return uri(p, goos, "mode=rw&_pragma=query_only(1)")
}

func uri(p, goos, query string) string {
	p = ExtendedLengthPath(p, goos)
	r := strings.NewReplacer("%", "%25", "?", "%3F", "#", "%23")
	escaped := r.Replace(p)
	if goos == "windows" {
		escaped = strings.ReplaceAll(escaped, `\`, "%5C")
	}
	return "file:" + escaped + "?" + query
}
