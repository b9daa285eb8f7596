// Package timex converts the time representations found in TeraCopy
// databases into calendar time and provides a Duration type that decodes
// from human-readable config values.
//
// TeraCopy stores timestamps as Julian day numbers (REAL). Conversion follows
// SQLite's own datetime(julianday(x)) semantics: the value is rounded to the
// nearest millisecond, rendered in UTC with second precision, and anything
// outside years 0000-9999 or unparseable becomes NULL rather than an error.
package timex

import (
	"database/sql"
	"math"
	"strconv"
	"strings"
	"time"
)

// Layout is the rendering used in every report column.
const Layout = "2006-01-02 15:04:05"

const (
	msPerDay = 86400000
	// Julian day of 1970-01-01T00:00:00Z, in milliseconds.
	unixEpochJDMs = 210866760000000
	// Upper bound SQLite accepts: 9999-12-31 23:59:59.999.
	maxJDMs = 464269060799999
)

// JulianToTime converts a Julian day number to UTC time. ok is false when
// the value is outside the range SQLite can render.
func JulianToTime(jd float64) (t time.Time, ok bool) {
	if math.IsNaN(jd) || math.IsInf(jd, 0) {
		return time.Time{}, false
	}
	ms := int64(jd*msPerDay + 0.5)
	if ms < 0 || ms > maxJDMs {
		return time.Time{}, false
	}
	return time.UnixMilli(ms - unixEpochJDMs).UTC(), true
}

// TimeToJulian is the inverse of JulianToTime.
func TimeToJulian(t time.Time) float64 {
	return float64(t.UTC().UnixMilli()+unixEpochJDMs) / msPerDay
}

// FromJulianValue converts a raw column value as returned by database/sql
// into a NullTime. REAL and INTEGER values are Julian days; TEXT may be a
// Julian number or an ISO-8601 date/time.
func FromJulianValue(v any) sql.NullTime {
	switch x := v.(type) {
	case nil:
		return sql.NullTime{}
	case float64:
		return nullTime(JulianToTime(x))
	case int64:
		return nullTime(JulianToTime(float64(x)))
	case []byte:
		return fromText(string(x))
	case string:
		return fromText(x)
	case time.Time:
		return sql.NullTime{Time: x.UTC(), Valid: true}
	default:
		return sql.NullTime{}
	}
}

var textLayouts = []string{
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02T15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02",
}

func fromText(s string) sql.NullTime {
	s = strings.TrimSpace(s)
	if s == "" {
		return sql.NullTime{}
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return nullTime(JulianToTime(f))
	}
	for _, layout := range textLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return sql.NullTime{Time: t.UTC(), Valid: true}
		}
	}
	return sql.NullTime{}
}

func nullTime(t time.Time, ok bool) sql.NullTime {
	return sql.NullTime{Time: t, Valid: ok}
}

// Format renders t with Layout, or "" when t is NULL.
func Format(t sql.NullTime) string {
	if !t.Valid {
		return ""
	}
	return t.Time.UTC().Format(Layout)
}
