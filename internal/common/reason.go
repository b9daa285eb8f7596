package common

import "errors"

// Reason is a short, stable classification of a per-file outcome. It is what
// gets logged and counted, so the values must not change between releases.
type Reason string

const (
	ReasonOK           Reason = "ok"
	ReasonOpen         Reason = "open"
	ReasonCorrupt      Reason = "corrupt"
	ReasonQuery        Reason = "query"
	ReasonWrite        Reason = "write"
	ReasonPrecondition Reason = "precondition"
	ReasonNotFound     Reason = "not_found"
	ReasonUnknown      Reason = "unknown"
)

// ReasonOf maps err onto the taxonomy. A nil error is ReasonOK.
func ReasonOf(err error) Reason {
	switch {
	case err == nil:
		return ReasonOK
	case errors.Is(err, ErrPrecondition):
		return ReasonPrecondition
	case errors.Is(err, ErrOpen):
		return ReasonOpen
	case errors.Is(err, ErrCorrupt):
		return ReasonCorrupt
	case errors.Is(err, ErrQuery):
		return ReasonQuery
	case errors.Is(err, ErrWrite):
		return ReasonWrite
	case errors.Is(err, ErrNotFound):
		return ReasonNotFound
	default:
		return ReasonUnknown
	}
}

// IsFatal reports whether err must stop the whole run.
func IsFatal(err error) bool {
	return errors.Is(err, ErrPrecondition)
}
