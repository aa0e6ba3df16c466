package weather

import (
	"errors"
	"fmt"
)

// FailureKind is the closed set of provider failure categories the core
// understands. Anything the adapter cannot classify maps to
// FailureUnavailable.
type FailureKind int

const (
	// FailureNotFound means the provider does not know the location.
	FailureNotFound FailureKind = iota
	// FailureUnavailable covers network errors, timeouts and 5xx responses.
	FailureUnavailable
	// FailureRateLimited covers 429-class responses.
	FailureRateLimited
)

func (k FailureKind) String() string {
	switch k {
	case FailureNotFound:
		return "not_found"
	case FailureUnavailable:
		return "provider_unavailable"
	case FailureRateLimited:
		return "rate_limited"
	default:
		return "unknown"
	}
}

// Failure is a typed provider error. The underlying cause is retained for
// logs but must never be shown to the user verbatim.
type Failure struct {
	Kind  FailureKind
	Op    string // e.g. "current", "forecast", "air_quality"
	Cause error
}

func (f *Failure) Error() string {
	if f.Cause != nil {
		return fmt.Sprintf("weather %s: %s: %v", f.Op, f.Kind, f.Cause)
	}
	return fmt.Sprintf("weather %s: %s", f.Op, f.Kind)
}

func (f *Failure) Unwrap() error {
	return f.Cause
}

// NewFailure builds a typed failure for the given operation.
func NewFailure(kind FailureKind, op string, cause error) *Failure {
	return &Failure{Kind: kind, Op: op, Cause: cause}
}

// KindOf extracts the failure kind from an error chain. Unclassified errors
// (including context timeouts) report as FailureUnavailable.
func KindOf(err error) FailureKind {
	var f *Failure
	if errors.As(err, &f) {
		return f.Kind
	}
	return FailureUnavailable
}

// IsKind reports whether err carries the given failure kind.
func IsKind(err error, kind FailureKind) bool {
	var f *Failure
	return errors.As(err, &f) && f.Kind == kind
}
