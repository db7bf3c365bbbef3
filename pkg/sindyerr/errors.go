// Package sindyerr defines the error kinds surfaced by the sindy
// inclusion-dependency discovery engine. Each kind is a sentinel error
// that call sites attach to a concrete error via errors.Mark, so that
// errors.Is continues to work after the error has been wrapped with
// additional context.
package sindyerr

import "github.com/cockroachdb/errors"

// Kind sentinels. Classify an error with errors.Is(err, sindyerr.Configuration)
// and friends, even after the error has been wrapped.
var (
	// Configuration marks an invalid or missing setting, e.g. maxArity > 1
	// without a configured n-ary restriction. Always fatal, surfaced before
	// any pass runs.
	Configuration = errors.New("sindy: configuration error")

	// Input marks an unreadable source or a mid-stream parse failure that
	// was not suppressed by DropDifferingLines. Fatal.
	Input = errors.New("sindy: input error")

	// SubstrateFailure marks a failure reported by the execution substrate.
	// Fatal; the controller returns it with the original cause attached.
	SubstrateFailure = errors.New("sindy: substrate failure")

	// InternalInvariant marks a violated IND or combination invariant, e.g.
	// a dependent-column vector that is not strictly ascending. Indicates a
	// bug in the engine itself.
	InternalInvariant = errors.New("sindy: internal invariant violation")

	// Cancelled marks a controller run that was aborted mid-run.
	Cancelled = errors.New("sindy: run cancelled")
)

// MarkConfiguration builds a new error from a fmt-style format and args
// and marks it as a Configuration error.
func MarkConfiguration(format string, args ...interface{}) error {
	return errors.Mark(errors.Newf(format, args...), Configuration)
}

// MarkInput marks err as an Input error, preserving its chain.
func MarkInput(err error) error {
	return errors.Mark(err, Input)
}

// MarkSubstrateFailure marks err as a SubstrateFailure, preserving its chain.
func MarkSubstrateFailure(err error) error {
	return errors.Mark(err, SubstrateFailure)
}

// MarkInternalInvariant wraps a formatted message and marks it as an
// InternalInvariant violation.
func MarkInternalInvariant(format string, args ...interface{}) error {
	return errors.Mark(errors.AssertionFailedf(format, args...), InternalInvariant)
}

// MarkCancelled marks err as a Cancelled run, preserving its chain.
func MarkCancelled(err error) error {
	return errors.Mark(err, Cancelled)
}

// IsConfiguration reports whether err (or anything in its chain) is a
// Configuration error.
func IsConfiguration(err error) bool { return errors.Is(err, Configuration) }

// IsInput reports whether err (or anything in its chain) is an Input error.
func IsInput(err error) bool { return errors.Is(err, Input) }

// IsSubstrateFailure reports whether err (or anything in its chain) is a
// SubstrateFailure.
func IsSubstrateFailure(err error) bool { return errors.Is(err, SubstrateFailure) }

// IsInternalInvariant reports whether err (or anything in its chain) is an
// InternalInvariant violation.
func IsInternalInvariant(err error) bool { return errors.Is(err, InternalInvariant) }

// IsCancelled reports whether err (or anything in its chain) is a Cancelled
// run.
func IsCancelled(err error) bool { return errors.Is(err, Cancelled) }
