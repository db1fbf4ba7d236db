package drawscan

import (
	"strings"

	"github.com/zeebo/errs"
)

// Error classes returned by the package. Every failure belongs to exactly
// one of them and can be checked with the class's Has method.
var (
	// ErrInvalidArgument is returned for malformed parameters.
	ErrInvalidArgument = errs.Class("invalid argument")

	// ErrComputedSizeZero is returned when the parameters describe no numbers.
	ErrComputedSizeZero = errs.Class("computed size zero")

	// ErrRequestTooLarge is returned when the parameters describe more than
	// MaxTotalNumbers numbers. Reduce the duration or the draw rate.
	ErrRequestTooLarge = errs.Class("request too large")

	// ErrAllocationFailure is returned when a buffer could not be allocated.
	ErrAllocationFailure = errs.Class("allocation failure")
)

// Code returns a short stable identifier for the class of err, or the
// empty string if err is nil or unclassified.
func Code(err error) string {
	switch {
	case err == nil:
		return ""
	case ErrInvalidArgument.Has(err):
		return "invalid_argument"
	case ErrComputedSizeZero.Has(err):
		return "computed_size_zero"
	case ErrRequestTooLarge.Has(err):
		return "request_too_large"
	case ErrAllocationFailure.Has(err):
		return "allocation_failure"
	default:
		return ""
	}
}

// allocFailed reports if a recovered panic value came from the runtime
// refusing to allocate or grow a slice.
func allocFailed(rec interface{}) bool {
	err, ok := rec.(error)
	if !ok {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "makeslice") ||
		strings.Contains(msg, "growslice") ||
		strings.Contains(msg, "out of memory")
}
