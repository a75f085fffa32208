package exitcode

import (
	"errors"

	"github.com/gyeh/claimsadj/internal/extract"
	"github.com/gyeh/claimsadj/internal/refdata"
)

const (
	Success           = 0
	UsageError        = 1
	ReferenceData     = 2
	UnsupportedFormat = 3
	MalformedInput    = 4
	StageFailure      = 5
	PartialSuccess    = 6
)

// For maps a pipeline error to the process exit code.
func For(err error) int {
	switch {
	case err == nil:
		return Success
	case errors.Is(err, extract.ErrUnsupportedFormat):
		return UnsupportedFormat
	case errors.Is(err, extract.ErrMalformedInput):
		return MalformedInput
	case errors.Is(err, refdata.ErrReferenceDataMissing):
		return ReferenceData
	default:
		return StageFailure
	}
}
