package bitmap

import "errors"

// Error kinds reported by every package of the module. Failures wrap one of
// these with context, test them with errors.Is.
var (
	ErrInvalidParameter   = errors.New("invalid parameter")
	ErrOutOfBounds        = errors.New("out of bounds")
	ErrDimensionMismatch  = errors.New("dimension mismatch")
	ErrUnsupportedFormat  = errors.New("unsupported format")
	ErrEmptyInput         = errors.New("empty input")
	ErrFeatureUnavailable = errors.New("feature unavailable")
)
