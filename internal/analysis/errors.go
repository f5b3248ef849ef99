package analysis

import "errors"

// Domain errors for the inference boundary. ErrUnavailable and
// ErrInvalidResponse are recovered internally via the rule-based fallback
// and never surface to pipeline callers.
var (
	ErrUnavailable     = errors.New("inference capability unavailable")
	ErrInvalidResponse = errors.New("inference response is not a valid analysis result")
)
