package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")
	ErrNoEndpoints   = fmt.Errorf("no endpoints configured")

	// Upstream aggregation errors
	ErrAllFailed        = fmt.Errorf("all upstream candidates failed")
	ErrDeadlineExceeded = fmt.Errorf("upstream deadline exceeded")
	ErrBadPayload       = fmt.Errorf("unusable upstream payload")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
