package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")

	// External catalog service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrRateLimited        = fmt.Errorf("rate limited by external service")
	ErrReleaseNotFound    = fmt.Errorf("release not found")
	ErrTrackNotFound      = fmt.Errorf("track not found")
	ErrMalformedResponse  = fmt.Errorf("malformed external response")
	ErrRefreshFailed      = fmt.Errorf("metadata refresh failed")
	ErrTimeout            = fmt.Errorf("operation timed out")

	// Reconciliation errors
	ErrCurrencyMismatch = fmt.Errorf("currency mismatch")
	ErrGroupNotFound    = fmt.Errorf("duplicate group not found")
	ErrStaleGroup       = fmt.Errorf("duplicate group no longer matches catalog state")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
