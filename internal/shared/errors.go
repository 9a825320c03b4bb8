package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// OAuth / linking errors. ErrInvalidState covers forged, replayed and
	// expired callback state values and maps to a client error, never a
	// server fault.
	ErrInvalidState      = fmt.Errorf("invalid or expired state parameter")
	ErrTokenExchange     = fmt.Errorf("token exchange failed")
	ErrRefreshFailed     = fmt.Errorf("token refresh failed: user may need to re-authenticate")
	ErrNoBusinessAccount = fmt.Errorf("no Instagram business account found: connect the Instagram account to a Facebook page")

	// Graph API read errors
	ErrProfileFetch = fmt.Errorf("failed to fetch Instagram profile")
	ErrMediaFetch   = fmt.Errorf("failed to fetch Instagram media")

	// Local record errors
	ErrAccountNotFound = fmt.Errorf("no Instagram account linked")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
)
