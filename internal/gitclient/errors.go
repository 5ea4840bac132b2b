package gitclient

import "errors"

// Error kinds for remote calls. Callers in the preview fallback chain treat
// every one of these as "advance to the next step", never as fatal.
var (
	// ErrNotFound is the expected 404 outcome, e.g. a repository without a README.
	ErrNotFound = errors.New("not found")

	// ErrMissingCredentials marks an operation that needs a token none was configured for.
	ErrMissingCredentials = errors.New("missing credentials")

	// ErrMalformedResponse marks a payload that could not be decoded.
	ErrMalformedResponse = errors.New("malformed response")

	// ErrTransport marks timeouts, connection errors and non-2xx statuses.
	ErrTransport = errors.New("transport failure")
)
