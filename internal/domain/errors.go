package domain

import "errors"

var (
	// ErrUnresolvedReference is returned when a product reference cannot be
	// resolved to any identity. Rejected at registration time; never enters
	// the matching pipeline.
	ErrUnresolvedReference = errors.New("product reference could not be resolved")

	// ErrUpstreamTransient is returned for network errors, timeouts and 5xx
	// responses from the search API. Aborts the current traversal early;
	// never aborts the batch.
	ErrUpstreamTransient = errors.New("transient search API failure")

	// ErrUpstreamPermanent is returned for auth failures from the search
	// API. Aborts the whole run immediately, no partial batch persisted.
	ErrUpstreamPermanent = errors.New("permanent search API failure")

	// ErrMissingCredentials is returned when API credentials are absent.
	// A fatal precondition, not a retryable error.
	ErrMissingCredentials = errors.New("search API credentials not configured")

	// ErrStorageWrite is returned when persisting an observation batch fails.
	ErrStorageWrite = errors.New("observation batch write failed")

	// ErrRunInProgress is returned when a run start is attempted while the
	// client's previous run is still active. The attempt is rejected, not queued.
	ErrRunInProgress = errors.New("run already in progress for client")

	// ErrClientNotFound is returned when a client id is unknown.
	ErrClientNotFound = errors.New("client not found")

	// ErrDuplicateKeyword is returned when a keyword is already registered
	// for the client.
	ErrDuplicateKeyword = errors.New("keyword already registered for client")
)
