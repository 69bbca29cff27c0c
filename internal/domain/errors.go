package domain

import "errors"

var (
	// ErrEmptyInput signals that embedding was requested for blank text.
	ErrEmptyInput = errors.New("empty input text")
	// ErrProviderAuth signals rejected embedding provider credentials.
	ErrProviderAuth = errors.New("embedding provider authentication failed")
	// ErrProviderRateLimited signals a provider-side 429.
	ErrProviderRateLimited = errors.New("embedding provider rate limited")
	// ErrProviderTimeout signals an embedding call aborted by its deadline.
	ErrProviderTimeout = errors.New("embedding provider timeout")
	// ErrProviderServer signals a provider-side 5xx failure.
	ErrProviderServer = errors.New("embedding provider server error")
	// ErrInvalidResponseShape signals a provider vector with the wrong dimension.
	ErrInvalidResponseShape = errors.New("invalid embedding response shape")
	// ErrCapabilityUnavailable signals that the store lacks vector search support.
	ErrCapabilityUnavailable = errors.New("vector capability unavailable")
	// ErrStoreWrite signals a failed document insert.
	ErrStoreWrite = errors.New("document store write failed")
	// ErrDocumentInvalid signals a document that fails validation.
	ErrDocumentInvalid = errors.New("invalid document")
)
