package schema

import "errors"

var (
	// ErrMalformedRef is returned when a textual schema reference cannot
	// be parsed.
	ErrMalformedRef = errors.New("malformed schema reference")

	// ErrNotFound is returned when no document is stored for a reference.
	ErrNotFound = errors.New("schema not found")

	// ErrEmptyDocument is returned when registering an empty document.
	ErrEmptyDocument = errors.New("schema document cannot be empty")

	// ErrSourceClosed is returned when operating on a closed source.
	ErrSourceClosed = errors.New("schema source is closed")
)
