// Package schema names and checks the structural contracts that inbound
// JSON bodies must satisfy.
//
// A Ref identifies one versioned contract in the textual form
// "schema:vendor/name/format/version", for example
// "schema:com.acme/checkout_events/jsonschema/1-0-0". A Validator checks a
// JSON document against the contract a Ref names. Sources store the contract
// documents themselves: in memory for tests and development, Redis or
// MongoDB for deployments with shared registries.
//
// How schemas are authored and distributed is out of scope here; Sources
// treat documents as opaque bytes and JSONValidator compiles whatever the
// Source returns.
//
// Example:
//
//	source := schema.NewMemorySource()
//	source.Register(ctx, ref, document)
//
//	validator := schema.NewJSONValidator(source)
//	err := validator.Validate(ctx, body, ref)
package schema

import (
	"context"
	"fmt"
	"strings"
)

const refPrefix = "schema:"

// Ref identifies a versioned structural contract.
type Ref struct {
	// Vendor is the reverse-domain owner, e.g. "com.acme".
	Vendor string
	// Name is the contract name, e.g. "checkout_events".
	Name string
	// Format is the contract language, e.g. "jsonschema".
	Format string
	// Version is the model-revision-addition triple, e.g. "1-0-0".
	Version string
}

// ParseRef parses the textual form "schema:vendor/name/format/version".
func ParseRef(s string) (Ref, error) {
	if !strings.HasPrefix(s, refPrefix) {
		return Ref{}, fmt.Errorf("%w: %q must start with %q", ErrMalformedRef, s, refPrefix)
	}
	parts := strings.Split(strings.TrimPrefix(s, refPrefix), "/")
	if len(parts) != 4 {
		return Ref{}, fmt.Errorf("%w: %q must have vendor/name/format/version", ErrMalformedRef, s)
	}
	for _, part := range parts {
		if part == "" {
			return Ref{}, fmt.Errorf("%w: %q has an empty component", ErrMalformedRef, s)
		}
	}
	return Ref{Vendor: parts[0], Name: parts[1], Format: parts[2], Version: parts[3]}, nil
}

// MustParseRef is ParseRef for package-level adapter configuration.
// Panics on malformed input.
func MustParseRef(s string) Ref {
	ref, err := ParseRef(s)
	if err != nil {
		panic("schema.MustParseRef: " + err.Error())
	}
	return ref
}

// String renders the textual form.
func (r Ref) String() string {
	return refPrefix + r.Vendor + "/" + r.Name + "/" + r.Format + "/" + r.Version
}

// IsZero reports whether the ref is unset.
func (r Ref) IsZero() bool {
	return r == Ref{}
}

// Validator checks a JSON document against the contract ref names.
//
// The error is a *ValidationError when the document does not conform; any
// other error means the check itself could not run (document unfetchable,
// backend down). Callers treat both as a failed validation: this library
// never retries, and a validator outage is indistinguishable from a
// malformed payload at the normalization boundary.
//
// Validate may block on a remote backend. Implementations must honor ctx
// and must be safe for concurrent use.
type Validator interface {
	Validate(ctx context.Context, document []byte, ref Ref) error
}

// ValidationError reports non-conformance with ordered structured causes.
type ValidationError struct {
	Ref    Ref
	Causes []string
}

// Error joins the causes in order.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("document does not conform to %s: %s", e.Ref, strings.Join(e.Causes, "; "))
}

// Source fetches contract documents by reference.
//
// Fetch returns ErrNotFound (possibly wrapped) when no document is stored
// for ref. Implementations must be safe for concurrent use.
type Source interface {
	// Fetch returns the raw contract document stored for ref.
	Fetch(ctx context.Context, ref Ref) ([]byte, error)

	// Register stores the raw contract document for ref, replacing any
	// previous revision of the same ref.
	Register(ctx context.Context, ref Ref, document []byte) error

	// Close releases resources held by the source.
	Close() error
}
