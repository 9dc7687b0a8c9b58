package normalize

import (
	"fmt"
	"sort"
	"strings"
)

// Context carries opaque transport metadata through normalization unchanged.
// The collector in front of this core populates it (client IP, user agent,
// collector timestamp); adapters copy it onto every RawEvent and never read
// or rewrite individual keys.
type Context map[string]string

// Get returns the value for key, or "" when absent.
func (c Context) Get(key string) string {
	return c[key]
}

// Clone returns an independent copy of the context.
func (c Context) Clone() Context {
	if c == nil {
		return nil
	}
	clone := make(Context, len(c))
	for key, value := range c {
		clone[key] = value
	}
	return clone
}

// String renders the context for log output. Keys are sorted so the
// rendering is stable.
func (c Context) String() string {
	if c == nil {
		return ""
	}
	keys := make([]string, 0, len(c))
	for key := range c {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	vals := make([]string, 0, len(keys))
	for _, key := range keys {
		vals = append(vals, fmt.Sprintf("%s=%s", key, c[key]))
	}
	return fmt.Sprintf("Context{%s}", strings.Join(vals, ", "))
}

// QueryParam is one key/value pair from the request querystring.
// Keys may repeat; ordering is the wire ordering.
type QueryParam struct {
	Key   string
	Value string
}

// Envelope is one inbound request to be normalized. The transport
// collaborator constructs it; this package treats it as immutable.
//
// Body and ContentType use "" for absent. Collectors in front of this core
// strip empty bodies, so there is no meaningful empty-but-present body.
type Envelope struct {
	// API identifies the logical endpoint hit (vendor path and version).
	API string

	// Body is the raw request body text, "" when the request had none.
	Body string

	// ContentType is the declared media type of Body, "" when not declared.
	ContentType string

	// Query is the ordered querystring. Keys may repeat; when flattened
	// the later value wins.
	Query []QueryParam

	// Source names the third-party source the request came from.
	// Registry dispatches on it.
	Source string

	// Context is opaque transport metadata carried through unchanged.
	Context Context
}

// Params holds one logical event's fields, flattened to unique string keys.
type Params map[string]string

// FlattenQuery flattens an ordered querystring into Params.
// On duplicate keys the later value wins.
func FlattenQuery(query []QueryParam) Params {
	params := make(Params, len(query))
	for _, q := range query {
		params[q.Key] = q.Value
	}
	return params
}

// Merge returns a copy of p with overlay merged in. Overlay values win on
// key collision. Neither input is modified.
func (p Params) Merge(overlay Params) Params {
	merged := make(Params, len(p)+len(overlay))
	for key, value := range p {
		merged[key] = value
	}
	for key, value := range overlay {
		merged[key] = value
	}
	return merged
}

// Clone returns an independent copy of p.
func (p Params) Clone() Params {
	if p == nil {
		return nil
	}
	clone := make(Params, len(p))
	for key, value := range p {
		clone[key] = value
	}
	return clone
}
