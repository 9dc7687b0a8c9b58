package normalize

import (
	"time"

	"github.com/relaypipe/normalize/schema"
)

// isoTimestamp is the canonical rendering of coerced datetimes:
// ISO-8601 in UTC with millisecond precision, e.g. "2019-01-02T03:04:05.000Z".
const isoTimestamp = "2006-01-02T15:04:05.000Z07:00"

// Synthetic wrapper fields added to every reconstructed event.
const (
	schemaKey  = "schema"
	trackerKey = "tracker"
)

// FieldPlan declares which raw field names must be reinterpreted as typed
// values. The three lists are disjoint; fields not named in any list pass
// through unmodified. Absent fields are simply skipped.
type FieldPlan struct {
	// Bools are rewritten to "1"/"0" from lenient truthy/falsy text.
	Bools []string

	// Ints pass through when numeric-looking.
	Ints []string

	// Datetimes are reparsed from Layout into canonical ISO-8601 UTC.
	Datetimes []string

	// Layout is the Go reference-time layout shared by every field named
	// in Datetimes, e.g. "2006-01-02 15:04:05".
	Layout string
}

// Coercer rebuilds a typed parameter map from raw string parameters and
// repackages it as a self-describing structured event: the coerced fields
// plus the schema reference and source tracker tag.
//
// Upstream tracking formats are not contractually guaranteed, so a listed
// field that fails to parse is omitted from the output rather than failing
// the whole request. Adapters that need the stricter policy check for the
// dropped keys themselves and escalate with ErrCoercion.
//
// Format is idempotent: applying the same Coercer to its own output leaves
// already-canonical values unchanged.
type Coercer struct {
	// SchemaRef is the structural contract the reconstructed event claims.
	SchemaRef schema.Ref

	// Tracker tags reconstructed events with the source integration,
	// e.g. "com.acme-v1".
	Tracker string

	// Plan declares the field coercions.
	Plan FieldPlan
}

// Format coerces raw and wraps it as a structured event parameter map.
// raw is not modified.
func (c *Coercer) Format(raw Params) Params {
	out := make(Params, len(raw)+2)
	for key, value := range raw {
		out[key] = value
	}

	for _, key := range c.Plan.Bools {
		value, ok := raw[key]
		if !ok {
			continue
		}
		if canonical, ok := coerceBool(value); ok {
			out[key] = canonical
		} else {
			delete(out, key)
		}
	}

	for _, key := range c.Plan.Ints {
		value, ok := raw[key]
		if !ok {
			continue
		}
		if !numeric(value) {
			delete(out, key)
		}
	}

	for _, key := range c.Plan.Datetimes {
		value, ok := raw[key]
		if !ok {
			continue
		}
		if canonical, ok := c.coerceTimestamp(value); ok {
			out[key] = canonical
		} else {
			delete(out, key)
		}
	}

	out[schemaKey] = c.SchemaRef.String()
	out[trackerKey] = c.Tracker
	return out
}

// coerceBool recognizes lenient truthy/falsy text and rewrites it to the
// canonical "1"/"0" literals.
func coerceBool(value string) (string, bool) {
	switch lower(value) {
	case "1", "t", "true", "y", "yes":
		return "1", true
	case "0", "f", "false", "n", "no":
		return "0", true
	}
	return "", false
}

// numeric reports whether value looks like a (possibly signed) integer.
// Plain digit checking instead of strconv so magnitude never matters:
// upstream IDs routinely exceed int64.
func numeric(value string) bool {
	if value == "" {
		return false
	}
	digits := value
	if value[0] == '+' || value[0] == '-' {
		digits = value[1:]
	}
	if digits == "" {
		return false
	}
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return false
		}
	}
	return true
}

// coerceTimestamp reparses value from the plan's source layout into the
// canonical ISO-8601 UTC rendering. Already-canonical values pass through
// unchanged, which is what makes Format idempotent.
func (c *Coercer) coerceTimestamp(value string) (string, bool) {
	if _, err := time.Parse(isoTimestamp, value); err == nil {
		return value, true
	}
	if c.Plan.Layout == "" {
		return "", false
	}
	t, err := time.Parse(c.Plan.Layout, value)
	if err != nil {
		return "", false
	}
	return t.UTC().Format(isoTimestamp), true
}

// lower is an ASCII-only strings.ToLower; coercion inputs are wire keywords.
func lower(s string) string {
	b := []byte(s)
	for i := 0; i < len(b); i++ {
		if 'A' <= b[i] && b[i] <= 'Z' {
			b[i] += 'a' - 'A'
		}
	}
	return string(b)
}
