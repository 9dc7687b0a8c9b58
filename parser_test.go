package normalize

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"syreclabs.com/go/faker"

	"github.com/relaypipe/normalize/schema"
)

func init() {
	faker.Seed(time.Now().UnixNano())
}

var testSchemaRef = schema.MustParseRef("schema:com.acme/checkout_events/jsonschema/1-0-0")

func testParser() *BodyParser {
	return &BodyParser{
		SchemaRef:    testSchemaRef,
		ContentTypes: []string{"application/json", "application/json; charset=utf-8"},
	}
}

func TestParsePreconditions(t *testing.T) {
	ctx := context.Background()
	validator := &StaticValidator{}

	t.Run("empty body and querystring fails with empty input", func(t *testing.T) {
		env := TestEnvelope("acme")
		_, err := testParser().Parse(ctx, env, validator)
		if !errors.Is(err, ErrEmptyInput) {
			t.Fatalf("expected ErrEmptyInput, got %v", err)
		}
	})

	t.Run("empty input wins regardless of content type", func(t *testing.T) {
		env := TestEnvelope("acme")
		env.ContentType = "application/json"
		_, err := testParser().Parse(ctx, env, validator)
		if !errors.Is(err, ErrEmptyInput) {
			t.Fatalf("expected ErrEmptyInput, got %v", err)
		}
	})

	t.Run("disallowed content type fails even with conformant body", func(t *testing.T) {
		env := WithBody(TestEnvelope("acme"), "text/plain", `[{"a":"1"}]`)
		_, err := testParser().Parse(ctx, env, validator)
		if !errors.Is(err, ErrContentTypeMismatch) {
			t.Fatalf("expected ErrContentTypeMismatch, got %v", err)
		}
		if len(validator.Seen()) != 0 {
			t.Error("validator must not run before preconditions pass")
		}
	})

	t.Run("body without content type fails", func(t *testing.T) {
		env := TestEnvelope("acme")
		env.Body = `[{"a":"1"}]`
		_, err := testParser().Parse(ctx, env, validator)
		if !errors.Is(err, ErrContentTypeMismatch) {
			t.Fatalf("expected ErrContentTypeMismatch, got %v", err)
		}
	})

	t.Run("content type without body fails", func(t *testing.T) {
		env := WithQuery(TestEnvelope("acme"), QueryParam{Key: "a", Value: "1"})
		env.ContentType = "application/json"
		_, err := testParser().Parse(ctx, env, validator)
		if !errors.Is(err, ErrContentTypeMismatch) {
			t.Fatalf("expected ErrContentTypeMismatch, got %v", err)
		}
	})

	t.Run("querystring only succeeds with the flattened querystring", func(t *testing.T) {
		env := WithQuery(TestEnvelope("acme"),
			QueryParam{Key: "e", Value: "pv"},
			QueryParam{Key: "page", Value: "home"},
			QueryParam{Key: "e", Value: "pp"}, // later key wins
		)
		got, err := testParser().Parse(ctx, env, validator)
		if err != nil {
			t.Fatalf("unexpected failure: %v", err)
		}
		want := []Params{{"e": "pp", "page": "home"}}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("params mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestParseBody(t *testing.T) {
	ctx := context.Background()

	t.Run("malformed JSON fails fast with a single parse error", func(t *testing.T) {
		env := WithBody(TestEnvelope("acme"), "application/json", `{"a":`)
		_, err := testParser().Parse(ctx, env, &StaticValidator{})
		if !errors.Is(err, ErrBodyParse) {
			t.Fatalf("expected ErrBodyParse, got %v", err)
		}
		if n := len(Messages(err)); n != 1 {
			t.Errorf("expected a single fail-fast message, got %d", n)
		}
	})

	t.Run("schema violation aborts before field extraction", func(t *testing.T) {
		validator := &StaticValidator{Err: &schema.ValidationError{
			Ref:    testSchemaRef,
			Causes: []string{"/0: missing property a", "/1: missing property a"},
		}}
		// Field errors exist too, but the schema stage must fail alone.
		env := WithBody(TestEnvelope("acme"), "application/json", `[{"a":1}]`)
		_, err := testParser().Parse(ctx, env, validator)
		if !errors.Is(err, ErrSchemaViolation) {
			t.Fatalf("expected ErrSchemaViolation, got %v", err)
		}
		want := []string{"/0: missing property a", "/1: missing property a"}
		if diff := cmp.Diff(want, Messages(err)); diff != "" {
			t.Errorf("messages mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("opaque validator error still reports a schema violation", func(t *testing.T) {
		validator := &StaticValidator{Err: errors.New("registry unreachable")}
		env := WithBody(TestEnvelope("acme"), "application/json", `[{"a":"1"}]`)
		_, err := testParser().Parse(ctx, env, validator)
		if !errors.Is(err, ErrSchemaViolation) {
			t.Fatalf("expected ErrSchemaViolation, got %v", err)
		}
	})

	t.Run("validated non-array body is a schema violation", func(t *testing.T) {
		env := WithBody(TestEnvelope("acme"), "application/json", `{"a":"1"}`)
		_, err := testParser().Parse(ctx, env, &StaticValidator{})
		if !errors.Is(err, ErrSchemaViolation) {
			t.Fatalf("expected ErrSchemaViolation, got %v", err)
		}
	})

	t.Run("empty event list is a contract anomaly", func(t *testing.T) {
		env := WithBody(TestEnvelope("acme"), "application/json", `[]`)
		_, err := testParser().Parse(ctx, env, &StaticValidator{})
		if !errors.Is(err, ErrEmptyBatch) {
			t.Fatalf("expected ErrEmptyBatch, got %v", err)
		}
	})

	t.Run("body only yields one map per event", func(t *testing.T) {
		env := WithBody(TestEnvelope("acme"), "application/json", `[{"a":"1"},{"a":"2"}]`)
		got, err := testParser().Parse(ctx, env, &StaticValidator{})
		if err != nil {
			t.Fatalf("unexpected failure: %v", err)
		}
		want := []Params{{"a": "1"}, {"a": "2"}}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("params mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("querystring overwrites body fields on collision", func(t *testing.T) {
		override := faker.Lorem().Word()
		body := `[{"aid":"body-1","e":"se"},{"aid":"body-2","e":"tr"},{"aid":"body-3","e":"pv"}]`
		env := WithQuery(TestEnvelope("acme"), QueryParam{Key: "aid", Value: override})
		env = WithBody(env, "application/json", body)

		got, err := testParser().Parse(ctx, env, &StaticValidator{})
		if err != nil {
			t.Fatalf("unexpected failure: %v", err)
		}
		if len(got) != 3 {
			t.Fatalf("expected 3 events, got %d", len(got))
		}
		for i, params := range got {
			if params["aid"] != override {
				t.Errorf("event %d: aid = %q, want querystring override %q", i, params["aid"], override)
			}
		}
		if got[1]["e"] != "tr" {
			t.Errorf("event 1: body-only field lost, e = %q", got[1]["e"])
		}
	})
}

func TestParseFieldAccumulation(t *testing.T) {
	ctx := context.Background()

	t.Run("all field failures are collected across all events", func(t *testing.T) {
		body := `[{"a":1,"b":"ok","c":null},{"d":true,"e":"ok"},{"f":["x"]}]`
		env := WithBody(TestEnvelope("acme"), "application/json", body)
		_, err := testParser().Parse(ctx, env, &StaticValidator{})
		if !errors.Is(err, ErrFieldType) {
			t.Fatalf("expected ErrFieldType, got %v", err)
		}
		// a, c, d and f are offenders; b and e are fine.
		want := []string{
			"event 1: value for key a is not a string",
			"event 1: value for key c is a null string",
			"event 2: value for key d is not a string",
			"event 3: value for key f is not a string",
		}
		if diff := cmp.Diff(want, Messages(err)); diff != "" {
			t.Errorf("messages mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("partial success is not reported", func(t *testing.T) {
		body := `[{"a":"ok"},{"a":7}]`
		env := WithBody(TestEnvelope("acme"), "application/json", body)
		got, err := testParser().Parse(ctx, env, &StaticValidator{})
		if err == nil {
			t.Fatalf("expected batch rejection, got %d events", len(got))
		}
		if n := len(Messages(err)); n != 1 {
			t.Errorf("expected exactly the offending field reported, got %d messages", n)
		}
	})

	t.Run("failure order is stable for identical input", func(t *testing.T) {
		fields := make([]string, 0, 8)
		for i := 0; i < 8; i++ {
			fields = append(fields, fmt.Sprintf("%q:%d", fmt.Sprintf("k%d", i), i))
		}
		body := "[{" + strings.Join(fields, ",") + "}]"
		env := WithBody(TestEnvelope("acme"), "application/json", body)

		first, err := testParser().Parse(ctx, env, &StaticValidator{})
		if err == nil {
			t.Fatalf("expected failure, got %d events", len(first))
		}
		for i := 0; i < 5; i++ {
			_, again := testParser().Parse(ctx, env, &StaticValidator{})
			if diff := cmp.Diff(Messages(err), Messages(again)); diff != "" {
				t.Fatalf("run %d: message order changed (-first +again):\n%s", i, diff)
			}
		}
	})
}
