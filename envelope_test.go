package normalize

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFlattenQuery(t *testing.T) {
	t.Run("later value wins on duplicate keys", func(t *testing.T) {
		got := FlattenQuery([]QueryParam{
			{Key: "e", Value: "pv"},
			{Key: "page", Value: "home"},
			{Key: "e", Value: "pp"},
		})
		want := Params{"e": "pp", "page": "home"}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("params mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("empty querystring flattens to an empty map", func(t *testing.T) {
		if got := FlattenQuery(nil); len(got) != 0 {
			t.Errorf("FlattenQuery(nil) = %v", got)
		}
	})
}

func TestParamsMerge(t *testing.T) {
	base := Params{"a": "base", "b": "base"}
	overlay := Params{"b": "overlay", "c": "overlay"}

	got := base.Merge(overlay)
	want := Params{"a": "base", "b": "overlay", "c": "overlay"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("merged mismatch (-want +got):\n%s", diff)
	}
	if base["b"] != "base" || overlay["b"] != "overlay" {
		t.Error("Merge modified an input")
	}
}

func TestParamsClone(t *testing.T) {
	original := Params{"a": "1"}
	clone := original.Clone()
	clone["a"] = "2"
	if original["a"] != "1" {
		t.Error("Clone shares storage with the original")
	}
	if Params(nil).Clone() != nil {
		t.Error("Clone(nil) is not nil")
	}
}

func TestContext(t *testing.T) {
	c := Context{"ip": "10.0.0.1", "agent": "curl"}

	if c.Get("ip") != "10.0.0.1" || c.Get("missing") != "" {
		t.Error("Get lookup wrong")
	}

	clone := c.Clone()
	clone["ip"] = "changed"
	if c.Get("ip") != "10.0.0.1" {
		t.Error("Clone shares storage with the original")
	}

	if got := c.String(); got != "Context{agent=curl, ip=10.0.0.1}" {
		t.Errorf("String() = %q", got)
	}
	if got := Context(nil).String(); got != "" {
		t.Errorf("nil String() = %q", got)
	}
}
