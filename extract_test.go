package alloy_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	alloy "github.com/adobe/reactor-extension-alloy-sub003"
	js "github.com/adobe/reactor-extension-alloy-sub003/jsonschema"
)

func TestExtract_UntouchedCompositeIsUnset(t *testing.T) {
	schemas := []*js.Schema{
		exampleSchema(),
		requiredSchema(),
		{Type: js.TypeArray, Items: &js.Schema{Type: js.TypeString}},
		{Type: js.TypeObjectAnalytics},
	}
	for _, s := range schemas {
		tree := alloy.NewBuilder().Build(s, alloy.BuildOptions{})
		out := alloy.Extract(tree.Root)
		if out.Value != nil || out.Set() {
			t.Fatalf("expected nothing persisted for %+v, got %#v", s, out.Value)
		}
	}
}

func TestExtract_ExampleOmitsUnsetBranches(t *testing.T) {
	tree := alloy.NewBuilder().Build(exampleSchema(), alloy.BuildOptions{Value: map[string]any{"a": "x"}})
	out := alloy.Extract(tree.Root)
	if diff := cmp.Diff(map[string]any{"a": "x"}, out.Value); diff != "" {
		t.Fatalf("extract (-want +got):\n%s", diff)
	}
	if !out.Presence.Set("a") || out.Presence.Set("b") || out.Presence.Set("b.c") {
		t.Fatalf("unexpected presence: %v", out.Presence)
	}
}

func TestExtract_ScalarRoundTrip(t *testing.T) {
	cases := []struct {
		s *js.Schema
		v any
	}{
		{&js.Schema{Type: js.TypeString}, "hello"},
		{&js.Schema{Type: js.TypeString}, "%data element%"},
		{&js.Schema{Type: js.TypeInteger}, int64(42)},
		{&js.Schema{Type: js.TypeInteger}, "%count%"},
		{&js.Schema{Type: js.TypeNumber}, 3.25},
		{&js.Schema{Type: js.TypeBoolean}, false},
		{&js.Schema{Type: js.TypeBoolean}, true},
		{&js.Schema{Enum: []any{"a", "b"}}, "b"},
	}
	for _, c := range cases {
		tree := alloy.NewBuilder().Build(c.s, alloy.BuildOptions{})
		tree, err := tree.SetValue(tree.Root.ID, c.v)
		if err != nil {
			t.Fatalf("set %v: %v", c.v, err)
		}
		out := alloy.Extract(tree.Root)
		if out.Value != c.v || !out.Set() {
			t.Fatalf("round trip: got %#v, want %#v", out.Value, c.v)
		}
	}
}

func TestExtract_ClearIsReportedWithoutValue(t *testing.T) {
	tree := alloy.NewBuilder().Build(exampleSchema(), alloy.BuildOptions{
		UpdateMode: true,
		Transforms: map[string]alloy.Transform{"b.c": {Clear: true}},
	})
	out := alloy.Extract(tree.Root)
	if out.Value != nil {
		t.Fatalf("no value was set, got %#v", out.Value)
	}
	if !out.Presence.Cleared("b.c") || out.Presence.Set("b.c") {
		t.Fatalf("b.c should be cleared and unset: %v", out.Presence)
	}
	if diff := cmp.Diff(map[string]alloy.Transform{"b.c": {Clear: true}}, out.Transforms()); diff != "" {
		t.Fatalf("transforms (-want +got):\n%s", diff)
	}
}

func TestExtract_ClearAndValueTogether(t *testing.T) {
	tree := alloy.NewBuilder().Build(exampleSchema(), alloy.BuildOptions{
		UpdateMode: true,
		Value:      map[string]any{"a": "x"},
		Transforms: map[string]alloy.Transform{"a": {Clear: true}},
	})
	out := alloy.Extract(tree.Root)
	if !out.Presence.Cleared("a") || !out.Presence.Set("a") {
		t.Fatalf("a is cleared then replaced: %v", out.Presence)
	}
	if diff := cmp.Diff(map[string]any{"a": "x"}, out.Value); diff != "" {
		t.Fatalf("value (-want +got):\n%s", diff)
	}
}

func TestExtract_ClearIgnoredOutsideUpdateMode(t *testing.T) {
	tree := alloy.NewBuilder().Build(exampleSchema(), alloy.BuildOptions{
		Transforms: map[string]alloy.Transform{"b.c": {Clear: true}},
	})
	if got := alloy.Extract(tree.Root).Transforms(); got != nil {
		t.Fatalf("expected no transforms, got %v", got)
	}
}

func TestExtract_ArraysDropEmptyItems(t *testing.T) {
	s := &js.Schema{Type: js.TypeArray, Items: &js.Schema{Type: js.TypeObject, Properties: map[string]*js.Schema{
		"name": {Type: js.TypeString},
	}}}
	tree := alloy.NewBuilder().Build(s, alloy.BuildOptions{Value: []any{
		map[string]any{"name": "a"},
		map[string]any{},
		map[string]any{"name": "c"},
	}})
	want := []any{map[string]any{"name": "a"}, map[string]any{"name": "c"}}
	if diff := cmp.Diff(want, alloy.Extract(tree.Root).Value); diff != "" {
		t.Fatalf("extract (-want +got):\n%s", diff)
	}
}

func TestExtract_ObjectJSONParsesText(t *testing.T) {
	s := &js.Schema{Type: js.TypeObjectJSON}
	tree := alloy.NewBuilder().Build(s, alloy.BuildOptions{Value: map[string]any{"k": []any{"v"}}})
	text, _ := tree.Root.Value.(string)
	if text == "" {
		t.Fatalf("object value should be edited as JSON text")
	}
	if diff := cmp.Diff(map[string]any{"k": []any{"v"}}, alloy.Extract(tree.Root).Value); diff != "" {
		t.Fatalf("extract (-want +got):\n%s", diff)
	}
}

func TestExtract_AnalyticsNestsContextData(t *testing.T) {
	in := map[string]any{
		"eVar5":       "five",
		"events":      "event1",
		"contextData": map[string]any{"a": "1", "b": "2"},
	}
	tree := alloy.NewBuilder().Build(&js.Schema{Type: js.TypeObjectAnalytics}, alloy.BuildOptions{Value: in})
	if _, ok := tree.Root.Properties["contextData.a"]; !ok {
		t.Fatalf("context data should be flattened: %v", tree.Root.Properties)
	}
	if diff := cmp.Diff(in, alloy.Extract(tree.Root).Value); diff != "" {
		t.Fatalf("extract (-want +got):\n%s", diff)
	}
}
