package alloy_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	alloy "github.com/adobe/reactor-extension-alloy-sub003"
	js "github.com/adobe/reactor-extension-alloy-sub003/jsonschema"
)

// exampleSchema is {a: string, b: {c: integer}}.
func exampleSchema() *js.Schema {
	return &js.Schema{
		Type: js.TypeObject,
		Properties: map[string]*js.Schema{
			"a": {Type: js.TypeString},
			"b": {Type: js.TypeObject, Properties: map[string]*js.Schema{
				"c": {Type: js.TypeInteger},
			}},
		},
	}
}

func TestBuild_ExampleTree(t *testing.T) {
	tree := alloy.NewBuilder().Build(exampleSchema(), alloy.BuildOptions{Value: map[string]any{"a": "x"}})
	root := tree.Root
	if root.Path != "" {
		t.Fatalf("root path must be empty, got %q", root.Path)
	}
	if len(root.Properties) != 2 {
		t.Fatalf("expected two top-level nodes, got %d", len(root.Properties))
	}
	if root.Strategy != alloy.StrategyParts || !root.PartsSupported {
		t.Fatalf("root should be populated by parts")
	}
	a := root.Properties["a"]
	if a.Value != "x" || a.Path != "a" || a.Kind != alloy.KindString {
		t.Fatalf("unexpected a: %+v", a)
	}
	c := root.Properties["b"].Properties["c"]
	if c.Path != "b.c" || c.Kind != alloy.KindInteger || c.Value != nil {
		t.Fatalf("unexpected b.c: %+v", c)
	}
}

func TestBuild_IDsUniqueAndScopedToBuilder(t *testing.T) {
	b := alloy.NewBuilder()
	t1 := b.Build(exampleSchema(), alloy.BuildOptions{})
	t2 := b.Build(exampleSchema(), alloy.BuildOptions{})
	seen := map[string]bool{}
	for _, tr := range []alloy.Tree{t1, t2} {
		tr.Walk(func(n *alloy.Node, _ int) bool {
			if seen[n.ID] {
				t.Fatalf("duplicate id %s", n.ID)
			}
			seen[n.ID] = true
			return true
		})
	}
	if len(seen) != 8 {
		t.Fatalf("expected 8 nodes, got %d", len(seen))
	}

	other := alloy.NewBuilder().Build(exampleSchema(), alloy.BuildOptions{})
	if other.Root.ID != t1.Root.ID {
		t.Fatalf("a new builder restarts its sequence: %s vs %s", other.Root.ID, t1.Root.ID)
	}
}

func TestBuild_UUIDGenerator(t *testing.T) {
	tree := alloy.NewBuilder(alloy.WithIDGenerator(alloy.UUIDs{})).Build(exampleSchema(), alloy.BuildOptions{})
	if len(tree.Root.ID) != 36 {
		t.Fatalf("expected a UUID, got %q", tree.Root.ID)
	}
}

func TestBuild_AutoPopulationAndTransforms(t *testing.T) {
	s := &js.Schema{Type: js.TypeObject, Properties: map[string]*js.Schema{
		"timestamp": {Type: js.TypeString},
		"web": {Type: js.TypeObject, Properties: map[string]*js.Schema{
			"webPageDetails": {Type: js.TypeObject, Properties: map[string]*js.Schema{
				"URL": {Type: js.TypeString},
			}},
		}},
	}}
	tree := alloy.NewBuilder().Build(s, alloy.BuildOptions{
		UpdateMode: true,
		Transforms: map[string]alloy.Transform{"web.webPageDetails": {Clear: true}},
	})
	ts := tree.Root.Properties["timestamp"]
	if ts.AutoPopulationSource != alloy.AutoPopulationAlways {
		t.Fatalf("timestamp: got %v", ts.AutoPopulationSource)
	}
	details := tree.Root.Properties["web"].Properties["webPageDetails"]
	url := details.Properties["URL"]
	if url.AutoPopulationSource != alloy.AutoPopulationContext || url.ContextKey != "web" {
		t.Fatalf("URL: got %v/%q", url.AutoPopulationSource, url.ContextKey)
	}
	if !details.Transform.Clear || !details.UpdateMode {
		t.Fatalf("transform not seeded: %+v", details.Transform)
	}
	if tree.Root.Properties["web"].Transform.Clear {
		t.Fatalf("transform leaked to parent")
	}
}

func TestBuild_CustomAutoPopulationTable(t *testing.T) {
	table := map[string]alloy.AutoPopulation{"a": {Source: alloy.AutoPopulationCommand}}
	tree := alloy.NewBuilder(alloy.WithAutoPopulation(table)).Build(exampleSchema(), alloy.BuildOptions{})
	if got := tree.Root.Properties["a"].AutoPopulationSource; got != alloy.AutoPopulationCommand {
		t.Fatalf("got %v", got)
	}
}

func TestBuild_WholeForDataElementAndUndeclaredChildren(t *testing.T) {
	s := &js.Schema{Type: js.TypeObject, Properties: map[string]*js.Schema{
		"obj":   {Type: js.TypeObject, Properties: map[string]*js.Schema{"x": {Type: js.TypeString}}},
		"free":  {Type: js.TypeObject},
		"list":  {Type: js.TypeArray, Items: &js.Schema{Type: js.TypeString}},
		"blob":  {Type: js.TypeArray},
		"count": {Type: js.TypeInteger},
	}}
	tree := alloy.NewBuilder().Build(s, alloy.BuildOptions{Value: map[string]any{
		"obj":   "%my object%",
		"list":  []any{"a", "b"},
		"count": float64(3),
	}})
	p := tree.Root.Properties
	if p["obj"].Strategy != alloy.StrategyWhole || p["obj"].Value != "%my object%" || p["obj"].Properties != nil {
		t.Fatalf("data element object must be whole without children: %+v", p["obj"])
	}
	if p["free"].PartsSupported || p["blob"].PartsSupported {
		t.Fatalf("composites without declared children only support whole")
	}
	if len(p["list"].Items) != 2 || p["list"].Items[1].Path != "list.1" || p["list"].Items[1].Value != "b" {
		t.Fatalf("unexpected items: %+v", p["list"].Items)
	}
	if p["count"].Value != int64(3) {
		t.Fatalf("integral JSON numbers become int64, got %T %v", p["count"].Value, p["count"].Value)
	}
}

func TestKindOf_EnumWinsOverType(t *testing.T) {
	cases := []struct {
		s    *js.Schema
		want alloy.Kind
	}{
		{&js.Schema{Type: js.TypeInteger, Enum: []any{1.0, 2.0}}, alloy.KindEnum},
		{&js.Schema{Type: js.TypeObject}, alloy.KindObject},
		{&js.Schema{Type: js.TypeArray}, alloy.KindArray},
		{&js.Schema{Type: js.TypeBoolean}, alloy.KindBoolean},
		{&js.Schema{Type: js.TypeNumber}, alloy.KindNumber},
		{&js.Schema{Type: js.TypeObjectJSON}, alloy.KindObjectJSON},
		{&js.Schema{Type: js.TypeObjectAnalytics}, alloy.KindObjectAnalytics},
		{&js.Schema{Type: "date-time"}, alloy.KindString},
		{nil, alloy.KindString},
	}
	for _, c := range cases {
		if got := alloy.KindOf(c.s); got != c.want {
			t.Fatalf("KindOf(%+v) = %v, want %v", c.s, got, c.want)
		}
	}
}

func TestBuild_EveryKindHasAHelper(t *testing.T) {
	for _, k := range alloy.Kinds {
		s := &js.Schema{Type: k.String()}
		if k == alloy.KindEnum {
			s = &js.Schema{Enum: []any{"x"}}
		}
		tree := alloy.NewBuilder().Build(s, alloy.BuildOptions{})
		if tree.Root.Kind != k {
			t.Fatalf("built %v for %v", tree.Root.Kind, k)
		}
		if errs := alloy.Validate(tree.Root); !errs.Empty() {
			t.Fatalf("%v: untouched node has errors %v", k, errs.Issues())
		}
		if x := alloy.Extract(tree.Root); x.Value != nil || x.Set() {
			t.Fatalf("%v: untouched node extracted %+v", k, x)
		}
	}
}

func TestBuild_IntegerOutsideInt64StaysFloat(t *testing.T) {
	for _, v := range []float64{1e20, -1e20, 1 << 63} {
		tree := alloy.NewBuilder().Build(&js.Schema{Type: js.TypeInteger}, alloy.BuildOptions{Value: v})
		if tree.Root.Value != v {
			t.Fatalf("%v: node value %#v", v, tree.Root.Value)
		}
		if errs := alloy.Validate(tree.Root); !errs.Empty() {
			t.Fatalf("%v: unexpected errors %v", v, errs.Issues())
		}
		if got := alloy.Extract(tree.Root).Value; got != v {
			t.Fatalf("%v: extracted %#v", v, got)
		}
	}
	tree := alloy.NewBuilder().Build(&js.Schema{Type: js.TypeInteger}, alloy.BuildOptions{Value: float64(-1 << 63)})
	if tree.Root.Value != int64(-1<<63) {
		t.Fatalf("min int64 should convert, got %#v", tree.Root.Value)
	}
}

func TestRebuild_ZeroTree(t *testing.T) {
	var tree alloy.Tree
	next := tree.Rebuild(exampleSchema())
	if next.Root == nil || next.Root.Properties["a"] == nil {
		t.Fatalf("rebuild of a zero tree should build a fresh tree")
	}
}

func TestRebuild_CarriesOverEdits(t *testing.T) {
	b := alloy.NewBuilder()
	tree := b.Build(exampleSchema(), alloy.BuildOptions{Value: map[string]any{"a": "x"}})
	c := tree.Root.Properties["b"].Properties["c"]
	tree, err := tree.SetValue(c.ID, int64(7))
	if err != nil {
		t.Fatal(err)
	}

	refreshed := exampleSchema()
	refreshed.Properties["a"] = &js.Schema{Type: js.TypeBoolean} // kind changed
	refreshed.Properties["d"] = &js.Schema{Type: js.TypeString}  // new field
	next := tree.Rebuild(refreshed)

	if next.Root.ID != tree.Root.ID {
		t.Fatalf("root id must survive a schema refresh")
	}
	nc := next.Root.Properties["b"].Properties["c"]
	if nc.ID != c.ID || nc.Value != int64(7) {
		t.Fatalf("edit lost: %+v", nc)
	}
	if a := next.Root.Properties["a"]; a.Kind != alloy.KindBoolean || a.Value != nil {
		t.Fatalf("changed kind must come from the fresh tree: %+v", a)
	}
	if next.Root.Properties["d"] == nil {
		t.Fatalf("new property missing")
	}
	got := alloy.Extract(next.Root).Value
	if diff := cmp.Diff(map[string]any{"b": map[string]any{"c": int64(7)}}, got); diff != "" {
		t.Fatalf("extract (-want +got):\n%s", diff)
	}
	// The previous tree is untouched.
	if tree.Root.Properties["a"].Kind != alloy.KindString {
		t.Fatalf("rebuild mutated the old tree")
	}
}

func TestRebuild_KeepsStrategyAndArrayItems(t *testing.T) {
	s := &js.Schema{Type: js.TypeObject, Properties: map[string]*js.Schema{
		"list": {Type: js.TypeArray, Items: &js.Schema{Type: js.TypeString}},
		"obj":  {Type: js.TypeObject, Properties: map[string]*js.Schema{"x": {Type: js.TypeString}}},
	}}
	b := alloy.NewBuilder()
	tree := b.Build(s, alloy.BuildOptions{Value: map[string]any{"obj": "%de%"}})
	list := tree.Root.Properties["list"]
	tree, _ = tree.AddItem(list.ID)
	tree, _ = tree.AddItem(list.ID)
	second := tree.Root.Properties["list"].Items[1]
	tree, _ = tree.SetValue(second.ID, "two")

	next := tree.Rebuild(s)
	items := next.Root.Properties["list"].Items
	if len(items) != 2 || items[1].ID != second.ID || items[1].Value != "two" {
		t.Fatalf("array edits lost: %+v", items)
	}
	obj := next.Root.Properties["obj"]
	if obj.Strategy != alloy.StrategyWhole || obj.Value != "%de%" {
		t.Fatalf("strategy lost: %+v", obj)
	}
}
