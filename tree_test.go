package alloy_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	alloy "github.com/adobe/reactor-extension-alloy-sub003"
	js "github.com/adobe/reactor-extension-alloy-sub003/jsonschema"
)

func TestTree_SwitchingStrategyKeepsPartsData(t *testing.T) {
	tree := alloy.NewBuilder().Build(exampleSchema(), alloy.BuildOptions{Value: map[string]any{
		"b": map[string]any{"c": float64(5)},
	}})
	b := tree.Root.Properties["b"]

	whole, err := tree.SetStrategy(b.ID, alloy.StrategyWhole)
	if err != nil {
		t.Fatal(err)
	}
	wb := whole.Find(b.ID)
	if wb.HasChildren() || len(wb.Children()) != 0 {
		t.Fatalf("whole node must not show children")
	}
	if got := alloy.Extract(whole.Root).Value; got != nil {
		t.Fatalf("hidden parts must not be extracted, got %#v", got)
	}

	whole, _ = whole.SetValue(b.ID, "%b object%")
	parts, err := whole.SetStrategy(b.ID, alloy.StrategyParts)
	if err != nil {
		t.Fatal(err)
	}
	pb := parts.Find(b.ID)
	if got := pb.Properties["c"].Value; got != int64(5) {
		t.Fatalf("parts data lost, got %#v", got)
	}
	if diff := cmp.Diff(map[string]any{"b": map[string]any{"c": int64(5)}}, alloy.Extract(parts.Root).Value); diff != "" {
		t.Fatalf("extract (-want +got):\n%s", diff)
	}
}

func TestTree_SwitchingToPartsBuildsChildrenLazily(t *testing.T) {
	tree := alloy.NewBuilder().Build(exampleSchema(), alloy.BuildOptions{Value: map[string]any{"b": "%b%"}})
	b := tree.Root.Properties["b"]
	if b.Properties != nil {
		t.Fatalf("whole node must not have children yet")
	}
	tree, err := tree.SetStrategy(b.ID, alloy.StrategyParts)
	if err != nil {
		t.Fatal(err)
	}
	c := tree.Find(b.ID).Properties["c"]
	if c == nil || c.Path != "b.c" || tree.Find(c.ID) == nil {
		t.Fatalf("child not built: %+v", c)
	}
}

func TestTree_SetStrategyRequiresPartsSupport(t *testing.T) {
	s := &js.Schema{Type: js.TypeObject, Properties: map[string]*js.Schema{"free": {Type: js.TypeObject}}}
	tree := alloy.NewBuilder().Build(s, alloy.BuildOptions{})
	_, err := tree.SetStrategy(tree.Root.Properties["free"].ID, alloy.StrategyParts)
	if !errors.Is(err, alloy.ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}

func TestTree_SetValueRejectsPartsNodes(t *testing.T) {
	tree := alloy.NewBuilder().Build(exampleSchema(), alloy.BuildOptions{})
	if _, err := tree.SetValue(tree.Root.ID, "x"); !errors.Is(err, alloy.ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
	if _, err := tree.SetValue("missing", "x"); !errors.Is(err, alloy.ErrNodeNotFound) {
		t.Fatalf("expected ErrNodeNotFound, got %v", err)
	}
}

func TestTree_EditsDoNotMutatePreviousTree(t *testing.T) {
	before := alloy.NewBuilder().Build(exampleSchema(), alloy.BuildOptions{})
	c := before.Root.Properties["b"].Properties["c"]
	after, err := before.SetValue(c.ID, int64(9))
	if err != nil {
		t.Fatal(err)
	}
	if before.Root.Properties["b"].Properties["c"].Value != nil {
		t.Fatalf("old tree changed")
	}
	if after.Find(c.ID).Value != int64(9) {
		t.Fatalf("new tree missing edit")
	}
	if before.Root.Properties["a"] != after.Root.Properties["a"] {
		t.Fatalf("untouched subtrees should be shared")
	}
}

func TestTree_SetClear(t *testing.T) {
	b := alloy.NewBuilder()
	plain := b.Build(exampleSchema(), alloy.BuildOptions{})
	if _, err := plain.SetClear(plain.Root.Properties["a"].ID, true); !errors.Is(err, alloy.ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported outside update mode, got %v", err)
	}

	upd := b.Build(exampleSchema(), alloy.BuildOptions{UpdateMode: true})
	if !upd.UpdateMode() {
		t.Fatalf("tree should be in update mode")
	}
	a := upd.Root.Properties["a"]
	upd, err := upd.SetClear(a.ID, true)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(map[string]alloy.Transform{"a": {Clear: true}}, alloy.Extract(upd.Root).Transforms()); diff != "" {
		t.Fatalf("transforms (-want +got):\n%s", diff)
	}
}

func TestTree_AddAndRemoveItems(t *testing.T) {
	s := &js.Schema{Type: js.TypeArray, Items: &js.Schema{Type: js.TypeString}}
	tree := alloy.NewBuilder().Build(s, alloy.BuildOptions{Value: []any{"a", "b", "c"}})
	ids := []string{tree.Root.Items[0].ID, tree.Root.Items[1].ID, tree.Root.Items[2].ID}

	tree, err := tree.RemoveItem(ids[0])
	if err != nil {
		t.Fatal(err)
	}
	items := tree.Root.Items
	if len(items) != 2 || items[0].ID != ids[1] || items[0].Path != "0" || items[1].Path != "1" {
		t.Fatalf("unexpected items after removal: %+v", items)
	}

	tree, err = tree.AddItem(tree.Root.ID)
	if err != nil {
		t.Fatal(err)
	}
	added := tree.Root.Items[2]
	if added.Path != "2" || added.Value != nil {
		t.Fatalf("unexpected new item: %+v", added)
	}
	tree, _ = tree.SetValue(added.ID, "d")
	if diff := cmp.Diff([]any{"b", "c", "d"}, alloy.Extract(tree.Root).Value); diff != "" {
		t.Fatalf("extract (-want +got):\n%s", diff)
	}

	if _, err := tree.RemoveItem("missing"); !errors.Is(err, alloy.ErrNodeNotFound) {
		t.Fatalf("expected ErrNodeNotFound, got %v", err)
	}
	if _, err := tree.AddItem(added.ID); !errors.Is(err, alloy.ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}

func TestTree_RemoveItemRepathsNestedChildren(t *testing.T) {
	s := &js.Schema{Type: js.TypeObject, Properties: map[string]*js.Schema{
		"list": {Type: js.TypeArray, Items: &js.Schema{Type: js.TypeObject, Properties: map[string]*js.Schema{
			"name": {Type: js.TypeString},
		}}},
	}}
	tree := alloy.NewBuilder().Build(s, alloy.BuildOptions{Value: map[string]any{"list": []any{
		map[string]any{"name": "a"},
		map[string]any{"name": "b"},
	}}})
	first := tree.Root.Properties["list"].Items[0]
	tree, err := tree.RemoveItem(first.ID)
	if err != nil {
		t.Fatal(err)
	}
	name := tree.Root.Properties["list"].Items[0].Properties["name"]
	if name.Path != "list.0.name" || name.Value != "b" {
		t.Fatalf("nested child not re-pathed: %+v", name)
	}
}

func TestTree_AnalyticsProperties(t *testing.T) {
	tree := alloy.NewBuilder().Build(&js.Schema{Type: js.TypeObjectAnalytics}, alloy.BuildOptions{})
	root := tree.Root.ID
	tree, err := tree.AddProperty(root, "eVar3")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := tree.AddProperty(root, "eVar3"); err == nil {
		t.Fatalf("duplicate property must fail")
	}
	v := tree.Root.Properties["eVar3"]
	tree, _ = tree.SetValue(v.ID, "%campaign%")
	if diff := cmp.Diff(map[string]any{"eVar3": "%campaign%"}, alloy.Extract(tree.Root).Value); diff != "" {
		t.Fatalf("extract (-want +got):\n%s", diff)
	}

	tree, err = tree.RemoveProperty(root, "eVar3")
	if err != nil {
		t.Fatal(err)
	}
	if alloy.Extract(tree.Root).Value != nil {
		t.Fatalf("removed property still extracted")
	}
	if _, err := tree.RemoveProperty(root, "eVar3"); !errors.Is(err, alloy.ErrNodeNotFound) {
		t.Fatalf("expected ErrNodeNotFound, got %v", err)
	}
}

func TestTree_WalkDepths(t *testing.T) {
	tree := alloy.NewBuilder().Build(exampleSchema(), alloy.BuildOptions{})
	var got []string
	tree.Walk(func(n *alloy.Node, depth int) bool {
		got = append(got, n.Path+"@"+string(rune('0'+depth)))
		return true
	})
	want := []string{"@0", "a@1", "b@1", "b.c@2"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("walk (-want +got):\n%s", diff)
	}
}
