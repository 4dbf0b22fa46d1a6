package editor_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	alloy "github.com/adobe/reactor-extension-alloy-sub003"
	"github.com/adobe/reactor-extension-alloy-sub003/editor"
	js "github.com/adobe/reactor-extension-alloy-sub003/jsonschema"
)

// deepTree is {a: string, b: {c: {d: string}}, list: [string, string]}.
func deepTree(t *testing.T) alloy.Tree {
	t.Helper()
	s := &js.Schema{Type: js.TypeObject, Properties: map[string]*js.Schema{
		"a": {Type: js.TypeString},
		"b": {Type: js.TypeObject, Properties: map[string]*js.Schema{
			"c": {Type: js.TypeObject, Properties: map[string]*js.Schema{
				"d": {Type: js.TypeString},
			}},
		}},
		"list": {Type: js.TypeArray, Items: &js.Schema{Type: js.TypeString}},
	}}
	return alloy.NewBuilder().Build(s, alloy.BuildOptions{Value: map[string]any{"list": []any{"x", "y"}}})
}

func paths(rows []editor.Row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Node.Path
	}
	return out
}

func byPath(tr alloy.Tree, path string) *alloy.Node {
	var found *alloy.Node
	tr.Walk(func(n *alloy.Node, _ int) bool {
		if n.Path == path {
			found = n
			return false
		}
		return true
	})
	return found
}

func TestInitialExpanded(t *testing.T) {
	tr := deepTree(t)
	if got := editor.InitialExpanded(tr.Root, 0); len(got) != 0 {
		t.Fatalf("depth 0 expands nothing, got %v", got)
	}
	got := editor.InitialExpanded(tr.Root, 2)
	want := map[string]bool{
		tr.Root.ID:            true,
		byPath(tr, "b").ID:    true,
		byPath(tr, "list").ID: true,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("expanded (-want +got):\n%s", diff)
	}
}

func TestRows_FollowExpansion(t *testing.T) {
	tr := deepTree(t)
	st := editor.New(tr.Root, editor.DefaultDepth)
	if diff := cmp.Diff([]string{"", "a", "b", "list"}, paths(st.Rows(tr.Root))); diff != "" {
		t.Fatalf("rows (-want +got):\n%s", diff)
	}
	st.Toggle(byPath(tr, "list").ID)
	rows := st.Rows(tr.Root)
	if diff := cmp.Diff([]string{"", "a", "b", "list", "list.0", "list.1"}, paths(rows)); diff != "" {
		t.Fatalf("rows (-want +got):\n%s", diff)
	}
	if rows[4].Depth != 2 || rows[1].HasChildren || !rows[3].Expanded {
		t.Fatalf("unexpected row metadata: %+v", rows[3:5])
	}
	st.Toggle(tr.Root.ID)
	if got := st.Rows(tr.Root); len(got) != 1 {
		t.Fatalf("collapsed root shows only itself, got %v", paths(got))
	}
}

func TestSelect_ExpandsAncestors(t *testing.T) {
	tr := deepTree(t)
	st := editor.New(tr.Root, 0)
	d := byPath(tr, "b.c.d")
	if !st.Select(tr.Root, d.ID) {
		t.Fatalf("select failed")
	}
	if st.Selected() != d.ID {
		t.Fatalf("selection not stored")
	}
	for _, p := range []string{"", "b", "b.c"} {
		if !st.Expanded(byPath(tr, p).ID) {
			t.Fatalf("ancestor %q not expanded", p)
		}
	}
	if st.Expanded(d.ID) {
		t.Fatalf("the selected leaf itself is not expanded")
	}
	if st.Select(tr.Root, "missing") {
		t.Fatalf("unknown id must not be selectable")
	}
	if st.Selected() != d.ID {
		t.Fatalf("failed select changed the selection")
	}
}

func TestBreadcrumb(t *testing.T) {
	tr := deepTree(t)
	trail := editor.Breadcrumb(tr.Root, byPath(tr, "b.c.d").ID)
	var got []string
	for _, n := range trail {
		got = append(got, n.Name())
	}
	if diff := cmp.Diff([]string{"", "b", "c", "d"}, got); diff != "" {
		t.Fatalf("breadcrumb (-want +got):\n%s", diff)
	}
	if editor.Breadcrumb(nil, "x") != nil {
		t.Fatalf("nil root has no breadcrumb")
	}
}

func TestMoveAndScrollTarget(t *testing.T) {
	tr := deepTree(t)
	st := editor.New(tr.Root, 3)
	rows := st.Rows(tr.Root)
	if len(rows) != 8 {
		t.Fatalf("expected 8 rows, got %v", paths(rows))
	}
	st.Move(rows, 100)
	if st.SelectedIndex(rows) != len(rows)-1 {
		t.Fatalf("move must clamp to the last row")
	}
	if got := st.ScrollTarget(rows, 0, 3); got != 5 {
		t.Fatalf("scroll down: got %d", got)
	}
	st.Move(rows, -100)
	if st.SelectedIndex(rows) != 0 {
		t.Fatalf("move must clamp to the first row")
	}
	if got := st.ScrollTarget(rows, 5, 3); got != 0 {
		t.Fatalf("scroll up: got %d", got)
	}
	if got := st.ScrollTarget(rows, 0, 3); got != 0 {
		t.Fatalf("visible row keeps the offset, got %d", got)
	}
}
