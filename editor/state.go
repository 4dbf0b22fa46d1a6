// Package editor holds the view state of the two-pane object editor: which
// nodes of the form-state tree are expanded, which one is selected, and the
// flattened rows the tree pane shows.
//
// State only stores node ids, so it survives tree edits and schema refreshes
// that keep ids.
package editor

import alloy "github.com/adobe/reactor-extension-alloy-sub003"

// DefaultDepth is the number of levels expanded when a tree is first shown.
const DefaultDepth = 1

// State is the expansion and selection state of one tree pane.
type State struct {
	expanded map[string]bool
	selected string
}

// New returns a state with the nodes above depth expanded and the root
// selected.
func New(root *alloy.Node, depth int) *State {
	s := &State{expanded: InitialExpanded(root, depth)}
	if root != nil {
		s.selected = root.ID
	}
	return s
}

// InitialExpanded returns the ids of the nodes shallower than depth that
// have children. A depth of 0 expands nothing.
func InitialExpanded(root *alloy.Node, depth int) map[string]bool {
	out := make(map[string]bool)
	var walk func(n *alloy.Node, d int)
	walk = func(n *alloy.Node, d int) {
		if n == nil || d >= depth || !n.HasChildren() {
			return
		}
		out[n.ID] = true
		for _, c := range n.Children() {
			walk(c, d+1)
		}
	}
	walk(root, 0)
	return out
}

// Expanded reports whether the node with the given id is expanded.
func (s *State) Expanded(id string) bool { return s.expanded[id] }

// Toggle expands a collapsed node and collapses an expanded one.
func (s *State) Toggle(id string) { s.SetExpanded(id, !s.expanded[id]) }

// SetExpanded expands or collapses one node.
func (s *State) SetExpanded(id string, expanded bool) {
	if s.expanded == nil {
		s.expanded = make(map[string]bool)
	}
	if expanded {
		s.expanded[id] = true
		return
	}
	delete(s.expanded, id)
}

// Selected returns the id of the selected node.
func (s *State) Selected() string { return s.selected }

// Select selects the node with the given id and expands its ancestors so
// the node becomes visible. It returns false when no such node exists.
func (s *State) Select(root *alloy.Node, id string) bool {
	trail := Breadcrumb(root, id)
	if trail == nil {
		return false
	}
	for _, n := range trail[:len(trail)-1] {
		s.SetExpanded(n.ID, true)
	}
	s.selected = id
	return true
}

// Breadcrumb returns the nodes from root down to the node with the given
// id, or nil when it is not reachable under the current strategies.
func Breadcrumb(root *alloy.Node, id string) []*alloy.Node {
	var trail []*alloy.Node
	var find func(n *alloy.Node) bool
	find = func(n *alloy.Node) bool {
		trail = append(trail, n)
		if n.ID == id {
			return true
		}
		for _, c := range n.Children() {
			if find(c) {
				return true
			}
		}
		trail = trail[:len(trail)-1]
		return false
	}
	if root == nil || !find(root) {
		return nil
	}
	return trail
}

// Row is one visible line of the tree pane.
type Row struct {
	Node        *alloy.Node
	Depth       int
	HasChildren bool
	Expanded    bool
}

// Rows flattens the visible part of the tree: the root and, below every
// expanded node, its children.
func (s *State) Rows(root *alloy.Node) []Row {
	var rows []Row
	var walk func(n *alloy.Node, depth int)
	walk = func(n *alloy.Node, depth int) {
		r := Row{Node: n, Depth: depth, HasChildren: n.HasChildren(), Expanded: s.expanded[n.ID]}
		rows = append(rows, r)
		if !r.HasChildren || !r.Expanded {
			return
		}
		for _, c := range n.Children() {
			walk(c, depth+1)
		}
	}
	if root != nil {
		walk(root, 0)
	}
	return rows
}

// SelectedIndex returns the index of the selected row, or -1.
func (s *State) SelectedIndex(rows []Row) int {
	for i, r := range rows {
		if r.Node.ID == s.selected {
			return i
		}
	}
	return -1
}

// Move moves the selection by delta rows, clamped to the visible rows.
func (s *State) Move(rows []Row, delta int) {
	if len(rows) == 0 {
		return
	}
	i := s.SelectedIndex(rows)
	if i < 0 {
		i = 0
	} else {
		i += delta
	}
	i = max(0, min(i, len(rows)-1))
	s.selected = rows[i].Node.ID
}

// ScrollTarget returns the offset of the first visible row that keeps the
// selected row inside a window of height rows starting at offset.
func (s *State) ScrollTarget(rows []Row, offset, height int) int {
	i := s.SelectedIndex(rows)
	if i < 0 || height <= 0 {
		return offset
	}
	switch {
	case i < offset:
		return i
	case i >= offset+height:
		return i - height + 1
	}
	return offset
}
