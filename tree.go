package alloy

import (
	"fmt"
	"strconv"

	js "github.com/adobe/reactor-extension-alloy-sub003/jsonschema"
)

// Tree is an immutable form-state tree. Edits return a new Tree that shares
// every untouched subtree with the receiver.
type Tree struct {
	Root       *Node
	b          *Builder
	updateMode bool
}

// UpdateMode reports whether the tree edits an existing record.
func (t Tree) UpdateMode() bool { return t.updateMode }

// Find returns the node with the given id, or nil.
func (t Tree) Find(id string) *Node {
	var found *Node
	t.Walk(func(n *Node, _ int) bool {
		if n.ID == id {
			found = n
			return false
		}
		return true
	})
	return found
}

// Walk visits every node reachable under the current strategies, depth
// first, in display order. Returning false from fn stops the walk.
func (t Tree) Walk(fn func(n *Node, depth int) bool) {
	if t.Root == nil {
		return
	}
	walk(t.Root, 0, fn)
}

func walk(n *Node, depth int, fn func(*Node, int) bool) bool {
	if !fn(n, depth) {
		return false
	}
	for _, c := range n.Children() {
		if !walk(c, depth+1, fn) {
			return false
		}
	}
	return true
}

// Rebuild builds a tree for a refreshed schema, keeping the edits of t.
func (t Tree) Rebuild(s *js.Schema) Tree {
	b := t.b
	if b == nil {
		b = NewBuilder()
	}
	return b.Build(s, BuildOptions{UpdateMode: t.updateMode, Existing: t.Root})
}

// SetValue stores v as the literal value of a WHOLE node.
func (t Tree) SetValue(id string, v any) (Tree, error) {
	return t.update(id, func(n *Node) (*Node, error) {
		if n.Strategy != StrategyWhole {
			return nil, fmt.Errorf("%w: %s uses parts", ErrUnsupported, n.Path)
		}
		cp := n.shallow()
		cp.Value = v
		return cp, nil
	})
}

// SetStrategy switches how a composite node is populated. Data entered
// under the previous strategy stays in memory.
func (t Tree) SetStrategy(id string, s PopulationStrategy) (Tree, error) {
	return t.update(id, func(n *Node) (*Node, error) {
		if s == StrategyParts && !n.PartsSupported {
			return nil, fmt.Errorf("%w: %s cannot be populated by parts", ErrUnsupported, n.Path)
		}
		cp := n.shallow()
		cp.Strategy = s
		if s == StrategyParts && !cp.partsBuilt {
			helperFor(cp.Kind).buildParts(t.ctx(), cp, nil)
		}
		return cp, nil
	})
}

// SetClear toggles the "clear existing value" transform.
func (t Tree) SetClear(id string, clear bool) (Tree, error) {
	return t.update(id, func(n *Node) (*Node, error) {
		if !n.UpdateMode {
			return nil, fmt.Errorf("%w: clearing requires update mode", ErrUnsupported)
		}
		cp := n.shallow()
		cp.Transform.Clear = clear
		return cp, nil
	})
}

// AddItem appends an empty item to an array node populated by parts.
func (t Tree) AddItem(id string) (Tree, error) {
	return t.update(id, func(n *Node) (*Node, error) {
		if n.Kind != KindArray || n.Strategy != StrategyParts {
			return nil, fmt.Errorf("%w: %s is not an array populated by parts", ErrUnsupported, n.Path)
		}
		cp := n.shallow()
		cp.Items = append(cp.Items, t.ctx().node(n.Schema.Items, nil, itemPath(n.Path, len(n.Items))))
		return cp, nil
	})
}

// RemoveItem removes the array item with the given id. Items after it move
// up one index; their ids stay the same.
func (t Tree) RemoveItem(itemID string) (Tree, error) {
	parent := t.parentOf(itemID)
	if parent == nil || parent.Kind != KindArray {
		return t, fmt.Errorf("%w: %s", ErrNodeNotFound, itemID)
	}
	return t.update(parent.ID, func(n *Node) (*Node, error) {
		cp := n.shallow()
		cp.Items = cp.Items[:0]
		for _, item := range n.Items {
			if item.ID == itemID {
				continue
			}
			cp.Items = append(cp.Items, repath(item, itemPath(n.Path, len(cp.Items))))
		}
		return cp, nil
	})
}

// AddProperty adds an analytics variable to an analytics node.
func (t Tree) AddProperty(id, name string) (Tree, error) {
	return t.update(id, func(n *Node) (*Node, error) {
		if n.Kind != KindObjectAnalytics || n.Strategy != StrategyParts {
			return nil, fmt.Errorf("%w: %s does not accept new properties", ErrUnsupported, n.Path)
		}
		if _, exists := n.Properties[name]; exists {
			return nil, fmt.Errorf("alloy: property %q already exists", name)
		}
		cp := n.shallow()
		if cp.Properties == nil {
			cp.Properties = make(map[string]*Node)
		}
		cp.Properties[name] = t.ctx().analyticsVariable(n, name, nil)
		return cp, nil
	})
}

// RemoveProperty removes an analytics variable from an analytics node.
func (t Tree) RemoveProperty(id, name string) (Tree, error) {
	return t.update(id, func(n *Node) (*Node, error) {
		if n.Kind != KindObjectAnalytics {
			return nil, fmt.Errorf("%w: %s does not remove properties", ErrUnsupported, n.Path)
		}
		if _, exists := n.Properties[name]; !exists {
			return nil, fmt.Errorf("%w: %s.%s", ErrNodeNotFound, n.Path, name)
		}
		cp := n.shallow()
		delete(cp.Properties, name)
		return cp, nil
	})
}

func (t Tree) ctx() *buildCtx {
	b := t.b
	if b == nil {
		b = NewBuilder()
	}
	return b.ctx(t.updateMode, nil)
}

// update replaces the node with the given id by fn's result, copying every
// ancestor on the way up.
func (t Tree) update(id string, fn func(*Node) (*Node, error)) (Tree, error) {
	if t.Root == nil {
		return t, fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	root, found, err := replace(t.Root, id, fn)
	if err != nil {
		return t, err
	}
	if !found {
		return t, fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	t.Root = root
	return t, nil
}

func replace(n *Node, id string, fn func(*Node) (*Node, error)) (*Node, bool, error) {
	if n.ID == id {
		r, err := fn(n)
		return r, true, err
	}
	for k, c := range n.Properties {
		r, found, err := replace(c, id, fn)
		if !found {
			continue
		}
		if err != nil {
			return nil, true, err
		}
		cp := n.shallow()
		cp.Properties[k] = r
		return cp, true, nil
	}
	for i, c := range n.Items {
		r, found, err := replace(c, id, fn)
		if !found {
			continue
		}
		if err != nil {
			return nil, true, err
		}
		cp := n.shallow()
		cp.Items[i] = r
		return cp, true, nil
	}
	return n, false, nil
}

// parentOf searches every built child, including those hidden by a WHOLE
// strategy.
func (t Tree) parentOf(id string) *Node {
	var find func(n *Node) *Node
	find = func(n *Node) *Node {
		for _, c := range n.Properties {
			if c.ID == id {
				return n
			}
			if p := find(c); p != nil {
				return p
			}
		}
		for _, c := range n.Items {
			if c.ID == id {
				return n
			}
			if p := find(c); p != nil {
				return p
			}
		}
		return nil
	}
	if t.Root == nil {
		return nil
	}
	return find(t.Root)
}

// repath returns a copy of the subtree rooted at n moved to path.
func repath(n *Node, path string) *Node {
	if n.Path == path {
		return n
	}
	cp := n.shallow()
	cp.Path = path
	for k, c := range cp.Properties {
		cp.Properties[k] = repath(c, childPath(path, k))
	}
	for i, c := range cp.Items {
		cp.Items[i] = repath(c, childPath(path, strconv.Itoa(i)))
	}
	return cp
}
