package alloy

// Extraction is the persisted form of a tree: the plain value plus the
// per-path presence flags that carry the "clear" instructions.
type Extraction struct {
	// Value is nil when nothing is set anywhere in the tree.
	Value    any
	Presence PresenceMap
}

// Set reports whether the root produced a value.
func (e Extraction) Set() bool { return e.Presence.Set("") }

// Transforms returns the transforms to persist next to Value.
func (e Extraction) Transforms() map[string]Transform { return e.Presence.Transforms() }

// Extract turns the tree under n back into a plain JSON value. Empty
// branches are omitted. Clear transforms of nodes in update mode are
// reported through Presence even when the node has no value.
func Extract(n *Node) Extraction {
	pm := PresenceMap{}
	if n == nil {
		return Extraction{Presence: pm}
	}
	v, ok := extractNode(n, pm)
	if !ok {
		v = nil
	}
	return Extraction{Value: v, Presence: pm}
}

func extractNode(n *Node, pm PresenceMap) (any, bool) {
	if n.UpdateMode && n.Transform.Clear {
		pm[n.Path] |= PresenceCleared
	}
	v, ok := helperFor(n.Kind).extract(n, pm)
	if ok {
		pm[n.Path] |= PresenceSet
	}
	return v, ok
}
