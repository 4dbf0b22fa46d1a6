package alloy

// carryOver merges the user's edits held by existing into fresh, a tree just
// built for a refreshed schema. It returns a new tree and leaves both inputs
// untouched.
//
// For every node whose kind is unchanged, the id, population strategy,
// value and transform come from existing. Children are merged by property
// name and item index; properties that disappeared from the schema are
// dropped and new ones come from fresh. Nodes whose kind changed are taken
// from fresh as they are.
func (c *buildCtx) carryOver(existing, fresh *Node) *Node {
	if existing == nil || fresh == nil || existing.Kind != fresh.Kind {
		return fresh
	}
	out := fresh.shallow()
	out.ID = existing.ID
	out.Value = existing.Value
	out.Transform = existing.Transform
	if fresh.PartsSupported {
		out.Strategy = existing.Strategy
	}

	switch fresh.Kind {
	case KindObject:
		if existing.partsBuilt && fresh.PartsSupported {
			props := make(map[string]*Node, len(fresh.Schema.Properties))
			for _, name := range fresh.Schema.PropertyNames() {
				f := fresh.Properties[name]
				if f == nil {
					f = c.node(fresh.Schema.Properties[name], nil, childPath(out.Path, name))
				}
				props[name] = c.carryOver(existing.Properties[name], f)
			}
			out.Properties = props
			out.partsBuilt = true
		}
	case KindArray:
		if existing.partsBuilt && fresh.PartsSupported {
			items := make([]*Node, len(existing.Items))
			for i, e := range existing.Items {
				var f *Node
				if i < len(fresh.Items) {
					f = fresh.Items[i]
				} else {
					f = c.node(fresh.Schema.Items, nil, itemPath(out.Path, i))
				}
				items[i] = c.carryOver(e, f)
			}
			out.Items = items
			out.partsBuilt = true
		}
	case KindObjectAnalytics:
		if existing.partsBuilt {
			props := make(map[string]*Node, len(existing.Properties))
			for k, v := range existing.Properties {
				props[k] = v
			}
			out.Properties = props
			out.partsBuilt = true
		}
	}

	if out.Strategy == StrategyParts && !out.partsBuilt {
		helperFor(out.Kind).buildParts(c, out, nil)
	}
	return out
}
