package alloy

type objectHelper struct{}

func (h objectHelper) populate(c *buildCtx, n *Node, value any) {
	n.PartsSupported = n.Schema != nil && len(n.Schema.Properties) > 0
	m, isMap := value.(map[string]any)
	if !n.PartsSupported || (value != nil && !isMap) {
		n.Strategy = StrategyWhole
		n.Value = value
		return
	}
	n.Strategy = StrategyParts
	h.buildParts(c, n, m)
}

func (objectHelper) buildParts(c *buildCtx, n *Node, value any) {
	if !n.PartsSupported {
		return
	}
	m, _ := value.(map[string]any)
	n.Properties = make(map[string]*Node, len(n.Schema.Properties))
	for _, name := range n.Schema.PropertyNames() {
		n.Properties[name] = c.node(n.Schema.Properties[name], m[name], childPath(n.Path, name))
	}
	n.partsBuilt = true
}

func (objectHelper) validate(n *Node, confirm func()) *Errors {
	if n.Strategy == StrategyWhole {
		return wholeValue(n, confirm)
	}
	errs := &Errors{}
	populated := false
	childPopulated := make(map[string]bool, len(n.Properties))
	for _, name := range sortedKeys(n.Properties) {
		e := validateNode(n.Properties[name], func() {
			childPopulated[name] = true
			populated = true
			confirm()
		})
		errs.setProperty(name, e)
	}
	// Required children are enforced at the root and inside objects the
	// user started to fill in; fields filled by the runtime are exempt.
	if n.Path == "" || populated {
		for _, name := range n.Schema.Required {
			child, ok := n.Properties[name]
			if !ok || childPopulated[name] || child.AutoPopulationSource != AutoPopulationNone {
				continue
			}
			if errs.Properties[name] == nil {
				errs.setProperty(name, newErrors(CodeRequired, nil))
			}
		}
	}
	return errs.orNil()
}

func (objectHelper) extract(n *Node, pm PresenceMap) (any, bool) {
	if n.Strategy == StrategyWhole {
		return leaf{}.extract(n, pm)
	}
	out := make(map[string]any, len(n.Properties))
	for _, name := range sortedKeys(n.Properties) {
		if v, ok := extractNode(n.Properties[name], pm); ok {
			out[name] = v
		}
	}
	if len(out) == 0 {
		return nil, false
	}
	return out, true
}

type arrayHelper struct{}

func (h arrayHelper) populate(c *buildCtx, n *Node, value any) {
	n.PartsSupported = n.Schema != nil && n.Schema.Items != nil
	items, isSlice := value.([]any)
	if !n.PartsSupported || (value != nil && !isSlice) {
		n.Strategy = StrategyWhole
		n.Value = value
		return
	}
	n.Strategy = StrategyParts
	h.buildParts(c, n, items)
}

func (arrayHelper) buildParts(c *buildCtx, n *Node, value any) {
	if !n.PartsSupported {
		return
	}
	items, _ := value.([]any)
	n.Items = make([]*Node, 0, len(items))
	for i, v := range items {
		n.Items = append(n.Items, c.node(n.Schema.Items, v, itemPath(n.Path, i)))
	}
	n.partsBuilt = true
}

func (arrayHelper) validate(n *Node, confirm func()) *Errors {
	if n.Strategy == StrategyWhole {
		return wholeValue(n, confirm)
	}
	errs := &Errors{}
	for i, item := range n.Items {
		errs.setItem(i, validateNode(item, confirm))
	}
	return errs.orNil()
}

func (arrayHelper) extract(n *Node, pm PresenceMap) (any, bool) {
	if n.Strategy == StrategyWhole {
		return leaf{}.extract(n, pm)
	}
	var out []any
	for _, item := range n.Items {
		if v, ok := extractNode(item, pm); ok {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return nil, false
	}
	return out, true
}
