package alloy

import (
	"strconv"

	js "github.com/adobe/reactor-extension-alloy-sub003/jsonschema"
)

// PopulationStrategy says how a composite field is filled in.
type PopulationStrategy int

const (
	// StrategyWhole means the user supplies the entire value as one literal,
	// usually a data element token.
	StrategyWhole PopulationStrategy = iota
	// StrategyParts means the user populates the declared children one by one.
	StrategyParts
)

func (s PopulationStrategy) String() string {
	if s == StrategyParts {
		return "parts"
	}
	return "whole"
}

// AutoPopulationSource tells whether the runtime fills a field on its own.
// It is informational only.
type AutoPopulationSource int

const (
	AutoPopulationNone AutoPopulationSource = iota
	AutoPopulationAlways
	AutoPopulationContext
	AutoPopulationCommand
)

func (a AutoPopulationSource) String() string {
	switch a {
	case AutoPopulationAlways:
		return "always"
	case AutoPopulationContext:
		return "context"
	case AutoPopulationCommand:
		return "command"
	default:
		return "none"
	}
}

// Transform is the per-field instruction applied before new data is merged
// into an existing record.
type Transform struct {
	Clear bool `json:"clear"`
}

// Node is one schema-described field of the form state. Nodes are never
// mutated after they are published in a Tree; edits produce new nodes and
// share the untouched ones.
type Node struct {
	ID     string
	Schema *js.Schema
	Kind   Kind
	// Path is the dot-delimited logical path from the root ("" at the root).
	Path string

	AutoPopulationSource AutoPopulationSource
	ContextKey           string

	PartsSupported bool
	Strategy       PopulationStrategy
	// Value is used under StrategyWhole and by leaf nodes.
	Value any

	Properties map[string]*Node
	Items      []*Node

	UpdateMode bool
	Transform  Transform

	// partsBuilt is set once the structured children exist, so a later
	// switch back to PARTS finds the data entered before.
	partsBuilt bool
}

// Name is the last segment of the node path.
func (n *Node) Name() string {
	for i := len(n.Path) - 1; i >= 0; i-- {
		if n.Path[i] == '.' {
			return n.Path[i+1:]
		}
	}
	return n.Path
}

// HasChildren reports whether the node currently shows structured children.
func (n *Node) HasChildren() bool {
	return n.PartsSupported && n.Strategy == StrategyParts && (len(n.Properties) > 0 || len(n.Items) > 0)
}

// Children returns the structured children in display order: properties by
// name, then array items by index.
func (n *Node) Children() []*Node {
	if !n.PartsSupported || n.Strategy != StrategyParts {
		return nil
	}
	out := make([]*Node, 0, len(n.Properties)+len(n.Items))
	for _, k := range sortedKeys(n.Properties) {
		out = append(out, n.Properties[k])
	}
	out = append(out, n.Items...)
	return out
}

// shallow returns a copy of n whose child containers can be replaced
// without touching n.
func (n *Node) shallow() *Node {
	c := *n
	if n.Properties != nil {
		c.Properties = make(map[string]*Node, len(n.Properties))
		for k, v := range n.Properties {
			c.Properties[k] = v
		}
	}
	if n.Items != nil {
		c.Items = append([]*Node(nil), n.Items...)
	}
	return &c
}

func childPath(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "." + name
}

func itemPath(parent string, i int) string {
	return childPath(parent, strconv.Itoa(i))
}
