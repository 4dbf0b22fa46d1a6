package alloy

import js "github.com/adobe/reactor-extension-alloy-sub003/jsonschema"

// Builder creates form-state trees. Each Builder owns its id generator, so
// ids never leak between builders (or tests).
type Builder struct {
	ids  IDGenerator
	auto map[string]AutoPopulation
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithIDGenerator replaces the default per-builder counter.
func WithIDGenerator(g IDGenerator) BuilderOption {
	return func(b *Builder) {
		if g != nil {
			b.ids = g
		}
	}
}

// WithAutoPopulation replaces DefaultAutoPopulation.
func WithAutoPopulation(table map[string]AutoPopulation) BuilderOption {
	return func(b *Builder) { b.auto = table }
}

// NewBuilder returns a Builder using a fresh counter and DefaultAutoPopulation.
func NewBuilder(opts ...BuilderOption) *Builder {
	b := &Builder{ids: NewCounterIDs(""), auto: DefaultAutoPopulation}
	for _, o := range opts {
		o(b)
	}
	return b
}

// BuildOptions are the inputs of one tree build.
type BuildOptions struct {
	// Value is the previously persisted value, if any.
	Value any
	// UpdateMode enables the "clear existing value" transform.
	UpdateMode bool
	// Transforms are the persisted transforms keyed by node path.
	Transforms map[string]Transform
	// Existing is the tree being replaced. Edits it holds survive where the
	// schema still describes the same kind of node.
	Existing *Node
}

// Build creates a tree for schema s.
func (b *Builder) Build(s *js.Schema, opt BuildOptions) Tree {
	c := b.ctx(opt.UpdateMode, opt.Transforms)
	root := c.node(s, opt.Value, "")
	if opt.Existing != nil {
		root = c.carryOver(opt.Existing, root)
	}
	return Tree{Root: root, b: b, updateMode: opt.UpdateMode}
}

func (b *Builder) ctx(updateMode bool, transforms map[string]Transform) *buildCtx {
	return &buildCtx{ids: b.ids, auto: b.auto, updateMode: updateMode, transforms: transforms}
}

// buildCtx carries the per-build inputs through the recursion.
type buildCtx struct {
	ids        IDGenerator
	auto       map[string]AutoPopulation
	updateMode bool
	transforms map[string]Transform
}

// node allocates a node for schema s at path and lets the type helper fill
// it from value.
func (c *buildCtx) node(s *js.Schema, value any, path string) *Node {
	if s == nil {
		s = &js.Schema{}
	}
	n := &Node{
		ID:         c.ids.NextID(),
		Schema:     s,
		Kind:       KindOf(s),
		Path:       path,
		UpdateMode: c.updateMode,
	}
	if ap, ok := c.auto[path]; ok {
		n.AutoPopulationSource = ap.Source
		n.ContextKey = ap.ContextKey
	}
	if t, ok := c.transforms[path]; ok {
		n.Transform = t
	}
	helperFor(n.Kind).populate(c, n, value)
	return n
}
