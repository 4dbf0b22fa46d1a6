package view

import (
	"context"
	"sync"

	"go.uber.org/zap"

	alloy "github.com/adobe/reactor-extension-alloy-sub003"
	"github.com/adobe/reactor-extension-alloy-sub003/i18n"
	"github.com/adobe/reactor-extension-alloy-sub003/internal/latest"
	js "github.com/adobe/reactor-extension-alloy-sub003/jsonschema"
)

// form is the schema-driven object editor shared by the views. It owns the
// form-state tree and the schema request of its sandbox.
type form struct {
	log        *zap.Logger
	builder    *alloy.Builder
	updateMode bool

	schemaSlot latest.Slot

	mu      sync.Mutex
	sandbox string
	ref     SchemaRef
	schema  *js.Schema
	tree    alloy.Tree
	pending *persisted
	err     error
}

// persisted is a stored value waiting for its schema to arrive.
type persisted struct {
	value      any
	transforms map[string]alloy.Transform
}

func newForm(log *zap.Logger, updateMode bool, opts ...alloy.BuilderOption) form {
	if log == nil {
		log = zap.NewNop()
	}
	return form{log: log, builder: alloy.NewBuilder(opts...), updateMode: updateMode}
}

// reset forgets the schema and tree and cancels the schema request in
// flight. Its result, if it still arrives, is never applied.
func (f *form) reset(sandbox string) {
	f.mu.Lock()
	f.sandbox = sandbox
	f.ref = SchemaRef{}
	f.schema = nil
	f.tree = alloy.Tree{}
	f.pending = nil
	f.err = nil
	f.mu.Unlock()
	f.schemaSlot.Cancel()
}

// loadSchema fetches ref from the current sandbox and builds the tree. A
// request superseded by a newer selection returns nil and changes nothing.
func (f *form) loadSchema(ctx context.Context, src SchemaSource, ref SchemaRef) error {
	f.mu.Lock()
	sandbox := f.sandbox
	f.mu.Unlock()

	err := latest.Do(ctx, &f.schemaSlot, func(ctx context.Context) (*js.Schema, error) {
		return src.FetchSchema(ctx, sandbox, ref.ID, ref.Version)
	}, func(s *js.Schema) {
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.sandbox != sandbox {
			return
		}
		f.apply(ref, s)
	})
	if alloy.IsAbort(err) {
		f.log.Debug("schema request superseded", zap.String("sandbox", sandbox), zap.String("schema", ref.ID))
		return nil
	}
	if err != nil {
		f.mu.Lock()
		f.err = err
		f.mu.Unlock()
		f.log.Warn("schema request failed", zap.String("schema", ref.ID), zap.Error(err))
		return err
	}
	return nil
}

// apply installs a freshly fetched schema. A refresh of the schema already
// shown keeps the edits of the current tree.
func (f *form) apply(ref SchemaRef, s *js.Schema) {
	switch {
	case f.tree.Root != nil && f.ref.ID == ref.ID:
		f.tree = f.tree.Rebuild(s)
	default:
		opt := alloy.BuildOptions{UpdateMode: f.updateMode}
		if f.pending != nil {
			opt.Value = f.pending.value
			opt.Transforms = f.pending.transforms
			f.pending = nil
		}
		f.tree = f.builder.Build(s, opt)
	}
	f.ref = ref
	f.schema = s
	f.err = nil
}

// Tree returns the current form state. Its Root is nil until a schema is
// loaded.
func (f *form) Tree() alloy.Tree {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tree
}

// Schema returns the reference of the loaded schema.
func (f *form) Schema() SchemaRef {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ref
}

// Edit replaces the tree by the result of fn.
func (f *form) Edit(fn func(alloy.Tree) (alloy.Tree, error)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.tree.Root == nil {
		return &alloy.ReportableError{Message: i18n.T(alloy.CodeEditorNotReady, nil)}
	}
	t, err := fn(f.tree)
	if err != nil {
		return err
	}
	f.tree = t
	return nil
}

// Err returns the last request failure worth reporting, if any.
func (f *form) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

// Errors validates the tree. Without a schema the editor is not ready and
// the result carries CodeEditorNotReady, so validation fails closed.
func (f *form) Errors() *alloy.Errors {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.schema == nil || f.tree.Root == nil {
		return &alloy.Errors{Code: alloy.CodeEditorNotReady, Message: i18n.T(alloy.CodeEditorNotReady, nil)}
	}
	return alloy.Validate(f.tree.Root)
}

func (f *form) extract() alloy.Extraction {
	f.mu.Lock()
	defer f.mu.Unlock()
	return alloy.Extract(f.tree.Root)
}
