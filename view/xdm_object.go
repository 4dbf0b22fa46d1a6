package view

import (
	"context"
	"errors"

	"go.uber.org/zap"

	alloy "github.com/adobe/reactor-extension-alloy-sub003"
	"github.com/adobe/reactor-extension-alloy-sub003/internal/latest"
	"github.com/adobe/reactor-extension-alloy-sub003/registry"
)

// ErrNoSandbox is returned when the user has access to no sandbox.
var ErrNoSandbox = errors.New("view: no sandbox available")

// XDMObject is the view of the XDM object data element. Its settings are
//
//	{"sandbox": {"name": ...}, "schema": {"id": ..., "version": ...}, "data": {...}}
type XDMObject struct {
	src SchemaSource
	form

	listSlot  latest.Slot
	sandboxes []registry.Sandbox
}

var _ Bridge = (*XDMObject)(nil)

// NewXDMObject returns a view loading sandboxes and schemas from src.
func NewXDMObject(src SchemaSource, log *zap.Logger, opts ...alloy.BuilderOption) *XDMObject {
	return &XDMObject{src: src, form: newForm(log, false, opts...)}
}

// Init loads the sandboxes and, when the settings name one, the schema with
// the persisted data.
func (v *XDMObject) Init(ctx context.Context, info InitInfo) error {
	sandboxes, err := v.src.FetchSandboxes(ctx)
	if err != nil {
		return err
	}
	if len(sandboxes) == 0 {
		return &alloy.ReportableError{Message: "You do not have access to any sandbox", Originating: ErrNoSandbox}
	}
	name := stringAt(info.Settings, "sandbox", "name")
	if name == "" {
		name = defaultSandbox(sandboxes)
	}

	v.reset(name)
	v.mu.Lock()
	v.sandboxes = sandboxes
	ref := schemaRefFrom(info.Settings)
	if ref.ID != "" {
		v.pending = &persisted{value: info.Settings["data"]}
	}
	v.mu.Unlock()

	if ref.ID == "" {
		return nil
	}
	return v.loadSchema(ctx, v.src, ref)
}

func defaultSandbox(sandboxes []registry.Sandbox) string {
	for _, s := range sandboxes {
		if s.IsDefault {
			return s.Name
		}
	}
	return sandboxes[0].Name
}

// Sandboxes returns the sandboxes loaded by Init.
func (v *XDMObject) Sandboxes() []registry.Sandbox {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.sandboxes
}

// Sandbox returns the selected sandbox.
func (v *XDMObject) Sandbox() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.sandbox
}

// SelectSandbox switches sandbox. The selected schema belongs to the old
// sandbox, so it is dropped and any schema request in flight is cancelled.
func (v *XDMObject) SelectSandbox(name string) {
	v.listSlot.Cancel()
	v.reset(name)
}

// Schemas lists the schemas of the selected sandbox. A listing superseded
// by a newer one returns latest.ErrSuperseded.
func (v *XDMObject) Schemas(ctx context.Context, search, start string) (registry.Page[registry.SchemaMeta], error) {
	sandbox := v.Sandbox()
	var page registry.Page[registry.SchemaMeta]
	err := latest.Do(ctx, &v.listSlot, func(ctx context.Context) (registry.Page[registry.SchemaMeta], error) {
		return v.src.FetchSchemasMeta(ctx, sandbox, search, start)
	}, func(p registry.Page[registry.SchemaMeta]) { page = p })
	return page, err
}

// SelectSchema loads ref and builds an empty tree for it.
func (v *XDMObject) SelectSchema(ctx context.Context, ref SchemaRef) error {
	v.mu.Lock()
	v.pending = nil
	v.mu.Unlock()
	return v.loadSchema(ctx, v.src, ref)
}

// GetSettings returns the settings to persist.
func (v *XDMObject) GetSettings() (map[string]any, error) {
	out := v.extract()
	v.mu.Lock()
	defer v.mu.Unlock()
	settings := map[string]any{"sandbox": map[string]any{"name": v.sandbox}}
	if v.ref.ID != "" {
		settings["schema"] = v.ref.settings()
	}
	if out.Value != nil {
		settings["data"] = out.Value
	}
	return settings, nil
}

// Validate reports whether the settings may be saved.
func (v *XDMObject) Validate() bool {
	return v.Errors().Empty()
}
