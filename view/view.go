// Package view implements the component views of the extension: the code
// behind the configuration forms the host embeds through the extension
// bridge. A view is initialized from persisted settings, edited through its
// form-state tree and asked for settings and validity when the user saves.
package view

import (
	"context"

	alloy "github.com/adobe/reactor-extension-alloy-sub003"
	js "github.com/adobe/reactor-extension-alloy-sub003/jsonschema"
	"github.com/adobe/reactor-extension-alloy-sub003/registry"
)

// Bridge is the contract between a view and the host that embeds it.
type Bridge interface {
	Init(ctx context.Context, info InitInfo) error
	GetSettings() (map[string]any, error)
	Validate() bool
}

// InitInfo is what the host hands to a view on load.
type InitInfo struct {
	// Settings are the persisted settings of the component, nil when new.
	Settings          map[string]any
	ExtensionSettings map[string]any
	PropertySettings  map[string]any
	// PropertyID identifies the tags property the component belongs to.
	PropertyID string
}

// SchemaSource loads sandboxes and schemas.
type SchemaSource interface {
	FetchSandboxes(ctx context.Context) ([]registry.Sandbox, error)
	FetchSchemasMeta(ctx context.Context, sandbox, search, start string) (registry.Page[registry.SchemaMeta], error)
	FetchSchema(ctx context.Context, sandbox, id, version string) (*js.Schema, error)
}

// DataElementSource loads data elements of a property.
type DataElementSource interface {
	FetchDataElements(ctx context.Context, propertyID, search, page string) (registry.Page[registry.DataElement], error)
	FetchDataElement(ctx context.Context, id string) (registry.DataElementDetail, error)
}

var (
	_ SchemaSource      = (*registry.Client)(nil)
	_ DataElementSource = (*registry.Client)(nil)
)

// SchemaRef identifies one version of a schema.
type SchemaRef struct {
	ID      string
	Version string
}

func (r SchemaRef) settings() map[string]any {
	return map[string]any{"id": r.ID, "version": r.Version}
}

func schemaRefFrom(settings map[string]any) SchemaRef {
	return SchemaRef{
		ID:      stringAt(settings, "schema", "id"),
		Version: stringAt(settings, "schema", "version"),
	}
}

// stringAt reads a nested string from decoded JSON settings.
func stringAt(m map[string]any, keys ...string) string {
	var cur any = m
	for _, k := range keys {
		obj, ok := cur.(map[string]any)
		if !ok {
			return ""
		}
		cur = obj[k]
	}
	s, _ := cur.(string)
	return s
}

// TransformsFrom decodes persisted transforms ({"a.b": {"clear": true}}).
func TransformsFrom(v any) map[string]alloy.Transform {
	m, ok := v.(map[string]any)
	if !ok || len(m) == 0 {
		return nil
	}
	out := make(map[string]alloy.Transform, len(m))
	for path, t := range m {
		obj, _ := t.(map[string]any)
		clear, _ := obj["clear"].(bool)
		out[path] = alloy.Transform{Clear: clear}
	}
	return out
}

// TransformsSettings renders transforms the way they are persisted.
func TransformsSettings(ts map[string]alloy.Transform) map[string]any {
	if len(ts) == 0 {
		return nil
	}
	out := make(map[string]any, len(ts))
	for path, t := range ts {
		out[path] = map[string]any{"clear": t.Clear}
	}
	return out
}
