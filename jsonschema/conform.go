package jsonschema

import (
	"fmt"

	json "github.com/goccy/go-json"
	jsv "github.com/santhosh-tekuri/jsonschema/v6"
)

const conformURL = "https://alloy.local/schemas/node.json"

// Conform checks a decoded JSON value against the fragment. The editor-only
// types are checked as plain objects.
func (s *Schema) Conform(v any) error {
	if s == nil {
		return nil
	}
	doc, err := s.standardDocument()
	if err != nil {
		return err
	}
	c := jsv.NewCompiler()
	c.DefaultDraft(jsv.Draft2020)
	if err := c.AddResource(conformURL, doc); err != nil {
		return fmt.Errorf("jsonschema: add resource: %w", err)
	}
	compiled, err := c.Compile(conformURL)
	if err != nil {
		return fmt.Errorf("jsonschema: compile: %w", err)
	}
	return compiled.Validate(v)
}

// standardDocument renders the fragment as a plain JSON Schema map.
func (s *Schema) standardDocument() (map[string]any, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("jsonschema: marshal: %w", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("jsonschema: unmarshal: %w", err)
	}
	rewriteEditorTypes(doc)
	return doc, nil
}

func rewriteEditorTypes(node map[string]any) {
	switch node["type"] {
	case TypeObjectJSON, TypeObjectAnalytics:
		node["type"] = TypeObject
	}
	if pm, ok := node["properties"].(map[string]any); ok {
		for _, raw := range pm {
			if sch, ok := raw.(map[string]any); ok {
				rewriteEditorTypes(sch)
			}
		}
	}
	if it, ok := node["items"].(map[string]any); ok {
		rewriteEditorTypes(it)
	}
}
