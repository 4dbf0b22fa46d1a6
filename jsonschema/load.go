package jsonschema

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Diag carries non-fatal findings collected while loading a schema.
type Diag interface {
	HasWarnings() bool
	Warnings() []string
}

type simpleDiag struct{ ws []string }

func (d *simpleDiag) HasWarnings() bool        { return len(d.ws) > 0 }
func (d *simpleDiag) Warnings() []string       { return append([]string(nil), d.ws...) }
func (d *simpleDiag) warnf(f string, a ...any) { d.ws = append(d.ws, fmt.Sprintf(f, a...)) }

// Parse decodes a JSON schema document, expanding local $refs.
func Parse(data []byte) (*Schema, Diag, error) {
	d := &simpleDiag{}
	var root map[string]any
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, d, fmt.Errorf("jsonschema: invalid JSON: %w", err)
	}
	s, err := FromMap(root, d)
	return s, d, err
}

// ParseYAML decodes a YAML schema document. The first document of a
// multi-document stream is used.
func ParseYAML(data []byte) (*Schema, Diag, error) {
	d := &simpleDiag{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	var node any
	if err := dec.Decode(&node); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, d, errors.New("jsonschema: empty YAML document")
		}
		return nil, d, fmt.Errorf("jsonschema: invalid YAML: %w", err)
	}
	root := yamlAnyToStringMap(node)
	if root == nil {
		return nil, d, errors.New("jsonschema: YAML root is not a mapping")
	}
	s, err := FromMap(root, d)
	return s, d, err
}

// Load reads a schema from disk, choosing the decoder by file extension.
func Load(path string) (*Schema, Diag, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &simpleDiag{}, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseYAML(data)
	default:
		return Parse(data)
	}
}

// FromMap converts a decoded JSON document into a Schema. Local $refs are
// expanded in place and union types ("type": ["string","null"]) are narrowed
// to their first non-null member.
func FromMap(root map[string]any, d *simpleDiag) (*Schema, error) {
	if root == nil {
		return nil, errors.New("jsonschema: nil schema")
	}
	if d == nil {
		d = &simpleDiag{}
	}
	defs := extractDefs(root)
	resolveRefsInPlace(root, defs, d, make(map[string]bool))
	normalizeTypes(root)

	b, err := json.Marshal(root)
	if err != nil {
		return nil, fmt.Errorf("jsonschema: cannot marshal document: %w", err)
	}
	var s Schema
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("jsonschema: cannot decode schema: %w", err)
	}
	return &s, nil
}

func normalizeTypes(node map[string]any) {
	if ts, ok := node["type"].([]any); ok {
		node["type"] = ""
		for _, t := range ts {
			if s, _ := t.(string); s != "" && s != "null" {
				node["type"] = s
				break
			}
		}
	}
	if pm, ok := node["properties"].(map[string]any); ok {
		for _, raw := range pm {
			if sch, ok := raw.(map[string]any); ok {
				normalizeTypes(sch)
			}
		}
	}
	if it, ok := node["items"].(map[string]any); ok {
		normalizeTypes(it)
	}
}

// yamlAnyToStringMap converts YAML-decoded values (which may contain map[any]any)
// into JSON-like map[string]any recursively. Non-map roots return nil.
func yamlAnyToStringMap(v any) map[string]any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[k] = yamlNormalizeValue(vv)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			ks, ok := k.(string)
			if !ok {
				continue
			}
			out[ks] = yamlNormalizeValue(vv)
		}
		return out
	default:
		return nil
	}
}

func yamlNormalizeValue(v any) any {
	switch t := v.(type) {
	case map[string]any, map[any]any:
		return yamlAnyToStringMap(t)
	case []any:
		arr := make([]any, len(t))
		for i := range t {
			arr[i] = yamlNormalizeValue(t[i])
		}
		return arr
	default:
		return v
	}
}
