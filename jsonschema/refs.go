package jsonschema

import "strings"

// extractDefs merges the local $defs and definitions maps of a document.
func extractDefs(doc map[string]any) map[string]any {
	var out map[string]any
	for _, key := range []string{"definitions", "$defs"} {
		m, ok := doc[key].(map[string]any)
		if !ok {
			continue
		}
		if out == nil {
			out = make(map[string]any, len(m))
		}
		for k, v := range m {
			out[key+"/"+k] = v
		}
	}
	return out
}

// resolveRefsInPlace expands local $refs found in properties and items.
func resolveRefsInPlace(node map[string]any, defs map[string]any, d *simpleDiag, visited map[string]bool) {
	if node == nil || defs == nil {
		return
	}
	if pm, ok := node["properties"].(map[string]any); ok {
		for k, raw := range pm {
			if sch, ok := raw.(map[string]any); ok {
				pm[k] = resolveOne(sch, defs, d, visited)
			}
		}
	}
	if it, ok := node["items"].(map[string]any); ok {
		node["items"] = resolveOne(it, defs, d, visited)
	}
}

// resolveOne expands a single schema map with a local $ref, performing a
// shallow merge where explicit fields win.
func resolveOne(s map[string]any, defs map[string]any, d *simpleDiag, visited map[string]bool) map[string]any {
	if s == nil {
		return nil
	}
	ref, ok := s["$ref"].(string)
	if !ok {
		resolveRefsInPlace(s, defs, d, visited)
		return s
	}
	if !strings.HasPrefix(ref, "#/") {
		d.warnf("$ref %q not supported (local definitions only)", ref)
		return s
	}
	key := strings.TrimPrefix(ref, "#/")
	base, ok := defs[key].(map[string]any)
	if !ok {
		d.warnf("$ref to unknown %s", key)
		return s
	}
	if visited[key] {
		d.warnf("cyclic $ref detected at %s (skipping expansion)", key)
		delete(s, "$ref")
		return s
	}
	visited[key] = true
	expanded := deepCopyMap(base)
	resolveRefsInPlace(expanded, defs, d, visited)
	delete(visited, key)
	delete(s, "$ref")
	for k, v := range expanded {
		if _, exists := s[k]; !exists {
			s[k] = v
		}
	}
	return s
}

func deepCopyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		if mv, ok := v.(map[string]any); ok {
			out[k] = deepCopyMap(mv)
			continue
		}
		out[k] = v
	}
	return out
}
