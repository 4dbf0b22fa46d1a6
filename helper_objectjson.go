package alloy

import (
	json "github.com/goccy/go-json"
)

// objectJSONHelper edits a free-form object as JSON text.
type objectJSONHelper struct{}

func (objectJSONHelper) populate(_ *buildCtx, n *Node, value any) {
	n.PartsSupported = false
	n.Strategy = StrategyWhole
	switch v := value.(type) {
	case nil, string:
		n.Value = v
	default:
		b, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			n.Value = nil
			return
		}
		n.Value = string(b)
	}
}

func (objectJSONHelper) buildParts(*buildCtx, *Node, any) {}

func (objectJSONHelper) validate(n *Node, confirm func()) *Errors {
	if isEmptyValue(n.Value) {
		return nil
	}
	confirm()
	if IsDataElementToken(n.Value) {
		return nil
	}
	text, ok := n.Value.(string)
	if !ok {
		return conformErrors(n, n.Value)
	}
	dups, err := DuplicateKeys([]byte(text))
	if err != nil {
		return newErrors(CodeInvalidJSON, nil)
	}
	if len(dups) > 0 {
		return newErrors(CodeDuplicateKey, dups[0].Params)
	}
	var parsed any
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return newErrors(CodeInvalidJSON, nil)
	}
	return conformErrors(n, parsed)
}

func conformErrors(n *Node, v any) *Errors {
	if err := n.Schema.Conform(v); err != nil {
		return newErrors(CodeSchemaMismatch, map[string]string{"detail": err.Error()})
	}
	return nil
}

func (objectJSONHelper) extract(n *Node, _ PresenceMap) (any, bool) {
	if isEmptyValue(n.Value) {
		return nil, false
	}
	text, ok := n.Value.(string)
	if !ok || IsDataElementToken(text) {
		return n.Value, true
	}
	var parsed any
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		// Invalid text is reported by validation; keep what the user typed.
		return text, true
	}
	return parsed, true
}
