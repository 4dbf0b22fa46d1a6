package alloy

import "sort"

// typeHelper implements population, validation and serialization for one
// Kind. Helpers are stateless.
type typeHelper interface {
	// populate sets PartsSupported, Strategy, Value and, under PARTS, the
	// children of n from value.
	populate(c *buildCtx, n *Node, value any)
	// buildParts creates the structured children of n. It is a no-op for
	// kinds without children.
	buildParts(c *buildCtx, n *Node, value any)
	// validate returns the errors for n, or nil when n is valid. confirm must
	// be called when n or a descendant holds a value.
	validate(n *Node, confirm func()) *Errors
	// extract returns the plain value of n; ok is false when nothing is set.
	extract(n *Node, pm PresenceMap) (v any, ok bool)
}

// helperFor is exhaustive over Kind.
func helperFor(k Kind) typeHelper {
	switch k {
	case KindString:
		return stringHelper{}
	case KindNumber:
		return numberHelper{}
	case KindInteger:
		return integerHelper{}
	case KindBoolean:
		return booleanHelper{}
	case KindEnum:
		return enumHelper{}
	case KindObject:
		return objectHelper{}
	case KindArray:
		return arrayHelper{}
	case KindObjectJSON:
		return objectJSONHelper{}
	case KindObjectAnalytics:
		return analyticsHelper{}
	}
	panic("alloy: no helper for kind " + k.String())
}

// leaf provides populate/buildParts/extract for WHOLE-only kinds.
type leaf struct{}

func (leaf) populate(_ *buildCtx, n *Node, value any) {
	n.PartsSupported = false
	n.Strategy = StrategyWhole
	n.Value = value
}

func (leaf) buildParts(*buildCtx, *Node, any) {}

func (leaf) extract(n *Node, _ PresenceMap) (any, bool) {
	if isEmptyValue(n.Value) {
		return nil, false
	}
	return n.Value, true
}

// wholeValue validates a composite node populated as one literal: only a
// data element reference is accepted.
func wholeValue(n *Node, confirm func()) *Errors {
	if isEmptyValue(n.Value) {
		return nil
	}
	confirm()
	if !IsDataElementToken(n.Value) {
		return newErrors(CodeDataElementRequired, nil)
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
