package alloy

import js "github.com/adobe/reactor-extension-alloy-sub003/jsonschema"

// Kind selects the type helper that governs a node. It is derived once from
// the schema fragment and never changes for the node's lifetime.
type Kind int

const (
	KindString Kind = iota
	KindNumber
	KindInteger
	KindBoolean
	KindEnum
	KindObject
	KindArray
	KindObjectJSON
	KindObjectAnalytics
)

// Kinds lists every kind, in declaration order.
var Kinds = []Kind{
	KindString, KindNumber, KindInteger, KindBoolean, KindEnum,
	KindObject, KindArray, KindObjectJSON, KindObjectAnalytics,
}

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return js.TypeNumber
	case KindInteger:
		return js.TypeInteger
	case KindBoolean:
		return js.TypeBoolean
	case KindEnum:
		return "enum"
	case KindObject:
		return js.TypeObject
	case KindArray:
		return js.TypeArray
	case KindObjectJSON:
		return js.TypeObjectJSON
	case KindObjectAnalytics:
		return js.TypeObjectAnalytics
	default:
		return js.TypeString
	}
}

// KindOf maps a schema fragment to its kind. An enum wins over the declared
// structural type; unknown or missing types are edited as strings.
func KindOf(s *js.Schema) Kind {
	if s == nil {
		return KindString
	}
	if len(s.Enum) > 0 {
		return KindEnum
	}
	switch s.Type {
	case js.TypeArray:
		return KindArray
	case js.TypeBoolean:
		return KindBoolean
	case js.TypeInteger:
		return KindInteger
	case js.TypeNumber:
		return KindNumber
	case js.TypeObject:
		return KindObject
	case js.TypeObjectJSON:
		return KindObjectJSON
	case js.TypeObjectAnalytics:
		return KindObjectAnalytics
	default:
		return KindString
	}
}
