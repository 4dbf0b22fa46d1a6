package alloy

import (
	"math"
	"reflect"
)

type stringHelper struct{ leaf }

func (stringHelper) validate(n *Node, confirm func()) *Errors {
	if !isEmptyValue(n.Value) {
		confirm()
	}
	return nil
}

type integerHelper struct{ leaf }

func (integerHelper) populate(c *buildCtx, n *Node, value any) {
	if f, ok := value.(float64); ok && fitsInt64(f) {
		value = int64(f)
	}
	if i, ok := value.(int); ok {
		value = int64(i)
	}
	leaf{}.populate(c, n, value)
}

func (integerHelper) validate(n *Node, confirm func()) *Errors {
	if isEmptyValue(n.Value) {
		return nil
	}
	confirm()
	switch v := n.Value.(type) {
	case int, int32, int64:
		return nil
	case float64:
		if v == math.Trunc(v) && !math.IsInf(v, 0) {
			return nil
		}
	case string:
		if IsDataElementToken(v) {
			return nil
		}
	}
	return newErrors(CodeInvalidInteger, nil)
}

// fitsInt64 reports whether f is integral and converts to int64 exactly.
// Larger integers stay float64.
func fitsInt64(f float64) bool {
	return f == math.Trunc(f) && f >= math.MinInt64 && f < 1<<63
}

type numberHelper struct{ leaf }

func (numberHelper) populate(c *buildCtx, n *Node, value any) {
	if i, ok := value.(int); ok {
		value = float64(i)
	}
	leaf{}.populate(c, n, value)
}

func (numberHelper) validate(n *Node, confirm func()) *Errors {
	if isEmptyValue(n.Value) {
		return nil
	}
	confirm()
	switch v := n.Value.(type) {
	case float64:
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			return nil
		}
	case float32, int, int32, int64:
		return nil
	case string:
		if IsDataElementToken(v) {
			return nil
		}
	}
	return newErrors(CodeInvalidNumber, nil)
}

type booleanHelper struct{ leaf }

func (booleanHelper) validate(n *Node, confirm func()) *Errors {
	if isEmptyValue(n.Value) {
		return nil
	}
	confirm()
	if _, ok := n.Value.(bool); ok || IsDataElementToken(n.Value) {
		return nil
	}
	return newErrors(CodeInvalidBoolean, nil)
}

type enumHelper struct{ leaf }

func (enumHelper) validate(n *Node, confirm func()) *Errors {
	if isEmptyValue(n.Value) {
		return nil
	}
	confirm()
	if IsDataElementToken(n.Value) {
		return nil
	}
	for _, allowed := range n.Schema.Enum {
		if enumEqual(allowed, n.Value) {
			return nil
		}
	}
	return newErrors(CodeInvalidEnum, nil)
}

// enumEqual compares JSON values, treating all numeric types alike.
func enumEqual(a, b any) bool {
	if fa, ok := toFloat(a); ok {
		fb, ok := toFloat(b)
		return ok && fa == fb
	}
	return reflect.DeepEqual(a, b)
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	}
	return 0, false
}
