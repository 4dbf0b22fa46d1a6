package alloy

import (
	"fmt"
	"regexp"
	"strings"

	js "github.com/adobe/reactor-extension-alloy-sub003/jsonschema"
)

const contextDataPrefix = "contextData."

var analyticsKeyRe = regexp.MustCompile(`^(eVar([1-9][0-9]?|1[0-9]{2}|2[0-4][0-9]|250)|prop([1-9]|[1-6][0-9]|7[0-5])|list[1-3]|hier[1-5]|events|products|pageName|pageURL|referrer|channel|campaign|server|state|zip|purchaseID|transactionID|currencyCode|contextData\.[^.\s]+)$`)

// IsAnalyticsKey reports whether name is an Analytics variable accepted by
// the analytics object editor.
func IsAnalyticsKey(name string) bool { return analyticsKeyRe.MatchString(name) }

// analyticsHelper edits Analytics variables as name/value pairs. Context data
// entries are kept flat as "contextData.<name>" and nested again on extract.
type analyticsHelper struct{}

func (h analyticsHelper) populate(c *buildCtx, n *Node, value any) {
	n.PartsSupported = true
	m, isMap := value.(map[string]any)
	if value != nil && !isMap {
		n.Strategy = StrategyWhole
		n.Value = value
		return
	}
	n.Strategy = StrategyParts
	h.buildParts(c, n, m)
}

func (analyticsHelper) buildParts(c *buildCtx, n *Node, value any) {
	m, _ := value.(map[string]any)
	flat := make(map[string]any, len(m))
	for k, v := range m {
		if k == "contextData" {
			if cd, ok := v.(map[string]any); ok {
				for ck, cv := range cd {
					flat[contextDataPrefix+ck] = cv
				}
				continue
			}
		}
		flat[k] = v
	}
	n.Properties = make(map[string]*Node, len(flat))
	for _, k := range sortedKeys(flat) {
		n.Properties[k] = c.analyticsVariable(n, k, flat[k])
	}
	n.partsBuilt = true
}

func (c *buildCtx) analyticsVariable(parent *Node, name string, value any) *Node {
	if value != nil {
		if _, ok := value.(string); !ok {
			value = fmt.Sprint(value)
		}
	}
	return c.node(&js.Schema{Type: js.TypeString, Title: name}, value, childPath(parent.Path, name))
}

func (analyticsHelper) validate(n *Node, confirm func()) *Errors {
	if n.Strategy == StrategyWhole {
		return wholeValue(n, confirm)
	}
	errs := &Errors{}
	for _, name := range sortedKeys(n.Properties) {
		child := n.Properties[name]
		if !IsAnalyticsKey(name) {
			errs.setProperty(name, newErrors(CodeInvalidAnalyticsKey, map[string]string{"name": name}))
		}
		if !isEmptyValue(child.Value) {
			confirm()
		}
	}
	return errs.orNil()
}

func (analyticsHelper) extract(n *Node, pm PresenceMap) (any, bool) {
	if n.Strategy == StrategyWhole {
		return leaf{}.extract(n, pm)
	}
	out := make(map[string]any, len(n.Properties))
	for _, name := range sortedKeys(n.Properties) {
		v, ok := extractNode(n.Properties[name], pm)
		if !ok {
			continue
		}
		if key, isCD := strings.CutPrefix(name, contextDataPrefix); isCD {
			cd, _ := out["contextData"].(map[string]any)
			if cd == nil {
				cd = make(map[string]any)
				out["contextData"] = cd
			}
			cd[key] = v
			continue
		}
		out[name] = v
	}
	if len(out) == 0 {
		return nil, false
	}
	return out, true
}
