package alloy

import (
	"sort"
	"strconv"
	"strings"

	"github.com/adobe/reactor-extension-alloy-sub003/i18n"
)

// Errors mirrors the shape of the form-state tree: Properties follow object
// properties and Items follow array indices. A node without errors has no
// entry in its parent.
type Errors struct {
	Code       string
	Message    string
	Params     map[string]string
	Properties map[string]*Errors
	Items      map[int]*Errors
}

func newErrors(code string, params map[string]string) *Errors {
	return &Errors{Code: code, Message: i18n.T(code, params), Params: params}
}

// Empty reports whether the tree holds no error at all.
func (e *Errors) Empty() bool {
	return e == nil || (e.Code == "" && len(e.Properties) == 0 && len(e.Items) == 0)
}

func (e *Errors) orNil() *Errors {
	if e.Empty() {
		return nil
	}
	return e
}

func (e *Errors) setProperty(name string, child *Errors) {
	if child.Empty() {
		return
	}
	if e.Properties == nil {
		e.Properties = make(map[string]*Errors)
	}
	e.Properties[name] = child
}

func (e *Errors) setItem(i int, child *Errors) {
	if child.Empty() {
		return
	}
	if e.Items == nil {
		e.Items = make(map[int]*Errors)
	}
	e.Items[i] = child
}

// At returns the errors recorded for a dot path below e, or nil. A property
// whose name contains dots, such as "contextData.page", matches the whole
// remaining path before the path is split.
func (e *Errors) At(path string) *Errors {
	cur := e
	for path != "" {
		if cur == nil {
			return nil
		}
		if child, ok := cur.Properties[path]; ok {
			return child
		}
		seg, rest, _ := strings.Cut(path, ".")
		if child, ok := cur.Properties[seg]; ok {
			cur, path = child, rest
			continue
		}
		i, err := strconv.Atoi(seg)
		if err != nil {
			return nil
		}
		cur, path = cur.Items[i], rest
	}
	return cur
}

// Issues flattens the tree into path-addressed issues, ordered by path.
func (e *Errors) Issues() Issues {
	var out Issues
	e.collect("", &out)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

func (e *Errors) collect(path string, out *Issues) {
	if e == nil {
		return
	}
	if e.Code != "" {
		*out = AppendIssues(*out, Issue{Path: path, Code: e.Code, Message: e.Message, Params: e.Params})
	}
	for k, c := range e.Properties {
		c.collect(childPath(path, k), out)
	}
	for i, c := range e.Items {
		c.collect(itemPath(path, i), out)
	}
}

// Err returns the flattened issues as an error, or nil when e is empty.
func (e *Errors) Err() error {
	if e.Empty() {
		return nil
	}
	return e.Issues()
}

// Validate walks the tree under n and returns its errors. A node without a
// schema (editor not ready) yields an empty result.
func Validate(n *Node) *Errors {
	if n == nil || n.Schema == nil {
		return &Errors{}
	}
	if e := validateNode(n, func() {}); e != nil {
		return e
	}
	return &Errors{}
}

// validateNode dispatches to the node's helper. The confirm callback handed
// to the helper forwards at most once, however many descendants report data.
func validateNode(n *Node, confirm func()) *Errors {
	fired := false
	once := func() {
		if fired {
			return
		}
		fired = true
		confirm()
	}
	return helperFor(n.Kind).validate(n, once)
}

// Population summarizes how much of a subtree holds data.
type Population int

const (
	PopulationNone Population = iota
	PopulationPartial
	PopulationFull
)

func (p Population) String() string {
	switch p {
	case PopulationFull:
		return "full"
	case PopulationPartial:
		return "partial"
	default:
		return "none"
	}
}

// PopulationOf reports whether n holds no, some or complete data. Nodes
// populated as a whole and leaves are either none or full.
func PopulationOf(n *Node) Population {
	if n == nil {
		return PopulationNone
	}
	children := n.Children()
	if n.Strategy == StrategyWhole || len(children) == 0 {
		if n.Strategy == StrategyWhole && !isEmptyValue(n.Value) {
			return PopulationFull
		}
		return PopulationNone
	}
	full, none := 0, 0
	for _, c := range children {
		switch PopulationOf(c) {
		case PopulationFull:
			full++
		case PopulationNone:
			none++
		}
	}
	switch {
	case full == len(children):
		return PopulationFull
	case none == len(children):
		return PopulationNone
	default:
		return PopulationPartial
	}
}
