// Package tui is the terminal two-pane object editor: the attribute tree on
// the left and the selected node on the right.
package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	alloy "github.com/adobe/reactor-extension-alloy-sub003"
	"github.com/adobe/reactor-extension-alloy-sub003/editor"
)

// SaveFunc receives the extracted value when the user saves.
type SaveFunc func(alloy.Extraction) error

type inputMode int

const (
	inputNone inputMode = iota
	inputValue
	inputProperty
)

// Model is the bubbletea model of the editor.
type Model struct {
	tree   alloy.Tree
	state  *editor.State
	errs   *alloy.Errors
	save   SaveFunc
	styles Styles

	input  textinput.Model
	mode   inputMode
	status string
	saved  bool

	width, height int
	offset        int
}

// New returns an editor for tree. save may be nil.
func New(tree alloy.Tree, save SaveFunc) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.CharLimit = 4096
	m := Model{
		tree:   tree,
		state:  editor.New(tree.Root, editor.DefaultDepth),
		save:   save,
		styles: DefaultStyles(),
		input:  ti,
		width:  100,
		height: 30,
	}
	m.revalidate()
	return m
}

// Tree returns the edited tree.
func (m Model) Tree() alloy.Tree { return m.tree }

// Saved reports whether the last save succeeded.
func (m Model) Saved() bool { return m.saved }

// Status returns the message shown in the footer.
func (m Model) Status() string { return m.status }

// Selected returns the selected node.
func (m Model) Selected() *alloy.Node { return m.tree.Find(m.state.Selected()) }

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil
	case tea.KeyMsg:
		if m.mode != inputNone {
			return m.updateInput(msg)
		}
		return m.updateKey(msg)
	}
	return m, nil
}

func (m Model) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	rows := m.state.Rows(m.tree.Root)
	n := m.Selected()
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "up", "k":
		m.state.Move(rows, -1)
	case "down", "j":
		m.state.Move(rows, 1)
	case "right", "l":
		if n != nil && n.HasChildren() {
			m.state.SetExpanded(n.ID, true)
		}
	case "left", "h":
		m.collapseOrParent(n)
	case "enter":
		if n != nil && n.Strategy == alloy.StrategyWhole {
			m.mode = inputValue
			m.input.SetValue(formatValue(n.Value))
			m.input.CursorEnd()
			return m, m.input.Focus()
		}
	case "w":
		if n != nil && n.PartsSupported {
			next := alloy.StrategyParts
			if n.Strategy == alloy.StrategyParts {
				next = alloy.StrategyWhole
			}
			m.apply(m.tree.SetStrategy(n.ID, next))
		}
	case "c":
		if n != nil {
			m.apply(m.tree.SetClear(n.ID, !n.Transform.Clear))
		}
	case "a":
		m.add(n)
		if m.mode == inputProperty {
			return m, m.input.Focus()
		}
	case "x":
		m.remove(n)
	case "ctrl+s":
		m.doSave()
	}
	m.offset = m.state.ScrollTarget(m.state.Rows(m.tree.Root), m.offset, m.treeHeight())
	return m, nil
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = inputNone
		m.input.Blur()
		return m, nil
	case "enter":
		text := m.input.Value()
		mode := m.mode
		m.mode = inputNone
		m.input.Blur()
		m.input.SetValue("")
		n := m.Selected()
		if n == nil {
			return m, nil
		}
		switch mode {
		case inputValue:
			m.apply(m.tree.SetValue(n.ID, ParseInput(n, text)))
		case inputProperty:
			name := strings.TrimSpace(text)
			t, err := m.tree.AddProperty(n.ID, name)
			m.apply(t, err)
			if err == nil {
				m.state.SetExpanded(n.ID, true)
				if p := m.tree.Find(n.ID); p != nil && p.Properties[name] != nil {
					m.state.Select(m.tree.Root, p.Properties[name].ID)
				}
			}
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) collapseOrParent(n *alloy.Node) {
	if n == nil {
		return
	}
	if n.HasChildren() && m.state.Expanded(n.ID) {
		m.state.SetExpanded(n.ID, false)
		return
	}
	if trail := editor.Breadcrumb(m.tree.Root, n.ID); len(trail) > 1 {
		m.state.Select(m.tree.Root, trail[len(trail)-2].ID)
	}
}

func (m *Model) add(n *alloy.Node) {
	if n == nil || n.Strategy != alloy.StrategyParts {
		return
	}
	switch n.Kind {
	case alloy.KindArray:
		t, err := m.tree.AddItem(n.ID)
		m.apply(t, err)
		if err == nil {
			m.state.SetExpanded(n.ID, true)
			items := m.tree.Find(n.ID).Items
			m.state.Select(m.tree.Root, items[len(items)-1].ID)
		}
	case alloy.KindObjectAnalytics:
		m.mode = inputProperty
		m.input.SetValue("")
	}
}

func (m *Model) remove(n *alloy.Node) {
	if n == nil {
		return
	}
	trail := editor.Breadcrumb(m.tree.Root, n.ID)
	if len(trail) < 2 {
		return
	}
	parent := trail[len(trail)-2]
	switch parent.Kind {
	case alloy.KindArray:
		m.apply(m.tree.RemoveItem(n.ID))
	case alloy.KindObjectAnalytics:
		name := n.Path
		if parent.Path != "" {
			name = strings.TrimPrefix(n.Path, parent.Path+".")
		}
		m.apply(m.tree.RemoveProperty(parent.ID, name))
	default:
		return
	}
	m.state.Select(m.tree.Root, parent.ID)
}

// apply installs the result of a tree edit or reports its error.
func (m *Model) apply(t alloy.Tree, err error) {
	if err != nil {
		m.status = err.Error()
		return
	}
	m.tree = t
	m.status = ""
	m.saved = false
	m.revalidate()
}

func (m *Model) revalidate() { m.errs = alloy.Validate(m.tree.Root) }

func (m *Model) doSave() {
	if !m.errs.Empty() {
		m.status = fmt.Sprintf("cannot save: %d invalid field(s)", len(m.errs.Issues()))
		return
	}
	if m.save == nil {
		m.status = "nothing to save to"
		return
	}
	if err := m.save(alloy.Extract(m.tree.Root)); err != nil {
		m.status = "save failed: " + err.Error()
		return
	}
	m.saved = true
	m.status = "saved"
}

// ParseInput converts the text typed for n into the value stored in the
// tree. Text that does not fit the kind is kept as typed so validation can
// report it.
func ParseInput(n *alloy.Node, text string) any {
	if text == "" {
		return nil
	}
	if alloy.IsDataElementToken(text) {
		return text
	}
	switch n.Kind {
	case alloy.KindInteger:
		if i, err := strconv.ParseInt(text, 10, 64); err == nil {
			return i
		}
	case alloy.KindNumber:
		if f, err := strconv.ParseFloat(text, 64); err == nil {
			return f
		}
	case alloy.KindBoolean:
		if b, err := strconv.ParseBool(text); err == nil {
			return b
		}
	case alloy.KindEnum:
		for _, e := range n.Schema.Enum {
			if fmt.Sprint(e) == text {
				return e
			}
		}
	}
	return text
}

func formatValue(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}
