package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	runewidth "github.com/mattn/go-runewidth"

	alloy "github.com/adobe/reactor-extension-alloy-sub003"
)

// Styles are the lipgloss styles of the editor.
type Styles struct {
	Pane     lipgloss.Style
	Title    lipgloss.Style
	Selected lipgloss.Style
	Invalid  lipgloss.Style
	Muted    lipgloss.Style
	Status   lipgloss.Style
}

// DefaultStyles returns the built-in color scheme.
func DefaultStyles() Styles {
	return Styles{
		Pane:     lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1),
		Title:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63")),
		Selected: lipgloss.NewStyle().Reverse(true),
		Invalid:  lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		Muted:    lipgloss.NewStyle().Foreground(lipgloss.Color("243")),
		Status:   lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
	}
}

const helpLine = "↑/↓ move  ←/→ collapse/expand  enter edit  w whole/parts  c clear  a add  x remove  ctrl+s save  q quit"

func (m Model) treeWidth() int { return max(20, m.width*2/5) }

// treeHeight is the number of tree rows that fit between borders, footer
// and help line.
func (m Model) treeHeight() int { return max(1, m.height-5) }

func (m Model) View() string {
	left := m.styles.Pane.Width(m.treeWidth()).Height(m.treeHeight()).Render(m.renderTree())
	right := m.styles.Pane.Width(max(20, m.width-m.treeWidth()-6)).Height(m.treeHeight()).Render(m.renderDetail())
	body := lipgloss.JoinHorizontal(lipgloss.Top, left, right)

	footer := m.styles.Muted.Render(helpLine)
	if m.mode != inputNone {
		footer = m.input.View()
	} else if m.status != "" {
		footer = m.styles.Status.Render(m.status)
	}
	return lipgloss.JoinVertical(lipgloss.Left, body, footer)
}

func (m Model) renderTree() string {
	rows := m.state.Rows(m.tree.Root)
	end := min(len(rows), m.offset+m.treeHeight())
	width := m.treeWidth() - 2
	var b strings.Builder
	for i := m.offset; i < end; i++ {
		r := rows[i]
		marker := "  "
		if r.HasChildren {
			marker = "▸ "
			if r.Expanded {
				marker = "▾ "
			}
		}
		label := strings.Repeat("  ", r.Depth) + marker + nodeLabel(r.Node) + populationMark(r.Node)
		label = truncate(label, width)
		switch {
		case r.Node.ID == m.state.Selected():
			label = m.styles.Selected.Render(label)
		case m.errs.At(r.Node.Path) != nil:
			label = m.styles.Invalid.Render(label)
		}
		b.WriteString(label)
		if i < end-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func (m Model) renderDetail() string {
	n := m.Selected()
	if n == nil {
		return m.styles.Muted.Render("No schema loaded.")
	}
	var b strings.Builder
	b.WriteString(m.styles.Title.Render(nodeLabel(n)))
	b.WriteString("\n\n")
	field := func(k, v string) { fmt.Fprintf(&b, "%-10s %s\n", k, v) }
	path := n.Path
	if path == "" {
		path = "(root)"
	}
	field("path", path)
	field("type", n.Kind.String())
	if n.PartsSupported {
		field("populate", n.Strategy.String())
	}
	field("status", alloy.PopulationOf(n).String())
	if n.Strategy == alloy.StrategyWhole {
		field("value", formatValue(n.Value))
	}
	if m.tree.UpdateMode() {
		field("clear", fmt.Sprint(n.Transform.Clear))
	}
	if n.AutoPopulationSource != alloy.AutoPopulationNone {
		b.WriteString(m.styles.Muted.Render(autoPopulationNote(n)))
		b.WriteByte('\n')
	}
	if d := n.Schema.Description; d != "" {
		b.WriteByte('\n')
		b.WriteString(m.styles.Muted.Render(d))
		b.WriteByte('\n')
	}
	if e := m.errs.At(n.Path); e != nil && e.Message != "" {
		b.WriteByte('\n')
		b.WriteString(m.styles.Invalid.Render(e.Message))
	}
	return b.String()
}

func nodeLabel(n *alloy.Node) string {
	if n.Path == "" {
		return n.Schema.Label("(root)")
	}
	return n.Schema.Label(n.Name())
}

func populationMark(n *alloy.Node) string {
	switch alloy.PopulationOf(n) {
	case alloy.PopulationFull:
		return " ●"
	case alloy.PopulationPartial:
		return " ◐"
	}
	return ""
}

func autoPopulationNote(n *alloy.Node) string {
	switch n.AutoPopulationSource {
	case alloy.AutoPopulationAlways:
		return "Provided automatically by the SDK."
	case alloy.AutoPopulationContext:
		return fmt.Sprintf("Provided automatically when the %q context is enabled.", n.ContextKey)
	case alloy.AutoPopulationCommand:
		return "Can be provided on the sendEvent command."
	}
	return ""
}

// truncate shortens s to width display cells, accounting for wide runes.
func truncate(s string, width int) string {
	if width <= 0 || runewidth.StringWidth(s) <= width {
		return s
	}
	if width < 4 {
		return runewidth.Truncate(s, width, "")
	}
	return runewidth.Truncate(s, width, "...")
}
