package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/sbgntools/sbgnmap/pkg/core/mapping"
	"github.com/sbgntools/sbgnmap/pkg/core/model"
	"github.com/sbgntools/sbgnmap/pkg/core/sbgn"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("51"))
	listNormalStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	listDimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// newInspectCmd creates the inspect command, an interactive browser over
// a map's model elements and their layout loci.
func newInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect [file]",
		Short: "Browse a map's elements interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, _, err := readMapFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			browser := newElementBrowser(m)
			if _, err := tea.NewProgram(browser).Run(); err != nil {
				return fmt.Errorf("inspect: %w", err)
			}
			return nil
		},
	}
	return cmd
}

// elementRow is one line of the browser: a model element with its
// display metadata and the layout loci that render it.
type elementRow struct {
	class string
	label string
	id    string
	loci  []string
}

// elementBrowser is the bubbletea model for the element list.
type elementBrowser struct {
	rows   []elementRow
	flavor sbgn.Flavor
	cursor int
	offset int
	height int
}

func newElementBrowser(m *sbgn.Map) elementBrowser {
	return elementBrowser{
		rows:   collectRows(m),
		flavor: m.Flavor,
		height: 15,
	}
}

// collectRows flattens the model into display rows, resolving each
// element's rendering loci through the mapping table.
func collectRows(m *sbgn.Map) []elementRow {
	var rows []elementRow
	add := func(class, label string, e model.Element) {
		row := elementRow{class: class, label: label, id: e.ElementID()}
		if refs, err := m.Mapping.GetLayout(mapping.SimpleKey(e)); err == nil {
			for _, r := range refs {
				row.loci = append(row.loci, r.ElementID())
			}
		}
		rows = append(rows, row)
	}

	for _, c := range m.Model.Compartments {
		add("compartment", c.Label, c)
	}
	for _, p := range m.Model.EntityPools {
		add(string(p.Kind), p.Label, p)
	}
	for _, p := range m.Model.Processes {
		add(string(p.Kind), p.Label, p)
	}
	for _, o := range m.Model.Operators {
		add(string(o.Kind), "", o)
	}
	for _, mo := range m.Model.Modulations {
		add(string(mo.Kind), modulationLabel(mo), mo)
	}
	for _, a := range m.Model.Activities {
		add(string(a.Kind), a.Label, a)
	}
	for _, i := range m.Model.Influences {
		add(string(i.Kind), influenceLabel(i), i)
	}
	return rows
}

func modulationLabel(mo *model.Modulation) string {
	src := elementLabel(mo.Source)
	dst := ""
	if mo.Target != nil {
		dst = mo.Target.Label
		if dst == "" {
			dst = string(mo.Target.Kind)
		}
	}
	return src + " to " + dst
}

func influenceLabel(i *model.Influence) string {
	return elementLabel(i.Source) + " to " + elementLabel(i.Target)
}

func elementLabel(e model.Element) string {
	switch t := e.(type) {
	case *model.EntityPool:
		return t.Label
	case *model.Activity:
		return t.Label
	case *model.LogicalOperator:
		return string(t.Kind)
	case nil:
		return "?"
	default:
		return e.ElementID()
	}
}

func (b elementBrowser) Init() tea.Cmd {
	return nil
}

func (b elementBrowser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc", "enter":
			return b, tea.Quit
		case "up", "k":
			if b.cursor > 0 {
				b.cursor--
				if b.cursor < b.offset {
					b.offset = b.cursor
				}
			}
		case "down", "j":
			if b.cursor < len(b.rows)-1 {
				b.cursor++
				if b.cursor >= b.offset+b.height {
					b.offset = b.cursor - b.height + 1
				}
			}
		}
	case tea.WindowSizeMsg:
		b.height = msg.Height - 8
		if b.height < 5 {
			b.height = 5
		}
	}
	return b, nil
}

func (b elementBrowser) View() string {
	var sb strings.Builder

	sb.WriteString(StyleBold.Render(fmt.Sprintf("Map Elements (%s)", b.flavor)))
	sb.WriteString("\n")
	sb.WriteString(listDimStyle.Render("↑/↓ navigate  q quit"))
	sb.WriteString("\n\n")

	if len(b.rows) == 0 {
		sb.WriteString(listDimStyle.Render("  (empty map)"))
		sb.WriteString("\n")
		return sb.String()
	}

	end := b.offset + b.height
	if end > len(b.rows) {
		end = len(b.rows)
	}

	for i := b.offset; i < end; i++ {
		r := b.rows[i]
		cursor := "  "
		if i == b.cursor {
			cursor = "▸ "
		}

		label := r.label
		if label == "" {
			label = "—"
		}
		line := fmt.Sprintf("%s%-24s %-30s %s", cursor, r.class, label, listDimStyle.Render(r.id))

		if i == b.cursor {
			sb.WriteString(listSelectedStyle.Render(line))
		} else {
			sb.WriteString(listNormalStyle.Render(line))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sel := b.rows[b.cursor]
	loci := "not rendered directly"
	if len(sel.loci) > 0 {
		loci = strings.Join(sel.loci, ", ")
	}
	sb.WriteString(listDimStyle.Render(fmt.Sprintf("  loci: %s", loci)))
	sb.WriteString("\n")
	sb.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", b.cursor+1, len(b.rows))))
	sb.WriteString("\n")

	return sb.String()
}
