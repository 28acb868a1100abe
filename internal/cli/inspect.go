package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	strataio "github.com/matzehuels/strata/pkg/io"
	"github.com/matzehuels/strata/pkg/layout"
)

// inspectCommand creates the inspect command for browsing a layout result.
func (c *CLI) inspectCommand() *cobra.Command {
	var plain bool

	cmd := &cobra.Command{
		Use:   "inspect [layout.json]",
		Short: "Browse the nodes and edges of a layout",
		Long: `Browse the nodes and edges of a layout.

Shows layers, orders, positions and sizes of nodes and the endpoints and bend
counts of edges. Tab switches between nodes and edges. Without a terminal, or
with --plain, both tables are printed instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := strataio.LoadResult(args[0])
			if err != nil {
				return fmt.Errorf("load layout %s: %w", args[0], err)
			}
			m := newInspectModel(res)
			if plain || !isTerminal(os.Stdout) {
				m.cursor = -1
				fmt.Fprintln(stdout, m.render(tabNodes, 0, len(res.Nodes)))
				fmt.Fprintln(stdout, m.render(tabEdges, 0, len(res.Edges)))
				return nil
			}
			_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
			return err
		},
	}

	cmd.Flags().BoolVar(&plain, "plain", false, "print tables instead of the interactive view")
	return cmd
}

// =============================================================================
// InspectModel - Interactive layout browser
// =============================================================================

type inspectTab int

const (
	tabNodes inspectTab = iota
	tabEdges
)

var (
	tabActiveStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorCyan).Underline(true)
	tabInactiveStyle = lipgloss.NewStyle().Foreground(colorGray)
	tableHeaderStyle = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	tableCursorStyle = lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
	reversedStyle    = lipgloss.NewStyle().Foreground(colorYellow)
)

// InspectModel is the bubbletea model of the inspect command.
type InspectModel struct {
	res    *layout.Result
	tab    inspectTab
	cursor int
	offset int
	height int
}

func newInspectModel(res *layout.Result) InspectModel {
	return InspectModel{res: res, height: 15}
}

func (m InspectModel) Init() tea.Cmd {
	return nil
}

func (m InspectModel) rows() int {
	if m.tab == tabEdges {
		return len(m.res.Edges)
	}
	return len(m.res.Nodes)
}

func (m InspectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "tab", "shift+tab":
			m.tab = 1 - m.tab
			m.cursor, m.offset = 0, 0
		case "up", "k":
			m.move(-1)
		case "down", "j":
			m.move(1)
		case "pgup":
			m.move(-m.height)
		case "pgdown":
			m.move(m.height)
		case "home", "g":
			m.move(-m.rows())
		case "end", "G":
			m.move(m.rows())
		}
	case tea.WindowSizeMsg:
		m.height = max(msg.Height-8, 5)
		m.move(0)
	}
	return m, nil
}

// move shifts the cursor by d rows and scrolls it into view.
func (m *InspectModel) move(d int) {
	m.cursor = max(min(m.cursor+d, m.rows()-1), 0)
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+m.height {
		m.offset = m.cursor - m.height + 1
	}
}

func (m InspectModel) View() string {
	var b strings.Builder

	s := m.res.Stats
	b.WriteString(StyleTitle.Render("Layout"))
	b.WriteString(StyleDim.Render(fmt.Sprintf("  %s · %d layers · %d crossings · %.0f×%.0f",
		m.res.Direction, s.Layers, s.Crossings, m.res.Bounds.W, m.res.Bounds.H)))
	b.WriteString("\n")

	nodes, edges := tabInactiveStyle, tabInactiveStyle
	if m.tab == tabNodes {
		nodes = tabActiveStyle
	} else {
		edges = tabActiveStyle
	}
	b.WriteString(nodes.Render(fmt.Sprintf("Nodes (%d)", len(m.res.Nodes))))
	b.WriteString("  ")
	b.WriteString(edges.Render(fmt.Sprintf("Edges (%d)", len(m.res.Edges))))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("↑/↓ navigate  tab switch  q quit"))
	b.WriteString("\n\n")

	end := min(m.offset+m.height, m.rows())
	b.WriteString(m.render(m.tab, m.offset, end))
	b.WriteString("\n\n")
	if m.rows() > 0 {
		b.WriteString(StyleDim.Render(fmt.Sprintf("  [%d/%d]", m.cursor+1, m.rows())))
	}
	return b.String()
}

// render draws rows [from, to) of a tab as a table.
func (m InspectModel) render(tab inspectTab, from, to int) string {
	var (
		headers []string
		rows    [][]string
	)
	cursor := func(i int) string {
		if i == m.cursor && tab == m.tab {
			return "▸"
		}
		return " "
	}
	switch tab {
	case tabNodes:
		headers = []string{"", "Node", "Layer", "Order", "X", "Y", "Size", "Ports"}
		for i := from; i < to; i++ {
			n := m.res.Nodes[i]
			rows = append(rows, []string{
				cursor(i), n.ID, strconv.Itoa(n.Layer), strconv.Itoa(n.Order),
				num(n.X), num(n.Y), num(n.Width) + "×" + num(n.Height), strconv.Itoa(len(n.Ports)),
			})
		}
	case tabEdges:
		headers = []string{"", "Edge", "Source", "Target", "Bends", ""}
		for i := from; i < to; i++ {
			e := m.res.Edges[i]
			flag := ""
			if e.Reversed {
				flag = "reversed"
			}
			rows = append(rows, []string{cursor(i), e.ID, e.Source, e.Target, strconv.Itoa(len(e.Bends)), flag})
		}
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return tableHeaderStyle
			case from+row == m.cursor && tab == m.tab:
				return tableCursorStyle
			case tab == tabEdges && col == 5:
				return reversedStyle
			}
			return lipgloss.NewStyle()
		}).
		Render()
}

// num formats a coordinate without trailing zeros.
func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
