package main

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"go.jacobcolvin.com/graphdoc/internal/coordinator"
	"go.jacobcolvin.com/graphdoc/internal/model"
	"go.jacobcolvin.com/graphdoc/internal/tree"
)

var (
	paneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

// flatRow is one line of the flattened tree, used for cursor navigation.
type flatRow struct {
	label  string
	depth  int
	nodeID string // tree ID of a depth-1 row: a graph node, a meta field or an edge
}

// appModel is the bubbletea model for the reference TUI host. It owns a
// coordinator.Coordinator and relays every outbound message through msgCh
// into bubbletea's event loop via waitForMessage.
type appModel struct {
	path string
	gt   model.GraphType

	coord *coordinator.Coordinator
	msgCh chan coordinator.Message

	width, height int

	treeRows []flatRow
	cursor   int

	mermaidSource string
	selectedNode  string
	editorLines   []string
	errs          []model.ValidationError

	quitting bool
}

func newModel(path string, text []byte, gt model.GraphType) *appModel {
	msgCh := make(chan coordinator.Message, 16)

	m := &appModel{
		path:  path,
		gt:    gt,
		msgCh: msgCh,
	}

	m.coord = coordinator.New(text, gt, func(msg coordinator.Message) {
		msgCh <- msg
	})

	return m
}

type coordinatorMsg struct{ msg coordinator.Message }

func (m *appModel) waitForMessage() tea.Cmd {
	return func() tea.Msg {
		return coordinatorMsg{msg: <-m.msgCh}
	}
}

func (m *appModel) Init() tea.Cmd {
	return tea.Batch(m.waitForMessage(), m.dispatch(coordinator.ReadyMsg{}))
}

// dispatch runs msg against the coordinator and turns any dispatch error
// into a status line rather than crashing the TUI.
func (m *appModel) dispatch(msg coordinator.Message) tea.Cmd {
	return func() tea.Msg {
		if err := m.coord.Dispatch(msg); err != nil {
			return coordinatorMsg{msg: coordinator.ShowErrorsMsg{Errors: []model.ValidationError{
				{Path: "/", Message: err.Error(), Severity: model.SeverityError},
			}}}
		}

		return nil
	}
}

func (m *appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		return m, nil

	case tea.KeyPressMsg:
		return m.handleKey(msg)

	case coordinatorMsg:
		m.apply(msg.msg)

		return m, m.waitForMessage()
	}

	return m, nil
}

func (m *appModel) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		m.quitting = true

		return m, tea.Quit

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}

		return m, nil

	case "down", "j":
		if m.cursor < len(m.treeRows)-1 {
			m.cursor++
		}

		return m, nil

	case "enter":
		if m.cursor < 0 || m.cursor >= len(m.treeRows) {
			return m, nil
		}

		row := m.treeRows[m.cursor]
		if row.nodeID == "" {
			return m, nil
		}

		return m, m.dispatch(coordinator.NodeClickedMsg{NodeID: row.nodeID})
	}

	return m, nil
}

// apply folds one outbound coordinator message into view state.
func (m *appModel) apply(msg coordinator.Message) {
	switch msg := msg.(type) {
	case coordinator.UpdateAllMsg:
		m.mermaidSource = msg.MermaidSource
		m.errs = msg.Errors
		m.treeRows = flatten(msg.TreeData, 0)

	case coordinator.SelectNodeMsg:
		m.selectedNode = msg.NodeID

		for i, row := range m.treeRows {
			if row.nodeID == msg.NodeID {
				m.cursor = i

				break
			}
		}

	case coordinator.ShowNodeMsg:
		m.editorLines = formatFields(msg.NodeData.Fields)

	case coordinator.ClearNodeEditorMsg:
		m.editorLines = nil

	case coordinator.ShowErrorsMsg:
		m.errs = msg.Errors
	}
}

func flatten(nodes []*tree.Node, depth int) []flatRow {
	var rows []flatRow

	for _, n := range nodes {
		nodeID := ""
		if depth == 1 {
			nodeID = n.ID
		}

		rows = append(rows, flatRow{label: n.Label, depth: depth, nodeID: nodeID})
		rows = append(rows, flatten(n.Children, depth+1)...)
	}

	return rows
}

func formatFields(fields map[string]any) []string {
	lines := make([]string, 0, len(fields))
	for k, v := range fields {
		lines = append(lines, fmt.Sprintf("%s: %v", k, v))
	}

	return lines
}

func (m *appModel) View() tea.View {
	if m.quitting {
		return tea.NewView("")
	}

	paneHeight := m.height - 4
	if paneHeight < 5 {
		paneHeight = 5
	}

	treeWidth := m.width / 3
	if treeWidth < 20 {
		treeWidth = 20
	}

	contentWidth := m.width - treeWidth - 6
	if contentWidth < 20 {
		contentWidth = 20
	}

	treePane := paneStyle.Width(treeWidth).Height(paneHeight).Render(m.renderTree())
	mermaidPane := paneStyle.Width(contentWidth).Height(paneHeight / 2).Render(titleStyle.Render("mermaid") + "\n" + m.mermaidSource)
	editorPane := paneStyle.Width(contentWidth).Height(paneHeight/2 - 1).Render(titleStyle.Render("node: "+m.selectedNode) + "\n" + strings.Join(m.editorLines, "\n"))

	right := lipgloss.JoinVertical(lipgloss.Left, mermaidPane, editorPane)
	body := lipgloss.JoinHorizontal(lipgloss.Top, treePane, right)

	footer := helpStyle.Render(m.path + "  ↑/↓ navigate  enter select  q quit" + m.errSummary())

	v := tea.NewView(body + "\n" + footer)
	v.AltScreen = true

	return v
}

func (m *appModel) renderTree() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("tree") + "\n")

	for i, row := range m.treeRows {
		line := strings.Repeat("  ", row.depth) + row.label
		if i == m.cursor {
			line = selectedStyle.Render("> " + line)
		} else {
			line = "  " + line
		}

		b.WriteString(line + "\n")
	}

	return b.String()
}

func (m *appModel) errSummary() string {
	if len(m.errs) == 0 {
		return ""
	}

	return errorStyle.Render(fmt.Sprintf("  (%d validation issue(s))", len(m.errs)))
}
