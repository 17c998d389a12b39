package ui

import (
	"context"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"swift-transfer/internal/api"
	"swift-transfer/internal/clipboard"
	"swift-transfer/pkg/format"
)

type transfersLoadedMsg struct {
	transfers []api.Transfer
	err       error
}

// ListModel is the "my transfers" screen.
type ListModel struct {
	app       *App
	Table     table.Model
	Transfers []api.Transfer
	status    string
	Err       error
}

func NewListModel(app *App, width, height int) ListModel {
	columns := []table.Column{
		{Title: "ID", Width: 26},
		{Title: "Status", Width: 8},
		{Title: "Files", Width: 5},
		{Title: "Size", Width: 10},
		{Title: "Expiry", Width: 22},
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(max(height-10, 5)),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return ListModel{app: app, Table: t}
}

func (m ListModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m ListModel) loadCmd() tea.Cmd {
	app := m.app
	return func() tea.Msg {
		transfers, err := app.API.MyTransfers(context.Background())
		return transfersLoadedMsg{transfers: transfers, err: err}
	}
}

func (m ListModel) selected() *api.Transfer {
	i := m.Table.Cursor()
	if i < 0 || i >= len(m.Transfers) {
		return nil
	}
	return &m.Transfers[i]
}

func (m ListModel) Update(msg tea.Msg) (ListModel, tea.Cmd) {
	switch msg := msg.(type) {
	case transfersLoadedMsg:
		m.Err = msg.err
		if msg.err == nil {
			m.Transfers = msg.transfers
			rows := make([]table.Row, 0, len(msg.transfers))
			for _, t := range msg.transfers {
				rows = append(rows, table.Row{
					t.ID,
					t.Status,
					strconv.Itoa(len(t.Files)),
					format.Size(t.TotalSize()),
					format.Expiry(t.ExpiresAt),
				})
			}
			m.Table.SetRows(rows)
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "r":
			m.status = "Refreshing..."
			return m, m.loadCmd()
		case "enter":
			if t := m.selected(); t != nil {
				id := t.ID
				return m, func() tea.Msg { return openDetailMsg{transferID: id} }
			}
		case "c":
			if t := m.selected(); t != nil {
				if err := clipboard.Copy(t.ShareURL); err != nil {
					m.Err = err
				} else {
					m.status = "Copied " + t.ShareURL
				}
			}
		case "o":
			if t := m.selected(); t != nil {
				m.status = "Share link: " + t.ShareURL
			}
		case "q":
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.Table, cmd = m.Table.Update(msg)
	return m, cmd
}

func (m ListModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Swift Transfer - My Transfers") + "\n\n")
	b.WriteString(m.Table.View())
	b.WriteString("\n\n")
	b.WriteString(blurredStyle.Render("'r' refresh, Enter open, 'c' copy link, 'o' show link, Ctrl+U upload, 'q' quit"))
	if m.status != "" {
		b.WriteString("\n" + statusMessageStyle(m.status))
	}
	if m.Err != nil {
		b.WriteString("\n" + errorMessageStyle(m.Err.Error()))
	}
	return b.String()
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
