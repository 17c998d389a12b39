package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"swift-transfer/internal/api"
	"swift-transfer/pkg/format"
)

type transferLoadedMsg struct {
	transfer *api.Transfer
	err      error
}

type downloadDoneMsg struct {
	path string
	err  error
}

// DetailModel is the viewer for one transfer: file list, per-file download
// and the bundled archive download.
type DetailModel struct {
	app        *App
	TransferID string
	Transfer   *api.Transfer
	Files      table.Model
	status     string
	Err        error
	busy       bool
	cancelFn   context.CancelFunc
}

func NewDetailModel(app *App, transferID string, width, height int) DetailModel {
	columns := []table.Column{
		{Title: "Name", Width: 34},
		{Title: "Type", Width: 24},
		{Title: "Size", Width: 10},
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(max(height-12, 5)),
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

	return DetailModel{app: app, TransferID: transferID, Files: t}
}

func (m DetailModel) Init() tea.Cmd {
	app, id := m.app, m.TransferID
	return func() tea.Msg {
		t, err := app.API.GetTransfer(context.Background(), id)
		return transferLoadedMsg{transfer: t, err: err}
	}
}

func (m DetailModel) cancel() {
	if m.cancelFn != nil {
		m.cancelFn()
	}
}

func (m DetailModel) expired() bool {
	return m.Transfer != nil && m.Transfer.Expired()
}

func (m DetailModel) Update(msg tea.Msg) (DetailModel, tea.Cmd) {
	switch msg := msg.(type) {
	case transferLoadedMsg:
		m.Err = msg.err
		if msg.err == nil {
			m.Transfer = msg.transfer
			rows := make([]table.Row, 0, len(msg.transfer.Files))
			for _, f := range msg.transfer.Files {
				rows = append(rows, table.Row{f.Name, f.ContentType, format.Size(f.Size)})
			}
			m.Files.SetRows(rows)
		}
		return m, nil

	case downloadDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.Err = msg.err
		} else {
			m.status = "Saved " + msg.path
			m.Err = nil
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			m.cancel()
			return m, func() tea.Msg { return backMsg{} }
		case "enter", "d":
			if m.Transfer != nil && !m.expired() && !m.busy {
				return m.startDownload(m.Files.Cursor(), false)
			}
		case "z":
			if m.Transfer != nil && !m.expired() && !m.busy {
				return m.startDownload(0, true)
			}
		}
	}

	var cmd tea.Cmd
	m.Files, cmd = m.Files.Update(msg)
	return m, cmd
}

func (m DetailModel) startDownload(index int, zip bool) (DetailModel, tea.Cmd) {
	m.busy = true
	m.status = "Downloading..."
	ctx, cancel := context.WithCancel(context.Background())
	m.cancelFn = cancel

	app, t := m.app, m.Transfer
	return m, func() tea.Msg {
		defer cancel()
		var path string
		var err error
		if zip {
			path, err = app.Downloader.Zip(ctx, t)
		} else {
			path, err = app.Downloader.File(ctx, t, index)
		}
		return downloadDoneMsg{path: path, err: err}
	}
}

func (m DetailModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Swift Transfer - "+m.TransferID) + "\n\n")

	if m.Transfer == nil {
		if m.Err != nil {
			b.WriteString(errorMessageStyle(m.Err.Error()))
		} else {
			b.WriteString(blurredStyle.Render("Loading..."))
		}
		return b.String()
	}

	if m.expired() {
		b.WriteString(expiredBadge.Render("EXPIRED") + " ")
	}
	b.WriteString(fmt.Sprintf("%d file(s), %s, %s\n\n",
		len(m.Transfer.Files), format.Size(m.Transfer.TotalSize()), format.Expiry(m.Transfer.ExpiresAt)))
	b.WriteString(m.Files.View())
	b.WriteString("\n\n")
	if m.expired() {
		b.WriteString(blurredStyle.Render("Downloads disabled for expired transfers. Esc to go back"))
	} else {
		b.WriteString(blurredStyle.Render("Enter download file, 'z' download all as zip, Esc back"))
	}

	if m.status != "" {
		b.WriteString("\n" + statusMessageStyle(m.status))
	}
	if m.Err != nil {
		b.WriteString("\n" + errorMessageStyle(m.Err.Error()))
	}
	return b.String()
}
