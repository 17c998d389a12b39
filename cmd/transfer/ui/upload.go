package ui

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"swift-transfer/internal/clipboard"
	"swift-transfer/internal/transfer"
	"swift-transfer/pkg/format"
)

type uploadMode int

const (
	modeReview uploadMode = iota
	modePick
	modeUploading
	modeEmail
)

type uploadProgressMsg transfer.Event

type uploadDoneMsg struct {
	shareURL string
	err      error
}

type emailSentMsg struct {
	err error
}

// UploadModel is the upload screen: pick local files, send them as one
// transfer, then copy or email the share link.
type UploadModel struct {
	app    *App
	mode   uploadMode
	picker filepicker.Model
	spin   spinner.Model

	files  []transfer.Selected
	cursor int

	shareURL string
	status   string
	err      error

	progress transfer.Event
	events   chan tea.Msg
	cancelFn context.CancelFunc

	emailInputs []textinput.Model
	emailFocus  int

	width, height int
}

const (
	emailTo = iota
	emailMessage
)

func NewUploadModel(app *App, width, height int) UploadModel {
	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.Height = max(height-10, 8)

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	inputs := make([]textinput.Model, 2)
	inputs[emailTo] = textinput.New()
	inputs[emailTo].Placeholder = "recipient@example.com"
	inputs[emailTo].Prompt = "To: "
	inputs[emailMessage] = textinput.New()
	inputs[emailMessage].Placeholder = "optional message"
	inputs[emailMessage].Prompt = "Message: "

	return UploadModel{
		app:         app,
		mode:        modeReview,
		picker:      fp,
		spin:        sp,
		emailInputs: inputs,
		width:       width,
		height:      height,
	}
}

func (m UploadModel) Init() tea.Cmd {
	return nil
}

// cancel stops an in-flight upload, e.g. when the user navigates away.
// In-flight requests are cancelled through the context; state updates stop
// because the root no longer routes messages here.
func (m UploadModel) cancel() {
	if m.cancelFn != nil {
		m.cancelFn()
	}
}

// resetResult clears any previously produced share link and status text.
// A share URL corresponds to one exact file set, so every selection change
// invalidates it.
func (m *UploadModel) resetResult() {
	m.shareURL = ""
	m.status = ""
	m.err = nil
}

func (m *UploadModel) addFile(path string) {
	sel, err := transfer.SelectFile(path)
	m.resetResult()
	if err != nil {
		m.err = err
		return
	}
	m.files = append(m.files, sel)
	m.cursor = len(m.files) - 1
}

func (m *UploadModel) removeFile(i int) {
	if i < 0 || i >= len(m.files) {
		return
	}
	m.files = append(m.files[:i], m.files[i+1:]...)
	if m.cursor >= len(m.files) {
		m.cursor = len(m.files) - 1
	}
	m.resetResult()
}

func (m UploadModel) Update(msg tea.Msg) (UploadModel, tea.Cmd) {
	switch msg := msg.(type) {
	case uploadProgressMsg:
		// a run cancelled by navigation may still flush messages; they
		// belong to a dead model, not this one
		if m.mode != modeUploading {
			return m, nil
		}
		m.progress = transfer.Event(msg)
		return m, m.waitForEvent

	case uploadDoneMsg:
		if m.mode != modeUploading {
			return m, nil
		}
		m.mode = modeReview
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.shareURL = msg.shareURL
		m.status = "Transfer ready"
		return m, nil

	case emailSentMsg:
		if m.mode != modeEmail {
			return m, nil
		}
		m.mode = modeReview
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.status = "Share link sent to " + m.emailInputs[emailTo].Value()
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}

	switch m.mode {
	case modePick:
		return m.updatePick(msg)
	case modeUploading:
		return m, nil
	case modeEmail:
		return m.updateEmail(msg)
	default:
		return m.updateReview(msg)
	}
}

func (m UploadModel) updatePick(msg tea.Msg) (UploadModel, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.Type == tea.KeyEsc {
		m.mode = modeReview
		return m, nil
	}
	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)
	if didSelect, path := m.picker.DidSelectFile(msg); didSelect {
		m.addFile(path)
		m.mode = modeReview
	}
	return m, cmd
}

func (m UploadModel) updateReview(msg tea.Msg) (UploadModel, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "a":
		m.mode = modePick
		return m, m.picker.Init()
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.files)-1 {
			m.cursor++
		}
	case "x", "backspace":
		m.removeFile(m.cursor)
	case "enter", "u":
		if len(m.files) > 0 && m.shareURL == "" {
			return m.startUpload()
		}
	case "c":
		if m.shareURL != "" {
			if err := clipboard.Copy(m.shareURL); err != nil {
				m.err = err
			} else {
				m.status = "Share link copied"
			}
		}
	case "e":
		if m.shareURL != "" {
			m.mode = modeEmail
			m.emailFocus = emailTo
			m.emailInputs[emailTo].Focus()
			m.emailInputs[emailMessage].Blur()
			return m, textinput.Blink
		}
	case "n":
		m.files = nil
		m.cursor = 0
		m.resetResult()
	}
	return m, nil
}

func (m UploadModel) updateEmail(msg tea.Msg) (UploadModel, tea.Cmd) {
	cmds := make([]tea.Cmd, len(m.emailInputs))
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyEsc:
			m.mode = modeReview
			return m, nil
		case tea.KeyTab, tea.KeyDown, tea.KeyShiftTab, tea.KeyUp:
			m.emailInputs[m.emailFocus].Blur()
			m.emailFocus = (m.emailFocus + 1) % len(m.emailInputs)
			m.emailInputs[m.emailFocus].Focus()
		case tea.KeyEnter:
			if m.emailFocus == emailMessage {
				return m.sendEmail()
			}
			m.emailInputs[m.emailFocus].Blur()
			m.emailFocus = emailMessage
			m.emailInputs[emailMessage].Focus()
		}
	}
	for i := range m.emailInputs {
		m.emailInputs[i], cmds[i] = m.emailInputs[i].Update(msg)
	}
	return m, tea.Batch(cmds...)
}

func (m UploadModel) startUpload() (UploadModel, tea.Cmd) {
	m.mode = modeUploading
	m.resetResult()
	m.progress = transfer.Event{Stage: transfer.StagePreparing, Total: len(m.files)}
	m.events = make(chan tea.Msg, 16)

	ctx, cancel := context.WithCancel(context.Background())
	m.cancelFn = cancel

	events := m.events
	files := append([]transfer.Selected(nil), m.files...)
	up := m.app.Uploader
	go func() {
		shareURL, err := up.Send(ctx, files, func(e transfer.Event) {
			events <- uploadProgressMsg(e)
		})
		events <- uploadDoneMsg{shareURL: shareURL, err: err}
	}()

	return m, tea.Batch(m.spin.Tick, m.waitForEvent)
}

// waitForEvent pumps one message from the upload goroutine into the program.
func (m UploadModel) waitForEvent() tea.Msg {
	return <-m.events
}

func (m UploadModel) sendEmail() (UploadModel, tea.Cmd) {
	to := m.emailInputs[emailTo].Value()
	message := m.emailInputs[emailMessage].Value()
	shareURL := m.shareURL
	app := m.app
	return m, func() tea.Msg {
		return emailSentMsg{err: transfer.EmailShareLink(context.Background(), app.API, shareURL, to, message)}
	}
}

func (m UploadModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Swift Transfer - Send Files") + "\n\n")

	switch m.mode {
	case modePick:
		b.WriteString("Pick a file to add:\n\n")
		b.WriteString(m.picker.View())
		b.WriteString("\n" + blurredStyle.Render("Esc to go back"))
		return b.String()

	case modeUploading:
		switch m.progress.Stage {
		case transfer.StageUploading:
			b.WriteString(fmt.Sprintf("%s Uploading %d/%d: %s\n",
				m.spin.View(), m.progress.Done, m.progress.Total, m.progress.Name))
		case transfer.StageFinalizing:
			b.WriteString(m.spin.View() + " Finalizing transfer...\n")
		default:
			b.WriteString(m.spin.View() + " Preparing transfer...\n")
		}
		return b.String()

	case modeEmail:
		b.WriteString("Email the share link\n\n")
		for i := range m.emailInputs {
			b.WriteString(m.emailInputs[i].View() + "\n")
		}
		b.WriteString("\n" + blurredStyle.Render("Enter to send, Esc to cancel"))
		return b.String()
	}

	if len(m.files) == 0 {
		b.WriteString(blurredStyle.Render("No files selected.") + "\n")
	}
	var total int64
	for i, f := range m.files {
		marker := "  "
		if i == m.cursor {
			marker = focusedStyle.Render("> ")
		}
		b.WriteString(fmt.Sprintf("%s%s  %s  %s\n", marker, f.Name, format.Size(f.Size), blurredStyle.Render(f.ContentType)))
		total += f.Size
	}
	if len(m.files) > 0 {
		b.WriteString(fmt.Sprintf("\n%d file(s), %s total\n", len(m.files), format.Size(total)))
	}

	if m.shareURL != "" {
		b.WriteString("\nShare link: " + shareURLStyle.Render(m.shareURL) + "\n")
		b.WriteString(blurredStyle.Render("'c' copy link, 'e' email link, 'n' new transfer") + "\n")
	} else {
		b.WriteString("\n" + blurredStyle.Render("'a' add file, 'x' remove, Enter to upload, Ctrl+L my transfers") + "\n")
	}

	if m.status != "" {
		b.WriteString("\n" + statusMessageStyle(m.status))
	}
	if m.err != nil {
		b.WriteString("\n" + errorMessageStyle(m.err.Error()))
	}
	return b.String()
}
