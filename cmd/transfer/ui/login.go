package ui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"swift-transfer/internal/auth"
)

type loginResultMsg struct {
	err error
}

type LoginModel struct {
	app      *App
	Inputs   []textinput.Model
	FocusIdx int
	Err      error
	busy     bool
}

const (
	inputEmail = iota
	inputPassword
)

func NewLoginModel(app *App) LoginModel {
	inputs := make([]textinput.Model, 2)

	inputs[inputEmail] = textinput.New()
	inputs[inputEmail].Placeholder = "you@example.com"
	inputs[inputEmail].Prompt = "Email: "
	inputs[inputEmail].Focus()

	inputs[inputPassword] = textinput.New()
	inputs[inputPassword].Placeholder = "password"
	inputs[inputPassword].Prompt = "Password: "
	inputs[inputPassword].EchoMode = textinput.EchoPassword

	return LoginModel{app: app, Inputs: inputs}
}

func (m LoginModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m LoginModel) Update(msg tea.Msg) (LoginModel, tea.Cmd) {
	cmds := make([]tea.Cmd, len(m.Inputs))

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyEnter:
			if m.FocusIdx == len(m.Inputs)-1 && !m.busy {
				m.busy = true
				m.Err = nil
				return m, m.loginCmd()
			}
			m.nextInput()
		case tea.KeyTab, tea.KeyDown:
			m.nextInput()
		case tea.KeyShiftTab, tea.KeyUp:
			m.prevInput()
		}
	}

	for i := range m.Inputs {
		m.Inputs[i], cmds[i] = m.Inputs[i].Update(msg)
	}
	return m, tea.Batch(cmds...)
}

func (m *LoginModel) nextInput() {
	m.Inputs[m.FocusIdx].Blur()
	m.FocusIdx = (m.FocusIdx + 1) % len(m.Inputs)
	m.Inputs[m.FocusIdx].Focus()
}

func (m *LoginModel) prevInput() {
	m.Inputs[m.FocusIdx].Blur()
	m.FocusIdx--
	if m.FocusIdx < 0 {
		m.FocusIdx = len(m.Inputs) - 1
	}
	m.Inputs[m.FocusIdx].Focus()
}

func (m LoginModel) loginCmd() tea.Cmd {
	email := m.Inputs[inputEmail].Value()
	password := m.Inputs[inputPassword].Value()
	app := m.app
	return func() tea.Msg {
		_, err := auth.Login(context.Background(), app.API, email, password)
		return loginResultMsg{err: err}
	}
}

func (m LoginModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Swift Transfer - Sign In") + "\n\n")
	for i := range m.Inputs {
		b.WriteString(m.Inputs[i].View())
		if i < len(m.Inputs)-1 {
			b.WriteRune('\n')
		}
	}
	b.WriteString("\n\n")
	if m.busy {
		b.WriteString(blurredStyle.Render("Signing in..."))
	} else {
		b.WriteString(blurredStyle.Render("Tab to switch fields, Enter to submit"))
	}
	if m.Err != nil {
		b.WriteString("\n\n" + errorMessageStyle(m.Err.Error()))
	}
	return b.String()
}
