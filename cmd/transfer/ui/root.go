package ui

import (
	"swift-transfer/internal/api"
	"swift-transfer/internal/auth"
	"swift-transfer/internal/transfer"

	tea "github.com/charmbracelet/bubbletea"
)

// App bundles the shared client core the views operate on.
type App struct {
	API        *api.Client
	Uploader   *transfer.Uploader
	Downloader *transfer.Downloader
}

type route int

const (
	routeResolving route = iota
	routeLogin
	routeUpload
	routeList
	routeDetail
)

// protected routes bounce to the login view when no token is present.
func (r route) protected() bool { return r == routeUpload || r == routeList }

// sessionResolvedMsg ends the initial token-file read at startup.
type sessionResolvedMsg struct {
	token string
}

// openDetailMsg asks the root to show one transfer.
type openDetailMsg struct {
	transferID string
}

// backMsg returns to the transfers list.
type backMsg struct{}

type RootModel struct {
	app      *App
	state    route
	Login    LoginModel
	Upload   UploadModel
	List     ListModel
	Detail   DetailModel
	quitting bool
	width    int
	height   int

	// where to go after sign-in, preserving the originally requested view
	pendingRoute route
	pendingID    string
}

func NewRootModel(app *App) RootModel {
	return RootModel{
		app:          app,
		state:        routeResolving,
		pendingRoute: routeUpload,
	}
}

func (m RootModel) Init() tea.Cmd {
	return func() tea.Msg {
		return sessionResolvedMsg{token: auth.LoadToken()}
	}
}

// navigate is the route guard: protected targets require a signed-in session.
func (m *RootModel) navigate(target route, transferID string) tea.Cmd {
	if target.protected() && auth.GetCurrentToken() == "" {
		m.pendingRoute = target
		m.pendingID = transferID
		m.state = routeLogin
		m.Login = NewLoginModel(m.app)
		return m.Login.Init()
	}
	m.state = target
	switch target {
	case routeLogin:
		m.Login = NewLoginModel(m.app)
		return m.Login.Init()
	case routeUpload:
		m.Upload = NewUploadModel(m.app, m.width, m.height)
		return m.Upload.Init()
	case routeList:
		m.List = NewListModel(m.app, m.width, m.height)
		return m.List.Init()
	case routeDetail:
		m.Detail = NewDetailModel(m.app, transferID, m.width, m.height)
		return m.Detail.Init()
	}
	return nil
}

func (m RootModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.quitting = true
			m.Upload.cancel()
			m.Detail.cancel()
			return m, tea.Quit
		case "ctrl+u":
			if m.state != routeResolving && m.state != routeLogin {
				m.Upload.cancel()
				m.Detail.cancel()
				return m, m.navigate(routeUpload, "")
			}
		case "ctrl+l":
			if m.state != routeResolving && m.state != routeLogin {
				m.Upload.cancel()
				m.Detail.cancel()
				return m, m.navigate(routeList, "")
			}
		}

	case sessionResolvedMsg:
		return m, m.navigate(routeUpload, "")

	case loginResultMsg:
		if msg.err != nil {
			m.Login.Err = msg.err
			m.Login.busy = false
			return m, nil
		}
		return m, m.navigate(m.pendingRoute, m.pendingID)

	case openDetailMsg:
		return m, m.navigate(routeDetail, msg.transferID)

	case backMsg:
		m.Detail.cancel()
		return m, m.navigate(routeList, "")
	}

	var cmd tea.Cmd
	switch m.state {
	case routeLogin:
		m.Login, cmd = m.Login.Update(msg)
	case routeUpload:
		m.Upload, cmd = m.Upload.Update(msg)
	case routeList:
		m.List, cmd = m.List.Update(msg)
	case routeDetail:
		m.Detail, cmd = m.Detail.Update(msg)
	}
	return m, cmd
}

func (m RootModel) View() string {
	if m.quitting {
		return "Bye!\n"
	}
	switch m.state {
	case routeResolving:
		// blank frame while the persisted session is being read
		return ""
	case routeLogin:
		return m.Login.View()
	case routeUpload:
		return m.Upload.View()
	case routeList:
		return m.List.View()
	case routeDetail:
		return m.Detail.View()
	}
	return "Unknown state"
}
