package tui

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/notesapp/notes/internal/auth"
	"github.com/notesapp/notes/internal/browser"
	"github.com/notesapp/notes/internal/notes"
)

type view int

const (
	viewLogin view = iota
	viewDashboard
)

// TokenStore persists the session token between runs.
type TokenStore interface {
	SaveToken(token string) error
	ClearToken() (bool, error)
}

// Options configures NewApp. Auth and Notes are required.
type Options struct {
	Auth   *auth.Service
	Notes  *notes.Service
	Tokens TokenStore // optional
	WebURL string     // optional; enables the "o" key
	Logger *slog.Logger
}

// storeChangedMsg is delivered whenever the notes store changes so the
// view re-renders while a request is in flight.
type storeChangedMsg struct{}

type openResultMsg struct {
	err error
}

// App is the root Bubbletea model.
type App struct {
	auth    *auth.Service
	notes   *notes.Service
	tokens  TokenStore
	webURL  string
	logger  *slog.Logger
	changes chan struct{}

	view   view
	login  loginModel
	dash   dashboardModel
	notice string
	width  int
	height int
	frame  int // logo shimmer animation frame
}

// NewApp creates the TUI. If the auth store already holds a token the app
// starts on the dashboard.
func NewApp(opts Options) App {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	changes := make(chan struct{}, 1)
	opts.Notes.Store().Subscribe(func(notes.State) {
		select {
		case changes <- struct{}{}:
		default:
		}
	})

	a := App{
		auth:    opts.Auth,
		notes:   opts.Notes,
		tokens:  opts.Tokens,
		webURL:  opts.WebURL,
		logger:  logger,
		changes: changes,
		login:   newLoginModel(opts.Auth),
		dash:    newDashboardModel(opts.Notes, opts.Auth),
	}
	if opts.Auth.Token() != "" {
		a.view = viewDashboard
	}
	return a
}

func waitForChange(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-ch
		return storeChangedMsg{}
	}
}

func (a App) Init() tea.Cmd {
	cmds := []tea.Cmd{shimmerTickCmd(), waitForChange(a.changes)}
	if a.view == viewDashboard {
		cmds = append(cmds, a.dash.fetch())
	}
	return tea.Batch(cmds...)
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		// Chrome: header(2) + notice(1) + help(1) = 4 lines
		a.dash, _ = a.dash.Update(tea.WindowSizeMsg{Width: msg.Width, Height: msg.Height - 4})
		return a, nil

	case shimmerTickMsg:
		a.frame++
		return a, shimmerTickCmd()

	case storeChangedMsg:
		a.dash = a.dash.clampCursor()
		return a, waitForChange(a.changes)

	case authDoneMsg:
		a.login, _ = a.login.Update(msg)
		if msg.err != nil {
			a.logger.Debug("authentication failed", "signup", msg.signup, "error", msg.err)
			return a, nil
		}
		return a.signedIn(msg.session)

	case openResultMsg:
		if msg.err != nil {
			a.notice = "could not open browser"
			a.logger.Warn("open browser", "url", a.webURL, "error", msg.err)
		}
		return a, nil

	case tea.KeyMsg:
		a.notice = ""
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if a.view == viewDashboard && !a.dash.typing() {
			switch msg.String() {
			case "q":
				return a, tea.Quit
			case "L":
				return a.signedOut(), nil
			case "o":
				return a, a.openWeb()
			}
		}
	}

	var cmd tea.Cmd
	switch a.view {
	case viewLogin:
		a.login, cmd = a.login.Update(msg)
	case viewDashboard:
		a.dash, cmd = a.dash.Update(msg)
	}
	return a, cmd
}

func (a App) signedIn(s auth.Session) (App, tea.Cmd) {
	if a.tokens != nil {
		if err := a.tokens.SaveToken(s.Token); err != nil {
			a.notice = "signed in, but the session could not be saved"
			a.logger.Warn("save token", "error", err)
		}
	}
	a.login = newLoginModel(a.auth)
	a.dash = newDashboardModel(a.notes, a.auth)
	a.dash, _ = a.dash.Update(tea.WindowSizeMsg{Width: a.width, Height: a.height - 4})
	a.view = viewDashboard
	return a, a.dash.fetch()
}

func (a App) signedOut() App {
	a.auth.Logout()
	a.notes.Reset()
	if a.tokens != nil {
		if _, err := a.tokens.ClearToken(); err != nil {
			a.logger.Warn("clear token", "error", err)
		}
	}
	a.login = newLoginModel(a.auth)
	a.view = viewLogin
	a.notice = "signed out"
	return a
}

func (a App) openWeb() tea.Cmd {
	if a.webURL == "" {
		return nil
	}
	target := a.webURL
	return func() tea.Msg {
		return openResultMsg{err: browser.Open(target)}
	}
}

func (a App) View() string {
	logo := renderShimmerLogo(a.frame)
	logoPad := (a.width - lipgloss.Width(logo)) / 2
	if logoPad < 0 {
		logoPad = 0
	}
	header := strings.Repeat(" ", logoPad) + logo + "\n"

	if user := a.auth.Session().User; user != nil && a.view == viewDashboard {
		who := user.Email
		if user.Name != "" {
			who = fmt.Sprintf("%s <%s>", user.Name, user.Email)
		}
		who = metaStyle.Render(who)
		pad := (a.width - lipgloss.Width(who)) / 2
		if pad < 0 {
			pad = 0
		}
		header += strings.Repeat(" ", pad) + who
	}

	var body, help string
	switch a.view {
	case viewLogin:
		body = a.login.View()
		help = a.login.helpKeys()
	case viewDashboard:
		body = a.dash.View()
		help = a.dash.helpKeys()
	}

	notice := ""
	if a.notice != "" {
		notice = " " + dimStyle.Render(a.notice)
	}

	// Chrome budget: header(2) + notice(1) + help(1)
	chrome := 4
	body = strings.TrimRight(truncateToHeight(body, a.height-chrome), "\n")

	return fmt.Sprintf("%s\n%s\n%s\n%s", header, body, notice, help)
}
