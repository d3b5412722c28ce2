package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/notesapp/notes/internal/auth"
	"github.com/notesapp/notes/internal/fakeapi"
	"github.com/notesapp/notes/internal/notes"
	"github.com/notesapp/notes/pkg/client"
)

type memTokens struct {
	token   string
	saved   int
	cleared int
}

func (m *memTokens) SaveToken(token string) error {
	m.token = token
	m.saved++
	return nil
}

func (m *memTokens) ClearToken() (bool, error) {
	had := m.token != ""
	m.token = ""
	m.cleared++
	return had, nil
}

func newTestApp(t *testing.T) (App, *fakeapi.Server, *memTokens) {
	t.Helper()
	srv := fakeapi.New()
	t.Cleanup(srv.Close)

	c := client.New(srv.BaseURL())
	tokens := &memTokens{}
	a := NewApp(Options{
		Auth:   auth.NewService(c, auth.NewStore()),
		Notes:  notes.NewService(c, notes.NewStore()),
		Tokens: tokens,
	})
	a.width = 80
	a.height = 40
	return a, srv, tokens
}

// signedInApp returns an app on the dashboard for a fresh account. Nothing
// has been fetched yet.
func signedInApp(t *testing.T) (App, *fakeapi.Server, string) {
	t.Helper()
	a, srv, _ := newTestApp(t)
	tok := srv.AddUser("ada@example.com", "pw")
	a.auth.Restore(tok)
	a.view = viewDashboard
	return a, srv, tok
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, a App, msg tea.Msg) (App, tea.Cmd) {
	t.Helper()
	m, cmd := a.Update(msg)
	return m.(App), cmd
}

// settle runs cmd and feeds its result back until the app goes quiet.
func settle(t *testing.T, a App, cmd tea.Cmd) App {
	t.Helper()
	for i := 0; cmd != nil; i++ {
		if i > 10 {
			t.Fatal("command chain did not settle")
		}
		a, cmd = update(t, a, cmd())
	}
	return a
}

func press(t *testing.T, a App, keys ...tea.KeyMsg) App {
	t.Helper()
	for _, k := range keys {
		var cmd tea.Cmd
		a, cmd = update(t, a, k)
		a = settle(t, a, cmd)
	}
	return a
}

func typeText(t *testing.T, a App, s string) App {
	t.Helper()
	for _, r := range s {
		a, _ = update(t, a, key(string(r)))
	}
	return a
}

func TestAppStartsOnLoginWithoutToken(t *testing.T) {
	a, _, _ := newTestApp(t)
	if a.view != viewLogin {
		t.Fatalf("expected login view, got %d", a.view)
	}
	if !strings.Contains(a.View(), "Sign in") {
		t.Errorf("login view not rendered:\n%s", a.View())
	}
}

func TestAppStartsOnDashboardWithRestoredToken(t *testing.T) {
	srv := fakeapi.New()
	defer srv.Close()
	c := client.New(srv.BaseURL())
	authSvc := auth.NewService(c, auth.NewStore())
	authSvc.Restore("persisted")

	a := NewApp(Options{Auth: authSvc, Notes: notes.NewService(c, notes.NewStore())})
	if a.view != viewDashboard {
		t.Fatalf("expected dashboard view, got %d", a.view)
	}
	if a.Init() == nil {
		t.Error("expected Init to return commands")
	}
}

func TestAppLoginFlow(t *testing.T) {
	a, srv, tokens := newTestApp(t)
	tok := srv.AddUser("ada@example.com", "secret")
	srv.Seed(tok, fakeNote("1", "Groceries", "milk"))

	a = typeText(t, a, "ada@example.com")
	a = press(t, a, tea.KeyMsg{Type: tea.KeyTab})
	a = typeText(t, a, "secret")
	a = press(t, a, tea.KeyMsg{Type: tea.KeyEnter})

	if a.view != viewDashboard {
		t.Fatalf("expected dashboard after login, got %d (err=%q)", a.view, a.login.err)
	}
	if tokens.token != tok || tokens.saved != 1 {
		t.Errorf("token not persisted: %+v", tokens)
	}
	if a.auth.Token() != tok {
		t.Errorf("session token = %q, want %q", a.auth.Token(), tok)
	}
	s := a.notes.Store().State()
	if len(s.Notes) != 1 || s.Notes[0].Title != "Groceries" {
		t.Errorf("notes not fetched after login: %+v", s.Notes)
	}
	if !strings.Contains(a.View(), "ada@example.com") {
		t.Errorf("signed-in user missing from header:\n%s", a.View())
	}
}

func TestAppLoginFailureShowsServerMessage(t *testing.T) {
	a, srv, tokens := newTestApp(t)
	srv.AddUser("ada@example.com", "secret")

	a = typeText(t, a, "ada@example.com")
	a = press(t, a, tea.KeyMsg{Type: tea.KeyTab})
	a = typeText(t, a, "wrong")
	a = press(t, a, tea.KeyMsg{Type: tea.KeyEnter})

	if a.view != viewLogin {
		t.Fatalf("expected to stay on login, got %d", a.view)
	}
	if a.login.err != "Invalid email or password" {
		t.Errorf("login.err = %q", a.login.err)
	}
	if a.login.fields[fieldPassword] != "" {
		t.Error("password should be cleared after a failed attempt")
	}
	if a.auth.Session().Authenticated || tokens.saved != 0 {
		t.Error("failed login must not authenticate or persist")
	}
	if !strings.Contains(a.View(), "Invalid email or password") {
		t.Errorf("error not rendered:\n%s", a.View())
	}
}

func TestAppLoginFailureDefaultMessage(t *testing.T) {
	a, srv, _ := newTestApp(t)
	srv.Fail("POST /auth/login", fakeapi.Failure{Status: 502, RawBody: "bad gateway"})

	a = typeText(t, a, "ada@example.com")
	a = press(t, a, tea.KeyMsg{Type: tea.KeyTab})
	a = typeText(t, a, "pw")
	a = press(t, a, tea.KeyMsg{Type: tea.KeyEnter})

	if a.login.err != client.MsgLoginFailed {
		t.Errorf("login.err = %q, want %q", a.login.err, client.MsgLoginFailed)
	}
}

func TestAppEmptyTokenStaysOnLogin(t *testing.T) {
	for _, signup := range []bool{false, true} {
		a, srv, tokens := newTestApp(t)
		route, want := "POST /auth/login", client.MsgLoginFailed
		if signup {
			route, want = "POST /auth/signup", client.MsgSignupFailed
		}
		srv.Fail(route, fakeapi.Failure{Status: 200, RawBody: `{"token":""}`})

		if signup {
			a = press(t, a, tea.KeyMsg{Type: tea.KeyCtrlT}, tea.KeyMsg{Type: tea.KeyShiftTab})
			a = typeText(t, a, "Ada")
			a = press(t, a, tea.KeyMsg{Type: tea.KeyTab})
		}
		a = typeText(t, a, "ada@example.com")
		a = press(t, a, tea.KeyMsg{Type: tea.KeyTab})
		a = typeText(t, a, "pw")
		a = press(t, a, tea.KeyMsg{Type: tea.KeyCtrlS})

		if a.view != viewLogin {
			t.Errorf("signup=%v: expected to stay on login, got %d", signup, a.view)
		}
		if a.login.err != want {
			t.Errorf("signup=%v: login.err = %q, want %q", signup, a.login.err, want)
		}
		if a.auth.Session().Authenticated || tokens.saved != 0 {
			t.Errorf("signup=%v: empty token must not authenticate or persist (saved=%d)", signup, tokens.saved)
		}
	}
}

func TestAppSignupFlow(t *testing.T) {
	a, srv, _ := newTestApp(t)

	a = press(t, a, tea.KeyMsg{Type: tea.KeyCtrlT})
	if !a.login.signup || a.login.focus != fieldEmail {
		t.Fatalf("expected signup mode with focus kept on email, got signup=%v focus=%d", a.login.signup, a.login.focus)
	}
	a = press(t, a, tea.KeyMsg{Type: tea.KeyShiftTab})
	if a.login.focus != fieldName {
		t.Fatalf("expected name field reachable in signup mode, got %d", a.login.focus)
	}
	a = typeText(t, a, "Ada")
	a = press(t, a, tea.KeyMsg{Type: tea.KeyTab})
	a = typeText(t, a, "ada@example.com")
	a = press(t, a, tea.KeyMsg{Type: tea.KeyTab})
	a = typeText(t, a, "pw")
	a = press(t, a, tea.KeyMsg{Type: tea.KeyCtrlS})

	if a.view != viewDashboard {
		t.Fatalf("expected dashboard after signup, got %d (err=%q)", a.view, a.login.err)
	}
	if u := a.auth.Session().User; u == nil || u.Name != "Ada" {
		t.Errorf("signup user = %+v", u)
	}
	if len(srv.Notes(a.auth.Token())) != 0 {
		t.Error("new account should have no notes")
	}
}

func TestAppSignupDuplicateShowsMessage(t *testing.T) {
	a, srv, _ := newTestApp(t)
	srv.AddUser("ada@example.com", "pw")

	a = press(t, a, tea.KeyMsg{Type: tea.KeyCtrlT}, tea.KeyMsg{Type: tea.KeyShiftTab})
	a = typeText(t, a, "Ada")
	a = press(t, a, tea.KeyMsg{Type: tea.KeyTab})
	a = typeText(t, a, "ada@example.com")
	a = press(t, a, tea.KeyMsg{Type: tea.KeyTab})
	a = typeText(t, a, "pw")
	a = press(t, a, tea.KeyMsg{Type: tea.KeyEnter})

	if a.view != viewLogin || a.login.err != "User already exists" {
		t.Errorf("view=%d err=%q", a.view, a.login.err)
	}
}

func TestAppLogoutClearsEverything(t *testing.T) {
	a, srv, tokens := newTestApp(t)
	tok := srv.AddUser("ada@example.com", "pw")
	srv.Seed(tok, fakeNote("1", "A", "B"))

	a = typeText(t, a, "ada@example.com")
	a = press(t, a, tea.KeyMsg{Type: tea.KeyTab})
	a = typeText(t, a, "pw")
	a = press(t, a, tea.KeyMsg{Type: tea.KeyEnter})
	if len(a.notes.Store().State().Notes) != 1 {
		t.Fatal("setup: expected one note")
	}

	a = press(t, a, key("L"))

	if a.view != viewLogin {
		t.Errorf("expected login view after logout, got %d", a.view)
	}
	if a.auth.Token() != "" || a.auth.Session().Authenticated {
		t.Error("session not cleared")
	}
	if got := a.notes.Store().State(); len(got.Notes) != 0 || got.Error != "" {
		t.Errorf("notes not reset: %+v", got)
	}
	if tokens.cleared != 1 || tokens.token != "" {
		t.Errorf("token file not cleared: %+v", tokens)
	}
}

func TestAppLogoutDropsFetchBuiltBefore(t *testing.T) {
	a, srv, tok := signedInApp(t)
	srv.Seed(tok, fakeNote("1", "A", "B"))

	cmd := a.dash.fetch()
	a = a.signedOut()
	before := len(srv.Requests())
	a, _ = update(t, a, cmd())

	if a.view != viewLogin {
		t.Errorf("expected login view, got %d", a.view)
	}
	if got := a.notes.Store().State(); len(got.Notes) != 0 || got.Loading {
		t.Errorf("late fetch repopulated the store: %+v", got)
	}
	if len(srv.Requests()) != before {
		t.Error("fetch built before logout still reached the API")
	}
}

func TestAppLogoutDropsDeleteAndSubmitBuiltBefore(t *testing.T) {
	a, srv, tok := signedInApp(t)
	srv.Seed(tok, fakeNote("1", "A", "B"))
	a = settle(t, a, a.dash.fetch())

	_, del := update(t, a, key("d"))
	a = press(t, a, key("n"))
	a = typeText(t, a, "T")
	a = press(t, a, tea.KeyMsg{Type: tea.KeyTab})
	a = typeText(t, a, "C")
	_, save := update(t, a, tea.KeyMsg{Type: tea.KeyCtrlS})
	if del == nil || save == nil {
		t.Fatal("setup: expected delete and save commands")
	}

	a = a.signedOut()
	for _, cmd := range []tea.Cmd{del, save} {
		msg, ok := cmd().(notesDoneMsg)
		if !ok || msg.err != notes.ErrDiscarded {
			t.Errorf("got %#v, want a discarded result", msg)
		}
		a, _ = update(t, a, msg)
	}

	if got := a.notes.Store().State(); len(got.Notes) != 0 {
		t.Errorf("store repopulated after logout: %+v", got)
	}
	if n := srv.Notes(tok); len(n) != 1 || n[0].ID != "1" {
		t.Errorf("server notes changed after logout: %+v", n)
	}
}

func TestAppNextUserDoesNotSeePreviousNotes(t *testing.T) {
	a, srv, tok := signedInApp(t)
	srv.Seed(tok, fakeNote("1", "A", "B"))
	stale := a.dash.fetch()
	a = a.signedOut()
	a, _ = update(t, a, stale())

	srv.AddUser("bob@example.com", "pw")
	srv.Fail("GET /notes", fakeapi.Failure{Status: 500, RawBody: "down"})
	a = typeText(t, a, "bob@example.com")
	a = press(t, a, tea.KeyMsg{Type: tea.KeyTab})
	a = typeText(t, a, "pw")
	a = press(t, a, tea.KeyMsg{Type: tea.KeyEnter})

	got := a.notes.Store().State()
	if a.view != viewDashboard || len(got.Notes) != 0 || got.Error != client.MsgFetchFailed {
		t.Errorf("view=%d state=%+v", a.view, got)
	}
}

func TestAppQuitKeys(t *testing.T) {
	a, _, _ := signedInApp(t)

	if _, cmd := update(t, a, key("q")); cmd == nil {
		t.Error("expected quit command on q in list mode")
	}
	if _, cmd := update(t, a, tea.KeyMsg{Type: tea.KeyCtrlC}); cmd == nil {
		t.Error("expected quit command on ctrl+c")
	}

	a = press(t, a, key("n"))
	a, cmd := update(t, a, key("q"))
	if cmd != nil {
		t.Error("q while typing must not quit")
	}
	if a.dash.title != "q" {
		t.Errorf("q while typing should be text, title=%q", a.dash.title)
	}
}

func TestAppQOnLoginIsText(t *testing.T) {
	a, _, _ := newTestApp(t)
	a, cmd := update(t, a, key("q"))
	if cmd != nil {
		t.Error("q on the login form must not quit")
	}
	if a.login.fields[fieldEmail] != "q" {
		t.Errorf("email = %q", a.login.fields[fieldEmail])
	}
}

func TestAppStoreChangeRearmsListener(t *testing.T) {
	a, _, _ := signedInApp(t)

	a.notes.Store().Dispatch(notes.FetchStarted{})
	select {
	case <-a.changes:
	default:
		t.Fatal("store change not forwarded to the app")
	}

	_, cmd := update(t, a, storeChangedMsg{})
	if cmd == nil {
		t.Error("expected the change listener to be re-armed")
	}
}

func TestAppOpenWeb(t *testing.T) {
	a, _, _ := signedInApp(t)
	if _, cmd := update(t, a, key("o")); cmd != nil {
		t.Error("o without a web URL should do nothing")
	}

	a.webURL = "http://localhost:3000"
	if _, cmd := update(t, a, key("o")); cmd == nil {
		t.Error("expected an open command when a web URL is set")
	}

	a, _ = update(t, a, openResultMsg{err: errTest})
	if a.notice == "" {
		t.Error("expected a notice when the browser cannot be opened")
	}
}

func TestAppWindowSizePropagates(t *testing.T) {
	a, _, _ := signedInApp(t)
	a, _ = update(t, a, tea.WindowSizeMsg{Width: 100, Height: 30})
	if a.width != 100 || a.dash.width != 100 || a.dash.height != 26 {
		t.Errorf("sizes: app=%dx%d dash=%dx%d", a.width, a.height, a.dash.width, a.dash.height)
	}
}

func TestAppViewFitsHeight(t *testing.T) {
	a, srv, tok := signedInApp(t)
	for i := 0; i < 40; i++ {
		srv.Seed(tok, fakeNote(string(rune('a'+i%26))+string(rune('0'+i/26)), "note", "body"))
	}
	a = settle(t, a, a.dash.fetch())
	a, _ = update(t, a, tea.WindowSizeMsg{Width: 80, Height: 24})

	if lines := strings.Count(a.View(), "\n") + 1; lines > 24 {
		t.Errorf("view is %d lines, want <= 24", lines)
	}
}
