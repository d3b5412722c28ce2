package tui

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/notesapp/notes/internal/auth"
	"github.com/notesapp/notes/pkg/client"
	"github.com/notesapp/notes/pkg/domain"
)

type loginField int

const (
	fieldName loginField = iota
	fieldEmail
	fieldPassword
	numLoginFields
)

// authDoneMsg carries the result of a login or signup attempt.
type authDoneMsg struct {
	session auth.Session
	signup  bool
	err     error
}

type loginModel struct {
	svc        *auth.Service
	fields     [numLoginFields]string
	focus      loginField
	signup     bool
	submitting bool
	err        string
}

func newLoginModel(svc *auth.Service) loginModel {
	return loginModel{svc: svc, focus: fieldEmail}
}

// first is the topmost field for the current mode; name is signup-only.
func (m loginModel) first() loginField {
	if m.signup {
		return fieldName
	}
	return fieldEmail
}

func (m loginModel) next() loginField {
	if m.focus+1 >= numLoginFields {
		return m.first()
	}
	return m.focus + 1
}

func (m loginModel) prev() loginField {
	if m.focus <= m.first() {
		return numLoginFields - 1
	}
	return m.focus - 1
}

func (m loginModel) Update(msg tea.Msg) (loginModel, tea.Cmd) {
	switch msg := msg.(type) {
	case authDoneMsg:
		m.submitting = false
		if msg.err != nil {
			fallback := client.MsgLoginFailed
			if msg.signup {
				fallback = client.MsgSignupFailed
			}
			m.err = client.Message(msg.err, fallback)
			m.fields[fieldPassword] = ""
			m.focus = fieldPassword
		}
		return m, nil

	case tea.KeyMsg:
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m loginModel) updateKeys(msg tea.KeyMsg) (loginModel, tea.Cmd) {
	if m.submitting {
		return m, nil
	}

	switch msg.String() {
	case "ctrl+s":
		return m.submit()
	case "ctrl+t":
		m.signup = !m.signup
		m.err = ""
		if m.focus < m.first() {
			m.focus = m.first()
		}
	case "tab", "down":
		m.focus = m.next()
	case "shift+tab", "up":
		m.focus = m.prev()
	case "enter":
		if m.focus == fieldPassword {
			return m.submit()
		}
		m.focus = m.next()
	default:
		f := &m.fields[m.focus]
		*f = editRune(*f, msg.String())
	}
	return m, nil
}

func (m loginModel) credentials() domain.Credentials {
	creds := domain.Credentials{
		Email:    strings.TrimSpace(m.fields[fieldEmail]),
		Password: m.fields[fieldPassword],
	}
	if m.signup {
		creds.Name = strings.TrimSpace(m.fields[fieldName])
	}
	return creds
}

func (m loginModel) submit() (loginModel, tea.Cmd) {
	creds := m.credentials()
	switch {
	case m.signup && creds.Name == "":
		m.err = "Name is required"
		m.focus = fieldName
		return m, nil
	case creds.Email == "":
		m.err = "Email is required"
		m.focus = fieldEmail
		return m, nil
	case creds.Password == "":
		m.err = "Password is required"
		m.focus = fieldPassword
		return m, nil
	}

	m.err = ""
	m.submitting = true
	svc, signup := m.svc, m.signup
	return m, func() tea.Msg {
		var (
			s   auth.Session
			err error
		)
		if signup {
			s, err = svc.Signup(context.Background(), creds)
		} else {
			s, err = svc.Login(context.Background(), creds)
		}
		return authDoneMsg{session: s, signup: signup, err: err}
	}
}

func (m loginModel) View() string {
	var b strings.Builder

	title := "Sign in"
	if m.signup {
		title = "Create an account"
	}
	b.WriteString("  " + selectedStyle.Render(title) + "\n\n")

	if m.signup {
		b.WriteString("  " + renderField("name    ", m.fields[fieldName], "your name", m.focus == fieldName) + "\n")
	}
	b.WriteString("  " + renderField("email   ", m.fields[fieldEmail], "you@example.com", m.focus == fieldEmail) + "\n")
	b.WriteString("  " + renderField("password", maskSecret(m.fields[fieldPassword]), "••••••", m.focus == fieldPassword) + "\n\n")

	switch {
	case m.submitting && m.signup:
		b.WriteString("  " + dimStyle.Render("creating account..."))
	case m.submitting:
		b.WriteString("  " + dimStyle.Render("signing in..."))
	case m.err != "":
		b.WriteString("  " + errorStyle.Render(m.err))
	}
	return b.String()
}

func (m loginModel) helpKeys() string {
	toggle := "sign up"
	if m.signup {
		toggle = "sign in"
	}
	return helpBar(
		helpEntry("tab", "next"),
		helpEntry("enter", "submit"),
		helpEntry("ctrl+t", toggle),
		helpEntry("ctrl+c", "quit"),
	)
}
