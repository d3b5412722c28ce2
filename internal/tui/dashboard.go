package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/notesapp/notes/internal/auth"
	"github.com/notesapp/notes/internal/notes"
	"github.com/notesapp/notes/pkg/domain"
)

type dashFocus int

const (
	focusList dashFocus = iota
	focusTitle
	focusContent
)

type noteOp int

const (
	opFetch noteOp = iota
	opSubmit
	opDelete
)

// notesDoneMsg reports that a notes request finished. The outcome itself
// lives in the store; err is only used to decide whether to clear the form.
// Commands are scoped to the session they were built in, so after a logout
// they finish with notes.ErrDiscarded.
type notesDoneMsg struct {
	op  noteOp
	err error
}

type copyResultMsg struct {
	err error
}

type dashboardModel struct {
	notes   *notes.Service
	auth    *auth.Service
	title   string
	content string
	focus   dashFocus
	cursor  int
	status  string
	warn    bool
	width   int
	height  int
}

func newDashboardModel(n *notes.Service, a *auth.Service) dashboardModel {
	return dashboardModel{notes: n, auth: a}
}

func (m dashboardModel) state() notes.State {
	return m.notes.Store().State()
}

// typing reports whether keystrokes go to the form.
func (m dashboardModel) typing() bool {
	return m.focus != focusList
}

func (m dashboardModel) selected() (domain.Note, bool) {
	list := m.state().Notes
	if m.cursor < 0 || m.cursor >= len(list) {
		return domain.Note{}, false
	}
	return list[m.cursor], true
}

func (m dashboardModel) clampCursor() dashboardModel {
	n := len(m.state().Notes)
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	return m
}

func (m dashboardModel) fetch() tea.Cmd {
	sc, token := m.notes.Scope(), m.auth.Token()
	return func() tea.Msg {
		return notesDoneMsg{op: opFetch, err: sc.Fetch(context.Background(), token)}
	}
}

func (m dashboardModel) clearForm() dashboardModel {
	m.title, m.content = "", ""
	m.focus = focusList
	return m
}

func (m dashboardModel) Update(msg tea.Msg) (dashboardModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case notesDoneMsg:
		if msg.op == opSubmit && msg.err == nil {
			m = m.clearForm()
			m.status = "saved"
		}
		if msg.op == opDelete && msg.err == nil {
			m.status = "deleted"
		}
		return m.clampCursor(), nil

	case copyResultMsg:
		if msg.err != nil {
			m.status, m.warn = "copy failed", true
		} else {
			m.status = "copied to clipboard"
		}
		return m, nil

	case tea.KeyMsg:
		m.status, m.warn = "", false
		if m.typing() {
			return m.updateForm(msg)
		}
		return m.updateList(msg)
	}
	return m, nil
}

func (m dashboardModel) updateList(msg tea.KeyMsg) (dashboardModel, tea.Cmd) {
	loading := m.state().Loading

	switch msg.String() {
	case "j", "down":
		if m.cursor < len(m.state().Notes)-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "n", "tab":
		m.focus = focusTitle
	case "e", "enter":
		if loading {
			return m, nil
		}
		if n, ok := m.selected(); ok {
			m.notes.Edit(n)
			m.title, m.content = n.Title, n.Content
			m.focus = focusTitle
		}
	case "d":
		if loading {
			return m, nil
		}
		if n, ok := m.selected(); ok {
			sc, token, id := m.notes.Scope(), m.auth.Token(), n.ID
			return m, func() tea.Msg {
				return notesDoneMsg{op: opDelete, err: sc.Delete(context.Background(), token, id)}
			}
		}
	case "c":
		if n, ok := m.selected(); ok {
			text := n.Content
			return m, func() tea.Msg {
				return copyResultMsg{err: clipboard.WriteAll(text)}
			}
		}
	case "r":
		if loading {
			return m, nil
		}
		return m, m.fetch()
	case "esc":
		if m.state().Editing() {
			m.notes.Cancel()
			m = m.clearForm()
		}
	}
	return m, nil
}

func (m dashboardModel) updateForm(msg tea.KeyMsg) (dashboardModel, tea.Cmd) {
	switch msg.String() {
	case "ctrl+s":
		return m.submit()
	case "esc":
		if m.state().Editing() {
			m.notes.Cancel()
			return m.clearForm(), nil
		}
		m.focus = focusList
	case "tab":
		if m.focus == focusTitle {
			m.focus = focusContent
		} else {
			m.focus = focusList
		}
	case "shift+tab":
		if m.focus == focusContent {
			m.focus = focusTitle
		} else {
			m.focus = focusList
		}
	case "enter":
		if m.focus == focusTitle {
			m.focus = focusContent
		} else {
			m.content += "\n"
		}
	case "backspace":
		if m.focus == focusTitle {
			m.title = editRune(m.title, "backspace")
		} else {
			m.content = editRune(m.content, "backspace")
		}
	default:
		if m.focus == focusTitle {
			m.title = editRune(m.title, msg.String())
		} else {
			m.content = editRune(m.content, msg.String())
		}
	}
	return m, nil
}

func (m dashboardModel) submit() (dashboardModel, tea.Cmd) {
	if m.state().Loading {
		return m, nil
	}
	in := domain.NoteInput{Title: m.title, Content: m.content}
	if err := in.Validate(); err != nil {
		m.status, m.warn = "title and content are required", true
		return m, nil
	}
	sc, token := m.notes.Scope(), m.auth.Token()
	return m, func() tea.Msg {
		return notesDoneMsg{op: opSubmit, err: sc.Submit(context.Background(), token, in)}
	}
}

func (m dashboardModel) formView() string {
	s := m.state()

	heading := "New note"
	if s.Editing() {
		heading = "Edit note"
	}

	var b strings.Builder
	b.WriteString(selectedStyle.Render(heading) + "\n")
	b.WriteString(renderField("title  ", m.title, "a short title", m.focus == focusTitle) + "\n")
	b.WriteString(renderField("content", m.content, "write something...", m.focus == focusContent) + "\n")

	button := accentStyle.Render("[ctrl+s] ")
	switch {
	case s.Loading:
		button += dimStyle.Render("Saving...")
	case s.Editing():
		button += normalStyle.Render("Update Note")
	default:
		button += normalStyle.Render("Add Note")
	}
	if s.Editing() {
		button += "  " + helpEntry("esc", "cancel")
	}
	b.WriteString(button)

	box := formBoxStyle
	if m.typing() {
		box = formBoxFocusStyle
	}
	if m.width > 4 {
		box = box.Width(m.width - 4)
	}
	return box.Render(b.String())
}

func (m dashboardModel) listView() string {
	s := m.state()
	var b strings.Builder

	if len(s.Notes) == 0 {
		if s.Loading {
			b.WriteString("  " + dimStyle.Render("loading notes..."))
		} else {
			b.WriteString("  " + dimStyle.Render("No notes yet. Press n to write one."))
		}
		return b.String()
	}

	maxContent := m.width - 8
	if maxContent < 20 {
		maxContent = 60
	}
	for i, n := range s.Notes {
		prefix := "  "
		title := normalStyle.Render(n.Title)
		if i == m.cursor && !m.typing() {
			prefix = accentStyle.Render("> ")
			title = noteTitleStyle.Render(n.Title)
		}
		if s.CurrentNote != nil && s.CurrentNote.ID == n.ID {
			title += " " + metaStyle.Render("(editing)")
		}
		b.WriteString(prefix + noteBarStyle.Render("│ ") + title + "\n")

		line := dimStyle.Render(truncStr(oneLine(n.Content), maxContent))
		if n.UpdatedAt != nil {
			line += "  " + metaStyle.Render(formatTime(*n.UpdatedAt))
		}
		b.WriteString("  " + noteBarStyle.Render("│ ") + line + "\n")
	}
	return b.String()
}

func (m dashboardModel) View() string {
	s := m.state()
	var b strings.Builder

	b.WriteString(m.formView() + "\n")

	if s.Error != "" {
		b.WriteString(" " + errorStyle.Render(s.Error) + "\n")
	} else if m.status != "" && m.warn {
		b.WriteString(" " + errorStyle.Render(m.status) + "\n")
	} else if m.status != "" {
		b.WriteString(" " + okStyle.Render(m.status) + "\n")
	} else {
		b.WriteString("\n")
	}

	b.WriteString(" " + metaStyle.Render(fmt.Sprintf("%d notes", len(s.Notes))) + "\n")
	b.WriteString(m.listView())
	return b.String()
}

func (m dashboardModel) helpKeys() string {
	if m.typing() {
		return helpBar(
			helpEntry("tab", "next"),
			helpEntry("ctrl+s", "save"),
			helpEntry("esc", "back"),
		)
	}
	return helpBar(
		helpEntry("j/k", "nav"),
		helpEntry("n", "new"),
		helpEntry("e", "edit"),
		helpEntry("d", "delete"),
		helpEntry("c", "copy"),
		helpEntry("r", "refresh"),
		helpEntry("o", "web"),
		helpEntry("L", "logout"),
		helpEntry("q", "quit"),
	)
}
