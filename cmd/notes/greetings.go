package main

import (
	"fmt"
	"io"
	"math/rand"

	"github.com/charmbracelet/lipgloss"
)

var greetings = [...]string{
	"Nothing written down yet. Or at least, nothing this terminal knows about.",
	"Your notes are waiting on the other side of a password.",
	"A thought not written down is a thought you'll have again tomorrow.",
	"The blank page is patient. It is not infinitely patient.",
	"Sign in and the list comes back exactly as you left it.",
	"Somewhere there is a grocery list with your name on it.",
	"Ideas are cheap. Ideas you can find again are not.",
	"Every note started as something someone almost forgot.",
}

// printGreeting is shown instead of the interactive view when there is no
// saved session and no terminal to draw the sign-in screen on.
func printGreeting(w io.Writer) {
	msg := greetings[rand.Intn(len(greetings))]

	title := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#818cf8")).
		Bold(true).
		Render("N  O  T  E  S")

	quote := lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")).
		Italic(true).
		Render(msg)

	cmdStyle := lipgloss.NewStyle().Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	commands := []struct{ cmd, desc string }{
		{"notes", "Sign in interactively (from a terminal)"},
		{"notes login", "Sign in with email and password"},
		{"notes signup", "Create an account"},
		{"notes list", "List your notes"},
		{"notes add", "Write a new note"},
		{"notes --help", "Everything else"},
	}

	fmt.Fprintf(w, "\n  %s\n\n  %s\n\n", title, quote)
	for _, c := range commands {
		fmt.Fprintf(w, "    %s  %s\n", cmdStyle.Render(fmt.Sprintf("%-14s", c.cmd)), descStyle.Render(c.desc))
	}
	fmt.Fprintln(w)
}
