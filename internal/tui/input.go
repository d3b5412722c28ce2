package tui

import (
	"strings"
	"unicode/utf8"
)

// maxInputLen is the maximum number of runes allowed in form inputs.
const maxInputLen = 2000

// editRune processes a keystroke for inline text editing.
// Handles backspace (rune-aware) and single printable characters.
// Returns the text unchanged for non-printable keys (enter, esc, etc.).
// Input is clamped to maxInputLen runes.
func editRune(text string, key string) string {
	switch key {
	case "backspace":
		if len(text) > 0 {
			runes := []rune(text)
			return string(runes[:len(runes)-1])
		}
		return text
	case " ", "space":
		key = " "
	}
	if utf8.RuneCountInString(key) == 1 {
		if utf8.RuneCountInString(text) >= maxInputLen {
			return text
		}
		return text + key
	}
	return text
}

// truncateToHeight limits output to maxLines newline-delimited lines.
// Returns the original string if it fits or maxLines is <= 0.
func truncateToHeight(s string, maxLines int) string {
	if maxLines <= 0 {
		return s
	}
	n := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			n++
			if n >= maxLines {
				return s[:i+1]
			}
		}
	}
	return s
}

// renderField renders a labelled single- or multi-line input with a block
// cursor when focused and a placeholder when empty.
func renderField(label, value, placeholder string, focused bool) string {
	prompt := metaStyle.Render(label + " ")
	if focused {
		prompt = inputPromptStyle.Render(label + " ")
	}
	if value == "" && !focused {
		return prompt + inputPlaceholderStyle.Render(placeholder)
	}
	lines := strings.Split(value, "\n")
	if focused {
		lines[len(lines)-1] += accentStyle.Render("█")
	}
	indent := strings.Repeat(" ", utf8.RuneCountInString(label)+1)
	return prompt + strings.Join(lines, "\n"+indent)
}

// maskSecret replaces every rune with a bullet.
func maskSecret(s string) string {
	return strings.Repeat("•", utf8.RuneCountInString(s))
}
