package tui

import (
	"fmt"
	"strings"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
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
	case "space":
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

// pasteText appends pasted text, dropping line breaks and clamping to
// maxInputLen runes.
func pasteText(text, pasted string) string {
	pasted = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(pasted)
	room := maxInputLen - utf8.RuneCountInString(text)
	if room <= 0 {
		return text
	}
	if runes := []rune(pasted); len(runes) > room {
		pasted = string(runes[:room])
	}
	return text + pasted
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

type fieldKind int

const (
	fieldText fieldKind = iota
	fieldSecret
	fieldToggle
)

// field is one labelled input of a form.
type field struct {
	label       string
	placeholder string
	kind        fieldKind
	value       string
	on          bool // fieldToggle only

	// revealed shows a secret in clear text.
	revealed bool
	// hint is helper text under the field; an error replaces it.
	hint string
	err  string
}

// form is a vertical stack of fields with a single focus. While editing,
// keystrokes go to the focused field; otherwise the app's global keys apply.
type form struct {
	fields  []field
	focus   int
	editing bool
}

// formEvent is what a key did to the form.
type formEvent int

const (
	formNone formEvent = iota
	formChanged
	formSubmit
	formLeave
)

func newForm(fields ...field) form {
	return form{fields: fields}
}

func (f *form) value(i int) string {
	return f.fields[i].value
}

func (f *form) set(i int, v string) {
	f.fields[i].value = v
}

// clear empties every text field and leaves toggles alone.
func (f *form) clear() {
	for i := range f.fields {
		if f.fields[i].kind != fieldToggle {
			f.fields[i].value = ""
		}
		f.fields[i].err = ""
	}
	f.focus = 0
}

// filled reports whether every text field has a non-blank value.
func (f *form) filled() bool {
	for _, fd := range f.fields {
		if fd.kind != fieldToggle && strings.TrimSpace(fd.value) == "" {
			return false
		}
	}
	return true
}

// update applies a key to the form.
func (f *form) update(msg tea.KeyMsg) formEvent {
	key := msg.String()
	if !f.editing {
		switch key {
		case "enter", "i", "tab":
			f.editing = true
		case "j", "down":
			f.move(1)
		case "k", "up":
			f.move(-1)
		}
		return formNone
	}

	cur := &f.fields[f.focus]
	switch key {
	case "esc":
		f.editing = false
		return formLeave
	case "ctrl+s":
		return formSubmit
	case "tab", "down":
		f.move(1)
	case "shift+tab", "up":
		f.move(-1)
	case "enter":
		if f.focus == len(f.fields)-1 {
			return formSubmit
		}
		f.move(1)
	case "ctrl+t":
		if cur.kind == fieldSecret {
			cur.revealed = !cur.revealed
		}
	default:
		if msg.Paste && cur.kind != fieldToggle {
			next := pasteText(cur.value, string(msg.Runes))
			if next == cur.value {
				return formNone
			}
			cur.value = next
			return formChanged
		}
		if cur.kind == fieldToggle {
			if key == " " || key == "space" {
				cur.on = !cur.on
				return formChanged
			}
			return formNone
		}
		next := editRune(cur.value, key)
		if next == cur.value {
			return formNone
		}
		cur.value = next
		return formChanged
	}
	return formNone
}

func (f *form) move(d int) {
	n := len(f.fields)
	f.focus = (f.focus + d + n) % n
}

// View renders the form. Secrets are masked unless revealed.
func (f form) View() string {
	var b strings.Builder
	for i, fd := range f.fields {
		focused := i == f.focus
		cursor := "  "
		label := metaStyle
		if focused {
			cursor = inputPromptStyle.Render("> ")
			label = selectedStyle
		}

		var value string
		switch fd.kind {
		case fieldToggle:
			box := "[ ]"
			if fd.on {
				box = "[x]"
			}
			value = normalStyle.Render(box)
		case fieldSecret:
			value = fd.value
			if !fd.revealed {
				value = strings.Repeat("•", utf8.RuneCountInString(fd.value))
			}
			value = normalStyle.Render(value)
		default:
			value = normalStyle.Render(fd.value)
		}
		if fd.kind != fieldToggle && fd.value == "" && fd.placeholder != "" && !(focused && f.editing) {
			value = inputPlaceholderStyle.Render(fd.placeholder)
		}
		if focused && f.editing && fd.kind != fieldToggle {
			value += accentStyle.Render("█")
		}

		fmt.Fprintf(&b, "%s%s  %s\n", cursor, label.Render(fmt.Sprintf("%-22s", fd.label)), value)
		switch {
		case fd.err != "":
			fmt.Fprintf(&b, "  %-22s  %s\n", "", errorStyle.Render(fd.err))
		case fd.hint != "":
			fmt.Fprintf(&b, "  %-22s  %s\n", "", metaStyle.Render(fd.hint))
		}
	}
	return b.String()
}

// formHelp is the help line shared by form screens while editing.
func formHelp(action string) string {
	return strings.Join([]string{
		helpEntry("tab", "next"),
		helpEntry("enter", action),
		helpEntry("ctrl+t", "show"),
		helpEntry("esc", "nav"),
	}, "  ")
}
