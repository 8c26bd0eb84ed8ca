package tui

import (
	"strings"
	"unicode/utf8"

	"github.com/naveenspark/estate/pkg/domain"
)

// truncStr truncates a string to maxLen runes, appending an ellipsis if needed.
func truncStr(s string, maxLen int) string {
	if maxLen <= 0 || utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxLen-1]) + "…"
}

// orDash renders an absent profile value.
func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

// sourceChips renders sources as domain labels. The selected chip is
// bracketed.
func sourceChips(sources []string, selected int) string {
	parts := make([]string, 0, len(sources))
	for i, s := range sources {
		label := domain.SourceDomain(s)
		if i == selected {
			label = "[" + label + "]"
		} else {
			label = " " + label + " "
		}
		parts = append(parts, chipStyle(i).Render(label))
	}
	return strings.Join(parts, " ")
}

// wrap breaks text on spaces so no line exceeds width runes. Existing line
// breaks are kept.
func wrap(text string, width int) string {
	if width <= 0 {
		return text
	}
	var out []string
	for _, para := range strings.Split(text, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			out = append(out, "")
			continue
		}
		line := words[0]
		for _, w := range words[1:] {
			if utf8.RuneCountInString(line)+1+utf8.RuneCountInString(w) > width {
				out = append(out, line)
				line = w
				continue
			}
			line += " " + w
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}
