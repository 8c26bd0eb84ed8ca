package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Shimmer animation for the ESTATE logo.
type shimmerTickMsg time.Time

func shimmerTickCmd() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(t time.Time) tea.Msg {
		return shimmerTickMsg(t)
	})
}

// renderShimmerLogo renders "E S T A T E" as a slow wave running from deep
// blue (#0b2a66) to bright violet (#8f7dff).
func renderShimmerLogo(frame int) string {
	const text = "ESTATE"
	n := len(text)

	var out strings.Builder
	t := float64(frame)

	for i := 0; i < n; i++ {
		x := float64(i) / float64(n-1)

		phase := t*0.1 - x*3.0
		phase += math.Sin(t*0.023) * 2.0

		b := math.Sin(phase)*0.5 + 0.5
		b = math.Pow(b, 1.3)
		b = b*0.75 + math.Sin(t*0.035)*0.12 + 0.18
		if b > 1.0 {
			b = 1.0
		} else if b < 0.05 {
			b = 0.05
		}

		r := clampByte(11 + b*(143-11))
		g := clampByte(42 + b*(125-42))
		bl := clampByte(102 + b*(255-102))

		s := lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(fmt.Sprintf("#%02X%02X%02X", r, g, bl)))
		out.WriteString(s.Render(string(text[i])))

		if i < n-1 {
			out.WriteString("  ")
		}
	}
	return out.String()
}

func clampByte(v float64) int {
	if v > 255 {
		return 255
	}
	if v < 0 {
		return 0
	}
	return int(v)
}

var (
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8890a0"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e4e4ec")).
			Bold(true)

	normalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#c0c4d0"))

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#505868"))

	helpKeyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8890a0"))

	helpLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#505868"))

	accentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#5f9df7"))

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6f5ef9")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e06060"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ade80"))

	progressStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#d4a844")).
			Italic(true)

	inputPromptStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#5f9df7")).
				Bold(true)

	inputPlaceholderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#343c4a"))

	buttonStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e4e4ec")).
			Background(lipgloss.Color("#0070f3")).
			Padding(0, 1)

	buttonDisabledStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#505868")).
				Background(lipgloss.Color("#1e1e2a")).
				Padding(0, 1)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#1e1e2a")).
			Padding(0, 1)

	// Source chips cycle through three colors.
	chipColors = []lipgloss.Color{
		lipgloss.Color("#0070f3"),
		lipgloss.Color("#6f5ef9"),
		lipgloss.Color("#3ecce4"),
	}
)

// chipStyle returns the style for the i-th source chip.
func chipStyle(i int) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(chipColors[i%len(chipColors)])
}

// button renders a submit button, greyed out when disabled.
func button(label string, enabled bool) string {
	if enabled {
		return buttonStyle.Render(label)
	}
	return buttonDisabledStyle.Render(label)
}

// helpEntry renders a single "key label" pair for help bars.
func helpEntry(key, label string) string {
	return helpKeyStyle.Render(key) + " " + helpLabelStyle.Render(label)
}

// helpBar joins entries into the bottom help line.
func helpBar(entries ...string) string {
	return " " + strings.Join(entries, "  ")
}

// helpItem is a selectable link in the help overlay.
type helpItem struct {
	label string
	desc  string
	path  string
}

// helpItems are relative to the API base URL.
var helpItems = []helpItem{
	{"API documentation", "interactive endpoint reference", "/docs"},
	{"OpenAPI schema", "machine-readable description", "/openapi.json"},
}

// helpView renders the help overlay with a cursor over the links.
func helpView(baseURL string, cursor int) string {
	cmdStyle := lipgloss.NewStyle().Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	sectionStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Bold(true)
	pickStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5f9df7"))
	linkDescStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true)

	commands := []struct{ cmd, desc string }{
		{"estate", "Open the interactive client"},
		{"estate login", "Sign in with email and password"},
		{"estate register", "Create an account"},
		{"estate logout", "End the session"},
		{"estate whoami", "Show the signed-in user"},
		{"estate ask", "Ask a question about up to 3 URLs"},
		{"estate version", "Show version"},
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\n  %s\n  %s\n\n", titleStyle.Render("Real Estate Assistant"), descStyle.Render(baseURL))

	fmt.Fprintf(&b, "  %s\n", sectionStyle.Render("Commands"))
	for _, c := range commands {
		fmt.Fprintf(&b, "    %s  %s\n", cmdStyle.Render(fmt.Sprintf("%-18s", c.cmd)), descStyle.Render(c.desc))
	}

	fmt.Fprintf(&b, "\n  %s\n", sectionStyle.Render("Links (enter to open)"))
	for i, item := range helpItems {
		label := cmdStyle.Render(fmt.Sprintf("%-18s", item.label))
		prefix := "    "
		if i == cursor {
			label = pickStyle.Render(fmt.Sprintf("%-18s", item.label))
			prefix = "  > "
		}
		fmt.Fprintf(&b, "%s%s  %s\n", prefix, label, linkDescStyle.Render(item.desc))
	}
	return b.String()
}
