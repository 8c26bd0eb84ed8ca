package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/naveenspark/estate/internal/route"
)

type feature struct {
	title string
	desc  string
}

var homeFeatures = []feature{
	{"Multi-Source Parsing", "Combine up to 3 URLs for richer context."},
	{"Smart Summaries", "Condensed answers with key points."},
	{"Source Transparency", "Every reply lists the pages it drew on."},
}

var homeSteps = []feature{
	{"Gather Links", "Copy up to three property, news or blog URLs."},
	{"Ask", "Type a question about pricing, features, location or risks."},
	{"Review", "Read the synthesized answer with its sources."},
}

type homeModel struct {
	width  int
	height int
}

func newHomeModel() homeModel {
	return homeModel{}
}

func (m homeModel) Update(msg tea.Msg) (homeModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case tea.KeyMsg:
		switch msg.String() {
		case "enter", "t":
			return m, navigate(route.Function, false)
		case "g":
			return m, navigate(route.SignUp, false)
		}
	}
	return m, nil
}

func (m homeModel) View() string {
	var b strings.Builder

	fmt.Fprintf(&b, "\n  %s\n", titleStyle.Render("Real Estate Assistant"))
	intro := "Turn property links into clear, actionable insights. Compare listings, " +
		"extract key facts, and ask natural questions about location, price, features and more."
	width := m.width - 4
	if width > 80 || width <= 0 {
		width = 80
	}
	for _, line := range strings.Split(wrap(intro, width), "\n") {
		fmt.Fprintf(&b, "  %s\n", dimStyle.Render(line))
	}
	b.WriteString("\n")

	for _, f := range homeFeatures {
		fmt.Fprintf(&b, "  %s %s\n", accentStyle.Render("●"), selectedStyle.Render(f.title))
		fmt.Fprintf(&b, "    %s\n", dimStyle.Render(f.desc))
	}

	fmt.Fprintf(&b, "\n  %s\n", normalStyle.Bold(true).Render("How it works"))
	for i, s := range homeSteps {
		step := lipgloss.NewStyle().Foreground(chipColors[i%len(chipColors)]).Bold(true).Render(fmt.Sprintf("%d", i+1))
		fmt.Fprintf(&b, "  %s  %s %s\n", step, selectedStyle.Render(s.title), dimStyle.Render(s.desc))
	}

	fmt.Fprintf(&b, "\n  %s  %s\n",
		button("enter  Try the Tool", true),
		button("g  Get Started", true))
	return b.String()
}

func (m homeModel) helpKeys() string {
	return helpEntry("enter", "tool") + "  " + helpEntry("g", "sign up") + "  " + helpEntry("h", "help") + "  " + helpEntry("q", "quit")
}
