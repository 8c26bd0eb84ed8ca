package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/naveenspark/estate/internal/config"
	"github.com/naveenspark/estate/pkg/domain"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#5f9df7")).
			Bold(true)
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	headingStyle = lipgloss.NewStyle().Bold(true)
	linkStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#3ecce4"))
)

func printHelp(w io.Writer) {
	title := titleStyle.Render("E S T A T E")
	tagline := dimStyle.Italic(true).Render("Turn property links into clear, actionable insights.")

	cmdStyle := lipgloss.NewStyle().Bold(true)
	commands := []struct{ cmd, desc string }{
		{"estate", "Open the interactive client"},
		{"estate function", "Open straight on the tool screen"},
		{"estate login", "Sign in with email and password"},
		{"estate register", "Create an account"},
		{"estate logout", "End the session"},
		{"estate whoami", "Show the signed-in user"},
		{"estate ask -u URL QUESTION", "Ask about up to 3 URLs (repeat -u)"},
		{"estate version", "Show version"},
		{"estate help", "You are here"},
	}
	vars := []struct{ name, desc string }{
		{config.EnvAPIURL, "backend base URL (default " + config.DefaultAPIURL + ")"},
		{config.EnvHome, "state directory (default ~/.estate)"},
		{config.EnvLogFile, "log file, - to disable"},
		{config.EnvLogLevel, "debug, info, warn or error"},
		{config.EnvTimeout, "per-request timeout (default 2m)"},
		{config.EnvEnvFile, "optional .env file (default ./.env)"},
		{config.EnvToken, "bearer token, used instead of the saved session"},
	}

	fmt.Fprintf(w, "\n  %s\n\n  %s\n\n  Commands:\n", title, tagline)
	for _, c := range commands {
		fmt.Fprintf(w, "    %s  %s\n", cmdStyle.Render(fmt.Sprintf("%-28s", c.cmd)), dimStyle.Render(c.desc))
	}
	fmt.Fprintf(w, "\n  Environment:\n")
	for _, v := range vars {
		fmt.Fprintf(w, "    %s  %s\n", cmdStyle.Render(fmt.Sprintf("%-28s", v.name)), dimStyle.Render(v.desc))
	}
	fmt.Fprintln(w)
}

func printAnswer(w io.Writer, res *domain.AnswerResult) {
	fmt.Fprintf(w, "\n%s\n%s\n", headingStyle.Render("Answer"), res.Answer)
	if len(res.Sources) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s\n", headingStyle.Render("Sources"))
	for i, s := range res.Sources {
		fmt.Fprintf(w, "  %d. %s %s\n", i+1, linkStyle.Render(domain.SourceDomain(s)), dimStyle.Render(s))
	}
}
