package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/estate/internal/route"
)

func newTestHomeModel() homeModel {
	m := newHomeModel()
	m.width = 80
	m.height = 24
	return m
}

func TestHomeViewShowsIntro(t *testing.T) {
	view := newTestHomeModel().View()
	for _, want := range []string{"Real Estate Assistant", "Multi-Source Parsing", "How it works", "Try the Tool", "Get Started"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected home view to contain %q, got:\n%s", want, view)
		}
	}
}

func TestHomeViewNarrowTerminal(t *testing.T) {
	m := newTestHomeModel()
	m, _ = m.Update(tea.WindowSizeMsg{Width: 30, Height: 20})
	for _, line := range strings.Split(m.View(), "\n") {
		if strings.Contains(line, "Turn property links into clear, actionable insights. Compare") {
			t.Errorf("intro not wrapped: %q", line)
		}
	}
}

func TestHomeKeysNavigate(t *testing.T) {
	tests := []struct {
		key  tea.KeyMsg
		want route.Route
	}{
		{tea.KeyMsg{Type: tea.KeyEnter}, route.Function},
		{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("t")}, route.Function},
		{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("g")}, route.SignUp},
	}
	for _, tc := range tests {
		t.Run(tc.key.String(), func(t *testing.T) {
			_, cmd := newTestHomeModel().Update(tc.key)
			if cmd == nil {
				t.Fatal("expected a navigation command")
			}
			nav, ok := cmd().(navigateMsg)
			if !ok {
				t.Fatalf("expected navigateMsg, got %T", cmd())
			}
			if nav.to != tc.want || nav.replace {
				t.Errorf("navigate = %+v, want push to %q", nav, tc.want)
			}
		})
	}
}

func TestHomeIgnoresOtherKeys(t *testing.T) {
	_, cmd := newTestHomeModel().Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	if cmd != nil {
		t.Error("expected no command for an unbound key")
	}
}
