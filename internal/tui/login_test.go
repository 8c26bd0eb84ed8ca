package tui

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/estate/internal/route"
	"github.com/naveenspark/estate/pkg/client"
)

// fillLogin enters editing mode and types the credentials.
func fillLogin(a App, email, password string) App {
	a, _ = press(a, tea.KeyMsg{Type: tea.KeyEnter})
	a = typeText(a, email)
	a, _ = press(a, tea.KeyMsg{Type: tea.KeyTab})
	return typeText(a, password)
}

func TestLoginSuccessNavigatesToFunction(t *testing.T) {
	h := newHarness(t)
	a := h.app(t, route.Login)

	a = fillLogin(a, "ada@example.com", "secret")
	a, cmd := press(a, tea.KeyMsg{Type: tea.KeyCtrlS})
	if !a.login.submitting {
		t.Fatal("expected submitting after ctrl+s")
	}
	a = drain(a, cmd)

	if !h.sess.State().Authenticated {
		t.Fatal("expected session authenticated")
	}
	if a.history.Current() != route.Function {
		t.Errorf("route = %q, want /function", a.history.Current())
	}
	if inHistory(a.history, route.Login) {
		t.Error("login should be replaced in history")
	}
	if a.login.form.value(loginPassword) != "" {
		t.Error("expected password cleared after sign in")
	}
}

func TestLoginBadCredentials(t *testing.T) {
	h := newHarness(t)
	a := h.app(t, route.Login)

	a = fillLogin(a, "ada@example.com", "wrong")
	a, cmd := press(a, tea.KeyMsg{Type: tea.KeyCtrlS})
	a = drain(a, cmd)

	if a.login.err != "Invalid email or password" {
		t.Errorf("err = %q", a.login.err)
	}
	if h.sess.State().Authenticated {
		t.Error("session must stay unauthenticated")
	}
	if a.history.Current() != route.Login {
		t.Errorf("route = %q, want /login", a.history.Current())
	}
	if !strings.Contains(a.View(), "Invalid email or password") {
		t.Error("expected error rendered")
	}
}

func TestLoginRequiresBothFields(t *testing.T) {
	h := newHarness(t)
	a := h.app(t, route.Login)
	a, _ = press(a, tea.KeyMsg{Type: tea.KeyEnter})
	a = typeText(a, "ada@example.com")
	a, cmd := press(a, tea.KeyMsg{Type: tea.KeyCtrlS})
	if cmd != nil {
		t.Fatal("expected no request without a password")
	}
	if a.login.err == "" {
		t.Error("expected a form error")
	}
	for _, c := range h.backend.callLog() {
		if c == "POST /auth/login" {
			t.Fatal("login must not be sent")
		}
	}
}

func TestLoginPasswordIsMasked(t *testing.T) {
	h := newHarness(t)
	a := h.app(t, route.Login)
	a = fillLogin(a, "ada@example.com", "hunter2")
	view := a.View()
	if strings.Contains(view, "hunter2") {
		t.Error("password rendered in clear text")
	}
	if !strings.Contains(view, "•••••••") {
		t.Errorf("expected mask in view:\n%s", view)
	}

	a, _ = press(a, tea.KeyMsg{Type: tea.KeyCtrlT})
	if !strings.Contains(a.View(), "hunter2") {
		t.Error("ctrl+t should reveal the password")
	}
}

func TestLoginRememberToggle(t *testing.T) {
	h := newHarness(t)
	a := h.app(t, route.Login)
	if !a.login.form.fields[loginRemember].on {
		t.Fatal("remember defaults to on")
	}
	a, _ = press(a, tea.KeyMsg{Type: tea.KeyEnter})
	a, _ = press(a, tea.KeyMsg{Type: tea.KeyTab})
	a, _ = press(a, tea.KeyMsg{Type: tea.KeyTab})
	a, _ = press(a, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	if a.login.form.fields[loginRemember].on {
		t.Error("space should toggle remember off")
	}
}

func TestLoginOAuthOpensBrowserThenRefresh(t *testing.T) {
	h := newHarness(t)
	a := h.app(t, route.Login)

	var opened string
	orig := openURL
	openURL = func(u string) error { opened = u; return nil }
	defer func() { openURL = orig }()

	a, cmd := press(a, keyRunes("G"))
	if cmd == nil {
		t.Fatal("expected oauth command")
	}
	a = drain(a, cmd)
	if opened != "https://accounts.example.com/o/auth" {
		t.Errorf("opened %q", opened)
	}
	if !strings.Contains(a.login.notice, "google") {
		t.Errorf("notice = %q", a.login.notice)
	}

	// Not signed in yet.
	a, cmd = press(a, keyRunes("r"))
	a = drain(a, cmd)
	if a.login.notice != "Not signed in yet." {
		t.Errorf("notice = %q", a.login.notice)
	}

	// The browser flow finished and the client now holds a session.
	h.signIn(t)
	a, cmd = press(a, keyRunes("r"))
	a = drain(a, cmd)
	if a.history.Current() != route.Function {
		t.Errorf("route = %q, want /function", a.history.Current())
	}
}

func TestLoginOAuthFallbackShowsLink(t *testing.T) {
	h := newHarness(t)
	a := h.app(t, route.Login)

	orig := openURL
	openURL = func(string) error { return errors.New("no display") }
	defer func() { openURL = orig }()

	a = drain(a, func() tea.Msg { return oauthURLMsg{provider: "google", url: "https://x.example.com"} })
	if !strings.Contains(a.login.notice, "https://x.example.com") {
		t.Errorf("expected link in notice, got %q", a.login.notice)
	}
}

func TestLoginErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"401", &client.HTTPError{StatusCode: http.StatusUnauthorized}, "Invalid email or password"},
		{"400", &client.HTTPError{StatusCode: http.StatusBadRequest, Message: "bad"}, "Invalid email or password"},
		{"500", &client.HTTPError{StatusCode: 500, Message: "boom"}, "Error 500: boom"},
		{"transport", errors.New("dial tcp: refused"), client.GenericMessage},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := loginErrorMessage(tc.err); got != tc.want {
				t.Errorf("loginErrorMessage() = %q, want %q", got, tc.want)
			}
		})
	}
}
