package tui

import (
	"fmt"
	"net/http"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/naveenspark/estate/internal/route"
	"github.com/naveenspark/estate/pkg/client"
	"github.com/naveenspark/estate/pkg/domain"
)

const (
	loginEmail = iota
	loginPassword
	loginRemember
)

// oauthKeys maps nav-mode keys to providers.
var oauthKeys = map[string]string{
	"G": "google",
	"F": "facebook",
	"H": "github",
}

type loginResultMsg struct {
	err error
}

type oauthURLMsg struct {
	provider string
	url      string
	err      error
}

type refreshResultMsg struct {
	authenticated bool
}

type loginModel struct {
	deps
	form       form
	submitting bool
	err        string
	notice     string
}

func newLoginModel(d deps) loginModel {
	f := newForm(
		field{label: "Email", placeholder: "you@example.com"},
		field{label: "Password", kind: fieldSecret},
		field{label: "Remember me", kind: fieldToggle, on: true},
	)
	return loginModel{deps: d, form: f}
}

func (m loginModel) Update(msg tea.Msg) (loginModel, tea.Cmd) {
	switch msg := msg.(type) {
	case loginResultMsg:
		m.submitting = false
		if msg.err != nil {
			m.err = loginErrorMessage(msg.err)
			return m, nil
		}
		m.form.set(loginPassword, "")
		m.form.editing = false
		m.err = ""
		return m, navigate(route.Function, true)

	case oauthURLMsg:
		if msg.err != nil {
			m.err = client.Describe(msg.err)
			return m, nil
		}
		if err := openURL(msg.url); err != nil {
			m.notice = "Open this link to continue: " + msg.url
		} else {
			m.notice = fmt.Sprintf("Finish signing in with %s in your browser, then press r.", msg.provider)
		}
		return m, nil

	case refreshResultMsg:
		if msg.authenticated {
			m.notice = ""
			return m, navigate(route.Function, true)
		}
		m.notice = "Not signed in yet."
		return m, nil

	case tea.KeyMsg:
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m loginModel) updateKeys(msg tea.KeyMsg) (loginModel, tea.Cmd) {
	key := msg.String()
	if !m.form.editing {
		if provider, ok := oauthKeys[key]; ok {
			m.err = ""
			return m, m.oauth(provider)
		}
		if key == "r" {
			return m, m.refresh()
		}
	}

	switch m.form.update(msg) {
	case formChanged:
		m.err = ""
	case formSubmit:
		return m.submit()
	}
	return m, nil
}

func (m loginModel) submit() (loginModel, tea.Cmd) {
	if m.submitting {
		return m, nil
	}
	email := strings.TrimSpace(m.form.value(loginEmail))
	password := m.form.value(loginPassword)
	if email == "" || password == "" {
		m.err = "Please enter your email and password"
		return m, nil
	}
	m.submitting = true
	m.err = ""
	creds := domain.Credentials{
		Email:    email,
		Password: password,
		Remember: m.form.fields[loginRemember].on,
	}
	d := m.deps
	return m, func() tea.Msg {
		if _, err := d.client.Login(d.ctx, creds); err != nil {
			return loginResultMsg{err: err}
		}
		d.sess.Login(d.ctx)
		return loginResultMsg{}
	}
}

func (m loginModel) oauth(provider string) tea.Cmd {
	d := m.deps
	return func() tea.Msg {
		u, err := d.client.OAuthLoginURL(d.ctx, provider)
		if err != nil {
			d.log.Warn("oauth url failed", zap.String("provider", provider), zap.Error(err))
		}
		return oauthURLMsg{provider: provider, url: u, err: err}
	}
}

func (m loginModel) refresh() tea.Cmd {
	d := m.deps
	return func() tea.Msg {
		st := d.sess.Refresh(d.ctx)
		return refreshResultMsg{authenticated: st.Authenticated}
	}
}

// loginErrorMessage maps a failed credential exchange to form text.
func loginErrorMessage(err error) string {
	if client.IsStatus(err, http.StatusUnauthorized) || client.IsStatus(err, http.StatusBadRequest) {
		return "Invalid email or password"
	}
	return client.Describe(err)
}

func (m loginModel) View() string {
	var b strings.Builder
	fmt.Fprintf(&b, "\n  %s\n", titleStyle.Render("Sign in"))
	fmt.Fprintf(&b, "  %s\n\n", dimStyle.Render("G google  F facebook  H github"))
	b.WriteString(m.form.View())
	b.WriteString("\n")

	label := "Sign in"
	if m.submitting {
		label = "Signing in…"
	}
	fmt.Fprintf(&b, "  %s\n", button(label, !m.submitting))

	if m.err != "" {
		fmt.Fprintf(&b, "\n  %s\n", errorStyle.Render(m.err))
	}
	if m.notice != "" {
		fmt.Fprintf(&b, "\n  %s\n", progressStyle.Render(m.notice))
	}
	fmt.Fprintf(&b, "\n  %s\n", metaStyle.Render("No account? Press 5 to sign up."))
	return b.String()
}

func (m loginModel) helpKeys() string {
	if m.form.editing {
		return formHelp("sign in")
	}
	return helpEntry("enter", "edit") + "  " + helpEntry("G/F/H", "oauth") + "  " + helpEntry("r", "refresh") + "  " + helpEntry("h", "help") + "  " + helpEntry("q", "quit")
}
