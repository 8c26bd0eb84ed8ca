package tui

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/estate/internal/route"
	"github.com/naveenspark/estate/pkg/client"
	"github.com/naveenspark/estate/pkg/domain"
)

const (
	signupFirst = iota
	signupLast
	signupEmail
	signupPassword
	signupConfirm
)

const msgPasswordMismatch = "Passwords do not match"

// errSignedUpNotLoggedIn marks a registration whose follow-up login failed.
var errSignedUpNotLoggedIn = errors.New("account created")

type signupResultMsg struct {
	err error
}

type signupModel struct {
	deps
	form       form
	submitting bool
	err        string
}

func newSignupModel(d deps) signupModel {
	f := newForm(
		field{label: "First name"},
		field{label: "Last name"},
		field{label: "Email", placeholder: "you@example.com"},
		field{label: "Password", kind: fieldSecret},
		field{label: "Confirm password", kind: fieldSecret},
	)
	return signupModel{deps: d, form: f}
}

// canSubmit reports whether every field is filled and the passwords match.
func (m signupModel) canSubmit() bool {
	return m.form.filled() && m.form.value(signupPassword) == m.form.value(signupConfirm)
}

func (m signupModel) Update(msg tea.Msg) (signupModel, tea.Cmd) {
	switch msg := msg.(type) {
	case signupResultMsg:
		m.submitting = false
		if msg.err != nil {
			m.err = signupErrorMessage(msg.err)
			return m, nil
		}
		m.form.clear()
		m.form.editing = false
		m.err = ""
		return m, navigate(route.Function, true)

	case tea.KeyMsg:
		switch m.form.update(msg) {
		case formChanged:
			m.err = ""
			m.checkConfirm()
		case formSubmit:
			return m.submit()
		}
	}
	return m, nil
}

func (m *signupModel) checkConfirm() {
	confirm := m.form.value(signupConfirm)
	if confirm != "" && confirm != m.form.value(signupPassword) {
		m.form.fields[signupConfirm].err = msgPasswordMismatch
		return
	}
	m.form.fields[signupConfirm].err = ""
}

func (m signupModel) submit() (signupModel, tea.Cmd) {
	if m.submitting {
		return m, nil
	}
	if !m.form.filled() {
		m.err = "Please fill in every field"
		return m, nil
	}
	if !m.canSubmit() {
		m.err = msgPasswordMismatch
		return m, nil
	}
	m.submitting = true
	m.err = ""

	reg := domain.Registration{
		Username: strings.TrimSpace(m.form.value(signupFirst)),
		Lastname: strings.TrimSpace(m.form.value(signupLast)),
		Email:    strings.TrimSpace(m.form.value(signupEmail)),
		Password: m.form.value(signupPassword),
	}
	d := m.deps
	return m, func() tea.Msg {
		if err := d.client.Register(d.ctx, reg); err != nil {
			return signupResultMsg{err: err}
		}
		creds := domain.Credentials{Email: reg.Email, Password: reg.Password, Remember: true}
		if _, err := d.client.Login(d.ctx, creds); err != nil {
			return signupResultMsg{err: fmt.Errorf("%w: %w", errSignedUpNotLoggedIn, err)}
		}
		d.sess.Login(d.ctx)
		return signupResultMsg{}
	}
}

func signupErrorMessage(err error) string {
	switch {
	case errors.Is(err, errSignedUpNotLoggedIn):
		return "Account created. Sign in failed: " + client.Describe(err)
	case client.IsStatus(err, http.StatusConflict):
		return "Email already in use"
	}
	return client.Describe(err)
}

func (m signupModel) View() string {
	var b strings.Builder
	fmt.Fprintf(&b, "\n  %s\n\n", titleStyle.Render("Create account"))
	b.WriteString(m.form.View())
	b.WriteString("\n")

	label := "Create account"
	if m.submitting {
		label = "Creating…"
	}
	fmt.Fprintf(&b, "  %s\n", button(label, m.canSubmit() && !m.submitting))

	if m.err != "" {
		fmt.Fprintf(&b, "\n  %s\n", errorStyle.Render(m.err))
	}
	fmt.Fprintf(&b, "\n  %s\n", metaStyle.Render("Already have an account? Press 4 to sign in."))
	return b.String()
}

func (m signupModel) helpKeys() string {
	if m.form.editing {
		return formHelp("create")
	}
	return helpEntry("enter", "edit") + "  " + helpEntry("j/k", "field") + "  " + helpEntry("h", "help") + "  " + helpEntry("q", "quit")
}
