package tui

import (
	"fmt"
	"net/http"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/estate/pkg/client"
	"github.com/naveenspark/estate/pkg/domain"
)

const (
	pwCurrent = iota
	pwNew
	pwConfirm
)

const msgPasswordUpdated = "Password updated successfully."

type passwordChangedMsg struct {
	err error
}

type profileModel struct {
	deps
	form       form
	submitting bool
	err        string
	success    string
}

func newProfileModel(d deps) profileModel {
	f := newForm(
		field{label: "Current password", kind: fieldSecret},
		field{label: "New password", kind: fieldSecret},
		field{label: "Confirm new password", kind: fieldSecret},
	)
	return profileModel{deps: d, form: f}
}

func (m profileModel) canChange() bool {
	return m.form.filled() && m.form.value(pwNew) == m.form.value(pwConfirm)
}

func (m profileModel) Update(msg tea.Msg) (profileModel, tea.Cmd) {
	switch msg := msg.(type) {
	case passwordChangedMsg:
		m.submitting = false
		if msg.err != nil {
			m.err = passwordErrorMessage(msg.err)
			return m, nil
		}
		m.success = msgPasswordUpdated
		m.form.clear()
		m.form.editing = false
		return m, nil

	case tea.KeyMsg:
		switch m.form.update(msg) {
		case formChanged:
			m.err = ""
			m.success = ""
			confirm := m.form.value(pwConfirm)
			if confirm != "" && confirm != m.form.value(pwNew) {
				m.form.fields[pwConfirm].err = msgPasswordMismatch
			} else {
				m.form.fields[pwConfirm].err = ""
			}
		case formSubmit:
			return m.submit()
		}
	}
	return m, nil
}

func (m profileModel) submit() (profileModel, tea.Cmd) {
	if m.submitting || !m.canChange() {
		return m, nil
	}
	m.submitting = true
	m.err = ""
	m.success = ""
	pc := domain.PasswordChange{
		CurrentPassword:    m.form.value(pwCurrent),
		NewPassword:        m.form.value(pwNew),
		NewPasswordConfirm: m.form.value(pwConfirm),
	}
	d := m.deps
	return m, func() tea.Msg {
		return passwordChangedMsg{err: d.client.ChangePassword(d.ctx, pc)}
	}
}

func passwordErrorMessage(err error) string {
	if client.IsStatus(err, http.StatusUnauthorized) {
		return "Current password is incorrect"
	}
	return client.Describe(err)
}

func (m profileModel) View() string {
	user := m.sess.State().User
	if user == nil {
		user = &domain.UserProfile{}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\n  %s\n", titleStyle.Render("Profile"))
	fmt.Fprintf(&b, "  %s\n\n", dimStyle.Render("Your account details"))
	rows := []struct{ label, value string }{
		{"First name", user.Username},
		{"Last name", user.Lastname},
		{"Email", user.Email},
	}
	for _, r := range rows {
		fmt.Fprintf(&b, "  %s  %s\n", metaStyle.Render(fmt.Sprintf("%-22s", r.label)), selectedStyle.Render(orDash(r.value)))
	}

	fmt.Fprintf(&b, "\n  %s\n\n", normalStyle.Bold(true).Render("Change password"))
	b.WriteString(m.form.View())
	b.WriteString("\n")

	label := "Update password"
	if m.submitting {
		label = "Updating…"
	}
	fmt.Fprintf(&b, "  %s\n", button(label, m.canChange() && !m.submitting))

	if m.err != "" {
		fmt.Fprintf(&b, "\n  %s\n", errorStyle.Render(m.err))
	}
	if m.success != "" {
		fmt.Fprintf(&b, "\n  %s\n", successStyle.Render(m.success))
	}
	return b.String()
}

func (m profileModel) helpKeys() string {
	if m.form.editing {
		return formHelp("update")
	}
	return helpEntry("enter", "edit") + "  " + helpEntry("j/k", "field") + "  " + helpEntry("h", "help") + "  " + helpEntry("q", "quit")
}
