package tui

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/naveenspark/estate/internal/workflow"
	"github.com/naveenspark/estate/pkg/domain"
)

const (
	fnURL1 = iota
	fnURL2
	fnURL3
	fnQuestion
)

const msgInvalidURL = "Invalid URL format"

type ingestDoneMsg struct {
	err error
}

type queryDoneMsg struct {
	err error
}

type copyResultMsg struct {
	err error
}

type functionModel struct {
	deps
	wf     *workflow.Workflow
	form   form
	source int // selected source chip
	notice string
	width  int
	height int
}

func newFunctionModel(d deps, wf *workflow.Workflow) functionModel {
	f := newForm(
		field{label: "URL 1", placeholder: "https://portal.example.com/listing/12345", hint: "Primary source (required)"},
		field{label: "URL 2 (optional)", placeholder: "https://blog.example.com/market-trends", hint: "Add supporting context"},
		field{label: "URL 3 (optional)", placeholder: "https://news.example.com/project-update", hint: "Enhance coverage"},
		field{label: "Question", placeholder: "e.g. What are the standout features and is the location attractive?"},
	)
	return functionModel{deps: d, wf: wf, form: f}
}

func (m functionModel) urls() []string {
	return []string{m.form.value(fnURL1), m.form.value(fnURL2), m.form.value(fnURL3)}
}

// canSubmit reports whether the submit button is live.
func (m functionModel) canSubmit() bool {
	return !m.wf.State().Stage.InFlight() && workflow.CanSubmit(m.urls(), m.form.value(fnQuestion))
}

// markURLs flags non-empty URL fields that would be rejected.
func (m *functionModel) markURLs() {
	for i := fnURL1; i <= fnURL3; i++ {
		v := strings.TrimSpace(m.form.value(i))
		if v != "" && !domain.ValidSourceURL(v) {
			m.form.fields[i].err = msgInvalidURL
		} else {
			m.form.fields[i].err = ""
		}
	}
}

func (m functionModel) Update(msg tea.Msg) (functionModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case ingestDoneMsg:
		if msg.err != nil {
			return m, nil
		}
		return m, m.query()

	case queryDoneMsg:
		m.source = 0
		return m, nil

	case copyResultMsg:
		if msg.err != nil {
			m.notice = "copy failed: " + msg.err.Error()
		} else {
			m.notice = "answer copied"
		}
		return m, nil

	case tea.KeyMsg:
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m functionModel) updateKeys(msg tea.KeyMsg) (functionModel, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+r" {
		return m.reset(), nil
	}
	if !m.form.editing {
		if cmd, ok := m.resultKey(key); ok {
			return m, cmd
		}
		switch key {
		case "left", "[":
			m.moveSource(-1)
			return m, nil
		case "right", "]":
			m.moveSource(1)
			return m, nil
		}
	}
	switch m.form.update(msg) {
	case formChanged:
		m.notice = ""
		m.markURLs()
	case formSubmit:
		return m.submit()
	}
	return m, nil
}

// resultKey handles keys that act on a finished answer.
func (m *functionModel) resultKey(key string) (tea.Cmd, bool) {
	st := m.wf.State()
	if st.Stage != workflow.Result || st.Result == nil {
		return nil, false
	}
	switch key {
	case "c":
		answer := st.Result.Answer
		return func() tea.Msg {
			return copyResultMsg{err: copyText(answer)}
		}, true
	case "o":
		if m.source >= len(st.Result.Sources) {
			return nil, true
		}
		target := st.Result.Sources[m.source]
		if err := openURL(target); err != nil {
			m.notice = "cannot open " + target
			m.log.Debug("open source failed", zap.String("url", target), zap.Error(err))
		}
		return nil, true
	}
	return nil, false
}

func (m *functionModel) moveSource(d int) {
	st := m.wf.State()
	if st.Result == nil || len(st.Result.Sources) == 0 {
		return
	}
	n := len(st.Result.Sources)
	m.source = (m.source + d + n) % n
}

func (m functionModel) submit() (functionModel, tea.Cmd) {
	m.notice = ""
	m.source = 0
	// Start records validation failures itself; nothing is sent for them.
	if _, err := m.wf.Start(m.urls(), m.form.value(fnQuestion)); err != nil {
		if errors.Is(err, workflow.ErrBusy) {
			m.notice = workflow.Message(err)
		}
		return m, nil
	}
	m.form.editing = false
	wf, ctx := m.wf, m.ctx
	return m, func() tea.Msg {
		return ingestDoneMsg{err: wf.Ingest(ctx)}
	}
}

func (m functionModel) query() tea.Cmd {
	wf, ctx := m.wf, m.ctx
	return func() tea.Msg {
		_, err := wf.Query(ctx)
		return queryDoneMsg{err: err}
	}
}

// reset clears the inputs together with the workflow. It does nothing while
// a run is in flight.
func (m functionModel) reset() functionModel {
	if err := m.wf.Reset(); err != nil {
		return m
	}
	m.form.clear()
	m.source = 0
	m.notice = ""
	return m
}

// discard forgets the run and the form, in flight or not. Used on sign-out.
func (m functionModel) discard() functionModel {
	m.wf.Discard()
	m.form.clear()
	m.form.editing = false
	m.source = 0
	m.notice = ""
	return m
}

func (m functionModel) View() string {
	st := m.wf.State()
	var b strings.Builder

	fmt.Fprintf(&b, "\n  %s\n", titleStyle.Render("Ask about your listings"))
	fmt.Fprintf(&b, "  %s\n\n", dimStyle.Render(fmt.Sprintf("Up to %d source URLs, then one question.", domain.MaxSources)))
	b.WriteString(m.form.View())
	b.WriteString("\n")

	label := "Ask"
	if st.Stage.InFlight() {
		label = "Working…"
	}
	fmt.Fprintf(&b, "  %s  %s\n", button(label, m.canSubmit()), metaStyle.Render("ctrl+r reset"))

	if l := st.Stage.Label(); l != "" {
		fmt.Fprintf(&b, "\n  %s\n", progressStyle.Render(l))
	}
	if msg := st.Message(); msg != "" {
		fmt.Fprintf(&b, "\n%s\n", indent(panelStyle.BorderForeground(errorStyle.GetForeground()).Render(errorStyle.Render(msg)), "  "))
	}
	if m.notice != "" {
		fmt.Fprintf(&b, "\n  %s\n", dimStyle.Render(m.notice))
	}

	if st.Stage == workflow.Result && st.Result != nil {
		width := m.width - 8
		if width <= 0 || width > 100 {
			width = 100
		}
		var r strings.Builder
		r.WriteString(selectedStyle.Render("Answer") + "\n")
		r.WriteString(normalStyle.Render(wrap(st.Result.Answer, width)) + "\n")
		if len(st.Result.Sources) > 0 {
			r.WriteString("\n" + selectedStyle.Render("Sources") + "\n")
			r.WriteString(sourceChips(st.Result.Sources, m.source) + "\n")
			r.WriteString(metaStyle.Render(truncStr(st.Result.Sources[m.source], width)))
		}
		fmt.Fprintf(&b, "\n%s\n", indent(panelStyle.Render(r.String()), "  "))
	}
	return b.String()
}

func (m functionModel) helpKeys() string {
	if m.form.editing {
		return formHelp("ask")
	}
	st := m.wf.State()
	if st.Stage == workflow.Result {
		return helpEntry("c", "copy") + "  " + helpEntry("←/→", "source") + "  " + helpEntry("o", "open") + "  " + helpEntry("ctrl+r", "reset") + "  " + helpEntry("enter", "edit") + "  " + helpEntry("q", "quit")
	}
	return helpEntry("enter", "edit") + "  " + helpEntry("j/k", "field") + "  " + helpEntry("ctrl+r", "reset") + "  " + helpEntry("h", "help") + "  " + helpEntry("q", "quit")
}

// indent prefixes every line of s.
func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}
