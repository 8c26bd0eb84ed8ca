package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/naveenspark/estate/internal/browser"
	"github.com/naveenspark/estate/internal/logging"
	"github.com/naveenspark/estate/internal/route"
	"github.com/naveenspark/estate/internal/session"
	"github.com/naveenspark/estate/internal/workflow"
	"github.com/naveenspark/estate/pkg/client"
)

// Side effects swapped out by tests.
var (
	openURL  = browser.Open
	copyText = clipboard.WriteAll
)

// deps is what every screen needs to talk to the backend.
type deps struct {
	ctx    context.Context
	client *client.Client
	sess   *session.Session
	log    *zap.Logger
}

// sessionResolvedMsg reports the startup session check.
type sessionResolvedMsg struct {
	state session.State
}

// navigateMsg asks the app to move to a route.
type navigateMsg struct {
	to      route.Route
	replace bool
}

// loggedOutMsg reports that the session has been cleared.
type loggedOutMsg struct{}

func navigate(to route.Route, replace bool) tea.Cmd {
	return func() tea.Msg {
		return navigateMsg{to: to, replace: replace}
	}
}

// App is the root Bubbletea model.
type App struct {
	deps
	history    route.History
	home       homeModel
	login      loginModel
	signup     signupModel
	fn         functionModel
	profile    profileModel
	helpOpen   bool
	helpCursor int
	width      int
	height     int
	frame      int // logo shimmer animation frame
}

// NewApp creates the TUI, starting at start. Calls made by the app use ctx.
func NewApp(ctx context.Context, c *client.Client, sess *session.Session, log *zap.Logger, start route.Route) App {
	log = logging.OrNop(log).Named("tui")
	d := deps{ctx: ctx, client: c, sess: sess, log: log}
	a := App{
		deps:    d,
		home:    newHomeModel(),
		login:   newLoginModel(d),
		signup:  newSignupModel(d),
		fn:      newFunctionModel(d, workflow.New(c, log)),
		profile: newProfileModel(d),
	}
	a.history.Push(start)
	return a.resolve()
}

func (a App) Init() tea.Cmd {
	if !a.sess.State().Initializing {
		return shimmerTickCmd()
	}
	d := a.deps
	return tea.Batch(shimmerTickCmd(), func() tea.Msg {
		return sessionResolvedMsg{state: d.sess.Initialize(d.ctx)}
	})
}

// resolve runs the guard on the current entry. Redirects replace it.
func (a App) resolve() App {
	cur := a.history.Current()
	d := route.Resolve(cur, a.sess.State())
	if d.Redirected {
		a.log.Info("route redirected", zap.String("from", string(cur)), zap.String("route", string(d.Route)))
		a.history.Replace(d.Route)
	}
	return a
}

func (a App) navigate(to route.Route, replace bool) App {
	if replace {
		a.history.Replace(to)
	} else {
		a.history.Push(to)
	}
	a.log.Debug("navigate", zap.String("route", string(to)), zap.Bool("replace", replace))
	return a.resolve()
}

// pending reports whether the current route waits on the session check.
func (a App) pending() bool {
	return route.Resolve(a.history.Current(), a.sess.State()).Pending
}

func (a App) logout() tea.Cmd {
	d := a.deps
	return func() tea.Msg {
		d.sess.Logout(d.ctx)
		return loggedOutMsg{}
	}
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		// Chrome: header(1) + tabs(1) + help(1) = 3 lines
		bodyMsg := tea.WindowSizeMsg{Width: msg.Width, Height: msg.Height - 3}
		a.home, _ = a.home.Update(bodyMsg)
		a.fn, _ = a.fn.Update(bodyMsg)
		return a, nil

	case shimmerTickMsg:
		a.frame++
		return a, shimmerTickCmd()

	case sessionResolvedMsg:
		a.log.Info("session resolved", zap.Bool("authenticated", msg.state.Authenticated))
		return a.resolve(), nil

	case navigateMsg:
		return a.navigate(msg.to, msg.replace), nil

	case loggedOutMsg:
		// Nothing typed or answered by the last user survives sign-out.
		a.fn = a.fn.discard()
		a.login = newLoginModel(a.deps)
		a.signup = newSignupModel(a.deps)
		a.profile = newProfileModel(a.deps)
		a.log.Info("signed out")
		return a.navigate(route.Login, true), nil

	// Results go to the screen that asked, wherever the user is now.
	case loginResultMsg, oauthURLMsg, refreshResultMsg:
		var cmd tea.Cmd
		a.login, cmd = a.login.Update(msg)
		return a, cmd
	case signupResultMsg:
		var cmd tea.Cmd
		a.signup, cmd = a.signup.Update(msg)
		return a, cmd
	case ingestDoneMsg, queryDoneMsg, copyResultMsg:
		var cmd tea.Cmd
		a.fn, cmd = a.fn.Update(msg)
		return a, cmd
	case passwordChangedMsg:
		var cmd tea.Cmd
		a.profile, cmd = a.profile.Update(msg)
		return a, cmd

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}

		// Help overlay captures all keys when open
		if a.helpOpen {
			switch msg.String() {
			case "h", "esc":
				a.helpOpen = false
			case "q":
				return a, tea.Quit
			case "j", "down":
				if a.helpCursor < len(helpItems)-1 {
					a.helpCursor++
				}
			case "k", "up":
				if a.helpCursor > 0 {
					a.helpCursor--
				}
			case "enter":
				item := helpItems[a.helpCursor]
				if err := openURL(a.client.BaseURL() + item.path); err != nil {
					a.log.Debug("open help link failed", zap.Error(err))
				}
			}
			return a, nil
		}

		if !a.isEditing() {
			authed := a.sess.State().Authenticated
			switch msg.String() {
			case "h":
				a.helpOpen = true
				a.helpCursor = 0
				return a, nil
			case "q":
				return a, tea.Quit
			case "esc":
				if _, ok := a.history.Back(); ok {
					return a.resolve(), nil
				}
				return a, nil
			case "1":
				return a.navigate(route.Home, false), nil
			case "2":
				return a.navigate(route.Function, false), nil
			case "3":
				return a.navigate(route.Profile, false), nil
			case "4":
				if authed {
					return a, a.logout()
				}
				return a.navigate(route.Login, false), nil
			case "5":
				if !authed {
					return a.navigate(route.SignUp, false), nil
				}
				return a, nil
			}
		}

		if a.pending() {
			return a, nil
		}
		var cmd tea.Cmd
		switch a.history.Current() {
		case route.Home:
			a.home, cmd = a.home.Update(msg)
		case route.Login:
			a.login, cmd = a.login.Update(msg)
		case route.SignUp:
			a.signup, cmd = a.signup.Update(msg)
		case route.Function:
			a.fn, cmd = a.fn.Update(msg)
		case route.Profile:
			a.profile, cmd = a.profile.Update(msg)
		}
		return a, cmd
	}
	return a, nil
}

func (a App) isEditing() bool {
	if a.pending() {
		return false
	}
	switch a.history.Current() {
	case route.Login:
		return a.login.form.editing
	case route.SignUp:
		return a.signup.form.editing
	case route.Function:
		return a.fn.form.editing
	case route.Profile:
		return a.profile.form.editing
	}
	return false
}

type tabEntry struct {
	key   string
	name  string
	route route.Route
}

func (a App) tabs() []tabEntry {
	tabs := []tabEntry{
		{"1", "Home", route.Home},
		{"2", "Function", route.Function},
		{"3", "Profile", route.Profile},
	}
	if a.sess.State().Authenticated {
		return append(tabs, tabEntry{"4", "Logout", ""})
	}
	return append(tabs,
		tabEntry{"4", "Login", route.Login},
		tabEntry{"5", "Sign up", route.SignUp},
	)
}

func (a App) View() string {
	st := a.sess.State()
	cur := a.history.Current()

	logo := renderShimmerLogo(a.frame)
	if st.Authenticated && st.User != nil {
		logo += "   " + metaStyle.Render(st.User.DisplayName())
	}
	logoPad := (a.width - lipgloss.Width(logo)) / 2
	if logoPad < 0 {
		logoPad = 0
	}
	header := strings.Repeat(" ", logoPad) + logo

	tabs := a.tabs()
	colWidth := a.width / len(tabs)
	var tabBar strings.Builder
	for _, t := range tabs {
		var label string
		if t.route != "" && t.route == cur {
			label = accentStyle.Render(t.key) + " " + selectedStyle.Underline(true).Render(t.name)
		} else {
			label = metaStyle.Render(t.key) + " " + dimStyle.Render(t.name)
		}
		labelWidth := lipgloss.Width(label)
		leftPad := (colWidth - labelWidth) / 2
		if leftPad < 0 {
			leftPad = 0
		}
		rightPad := colWidth - labelWidth - leftPad
		if rightPad < 0 {
			rightPad = 0
		}
		tabBar.WriteString(strings.Repeat(" ", leftPad) + label + strings.Repeat(" ", rightPad))
	}

	var body, help string
	switch {
	case a.helpOpen:
		body = helpView(a.client.BaseURL(), a.helpCursor)
		help = helpBar(helpEntry("j/k", "nav"), helpEntry("enter", "open"), helpEntry("esc", "close"))
	case a.pending():
		body = "\n  " + dimStyle.Render("checking session…")
		help = helpBar(helpEntry("q", "quit"))
	default:
		var keys string
		switch cur {
		case route.Home:
			body, keys = a.home.View(), a.home.helpKeys()
		case route.Login:
			body, keys = a.login.View(), a.login.helpKeys()
		case route.SignUp:
			body, keys = a.signup.View(), a.signup.helpKeys()
		case route.Function:
			body, keys = a.fn.View(), a.fn.helpKeys()
		case route.Profile:
			body, keys = a.profile.View(), a.profile.helpKeys()
		}
		if a.isEditing() {
			help = helpBar(keys)
		} else {
			entries := []string{helpEntry("1-5", "nav")}
			if a.history.Len() > 1 {
				entries = append(entries, helpEntry("esc", "back"))
			}
			help = helpBar(append(entries, keys)...)
		}
	}

	// Chrome budget: header(1) + tabs(1) + help(1) = 3 lines + body
	body = strings.TrimRight(truncateToHeight(body, a.height-3), "\n")

	return fmt.Sprintf("%s\n%s\n%s\n%s", header, tabBar.String(), body, help)
}
