package tui

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/estate/internal/route"
	"github.com/naveenspark/estate/internal/session"
	"github.com/naveenspark/estate/internal/workflow"
	"github.com/naveenspark/estate/pkg/client"
	"github.com/naveenspark/estate/pkg/domain"
)

// fakeBackend is a minimal stand-in for the API that issues a bearer token.
type fakeBackend struct {
	mu sync.Mutex

	password     string
	registerCode int
	processCode  int
	query        domain.QueryResponse
	changeCode   int

	calls []string
}

const testToken = "tok-123"

func (b *fakeBackend) record(r *http.Request) {
	b.mu.Lock()
	b.calls = append(b.calls, r.Method+" "+r.URL.Path)
	b.mu.Unlock()
}

func (b *fakeBackend) callLog() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.calls...)
}

func (b *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.record(r)
	b.mu.Lock()
	defer b.mu.Unlock()

	authed := r.Header.Get("Authorization") == "Bearer "+testToken
	fail := func(code int, detail string) {
		w.WriteHeader(code)
		json.NewEncoder(w).Encode(map[string]string{"detail": detail}) //nolint:errcheck
	}
	switch r.URL.Path {
	case "/users/me":
		if !authed {
			fail(http.StatusUnauthorized, "Not authenticated")
			return
		}
		json.NewEncoder(w).Encode(domain.UserProfile{ID: 1, Email: "ada@example.com", Username: "Ada"}) //nolint:errcheck
	case "/auth/login":
		if err := r.ParseForm(); err != nil || r.PostForm.Get("password") != b.password {
			fail(http.StatusUnauthorized, "Bad credentials")
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"access_token": testToken, "token_type": "bearer"}) //nolint:errcheck
	case "/auth/logout":
		w.WriteHeader(http.StatusNoContent)
	case "/auth/register":
		if b.registerCode != 0 {
			fail(b.registerCode, "Email already registered")
			return
		}
		w.WriteHeader(http.StatusCreated)
	case "/auth/google-login-url":
		json.NewEncoder(w).Encode(map[string]string{"url": "https://accounts.example.com/o/auth"}) //nolint:errcheck
	case "/users/change-password":
		if b.changeCode != 0 {
			fail(b.changeCode, "Wrong password")
			return
		}
		w.WriteHeader(http.StatusOK)
	case "/process/process-urls":
		if b.processCode != 0 {
			fail(b.processCode, "could not fetch")
			return
		}
		w.WriteHeader(http.StatusOK)
	case "/process/query":
		json.NewEncoder(w).Encode(b.query) //nolint:errcheck
	default:
		http.NotFound(w, r)
	}
}

type harness struct {
	backend *fakeBackend
	client  *client.Client
	sess    *session.Session
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	b := &fakeBackend{password: "secret"}
	srv := httptest.NewServer(b)
	t.Cleanup(srv.Close)
	c, err := client.New(srv.URL)
	if err != nil {
		t.Fatalf("client.New: %v", err)
	}
	return &harness{backend: b, client: c, sess: session.New(c, nil)}
}

// app builds an App with a resolved session.
func (h *harness) app(t *testing.T, start route.Route) App {
	t.Helper()
	h.sess.Initialize(context.Background())
	a := NewApp(context.Background(), h.client, h.sess, nil, start)
	a.width = 100
	a.height = 60
	return a
}

// signIn authenticates the harness session directly.
func (h *harness) signIn(t *testing.T) {
	t.Helper()
	if _, err := h.client.Login(context.Background(), domain.Credentials{Email: "ada@example.com", Password: "secret"}); err != nil {
		t.Fatalf("Login: %v", err)
	}
	h.sess.Login(context.Background())
}

// inHistory walks a copy of h back to its root looking for r.
func inHistory(h route.History, r route.Route) bool {
	for {
		if h.Current() == r {
			return true
		}
		if _, ok := h.Back(); !ok {
			return false
		}
	}
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(a App, msg tea.Msg) (App, tea.Cmd) {
	m, cmd := a.Update(msg)
	return m.(App), cmd
}

// typeText sends s one rune at a time.
func typeText(a App, s string) App {
	for _, r := range s {
		a, _ = press(a, keyRunes(string(r)))
	}
	return a
}

// drain runs cmd and feeds resulting messages back until none are left.
func drain(a App, cmd tea.Cmd) App {
	for cmd != nil {
		msg := cmd()
		if msg == nil {
			return a
		}
		a, cmd = press(a, msg)
	}
	return a
}

func TestAppTabSwitching(t *testing.T) {
	h := newHarness(t)
	tests := []struct {
		key  string
		want route.Route
	}{
		{"1", route.Home},
		{"2", route.Login}, // guarded, guest
		{"3", route.Login}, // guarded, guest
		{"4", route.Login},
		{"5", route.SignUp},
	}
	for _, tc := range tests {
		t.Run(tc.key, func(t *testing.T) {
			a := h.app(t, route.Home)
			a, _ = press(a, keyRunes(tc.key))
			if got := a.history.Current(); got != tc.want {
				t.Errorf("after key %q: route = %q, want %q", tc.key, got, tc.want)
			}
		})
	}
}

func TestAppGuardRedirectReplacesHistory(t *testing.T) {
	h := newHarness(t)
	a := h.app(t, route.Home)

	a, _ = press(a, keyRunes("2"))
	if a.history.Current() != route.Login {
		t.Fatalf("expected redirect to login, got %q", a.history.Current())
	}
	if inHistory(a.history, route.Function) {
		t.Error("expected the guarded route to be replaced, not kept in history")
	}

	a, _ = press(a, tea.KeyMsg{Type: tea.KeyEsc})
	if a.history.Current() != route.Home {
		t.Errorf("esc: expected home, got %q", a.history.Current())
	}
}

func TestAppPendingShowsPlaceholder(t *testing.T) {
	h := newHarness(t)
	a := NewApp(context.Background(), h.client, h.sess, nil, route.Function)
	a.width, a.height = 100, 40

	if !a.pending() {
		t.Fatal("expected pending while the session initializes")
	}
	if view := a.View(); !strings.Contains(view, "checking session…") {
		t.Errorf("expected placeholder, got:\n%s", view)
	}

	// The session check fails closed and the guard then redirects.
	a, _ = press(a, sessionResolvedMsg{state: h.sess.Initialize(context.Background())})
	if a.history.Current() != route.Login {
		t.Errorf("expected login after unauthenticated session check, got %q", a.history.Current())
	}
}

func TestAppStartsOnFunctionWhenSignedIn(t *testing.T) {
	h := newHarness(t)
	h.signIn(t)
	a := h.app(t, route.Function)
	if a.history.Current() != route.Function {
		t.Fatalf("expected function for signed-in user, got %q", a.history.Current())
	}
	if a.pending() {
		t.Error("resolved session must not be pending")
	}
	if view := a.View(); !strings.Contains(view, "Ask about your listings") {
		t.Errorf("expected function screen:\n%s", view)
	}
}

func TestAppGuestOnlyRoutesRedirectWhenSignedIn(t *testing.T) {
	h := newHarness(t)
	h.signIn(t)
	a := h.app(t, route.Home)

	a, _ = press(a, keyRunes("5"))
	if a.history.Current() != route.Home {
		t.Errorf("5 is hidden when signed in; route = %q", a.history.Current())
	}
	a = a.navigate(route.Login, false)
	if a.history.Current() != route.Function {
		t.Errorf("expected /login to redirect to /function, got %q", a.history.Current())
	}
}

func TestAppLogout(t *testing.T) {
	h := newHarness(t)
	h.signIn(t)
	a := h.app(t, route.Profile)

	a, cmd := press(a, keyRunes("4"))
	if cmd == nil {
		t.Fatal("expected logout command")
	}
	a = drain(a, cmd)

	if h.sess.State().Authenticated {
		t.Error("expected session cleared after logout")
	}
	if a.history.Current() != route.Login {
		t.Errorf("expected login after logout, got %q", a.history.Current())
	}
	if h.client.HasCredentials() {
		t.Error("expected local credentials cleared")
	}
}

func TestAppLogoutForgetsPreviousUsersWork(t *testing.T) {
	h, a := newFunctionApp(t)
	h.backend.query = domain.QueryResponse{Answer: "SECRET-ANSWER"}
	a = fillFunction(a, "https://listing.example.com/1", "Price?")
	a, cmd := press(a, tea.KeyMsg{Type: tea.KeyEnter})
	a = drain(a, cmd)
	if !strings.Contains(a.View(), "SECRET-ANSWER") {
		t.Fatalf("expected the answer on screen:\n%s", a.View())
	}

	a, cmd = press(a, keyRunes("4"))
	a = drain(a, cmd)

	if got := a.fn.wf.State(); got.Result != nil || got.Stage != workflow.Idle {
		t.Errorf("expected the run discarded, got stage %v", got.Stage)
	}
	for i := fnURL1; i <= fnQuestion; i++ {
		if v := a.fn.form.value(i); v != "" {
			t.Errorf("field %d kept %q after logout", i, v)
		}
	}

	h.signIn(t)
	a, _ = press(a, keyRunes("2"))
	if a.history.Current() != route.Function {
		t.Fatalf("expected function screen, got %q", a.history.Current())
	}
	view := a.View()
	if strings.Contains(view, "SECRET-ANSWER") || strings.Contains(view, "listing.example.com/1") {
		t.Errorf("previous user's work leaked into the next session:\n%s", view)
	}
}

func TestAppHelpOffersBackOnlyWithHistory(t *testing.T) {
	h := newHarness(t)
	a := h.app(t, route.Home)
	helpLine := func(a App) string {
		lines := strings.Split(a.View(), "\n")
		return lines[len(lines)-1]
	}
	if strings.Contains(helpLine(a), "back") {
		t.Errorf("nothing to go back to, got %q", helpLine(a))
	}
	a, _ = press(a, keyRunes("4"))
	if !strings.Contains(helpLine(a), "back") {
		t.Errorf("expected esc back after navigating, got %q", helpLine(a))
	}
}

func TestAppNavBarReflectsSession(t *testing.T) {
	h := newHarness(t)
	a := h.app(t, route.Home)
	view := a.View()
	if !strings.Contains(view, "Sign up") || strings.Contains(view, "Logout") {
		t.Errorf("guest nav bar wrong:\n%s", view)
	}

	h.signIn(t)
	a = a.resolve()
	view = a.View()
	if !strings.Contains(view, "Logout") || strings.Contains(view, "Sign up") {
		t.Errorf("signed-in nav bar wrong:\n%s", view)
	}
	if !strings.Contains(view, "Ada") {
		t.Errorf("expected display name in header:\n%s", view)
	}
}

func TestAppGlobalQuitOnQ(t *testing.T) {
	h := newHarness(t)
	a := h.app(t, route.Home)
	_, cmd := press(a, keyRunes("q"))
	if cmd == nil {
		t.Fatal("expected quit command on 'q', got nil")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func TestAppEditingSwallowsGlobalKeys(t *testing.T) {
	h := newHarness(t)
	a := h.app(t, route.Login)

	a, _ = press(a, tea.KeyMsg{Type: tea.KeyEnter}) // start editing
	if !a.isEditing() {
		t.Fatal("expected editing after enter")
	}
	a = typeText(a, "q1h")
	if a.history.Current() != route.Login || a.helpOpen {
		t.Fatal("global keys must not fire while editing")
	}
	if got := a.login.form.value(loginEmail); got != "q1h" {
		t.Errorf("email = %q, want %q", got, "q1h")
	}

	a, _ = press(a, tea.KeyMsg{Type: tea.KeyEsc})
	if a.isEditing() {
		t.Error("esc should leave editing")
	}
	if a.history.Current() != route.Login {
		t.Error("esc while editing should not navigate back")
	}
}

func TestAppHelpOverlay(t *testing.T) {
	h := newHarness(t)
	a := h.app(t, route.Home)

	var opened string
	orig := openURL
	openURL = func(u string) error { opened = u; return nil }
	defer func() { openURL = orig }()

	a, _ = press(a, keyRunes("h"))
	if !a.helpOpen {
		t.Fatal("expected help overlay")
	}
	if view := a.View(); !strings.Contains(view, "estate ask") {
		t.Errorf("expected commands in help:\n%s", view)
	}
	a, _ = press(a, tea.KeyMsg{Type: tea.KeyEnter})
	if opened != h.client.BaseURL()+"/docs" {
		t.Errorf("opened %q", opened)
	}
	a, _ = press(a, tea.KeyMsg{Type: tea.KeyEsc})
	if a.helpOpen {
		t.Error("expected help closed")
	}
}

func TestAppResultsReachTheirScreen(t *testing.T) {
	h := newHarness(t)
	a := h.app(t, route.Home)

	// A late password-change result lands on the profile screen even though
	// the user is elsewhere.
	a, _ = press(a, passwordChangedMsg{})
	if a.profile.success != msgPasswordUpdated {
		t.Errorf("profile success = %q", a.profile.success)
	}
}
