package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/naveenspark/estate/internal/config"
	"github.com/naveenspark/estate/internal/logging"
	"github.com/naveenspark/estate/internal/route"
	"github.com/naveenspark/estate/internal/session"
	"github.com/naveenspark/estate/internal/tui"
	"github.com/naveenspark/estate/internal/workflow"
	"github.com/naveenspark/estate/pkg/client"
	"github.com/naveenspark/estate/pkg/domain"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

var (
	stdin  io.Reader = os.Stdin
	stdout io.Writer = os.Stdout
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := run(ctx, os.Args[1:])
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// env is everything a command needs to talk to the backend.
type env struct {
	cfg    *config.Config
	log    *zap.Logger
	client *client.Client
	store  *client.Store
	sess   *session.Session
}

func setup() (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log, err := logging.New(cfg.LogPath(), cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	store := client.NewStore(cfg.SessionFile())
	c, err := client.New(cfg.APIURL,
		client.WithTimeout(cfg.Timeout),
		client.WithStore(store),
		client.WithToken(cfg.Token),
		client.WithLogger(log),
	)
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, log: log, client: c, store: store, sess: session.New(c, log)}, nil
}

func run(ctx context.Context, args []string) error {
	if len(args) > 0 {
		switch args[0] {
		case "--version", "version", "-v":
			fmt.Fprintln(stdout, "estate "+version)
			return nil
		case "help", "--help", "-h":
			printHelp(stdout)
			return nil
		}
	}

	e, err := setup()
	if err != nil {
		return err
	}
	defer e.log.Sync() //nolint:errcheck

	if len(args) == 0 {
		return runTUI(ctx, e, route.Home)
	}
	switch args[0] {
	case "login":
		return runLogin(ctx, e)
	case "register":
		return runRegister(ctx, e)
	case "logout":
		return runLogout(ctx, e)
	case "whoami":
		return runWhoami(ctx, e)
	case "ask":
		return runAsk(ctx, e, args[1:])
	}
	if r, ok := route.Parse("/" + strings.TrimPrefix(args[0], "/")); ok {
		return runTUI(ctx, e, r)
	}
	return fmt.Errorf("unknown command %q (see estate help)", args[0])
}

// runTUI is swapped out in tests.
var runTUI = func(ctx context.Context, e *env, start route.Route) error {
	app := tui.NewApp(ctx, e.client, e.sess, e.log, start)
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("tui error: %w", err)
	}
	return nil
}

func runLogin(ctx context.Context, e *env) error {
	p := newPrompter()
	email, err := p.line("Email")
	if err != nil {
		return err
	}
	password, err := p.password("Password")
	if err != nil {
		return err
	}
	if email == "" || password == "" {
		return errors.New("please enter your email and password")
	}

	creds := domain.Credentials{Email: email, Password: password, Remember: true}
	if _, err := e.client.Login(ctx, creds); err != nil {
		if client.IsStatus(err, http.StatusUnauthorized) || client.IsStatus(err, http.StatusBadRequest) {
			return errors.New("invalid email or password")
		}
		return errors.New(client.Describe(err))
	}
	fmt.Fprintf(stdout, "%s\n\n", signedIn(e.sess.Login(ctx)))
	return runTUI(ctx, e, route.Function)
}

func runRegister(ctx context.Context, e *env) error {
	p := newPrompter()
	var reg domain.Registration
	for _, f := range []struct {
		label string
		dst   *string
	}{
		{"First name", &reg.Username},
		{"Last name", &reg.Lastname},
		{"Email", &reg.Email},
	} {
		v, err := p.line(f.label)
		if err != nil {
			return err
		}
		*f.dst = v
	}
	password, err := p.password("Password")
	if err != nil {
		return err
	}
	confirm, err := p.password("Confirm password")
	if err != nil {
		return err
	}
	if reg.Username == "" || reg.Lastname == "" || reg.Email == "" || password == "" {
		return errors.New("please fill in every field")
	}
	if password != confirm {
		return errors.New("passwords do not match")
	}
	reg.Password = password

	if err := e.client.Register(ctx, reg); err != nil {
		if client.IsStatus(err, http.StatusConflict) {
			return errors.New("email already in use")
		}
		return errors.New(client.Describe(err))
	}
	if _, err := e.client.Login(ctx, domain.Credentials{Email: reg.Email, Password: password, Remember: true}); err != nil {
		fmt.Fprintf(stdout, "Account created. Sign in failed: %s\n", client.Describe(err))
		return nil
	}
	fmt.Fprintf(stdout, "Account created. %s\n", signedIn(e.sess.Login(ctx)))
	return nil
}

func runLogout(ctx context.Context, e *env) error {
	if !e.client.HasCredentials() && !e.store.Exists() {
		fmt.Fprintln(stdout, "Already logged out.")
		return nil
	}
	e.sess.Logout(ctx)
	fmt.Fprintln(stdout, "Logged out.")
	return nil
}

func runWhoami(ctx context.Context, e *env) error {
	st := e.sess.Initialize(ctx)
	if !st.Authenticated {
		fmt.Fprintln(stdout, "Not signed in. Run: estate login")
		return nil
	}
	fmt.Fprintln(stdout, signedIn(st))
	if st.User != nil && st.User.Email != "" {
		fmt.Fprintln(stdout, dimStyle.Render(st.User.Email))
	}
	return nil
}

func signedIn(st session.State) string {
	if name := st.User.DisplayName(); name != "" {
		return "Signed in as " + name
	}
	return "Signed in."
}

// urlList collects repeated -u flags.
type urlList []string

func (l *urlList) String() string { return strings.Join(*l, ",") }

func (l *urlList) Set(v string) error {
	*l = append(*l, v)
	return nil
}

func runAsk(ctx context.Context, e *env, args []string) error {
	fs := flag.NewFlagSet("ask", flag.ContinueOnError)
	fs.SetOutput(stdout)
	var urls urlList
	fs.Var(&urls, "u", "source URL (repeat up to 3 times)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	question := strings.Join(fs.Args(), " ")

	wf := workflow.New(e.client, e.log)
	if _, err := wf.Start(urls, question); err != nil {
		return errors.New(workflow.Message(err))
	}
	fmt.Fprintln(stdout, dimStyle.Render(wf.State().Stage.Label()))
	if err := wf.Ingest(ctx); err != nil {
		return errors.New(workflow.Message(err))
	}
	fmt.Fprintln(stdout, dimStyle.Render(workflow.Querying.Label()))
	res, err := wf.Query(ctx)
	if err != nil {
		return errors.New(workflow.Message(err))
	}
	printAnswer(stdout, res)
	return nil
}
