// Package workflow runs the two-phase ingest-then-query interaction of the
// tool screen: register up to three source URLs, then ask a question about
// them.
//
// Stages advance Idle -> Validating -> Ingesting -> Querying -> Result. A
// failure in Validating, Ingesting or Querying drops back to Idle with an
// error and no partial answer. Only one run may be in flight at a time.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/naveenspark/estate/internal/logging"
	"github.com/naveenspark/estate/pkg/client"
	"github.com/naveenspark/estate/pkg/domain"
)

// API is the part of the backend client the workflow needs.
type API interface {
	ProcessURLs(ctx context.Context, urls []string) error
	Query(ctx context.Context, question string) (*domain.QueryResponse, error)
}

// Stage is a workflow state.
type Stage int

const (
	Idle Stage = iota
	Validating
	Ingesting
	Querying
	Result
)

func (s Stage) String() string {
	switch s {
	case Idle:
		return "idle"
	case Validating:
		return "validating"
	case Ingesting:
		return "ingesting"
	case Querying:
		return "querying"
	case Result:
		return "result"
	}
	return fmt.Sprintf("stage(%d)", int(s))
}

// Label is the progress text shown while s is in flight.
func (s Stage) Label() string {
	switch s {
	case Ingesting:
		return "Initializing & indexing sources…"
	case Querying:
		return "Generating answer…"
	}
	return ""
}

// InFlight reports whether s is waiting on the backend.
func (s Stage) InFlight() bool {
	return s == Validating || s == Ingesting || s == Querying
}

// ErrBusy is returned when a run is requested while another is in flight.
var ErrBusy = errors.New("workflow: a run is already in progress")

// ErrStage is returned when a step is called out of order.
var ErrStage = errors.New("workflow: step called out of order")

// Input is a validated submission.
type Input struct {
	URLs     []string
	Question string
}

// State is a snapshot for rendering.
type State struct {
	Stage  Stage
	RunID  uuid.UUID
	Input  Input
	Result *domain.AnswerResult
	Err    error
}

// Message returns the text for the error panel, or "".
func (s State) Message() string {
	return Message(s.Err)
}

// Workflow holds the state of one tool screen. It is safe for concurrent use.
type Workflow struct {
	api API
	log *zap.Logger

	mu    sync.Mutex
	state State
}

// New returns an idle workflow.
func New(api API, log *zap.Logger) *Workflow {
	return &Workflow{api: api, log: logging.OrNop(log).Named("workflow")}
}

// State returns a snapshot.
func (w *Workflow) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.snapshot()
}

func (w *Workflow) snapshot() State {
	st := w.state
	st.Input.URLs = append([]string(nil), st.Input.URLs...)
	if st.Result != nil {
		r := *st.Result
		r.Sources = append([]string(nil), r.Sources...)
		st.Result = &r
	}
	return st
}

// Start validates the submission and, on success, moves to Ingesting. The
// previous answer and error are cleared first. Validation failures leave the
// workflow Idle with the error recorded; no network call is made.
func (w *Workflow) Start(urls []string, question string) (Input, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state.Stage.InFlight() {
		return Input{}, ErrBusy
	}
	w.state = State{Stage: Validating, RunID: uuid.New()}

	in, err := Validate(urls, question)
	if err != nil {
		w.state.Stage = Idle
		w.state.Err = err
		w.log.Debug("submission rejected", zap.String("run_id", w.state.RunID.String()), zap.Error(err))
		return Input{}, err
	}
	w.state.Input = in
	w.state.Stage = Ingesting
	w.log.Info("run started",
		zap.String("run_id", w.state.RunID.String()),
		zap.Int("urls", len(in.URLs)))
	return in, nil
}

// Ingest registers the run's URLs with the backend. It must be called in
// Ingesting and moves to Querying on success.
func (w *Workflow) Ingest(ctx context.Context) error {
	w.mu.Lock()
	if w.state.Stage != Ingesting {
		w.mu.Unlock()
		return ErrStage
	}
	runID := w.state.RunID
	urls := append([]string(nil), w.state.Input.URLs...)
	w.mu.Unlock()

	start := time.Now()
	err := w.api.ProcessURLs(ctx, urls)

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state.RunID != runID {
		// Reset or a new run raced us; the result belongs to nobody.
		return ErrStage
	}
	if err != nil {
		w.fail(err, "ingest")
		return err
	}
	w.state.Stage = Querying
	w.log.Info("sources ingested", zap.String("run_id", runID.String()), zap.Duration("elapsed", time.Since(start)))
	return nil
}

// Query asks the run's question. It must be called in Querying and moves to
// Result on success.
func (w *Workflow) Query(ctx context.Context) (*domain.AnswerResult, error) {
	w.mu.Lock()
	if w.state.Stage != Querying {
		w.mu.Unlock()
		return nil, ErrStage
	}
	runID := w.state.RunID
	in := w.state.Input
	w.mu.Unlock()

	start := time.Now()
	resp, err := w.api.Query(ctx, in.Question)

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state.RunID != runID {
		return nil, ErrStage
	}
	if err == nil && resp == nil {
		err = errors.New("workflow: empty query response")
	}
	if err != nil {
		w.fail(err, "query")
		return nil, err
	}
	res := domain.NewAnswerResult(*resp, in.URLs)
	w.state.Result = &res
	w.state.Stage = Result
	w.log.Info("answer received",
		zap.String("run_id", runID.String()),
		zap.Int("sources", len(res.Sources)),
		zap.Duration("elapsed", time.Since(start)))
	out := res
	out.Sources = append([]string(nil), res.Sources...)
	return &out, nil
}

func (w *Workflow) fail(err error, stage string) {
	w.log.Warn("run failed",
		zap.String("run_id", w.state.RunID.String()),
		zap.String("stage", stage),
		zap.Int("status", client.StatusCode(err)),
		zap.Error(err))
	w.state.Stage = Idle
	w.state.Result = nil
	w.state.Err = err
}

// Submit runs validation, ingestion and the query in order. Ingestion always
// completes before the question is sent; a failure stops the run.
func (w *Workflow) Submit(ctx context.Context, urls []string, question string) (*domain.AnswerResult, error) {
	if _, err := w.Start(urls, question); err != nil {
		return nil, err
	}
	if err := w.Ingest(ctx); err != nil {
		return nil, err
	}
	return w.Query(ctx)
}

// Discard drops the current run with its answer and error, even while a step
// is in flight. A step that returns afterwards gets ErrStage and changes
// nothing. It is meant for sign-out, where no answer may outlive the session.
func (w *Workflow) Discard() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state.Stage.InFlight() {
		w.log.Info("run discarded",
			zap.String("run_id", w.state.RunID.String()),
			zap.String("stage", w.state.Stage.String()))
	}
	w.state = State{}
}

// Reset clears the answer, sources and error and returns to Idle. It is not
// available while a run is in flight.
func (w *Workflow) Reset() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state.Stage.InFlight() {
		return ErrBusy
	}
	w.state = State{}
	return nil
}

// ValidationError is a client-side rejection of a submission.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

// Validation messages.
const (
	MsgNoURL       = "Please provide at least 1 URL"
	MsgNoQuestion  = "Please enter your question"
	MsgInvalidURL  = "Some URLs look invalid (must start with http/https)."
	MsgTooManyURLs = "Please provide at most 3 URLs"
)

// Validate drops empty URL slots and checks the rest. The question is
// returned trimmed.
func Validate(urls []string, question string) (Input, error) {
	var provided []string
	for _, u := range urls {
		if u = strings.TrimSpace(u); u != "" {
			provided = append(provided, u)
		}
	}
	if len(provided) == 0 {
		return Input{}, &ValidationError{Msg: MsgNoURL}
	}
	if len(provided) > domain.MaxSources {
		return Input{}, &ValidationError{Msg: MsgTooManyURLs}
	}
	q := strings.TrimSpace(question)
	if q == "" {
		return Input{}, &ValidationError{Msg: MsgNoQuestion}
	}
	for _, u := range provided {
		if !domain.ValidSourceURL(u) {
			return Input{}, &ValidationError{Msg: MsgInvalidURL}
		}
	}
	return Input{URLs: provided, Question: q}, nil
}

// CanSubmit reports whether Validate would accept the submission.
func CanSubmit(urls []string, question string) bool {
	_, err := Validate(urls, question)
	return err == nil
}

// Message renders err for the error panel.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return vErr.Msg
	}
	if errors.Is(err, ErrBusy) {
		return "A request is already in progress"
	}
	return client.Describe(err)
}
