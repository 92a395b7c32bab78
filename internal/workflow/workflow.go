// Package workflow implements the submission state machine: it validates a
// generation request, calls the generation API and reports progress through
// notifications.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/jonathan/cover-letter-generator/internal/apiclient"
	"github.com/jonathan/cover-letter-generator/internal/notify"
	"github.com/jonathan/cover-letter-generator/internal/observability"
	"github.com/jonathan/cover-letter-generator/internal/types"
	"go.uber.org/zap"
)

// Notification texts.
const (
	LoadingMessage  = "Generating your cover letter..."
	FallbackMessage = "Failed to generate cover letter. Please try again."
)

// ErrSubmissionInFlight is returned when Submit is called while a submission is running.
var ErrSubmissionInFlight = errors.New("a cover letter is already being generated")

// State is the position of a Workflow in its lifecycle.
type State int

const (
	// Idle accepts a submission.
	Idle State = iota
	// Submitting has a generate call in flight.
	Submitting
	// Succeeded produced a result.
	Succeeded
	// Failed rejected the last call; it accepts a resubmission like Idle.
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Submitting:
		return "submitting"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "state(" + strconv.Itoa(int(s)) + ")"
	}
}

// Generator is the part of the API client the workflow depends on.
type Generator interface {
	Generate(ctx context.Context, req types.GenerationRequest) (*types.GenerationResult, error)
}

// Outcome is what a successful submission hands to the view shell.
type Outcome struct {
	Result  *types.GenerationResult
	Request types.GenerationRequest
}

// Workflow drives one form from input to a generated letter.
// It is safe for concurrent use; at most one submission runs at a time.
type Workflow struct {
	generator Generator
	notifier  notify.Notifier
	logger    *zap.Logger
	metrics   *observability.Metrics

	mu      sync.Mutex
	state   State
	lastErr error
}

// Option configures a Workflow.
type Option func(*Workflow)

// WithNotifier sets where loading, success and error notifications go.
func WithNotifier(n notify.Notifier) Option {
	return func(w *Workflow) {
		w.notifier = notify.OrNop(n)
	}
}

// WithLogger sets the logger raw failures are written to.
func WithLogger(l *zap.Logger) Option {
	return func(w *Workflow) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithMetrics records submission outcomes in m.
func WithMetrics(m *observability.Metrics) Option {
	return func(w *Workflow) {
		w.metrics = m
	}
}

// New creates an idle Workflow that generates through g.
func New(g Generator, opts ...Option) *Workflow {
	w := &Workflow{
		generator: g,
		notifier:  notify.Nop{},
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// State returns the current state.
func (w *Workflow) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Submitting reports whether a generate call is in flight. Input should be disabled while it is.
func (w *Workflow) Submitting() bool {
	return w.State() == Submitting
}

// LastError returns the error of the most recent failed submission, or nil.
func (w *Workflow) LastError() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastErr
}

// Submit validates req and, when it is valid, generates a letter from it.
//
// A *types.ValidationError is returned without calling the API. A concurrent call
// returns ErrSubmissionInFlight. Any other error comes from the generation API and
// has already been reported through the notifier.
func (w *Workflow) Submit(ctx context.Context, req types.GenerationRequest) (*Outcome, error) {
	w.mu.Lock()
	if w.state == Submitting {
		w.mu.Unlock()
		w.metrics.ObserveSubmission(observability.OutcomeRejected)
		return nil, ErrSubmissionInFlight
	}
	if err := req.Validate(); err != nil {
		w.mu.Unlock()
		w.metrics.ObserveSubmission(observability.OutcomeInvalid)
		return nil, err
	}
	w.state = Submitting
	w.lastErr = nil
	w.mu.Unlock()

	toastID := notify.Loading(w.notifier, LoadingMessage)
	result, err := w.generator.Generate(ctx, req)

	w.mu.Lock()
	defer w.mu.Unlock()

	if err != nil {
		w.state = Failed
		w.lastErr = err
		w.logger.Error("cover letter generation failed", zap.Error(err))
		w.metrics.ObserveSubmission(observability.OutcomeFailed)
		notify.Error(w.notifier, toastID, FailureMessage(err))
		return nil, err
	}

	w.state = Succeeded
	w.metrics.ObserveSubmission(observability.OutcomeSuccess)
	notify.Success(w.notifier, toastID, SuccessMessage(result))
	return &Outcome{Result: result, Request: req}, nil
}

// SuccessMessage is the notification shown once a letter has been generated.
func SuccessMessage(result *types.GenerationResult) string {
	return fmt.Sprintf("Generated in %ss!", strconv.FormatFloat(result.GenerationTime, 'f', -1, 64))
}

// FailureMessage is the notification shown for a failed generate call:
// the server's detail when it sent one, the fallback text otherwise.
func FailureMessage(err error) string {
	if detail := apiclient.Detail(err); detail != "" {
		return detail
	}
	return FallbackMessage
}
