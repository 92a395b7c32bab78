// Package shell switches between the submission form and the result view.
// A Shell holds the only cross-cutting state: whether a letter has been generated.
package shell

import (
	"sync"

	"github.com/jonathan/cover-letter-generator/internal/presenter"
	"github.com/jonathan/cover-letter-generator/internal/workflow"
)

// Mode is the view a Shell shows.
type Mode string

const (
	ModeForm   Mode = "form"
	ModeResult Mode = "result"
)

// PresenterFactory builds the presenter for a generated letter.
type PresenterFactory func(outcome *workflow.Outcome) *presenter.Presenter

// Shell owns the current result, if any, and the presenter showing it.
type Shell struct {
	newPresenter PresenterFactory

	mu        sync.Mutex
	outcome   *workflow.Outcome
	presenter *presenter.Presenter
}

// New creates a Shell in form mode.
func New(newPresenter PresenterFactory) *Shell {
	return &Shell{newPresenter: newPresenter}
}

// Mode reports which view should be shown.
func (s *Shell) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.outcome == nil {
		return ModeForm
	}
	return ModeResult
}

// Generated switches to result mode for outcome. A nil outcome is ignored.
func (s *Shell) Generated(outcome *workflow.Outcome) *presenter.Presenter {
	if outcome == nil || outcome.Result == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.presenter != nil {
		s.presenter.Reset()
	}
	s.outcome = outcome
	s.presenter = s.newPresenter(outcome)
	return s.presenter
}

// Outcome returns the held result and request, or nil in form mode.
func (s *Shell) Outcome() *workflow.Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.outcome
}

// Presenter returns the presenter of the held result, or nil in form mode.
func (s *Shell) Presenter() *presenter.Presenter {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.presenter
}

// Reset discards the result and returns to form mode.
func (s *Shell) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.presenter != nil {
		s.presenter.Reset()
	}
	s.presenter = nil
	s.outcome = nil
}
