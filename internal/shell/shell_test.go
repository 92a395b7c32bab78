package shell

import (
	"testing"
	"time"

	"github.com/jonathan/cover-letter-generator/internal/presenter"
	"github.com/jonathan/cover-letter-generator/internal/types"
	"github.com/jonathan/cover-letter-generator/internal/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestShell() *Shell {
	return New(func(o *workflow.Outcome) *presenter.Presenter {
		return presenter.New(nil, o.Result, o.Request)
	})
}

func exampleOutcome() *workflow.Outcome {
	req := types.NewGenerationRequest()
	req.ResumeText = "Jane Doe..."
	req.JobDescription = "Backend Engineer..."
	return &workflow.Outcome{
		Result:  &types.GenerationResult{CoverLetter: "Dear Hiring Manager...", WordCount: 248},
		Request: req,
	}
}

func TestShell_StartsInFormMode(t *testing.T) {
	s := newTestShell()
	assert.Equal(t, ModeForm, s.Mode())
	assert.Nil(t, s.Outcome())
	assert.Nil(t, s.Presenter())
}

func TestShell_GeneratedSwitchesToResult(t *testing.T) {
	s := newTestShell()
	outcome := exampleOutcome()

	p := s.Generated(outcome)
	require.NotNil(t, p)

	assert.Equal(t, ModeResult, s.Mode())
	assert.Same(t, outcome, s.Outcome())
	assert.Same(t, outcome.Result, p.Result(), "presenter shows exactly the received result")
}

func TestShell_GeneratedIgnoresEmptyOutcome(t *testing.T) {
	s := newTestShell()
	assert.Nil(t, s.Generated(nil))
	assert.Nil(t, s.Generated(&workflow.Outcome{}))
	assert.Equal(t, ModeForm, s.Mode())
}

func TestShell_Reset(t *testing.T) {
	s := newTestShell()
	p := s.Generated(exampleOutcome())

	s.Reset()

	assert.Equal(t, ModeForm, s.Mode())
	assert.Nil(t, s.Outcome())
	assert.Nil(t, s.Presenter())
	assert.Nil(t, p.Result(), "the discarded presenter holds no residual state")
}

func TestSessions_GetCreatesAndReuses(t *testing.T) {
	sessions := NewSessions(newTestShell, 0)

	a := sessions.Get("a")
	assert.Same(t, a, sessions.Get("a"))
	assert.NotSame(t, a, sessions.Get("b"))
	assert.Equal(t, 2, sessions.Len())

	sessions.Delete("a")
	assert.Equal(t, 1, sessions.Len())
	assert.NotSame(t, a, sessions.Get("a"))
}

func TestSessions_ExpireIdle(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	sessions := NewSessions(newTestShell, time.Hour)
	sessions.now = func() time.Time { return now }

	old := sessions.Get("old")
	old.Generated(exampleOutcome())

	now = now.Add(2 * time.Hour)
	sessions.Get("new")

	assert.Equal(t, 1, sessions.Len())
	assert.Equal(t, ModeForm, old.Mode(), "expired shells are reset")
}

func TestSessions_Evict(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	sessions := NewSessions(newTestShell, time.Minute)
	sessions.now = func() time.Time { return now }

	sessions.Get("a")
	now = now.Add(2 * time.Minute)
	sessions.Evict()

	assert.Zero(t, sessions.Len())
}

func TestNewID(t *testing.T) {
	assert.NotEqual(t, NewID(), NewID())
	assert.Len(t, NewID(), 36)
}
