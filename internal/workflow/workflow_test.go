package workflow

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/jonathan/cover-letter-generator/internal/apiclient"
	"github.com/jonathan/cover-letter-generator/internal/notify"
	"github.com/jonathan/cover-letter-generator/internal/observability"
	"github.com/jonathan/cover-letter-generator/internal/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGenerator returns a fixed result or error and counts calls.
type fakeGenerator struct {
	result  *types.GenerationResult
	err     error
	calls   atomic.Int32
	got     types.GenerationRequest
	release chan struct{}
	started chan struct{}
}

func (f *fakeGenerator) Generate(ctx context.Context, req types.GenerationRequest) (*types.GenerationResult, error) {
	f.calls.Add(1)
	f.got = req
	if f.started != nil {
		close(f.started)
	}
	if f.release != nil {
		<-f.release
	}
	return f.result, f.err
}

func exampleRequest() types.GenerationRequest {
	req := types.NewGenerationRequest()
	req.ResumeText = "Jane Doe..."
	req.JobDescription = "Backend Engineer..."
	req.AIProvider = types.ProviderOpenAI
	req.WordCount = 250
	return req
}

func exampleResult() *types.GenerationResult {
	return &types.GenerationResult{
		CoverLetter:     "Dear Hiring Manager...",
		WordCount:       248,
		GenerationTime:  3.2,
		AIProviderUsed:  "openai",
		MatchedKeywords: []string{"Python", "AWS"},
	}
}

func TestSubmit_Success(t *testing.T) {
	gen := &fakeGenerator{result: exampleResult()}
	flash := &notify.Flash{}
	w := New(gen, WithNotifier(flash))

	req := exampleRequest()
	outcome, err := w.Submit(context.Background(), req)
	require.NoError(t, err)

	assert.Same(t, gen.result, outcome.Result, "result is passed through unchanged")
	assert.Equal(t, req, outcome.Request)
	assert.Equal(t, req, gen.got)
	assert.Equal(t, Succeeded, w.State())
	assert.False(t, w.Submitting())

	pending := flash.Pending()
	require.Len(t, pending, 1, "success replaces the loading notification")
	assert.Equal(t, notify.KindSuccess, pending[0].Kind)
	assert.Equal(t, "Generated in 3.2s!", pending[0].Message)
}

func TestSubmit_ValidationIssuesNoCall(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*types.GenerationRequest)
		field  string
		msg    string
	}{
		{
			name:   "empty resume",
			mutate: func(r *types.GenerationRequest) { r.ResumeText = "" },
			field:  "resume_text",
			msg:    "Resume is required",
		},
		{
			name:   "empty job description",
			mutate: func(r *types.GenerationRequest) { r.JobDescription = "   " },
			field:  "job_description",
			msg:    "Job description is required",
		},
		{
			name:   "word count out of range",
			mutate: func(r *types.GenerationRequest) { r.WordCount = 50 },
			field:  "word_count",
			msg:    "Word count must be between 100 and 800",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &fakeGenerator{result: exampleResult()}
			flash := &notify.Flash{}
			w := New(gen, WithNotifier(flash))

			req := exampleRequest()
			tt.mutate(&req)

			outcome, err := w.Submit(context.Background(), req)
			require.Error(t, err)
			assert.Nil(t, outcome)

			var ve *types.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.msg, ve.Message(tt.field))

			assert.Zero(t, gen.calls.Load(), "no network call on invalid input")
			assert.Equal(t, Idle, w.State())
			assert.Empty(t, flash.Pending())
		})
	}
}

func TestSubmit_Failure(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantMsg string
	}{
		{
			name:    "server detail",
			err:     &apiclient.RemoteError{Operation: apiclient.OpGenerate, Status: 400, Detail: "OpenAI API key not configured"},
			wantMsg: "OpenAI API key not configured",
		},
		{
			name:    "no detail",
			err:     &apiclient.RemoteError{Operation: apiclient.OpGenerate, Status: 500},
			wantMsg: FallbackMessage,
		},
		{
			name:    "transport failure",
			err:     &apiclient.RemoteError{Operation: apiclient.OpGenerate, Cause: errors.New("connection refused")},
			wantMsg: FallbackMessage,
		},
		{
			name:    "decode failure",
			err:     &apiclient.DecodeError{Operation: apiclient.OpGenerate, Cause: errors.New("bad json")},
			wantMsg: FallbackMessage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &fakeGenerator{err: tt.err}
			flash := &notify.Flash{}
			w := New(gen, WithNotifier(flash))

			outcome, err := w.Submit(context.Background(), exampleRequest())
			require.ErrorIs(t, err, tt.err)
			assert.Nil(t, outcome)

			assert.Equal(t, Failed, w.State())
			assert.False(t, w.Submitting(), "input is re-enabled")
			assert.Equal(t, tt.err, w.LastError())

			pending := flash.Pending()
			require.Len(t, pending, 1)
			assert.Equal(t, notify.KindError, pending[0].Kind)
			assert.Equal(t, tt.wantMsg, pending[0].Message)
		})
	}
}

func TestSubmit_ResubmitAfterFailure(t *testing.T) {
	gen := &fakeGenerator{err: &apiclient.RemoteError{Status: 503}}
	w := New(gen)

	_, err := w.Submit(context.Background(), exampleRequest())
	require.Error(t, err)

	gen.err = nil
	gen.result = exampleResult()
	outcome, err := w.Submit(context.Background(), exampleRequest())
	require.NoError(t, err)
	assert.NotNil(t, outcome)
	assert.Nil(t, w.LastError())
	assert.Equal(t, int32(2), gen.calls.Load())
}

func TestSubmit_RejectsConcurrentSubmission(t *testing.T) {
	gen := &fakeGenerator{
		result:  exampleResult(),
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	w := New(gen)

	done := make(chan error, 1)
	go func() {
		_, err := w.Submit(context.Background(), exampleRequest())
		done <- err
	}()

	<-gen.started
	assert.True(t, w.Submitting())

	_, err := w.Submit(context.Background(), exampleRequest())
	assert.ErrorIs(t, err, ErrSubmissionInFlight)

	close(gen.release)
	require.NoError(t, <-done)
	assert.Equal(t, int32(1), gen.calls.Load())
}

func TestSubmit_RecordsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := observability.NewMetrics(reg)

	w := New(&fakeGenerator{result: exampleResult()}, WithMetrics(m))
	_, err := w.Submit(context.Background(), exampleRequest())
	require.NoError(t, err)

	_, err = w.Submit(context.Background(), types.GenerationRequest{})
	require.Error(t, err)

	count, err := testutil.GatherAndCount(reg, "coverletter_submissions_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestSuccessMessage(t *testing.T) {
	assert.Equal(t, "Generated in 3.2s!", SuccessMessage(&types.GenerationResult{GenerationTime: 3.2}))
	assert.Equal(t, "Generated in 4s!", SuccessMessage(&types.GenerationResult{GenerationTime: 4}))
	assert.Equal(t, "Generated in 0.75s!", SuccessMessage(&types.GenerationResult{GenerationTime: 0.75}))
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "submitting", Submitting.String())
	assert.Equal(t, "succeeded", Succeeded.String())
	assert.Equal(t, "failed", Failed.String())
	assert.Equal(t, "state(9)", State(9).String())
}
