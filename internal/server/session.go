package server

import (
	"net/http"
	"sync"

	"github.com/jonathan/cover-letter-generator/internal/notify"
	"github.com/jonathan/cover-letter-generator/internal/presenter"
	"github.com/jonathan/cover-letter-generator/internal/server/middleware"
	"github.com/jonathan/cover-letter-generator/internal/shell"
	"github.com/jonathan/cover-letter-generator/internal/types"
	"github.com/jonathan/cover-letter-generator/internal/workflow"
)

// session is the per-browser state: the view shell, the workflow feeding it,
// pending notifications and the form as last submitted.
type session struct {
	flash    *notify.Flash
	workflow *workflow.Workflow
	shell    *shell.Shell

	mu          sync.Mutex
	form        types.GenerationRequest
	jobURL      string
	fieldErrors map[string]string
}

func (s *Server) newSession() *session {
	flash := &notify.Flash{}
	return &session{
		flash: flash,
		workflow: workflow.New(s.backend,
			workflow.WithNotifier(flash),
			workflow.WithLogger(s.logger),
			workflow.WithMetrics(s.metrics)),
		shell: shell.New(func(o *workflow.Outcome) *presenter.Presenter {
			return presenter.New(s.backend, o.Result, o.Request,
				presenter.WithNotifier(flash),
				presenter.WithLogger(s.logger),
				presenter.WithMetrics(s.metrics))
		}),
		form: types.NewGenerationRequest(),
	}
}

// Reset implements shell.Resetter.
func (ss *session) Reset() {
	ss.shell.Reset()
	ss.flash.Drain()

	ss.mu.Lock()
	defer ss.mu.Unlock()
	ss.form = types.NewGenerationRequest()
	ss.jobURL = ""
	ss.fieldErrors = nil
}

// remember stores what the user typed so a failed submission can be retried unchanged.
func (ss *session) remember(form types.GenerationRequest, jobURL string, fieldErrors map[string]string) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	ss.form = form
	ss.jobURL = jobURL
	ss.fieldErrors = fieldErrors
}

// formState returns the remembered form and clears its field errors, which are shown once.
func (ss *session) formState() (types.GenerationRequest, string, map[string]string) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	errs := ss.fieldErrors
	ss.fieldErrors = nil
	return ss.form, ss.jobURL, errs
}

// sessionFor returns the state behind the request's session cookie.
func (s *Server) sessionFor(r *http.Request) (string, *session) {
	id, err := middleware.GetSessionID(r)
	if err != nil {
		id = shell.NewID()
	}
	return id, s.sessions.Get(id)
}
