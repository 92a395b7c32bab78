package server

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/jonathan/cover-letter-generator/internal/notify"
	"github.com/jonathan/cover-letter-generator/internal/presenter"
	"github.com/jonathan/cover-letter-generator/internal/shell"
	"github.com/jonathan/cover-letter-generator/internal/types"
	"github.com/jonathan/cover-letter-generator/internal/workflow"
	"go.uber.org/zap"
)

type option struct {
	Value    string
	Label    string
	Selected bool
}

// page is the data behind layout.html.
type page struct {
	Mode          shell.Mode
	ProviderNames string
	Notifications []notify.Notification

	// Form mode.
	Form           types.GenerationRequest
	JobURL         string
	JobURLEnabled  bool
	FieldErrors    map[string]string
	Providers      []option
	Styles         []option
	Tones          []option
	MinWords       int
	MaxWords       int
	LoadingMessage string

	// Result mode.
	Result            *types.GenerationResult
	Stats             []presenter.Stat
	Keywords          []string
	Formats           []types.ExportFormat
	CopiedForMillis   int64
	CopiedMessage     string
	CopyFailedMessage string
}

func (s *Server) formPage(sess *session, form types.GenerationRequest, jobURL string, fieldErrors map[string]string) page {
	return page{
		Mode:           shell.ModeForm,
		ProviderNames:  "Claude or ChatGPT",
		Notifications:  sess.flash.Drain(),
		Form:           form,
		JobURL:         jobURL,
		JobURLEnabled:  s.jobLoader != nil,
		FieldErrors:    fieldErrors,
		Providers:      options(string(form.AIProvider), []string{"claude", "openai"}, map[string]string{"claude": "Claude", "openai": "ChatGPT"}),
		Styles:         options(string(form.TemplateStyle), []string{"professional", "creative", "technical", "executive"}, nil),
		Tones:          options(string(form.Tone), []string{"formal", "conversational", "enthusiastic", "confident"}, nil),
		MinWords:       types.MinWordCount,
		MaxWords:       types.MaxWordCount,
		LoadingMessage: workflow.LoadingMessage,
	}
}

func (s *Server) resultPage(sess *session, p *presenter.Presenter) page {
	return page{
		Mode:              shell.ModeResult,
		ProviderNames:     "Claude or ChatGPT",
		Notifications:     sess.flash.Drain(),
		Result:            p.Result(),
		Stats:             p.Stats(),
		Keywords:          p.Keywords(),
		Formats:           types.DownloadFormats,
		CopiedForMillis:   presenter.DefaultCopiedFor.Milliseconds(),
		CopiedMessage:     presenter.CopiedMessage,
		CopyFailedMessage: presenter.CopyFailedMessage,
	}
}

func options(selected string, values []string, labels map[string]string) []option {
	out := make([]option, 0, len(values))
	for _, v := range values {
		label := labels[v]
		if label == "" {
			label = strings.ToUpper(v[:1]) + v[1:]
		}
		out = append(out, option{Value: v, Label: label, Selected: v == selected})
	}
	return out
}

// render executes the layout into a buffer first so a template error never produces half a page.
func (s *Server) render(w http.ResponseWriter, status int, data page) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, "layout", data); err != nil {
		s.logger.Error("failed to render page", zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
