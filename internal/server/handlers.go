package server

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/jonathan/cover-letter-generator/internal/apiclient"
	"github.com/jonathan/cover-letter-generator/internal/notify"
	"github.com/jonathan/cover-letter-generator/internal/presenter"
	"github.com/jonathan/cover-letter-generator/internal/shell"
	"github.com/jonathan/cover-letter-generator/internal/types"
	"github.com/jonathan/cover-letter-generator/internal/workflow"
	"go.uber.org/zap"
)

const maxFormBytes = 2 << 20

const jobURLFailedMessage = "Could not load the job posting from that URL. Paste the description instead."

// handleIndex renders the form, or the result once a letter has been generated.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	_, sess := s.sessionFor(r)

	if sess.shell.Mode() == shell.ModeResult {
		if p := sess.shell.Presenter(); p != nil {
			s.render(w, http.StatusOK, s.resultPage(sess, p))
			return
		}
	}

	form, jobURL, fieldErrors := sess.formState()
	s.render(w, http.StatusOK, s.formPage(sess, form, jobURL, fieldErrors))
}

// handleGenerate submits the form through the session's workflow.
// Field errors re-render the form directly; everything else redirects back to the index.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	_, sess := s.sessionFor(r)

	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid form submission")
		return
	}
	req := requestFromForm(r)
	jobURL := strings.TrimSpace(r.PostFormValue("job_url"))

	if s.jobLoader != nil && jobURL != "" && strings.TrimSpace(req.JobDescription) == "" {
		doc, err := s.jobLoader.FromURL(r.Context(), jobURL)
		if err != nil {
			s.logger.Warn("failed to load job posting", zap.String("url", jobURL), zap.Error(err))
			s.render(w, http.StatusUnprocessableEntity, s.formPage(sess, req, jobURL, map[string]string{
				"job_url": jobURLFailedMessage,
			}))
			return
		}
		req.JobDescription = doc.Text
		if req.JobTitle == "" {
			req.JobTitle = doc.Title
		}
		if req.CompanyName == "" {
			req.CompanyName = doc.Company
		}
	}

	outcome, err := sess.workflow.Submit(r.Context(), req)
	var validationErr *types.ValidationError
	switch {
	case err == nil:
		sess.remember(types.NewGenerationRequest(), "", nil)
		sess.shell.Generated(outcome)
		http.Redirect(w, r, "/", http.StatusSeeOther)
	case errors.As(err, &validationErr):
		s.render(w, http.StatusUnprocessableEntity, s.formPage(sess, req, jobURL, fieldErrorMap(validationErr)))
	case errors.Is(err, workflow.ErrSubmissionInFlight):
		notify.Error(sess.flash, "", "A cover letter is already being generated.")
		s.render(w, http.StatusConflict, s.formPage(sess, req, jobURL, nil))
	default:
		// The workflow has already queued the error notification.
		sess.remember(req, jobURL, nil)
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

// handleExport streams the letter in the requested format as an attachment.
// Failures before the download starts redirect to the result page, where the error
// notification is shown; once headers are sent a failure is only logged.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format, err := types.ParseExportFormat(r.PathValue("format"))
	if err != nil {
		s.errorResponse(w, http.StatusNotFound, err.Error())
		return
	}

	_, sess := s.sessionFor(r)
	p := sess.shell.Presenter()
	if p == nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	dl := &responseDownloader{w: w}
	if _, err := p.ExportTo(r.Context(), format, dl); err != nil {
		if dl.wrote {
			s.logger.Warn("export download interrupted", zap.String("format", string(format)), zap.Error(err))
			return
		}
		if errors.Is(err, presenter.ErrExportInFlight) {
			notify.Error(sess.flash, "", "An export is already in progress.")
		}
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

// handleReset discards the letter and returns to an empty form.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	id, _ := s.sessionFor(r)
	s.sessions.Delete(id)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleHealthz reports that the front end itself is up.
func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleBackendHealth proxies the generation API health probe.
func (s *Server) handleBackendHealth(w http.ResponseWriter, r *http.Request) {
	status, err := s.backend.CheckHealth(r.Context())
	if err != nil {
		s.logger.Error("backend health check failed", zap.Error(err))
		msg := apiclient.Detail(err)
		if msg == "" {
			msg = "generation API unavailable"
		}
		s.errorResponse(w, http.StatusBadGateway, msg)
		return
	}
	s.jsonResponse(w, http.StatusOK, status)
}

// responseDownloader sends an exported document to the browser.
// wrote reports whether the response status has been sent.
type responseDownloader struct {
	w     http.ResponseWriter
	wrote bool
}

func (d *responseDownloader) Download(_ context.Context, dl *apiclient.Download) (string, error) {
	h := d.w.Header()
	h.Set("Content-Type", dl.ContentType)
	h.Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": dl.Filename}))
	h.Set("Content-Length", strconv.Itoa(len(dl.Data)))
	d.wrote = true
	d.w.WriteHeader(http.StatusOK)
	if _, err := d.w.Write(dl.Data); err != nil {
		return "", fmt.Errorf("write download: %w", err)
	}
	return dl.Filename, nil
}

// requestFromForm reads a GenerationRequest from posted form values.
// Blank selections fall back to the defaults of a fresh form; an unparsable word count is kept invalid.
func requestFromForm(r *http.Request) types.GenerationRequest {
	req := types.GenerationRequest{
		ResumeText:      r.PostFormValue("resume_text"),
		JobDescription:  r.PostFormValue("job_description"),
		AdditionalNotes: strings.TrimSpace(r.PostFormValue("additional_notes")),
		AIProvider:      types.AIProvider(r.PostFormValue("ai_provider")),
		TemplateStyle:   types.TemplateStyle(r.PostFormValue("template_style")),
		Tone:            types.Tone(r.PostFormValue("tone")),
		JobTitle:        strings.TrimSpace(r.PostFormValue("job_title")),
		CompanyName:     strings.TrimSpace(r.PostFormValue("company_name")),
		ApplicantName:   strings.TrimSpace(r.PostFormValue("applicant_name")),
		ApplicantEmail:  strings.TrimSpace(r.PostFormValue("applicant_email")),
		ApplicantPhone:  strings.TrimSpace(r.PostFormValue("applicant_phone")),
	}
	if wc := strings.TrimSpace(r.PostFormValue("word_count")); wc != "" {
		n, err := strconv.Atoi(wc)
		if err != nil {
			n = -1
		}
		req.WordCount = n
	}
	return req.WithDefaults()
}

func fieldErrorMap(ve *types.ValidationError) map[string]string {
	out := make(map[string]string, len(ve.Errors))
	for _, fe := range ve.Errors {
		if _, seen := out[fe.Field]; !seen {
			out[fe.Field] = fe.Message
		}
	}
	return out
}
