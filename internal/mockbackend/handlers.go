package mockbackend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"
	"unicode"

	"github.com/jonathan/cover-letter-generator/internal/keywords"
	"github.com/jonathan/cover-letter-generator/internal/types"
	"go.uber.org/zap"
)

const maxRequestBody = 1 << 20

// issue is one entry of a 422 detail list.
type issue struct {
	Type string `json:"type"`
	Loc  []any  `json:"loc"`
	Msg  string `json:"msg"`
}

func missing(loc ...any) issue {
	return issue{Type: "missing", Loc: loc, Msg: "Field required"}
}

func enumIssue(field string, allowed ...string) issue {
	quoted := make([]string, len(allowed))
	for i, a := range allowed {
		quoted[i] = "'" + a + "'"
	}
	msg := quoted[len(quoted)-1]
	if len(quoted) > 1 {
		msg = strings.Join(quoted[:len(quoted)-1], ", ") + " or " + msg
	}
	return issue{Type: "enum", Loc: []any{"body", field}, Msg: "Input should be " + msg}
}

// decodeBody reads a JSON body into out, reporting a 422 issue list on failure.
func decodeBody(r *http.Request, out any) []issue {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody))
	if err := dec.Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return []issue{missing("body")}
		}
		return []issue{{Type: "json_invalid", Loc: []any{"body"}, Msg: "JSON decode error"}}
	}
	return nil
}

type generateBody struct {
	ResumeText      *string `json:"resume_text"`
	JobDescription  *string `json:"job_description"`
	AdditionalNotes string  `json:"additional_notes"`
	AIProvider      *string `json:"ai_provider"`
	TemplateStyle   *string `json:"template_style"`
	Tone            *string `json:"tone"`
	WordCount       *int    `json:"word_count"`
	JobTitle        string  `json:"job_title"`
	CompanyName     string  `json:"company_name"`
	ApplicantName   string  `json:"applicant_name"`
	ApplicantEmail  string  `json:"applicant_email"`
	ApplicantPhone  string  `json:"applicant_phone"`
}

// request converts the body to a GenerationRequest, applying the backend's defaults.
func (g *generateBody) request() (types.GenerationRequest, []issue) {
	req := types.NewGenerationRequest()
	var issues []issue

	if g.ResumeText == nil {
		issues = append(issues, missing("body", "resume_text"))
	} else {
		req.ResumeText = *g.ResumeText
	}
	if g.JobDescription == nil {
		issues = append(issues, missing("body", "job_description"))
	} else {
		req.JobDescription = *g.JobDescription
	}

	if g.AIProvider != nil {
		switch p := types.AIProvider(*g.AIProvider); p {
		case types.ProviderClaude, types.ProviderOpenAI:
			req.AIProvider = p
		default:
			issues = append(issues, enumIssue("ai_provider", "claude", "openai"))
		}
	}
	if g.TemplateStyle != nil {
		switch s := types.TemplateStyle(*g.TemplateStyle); s {
		case types.StyleProfessional, types.StyleCreative, types.StyleTechnical, types.StyleExecutive:
			req.TemplateStyle = s
		default:
			issues = append(issues, enumIssue("template_style", "professional", "creative", "technical", "executive"))
		}
	}
	if g.Tone != nil {
		switch t := types.Tone(*g.Tone); t {
		case types.ToneFormal, types.ToneConversational, types.ToneEnthusiastic, types.ToneConfident:
			req.Tone = t
		default:
			issues = append(issues, enumIssue("tone", "formal", "conversational", "enthusiastic", "confident"))
		}
	}
	if g.WordCount != nil {
		switch n := *g.WordCount; {
		case n < types.MinWordCount:
			issues = append(issues, issue{Type: "greater_than_equal", Loc: []any{"body", "word_count"},
				Msg: fmt.Sprintf("Input should be greater than or equal to %d", types.MinWordCount)})
		case n > types.MaxWordCount:
			issues = append(issues, issue{Type: "less_than_equal", Loc: []any{"body", "word_count"},
				Msg: fmt.Sprintf("Input should be less than or equal to %d", types.MaxWordCount)})
		default:
			req.WordCount = n
		}
	}

	req.AdditionalNotes = g.AdditionalNotes
	req.JobTitle = g.JobTitle
	req.CompanyName = g.CompanyName
	req.ApplicantName = g.ApplicantName
	req.ApplicantEmail = g.ApplicantEmail
	req.ApplicantPhone = g.ApplicantPhone
	return req, issues
}

func providerNotConfigured(p types.AIProvider) string {
	if p == types.ProviderOpenAI {
		return "OpenAI API key not configured"
	}
	return "Claude API key not configured"
}

// handleGenerate writes a canned letter for the request.
func (b *Backend) handleGenerate(w http.ResponseWriter, r *http.Request) {
	start := b.clock()

	var body generateBody
	if issues := decodeBody(r, &body); issues != nil {
		b.validationResponse(w, issues)
		return
	}
	req, issues := body.request()
	if len(issues) > 0 {
		b.validationResponse(w, issues)
		return
	}
	if !b.providers[req.AIProvider] {
		b.detailResponse(w, http.StatusBadRequest, providerNotConfigured(req.AIProvider))
		return
	}

	if err := sleep(r.Context(), b.latency); err != nil {
		b.logger.Debug("client went away during generation", zap.Error(err))
		return
	}

	letter := ComposeLetter(req)
	elapsed := b.clock().Sub(start).Seconds()

	b.jsonResponse(w, http.StatusOK, types.GenerationResult{
		CoverLetter:     letter,
		WordCount:       len(strings.Fields(letter)),
		GenerationTime:  math.Round(elapsed*100) / 100,
		AIProviderUsed:  string(req.AIProvider),
		MatchedKeywords: keywords.Match(req.JobDescription, letter),
	})
}

type exportBody struct {
	CoverLetter   *string `json:"cover_letter"`
	Format        *string `json:"format"`
	ApplicantName *string `json:"applicant_name"`
	CompanyName   *string `json:"company_name"`
}

// handleExport returns the letter as a downloadable attachment.
func (b *Backend) handleExport(w http.ResponseWriter, r *http.Request) {
	var body exportBody
	if issues := decodeBody(r, &body); issues != nil {
		b.validationResponse(w, issues)
		return
	}

	var issues []issue
	for _, f := range []struct {
		name  string
		value *string
	}{
		{"cover_letter", body.CoverLetter},
		{"format", body.Format},
		{"applicant_name", body.ApplicantName},
		{"company_name", body.CompanyName},
	} {
		if f.value == nil {
			issues = append(issues, missing("body", f.name))
		}
	}
	var format types.ExportFormat
	if body.Format != nil {
		switch f := types.ExportFormat(*body.Format); f {
		case types.FormatPDF, types.FormatDOCX, types.FormatTXT, types.FormatMarkdown:
			format = f
		default:
			issues = append(issues, enumIssue("format", "pdf", "docx", "txt", "markdown"))
		}
	}
	if len(issues) > 0 {
		b.validationResponse(w, issues)
		return
	}

	data := RenderDocument(*body.CoverLetter, format)
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", "attachment; filename="+ExportFilename(*body.ApplicantName, *body.CompanyName, format))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		b.logger.Debug("failed to write export", zap.Error(err))
	}
}

type analyzeBody struct {
	JobDescription *string `json:"job_description"`
	CoverLetter    *string `json:"cover_letter"`
}

// handleAnalyzeKeywords scores the letter against the posting.
// The inputs may come as query parameters or as a JSON body.
func (b *Backend) handleAnalyzeKeywords(w http.ResponseWriter, r *http.Request) {
	var body analyzeBody
	q := r.URL.Query()
	if q.Has("job_description") || q.Has("cover_letter") {
		if q.Has("job_description") {
			v := q.Get("job_description")
			body.JobDescription = &v
		}
		if q.Has("cover_letter") {
			v := q.Get("cover_letter")
			body.CoverLetter = &v
		}
	} else if issues := decodeBody(r, &body); issues != nil {
		b.validationResponse(w, issues)
		return
	}

	var issues []issue
	if body.JobDescription == nil {
		issues = append(issues, missing("body", "job_description"))
	}
	if body.CoverLetter == nil {
		issues = append(issues, missing("body", "cover_letter"))
	}
	if len(issues) > 0 {
		b.validationResponse(w, issues)
		return
	}

	analysis := keywords.Analyze(*body.JobDescription, *body.CoverLetter)
	b.jsonResponse(w, http.StatusOK, types.KeywordAnalysis{
		MatchedKeywords: analysis.Matched,
		MatchScore:      analysis.Score,
		TotalMatches:    len(analysis.Matched),
	})
}

// ExportFilename builds CoverLetter_<name>_<company>.<ext>, keeping only letters, digits,
// spaces, hyphens and underscores from each part.
func ExportFilename(applicantName, companyName string, format types.ExportFormat) string {
	return fmt.Sprintf("CoverLetter_%s_%s.%s", safePart(applicantName), safePart(companyName), format.Extension())
}

func safePart(s string) string {
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || r == '-' || r == '_' {
			return r
		}
		return -1
	}, s))
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
