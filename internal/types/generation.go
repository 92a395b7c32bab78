// Package types provides the data contracts exchanged with the cover letter generation API.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// AIProvider selects the model vendor the backend generates with.
type AIProvider string

const (
	// ProviderClaude is Anthropic's Claude
	ProviderClaude AIProvider = "claude"
	// ProviderOpenAI is OpenAI's ChatGPT
	ProviderOpenAI AIProvider = "openai"
)

// TemplateStyle is the overall layout and register of the letter.
type TemplateStyle string

const (
	StyleProfessional TemplateStyle = "professional"
	StyleCreative     TemplateStyle = "creative"
	StyleTechnical    TemplateStyle = "technical"
	StyleExecutive    TemplateStyle = "executive"
)

// Tone is the voice the letter is written in.
type Tone string

const (
	ToneFormal         Tone = "formal"
	ToneConversational Tone = "conversational"
	ToneEnthusiastic   Tone = "enthusiastic"
	ToneConfident      Tone = "confident"
)

// Word count bounds accepted by the backend.
const (
	MinWordCount     = 100
	MaxWordCount     = 800
	DefaultWordCount = 300
)

// GenerationRequest is the body of POST /generate.
type GenerationRequest struct {
	ResumeText      string        `json:"resume_text" validate:"nonblank"`
	JobDescription  string        `json:"job_description" validate:"nonblank"`
	AdditionalNotes string        `json:"additional_notes,omitempty"`
	AIProvider      AIProvider    `json:"ai_provider" validate:"oneof=claude openai"`
	TemplateStyle   TemplateStyle `json:"template_style" validate:"oneof=professional creative technical executive"`
	Tone            Tone          `json:"tone" validate:"oneof=formal conversational enthusiastic confident"`
	WordCount       int           `json:"word_count" validate:"min=100,max=800"`

	// Optional details the backend otherwise extracts from the resume and posting.
	JobTitle       string `json:"job_title,omitempty"`
	CompanyName    string `json:"company_name,omitempty"`
	ApplicantName  string `json:"applicant_name,omitempty"`
	ApplicantEmail string `json:"applicant_email,omitempty" validate:"omitempty,email"`
	ApplicantPhone string `json:"applicant_phone,omitempty"`
}

// NewGenerationRequest returns a request holding the values of a fresh form.
func NewGenerationRequest() GenerationRequest {
	return GenerationRequest{
		AIProvider:    ProviderClaude,
		TemplateStyle: StyleProfessional,
		Tone:          ToneFormal,
		WordCount:     DefaultWordCount,
	}
}

// WithDefaults returns a copy with unset enum and word count fields filled from NewGenerationRequest.
func (r GenerationRequest) WithDefaults() GenerationRequest {
	defaults := NewGenerationRequest()
	if r.AIProvider == "" {
		r.AIProvider = defaults.AIProvider
	}
	if r.TemplateStyle == "" {
		r.TemplateStyle = defaults.TemplateStyle
	}
	if r.Tone == "" {
		r.Tone = defaults.Tone
	}
	if r.WordCount == 0 {
		r.WordCount = defaults.WordCount
	}
	return r
}

// Validate checks the request before it is submitted.
// It returns a *ValidationError listing every failing field.
func (r *GenerationRequest) Validate() error {
	err := validate.Struct(r)
	if err == nil {
		return nil
	}
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	ve := &ValidationError{Errors: make([]FieldError, 0, len(validationErrors))}
	for _, fe := range validationErrors {
		ve.Errors = append(ve.Errors, FieldError{
			Field:   fe.Field(),
			Message: fieldMessage(fe),
		})
	}
	return ve
}

// GenerationResult is the body returned by POST /generate.
type GenerationResult struct {
	CoverLetter     string   `json:"cover_letter"`
	WordCount       int      `json:"word_count"`
	GenerationTime  float64  `json:"generation_time"`
	AIProviderUsed  string   `json:"ai_provider_used"`
	MatchedKeywords []string `json:"matched_keywords"`
}

// HealthStatus is the body returned by GET /health.
type HealthStatus struct {
	Status      string          `json:"status"`
	Version     string          `json:"version"`
	AIProviders map[string]bool `json:"ai_providers"`
}

// Healthy reports whether the backend declared itself healthy.
func (h *HealthStatus) Healthy() bool {
	return h != nil && h.Status == "healthy"
}

// KeywordAnalysisRequest is the body of POST /analyze-keywords.
type KeywordAnalysisRequest struct {
	JobDescription string `json:"job_description"`
	CoverLetter    string `json:"cover_letter"`
}

// KeywordAnalysis is the body returned by POST /analyze-keywords.
type KeywordAnalysis struct {
	MatchedKeywords []string `json:"matched_keywords"`
	MatchScore      float64  `json:"match_score"`
	TotalMatches    int      `json:"total_matches"`
}

// FieldError is a validation failure attached to a single form field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError collects the field errors of a rejected request.
type ValidationError struct {
	Errors []FieldError
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("validation failed:")
	for _, fe := range ve.Errors {
		sb.WriteString(fmt.Sprintf(" %s: %s;", fe.Field, fe.Message))
	}
	return strings.TrimSuffix(sb.String(), ";")
}

// Message returns the error for field, or "" when the field is valid.
func (ve *ValidationError) Message(field string) string {
	if ve == nil {
		return ""
	}
	for _, fe := range ve.Errors {
		if fe.Field == field {
			return fe.Message
		}
	}
	return ""
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields by their JSON names so errors line up with form inputs.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("nonblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return v
}

var requiredMessages = map[string]string{
	"resume_text":     "Resume is required",
	"job_description": "Job description is required",
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "nonblank":
		if msg, ok := requiredMessages[fe.Field()]; ok {
			return msg
		}
		return fmt.Sprintf("%s is required", fe.Field())
	case "min", "max":
		return fmt.Sprintf("Word count must be between %d and %d", MinWordCount, MaxWordCount)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), strings.ReplaceAll(fe.Param(), " ", ", "))
	case "email":
		return "Email address is invalid"
	default:
		return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
	}
}
