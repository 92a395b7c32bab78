//nolint:revive // types is a standard Go package name pattern
package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRequest() GenerationRequest {
	req := NewGenerationRequest()
	req.ResumeText = "Jane Doe\nBackend engineer"
	req.JobDescription = "Backend Engineer at Acme"
	return req
}

func TestNewGenerationRequest_Defaults(t *testing.T) {
	req := NewGenerationRequest()

	assert.Equal(t, ProviderClaude, req.AIProvider)
	assert.Equal(t, StyleProfessional, req.TemplateStyle)
	assert.Equal(t, ToneFormal, req.Tone)
	assert.Equal(t, DefaultWordCount, req.WordCount)
	assert.Empty(t, req.ResumeText)
	assert.Empty(t, req.JobDescription)
	assert.Empty(t, req.AdditionalNotes)
}

func TestGenerationRequest_WithDefaults(t *testing.T) {
	req := GenerationRequest{ResumeText: "r", JobDescription: "j", Tone: ToneConfident}

	got := req.WithDefaults()

	assert.Equal(t, ProviderClaude, got.AIProvider)
	assert.Equal(t, StyleProfessional, got.TemplateStyle)
	assert.Equal(t, ToneConfident, got.Tone, "explicit values are kept")
	assert.Equal(t, DefaultWordCount, got.WordCount)
	assert.Empty(t, req.AIProvider, "receiver is not modified")
}

func TestGenerationRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*GenerationRequest)
		wantErr map[string]string
	}{
		{
			name:   "valid request",
			mutate: func(*GenerationRequest) {},
		},
		{
			name:    "empty resume",
			mutate:  func(r *GenerationRequest) { r.ResumeText = "" },
			wantErr: map[string]string{"resume_text": "Resume is required"},
		},
		{
			name:    "whitespace job description",
			mutate:  func(r *GenerationRequest) { r.JobDescription = "  \n\t" },
			wantErr: map[string]string{"job_description": "Job description is required"},
		},
		{
			name: "both required fields empty",
			mutate: func(r *GenerationRequest) {
				r.ResumeText = ""
				r.JobDescription = ""
			},
			wantErr: map[string]string{
				"resume_text":     "Resume is required",
				"job_description": "Job description is required",
			},
		},
		{
			name:    "word count below range",
			mutate:  func(r *GenerationRequest) { r.WordCount = 99 },
			wantErr: map[string]string{"word_count": "Word count must be between 100 and 800"},
		},
		{
			name:    "word count above range",
			mutate:  func(r *GenerationRequest) { r.WordCount = 801 },
			wantErr: map[string]string{"word_count": "Word count must be between 100 and 800"},
		},
		{
			name:   "word count at bounds",
			mutate: func(r *GenerationRequest) { r.WordCount = MaxWordCount },
		},
		{
			name:    "unknown provider",
			mutate:  func(r *GenerationRequest) { r.AIProvider = "gemini" },
			wantErr: map[string]string{"ai_provider": "ai_provider must be one of: claude, openai"},
		},
		{
			name:    "invalid applicant email",
			mutate:  func(r *GenerationRequest) { r.ApplicantEmail = "not-an-email" },
			wantErr: map[string]string{"applicant_email": "Email address is invalid"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(&req)

			err := req.Validate()
			if len(tt.wantErr) == 0 {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Len(t, ve.Errors, len(tt.wantErr))
			for field, msg := range tt.wantErr {
				assert.Equal(t, msg, ve.Message(field), "field %s", field)
			}
		})
	}
}

func TestValidationError_Message_Nil(t *testing.T) {
	var ve *ValidationError
	assert.Empty(t, ve.Message("resume_text"))
}

func TestGenerationRequest_JSONOmitsEmptyOptionalFields(t *testing.T) {
	req := validRequest()

	data, err := json.Marshal(req)
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(data, &fields))
	assert.Contains(t, fields, "resume_text")
	assert.Contains(t, fields, "word_count")
	assert.NotContains(t, fields, "additional_notes")
	assert.NotContains(t, fields, "company_name")
	assert.NotContains(t, fields, "applicant_name")
}

func TestHealthStatus_Healthy(t *testing.T) {
	var nilStatus *HealthStatus
	assert.False(t, nilStatus.Healthy())
	assert.False(t, (&HealthStatus{Status: "degraded"}).Healthy())
	assert.True(t, (&HealthStatus{Status: "healthy"}).Healthy())
}
