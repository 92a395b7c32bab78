//nolint:revive // types is a standard Go package name pattern
package types

import (
	"fmt"
	"strings"
)

// ExportFormat is a document format the backend can render a letter into.
type ExportFormat string

const (
	FormatPDF      ExportFormat = "pdf"
	FormatDOCX     ExportFormat = "docx"
	FormatTXT      ExportFormat = "txt"
	FormatMarkdown ExportFormat = "markdown"
)

// DownloadFormats are the formats offered next to a generated letter, in button order.
var DownloadFormats = []ExportFormat{FormatPDF, FormatDOCX, FormatTXT}

// ParseExportFormat parses a user-supplied format name.
func ParseExportFormat(s string) (ExportFormat, error) {
	switch f := ExportFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatPDF, FormatDOCX, FormatTXT, FormatMarkdown:
		return f, nil
	case "md":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("unsupported export format %q (want pdf, docx, txt or markdown)", s)
	}
}

// Extension returns the file extension used for the format.
func (f ExportFormat) Extension() string {
	if f == FormatMarkdown {
		return "md"
	}
	return string(f)
}

// ContentType returns the media type the backend serves the format with.
func (f ExportFormat) ContentType() string {
	switch f {
	case FormatPDF:
		return "application/pdf"
	case FormatDOCX:
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case FormatTXT:
		return "text/plain"
	case FormatMarkdown:
		return "text/markdown"
	default:
		return "application/octet-stream"
	}
}

// ExportRequest is the body of POST /export.
type ExportRequest struct {
	CoverLetter   string       `json:"cover_letter"`
	ApplicantName string       `json:"applicant_name"`
	CompanyName   string       `json:"company_name"`
	Format        ExportFormat `json:"format"`
}

// NewExportRequest derives an export request from a generated letter and the request that produced it.
func NewExportRequest(result *GenerationResult, req *GenerationRequest, format ExportFormat) ExportRequest {
	out := ExportRequest{Format: format}
	if result != nil {
		out.CoverLetter = result.CoverLetter
	}
	if req != nil {
		out.ApplicantName = req.ApplicantName
		out.CompanyName = req.CompanyName
	}
	return out
}
