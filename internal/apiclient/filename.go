package apiclient

import (
	"mime"
	"path"
	"strings"

	"github.com/jonathan/cover-letter-generator/internal/types"
)

// DefaultFilename is the download name used when the server does not suggest one.
func DefaultFilename(format types.ExportFormat) string {
	return "cover_letter." + format.Extension()
}

// filenameFromDisposition extracts the suggested filename from a Content-Disposition header.
// The backend sends unquoted names that may contain spaces, which mime.ParseMediaType rejects,
// so a plain "filename=" split is used as a fallback.
func filenameFromDisposition(header string, format types.ExportFormat) string {
	header = strings.TrimSpace(header)
	if header == "" {
		return DefaultFilename(format)
	}

	var name string
	if _, params, err := mime.ParseMediaType(header); err == nil {
		name = params["filename"]
	}
	if name == "" {
		if _, after, found := strings.Cut(header, "filename="); found {
			name, _, _ = strings.Cut(after, ";")
			name = strings.ReplaceAll(name, `"`, "")
		}
	}

	name = sanitizeFilename(name)
	if name == "" {
		return DefaultFilename(format)
	}
	return name
}

// sanitizeFilename keeps only the final path element so a hostile header cannot escape the download directory.
func sanitizeFilename(name string) string {
	name = strings.TrimSpace(strings.ReplaceAll(name, `\`, "/"))
	if name == "" {
		return ""
	}
	name = path.Base(name)
	if name == "." || name == ".." || name == "/" {
		return ""
	}
	return name
}
