// Package ingestion loads résumé and job posting text from files, stdin or job board URLs
// and normalizes it before it is sent for generation.
package ingestion

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"regexp"
	"strings"
	"time"
)

// maxTextBytes caps how much text is read from a file or stream.
const maxTextBytes = 1 << 20

var (
	// ErrEmptyDocument is returned when a source contains no text after cleaning.
	ErrEmptyDocument = errors.New("document is empty")

	runsOfSpace     = regexp.MustCompile(`[ \t\f\v]+`)
	runsOfBlankLine = regexp.MustCompile(`\n{3,}`)
)

// Document is normalized text together with where it came from.
type Document struct {
	Text     string
	Source   string
	Platform string
	Title    string
	Company  string
	Hash     string
	LoadedAt time.Time
}

func newDocument(text, source string) *Document {
	sum := sha256.Sum256([]byte(text))
	return &Document{
		Text:     text,
		Source:   source,
		Hash:     hex.EncodeToString(sum[:]),
		LoadedAt: time.Now().UTC(),
	}
}

// CleanText normalizes line endings and spacing while keeping headings, bullets and indentation.
// At most one blank line is kept between paragraphs.
func CleanText(content string) string {
	if content == "" {
		return ""
	}
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = cleanLine(line)
	}

	out := strings.Join(lines, "\n")
	out = runsOfBlankLine.ReplaceAllString(out, "\n\n")
	return strings.TrimSpace(out)
}

func cleanLine(line string) string {
	body := strings.TrimLeft(line, " \t")
	if strings.TrimSpace(body) == "" {
		return ""
	}
	body = runsOfSpace.ReplaceAllString(strings.TrimRight(body, " \t"), " ")
	if strings.HasPrefix(body, "#") {
		return body
	}
	return strings.Repeat(" ", len(line)-len(strings.TrimLeft(line, " \t"))) + body
}

// FromReader reads and cleans text from r. source names it in errors and on the Document.
func FromReader(r io.Reader, source string) (*Document, error) {
	raw, err := io.ReadAll(io.LimitReader(r, maxTextBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", source, err)
	}
	text := CleanText(string(raw))
	if text == "" {
		return nil, fmt.Errorf("%s: %w", source, ErrEmptyDocument)
	}
	return newDocument(text, source), nil
}

// FromFile reads and cleans a text file. The path "-" reads standard input.
func FromFile(path string) (*Document, error) {
	if path == "-" {
		return FromReader(os.Stdin, "stdin")
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("file not found: %w", err)
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return FromReader(f, path)
}
