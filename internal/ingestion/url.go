package ingestion

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonathan/cover-letter-generator/internal/fetch"
	"go.uber.org/zap"
)

var (
	// ErrHTTPRequestFailed is returned when the posting page cannot be fetched.
	ErrHTTPRequestFailed = errors.New("HTTP request failed")
	// ErrContentExtractionFailed is returned when no posting text can be extracted.
	ErrContentExtractionFailed = errors.New("content extraction failed")
)

// Loader loads job postings from job board URLs.
type Loader struct {
	fetcher  *fetch.Fetcher
	renderer fetch.Renderer
	logger   *zap.Logger
}

// NewLoader creates a Loader. A nil renderer disables the headless browser fallback.
func NewLoader(fetcher *fetch.Fetcher, renderer fetch.Renderer, logger *zap.Logger) *Loader {
	if fetcher == nil {
		fetcher = fetch.New(fetch.WithLogger(logger))
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{fetcher: fetcher, renderer: renderer, logger: logger}
}

// FromURL fetches a job posting, extracts its text with the selectors of its job board
// and cleans it. When the text is too short and a renderer is configured, the page is
// rendered in a browser and extracted again; a failed render keeps the fetched text.
func (l *Loader) FromURL(ctx context.Context, rawURL string) (*Document, error) {
	platform := fetch.DetectPlatform(rawURL)
	logger := l.logger.With(zap.String("url", rawURL), zap.String("platform", string(platform)))

	page, err := l.fetcher.Get(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrHTTPRequestFailed, err)
	}

	sel := fetch.SelectorsFor(platform)
	html := page.HTML
	text, err := fetch.ExtractText(html, sel)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrContentExtractionFailed, err)
	}
	logger.Debug("extracted posting text", zap.Int("chars", len(text)))

	if l.renderer != nil && fetch.NeedsBrowser(text) {
		logger.Debug("posting text too short, rendering in browser", zap.Int("min_chars", fetch.MinContentLength))
		rendered, renderErr := l.renderer.Render(ctx, rawURL)
		if renderErr != nil {
			logger.Warn("browser rendering failed, keeping fetched text", zap.Error(renderErr))
		} else if renderedText, extractErr := fetch.ExtractText(rendered, sel); extractErr == nil {
			html, text = rendered, renderedText
		}
	}

	cleaned := CleanText(text)
	if cleaned == "" {
		return nil, fmt.Errorf("%w: %s: %w", ErrContentExtractionFailed, rawURL, ErrEmptyDocument)
	}

	doc := newDocument(cleaned, rawURL)
	doc.Platform = string(platform)
	if md, err := fetch.ExtractMetadata(html); err == nil {
		doc.Title = md.Title
		doc.Company = md.Company
	}
	return doc, nil
}
