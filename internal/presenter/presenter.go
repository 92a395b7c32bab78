// Package presenter displays a generated cover letter and acts on it:
// copying it to the clipboard and exporting it as a document download.
package presenter

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jonathan/cover-letter-generator/internal/apiclient"
	"github.com/jonathan/cover-letter-generator/internal/notify"
	"github.com/jonathan/cover-letter-generator/internal/observability"
	"github.com/jonathan/cover-letter-generator/internal/types"
	"go.uber.org/zap"
)

// Notification texts.
const (
	CopiedMessage       = "Copied to clipboard!"
	CopyFailedMessage   = "Failed to copy. Please try again."
	ExportFailedMessage = "Failed to export. Please try again."
)

// DefaultCopiedFor is how long the copied indicator stays on.
const DefaultCopiedFor = 2 * time.Second

var (
	// ErrExportInFlight is returned when an export is requested while another one is running.
	ErrExportInFlight = errors.New("an export is already in progress")
	// ErrNoResult is returned when there is no letter to act on, e.g. after Reset.
	ErrNoResult = errors.New("no cover letter has been generated")
)

// Exporter is the part of the API client the presenter depends on.
type Exporter interface {
	Export(ctx context.Context, req types.ExportRequest) (*apiclient.Download, error)
}

// Clipboard receives copied text.
type Clipboard interface {
	Copy(text string) error
}

// Downloader delivers an exported document to the user and returns where it went.
type Downloader interface {
	Download(ctx context.Context, dl *apiclient.Download) (string, error)
}

// Stat is one summary tile shown above the letter.
type Stat struct {
	Text  string
	Label string
}

// Presenter holds a generated letter and the request that produced it.
// It is safe for concurrent use; at most one export runs at a time across all formats.
type Presenter struct {
	exporter   Exporter
	clipboard  Clipboard
	downloader Downloader
	notifier   notify.Notifier
	logger     *zap.Logger
	metrics    *observability.Metrics
	copiedFor  time.Duration

	mu          sync.Mutex
	result      *types.GenerationResult
	request     types.GenerationRequest
	exporting   bool
	copied      bool
	copiedTimer *time.Timer
}

// Option configures a Presenter.
type Option func(*Presenter)

// WithClipboard sets the clipboard Copy writes to.
func WithClipboard(c Clipboard) Option {
	return func(p *Presenter) { p.clipboard = c }
}

// WithDownloader sets the default destination of Export.
func WithDownloader(d Downloader) Option {
	return func(p *Presenter) { p.downloader = d }
}

// WithNotifier sets where copy and export notifications go.
func WithNotifier(n notify.Notifier) Option {
	return func(p *Presenter) { p.notifier = notify.OrNop(n) }
}

// WithLogger sets the logger raw failures are written to.
func WithLogger(l *zap.Logger) Option {
	return func(p *Presenter) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithMetrics records export outcomes in m.
func WithMetrics(m *observability.Metrics) Option {
	return func(p *Presenter) { p.metrics = m }
}

// WithCopiedFor overrides how long the copied indicator stays on.
func WithCopiedFor(d time.Duration) Option {
	return func(p *Presenter) {
		if d > 0 {
			p.copiedFor = d
		}
	}
}

// New creates a Presenter for result, generated from req.
func New(exporter Exporter, result *types.GenerationResult, req types.GenerationRequest, opts ...Option) *Presenter {
	p := &Presenter{
		exporter:  exporter,
		notifier:  notify.Nop{},
		logger:    zap.NewNop(),
		copiedFor: DefaultCopiedFor,
		result:    result,
		request:   req,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Result returns the letter being presented, or nil after Reset.
func (p *Presenter) Result() *types.GenerationResult {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.result
}

// Stats returns the summary tiles: word count, generation time, provider and keyword count.
func (p *Presenter) Stats() []Stat {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.result == nil {
		return nil
	}
	return StatsFor(p.result)
}

// Keywords returns the matched keywords in the order the backend sent them.
func (p *Presenter) Keywords() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.result == nil {
		return nil
	}
	return append([]string(nil), p.result.MatchedKeywords...)
}

// StatsFor builds the summary tiles of a result.
func StatsFor(result *types.GenerationResult) []Stat {
	return []Stat{
		{Text: fmt.Sprintf("%d Words", result.WordCount), Label: "Word count"},
		{Text: strconv.FormatFloat(result.GenerationTime, 'f', -1, 64) + "s", Label: "Generation time"},
		{Text: result.AIProviderUsed, Label: "AI provider"},
		{Text: fmt.Sprintf("%d Keywords Matched", len(result.MatchedKeywords)), Label: "Matched keywords"},
	}
}

// Copied reports whether the copied indicator is on.
func (p *Presenter) Copied() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.copied
}

// Copy writes the letter to the clipboard and turns the copied indicator on for a fixed window.
func (p *Presenter) Copy() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.result == nil {
		return ErrNoResult
	}
	if p.clipboard == nil {
		return errors.New("no clipboard available")
	}

	if err := p.clipboard.Copy(p.result.CoverLetter); err != nil {
		p.logger.Error("copy to clipboard failed", zap.Error(err))
		notify.Error(p.notifier, "", CopyFailedMessage)
		return fmt.Errorf("copy to clipboard: %w", err)
	}

	p.copied = true
	if p.copiedTimer != nil {
		p.copiedTimer.Stop()
	}
	p.copiedTimer = time.AfterFunc(p.copiedFor, func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		p.copied = false
	})
	notify.Success(p.notifier, "", CopiedMessage)
	return nil
}

// Exporting reports whether an export is in flight.
func (p *Presenter) Exporting() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.exporting
}

// Export renders the letter as format and hands it to the configured Downloader.
func (p *Presenter) Export(ctx context.Context, format types.ExportFormat) (string, error) {
	return p.ExportTo(ctx, format, p.downloader)
}

// ExportTo renders the letter as format and hands it to d. It returns where the download went.
// A failed export triggers no download.
func (p *Presenter) ExportTo(ctx context.Context, format types.ExportFormat, d Downloader) (string, error) {
	if d == nil {
		return "", errors.New("no downloader configured")
	}

	p.mu.Lock()
	if p.result == nil {
		p.mu.Unlock()
		return "", ErrNoResult
	}
	if p.exporting {
		p.mu.Unlock()
		p.metrics.ObserveExport(string(format), observability.OutcomeRejected)
		return "", ErrExportInFlight
	}
	p.exporting = true
	req := types.NewExportRequest(p.result, &p.request, format)
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		p.exporting = false
		p.mu.Unlock()
	}()

	dl, err := p.exporter.Export(ctx, req)
	if err == nil {
		var location string
		location, err = d.Download(ctx, dl)
		if err == nil {
			p.metrics.ObserveExport(string(format), observability.OutcomeSuccess)
			notify.Success(p.notifier, "", DownloadedMessage(format))
			return location, nil
		}
	}

	p.logger.Error("export failed", zap.String("format", string(format)), zap.Error(err))
	p.metrics.ObserveExport(string(format), observability.OutcomeFailed)
	notify.Error(p.notifier, "", ExportFailedMessage)
	return "", err
}

// Reset discards the letter and stops the copied indicator.
func (p *Presenter) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.copiedTimer != nil {
		p.copiedTimer.Stop()
		p.copiedTimer = nil
	}
	p.copied = false
	p.result = nil
	p.request = types.GenerationRequest{}
}

// DownloadedMessage is the notification shown after a successful export.
func DownloadedMessage(format types.ExportFormat) string {
	return fmt.Sprintf("Downloaded as %s!", strings.ToUpper(string(format)))
}
