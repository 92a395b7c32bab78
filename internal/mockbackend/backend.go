// Package mockbackend is a local stand-in for the cover letter generation API.
//
// It serves the same four routes under /api with the same JSON shapes and error bodies
// as the real backend, but writes canned letters instead of calling an AI provider and
// returns placeholder bytes for PDF and DOCX exports.
package mockbackend

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/jonathan/cover-letter-generator/internal/server/graceful"
	"github.com/jonathan/cover-letter-generator/internal/server/middleware"
	"github.com/jonathan/cover-letter-generator/internal/types"
	"go.uber.org/zap"
)

// Version is reported by the health route.
const Version = "1.0.0"

// DefaultOrigins are the browser origins allowed by CORS.
var DefaultOrigins = []string{"http://localhost:5173", "http://localhost:3000"}

// Backend serves the mock API.
type Backend struct {
	latency   time.Duration
	providers map[types.AIProvider]bool
	origins   []string
	logger    *zap.Logger
	clock     func() time.Time
}

// Option configures a Backend.
type Option func(*Backend)

// WithLatency delays every generation by d, as a slow AI provider would.
func WithLatency(d time.Duration) Option {
	return func(b *Backend) {
		b.latency = d
	}
}

// WithProviders sets which AI providers report as configured.
// Generation with a provider that is not configured fails with 400.
func WithProviders(providers map[types.AIProvider]bool) Option {
	return func(b *Backend) {
		b.providers = make(map[types.AIProvider]bool, len(providers))
		for p, ok := range providers {
			b.providers[p] = ok
		}
	}
}

// WithOrigins replaces DefaultOrigins.
func WithOrigins(origins []string) Option {
	return func(b *Backend) {
		b.origins = origins
	}
}

// WithLogger sets the request logger.
func WithLogger(l *zap.Logger) Option {
	return func(b *Backend) {
		if l != nil {
			b.logger = l
		}
	}
}

// New creates a Backend with both providers configured and no latency.
func New(opts ...Option) *Backend {
	b := &Backend{
		providers: map[types.AIProvider]bool{
			types.ProviderClaude: true,
			types.ProviderOpenAI: true,
		},
		origins: DefaultOrigins,
		logger:  zap.NewNop(),
		clock:   time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Handler returns the API routes wrapped in CORS, request ID and logging middleware.
func (b *Backend) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /", b.handleRoot)
	mux.HandleFunc("GET /api/health", b.handleHealth)
	mux.HandleFunc("POST /api/generate", b.handleGenerate)
	mux.HandleFunc("POST /api/export", b.handleExport)
	mux.HandleFunc("POST /api/analyze-keywords", b.handleAnalyzeKeywords)

	return middleware.Chain(mux,
		middleware.RequestID,
		middleware.Logging(b.logger),
		middleware.CORS(b.origins),
	)
}

// Run serves the API on addr until ctx is canceled.
func (b *Backend) Run(ctx context.Context, addr string) error {
	return b.Serve(ctx, &http.Server{Addr: addr}, nil)
}

// Serve serves the API on ln (or srv.Addr when ln is nil) until ctx is canceled.
func (b *Backend) Serve(ctx context.Context, srv *http.Server, ln net.Listener) error {
	srv.Handler = b.Handler()
	if srv.ReadHeaderTimeout == 0 {
		srv.ReadHeaderTimeout = 10 * time.Second
	}
	return graceful.Serve(ctx, srv, ln, b.logger)
}

func (b *Backend) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		b.detailResponse(w, http.StatusNotFound, "Not Found")
		return
	}
	b.jsonResponse(w, http.StatusOK, map[string]string{
		"message": "AI Cover Letter Generator API (mock)",
		"version": Version,
		"health":  "/api/health",
	})
}

func (b *Backend) handleHealth(w http.ResponseWriter, _ *http.Request) {
	b.jsonResponse(w, http.StatusOK, types.HealthStatus{
		Status:  "healthy",
		Version: Version,
		AIProviders: map[string]bool{
			string(types.ProviderClaude): b.providers[types.ProviderClaude],
			string(types.ProviderOpenAI): b.providers[types.ProviderOpenAI],
		},
	})
}

// jsonResponse writes a JSON response
func (b *Backend) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		b.logger.Warn("failed to encode JSON response", zap.Error(err))
	}
}

// detailResponse writes an error body in the backend's {"detail": "..."} shape.
func (b *Backend) detailResponse(w http.ResponseWriter, status int, detail string) {
	b.jsonResponse(w, status, map[string]string{"detail": detail})
}

// validationResponse writes a 422 with a list of field issues.
func (b *Backend) validationResponse(w http.ResponseWriter, issues []issue) {
	b.jsonResponse(w, http.StatusUnprocessableEntity, map[string][]issue{"detail": issues})
}
