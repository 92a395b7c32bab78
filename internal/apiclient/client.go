// Package apiclient wraps the HTTP API of the cover letter generation backend.
// Every call is single-shot: there is no retry, no backoff and no client-side timeout.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/cover-letter-generator/internal/observability"
	"github.com/jonathan/cover-letter-generator/internal/schemas"
	"github.com/jonathan/cover-letter-generator/internal/types"
	"go.uber.org/zap"
)

// Operation names used in errors, logs and metrics.
const (
	OpHealth          = "health"
	OpGenerate        = "generate"
	OpExport          = "export"
	OpAnalyzeKeywords = "analyze-keywords"
)

const (
	maxJSONBody     = 1 << 20
	maxErrorBody    = 64 << 10
	maxDocumentBody = 32 << 20
)

// RequestIDHeader carries a per-call ID so client and backend logs can be correlated.
const RequestIDHeader = "X-Request-ID"

// Download is an exported document returned by the backend.
type Download struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Client calls the generation API rooted at a base URL such as http://localhost:8000/api.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	logger      *zap.Logger
	metrics     *observability.Metrics
	maxDocument int64
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithLogger sets the logger used for call tracing.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics records every call in m.
func WithMetrics(m *observability.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// New creates a Client for baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	u, err := url.Parse(baseURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, fmt.Errorf("apiclient: invalid base URL %q", baseURL)
	}

	c := &Client{
		baseURL:     baseURL,
		httpClient:  &http.Client{},
		logger:      zap.NewNop(),
		maxDocument: maxDocumentBody,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// CheckHealth probes GET /health.
func (c *Client) CheckHealth(ctx context.Context) (*types.HealthStatus, error) {
	var status types.HealthStatus
	if err := c.doJSON(ctx, OpHealth, http.MethodGet, "/health", nil, schemas.Health, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// Generate submits a generation request and returns the generated letter.
func (c *Client) Generate(ctx context.Context, req types.GenerationRequest) (*types.GenerationResult, error) {
	var result types.GenerationResult
	if err := c.doJSON(ctx, OpGenerate, http.MethodPost, "/generate", req, schemas.GenerationResult, &result); err != nil {
		return nil, err
	}
	if result.MatchedKeywords == nil {
		result.MatchedKeywords = []string{}
	}
	return &result, nil
}

// AnalyzeKeywords asks the backend which job posting keywords a letter covers.
func (c *Client) AnalyzeKeywords(ctx context.Context, jobDescription, coverLetter string) (*types.KeywordAnalysis, error) {
	body := types.KeywordAnalysisRequest{JobDescription: jobDescription, CoverLetter: coverLetter}

	var analysis types.KeywordAnalysis
	if err := c.doJSON(ctx, OpAnalyzeKeywords, http.MethodPost, "/analyze-keywords", body, schemas.KeywordAnalysis, &analysis); err != nil {
		return nil, err
	}
	if analysis.MatchedKeywords == nil {
		analysis.MatchedKeywords = []string{}
	}
	return &analysis, nil
}

// Export renders a letter into a document. The body is returned as an opaque blob;
// the filename comes from the Content-Disposition header, defaulting to cover_letter.<ext>.
// A document larger than 32 MiB is rejected with a *DecodeError.
func (c *Client) Export(ctx context.Context, req types.ExportRequest) (*Download, error) {
	res, err := c.do(ctx, OpExport, http.MethodPost, "/export", req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(res.Body, c.maxDocument+1))
	if err != nil {
		return nil, &RemoteError{Operation: OpExport, Cause: fmt.Errorf("read response body: %w", err)}
	}
	if int64(len(data)) > c.maxDocument {
		return nil, &DecodeError{Operation: OpExport, Cause: fmt.Errorf("document exceeds %d bytes", c.maxDocument)}
	}

	contentType := res.Header.Get("Content-Type")
	if contentType == "" {
		contentType = req.Format.ContentType()
	}

	return &Download{
		Filename:    filenameFromDisposition(res.Header.Get("Content-Disposition"), req.Format),
		ContentType: contentType,
		Data:        data,
	}, nil
}

// doJSON performs a call whose 2xx body is JSON validated against schema and decoded into out.
func (c *Client) doJSON(ctx context.Context, op, method, path string, body any, schema schemas.Name, out any) error {
	res, err := c.do(ctx, op, method, path, body)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(res.Body, maxJSONBody))
	if err != nil {
		return &RemoteError{Operation: op, Cause: fmt.Errorf("read response body: %w", err)}
	}

	if err := schemas.ValidateDocument(schema, raw); err != nil {
		return &DecodeError{Operation: op, Cause: err}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &DecodeError{Operation: op, Cause: err}
	}
	return nil
}

// do sends a request and returns the response when the status is 2xx.
// The caller owns the response body.
func (c *Client) do(ctx context.Context, op, method, path string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("%s: marshal request: %w", op, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("%s: create request: %w", op, err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(RequestIDHeader, requestID)

	logger := c.logger.With(zap.String("operation", op), zap.String("request_id", requestID))
	logger.Debug("calling generation API", zap.String("method", method), zap.String("url", req.URL.String()))

	start := time.Now()
	res, err := c.httpClient.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		c.metrics.ObserveAPICall(op, observability.OutcomeFailed, elapsed)
		logger.Debug("generation API unreachable", zap.Duration("elapsed", elapsed), zap.Error(err))
		return nil, &RemoteError{Operation: op, Cause: err}
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		defer func() { _ = res.Body.Close() }()
		buf, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))
		c.metrics.ObserveAPICall(op, observability.OutcomeFailed, elapsed)

		remoteErr := &RemoteError{
			Operation: op,
			Status:    res.StatusCode,
			Detail:    parseDetail(buf),
		}
		logger.Debug("generation API returned an error",
			zap.Int("status", res.StatusCode),
			zap.String("detail", remoteErr.Detail),
			zap.Duration("elapsed", elapsed))
		return nil, remoteErr
	}

	c.metrics.ObserveAPICall(op, observability.OutcomeSuccess, elapsed)
	logger.Debug("generation API responded", zap.Int("status", res.StatusCode), zap.Duration("elapsed", elapsed))
	return res, nil
}
