package ingestion

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jonathan/cover-letter-generator/internal/fetch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRenderer struct {
	html  string
	err   error
	calls int
}

func (s *stubRenderer) Render(context.Context, string) (string, error) {
	s.calls++
	return s.html, s.err
}

// localFetcher can reach httptest servers on loopback.
func localFetcher() *fetch.Fetcher {
	return fetch.New(fetch.AllowPrivateNetworks())
}

func postingServer(t *testing.T, html string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(html))
	}))
	t.Cleanup(server.Close)
	return server
}

func longPosting(body string) string {
	return `<html><head><meta property="og:title" content="Backend Engineer"><meta property="og:site_name" content="Acme"></head>
<body><nav>Nav</nav><main><h1>Backend Engineer</h1>
<p>` + body + `</p></main><footer>Footer</footer></body></html>`
}

func TestFromURL_DefaultFetcherRefusesLoopback(t *testing.T) {
	renderer := &stubRenderer{html: longPosting(strings.Repeat("secret ", 40))}
	server := postingServer(t, longPosting(strings.Repeat("secret ", 40)))

	_, err := NewLoader(nil, renderer, nil).FromURL(context.Background(), server.URL)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrHTTPRequestFailed)
	assert.ErrorIs(t, err, fetch.ErrBlockedAddress)
	assert.Zero(t, renderer.calls)
}

func TestFromURL_InvalidURL(t *testing.T) {
	loader := NewLoader(nil, nil, nil)
	for _, in := range []string{"", "not-a-url", "example.com", "http://"} {
		t.Run(in, func(t *testing.T) {
			_, err := loader.FromURL(context.Background(), in)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrHTTPRequestFailed)

			var fetchErr *fetch.Error
			assert.ErrorAs(t, err, &fetchErr)
		})
	}
}

func TestFromURL_Success(t *testing.T) {
	server := postingServer(t, longPosting(strings.Repeat("Go and PostgreSQL. ", 40)))
	renderer := &stubRenderer{}

	doc, err := NewLoader(localFetcher(), renderer, nil).FromURL(context.Background(), server.URL)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(doc.Text, "Backend Engineer\nGo and PostgreSQL."))
	assert.NotContains(t, doc.Text, "Nav")
	assert.NotContains(t, doc.Text, "Footer")
	assert.Equal(t, server.URL, doc.Source)
	assert.Equal(t, string(fetch.PlatformUnknown), doc.Platform)
	assert.Equal(t, "Backend Engineer", doc.Title)
	assert.Equal(t, "Acme", doc.Company)
	assert.Zero(t, renderer.calls, "long text needs no browser")
}

func TestFromURL_BrowserFallback(t *testing.T) {
	server := postingServer(t, `<html><body><div id="root">Loading...</div></body></html>`)
	renderer := &stubRenderer{html: longPosting("Rendered requirements: Kubernetes.")}

	doc, err := NewLoader(localFetcher(), renderer, nil).FromURL(context.Background(), server.URL)
	require.NoError(t, err)

	assert.Equal(t, 1, renderer.calls)
	assert.Contains(t, doc.Text, "Rendered requirements: Kubernetes.")
	assert.Equal(t, "Acme", doc.Company)
}

func TestFromURL_BrowserFailureKeepsFetchedText(t *testing.T) {
	server := postingServer(t, `<html><body><main>Short posting</main></body></html>`)
	renderer := &stubRenderer{err: errors.New("chrome not installed")}

	doc, err := NewLoader(localFetcher(), renderer, nil).FromURL(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, "Short posting", doc.Text)
}

func TestFromURL_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	_, err := NewLoader(localFetcher(), nil, nil).FromURL(context.Background(), server.URL)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrHTTPRequestFailed)
	assert.Contains(t, err.Error(), "404")
}

func TestFromURL_EmptyPage(t *testing.T) {
	server := postingServer(t, `<html><body><nav>Only navigation</nav></body></html>`)

	_, err := NewLoader(localFetcher(), nil, nil).FromURL(context.Background(), server.URL)
	assert.ErrorIs(t, err, ErrContentExtractionFailed)
	assert.ErrorIs(t, err, ErrEmptyDocument)
}
