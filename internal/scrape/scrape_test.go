package scrape

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testScraper() *Scraper {
	return New(slog.New(slog.NewTextHandler(os.Stderr, nil)))
}

const samplePage = `<!DOCTYPE html>
<html>
<head><title>Acme Market Report</title><script>trackVisit()</script></head>
<body>
<nav>Home | Products | Login</nav>
<main>
<h1>Market Outlook</h1>
<p>The widget market is expected to reach $4.5B by 2027, growing at 12% annually.</p>
<p>Enterprise adoption is the primary growth driver in North America.</p>
</main>
<div class="sidebar-ads">Buy widgets now!</div>
<footer>Copyright Acme</footer>
</body>
</html>`

func TestFetchHTML(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.Header.Get("User-Agent"), "Mozilla/5.0")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(samplePage))
	}))
	defer srv.Close()

	result, err := testScraper().Fetch(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.Equal(t, "Acme Market Report", result.Title)
	assert.Contains(t, result.Content, "$4.5B by 2027")
	assert.Contains(t, result.Content, "Enterprise adoption")
	assert.NotContains(t, result.Content, "trackVisit", "scripts are stripped")
	assert.NotContains(t, result.Content, "Buy widgets now", "ad containers are stripped")
	assert.NotContains(t, result.Content, "Copyright Acme", "footer is stripped")
}

func TestFetchNonHTML(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		w.Write([]byte("%PDF-1.4 fake"))
	}))
	defer srv.Close()

	result, err := testScraper().Fetch(context.Background(), srv.URL)
	require.NoError(t, err, "binary content degrades to a stub, not an error")

	assert.Contains(t, result.Title, "Document from")
	assert.Contains(t, result.Content, "Binary/Document Content")
	assert.Contains(t, result.ContentType, "application/pdf")
}

func TestFetchErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := testScraper().Fetch(context.Background(), srv.URL)
	assert.ErrorContains(t, err, "unexpected status 404")
}

func TestFetchMissingTitle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html><body><p>Content without any page title element.</p></body></html>"))
	}))
	defer srv.Close()

	result, err := testScraper().Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Contains(t, result.Title, "Page from")
}

func TestCleanText(t *testing.T) {
	in := "Market Outlook\nqqq\nSubscribe to our newsletter\nRevenue grew strongly this year\n\n\n\nEnd of report section"
	out := cleanText(in)

	assert.Contains(t, out, "Market Outlook")
	assert.Contains(t, out, "Revenue grew strongly this year")
	assert.NotContains(t, out, "qqq", "very short lines are dropped")
	assert.NotContains(t, out, "Subscribe")
	assert.NotContains(t, out, "\n\n\n")
}
