// Package scrape fetches webpages and extracts their readable content for
// ingestion into a case's DataLib.
package scrape

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"golang.org/x/net/html"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// Result is the outcome of scraping one URL.
type Result struct {
	Title       string
	Content     string
	ContentType string
}

type Scraper struct {
	client *http.Client
	logger *slog.Logger
}

func New(logger *slog.Logger) *Scraper {
	return &Scraper{
		client: &http.Client{Timeout: 30 * time.Second},
		logger: logger,
	}
}

// Fetch downloads a page and extracts its title and main text content.
// Non-HTML responses (PDFs, binaries) degrade to a stub document describing
// what was found rather than failing the upload.
func (s *Scraper) Fetch(ctx context.Context, pageURL string) (Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return Result{}, fmt.Errorf("build request for %s: %w", pageURL, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("fetch %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Result{}, fmt.Errorf("fetch %s: unexpected status %d", pageURL, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, fmt.Errorf("read %s: %w", pageURL, err)
	}

	contentType := strings.ToLower(resp.Header.Get("Content-Type"))
	if !strings.Contains(contentType, "text/html") && !strings.Contains(contentType, "text/plain") {
		s.logger.Info("Non-HTML content scraped", "url", pageURL, "content_type", contentType, "bytes", len(body))
		return Result{
			Title:       fmt.Sprintf("Document from %s", hostOf(pageURL)),
			Content:     fmt.Sprintf("Binary/Document Content from %s\nContent-Type: %s\nFile size: %d bytes\n\nNote: This appears to be a binary file or non-HTML document.", pageURL, contentType, len(body)),
			ContentType: contentType,
		}, nil
	}

	doc, err := html.Parse(strings.NewReader(string(body)))
	if err != nil {
		return Result{}, fmt.Errorf("parse %s: %w", pageURL, err)
	}

	title := pageTitle(doc)
	if title == "" {
		title = fmt.Sprintf("Page from %s", hostOf(pageURL))
	}

	pruneChrome(doc)
	content := cleanText(extractMainContent(doc))

	return Result{Title: title, Content: content, ContentType: contentType}, nil
}

func hostOf(pageURL string) string {
	if u, err := url.Parse(pageURL); err == nil && u.Host != "" {
		return u.Host
	}
	return pageURL
}

func pageTitle(doc *html.Node) string {
	var title string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if title != "" {
			return
		}
		if n.Type == html.ElementNode && n.Data == "title" {
			title = strings.TrimSpace(nodeText(n))
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return title
}

// Page chrome that never carries article content.
var chromeElements = map[string]bool{
	"script": true, "style": true, "nav": true, "footer": true,
	"header": true, "aside": true, "iframe": true, "noscript": true,
}

var chromeClasses = []string{"advertisement", "ads", "sidebar", "navigation", "menu", "social", "share"}

func pruneChrome(n *html.Node) {
	var next *html.Node
	for c := n.FirstChild; c != nil; c = next {
		next = c.NextSibling
		if c.Type == html.ElementNode && (chromeElements[c.Data] || hasChromeClass(c)) {
			n.RemoveChild(c)
			continue
		}
		pruneChrome(c)
	}
}

func hasChromeClass(n *html.Node) bool {
	for _, attr := range n.Attr {
		if attr.Key != "class" {
			continue
		}
		classes := strings.ToLower(attr.Val)
		for _, unwanted := range chromeClasses {
			if strings.Contains(classes, unwanted) {
				return true
			}
		}
	}
	return false
}

// extractMainContent looks for a semantic content container first, then the
// densest text block, then falls back to the whole document.
func extractMainContent(doc *html.Node) string {
	if n := largestMatching(doc, isSemanticContainer); n != nil {
		return nodeText(n)
	}
	if n := largestMatching(doc, isTextBlock); n != nil {
		return nodeText(n)
	}
	return nodeText(doc)
}

func isSemanticContainer(n *html.Node) bool {
	if n.Data == "main" || n.Data == "article" {
		return true
	}
	for _, attr := range n.Attr {
		if attr.Key == "role" && attr.Val == "main" {
			return true
		}
		if attr.Key == "class" || attr.Key == "id" {
			v := strings.ToLower(attr.Val)
			if strings.Contains(v, "content") || strings.Contains(v, "article-body") ||
				strings.Contains(v, "story-body") || strings.Contains(v, "post-body") {
				return true
			}
		}
	}
	return false
}

func isTextBlock(n *html.Node) bool {
	return n.Data == "div" || n.Data == "section" || n.Data == "p"
}

func largestMatching(doc *html.Node, match func(*html.Node) bool) *html.Node {
	var best *html.Node
	bestLen := 0
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && match(n) {
			if l := len(nodeText(n)); l > bestLen {
				best, bestLen = n, l
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return best
}

func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				sb.WriteString(text)
				sb.WriteString("\n")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

var navWords = []string{"home", "menu", "login", "search", "subscribe", "follow us"}
var excessNewlines = regexp.MustCompile(`\n\s*\n\s*\n+`)

// cleanText drops lines that look like leftover navigation and collapses
// runs of blank lines.
func cleanText(text string) string {
	var kept []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if len(line) <= 3 {
			continue
		}
		lower := strings.ToLower(line)
		isNav := false
		for _, w := range navWords {
			if strings.Contains(lower, w) {
				isNav = true
				break
			}
		}
		if !isNav {
			kept = append(kept, line)
		}
	}
	out := strings.Join(kept, "\n")
	out = excessNewlines.ReplaceAllString(out, "\n\n")
	return strings.TrimSpace(out)
}
