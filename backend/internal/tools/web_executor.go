package tools

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"warden/backend/pkg/logger"
)

// SearchResult represents a single web search result
type SearchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// WebExecutor performs web searches and page fetches
type WebExecutor struct {
	httpClient *http.Client
	logger     *zap.Logger
}

// NewWebExecutor creates a new web executor
func NewWebExecutor() *WebExecutor {
	return &WebExecutor{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger.Get(),
	}
}

// Search runs a DuckDuckGo HTML search (free, no API key needed) and
// returns up to maxResults parsed results.
func (w *WebExecutor) Search(ctx context.Context, query string, maxResults int) ([]SearchResult, error) {
	if maxResults <= 0 {
		maxResults = 5
	}

	searchURL := fmt.Sprintf("https://html.duckduckgo.com/html/?q=%s", url.QueryEscape(query))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	req.Header.Set("Accept", "text/html")

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse search page: %w", err)
	}

	return ParseSearchResults(doc, maxResults), nil
}

// ParseSearchResults extracts results from a DuckDuckGo HTML document
func ParseSearchResults(doc *goquery.Document, maxResults int) []SearchResult {
	var results []SearchResult

	doc.Find("div.result").EachWithBreak(func(i int, s *goquery.Selection) bool {
		link := s.Find("a.result__a").First()
		title := strings.TrimSpace(link.Text())
		if title == "" {
			return true
		}

		href, _ := link.Attr("href")
		snippet := strings.Join(strings.Fields(s.Find(".result__snippet").First().Text()), " ")
		if len(snippet) > 200 {
			snippet = snippet[:200] + "..."
		}

		results = append(results, SearchResult{
			Title:   title,
			URL:     unwrapDuckDuckGoURL(href),
			Snippet: snippet,
		})
		return len(results) < maxResults
	})

	return results
}

// unwrapDuckDuckGoURL extracts the destination from DuckDuckGo's redirect
// links (the target sits in the uddg query parameter).
func unwrapDuckDuckGoURL(raw string) string {
	if raw == "" {
		return ""
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	if target := parsed.Query().Get("uddg"); target != "" {
		return target
	}
	if strings.HasPrefix(raw, "/") {
		return ""
	}
	return raw
}

// FetchPage fetches a webpage and extracts its readable text
func (w *WebExecutor) FetchPage(ctx context.Context, pageURL string, maxChars int) (string, error) {
	if !strings.HasPrefix(pageURL, "http://") && !strings.HasPrefix(pageURL, "https://") {
		pageURL = "https://" + pageURL
	}
	if maxChars <= 0 {
		maxChars = 5000
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("invalid URL: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; WardenBot/1.0)")

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, 200_000))
	if err != nil {
		return "", fmt.Errorf("failed to parse page: %w", err)
	}

	return ExtractPageText(doc, maxChars), nil
}

// ExtractPageText pulls readable text out of a parsed HTML document
func ExtractPageText(doc *goquery.Document, maxChars int) string {
	doc.Find("script, style, noscript, nav, footer, header, iframe").Remove()

	root := doc.Find("body")
	if root.Length() == 0 {
		root = doc.Selection
	}

	text := strings.Join(strings.Fields(root.Text()), " ")
	if len(text) > maxChars {
		text = text[:maxChars] + "... (truncated)"
	}
	return text
}

// FormatSearchResults renders results as the plain-text block used for
// paste uploads and model context.
func FormatSearchResults(query string, results []SearchResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Search results for: %s\n\n", query)
	for i, r := range results {
		fmt.Fprintf(&b, "%d. %s\n%s\n%s\n\n", i+1, r.Title, r.URL, r.Snippet)
	}
	return strings.TrimRight(b.String(), "\n")
}
