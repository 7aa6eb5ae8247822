package tools

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const searchPage = `
<html><body>
<div class="result">
  <a class="result__a" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fgo.dev%2Fdoc%2F&rut=abc">Go Documentation</a>
  <div class="result__snippet">The Go programming language   documentation and guides.</div>
</div>
<div class="result">
  <a class="result__a" href="https://pkg.go.dev/">pkg.go.dev</a>
  <div class="result__snippet">Package discovery.</div>
</div>
<div class="result">
  <a class="result__a" href="https://example.com/"></a>
  <div class="result__snippet">No title, skipped.</div>
</div>
<div class="result">
  <a class="result__a" href="https://example.org/">Third</a>
</div>
</body></html>`

func parseDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestParseSearchResults(t *testing.T) {
	results := ParseSearchResults(parseDoc(t, searchPage), 5)

	require.Len(t, results, 3)
	assert.Equal(t, "Go Documentation", results[0].Title)
	assert.Equal(t, "https://go.dev/doc/", results[0].URL)
	assert.Equal(t, "The Go programming language documentation and guides.", results[0].Snippet)
	assert.Equal(t, "pkg.go.dev", results[1].Title)
	assert.Equal(t, "Third", results[2].Title)
	assert.Empty(t, results[2].Snippet)
}

func TestParseSearchResultsRespectsLimit(t *testing.T) {
	results := ParseSearchResults(parseDoc(t, searchPage), 1)
	require.Len(t, results, 1)
	assert.Equal(t, "Go Documentation", results[0].Title)
}

func TestUnwrapDuckDuckGoURL(t *testing.T) {
	assert.Equal(t, "https://go.dev/",
		unwrapDuckDuckGoURL("//duckduckgo.com/l/?uddg=https%3A%2F%2Fgo.dev%2F"))
	assert.Equal(t, "https://direct.example/",
		unwrapDuckDuckGoURL("https://direct.example/"))
	assert.Equal(t, "", unwrapDuckDuckGoURL("/ad_redirect?x=1"))
	assert.Equal(t, "", unwrapDuckDuckGoURL(""))
}

func TestExtractPageText(t *testing.T) {
	page := `
<html><head><style>body { color: red }</style></head>
<body>
<nav>Menu Menu Menu</nav>
<script>var tracking = true;</script>
<p>First   paragraph.</p>
<p>Second paragraph.</p>
<footer>Copyright</footer>
</body></html>`

	text := ExtractPageText(parseDoc(t, page), 5000)
	assert.Equal(t, "First paragraph. Second paragraph.", text)
}

func TestExtractPageTextTruncates(t *testing.T) {
	page := "<html><body><p>" + strings.Repeat("word ", 100) + "</p></body></html>"

	text := ExtractPageText(parseDoc(t, page), 20)
	assert.True(t, strings.HasSuffix(text, "... (truncated)"), text)
	assert.Len(t, text, 20+len("... (truncated)"))
}

func TestFormatSearchResults(t *testing.T) {
	out := FormatSearchResults("golang", []SearchResult{
		{Title: "Go", URL: "https://go.dev/", Snippet: "The Go language."},
		{Title: "Pkg", URL: "https://pkg.go.dev/", Snippet: "Packages."},
	})

	assert.True(t, strings.HasPrefix(out, "Search results for: golang"))
	assert.Contains(t, out, "1. Go\nhttps://go.dev/\nThe Go language.")
	assert.Contains(t, out, "2. Pkg")
	assert.False(t, strings.HasSuffix(out, "\n"))
}
