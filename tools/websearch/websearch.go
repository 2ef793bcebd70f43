// Package websearch implements the built-in web-search tool. It fetches the
// top search hit's page and reduces it to the article body with
// go-readability before handing it to ExecutionAgent's truncation step (spec
// §4.4 step 2.a "for web search, extract a query by stripping punctuation
// and instruction verbs"; §4.4 step e formats on cleaned text).
package websearch

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"

	"github.com/zolawuzhigang/Research-Agent/errs"
	"github.com/zolawuzhigang/Research-Agent/toolhub"
)

// Hit is a single search result handed back by a Searcher.
type Hit struct {
	Title string
	URL   string
}

// Searcher abstracts the external search-engine API call. Grounded on the
// corpus pattern of keeping the network-bound collaborator behind a narrow
// interface (mirrors llm.Client): production wiring plugs in a real search
// API client; tests plug in a fixed result list.
type Searcher interface {
	Search(ctx context.Context, query string) ([]Hit, error)
}

var instructionVerbs = regexp.MustCompile(`(?i)\b(search|find|look up|google|lookup)\b`)
var punctuation = regexp.MustCompile(`[^\w\s]`)

// ExtractQuery strips instruction verbs and punctuation from a free-text
// instruction to produce a bare search query (spec §4.4 step 2.a).
func ExtractQuery(input string) string {
	q := instructionVerbs.ReplaceAllString(input, "")
	q = punctuation.ReplaceAllString(q, " ")
	return strings.Join(strings.Fields(q), " ")
}

// Tool performs a web search and returns the extracted article body of the
// top hit.
type Tool struct {
	searcher Searcher
	client   *http.Client
	timeout  time.Duration
}

// Option configures a Tool.
type Option func(*Tool)

// WithHTTPClient overrides the client used to fetch result pages.
func WithHTTPClient(c *http.Client) Option {
	return func(t *Tool) { t.client = c }
}

// WithFetchTimeout bounds each page fetch.
func WithFetchTimeout(d time.Duration) Option {
	return func(t *Tool) { t.timeout = d }
}

// New constructs a Tool backed by searcher.
func New(searcher Searcher, opts ...Option) *Tool {
	t := &Tool{searcher: searcher, client: http.DefaultClient, timeout: 5 * time.Second}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Tool) Meta() toolhub.Meta {
	return toolhub.Meta{
		Capabilities: []string{"search"},
		Description:  "searches the web and extracts the top result's article text",
		Reliability:  "medium",
		Timeliness:   "high",
		ExampleInput: "search latest Go release notes",
	}
}

func (t *Tool) Execute(ctx context.Context, input string) (toolhub.Result, error) {
	query := ExtractQuery(input)
	if query == "" {
		return toolhub.Result{}, errs.New(errs.KindToolInvalidInput, "no search query found in input")
	}

	hits, err := t.searcher.Search(ctx, query)
	if err != nil {
		return toolhub.Result{}, errs.Wrap(errs.KindToolExecution, err, "web search failed")
	}
	if len(hits) == 0 {
		return toolhub.Result{Success: true, Result: "no results found"}, nil
	}

	body, title, err := t.fetchArticle(ctx, hits[0].URL)
	if err != nil {
		// Degrade to the raw hit list rather than failing the whole call.
		return toolhub.Result{Success: true, Result: formatHits(hits), Meta: map[string]any{"fetch_error": err.Error()}}, nil
	}
	result := body
	if title != "" {
		result = title + "\n\n" + body
	}
	return toolhub.Result{Success: true, Result: result, Meta: map[string]any{"source_url": hits[0].URL}}, nil
}

func (t *Tool) fetchArticle(ctx context.Context, pageURL string) (body, title string, err error) {
	fetchCtx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(fetchCtx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", "", err
	}
	resp, err := t.client.Do(req)
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()

	html, err := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	if err != nil {
		return "", "", err
	}

	base, _ := url.Parse(pageURL)
	art, err := readability.FromReader(strings.NewReader(string(html)), base)
	if err != nil {
		return "", "", err
	}
	return strings.TrimSpace(art.TextContent), strings.TrimSpace(art.Title), nil
}

func formatHits(hits []Hit) string {
	var b strings.Builder
	for i, h := range hits {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(h.Title)
		b.WriteString(" - ")
		b.WriteString(h.URL)
	}
	return b.String()
}
