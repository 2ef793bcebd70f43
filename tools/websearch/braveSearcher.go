package websearch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/zolawuzhigang/Research-Agent/errs"
)

// BraveSearcher implements Searcher over the Brave Search API. It is the
// only concrete Searcher this repo ships; no example repo in the pack
// carries a search-API SDK, so this talks HTTP/JSON directly rather than
// depend on an unverified third-party client.
const defaultBraveEndpoint = "https://api.search.brave.com/res/v1/web/search"

type BraveSearcher struct {
	apiKey   string
	client   *http.Client
	endpoint string
	count    int
}

// NewBraveSearcher constructs a BraveSearcher. httpClient may be nil, in
// which case http.DefaultClient is used.
func NewBraveSearcher(apiKey string, httpClient *http.Client) *BraveSearcher {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &BraveSearcher{apiKey: apiKey, client: httpClient, endpoint: defaultBraveEndpoint, count: 5}
}

// WithEndpoint overrides the Brave Search endpoint, used by tests to point
// at a local fixture server.
func (s *BraveSearcher) WithEndpoint(endpoint string) *BraveSearcher {
	s.endpoint = endpoint
	return s
}

type braveResponse struct {
	Web struct {
		Results []struct {
			Title string `json:"title"`
			URL   string `json:"url"`
		} `json:"results"`
	} `json:"web"`
}

// Search queries the Brave Search API and returns its web results as Hits.
func (s *BraveSearcher) Search(ctx context.Context, query string) ([]Hit, error) {
	endpoint := fmt.Sprintf("%s?q=%s&count=%d", s.endpoint, url.QueryEscape(query), s.count)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errs.Wrap(errs.KindToolExecution, err, "build search request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Subscription-Token", s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, errs.Wrap(errs.KindToolTimeout, err, "search request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errs.New(errs.KindToolExecution, fmt.Sprintf("search API returned %d", resp.StatusCode))
	}

	var body braveResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, errs.Wrap(errs.KindToolExecution, err, "decode search response")
	}

	hits := make([]Hit, 0, len(body.Web.Results))
	for _, r := range body.Web.Results {
		title := strings.TrimSpace(r.Title)
		if title == "" || r.URL == "" {
			continue
		}
		hits = append(hits, Hit{Title: title, URL: r.URL})
	}
	return hits, nil
}
