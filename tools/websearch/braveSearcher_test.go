package websearch_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zolawuzhigang/Research-Agent/tools/websearch"
)

func TestBraveSearcherParsesWebResults(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "secret-key", r.Header.Get("X-Subscription-Token"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"web":{"results":[{"title":"Go docs","url":"https://go.dev"}]}}`))
	}))
	defer ts.Close()

	searcher := websearch.NewBraveSearcher("secret-key", ts.Client()).WithEndpoint(ts.URL)
	hits, err := searcher.Search(context.Background(), "golang")
	require.NoError(t, err)
	require.Len(t, hits, 1)
	require.Equal(t, "Go docs", hits[0].Title)
}

func TestBraveSearcherNonOKStatusIsError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer ts.Close()

	searcher := websearch.NewBraveSearcher("secret-key", ts.Client()).WithEndpoint(ts.URL)
	_, err := searcher.Search(context.Background(), "golang")
	require.Error(t, err)
}
