package websearch_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zolawuzhigang/Research-Agent/tools/websearch"
)

type fakeSearcher struct {
	hits []websearch.Hit
	err  error
}

func (f *fakeSearcher) Search(ctx context.Context, query string) ([]websearch.Hit, error) {
	return f.hits, f.err
}

func TestExtractQueryStripsVerbsAndPunctuation(t *testing.T) {
	require.Equal(t, "for weather in paris", websearch.ExtractQuery("search for weather in paris?"))
}

func TestExecuteFetchesAndExtractsTopHit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><head><title>Weather Report</title></head><body><article><p>` +
			`It is sunny today with a high of 75 degrees and clear skies throughout the afternoon.</p></article></body></html>`))
	}))
	defer srv.Close()

	searcher := &fakeSearcher{hits: []websearch.Hit{{Title: "Weather Report", URL: srv.URL}}}
	tool := websearch.New(searcher)

	res, err := tool.Execute(context.Background(), "search for today's weather")
	require.NoError(t, err)
	require.True(t, res.Success)
	require.Contains(t, res.Result, "sunny")
}

func TestExecuteNoResultsFromSearcher(t *testing.T) {
	tool := websearch.New(&fakeSearcher{})
	res, err := tool.Execute(context.Background(), "search for nothing in particular")
	require.NoError(t, err)
	require.Equal(t, "no results found", res.Result)
}

func TestExecuteEmptyQueryIsInvalidInput(t *testing.T) {
	tool := websearch.New(&fakeSearcher{})
	_, err := tool.Execute(context.Background(), "search")
	require.Error(t, err)
}
