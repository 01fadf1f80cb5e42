package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/embedded-search/internal/analytics/requests"
	"github.com/Adithya-Monish-Kumar-K/embedded-search/internal/execution"
	"github.com/Adithya-Monish-Kumar-K/embedded-search/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/embedded-search/internal/searcher"
	"github.com/Adithya-Monish-Kumar-K/embedded-search/internal/searcher/ranker"
)

func newMux(t *testing.T) (*http.ServeMux, *searcher.Server) {
	t.Helper()
	s, err := searcher.New(searcher.Options{StopWords: []string{"and", "in", "on"}, QueryCacheSize: 16})
	require.NoError(t, err)
	require.NoError(t, s.AddDocument(0, "white cat and fashionable collar", index.StatusActive, []int{8, -3}))
	require.NoError(t, s.AddDocument(1, "fluffy cat fluffy tail", index.StatusActive, []int{7, 2, 7}))
	require.NoError(t, s.AddDocument(2, "groomed dog expressive eyes", index.StatusActive, []int{5, -12, 2, 1}))
	require.NoError(t, s.AddDocument(3, "groomed starling eugene", index.StatusBanned, []int{9}))

	h := New(s, requests.NewQueue(s, 10, nil), execution.Sequential, 2)
	mux := http.NewServeMux()
	h.Register(mux)
	return mux, s
}

func do(t *testing.T, mux http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestSearch(t *testing.T) {
	mux, _ := newMux(t)
	for _, mode := range []string{"sequential", "parallel"} {
		rec := do(t, mux, http.MethodGet, "/api/v1/search?q=fluffy+groomed+cat&mode="+mode, "")
		require.Equal(t, http.StatusOK, rec.Code)

		var resp SearchResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, mode, resp.Mode)
		require.Len(t, resp.Results, 3)
		assert.Equal(t, []int{1, 0, 2}, []int{resp.Results[0].ID, resp.Results[1].ID, resp.Results[2].ID})
	}
}

func TestSearchByStatus(t *testing.T) {
	mux, _ := newMux(t)
	rec := do(t, mux, http.MethodGet, "/api/v1/search?q=groomed&status=banned", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp SearchResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Results, 1)
	assert.Equal(t, ranker.Document{ID: 3, Relevance: resp.Results[0].Relevance, Rating: 9}, resp.Results[0])
}

func TestSearchBadRequests(t *testing.T) {
	mux, _ := newMux(t)
	for _, target := range []string{
		"/api/v1/search",
		"/api/v1/search?q=cat+--dog",
		"/api/v1/search?q=cat&mode=turbo",
		"/api/v1/search?q=cat&status=archived",
	} {
		rec := do(t, mux, http.MethodGet, target, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
		assert.Contains(t, rec.Body.String(), `"error"`, target)
	}
}

func TestMatch(t *testing.T) {
	mux, _ := newMux(t)
	rec := do(t, mux, http.MethodGet, "/api/v1/documents/1/match?q=fluffy+tail+dog&mode=par", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":1,"words":["fluffy","tail"],"status":"active"}`, rec.Body.String())

	rec = do(t, mux, http.MethodGet, "/api/v1/documents/1/match?q=fluffy+-tail", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":1,"words":[],"status":"active"}`, rec.Body.String())

	rec = do(t, mux, http.MethodGet, "/api/v1/documents/42/match?q=cat", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, mux, http.MethodGet, "/api/v1/documents/x/match?q=cat", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFrequencies(t *testing.T) {
	mux, _ := newMux(t)
	rec := do(t, mux, http.MethodGet, "/api/v1/documents/1/frequencies", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":1,"frequencies":{"fluffy":0.5,"cat":0.25,"tail":0.25}}`, rec.Body.String())

	rec = do(t, mux, http.MethodGet, "/api/v1/documents/99/frequencies", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":99,"frequencies":{}}`, rec.Body.String())
}

func TestAddAndRemoveDocument(t *testing.T) {
	mux, s := newMux(t)
	rec := do(t, mux, http.MethodPost, "/api/v1/documents", `{"id":7,"text":"big dog sparrow","status":"irrelevant","ratings":[1,2]}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 5, s.DocumentCount())

	rec = do(t, mux, http.MethodPost, "/api/v1/documents", `{"id":7,"text":"again"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = do(t, mux, http.MethodPost, "/api/v1/documents", `{"id":8,"text":"bad\u0003word"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = do(t, mux, http.MethodPost, "/api/v1/documents", `{"id":9,"body":"unknown field"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, mux, http.MethodDelete, "/api/v1/documents/7?mode=parallel", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 4, s.DocumentCount())

	rec = do(t, mux, http.MethodDelete, "/api/v1/documents/7", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 4, s.DocumentCount())
}

func TestRemoveDuplicates(t *testing.T) {
	mux, s := newMux(t)
	require.NoError(t, s.AddDocument(10, "collar white fashionable cat", index.StatusActive, nil))

	rec := do(t, mux, http.MethodPost, "/api/v1/documents/dedup", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"removed":[10],"documents":4}`, rec.Body.String())

	rec = do(t, mux, http.MethodPost, "/api/v1/documents/dedup", "")
	assert.JSONEq(t, `{"removed":[],"documents":4}`, rec.Body.String())
}

func TestBatchSearch(t *testing.T) {
	mux, _ := newMux(t)
	rec := do(t, mux, http.MethodPost, "/api/v1/search/batch", `{"queries":["cat","nothing","groomed"]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Results [][]ranker.Document `json:"results"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Results, 3)
	assert.Len(t, resp.Results[0], 2)
	assert.Empty(t, resp.Results[1])
	assert.Len(t, resp.Results[2], 1)

	rec = do(t, mux, http.MethodPost, "/api/v1/search/batch", `{"queries":["cat","groomed"],"joined":true}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var joined struct {
		Results []ranker.Document `json:"results"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&joined))
	assert.Len(t, joined.Results, 3)

	rec = do(t, mux, http.MethodPost, "/api/v1/search/batch", `{"queries":["cat -"]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStats(t *testing.T) {
	mux, _ := newMux(t)
	do(t, mux, http.MethodGet, "/api/v1/search?q=cat", "")
	do(t, mux, http.MethodGet, "/api/v1/search?q=nothing", "")
	do(t, mux, http.MethodGet, "/api/v1/search?q=cat+--x", "")

	rec := do(t, mux, http.MethodGet, "/api/v1/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var stats StatsResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&stats))
	assert.Equal(t, StatsResponse{
		Documents:        4,
		NoResultRequests: 1,
		WindowSize:       2,
		WindowCapacity:   10,
		StopWords:        []string{"and", "in", "on"},
		DefaultMode:      "sequential",
	}, stats)
}
