package news

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medimind/medimind-server/pkg/logging"
)

const longDesc = "A large clinical study on patient outcomes across twelve hospitals found measurable improvement."

func article(title, url, publishedAt string) Article {
	return Article{
		Title:       title,
		Description: longDesc,
		URL:         url,
		PublishedAt: publishedAt,
		Source:      Source{Name: "Test Wire"},
		Author:      "Reporter",
	}
}

// fakeNewsAPI serves both NewsAPI endpoints and counts hits.
func fakeNewsAPI(t *testing.T, headlines, research []Article, hits *int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*hits++
		require.NotEmpty(t, r.URL.Query().Get("apiKey"))

		var articles []Article
		switch r.URL.Path {
		case "/v2/top-headlines":
			assert.Equal(t, "health", r.URL.Query().Get("category"))
			articles = headlines
		case "/v2/everything":
			assert.NotEmpty(t, r.URL.Query().Get("from"))
			articles = research
		default:
			http.NotFound(w, r)
			return
		}

		_ = json.NewEncoder(w).Encode(apiResponse{Status: "ok", Articles: articles})
	}))
}

func newTestService(t *testing.T, srv *httptest.Server, cache *redis.Client) *Service {
	t.Helper()
	client := NewClient("test-key")
	client.baseURL = srv.URL
	svc := NewService(client, cache, time.Minute, logging.Default())
	svc.now = func() time.Time { return time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC) }
	return svc
}

func TestHeadlinesMergesAndSorts(t *testing.T) {
	var hits int
	srv := fakeNewsAPI(t,
		[]Article{article("Hospital expansion announced", "https://n.example/a", "2026-03-09T08:00:00Z")},
		[]Article{article("New clinical trial results", "https://n.example/b", "2026-03-10T08:00:00Z")},
		&hits)
	defer srv.Close()

	out, err := newTestService(t, srv, nil).Headlines(context.Background(), "us", 20)
	require.NoError(t, err)

	require.Len(t, out, 2)
	assert.Equal(t, "New clinical trial results", out[0].Title, "newest first")
	assert.Equal(t, 2, hits, "both endpoints queried")
}

func TestHeadlinesDedupesByURL(t *testing.T) {
	var hits int
	dup := article("Medical study repeats", "https://n.example/dup", "2026-03-10T08:00:00Z")
	srv := fakeNewsAPI(t, []Article{dup}, []Article{dup}, &hits)
	defer srv.Close()

	out, err := newTestService(t, srv, nil).Headlines(context.Background(), "us", 20)
	require.NoError(t, err)
	assert.Len(t, out, 1)
}

func TestHeadlinesFiltersIrrelevantAndThin(t *testing.T) {
	var hits int
	thin := Article{Title: "Medical news", Description: "too short", URL: "https://n.example/thin", PublishedAt: "2026-03-10T08:00:00Z"}
	offTopic := Article{Title: "Quarterly earnings beat estimates", Description: "The company reported strong revenue growth across all business segments this quarter again.", URL: "https://n.example/biz", PublishedAt: "2026-03-10T09:00:00Z"}
	keeper := article("Doctors report treatment advance", "https://n.example/keep", "2026-03-10T07:00:00Z")

	srv := fakeNewsAPI(t, []Article{thin, offTopic, keeper}, nil, &hits)
	defer srv.Close()

	out, err := newTestService(t, srv, nil).Headlines(context.Background(), "us", 20)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "Doctors report treatment advance", out[0].Title)
}

func TestHeadlinesPageSizeClamps(t *testing.T) {
	var hits int
	var many []Article
	for i := 0; i < 10; i++ {
		many = append(many, article("Health study update", "https://n.example/"+string(rune('a'+i)), "2026-03-10T08:00:00Z"))
	}
	srv := fakeNewsAPI(t, many, nil, &hits)
	defer srv.Close()

	out, err := newTestService(t, srv, nil).Headlines(context.Background(), "us", 3)
	require.NoError(t, err)
	assert.Len(t, out, 3)
}

func TestHeadlinesServedFromCache(t *testing.T) {
	var hits int
	srv := fakeNewsAPI(t,
		[]Article{article("Cached health story", "https://n.example/c", "2026-03-10T08:00:00Z")},
		nil, &hits)
	defer srv.Close()

	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	svc := newTestService(t, srv, cache)

	first, err := svc.Headlines(context.Background(), "us", 20)
	require.NoError(t, err)
	fetchedHits := hits

	second, err := svc.Headlines(context.Background(), "us", 20)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, fetchedHits, hits, "second call must not hit the upstream")

	// Different page size is a different cache entry.
	_, err = svc.Headlines(context.Background(), "us", 5)
	require.NoError(t, err)
	assert.Greater(t, hits, fetchedHits)
}

func TestHeadlinesCacheDownDegradesToFetch(t *testing.T) {
	var hits int
	srv := fakeNewsAPI(t,
		[]Article{article("Resilient health story", "https://n.example/r", "2026-03-10T08:00:00Z")},
		nil, &hits)
	defer srv.Close()

	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	mr.Close()

	out, err := newTestService(t, srv, cache).Headlines(context.Background(), "us", 20)
	require.NoError(t, err)
	assert.Len(t, out, 1)
}

func TestHeadlinesUnconfigured(t *testing.T) {
	svc := NewService(nil, nil, time.Minute, logging.Default())

	_, err := svc.Headlines(context.Background(), "us", 20)
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestHeadlinesUpstreamFailuresAreNotFatal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	out, err := newTestService(t, srv, nil).Headlines(context.Background(), "us", 20)
	require.NoError(t, err)
	assert.Empty(t, out)
}
