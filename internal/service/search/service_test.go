package search

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cacheredis "github.com/satvikdua06/server/internal/repository/cache/redis"
)

func newTestService(t *testing.T) (*service, *atomic.Int64) {
	t.Helper()

	var calls atomic.Int64
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "music", r.URL.Query().Get("media"))
		assert.Equal(t, "song", r.URL.Query().Get("entity"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"results":[{"trackId":123,"trackName":"Some Song","artistName":"Some Artist","previewUrl":"https://example.com/p.m4a","trackTimeMillis":215000,"artworkUrl100":"https://example.com/a.jpg"}]}`))
	}))
	t.Cleanup(upstream.Close)

	s, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(s.Close)

	rc := goredis.NewClient(&goredis.Options{Addr: s.Addr()})

	svc := NewService(cacheredis.NewRepo(rc), &Config{
		BaseUrl:  upstream.URL,
		Limit:    5,
		CacheTTL: time.Minute,
	}, slog.Default())

	return svc, &calls
}

func TestSearch(t *testing.T) {
	svc, calls := newTestService(t)

	tracks, err := svc.Search(context.Background(), "some song")
	require.NoError(t, err)
	require.Len(t, tracks, 1)

	track := tracks[0]
	assert.Equal(t, "audio_track", track.Kind)
	assert.Equal(t, "123", track.Id)
	assert.Equal(t, "Some Song", track.Title)
	assert.Equal(t, "Some Artist", track.Artist)
	assert.Equal(t, "https://example.com/p.m4a", track.PreviewUrl)
	assert.InDelta(t, 215.0, track.DurationSeconds, 0.001)
	assert.Equal(t, int64(1), calls.Load())
}

func TestSearchUsesCache(t *testing.T) {
	svc, calls := newTestService(t)

	_, err := svc.Search(context.Background(), "Some Song")
	require.NoError(t, err)

	// case-insensitive cache hit, no second upstream call
	tracks, err := svc.Search(context.Background(), "some song")
	require.NoError(t, err)
	require.Len(t, tracks, 1)
	assert.Equal(t, int64(1), calls.Load())
}

func TestSearchEmptyQuery(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Search(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyQuery)
}

func TestSearchUpstreamError(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	t.Cleanup(upstream.Close)

	s, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(s.Close)

	rc := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	svc := NewService(cacheredis.NewRepo(rc), &Config{BaseUrl: upstream.URL}, slog.Default())

	_, err = svc.Search(context.Background(), "some song")
	assert.Error(t, err)
}
