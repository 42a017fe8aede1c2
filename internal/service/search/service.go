package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/satvikdua06/server/internal/repository/cache"
)

var ErrEmptyQuery = errors.New("empty search query")

// Track is a media candidate returned to clients; its shape matches the
// audio_track media variant so a result can be sent back in a
// media-change as-is.
type Track struct {
	Kind            string  `json:"kind"`
	Id              string  `json:"id"`
	Title           string  `json:"title"`
	Artist          string  `json:"artist"`
	PreviewUrl      string  `json:"preview_url"`
	DurationSeconds float64 `json:"duration_seconds,omitempty"`
	ArtworkUrl      string  `json:"artwork_url,omitempty"`
}

type iCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

type Config struct {
	BaseUrl  string
	Limit    int
	CacheTTL time.Duration
}

type service struct {
	baseUrl  string
	limit    int
	cacheTTL time.Duration
	client   *http.Client
	cache    iCache
	logger   *slog.Logger
}

func NewService(searchCache iCache, cfg *Config, logger *slog.Logger) *service {
	baseUrl := cfg.BaseUrl
	if baseUrl == "" {
		baseUrl = "https://itunes.apple.com"
	}
	limit := cfg.Limit
	if limit <= 0 {
		limit = 10
	}

	return &service{
		baseUrl:  baseUrl,
		limit:    limit,
		cacheTTL: cfg.CacheTTL,
		client:   &http.Client{Timeout: 10 * time.Second},
		cache:    searchCache,
		logger:   logger,
	}
}

type itunesResult struct {
	TrackId         int64   `json:"trackId"`
	TrackName       string  `json:"trackName"`
	ArtistName      string  `json:"artistName"`
	PreviewUrl      string  `json:"previewUrl"`
	TrackTimeMillis float64 `json:"trackTimeMillis"`
	ArtworkUrl100   string  `json:"artworkUrl100"`
}

type itunesResponse struct {
	Results []itunesResult `json:"results"`
}

// Search proxies the query to the iTunes Search API. Responses are cached;
// a dead cache degrades to pass-through.
func (s service) Search(ctx context.Context, query string) ([]Track, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	key := "search:" + strings.ToLower(query)
	if cached, err := s.cache.Get(ctx, key); err == nil {
		var tracks []Track
		if err := json.Unmarshal([]byte(cached), &tracks); err == nil {
			return tracks, nil
		}
		s.logger.WarnContext(ctx, "failed to decode cached search result", "key", key)
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.WarnContext(ctx, "search cache unavailable", "error", err)
	}

	tracks, err := s.fetch(ctx, query)
	if err != nil {
		return nil, err
	}

	if encoded, err := json.Marshal(tracks); err == nil {
		if err := s.cache.Set(ctx, key, string(encoded), s.cacheTTL); err != nil {
			s.logger.WarnContext(ctx, "failed to cache search result", "error", err)
		}
	}

	return tracks, nil
}

func (s service) fetch(ctx context.Context, query string) ([]Track, error) {
	values := url.Values{}
	values.Set("term", query)
	values.Set("media", "music")
	values.Set("entity", "song")
	values.Set("limit", fmt.Sprint(s.limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseUrl+"/search?"+values.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("search API returned status %d: %s", resp.StatusCode, body)
	}

	var decoded itunesResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	tracks := make([]Track, 0, len(decoded.Results))
	for _, r := range decoded.Results {
		tracks = append(tracks, Track{
			Kind:            "audio_track",
			Id:              fmt.Sprint(r.TrackId),
			Title:           r.TrackName,
			Artist:          r.ArtistName,
			PreviewUrl:      r.PreviewUrl,
			DurationSeconds: r.TrackTimeMillis / 1000,
			ArtworkUrl:      r.ArtworkUrl100,
		})
	}

	return tracks, nil
}
