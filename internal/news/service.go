package news

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/medimind/medimind-server/pkg/logging"
)

var ErrNotConfigured = errors.New("news api key not configured")

const (
	defaultPageSize = 20
	maxPageSize     = 100
	researchWindow  = 7 * 24 * time.Hour
	minDescription  = 50
)

// medicalKeywords gates which articles count as medically relevant.
var medicalKeywords = []string{
	"medical", "health", "clinical", "research", "study", "treatment",
	"medicine", "healthcare", "patient", "doctor", "hospital", "therapy",
	"drug", "pharmaceutical", "disease", "diagnosis", "prevention",
}

type Service struct {
	client   *Client
	cache    *redis.Client
	cacheTTL time.Duration
	logger   *logging.Logger
	now      func() time.Time
}

// NewService wires the proxy. client may be nil when no API key is
// configured; cache may be nil to disable caching.
func NewService(client *Client, cache *redis.Client, cacheTTL time.Duration, logger *logging.Logger) *Service {
	return &Service{
		client:   client,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger,
		now:      time.Now,
	}
}

// Headlines returns filtered medical news, newest first. Results are cached
// per country/page_size; any cache failure degrades to a direct fetch.
func (s *Service) Headlines(ctx context.Context, country string, pageSize int) ([]Article, error) {
	if s.client == nil {
		return nil, ErrNotConfigured
	}

	if country == "" {
		country = "us"
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	cacheKey := fmt.Sprintf("news:%s:%d", country, pageSize)
	if cached, ok := s.fromCache(ctx, cacheKey); ok {
		return cached, nil
	}

	var articles []Article

	headlines, err := s.client.TopHealthHeadlines(ctx, country, pageSize/2)
	if err != nil {
		s.logger.Warn("failed to fetch health headlines", "error", err)
	} else {
		articles = append(articles, headlines...)
	}

	research, err := s.client.ResearchNews(ctx, pageSize/2, s.now().Add(-researchWindow))
	if err != nil {
		s.logger.Warn("failed to fetch research news", "error", err)
	} else {
		articles = append(articles, research...)
	}

	filtered := filterMedical(articles)

	// publishedAt is RFC 3339, so lexicographic order is chronological.
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].PublishedAt > filtered[j].PublishedAt
	})

	if len(filtered) > pageSize {
		filtered = filtered[:pageSize]
	}

	s.toCache(ctx, cacheKey, filtered)

	return filtered, nil
}

// filterMedical dedupes by URL and keeps only substantial, medically
// relevant articles.
func filterMedical(articles []Article) []Article {
	seen := map[string]bool{}
	out := []Article{}

	for _, a := range articles {
		if a.URL == "" || seen[a.URL] {
			continue
		}
		if a.Title == "" || len(a.Description) < minDescription {
			continue
		}
		if !isMedical(a) {
			continue
		}

		seen[a.URL] = true
		a.Title = strings.TrimSpace(a.Title)
		a.Description = strings.TrimSpace(a.Description)
		if a.Author == "" {
			a.Author = "Unknown"
		}
		if a.Source.Name == "" {
			a.Source.Name = "Unknown"
		}
		out = append(out, a)
	}

	return out
}

func isMedical(a Article) bool {
	title := strings.ToLower(a.Title)
	desc := strings.ToLower(a.Description)
	for _, kw := range medicalKeywords {
		if strings.Contains(title, kw) || strings.Contains(desc, kw) {
			return true
		}
	}
	return false
}

func (s *Service) fromCache(ctx context.Context, key string) ([]Article, bool) {
	if s.cache == nil {
		return nil, false
	}

	raw, err := s.cache.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn("news cache read failed", "key", key, "error", err)
		}
		return nil, false
	}

	var articles []Article
	if err := json.Unmarshal(raw, &articles); err != nil {
		s.logger.Warn("news cache entry corrupt", "key", key, "error", err)
		return nil, false
	}
	return articles, true
}

func (s *Service) toCache(ctx context.Context, key string, articles []Article) {
	if s.cache == nil {
		return
	}

	raw, err := json.Marshal(articles)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, raw, s.cacheTTL).Err(); err != nil {
		s.logger.Warn("news cache write failed", "key", key, "error", err)
	}
}
