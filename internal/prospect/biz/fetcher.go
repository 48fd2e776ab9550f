package biz

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/lk2023060901/prospect-finder/internal/pkg/metrics"
	"github.com/lk2023060901/prospect-finder/internal/pkg/workerpool"
	searchtypes "github.com/lk2023060901/prospect-finder/internal/websearch/types"
)

// Searcher runs one web search.
type Searcher interface {
	Search(ctx context.Context, req *searchtypes.SearchRequest) (*searchtypes.SearchResponse, error)
}

// FetchConfig controls the per-query search request.
type FetchConfig struct {
	MaxResults  int
	SearchDepth string
}

// URLFetcher fans queries out over the worker pool and merges result URLs.
type URLFetcher struct {
	search Searcher
	pool   *workerpool.Pool
	cfg    FetchConfig
	logger *zap.Logger
}

// NewURLFetcher creates a URLFetcher.
func NewURLFetcher(search Searcher, pool *workerpool.Pool, cfg FetchConfig, logger *zap.Logger) *URLFetcher {
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = 2
	}
	if cfg.SearchDepth == "" {
		cfg.SearchDepth = "basic"
	}
	return &URLFetcher{search: search, pool: pool, cfg: cfg, logger: logger}
}

// urlSet keeps URLs in first-seen order.
type urlSet struct {
	mu    sync.Mutex
	seen  map[string]struct{}
	order []string
}

func (s *urlSet) add(urls []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range urls {
		if u == "" {
			continue
		}
		if _, ok := s.seen[u]; ok {
			continue
		}
		s.seen[u] = struct{}{}
		s.order = append(s.order, u)
	}
}

// Fetch searches every query once and returns the de-duplicated union of
// result URLs. A failing or panicking query contributes nothing.
func (f *URLFetcher) Fetch(ctx context.Context, queries []string) []string {
	set := &urlSet{seen: make(map[string]struct{})}
	group := f.pool.NewGroup()

	for _, q := range queries {
		query := q
		group.Go(func() {
			urls, err := f.searchOne(ctx, query)
			if err != nil {
				metrics.SearchFailures.Inc()
				f.logger.Warn("search query failed", zap.String("query", query), zap.Error(err))
				return
			}
			set.add(urls)
		})
	}

	if err := group.Wait(); err != nil {
		f.logger.Error("search tasks not submitted", zap.Error(err))
	}

	set.mu.Lock()
	defer set.mu.Unlock()

	stats := f.pool.Stats()
	f.logger.Debug("search fan-out finished",
		zap.Int("queries", len(queries)),
		zap.Int("urls", len(set.order)),
		zap.Int64("pool_submitted", stats.Submitted),
		zap.Int64("pool_completed", stats.Completed),
		zap.Int64("pool_panicked", stats.Panicked),
	)
	return append([]string(nil), set.order...)
}

func (f *URLFetcher) searchOne(ctx context.Context, query string) (urls []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("search panic: %v", r)
		}
	}()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	resp, err := f.search.Search(ctx, &searchtypes.SearchRequest{
		Query:       query,
		MaxResults:  f.cfg.MaxResults,
		SearchDepth: f.cfg.SearchDepth,
	})
	if err != nil {
		return nil, err
	}
	return resp.URLs(), nil
}
