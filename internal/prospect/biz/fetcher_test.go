package biz

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/lk2023060901/prospect-finder/internal/pkg/workerpool"
	searchtypes "github.com/lk2023060901/prospect-finder/internal/websearch/types"
)

func newTestPool(t *testing.T, workers int) *workerpool.Pool {
	t.Helper()
	cfg := workerpool.DefaultConfig()
	cfg.Workers = workers
	pool, err := workerpool.New(cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(pool.Shutdown)
	return pool
}

func queryIs(q string) interface{} {
	return mock.MatchedBy(func(req *searchtypes.SearchRequest) bool {
		return req.Query == q
	})
}

func TestURLFetcher_Fetch(t *testing.T) {
	search := &mockSearcher{}
	search.On("Search", mock.Anything, mock.MatchedBy(func(req *searchtypes.SearchRequest) bool {
		return req.Query == "q1" && req.MaxResults == 2 && req.SearchDepth == "basic" &&
			len(req.IncludeDomains) == 0 && len(req.ExcludeDomains) == 0
	})).Return(searchResponse("https://a.au", "https://b.au"), nil).Once()
	search.On("Search", mock.Anything, queryIs("q2")).Return(searchResponse("https://b.au", "https://c.au"), nil).Once()
	search.On("Search", mock.Anything, queryIs("q3")).Return(nil, errors.New("tavily down")).Once()
	search.On("Search", mock.Anything, queryIs("q4")).Run(func(mock.Arguments) { panic("bad provider") }).Once()

	f := NewURLFetcher(search, newTestPool(t, 3), FetchConfig{}, zap.NewNop())
	urls := f.Fetch(context.Background(), []string{"q1", "q2", "q3", "q4"})

	assert.ElementsMatch(t, []string{"https://a.au", "https://b.au", "https://c.au"}, urls)
	search.AssertExpectations(t)
}

func TestURLFetcher_PreservesOrderWithinQuery(t *testing.T) {
	search := &mockSearcher{}
	search.On("Search", mock.Anything, queryIs("only")).Return(searchResponse("https://z.au", "https://a.au", "https://z.au"), nil)

	urls := NewURLFetcher(search, newTestPool(t, 1), FetchConfig{}, zap.NewNop()).Fetch(context.Background(), []string{"only"})
	assert.Equal(t, []string{"https://z.au", "https://a.au"}, urls)
}

func TestURLFetcher_CancelledContext(t *testing.T) {
	search := &mockSearcher{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	urls := NewURLFetcher(search, newTestPool(t, 2), FetchConfig{}, zap.NewNop()).Fetch(ctx, []string{"q1", "q2"})
	assert.Empty(t, urls)
	search.AssertNotCalled(t, "Search", mock.Anything, mock.Anything)
}

func TestURLFetcher_NoQueries(t *testing.T) {
	urls := NewURLFetcher(&mockSearcher{}, newTestPool(t, 1), FetchConfig{}, zap.NewNop()).Fetch(context.Background(), nil)
	assert.Empty(t, urls)
}

func TestURLFetcher_LogsPoolStats(t *testing.T) {
	search := &mockSearcher{}
	search.On("Search", mock.Anything, mock.Anything).Return(searchResponse("https://a.au"), nil)

	core, logs := observer.New(zapcore.DebugLevel)
	NewURLFetcher(search, newTestPool(t, 2), FetchConfig{}, zap.New(core)).
		Fetch(context.Background(), []string{"q1", "q2"})

	entries := logs.FilterMessage("search fan-out finished").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.EqualValues(t, 1, fields["urls"])
	assert.EqualValues(t, 2, fields["pool_submitted"])
	assert.EqualValues(t, 2, fields["pool_completed"])
}
