package crawler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lk2023060901/prospect-finder/internal/pkg/logger"
	"github.com/lk2023060901/prospect-finder/internal/pkg/redis"
)

const kidsPage = `<!doctype html>
<html><head><title>Little Splashers</title><style>.x{}</style></head>
<body>
  <nav><a href="/">Home</a></nav>
  <h1>Little Splashers Swim School</h1>
  <p>We run swimming lessons for babies and toddlers every weekday morning in Darlinghurst.</p>
  <p>Short line.</p>
  <p>Call us on 02 9391 1234</p>
  <img src="/logo.png" alt="logo">
  <a href="/contact-us">Contact Us</a>
  <a href="/about#team">About</a>
  <a href="mailto:hello@splashers.com.au">Email</a>
  <a href="https://www.facebook.com/splashers">Facebook</a>
  <a href="javascript:void(0)">Menu</a>
</body></html>`

func newTestServer(t *testing.T, hits *int32) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			atomic.AddInt32(hits, 1)
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(kidsPage))
	})
	mux.HandleFunc("/missing", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	mux.HandleFunc("/slow", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestCrawl_Page(t *testing.T) {
	srv := newTestServer(t, nil)
	c := New(Config{UserAgent: "test-agent"})

	res := c.Crawl(context.Background(), srv.URL+"/swim", GeneralProfile())
	require.True(t, res.OK(), "crawl error: %v", res.Err)

	page := res.Page
	assert.Equal(t, http.StatusOK, page.StatusCode)
	assert.Contains(t, page.Content, "Little Splashers Swim School")
	assert.Contains(t, page.Content, "swimming lessons for babies")
	assert.Contains(t, page.Content, "02 9391 1234")
	assert.NotContains(t, page.Content, "Short line.")
	assert.NotContains(t, page.Content, "logo.png")

	var internal []string
	for _, l := range page.InternalLinks {
		internal = append(internal, l.Href)
	}
	assert.Contains(t, internal, srv.URL+"/contact-us")
	assert.Contains(t, internal, srv.URL+"/about")
	require.Len(t, page.ExternalLinks, 1)
	assert.Equal(t, "https://www.facebook.com/splashers", page.ExternalLinks[0].Href)
	assert.Equal(t, "Facebook", page.ExternalLinks[0].Text)
}

func TestCrawl_Failures(t *testing.T) {
	srv := newTestServer(t, nil)
	c := New(Config{})

	t.Run("not found", func(t *testing.T) {
		res := c.Crawl(context.Background(), srv.URL+"/missing", GeneralProfile())
		require.False(t, res.OK())
		var se *StatusError
		require.True(t, errors.As(res.Err, &se))
		assert.Equal(t, http.StatusNotFound, se.Code)
	})

	t.Run("unsupported scheme", func(t *testing.T) {
		res := c.Crawl(context.Background(), "ftp://example.org/file", GeneralProfile())
		assert.ErrorIs(t, res.Err, ErrUnsupportedScheme)
	})

	t.Run("missing host", func(t *testing.T) {
		res := c.Crawl(context.Background(), "https://", GeneralProfile())
		assert.ErrorIs(t, res.Err, ErrInvalidURL)
	})

	t.Run("timeout", func(t *testing.T) {
		p := GeneralProfile()
		p.PageTimeout = 100 * time.Millisecond
		res := c.Crawl(context.Background(), srv.URL+"/slow", p)
		assert.False(t, res.OK())
		assert.Error(t, res.Err)
	})

	t.Run("selector missing", func(t *testing.T) {
		p := GeneralProfile()
		p.WaitFor = "#booking-widget"
		res := c.Crawl(context.Background(), srv.URL+"/", p)
		assert.ErrorIs(t, res.Err, ErrSelectorNotFound)
	})
}

func newTestCache(t *testing.T) (*RedisPageCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	cfg := redis.DefaultConfig()
	cfg.Enabled = true
	cfg.Addrs = []string{mr.Addr()}
	client, err := redis.New(cfg, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisPageCache(client, time.Hour), mr
}

func TestCrawl_CacheModes(t *testing.T) {
	var hits int32
	srv := newTestServer(t, &hits)
	cache, _ := newTestCache(t)
	c := New(Config{}, WithCache(cache))
	url := srv.URL + "/cached"

	p := GeneralProfile()
	require.True(t, c.Crawl(context.Background(), url, p).OK())
	require.True(t, c.Crawl(context.Background(), url, p).OK())
	assert.EqualValues(t, 1, atomic.LoadInt32(&hits), "second crawl should be served from cache")

	p.Cache = CacheBypass
	require.True(t, c.Crawl(context.Background(), url, p).OK())
	assert.EqualValues(t, 2, atomic.LoadInt32(&hits))

	contact := ContactProfile()
	contact.Cache = CacheReadOnly
	require.True(t, c.Crawl(context.Background(), url, contact).OK())
	require.True(t, c.Crawl(context.Background(), url, contact).OK())
	assert.EqualValues(t, 4, atomic.LoadInt32(&hits), "read-only mode must not populate the cache")
}

func TestCrawl_CorruptCacheEntry(t *testing.T) {
	srv := newTestServer(t, nil)
	cache, mr := newTestCache(t)
	c := New(Config{}, WithCache(cache))
	url := srv.URL + "/corrupt"

	require.NoError(t, mr.Set(cache.key("general", url), "{not json"))

	res := c.Crawl(context.Background(), url, GeneralProfile())
	assert.ErrorIs(t, res.Err, ErrCacheDecode)
}

func TestCrawl_RobotsDisallowed(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "User-agent: *\nDisallow: /private\n")
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(kidsPage))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := New(Config{UserAgent: "test-agent"}, WithRobots(NewRobotsChecker(srv.Client(), "test-agent", time.Minute)))

	res := c.Crawl(context.Background(), srv.URL+"/private/contact", ContactProfile())
	assert.ErrorIs(t, res.Err, ErrRobotsDisallowed)

	res = c.Crawl(context.Background(), srv.URL+"/contact", ContactProfile())
	assert.True(t, res.OK(), "crawl error: %v", res.Err)

	// General profile ignores robots.txt.
	res = c.Crawl(context.Background(), srv.URL+"/private/contact", GeneralProfile())
	assert.True(t, res.OK())
}

func TestRobotsChecker_MissingRobotsAllowsAll(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	checker := NewRobotsChecker(nil, "test-agent", 0)
	allowed, err := checker.IsAllowed(context.Background(), srv.URL+"/anything")
	require.NoError(t, err)
	assert.True(t, allowed)

	_, err = checker.IsAllowed(context.Background(), "/relative")
	assert.Error(t, err)
}

func TestFilterBlocks(t *testing.T) {
	in := strings.Join([]string{
		"# Title",
		"too short",
		"this block has more than enough words to pass the filter easily",
		"[Book](https://x.example/book)",
		"Ph 9391",
		"hi@x.au",
	}, "\n\n")

	out := filterBlocks(in, 10)
	assert.Contains(t, out, "# Title")
	assert.NotContains(t, out, "too short")
	assert.Contains(t, out, "enough words")
	assert.Contains(t, out, "[Book]")
	assert.Contains(t, out, "Ph 9391")
	assert.Contains(t, out, "hi@x.au")

	assert.Equal(t, "too short", filterBlocks("too short", 0))
}
