package crawler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"

	"github.com/lk2023060901/prospect-finder/internal/pkg/metrics"
)

const defaultMaxBodySize = 10 * 1024 * 1024

// Config holds the settings shared by every crawl.
type Config struct {
	UserAgent   string
	MaxBodySize int
}

// Option configures a Crawler.
type Option func(*Crawler)

// WithCache enables the page cache.
func WithCache(cache PageCache) Option {
	return func(c *Crawler) { c.cache = cache }
}

// WithRobots enables robots.txt checks for profiles that request them.
func WithRobots(robots *RobotsChecker) Option {
	return func(c *Crawler) { c.robots = robots }
}

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(c *Crawler) { c.logger = log }
}

// WithTransport replaces the HTTP transport used by the collector.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Crawler) { c.transport = rt }
}

// Crawler fetches single pages. It is safe for concurrent use.
type Crawler struct {
	cfg       Config
	cache     PageCache
	robots    *RobotsChecker
	transport http.RoundTripper
	logger    *zap.Logger
}

// New creates a Crawler.
func New(cfg Config, opts ...Option) *Crawler {
	if cfg.MaxBodySize <= 0 {
		cfg.MaxBodySize = defaultMaxBodySize
	}
	c := &Crawler{cfg: cfg, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Crawl fetches rawURL with profile p. It never panics and never returns a
// bare error; failures are carried in Result.Err.
func (c *Crawler) Crawl(ctx context.Context, rawURL string, p Profile) Result {
	res := c.crawl(ctx, rawURL, p)
	switch {
	case res.OK():
	case errors.Is(res.Err, ErrRobotsDisallowed):
		metrics.CrawlResults.WithLabelValues("robots_disallowed").Inc()
	default:
		metrics.CrawlResults.WithLabelValues("error").Inc()
		c.logger.Debug("crawl failed",
			zap.String("url", rawURL),
			zap.String("profile", p.Name),
			zap.Error(res.Err))
	}
	return res
}

func (c *Crawler) crawl(ctx context.Context, rawURL string, p Profile) Result {
	target, err := parseTarget(rawURL)
	if err != nil {
		return failed(rawURL, err)
	}

	if c.cache != nil && p.Cache.readable() {
		page, hit, err := c.cache.Get(ctx, p.Name, rawURL)
		switch {
		case errors.Is(err, ErrCacheDecode):
			return failed(rawURL, err)
		case err != nil:
			c.logger.Warn("page cache read failed", zap.String("url", rawURL), zap.Error(err))
		case hit:
			metrics.CrawlResults.WithLabelValues("cache_hit").Inc()
			return Result{Page: page, URL: rawURL}
		}
	}

	if p.RespectRobots && c.robots != nil {
		allowed, err := c.robots.IsAllowed(ctx, rawURL)
		if err != nil {
			return failed(rawURL, err)
		}
		if !allowed {
			return failed(rawURL, ErrRobotsDisallowed)
		}
	}

	body, status, finalURL, err := c.fetch(ctx, target, p)
	if err != nil {
		return failed(rawURL, err)
	}

	page, err := buildPage(body, finalURL, p)
	if err != nil {
		return failed(rawURL, err)
	}
	page.StatusCode = status
	metrics.CrawlResults.WithLabelValues("success").Inc()

	if c.cache != nil && p.Cache.writable() {
		if err := c.cache.Set(ctx, p.Name, rawURL, page); err != nil {
			c.logger.Warn("page cache write failed", zap.String("url", rawURL), zap.Error(err))
		}
	}
	return Result{Page: page, URL: rawURL}
}

func parseTarget(rawURL string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("%w: missing host", ErrInvalidURL)
	}
	return u, nil
}

// fetch runs one synchronous colly visit bounded by the profile timeout.
func (c *Crawler) fetch(ctx context.Context, target *url.URL, p Profile) ([]byte, int, *url.URL, error) {
	if p.PageTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.PageTimeout)
		defer cancel()
	}

	opts := []colly.CollectorOption{
		colly.StdlibContext(ctx),
		colly.AllowURLRevisit(),
		colly.IgnoreRobotsTxt(),
		colly.MaxBodySize(c.cfg.MaxBodySize),
	}
	if c.cfg.UserAgent != "" {
		opts = append(opts, colly.UserAgent(c.cfg.UserAgent))
	}
	collector := colly.NewCollector(opts...)
	if c.transport != nil {
		collector.WithTransport(c.transport)
	}
	if p.PageTimeout > 0 {
		collector.SetRequestTimeout(p.PageTimeout)
	}

	var (
		body     []byte
		status   int
		finalURL = target
		fetchErr error
	)
	collector.OnResponse(func(r *colly.Response) {
		body = r.Body
		status = r.StatusCode
		finalURL = r.Request.URL
	})
	collector.OnError(func(r *colly.Response, err error) {
		status = r.StatusCode
		fetchErr = err
	})

	visitErr := collector.Visit(target.String())
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, 0, nil, ctxErr
	}
	if status >= 300 || (fetchErr != nil && status != 0) {
		return nil, status, nil, &StatusError{Code: status}
	}
	if fetchErr != nil {
		return nil, 0, nil, fetchErr
	}
	if visitErr != nil {
		return nil, 0, nil, visitErr
	}
	if status == 0 {
		return nil, 0, nil, ErrEmptyContent
	}
	return body, status, finalURL, nil
}

// buildPage parses body and produces markdown plus links.
func buildPage(body []byte, base *url.URL, p Profile) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	if p.WaitFor != "" && doc.Find(p.WaitFor).Length() == 0 {
		return nil, fmt.Errorf("%w: %s", ErrSelectorNotFound, p.WaitFor)
	}

	internal, external := extractLinks(doc, base)
	prepareDocument(doc, p)

	content, err := toMarkdown(doc, p)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}

	return &Page{
		URL:           base.String(),
		Content:       content,
		InternalLinks: internal,
		ExternalLinks: external,
		FetchedAt:     time.Now().UTC(),
	}, nil
}
