package crawler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/temoto/robotstxt"
)

const (
	defaultRobotsCacheTTL = time.Hour
	robotsTxtPath         = "/robots.txt"
	maxRobotsBodyBytes    = 512 * 1024
)

// RobotsChecker checks and caches robots.txt rules per host.
type RobotsChecker struct {
	httpClient *http.Client
	userAgent  string
	cacheTTL   time.Duration

	mu    sync.RWMutex
	cache map[string]*robotsCacheEntry // keyed by scheme://host
}

type robotsCacheEntry struct {
	data      *robotstxt.RobotsData
	fetchedAt time.Time
	allowAll  bool // robots.txt missing, unreadable or not 2xx
}

// NewRobotsChecker creates a RobotsChecker. A nil client gets a 10s timeout.
func NewRobotsChecker(httpClient *http.Client, userAgent string, cacheTTL time.Duration) *RobotsChecker {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if cacheTTL <= 0 {
		cacheTTL = defaultRobotsCacheTTL
	}
	return &RobotsChecker{
		httpClient: httpClient,
		userAgent:  userAgent,
		cacheTTL:   cacheTTL,
		cache:      make(map[string]*robotsCacheEntry),
	}
}

// IsAllowed reports whether rawURL may be fetched. Fetch failures, 404 and
// 5xx all count as allow.
func (r *RobotsChecker) IsAllowed(ctx context.Context, rawURL string) (bool, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false, fmt.Errorf("robots: parse url: %w", err)
	}
	host := strings.ToLower(parsed.Host)
	if host == "" {
		return false, fmt.Errorf("robots: empty host in url %q", rawURL)
	}
	scheme := parsed.Scheme
	if scheme == "" {
		scheme = "https"
	}

	entry := r.entry(ctx, scheme, host)
	if entry.allowAll {
		return true, nil
	}

	path := parsed.EscapedPath()
	if path == "" {
		path = "/"
	}
	return entry.data.TestAgent(path, r.userAgent), nil
}

func (r *RobotsChecker) entry(ctx context.Context, scheme, host string) *robotsCacheEntry {
	key := scheme + "://" + host

	r.mu.RLock()
	entry, ok := r.cache[key]
	r.mu.RUnlock()
	if ok && time.Since(entry.fetchedAt) <= r.cacheTTL {
		return entry
	}

	entry = r.fetch(ctx, key+robotsTxtPath)
	r.mu.Lock()
	r.cache[key] = entry
	r.mu.Unlock()
	return entry
}

func (r *RobotsChecker) fetch(ctx context.Context, robotsURL string) *robotsCacheEntry {
	allowAll := &robotsCacheEntry{fetchedAt: time.Now(), allowAll: true}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, http.NoBody)
	if err != nil {
		return allowAll
	}
	req.Header.Set("User-Agent", r.userAgent)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return allowAll
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return allowAll
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxRobotsBodyBytes))
	if err != nil {
		return allowAll
	}
	data, err := robotstxt.FromBytes(body)
	if err != nil {
		return allowAll
	}
	return &robotsCacheEntry{data: data, fetchedAt: time.Now()}
}
