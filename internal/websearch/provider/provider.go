package provider

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/lk2023060901/prospect-finder/internal/websearch/types"
)

// Provider runs web searches against one backend.
type Provider interface {
	Search(ctx context.Context, req *types.SearchRequest) (*types.SearchResponse, error)
	ID() types.ProviderID
}

// Constructor builds a Provider from a defaulted, validated config.
type Constructor func(types.ProviderConfig) (Provider, error)

var constructors = map[types.ProviderID]Constructor{
	types.ProviderTavily: NewTavilyProvider,
}

// New applies defaults, validates config and builds the named provider.
func New(config types.ProviderConfig) (Provider, error) {
	config = config.WithDefaults()
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	constructor, ok := constructors[config.ID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", types.ErrProviderNotFound, config.ID)
	}
	return constructor(config)
}

// Providers lists the registered provider IDs in sorted order.
func Providers() []types.ProviderID {
	ids := make([]types.ProviderID, 0, len(constructors))
	for id := range constructors {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// maxErrorBody bounds how much of a failed response is kept in the error.
const maxErrorBody = 4096

// apiClient posts JSON to a search API, rotating keys and retrying
// temporary failures with exponential backoff.
type apiClient struct {
	id         types.ProviderID
	host       string
	keys       []string
	next       atomic.Uint64
	maxRetries int
	http       *http.Client
}

func newAPIClient(config types.ProviderConfig) *apiClient {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxIdleConnsPerHost = 16
	return &apiClient{
		id:         config.ID,
		host:       config.APIHost,
		keys:       config.Keys(),
		maxRetries: config.MaxRetries,
		http:       &http.Client{Timeout: config.Timeout, Transport: transport},
	}
}

// key returns the next API key. Safe for concurrent use by the fetch workers.
func (c *apiClient) key() string {
	if len(c.keys) == 0 {
		return ""
	}
	i := c.next.Add(1) - 1
	return c.keys[i%uint64(len(c.keys))]
}

// retryUnit is the first backoff step; tests shrink it.
var retryUnit = time.Second

// postJSON sends body to path and returns the 200 response body.
func (c *apiClient) postJSON(ctx context.Context, path string, body []byte) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			wait := time.Duration(1<<uint(attempt-1)) * retryUnit
			var perr *types.ProviderError
			if errors.As(lastErr, &perr) && perr.RetryAfter > wait {
				wait = perr.RetryAfter
			}
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		out, err := c.post(ctx, path, body)
		if err == nil {
			return out, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		lastErr = err
		var perr *types.ProviderError
		if !errors.As(err, &perr) || !perr.Temporary() {
			return nil, err
		}
	}
	return nil, fmt.Errorf("search failed after %d attempts: %w", c.maxRetries, lastErr)
}

func (c *apiClient) post(ctx context.Context, path string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "prospect-finder/1.0")
	req.Header.Set("Authorization", "Bearer "+c.key())

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &types.ProviderError{Provider: c.id, Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &types.ProviderError{
			Provider:   c.id,
			StatusCode: resp.StatusCode,
			Message:    string(bytes.TrimSpace(msg)),
			RetryAfter: retryAfter(resp.Header),
		}
	}

	out, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &types.ProviderError{Provider: c.id, Message: "failed to read response", Err: err}
	}
	return out, nil
}

func retryAfter(h http.Header) time.Duration {
	secs, err := strconv.Atoi(h.Get("Retry-After"))
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
