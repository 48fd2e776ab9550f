package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/tidwall/gjson"

	"github.com/lk2023060901/prospect-finder/internal/websearch/types"
)

// TavilyProvider implements the Tavily search API.
type TavilyProvider struct {
	client *apiClient
}

// NewTavilyProvider creates a Tavily provider.
func NewTavilyProvider(config types.ProviderConfig) (Provider, error) {
	return &TavilyProvider{client: newAPIClient(config)}, nil
}

func (p *TavilyProvider) ID() types.ProviderID {
	return types.ProviderTavily
}

type tavilyRequest struct {
	Query             string   `json:"query"`
	SearchDepth       string   `json:"search_depth"`
	MaxResults        int      `json:"max_results"`
	IncludeDomains    []string `json:"include_domains,omitempty"`
	ExcludeDomains    []string `json:"exclude_domains,omitempty"`
	IncludeAnswer     bool     `json:"include_answer"`
	IncludeRawContent bool     `json:"include_raw_content"`
	IncludeImages     bool     `json:"include_images"`
}

// Search runs one query. Results without a URL are dropped.
func (p *TavilyProvider) Search(ctx context.Context, req *types.SearchRequest) (*types.SearchResponse, error) {
	if err := req.Normalize(); err != nil {
		return nil, err
	}
	start := time.Now()

	body, err := json.Marshal(tavilyRequest{
		Query:          req.Query,
		SearchDepth:    req.SearchDepth,
		MaxResults:     req.MaxResults,
		IncludeDomains: req.IncludeDomains,
		ExcludeDomains: req.ExcludeDomains,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	raw, err := p.client.postJSON(ctx, "/search", body)
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(raw) {
		return nil, &types.ProviderError{Provider: p.ID(), Message: "invalid JSON response"}
	}

	resp := &types.SearchResponse{Query: req.Query, Provider: p.ID()}
	gjson.GetBytes(raw, "results").ForEach(func(_, r gjson.Result) bool {
		url := r.Get("url").String()
		if url == "" {
			return true
		}
		resp.Results = append(resp.Results, &types.SearchResult{
			Title:   r.Get("title").String(),
			URL:     url,
			Content: r.Get("content").String(),
			Score:   r.Get("score").Float(),
		})
		return true
	})
	resp.Took = time.Since(start).Milliseconds()
	return resp, nil
}
