package types

import "strings"

// SearchRequest is one web search.
type SearchRequest struct {
	Query          string
	MaxResults     int
	SearchDepth    string // basic or advanced
	IncludeDomains []string
	ExcludeDomains []string
}

// Normalize trims the query and fills defaults.
func (r *SearchRequest) Normalize() error {
	r.Query = strings.TrimSpace(r.Query)
	if r.Query == "" {
		return ErrEmptyQuery
	}
	if r.MaxResults <= 0 {
		r.MaxResults = 5
	}
	if r.SearchDepth == "" {
		r.SearchDepth = "basic"
	}
	return nil
}

// SearchResponse holds ranked results for one query.
type SearchResponse struct {
	Query    string
	Results  []*SearchResult
	Took     int64 // milliseconds
	Provider ProviderID
}

type SearchResult struct {
	Title   string
	URL     string
	Content string
	Score   float64
}

// URLs returns the non-empty result URLs in rank order.
func (r *SearchResponse) URLs() []string {
	if r == nil {
		return nil
	}
	urls := make([]string, 0, len(r.Results))
	for _, res := range r.Results {
		if res != nil && res.URL != "" {
			urls = append(urls, res.URL)
		}
	}
	return urls
}
