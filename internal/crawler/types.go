// Package crawler fetches a page and turns it into markdown plus link lists.
// Failures never escape as Go errors: every call returns a Result.
package crawler

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrEmptyContent      = errors.New("no content extracted")
	ErrSelectorNotFound  = errors.New("selector not found")
	ErrRobotsDisallowed  = errors.New("disallowed by robots.txt")
	ErrInvalidURL        = errors.New("invalid url")
	ErrCacheDecode       = errors.New("cached page could not be decoded")
	ErrUnsupportedScheme = errors.New("unsupported url scheme")
)

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.Code)
}

// Link is an anchor found on a page.
type Link struct {
	Href string `json:"href"`
	Text string `json:"text"`
}

// Page is a successfully crawled page.
type Page struct {
	URL           string    `json:"url"`
	Content       string    `json:"content"` // markdown
	InternalLinks []Link    `json:"internal_links"`
	ExternalLinks []Link    `json:"external_links"`
	StatusCode    int       `json:"status_code"`
	FetchedAt     time.Time `json:"fetched_at"`
}

// Result is the tagged outcome of one crawl. Exactly one of Page and Err is set.
type Result struct {
	Page *Page
	URL  string
	Err  error
}

// OK reports whether the crawl produced a page.
func (r Result) OK() bool {
	return r.Err == nil && r.Page != nil
}

func failed(url string, err error) Result {
	return Result{URL: url, Err: err}
}

// ContactInfo is the outcome of one regex contact extraction.
type ContactInfo struct {
	Success     bool   `json:"success"`
	PhoneNumber string `json:"phone_number"`
	Email       string `json:"email"`
	URL         string `json:"url"`
	Error       string `json:"error,omitempty"`
}
