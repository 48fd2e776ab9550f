package types

import (
	"strings"
	"time"
)

type ProviderID string

const (
	ProviderTavily ProviderID = "tavily"
)

// DefaultTavilyHost is the public Tavily endpoint.
const DefaultTavilyHost = "https://api.tavily.com"

const (
	DefaultTimeout    = 30 * time.Second
	DefaultMaxRetries = 3
)

// ProviderConfig configures one search backend.
type ProviderConfig struct {
	ID         ProviderID
	APIHost    string
	APIKey     string // comma separated keys are used round-robin
	Timeout    time.Duration
	MaxRetries int // attempts per search, including the first
}

// WithDefaults returns a copy with the zero fields filled in.
func (c ProviderConfig) WithDefaults() ProviderConfig {
	if c.APIHost == "" && c.ID == ProviderTavily {
		c.APIHost = DefaultTavilyHost
	}
	c.APIHost = strings.TrimRight(c.APIHost, "/")
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = DefaultMaxRetries
	}
	return c
}

// Keys splits APIKey on commas and drops blanks.
func (c ProviderConfig) Keys() []string {
	var keys []string
	for _, k := range strings.Split(c.APIKey, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

func (c ProviderConfig) Validate() error {
	if c.ID == "" {
		return ErrInvalidProviderID
	}
	if c.APIHost == "" {
		return ErrInvalidAPIHost
	}
	if len(c.Keys()) == 0 {
		return ErrMissingAPIKey
	}
	return nil
}
