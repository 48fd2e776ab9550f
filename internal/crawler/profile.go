package crawler

import "time"

// CacheMode controls use of the page cache for one crawl.
type CacheMode int

const (
	CacheEnabled CacheMode = iota
	CacheBypass
	CacheReadOnly
	CacheWriteOnly
)

func (m CacheMode) readable() bool { return m == CacheEnabled || m == CacheReadOnly }
func (m CacheMode) writable() bool { return m == CacheEnabled || m == CacheWriteOnly }

// Profile is the per-call crawl configuration.
type Profile struct {
	Name               string // cache key namespace
	WordCountThreshold int
	ExcludedTags       []string
	ProcessIframes     bool
	ExcludeImages      bool
	Cache              CacheMode
	WaitFor            string // CSS selector that must match
	PageTimeout        time.Duration
	RespectRobots      bool
	RemoveOverlays     bool
}

// GeneralProfile is used for search-result pages and contact-link discovery.
func GeneralProfile() Profile {
	return Profile{
		Name:               "general",
		WordCountThreshold: 10,
		ExcludeImages:      true,
		Cache:              CacheEnabled,
		WaitFor:            "body",
		PageTimeout:        20 * time.Second,
	}
}

// ContactProfile is the stricter profile for regex contact probing.
func ContactProfile() Profile {
	return Profile{
		Name:               "contact",
		WordCountThreshold: 5,
		ExcludedTags:       []string{"script", "style", "header", "nav", "footer"},
		ExcludeImages:      true,
		Cache:              CacheEnabled,
		WaitFor:            "body",
		PageTimeout:        30 * time.Second,
		RespectRobots:      true,
		RemoveOverlays:     true,
	}
}
