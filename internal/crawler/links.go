package crawler

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// extractLinks resolves every anchor against base and splits them into
// same-host and other-host lists. Duplicate hrefs keep their first text.
func extractLinks(doc *goquery.Document, base *url.URL) (internal, external []Link) {
	internal, external = []Link{}, []Link{}
	seen := make(map[string]bool)

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		href = strings.TrimSpace(href)
		if skipHref(href) {
			return
		}

		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		abs := base.ResolveReference(ref)
		if abs.Scheme != "http" && abs.Scheme != "https" {
			return
		}
		abs.Fragment = ""

		key := abs.String()
		if seen[key] {
			return
		}
		seen[key] = true

		link := Link{Href: key, Text: collapseSpace(s.Text())}
		if sameSite(abs, base) {
			internal = append(internal, link)
		} else {
			external = append(external, link)
		}
	})
	return internal, external
}

func skipHref(href string) bool {
	if href == "" || strings.HasPrefix(href, "#") {
		return true
	}
	lower := strings.ToLower(href)
	for _, prefix := range []string{"javascript:", "mailto:", "tel:", "data:"} {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}

// sameSite compares hosts ignoring case and a leading "www.".
func sameSite(a, b *url.URL) bool {
	return normalizeHost(a.Hostname()) == normalizeHost(b.Hostname())
}

func normalizeHost(h string) string {
	return strings.TrimPrefix(strings.ToLower(h), "www.")
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
