package crawler

import (
	"strings"
	"unicode"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
)

var overlaySelectors = []string{
	"[role=dialog]",
	"[aria-modal=true]",
	".modal",
	".popup",
	".overlay",
	"[id^=cookie]",
	"[class*=cookie-banner]",
	"[class*=newsletter-popup]",
}

// prepareDocument strips the nodes the profile excludes.
func prepareDocument(doc *goquery.Document, p Profile) {
	if len(p.ExcludedTags) > 0 {
		doc.Find(strings.Join(p.ExcludedTags, ",")).Remove()
	}
	if p.RemoveOverlays {
		doc.Find(strings.Join(overlaySelectors, ",")).Remove()
	}
	if p.ExcludeImages {
		doc.Find("img,picture,svg").Remove()
	}
	if !p.ProcessIframes {
		doc.Find("iframe").Remove()
	}
}

// toMarkdown converts the prepared document and applies the word filter.
func toMarkdown(doc *goquery.Document, p Profile) (string, error) {
	html, err := doc.Html()
	if err != nil {
		return "", err
	}

	converter := md.NewConverter("", true, nil)
	converter.Remove("script", "style", "noscript", "template")
	markdown, err := converter.ConvertString(html)
	if err != nil {
		return "", err
	}
	return filterBlocks(markdown, p.WordCountThreshold), nil
}

// filterBlocks drops markdown blocks with fewer than threshold words.
// Headings, blocks carrying a link and blocks with digits or "@" are kept so
// short contact lines survive.
func filterBlocks(markdown string, threshold int) string {
	blocks := strings.Split(strings.ReplaceAll(markdown, "\r\n", "\n"), "\n\n")
	kept := make([]string, 0, len(blocks))
	for _, b := range blocks {
		b = strings.TrimSpace(b)
		if b == "" {
			continue
		}
		if threshold <= 0 || keepBlock(b, threshold) {
			kept = append(kept, b)
		}
	}
	return strings.Join(kept, "\n\n")
}

func keepBlock(b string, threshold int) bool {
	if strings.HasPrefix(b, "#") || strings.Contains(b, "](") || strings.ContainsRune(b, '@') {
		return true
	}
	if strings.IndexFunc(b, unicode.IsDigit) >= 0 {
		return true
	}
	return len(strings.Fields(b)) >= threshold
}
