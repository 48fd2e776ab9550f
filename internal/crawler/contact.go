package crawler

import (
	"context"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

var (
	phonePattern = regexp.MustCompile(`(?:\+61[ -]?[23478]|\(0[23478]\)|0[23478])(?:[ -]?[0-9]){8}|04[0-9]{2}(?:[ -]?[0-9]){6}`)
	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)

	excludedEmailParts    = []string{"example.com", "domain.com", "sentry"}
	excludedEmailSuffixes = []string{".png", ".jpg", ".jpeg", ".gif", ".svg", ".webp"}

	markdownParser = goldmark.New().Parser()
)

// ExtractContactInfo crawls url with the contact profile and pulls the first
// Australian phone number and the first plausible email out of it. Success
// means at least one of them was found.
func (c *Crawler) ExtractContactInfo(ctx context.Context, url string) ContactInfo {
	res := c.Crawl(ctx, url, ContactProfile())
	if !res.OK() {
		return ContactInfo{URL: url, Error: res.Err.Error()}
	}

	info := ContactInfo{URL: url}
	plain := plainText(res.Page.Content)
	info.PhoneNumber = FindPhone(plain)
	info.Email = FindEmail(plain)
	info.Success = info.PhoneNumber != "" || info.Email != ""
	return info
}

// FindPhone returns the first Australian landline or mobile number in s with
// spaces, dashes and area-code brackets removed.
func FindPhone(s string) string {
	m := phonePattern.FindString(s)
	if m == "" {
		return ""
	}
	return strings.NewReplacer(" ", "", "-", "", "(", "", ")", "").Replace(m)
}

// FindEmail returns the first email in s that is not a placeholder or asset
// name, lowercased.
func FindEmail(s string) string {
	for _, m := range emailPattern.FindAllString(s, -1) {
		lower := strings.ToLower(m)
		if excludedEmail(lower) {
			continue
		}
		return lower
	}
	return ""
}

func excludedEmail(email string) bool {
	for _, part := range excludedEmailParts {
		if strings.Contains(email, part) {
			return true
		}
	}
	for _, suffix := range excludedEmailSuffixes {
		if strings.HasSuffix(email, suffix) {
			return true
		}
	}
	return false
}

// plainText renders markdown to text, keeping mailto: and tel: targets so
// contact details hidden behind link text are still matched.
func plainText(markdown string) string {
	src := []byte(markdown)
	doc := markdownParser.Parse(text.NewReader(src))

	var b strings.Builder
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			if n.Type() == ast.TypeBlock {
				b.WriteByte('\n')
			}
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.Text:
			b.Write(node.Segment.Value(src))
			if node.SoftLineBreak() || node.HardLineBreak() {
				b.WriteByte('\n')
			}
		case *ast.String:
			b.Write(node.Value)
		case *ast.AutoLink:
			b.WriteString(" ")
			b.Write(node.URL(src))
			b.WriteString(" ")
		case *ast.Link:
			dest := string(node.Destination)
			for _, scheme := range []string{"mailto:", "tel:"} {
				if strings.HasPrefix(strings.ToLower(dest), scheme) {
					b.WriteString(" " + dest[len(scheme):] + " ")
				}
			}
		case *ast.CodeBlock, *ast.FencedCodeBlock:
			lines := n.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				b.Write(seg.Value(src))
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}
