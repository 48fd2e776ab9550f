package biz

import (
	"context"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/lk2023060901/prospect-finder/internal/crawler"
)

// PageCrawler fetches one page.
type PageCrawler interface {
	Crawl(ctx context.Context, url string, profile crawler.Profile) crawler.Result
}

// ContactExtractor pulls phone and email out of one page with regexes.
type ContactExtractor interface {
	ExtractContactInfo(ctx context.Context, url string) crawler.ContactInfo
}

// EnrichConfig controls EnrichmentResolver.
type EnrichConfig struct {
	Prompt       PromptConfig
	ContactPaths []string // probed in order against the site root
}

// DefaultContactPaths is the Pass-2 probe order. "/" is the site root.
var DefaultContactPaths = []string{"/contact", "/contact-us", "/contact.html", "/contact-us.html", "/"}

// EnrichmentResolver fills missing record fields in two passes. Every write
// goes through BusinessRecord.FillMissing so populated fields are kept.
type EnrichmentResolver struct {
	pages    PageCrawler
	contacts ContactExtractor
	llm      LLM
	cfg      EnrichConfig
	logger   *zap.Logger
}

// NewEnrichmentResolver creates an EnrichmentResolver.
func NewEnrichmentResolver(pages PageCrawler, contacts ContactExtractor, llm LLM, cfg EnrichConfig, logger *zap.Logger) *EnrichmentResolver {
	if cfg.Prompt.MaxTokens <= 0 {
		cfg.Prompt.MaxTokens = 4000
	}
	if len(cfg.ContactPaths) == 0 {
		cfg.ContactPaths = DefaultContactPaths
	}
	return &EnrichmentResolver{pages: pages, contacts: contacts, llm: llm, cfg: cfg, logger: logger}
}

// Enrich runs both passes.
func (r *EnrichmentResolver) Enrich(ctx context.Context, rec *BusinessRecord) {
	r.EnrichPrimary(ctx, rec)
	rec.Advance(StateContactResolved)
	r.EnrichSecondary(ctx, rec)
	rec.Advance(StateEnriched)
}

// EnrichPrimary is the LLM-guided pass: find a contact page from the website,
// or use the internal navigation link, and let the LLM fill empty fields.
func (r *EnrichmentResolver) EnrichPrimary(ctx context.Context, rec *BusinessRecord) {
	log := r.recordLogger(rec)

	switch {
	case strings.TrimSpace(rec.WebsiteLink) != "":
		res := r.pages.Crawl(ctx, rec.WebsiteLink, crawler.GeneralProfile())
		if !res.OK() {
			log.Info("website crawl failed", zap.String("url", rec.WebsiteLink), zap.Error(res.Err))
			return
		}
		link, ok := FindContactLink(res.Page)
		if !ok {
			log.Debug("no contact link on website", zap.String("url", rec.WebsiteLink))
			return
		}
		r.fillFromURL(ctx, rec, link.Href)

	case strings.TrimSpace(rec.InternalNavigationLink) != "":
		r.fillFromURL(ctx, rec, rec.InternalNavigationLink)

	default:
		rec.FillMissing(map[Field]string{FieldPhoneNumber: InternalLinkNotFound})
	}
}

// EnrichSecondary is the regex pass: probe well-known contact paths on the
// website until both phone and email are known. Without a website it
// re-reads the internal navigation link through the LLM.
func (r *EnrichmentResolver) EnrichSecondary(ctx context.Context, rec *BusinessRecord) {
	log := r.recordLogger(rec)

	switch {
	case strings.TrimSpace(rec.WebsiteLink) != "":
		root, err := siteRoot(rec.WebsiteLink)
		if err != nil {
			log.Info("website link not usable for probing", zap.String("url", rec.WebsiteLink), zap.Error(err))
			return
		}
		for _, path := range r.cfg.ContactPaths {
			if rec.HasContact() || ctx.Err() != nil {
				return
			}
			probe := joinPath(root, path)
			info := r.contacts.ExtractContactInfo(ctx, probe)
			if filled := rec.MergeContact(info); len(filled) > 0 {
				log.Debug("contact probe filled fields", zap.String("url", probe), zap.Any("fields", filled))
			}
		}

	case strings.TrimSpace(rec.InternalNavigationLink) != "":
		r.fillFromURL(ctx, rec, rec.InternalNavigationLink)
	}
}

// NullFillFields are the only fields FillNulls may complete.
var NullFillFields = []Field{
	FieldEmail,
	FieldPhoneNumber,
	FieldWebsiteLink,
	FieldAddress,
	FieldPostcode,
}

// FillNulls asks the LLM to complete empty contact fields of rec from
// content. Name and navigation link are never taken from the reply.
func (r *EnrichmentResolver) FillNulls(ctx context.Context, rec *BusinessRecord, content string) []Field {
	log := r.recordLogger(rec)

	text, err := complete(ctx, r.llm, r.cfg.Prompt, extractionSystemPrompt, buildNullFillPrompt(rec, content))
	if err != nil {
		log.Warn("null-fill llm call failed", zap.Error(err))
		return nil
	}
	obj, err := parseObject(StageEnrichment, text)
	if err != nil {
		log.Warn("null-fill response not parseable", zap.Error(err))
		return nil
	}

	values := fieldValues(obj)
	candidates := make(map[Field]string, len(NullFillFields))
	for _, f := range NullFillFields {
		if v, ok := values[f]; ok {
			candidates[f] = v
		}
	}
	filled := rec.FillMissing(candidates)
	if len(filled) > 0 {
		log.Debug("null-fill filled fields", zap.Any("fields", filled))
	}
	return filled
}

func (r *EnrichmentResolver) fillFromURL(ctx context.Context, rec *BusinessRecord, target string) {
	res := r.pages.Crawl(ctx, target, crawler.GeneralProfile())
	if !res.OK() {
		r.recordLogger(rec).Info("crawl failed, skipping null-fill", zap.String("url", target), zap.Error(res.Err))
		return
	}
	r.FillNulls(ctx, rec, res.Page.Content)
}

func (r *EnrichmentResolver) recordLogger(rec *BusinessRecord) *zap.Logger {
	return r.logger.With(zap.String("record_id", rec.ID), zap.String("business_name", rec.BusinessName))
}

// FindContactLink returns the first internal, then external, link whose href
// or text mentions "contact".
func FindContactLink(page *crawler.Page) (crawler.Link, bool) {
	if page == nil {
		return crawler.Link{}, false
	}
	for _, links := range [][]crawler.Link{page.InternalLinks, page.ExternalLinks} {
		for _, l := range links {
			if isContactLink(l) {
				return l, true
			}
		}
	}
	return crawler.Link{}, false
}

func isContactLink(l crawler.Link) bool {
	href := strings.ToLower(l.Href)
	text := strings.ToLower(l.Text)
	return strings.Contains(href, "contact") || strings.Contains(text, "contact")
}

// siteRoot reduces a website link to scheme://host.
func siteRoot(link string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(link))
	if err != nil {
		return nil, err
	}
	if u.Scheme == "" {
		u, err = url.Parse("https://" + strings.TrimSpace(link))
		if err != nil {
			return nil, err
		}
	}
	if u.Host == "" {
		return nil, crawler.ErrInvalidURL
	}
	return &url.URL{Scheme: u.Scheme, Host: u.Host}, nil
}

func joinPath(root *url.URL, path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return root.String() + path
}
