package biz

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lk2023060901/prospect-finder/internal/crawler"
	"github.com/lk2023060901/prospect-finder/internal/pkg/metrics"
)

// ExtractionConfig controls StructuredExtractor.
type ExtractionConfig struct {
	Prompt              PromptConfig
	MaxContentTokens    int
	NearbyPostcodeRange int
}

// StructuredExtractor turns a crawled page into postcode-matched records.
type StructuredExtractor struct {
	llm       LLM
	truncator Truncator
	cfg       ExtractionConfig
	logger    *zap.Logger
}

// NewStructuredExtractor creates a StructuredExtractor.
func NewStructuredExtractor(llm LLM, truncator Truncator, cfg ExtractionConfig, logger *zap.Logger) *StructuredExtractor {
	if cfg.Prompt.MaxTokens <= 0 {
		cfg.Prompt.MaxTokens = 4000
	}
	return &StructuredExtractor{llm: llm, truncator: truncator, cfg: cfg, logger: logger}
}

// Extract returns the records found on page whose postcode matches postcode.
// LLM and parse failures are logged and produce no records.
func (e *StructuredExtractor) Extract(ctx context.Context, page *crawler.Page, location, postcode string) []*BusinessRecord {
	if page == nil || strings.TrimSpace(page.Content) == "" {
		return nil
	}
	log := e.logger.With(zap.String("url", page.URL))

	content := page.Content
	if e.truncator != nil {
		content = e.truncator.Truncate(content, e.cfg.MaxContentTokens)
	}

	text, err := complete(ctx, e.llm, e.cfg.Prompt, extractionSystemPrompt, buildExtractionPrompt(content, location, postcode))
	if err != nil {
		log.Warn("extraction llm call failed", zap.Error(err))
		return nil
	}

	items, err := parseArray(StageExtraction, text)
	if err != nil {
		log.Warn("extraction response not parseable", zap.Error(err))
		return nil
	}

	now := time.Now().UTC()
	records := make([]*BusinessRecord, 0, len(items))
	for _, item := range items {
		if !item.IsObject() {
			continue
		}
		rec := &BusinessRecord{}
		rec.FillMissing(fieldValues(item))
		if rec.IsEmpty() {
			continue
		}
		if !PostcodeMatches(rec, postcode, e.cfg.NearbyPostcodeRange) {
			log.Debug("record dropped by postcode filter",
				zap.String("business_name", rec.BusinessName),
				zap.String("postcode", rec.Postcode))
			continue
		}

		rec.ID = uuid.NewString()
		rec.Location = location
		rec.RequestedPostcode = postcode
		rec.SourceURL = page.URL
		rec.CreatedAt = now
		rec.Advance(StateExtracted)
		records = append(records, rec)
	}

	metrics.RecordsExtracted.Add(float64(len(records)))
	log.Info("extracted records", zap.Int("returned", len(items)), zap.Int("kept", len(records)))
	return records
}

var postcodeToken = regexp.MustCompile(`\b\d{4}\b`)

// RecordPostcode returns the record's postcode field or, failing that, the
// last four-digit token of its address.
func RecordPostcode(rec *BusinessRecord) string {
	if m := postcodeToken.FindString(rec.Postcode); m != "" {
		return m
	}
	tokens := postcodeToken.FindAllString(rec.Address, -1)
	if len(tokens) == 0 {
		return ""
	}
	return tokens[len(tokens)-1]
}

// PostcodeMatches reports whether the record's postcode equals want or lies
// within nearby of it. Records without a postcode never match.
func PostcodeMatches(rec *BusinessRecord, want string, nearby int) bool {
	got := RecordPostcode(rec)
	if got == "" {
		return false
	}
	want = strings.TrimSpace(want)
	if got == want {
		return true
	}

	g, err1 := strconv.Atoi(got)
	w, err2 := strconv.Atoi(want)
	if err1 != nil || err2 != nil {
		return false
	}
	diff := g - w
	if diff < 0 {
		diff = -diff
	}
	return diff <= nearby
}
