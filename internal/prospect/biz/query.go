package biz

import (
	"context"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// QueryGenerator asks the LLM for search queries covering the activity and
// venue taxonomies.
type QueryGenerator struct {
	llm    LLM
	cfg    PromptConfig
	logger *zap.Logger
}

// NewQueryGenerator creates a QueryGenerator.
func NewQueryGenerator(llm LLM, cfg PromptConfig, logger *zap.Logger) *QueryGenerator {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 1024
	}
	return &QueryGenerator{llm: llm, cfg: cfg, logger: logger}
}

// Generate returns at most MaxQueries non-blank queries. Any failure is
// wrapped in ErrQueryGeneration.
func (g *QueryGenerator) Generate(ctx context.Context, location, postcode string) ([]string, error) {
	if strings.TrimSpace(location) == "" || strings.TrimSpace(postcode) == "" {
		return nil, ErrEmptyLocation
	}

	text, err := complete(ctx, g.llm, g.cfg, querySystemPrompt, buildQueryPrompt(location, postcode))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrQueryGeneration, err)
	}

	items, err := parseArray(StageQueries, text)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrQueryGeneration, err)
	}

	queries := make([]string, 0, len(items))
	for _, item := range items {
		q := queryText(item)
		if q == "" {
			continue
		}
		queries = append(queries, q)
		if len(queries) == MaxQueries {
			break
		}
	}
	if len(queries) == 0 {
		return nil, fmt.Errorf("%w: %w", ErrQueryGeneration,
			&ParseError{Stage: StageQueries, Raw: text, Err: errNoQueries})
	}

	g.logger.Info("generated search queries",
		zap.Int("count", len(queries)),
		zap.Int("returned", len(items)))
	return queries, nil
}

// queryText accepts plain strings and {"query": "..."} objects.
func queryText(item gjson.Result) string {
	if item.Type == gjson.String {
		return strings.TrimSpace(item.String())
	}
	if item.IsObject() {
		return strings.TrimSpace(item.Get("query").String())
	}
	return ""
}
