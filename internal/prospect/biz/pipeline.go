package biz

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/lk2023060901/prospect-finder/internal/crawler"
	"github.com/lk2023060901/prospect-finder/internal/pkg/logger"
	"github.com/lk2023060901/prospect-finder/internal/pkg/metrics"
)

// Sink persists one record into a named collection.
type Sink interface {
	Add(ctx context.Context, collection string, rec *BusinessRecord) (bool, error)
}

// Stage interfaces consumed by the pipeline.
type (
	QuerySource interface {
		Generate(ctx context.Context, location, postcode string) ([]string, error)
	}
	URLSource interface {
		Fetch(ctx context.Context, queries []string) []string
	}
	RecordExtractor interface {
		Extract(ctx context.Context, page *crawler.Page, location, postcode string) []*BusinessRecord
	}
	RecordEnricher interface {
		Enrich(ctx context.Context, rec *BusinessRecord)
	}
)

// PipelineConfig controls one run.
type PipelineConfig struct {
	Collection string
	Timeout    time.Duration // 0 means no limit
}

// Stats counts what each stage produced.
type Stats struct {
	Queries         int `json:"queries"`
	URLs            int `json:"urls"`
	PagesCrawled    int `json:"pages_crawled"`
	CrawlFailures   int `json:"crawl_failures"`
	Records         int `json:"records"`
	Persisted       int `json:"persisted"`
	PersistFailures int `json:"persist_failures"`
}

// ProcessResult is the outcome of Process.
type ProcessResult struct {
	Records         []*BusinessRecord
	Persisted       int
	PersistFailures int
	Duration        time.Duration
	Stats           Stats
}

// PipelineUseCase runs generate, search, crawl, extract, enrich and persist
// for one location.
type PipelineUseCase struct {
	queries   QuerySource
	urls      URLSource
	pages     PageCrawler
	extractor RecordExtractor
	enricher  RecordEnricher
	sink      Sink
	cfg       PipelineConfig
	logger    *zap.Logger
}

// NewPipelineUseCase creates a PipelineUseCase.
func NewPipelineUseCase(
	queries QuerySource,
	urls URLSource,
	pages PageCrawler,
	extractor RecordExtractor,
	enricher RecordEnricher,
	sink Sink,
	cfg PipelineConfig,
	logger *zap.Logger,
) *PipelineUseCase {
	if cfg.Collection == "" {
		cfg.Collection = "prospects"
	}
	return &PipelineUseCase{
		queries:   queries,
		urls:      urls,
		pages:     pages,
		extractor: extractor,
		enricher:  enricher,
		sink:      sink,
		cfg:       cfg,
		logger:    logger,
	}
}

// GenerateQueries exposes the first stage on its own.
func (uc *PipelineUseCase) GenerateQueries(ctx context.Context, location, postcode string) ([]string, error) {
	return uc.queries.Generate(ctx, location, postcode)
}

// Process runs the whole pipeline. Only query generation failure is fatal;
// every later stage degrades per item.
func (uc *PipelineUseCase) Process(ctx context.Context, location, postcode string) (*ProcessResult, error) {
	start := time.Now()
	location, postcode = strings.TrimSpace(location), strings.TrimSpace(postcode)
	if location == "" || postcode == "" {
		return nil, ErrEmptyLocation
	}

	if uc.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, uc.cfg.Timeout)
		defer cancel()
	}
	ctx = logger.WithTarget(ctx, location, postcode)
	log := uc.logger.With(logger.Fields(ctx)...)

	result := &ProcessResult{Records: []*BusinessRecord{}}

	stageStart := time.Now()
	queries, err := uc.queries.Generate(ctx, location, postcode)
	metrics.ObserveStage(StageQueries, stageStart)
	if err != nil {
		return nil, &StageError{Stage: StageQueries, Err: err}
	}
	result.Stats.Queries = len(queries)

	stageStart = time.Now()
	urls := uc.urls.Fetch(ctx, queries)
	metrics.ObserveStage(StageSearch, stageStart)
	result.Stats.URLs = len(urls)
	log.Info("search complete", zap.Int("queries", len(queries)), zap.Int("urls", len(urls)))

	stageStart = time.Now()
	pages := make([]*crawler.Page, 0, len(urls))
	for _, u := range urls {
		res := uc.pages.Crawl(ctx, u, crawler.GeneralProfile())
		if !res.OK() {
			result.Stats.CrawlFailures++
			log.Info("skipping page", zap.String("url", u), zap.Error(res.Err))
			continue
		}
		pages = append(pages, res.Page)
	}
	metrics.ObserveStage(StageCrawl, stageStart)
	result.Stats.PagesCrawled = len(pages)

	stageStart = time.Now()
	for _, page := range pages {
		result.Records = append(result.Records, uc.extractor.Extract(ctx, page, location, postcode)...)
	}
	metrics.ObserveStage(StageExtraction, stageStart)
	result.Stats.Records = len(result.Records)

	if len(result.Records) == 0 {
		result.Duration = time.Since(start)
		log.Info("no records extracted", zap.Any("stats", result.Stats))
		return result, nil
	}

	stageStart = time.Now()
	for _, rec := range result.Records {
		uc.enrichOne(ctx, rec, log)
	}
	metrics.ObserveStage(StageEnrichment, stageStart)

	stageStart = time.Now()
	for _, rec := range result.Records {
		if uc.persist(ctx, rec, log) {
			result.Persisted++
			rec.Advance(StatePersisted)
		} else {
			result.PersistFailures++
		}
	}
	metrics.ObserveStage(StagePersist, stageStart)
	result.Stats.Persisted = result.Persisted
	result.Stats.PersistFailures = result.PersistFailures

	result.Duration = time.Since(start)
	log.Info("pipeline complete",
		zap.Any("stats", result.Stats),
		zap.Duration("duration", result.Duration))
	return result, nil
}

func (uc *PipelineUseCase) enrichOne(ctx context.Context, rec *BusinessRecord, log *zap.Logger) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("enrichment panic",
				zap.String("record_id", rec.ID),
				zap.Any("panic", r),
				zap.Stack("stack"))
		}
	}()
	uc.enricher.Enrich(ctx, rec)
}

func (uc *PipelineUseCase) persist(ctx context.Context, rec *BusinessRecord, log *zap.Logger) bool {
	ok, err := uc.sink.Add(ctx, uc.cfg.Collection, rec)
	if err == nil && ok {
		return true
	}
	if err == nil {
		err = fmt.Errorf("sink rejected record")
	}
	log.Warn("failed to persist record",
		zap.String("record_id", rec.ID),
		zap.String("collection", uc.cfg.Collection),
		zap.Error(err))
	return false
}
