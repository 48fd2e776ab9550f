package injector

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/lk2023060901/prospect-finder/internal/ai/provider/factory"
	"github.com/lk2023060901/prospect-finder/internal/ai/provider/limiter"
	aitypes "github.com/lk2023060901/prospect-finder/internal/ai/provider/types"
	"github.com/lk2023060901/prospect-finder/internal/conf"
	"github.com/lk2023060901/prospect-finder/internal/crawler"
	"github.com/lk2023060901/prospect-finder/internal/data"
	"github.com/lk2023060901/prospect-finder/internal/pkg/logger"
	"github.com/lk2023060901/prospect-finder/internal/pkg/workerpool"
	"github.com/lk2023060901/prospect-finder/internal/prospect/biz"
	prospectdata "github.com/lk2023060901/prospect-finder/internal/prospect/data"
	searchprovider "github.com/lk2023060901/prospect-finder/internal/websearch/provider"
	searchtypes "github.com/lk2023060901/prospect-finder/internal/websearch/types"
)

// Data layer helpers

func provideData(config *conf.Config, log *logger.Logger) (*data.Data, func(), error) {
	return data.NewData(config, log)
}

func provideZapLogger(log *logger.Logger) *zap.Logger {
	return log.Logger
}

// LLM providers. Query generation calls the model directly; extraction and
// null-fill calls go through the rate limiter.

func provideLLM(config *conf.Config, log *zap.Logger) (aitypes.Provider, func(), error) {
	p, err := factory.New(config.LLM.Provider, config.LLM.APIKey,
		factory.WithModel(config.LLM.Model),
		factory.WithBaseURL(config.LLM.APIHost),
		factory.WithTimeout(config.LLM.Timeout),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create llm provider: %w", err)
	}
	cleanup := func() {
		if err := p.Close(); err != nil {
			log.Warn("failed to close llm provider", zap.Error(err))
		}
	}
	return p, cleanup, nil
}

func provideExtractionLLM(base aitypes.Provider, config *conf.Config, log *zap.Logger) *limiter.Provider {
	return limiter.New(base, limiter.Config{
		Interval:   config.LLM.ExtractionInterval,
		Burst:      1,
		MaxRetries: config.LLM.MaxRetries,
	}, log.Named("llm-limiter"))
}

func provideSearcher(config *conf.Config) (searchprovider.Provider, error) {
	return searchprovider.New(searchtypes.ProviderConfig{
		ID:      searchtypes.ProviderID(config.Search.Provider),
		APIHost: config.Search.APIHost,
		APIKey:  config.Search.APIKey,
		Timeout: config.Search.Timeout,
	})
}

func provideWorkerPool(config *conf.Config, log *zap.Logger) (*workerpool.Pool, func(), error) {
	pool, err := workerpool.New(&workerpool.Config{
		Workers:        config.Search.Workers,
		ExpiryDuration: 10 * time.Second,
		ReleaseTimeout: 30 * time.Second,
	}, log.Named("search-pool"))
	if err != nil {
		return nil, nil, err
	}
	return pool, pool.Shutdown, nil
}

func provideCrawler(config *conf.Config, d *data.Data, log *zap.Logger) *crawler.Crawler {
	opts := []crawler.Option{
		crawler.WithLogger(log.Named("crawler")),
		crawler.WithRobots(crawler.NewRobotsChecker(nil, config.Crawler.UserAgent, config.Crawler.RobotsTTL)),
	}
	if d.Redis != nil {
		opts = append(opts, crawler.WithCache(crawler.NewRedisPageCache(d.Redis, config.Crawler.CacheTTL)))
	}
	return crawler.New(crawler.Config{
		UserAgent:   config.Crawler.UserAgent,
		MaxBodySize: config.Crawler.MaxBodySize,
	}, opts...)
}

// Use cases

func provideQueryGenerator(llm aitypes.Provider, config *conf.Config, log *zap.Logger) *biz.QueryGenerator {
	return biz.NewQueryGenerator(llm, biz.PromptConfig{
		Model:       config.LLM.Model,
		MaxTokens:   config.LLM.QueryMaxTokens,
		Temperature: float64(config.LLM.Temperature),
	}, log.Named("queries"))
}

func provideURLFetcher(search searchprovider.Provider, pool *workerpool.Pool, config *conf.Config, log *zap.Logger) *biz.URLFetcher {
	return biz.NewURLFetcher(search, pool, biz.FetchConfig{
		MaxResults:  config.Search.MaxResults,
		SearchDepth: config.Search.SearchDepth,
	}, log.Named("search"))
}

func provideExtractor(llm *limiter.Provider, config *conf.Config, log *zap.Logger) *biz.StructuredExtractor {
	return biz.NewStructuredExtractor(llm, biz.NewTokenTruncator(config.Extraction.Encoding, log), biz.ExtractionConfig{
		Prompt:              extractionPrompt(config),
		MaxContentTokens:    config.Extraction.MaxContentTokens,
		NearbyPostcodeRange: config.Extraction.NearbyPostcodeRange,
	}, log.Named("extract"))
}

func provideEnricher(c *crawler.Crawler, llm *limiter.Provider, config *conf.Config, log *zap.Logger) *biz.EnrichmentResolver {
	return biz.NewEnrichmentResolver(c, c, llm, biz.EnrichConfig{
		Prompt:       extractionPrompt(config),
		ContactPaths: config.Enrich.ContactPaths,
	}, log.Named("enrich"))
}

func extractionPrompt(config *conf.Config) biz.PromptConfig {
	return biz.PromptConfig{
		Model:       config.LLM.Model,
		MaxTokens:   config.LLM.ExtractionMaxTokens,
		Temperature: float64(config.LLM.Temperature),
	}
}

func provideSink(d *data.Data, config *conf.Config, log *zap.Logger) (biz.Sink, error) {
	return prospectdata.NewSink(d, config, log.Named("sink"))
}

func providePipeline(
	queries *biz.QueryGenerator,
	urls *biz.URLFetcher,
	c *crawler.Crawler,
	extractor *biz.StructuredExtractor,
	enricher *biz.EnrichmentResolver,
	sink biz.Sink,
	config *conf.Config,
	log *zap.Logger,
) *biz.PipelineUseCase {
	return biz.NewPipelineUseCase(queries, urls, c, extractor, enricher, sink, biz.PipelineConfig{
		Collection: config.Pipeline.Collection,
		Timeout:    config.Pipeline.Timeout,
	}, log.Named("pipeline"))
}
