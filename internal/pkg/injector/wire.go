//go:build wireinject
// +build wireinject

package injector

import (
	"github.com/google/wire"

	"github.com/lk2023060901/prospect-finder/internal/conf"
	"github.com/lk2023060901/prospect-finder/internal/pkg/logger"
	"github.com/lk2023060901/prospect-finder/internal/prospect/biz"
	"github.com/lk2023060901/prospect-finder/internal/prospect/service"
	"github.com/lk2023060901/prospect-finder/internal/server"
)

// Data layer providers
var dataProviderSet = wire.NewSet(
	provideData,
	provideZapLogger,
)

// Client providers: LLM, search, worker pool and crawler
var clientProviderSet = wire.NewSet(
	provideLLM,
	provideExtractionLLM,
	provideSearcher,
	provideWorkerPool,
	provideCrawler,
)

// Use case providers
var useCaseProviderSet = wire.NewSet(
	provideQueryGenerator,
	provideURLFetcher,
	provideExtractor,
	provideEnricher,
	provideSink,
	providePipeline,
)

// PipelineProviderSet builds a runnable pipeline without the HTTP layer.
var PipelineProviderSet = wire.NewSet(
	dataProviderSet,
	clientProviderSet,
	useCaseProviderSet,
)

// ProviderSet is the Wire provider set for all dependencies
var ProviderSet = wire.NewSet(
	PipelineProviderSet,
	wire.Bind(new(service.Processor), new(*biz.PipelineUseCase)),
	service.NewProspectService,
	server.NewHTTPServer,
)

// InitializeApp initializes the application with Wire
func InitializeApp(config *conf.Config, log *logger.Logger) (*App, func(), error) {
	wire.Build(ProviderSet, newApp)
	return nil, nil, nil
}

// InitializePipeline builds the pipeline for one-shot CLI runs.
func InitializePipeline(config *conf.Config, log *logger.Logger) (*biz.PipelineUseCase, func(), error) {
	wire.Build(PipelineProviderSet)
	return nil, nil, nil
}

// InitializeQueryGenerator builds only what query generation needs.
func InitializeQueryGenerator(config *conf.Config, log *logger.Logger) (*biz.QueryGenerator, func(), error) {
	wire.Build(provideZapLogger, provideLLM, provideQueryGenerator)
	return nil, nil, nil
}
