package biz

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lk2023060901/prospect-finder/internal/crawler"
)

type pipelineFixture struct {
	llm      *mockLLM
	search   *mockSearcher
	pages    *mockCrawler
	contacts *mockContacts
	sink     *mockSink
	uc       *PipelineUseCase
}

func newPipelineFixture(t *testing.T) *pipelineFixture {
	t.Helper()
	f := &pipelineFixture{
		llm:      &mockLLM{},
		search:   &mockSearcher{},
		pages:    &mockCrawler{},
		contacts: &mockContacts{},
		sink:     &mockSink{},
	}
	log := zap.NewNop()
	f.uc = NewPipelineUseCase(
		NewQueryGenerator(f.llm, PromptConfig{}, log),
		NewURLFetcher(f.search, newTestPool(t, 4), FetchConfig{}, log),
		f.pages,
		NewStructuredExtractor(f.llm, nil, ExtractionConfig{NearbyPostcodeRange: 10}, log),
		NewEnrichmentResolver(f.pages, f.contacts, f.llm, EnrichConfig{}, log),
		f.sink,
		PipelineConfig{},
		log,
	)
	return f
}

func TestPipeline_SydneyEndToEnd(t *testing.T) {
	f := newPipelineFixture(t)

	f.llm.On("CreateChatCompletion", mock.Anything, promptContains("search queries")).
		Return(textResponse(`["toddler swimming lessons Sydney NSW 2000", "rhyme time library Sydney 2000"]`), nil)
	f.search.On("Search", mock.Anything, queryIs("toddler swimming lessons Sydney NSW 2000")).
		Return(searchResponse("https://directory.example.org/sydney"), nil)
	f.search.On("Search", mock.Anything, queryIs("rhyme time library Sydney 2000")).
		Return(searchResponse("https://directory.example.org/sydney", "https://broken.example.org"), nil)

	f.pages.On("Crawl", mock.Anything, "https://directory.example.org/sydney", mock.Anything).
		Return(pageResult("https://directory.example.org/sydney", "Sydney Tots Swim, 1 George St, SYDNEY NSW 2000"))
	f.pages.On("Crawl", mock.Anything, "https://broken.example.org", mock.Anything).
		Return(crawler.Result{URL: "https://broken.example.org", Err: errors.New("dns")})

	f.llm.On("CreateChatCompletion", mock.Anything, promptContains("Sydney Tots Swim")).
		Return(textResponse(`[{"business_name": "Sydney Tots Swim", "address": "1 George St, SYDNEY NSW 2000", "phone_number": "", "email": "", "website_link": "", "postcode": "2000", "internal_navigation_link": ""}]`), nil)

	f.sink.On("Add", mock.Anything, "prospects", mock.AnythingOfType("*biz.BusinessRecord")).Return(true, nil)

	res, err := f.uc.Process(context.Background(), "Sydney", "2000")
	require.NoError(t, err)

	require.Len(t, res.Records, 1)
	rec := res.Records[0]
	assert.Equal(t, "Sydney Tots Swim", rec.BusinessName)
	assert.Equal(t, "2000", rec.Postcode)
	assert.Equal(t, InternalLinkNotFound, rec.PhoneNumber)
	assert.Equal(t, StatePersisted, rec.State)

	assert.Equal(t, 1, res.Persisted)
	assert.Zero(t, res.PersistFailures)
	assert.Equal(t, Stats{Queries: 2, URLs: 2, PagesCrawled: 1, CrawlFailures: 1, Records: 1, Persisted: 1}, res.Stats)
	assert.Positive(t, res.Duration)

	f.sink.AssertNumberOfCalls(t, "Add", 1)
	f.contacts.AssertNotCalled(t, "ExtractContactInfo", mock.Anything, mock.Anything)
}

func TestPipeline_NoRecordsSkipsEnrichAndPersist(t *testing.T) {
	f := newPipelineFixture(t)
	f.llm.On("CreateChatCompletion", mock.Anything, promptContains("search queries")).
		Return(textResponse(`["q"]`), nil)
	f.search.On("Search", mock.Anything, mock.Anything).Return(searchResponse(), nil)

	res, err := f.uc.Process(context.Background(), "Griffith", "2680")
	require.NoError(t, err)
	assert.NotNil(t, res.Records)
	assert.Empty(t, res.Records)
	f.sink.AssertNotCalled(t, "Add", mock.Anything, mock.Anything, mock.Anything)
}

func TestPipeline_QueryFailureIsFatal(t *testing.T) {
	f := newPipelineFixture(t)
	f.llm.On("CreateChatCompletion", mock.Anything, mock.Anything).Return(textResponse("not json"), nil)

	_, err := f.uc.Process(context.Background(), "Sydney", "2000")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrQueryGeneration)

	var stageErr *StageError
	require.True(t, errors.As(err, &stageErr))
	assert.Equal(t, StageQueries, stageErr.Stage)
	f.search.AssertNotCalled(t, "Search", mock.Anything, mock.Anything)
}

func TestPipeline_EmptyInput(t *testing.T) {
	f := newPipelineFixture(t)
	_, err := f.uc.Process(context.Background(), "Sydney", "")
	assert.ErrorIs(t, err, ErrEmptyLocation)
}

type panicEnricher struct{ calls int }

func (p *panicEnricher) Enrich(ctx context.Context, rec *BusinessRecord) {
	p.calls++
	if rec.BusinessName == "bad" {
		panic("enricher bug")
	}
	rec.Advance(StateEnriched)
}

type staticQueries []string

func (s staticQueries) Generate(context.Context, string, string) ([]string, error) { return s, nil }

type staticURLs []string

func (s staticURLs) Fetch(context.Context, []string) []string { return s }

type staticExtractor []*BusinessRecord

func (s staticExtractor) Extract(context.Context, *crawler.Page, string, string) []*BusinessRecord {
	return s
}

func TestPipeline_PanicAndPersistFailuresAreIsolated(t *testing.T) {
	pages := &mockCrawler{}
	pages.On("Crawl", mock.Anything, "https://a.au", mock.Anything).Return(pageResult("https://a.au", "x"))

	bad := &BusinessRecord{ID: "1", BusinessName: "bad"}
	good := &BusinessRecord{ID: "2", BusinessName: "good"}
	rejected := &BusinessRecord{ID: "3", BusinessName: "rejected"}

	sink := &mockSink{}
	sink.On("Add", mock.Anything, "leads", bad).Return(true, nil)
	sink.On("Add", mock.Anything, "leads", good).Return(false, errors.New("connection reset"))
	sink.On("Add", mock.Anything, "leads", rejected).Return(false, nil)

	enricher := &panicEnricher{}
	uc := NewPipelineUseCase(
		staticQueries{"q"}, staticURLs{"https://a.au"}, pages,
		staticExtractor{bad, good, rejected}, enricher, sink,
		PipelineConfig{Collection: "leads"}, zap.NewNop(),
	)

	res, err := uc.Process(context.Background(), "Sydney", "2000")
	require.NoError(t, err)
	assert.Equal(t, 3, enricher.calls)
	assert.Len(t, res.Records, 3)
	assert.Equal(t, 1, res.Persisted)
	assert.Equal(t, 2, res.PersistFailures)
	assert.Equal(t, StatePersisted, bad.State)
	assert.Equal(t, StateEnriched, good.State)
}
