package biz

import (
	"context"
	"strings"

	"github.com/stretchr/testify/mock"

	"github.com/lk2023060901/prospect-finder/internal/ai/provider/types"
	"github.com/lk2023060901/prospect-finder/internal/crawler"
	searchtypes "github.com/lk2023060901/prospect-finder/internal/websearch/types"
)

type mockLLM struct{ mock.Mock }

func (m *mockLLM) CreateChatCompletion(ctx context.Context, req types.ChatCompletionRequest) (*types.ChatCompletionResponse, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*types.ChatCompletionResponse)
	return resp, args.Error(1)
}

func textResponse(text string) *types.ChatCompletionResponse {
	return &types.ChatCompletionResponse{
		Choices: []types.Choice{{Message: types.Message{Role: types.RoleAssistant, Content: text}}},
	}
}

// promptContains matches a request whose user message contains substr.
func promptContains(substr string) interface{} {
	return mock.MatchedBy(func(req types.ChatCompletionRequest) bool {
		for _, m := range req.Messages {
			if m.Role == types.RoleUser && strings.Contains(m.Content, substr) {
				return true
			}
		}
		return false
	})
}

type mockSearcher struct{ mock.Mock }

func (m *mockSearcher) Search(ctx context.Context, req *searchtypes.SearchRequest) (*searchtypes.SearchResponse, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*searchtypes.SearchResponse)
	return resp, args.Error(1)
}

func searchResponse(urls ...string) *searchtypes.SearchResponse {
	resp := &searchtypes.SearchResponse{}
	for _, u := range urls {
		resp.Results = append(resp.Results, &searchtypes.SearchResult{URL: u})
	}
	return resp
}

type mockCrawler struct{ mock.Mock }

func (m *mockCrawler) Crawl(ctx context.Context, url string, profile crawler.Profile) crawler.Result {
	args := m.Called(ctx, url, profile)
	return args.Get(0).(crawler.Result)
}

func pageResult(url, content string, internal ...crawler.Link) crawler.Result {
	return crawler.Result{URL: url, Page: &crawler.Page{URL: url, Content: content, InternalLinks: internal}}
}

type mockContacts struct{ mock.Mock }

func (m *mockContacts) ExtractContactInfo(ctx context.Context, url string) crawler.ContactInfo {
	args := m.Called(ctx, url)
	return args.Get(0).(crawler.ContactInfo)
}

type mockSink struct{ mock.Mock }

func (m *mockSink) Add(ctx context.Context, collection string, rec *BusinessRecord) (bool, error) {
	args := m.Called(ctx, collection, rec)
	return args.Bool(0), args.Error(1)
}
