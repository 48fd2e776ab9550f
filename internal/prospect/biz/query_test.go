package biz

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lk2023060901/prospect-finder/internal/ai/provider/types"
)

func TestQueryGenerator_Generate(t *testing.T) {
	llm := &mockLLM{}
	llm.On("CreateChatCompletion", mock.Anything, mock.MatchedBy(func(req types.ChatCompletionRequest) bool {
		return req.MaxTokens == 1024 &&
			req.Temperature == 0.7 &&
			req.Model == "claude-3-haiku-20240307" &&
			req.Messages[0].Content == querySystemPrompt &&
			strings.Contains(req.Messages[1].Content, "Sydney (postcode: 2000)") &&
			strings.Contains(req.Messages[1].Content, `"Mums n Bubs Fitness Classes"`) &&
			strings.Contains(req.Messages[1].Content, `"Toy Library"`)
	})).Return(textResponse("```json\n[\"toddler swimming lessons Sydney 2000\", \"  \", \"rhyme time library Sydney NSW 2000\"]\n```"), nil)

	g := NewQueryGenerator(llm, PromptConfig{Model: "claude-3-haiku-20240307", Temperature: 0.7}, zap.NewNop())
	queries, err := g.Generate(context.Background(), "Sydney", "2000")
	require.NoError(t, err)
	assert.Equal(t, []string{"toddler swimming lessons Sydney 2000", "rhyme time library Sydney NSW 2000"}, queries)
	llm.AssertExpectations(t)
}

func TestQueryGenerator_TruncatesTo15(t *testing.T) {
	items := make([]string, 20)
	for i := range items {
		items[i] = fmt.Sprintf("%q", fmt.Sprintf("query %d", i))
	}
	llm := &mockLLM{}
	llm.On("CreateChatCompletion", mock.Anything, mock.Anything).
		Return(textResponse("["+strings.Join(items, ",")+"]"), nil)

	queries, err := NewQueryGenerator(llm, PromptConfig{}, zap.NewNop()).Generate(context.Background(), "Sydney", "2000")
	require.NoError(t, err)
	assert.Len(t, queries, MaxQueries)
	assert.Equal(t, "query 14", queries[14])
}

func TestQueryGenerator_Failures(t *testing.T) {
	tests := []struct {
		name      string
		resp      *types.ChatCompletionResponse
		err       error
		wantParse bool
	}{
		{name: "not json", resp: textResponse("Sure! Here are some ideas."), wantParse: true},
		{name: "object", resp: textResponse(`{"queries": "x"}`), wantParse: true},
		{name: "empty array", resp: textResponse(`[]`), wantParse: true},
		{name: "llm error", err: errors.New("boom")},
		{name: "empty text", resp: textResponse("  ")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			llm := &mockLLM{}
			llm.On("CreateChatCompletion", mock.Anything, mock.Anything).Return(tt.resp, tt.err)

			_, err := NewQueryGenerator(llm, PromptConfig{}, zap.NewNop()).Generate(context.Background(), "Sydney", "2000")
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrQueryGeneration)

			var perr *ParseError
			assert.Equal(t, tt.wantParse, errors.As(err, &perr))
		})
	}
}

func TestQueryGenerator_EmptyLocation(t *testing.T) {
	_, err := NewQueryGenerator(&mockLLM{}, PromptConfig{}, zap.NewNop()).Generate(context.Background(), " ", "2000")
	assert.ErrorIs(t, err, ErrEmptyLocation)
}
