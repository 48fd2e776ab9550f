package openai

import (
	"context"
	"errors"
	"net/http"

	"github.com/lk2023060901/prospect-finder/internal/ai/provider/types"
	goopenai "github.com/sashabaranov/go-openai"
)

// DefaultBaseURL OpenAI API 地址
const DefaultBaseURL = "https://api.openai.com/v1"

// Provider OpenAI 兼容 Provider 实现（基于 go-openai）
type Provider struct {
	config     *types.Config
	client     *goopenai.Client
	httpClient *http.Client
}

// New 创建 OpenAI Provider
func New(config *types.Config) (*Provider, error) {
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	httpClient := &http.Client{
		Timeout:   config.Timeout,
		Transport: &headerTransport{headers: config.Headers, next: http.DefaultTransport},
	}

	clientConfig := goopenai.DefaultConfig(config.APIKey)
	clientConfig.BaseURL = config.BaseURL
	clientConfig.HTTPClient = httpClient

	return &Provider{
		config:     config,
		client:     goopenai.NewClientWithConfig(clientConfig),
		httpClient: httpClient,
	}, nil
}

// Name 返回 Provider 名称
func (p *Provider) Name() string {
	return "openai"
}

// CreateChatCompletion 创建聊天补全（同步）
func (p *Provider) CreateChatCompletion(ctx context.Context, req types.ChatCompletionRequest) (*types.ChatCompletionResponse, error) {
	model := req.Model
	if model == "" {
		model = p.config.Model
	}

	messages := make([]goopenai.ChatCompletionMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		messages = append(messages, goopenai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}

	resp, err := p.client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model:       model,
		Messages:    messages,
		MaxTokens:   req.MaxTokens,
		Temperature: float32(req.Temperature),
		Stop:        req.Stop,
	})
	if err != nil {
		return nil, p.convertError(err)
	}

	out := &types.ChatCompletionResponse{
		ID:      resp.ID,
		Object:  resp.Object,
		Created: resp.Created,
		Model:   resp.Model,
		Usage: types.Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}
	for _, c := range resp.Choices {
		out.Choices = append(out.Choices, types.Choice{
			Index: c.Index,
			Message: types.Message{
				Role:    c.Message.Role,
				Content: c.Message.Content,
			},
			FinishReason: string(c.FinishReason),
		})
	}
	return out, nil
}

// convertError 将 go-openai 错误映射为 ProviderError
func (p *Provider) convertError(err error) error {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		perr := types.NewStatusError(p.Name(), apiErr.HTTPStatusCode, apiErr.Message)
		perr.Err = err
		return perr
	}

	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) {
		perr := types.NewStatusError(p.Name(), reqErr.HTTPStatusCode, reqErr.Error())
		perr.Err = err
		return perr
	}

	return types.NewTransportError(p.Name(), err)
}

// Close 关闭 Provider
func (p *Provider) Close() error {
	p.httpClient.CloseIdleConnections()
	return nil
}

// headerTransport 为每个请求附加自定义 headers
type headerTransport struct {
	headers map[string]string
	next    http.RoundTripper
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if len(t.headers) == 0 {
		return t.next.RoundTrip(req)
	}
	req = req.Clone(req.Context())
	for k, v := range t.headers {
		req.Header.Set(k, v)
	}
	return t.next.RoundTrip(req)
}
