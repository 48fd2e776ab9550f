package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/lk2023060901/prospect-finder/internal/ai/provider/types"
	"github.com/tidwall/gjson"
)

// DefaultBaseURL Anthropic API 地址
const DefaultBaseURL = "https://api.anthropic.com"

// Provider Anthropic Provider 实现（直接处理协议转换）
type Provider struct {
	config *types.Config
	client *http.Client
}

// New 创建 Anthropic Provider
func New(config *types.Config) (*Provider, error) {
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &Provider{
		config: config,
		client: &http.Client{
			Timeout: config.Timeout,
		},
	}, nil
}

// Name 返回 Provider 名称
func (p *Provider) Name() string {
	return "anthropic"
}

// setHeaders 设置请求 headers（包括默认 headers 和自定义 headers）
func (p *Provider) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", p.config.APIKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	for key, value := range p.config.Headers {
		req.Header.Set(key, value)
	}
}

// Anthropic 内部请求结构
type anthropicRequest struct {
	Model         string             `json:"model"`
	Messages      []anthropicMessage `json:"messages"`
	System        string             `json:"system,omitempty"`
	MaxTokens     int                `json:"max_tokens"`
	Temperature   float64            `json:"temperature,omitempty"`
	StopSequences []string           `json:"stop_sequences,omitempty"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Anthropic 内部响应结构
type anthropicResponse struct {
	ID         string             `json:"id"`
	Type       string             `json:"type"`
	Role       string             `json:"role"`
	Content    []anthropicContent `json:"content"`
	Model      string             `json:"model"`
	StopReason string             `json:"stop_reason"`
	Usage      anthropicUsage     `json:"usage"`
}

type anthropicContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type anthropicUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// CreateChatCompletion 创建聊天补全（同步）
// 处理 OpenAI 格式到 Anthropic 格式的转换
func (p *Provider) CreateChatCompletion(ctx context.Context, req types.ChatCompletionRequest) (*types.ChatCompletionResponse, error) {
	anthropicReq := p.convertRequest(req)

	reqBody, err := json.Marshal(anthropicReq)
	if err != nil {
		return nil, types.NewProviderError(p.Name(), "marshal request failed", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.config.BaseURL+"/v1/messages", bytes.NewReader(reqBody))
	if err != nil {
		return nil, types.NewProviderError(p.Name(), "create request failed", err)
	}
	p.setHeaders(httpReq)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, types.NewTransportError(p.Name(), err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, types.NewTransportError(p.Name(), err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, p.statusError(resp, body)
	}

	var anthropicResp anthropicResponse
	if err := json.Unmarshal(body, &anthropicResp); err != nil {
		return nil, types.NewProviderError(p.Name(), "unmarshal response failed", err)
	}

	return p.convertResponse(&anthropicResp), nil
}

// statusError 解析 {"type":"error","error":{"type":..,"message":..}} 错误体
func (p *Provider) statusError(resp *http.Response, body []byte) *types.ProviderError {
	perr := types.NewStatusError(p.Name(), resp.StatusCode, strings.TrimSpace(string(body)))
	if gjson.ValidBytes(body) {
		parsed := gjson.ParseBytes(body)
		if t := parsed.Get("error.type").String(); t != "" {
			perr.Type = types.ErrorType(t)
		}
		if m := parsed.Get("error.message").String(); m != "" {
			perr.Message = m
		}
	}
	perr.RequestID = resp.Header.Get("request-id")
	perr.RetryAfter = types.ParseRetryAfter(resp.Header)
	return perr
}

// Close 关闭 Provider
func (p *Provider) Close() error {
	p.client.CloseIdleConnections()
	return nil
}

// convertRequest 将 OpenAI 请求转换为 Anthropic 请求
func (p *Provider) convertRequest(req types.ChatCompletionRequest) *anthropicRequest {
	anthropicReq := &anthropicRequest{
		Model:         req.Model,
		MaxTokens:     req.MaxTokens,
		Temperature:   req.Temperature,
		StopSequences: req.Stop,
	}

	if anthropicReq.Model == "" {
		anthropicReq.Model = p.config.Model
	}
	if anthropicReq.MaxTokens == 0 {
		anthropicReq.MaxTokens = 1024
	}

	// 分离 system 消息和其他消息
	for _, msg := range req.Messages {
		if msg.Role == types.RoleSystem {
			anthropicReq.System = msg.Content
			continue
		}
		anthropicReq.Messages = append(anthropicReq.Messages, anthropicMessage{
			Role:    msg.Role,
			Content: msg.Content,
		})
	}

	return anthropicReq
}

// convertResponse 将 Anthropic 响应转换为 OpenAI 响应
func (p *Provider) convertResponse(resp *anthropicResponse) *types.ChatCompletionResponse {
	var texts []string
	for _, block := range resp.Content {
		if block.Type == "text" {
			texts = append(texts, block.Text)
		}
	}

	return &types.ChatCompletionResponse{
		ID:     resp.ID,
		Object: "chat.completion",
		Model:  resp.Model,
		Choices: []types.Choice{
			{
				Index: 0,
				Message: types.Message{
					Role:    types.RoleAssistant,
					Content: strings.Join(texts, ""),
				},
				FinishReason: resp.StopReason,
			},
		},
		Usage: types.Usage{
			PromptTokens:     resp.Usage.InputTokens,
			CompletionTokens: resp.Usage.OutputTokens,
			TotalTokens:      resp.Usage.InputTokens + resp.Usage.OutputTokens,
		},
	}
}
