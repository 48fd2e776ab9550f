package types

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Provider 单轮聊天补全后端；anthropic 与 openai 兼容接口均实现此接口
type Provider interface {
	CreateChatCompletion(ctx context.Context, req ChatCompletionRequest) (*ChatCompletionResponse, error)
	Name() string
	Close() error
}

// DefaultTimeout 未配置超时时使用
const DefaultTimeout = 60 * time.Second

var (
	ErrMissingAPIKey  = errors.New("llm: API key is required")
	ErrMissingBaseURL = errors.New("llm: base URL is required")
)

// Config 创建 Provider 所需的连接参数
type Config struct {
	APIKey  string
	BaseURL string // 末尾的 / 会被去掉
	Timeout time.Duration
	Model   string // 请求未指定模型时使用
	Headers map[string]string
}

// Validate 规范化并校验配置
func (c *Config) Validate() error {
	c.APIKey = strings.TrimSpace(c.APIKey)
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if c.APIKey == "" {
		return ErrMissingAPIKey
	}
	if c.BaseURL == "" {
		return ErrMissingBaseURL
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	return nil
}
