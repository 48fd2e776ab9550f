package factory

import (
	"time"

	"github.com/lk2023060901/prospect-finder/internal/ai/provider/anthropic"
	"github.com/lk2023060901/prospect-finder/internal/ai/provider/openai"
	"github.com/lk2023060901/prospect-finder/internal/ai/provider/registry"
	"github.com/lk2023060901/prospect-finder/internal/ai/provider/types"
)

// Option 配置选项函数
type Option func(*types.Config)

// WithModel 返回设置模型的 Option
func WithModel(model string) Option {
	return func(c *types.Config) {
		c.Model = model
	}
}

// WithBaseURL 返回设置 Base URL 的 Option，空值保持默认
func WithBaseURL(baseURL string) Option {
	return func(c *types.Config) {
		if baseURL != "" {
			c.BaseURL = baseURL
		}
	}
}

// WithTimeout 返回设置超时的 Option
func WithTimeout(timeout time.Duration) Option {
	return func(c *types.Config) {
		if timeout > 0 {
			c.Timeout = timeout
		}
	}
}

// WithHeader 返回添加单个 Header 的 Option
func WithHeader(key, value string) Option {
	return func(c *types.Config) {
		if c.Headers == nil {
			c.Headers = make(map[string]string)
		}
		c.Headers[key] = value
	}
}

var defaultRegistry = newDefaultRegistry()

func newDefaultRegistry() *registry.Registry {
	r := registry.New()
	r.Register("anthropic", func(c *types.Config) (types.Provider, error) {
		return anthropic.New(c)
	}, "claude")
	r.Register("openai", func(c *types.Config) (types.Provider, error) {
		return openai.New(c)
	}, "openai-compatible")
	return r
}

// New 按名称创建 Provider，未设置 BaseURL 时使用各 Provider 默认地址
func New(name, apiKey string, opts ...Option) (types.Provider, error) {
	config := &types.Config{
		APIKey:  apiKey,
		Timeout: 60 * time.Second,
		Headers: make(map[string]string),
	}
	for _, opt := range opts {
		opt(config)
	}
	return defaultRegistry.Create(name, config)
}

// Providers 返回已注册的 Provider 名称
func Providers() []string {
	return defaultRegistry.List()
}
