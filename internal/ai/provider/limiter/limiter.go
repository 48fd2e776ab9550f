// Package limiter wraps a Provider with a token-bucket rate limit and bounded
// retry of transient errors.
package limiter

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/lk2023060901/prospect-finder/internal/ai/provider/types"
	"github.com/lk2023060901/prospect-finder/internal/pkg/metrics"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Config 限流与重试配置
type Config struct {
	Interval          time.Duration // 两次调用之间的最小间隔，0 表示不限流
	Burst             int
	MaxRetries        int
	BackoffInitial    time.Duration
	BackoffMax        time.Duration
	BackoffJitterFrac float64
}

func (c Config) withDefaults() Config {
	if c.Burst <= 0 {
		c.Burst = 1
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	if c.BackoffInitial <= 0 {
		c.BackoffInitial = time.Second
	}
	if c.BackoffMax <= 0 {
		c.BackoffMax = 30 * time.Second
	}
	if c.BackoffJitterFrac <= 0 {
		c.BackoffJitterFrac = 0.2
	}
	return c
}

// Provider 带限流与重试的 Provider
type Provider struct {
	next    types.Provider
	limiter *rate.Limiter
	config  Config
	logger  *zap.Logger
	sleep   func(ctx context.Context, d time.Duration) error
}

// New 包装 next
func New(next types.Provider, cfg Config, logger *zap.Logger) *Provider {
	cfg = cfg.withDefaults()
	limit := rate.Inf
	if cfg.Interval > 0 {
		limit = rate.Every(cfg.Interval)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Provider{
		next:    next,
		limiter: rate.NewLimiter(limit, cfg.Burst),
		config:  cfg,
		logger:  logger,
		sleep:   sleepCtx,
	}
}

// Name 返回被包装 Provider 的名称
func (p *Provider) Name() string {
	return p.next.Name()
}

// Close 关闭被包装的 Provider
func (p *Provider) Close() error {
	return p.next.Close()
}

// CreateChatCompletion 等待令牌后调用，可重试错误按指数退避重试
func (p *Provider) CreateChatCompletion(ctx context.Context, req types.ChatCompletionRequest) (*types.ChatCompletionResponse, error) {
	attempts := 1 + p.config.MaxRetries
	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		resp, err := p.next.CreateChatCompletion(ctx, req)
		if err == nil {
			metrics.LLMCalls.WithLabelValues(p.Name(), "success").Inc()
			return resp, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			metrics.LLMCalls.WithLabelValues(p.Name(), "error").Inc()
			return nil, ctx.Err()
		}
		if !types.IsRetryable(err) || attempt == attempts-1 {
			metrics.LLMCalls.WithLabelValues(p.Name(), "error").Inc()
			return nil, err
		}

		metrics.LLMCalls.WithLabelValues(p.Name(), "retry").Inc()
		wait := backoff(p.config, attempt)
		if ra := types.RetryAfterOf(err); ra > wait {
			wait = ra
		}
		p.logger.Warn("retrying llm call",
			zap.String("provider", p.Name()),
			zap.Int("attempt", attempt+1),
			zap.Duration("wait", wait),
			zap.Error(err),
		)
		if err := p.sleep(ctx, wait); err != nil {
			return nil, err
		}
	}
	return nil, lastErr
}

func backoff(cfg Config, attempt int) time.Duration {
	sleep := cfg.BackoffInitial
	for i := 0; i < attempt && sleep < cfg.BackoffMax; i++ {
		sleep *= 2
	}
	if sleep > cfg.BackoffMax {
		sleep = cfg.BackoffMax
	}
	j := 1 + (rand.Float64()*2-1)*cfg.BackoffJitterFrac
	return time.Duration(float64(sleep) * j)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
