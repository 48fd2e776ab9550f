package workerpool

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"
)

var (
	ErrPoolClosed = errors.New("worker pool is closed")
)

// Config Worker Pool 配置
type Config struct {
	Workers        int           // 并发 worker 上限
	ExpiryDuration time.Duration // 空闲 worker 回收周期
	ReleaseTimeout time.Duration // Shutdown 等待运行中任务的最长时间
}

// DefaultConfig 默认配置
func DefaultConfig() *Config {
	return &Config{
		Workers:        12,
		ExpiryDuration: 10 * time.Second,
		ReleaseTimeout: 30 * time.Second,
	}
}

// Statistics 统计信息
type Statistics struct {
	Submitted int64
	Completed int64
	Panicked  int64
}

// Pool 基于 ants 的有界 worker pool
type Pool struct {
	pool   *ants.Pool
	config *Config
	logger *zap.Logger

	submitted atomic.Int64
	completed atomic.Int64
	panicked  atomic.Int64
}

// New 创建 Worker Pool
func New(config *Config, logger *zap.Logger) (*Pool, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if config.Workers <= 0 {
		return nil, fmt.Errorf("workerpool: workers must be > 0, got %d", config.Workers)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	p := &Pool{config: config, logger: logger}

	opts := []ants.Option{
		ants.WithPanicHandler(func(err interface{}) {
			p.panicked.Add(1)
			logger.Error("worker panic", zap.Any("error", err))
		}),
	}
	if config.ExpiryDuration > 0 {
		opts = append(opts, ants.WithExpiryDuration(config.ExpiryDuration))
	}

	antsPool, err := ants.NewPool(config.Workers, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create ants pool: %w", err)
	}
	p.pool = antsPool
	return p, nil
}

// submit 提交任务，池满时阻塞直到有空闲 worker；任务结束（含 panic）时先计数再调用 done
func (p *Pool) submit(task func(), done func()) error {
	if p.pool.IsClosed() {
		return ErrPoolClosed
	}
	p.submitted.Add(1)
	err := p.pool.Submit(func() {
		defer func() {
			p.completed.Add(1)
			done()
		}()
		task()
	})
	if err != nil {
		p.submitted.Add(-1)
	}
	if errors.Is(err, ants.ErrPoolClosed) {
		return ErrPoolClosed
	}
	return err
}

// Group 在池上运行一批任务并等待全部完成
type Group struct {
	pool *Pool
	wg   sync.WaitGroup

	mu  sync.Mutex
	err error
}

// NewGroup 创建任务组
func (p *Pool) NewGroup() *Group {
	return &Group{pool: p}
}

// Go 提交一个任务；只记录第一个提交失败
func (g *Group) Go(task func()) {
	g.wg.Add(1)
	err := g.pool.submit(task, g.wg.Done)
	if err != nil {
		g.wg.Done()
		g.mu.Lock()
		if g.err == nil {
			g.err = err
		}
		g.mu.Unlock()
	}
}

// Wait 等待全部任务完成
func (g *Group) Wait() error {
	g.wg.Wait()
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.err
}

// Stats 获取统计信息
func (p *Pool) Stats() Statistics {
	return Statistics{
		Submitted: p.submitted.Load(),
		Completed: p.completed.Load(),
		Panicked:  p.panicked.Load(),
	}
}

// Shutdown 关闭
func (p *Pool) Shutdown() {
	timeout := p.config.ReleaseTimeout
	if timeout <= 0 {
		p.pool.Release()
		return
	}
	if err := p.pool.ReleaseTimeout(timeout); err != nil {
		p.logger.Warn("worker pool release timed out", zap.Error(err))
	}
}
