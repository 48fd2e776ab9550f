package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/lk2023060901/prospect-finder/internal/ai/provider/types"
)

// Constructor 根据配置创建 Provider
type Constructor func(config *types.Config) (types.Provider, error)

// Registry Provider 构造器注册表（支持别名）
type Registry struct {
	mu           sync.RWMutex
	constructors map[string]Constructor
	aliases      map[string]string // alias -> real name
}

// New 创建空注册表
func New() *Registry {
	return &Registry{
		constructors: make(map[string]Constructor),
		aliases:      make(map[string]string),
	}
}

// Register 注册构造器（支持别名）
func (r *Registry) Register(name string, ctor Constructor, aliasNames ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.constructors[name] = ctor
	for _, alias := range aliasNames {
		r.aliases[alias] = name
	}
}

// Create 按名称或别名创建 Provider
func (r *Registry) Create(nameOrAlias string, config *types.Config) (types.Provider, error) {
	r.mu.RLock()
	realName := r.resolveAliasLocked(nameOrAlias)
	ctor, ok := r.constructors[realName]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("provider %s not found", nameOrAlias)
	}
	return ctor(config)
}

// ResolveAlias 解析别名为真实名称
func (r *Registry) ResolveAlias(nameOrAlias string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.resolveAliasLocked(nameOrAlias)
}

func (r *Registry) resolveAliasLocked(nameOrAlias string) string {
	if realName, ok := r.aliases[nameOrAlias]; ok {
		return realName
	}
	return nameOrAlias
}

// List 列出所有 Provider 名称（不包括别名），按字母序
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.constructors))
	for name := range r.constructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
