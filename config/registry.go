package config

import (
	"fmt"
	"sync"

	"github.com/rushteam/mural/pipeline"
)

// 内置 Node（rank.similarity、rerank.name_fallback、rerank.topn）在 config/builders 的 init 中注册，
// 入口处需要 import _ "github.com/rushteam/mural/config/builders"。

// NodeBuilder 与 pipeline.NodeBuilder 一致。
type NodeBuilder = pipeline.NodeBuilder

var (
	registry   = pipeline.NewNodeFactory()
	registryMu sync.RWMutex
)

// Register 注册一种 Node 类型，供配置驱动的链路使用。
// 同一类型注册两次会 panic：两个包争用同一个名字只会在启动时暴露。
func Register(typeName string, builder NodeBuilder) {
	if typeName == "" || builder == nil {
		return
	}
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, dup := registry.Lookup(typeName); dup {
		panic(fmt.Sprintf("config: node type %q registered twice", typeName))
	}
	registry.Register(typeName, builder)
}

// SupportedTypes 返回已注册的 Node 类型（排序）。
func SupportedTypes() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return registry.Types()
}

// DefaultFactory 返回注册表的快照；之后的 Register 不影响已返回的 factory。
func DefaultFactory() *pipeline.NodeFactory {
	registryMu.RLock()
	defer registryMu.RUnlock()
	f := pipeline.NewNodeFactory()
	for _, t := range registry.Types() {
		b, _ := registry.Lookup(t)
		f.Register(t, b)
	}
	return f
}

// ValidatePipelineConfig 在加载配置时试构建整条链路：
// 未注册的类型、非法的节点配置（例如未知 metric）和错误的阶段顺序都在这里报错，而不是等到第一次排序。
func ValidatePipelineConfig(cfg *pipeline.Config) error {
	if cfg == nil {
		return nil
	}
	supported := SupportedTypes()
	known := make(map[string]bool, len(supported))
	for _, t := range supported {
		known[t] = true
	}
	for _, nc := range cfg.Pipeline.Nodes {
		if nc.Type != "" && !known[nc.Type] {
			return fmt.Errorf("unsupported node type %q (supported: %v)", nc.Type, supported)
		}
	}
	if _, err := cfg.BuildPipeline(DefaultFactory()); err != nil {
		return fmt.Errorf("invalid pipeline: %w", err)
	}
	return nil
}
