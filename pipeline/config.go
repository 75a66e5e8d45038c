package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config 描述 Feed 的排序链路，可以单独放在文件里，也可以内联在应用配置的 pipeline 字段下。
type Config struct {
	Pipeline struct {
		Name  string       `yaml:"name" json:"name"`
		Nodes []NodeConfig `yaml:"nodes" json:"nodes"`
	} `yaml:"pipeline" json:"pipeline"`
}

// NodeConfig 是单个 Node 的配置；Type 为空的条目被忽略。
type NodeConfig struct {
	Type   string         `yaml:"type" json:"type"`     // rank.similarity / rerank.name_fallback / rerank.topn
	Config map[string]any `yaml:"config" json:"config"` // 例如 {metric: cosine, tie_break: id}
}

// Load 读取链路配置，.json 按 JSON 解析，其余按 YAML。
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pipeline config: %w", err)
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return Parse(data, "json")
	}
	return Parse(data, "yaml")
}

// LoadFromYAML 从 YAML 文件加载链路配置。
func LoadFromYAML(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pipeline config: %w", err)
	}
	return Parse(data, "yaml")
}

// LoadFromJSON 从 JSON 文件加载链路配置。
func LoadFromJSON(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pipeline config: %w", err)
	}
	return Parse(data, "json")
}

// Parse 解析 yaml 或 json 格式的链路配置。
func Parse(data []byte, format string) (*Config, error) {
	var cfg Config
	var err error
	switch format {
	case "json":
		err = json.Unmarshal(data, &cfg)
	case "yaml", "yml":
		err = yaml.Unmarshal(data, &cfg)
	default:
		return nil, fmt.Errorf("unsupported pipeline config format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s pipeline config: %w", format, err)
	}
	return &cfg, nil
}

// 阶段顺序：召回 → 排序 → 重排 → 后处理
var kindOrder = map[Kind]int{
	KindRecall:      0,
	KindRank:        1,
	KindReRank:      2,
	KindPostProcess: 3,
}

// BuildPipeline 用 factory 构建链路。
// 节点必须按阶段顺序排列：例如 rerank.topn 放在 rank.similarity 之前会先截断再排序，这里直接拒绝。
func (c *Config) BuildPipeline(factory *NodeFactory) (*Pipeline, error) {
	p := &Pipeline{Name: c.Pipeline.Name, Nodes: make([]Node, 0, len(c.Pipeline.Nodes))}

	var last Node
	for _, nc := range c.Pipeline.Nodes {
		if nc.Type == "" {
			continue
		}
		node, err := factory.Build(nc.Type, nc.Config)
		if err != nil {
			return nil, fmt.Errorf("build node %s: %w", nc.Type, err)
		}
		if last != nil && kindOrder[node.Kind()] < kindOrder[last.Kind()] {
			return nil, fmt.Errorf("node %s (%s) cannot run after %s (%s)", node.Name(), node.Kind(), last.Name(), last.Kind())
		}
		p.Nodes = append(p.Nodes, node)
		last = node
	}
	return p, nil
}

// NodeBuilder 用节点配置构建 Node；配置非法时返回错误。
type NodeBuilder func(map[string]any) (Node, error)

// NodeFactory 按类型名构建 Node。
type NodeFactory struct {
	builders map[string]NodeBuilder
}

func NewNodeFactory() *NodeFactory {
	return &NodeFactory{builders: make(map[string]NodeBuilder)}
}

// Register 注册构建器；类型名为空或 builder 为 nil 时忽略。
func (f *NodeFactory) Register(nodeType string, builder NodeBuilder) {
	if nodeType == "" || builder == nil {
		return
	}
	f.builders[nodeType] = builder
}

// Types 返回已注册的类型名（排序）。
func (f *NodeFactory) Types() []string {
	types := make([]string, 0, len(f.builders))
	for t := range f.builders {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Lookup 返回 nodeType 的构建器。
func (f *NodeFactory) Lookup(nodeType string) (NodeBuilder, bool) {
	b, ok := f.builders[nodeType]
	return b, ok
}

// Build 构建 nodeType 对应的 Node，未注册的类型会在错误中列出可用类型。
func (f *NodeFactory) Build(nodeType string, config map[string]any) (Node, error) {
	builder, ok := f.builders[nodeType]
	if !ok {
		return nil, fmt.Errorf("unsupported node type %q (supported: %v)", nodeType, f.Types())
	}
	return builder(config)
}
