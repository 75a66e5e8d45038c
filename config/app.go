package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/rushteam/mural/core"
	"github.com/rushteam/mural/pipeline"
	"github.com/rushteam/mural/store"
)

// 存储后端
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
)

type StoreConfig struct {
	Backend   string      `yaml:"backend"`
	Path      string      `yaml:"path"`
	Redis     RedisConfig `yaml:"redis"`
	Namespace string      `yaml:"namespace"`
	TTL       int         `yaml:"ttl"` // 偏好向量缓存秒数，0 表示不过期
}

type RedisConfig struct {
	Addr string `yaml:"addr"`
	DB   int    `yaml:"db"`
}

type CatalogConfig struct {
	Tags           string   `yaml:"tags"`
	Opportunities  []string `yaml:"opportunities"`
	TimeoutSeconds int      `yaml:"timeout_seconds"`
}

type RankingConfig struct {
	Metric   string `yaml:"metric"`
	TieBreak string `yaml:"tie_break"`
	PageSize int    `yaml:"page_size"`
}

type AllocationConfig struct {
	Threshold float64 `yaml:"threshold"`
	MaxTags   int     `yaml:"max_tags"`
	Rule      string  `yaml:"rule"`
}

// Config 是应用配置：YAML 文件 + MURAL_* 环境变量覆盖。
type Config struct {
	Store      StoreConfig      `yaml:"store"`
	Catalog    CatalogConfig    `yaml:"catalog"`
	Ranking    RankingConfig    `yaml:"ranking"`
	Allocation AllocationConfig `yaml:"allocation"`

	// Pipeline 为空时使用 DefaultPipeline
	pipeline.Config `yaml:",inline"`
}

// Default 返回默认配置。
func Default() *Config {
	var mc core.MatchConfig = &core.DefaultMatchConfig{}
	return &Config{
		Store: StoreConfig{
			Backend: BackendFile,
			Path:    "~/.mural/state.json",
			Redis:   RedisConfig{Addr: "localhost:6379"},
		},
		Catalog: CatalogConfig{
			Tags:           "data/tags.json",
			Opportunities:  []string{"data/oportunidades.json"},
			TimeoutSeconds: 10,
		},
		Ranking: RankingConfig{
			Metric:   "cosine",
			TieBreak: "none",
			PageSize: mc.DefaultPageSize(),
		},
		Allocation: AllocationConfig{
			Threshold: mc.DefaultAllocationThreshold(),
			MaxTags:   mc.DefaultMaxTags(),
		},
	}
}

// Load 读取配置。path 为空时只使用默认值与环境变量；.env 文件存在时先加载。
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Store.Backend = getEnv("MURAL_STORE_BACKEND", c.Store.Backend)
	c.Store.Path = getEnv("MURAL_STORE_PATH", c.Store.Path)
	c.Store.Redis.Addr = getEnv("MURAL_REDIS_ADDR", c.Store.Redis.Addr)
	c.Store.Redis.DB = getEnvInt("MURAL_REDIS_DB", c.Store.Redis.DB)
	c.Store.Namespace = getEnv("MURAL_NAMESPACE", c.Store.Namespace)
	c.Store.TTL = getEnvInt("MURAL_CACHE_TTL", c.Store.TTL)

	c.Catalog.Tags = getEnv("MURAL_TAGS", c.Catalog.Tags)
	if v := os.Getenv("MURAL_OPPORTUNITIES"); v != "" {
		c.Catalog.Opportunities = splitList(v)
	}
	c.Catalog.TimeoutSeconds = getEnvInt("MURAL_CATALOG_TIMEOUT_SECONDS", c.Catalog.TimeoutSeconds)

	c.Ranking.Metric = getEnv("MURAL_METRIC", c.Ranking.Metric)
	c.Ranking.TieBreak = getEnv("MURAL_TIE_BREAK", c.Ranking.TieBreak)
	c.Ranking.PageSize = getEnvInt("MURAL_PAGE_SIZE", c.Ranking.PageSize)

	c.Allocation.Threshold = getEnvFloat("MURAL_ALLOC_THRESHOLD", c.Allocation.Threshold)
	c.Allocation.MaxTags = getEnvInt("MURAL_ALLOC_MAX_TAGS", c.Allocation.MaxTags)
	c.Allocation.Rule = getEnv("MURAL_ALLOC_RULE", c.Allocation.Rule)
}

// Validate 校验配置。
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case BackendMemory, BackendFile, BackendRedis:
	default:
		return fmt.Errorf("unknown store backend %q (supported: memory, file, redis)", c.Store.Backend)
	}
	if c.Store.Backend == BackendFile && c.Store.Path == "" {
		return fmt.Errorf("store.path is required for file backend")
	}
	if c.Store.Backend == BackendRedis && c.Store.Redis.Addr == "" {
		return fmt.Errorf("store.redis.addr is required for redis backend")
	}
	if c.Catalog.Tags == "" {
		return fmt.Errorf("catalog.tags is required")
	}
	if c.Ranking.PageSize < 0 {
		return fmt.Errorf("ranking.page_size must be >= 0")
	}
	if c.Allocation.MaxTags < 0 {
		return fmt.Errorf("allocation.max_tags must be >= 0")
	}
	return ValidatePipelineConfig(&c.Config)
}

// OpenStore 按配置打开存储后端。
func (c *Config) OpenStore() (core.Store, error) {
	switch c.Store.Backend {
	case BackendMemory:
		return store.NewMemoryStore(), nil
	case BackendRedis:
		rs, err := store.NewRedisStore(c.Store.Redis.Addr, c.Store.Redis.DB)
		if err != nil {
			return nil, err
		}
		return rs, nil
	default:
		fs, err := store.NewFileStore(c.Store.Path)
		if err != nil {
			return nil, err
		}
		return fs, nil
	}
}

// CatalogTimeout 返回读取远程目录的超时时间。
func (c *Config) CatalogTimeout() time.Duration {
	if c.Catalog.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(c.Catalog.TimeoutSeconds) * time.Second
}

// PipelineConfig 返回要构建的 pipeline；没有配置 nodes 时使用 DefaultPipeline。
func (c *Config) PipelineConfig() *pipeline.Config {
	if len(c.Pipeline.Nodes) > 0 {
		return &c.Config
	}
	return DefaultPipeline(c.Ranking)
}

// DefaultPipeline 是默认的 Feed 排序链路：相似度排序，未个性化时按名称。
func DefaultPipeline(r RankingConfig) *pipeline.Config {
	cfg := &pipeline.Config{}
	cfg.Pipeline.Name = "feed"
	cfg.Pipeline.Nodes = []pipeline.NodeConfig{
		{Type: "rank.similarity", Config: map[string]any{"metric": r.Metric, "tie_break": r.TieBreak}},
		{Type: "rerank.name_fallback"},
	}
	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
