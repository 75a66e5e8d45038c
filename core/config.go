package core

// MatchConfig 提供匹配相关的默认值。
type MatchConfig interface {
	// DefaultAllocationThreshold 返回标签分配的最低相似度
	DefaultAllocationThreshold() float64

	// DefaultMaxTags 返回每个机会最多分配的标签数
	DefaultMaxTags() int

	// DefaultPageSize 返回 Feed 默认分页大小
	DefaultPageSize() int
}

// DefaultMatchConfig 是默认的匹配配置实现。
type DefaultMatchConfig struct{}

func (c *DefaultMatchConfig) DefaultAllocationThreshold() float64 {
	return 0.35
}

func (c *DefaultMatchConfig) DefaultMaxTags() int {
	return 12
}

func (c *DefaultMatchConfig) DefaultPageSize() int {
	return 20
}
