package core

import "context"

// SelectionStore 是用户已选标签集合的领域接口。
//
// 持久化形态由实现决定；首次运行没有数据时 Current 返回空集合而不是错误。
type SelectionStore interface {
	// Toggle 不存在则加入，存在则移除；返回切换后的集合
	Toggle(ctx context.Context, tagID string) ([]string, error)

	// Clear 清空集合
	Clear(ctx context.Context) error

	// Current 返回当前集合（已排序，便于复现）
	Current(ctx context.Context) ([]string, error)
}

// PreferenceCache 是偏好向量缓存的领域接口。
//
// “缺失”是独立状态：Read 返回 ok=false，与空向量区分。
// Write 总是整体覆盖，不做局部合并。
type PreferenceCache interface {
	Write(ctx context.Context, vector Embedding) error
	Clear(ctx context.Context) error
	Read(ctx context.Context) (Embedding, bool, error)
}
