// Package preference 负责偏好向量的重算与持久化：
// 已选标签变化 -> 解析标签向量 -> 求平均 -> 写入缓存（或在无结果时清除缓存）。
package preference

import (
	"context"
	"fmt"
	"log"
	"sort"

	"github.com/rushteam/mural/core"
	"github.com/rushteam/mural/vector"
)

// Stats 记录一次计算中被降级处理的输入。
type Stats struct {
	Selected   int      // 已选标签数
	Resolved   int      // 成功解析到向量的标签数
	Unresolved []string // 未知或没有向量的标签
	Skipped    int      // 维度不一致被跳过的向量数
}

// Compute 由已选标签计算偏好向量（纯函数）。
// 标签 ID 先排序再聚合，保证同一集合的结果逐位一致；无法解析的 ID 直接丢弃。
func Compute(tags core.TagCatalog, selected []string) (core.Embedding, Stats) {
	ids := append([]string(nil), selected...)
	sort.Strings(ids)

	stats := Stats{Selected: len(ids)}
	if tags == nil {
		stats.Unresolved = ids
		return nil, stats
	}

	embeddings := make([]core.Embedding, 0, len(ids))
	for _, id := range ids {
		emb, ok := tags.Resolve(id)
		if !ok || emb.IsAbsent() {
			stats.Unresolved = append(stats.Unresolved, id)
			continue
		}
		embeddings = append(embeddings, emb)
	}
	stats.Resolved = len(embeddings)

	mean, skipped := vector.MeanStats(embeddings)
	stats.Skipped = skipped
	return mean, stats
}

// Service 编排 SelectionStore、TagCatalog 与 PreferenceCache。
// 单写者假设：同一 Selection/Cache 同时只有一个会话写入，不加锁。
type Service struct {
	Tags      core.TagCatalog
	Selection core.SelectionStore
	Cache     core.PreferenceCache

	// Logger 输出降级诊断（可选）
	Logger *log.Logger
}

// NewService 创建偏好服务。
func NewService(tags core.TagCatalog, selection core.SelectionStore, cache core.PreferenceCache) *Service {
	return &Service{Tags: tags, Selection: selection, Cache: cache}
}

// Recompute 读取当前已选标签并重算偏好向量：
//   - 得到向量：整体覆盖写入缓存
//   - 集合为空或没有可用向量：清除缓存（明确的缺失，而不是零向量）
//
// 对同一集合与目录重复调用结果一致（幂等）。
func (s *Service) Recompute(ctx context.Context) (core.Embedding, error) {
	selected, err := s.Selection.Current(ctx)
	if err != nil {
		return nil, err
	}

	mean, stats := Compute(s.Tags, selected)
	s.report(stats)

	if mean.IsAbsent() {
		if err := s.Cache.Clear(ctx); err != nil {
			return nil, err
		}
		return nil, nil
	}
	if err := s.Cache.Write(ctx, mean); err != nil {
		return nil, err
	}
	return mean, nil
}

// Toggle 切换一个标签并同步重算偏好向量。
func (s *Service) Toggle(ctx context.Context, tagID string) (core.Embedding, error) {
	if _, err := s.Selection.Toggle(ctx, tagID); err != nil {
		return nil, fmt.Errorf("toggle %q: %w", tagID, err)
	}
	return s.Recompute(ctx)
}

// ClearSelection 清空已选标签并清除偏好缓存。
func (s *Service) ClearSelection(ctx context.Context) error {
	if err := s.Selection.Clear(ctx); err != nil {
		return err
	}
	return s.Cache.Clear(ctx)
}

// Selected 返回当前已选标签。
func (s *Service) Selected(ctx context.Context) ([]string, error) {
	return s.Selection.Current(ctx)
}

// Preference 读取缓存中的偏好向量，ok=false 表示“尚未个性化”。
func (s *Service) Preference(ctx context.Context) (core.Embedding, bool, error) {
	return s.Cache.Read(ctx)
}

func (s *Service) report(stats Stats) {
	if s.Logger == nil {
		return
	}
	if len(stats.Unresolved) > 0 {
		s.Logger.Printf("preference: %d selected tags without embedding: %v", len(stats.Unresolved), stats.Unresolved)
	}
	if stats.Skipped > 0 {
		s.Logger.Printf("preference: skipped %d embeddings with inconsistent dimension", stats.Skipped)
	}
}
