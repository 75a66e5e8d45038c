package rank

import (
	"sort"

	"github.com/rushteam/mural/core"
	"github.com/rushteam/mural/pkg/utils"
	"github.com/rushteam/mural/vector"
)

// TieBreak 决定同分候选的先后顺序。
type TieBreak string

const (
	// TieBreakNone 同分保持输入顺序（稳定排序）
	TieBreakNone TieBreak = "none"
	// TieBreakID 同分按 ID 升序
	TieBreakID TieBreak = "id"
)

// ParseTieBreak 解析配置值，未知值视为 TieBreakNone。
func ParseTieBreak(s string) TieBreak {
	if TieBreak(s) == TieBreakID {
		return TieBreakID
	}
	return TieBreakNone
}

// Ranker 用目标向量对候选打分并排序。
//
// Rank 不修改输入，返回新的 Item（Labels 独立，Opportunity 载荷共享只读指针）。
// 没有目标向量时不做相似度计算：所有候选 Score = 0、Personalized = false，保持输入顺序，
// 由上层（例如 rerank.NameFallback）决定替代顺序。
type Ranker struct {
	Metric   vector.Metric // 默认 cosine
	TieBreak TieBreak
}

// NewRanker 创建默认的余弦相似度排序器。
func NewRanker() *Ranker {
	return &Ranker{Metric: vector.MetricCosine, TieBreak: TieBreakNone}
}

func (r *Ranker) metric() vector.Metric {
	if r == nil || r.Metric == "" {
		return vector.MetricCosine
	}
	return r.Metric
}

// Rank 对候选打分并按分数降序返回。
// nil 候选与没有 Opportunity 载荷的候选被丢弃，不参与打分。
func (r *Ranker) Rank(target core.Embedding, items []*core.Item) []*core.Item {
	out := make([]*core.Item, 0, len(items))
	for _, it := range items {
		if it == nil || it.Opportunity == nil {
			continue
		}
		out = append(out, it.Clone())
	}

	if target.IsAbsent() {
		for _, it := range out {
			it.Score = 0
			it.Personalized = false
			it.PutLabel("rank_personalized", utils.FlagLabel("rank", false))
		}
		return out
	}

	metric := r.metric()
	for _, it := range out {
		// 缺失或维度不一致的向量按中性分数 0 处理
		it.Score = vector.Similarity(metric, target, it.Embedding())
		it.Personalized = true
		it.PutLabel("rank_metric", utils.Label{Value: string(metric), Source: "rank"})
		it.PutLabel("rank_personalized", utils.FlagLabel("rank", true))
	}

	byID := r != nil && r.TieBreak == TieBreakID
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		if byID {
			return out[i].ID < out[j].ID
		}
		return false
	})
	return out
}
