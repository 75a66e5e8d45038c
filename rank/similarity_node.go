package rank

import (
	"context"

	"github.com/rushteam/mural/core"
	"github.com/rushteam/mural/pipeline"
)

// SimilarityNode 是排序 Node：用 rctx.Preference 对候选做相似度排序。
// - 写入 labels：rank_metric / rank_personalized
// - 没有偏好向量时所有候选分数为 0，顺序不变
type SimilarityNode struct {
	Ranker *Ranker
}

func (n *SimilarityNode) Name() string        { return "rank.similarity" }
func (n *SimilarityNode) Kind() pipeline.Kind { return pipeline.KindRank }

func (n *SimilarityNode) Process(
	_ context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	ranker := n.Ranker
	if ranker == nil {
		ranker = NewRanker()
	}
	var target core.Embedding
	if rctx != nil {
		target = rctx.Preference
	}
	return ranker.Rank(target, items), nil
}
