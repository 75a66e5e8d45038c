package rerank

import (
	"context"

	"github.com/rushteam/mural/core"
	"github.com/rushteam/mural/pipeline"
)

// TopNNode 是分页截断节点：跳过 Offset 个物品后保留 N 个。
// 通常放在排序（Rank）节点之后。
//
// 示例：
//
//	pipeline := &pipeline.Pipeline{
//	    Nodes: []pipeline.Node{
//	        &rank.SimilarityNode{...},
//	        &rerank.NameFallback{},
//	        &rerank.TopNNode{N: 20, Offset: 40}, // 第 3 页
//	    },
//	}
type TopNNode struct {
	// N 要保留的物品数量，N <= 0 表示不截断
	N int
	// Offset 跳过的物品数量，超过总数时返回空
	Offset int
}

func (n *TopNNode) Name() string {
	return "rerank.topn"
}

func (n *TopNNode) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *TopNNode) Process(
	_ context.Context,
	_ *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if n.Offset > 0 {
		if n.Offset >= len(items) {
			return []*core.Item{}, nil
		}
		items = items[n.Offset:]
	}
	if n.N <= 0 || len(items) <= n.N {
		return items, nil
	}
	return items[:n.N], nil
}
