package pipeline

import (
	"context"

	"github.com/rushteam/mural/core"
)

// Kind 用于标记 Node 类型，方便观测/编排。
type Kind string

const (
	KindRecall      Kind = "recall"      // 召回阶段：从目录生成候选集
	KindRank        Kind = "rank"        // 排序阶段：相似度打分并排序
	KindReRank      Kind = "rerank"      // 重排阶段：回退顺序、分页截断
	KindPostProcess Kind = "postprocess" // 后处理阶段
)

// Node 是 Pipeline 的最小可扩展单元。
// 统一采用“输入 items -> 输出 items”的形态。
type Node interface {
	Name() string
	Kind() Kind

	Process(
		ctx context.Context,
		rctx *core.RecommendContext,
		items []*core.Item,
	) ([]*core.Item, error)
}
