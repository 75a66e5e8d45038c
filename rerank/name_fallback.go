package rerank

import (
	"context"
	"sort"
	"strings"

	"github.com/rushteam/mural/core"
	"github.com/rushteam/mural/pipeline"
	"github.com/rushteam/mural/pkg/utils"
)

// NameFallback 是“尚未个性化”时的默认顺序：按名称（忽略大小写）升序，同名按 ID。
// rctx 带有偏好向量时原样返回。
type NameFallback struct{}

func (n *NameFallback) Name() string        { return "rerank.name_fallback" }
func (n *NameFallback) Kind() pipeline.Kind { return pipeline.KindReRank }

func (n *NameFallback) Process(
	_ context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if rctx.Personalized() {
		return items, nil
	}

	out := make([]*core.Item, len(items))
	copy(out, items)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := strings.ToLower(out[i].Name()), strings.ToLower(out[j].Name())
		if a != b {
			return a < b
		}
		return out[i].ID < out[j].ID
	})
	for _, it := range out {
		it.PutLabel("rerank_order", utils.Label{Value: "name", Source: "rerank"})
	}
	return out, nil
}
