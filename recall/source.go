package recall

import (
	"context"

	"github.com/rushteam/mural/core"
	"github.com/rushteam/mural/pipeline"
	"github.com/rushteam/mural/pkg/utils"
)

// Source 表示一个可复用的召回源（机会目录、固定列表...）。
type Source interface {
	Name() string
	Recall(ctx context.Context, rctx *core.RecommendContext) ([]*core.Item, error)
}

// CatalogSource 把机会目录中的全部记录作为候选。
// 同时实现了 Source 和 Node 接口，可以直接在 Pipeline 中使用。
type CatalogSource struct {
	// SourceName 写入 recall_source label，默认 "catalog"
	SourceName string
	Catalog    core.OpportunityCatalog
}

func (r *CatalogSource) Name() string {
	if r.SourceName != "" {
		return r.SourceName
	}
	return "catalog"
}

func (r *CatalogSource) Kind() pipeline.Kind { return pipeline.KindRecall }

// Process 实现 Node 接口，直接调用 Recall
func (r *CatalogSource) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	return r.Recall(ctx, rctx)
}

// Recall 实现 Source 接口，按目录顺序返回。
func (r *CatalogSource) Recall(ctx context.Context, _ *core.RecommendContext) ([]*core.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.Catalog == nil {
		return nil, nil
	}

	opps := r.Catalog.List()
	out := make([]*core.Item, 0, len(opps))
	for _, opp := range opps {
		if opp == nil {
			continue
		}
		it := core.NewItem(opp)
		it.PutLabel("recall_source", utils.Label{Value: r.Name(), Source: "recall"})
		out = append(out, it)
	}
	return out, nil
}
