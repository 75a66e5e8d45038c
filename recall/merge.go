package recall

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rushteam/mural/core"
	"github.com/rushteam/mural/pipeline"
)

// Merge 是一个 Recall Node：并发执行多个召回源，按 Sources 顺序合并结果。
// 同一 ID 只保留第一次出现的 Item，后续出现的 labels 合并进去。
// 单个召回源出错或超时返回空结果，不中断其他召回源。
type Merge struct {
	Sources []Source
	Timeout time.Duration // 每个召回源的超时时间，0 表示不限制

	// OnError 在某个召回源失败时回调（可选）。
	// 各召回源在各自的 goroutine 中调用它，实现必须是并发安全的（例如 *log.Logger）。
	OnError func(source string, err error)
}

func (n *Merge) Name() string        { return "recall.merge" }
func (n *Merge) Kind() pipeline.Kind { return pipeline.KindRecall }

func (n *Merge) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	if len(n.Sources) == 0 {
		return nil, nil
	}

	results := make([][]*core.Item, len(n.Sources))
	eg, _ := errgroup.WithContext(ctx)
	for i, src := range n.Sources {
		i, src := i, src
		eg.Go(func() error {
			recallCtx := ctx
			if n.Timeout > 0 {
				var cancel context.CancelFunc
				recallCtx, cancel = context.WithTimeout(ctx, n.Timeout)
				defer cancel()
			}

			items, err := src.Recall(recallCtx, rctx)
			if err != nil {
				if n.OnError != nil {
					n.OnError(src.Name(), err)
				}
				return nil
			}
			results[i] = items
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return mergeFirst(results), nil
}

// mergeFirst 按 ID 去重，保留第一个出现的。
func mergeFirst(results [][]*core.Item) []*core.Item {
	seen := make(map[string]*core.Item)
	var out []*core.Item
	for _, items := range results {
		for _, it := range items {
			if it == nil {
				continue
			}
			if old, ok := seen[it.ID]; ok {
				for k, v := range it.Labels {
					old.PutLabel(k, v)
				}
				continue
			}
			seen[it.ID] = it
			out = append(out, it)
		}
	}
	return out
}
