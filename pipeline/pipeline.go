package pipeline

import (
	"context"
	"fmt"

	"github.com/rushteam/mural/core"
	"github.com/rushteam/mural/pkg/utils"
)

// Pipeline 是 Feed 的排序链路：召回得到的候选依次经过各个 Node。
type Pipeline struct {
	Name  string
	Nodes []Node
}

// Run 依次执行所有 Node，任一 Node 出错即中止；每个 Node 之前检查 ctx。
// rctx 非 nil 且链路有名字时，写入用户级 label "pipeline"，便于解释结果来自哪条链路。
func (p *Pipeline) Run(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if rctx != nil && p.Name != "" {
		rctx.PutLabel("pipeline", utils.Label{Value: p.Name, Source: "pipeline"})
	}

	cur := items
	for _, node := range p.Nodes {
		if node == nil {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		next, err := node.Process(ctx, rctx, cur)
		if err != nil {
			if p.Name != "" {
				return nil, fmt.Errorf("pipeline %s: node %s: %w", p.Name, node.Name(), err)
			}
			return nil, fmt.Errorf("node %s: %w", node.Name(), err)
		}
		cur = next
	}
	return cur, nil
}
