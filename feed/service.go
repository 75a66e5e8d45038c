// Package feed 组装机会 Feed：读取缓存的偏好向量，召回目录，执行排序链路并分页。
package feed

import (
	"context"
	"fmt"
	"log"

	"github.com/rushteam/mural/core"
	"github.com/rushteam/mural/pipeline"
	"github.com/rushteam/mural/rerank"
)

// Request 是一次 Feed 请求。Page 从 1 开始；PageSize 为 0 时使用 Service.PageSize。
type Request struct {
	UserID   string
	Scene    string
	Page     int
	PageSize int
}

// Page 是一页 Feed 结果。
type Page struct {
	Items        []*core.Item
	Page         int
	PageSize     int
	Offset       int // 本页第一项在完整排序中的下标
	Total        int
	Personalized bool
}

// Service 是 Feed 服务。
type Service struct {
	Recall    pipeline.Node
	Pipeline  *pipeline.Pipeline
	Cache     core.PreferenceCache
	Selection core.SelectionStore // 可选，用于在 rctx 中带上已选标签

	PageSize int
	Logger   *log.Logger
}

// Feed 返回一页排好序的机会。
// 偏好缓存读取失败时降级为未个性化顺序，而不是让整个 Feed 失败。
func (s *Service) Feed(ctx context.Context, req Request) (*Page, error) {
	rctx := &core.RecommendContext{
		UserID: req.UserID,
		Scene:  req.Scene,
		Params: map[string]any{"page": req.Page, "page_size": req.PageSize},
	}
	s.fillPreference(ctx, rctx)

	var items []*core.Item
	if s.Recall != nil {
		recalled, err := s.Recall.Process(ctx, rctx, nil)
		if err != nil {
			return nil, fmt.Errorf("recall: %w", err)
		}
		items = recalled
	}
	if s.Pipeline != nil {
		ranked, err := s.Pipeline.Run(ctx, rctx, items)
		if err != nil {
			return nil, err
		}
		items = ranked
	}

	page, size := req.Page, req.PageSize
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = s.PageSize
	}
	out := &Page{Page: page, PageSize: size, Total: len(items), Personalized: rctx.Personalized()}

	if size > 0 {
		// 先比较再相乘，超大的页码不会溢出
		if page-1 > len(items)/size {
			out.Offset = len(items)
			out.Items = []*core.Item{}
			return out, nil
		}
		out.Offset = (page - 1) * size
	}
	paged, err := (&rerank.TopNNode{N: size, Offset: out.Offset}).Process(ctx, rctx, items)
	if err != nil {
		return nil, err
	}
	out.Items = paged
	return out, nil
}

func (s *Service) fillPreference(ctx context.Context, rctx *core.RecommendContext) {
	if s.Selection != nil {
		selected, err := s.Selection.Current(ctx)
		if err != nil {
			s.logf("feed: read selection: %v", err)
		}
		rctx.SelectedTags = selected
	}
	if s.Cache == nil {
		return
	}
	vec, ok, err := s.Cache.Read(ctx)
	if err != nil {
		s.logf("feed: read preference, falling back to unpersonalized order: %v", err)
		return
	}
	if ok {
		rctx.Preference = vec
	}
}

func (s *Service) logf(format string, args ...any) {
	if s.Logger != nil {
		s.Logger.Printf(format, args...)
	}
}
