package core

import "github.com/rushteam/mural/pkg/utils"

// Item 是 Feed 链路中的统一承载结构：机会载荷、分数、标签。
// Score 只相对于一个偏好向量有意义；Personalized 为 false 时 Score 恒为 0（尚未计算）。
type Item struct {
	ID           string
	Score        float64
	Personalized bool
	Opportunity  *Opportunity
	Labels       map[string]utils.Label
}

// NewItem 用机会记录构建 Item。
func NewItem(opp *Opportunity) *Item {
	it := &Item{Opportunity: opp, Labels: make(map[string]utils.Label)}
	if opp != nil {
		it.ID = opp.ID
	}
	return it
}

// Embedding 返回载荷的向量，没有载荷时返回 nil。
func (it *Item) Embedding() Embedding {
	if it == nil || it.Opportunity == nil {
		return nil
	}
	return it.Opportunity.Embedding
}

// Name 返回载荷名称。
func (it *Item) Name() string {
	if it == nil || it.Opportunity == nil {
		return ""
	}
	return it.Opportunity.Name
}

// Clone 复制 Item 及其 Labels；Opportunity 载荷只读，按指针共享。
func (it *Item) Clone() *Item {
	if it == nil {
		return nil
	}
	out := *it
	out.Labels = make(map[string]utils.Label, len(it.Labels))
	for k, v := range it.Labels {
		out.Labels[k] = v
	}
	return &out
}

// PutLabel 写入 Label；若已存在同名 key，则按默认 Merge 规则累积。
func (it *Item) PutLabel(key string, lbl utils.Label) {
	if it.Labels == nil {
		it.Labels = make(map[string]utils.Label)
	}
	if old, ok := it.Labels[key]; ok {
		it.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	it.Labels[key] = lbl
}
