// Package tagging 按向量相似度为机会分配标签。
//
// 机会向量与每个可分配标签计算余弦相似度，保留不低于阈值的标签，降序取前 MaxTags 个。
// 哪些标签可以分配给哪类机会由一条 CEL 规则决定（见 pkg/dsl）。
package tagging

import (
	"fmt"
	"sort"

	"github.com/rushteam/mural/core"
	"github.com/rushteam/mural/pkg/dsl"
	"github.com/rushteam/mural/vector"
)

// DefaultRule 实验室不分配描述机会类型本身的标签。
const DefaultRule = `!(opportunity.kind == "laboratorio" && tag.id in ["empresa_junior", "equipe_competicao", "startup_universitaria", "estagio"])`

// Assignment 是一次分配结果。
type Assignment struct {
	TagID string  `json:"id"`
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Allocator 标签分配器。
type Allocator struct {
	Threshold float64
	MaxTags   int // 0 表示不限制
	Rule      *dsl.Eval
}

// NewAllocator 创建分配器；rule 为空时使用 DefaultRule。
func NewAllocator(threshold float64, maxTags int, rule string) (*Allocator, error) {
	if rule == "" {
		rule = DefaultRule
	}
	eval, err := dsl.NewEval(rule)
	if err != nil {
		return nil, err
	}
	if maxTags < 0 {
		maxTags = 0
	}
	return &Allocator{Threshold: threshold, MaxTags: maxTags, Rule: eval}, nil
}

// Allocate 计算 opp 应该拥有的标签。
// opp 没有向量时返回空结果；没有向量的标签跳过。
func (a *Allocator) Allocate(opp *core.Opportunity, tags []core.Tag) ([]Assignment, error) {
	if opp == nil || opp.Embedding.IsAbsent() {
		return nil, nil
	}

	out := make([]Assignment, 0)
	for _, tag := range tags {
		if tag.Embedding.IsAbsent() {
			continue
		}
		ok, err := a.Rule.Match(tag, opp)
		if err != nil {
			return nil, fmt.Errorf("allocate %s: %w", opp.ID, err)
		}
		if !ok {
			continue
		}
		score := vector.CosineSimilarity(opp.Embedding, tag.Embedding)
		if score < a.Threshold {
			continue
		}
		out = append(out, Assignment{TagID: tag.ID, Label: tag.Label, Score: score})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].TagID < out[j].TagID
	})
	if a.MaxTags > 0 && len(out) > a.MaxTags {
		out = out[:a.MaxTags]
	}
	return out, nil
}

// AllocateAll 对每个机会执行 Allocate，返回机会 ID -> 分配结果。
func (a *Allocator) AllocateAll(opps []*core.Opportunity, tags []core.Tag) (map[string][]Assignment, error) {
	result := make(map[string][]Assignment, len(opps))
	for _, opp := range opps {
		if opp == nil {
			continue
		}
		assigned, err := a.Allocate(opp, tags)
		if err != nil {
			return nil, err
		}
		result[opp.ID] = assigned
	}
	return result, nil
}
