package catalog

import (
	"github.com/rushteam/mural/core"
	"github.com/rushteam/mural/vector"
)

// DeriveEmbeddings 为没有向量的机会计算向量：其标签向量的平均值。
// 返回新的切片，被补全的记录是副本，输入不被修改；没有可用标签向量的记录保持缺失。
func DeriveEmbeddings(opps []*core.Opportunity, tags core.TagCatalog) []*core.Opportunity {
	out := make([]*core.Opportunity, 0, len(opps))
	for _, o := range opps {
		if o == nil {
			continue
		}
		if !o.Embedding.IsAbsent() || tags == nil || len(o.Tags) == 0 {
			out = append(out, o)
			continue
		}

		embeddings := make([]core.Embedding, 0, len(o.Tags))
		for _, id := range o.Tags {
			if emb, ok := tags.Resolve(id); ok {
				embeddings = append(embeddings, emb)
			}
		}
		mean := vector.Mean(embeddings)
		if mean.IsAbsent() {
			out = append(out, o)
			continue
		}

		cp := *o
		cp.Embedding = mean
		out = append(out, &cp)
	}
	return out
}
