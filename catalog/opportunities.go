package catalog

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rushteam/mural/core"
	"github.com/rushteam/mural/pkg/conv"
)

// EmbeddingField 是规范化后唯一使用的向量字段名。
const EmbeddingField = "embedding"

// 生成数据的脚本在不同版本中用过多个字段名，只在边界这里兼容。
var (
	embeddingAliases = []string{EmbeddingField, "embedding_agregado", "Embedding"}
	nameAliases      = []string{"name", "nome", "Nome"}
	categoryAliases  = []string{"category", "categoria", "Categoria"}
)

// 顶层列表字段 -> 机会类型
var listKinds = []struct {
	field string
	kind  core.OpportunityKind
}{
	{field: "laboratorios", kind: core.KindLaboratory},
	{field: "empresas_juniores", kind: core.KindJuniorEnterprise},
	{field: "equipes_competicao", kind: core.KindCompetitionTeam},
	{field: "oportunidades", kind: ""},
}

// Opportunities 是机会目录，实现 core.OpportunityCatalog。
type Opportunities struct {
	list []*core.Opportunity
}

// NewOpportunities 构建目录；nil 与空 ID 的记录被丢弃，重复 ID 保留第一次出现。
func NewOpportunities(opps []*core.Opportunity) *Opportunities {
	seen := make(map[string]bool, len(opps))
	out := make([]*core.Opportunity, 0, len(opps))
	for _, o := range opps {
		if o == nil || o.ID == "" || seen[o.ID] {
			continue
		}
		seen[o.ID] = true
		out = append(out, o)
	}
	return &Opportunities{list: out}
}

// List 实现 core.OpportunityCatalog。
func (o *Opportunities) List() []*core.Opportunity {
	if o == nil {
		return nil
	}
	return append([]*core.Opportunity(nil), o.list...)
}

// Len 返回机会数量。
func (o *Opportunities) Len() int {
	if o == nil {
		return 0
	}
	return len(o.list)
}

// ParseOpportunities 解析 oportunidades.json（或单独的 labs / EJs / 队伍文件）。
// 支持 laboratorios / empresas_juniores / equipes_competicao / oportunidades 四个列表，
// 也支持顶层直接是数组。
func ParseOpportunities(data []byte) ([]*core.Opportunity, error) {
	var root any
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, core.NewDomainError(core.ModuleCatalog, core.ErrorCodeInvalidInput, fmt.Sprintf("catalog: parse opportunities: %v", err))
	}

	var out []*core.Opportunity
	switch v := root.(type) {
	case []any:
		out = appendRecords(out, v, "")
	case map[string]any:
		for _, lk := range listKinds {
			if records, ok := v[lk.field].([]any); ok {
				out = appendRecords(out, records, lk.kind)
			}
		}
	default:
		return nil, core.NewDomainError(core.ModuleCatalog, core.ErrorCodeInvalidInput, "catalog: opportunities root must be an object or array")
	}
	return out, nil
}

func appendRecords(out []*core.Opportunity, records []any, kind core.OpportunityKind) []*core.Opportunity {
	for _, r := range records {
		m, ok := r.(map[string]any)
		if !ok {
			continue
		}
		if opp := normalizeRecord(m, kind); opp != nil {
			out = append(out, opp)
		}
	}
	return out
}

// normalizeRecord 把一条松散的 JSON 记录转换为 core.Opportunity。
// 没有 ID 的记录返回 nil；不认识的字段原样放进 Meta。
func normalizeRecord(m map[string]any, kind core.OpportunityKind) *core.Opportunity {
	id, ok := conv.ToString(m["id"])
	if !ok || id == "" {
		return nil
	}

	opp := &core.Opportunity{
		ID:       id,
		Name:     firstString(m, nameAliases),
		Category: firstString(m, categoryAliases),
		Kind:     kind,
		Meta:     make(map[string]any),
	}
	if k, ok := m["tipo_oportunidade"].(string); ok && k != "" {
		opp.Kind = core.OpportunityKind(k)
	}
	if opp.Kind == "" {
		opp.Kind = inferKind(id, opp.Category)
	}

	for _, key := range embeddingAliases {
		if emb, ok := conv.ToFloat64Slice(m[key]); ok && len(emb) > 0 {
			opp.Embedding = core.Embedding(emb)
			break
		}
	}
	opp.Tags = tagIDs(m["tags"])

	known := map[string]bool{"id": true, "tags": true, "tipo_oportunidade": true}
	for _, group := range [][]string{embeddingAliases, nameAliases, categoryAliases} {
		for _, k := range group {
			known[k] = true
		}
	}
	for k, v := range m {
		if !known[k] {
			opp.Meta[k] = v
		}
	}
	return opp
}

func firstString(m map[string]any, keys []string) string {
	for _, k := range keys {
		if s, ok := m[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// tagIDs 支持 ["id", ...] 与 [{"id": "...", "label": "..."}, ...] 两种形式。
func tagIDs(v any) []string {
	raw, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, e := range raw {
		switch t := e.(type) {
		case string:
			if t != "" {
				out = append(out, t)
			}
		case map[string]any:
			if id, ok := conv.ToString(t["id"]); ok && id != "" {
				out = append(out, id)
			}
		}
	}
	return out
}

func inferKind(id, category string) core.OpportunityKind {
	c := strings.ToLower(category)
	switch {
	case strings.HasPrefix(id, "equipe-") || strings.Contains(c, "competi"):
		return core.KindCompetitionTeam
	case strings.Contains(c, "empresa"):
		return core.KindJuniorEnterprise
	case strings.Contains(c, "laborat"):
		return core.KindLaboratory
	default:
		return ""
	}
}

var _ core.OpportunityCatalog = (*Opportunities)(nil)
