package core

// OpportunityKind 标记机会来源类型。
type OpportunityKind string

const (
	KindLaboratory       OpportunityKind = "laboratorio"       // 实验室
	KindJuniorEnterprise OpportunityKind = "empresa_junior"    // 学生企业
	KindCompetitionTeam  OpportunityKind = "equipe_competicao" // 竞赛队伍
)

// Opportunity 是机会目录中的实体（实验室、学生企业、竞赛队伍统一为一种记录）。
// 匹配引擎只使用 ID 与 Embedding，其余字段作为载荷原样透传。
type Opportunity struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Kind      OpportunityKind `json:"kind,omitempty"`
	Category  string          `json:"category,omitempty"`
	Tags      []string        `json:"tags,omitempty"`
	Embedding Embedding       `json:"embedding,omitempty"`
	Meta      map[string]any  `json:"meta,omitempty"`
}
