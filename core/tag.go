package core

// Tag 是标签目录中的一条记录。
// Category / Subcategory 仅用于展示分组，匹配引擎只关心 ID -> Embedding。
type Tag struct {
	ID          string    `json:"id"`
	Label       string    `json:"label"`
	Description string    `json:"description,omitempty"`
	Category    string    `json:"category,omitempty"`
	Subcategory string    `json:"subcategory,omitempty"`
	Embedding   Embedding `json:"embedding,omitempty"`
}
