package catalog

import (
	"encoding/json"
	"fmt"

	"github.com/rushteam/mural/core"
)

// TagsFile 是 tags.json 的结构：分类 -> 子分类 -> 标签。
type TagsFile struct {
	Categorias []struct {
		NomeCategoria string `json:"nome_categoria"`
		Descricao     string `json:"descricao"`
		Subcategorias []struct {
			NomeSubcategoria string `json:"nome_subcategoria"`
			Tags             []struct {
				ID          string    `json:"id"`
				Label       string    `json:"label"`
				Description string    `json:"description"`
				Embedding   []float64 `json:"embedding"`
			} `json:"tags"`
		} `json:"subcategorias"`
	} `json:"categorias"`
}

// Tags 是扁平化后的标签目录，实现 core.TagCatalog。
// 顺序与文件一致；重复 ID 只保留第一次出现。
type Tags struct {
	list  []core.Tag
	index map[string]int
}

// NewTags 用扁平标签列表构建目录。
func NewTags(tags []core.Tag) *Tags {
	t := &Tags{index: make(map[string]int, len(tags))}
	for _, tag := range tags {
		if tag.ID == "" {
			continue
		}
		if _, dup := t.index[tag.ID]; dup {
			continue
		}
		if tag.Embedding.IsAbsent() {
			tag.Embedding = nil
		}
		t.index[tag.ID] = len(t.list)
		t.list = append(t.list, tag)
	}
	return t
}

// ParseTags 解析 tags.json。
func ParseTags(data []byte) (*Tags, error) {
	var file TagsFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, core.NewDomainError(core.ModuleCatalog, core.ErrorCodeInvalidInput, fmt.Sprintf("catalog: parse tags: %v", err))
	}

	var flat []core.Tag
	for _, cat := range file.Categorias {
		for _, sub := range cat.Subcategorias {
			for _, tag := range sub.Tags {
				flat = append(flat, core.Tag{
					ID:          tag.ID,
					Label:       tag.Label,
					Description: tag.Description,
					Category:    cat.NomeCategoria,
					Subcategory: sub.NomeSubcategoria,
					Embedding:   core.Embedding(tag.Embedding),
				})
			}
		}
	}
	return NewTags(flat), nil
}

// Resolve 返回标签向量；未知或没有向量的标签返回 (nil, false)。
func (t *Tags) Resolve(tagID string) (core.Embedding, bool) {
	if t == nil {
		return nil, false
	}
	i, ok := t.index[tagID]
	if !ok || t.list[i].Embedding.IsAbsent() {
		return nil, false
	}
	return t.list[i].Embedding, true
}

// Get 按 ID 查找标签。
func (t *Tags) Get(tagID string) (core.Tag, bool) {
	if t == nil {
		return core.Tag{}, false
	}
	i, ok := t.index[tagID]
	if !ok {
		return core.Tag{}, false
	}
	return t.list[i], true
}

// List 返回所有标签的副本切片。
func (t *Tags) List() []core.Tag {
	if t == nil {
		return nil
	}
	return append([]core.Tag(nil), t.list...)
}

// Len 返回标签数量。
func (t *Tags) Len() int {
	if t == nil {
		return 0
	}
	return len(t.list)
}

var _ core.TagCatalog = (*Tags)(nil)
