package core

// TagCatalog 是标签目录的领域接口（扁平的 id -> embedding 查找）。
//
// 约定：
//   - 未知标签或没有向量的标签，Resolve 返回 (nil, false)，绝不返回零向量
//   - 目录在调用前已加载完成，Resolve 不做 I/O
type TagCatalog interface {
	Resolve(tagID string) (Embedding, bool)
	List() []Tag
}

// OpportunityCatalog 是机会目录的领域接口。
// 实现由 catalog 包提供（JSON 文件 / HTTP），领域层只依赖 List。
type OpportunityCatalog interface {
	List() []*Opportunity
}
