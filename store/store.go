// Package store 提供 core.Store 的实现：内存、JSON 文件、Redis。
//
// 注意：此包只包含实现，接口定义在 core 包。
//
// 示例：
//
//	var s core.Store = store.NewMemoryStore()
//	fs, err := store.NewFileStore("~/.mural/state.json")
package store
