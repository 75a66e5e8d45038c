package preference

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/rushteam/mural/core"
)

// StoreSelection 是基于 core.Store 的 SelectionStore 实现。
// 集合以排序后的 JSON 字符串数组保存；key 不存在视为空集合。
type StoreSelection struct {
	store core.Store
	key   string
}

// NewStoreSelection 创建已选标签存储，namespace 为空时使用固定 key "selectedTags"。
func NewStoreSelection(s core.Store, namespace string) *StoreSelection {
	return &StoreSelection{store: s, key: namespaced(namespace, KeySelectedTags)}
}

func (s *StoreSelection) Current(ctx context.Context) ([]string, error) {
	data, err := s.store.Get(ctx, s.key)
	if core.IsStoreNotFound(err) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read selection: %w", err)
	}

	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, fmt.Errorf("decode selection: %w", err)
	}
	return normalize(ids), nil
}

func (s *StoreSelection) Toggle(ctx context.Context, tagID string) ([]string, error) {
	ids, err := s.Current(ctx)
	if err != nil {
		return nil, err
	}

	next := make([]string, 0, len(ids)+1)
	found := false
	for _, id := range ids {
		if id == tagID {
			found = true
			continue
		}
		next = append(next, id)
	}
	if !found {
		next = append(next, tagID)
	}
	next = normalize(next)

	if len(next) == 0 {
		return next, s.Clear(ctx)
	}
	data, err := json.Marshal(next)
	if err != nil {
		return nil, err
	}
	if err := s.store.Set(ctx, s.key, data); err != nil {
		return nil, fmt.Errorf("write selection: %w", err)
	}
	return next, nil
}

func (s *StoreSelection) Clear(ctx context.Context) error {
	if err := s.store.Delete(ctx, s.key); err != nil {
		return fmt.Errorf("clear selection: %w", err)
	}
	return nil
}

// normalize 去重、去空串并排序
func normalize(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

var _ core.SelectionStore = (*StoreSelection)(nil)
