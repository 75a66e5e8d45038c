package preference

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rushteam/mural/core"
)

// StoreCache 是基于 core.Store 的 PreferenceCache 实现。
// 向量以 JSON 数字数组保存；key 不存在表示“缺失”。
type StoreCache struct {
	store core.Store
	key   string
	ttl   int
}

// NewStoreCache 创建偏好向量缓存，ttl 单位为秒，0 表示不过期。
func NewStoreCache(s core.Store, namespace string, ttl int) *StoreCache {
	return &StoreCache{store: s, key: namespaced(namespace, KeyPreference), ttl: ttl}
}

// Write 整体覆盖缓存；写入缺失向量等价于 Clear。
func (c *StoreCache) Write(ctx context.Context, vector core.Embedding) error {
	if vector.IsAbsent() {
		return c.Clear(ctx)
	}
	data, err := json.Marshal([]float64(vector))
	if err != nil {
		return fmt.Errorf("encode preference: %w", err)
	}
	if err := c.store.Set(ctx, c.key, data, c.ttl); err != nil {
		return fmt.Errorf("write preference: %w", err)
	}
	return nil
}

func (c *StoreCache) Clear(ctx context.Context) error {
	if err := c.store.Delete(ctx, c.key); err != nil {
		return fmt.Errorf("clear preference: %w", err)
	}
	return nil
}

func (c *StoreCache) Read(ctx context.Context) (core.Embedding, bool, error) {
	data, err := c.store.Get(ctx, c.key)
	if core.IsStoreNotFound(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read preference: %w", err)
	}

	var vec []float64
	if err := json.Unmarshal(data, &vec); err != nil {
		return nil, false, fmt.Errorf("decode preference: %w", err)
	}
	if len(vec) == 0 {
		return nil, false, nil
	}
	return core.Embedding(vec), true, nil
}

var _ core.PreferenceCache = (*StoreCache)(nil)
