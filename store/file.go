package store

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rushteam/mural/core"
)

// FileStore 把所有 key 保存在一个 JSON 文件中，用作本地的持久化 KV（CLI 多次运行之间保留状态）。
//
// 每次写入都整体重写文件（临时文件 + rename），单写者假设下不需要文件锁。
type FileStore struct {
	mu   sync.Mutex
	path string
	now  func() time.Time
}

type fileEntry struct {
	Value  string `json:"value"` // base64
	Expire int64  `json:"expire,omitempty"`
}

// NewFileStore 创建文件存储；路径支持 "~/" 前缀，目录不存在时自动创建。
func NewFileStore(path string) (*FileStore, error) {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		path = filepath.Join(home, path[2:])
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	return &FileStore{path: path, now: time.Now}, nil
}

func (f *FileStore) Name() string { return "file" }

// Path 返回底层文件路径。
func (f *FileStore) Path() string { return f.path }

func (f *FileStore) load() (map[string]fileEntry, error) {
	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return make(map[string]fileEntry), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read store file: %w", err)
	}
	kv := make(map[string]fileEntry)
	if len(data) == 0 {
		return kv, nil
	}
	if err := json.Unmarshal(data, &kv); err != nil {
		return nil, fmt.Errorf("parse store file: %w", err)
	}
	return kv, nil
}

func (f *FileStore) save(kv map[string]fileEntry) error {
	data, err := json.MarshalIndent(kv, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".store-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), f.path)
}

func (f *FileStore) Get(ctx context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	kv, err := f.load()
	if err != nil {
		return nil, err
	}
	e, ok := kv[key]
	if !ok || (e.Expire > 0 && f.now().Unix() > e.Expire) {
		return nil, core.ErrStoreNotFound
	}
	return base64.StdEncoding.DecodeString(e.Value)
}

func (f *FileStore) Set(ctx context.Context, key string, value []byte, ttl ...int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	kv, err := f.load()
	if err != nil {
		return err
	}
	e := fileEntry{Value: base64.StdEncoding.EncodeToString(value)}
	if len(ttl) > 0 && ttl[0] > 0 {
		e.Expire = f.now().Add(time.Duration(ttl[0]) * time.Second).Unix()
	}
	kv[key] = e
	return f.save(kv)
}

func (f *FileStore) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	kv, err := f.load()
	if err != nil {
		return err
	}
	if _, ok := kv[key]; !ok {
		return nil
	}
	delete(kv, key)
	return f.save(kv)
}

func (f *FileStore) Close() error { return nil }

var _ core.Store = (*FileStore)(nil)
