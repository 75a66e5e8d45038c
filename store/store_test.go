package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rushteam/mural/core"
)

// exerciseStore 对所有后端执行同一组行为检查。
func exerciseStore(t *testing.T, s core.Store) {
	t.Helper()
	ctx := context.Background()

	if _, err := s.Get(ctx, "selectedTags"); !core.IsStoreNotFound(err) {
		t.Fatalf("Get(missing) error = %v, want ErrStoreNotFound", err)
	}

	if err := s.Set(ctx, "selectedTags", []byte(`["a","b"]`)); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	got, err := s.Get(ctx, "selectedTags")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(got) != `["a","b"]` {
		t.Errorf("Get() = %s", got)
	}

	// 整体覆盖
	if err := s.Set(ctx, "selectedTags", []byte(`["c"]`)); err != nil {
		t.Fatalf("Set() overwrite error = %v", err)
	}
	got, _ = s.Get(ctx, "selectedTags")
	if string(got) != `["c"]` {
		t.Errorf("Get() after overwrite = %s", got)
	}

	if err := s.Delete(ctx, "selectedTags"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := s.Get(ctx, "selectedTags"); !core.IsStoreNotFound(err) {
		t.Errorf("Get() after Delete error = %v, want ErrStoreNotFound", err)
	}
	if err := s.Delete(ctx, "never-set"); err != nil {
		t.Errorf("Delete(missing) error = %v", err)
	}
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	exerciseStore(t, s)
}

func TestMemoryStoreTTL(t *testing.T) {
	s := NewMemoryStore()
	now := time.Unix(1000, 0)
	s.now = func() time.Time { return now }
	ctx := context.Background()

	if err := s.Set(ctx, "k", []byte("v"), 10); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Get(ctx, "k"); err != nil {
		t.Fatalf("Get() before expiry error = %v", err)
	}
	now = now.Add(11 * time.Second)
	if _, err := s.Get(ctx, "k"); !core.IsStoreNotFound(err) {
		t.Errorf("Get() after expiry error = %v, want ErrStoreNotFound", err)
	}
}

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.json")
	s, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	exerciseStore(t, s)
}

func TestFileStorePersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	ctx := context.Background()

	first, err := NewFileStore(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := first.Set(ctx, "userMeanEmbedding", []byte("[0.5,0.5]")); err != nil {
		t.Fatal(err)
	}

	second, err := NewFileStore(path)
	if err != nil {
		t.Fatal(err)
	}
	got, err := second.Get(ctx, "userMeanEmbedding")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(got) != "[0.5,0.5]" {
		t.Errorf("Get() = %s", got)
	}
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	s := NewRedisStoreWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	defer s.Close()

	exerciseStore(t, s)

	ctx := context.Background()
	if err := s.Set(ctx, "ttl", []byte("v"), 5); err != nil {
		t.Fatal(err)
	}
	mr.FastForward(6 * time.Second)
	if _, err := s.Get(ctx, "ttl"); !core.IsStoreNotFound(err) {
		t.Errorf("Get() after ttl error = %v, want ErrStoreNotFound", err)
	}
}

func TestNewRedisStoreUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	if _, err := NewRedisStore(addr, 0); err == nil {
		t.Fatal("NewRedisStore() against a closed server should fail")
	}
}
