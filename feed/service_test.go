package feed

import (
	"bytes"
	"context"
	"log"
	"math"
	"strings"
	"testing"

	"github.com/rushteam/mural/core"
	"github.com/rushteam/mural/pipeline"
	"github.com/rushteam/mural/preference"
	"github.com/rushteam/mural/rank"
	"github.com/rushteam/mural/recall"
	"github.com/rushteam/mural/rerank"
	"github.com/rushteam/mural/store"
)

type listCatalog []*core.Opportunity

func (c listCatalog) List() []*core.Opportunity { return c }

type mapTags map[string]core.Embedding

func (m mapTags) Resolve(id string) (core.Embedding, bool) {
	v, ok := m[id]
	return v, ok && len(v) > 0
}

func (m mapTags) List() []core.Tag {
	var out []core.Tag
	for id, emb := range m {
		out = append(out, core.Tag{ID: id, Embedding: emb})
	}
	return out
}

var opportunities = listCatalog{
	{ID: "O1", Name: "Zeta Lab", Embedding: core.Embedding{1, 0}},
	{ID: "O2", Name: "alpha EJ", Embedding: core.Embedding{0.8, 0.6}},
	{ID: "O3", Name: "Beta Team"},
}

func newFeed(t *testing.T) (*Service, *preference.Service) {
	t.Helper()
	s := store.NewMemoryStore()
	cache := preference.NewStoreCache(s, "", 0)
	selection := preference.NewStoreSelection(s, "")
	prefs := preference.NewService(mapTags{"t1": {1, 0}, "t2": {0, 1}}, selection, cache)

	f := &Service{
		Recall: &recall.CatalogSource{Catalog: opportunities},
		Pipeline: &pipeline.Pipeline{Nodes: []pipeline.Node{
			&rank.SimilarityNode{Ranker: rank.NewRanker()},
			&rerank.NameFallback{},
		}},
		Cache:     cache,
		Selection: selection,
		PageSize:  20,
	}
	return f, prefs
}

func ids(items []*core.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func TestFeedPersonalized(t *testing.T) {
	ctx := context.Background()
	f, prefs := newFeed(t)

	// t1 + t2 -> [0.5, 0.5]
	if _, err := prefs.Toggle(ctx, "t1"); err != nil {
		t.Fatal(err)
	}
	if _, err := prefs.Toggle(ctx, "t2"); err != nil {
		t.Fatal(err)
	}

	page, err := f.Feed(ctx, Request{})
	if err != nil {
		t.Fatalf("Feed: %v", err)
	}
	if !page.Personalized || page.Total != 3 {
		t.Fatalf("page = %+v", page)
	}
	got := ids(page.Items)
	if got[0] != "O2" || got[1] != "O1" || got[2] != "O3" {
		t.Errorf("order = %v, want [O2 O1 O3]", got)
	}
	if page.Items[2].Score != 0 {
		t.Errorf("item without embedding score = %v, want 0", page.Items[2].Score)
	}
}

func TestFeedNotPersonalized(t *testing.T) {
	ctx := context.Background()
	f, prefs := newFeed(t)

	if _, err := prefs.Toggle(ctx, "t1"); err != nil {
		t.Fatal(err)
	}
	// 取消唯一的标签后缓存被清除
	if _, err := prefs.Toggle(ctx, "t1"); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := prefs.Preference(ctx); ok {
		t.Fatal("preference should be absent after deselecting all tags")
	}

	page, err := f.Feed(ctx, Request{})
	if err != nil {
		t.Fatalf("Feed: %v", err)
	}
	if page.Personalized {
		t.Error("page should not be personalized")
	}
	got := ids(page.Items)
	if got[0] != "O2" || got[1] != "O3" || got[2] != "O1" {
		t.Errorf("order = %v, want name order [O2 O3 O1]", got)
	}
	for _, it := range page.Items {
		if it.Score != 0 || it.Personalized {
			t.Errorf("item %s = score %v personalized %v", it.ID, it.Score, it.Personalized)
		}
	}
}

func TestFeedPagination(t *testing.T) {
	f, _ := newFeed(t)
	tests := []struct {
		page, size int
		want       []string
		offset     int
	}{
		{1, 2, []string{"O2", "O3"}, 0},
		{2, 2, []string{"O1"}, 2},
		{3, 2, []string{}, 3},
		{0, 0, []string{"O2", "O3", "O1"}, 0},
		{math.MaxInt/2 + 2, 2, []string{}, 3},
		{math.MaxInt, 1, []string{}, 3},
	}
	for _, tt := range tests {
		page, err := f.Feed(context.Background(), Request{Page: tt.page, PageSize: tt.size})
		if err != nil {
			t.Fatal(err)
		}
		got := ids(page.Items)
		if strings.Join(got, ",") != strings.Join(tt.want, ",") {
			t.Errorf("page %d size %d = %v, want %v", tt.page, tt.size, got, tt.want)
		}
		if page.Total != 3 {
			t.Errorf("total = %d", page.Total)
		}
		if page.Offset != tt.offset {
			t.Errorf("page %d size %d offset = %d, want %d", tt.page, tt.size, page.Offset, tt.offset)
		}
	}
}

func TestFeedCorruptCacheFallsBack(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	if err := s.Set(ctx, preference.KeyPreference, []byte("{oops")); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	f := &Service{
		Recall:   &recall.CatalogSource{Catalog: opportunities},
		Pipeline: &pipeline.Pipeline{Nodes: []pipeline.Node{&rank.SimilarityNode{}, &rerank.NameFallback{}}},
		Cache:    preference.NewStoreCache(s, "", 0),
		Logger:   log.New(&buf, "", 0),
	}
	page, err := f.Feed(ctx, Request{})
	if err != nil {
		t.Fatalf("Feed: %v", err)
	}
	if page.Personalized || ids(page.Items)[0] != "O2" {
		t.Errorf("page = %+v", page)
	}
	if !strings.Contains(buf.String(), "falling back") {
		t.Errorf("log = %q", buf.String())
	}
}
