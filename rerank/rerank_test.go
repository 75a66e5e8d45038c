package rerank

import (
	"context"
	"testing"

	"github.com/rushteam/mural/core"
)

func items(names ...string) []*core.Item {
	out := make([]*core.Item, len(names))
	for i, n := range names {
		out[i] = core.NewItem(&core.Opportunity{ID: string(rune('a' + i)), Name: n})
	}
	return out
}

func names(items []*core.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Name()
	}
	return out
}

func TestTopNNode(t *testing.T) {
	tests := []struct {
		name      string
		n, offset int
		want      int
	}{
		{"no limit", 0, 0, 5},
		{"first page", 2, 0, 2},
		{"second page", 2, 2, 2},
		{"last partial page", 2, 4, 1},
		{"offset past end", 2, 10, 0},
		{"n larger than rest", 10, 1, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node := &TopNNode{N: tt.n, Offset: tt.offset}
			got, err := node.Process(context.Background(), nil, items("a", "b", "c", "d", "e"))
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != tt.want {
				t.Errorf("len = %d, want %d", len(got), tt.want)
			}
		})
	}

	got, _ := (&TopNNode{N: 2, Offset: 2}).Process(context.Background(), nil, items("a", "b", "c", "d"))
	if names(got)[0] != "c" {
		t.Errorf("page 2 starts with %q", names(got)[0])
	}
}

func TestNameFallback(t *testing.T) {
	in := items("beta", "Alpha", "alpha", "Gamma")
	got, err := (&NameFallback{}).Process(context.Background(), &core.RecommendContext{}, in)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"Alpha", "alpha", "beta", "Gamma"}
	for i, n := range names(got) {
		if n != want[i] {
			t.Fatalf("order = %v, want %v", names(got), want)
		}
	}
	if names(in)[0] != "beta" {
		t.Errorf("input slice reordered")
	}
	if got[0].Labels["rerank_order"].Value != "name" {
		t.Errorf("missing rerank_order label")
	}

	personalized := &core.RecommendContext{Preference: core.Embedding{1}}
	got, _ = (&NameFallback{}).Process(context.Background(), personalized, in)
	if names(got)[0] != "beta" {
		t.Errorf("personalized order changed: %v", names(got))
	}
}
