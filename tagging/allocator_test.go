package tagging

import (
	"testing"

	"github.com/rushteam/mural/core"
)

var testTags = []core.Tag{
	{ID: "ia", Label: "IA", Embedding: core.Embedding{1, 0}},
	{ID: "dados", Label: "Dados", Embedding: core.Embedding{1, 0}},
	{ID: "web", Label: "Web", Embedding: core.Embedding{0, 1}},
	{ID: "estagio", Label: "Estágio", Embedding: core.Embedding{1, 0}},
	{ID: "sem", Label: "Sem vetor"},
}

func ids(as []Assignment) []string {
	out := make([]string, len(as))
	for i, a := range as {
		out[i] = a.TagID
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestAllocate(t *testing.T) {
	lab := &core.Opportunity{ID: "1", Kind: core.KindLaboratory, Embedding: core.Embedding{1, 0}}
	ej := &core.Opportunity{ID: "2", Kind: core.KindJuniorEnterprise, Embedding: core.Embedding{1, 0}}

	tests := []struct {
		name    string
		maxTags int
		opp     *core.Opportunity
		want    []string
	}{
		{"lab excludes kind tags", 12, lab, []string{"dados", "ia"}},
		{"ej keeps estagio", 12, ej, []string{"dados", "estagio", "ia"}},
		{"max tags", 1, ej, []string{"dados"}},
		{"unlimited", 0, ej, []string{"dados", "estagio", "ia"}},
		{"no embedding", 12, &core.Opportunity{ID: "3"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := NewAllocator(0.35, tt.maxTags, "")
			if err != nil {
				t.Fatalf("NewAllocator: %v", err)
			}
			got, err := a.Allocate(tt.opp, testTags)
			if err != nil {
				t.Fatalf("Allocate: %v", err)
			}
			if !equal(ids(got), tt.want) {
				t.Errorf("Allocate() = %v, want %v", ids(got), tt.want)
			}
		})
	}
}

func TestAllocateThresholdAndOrder(t *testing.T) {
	opp := &core.Opportunity{ID: "x", Kind: core.KindCompetitionTeam, Embedding: core.Embedding{3, 4}}
	a, _ := NewAllocator(0.5, 12, "true")
	got, err := a.Allocate(opp, testTags)
	if err != nil {
		t.Fatal(err)
	}
	// cos(web)=0.8，cos(ia)=0.6
	if len(got) != 4 || got[0].TagID != "web" {
		t.Fatalf("got %v", got)
	}
	for i := 1; i < len(got); i++ {
		if got[i-1].Score < got[i].Score {
			t.Errorf("not sorted desc: %v", got)
		}
	}

	a.Threshold = 0.7
	got, _ = a.Allocate(opp, testTags)
	if !equal(ids(got), []string{"web"}) {
		t.Errorf("threshold 0.7 = %v", ids(got))
	}
}

func TestNewAllocatorBadRule(t *testing.T) {
	if _, err := NewAllocator(0.35, 12, "tag.id =="); !core.IsInvalidInput(err) {
		t.Fatalf("err = %v, want INVALID_INPUT", err)
	}
}

func TestAllocateAll(t *testing.T) {
	a, _ := NewAllocator(0.35, 12, "")
	res, err := a.AllocateAll([]*core.Opportunity{
		{ID: "1", Kind: core.KindLaboratory, Embedding: core.Embedding{0, 1}},
		nil,
		{ID: "2"},
	}, testTags)
	if err != nil {
		t.Fatal(err)
	}
	if len(res) != 2 || !equal(ids(res["1"]), []string{"web"}) || len(res["2"]) != 0 {
		t.Errorf("AllocateAll = %v", res)
	}
}
