package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/rushteam/mural/core"
)

const tagsJSON = `{
  "categorias": [
    {
      "nome_categoria": "Tecnologia",
      "subcategorias": [
        {
          "nome_subcategoria": "Computação",
          "tags": [
            {"id": "ia", "label": "Inteligência Artificial", "description": "IA", "embedding": [1, 0]},
            {"id": "web", "label": "Web", "embedding": [0, 1]},
            {"id": "vazia", "label": "Sem vetor", "embedding": []}
          ]
        }
      ]
    },
    {
      "nome_categoria": "Outros",
      "subcategorias": [
        {"nome_subcategoria": "Dup", "tags": [{"id": "ia", "label": "Duplicada", "embedding": [9, 9]}]}
      ]
    }
  ]
}`

const oppsJSON = `{
  "laboratorios": [
    {"id": 101, "nome": "LabIA", "coordenador": "Ana", "tags": [{"id": "ia", "label": "IA"}], "embedding_agregado": [0.9, 0.1]},
    {"id": 102, "nome": "LabSem", "tags": []}
  ],
  "empresas_juniores": [
    {"id": "ej-1", "Nome": "EJ Web", "Sobre": "sites", "tags": ["web"], "Embedding": [0.1, 0.9]}
  ],
  "equipes_competicao": [
    {"id": "equipe-300001", "name": "Robótica", "category": "Equipe de Competição", "tags": ["ia", "web"], "embedding": []}
  ]
}`

func TestParseTags(t *testing.T) {
	tags, err := ParseTags([]byte(tagsJSON))
	if err != nil {
		t.Fatalf("ParseTags: %v", err)
	}
	if tags.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", tags.Len())
	}

	tag, ok := tags.Get("ia")
	if !ok || tag.Label != "Inteligência Artificial" || tag.Category != "Tecnologia" || tag.Subcategory != "Computação" {
		t.Errorf("Get(ia) = %+v, %v; want first occurrence", tag, ok)
	}

	tests := []struct {
		id     string
		wantOK bool
	}{
		{"ia", true},
		{"web", true},
		{"vazia", false},
		{"desconhecida", false},
	}
	for _, tt := range tests {
		emb, ok := tags.Resolve(tt.id)
		if ok != tt.wantOK {
			t.Errorf("Resolve(%q) ok = %v, want %v", tt.id, ok, tt.wantOK)
		}
		if !ok && emb != nil {
			t.Errorf("Resolve(%q) = %v, want nil", tt.id, emb)
		}
	}
}

func TestParseTagsInvalid(t *testing.T) {
	_, err := ParseTags([]byte(`{not json`))
	if !core.IsInvalidInput(err) {
		t.Fatalf("err = %v, want INVALID_INPUT", err)
	}
}

func TestParseOpportunities(t *testing.T) {
	opps, err := ParseOpportunities([]byte(oppsJSON))
	if err != nil {
		t.Fatalf("ParseOpportunities: %v", err)
	}
	if len(opps) != 4 {
		t.Fatalf("len = %d, want 4", len(opps))
	}

	byID := make(map[string]*core.Opportunity)
	for _, o := range opps {
		byID[o.ID] = o
	}

	lab := byID["101"]
	if lab == nil || lab.Name != "LabIA" || lab.Kind != core.KindLaboratory {
		t.Fatalf("lab = %+v", lab)
	}
	if len(lab.Embedding) != 2 || lab.Embedding[0] != 0.9 {
		t.Errorf("lab embedding = %v, want legacy field accepted", lab.Embedding)
	}
	if len(lab.Tags) != 1 || lab.Tags[0] != "ia" {
		t.Errorf("lab tags = %v", lab.Tags)
	}
	if lab.Meta["coordenador"] != "Ana" {
		t.Errorf("lab meta = %v", lab.Meta)
	}
	if _, leaked := lab.Meta["embedding_agregado"]; leaked {
		t.Errorf("embedding alias should not be kept in meta")
	}

	if byID["102"].Embedding != nil {
		t.Errorf("lab without vector = %v, want absent", byID["102"].Embedding)
	}

	ej := byID["ej-1"]
	if ej == nil || ej.Name != "EJ Web" || ej.Kind != core.KindJuniorEnterprise || len(ej.Embedding) != 2 {
		t.Errorf("ej = %+v", ej)
	}

	team := byID["equipe-300001"]
	if team == nil || team.Kind != core.KindCompetitionTeam || team.Category != "Equipe de Competição" {
		t.Errorf("team = %+v", team)
	}
	if !team.Embedding.IsAbsent() {
		t.Errorf("team embedding = %v, want absent before derive", team.Embedding)
	}
}

func TestParseOpportunitiesArrayRoot(t *testing.T) {
	opps, err := ParseOpportunities([]byte(`[{"id": "x", "name": "X", "category": "Laboratório"}, {"name": "no id"}]`))
	if err != nil {
		t.Fatalf("ParseOpportunities: %v", err)
	}
	if len(opps) != 1 || opps[0].Kind != core.KindLaboratory {
		t.Fatalf("opps = %+v", opps)
	}

	if _, err := ParseOpportunities([]byte(`"str"`)); !core.IsInvalidInput(err) {
		t.Errorf("scalar root err = %v, want INVALID_INPUT", err)
	}
}

func TestNewOpportunitiesDedup(t *testing.T) {
	o := NewOpportunities([]*core.Opportunity{
		{ID: "a", Name: "first"},
		nil,
		{ID: ""},
		{ID: "a", Name: "second"},
		{ID: "b"},
	})
	list := o.List()
	if len(list) != 2 || list[0].Name != "first" || list[1].ID != "b" {
		t.Fatalf("List() = %+v", list)
	}
}

func TestDeriveEmbeddings(t *testing.T) {
	tags, _ := ParseTags([]byte(tagsJSON))
	team := &core.Opportunity{ID: "t", Tags: []string{"ia", "web", "desconhecida"}}
	none := &core.Opportunity{ID: "n", Tags: []string{"vazia"}}
	has := &core.Opportunity{ID: "h", Tags: []string{"ia"}, Embedding: core.Embedding{3, 3}}

	out := DeriveEmbeddings([]*core.Opportunity{team, none, has}, tags)
	if len(out) != 3 {
		t.Fatalf("len = %d", len(out))
	}
	if got := out[0].Embedding; len(got) != 2 || got[0] != 0.5 || got[1] != 0.5 {
		t.Errorf("derived = %v, want [0.5 0.5]", got)
	}
	if team.Embedding != nil {
		t.Errorf("input mutated: %v", team.Embedding)
	}
	if !out[1].Embedding.IsAbsent() {
		t.Errorf("no resolvable tags should stay absent, got %v", out[1].Embedding)
	}
	if out[2] != has {
		t.Errorf("record with vector should be passed through")
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestSourceReaderHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/tags.json" {
			w.Write([]byte(tagsJSON))
			return
		}
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer srv.Close()

	r := NewSourceReaderWithClient(srv.Client())
	data, err := r.Read(context.Background(), srv.URL+"/tags.json")
	if err != nil || string(data) != tagsJSON {
		t.Fatalf("Read = %q, %v", data, err)
	}
	if _, err := r.Read(context.Background(), srv.URL+"/missing.json"); !core.IsUnavailable(err) {
		t.Errorf("404 err = %v, want UNAVAILABLE", err)
	}
}

func TestSourceReaderFile(t *testing.T) {
	r := NewSourceReader(0)
	if _, err := r.Read(context.Background(), ""); !core.IsInvalidInput(err) {
		t.Errorf("empty source err = %v", err)
	}
	if _, err := r.Read(context.Background(), filepath.Join(t.TempDir(), "none.json")); !core.IsUnavailable(err) {
		t.Errorf("missing file err = %v", err)
	}
}

func TestLoadAll(t *testing.T) {
	dir := t.TempDir()
	tagsPath := writeFile(t, dir, "tags.json", tagsJSON)
	oppsPath := writeFile(t, dir, "oportunidades.json", oppsJSON)
	missing := filepath.Join(dir, "missing.json")
	alsoMissing := filepath.Join(dir, "also-missing.json")

	var mu sync.Mutex
	var failed []string
	l := NewLoader(nil)
	l.OnSourceError = func(source string, err error) {
		mu.Lock()
		defer mu.Unlock()
		failed = append(failed, source)
	}

	snap, err := l.LoadAll(context.Background(), Sources{Tags: tagsPath, Opportunities: []string{oppsPath, missing, alsoMissing}})
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if snap.Tags.Len() != 3 {
		t.Errorf("tags = %d", snap.Tags.Len())
	}
	if snap.Opportunities.Len() != 4 {
		t.Errorf("opportunities = %d, want 4", snap.Opportunities.Len())
	}
	sort.Strings(failed)
	if len(failed) != 2 || failed[0] != alsoMissing || failed[1] != missing {
		t.Errorf("failed = %v", failed)
	}
	for _, o := range snap.Opportunities.List() {
		if o.ID == "equipe-300001" && o.Embedding.IsAbsent() {
			t.Errorf("team embedding should be derived from tags")
		}
	}
}

func TestLoadAllTagsFailure(t *testing.T) {
	_, err := NewLoader(nil).LoadAll(context.Background(), Sources{Tags: filepath.Join(t.TempDir(), "none.json")})
	if err == nil {
		t.Fatal("want error when tags are unavailable")
	}
	var de *core.DomainError
	if !errors.As(err, &de) || de.Module != core.ModuleCatalog {
		t.Errorf("err = %v, want catalog DomainError", err)
	}
}

func TestWatch(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "tags.json", tagsJSON)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan struct{}, 8)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, []string{p, "https://ignored.example"}, 20*time.Millisecond, func() {
			changed <- struct{}{}
		})
	}()

	// 等待 watcher 注册完成
	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
loop:
	for {
		select {
		case <-changed:
			break loop
		case <-tick.C:
			writeFile(t, dir, "tags.json", tagsJSON)
		case <-deadline:
			t.Fatal("onChange not called")
		}
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Watch returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not stop after cancel")
	}
}
