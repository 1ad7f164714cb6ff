package vocab

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestTableAddAndCount(t *testing.T) {
	tab := NewTable()
	tab.Add("Lampe", 3)
	tab.Add("lampe", 2)
	tab.Add("stik", 1)
	tab.Add("tom", 0)

	if got := tab.Count("lampe"); got != 5 {
		t.Errorf("Count(lampe) = %d, want 5", got)
	}
	if got := tab.Count("LAMPE"); got != 5 {
		t.Errorf("Count(LAMPE) = %d, want 5", got)
	}
	if tab.Contains("tom") {
		t.Error("Contains(tom) = true, want false")
	}
	if got := tab.Total(); got != 6 {
		t.Errorf("Total() = %d, want 6", got)
	}
	if got := tab.Len(); got != 2 {
		t.Errorf("Len() = %d, want 2", got)
	}
}

func TestTableAddText(t *testing.T) {
	tab := NewTable()
	tab.AddText("Montering af 2 lamper, montering af stik.")

	if got := tab.Count("montering"); got != 2 {
		t.Errorf("Count(montering) = %d, want 2", got)
	}
	if got := tab.Count("2"); got != 1 {
		t.Errorf("Count(2) = %d, want 1", got)
	}
	if got := tab.Count("lamper"); got != 1 {
		t.Errorf("Count(lamper) = %d, want 1", got)
	}
}

func TestLoadFormats(t *testing.T) {
	path := filepath.Join(t.TempDir(), "words.txt")
	content := "lampe 10\nstik\n\nkabel til måler\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	tab, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := tab.Count("lampe"); got != 10 {
		t.Errorf("Count(lampe) = %d, want 10", got)
	}
	if got := tab.Count("stik"); got != 1 {
		t.Errorf("Count(stik) = %d, want 1", got)
	}
	for _, w := range []string{"kabel", "til", "måler"} {
		if got := tab.Count(w); got != 1 {
			t.Errorf("Count(%s) = %d, want 1", w, got)
		}
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	tab := NewTable()
	tab.Add("lampe", 5)
	tab.Add("stik", 2)
	tab.Add("æble", 1)

	path := filepath.Join(t.TempDir(), "words.txt")
	if err := tab.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	back, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	for _, w := range tab.Words() {
		if back.Count(w) != tab.Count(w) {
			t.Errorf("Count(%s) = %d, want %d", w, back.Count(w), tab.Count(w))
		}
	}
	if back.Total() != tab.Total() {
		t.Errorf("Total() = %d, want %d", back.Total(), tab.Total())
	}
}

func TestMerge(t *testing.T) {
	a := NewTable()
	a.Add("lampe", 2)
	b := NewTable()
	b.Add("lampe", 3)
	b.Add("stik", 1)

	a.Merge(b)
	if got := a.Count("lampe"); got != 5 {
		t.Errorf("Count(lampe) = %d, want 5", got)
	}
	if got := a.Total(); got != 6 {
		t.Errorf("Total() = %d, want 6", got)
	}
}

func TestSet(t *testing.T) {
	s := NewSet()
	s.Add(" Fejlfinding ")
	s.Add("hpfi")

	if !s.Has("fejlfinding") || !s.Has("FEJLFINDING") {
		t.Error("Has(fejlfinding) = false, want true")
	}
	s.Remove("fejlfinding")
	if s.Has("fejlfinding") {
		t.Error("Has after Remove = true, want false")
	}

	s.Replace([]string{"a", "b", ""})
	want := []string{"a", "b"}
	if got := s.Words(); !reflect.DeepEqual(got, want) {
		t.Errorf("Words() = %v, want %v", got, want)
	}
	if got := s.Len(); got != 2 {
		t.Errorf("Len() = %d, want 2", got)
	}
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	if err := s.Add(ctx, "Relæ"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := s.Add(ctx, "hpfi"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	got, err := s.All(ctx)
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	want := []string{"hpfi", "relæ"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("All() = %v, want %v", got, want)
	}

	if err := s.Remove(ctx, "hpfi"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	got, _ = s.All(ctx)
	if !reflect.DeepEqual(got, []string{"relæ"}) {
		t.Errorf("All() = %v, want [relæ]", got)
	}
}

func TestNewRedisStoreDefaultKey(t *testing.T) {
	s := NewRedisStore(nil, "")
	if s.key != redisKey {
		t.Errorf("key = %q, want %q", s.key, redisKey)
	}
	s = NewRedisStore(nil, "other")
	if s.key != "other" {
		t.Errorf("key = %q, want %q", s.key, "other")
	}
}
