package stdtext

import (
	"context"
	"strings"
	"testing"

	"github.com/cognicore/stdtext/pkg/stdtext/config"
	"github.com/cognicore/stdtext/pkg/stdtext/store"
)

// TestEndToEnd demonstrates the complete rewrite workflow:
// 1. Wiring vocabulary, gazetteer and an empty model
// 2. Fitting the corpus model from historical rows
// 3. Rewriting a noisy invoice line
// 4. Spelling check and nearest examples
// 5. Restart from the persisted snapshot
func TestEndToEnd(t *testing.T) {
	ctx := context.Background()

	// === Phase 1: Setup ===

	st := store.NewMemoryStore()
	rows := []string{
		"montering af lampe i køkken",
		"udskiftning af sikring i tavle",
		"kontrol af anlæg",
		"opsætning af stikkontakt i bad",
	}
	r := New(Options{
		Config:     config.Default(),
		Vocabulary: testVocabulary(),
		Cities:     []string{"odense"},
		Store:      st,
		LoadRows:   func() ([]string, error) { return rows, nil },
	})
	defer r.Close()

	// === Phase 2: Fit the model ===

	info, err := r.Rebuild(ctx)
	if err != nil {
		t.Fatalf("Rebuild failed: %v", err)
	}
	if !info.Fitted || info.Records != len(rows) {
		t.Fatalf("model info = %+v, want %d fitted records", info, len(rows))
	}
	t.Logf("✓ Fitted %d historical rows", info.Records)

	// === Phase 3: Rewrite a noisy line ===

	res := r.Rewrite("monterig af 2 lamppu i køken ok")
	if !strings.Contains(res.Output, "MONTERING AF 2 LAMPER I KØKKEN") {
		t.Errorf("output %q should contain the canonical form", res.Output)
	}
	if res.Output != "MONTERING AF 2 LAMPER I KØKKEN I ORDEN" {
		t.Errorf("output = %q, want the trailing ok styled as I ORDEN", res.Output)
	}
	if len(res.Examples) == 0 {
		t.Error("rewrite should carry nearest examples once fitted")
	}
	t.Logf("✓ Rewrote to %q", res.Output)

	// === Phase 4: Spelling and neighbors ===

	sp := r.CheckSpelling("lamppe i tavlle")
	if sp.Corrected != "lampe i tavle" {
		t.Errorf("Corrected = %q, want %q", sp.Corrected, "lampe i tavle")
	}

	ex := r.NearestExamples("udskiftning af sikring", 2)
	if len(ex) != 2 {
		t.Fatalf("examples = %v, want 2", ex)
	}
	if ex[0].Text != "udskiftning af sikring i tavle" {
		t.Errorf("nearest = %q", ex[0].Text)
	}
	if ex[0].Distance > ex[1].Distance {
		t.Error("examples should be ordered by ascending distance")
	}
	t.Logf("✓ Nearest example %q at %.3f", ex[0].Text, ex[0].Distance)

	// === Phase 5: Restart from the snapshot ===

	fresh := New(Options{
		Config:     config.Default(),
		Vocabulary: testVocabulary(),
		Cities:     []string{"odense"},
		Store:      st,
	})
	if err := fresh.Restore(ctx); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	again := fresh.Rewrite("monterig af 2 lamppu i køken ok")
	if again.Output != res.Output {
		t.Errorf("restored output = %q, want %q", again.Output, res.Output)
	}
	t.Logf("✓ Restored model rewrites identically")
}
