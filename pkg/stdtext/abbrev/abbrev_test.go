package abbrev

import (
	"path/filepath"
	"testing"

	"github.com/cognicore/stdtext/pkg/stdtext/pipeline"
	"github.com/cognicore/stdtext/pkg/stdtext/token"
)

func TestExtractAbbreviations(t *testing.T) {
	pc := pipeline.NewContext()
	in := token.Fields("udskiftning af ventil mv. jf. aftale")
	out := NewExtractor().Transform(pc, in)

	want := "udskiftning af ventil <ABBR_0001> <ABBR_0002> aftale"
	if got := out.Render(); got != want {
		t.Fatalf("Transform() = %q, want %q", got, want)
	}

	if v, _ := pc.Abbrevs.Get("<ABBR_0001>"); v != "mv." {
		t.Errorf("mapping <ABBR_0001> = %q, want %q", v, "mv.")
	}
	if v, _ := pc.Abbrevs.Get("<ABBR_0002>"); v != "jf." {
		t.Errorf("mapping <ABBR_0002> = %q, want %q", v, "jf.")
	}
}

func TestUnitsAreNotExtracted(t *testing.T) {
	pc := pipeline.NewContext()
	in := token.Fields("2 stk. lamper og 3 kg. grus")
	out := NewExtractor().Transform(pc, in)

	if pc.Abbrevs.Len() != 0 {
		t.Errorf("Abbrevs.Len() = %d, want 0 (units stay literal)", pc.Abbrevs.Len())
	}
	want := "2 stk. lamper og 3 kg. grus"
	if got := out.Render(); got != want {
		t.Errorf("Transform() = %q, want %q", got, want)
	}
}

func TestFourLetterStemIsNotExtracted(t *testing.T) {
	pc := pipeline.NewContext()
	out := NewExtractor().Transform(pc, token.Fields("mont. af lampe"))

	// Four letters plus period is outside the 2-3 letter extraction shape.
	want := "mont. af lampe"
	if got := out.Render(); got != want {
		t.Errorf("Transform() = %q, want %q", got, want)
	}
}

func TestRoundTrip(t *testing.T) {
	pc := pipeline.NewContext()
	in := token.Fields("kontrol af anlæg mv. udført")
	out := NewExtractor().Transform(pc, in)

	restored := pipeline.Reinsert(pc, out, func(token.CountRecord) string { return "" }, false)
	if restored != "kontrol af anlæg mv. udført" {
		t.Errorf("Reinsert() = %q, want original text back", restored)
	}
}

func TestMine(t *testing.T) {
	freqs := map[string]int{
		"mont":        3,
		"montage":     40,
		"udsk":        2,
		"udskiftning": 25,
	}
	pairs := Mine(freqs, DefaultMineOptions())

	if got := pairs["mont"]; got != "montage" {
		t.Errorf(`pairs["mont"] = %q, want "montage"`, got)
	}
	if _, ok := pairs["udsk"]; ok {
		// "udskiftning" is 7 runes longer than "udsk", beyond MaxPrefixDiff.
		t.Error(`pairs["udsk"] should be absent (prefix gap too large)`)
	}
}

func TestMineSkipsFrequentShortForms(t *testing.T) {
	freqs := map[string]int{
		"lampe":  100,
		"lamper": 120,
	}
	pairs := Mine(freqs, DefaultMineOptions())
	if _, ok := pairs["lampe"]; ok {
		t.Error(`pairs["lampe"] should be absent (frequent words are not abbreviations)`)
	}
}

func TestPairsFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "abbrev_pairs.txt")
	in := map[string]string{"mont": "montering", "udsk": "udskiftning"}

	if err := WritePairs(path, in); err != nil {
		t.Fatalf("WritePairs() error: %v", err)
	}
	out, err := LoadPairs(path)
	if err != nil {
		t.Fatalf("LoadPairs() error: %v", err)
	}
	if len(out) != 2 || out["mont"] != "montering" || out["udsk"] != "udskiftning" {
		t.Errorf("LoadPairs() = %v, want %v", out, in)
	}
}
