package spell

import (
	"reflect"
	"testing"

	"github.com/cognicore/stdtext/pkg/stdtext/pipeline"
	"github.com/cognicore/stdtext/pkg/stdtext/token"
	"github.com/cognicore/stdtext/pkg/stdtext/vocab"
)

func testTable() *vocab.Table {
	t := vocab.NewTable()
	t.Add("lampe", 8)
	t.Add("lamper", 4)
	t.Add("stik", 5)
	t.Add("stikke", 2)
	t.Add("kabel", 3)
	t.Add("køkken", 6)
	t.Add("montering", 7)
	return t
}

func TestCorrectKnownWord(t *testing.T) {
	b := NewFreqDict("dictionary", testTable())
	if got := b.Correct("lampe"); got != "lampe" {
		t.Errorf("Correct(lampe) = %q, want %q", got, "lampe")
	}
}

func TestCorrectOneEdit(t *testing.T) {
	b := NewFreqDict("dictionary", testTable())
	cases := []struct{ in, want string }{
		{"lmape", "lampe"},
		{"lampee", "lampe"},
		{"køken", "køkken"},
	}
	for _, c := range cases {
		if got := b.Correct(c.in); got != c.want {
			t.Errorf("Correct(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestCorrectTwoEdits(t *testing.T) {
	b := NewFreqDict("dictionary", testTable())
	if got := b.Correct("lamppu"); got != "lampe" {
		t.Errorf("Correct(lamppu) = %q, want %q", got, "lampe")
	}
	if got := b.Correct("kbl"); got != "kabel" {
		t.Errorf("Correct(kbl) = %q, want %q", got, "kabel")
	}
}

func TestCorrectPrefersFrequent(t *testing.T) {
	// stikk is one edit from both stik (5) and stikke (2).
	b := NewFreqDict("dictionary", testTable())
	if got := b.Correct("stikk"); got != "stik" {
		t.Errorf("Correct(stikk) = %q, want %q", got, "stik")
	}
}

func TestCorrectWithoutCandidateKeepsWord(t *testing.T) {
	b := NewFreqDict("dictionary", testTable())
	if got := b.Correct("xylofonkasse"); got != "xylofonkasse" {
		t.Errorf("Correct(xylofonkasse) = %q, want input back", got)
	}
}

func TestSuggestRanking(t *testing.T) {
	b := NewFreqDict("dictionary", testTable())
	got := b.Suggest("stikk", 5)
	want := []string{"stik", "stikke"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Suggest(stikk) = %v, want %v", got, want)
	}

	got = b.Suggest("lampe", 5)
	if !reflect.DeepEqual(got, []string{"lampe"}) {
		t.Errorf("Suggest(lampe) = %v, want [lampe]", got)
	}
}

func TestAvailability(t *testing.T) {
	empty := NewFreqDict("dictionary", vocab.NewTable())
	if empty.Available() {
		t.Error("Available() = true for empty source")
	}

	p := NewProvider(nil, empty)
	if got := p.Correct("lamppu"); got != "lamppu" {
		t.Errorf("Correct without backend = %q, want input back", got)
	}
	if got := p.BackendName(); got != "none" {
		t.Errorf("BackendName() = %q, want %q", got, "none")
	}
}

func TestProviderPicksFirstAvailable(t *testing.T) {
	empty := NewFreqDict("dictionary", vocab.NewTable())
	full := NewFreqDict("corpus", testTable())

	p := NewProvider(nil, empty, full)
	if got := p.BackendName(); got != "corpus" {
		t.Errorf("BackendName() = %q, want %q", got, "corpus")
	}
	if got := p.Correct("lamppu"); got != "lampe" {
		t.Errorf("Correct(lamppu) = %q, want %q", got, "lampe")
	}

	p = NewProvider(nil, full, NewFreqDict("other", testTable()))
	if got := p.BackendName(); got != "corpus" {
		t.Errorf("BackendName() = %q, want first backend %q", got, "corpus")
	}
}

func TestProviderCustomOverlay(t *testing.T) {
	custom := vocab.NewSet()
	custom.Add("hpfi")

	p := NewProvider(custom, NewFreqDict("dictionary", testTable()))
	if got := p.Correct("hpfi"); got != "hpfi" {
		t.Errorf("Correct(hpfi) = %q, want unchanged", got)
	}
	if !p.Known("hpfi") {
		t.Error("Known(hpfi) = false, want true")
	}
}

func TestKnownIsDictionaryMembership(t *testing.T) {
	p := NewProvider(nil, NewFreqDict("dictionary", testTable()))
	if !p.Known("lampe") {
		t.Error("Known(lampe) = false, want true")
	}
	// An absent word is unknown whether or not a correction exists for it.
	for _, w := range []string{"lamppu", "xylofonkasse"} {
		if p.Known(w) {
			t.Errorf("Known(%q) = true, want false", w)
		}
	}

	unfitted := NewProvider(nil, NewFreqDict("corpus", vocab.NewTable()))
	if !unfitted.Known("lamppu") {
		t.Error("Known without an available backend = false, want true")
	}
}

func TestStageSkipRules(t *testing.T) {
	p := NewProvider(nil, NewFreqDict("dictionary", testTable()))
	s := NewStage(p)
	pc := pipeline.NewContext()

	in := token.Stream{
		token.Placeholder(token.Abbr, 1),
		token.Plain("lamppu"),
		token.Plain("af"),
		token.Plain("a1b"),
		token.Plain("ca."),
		token.Plain("kbl"),
	}
	got := s.Transform(pc, in).Render()
	want := "<ABBR_0001> lampe af a1b ca. kabel"
	if got != want {
		t.Errorf("Transform = %q, want %q", got, want)
	}
}
