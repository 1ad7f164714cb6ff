package refine

import (
	"testing"

	"github.com/cognicore/stdtext/pkg/stdtext/pipeline"
	"github.com/cognicore/stdtext/pkg/stdtext/token"
	"github.com/cognicore/stdtext/pkg/stdtext/vocab"
)

func testTable() *vocab.Table {
	t := vocab.NewTable()
	t.Add("lampe", 30)
	t.Add("lampen", 3)
	t.Add("lamper", 10)
	t.Add("tavle", 20)
	t.Add("tavlen", 2)
	t.Add("stik", 5)
	return t
}

func TestRefineFoldsDefiniteForm(t *testing.T) {
	r := New(testTable(), Options{})

	cases := []struct {
		in   string
		want string
	}{
		{"lampen", "lampe"},
		{"tavlen", "tavle"},
	}
	for _, c := range cases {
		if got := r.Refine(c.in); got != c.want {
			t.Errorf("Refine(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestRefineKeepsPluralForm(t *testing.T) {
	r := New(testTable(), Options{})
	// "lamper" strips to "lampe" only via the plural -r, which is not a
	// definite ending.
	if got := r.Refine("lamper"); got != "lamper" {
		t.Errorf("Refine(lamper) = %q, want plural kept", got)
	}
}

func TestRefineKeepsBaseAndUnknownWords(t *testing.T) {
	r := New(testTable(), Options{})

	if got := r.Refine("lampe"); got != "lampe" {
		t.Errorf("Refine(lampe) = %q, want unchanged", got)
	}
	if got := r.Refine("gulvvarme"); got != "gulvvarme" {
		t.Errorf("Refine(gulvvarme) = %q, want unchanged", got)
	}
}

func TestRefineRequiresDominance(t *testing.T) {
	tbl := vocab.NewTable()
	tbl.Add("lampe", 4)
	tbl.Add("lampen", 3)

	// 4 occurrences of the base against 3 of the definite form is not a
	// threefold margin.
	r := New(tbl, Options{})
	if got := r.Refine("lampen"); got != "lampen" {
		t.Errorf("Refine(lampen) = %q, want kept below dominance ratio", got)
	}

	// A looser ratio folds it.
	r = New(tbl, Options{Ratio: 1.2})
	if got := r.Refine("lampen"); got != "lampe" {
		t.Errorf("Refine(lampen) with ratio 1.2 = %q, want %q", got, "lampe")
	}
}

func TestStageSkipsPlaceholdersAndIneligibleTokens(t *testing.T) {
	s := NewStage(New(testTable(), Options{}))

	in := token.Stream{
		token.Placeholder(token.Count, 1),
		token.Plain("lampen"),
		token.Plain("a1"),
		token.Plain("ca."),
	}
	got := s.Transform(pipeline.NewContext(), in).Render()
	want := "<COUNT_0001> lampe a1 ca."
	if got != want {
		t.Errorf("Transform = %q, want %q", got, want)
	}
}
