package corpus

import (
	"testing"

	"github.com/cognicore/stdtext/pkg/stdtext/pipeline"
	"github.com/cognicore/stdtext/pkg/stdtext/token"
)

func TestStagePassesThroughWithoutModel(t *testing.T) {
	s := NewStage(NewHandle(nil), StageOptions{Phrase: DefaultPhraseOptions()})

	in := token.Fields("monterig af lampee")
	got := s.Transform(pipeline.NewContext(), in).Render()
	if got != "monterig af lampee" {
		t.Errorf("Transform without model = %q, want input unchanged", got)
	}
}

func TestStageAppliesPhraseCorrections(t *testing.T) {
	h := NewHandle(Fit(serviceRows, FitOptions{}))
	s := NewStage(h, StageOptions{Phrase: DefaultPhraseOptions()})

	got := s.Transform(pipeline.NewContext(), token.Fields("montering af lampee ok")).Render()
	if got != "montering af lampe i orden" {
		t.Errorf("Transform = %q, want %q", got, "montering af lampe i orden")
	}
}

func TestStageNearestReplacementNeedsCleanStream(t *testing.T) {
	h := NewHandle(Fit(serviceRows, FitOptions{}))
	s := NewStage(h, StageOptions{
		Phrase:             DefaultPhraseOptions(),
		ApplyNearest:       true,
		NearestMaxDistance: 0.9,
	})

	// Without placeholders the working text snaps to the stored row.
	got := s.Transform(pipeline.NewContext(), token.Fields("opsætning af stikkontakt")).Render()
	if got != "opsætning af stikkontakt i bad" {
		t.Errorf("Transform = %q, want the stored row", got)
	}

	// A placeholder blocks whole-text replacement: reinsertion must still
	// find its key in the stream.
	in := token.Stream{
		token.Plain("montering"),
		token.Plain("af"),
		token.Placeholder(token.Count, 1),
	}
	got = s.Transform(pipeline.NewContext(), in).Render()
	if got != "montering af <COUNT_0001>" {
		t.Errorf("Transform with placeholder = %q, want placeholder preserved", got)
	}
}

func TestStageNearestRespectsDistanceBound(t *testing.T) {
	h := NewHandle(Fit(serviceRows, FitOptions{}))
	s := NewStage(h, StageOptions{
		Phrase:             DefaultPhraseOptions(),
		ApplyNearest:       true,
		NearestMaxDistance: 1e-6,
	})

	// The best neighbor is far outside the bound and the text stays.
	got := s.Transform(pipeline.NewContext(), token.Fields("radiatortermostat skiftes")).Render()
	if got != "radiatortermostat skiftes" {
		t.Errorf("Transform = %q, want text kept outside distance bound", got)
	}
}
