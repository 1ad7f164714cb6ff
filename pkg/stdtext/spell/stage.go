package spell

import (
	"unicode"

	"github.com/cognicore/stdtext/pkg/stdtext/normalize"
	"github.com/cognicore/stdtext/pkg/stdtext/pipeline"
	"github.com/cognicore/stdtext/pkg/stdtext/token"
)

// Stage is the spelling correction pipeline stage. Placeholders,
// abbreviation-shaped tokens, tokens shorter than three runes and tokens
// carrying digits pass through uncorrected.
type Stage struct {
	provider *Provider
}

// NewStage wraps a provider as a pipeline stage.
func NewStage(p *Provider) *Stage {
	return &Stage{provider: p}
}

// Name returns the stage name.
func (s *Stage) Name() string { return "spelling" }

// Transform corrects every eligible plain token.
func (s *Stage) Transform(pc *pipeline.Context, in token.Stream) token.Stream {
	out := make(token.Stream, 0, len(in))
	for _, t := range in {
		if t.IsPlaceholder() || !Eligible(t.Text) {
			out = append(out, t)
			continue
		}
		out = append(out, token.Plain(s.provider.Correct(t.Text)))
	}
	return out
}

// Eligible reports whether the corrector would touch the word at all.
// Abbreviation-shaped tokens, tokens shorter than three runes and tokens
// carrying digits are left alone.
func Eligible(word string) bool {
	if normalize.AbbrevShaped(word) {
		return false
	}
	runes := []rune(word)
	if len(runes) < 3 {
		return false
	}
	for _, r := range runes {
		if unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
