// Package refine normalizes Danish definite inflections against the corpus
// vocabulary. Stemming groups surface forms ("lampe", "lampen", "lamperne")
// and a token is folded onto a suffix-stripped group member only when that
// form is clearly the more common one, so rare or ambiguous groups pass
// through untouched.
package refine

import (
	"strings"
	"unicode"

	"github.com/blevesearch/snowballstem"
	"github.com/blevesearch/snowballstem/danish"

	"github.com/cognicore/stdtext/pkg/stdtext/normalize"
	"github.com/cognicore/stdtext/pkg/stdtext/pipeline"
	"github.com/cognicore/stdtext/pkg/stdtext/token"
	"github.com/cognicore/stdtext/pkg/stdtext/vocab"
)

// definiteSuffixes are the Danish definite and definite-plural endings a
// replacement may strip.
var definiteSuffixes = []string{"ene", "erne", "rne", "ne", "en", "et", "n", "t"}

// Options configures the refiner.
type Options struct {
	// Ratio is how many times more frequent the base form must be before a
	// token is folded onto it. Zero or negative selects the default of 3.
	Ratio float64
}

// Refiner folds definite forms onto their dominant base forms.
type Refiner struct {
	counts *vocab.Table
	byStem map[string][]string
	ratio  float64
}

// New builds a refiner over the vocabulary table.
func New(counts *vocab.Table, opts Options) *Refiner {
	ratio := opts.Ratio
	if ratio <= 0 {
		ratio = 3
	}
	r := &Refiner{
		counts: counts,
		byStem: make(map[string][]string),
		ratio:  ratio,
	}
	if counts != nil {
		counts.Range(func(word string, _ int) bool {
			stem := stemOf(word)
			r.byStem[stem] = append(r.byStem[stem], word)
			return true
		})
	}
	return r
}

// Refine returns the dominant base form of word, or word itself when no
// group member qualifies.
func (r *Refiner) Refine(word string) string {
	lower := strings.ToLower(word)
	group := r.byStem[stemOf(lower)]
	if len(group) == 0 {
		return word
	}

	threshold := float64(r.counts.Count(lower))
	if threshold < 1 {
		threshold = 1
	}
	threshold *= r.ratio

	best := ""
	bestCount := 0
	for _, cand := range group {
		if cand == lower || !stripsDefiniteSuffix(lower, cand) {
			continue
		}
		n := r.counts.Count(cand)
		if float64(n) < threshold {
			continue
		}
		if n > bestCount || (n == bestCount && cand < best) {
			best, bestCount = cand, n
		}
	}
	if best == "" {
		return word
	}
	return best
}

// stripsDefiniteSuffix reports whether base is word with one definite ending
// removed.
func stripsDefiniteSuffix(word, base string) bool {
	if !strings.HasPrefix(word, base) {
		return false
	}
	rest := word[len(base):]
	for _, s := range definiteSuffixes {
		if rest == s {
			return true
		}
	}
	return false
}

func stemOf(w string) string {
	env := snowballstem.NewEnv(strings.ToLower(w))
	danish.Stem(env)
	return env.Current()
}

// Stage applies the refiner to every eligible plain token.
type Stage struct {
	refiner *Refiner
}

// NewStage wraps a refiner as a pipeline stage.
func NewStage(r *Refiner) *Stage {
	return &Stage{refiner: r}
}

// Name returns the stage name.
func (s *Stage) Name() string { return "refine" }

// Transform folds definite forms across the stream. Placeholders,
// abbreviation-shaped tokens, short tokens and tokens carrying digits pass
// through.
func (s *Stage) Transform(pc *pipeline.Context, in token.Stream) token.Stream {
	out := make(token.Stream, 0, len(in))
	for _, t := range in {
		if t.IsPlaceholder() || !eligible(t.Text) {
			out = append(out, t)
			continue
		}
		out = append(out, token.Plain(s.refiner.Refine(t.Text)))
	}
	return out
}

func eligible(word string) bool {
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
