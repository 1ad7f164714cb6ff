// Package actions rewrites informal Danish action-verb fragments into
// canonical "VERB af" phrases via prefix and bounded-edit-distance stem
// matching. Rules come from configuration; one expansion per text.
package actions

import (
	"strings"

	"github.com/cognicore/stdtext/pkg/stdtext/pipeline"
	"github.com/cognicore/stdtext/pkg/stdtext/token"
)

// Rule is one configured expansion: fragments of BaseWord rewrite to Action.
type Rule struct {
	Action      string
	BaseWord    string
	MaxDistance int
}

// compiled carries a rule's derived stems and action phrase tokens.
type compiled struct {
	phrase  []string
	stems   []string
	prefix3 string
	maxDist int
}

// matchCleanEdges is trimmed from a token before matching, mirroring the
// normalizer's edge set plus hyphen and underscore.
const matchCleanEdges = ".,;:-_!?"

// fuzzyMinTokenLen is the shortest token the edit-distance path considers.
// Two-letter function words (og, el, ok) sit within distance 2 of several
// three-letter stems and must never trigger an expansion.
const fuzzyMinTokenLen = 4

// Expander is the action expansion stage.
type Expander struct {
	rules []compiled
}

// New compiles the configured rules, keeping their order: the first rule
// whose stem matches wins for a token.
func New(rules []Rule) *Expander {
	e := &Expander{rules: make([]compiled, 0, len(rules))}
	for _, r := range rules {
		base := strings.ToLower(r.BaseWord)
		if len([]rune(base)) < 3 {
			continue
		}
		maxDist := r.MaxDistance
		if maxDist <= 0 {
			maxDist = 2
		}
		e.rules = append(e.rules, compiled{
			phrase:  strings.Fields(strings.ToLower(r.Action)),
			stems:   Stems(base),
			prefix3: string([]rune(base)[:3]),
			maxDist: maxDist,
		})
	}
	return e
}

// Name returns the stage name.
func (e *Expander) Name() string { return "actions" }

// Transform expands the first matching token into its action phrase and
// copies everything else through. A literal "af" directly after the expansion
// site is absorbed when the phrase already ends in "af". Placeholders are
// never match candidates.
func (e *Expander) Transform(pc *pipeline.Context, in token.Stream) token.Stream {
	out := make(token.Stream, 0, len(in))
	expanded := false
	for i := 0; i < len(in); i++ {
		t := in[i]
		if expanded || t.IsPlaceholder() {
			out = append(out, t)
			continue
		}
		phrase, ok := e.match(t.Text)
		if !ok {
			out = append(out, t)
			continue
		}
		for _, p := range phrase {
			out = append(out, token.Plain(p))
		}
		if len(phrase) > 0 && phrase[len(phrase)-1] == "af" &&
			i+1 < len(in) && !in[i+1].IsPlaceholder() && in[i+1].Text == "af" {
			i++
		}
		expanded = true
	}
	return out
}

// match returns the action phrase for the first rule the token matches.
// Per rule the prefix check runs before the fuzzy check.
func (e *Expander) match(tok string) ([]string, bool) {
	clean := strings.Trim(strings.ToLower(tok), matchCleanEdges)
	if clean == "" {
		return nil, false
	}
	for _, r := range e.rules {
		if strings.HasPrefix(clean, r.prefix3) {
			return r.phrase, true
		}
		if len([]rune(clean)) < fuzzyMinTokenLen {
			continue
		}
		for _, stem := range r.stems {
			if BoundedDistance(clean, stem, r.maxDist) <= r.maxDist {
				return r.phrase, true
			}
		}
	}
	return nil, false
}

// Stems generates the matching stems for a Danish action noun: every prefix
// of length 3 through len(base), plus the -ere/-eres/-eret verb forms when
// the base ends in "ing" (montering -> montere, monteres, monteret).
func Stems(base string) []string {
	base = strings.ToLower(base)
	runes := []rune(base)

	var stems []string
	for i := 3; i <= len(runes); i++ {
		stems = append(stems, string(runes[:i]))
	}
	if strings.HasSuffix(base, "ing") {
		verb := string(runes[:len(runes)-3]) + "ere"
		stems = append(stems, verb, verb+"s", verb+"t")
	}
	return stems
}

// BoundedDistance computes the Levenshtein distance between a and b using a
// two-row table, giving up with max+1 once every cell in a row exceeds max.
func BoundedDistance(a, b string, max int) int {
	if a == b {
		return 0
	}
	ra, rb := []rune(a), []rune(b)
	if len(ra) < len(rb) {
		ra, rb = rb, ra
	}
	if len(ra)-len(rb) > max {
		return max + 1
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		rowMin := curr[0]
		for j := 1; j <= len(rb); j++ {
			cost := 0
			if ra[i-1] != rb[j-1] {
				cost = 1
			}
			curr[j] = min(prev[j]+1, min(curr[j-1]+1, prev[j-1]+cost))
			if curr[j] < rowMin {
				rowMin = curr[j]
			}
		}
		if rowMin > max {
			return max + 1
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}
