// Package patterns reorders a corrected token stream into the canonical
// invoice line shape: ACTION, "af", quantities, objects, then location
// phrases. Streams without a recognized action verb pass through unchanged.
package patterns

import (
	"strings"

	"github.com/cognicore/stdtext/pkg/stdtext/pipeline"
	"github.com/cognicore/stdtext/pkg/stdtext/token"
)

// DefaultActionVerbs returns the built-in set of canonical action verbs.
func DefaultActionVerbs() []string {
	return []string{
		"montering",
		"udskiftning",
		"installation",
		"levering",
		"opsætning",
		"nedtagning",
		"tilslutning",
		"kontrol",
		"eftersyn",
		"flytning",
	}
}

// locationPreps introduce a location phrase ("i køkken", "hos <PERS_0001>").
var locationPreps = []string{"i", "på", "hos", "ved", "til", "for"}

// Reorderer is the pattern rewrite stage.
type Reorderer struct {
	actions map[string]bool
	preps   map[string]bool
}

// New builds a reorderer. A nil verb list selects DefaultActionVerbs.
func New(verbs []string) *Reorderer {
	if verbs == nil {
		verbs = DefaultActionVerbs()
	}
	r := &Reorderer{
		actions: make(map[string]bool, len(verbs)),
		preps:   make(map[string]bool, len(locationPreps)),
	}
	for _, v := range verbs {
		r.actions[strings.ToLower(v)] = true
	}
	for _, p := range locationPreps {
		r.preps[p] = true
	}
	return r
}

// Name returns the stage name.
func (r *Reorderer) Name() string { return "patterns" }

// Transform rebuilds the stream as ACTION af COUNTS OTHERS LOCATIONS. The
// first action verb anchors the line; one literal "af" directly after it is
// dropped because the output always supplies its own. A location phrase runs
// from a preposition to the next preposition or COUNT, DATE or URL
// placeholder. Everything else keeps its relative order in the object part.
func (r *Reorderer) Transform(pc *pipeline.Context, in token.Stream) token.Stream {
	actionIdx := -1
	for i, t := range in {
		if !t.IsPlaceholder() && r.actions[strings.ToLower(t.Text)] {
			actionIdx = i
			break
		}
	}
	if actionIdx < 0 {
		return in
	}

	rest := make(token.Stream, 0, len(in)-1)
	for i, t := range in {
		if i == actionIdx {
			continue
		}
		if i == actionIdx+1 && !t.IsPlaceholder() && strings.ToLower(t.Text) == "af" {
			continue
		}
		rest = append(rest, t)
	}

	var counts, others token.Stream
	var locations []token.Stream
	for i := 0; i < len(rest); {
		t := rest[i]
		if t.Kind == token.Count {
			counts = append(counts, t)
			i++
			continue
		}
		if r.isPrep(t) {
			loc := token.Stream{t}
			i++
			for i < len(rest) && !r.breaksLocation(rest[i]) {
				loc = append(loc, rest[i])
				i++
			}
			locations = append(locations, loc)
			continue
		}
		others = append(others, t)
		i++
	}

	out := make(token.Stream, 0, len(in)+1)
	out = append(out, in[actionIdx], token.Plain("af"))
	out = append(out, counts...)
	out = append(out, others...)
	for _, loc := range locations {
		out = append(out, loc...)
	}
	return out
}

func (r *Reorderer) isPrep(t token.Token) bool {
	return !t.IsPlaceholder() && r.preps[strings.ToLower(t.Text)]
}

// breaksLocation reports whether a token ends the running location phrase.
// CITY, PERS and COMP placeholders belong to locations and do not break.
func (r *Reorderer) breaksLocation(t token.Token) bool {
	if r.isPrep(t) {
		return true
	}
	return t.Kind == token.Count || t.Kind == token.Date || t.Kind == token.URL
}
