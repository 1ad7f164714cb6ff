// Package pipeline composes the rewrite stages into an ordered chain over the
// typed token stream. Optional stages (corpus correction, inflection
// refinement) are plain list members; the runner applies whatever it is given.
package pipeline

import (
	"strings"

	"github.com/cognicore/stdtext/pkg/stdtext/token"
)

// Stage transforms a token stream. Stages must be total: any input stream,
// empty included, yields a defined output stream. Placeholder tokens created
// by earlier stages pass through untouched.
type Stage interface {
	Name() string
	Transform(pc *Context, in token.Stream) token.Stream
}

// StageTrace records one stage's rendered output for debugging.
type StageTrace struct {
	Name string
	Text string
}

// Context carries the per-call extraction state: placeholder counters, the
// restore mappings, and the stage trace. One Context serves exactly one
// rewrite call and is discarded afterwards.
type Context struct {
	counters map[token.Kind]int

	// Entities maps entity placeholder keys (URL, EMAIL, PHONE, DATE, CITY,
	// STREETNAME, COMP, PERS) to their original substrings.
	Entities *token.Mapping
	// Abbrevs maps ABBR placeholder keys to the original abbreviation,
	// trailing period included.
	Abbrevs *token.Mapping
	// Counts maps COUNT placeholder keys to their structured records.
	Counts *token.CountMap

	trace []StageTrace
}

// NewContext returns a fresh per-call context with all counters at zero.
func NewContext() *Context {
	return &Context{
		counters: make(map[token.Kind]int),
		Entities: token.NewMapping(),
		Abbrevs:  token.NewMapping(),
		Counts:   token.NewCountMap(),
	}
}

// Next allocates the next placeholder token of the given kind. Counters are
// per kind and start at 1, so the first URL placeholder renders <URL_0001>.
func (c *Context) Next(k token.Kind) token.Token {
	c.counters[k]++
	return token.Placeholder(k, c.counters[k])
}

// Record appends a stage trace entry.
func (c *Context) Record(name string, s token.Stream) {
	c.trace = append(c.trace, StageTrace{Name: name, Text: s.Render()})
}

// RecordText appends a stage trace entry for already-rendered text.
func (c *Context) RecordText(name, text string) {
	c.trace = append(c.trace, StageTrace{Name: name, Text: text})
}

// Trace returns the recorded stage outputs in execution order.
func (c *Context) Trace() []StageTrace {
	out := make([]StageTrace, len(c.trace))
	copy(out, c.trace)
	return out
}

// Runner applies an ordered stage list.
type Runner struct {
	stages []Stage
}

// NewRunner builds a runner over the given stages, applied in order.
func NewRunner(stages ...Stage) *Runner {
	return &Runner{stages: stages}
}

// Run feeds the stream through every stage, recording each stage's output in
// the context trace.
func (r *Runner) Run(pc *Context, in token.Stream) token.Stream {
	s := in
	for _, st := range r.stages {
		s = st.Transform(pc, s)
		pc.Record(st.Name(), s)
	}
	return s
}

// Stages returns the stage names in execution order.
func (r *Runner) Stages() []string {
	names := make([]string, len(r.stages))
	for i, st := range r.stages {
		names[i] = st.Name()
	}
	return names
}

// Func adapts a plain function into a Stage.
type Func struct {
	StageName string
	Fn        func(pc *Context, in token.Stream) token.Stream
}

// Name returns the stage name.
func (f Func) Name() string { return f.StageName }

// Transform applies the wrapped function.
func (f Func) Transform(pc *Context, in token.Stream) token.Stream {
	return f.Fn(pc, in)
}

// Reinsert restores a processed stream back into final text. The passes run
// in the documented order: entity placeholders first, abbreviations second,
// COUNT rendering third, optional uppercasing last. A placeholder with no
// mapping entry renders as its key.
func Reinsert(pc *Context, s token.Stream, render func(token.CountRecord) string, uppercase bool) string {
	s = reinsertMapped(s, entityKinds, pc.Entities)
	pc.Record("reinsert_entities", s)

	s = reinsertMapped(s, map[token.Kind]bool{token.Abbr: true}, pc.Abbrevs)
	pc.Record("reinsert_abbreviations", s)

	out := make(token.Stream, len(s))
	for i, t := range s {
		if t.Kind == token.Count {
			if rec, ok := pc.Counts.Get(t.Key()); ok {
				out[i] = token.Plain(render(rec))
				continue
			}
		}
		out[i] = t
	}
	pc.Record("reinsert_counts", out)

	text := out.Render()
	if uppercase {
		text = strings.ToUpper(text)
	}
	pc.RecordText("final", text)
	return text
}

var entityKinds = map[token.Kind]bool{
	token.URL:    true,
	token.Email:  true,
	token.Phone:  true,
	token.Date:   true,
	token.City:   true,
	token.Street: true,
	token.Comp:   true,
	token.Pers:   true,
}

func reinsertMapped(s token.Stream, kinds map[token.Kind]bool, m *token.Mapping) token.Stream {
	out := make(token.Stream, len(s))
	for i, t := range s {
		if kinds[t.Kind] {
			if orig, ok := m.Get(t.Key()); ok {
				out[i] = token.Plain(orig)
				continue
			}
		}
		out[i] = t
	}
	return out
}
