// Package counts implements structured quantity extraction and rendering.
// A single left-to-right scan collapses quantity expressions into COUNT
// placeholders with {noun, qty, unit} records; reinsertion renders the
// records back into formatted Danish phrases.
package counts

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/cognicore/stdtext/pkg/stdtext/pipeline"
	"github.com/cognicore/stdtext/pkg/stdtext/token"
)

// units is the closed set of recognized quantity units, keyed by stem.
var units = map[string]struct{}{
	"stk":     {},
	"st":      {},
	"pcs":     {},
	"x":       {},
	"à":       {},
	"enheder": {},
	"antal":   {},
	"kg":      {},
	"m":       {},
	"meter":   {},
	"cm":      {},
}

// UnitStem normalizes a token to its unit stem ("stk." -> "stk") and reports
// whether it belongs to the closed unit set.
func UnitStem(tok string) (string, bool) {
	stem := strings.TrimSuffix(strings.ToLower(tok), ".")
	_, ok := units[stem]
	return stem, ok
}

// IsUnit reports whether tok, with or without a trailing period, is a
// recognized quantity unit.
func IsUnit(tok string) bool {
	_, ok := UnitStem(tok)
	return ok
}

// Extractor collapses quantity patterns into COUNT placeholders.
type Extractor struct{}

// NewExtractor returns the count extraction stage.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Name returns the stage name.
func (e *Extractor) Name() string { return "counts" }

// Transform scans left to right, trying the most specific pattern first at
// each position: NUMBER UNIT NOUN, then NOUN NUMBER UNIT, then NUMBER NOUN.
// Matched tokens are consumed and replaced by one COUNT placeholder; a
// placeholder token is never a candidate noun, number, or unit, so no match
// crosses a placeholder boundary.
func (e *Extractor) Transform(pc *pipeline.Context, in token.Stream) token.Stream {
	var out token.Stream
	i := 0
	for i < len(in) {
		rec, consumed := matchAt(in, i)
		if consumed == 0 {
			out = append(out, in[i])
			i++
			continue
		}
		ph := pc.Next(token.Count)
		pc.Counts.Put(ph.Key(), rec)
		out = append(out, ph)
		i += consumed
	}
	if out == nil {
		return token.Stream{}
	}
	return out
}

// matchAt tries the three patterns at position i and returns the record plus
// the number of consumed tokens, or consumed == 0 when nothing matches.
func matchAt(in token.Stream, i int) (token.CountRecord, int) {
	// NUMBER UNIT NOUN
	if qty, ok := number(in, i); ok {
		if unit, ok := unitAt(in, i+1); ok {
			if noun, ok := nounAt(in, i+2); ok {
				return token.CountRecord{Noun: noun, Qty: qty, Unit: unit}, 3
			}
		}
	}
	// NOUN NUMBER UNIT
	if noun, ok := nounAt(in, i); ok {
		if qty, ok := number(in, i+1); ok {
			if unit, ok := unitAt(in, i+2); ok {
				return token.CountRecord{Noun: noun, Qty: qty, Unit: unit}, 3
			}
		}
	}
	// NUMBER NOUN
	if qty, ok := number(in, i); ok {
		if noun, ok := nounAt(in, i+1); ok {
			return token.CountRecord{Noun: noun, Qty: qty}, 2
		}
	}
	return token.CountRecord{}, 0
}

func number(in token.Stream, i int) (int, bool) {
	if i >= len(in) || in[i].IsPlaceholder() {
		return 0, false
	}
	s := in[i].Text
	if s == "" {
		return 0, false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

func unitAt(in token.Stream, i int) (string, bool) {
	if i >= len(in) || in[i].IsPlaceholder() {
		return "", false
	}
	return UnitStem(in[i].Text)
}

// functionWords are Danish closed-class words that never name a billable
// item and are therefore excluded from noun candidacy.
var functionWords = map[string]struct{}{
	"af": {}, "og": {}, "i": {}, "på": {}, "med": {}, "til": {},
	"for": {}, "hos": {}, "ved": {}, "samt": {}, "en": {}, "et": {},
	"er": {}, "at": {}, "de": {}, "den": {}, "det": {}, "som": {},
}

// nounAt accepts alphabetic tokens (hyphens allowed) that are neither units
// nor function words.
func nounAt(in token.Stream, i int) (string, bool) {
	if i >= len(in) || in[i].IsPlaceholder() {
		return "", false
	}
	s := in[i].Text
	if s == "" || IsUnit(s) {
		return "", false
	}
	if _, ok := functionWords[s]; ok {
		return "", false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) && r != '-' {
			return "", false
		}
	}
	return s, true
}

// Pluralize applies the rendering rule: qty 1 keeps the noun; a noun already
// ending in a plural-looking "er", "s", or "r" keeps its form; a noun ending
// in bare "e" gets "r" appended (lampe -> lamper); anything else gets "er".
func Pluralize(noun string, qty int) string {
	if qty == 1 || noun == "" {
		return noun
	}
	switch {
	case strings.HasSuffix(noun, "er"):
		return noun
	case strings.HasSuffix(noun, "e"):
		return noun + "r"
	case strings.HasSuffix(noun, "s"), strings.HasSuffix(noun, "r"):
		return noun
	default:
		return noun + "er"
	}
}

// Format renders a count record: "{qty} {unit} {plural noun}", unit omitted
// when empty, stk/st rendered with a trailing period.
func Format(rec token.CountRecord) string {
	noun := Pluralize(rec.Noun, rec.Qty)
	qty := strconv.Itoa(rec.Qty)
	switch rec.Unit {
	case "":
		return qty + " " + noun
	case "stk", "st":
		return qty + " " + rec.Unit + ". " + noun
	default:
		return qty + " " + rec.Unit + " " + noun
	}
}
