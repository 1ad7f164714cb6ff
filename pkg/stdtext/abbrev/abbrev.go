// Package abbrev extracts abbreviation tokens into ABBR placeholders and
// mines likely abbreviation pairs from corpus vocabularies.
package abbrev

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/cognicore/stdtext/pkg/stdtext/counts"
	"github.com/cognicore/stdtext/pkg/stdtext/pipeline"
	"github.com/cognicore/stdtext/pkg/stdtext/token"
)

// abbrevRE matches a whole abbreviation token: two or three letters plus a
// trailing period.
var abbrevRE = regexp.MustCompile(`^[A-Za-zÆØÅæøå]{2,3}\.$`)

// DefaultWhitelist lists abbreviations the normalizer keeps verbatim. Dotted
// quantity units are included so they survive normalization and reach count
// extraction; longer entries keep their period past the four-letter shape rule.
func DefaultWhitelist() []string {
	return []string{
		"stk.", "st.", "pcs.", "kg.", "cm.",
		"ca.", "evt.", "mv.", "osv.", "tlf.", "nr.", "att.",
		"inkl.", "ekskl.", "vedr.", "moms.",
	}
}

// Extractor replaces abbreviation tokens with ABBR placeholders.
type Extractor struct{}

// NewExtractor returns the abbreviation extraction stage.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Name returns the stage name.
func (e *Extractor) Name() string { return "abbreviations" }

// Transform scans left to right and replaces each abbreviation-shaped token
// with a fresh ABBR placeholder, recording the original with its trailing
// period. Quantity units ("stk.", "kg.") are exempt: they must stay visible
// for count extraction.
func (e *Extractor) Transform(pc *pipeline.Context, in token.Stream) token.Stream {
	out := make(token.Stream, 0, len(in))
	for _, t := range in {
		if t.IsPlaceholder() || !abbrevRE.MatchString(t.Text) || counts.IsUnit(t.Text) {
			out = append(out, t)
			continue
		}
		ph := pc.Next(token.Abbr)
		pc.Abbrevs.Put(ph.Key(), t.Text)
		out = append(out, ph)
	}
	return out
}

// MineOptions bounds the abbreviation pair search.
type MineOptions struct {
	MinShortLen   int // shortest candidate short form
	MaxLongLen    int // longest considered vocabulary word
	MinFreq       int // words below this count are ignored
	MaxPrefixDiff int // max extra characters in the long form
	MaxShortFreq  int // short forms above this count are full words already
}

// DefaultMineOptions mirrors the corpus-mining thresholds.
func DefaultMineOptions() MineOptions {
	return MineOptions{
		MinShortLen:   4,
		MaxLongLen:    15,
		MinFreq:       2,
		MaxPrefixDiff: 4,
		MaxShortFreq:  20,
	}
}

// Mine detects likely short->long abbreviation pairs in a frequency
// vocabulary via the prefix relation: a rare short word whose vocabulary
// contains a more frequent, slightly longer extension maps to the longest,
// most frequent such extension.
func Mine(freqs map[string]int, opts MineOptions) map[string]string {
	words := make([]string, 0, len(freqs))
	for w, c := range freqs {
		rl := len([]rune(w))
		if c >= opts.MinFreq && rl >= 3 && rl <= opts.MaxLongLen {
			words = append(words, w)
		}
	}
	sort.Strings(words)

	pairs := make(map[string]string)
	for _, short := range words {
		if len([]rune(short)) < opts.MinShortLen {
			continue
		}
		if freqs[short] > opts.MaxShortFreq {
			continue
		}
		var best string
		for _, long := range words {
			if long == short || !strings.HasPrefix(long, short) {
				continue
			}
			if len([]rune(long))-len([]rune(short)) > opts.MaxPrefixDiff {
				continue
			}
			if freqs[long] < freqs[short] {
				continue
			}
			if best == "" || longer(long, best, freqs) {
				best = long
			}
		}
		if best != "" {
			pairs[short] = best
		}
	}
	return pairs
}

// longer ranks candidate long forms by length, then frequency, then lexical
// order, so mining output is deterministic.
func longer(a, b string, freqs map[string]int) bool {
	la, lb := len([]rune(a)), len([]rune(b))
	if la != lb {
		return la > lb
	}
	if freqs[a] != freqs[b] {
		return freqs[a] > freqs[b]
	}
	return a < b
}

// WritePairs stores mined pairs as sorted "short|long" lines.
func WritePairs(path string, pairs map[string]string) error {
	keys := make([]string, 0, len(pairs))
	for k := range pairs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "%s|%s\n", k, pairs[k])
	}
	return os.WriteFile(path, []byte(b.String()), 0o644)
}

// LoadPairs reads a "short|long" pair file. Blank lines and lines starting
// with # are skipped.
func LoadPairs(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	pairs := make(map[string]string)
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, "|", 2)
		if len(parts) != 2 {
			continue
		}
		short := strings.TrimSpace(parts[0])
		long := strings.TrimSpace(parts[1])
		if short != "" && long != "" {
			pairs[short] = long
		}
	}
	return pairs, nil
}
