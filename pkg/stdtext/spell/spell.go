// Package spell provides ranked spelling backends behind a single Provider.
// The active backend is the first one reporting Available at call time, so a
// corpus-fed backend starts serving as soon as its model is rebuilt. With no
// backend available every word passes through unchanged.
package spell

import (
	"sort"
	"strings"

	"github.com/cognicore/stdtext/pkg/stdtext/vocab"
)

// alphabet is the Danish lowercase alphabet used for candidate edits.
const alphabet = "abcdefghijklmnopqrstuvwxyzæøå"

// FreqSource supplies word frequencies to a FreqDict backend.
type FreqSource interface {
	Contains(word string) bool
	Count(word string) int
	Len() int
}

// Backend is one spelling engine.
type Backend interface {
	Name() string
	Available() bool
	Known(word string) bool
	Correct(word string) string
	Suggest(word string, limit int) []string
}

// FreqDict is a frequency dictionary backend. An unknown word is corrected
// to the most frequent known word within one edit, then within two edits;
// with no candidate the word is returned unchanged.
type FreqDict struct {
	name string
	src  FreqSource
}

// NewFreqDict builds a frequency backend over the given source.
func NewFreqDict(name string, src FreqSource) *FreqDict {
	return &FreqDict{name: name, src: src}
}

// Name returns the backend name.
func (b *FreqDict) Name() string { return b.name }

// Available reports whether the source holds any words.
func (b *FreqDict) Available() bool {
	return b.src != nil && b.src.Len() > 0
}

// Known reports whether the word is in the source.
func (b *FreqDict) Known(word string) bool {
	return b.src != nil && b.src.Contains(strings.ToLower(word))
}

// Correct returns the best correction for a word.
func (b *FreqDict) Correct(word string) string {
	w := strings.ToLower(word)
	if b.src.Contains(w) {
		return w
	}
	e1 := edits1(w)
	if best := b.best(b.known(e1)); best != "" {
		return best
	}
	if best := b.best(b.known(edits2(e1))); best != "" {
		return best
	}
	return word
}

// Suggest returns candidate corrections, most frequent first. The first
// non-empty tier wins: the word itself when known, one-edit candidates,
// two-edit candidates.
func (b *FreqDict) Suggest(word string, limit int) []string {
	w := strings.ToLower(word)
	if b.src.Contains(w) {
		return []string{w}
	}
	e1 := edits1(w)
	cands := b.known(e1)
	if len(cands) == 0 {
		cands = b.known(edits2(e1))
	}
	if len(cands) == 0 {
		return nil
	}
	out := make([]string, 0, len(cands))
	for c := range cands {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		ci, cj := b.src.Count(out[i]), b.src.Count(out[j])
		if ci != cj {
			return ci > cj
		}
		return out[i] < out[j]
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// known filters candidates down to words present in the source.
func (b *FreqDict) known(cands []string) map[string]bool {
	out := make(map[string]bool)
	for _, c := range cands {
		if c != "" && b.src.Contains(c) {
			out[c] = true
		}
	}
	return out
}

// best picks the most frequent candidate, ties broken alphabetically.
func (b *FreqDict) best(cands map[string]bool) string {
	bestWord, bestCount := "", -1
	for w := range cands {
		c := b.src.Count(w)
		if c > bestCount || (c == bestCount && w < bestWord) {
			bestWord, bestCount = w, c
		}
	}
	return bestWord
}

// edits1 returns every string one edit away: deletes, transposes, replaces
// and inserts over the Danish alphabet.
func edits1(word string) []string {
	r := []rune(word)
	out := make([]string, 0, (len(r)+1)*len([]rune(alphabet))*2+2*len(r))
	for i := range r {
		out = append(out, string(r[:i])+string(r[i+1:]))
	}
	for i := 0; i < len(r)-1; i++ {
		t := make([]rune, len(r))
		copy(t, r)
		t[i], t[i+1] = t[i+1], t[i]
		out = append(out, string(t))
	}
	for i := range r {
		for _, c := range alphabet {
			t := make([]rune, len(r))
			copy(t, r)
			t[i] = c
			out = append(out, string(t))
		}
	}
	for i := 0; i <= len(r); i++ {
		for _, c := range alphabet {
			out = append(out, string(r[:i])+string(c)+string(r[i:]))
		}
	}
	return out
}

// edits2 returns every string one edit away from any of the given strings.
func edits2(e1 []string) []string {
	var out []string
	for _, e := range e1 {
		out = append(out, edits1(e)...)
	}
	return out
}

// Provider ranks backends and applies the custom dictionary overlay. Custom
// words are always known and never corrected.
type Provider struct {
	backends []Backend
	custom   *vocab.Set
}

// NewProvider builds a provider. The custom set may be nil.
func NewProvider(custom *vocab.Set, backends ...Backend) *Provider {
	return &Provider{backends: backends, custom: custom}
}

// Active returns the first available backend, or nil.
func (p *Provider) Active() Backend {
	for _, b := range p.backends {
		if b.Available() {
			return b
		}
	}
	return nil
}

// BackendName returns the active backend's name, "none" without one.
func (p *Provider) BackendName() string {
	if b := p.Active(); b != nil {
		return b.Name()
	}
	return "none"
}

// Correct returns the active backend's correction, or the word itself when
// the word is in the custom dictionary or no backend is available.
func (p *Provider) Correct(word string) string {
	if word == "" {
		return word
	}
	if p.custom != nil && p.custom.Has(word) {
		return word
	}
	if b := p.Active(); b != nil {
		return b.Correct(word)
	}
	return word
}

// Suggest returns the active backend's suggestions.
func (p *Provider) Suggest(word string, limit int) []string {
	if word == "" {
		return nil
	}
	if b := p.Active(); b != nil {
		return b.Suggest(word, limit)
	}
	return nil
}

// Known reports whether the word is a valid dictionary word: present in the
// custom dictionary or in the active backend's vocabulary. With no backend
// every word counts as known.
func (p *Provider) Known(word string) bool {
	if word == "" {
		return true
	}
	if p.custom != nil && p.custom.Has(word) {
		return true
	}
	if b := p.Active(); b != nil {
		return b.Known(word)
	}
	return true
}
