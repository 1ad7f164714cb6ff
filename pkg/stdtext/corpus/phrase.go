package corpus

import (
	"strings"
	"unicode"

	"github.com/cognicore/stdtext/pkg/stdtext/normalize"
	"github.com/cognicore/stdtext/pkg/stdtext/token"
)

// PhraseOptions bounds the phrase corrector.
type PhraseOptions struct {
	// MaxEditDistance bounds the unigram snap.
	MaxEditDistance int
	// MinPrefixFreq is the minimum count of the dominant continuation.
	MinPrefixFreq int
	// Dominance is the minimum share of all continuations the dominant one
	// must hold.
	Dominance float64
	// MaxAppend caps continuation appends per position.
	MaxAppend int
}

// DefaultPhraseOptions returns the standard bounds.
func DefaultPhraseOptions() PhraseOptions {
	return PhraseOptions{
		MaxEditDistance: 2,
		MinPrefixFreq:   3,
		Dominance:       0.6,
		MaxAppend:       6,
	}
}

// CorrectPhrase applies the lightweight corpus corrections to a stream:
// unigram snapping of unknown tokens, "og" -> "samt" styling, trailing "ok"
// -> "i orden", and dominant-continuation expansion at every position.
// Placeholders are untouched.
func (f *Fitted) CorrectPhrase(in token.Stream, opts PhraseOptions) token.Stream {
	out := make(token.Stream, 0, len(in))
	for _, t := range in {
		if t.IsPlaceholder() || !snapEligible(t.Text) {
			out = append(out, t)
			continue
		}
		out = append(out, token.Plain(f.snapToken(t.Text, opts.MaxEditDistance)))
	}

	for i, t := range out {
		if i > 0 && i < len(out)-1 && !t.IsPlaceholder() && t.Text == "og" {
			out[i] = token.Plain("samt")
		}
	}

	if n := len(out); n > 0 {
		last := out[n-1]
		if !last.IsPlaceholder() && last.Text == "ok" {
			out = append(out[:n-1], token.Plain("i"), token.Plain("orden"))
		}
	}

	return f.expand(out, opts)
}

// snapToken corrects an out-of-vocabulary token to the nearest corpus
// unigram, preferring lower distance, then higher frequency, then
// alphabetical order. With no candidate in range the token stays.
func (f *Fitted) snapToken(tok string, maxDist int) string {
	if maxDist <= 0 || f.unigrams.Contains(tok) {
		return tok
	}
	best := ""
	bestDist := maxDist + 1
	bestFreq := 0
	f.unigrams.Range(func(word string, count int) bool {
		d := boundedDistance(tok, word, maxDist)
		if d > maxDist {
			return true
		}
		if d < bestDist ||
			(d == bestDist && count > bestFreq) ||
			(d == bestDist && count == bestFreq && word < best) {
			best, bestDist, bestFreq = word, d, count
		}
		return true
	})
	if best == "" {
		return tok
	}
	return best
}

func snapEligible(word string) bool {
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

// expand walks the stream and, after each plain token, inserts dominant
// historical continuations of the prefix ending there, at most MaxAppend per
// position. A continuation equal to the upcoming input token is skipped, so
// a phrase the input already spells out is not doubled.
func (f *Fitted) expand(toks token.Stream, opts PhraseOptions) token.Stream {
	out := make(token.Stream, 0, len(toks))
	for i, t := range toks {
		out = append(out, t)
		if t.IsPlaceholder() {
			continue
		}
		for appended := 0; appended < opts.MaxAppend; appended++ {
			next, ok := f.dominantNext(out, opts)
			if !ok {
				break
			}
			if i+1 < len(toks) && !toks[i+1].IsPlaceholder() && strings.EqualFold(toks[i+1].Text, next) {
				break
			}
			out = append(out, token.Plain(next))
		}
	}
	return out
}

// dominantNext inspects the trailing 3-token then 2-token plain prefix and
// returns its dominant continuation, if one qualifies.
func (f *Fitted) dominantNext(toks token.Stream, opts PhraseOptions) (string, bool) {
	for _, n := range []int{3, 2} {
		key := trailingPlainKey(toks, n)
		if key == "" {
			continue
		}
		inner := f.conts[key]
		if len(inner) == 0 {
			continue
		}
		total, best, bestN := 0, "", 0
		for w, c := range inner {
			total += c
			if c > bestN || (c == bestN && w < best) {
				best, bestN = w, c
			}
		}
		if bestN >= opts.MinPrefixFreq && float64(bestN) >= opts.Dominance*float64(total) {
			return best, true
		}
	}
	return "", false
}

// trailingPlainKey joins the last n tokens lowercased, empty when fewer than
// n tokens exist or any of them is a placeholder.
func trailingPlainKey(toks token.Stream, n int) string {
	if len(toks) < n {
		return ""
	}
	parts := make([]string, 0, n)
	for _, t := range toks[len(toks)-n:] {
		if t.IsPlaceholder() {
			return ""
		}
		parts = append(parts, strings.ToLower(t.Text))
	}
	return strings.Join(parts, " ")
}

// boundedDistance is a two-row Levenshtein giving up with max+1 once a full
// row exceeds max.
func boundedDistance(a, b string, max int) int {
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
