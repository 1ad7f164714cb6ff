// Package normalize implements the first pipeline stage: lowercasing,
// whitespace collapsing, and edge-punctuation trimming, with
// abbreviation-shaped tokens kept whole so the abbreviation extractor can
// still see their trailing period.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/cognicore/stdtext/pkg/stdtext/token"
)

// stripEdges is the punctuation trimmed from both ends of ordinary tokens.
// The period is included; abbreviation-shaped tokens are exempted below so
// "stk." keeps its dot while "monteret." loses it.
const stripEdges = ".,;:!?()[]{}"

// Normalizer cleans raw invoice text. A whitelist of known abbreviations is
// always kept verbatim (lowercased) in addition to the shape-based rule.
type Normalizer struct {
	whitelist map[string]struct{}
}

// New creates a normalizer. The whitelist entries are matched against
// lowercased tokens exactly, trailing periods included.
func New(whitelist []string) *Normalizer {
	wl := make(map[string]struct{}, len(whitelist))
	for _, w := range whitelist {
		wl[strings.ToLower(w)] = struct{}{}
	}
	return &Normalizer{whitelist: wl}
}

// Clean returns the normalized form of text: NFC-composed, lowercased,
// whitespace-collapsed, ordinary tokens trimmed of edge punctuation.
// Empty input yields the empty string. Clean is idempotent.
func (n *Normalizer) Clean(text string) string {
	return n.Tokens(text).Render()
}

// Tokens normalizes text and returns it as a stream of plain tokens.
func (n *Normalizer) Tokens(text string) token.Stream {
	if text == "" {
		return token.Stream{}
	}
	text = strings.ToLower(norm.NFC.String(text))

	var out token.Stream
	for _, tok := range strings.Fields(text) {
		if _, ok := n.whitelist[tok]; ok {
			out = append(out, token.Plain(tok))
			continue
		}
		if AbbrevShaped(tok) {
			out = append(out, token.Plain(tok))
			continue
		}
		cleaned := strings.Trim(tok, stripEdges)
		if cleaned != "" {
			out = append(out, token.Plain(cleaned))
		}
	}
	if out == nil {
		return token.Stream{}
	}
	return out
}

// AbbrevShaped reports whether tok looks like an abbreviation: at most four
// letters followed by a trailing period, stem entirely alphabetic.
func AbbrevShaped(tok string) bool {
	if !strings.HasSuffix(tok, ".") {
		return false
	}
	stem := strings.TrimSuffix(tok, ".")
	if stem == "" {
		return false
	}
	runes := []rune(stem)
	if len(runes) > 4 {
		return false
	}
	for _, r := range runes {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
