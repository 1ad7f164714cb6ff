// Package token defines the typed token stream the rewrite pipeline operates
// on. A token is either plain text or a placeholder standing in for an
// extracted span. Placeholders are atomic: stages downstream of their creation
// pass them through untouched, and only reinsertion turns them back into text.
//
// The textual form <KIND_NNNN> exists only when a stream is rendered for
// display or debugging; stages never parse it back.
package token

import (
	"fmt"
	"strings"
)

// Kind classifies a placeholder token. None marks ordinary text.
type Kind int

const (
	None Kind = iota
	Abbr
	URL
	Email
	Phone
	Date
	City
	Street
	Comp
	Pers
	Count
)

// kindNames maps Kind values to their rendered names.
var kindNames = [...]string{
	None:   "",
	Abbr:   "ABBR",
	URL:    "URL",
	Email:  "EMAIL",
	Phone:  "PHONE",
	Date:   "DATE",
	City:   "CITY",
	Street: "STREETNAME",
	Comp:   "COMP",
	Pers:   "PERS",
	Count:  "COUNT",
}

// String returns the rendered name of the kind, e.g. "STREETNAME".
func (k Kind) String() string {
	if int(k) > 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Token is one element of a stream. Plain tokens carry their text in Text;
// placeholder tokens carry a Kind and a 1-based per-kind sequence number.
type Token struct {
	Text string
	Kind Kind
	Seq  int
}

// Plain returns a plain text token.
func Plain(text string) Token {
	return Token{Text: text}
}

// Placeholder returns a placeholder token of the given kind and sequence.
func Placeholder(k Kind, seq int) Token {
	return Token{Kind: k, Seq: seq}
}

// IsPlaceholder reports whether the token stands in for an extracted span.
func (t Token) IsPlaceholder() bool {
	return t.Kind != None
}

// Key returns the placeholder key, e.g. "<ABBR_0001>". Plain tokens return
// their text unchanged.
func (t Token) Key() string {
	if t.Kind == None {
		return t.Text
	}
	return fmt.Sprintf("<%s_%04d>", t.Kind, t.Seq)
}

// String renders the token the way Key does.
func (t Token) String() string {
	return t.Key()
}

// Stream is an ordered token sequence.
type Stream []Token

// Fields splits whitespace-separated text into a stream of plain tokens.
func Fields(text string) Stream {
	parts := strings.Fields(text)
	s := make(Stream, len(parts))
	for i, p := range parts {
		s[i] = Plain(p)
	}
	return s
}

// Render joins the stream into display text, placeholders in <KIND_NNNN> form.
func (s Stream) Render() string {
	parts := make([]string, len(s))
	for i, t := range s {
		parts[i] = t.Key()
	}
	return strings.Join(parts, " ")
}

// HasPlaceholders reports whether any token in the stream is a placeholder.
func (s Stream) HasPlaceholders() bool {
	for _, t := range s {
		if t.IsPlaceholder() {
			return true
		}
	}
	return false
}

// Clone returns an independent copy of the stream.
func (s Stream) Clone() Stream {
	out := make(Stream, len(s))
	copy(out, s)
	return out
}

// CountRecord is the structured value behind a COUNT placeholder.
// Unit is normalized to the closed unit set; empty means unit-less.
type CountRecord struct {
	Noun string
	Qty  int
	Unit string
}

// Mapping is an ordered placeholder key to original substring mapping,
// created by an extractor and consumed once by its paired reinsertion.
type Mapping struct {
	keys []string
	vals map[string]string
}

// NewMapping returns an empty mapping.
func NewMapping() *Mapping {
	return &Mapping{vals: make(map[string]string)}
}

// Put records key -> val, keeping first-insertion order.
func (m *Mapping) Put(key, val string) {
	if _, ok := m.vals[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.vals[key] = val
}

// Get returns the stored value for key.
func (m *Mapping) Get(key string) (string, bool) {
	v, ok := m.vals[key]
	return v, ok
}

// Keys returns the keys in insertion order.
func (m *Mapping) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Len returns the number of entries.
func (m *Mapping) Len() int {
	return len(m.keys)
}

// CountMap is an ordered placeholder key to CountRecord mapping.
type CountMap struct {
	keys []string
	recs map[string]CountRecord
}

// NewCountMap returns an empty count mapping.
func NewCountMap() *CountMap {
	return &CountMap{recs: make(map[string]CountRecord)}
}

// Put records key -> rec, keeping first-insertion order.
func (m *CountMap) Put(key string, rec CountRecord) {
	if _, ok := m.recs[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.recs[key] = rec
}

// Get returns the stored record for key.
func (m *CountMap) Get(key string) (CountRecord, bool) {
	r, ok := m.recs[key]
	return r, ok
}

// Keys returns the keys in insertion order.
func (m *CountMap) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Len returns the number of entries.
func (m *CountMap) Len() int {
	return len(m.keys)
}
