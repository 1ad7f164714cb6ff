// Package entities extracts privacy-bearing spans from the token stream and
// replaces them with typed placeholders. Pattern entities (URL, EMAIL, PHONE,
// DATE) are found by regular expressions over runs of plain tokens; word
// entities (CITY, STREETNAME, COMP, PERS) are found token by token against a
// gazetteer, closed suffix sets, and a dictionary oracle.
package entities

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"unicode"

	"github.com/cognicore/stdtext/pkg/stdtext/pipeline"
	"github.com/cognicore/stdtext/pkg/stdtext/token"
)

// Oracle answers dictionary questions for the scrubber. Known reports whether
// a word is in the dictionary. Correct returns the best correction for a word,
// or the word itself when no candidate exists.
type Oracle interface {
	Known(word string) bool
	Correct(word string) string
}

// identityOracle treats every word as valid.
type identityOracle struct{}

func (identityOracle) Known(string) bool          { return true }
func (identityOracle) Correct(word string) string { return word }

var streetSuffixes = []string{
	"vej", "gade", "alle", "torv", "stræde", "vænget",
	"bakken", "parken", "engen", "stien", "kaj",
	"vænge", "plads",
}

var companySuffixes = []string{
	"a/s", "aps", "a.m.b.a", "p/s", "k/s", "aps.",
}

// DefaultRoomWords is the built-in set of room and location words that stay
// in the text. Room words name where work was done and must survive scrubbing.
func DefaultRoomWords() []string {
	return []string{
		"køkken", "bad", "badeværelse", "wc", "toilet",
		"stue", "gang", "loft", "tag", "værksted", "kontor",
		"kælder", "garage", "bryggers", "entre",
	}
}

// prepositions that introduce a person span ("hos jensen").
var prepositions = []string{"hos", "ved", "til", "for", "i", "på"}

// Pattern passes in application order. PHONE runs before DATE, so an
// eight-digit dotted date like 12.05.2024 is tagged PHONE.
var (
	urlRE   = regexp.MustCompile(`(?i)\b(?:https?://|www\.)[A-Za-z0-9._%:/?#=&+-]+`)
	emailRE = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	phoneRE = regexp.MustCompile(`(?:\+45\s?)?\b(?:\d{2}[\s.-]?){3}\d{2}\b`)
	dateRE  = regexp.MustCompile(`\b\d{1,2}[.-]\d{1,2}[.-]\d{2,4}\b`)
)

var patternPasses = []struct {
	kind token.Kind
	re   *regexp.Regexp
}{
	{token.URL, urlRE},
	{token.Email, emailRE},
	{token.Phone, phoneRE},
	{token.Date, dateRE},
}

// Options configures a Scrubber.
type Options struct {
	// Oracle decides whether a token is a known word. Nil means every word
	// is known, which disables the word entities but keeps the pattern
	// passes active.
	Oracle Oracle
	// Cities is the lowercase city gazetteer.
	Cities []string
	// RoomWords overrides DefaultRoomWords when non-nil.
	RoomWords []string
}

// Scrubber is the entity extraction stage.
type Scrubber struct {
	oracle Oracle
	cities map[string]bool
	rooms  map[string]bool
	preps  map[string]bool
}

// New builds a Scrubber from the given options.
func New(opts Options) *Scrubber {
	oracle := opts.Oracle
	if oracle == nil {
		oracle = identityOracle{}
	}
	rooms := opts.RoomWords
	if rooms == nil {
		rooms = DefaultRoomWords()
	}
	s := &Scrubber{
		oracle: oracle,
		cities: make(map[string]bool, len(opts.Cities)),
		rooms:  make(map[string]bool, len(rooms)),
		preps:  make(map[string]bool, len(prepositions)),
	}
	for _, c := range opts.Cities {
		s.cities[strings.ToLower(strings.TrimSpace(c))] = true
	}
	for _, r := range rooms {
		s.rooms[strings.ToLower(r)] = true
	}
	for _, p := range prepositions {
		s.preps[p] = true
	}
	delete(s.cities, "")
	return s
}

// Name returns the stage name.
func (s *Scrubber) Name() string { return "entities" }

// Transform extracts entities in two phases: the pattern passes over plain
// token runs, then the word classification loop over the mixed stream.
// Placeholder originals are recorded in the context entity mapping.
func (s *Scrubber) Transform(pc *pipeline.Context, in token.Stream) token.Stream {
	return s.classify(pc, s.patternPhase(pc, in))
}

// patternPhase applies the four regex passes. Each maximal run of plain
// tokens is matched as one space-joined string, so a phone number split
// across tokens is still found. Placeholders bound the runs.
func (s *Scrubber) patternPhase(pc *pipeline.Context, in token.Stream) token.Stream {
	out := make(token.Stream, 0, len(in))
	var run []string
	flush := func() {
		if len(run) == 0 {
			return
		}
		out = append(out, s.scanRun(pc, strings.Join(run, " "))...)
		run = run[:0]
	}
	for _, t := range in {
		if t.IsPlaceholder() {
			flush()
			out = append(out, t)
			continue
		}
		run = append(run, t.Text)
	}
	flush()
	return out
}

// segment is either pending plain text or an already-extracted placeholder.
type segment struct {
	text  string
	tok   token.Token
	isTok bool
}

// scanRun runs the pattern passes over one plain-text run and returns the
// resulting tokens.
func (s *Scrubber) scanRun(pc *pipeline.Context, text string) token.Stream {
	segs := []segment{{text: text}}
	for _, pass := range patternPasses {
		segs = applyPass(pc, segs, pass.kind, pass.re)
	}

	var out token.Stream
	for _, sg := range segs {
		if sg.isTok {
			out = append(out, sg.tok)
			continue
		}
		for _, f := range strings.Fields(sg.text) {
			out = append(out, token.Plain(f))
		}
	}
	return out
}

// applyPass splits plain segments at every regex match, replacing matches
// with placeholders and recording the matched text. Match spans are widened
// to token boundaries first, so a match inside a token ("tlf:12345678")
// scrubs the whole token and every cut falls on a space; rendering the
// resulting stream reproduces the run verbatim.
func applyPass(pc *pipeline.Context, segs []segment, kind token.Kind, re *regexp.Regexp) []segment {
	var out []segment
	for _, sg := range segs {
		if sg.isTok {
			out = append(out, sg)
			continue
		}
		locs := re.FindAllStringIndex(sg.text, -1)
		if locs == nil {
			out = append(out, sg)
			continue
		}
		last := 0
		for _, loc := range widenToTokens(sg.text, locs) {
			if loc[0] > last {
				out = append(out, segment{text: sg.text[last:loc[0]]})
			}
			t := pc.Next(kind)
			pc.Entities.Put(t.Key(), sg.text[loc[0]:loc[1]])
			out = append(out, segment{tok: t, isTok: true})
			last = loc[1]
		}
		if last < len(sg.text) {
			out = append(out, segment{text: sg.text[last:]})
		}
	}
	return out
}

// widenToTokens grows each match span to the surrounding space boundaries
// and merges spans that overlap after widening. Runs are space-joined, so a
// single space is the only separator to look for.
func widenToTokens(text string, locs [][]int) [][]int {
	var spans [][]int
	for _, loc := range locs {
		lo, hi := loc[0], loc[1]
		for lo > 0 && text[lo-1] != ' ' {
			lo--
		}
		for hi < len(text) && text[hi] != ' ' {
			hi++
		}
		if n := len(spans); n > 0 && lo <= spans[n-1][1] {
			if hi > spans[n-1][1] {
				spans[n-1][1] = hi
			}
			continue
		}
		spans = append(spans, []int{lo, hi})
	}
	return spans
}

// classify runs the word-entity loop. Order per token: known word kept, room
// word kept, city, street suffix, company suffix, person span after a
// preposition. Dictionary membership outranks every word entity: a known
// word is never scrubbed, not even when the gazetteer or a suffix matches.
func (s *Scrubber) classify(pc *pipeline.Context, in token.Stream) token.Stream {
	out := make(token.Stream, 0, len(in))
	for i := 0; i < len(in); i++ {
		t := in[i]
		if t.IsPlaceholder() {
			out = append(out, t)
			continue
		}
		wl := strings.ToLower(t.Text)

		if s.known(wl) || s.isRoom(wl) {
			out = append(out, t)
			continue
		}
		if s.cities[wl] {
			out = append(out, s.record(pc, token.City, t.Text))
			continue
		}
		if hasAnySuffix(wl, streetSuffixes) {
			out = append(out, s.record(pc, token.Street, t.Text))
			continue
		}
		if hasAnySuffix(wl, companySuffixes) {
			out = append(out, s.record(pc, token.Comp, t.Text))
			continue
		}
		if i > 0 && !in[i-1].IsPlaceholder() && s.preps[strings.ToLower(in[i-1].Text)] {
			span := []string{t.Text}
			j := i + 1
			for j < len(in) && len(span) < 3 {
				n := in[j]
				if n.IsPlaceholder() {
					break
				}
				nl := strings.ToLower(n.Text)
				if s.known(nl) || hasDigit(n.Text) || s.preps[nl] || s.isRoom(nl) {
					break
				}
				span = append(span, n.Text)
				j++
			}
			out = append(out, s.record(pc, token.Pers, strings.Join(span, " ")))
			i = j - 1
			continue
		}

		out = append(out, t)
	}
	return out
}

// record allocates a placeholder of the given kind and stores its original.
func (s *Scrubber) record(pc *pipeline.Context, kind token.Kind, original string) token.Token {
	t := pc.Next(kind)
	pc.Entities.Put(t.Key(), original)
	return t
}

// known reports whether the word is in the oracle's dictionary.
func (s *Scrubber) known(word string) bool {
	if word == "" {
		return true
	}
	return s.oracle.Known(word)
}

// isRoom tests room membership on the word and on its corrected form, so a
// misspelled room word after a preposition is not swallowed as a person span.
func (s *Scrubber) isRoom(word string) bool {
	if s.rooms[word] {
		return true
	}
	return s.rooms[strings.ToLower(s.oracle.Correct(word))]
}

func hasAnySuffix(word string, suffixes []string) bool {
	for _, suf := range suffixes {
		if strings.HasSuffix(word, suf) {
			return true
		}
	}
	return false
}

func hasDigit(word string) bool {
	for _, r := range word {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

// LoadCities reads a gazetteer file with one city name per line. Blank lines
// are skipped and names are lowercased.
func LoadCities(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read gazetteer: %w", err)
	}
	var cities []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		cities = append(cities, strings.ToLower(line))
	}
	return cities, nil
}
