package corpus

import (
	"fmt"
	"strings"
	"time"

	"github.com/cognicore/stdtext/pkg/stdtext/internalerr"
	"github.com/cognicore/stdtext/pkg/stdtext/store"
	"github.com/cognicore/stdtext/pkg/stdtext/vocab"
)

// Hit is one nearest-neighbor result.
type Hit struct {
	Text     string
	Distance float64
}

// FitOptions controls fitting.
type FitOptions struct {
	// Lowercase trains and queries the vector space on lowercased text.
	// Stored rows keep their original form.
	Lowercase bool
}

// Fitted is an immutable fitted corpus state: deduplicated rows, the vector
// space and index over them, and the unigram/continuation tables feeding the
// phrase corrector. Build one with Fit or FromSnapshot and share it freely;
// rebuilds produce a new value.
type Fitted struct {
	rows      []string
	vec       *Vectorizer
	ix        *index
	unigrams  *vocab.Table
	conts     map[string]map[string]int
	builtAt   time.Time
	lowercase bool
}

// Fit builds a fitted state over the given texts. Rows are trimmed and
// deduplicated keeping first occurrence; blank rows are dropped.
func Fit(texts []string, opts FitOptions) *Fitted {
	seen := make(map[string]bool, len(texts))
	rows := make([]string, 0, len(texts))
	for _, t := range texts {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		rows = append(rows, t)
	}

	f := &Fitted{
		rows:      rows,
		unigrams:  vocab.NewTable(),
		conts:     make(map[string]map[string]int),
		builtAt:   time.Now().UTC(),
		lowercase: opts.Lowercase,
	}

	train := make([]string, len(rows))
	for i, r := range rows {
		train[i] = f.trainForm(r)
	}

	f.vec = NewVectorizer()
	f.vec.Fit(train)
	vecs := make([]Vector, len(train))
	for i, t := range train {
		vecs[i] = f.vec.Transform(t)
	}
	f.ix = newIndex(vecs)

	for _, t := range train {
		f.unigrams.AddText(t)
		addContinuations(f.conts, strings.Fields(strings.ToLower(t)))
	}
	return f
}

// addContinuations counts the next token after every 2- and 3-token prefix.
func addContinuations(m map[string]map[string]int, toks []string) {
	record := func(prefix, next string) {
		inner, ok := m[prefix]
		if !ok {
			inner = make(map[string]int)
			m[prefix] = inner
		}
		inner[next]++
	}
	for i := 0; i+2 < len(toks); i++ {
		record(strings.Join(toks[i:i+2], " "), toks[i+2])
	}
	for i := 0; i+3 < len(toks); i++ {
		record(strings.Join(toks[i:i+3], " "), toks[i+3])
	}
}

func (f *Fitted) trainForm(s string) string {
	if f.lowercase {
		return strings.ToLower(s)
	}
	return s
}

// Query returns up to topK stored rows by ascending cosine distance. A nil
// or empty state returns nil; topK above the corpus size returns every row;
// topK <= 0 selects the default of 3.
func (f *Fitted) Query(text string, topK int) []Hit {
	if f == nil || len(f.rows) == 0 {
		return nil
	}
	if topK <= 0 {
		topK = 3
	}
	q := f.vec.Transform(f.trainForm(strings.TrimSpace(text)))
	hits := f.ix.search(q, topK)
	out := make([]Hit, len(hits))
	for i, h := range hits {
		out[i] = Hit{Text: f.rows[h.row], Distance: h.distance}
	}
	return out
}

// Rows returns a copy of the deduplicated corpus rows.
func (f *Fitted) Rows() []string {
	if f == nil {
		return nil
	}
	out := make([]string, len(f.rows))
	copy(out, f.rows)
	return out
}

// Len returns the number of stored rows.
func (f *Fitted) Len() int {
	if f == nil {
		return 0
	}
	return len(f.rows)
}

// BuiltAt returns the fit timestamp.
func (f *Fitted) BuiltAt() time.Time {
	if f == nil {
		return time.Time{}
	}
	return f.builtAt
}

// Unigrams returns the corpus unigram frequency table.
func (f *Fitted) Unigrams() *vocab.Table {
	if f == nil {
		return nil
	}
	return f.unigrams
}

// Snapshot exports the state for persistence.
func (f *Fitted) Snapshot() *store.Snapshot {
	conts := make(map[string]map[string]int, len(f.conts))
	for prefix, inner := range f.conts {
		c := make(map[string]int, len(inner))
		for next, n := range inner {
			c[next] = n
		}
		conts[prefix] = c
	}
	return &store.Snapshot{
		Version:       store.SnapshotVersion,
		BuiltAt:       f.builtAt,
		Lowercase:     f.lowercase,
		Rows:          f.Rows(),
		Unigrams:      f.unigrams.Counts(),
		Continuations: conts,
		IDF:           f.vec.IDFTable(),
	}
}

// FromSnapshot restores a fitted state. Row vectors are recomputed from the
// stored rows and IDF table, so the restored index ranks exactly as the
// saved one did.
func FromSnapshot(snap *store.Snapshot) (*Fitted, error) {
	if snap == nil {
		return nil, fmt.Errorf("nil snapshot: %w", internalerr.ErrCorruptSnapshot)
	}
	if snap.Version != store.SnapshotVersion {
		return nil, fmt.Errorf("snapshot version %d: %w", snap.Version, internalerr.ErrCorruptSnapshot)
	}

	f := &Fitted{
		rows:      append([]string(nil), snap.Rows...),
		unigrams:  vocab.NewTable(),
		conts:     make(map[string]map[string]int, len(snap.Continuations)),
		builtAt:   snap.BuiltAt,
		lowercase: snap.Lowercase,
	}
	for w, n := range snap.Unigrams {
		f.unigrams.Add(w, n)
	}
	for prefix, inner := range snap.Continuations {
		c := make(map[string]int, len(inner))
		for next, n := range inner {
			c[next] = n
		}
		f.conts[prefix] = c
	}

	f.vec = VectorizerFromIDF(snap.IDF)
	vecs := make([]Vector, len(f.rows))
	for i, r := range f.rows {
		vecs[i] = f.vec.Transform(f.trainForm(r))
	}
	f.ix = newIndex(vecs)
	return f, nil
}
