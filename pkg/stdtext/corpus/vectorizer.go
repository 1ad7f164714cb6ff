// Package corpus implements the historical-corpus canonicalizer: a character
// n-gram TF-IDF vector space with a cosine nearest-neighbor index, a
// lighter-weight unigram/n-gram phrase corrector over the same rows, and the
// swap handle that serves a fitted model to concurrent readers across
// rebuilds.
package corpus

import (
	"math"
	"sort"
	"strings"
)

// Gram sizes of the fitted vector space.
const (
	minGram = 3
	maxGram = 5
)

// Vector is a sparse L2-normalized column -> weight map.
type Vector map[int]float64

// Vectorizer maps text to the TF-IDF vector space. Grams are drawn per word:
// each word is padded with one space on both sides and n-grams of size 3..5
// are taken inside the padded word. A word shorter than the gram size yields
// the whole padded word once.
type Vectorizer struct {
	vocab map[string]int
	idf   []float64
	grams []string
}

// NewVectorizer returns an unfitted vectorizer.
func NewVectorizer() *Vectorizer {
	return &Vectorizer{vocab: make(map[string]int)}
}

// Fit builds the gram vocabulary and IDF weights over the given texts,
// with idf = ln((1+N)/(1+df)) + 1.
func (v *Vectorizer) Fit(texts []string) {
	df := make(map[string]int)
	for _, t := range texts {
		seen := make(map[string]bool)
		for _, g := range charGrams(t) {
			if !seen[g] {
				seen[g] = true
				df[g]++
			}
		}
	}

	v.grams = make([]string, 0, len(df))
	for g := range df {
		v.grams = append(v.grams, g)
	}
	sort.Strings(v.grams)

	n := float64(len(texts))
	v.vocab = make(map[string]int, len(v.grams))
	v.idf = make([]float64, len(v.grams))
	for i, g := range v.grams {
		v.vocab[g] = i
		v.idf[i] = math.Log((1+n)/(1+float64(df[g]))) + 1
	}
}

// Transform maps text into the fitted space. Grams outside the vocabulary
// are dropped; the result is L2-normalized. Text with no known gram yields
// an empty vector.
func (v *Vectorizer) Transform(text string) Vector {
	tf := make(map[int]float64)
	for _, g := range charGrams(text) {
		if col, ok := v.vocab[g]; ok {
			tf[col]++
		}
	}
	if len(tf) == 0 {
		return Vector{}
	}

	cols := make([]int, 0, len(tf))
	for col := range tf {
		cols = append(cols, col)
	}
	sort.Ints(cols)

	var norm float64
	vec := make(Vector, len(cols))
	for _, col := range cols {
		w := tf[col] * v.idf[col]
		vec[col] = w
		norm += w * w
	}
	norm = math.Sqrt(norm)
	for _, col := range cols {
		vec[col] /= norm
	}
	return vec
}

// Len returns the vocabulary size.
func (v *Vectorizer) Len() int { return len(v.vocab) }

// IDFTable exports gram -> idf for snapshot persistence.
func (v *Vectorizer) IDFTable() map[string]float64 {
	out := make(map[string]float64, len(v.grams))
	for i, g := range v.grams {
		out[g] = v.idf[i]
	}
	return out
}

// VectorizerFromIDF rebuilds a vectorizer from a persisted IDF table.
func VectorizerFromIDF(idf map[string]float64) *Vectorizer {
	v := NewVectorizer()
	v.grams = make([]string, 0, len(idf))
	for g := range idf {
		v.grams = append(v.grams, g)
	}
	sort.Strings(v.grams)
	v.idf = make([]float64, len(v.grams))
	for i, g := range v.grams {
		v.vocab[g] = i
		v.idf[i] = idf[g]
	}
	return v
}

// charGrams returns the per-word padded character n-grams of text.
func charGrams(text string) []string {
	var grams []string
	for _, w := range strings.Fields(text) {
		padded := []rune(" " + w + " ")
		l := len(padded)
		for n := minGram; n <= maxGram; n++ {
			if l <= n {
				grams = append(grams, string(padded))
				break
			}
			for off := 0; off+n <= l; off++ {
				grams = append(grams, string(padded[off:off+n]))
			}
		}
	}
	return grams
}
