package corpus

import "sort"

// hit is one index search result.
type hit struct {
	row      int
	distance float64
}

// index is a brute-force cosine nearest-neighbor index over row vectors.
// Corpus sizes here are invoice-line histories, small enough that a scan
// beats maintaining an approximate structure.
type index struct {
	vecs []Vector
}

func newIndex(vecs []Vector) *index {
	return &index{vecs: vecs}
}

// search returns up to k rows by ascending cosine distance, ties broken by
// row order. k beyond the corpus size returns everything.
func (ix *index) search(q Vector, k int) []hit {
	if k <= 0 || len(ix.vecs) == 0 {
		return nil
	}

	qCols := make([]int, 0, len(q))
	for col := range q {
		qCols = append(qCols, col)
	}
	sort.Ints(qCols)

	hits := make([]hit, len(ix.vecs))
	for i, v := range ix.vecs {
		var dot float64
		for _, col := range qCols {
			if w, ok := v[col]; ok {
				dot += q[col] * w
			}
		}
		hits[i] = hit{row: i, distance: 1 - dot}
	}
	sort.SliceStable(hits, func(a, b int) bool {
		return hits[a].distance < hits[b].distance
	})
	if k < len(hits) {
		hits = hits[:k]
	}
	return hits
}
