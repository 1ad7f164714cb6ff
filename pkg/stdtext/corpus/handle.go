package corpus

import (
	"fmt"
	"sync"

	"github.com/cognicore/stdtext/pkg/stdtext/internalerr"
	"github.com/cognicore/stdtext/pkg/stdtext/vocab"
)

// Handle holds the live fitted model and supports atomic replacement while
// readers keep correcting against the previous one.
type Handle struct {
	mu        sync.RWMutex
	fitted    *Fitted
	rebuildMu sync.Mutex
}

// NewHandle wraps a fitted model, which may be nil for a cold start.
func NewHandle(f *Fitted) *Handle {
	return &Handle{fitted: f}
}

// Current returns the live model, nil when none has been fitted yet.
func (h *Handle) Current() *Fitted {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.fitted
}

// Swap replaces the live model.
func (h *Handle) Swap(f *Fitted) {
	h.mu.Lock()
	h.fitted = f
	h.mu.Unlock()
}

// Rebuild loads fresh rows, fits a new model and swaps it in. Only one
// rebuild runs at a time; a second concurrent call returns
// internalerr.ErrRebuildInProgress. When loading fails the previous model
// stays live.
func (h *Handle) Rebuild(load func() ([]string, error), opts FitOptions) (*Fitted, error) {
	if !h.rebuildMu.TryLock() {
		return nil, internalerr.ErrRebuildInProgress
	}
	defer h.rebuildMu.Unlock()

	rows, err := load()
	if err != nil {
		return nil, fmt.Errorf("loading corpus rows: %w", err)
	}
	f := Fit(rows, opts)
	h.Swap(f)
	return f, nil
}

// UnigramSource exposes the live model's unigram table as a spelling
// frequency source. It follows model swaps and reports empty when no model
// is fitted.
type UnigramSource struct {
	Handle *Handle
}

func (s UnigramSource) table() *vocab.Table {
	if s.Handle == nil {
		return nil
	}
	return s.Handle.Current().Unigrams()
}

// Contains reports whether the live corpus has seen the word.
func (s UnigramSource) Contains(word string) bool {
	t := s.table()
	return t != nil && t.Contains(word)
}

// Count returns the word's frequency in the live corpus.
func (s UnigramSource) Count(word string) int {
	t := s.table()
	if t == nil {
		return 0
	}
	return t.Count(word)
}

// Len returns the live corpus vocabulary size.
func (s UnigramSource) Len() int {
	t := s.table()
	if t == nil {
		return 0
	}
	return t.Len()
}
