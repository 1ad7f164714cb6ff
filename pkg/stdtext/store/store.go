// Package store persists fitted corpus snapshots so the service can come
// back after a restart without refitting. A snapshot is saved and loaded as
// one unit; a store must never return a partial snapshot.
package store

import (
	"context"
	"time"
)

// SnapshotVersion is the current snapshot schema version.
const SnapshotVersion = 1

// ModelStore is the interface for persisting fitted corpus state.
type ModelStore interface {
	Close() error

	Save(ctx context.Context, snap *Snapshot) error
	// Load returns the stored snapshot, internalerr.ErrNotFound when none
	// has been saved, internalerr.ErrCorruptSnapshot when the stored state
	// is incomplete or inconsistent.
	Load(ctx context.Context) (*Snapshot, error)
}

// Snapshot is a complete fitted corpus state: the deduplicated rows, the
// unigram frequency table, the phrase continuation counts and the gram IDF
// table. Row vectors are recomputed from rows and IDF at restore time.
type Snapshot struct {
	Version   int
	BuiltAt   time.Time
	Lowercase bool

	Rows          []string
	Unigrams      map[string]int
	Continuations map[string]map[string]int
	IDF           map[string]float64
}
