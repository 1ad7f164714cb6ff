// Package sqlite persists corpus model snapshots in a SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cognicore/stdtext/pkg/stdtext/internalerr"
	"github.com/cognicore/stdtext/pkg/stdtext/store"
)

// sqliteStore implements the ModelStore interface using SQLite
type sqliteStore struct {
	db *sql.DB
}

// Open opens a snapshot database with WAL mode enabled, creating the
// schema on first use.
func Open(ctx context.Context, path string) (store.ModelStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{db: db}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS model_meta (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	version INTEGER NOT NULL,
	built_at TEXT NOT NULL,
	lowercase INTEGER NOT NULL,
	row_count INTEGER NOT NULL,
	unigram_count INTEGER NOT NULL,
	cont_count INTEGER NOT NULL,
	idf_count INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS model_rows (
	pos INTEGER PRIMARY KEY,
	text TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS model_unigrams (
	word TEXT PRIMARY KEY,
	count INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS model_continuations (
	prefix TEXT NOT NULL,
	next TEXT NOT NULL,
	count INTEGER NOT NULL,
	PRIMARY KEY(prefix, next)
);

CREATE TABLE IF NOT EXISTS model_idf (
	gram TEXT PRIMARY KEY,
	idf REAL NOT NULL
);
`

	_, err := db.ExecContext(ctx, schema)
	return err
}

// Save replaces the stored snapshot in a single transaction, so readers
// never observe a half-written model.
func (s *sqliteStore) Save(ctx context.Context, snap *store.Snapshot) error {
	if snap == nil {
		return fmt.Errorf("nil snapshot: %w", internalerr.ErrInvalidInput)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"model_meta", "model_rows", "model_unigrams", "model_continuations", "model_idf"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			return err
		}
	}

	contCount := 0
	for _, inner := range snap.Continuations {
		contCount += len(inner)
	}
	lowercase := 0
	if snap.Lowercase {
		lowercase = 1
	}

	if _, err := tx.ExecContext(ctx, `
INSERT INTO model_meta (id, version, built_at, lowercase, row_count, unigram_count, cont_count, idf_count)
VALUES (1, ?, ?, ?, ?, ?, ?, ?);
`, snap.Version, snap.BuiltAt.UTC().Format(time.RFC3339Nano), lowercase,
		len(snap.Rows), len(snap.Unigrams), contCount, len(snap.IDF)); err != nil {
		return err
	}

	if err := insertRows(ctx, tx, snap.Rows); err != nil {
		return err
	}
	if err := insertUnigrams(ctx, tx, snap.Unigrams); err != nil {
		return err
	}
	if err := insertContinuations(ctx, tx, snap.Continuations); err != nil {
		return err
	}
	if err := insertIDF(ctx, tx, snap.IDF); err != nil {
		return err
	}

	return tx.Commit()
}

func insertRows(ctx context.Context, tx *sql.Tx, rows []string) error {
	if len(rows) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO model_rows (pos, text) VALUES (?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for i, r := range rows {
		if _, err := stmt.ExecContext(ctx, i, r); err != nil {
			return err
		}
	}
	return nil
}

func insertUnigrams(ctx context.Context, tx *sql.Tx, counts map[string]int) error {
	if len(counts) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO model_unigrams (word, count) VALUES (?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for w, n := range counts {
		if _, err := stmt.ExecContext(ctx, w, n); err != nil {
			return err
		}
	}
	return nil
}

func insertContinuations(ctx context.Context, tx *sql.Tx, conts map[string]map[string]int) error {
	if len(conts) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO model_continuations (prefix, next, count) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for prefix, inner := range conts {
		for next, n := range inner {
			if _, err := stmt.ExecContext(ctx, prefix, next, n); err != nil {
				return err
			}
		}
	}
	return nil
}

func insertIDF(ctx context.Context, tx *sql.Tx, idf map[string]float64) error {
	if len(idf) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO model_idf (gram, idf) VALUES (?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for g, w := range idf {
		if _, err := stmt.ExecContext(ctx, g, w); err != nil {
			return err
		}
	}
	return nil
}

// Load reads the stored snapshot, verifying the persisted tables against the
// counts recorded at save time. A missing snapshot returns ErrNotFound; an
// incomplete or inconsistent one returns ErrCorruptSnapshot.
func (s *sqliteStore) Load(ctx context.Context) (*store.Snapshot, error) {
	var (
		snap      store.Snapshot
		builtAt   string
		lowercase int
		rowCount  int
		uniCount  int
		contCount int
		idfCount  int
	)
	err := s.db.QueryRowContext(ctx, `
SELECT version, built_at, lowercase, row_count, unigram_count, cont_count, idf_count
FROM model_meta WHERE id = 1;
`).Scan(&snap.Version, &builtAt, &lowercase, &rowCount, &uniCount, &contCount, &idfCount)
	if err == sql.ErrNoRows {
		return nil, internalerr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if snap.Version != store.SnapshotVersion {
		return nil, fmt.Errorf("snapshot version %d: %w", snap.Version, internalerr.ErrCorruptSnapshot)
	}
	snap.BuiltAt, err = time.Parse(time.RFC3339Nano, builtAt)
	if err != nil {
		return nil, fmt.Errorf("built_at %q: %w", builtAt, internalerr.ErrCorruptSnapshot)
	}
	snap.Lowercase = lowercase != 0

	if snap.Rows, err = s.loadRows(ctx); err != nil {
		return nil, err
	}
	if snap.Unigrams, err = s.loadUnigrams(ctx); err != nil {
		return nil, err
	}
	if snap.Continuations, err = s.loadContinuations(ctx); err != nil {
		return nil, err
	}
	if snap.IDF, err = s.loadIDF(ctx); err != nil {
		return nil, err
	}

	storedConts := 0
	for _, inner := range snap.Continuations {
		storedConts += len(inner)
	}
	if len(snap.Rows) != rowCount || len(snap.Unigrams) != uniCount ||
		storedConts != contCount || len(snap.IDF) != idfCount {
		return nil, fmt.Errorf("stored tables do not match metadata: %w", internalerr.ErrCorruptSnapshot)
	}

	return &snap, nil
}

func (s *sqliteStore) loadRows(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT text FROM model_rows ORDER BY pos`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var text string
		if err := rows.Scan(&text); err != nil {
			return nil, err
		}
		out = append(out, text)
	}
	return out, rows.Err()
}

func (s *sqliteStore) loadUnigrams(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT word, count FROM model_unigrams`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var (
			word string
			n    int
		)
		if err := rows.Scan(&word, &n); err != nil {
			return nil, err
		}
		out[word] = n
	}
	return out, rows.Err()
}

func (s *sqliteStore) loadContinuations(ctx context.Context) (map[string]map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT prefix, next, count FROM model_continuations`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]map[string]int)
	for rows.Next() {
		var (
			prefix string
			next   string
			n      int
		)
		if err := rows.Scan(&prefix, &next, &n); err != nil {
			return nil, err
		}
		inner, ok := out[prefix]
		if !ok {
			inner = make(map[string]int)
			out[prefix] = inner
		}
		inner[next] = n
	}
	return out, rows.Err()
}

func (s *sqliteStore) loadIDF(ctx context.Context) (map[string]float64, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT gram, idf FROM model_idf`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]float64)
	for rows.Next() {
		var (
			gram string
			w    float64
		)
		if err := rows.Scan(&gram, &w); err != nil {
			return nil, err
		}
		out[gram] = w
	}
	return out, rows.Err()
}
