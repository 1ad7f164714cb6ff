package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cognicore/stdtext/pkg/stdtext/internalerr"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()
	defer st.Close()

	if _, err := st.Load(ctx); !errors.Is(err, internalerr.ErrNotFound) {
		t.Errorf("Load on empty store = %v, want ErrNotFound", err)
	}

	snap := &Snapshot{
		Version: SnapshotVersion,
		BuiltAt: time.Now().UTC(),
		Rows:    []string{"montering af lampe"},
	}
	if err := st.Save(ctx, snap); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := st.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got.Rows) != 1 || got.Rows[0] != "montering af lampe" {
		t.Errorf("Load returned %q, want the saved rows", got.Rows)
	}
}
