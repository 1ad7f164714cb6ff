package corpus

import (
	"errors"
	"testing"

	"github.com/cognicore/stdtext/pkg/stdtext/internalerr"
)

func TestHandleSwapReplacesModel(t *testing.T) {
	h := NewHandle(nil)
	if h.Current() != nil {
		t.Fatal("cold handle should have no model")
	}

	f := Fit(serviceRows, FitOptions{})
	h.Swap(f)
	if h.Current() != f {
		t.Error("Current() should return the swapped model")
	}
}

func TestRebuildInstallsNewModel(t *testing.T) {
	h := NewHandle(Fit([]string{"gammel række"}, FitOptions{}))

	f, err := h.Rebuild(func() ([]string, error) {
		return serviceRows, nil
	}, FitOptions{})
	if err != nil {
		t.Fatalf("Rebuild: %v", err)
	}
	if f.Len() != len(serviceRows) {
		t.Errorf("rebuilt Len() = %d, want %d", f.Len(), len(serviceRows))
	}
	if h.Current() != f {
		t.Error("rebuild should swap the new model in")
	}
}

func TestRebuildLoadFailureKeepsPriorModel(t *testing.T) {
	old := Fit(serviceRows, FitOptions{})
	h := NewHandle(old)

	loadErr := errors.New("source gone")
	if _, err := h.Rebuild(func() ([]string, error) {
		return nil, loadErr
	}, FitOptions{}); !errors.Is(err, loadErr) {
		t.Errorf("Rebuild error = %v, want wrapped load error", err)
	}
	if h.Current() != old {
		t.Error("failed rebuild must keep the prior model serving")
	}
}

func TestConcurrentRebuildIsRejected(t *testing.T) {
	h := NewHandle(nil)
	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)

	go func() {
		_, err := h.Rebuild(func() ([]string, error) {
			close(started)
			<-release
			return serviceRows, nil
		}, FitOptions{})
		done <- err
	}()

	<-started
	if _, err := h.Rebuild(func() ([]string, error) {
		return nil, nil
	}, FitOptions{}); !errors.Is(err, internalerr.ErrRebuildInProgress) {
		t.Errorf("second rebuild error = %v, want ErrRebuildInProgress", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first rebuild: %v", err)
	}
	if h.Current() == nil || h.Current().Len() != len(serviceRows) {
		t.Error("first rebuild should have installed its model")
	}
}

func TestUnigramSourceFollowsSwaps(t *testing.T) {
	h := NewHandle(nil)
	src := UnigramSource{Handle: h}

	if src.Len() != 0 || src.Contains("lampe") || src.Count("lampe") != 0 {
		t.Error("source over a cold handle should be empty")
	}

	h.Swap(Fit(serviceRows, FitOptions{}))
	if !src.Contains("lampe") {
		t.Error("source should see the swapped-in vocabulary")
	}
	if got := src.Count("af"); got != 4 {
		t.Errorf("Count(af) = %d, want 4", got)
	}
	if src.Len() == 0 {
		t.Error("Len() should reflect the live vocabulary")
	}
}
