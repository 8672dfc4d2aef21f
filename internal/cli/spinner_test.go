package cli

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestSpinnerStopIsIdempotent(t *testing.T) {
	s := newSpinnerWithContext(context.Background(), "Computing layout...")
	s.Start()

	s.Stop()
	s.Stop()
	s.Stop()
}

func TestSpinnerContextCancelStopsAnimation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := newSpinnerWithContext(ctx, "Computing layout...")
	s.Start()

	cancel()

	select {
	case <-s.stopped:
	case <-time.After(time.Second):
		t.Fatal("animation goroutine did not exit after context cancel")
	}
}

func TestSpinnerAdvanceSwapsStage(t *testing.T) {
	s := newSpinnerWithContext(context.Background(), "Computing layout...")
	s.Advance("Writing artifacts...")

	if got := s.label(); got != "Writing artifacts..." {
		t.Errorf("label() = %q, want advanced stage", got)
	}
}

func TestSpinnerLabelShowsElapsedOnLongRuns(t *testing.T) {
	s := newSpinnerWithContext(context.Background(), "Computing layout...")
	s.started = time.Now().Add(-5 * time.Second)

	got := s.label()
	if !strings.HasPrefix(got, "Computing layout... (") || !strings.HasSuffix(got, "s)") {
		t.Errorf("label() = %q, want elapsed suffix", got)
	}
}

func TestSpinnerStopWithError(t *testing.T) {
	s := newSpinnerWithContext(context.Background(), "Rendering graph...")
	s.Start()
	time.Sleep(20 * time.Millisecond)
	s.StopWithError("Graph export failed")
}
