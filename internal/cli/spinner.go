package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"
)

// spinnerFrames animate on stderr while a pipeline stage runs. Stderr keeps
// the animation out of piped stdout output.
var spinnerFrames = [...]string{"⠋", "⠙", "⠸", "⠴", "⠦", "⠇"}

const spinnerInterval = 110 * time.Millisecond

// Spinner shows the current pipeline stage on stderr. The stage label can
// be advanced as the run moves from layout to artifact writing, and runs
// longer than a couple of seconds get an elapsed-time suffix.
type Spinner struct {
	mu      sync.Mutex
	stage   string
	started time.Time

	ctx     context.Context
	cancel  context.CancelFunc
	stopped chan struct{}
	once    sync.Once
}

// newSpinnerWithContext creates a spinner showing stage. Cancelling ctx
// stops the animation and clears the line.
func newSpinnerWithContext(ctx context.Context, stage string) *Spinner {
	sctx, cancel := context.WithCancel(ctx)
	return &Spinner{
		stage:   stage,
		ctx:     sctx,
		cancel:  cancel,
		stopped: make(chan struct{}),
	}
}

// Start begins the animation. Call Stop or StopWithError when the stage
// finishes.
func (s *Spinner) Start() {
	s.mu.Lock()
	s.started = time.Now()
	s.mu.Unlock()

	go func() {
		defer close(s.stopped)
		ticker := time.NewTicker(spinnerInterval)
		defer ticker.Stop()

		for frame := 0; ; frame++ {
			select {
			case <-s.ctx.Done():
				s.clearLine()
				return
			case <-ticker.C:
				glyph := spinnerFrames[frame%len(spinnerFrames)]
				fmt.Fprintf(os.Stderr, "\r%s %s", styleIconSpinner.Render(glyph), StyleDim.Render(s.label()))
			}
		}
	}()
}

// Advance swaps the stage label without restarting the animation.
func (s *Spinner) Advance(stage string) {
	s.mu.Lock()
	s.stage = stage
	s.mu.Unlock()
}

func (s *Spinner) label() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if elapsed := time.Since(s.started); elapsed > 2*time.Second {
		return fmt.Sprintf("%s (%ds)", s.stage, int(elapsed.Seconds()))
	}
	return s.stage
}

// Stop halts the animation and clears the line. Safe to call more than
// once.
func (s *Spinner) Stop() {
	s.once.Do(func() {
		s.cancel()
		<-s.stopped
		s.clearLine()
	})
}

// StopWithError halts the animation and prints message as an error line.
func (s *Spinner) StopWithError(message string) {
	s.Stop()
	printError("%s", message)
}

func (s *Spinner) clearLine() {
	// Longest label plus glyph, padding, and elapsed suffix.
	width := len(s.label()) + 10
	fmt.Fprintf(os.Stderr, "\r%s\r", strings.Repeat(" ", width))
}
