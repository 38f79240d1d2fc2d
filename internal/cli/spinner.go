package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"
)

const spinnerInterval = 80 * time.Millisecond

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner animates a progress indicator on stderr until stopped or until
// its context is cancelled.
type Spinner struct {
	message string
	ctx     context.Context
	cancel  context.CancelFunc
	halt    chan struct{}
	idle    chan struct{}
	mu      sync.Mutex
}

// newSpinner creates a spinner bound to ctx.
func newSpinner(ctx context.Context, message string) *Spinner {
	sctx, cancel := context.WithCancel(ctx)
	return &Spinner{
		message: message,
		ctx:     sctx,
		cancel:  cancel,
		halt:    make(chan struct{}),
		idle:    make(chan struct{}),
	}
}

// Start launches the animation goroutine.
func (s *Spinner) Start() {
	go s.run()
}

func (s *Spinner) run() {
	defer close(s.idle)
	tick := time.NewTicker(spinnerInterval)
	defer tick.Stop()

	for frame := 0; ; frame++ {
		select {
		case <-s.ctx.Done():
			s.erase()
			return
		case <-s.halt:
			return
		case <-tick.C:
			glyph := spinnerFrames[frame%len(spinnerFrames)]
			s.mu.Lock()
			fmt.Fprintf(os.Stderr, "\r%s %s", styleIconSpinner.Render(glyph), StyleDim.Render(s.message))
			s.mu.Unlock()
		}
	}
}

// Stop halts the animation and erases the line. Idempotent.
func (s *Spinner) Stop() {
	s.cancel()
	select {
	case <-s.halt:
	default:
		close(s.halt)
	}
	<-s.idle
	s.erase()
}

// StopWithSuccess halts the spinner and prints a success line.
func (s *Spinner) StopWithSuccess(message string) {
	s.Stop()
	printSuccess("%s", message)
}

// StopWithError halts the spinner and prints an error line.
func (s *Spinner) StopWithError(message string) {
	s.Stop()
	printError("%s", message)
}

// Cancelled reports whether the spinner's context was cancelled.
func (s *Spinner) Cancelled() bool {
	return s.ctx.Err() != nil
}

func (s *Spinner) erase() {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(os.Stderr, "\r%s\r", strings.Repeat(" ", len(s.message)+4))
}
