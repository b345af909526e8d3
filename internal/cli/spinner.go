package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const spinnerInterval = 80 * time.Millisecond

// Spinner animates a status line until stopped or until its context ends.
type Spinner struct {
	message string
	w       io.Writer
	ctx     context.Context
	cancel  context.CancelFunc

	mu       sync.Mutex // guards writes to w and started
	started  bool
	stopOnce sync.Once
	stopped  chan struct{}
}

// startSpinner starts a spinner on stderr when it is a terminal. Otherwise
// it returns nil; Stop is safe on a nil spinner.
func startSpinner(ctx context.Context, message string) *Spinner {
	if !isTerminal(os.Stderr) {
		return nil
	}
	s := newSpinnerWithContext(ctx, message)
	s.Start()
	return s
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func newSpinner(message string) *Spinner {
	return newSpinnerWithContext(context.Background(), message)
}

// newSpinnerWithContext creates a spinner on stderr that stops when ctx ends.
func newSpinnerWithContext(ctx context.Context, message string) *Spinner {
	sctx, cancel := context.WithCancel(ctx)
	return &Spinner{
		message: message,
		w:       os.Stderr,
		ctx:     sctx,
		cancel:  cancel,
		stopped: make(chan struct{}),
	}
}

// Start begins the animation in a goroutine.
func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.started = true
	go s.run()
}

func (s *Spinner) run() {
	defer close(s.stopped)
	ticker := time.NewTicker(spinnerInterval)
	defer ticker.Stop()

	for i := 0; ; i++ {
		select {
		case <-s.ctx.Done():
			s.clearLine()
			return
		case <-ticker.C:
			frame := spinnerFrames[i%len(spinnerFrames)]
			s.mu.Lock()
			fmt.Fprintf(s.w, "\r%s %s", styleIconSpinner.Render(frame), StyleDim.Render(s.message))
			s.mu.Unlock()
		}
	}
}

// Stop ends the animation and clears the line. It may be called more than
// once.
func (s *Spinner) Stop() {
	if s == nil {
		return
	}
	s.stopOnce.Do(func() {
		s.cancel()
		s.mu.Lock()
		started := s.started
		s.mu.Unlock()
		if started {
			<-s.stopped
		}
	})
}

func (s *Spinner) clearLine() {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", len(s.message)+4))
}

// StopWithSuccess stops the spinner and prints a success line.
func (s *Spinner) StopWithSuccess(message string) {
	s.Stop()
	printSuccess("%s", message)
}

// StopWithError stops the spinner and prints an error line.
func (s *Spinner) StopWithError(message string) {
	s.Stop()
	printError("%s", message)
}

// Cancelled reports whether the spinner's context has ended, either through
// Stop or through the parent context.
func (s *Spinner) Cancelled() bool {
	return s.ctx.Err() != nil
}
