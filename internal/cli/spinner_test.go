package cli

import (
	"bytes"
	"context"
	"os"
	"strings"
	"sync"
	"testing"
	"time"
)

// syncBuffer is a bytes.Buffer safe for the spinner goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func newTestSpinner(ctx context.Context, message string) (*Spinner, *syncBuffer) {
	var out syncBuffer
	s := newSpinnerWithContext(ctx, message)
	s.w = &out
	return s, &out
}

func TestSpinnerWritesFrames(t *testing.T) {
	s, out := newTestSpinner(context.Background(), "Rendering...")
	s.Start()
	time.Sleep(3 * spinnerInterval)
	s.Stop()

	if !strings.Contains(out.String(), "Rendering...") {
		t.Errorf("output = %q, want the message", out.String())
	}
	if !s.Cancelled() {
		t.Error("Cancelled() should be true after Stop")
	}
}

func TestSpinnerStopsWithContext(t *testing.T) {
	tests := []struct {
		name   string
		ctx    func() (context.Context, context.CancelFunc)
		cancel bool
	}{
		{"cancel", func() (context.Context, context.CancelFunc) { return context.WithCancel(context.Background()) }, true},
		{"timeout", func() (context.Context, context.CancelFunc) {
			return context.WithTimeout(context.Background(), 50*time.Millisecond)
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := tt.ctx()
			defer cancel()

			s, _ := newTestSpinner(ctx, "Waiting...")
			s.Start()
			if tt.cancel {
				cancel()
			}

			select {
			case <-s.stopped:
			case <-time.After(time.Second):
				t.Fatal("spinner did not stop when its context ended")
			}
			if !s.Cancelled() {
				t.Error("Cancelled() should be true")
			}
		})
	}
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	s, _ := newTestSpinner(context.Background(), "Stopping...")
	s.Start()
	s.Stop()
	s.Stop()
}

func TestSpinnerStopWithoutStart(t *testing.T) {
	s, out := newTestSpinner(context.Background(), "Never started")
	s.Stop()
	if out.String() != "" {
		t.Errorf("output = %q, want none", out.String())
	}
}

func TestNilSpinnerStop(t *testing.T) {
	var s *Spinner
	s.Stop()
}

func TestSpinnerStopWithMessages(t *testing.T) {
	s := newSpinner("Working...")
	s.w = &syncBuffer{}
	s.Start()
	s.StopWithSuccess("Done")

	s = newSpinner("Working...")
	s.w = &syncBuffer{}
	s.Start()
	s.StopWithError("Failed")
}

func TestStartSpinnerWithoutTerminal(t *testing.T) {
	if isTerminal(os.Stderr) {
		t.Skip("stderr is a terminal")
	}
	if s := startSpinner(context.Background(), "Testing..."); s != nil {
		s.Stop()
		t.Error("startSpinner() should return nil when stderr is not a terminal")
	}
}

func TestPlural(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{0, "0 nodes"},
		{1, "1 node"},
		{3, "3 nodes"},
	}
	for _, tt := range tests {
		if got := plural(tt.n, "node"); got != tt.want {
			t.Errorf("plural(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}
