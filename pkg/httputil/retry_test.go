package httputil

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/matzehuels/archdiagram/pkg/observability"
)

func TestRetry(t *testing.T) {
	permanent := errors.New("bad request")

	tests := []struct {
		name      string
		failures  int
		err       error
		attempts  int
		wantCalls int
		wantErr   bool
	}{
		{"success first try", 0, nil, 3, 1, false},
		{"transient then success", 2, &RetryableError{Err: errors.New("503")}, 3, 3, false},
		{"transient exhausted", 5, &RetryableError{Err: errors.New("503")}, 3, 3, true},
		{"permanent not retried", 5, permanent, 3, 1, true},
		{"zero attempts runs once", 5, permanent, 0, 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := Retry(context.Background(), tt.attempts, time.Millisecond, func() error {
				calls++
				if calls <= tt.failures {
					return tt.err
				}
				return nil
			})
			if (err != nil) != tt.wantErr {
				t.Errorf("Retry() error = %v, wantErr %v", err, tt.wantErr)
			}
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
		})
	}
}

func TestRetryNotify(t *testing.T) {
	var waits []time.Duration
	_ = RetryNotify(context.Background(), 3, time.Millisecond, func() error {
		return &RetryableError{Err: errors.New("busy")}
	}, func(attempt int, err error, wait time.Duration) {
		waits = append(waits, wait)
	})
	if len(waits) != 2 || waits[0] != time.Millisecond || waits[1] != 2*time.Millisecond {
		t.Errorf("waits = %v, want [1ms 2ms]", waits)
	}
}

func TestRetryCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Retry(ctx, 3, time.Hour, func() error {
		return &RetryableError{Err: errors.New("busy")}
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Retry() error = %v, want context.Canceled", err)
	}
}

type recordingHooks struct {
	observability.NoopHTTPHooks
	requests  int
	responses []int
}

func (h *recordingHooks) OnRequest(context.Context, string, string, string) { h.requests++ }
func (h *recordingHooks) OnResponse(_ context.Context, _, _, _ string, code int, _ time.Duration) {
	h.responses = append(h.responses, code)
}

func TestTransportReportsToHooks(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetHTTPHooks(hooks)
	defer observability.Reset()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	defer srv.Close()

	client := &http.Client{Transport: NewTransport(nil)}
	resp, err := client.Get(srv.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	if hooks.requests != 1 || len(hooks.responses) != 1 || hooks.responses[0] != http.StatusTeapot {
		t.Errorf("hooks saw requests=%d responses=%v", hooks.requests, hooks.responses)
	}
}
