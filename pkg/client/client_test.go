package client

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/archdiagram/pkg/api"
	errs "github.com/matzehuels/archdiagram/pkg/errors"
	"github.com/matzehuels/archdiagram/pkg/generate"
	"github.com/matzehuels/archdiagram/pkg/nodetype"
	"github.com/matzehuels/archdiagram/pkg/pipeline"
	"github.com/matzehuels/archdiagram/pkg/render"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func webApp() map[string]any {
	return map[string]any{
		"name": "Basic Web App",
		"nodes": []any{
			map[string]any{"id": "alb", "type": "ALB"},
			map[string]any{"id": "web1", "type": "EC2"},
		},
		"edges": []any{map[string]any{"source": "alb", "target": "web1"}},
	}
}

// newAPI starts a real API server backed by a stub render backend.
func newAPI(t *testing.T, gen generate.Generator, assistant generate.Assistant) *Client {
	t.Helper()
	backend := render.BackendFunc(func(_ context.Context, _ string, w io.Writer) error {
		_, err := w.Write(pngMagic)
		return err
	})
	runner := pipeline.NewRunner(gen, render.NewRenderer(backend, render.NewPool(2), nil), nil)
	srv := api.New(api.Config{TempDir: t.TempDir()}, runner, assistant, nil)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	c, err := New(ts.URL, WithRetryWait(time.Millisecond, 5*time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestHealthAndNodeTypes(t *testing.T) {
	c := newAPI(t, nil, nil)

	h, err := c.Health(context.Background())
	if err != nil {
		t.Fatalf("Health() error = %v", err)
	}
	if h.Status != "healthy" || h.Services["generator"] != "unconfigured" {
		t.Errorf("health = %+v", h)
	}

	types, err := c.NodeTypes(context.Background())
	if err != nil {
		t.Fatalf("NodeTypes() error = %v", err)
	}
	if len(types) != len(nodetype.Kinds()) {
		t.Errorf("len(types) = %d, want %d", len(types), len(nodetype.Kinds()))
	}
}

func TestGenerateDiagramAndSave(t *testing.T) {
	c := newAPI(t, generate.Static(webApp()), nil)

	img, err := c.GenerateDiagram(context.Background(), "An ALB in front of a web server")
	if err != nil {
		t.Fatalf("GenerateDiagram() error = %v", err)
	}
	if img.Filename != "basic_web_app.png" {
		t.Errorf("Filename = %q", img.Filename)
	}
	if !bytes.Equal(img.Data, pngMagic) {
		t.Errorf("Data = %q", img.Data)
	}

	dir := t.TempDir()
	path, err := img.Save(dir)
	if err != nil {
		t.Fatal(err)
	}
	if path != filepath.Join(dir, "basic_web_app.png") {
		t.Errorf("Save() = %q", path)
	}
	if data, _ := os.ReadFile(path); !bytes.Equal(data, pngMagic) {
		t.Errorf("saved file = %q", data)
	}
}

func TestRenderDiagramErrors(t *testing.T) {
	c := newAPI(t, nil, nil)

	raw := webApp()
	raw["edges"] = []any{map[string]any{"source": "alb", "target": "x"}}
	_, err := c.RenderDiagram(context.Background(), raw)

	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v, want *StatusError", err)
	}
	if se.StatusCode != http.StatusBadRequest || se.Code != string(errs.ErrCodeUnknownReference) {
		t.Errorf("status error = %+v", se)
	}
}

func TestAssistant(t *testing.T) {
	var got generate.Conversation
	assistant := generate.AssistantFunc(func(_ context.Context, history generate.Conversation, _ string) (generate.Reply, error) {
		got = history
		return generate.Reply{Message: "Which database?"}, nil
	})
	c := newAPI(t, nil, assistant)

	history := generate.Conversation{{Role: generate.RoleUser, Content: "a web app"}}
	reply, err := c.Assistant(context.Background(), "with a cache", history)
	if err != nil {
		t.Fatalf("Assistant() error = %v", err)
	}
	if reply.Message != "Which database?" || reply.WantsDiagram() {
		t.Errorf("reply = %+v", reply)
	}
	if diff := cmp.Diff(history, got); diff != "" {
		t.Errorf("history mismatch (-want +got):\n%s", diff)
	}
}

func TestRetryPolicy(t *testing.T) {
	tests := []struct {
		name      string
		statuses  []int
		wantCalls int32
		wantErr   bool
	}{
		{"recovers from 503", []int{503, 503, 200}, 3, false},
		{"429 retried", []int{429, 200}, 2, false},
		{"502 not retried", []int{502}, 1, true},
		{"400 not retried", []int{400}, 1, true},
		{"gives up", []int{503}, DefaultRetryMax + 1, true},
		{"not configured not retried", []int{503}, 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				i := int(calls.Add(1)) - 1
				status := tt.statuses[min(i, len(tt.statuses)-1)]
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(status)
				if status == http.StatusOK {
					_, _ = w.Write([]byte(`{"status":"healthy"}`))
					return
				}
				code := "GENERATION"
				if strings.HasPrefix(tt.name, "not configured") {
					code = "NOT_CONFIGURED"
				}
				_, _ = w.Write([]byte(`{"detail":"nope","code":"` + code + `"}`))
			}))
			defer ts.Close()

			c, err := New(ts.URL, WithRetryWait(time.Millisecond, 2*time.Millisecond))
			if err != nil {
				t.Fatal(err)
			}
			_, err = c.Health(context.Background())
			if (err != nil) != tt.wantErr {
				t.Errorf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got := calls.Load(); got != tt.wantCalls {
				t.Errorf("calls = %d, want %d", got, tt.wantCalls)
			}
			var se *StatusError
			if tt.wantErr && (!errors.As(err, &se) || se.Detail != "nope") {
				t.Errorf("err = %#v, want StatusError with detail", err)
			}
		})
	}
}

func TestNewRejectsBadURL(t *testing.T) {
	for _, u := range []string{"localhost:8000", "ftp://example.com", "://bad"} {
		if _, err := New(u); err == nil {
			t.Errorf("New(%q) should fail", u)
		}
	}
}

func TestStatusErrorMessage(t *testing.T) {
	tests := []struct {
		err  *StatusError
		want string
	}{
		{&StatusError{StatusCode: 502, Detail: "Error generating diagram: boom"}, "api returned 502: Error generating diagram: boom"},
		{&StatusError{StatusCode: 500}, "api returned 500 Internal Server Error"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}
