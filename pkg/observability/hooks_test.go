package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	// Pipeline hooks
	p := NoopPipelineHooks{}
	p.OnGenerateStart(ctx, 42)
	p.OnGenerateComplete(ctx, time.Second, nil)
	p.OnBuildComplete(ctx, "Basic Web App", 3, 2, time.Millisecond, nil)
	p.OnRenderStart(ctx, "Basic Web App")
	p.OnRenderComplete(ctx, "Basic Web App", time.Second, nil)

	// Render hooks
	r := NoopRenderHooks{}
	r.OnJobQueued(ctx, "/tmp/basic_web_app.png")
	r.OnJobStarted(ctx, "/tmp/basic_web_app.png", time.Millisecond)
	r.OnJobAbandoned(ctx, "/tmp/basic_web_app.png", true)

	// HTTP hooks
	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "POST", "api.openai.com", "/v1/chat/completions")
	h.OnResponse(ctx, "POST", "api.openai.com", "/v1/chat/completions", 200, time.Second)
	h.OnError(ctx, "POST", "api.openai.com", "/v1/chat/completions", nil)
}

func TestGlobalHooksRegistry(t *testing.T) {
	// Reset to known state
	Reset()

	// Verify defaults are noop
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Pipeline() should return NoopPipelineHooks by default")
	}
	if _, ok := Render().(NoopRenderHooks); !ok {
		t.Error("Render() should return NoopRenderHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	// Set custom hooks
	customPipeline := &testPipelineHooks{}
	SetPipelineHooks(customPipeline)
	if Pipeline() != customPipeline {
		t.Error("SetPipelineHooks should set custom hooks")
	}

	customRender := &testRenderHooks{}
	SetRenderHooks(customRender)
	if Render() != customRender {
		t.Error("SetRenderHooks should set custom hooks")
	}

	customHTTP := &testHTTPHooks{}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks should set custom hooks")
	}

	// Reset and verify
	Reset()
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Reset() should restore NoopPipelineHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testPipelineHooks{}
	SetPipelineHooks(custom)

	// Setting nil should be ignored
	SetPipelineHooks(nil)

	if Pipeline() != custom {
		t.Error("SetPipelineHooks(nil) should be ignored")
	}

	Reset()
}

// Test implementations
type testPipelineHooks struct{ NoopPipelineHooks }
type testRenderHooks struct{ NoopRenderHooks }
type testHTTPHooks struct{ NoopHTTPHooks }
