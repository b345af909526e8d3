// Package observability lets callers observe the diagram pipeline, the render
// pool and outbound HTTP calls without this module importing a metrics or
// tracing backend.
//
// Each event category has an interface and a no-op implementation that is
// active until something else is registered. The command layer registers its
// hooks once, before work starts; library packages only emit:
//
//	hooks := observability.Pipeline()
//	hooks.OnGenerateStart(ctx, len(description))
//	raw, err := gen.Generate(ctx, description)
//	hooks.OnGenerateComplete(ctx, time.Since(start), err)
//
// Implementations embed the Noop types and override the events they need.
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Pipeline Hooks
// =============================================================================

// PipelineHooks receives events from pipeline.Runner.
type PipelineHooks interface {
	// OnGenerateStart and OnGenerateComplete bracket a generation call.
	OnGenerateStart(ctx context.Context, descriptionLen int)
	OnGenerateComplete(ctx context.Context, duration time.Duration, err error)

	// OnBuildComplete fires after validation and graph build, with zero
	// counts when err is set.
	OnBuildComplete(ctx context.Context, name string, nodeCount, edgeCount int, duration time.Duration, err error)

	OnRenderStart(ctx context.Context, name string)
	OnRenderComplete(ctx context.Context, name string, duration time.Duration, err error)
}

// =============================================================================
// Render Hooks
// =============================================================================

// RenderHooks receives events from the render worker pool.
type RenderHooks interface {
	// OnJobQueued records a render job waiting for a worker slot.
	OnJobQueued(ctx context.Context, path string)

	// OnJobStarted records a render job that acquired a worker slot.
	OnJobStarted(ctx context.Context, path string, wait time.Duration)

	// OnJobAbandoned records a job whose caller stopped waiting.
	// removed reports whether an artifact had to be deleted.
	OnJobAbandoned(ctx context.Context, path string, removed bool)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from httputil.Transport.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, host, path string)

	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)

	// OnError fires when no response was received.
	OnError(ctx context.Context, method, host, path string, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopPipelineHooks is a no-op implementation of PipelineHooks.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnGenerateStart(context.Context, int)                     {}
func (NoopPipelineHooks) OnGenerateComplete(context.Context, time.Duration, error) {}
func (NoopPipelineHooks) OnBuildComplete(context.Context, string, int, int, time.Duration, error) {
}
func (NoopPipelineHooks) OnRenderStart(context.Context, string)                          {}
func (NoopPipelineHooks) OnRenderComplete(context.Context, string, time.Duration, error) {}

// NoopRenderHooks is a no-op implementation of RenderHooks.
type NoopRenderHooks struct{}

func (NoopRenderHooks) OnJobQueued(context.Context, string)                 {}
func (NoopRenderHooks) OnJobStarted(context.Context, string, time.Duration) {}
func (NoopRenderHooks) OnJobAbandoned(context.Context, string, bool)        {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

// =============================================================================
// Registry
// =============================================================================

type registry struct {
	mu       sync.RWMutex
	pipeline PipelineHooks
	render   RenderHooks
	http     HTTPHooks
}

var hooks = newRegistry()

func newRegistry() *registry {
	return &registry{
		pipeline: NoopPipelineHooks{},
		render:   NoopRenderHooks{},
		http:     NoopHTTPHooks{},
	}
}

// SetPipelineHooks replaces the pipeline hooks. A nil h is ignored.
func SetPipelineHooks(h PipelineHooks) {
	if h == nil {
		return
	}
	hooks.mu.Lock()
	hooks.pipeline = h
	hooks.mu.Unlock()
}

// SetRenderHooks replaces the render pool hooks. A nil h is ignored.
func SetRenderHooks(h RenderHooks) {
	if h == nil {
		return
	}
	hooks.mu.Lock()
	hooks.render = h
	hooks.mu.Unlock()
}

// SetHTTPHooks replaces the HTTP hooks. A nil h is ignored.
func SetHTTPHooks(h HTTPHooks) {
	if h == nil {
		return
	}
	hooks.mu.Lock()
	hooks.http = h
	hooks.mu.Unlock()
}

// Pipeline returns the active pipeline hooks.
func Pipeline() PipelineHooks {
	hooks.mu.RLock()
	defer hooks.mu.RUnlock()
	return hooks.pipeline
}

// Render returns the active render pool hooks.
func Render() RenderHooks {
	hooks.mu.RLock()
	defer hooks.mu.RUnlock()
	return hooks.render
}

// HTTP returns the active HTTP hooks.
func HTTP() HTTPHooks {
	hooks.mu.RLock()
	defer hooks.mu.RUnlock()
	return hooks.http
}

// Reset puts every category back to its no-op implementation.
func Reset() {
	fresh := newRegistry()
	hooks.mu.Lock()
	hooks.pipeline, hooks.render, hooks.http = fresh.pipeline, fresh.render, fresh.http
	hooks.mu.Unlock()
}
