package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/archdiagram/pkg/observability"
)

// debugHooks logs pipeline, render-pool and outbound HTTP events at debug
// level. It is registered by the root command when debug logging is on.
type debugHooks struct {
	observability.NoopPipelineHooks
	observability.NoopHTTPHooks
	observability.NoopRenderHooks
	logger *log.Logger
}

func (h debugHooks) OnGenerateComplete(_ context.Context, d time.Duration, err error) {
	h.logger.Debug("generation finished", "duration", d.Round(time.Millisecond), "error", err)
}

func (h debugHooks) OnBuildComplete(_ context.Context, name string, nodes, edges int, d time.Duration, err error) {
	h.logger.Debug("graph built", "name", name, "nodes", nodes, "edges", edges, "duration", d, "error", err)
}

func (h debugHooks) OnJobStarted(_ context.Context, path string, wait time.Duration) {
	h.logger.Debug("render job started", "path", path, "wait", wait.Round(time.Millisecond))
}

func (h debugHooks) OnJobAbandoned(_ context.Context, path string, removed bool) {
	h.logger.Debug("render job abandoned", "path", path, "removed", removed)
}

func (h debugHooks) OnResponse(_ context.Context, method, host, path string, status int, d time.Duration) {
	h.logger.Debug("http response", "method", method, "host", host, "path", path, "status", status, "duration", d.Round(time.Millisecond))
}

func (h debugHooks) OnError(_ context.Context, method, host, path string, err error) {
	h.logger.Debug("http error", "method", method, "host", host, "path", path, "error", err)
}

// registerDebugHooks installs debugHooks process-wide.
func registerDebugHooks(logger *log.Logger) {
	h := debugHooks{logger: logger}
	observability.SetPipelineHooks(h)
	observability.SetRenderHooks(h)
	observability.SetHTTPHooks(h)
}
