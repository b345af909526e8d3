package render

import (
	"context"
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/archdiagram/pkg/diagram"
	errs "github.com/matzehuels/archdiagram/pkg/errors"
	"github.com/matzehuels/archdiagram/pkg/observability"
)

// Renderer writes diagram graphs to PNG files through a [Backend] on a
// bounded [Pool]. A Renderer is safe for concurrent use.
type Renderer struct {
	backend Backend
	pool    *Pool
	opts    Options
	logger  *log.Logger
}

// NewRenderer creates a renderer. A nil backend uses [Graphviz], a nil pool
// gets NumCPU slots, and a nil logger discards output.
func NewRenderer(backend Backend, pool *Pool, logger *log.Logger) *Renderer {
	if backend == nil {
		backend = Graphviz{}
	}
	if pool == nil {
		pool = NewPool(0)
	}
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Renderer{backend: backend, pool: pool, logger: logger}
}

// WithOptions returns a copy of r that generates DOT with opts.
func (r *Renderer) WithOptions(opts Options) *Renderer {
	c := *r
	c.opts = opts
	return &c
}

// Pool returns the renderer's worker pool.
func (r *Renderer) Pool() *Pool { return r.pool }

// Render draws g into outDir and returns the absolute path of the PNG,
// abs(outDir)/Slug(name).png. An existing file at that path is overwritten.
//
// If the backend fails, the partial file is removed and a RENDER error
// wrapping the backend error is returned. If ctx ends first, Render returns
// ctx.Err() and the job's artifact is removed once it completes.
func (r *Renderer) Render(ctx context.Context, g *diagram.Graph, outDir, name string) (string, error) {
	return r.RenderAsync(ctx, g, outDir, name).Wait(ctx)
}

// RenderAsync queues g for rendering and returns immediately. The returned
// future resolves with the artifact path or an error. outDir is checked
// before the graph is claimed, so a bad directory leaves g renderable. Any
// precondition failure resolves the future at once.
func (r *Renderer) RenderAsync(ctx context.Context, g *diagram.Graph, outDir, name string) *Future {
	if err := errs.ValidateOutputDir(outDir); err != nil {
		return resolved(err)
	}
	path, err := OutputPath(outDir, name)
	if err != nil {
		return resolved(errs.Wrap(errs.ErrCodeInvalidPath, err, "resolve output directory %s", outDir))
	}
	if err := g.Claim(); err != nil {
		return resolved(err)
	}

	dot := ToDOT(g, r.opts)
	f := newFuture(path, r.logger)
	queued := time.Now()
	observability.Render().OnJobQueued(ctx, path)

	r.pool.Submit(ctx, func() {
		if f.isAbandoned() {
			f.complete(context.Canceled)
			return
		}
		observability.Render().OnJobStarted(ctx, path, time.Since(queued))
		f.complete(r.write(ctx, dot, path))
	}, func(err error) {
		r.logger.Debug("render cancelled before start", "path", path, "error", err)
		f.complete(err)
	})
	return f
}

// write renders dot into path, removing the file on any failure.
func (r *Renderer) write(ctx context.Context, dot, path string) error {
	start := time.Now()
	file, err := os.Create(path)
	if err != nil {
		return errs.Wrap(errs.ErrCodeRender, err, "create %s", path)
	}

	if err := r.backend.Render(ctx, dot, file); err != nil {
		_ = file.Close()
		r.remove(path)
		return errs.Wrap(errs.ErrCodeRender, err, "render %s", path)
	}
	if err := file.Close(); err != nil {
		r.remove(path)
		return errs.Wrap(errs.ErrCodeRender, err, "write %s", path)
	}

	r.logger.Debug("rendered diagram", "path", path, "duration", time.Since(start))
	return nil
}

func (r *Renderer) remove(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		r.logger.Warn("failed to remove artifact", "path", path, "error", err)
	}
}

// =============================================================================
// Future
// =============================================================================

// Future is the pending result of [Renderer.RenderAsync].
type Future struct {
	path   string
	logger *log.Logger
	done   chan struct{}

	mu        sync.Mutex
	err       error
	finished  bool
	abandoned bool
}

func newFuture(path string, logger *log.Logger) *Future {
	return &Future{path: path, logger: logger, done: make(chan struct{})}
}

func resolved(err error) *Future {
	f := &Future{done: make(chan struct{}), err: err, finished: true}
	close(f.done)
	return f
}

// Done is closed when the job has finished, failed, or been cancelled.
func (f *Future) Done() <-chan struct{} { return f.done }

// Wait blocks until the job resolves or ctx ends. On success it returns the
// artifact path. When ctx ends first the future is abandoned: Wait returns
// ctx.Err() and the artifact is removed as soon as the job completes.
func (f *Future) Wait(ctx context.Context) (string, error) {
	select {
	case <-f.done:
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.err != nil {
			return "", f.err
		}
		if f.abandoned {
			return "", context.Canceled
		}
		return f.path, nil
	case <-ctx.Done():
		f.abandon(ctx)
		return "", ctx.Err()
	}
}

// abandon marks the future as no longer awaited. If the artifact already
// exists it is removed here, otherwise complete removes it.
func (f *Future) abandon(ctx context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.abandoned {
		return
	}
	f.abandoned = true
	removed := false
	if f.finished && f.err == nil {
		removed = f.removeLocked()
	}
	observability.Render().OnJobAbandoned(ctx, f.path, removed)
}

func (f *Future) isAbandoned() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.abandoned
}

func (f *Future) complete(err error) {
	f.mu.Lock()
	f.err = err
	f.finished = true
	if f.abandoned && err == nil {
		f.removeLocked()
	}
	f.mu.Unlock()
	close(f.done)
}

func (f *Future) removeLocked() bool {
	if err := os.Remove(f.path); err != nil {
		if !os.IsNotExist(err) {
			f.logger.Warn("failed to remove abandoned artifact", "path", f.path, "error", err)
		}
		return false
	}
	f.logger.Debug("removed abandoned artifact", "path", f.path)
	return true
}
