package pipeline

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/archdiagram/pkg/diagram"
	errs "github.com/matzehuels/archdiagram/pkg/errors"
	"github.com/matzehuels/archdiagram/pkg/generate"
	"github.com/matzehuels/archdiagram/pkg/observability"
	"github.com/matzehuels/archdiagram/pkg/render"
	"github.com/matzehuels/archdiagram/pkg/schema"
)

// Runner executes the pipeline. Both the CLI and the API server use it.
//
// The Runner holds no per-run state. Multiple goroutines can safely use the
// same Runner with different options.
type Runner struct {
	// Generator produces raw schemas from descriptions. It may be nil, in
	// which case only the schema entry points work.
	Generator generate.Generator
	Renderer  *render.Renderer
	Logger    *log.Logger
}

// NewRunner creates a runner. A nil renderer uses the Graphviz backend with
// NumCPU workers; a nil logger discards output.
func NewRunner(gen generate.Generator, renderer *render.Renderer, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if renderer == nil {
		renderer = render.NewRenderer(nil, nil, logger)
	}
	return &Runner{
		Generator: gen,
		Renderer:  renderer,
		Logger:    logger,
	}
}

// Execute runs the complete generate → validate → build → render pipeline.
func (r *Runner) Execute(ctx context.Context, description string, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	raw, elapsed, err := r.Generate(ctx, description)
	if err != nil {
		return nil, err
	}
	result, err := r.RenderSchema(ctx, raw, opts)
	if err != nil {
		return nil, err
	}
	result.Stats.GenerateTime = elapsed
	return result, nil
}

// Generate asks the runner's generator for a raw schema and reports how
// long the call took.
func (r *Runner) Generate(ctx context.Context, description string) (map[string]any, time.Duration, error) {
	if r.Generator == nil {
		return nil, 0, errs.New(errs.ErrCodeGeneration, "diagram generation is not configured")
	}
	if err := errs.ValidateDescription(description); err != nil {
		return nil, 0, err
	}

	hooks := observability.Pipeline()
	hooks.OnGenerateStart(ctx, len(description))
	start := time.Now()
	raw, err := r.Generator.Generate(ctx, description)
	elapsed := time.Since(start)
	hooks.OnGenerateComplete(ctx, elapsed, err)
	if err != nil {
		return nil, elapsed, err
	}

	r.Logger.Info("generated diagram schema", "duration", elapsed)
	return raw, elapsed, nil
}

// RenderSchema validates a raw schema object and renders it.
func (r *Runner) RenderSchema(ctx context.Context, raw map[string]any, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	d, err := schema.Validate(raw)
	if err != nil {
		return nil, err
	}
	return r.RenderDiagram(ctx, d, opts)
}

// RenderDiagram builds and renders a typed diagram. d is not modified;
// overrides from opts are applied to a copy.
func (r *Runner) RenderDiagram(ctx context.Context, d *schema.Diagram, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	dc := *d
	opts.apply(&dc)
	result := &Result{Diagram: &dc}

	// Stage 1: Build
	buildOpts := []diagram.Option{diagram.WithLogger(opts.Logger)}
	if opts.LenientEdges {
		buildOpts = append(buildOpts, diagram.WithLenientEdges())
	}
	buildStart := time.Now()
	g, err := diagram.Build(&dc, buildOpts...)
	result.Stats.BuildTime = time.Since(buildStart)
	if err != nil {
		observability.Pipeline().OnBuildComplete(ctx, dc.Name, 0, 0, result.Stats.BuildTime, err)
		return nil, err
	}
	result.Stats.NodeCount = g.NodeCount()
	result.Stats.EdgeCount = g.EdgeCount()
	result.Stats.ClusterCount = g.ClusterCount()
	observability.Pipeline().OnBuildComplete(ctx, g.Name, g.NodeCount(), g.EdgeCount(), result.Stats.BuildTime, nil)

	opts.Logger.Debug("built diagram graph",
		"name", g.Name,
		"nodes", result.Stats.NodeCount,
		"edges", result.Stats.EdgeCount,
		"clusters", result.Stats.ClusterCount)

	// Stage 2: Render
	observability.Pipeline().OnRenderStart(ctx, g.Name)
	renderStart := time.Now()
	path, err := r.Renderer.Render(ctx, g, opts.OutputDir, g.Name)
	result.Stats.RenderTime = time.Since(renderStart)
	observability.Pipeline().OnRenderComplete(ctx, g.Name, result.Stats.RenderTime, err)
	if err != nil {
		return nil, err
	}
	result.Path = path

	opts.Logger.Info("rendered diagram",
		"path", path,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
