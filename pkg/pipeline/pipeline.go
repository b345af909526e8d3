// Package pipeline provides the core diagram pipeline for archdiagram.
//
// This package implements the complete generate → validate → build → render
// pipeline used by the CLI and the API server. Keeping the sequence in one
// place means every entry point applies the same checks in the same order.
//
// # Architecture
//
// The pipeline consists of four stages:
//
//  1. Generate: ask a [generate.Generator] for a raw schema object (optional)
//  2. Validate: check the raw object with [schema.Validate]
//  3. Build: turn the typed diagram into a [diagram.Graph]
//  4. Render: draw the graph to a PNG file with a [render.Renderer]
//
// A failure in any stage stops the pipeline before the next one starts, so
// an invalid schema never leaves a file behind.
//
// # Usage
//
//	runner := pipeline.NewRunner(gen, renderer, logger)
//	result, err := runner.Execute(ctx, "Web servers behind an ALB", pipeline.Options{
//	    OutputDir: dir,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Path)
//
// Schemas that already exist skip the generation stage:
//
//	result, err := runner.RenderSchema(ctx, raw, opts)
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	errs "github.com/matzehuels/archdiagram/pkg/errors"
	"github.com/matzehuels/archdiagram/pkg/schema"
)

// Options configures a single pipeline run.
type Options struct {
	// OutputDir receives the rendered PNG. It must already exist.
	OutputDir string `json:"output_dir"`

	// Name overrides the diagram name from the schema. It also determines
	// the output file name.
	Name string `json:"name,omitempty"`

	// Direction overrides the schema's rank direction.
	Direction schema.Direction `json:"direction,omitempty"`

	// LenientEdges skips edges with unknown endpoints instead of failing.
	// It only matters for diagrams that bypass validation.
	LenientEdges bool `json:"lenient_edges,omitempty"`

	// Logger overrides the runner's logger for this run.
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Path is the absolute path of the rendered PNG.
	Path string

	// Diagram is the validated schema the image was drawn from.
	Diagram *schema.Diagram

	// Stats contains timing and size information.
	Stats Stats
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount    int
	EdgeCount    int
	ClusterCount int
	GenerateTime time.Duration
	BuildTime    time.Duration
	RenderTime   time.Duration
}

// Total returns the summed duration of all stages.
func (s Stats) Total() time.Duration {
	return s.GenerateTime + s.BuildTime + s.RenderTime
}

// ValidateAndSetDefaults checks the options and applies defaults.
// This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := errs.ValidateOutputDir(o.OutputDir); err != nil {
		return err
	}
	if o.Name != "" {
		if err := errs.ValidateDiagramName(o.Name); err != nil {
			return err
		}
	}
	if o.Direction != "" {
		d, ok := schema.ParseDirection(string(o.Direction))
		if !ok {
			return errs.New(errs.ErrCodeInvalidInput, "invalid direction %q (must be one of: LR, TB, BT, RL)", o.Direction)
		}
		o.Direction = d
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// apply copies the overrides onto d.
func (o *Options) apply(d *schema.Diagram) {
	if o.Name != "" {
		d.Name = o.Name
	}
	if o.Direction != "" {
		d.Attributes.Direction = o.Direction
	}
}
