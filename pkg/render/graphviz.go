package render

import (
	"context"
	"fmt"
	"io"

	"github.com/goccy/go-graphviz"
)

// Backend draws a DOT document as PNG into w.
type Backend interface {
	Render(ctx context.Context, dot string, w io.Writer) error
}

// BackendFunc adapts a plain function to [Backend].
type BackendFunc func(ctx context.Context, dot string, w io.Writer) error

// Render calls f.
func (f BackendFunc) Render(ctx context.Context, dot string, w io.Writer) error {
	return f(ctx, dot, w)
}

// Graphviz renders with the embedded Graphviz engine from go-graphviz using
// the dot layout. It needs no system binaries.
type Graphviz struct{}

// Render implements [Backend].
func (Graphviz) Render(ctx context.Context, dot string, w io.Writer) error {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	if err := gv.Render(ctx, g, graphviz.PNG, w); err != nil {
		return fmt.Errorf("render png: %w", err)
	}
	return nil
}
