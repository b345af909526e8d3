// Package render draws diagram graphs as PNG files.
//
// # Overview
//
// Rendering has two steps. [ToDOT] converts a [diagram.Graph] to Graphviz DOT:
// the diagram name becomes the graph label, the direction becomes rankdir,
// each cluster becomes a "cluster_<id>" subgraph, and nodes are drawn with
// the shape and colours of their kind. A [Backend] then lays the DOT out and
// writes PNG bytes. The default backend, [Graphviz], uses the WebAssembly
// build of Graphviz bundled with go-graphviz, so no system binaries are needed.
//
//	r := render.NewRenderer(nil, render.NewPool(4), logger)
//	path, err := r.Render(ctx, g, outDir, g.Name)
//	// path == abs(outDir)/basic_web_app.png
//
// # Output Files
//
// A diagram named name always renders to abs(outDir)/Slug(name).png, so
// rendering the same name twice overwrites the earlier file. The caller owns
// outDir; the renderer only checks that it exists. A successful render leaves
// exactly one file behind and a failed render leaves none.
//
// # Concurrency
//
// Rendering is the only blocking step of the pipeline. Jobs run on a [Pool]
// whose size bounds concurrent Graphviz instances. [Renderer.RenderAsync]
// returns a [Future]; [Renderer.Render] waits on it. When the caller's context
// ends before the job has a slot the job never runs, and when it ends while
// the job is running the artifact is deleted as soon as the job completes.
package render
