// Package pkg provides the core libraries for archdiagram cloud architecture
// diagrams.
//
// # Overview
//
// Archdiagram turns a natural-language description of a system into a
// rendered PNG diagram. A language model proposes a JSON diagram schema,
// which is validated, built into a graph and drawn with Graphviz. The pkg
// directory is organized into three areas:
//
//  1. Domain logic ([schema], [nodetype], [diagram], [render])
//  2. Orchestration ([generate], [pipeline])
//  3. Surfaces ([api], [client])
//
// # Architecture
//
// The typical data flow through archdiagram:
//
//	Description
//	     ↓
//	[generate] (model proposes a raw schema)
//	     ↓
//	[schema] (validate structure and references)
//	     ↓
//	[diagram] (resolve node types, build the graph)
//	     ↓
//	[render] (DOT → Graphviz → PNG)
//
// # Quick Start
//
// Render an existing schema:
//
//	import (
//	    "context"
//	    "github.com/matzehuels/archdiagram/pkg/diagram"
//	    "github.com/matzehuels/archdiagram/pkg/render"
//	    "github.com/matzehuels/archdiagram/pkg/schema"
//	)
//
//	d, _ := schema.DecodeFile("web.json")
//	g, _ := diagram.Build(d)
//	path, _ := render.NewRenderer(nil, nil, nil).Render(ctx, g, "out", d.Name)
//
// # Main Packages
//
// ## Domain Logic
//
// [schema] - The diagram document: nodes, edges, clusters and layout
// attributes. [schema.Validate] checks a raw JSON object in a fixed order and
// reports the first failure with its field path.
//
// [nodetype] - The closed registry of supported component types. Names are
// matched case-insensitively; unknown names fail with the full list.
//
// [diagram] - Builds a [diagram.Graph] from a validated schema, placing each
// node in at most one cluster.
//
// [render] - DOT generation, the Graphviz backend and a bounded worker pool
// that writes PNG files into a caller-owned directory.
//
// ## Orchestration
//
// [generate] - Model-backed schema generation and the clarifying assistant,
// implemented on the OpenAI chat completions API.
//
// [pipeline] - The generate → validate → build → render sequence used by the
// CLI and the API server.
//
// [observability] - Hooks for pipeline, render and outbound HTTP events.
//
// ## Surfaces
//
// [api] - The HTTP API: node-types, generate-diagram, render-diagram and
// assistant routes.
//
// [client] - A retrying Go client for the HTTP API.
//
// ## Infrastructure
//
// [errors] - Structured errors with codes shared by every layer.
//
// [httputil] - Instrumented transports and retry helpers for outbound calls.
//
// [buildinfo] - Version information injected at build time.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...          # All tests
//	go test ./pkg/schema/...   # Specific package
//	go test -run Example       # Examples only
//
// Render tests use a stub backend; only the Graphviz tests need the WASM
// runtime.
//
// [schema]: https://pkg.go.dev/github.com/matzehuels/archdiagram/pkg/schema
// [nodetype]: https://pkg.go.dev/github.com/matzehuels/archdiagram/pkg/nodetype
// [diagram]: https://pkg.go.dev/github.com/matzehuels/archdiagram/pkg/diagram
// [render]: https://pkg.go.dev/github.com/matzehuels/archdiagram/pkg/render
// [generate]: https://pkg.go.dev/github.com/matzehuels/archdiagram/pkg/generate
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/archdiagram/pkg/pipeline
// [observability]: https://pkg.go.dev/github.com/matzehuels/archdiagram/pkg/observability
// [api]: https://pkg.go.dev/github.com/matzehuels/archdiagram/pkg/api
// [client]: https://pkg.go.dev/github.com/matzehuels/archdiagram/pkg/client
// [errors]: https://pkg.go.dev/github.com/matzehuels/archdiagram/pkg/errors
// [httputil]: https://pkg.go.dev/github.com/matzehuels/archdiagram/pkg/httputil
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/archdiagram/pkg/buildinfo
package pkg
