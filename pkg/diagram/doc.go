// Package diagram converts a validated schema into an in-memory diagram graph.
//
// # Overview
//
// A [Graph] holds typed node primitives, directed edges, and flat clusters that
// group nodes visually. It is the input of the renderer and nothing else: a
// graph is built for one request, claimed once by the renderer with
// [Graph.Claim], and then dropped.
//
// # Building
//
// [Build] runs three fixed phases over a [schema.Diagram]:
//
//  1. Clusters: one cluster per declared cluster, recording its members
//  2. Nodes: every declared node is created exactly once, resolved through
//     the node type registry, and placed inside the cluster that claims it
//  3. Edges: one directed edge per declared edge
//
// The phases can also be driven incrementally with [NewBuilder] and
// [Builder.AddCluster], [Builder.AddNode], [Builder.AddEdge], finishing with
// [Builder.Graph]. Clusters must be added before the nodes they contain.
//
// # Errors
//
// An unknown node type fails with UNSUPPORTED_NODE_TYPE. An edge or cluster
// member that names an undeclared node fails with GRAPH_BUILD; the cause is
// [ErrUnknownNode] so callers can test for it with errors.Is. Validation
// normally catches these earlier, so a GRAPH_BUILD error means the schema
// reached the builder without going through [schema.Validate].
//
// [WithLenientEdges] turns dangling edges into a logged warning instead. It
// exists for callers that skip validation and is deprecated.
//
// # Cluster Membership
//
// Clusters do not nest. When a node is listed by more than one cluster the
// last cluster wins and the node appears only there.
//
// # Concurrency
//
// A Builder and the Graph it produces belong to a single goroutine. Only
// [Graph.Claim] is safe to call concurrently.
package diagram
