package diagram

import (
	"errors"
	"slices"
	"sync/atomic"

	errs "github.com/matzehuels/archdiagram/pkg/errors"
	"github.com/matzehuels/archdiagram/pkg/nodetype"
	"github.com/matzehuels/archdiagram/pkg/schema"
)

var (
	// ErrInvalidNodeID is returned when a node or cluster has an empty ID.
	ErrInvalidNodeID = errors.New("id must not be empty")

	// ErrDuplicateNodeID is returned when a node with the same ID already
	// exists in the graph.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrDuplicateClusterID is returned when a cluster with the same ID
	// already exists in the graph.
	ErrDuplicateClusterID = errors.New("duplicate cluster ID")

	// ErrUnknownNode is the cause of a GRAPH_BUILD error raised for an edge
	// endpoint or cluster member that names no declared node.
	ErrUnknownNode = errors.New("unknown node")

	// ErrGraphConsumed is returned by [Graph.Claim] when the graph has
	// already been handed to a renderer.
	ErrGraphConsumed = errors.New("graph already consumed")

	// ErrBuilderFinished is returned when a builder is used after
	// [Builder.Graph] has been called.
	ErrBuilderFinished = errors.New("builder already finished")
)

// Node is a typed diagram primitive.
type Node struct {
	ID      string        // Unique identifier from the schema
	Kind    nodetype.Kind // Resolved registry entry
	Label   string        // Display label (never empty)
	Cluster string        // Owning cluster ID, or "" for top-level nodes
}

// Edge is a directed connection between two nodes.
type Edge struct {
	From string
	To   string
}

// Cluster is a visual grouping of nodes.
type Cluster struct {
	ID    string
	Label string
	Nodes []string // member node IDs in creation order
}

// Graph is the in-memory diagram produced by a [Builder].
//
// The zero value is not usable; graphs come from [Build] or [Builder.Graph].
type Graph struct {
	Name      string
	Direction schema.Direction

	nodes    map[string]*Node
	order    []string // node IDs in creation order
	edges    []Edge
	clusters map[string]*Cluster
	corder   []string            // cluster IDs in creation order
	outgoing map[string][]string // nodeID -> target IDs
	incoming map[string][]string // nodeID -> source IDs

	claimed atomic.Bool
}

func newGraph(name string, dir schema.Direction) *Graph {
	if name == "" {
		name = schema.DefaultName
	}
	if dir == "" {
		dir = schema.DefaultDirection
	}
	return &Graph{
		Name:      name,
		Direction: dir,
		nodes:     make(map[string]*Node),
		clusters:  make(map[string]*Cluster),
		outgoing:  make(map[string][]string),
		incoming:  make(map[string][]string),
	}
}

// Nodes returns all nodes in creation order.
// The returned pointers refer to the graph's own nodes.
func (g *Graph) Nodes() []*Node {
	nodes := make([]*Node, len(g.order))
	for i, id := range g.order {
		nodes[i] = g.nodes[id]
	}
	return nodes
}

// Edges returns a copy of all edges in insertion order.
func (g *Graph) Edges() []Edge { return slices.Clone(g.edges) }

// Clusters returns all clusters in creation order.
func (g *Graph) Clusters() []*Cluster {
	clusters := make([]*Cluster, len(g.corder))
	for i, id := range g.corder {
		clusters[i] = g.clusters[id]
	}
	return clusters
}

// Node returns the node with the given ID and true, or nil and false if not found.
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Cluster returns the cluster with the given ID and true, or nil and false if not found.
func (g *Graph) Cluster(id string) (*Cluster, bool) {
	c, ok := g.clusters[id]
	return c, ok
}

// TopLevel returns the nodes that belong to no cluster, in creation order.
func (g *Graph) TopLevel() []*Node {
	var nodes []*Node
	for _, id := range g.order {
		if n := g.nodes[id]; n.Cluster == "" {
			nodes = append(nodes, n)
		}
	}
	return nodes
}

// Children returns the IDs of nodes this node has edges to.
// The returned slice should not be modified.
func (g *Graph) Children(id string) []string { return g.outgoing[id] }

// Parents returns the IDs of nodes that have edges to this node.
// The returned slice should not be modified.
func (g *Graph) Parents(id string) []string { return g.incoming[id] }

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges in the graph.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// ClusterCount returns the number of clusters in the graph.
func (g *Graph) ClusterCount() int { return len(g.clusters) }

// Claim marks the graph as consumed. The first call succeeds; every later
// call fails with a GRAPH_BUILD error wrapping [ErrGraphConsumed].
func (g *Graph) Claim() error {
	if !g.claimed.CompareAndSwap(false, true) {
		return errs.Wrap(errs.ErrCodeGraphBuild, ErrGraphConsumed, "diagram %q cannot be rendered twice", g.Name)
	}
	return nil
}
