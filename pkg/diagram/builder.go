package diagram

import (
	"io"
	"slices"

	"github.com/charmbracelet/log"

	errs "github.com/matzehuels/archdiagram/pkg/errors"
	"github.com/matzehuels/archdiagram/pkg/nodetype"
	"github.com/matzehuels/archdiagram/pkg/schema"
)

// Option configures a [Builder].
type Option func(*Builder)

// WithLogger sets the logger used for membership and lenient-edge messages.
func WithLogger(l *log.Logger) Option {
	return func(b *Builder) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithLenientEdges makes [Builder.AddEdge] skip edges with a missing endpoint
// and log a warning instead of failing.
//
// Deprecated: validate the schema with [schema.Validate] instead. Lenient
// mode hides broken schemas and only exists for callers that bypass it.
func WithLenientEdges() Option {
	return func(b *Builder) { b.lenient = true }
}

// Builder assembles a [Graph] one element at a time. Its state belongs to a
// single build and is discarded with it.
type Builder struct {
	g        *Graph
	members  map[string]string   // node ID -> claiming cluster ID (last claim wins)
	claims   map[string][]string // cluster ID -> member IDs in declared order
	lenient  bool
	logger   *log.Logger
	finished bool
}

// NewBuilder returns a builder for a diagram with the given name and direction.
// Empty values fall back to [schema.DefaultName] and [schema.DefaultDirection].
func NewBuilder(name string, dir schema.Direction, opts ...Option) *Builder {
	b := &Builder{
		g:       newGraph(name, dir),
		members: make(map[string]string),
		claims:  make(map[string][]string),
		logger:  log.NewWithOptions(io.Discard, log.Options{}),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// AddCluster creates a cluster and records which nodes it claims. Nodes are
// placed in it when they are added. A node claimed by an earlier cluster is
// moved to this one.
func (b *Builder) AddCluster(c schema.Cluster) error {
	if b.finished {
		return errs.Wrap(errs.ErrCodeGraphBuild, ErrBuilderFinished, "add cluster %q", c.ID)
	}
	if c.ID == "" {
		return errs.Wrap(errs.ErrCodeGraphBuild, ErrInvalidNodeID, "add cluster")
	}
	if _, exists := b.g.clusters[c.ID]; exists {
		return errs.Wrap(errs.ErrCodeGraphBuild, ErrDuplicateClusterID, "add cluster %q", c.ID)
	}

	label := c.Label
	if label == "" {
		label = c.ID
	}
	b.g.clusters[c.ID] = &Cluster{ID: c.ID, Label: label}
	b.g.corder = append(b.g.corder, c.ID)

	for _, id := range c.Nodes {
		if prev, ok := b.members[id]; ok && prev != c.ID {
			b.logger.Debug("node claimed by several clusters, keeping the last",
				"node", id, "previous", prev, "cluster", c.ID)
		}
		b.members[id] = c.ID
	}
	b.claims[c.ID] = slices.Clone(c.Nodes)
	return nil
}

// AddNode resolves the node's type and creates it, inside its claiming
// cluster if one exists. Each ID may be added once.
func (b *Builder) AddNode(n schema.Node) error {
	if b.finished {
		return errs.Wrap(errs.ErrCodeGraphBuild, ErrBuilderFinished, "add node %q", n.ID)
	}
	if n.ID == "" {
		return errs.Wrap(errs.ErrCodeGraphBuild, ErrInvalidNodeID, "add node")
	}
	if _, exists := b.g.nodes[n.ID]; exists {
		return errs.Wrap(errs.ErrCodeGraphBuild, ErrDuplicateNodeID, "add node %q", n.ID)
	}

	kind, err := nodetype.Resolve(n.Type)
	if err != nil {
		return err
	}

	node := &Node{ID: n.ID, Kind: kind, Label: n.DisplayLabel()}
	if cid, ok := b.members[n.ID]; ok {
		c := b.g.clusters[cid]
		c.Nodes = append(c.Nodes, n.ID)
		node.Cluster = cid
	}
	b.g.nodes[n.ID] = node
	b.g.order = append(b.g.order, n.ID)
	return nil
}

// AddEdge connects two existing nodes. A missing endpoint fails with
// GRAPH_BUILD wrapping [ErrUnknownNode], unless lenient edges are enabled.
func (b *Builder) AddEdge(e schema.Edge) error {
	if b.finished {
		return errs.Wrap(errs.ErrCodeGraphBuild, ErrBuilderFinished, "add edge %s -> %s", e.Source, e.Target)
	}
	for _, id := range []string{e.Source, e.Target} {
		if _, ok := b.g.nodes[id]; ok {
			continue
		}
		if b.lenient {
			b.logger.Warn("skipping edge with unknown endpoint",
				"source", e.Source, "target", e.Target, "missing", id)
			return nil
		}
		return errs.Wrap(errs.ErrCodeGraphBuild, ErrUnknownNode,
			"edge %s -> %s references node %q", e.Source, e.Target, id)
	}

	b.g.edges = append(b.g.edges, Edge{From: e.Source, To: e.Target})
	b.g.outgoing[e.Source] = append(b.g.outgoing[e.Source], e.Target)
	b.g.incoming[e.Target] = append(b.g.incoming[e.Target], e.Source)
	return nil
}

// Graph finishes the build and returns the graph. It fails with GRAPH_BUILD
// if a cluster claimed a node that was never added.
func (b *Builder) Graph() (*Graph, error) {
	if b.finished {
		return nil, errs.Wrap(errs.ErrCodeGraphBuild, ErrBuilderFinished, "finish diagram %q", b.g.Name)
	}
	b.finished = true

	// Clusters in creation order, members in declared order.
	for _, cid := range b.g.corder {
		for _, id := range b.claims[cid] {
			if b.members[id] != cid {
				continue
			}
			if _, ok := b.g.nodes[id]; !ok {
				return nil, errs.Wrap(errs.ErrCodeGraphBuild, ErrUnknownNode,
					"cluster %q references node %q", cid, id)
			}
		}
	}
	return b.g, nil
}

// Build converts a validated diagram into a graph: clusters first, then
// nodes, then edges.
func Build(d *schema.Diagram, opts ...Option) (*Graph, error) {
	if d == nil {
		return nil, errs.New(errs.ErrCodeGraphBuild, "diagram is nil")
	}
	b := NewBuilder(d.Name, d.Direction(), opts...)

	for _, c := range d.Clusters {
		if err := b.AddCluster(c); err != nil {
			return nil, err
		}
	}
	for _, n := range d.Nodes {
		if err := b.AddNode(n); err != nil {
			return nil, err
		}
	}
	for _, e := range d.Edges {
		if err := b.AddEdge(e); err != nil {
			return nil, err
		}
	}

	g, err := b.Graph()
	if err != nil {
		return nil, err
	}
	b.logger.Debug("built diagram graph",
		"name", g.Name,
		"nodes", g.NodeCount(),
		"edges", g.EdgeCount(),
		"clusters", g.ClusterCount())
	return g, nil
}
