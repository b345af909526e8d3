// Package schema defines the diagram schema and validates raw schema objects.
//
// A raw schema is the decoded JSON object produced by the structured-generation
// service (or read from a file). [Validate] is the gate between that untrusted
// object and the graph builder: it checks structure and references, and returns
// a typed [Diagram] only when every invariant holds. Validation is pure; it never
// touches the filesystem.
//
//	d, err := schema.Decode(data)
//	if errors.IsSchemaValidation(err) {
//	    // SCHEMA_MISSING_FIELD, SCHEMA_UNKNOWN_REFERENCE, ...
//	}
package schema

import (
	"strings"
)

// DefaultName is used when a schema has no name.
const DefaultName = "Architecture Diagram"

// Direction is the Graphviz rank direction of a diagram.
type Direction string

// Supported directions.
const (
	LeftToRight Direction = "LR"
	TopToBottom Direction = "TB"
	BottomToTop Direction = "BT"
	RightToLeft Direction = "RL"
)

// DefaultDirection matches the left-to-right layout of the original diagrams.
const DefaultDirection = LeftToRight

// ParseDirection parses a direction case-insensitively.
func ParseDirection(s string) (Direction, bool) {
	switch d := Direction(strings.ToUpper(strings.TrimSpace(s))); d {
	case LeftToRight, TopToBottom, BottomToTop, RightToLeft:
		return d, true
	}
	return "", false
}

// Node is a single architecture component.
type Node struct {
	ID    string `json:"id"`
	Type  string `json:"type"`
	Label string `json:"label,omitempty"`
}

// DisplayLabel returns the label, falling back to the id.
func (n Node) DisplayLabel() string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

// Edge is a directed connection between two nodes.
type Edge struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// Cluster groups nodes visually. Clusters are flat; they cannot nest.
type Cluster struct {
	ID    string   `json:"id"`
	Label string   `json:"label"`
	Nodes []string `json:"nodes"`
}

// Attributes holds optional rendering attributes.
type Attributes struct {
	Direction Direction `json:"direction,omitempty"`
}

// Diagram is the root of a schema. A Diagram is built fresh for each request,
// consumed once by the builder, and then discarded.
type Diagram struct {
	Name       string     `json:"name"`
	Nodes      []Node     `json:"nodes"`
	Edges      []Edge     `json:"edges"`
	Clusters   []Cluster  `json:"clusters"`
	Attributes Attributes `json:"attributes,omitzero"`
}

// Direction returns the diagram's rank direction, defaulting to [DefaultDirection].
func (d *Diagram) Direction() Direction {
	if d.Attributes.Direction == "" {
		return DefaultDirection
	}
	return d.Attributes.Direction
}

// NodeIDs returns the declared node ids in order.
func (d *Diagram) NodeIDs() []string {
	ids := make([]string, len(d.Nodes))
	for i, n := range d.Nodes {
		ids[i] = n.ID
	}
	return ids
}

// Raw converts d back to the raw object form accepted by [Validate].
func (d *Diagram) Raw() map[string]any {
	nodes := make([]any, len(d.Nodes))
	for i, n := range d.Nodes {
		m := map[string]any{"id": n.ID, "type": n.Type}
		if n.Label != "" {
			m["label"] = n.Label
		}
		nodes[i] = m
	}
	edges := make([]any, len(d.Edges))
	for i, e := range d.Edges {
		edges[i] = map[string]any{"source": e.Source, "target": e.Target}
	}
	clusters := make([]any, len(d.Clusters))
	for i, c := range d.Clusters {
		members := make([]any, len(c.Nodes))
		for j, id := range c.Nodes {
			members[j] = id
		}
		clusters[i] = map[string]any{"id": c.ID, "label": c.Label, "nodes": members}
	}

	raw := map[string]any{
		"name":     d.Name,
		"nodes":    nodes,
		"edges":    edges,
		"clusters": clusters,
	}
	if d.Attributes.Direction != "" {
		raw["attributes"] = map[string]any{"direction": string(d.Attributes.Direction)}
	}
	return raw
}
