package render

import (
	"bytes"
	"fmt"
	"strings"
	"unicode"

	"github.com/matzehuels/archdiagram/pkg/diagram"
)

// Options configures DOT generation.
type Options struct {
	// Detailed appends the node kind below each label.
	Detailed bool

	// FontName sets the font for graph, cluster, node and edge labels.
	// Empty uses the Graphviz default.
	FontName string
}

// ToDOT converts a diagram graph to Graphviz DOT.
//
// The graph label is the diagram name and rankdir follows the diagram
// direction. Each cluster becomes a "cluster_<id>" subgraph holding its
// members; every other node is emitted at the top level. Nodes are drawn with
// the style of their kind.
func ToDOT(g *diagram.Graph, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	fmt.Fprintf(&buf, "  label=%s;\n", quote(g.Name))
	buf.WriteString("  labelloc=t;\n")
	fmt.Fprintf(&buf, "  rankdir=%s;\n", g.Direction)
	buf.WriteString("  bgcolor=white;\n")
	buf.WriteString("  compound=true;\n")
	buf.WriteString("  fontsize=20;\n")
	buf.WriteString("  ranksep=0.75;\n")
	buf.WriteString("  nodesep=0.5;\n")
	if opts.FontName != "" {
		fmt.Fprintf(&buf, "  fontname=%s;\n", quote(opts.FontName))
		fmt.Fprintf(&buf, "  edge [fontname=%s];\n", quote(opts.FontName))
	}
	buf.WriteString("  node [style=filled, fontsize=13, margin=\"0.25,0.12\"")
	if opts.FontName != "" {
		fmt.Fprintf(&buf, ", fontname=%s", quote(opts.FontName))
	}
	buf.WriteString("];\n")
	buf.WriteString("  edge [color=\"#545B64\", arrowsize=0.8];\n")

	for _, c := range g.Clusters() {
		buf.WriteString("\n")
		fmt.Fprintf(&buf, "  subgraph %s {\n", quote("cluster_"+c.ID))
		fmt.Fprintf(&buf, "    label=%s;\n", quote(c.Label))
		buf.WriteString("    style=\"rounded,dashed\";\n")
		buf.WriteString("    color=\"#879196\";\n")
		buf.WriteString("    bgcolor=\"#F7F9FA\";\n")
		for _, id := range c.Nodes {
			n, _ := g.Node(id)
			writeNode(&buf, "    ", n, opts)
		}
		buf.WriteString("  }\n")
	}

	if top := g.TopLevel(); len(top) > 0 {
		buf.WriteString("\n")
		for _, n := range top {
			writeNode(&buf, "  ", n, opts)
		}
	}

	if edges := g.Edges(); len(edges) > 0 {
		buf.WriteString("\n")
		for _, e := range edges {
			fmt.Fprintf(&buf, "  %s -> %s;\n", quote(e.From), quote(e.To))
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func writeNode(buf *bytes.Buffer, indent string, n *diagram.Node, opts Options) {
	fmt.Fprintf(buf, "%s%s [%s];\n", indent, quote(n.ID), strings.Join(nodeAttrs(n, opts), ", "))
}

func nodeAttrs(n *diagram.Node, opts Options) []string {
	label := n.Label
	if opts.Detailed {
		label += "\n" + n.Kind.String()
	}
	style := n.Kind.Style()
	attrs := []string{
		"label=" + quote(label),
		fmt.Sprintf("shape=%s", style.Shape),
		"fillcolor=" + quote(style.FillColor),
	}
	if style.FontColor != "" {
		attrs = append(attrs, "fontcolor=" + quote(style.FontColor))
	}
	return attrs
}

// quote returns s as a DOT double-quoted string. Newlines become the \n
// line break, tabs and carriage returns become spaces, and other control or
// format characters are dropped. Backslashes are escaped so Graphviz does not
// read them as its own escapes.
func quote(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for _, r := range s {
		switch {
		case r == '"' || r == '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\t' || r == '\r':
			b.WriteByte(' ')
		case unicode.IsControl(r) || unicode.Is(unicode.Cf, r):
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}
