package book

import (
	"fmt"
	"io"
	"strings"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/encoding"
	"gonum.org/v1/gonum/graph/encoding/dot"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/yourusername/quantikbook/internal/quantik"
)

// dotNode adapts a tree node to gonum's graph.Node.
type dotNode struct {
	n *Node
}

func (d dotNode) ID() int64 { return int64(d.n.ID) }

func (d dotNode) Attributes() []encoding.Attribute {
	label := quantik.FormatMoves(d.n.History)
	if label == "" {
		label = "root"
	}
	attrs := []encoding.Attribute{
		{Key: "label", Value: fmt.Sprintf("%s\nto move %d", label, d.n.Player)},
	}
	if d.n.Resolved {
		color := "lightblue"
		if d.n.Winner == 1 {
			color = "salmon"
		}
		attrs = append(attrs,
			encoding.Attribute{Key: "style", Value: "filled"},
			encoding.Attribute{Key: "fillcolor", Value: color},
		)
	}
	return attrs
}

// dotEdge carries the action and orbit of a tree edge.
type dotEdge struct {
	from, to dotNode
	e        Edge
}

func (d dotEdge) From() graph.Node         { return d.from }
func (d dotEdge) To() graph.Node           { return d.to }
func (d dotEdge) ReversedEdge() graph.Edge { return dotEdge{from: d.to, to: d.from, e: d.e} }

func (d dotEdge) Attributes() []encoding.Attribute {
	cells := make([]string, len(d.e.Orbit))
	for i, c := range d.e.Orbit {
		cells[i] = fmt.Sprint(c)
	}
	return []encoding.Attribute{
		{Key: "label", Value: fmt.Sprintf("%s {%s}", d.e.Action, strings.Join(cells, ","))},
	}
}

// WriteDOT renders the tree in Graphviz DOT format. Resolved nodes are
// colored by winner.
func WriteDOT(w io.Writer, tree *Tree) error {
	g := simple.NewDirectedGraph()
	for _, n := range tree.Nodes {
		g.AddNode(dotNode{n: n})
	}
	for _, n := range tree.Nodes {
		for _, e := range n.Children {
			g.SetEdge(dotEdge{
				from: dotNode{n: n},
				to:   dotNode{n: tree.Nodes[e.Child]},
				e:    e,
			})
		}
	}

	b, err := dot.Marshal(g, "opening_book", "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal DOT: %w", err)
	}
	if _, err := w.Write(b); err != nil {
		return fmt.Errorf("failed to write DOT: %w", err)
	}
	return nil
}
