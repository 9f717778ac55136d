package book

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/yourusername/quantikbook/internal/quantik"
	"github.com/yourusername/quantikbook/internal/symmetry"
)

// nodeJSON is the nested checkpoint form of a node. ID is the flattened
// move history (row, col, shape per ply).
type nodeJSON struct {
	ID       []int      `json:"id"`
	Player   int        `json:"player"`
	Board    []int      `json:"board"`
	Depth    int        `json:"depth"`
	Moves    []int      `json:"moves,omitempty"`
	Winner   *int       `json:"winner,omitempty"`
	Edge     *edgeJSON  `json:"edge,omitempty"`
	Children []nodeJSON `json:"children,omitempty"`
}

// edgeJSON describes the edge from a node's parent.
type edgeJSON struct {
	Orbit []int `json:"orbit"`
	X     int   `json:"x"`
	Y     int   `json:"y"`
	Shape int   `json:"shape"`
}

// WriteTreeJSON writes the tree as nested JSON for inspection and as a
// checkpoint between the build and binarize steps.
func WriteTreeJSON(w io.Writer, tree *Tree) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(toJSON(tree, 0, nil)); err != nil {
		return fmt.Errorf("failed to encode tree: %w", err)
	}
	return nil
}

func toJSON(tree *Tree, id int, edge *Edge) nodeJSON {
	n := tree.Nodes[id]
	nj := nodeJSON{
		ID:     make([]int, 0, 3*len(n.History)),
		Player: int(n.Player),
		Board:  make([]int, quantik.BoardSize),
		Depth:  n.Depth,
	}
	for _, a := range n.History {
		nj.ID = append(nj.ID, a.Row, a.Col, a.Shape)
	}
	for i, t := range n.Board {
		nj.Board[i] = int(t)
	}
	if n.Resolved {
		nj.Moves = make([]int, quantik.NumActions)
		for i, v := range n.Outcomes {
			nj.Moves[i] = int(v)
		}
		w := int(n.Winner)
		nj.Winner = &w
	}
	if edge != nil {
		nj.Edge = &edgeJSON{
			Orbit: append([]int(nil), edge.Orbit...),
			X:     edge.Action.Row,
			Y:     edge.Action.Col,
			Shape: edge.Action.Shape,
		}
	}
	for i := range n.Children {
		e := n.Children[i]
		nj.Children = append(nj.Children, toJSON(tree, e.Child, &e))
	}
	return nj
}

// ReadTreeJSON rebuilds a tree written by WriteTreeJSON. Node IDs are
// assigned in depth-first order.
func ReadTreeJSON(r io.Reader) (*Tree, error) {
	var root nodeJSON
	if err := json.NewDecoder(r).Decode(&root); err != nil {
		return nil, fmt.Errorf("failed to decode tree: %w", err)
	}
	if len(root.ID) != 0 {
		return nil, fmt.Errorf("root has a move history")
	}

	tree := &Tree{}
	if _, err := fromJSON(tree, &root, -1, nil); err != nil {
		return nil, err
	}
	return tree, nil
}

func fromJSON(tree *Tree, nj *nodeJSON, parent int, history []quantik.Action) (int, error) {
	if len(nj.Board) != quantik.BoardSize {
		return 0, fmt.Errorf("node %v: board has %d cells", nj.ID, len(nj.Board))
	}
	if nj.Depth != len(history) {
		return 0, fmt.Errorf("node %v: depth %d does not match history", nj.ID, nj.Depth)
	}

	n := &Node{
		ID:       len(tree.Nodes),
		Parent:   parent,
		History:  history,
		Depth:    nj.Depth,
		Player:   quantik.Color(nj.Player),
		Outcomes: quantik.IllegalOutcomes(),
	}
	for i, t := range nj.Board {
		n.Board[i] = uint8(t)
	}
	n.ShapeBound = ShapeBound(n.Board)
	if nj.Winner != nil {
		if len(nj.Moves) != quantik.NumActions {
			return 0, fmt.Errorf("node %v: table has %d entries", nj.ID, len(nj.Moves))
		}
		for i, v := range nj.Moves {
			n.Outcomes[i] = uint8(v)
		}
		n.Winner = quantik.Color(*nj.Winner)
		n.Resolved = true
	}
	tree.Nodes = append(tree.Nodes, n)

	for i := range nj.Children {
		cj := &nj.Children[i]
		if cj.Edge == nil {
			return 0, fmt.Errorf("node %v: child %d has no edge", nj.ID, i)
		}
		a := quantik.Action{Row: cj.Edge.X, Col: cj.Edge.Y, Shape: cj.Edge.Shape}
		if !a.InRange() {
			return 0, fmt.Errorf("node %v: child %d has invalid action %+v", nj.ID, i, a)
		}
		h := make([]quantik.Action, len(history)+1)
		copy(h, history)
		h[len(history)] = a

		child, err := fromJSON(tree, cj, n.ID, h)
		if err != nil {
			return 0, err
		}
		n.Children = append(n.Children, Edge{
			Action: a,
			Orbit:  append(symmetry.Orbit(nil), cj.Edge.Orbit...),
			Child:  child,
		})
	}
	return n.ID, nil
}

// WriteSymmetriesJSON writes the group elements in generation order.
func WriteSymmetriesJSON(w io.Writer, group *symmetry.Group) error {
	perms := make([][]int, group.Order())
	for i, p := range group.Elements() {
		perms[i] = make([]int, symmetry.NumCells)
		for j, v := range p {
			perms[i][j] = int(v)
		}
	}
	if err := json.NewEncoder(w).Encode(perms); err != nil {
		return fmt.Errorf("failed to encode symmetries: %w", err)
	}
	return nil
}

// ReadSymmetriesJSON reads a group written by WriteSymmetriesJSON, keeping
// its element order.
func ReadSymmetriesJSON(r io.Reader) (*symmetry.Group, error) {
	var perms [][]int
	if err := json.NewDecoder(r).Decode(&perms); err != nil {
		return nil, fmt.Errorf("failed to decode symmetries: %w", err)
	}
	elems := make([]symmetry.Perm, len(perms))
	for i, p := range perms {
		if len(p) != symmetry.NumCells {
			return nil, fmt.Errorf("symmetry %d has %d entries", i, len(p))
		}
		for j, v := range p {
			if v < 0 || v >= symmetry.NumCells {
				return nil, fmt.Errorf("symmetry %d maps cell %d to %d", i, j, v)
			}
			elems[i][j] = uint8(v)
		}
	}
	return symmetry.FromElements(elems)
}
