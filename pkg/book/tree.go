// Package book builds, encodes and reads the Quantik opening book.
//
// The builder walks a GameEngine from the starting position, expanding one
// representative move per symmetry orbit and per newly introduced shape label,
// and annotates every node with a 64-entry outcome table by backward
// induction. The finished tree is written as a flat binary file: the symmetry
// table followed by one fixed-size record per node in breadth-first order.
package book

import (
	"github.com/yourusername/quantikbook/internal/quantik"
	"github.com/yourusername/quantikbook/internal/symmetry"
)

// GameEngine is the game state the builder drives. It holds exactly one live
// position; Forward and Backward must be called in strict stack order.
type GameEngine interface {
	Board() quantik.Board
	Player() quantik.Color
	ValidMove(a quantik.Action) bool
	Forward(a quantik.Action)
	Backward(a quantik.Action)
	// WinningMoves resolves the rest of the game for every action of the
	// current position. Only called at the search horizon.
	WinningMoves() quantik.Outcomes
}

// Edge links a parent to the child reached by Action. Orbit lists the cells
// the action stands for.
type Edge struct {
	Action quantik.Action
	Orbit  symmetry.Orbit
	Child  int
}

// Node is a position in the book tree, identified by its move history.
type Node struct {
	ID         int
	Parent     int // -1 for the root
	History    []quantik.Action
	Depth      int
	Player     quantik.Color
	Board      quantik.Board
	ShapeBound int // 0 until the node is first expanded
	Outcomes   quantik.Outcomes
	Winner     quantik.Color
	Resolved   bool
	Children   []Edge
}

// Tree is an arena of nodes; index 0 is the root.
type Tree struct {
	Nodes []*Node
}

// NewTree creates a tree holding only a root for the given position.
func NewTree(board quantik.Board, player quantik.Color) *Tree {
	return &Tree{Nodes: []*Node{{
		ID:       0,
		Parent:   -1,
		Player:   player,
		Board:    board,
		Outcomes: quantik.IllegalOutcomes(),
	}}}
}

// Root returns the root node.
func (t *Tree) Root() *Node {
	return t.Nodes[0]
}

// Len returns the number of nodes.
func (t *Tree) Len() int {
	return len(t.Nodes)
}

// Edge returns the edge from parent labelled with a.
func (t *Tree) Edge(parent int, a quantik.Action) (Edge, bool) {
	for _, e := range t.Nodes[parent].Children {
		if e.Action == a {
			return e, true
		}
	}
	return Edge{}, false
}

// attach returns the child of parent reached by a, creating it if needed.
// An existing edge must carry the same orbit.
func (t *Tree) attach(parent int, a quantik.Action, orbit symmetry.Orbit, board quantik.Board, player quantik.Color) (int, error) {
	p := t.Nodes[parent]
	if e, ok := t.Edge(parent, a); ok {
		if !sameOrbit(e.Orbit, orbit) {
			return 0, violation(p.History, "edge %s revisited with orbit %v, recorded %v", a, orbit, e.Orbit)
		}
		return e.Child, nil
	}

	history := make([]quantik.Action, len(p.History)+1)
	copy(history, p.History)
	history[len(p.History)] = a

	child := &Node{
		ID:       len(t.Nodes),
		Parent:   parent,
		History:  history,
		Depth:    p.Depth + 1,
		Player:   player,
		Board:    board,
		Outcomes: quantik.IllegalOutcomes(),
	}
	t.Nodes = append(t.Nodes, child)
	p.Children = append(p.Children, Edge{
		Action: a,
		Orbit:  append(symmetry.Orbit(nil), orbit...),
		Child:  child.ID,
	})
	return child.ID, nil
}

// BreadthFirst returns node IDs level by level, children in insertion order.
func (t *Tree) BreadthFirst() []int {
	order := make([]int, 0, len(t.Nodes))
	order = append(order, 0)
	for head := 0; head < len(order); head++ {
		for _, e := range t.Nodes[order[head]].Children {
			order = append(order, e.Child)
		}
	}
	return order
}

// LevelCounts returns the number of nodes at each depth.
func (t *Tree) LevelCounts() []int {
	var counts []int
	for _, n := range t.Nodes {
		for len(counts) <= n.Depth {
			counts = append(counts, 0)
		}
		counts[n.Depth]++
	}
	return counts
}

func sameOrbit(a, b symmetry.Orbit) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
