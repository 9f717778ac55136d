package book

import (
	"github.com/yourusername/quantikbook/internal/quantik"
	"github.com/yourusername/quantikbook/internal/symmetry"
)

// ShapeBound returns the highest shape a move from board may use: one past
// the highest shape already placed. Unused labels are interchangeable, so
// only the first of them needs exploring.
func ShapeBound(board quantik.Board) int {
	bound := board.MaxShape() + 1
	if bound > quantik.NumShapes {
		bound = quantik.NumShapes
	}
	return bound
}

// DecideWinner returns the player to move if any action wins for them, and
// the opponent otherwise. The game has no draws.
func DecideWinner(table quantik.Outcomes, player quantik.Color) quantik.Color {
	if table.Contains(player) {
		return player
	}
	return player.Opponent()
}

// induce fills the outcome table of an interior node from its children.
// Rows above the shape bound repeat the bound row and every cell of an orbit
// shares its representative's outcome.
func (b *Builder) induce(id int, orbits []symmetry.Orbit) error {
	n := b.tree.Nodes[id]
	table := quantik.IllegalOutcomes()
	bound := n.ShapeBound

	for shape := 1; shape <= quantik.NumShapes; shape++ {
		row := (shape - 1) * quantik.BoardSize
		if shape > bound {
			src := (bound - 1) * quantik.BoardSize
			copy(table[row:row+quantik.BoardSize], table[src:src+quantik.BoardSize])
			continue
		}

		for _, o := range orbits {
			a := quantik.NewAction(o[0], shape)
			v := quantik.Illegal
			if b.engine.ValidMove(a) {
				e, ok := b.tree.Edge(id, a)
				if !ok {
					return violation(n.History, "missing child edge for %s", a)
				}
				if !sameOrbit(e.Orbit, o) {
					return violation(n.History, "edge %s has orbit %v, want %v", a, e.Orbit, o)
				}
				child := b.tree.Nodes[e.Child]
				if !child.Resolved {
					return violation(child.History, "child not resolved")
				}
				v = uint8(child.Winner)
			}
			for _, c := range o {
				table[row+c] = v
			}
		}
	}

	n.Outcomes = table
	n.Winner = DecideWinner(table, n.Player)
	n.Resolved = true
	return nil
}
