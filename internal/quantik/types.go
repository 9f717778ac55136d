// Package quantik implements the Quantik board game: a 4x4 board, four
// interchangeable shapes in two colors, and the row/column/quadrant placement
// rule. It provides move legality, apply/undo, region completion and an
// exhaustive solver used to resolve positions past the opening book horizon.
package quantik

import (
	"fmt"
)

const (
	NumRows    = 4  // board rows
	NumCols    = 4  // board columns
	BoardSize  = 16 // board cells
	NumShapes  = 4  // distinct shapes
	NumColors  = 2  // players
	NumActions = 64 // shapes x cells
	ShapeStock = 2  // pieces of each shape per color

	// Illegal marks an action that cannot be played in an outcome table.
	Illegal uint8 = 255
)

// Color identifies a player. The first player is 0.
type Color uint8

// Opponent returns the other color.
func (c Color) Opponent() Color {
	return c ^ 1
}

// Board holds one tile per cell in row-major order.
// 0 is empty, 1..4 are shapes of color 0, 17..20 are shapes of color 1.
type Board [BoardSize]uint8

// EncodeTile packs a color and shape into a board tile.
func EncodeTile(c Color, shape int) uint8 {
	return uint8(c)<<4 | uint8(shape)
}

// TileColor returns the owner of a non-empty tile.
func TileColor(tile uint8) Color {
	return Color(tile >> 4)
}

// TileShape returns the shape of a tile, 0 for an empty cell.
func TileShape(tile uint8) int {
	return int(tile & 15)
}

// MaxShape returns the highest shape label on the board, or 0 if empty.
func (b Board) MaxShape() int {
	m := 0
	for _, t := range b {
		if s := TileShape(t); s > m {
			m = s
		}
	}
	return m
}

// Occupied returns the indices of non-empty cells in ascending order.
func (b Board) Occupied() []int {
	cells := make([]int, 0, BoardSize)
	for i, t := range b {
		if t != 0 {
			cells = append(cells, i)
		}
	}
	return cells
}

// Pieces returns the number of placed pieces.
func (b Board) Pieces() int {
	n := 0
	for _, t := range b {
		if t != 0 {
			n++
		}
	}
	return n
}

// Action places a shape of the current player's color on a cell.
type Action struct {
	Row   int `json:"x"`
	Col   int `json:"y"`
	Shape int `json:"shape"` // 1..4
}

// NewAction builds an action from a cell index and shape.
func NewAction(cell, shape int) Action {
	return Action{Row: cell / NumCols, Col: cell % NumCols, Shape: shape}
}

// ActionFromIndex decodes an action index in [0, NumActions).
func ActionFromIndex(e int) Action {
	return Action{Row: (e & 12) >> 2, Col: e & 3, Shape: ((e & 48) >> 4) + 1}
}

// Cell returns the row-major cell index.
func (a Action) Cell() int {
	return a.Row*NumCols + a.Col
}

// Index returns the outcome table index, (shape-1)*16 + cell.
func (a Action) Index() int {
	return a.Col | a.Row<<2 | (a.Shape-1)<<4
}

// InRange reports whether all coordinates are on the board and the shape exists.
func (a Action) InRange() bool {
	return a.Row >= 0 && a.Row < NumRows &&
		a.Col >= 0 && a.Col < NumCols &&
		a.Shape >= 1 && a.Shape <= NumShapes
}

// String formats the action as "xys" with a zero-based shape digit.
func (a Action) String() string {
	return fmt.Sprintf("%d%d%d", a.Row, a.Col, a.Shape-1)
}

// Outcomes maps every action index to the winning color, or Illegal.
type Outcomes [NumActions]uint8

// IllegalOutcomes returns a table with every entry set to Illegal.
func IllegalOutcomes() Outcomes {
	var o Outcomes
	for i := range o {
		o[i] = Illegal
	}
	return o
}

// Contains reports whether any action leads to a win for c.
func (o Outcomes) Contains(c Color) bool {
	for _, v := range o {
		if v == uint8(c) {
			return true
		}
	}
	return false
}

// Legal returns the number of legal entries.
func (o Outcomes) Legal() int {
	n := 0
	for _, v := range o {
		if v != Illegal {
			n++
		}
	}
	return n
}
