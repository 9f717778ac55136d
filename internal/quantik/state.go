package quantik

import (
	"fmt"
	"strings"
)

// State is a mutable Quantik position. Moves are applied with Forward and
// undone with Backward in strict reverse order.
type State struct {
	player Color
	board  Board
	stock  [NumColors * NumShapes]uint8
}

// NewState returns the empty starting position with color 0 to move.
func NewState() *State {
	s := &State{}
	for i := range s.stock {
		s.stock[i] = ShapeStock
	}
	return s
}

// StateFromBoard reconstructs the state of a board reached by legal play.
// The player to move and the remaining stock follow from the piece counts.
func StateFromBoard(b Board) (*State, error) {
	s := NewState()
	var count [NumColors]int
	for i, t := range b {
		if t == 0 {
			continue
		}
		c, shape := TileColor(t), TileShape(t)
		if c >= NumColors || shape < 1 || shape > NumShapes {
			return nil, fmt.Errorf("cell %d holds invalid tile %#x", i, t)
		}
		k := int(c)*NumShapes + shape - 1
		if s.stock[k] == 0 {
			return nil, fmt.Errorf("color %d placed more than %d of shape %d", c, ShapeStock, shape)
		}
		s.stock[k]--
		count[c]++
	}
	if d := count[0] - count[1]; d != 0 && d != 1 {
		return nil, fmt.Errorf("piece counts %d and %d cannot occur", count[0], count[1])
	}
	s.board = b
	s.player = Color(count[0] - count[1])

	for cell := 0; cell < BoardSize; cell++ {
		if s.CompletionWin(Action{Row: cell / NumCols, Col: cell % NumCols}) {
			return nil, fmt.Errorf("game is already over")
		}
	}
	return s, nil
}

// Board returns a snapshot of the board.
func (s *State) Board() Board {
	return s.board
}

// Player returns the color to move.
func (s *State) Player() Color {
	return s.player
}

// Stock returns how many pieces of a shape a color has left.
func (s *State) Stock(c Color, shape int) int {
	return int(s.stock[int(c)*NumShapes+shape-1])
}

// Clone returns an independent copy of the state.
func (s *State) Clone() *State {
	c := *s
	return &c
}

// ValidMove reports whether the player to move may play a.
func (s *State) ValidMove(a Action) bool {
	if !a.InRange() {
		return false
	}
	if s.Stock(s.player, a.Shape) == 0 {
		return false
	}
	if s.board[a.Cell()] != 0 {
		return false
	}

	opp := EncodeTile(s.player.Opponent(), a.Shape)

	for k := 0; k < NumCols; k++ {
		if s.board[a.Row*NumCols+k] == opp {
			return false
		}
	}
	for k := 0; k < NumRows; k++ {
		if s.board[k*NumCols+a.Col] == opp {
			return false
		}
	}

	r0, c0 := (a.Row/2)*2, (a.Col/2)*2
	for r := r0; r < r0+2; r++ {
		for c := c0; c < c0+2; c++ {
			if s.board[r*NumCols+c] == opp {
				return false
			}
		}
	}
	return true
}

// Forward plays a. The result is undefined if a is not valid.
func (s *State) Forward(a Action) {
	s.board[a.Cell()] = EncodeTile(s.player, a.Shape)
	s.stock[int(s.player)*NumShapes+a.Shape-1]--
	s.player = s.player.Opponent()
}

// Backward undoes the most recent Forward(a).
func (s *State) Backward(a Action) {
	s.player = s.player.Opponent()
	s.stock[int(s.player)*NumShapes+a.Shape-1]++
	s.board[a.Cell()] = 0
}

// CompletionWin reports whether the last move a completed its row, column
// or quadrant with four distinct shapes. Call it right after Forward(a).
func (s *State) CompletionWin(a Action) bool {
	b := &s.board
	row := a.Row * NumCols
	if distinctShapes(b[row], b[row+1], b[row+2], b[row+3]) {
		return true
	}
	if distinctShapes(b[a.Col], b[NumCols+a.Col], b[2*NumCols+a.Col], b[3*NumCols+a.Col]) {
		return true
	}
	q := (a.Row/2)*2*NumCols + (a.Col/2)*2
	return distinctShapes(b[q], b[q+1], b[q+NumCols], b[q+NumCols+1])
}

// LegalActions lists legal actions in index order.
func (s *State) LegalActions() []Action {
	var actions []Action
	for e := 0; e < NumActions; e++ {
		a := ActionFromIndex(e)
		if s.ValidMove(a) {
			actions = append(actions, a)
		}
	}
	return actions
}

// Play validates and applies a move history. Play stops at the first illegal
// move or at a move that ends the game before the history is exhausted.
func (s *State) Play(moves []Action) error {
	for i, a := range moves {
		if !s.ValidMove(a) {
			return fmt.Errorf("move %d (%s) is not legal", i, a)
		}
		s.Forward(a)
		if s.CompletionWin(a) && i < len(moves)-1 {
			return fmt.Errorf("game already ended at move %d (%s)", i, a)
		}
	}
	return nil
}

// String renders the board with lowercase shapes for color 0 and uppercase
// for color 1.
func (s *State) String() string {
	return s.board.String()
}

// String renders the board as four bracketed rows.
func (b Board) String() string {
	const glyphs = ".aeou"
	var sb strings.Builder
	for r := 0; r < NumRows; r++ {
		sb.WriteByte('[')
		for c := 0; c < NumCols; c++ {
			t := b[r*NumCols+c]
			ch := glyphs[TileShape(t)]
			if t != 0 && TileColor(t) == 1 {
				ch -= 'a' - 'A'
			}
			sb.WriteByte(ch)
		}
		sb.WriteString("]\n")
	}
	return sb.String()
}

func distinctShapes(t1, t2, t3, t4 uint8) bool {
	if t1 == 0 || t2 == 0 || t3 == 0 || t4 == 0 {
		return false
	}
	var seen [NumShapes + 1]bool
	for _, t := range [4]uint8{t1, t2, t3, t4} {
		sh := TileShape(t)
		if seen[sh] {
			return false
		}
		seen[sh] = true
	}
	return true
}
