package quantik

import (
	"fmt"
	"strings"
)

// ParseAction parses a three-digit move "xys": row, column and a zero-based
// shape, e.g. "203" places shape 4 on row 2, column 0.
func ParseAction(tok string) (Action, error) {
	if len(tok) != 3 {
		return Action{}, fmt.Errorf("invalid move %q: want 3 digits", tok)
	}
	var d [3]int
	for i := 0; i < 3; i++ {
		ch := tok[i]
		if ch < '0' || ch > '3' {
			return Action{}, fmt.Errorf("invalid move %q: digit %d out of range", tok, i)
		}
		d[i] = int(ch - '0')
	}
	return Action{Row: d[0], Col: d[1], Shape: d[2] + 1}, nil
}

// ParseMoves parses a move list separated by spaces or commas.
func ParseMoves(s string) ([]Action, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
	moves := make([]Action, 0, len(fields))
	for _, f := range fields {
		a, err := ParseAction(f)
		if err != nil {
			return nil, err
		}
		moves = append(moves, a)
	}
	return moves, nil
}

// FormatMoves renders moves space separated in ParseMoves notation.
func FormatMoves(moves []Action) string {
	parts := make([]string, len(moves))
	for i, a := range moves {
		parts[i] = a.String()
	}
	return strings.Join(parts, " ")
}

// ActionIndices converts moves to action indices.
func ActionIndices(moves []Action) []uint8 {
	idx := make([]uint8, len(moves))
	for i, a := range moves {
		idx[i] = uint8(a.Index())
	}
	return idx
}

// ActionsFromIndices converts action indices to moves.
func ActionsFromIndices(idx []uint8) []Action {
	moves := make([]Action, len(idx))
	for i, e := range idx {
		moves[i] = ActionFromIndex(int(e))
	}
	return moves
}
