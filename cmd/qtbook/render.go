package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/muesli/termenv"

	"github.com/yourusername/quantikbook/internal/quantik"
	"github.com/yourusername/quantikbook/pkg/book"
)

// Outcome glyphs: the mover wins, the mover loses, the action is illegal.
const (
	glyphWin     = "w"
	glyphLoss    = "l"
	glyphIllegal = "."
)

// renderTable writes the board followed by one 4x4 grid per shape showing
// the outcome of placing that shape on each cell.
func renderTable(o *termenv.Output, board quantik.Board, player quantik.Color, table quantik.Outcomes) {
	win := o.String(glyphWin).Foreground(o.Color("2")).Bold()
	loss := o.String(glyphLoss).Foreground(o.Color("1"))

	fmt.Fprint(o, board.String())
	fmt.Fprintf(o, "to move: %d, winner: %d, legal: %d\n\n", player, book.DecideWinner(table, player), table.Legal())

	for shape := 1; shape <= quantik.NumShapes; shape++ {
		fmt.Fprintf(o, "shape %d\n", shape-1)
		for r := 0; r < quantik.NumRows; r++ {
			cells := make([]string, quantik.NumCols)
			for c := 0; c < quantik.NumCols; c++ {
				switch v := table[quantik.Action{Row: r, Col: c, Shape: shape}.Index()]; {
				case v == quantik.Illegal:
					cells[c] = glyphIllegal
				case quantik.Color(v) == player:
					cells[c] = win.String()
				default:
					cells[c] = loss.String()
				}
			}
			fmt.Fprintf(o, "  %s\n", strings.Join(cells, " "))
		}
	}
}

// winningMoves lists the actions that win for the mover in notation order.
func winningMoves(table quantik.Outcomes, player quantik.Color) []string {
	var moves []string
	for e, v := range table {
		if v == uint8(player) {
			moves = append(moves, quantik.ActionFromIndex(e).String())
		}
	}
	return moves
}

func printSummary(w io.Writer, s book.Summary) error {
	fmt.Fprintf(w, "nodes: %d  symmetries: %d  bytes: %d  root winner: %d\n",
		s.Nodes, s.Symmetries, s.Bytes, s.RootWinner)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "depth\tnodes\tbranching\tstd\tlegal\tmover wins")
	for _, l := range s.Levels {
		fmt.Fprintf(tw, "%d\t%d\t%.2f\t%.2f\t%.2f\t%d\n",
			l.Depth, l.Nodes, l.MeanBranching, l.StdBranching, l.MeanLegal, l.MoverWins)
	}
	return tw.Flush()
}
