package book

import (
	"bytes"

	"gonum.org/v1/gonum/stat"

	"github.com/yourusername/quantikbook/internal/symmetry"
)

// NodeStat is the per-node input to a summary.
type NodeStat struct {
	Depth    int
	Children int
	Legal    int
	MoverWin bool
}

// LevelStats summarizes one depth of the book.
type LevelStats struct {
	Depth         int     `json:"depth"`
	Nodes         int     `json:"nodes"`
	MeanBranching float64 `json:"mean_branching"`
	StdBranching  float64 `json:"std_branching"`
	MeanLegal     float64 `json:"mean_legal"`
	MoverWins     int     `json:"mover_wins"`
}

// Summary describes a built or loaded book.
type Summary struct {
	Nodes      int          `json:"nodes"`
	Symmetries int          `json:"symmetries"`
	Bytes      int          `json:"bytes"`
	RootWinner int          `json:"root_winner"`
	Levels     []LevelStats `json:"levels"`
}

// Summarize computes statistics for a resolved tree.
func Summarize(tree *Tree, group *symmetry.Group) Summary {
	stats := make([]NodeStat, len(tree.Nodes))
	for i, n := range tree.Nodes {
		stats[i] = NodeStat{
			Depth:    n.Depth,
			Children: len(n.Children),
			Legal:    n.Outcomes.Legal(),
			MoverWin: n.Resolved && n.Winner == n.Player,
		}
	}
	s := summarize(stats)
	s.Symmetries = group.Order()
	s.Bytes = EncodedSize(group.Order(), len(tree.Nodes))
	s.RootWinner = int(tree.Root().Winner)
	return s
}

// Summary computes statistics for a decoded book. A record's children are
// the records one ply deeper that extend its move stack.
func (b *Book) Summary() Summary {
	stats := make([]NodeStat, len(b.Records))
	for i, r := range b.Records {
		d := r.Depth()
		children := 0
		for j := i + 1; j < len(b.Records); j++ {
			c := b.Records[j]
			if c.Depth() == d+1 && bytes.Equal(c.Stack[:d], r.Stack[:d]) {
				children++
			}
		}
		stats[i] = NodeStat{
			Depth:    d,
			Children: children,
			Legal:    r.Outcomes.Legal(),
			MoverWin: r.Winner() == r.Player(),
		}
	}
	s := summarize(stats)
	s.Symmetries = len(b.Symmetries)
	s.Bytes = EncodedSize(len(b.Symmetries), len(b.Records))
	s.RootWinner = int(b.Records[0].Winner())
	return s
}

func summarize(stats []NodeStat) Summary {
	var levels [][]NodeStat
	for _, st := range stats {
		for len(levels) <= st.Depth {
			levels = append(levels, nil)
		}
		levels[st.Depth] = append(levels[st.Depth], st)
	}

	s := Summary{Nodes: len(stats)}
	for d, lvl := range levels {
		branching := make([]float64, len(lvl))
		legal := make([]float64, len(lvl))
		wins := 0
		for i, st := range lvl {
			branching[i] = float64(st.Children)
			legal[i] = float64(st.Legal)
			if st.MoverWin {
				wins++
			}
		}
		ls := LevelStats{Depth: d, Nodes: len(lvl), MoverWins: wins}
		ls.MeanBranching = stat.Mean(branching, nil)
		ls.MeanLegal = stat.Mean(legal, nil)
		// The sample deviation of a single node is undefined.
		if len(lvl) > 1 {
			ls.StdBranching = stat.StdDev(branching, nil)
		}
		s.Levels = append(s.Levels, ls)
	}
	return s
}
