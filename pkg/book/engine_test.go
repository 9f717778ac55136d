package book

import (
	"os"
	"testing"

	"github.com/rs/zerolog"

	"github.com/yourusername/quantikbook/internal/quantik"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.Disabled)
	os.Exit(m.Run())
}

// stubEngine plays real Quantik moves but answers WinningMoves with a cheap
// parity rule instead of a full search. The rule depends only on how many
// pieces share a region with the cell and whether the shape is already on
// the board, so it is invariant under board symmetries and shape relabeling.
type stubEngine struct {
	*quantik.State
	calls int
}

func newStubEngine() *stubEngine {
	return &stubEngine{State: quantik.NewState()}
}

func (s *stubEngine) WinningMoves() quantik.Outcomes {
	s.calls++
	return stubTable(s.State)
}

func stubTable(st *quantik.State) quantik.Outcomes {
	out := quantik.IllegalOutcomes()
	b := st.Board()
	for e := 0; e < quantik.NumActions; e++ {
		a := quantik.ActionFromIndex(e)
		if !st.ValidMove(a) {
			continue
		}
		n := 0
		for i, t := range b {
			if t == 0 {
				continue
			}
			r, c := i/quantik.NumCols, i%quantik.NumCols
			if r == a.Row {
				n++
			}
			if c == a.Col {
				n++
			}
			if r/2 == a.Row/2 && c/2 == a.Col/2 {
				n++
			}
			if quantik.TileShape(t) == a.Shape {
				n++
			}
		}
		out[e] = uint8(n % 2)
	}
	return out
}

// loserEngine reports every action as a win for the player who did not
// make it.
type loserEngine struct {
	*quantik.State
}

func (l *loserEngine) WinningMoves() quantik.Outcomes {
	out := quantik.IllegalOutcomes()
	for _, a := range l.LegalActions() {
		out[a.Index()] = uint8(l.Player().Opponent())
	}
	return out
}

// flakyEngine rejects one action the first time it is asked and accepts it
// afterwards, so the builder never creates the child it later looks up.
type flakyEngine struct {
	*stubEngine
	target quantik.Action
	asked  bool
}

func (f *flakyEngine) ValidMove(a quantik.Action) bool {
	if a == f.target && f.Board().Pieces() == 0 {
		if !f.asked {
			f.asked = true
			return false
		}
	}
	return f.stubEngine.ValidMove(a)
}
