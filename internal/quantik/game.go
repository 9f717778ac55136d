package quantik

import (
	"context"
	"runtime"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Options configures a Game.
type Options struct {
	// CacheSize is the number of solver cache entries (0 disables the cache).
	CacheSize uint32
	// Workers bounds how many horizon actions are solved concurrently.
	// Zero means runtime.NumCPU().
	Workers int
}

// DefaultOptions returns options suitable for building an opening book.
func DefaultOptions() Options {
	return Options{
		CacheSize: DefaultCacheSize,
		Workers:   runtime.NumCPU(),
	}
}

// Game is a live Quantik position together with a solver. It satisfies the
// engine contract the opening book builder drives: Board, Player, ValidMove,
// Forward, Backward and WinningMoves.
type Game struct {
	*State
	solver  *Solver
	workers int
}

// NewGame returns a game at the starting position.
func NewGame(opts Options) *Game {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Game{
		State:   NewState(),
		solver:  NewSolver(opts.CacheSize),
		workers: workers,
	}
}

// Solver returns the game's solver.
func (g *Game) Solver() *Solver {
	return g.solver
}

// WinningMoves resolves every action of the current position. Entry e holds
// Illegal if action e cannot be played, the mover's color if it completes a
// region, and otherwise the winner of the resulting position.
func (g *Game) WinningMoves() Outcomes {
	out, err := g.WinningMovesContext(context.Background())
	if err != nil {
		// Only cancellation can fail and Background is never cancelled.
		panic(err)
	}
	return out
}

// WinningMovesContext is WinningMoves with cancellation. Actions are solved
// on cloned states so the live position is never touched concurrently.
func (g *Game) WinningMovesContext(ctx context.Context) (Outcomes, error) {
	return WinningMoves(ctx, g.State, g.solver, g.workers)
}

// WinningMoves resolves every action of s using sv with at most workers
// concurrent searches. s is not modified.
func WinningMoves(ctx context.Context, s *State, sv *Solver, workers int) (Outcomes, error) {
	start := time.Now()
	out := IllegalOutcomes()
	mover := s.Player()

	eg, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		eg.SetLimit(workers)
	}

	for e := 0; e < NumActions; e++ {
		a := ActionFromIndex(e)
		if !s.ValidMove(a) {
			continue
		}
		child := s.Clone()
		child.Forward(a)
		if child.CompletionWin(a) {
			out[e] = uint8(mover)
			continue
		}

		e := e
		eg.Go(func() error {
			w, err := sv.Winner(ctx, child)
			if err != nil {
				return err
			}
			out[e] = uint8(w)
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return out, err
	}

	log.Debug().
		Int("pieces", s.Board().Pieces()).
		Int("legal", out.Legal()).
		Uint64("nodes", sv.Nodes()).
		Dur("elapsed", time.Since(start)).
		Msg("winning-moves")
	return out, nil
}
