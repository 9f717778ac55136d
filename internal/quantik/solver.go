package quantik

import (
	"context"
	"sync/atomic"

	"github.com/yourusername/quantikbook/internal/positionid"
)

// ctxCheckInterval is how many visited nodes pass between context polls.
const ctxCheckInterval = 1 << 12

// minWinPieces is the smallest piece count from which a single move can
// complete a region.
const minWinPieces = 3

// Solver performs an exhaustive minimax search. It is safe for concurrent
// use as long as each caller passes its own State.
type Solver struct {
	cache *SolveCache
	nodes atomic.Uint64
}

// NewSolver creates a solver with a cache of the given number of entries.
// A size of 0 disables caching.
func NewSolver(cacheSize uint32) *Solver {
	sv := &Solver{}
	if cacheSize > 0 {
		sv.cache = NewSolveCache(cacheSize)
	}
	return sv
}

// Nodes returns the number of positions visited so far.
func (sv *Solver) Nodes() uint64 {
	return sv.nodes.Load()
}

// Cache returns the solver's cache, or nil if caching is disabled.
func (sv *Solver) Cache() *SolveCache {
	return sv.cache
}

// Winner returns the color that wins s under optimal play. The state is
// restored before Winner returns, including on cancellation.
func (sv *Solver) Winner(ctx context.Context, s *State) (Color, error) {
	return sv.solve(ctx, s)
}

func (sv *Solver) solve(ctx context.Context, s *State) (Color, error) {
	if sv.nodes.Add(1)%ctxCheckInterval == 0 {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
	}

	mover := s.player
	board := s.board

	var key positionid.BoardKey
	var slot uint32
	if sv.cache != nil {
		key = positionid.MakeBoardKey(positionid.Board(board))
		var w Color
		if w, slot = sv.cache.Lookup(key); slot == CacheHit {
			return w, nil
		}
	}

	var legal [NumActions]bool
	anyLegal := false
	for e := 0; e < NumActions; e++ {
		a := ActionFromIndex(e)
		if !s.ValidMove(a) {
			continue
		}
		legal[e] = true
		anyLegal = true

		if board.Pieces() >= minWinPieces {
			s.Forward(a)
			won := s.CompletionWin(a)
			s.Backward(a)
			if won {
				sv.store(key, mover, slot)
				return mover, nil
			}
		}
	}

	if !anyLegal {
		sv.store(key, mover.Opponent(), slot)
		return mover.Opponent(), nil
	}

	for e := 0; e < NumActions; e++ {
		if !legal[e] {
			continue
		}
		a := ActionFromIndex(e)
		s.Forward(a)
		w, err := sv.solve(ctx, s)
		s.Backward(a)
		if err != nil {
			return 0, err
		}
		if w == mover {
			sv.store(key, mover, slot)
			return mover, nil
		}
	}

	sv.store(key, mover.Opponent(), slot)
	return mover.Opponent(), nil
}

func (sv *Solver) store(key positionid.BoardKey, w Color, slot uint32) {
	if sv.cache != nil {
		sv.cache.Add(key, w, slot)
	}
}
