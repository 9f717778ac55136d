package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/yourusername/quantikbook/internal/positionid"
	"github.com/yourusername/quantikbook/internal/quantik"
	"github.com/yourusername/quantikbook/pkg/book"
)

// DefaultSolveTimeout bounds a single solver request.
const DefaultSolveTimeout = 60 * time.Second

// Handlers holds the HTTP handlers and the data they answer from.
type Handlers struct {
	book    *book.Book // nil when serving without a book
	summary *book.Summary
	solver  *quantik.Solver
	version string
	pool    *WorkerPool
	metrics *Metrics
	logger  zerolog.Logger

	workers      int
	solveTimeout time.Duration
}

// NewHandlers creates a new Handlers instance without a worker pool.
func NewHandlers(b *book.Book, sv *quantik.Solver, version string) *Handlers {
	return NewHandlersWithPool(b, sv, version, nil)
}

// NewHandlersWithPool creates a new Handlers instance with a worker pool.
func NewHandlersWithPool(b *book.Book, sv *quantik.Solver, version string, pool *WorkerPool) *Handlers {
	h := &Handlers{
		book:         b,
		solver:       sv,
		version:      version,
		pool:         pool,
		logger:       log.With().Str("component", "api").Logger(),
		workers:      runtime.NumCPU(),
		solveTimeout: DefaultSolveTimeout,
	}
	if b != nil {
		s := b.Summary()
		h.summary = &s
	}
	return h
}

// requestError carries the HTTP status and error code of a failed request.
type requestError struct {
	status int
	code   string
	err    error
}

func (e *requestError) Error() string { return e.err.Error() }
func (e *requestError) Unwrap() error { return e.err }

func badRequest(code string, err error) error {
	return &requestError{status: http.StatusBadRequest, code: code, err: err}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, msg string, code string) {
	writeJSON(w, status, ErrorResponse{
		Error: msg,
		Code:  code,
	})
}

// writeRequestError maps an error from answer to a response.
func writeRequestError(w http.ResponseWriter, err error) {
	var re *requestError
	if errors.As(err, &re) {
		writeError(w, re.status, re.err.Error(), re.code)
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error(), "INTERNAL")
}

func boardID(b quantik.Board) string {
	return positionid.BoardID(positionid.Board(b))
}

// position is a parsed request: the state reached and, unless the request
// named a bare board, the history that reached it.
type position struct {
	history   []quantik.Action
	state     *quantik.State
	fromBoard bool
}

// parsePosition resolves a request into a position to answer.
func parsePosition(req *LookupRequest) (*position, error) {
	set := 0
	for _, f := range []string{req.Moves, req.HistoryID, req.PositionID} {
		if f != "" {
			set++
		}
	}
	if set > 1 {
		return nil, badRequest("AMBIGUOUS_POSITION", errors.New("set only one of moves, history_id and position_id"))
	}

	if req.PositionID != "" {
		b, err := positionid.BoardFromID(req.PositionID)
		if err != nil {
			return nil, badRequest("INVALID_POSITION", fmt.Errorf("invalid position ID: %w", err))
		}
		st, err := quantik.StateFromBoard(quantik.Board(b))
		if err != nil {
			return nil, badRequest("INVALID_POSITION", err)
		}
		return &position{state: st, fromBoard: true}, nil
	}

	var history []quantik.Action
	if req.HistoryID != "" {
		idx, err := positionid.HistoryFromID(req.HistoryID)
		if err != nil {
			return nil, badRequest("INVALID_HISTORY", fmt.Errorf("invalid history ID: %w", err))
		}
		history = quantik.ActionsFromIndices(idx)
	} else {
		var err error
		if history, err = quantik.ParseMoves(req.Moves); err != nil {
			return nil, badRequest("INVALID_MOVES", err)
		}
	}

	st := quantik.NewState()
	if err := st.Play(history); err != nil {
		return nil, badRequest("ILLEGAL_MOVE", err)
	}
	if n := len(history); n > 0 && st.CompletionWin(history[n-1]) {
		return nil, badRequest("GAME_OVER", fmt.Errorf("%s completes a region; the game is over", history[n-1]))
	}
	return &position{history: history, state: st}, nil
}

// answer returns the outcome table for req. Histories the book covers are
// answered from it unless forceSolve is set; everything else goes to the
// solver in the slow lane.
func (h *Handlers) answer(ctx context.Context, req *LookupRequest, forceSolve bool) (*LookupResponse, error) {
	pos, err := parsePosition(req)
	if err != nil {
		return nil, err
	}
	st := pos.state

	if !forceSolve && !pos.fromBoard && h.book != nil && len(pos.history) <= h.book.MaxDepth() {
		if h.pool != nil {
			if err := h.pool.AcquireFast(ctx); err != nil {
				return nil, &requestError{status: http.StatusServiceUnavailable, code: "SERVER_BUSY", err: errors.New("server busy")}
			}
			defer h.pool.ReleaseFast()
		}
		table, err := h.book.Lookup(pos.history)
		h.metrics.observeLookup(SourceBook, err)
		if err == nil {
			return TableToResponse(pos.history, st.Board(), st.Player(), table, SourceBook), nil
		}
		if !errors.Is(err, book.ErrNotInBook) {
			return nil, err
		}
		h.logger.Warn().Str("moves", quantik.FormatMoves(pos.history)).Msg("history missing from book, solving")
	}

	table, err := h.solve(ctx, st, !forceSolve)
	h.metrics.observeLookup(SourceSolver, err)
	if err != nil {
		return nil, err
	}
	return TableToResponse(pos.history, st.Board(), st.Player(), table, SourceSolver), nil
}

// solve resolves every action of st in the slow lane. Lookups past the
// horizon wait for a solver slot; explicit solves are refused at once when
// every slot is taken.
func (h *Handlers) solve(ctx context.Context, st *quantik.State, wait bool) (quantik.Outcomes, error) {
	if h.pool != nil {
		if wait {
			if err := h.pool.AcquireSlow(ctx); err != nil {
				return quantik.Outcomes{}, &requestError{status: http.StatusServiceUnavailable, code: "SERVER_BUSY", err: errors.New("server busy")}
			}
		} else if !h.pool.TryAcquireSlow() {
			return quantik.Outcomes{}, &requestError{status: http.StatusServiceUnavailable, code: "SOLVER_BUSY", err: errors.New("all solver slots are busy")}
		}
		defer h.pool.ReleaseSlow()
	}

	ctx, cancel := context.WithTimeout(ctx, h.solveTimeout)
	defer cancel()

	start := time.Now()
	table, err := quantik.WinningMoves(ctx, st, h.solver, h.workers)
	h.metrics.observeSolve(time.Since(start))
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return table, &requestError{status: http.StatusGatewayTimeout, code: "SOLVE_TIMEOUT", err: fmt.Errorf("solve exceeded %v", h.solveTimeout)}
	case err != nil:
		return table, &requestError{status: http.StatusServiceUnavailable, code: "SOLVE_CANCELLED", err: err}
	}

	h.logger.Debug().
		Str("position", boardID(st.Board())).
		Dur("elapsed", time.Since(start)).
		Msg("solved")
	return table, nil
}

// Health handles GET /api/health
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:     "ok",
		Version:    h.version,
		BookLoaded: h.book != nil,
	}
	if h.book != nil {
		resp.BookDepth = h.book.MaxDepth()
	}

	// Include pool stats if available
	if h.pool != nil {
		stats := h.pool.Stats()
		resp.Pool = &stats
	}

	writeJSON(w, http.StatusOK, resp)
}

// Lookup handles POST /api/lookup
func (h *Handlers) Lookup(w http.ResponseWriter, r *http.Request) {
	h.serveTable(w, r, false)
}

// Solve handles POST /api/solve
func (h *Handlers) Solve(w http.ResponseWriter, r *http.Request) {
	h.serveTable(w, r, true)
}

func (h *Handlers) serveTable(w http.ResponseWriter, r *http.Request, forceSolve bool) {
	var req LookupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON", "INVALID_JSON")
		return
	}

	resp, err := h.answer(r.Context(), &req, forceSolve)
	if err != nil {
		h.logger.Info().Err(err).Str("path", r.URL.Path).Msg("request failed")
		writeRequestError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// BookStats handles GET /api/book/stats
func (h *Handlers) BookStats(w http.ResponseWriter, r *http.Request) {
	if h.summary == nil {
		writeError(w, http.StatusNotFound, "no opening book loaded", "NO_BOOK")
		return
	}
	writeJSON(w, http.StatusOK, BookStatsResponse{
		Summary:  *h.summary,
		MaxDepth: h.book.MaxDepth(),
	})
}
