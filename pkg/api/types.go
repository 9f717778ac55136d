// Package api provides the HTTP/JSON and WebSocket API for opening book
// lookups and beyond-book solves.
package api

import (
	"github.com/yourusername/quantikbook/internal/positionid"
	"github.com/yourusername/quantikbook/internal/quantik"
	"github.com/yourusername/quantikbook/pkg/book"
)

// Sources of an outcome table.
const (
	SourceBook   = "book"
	SourceSolver = "solver"
)

// ============================================================================
// Request Types
// ============================================================================

// LookupRequest identifies a position. At most one field may be set; an
// empty request names the starting position.
type LookupRequest struct {
	Moves      string `json:"moves,omitempty"`       // Move history, e.g. "000 121"
	HistoryID  string `json:"history_id,omitempty"`  // Compact history, one character per move
	PositionID string `json:"position_id,omitempty"` // Board ID; always solved
}

// ============================================================================
// Response Types
// ============================================================================

// LookupResponse is the outcome table of a position.
type LookupResponse struct {
	Moves      string   `json:"moves,omitempty"`      // Normalized move history
	HistoryID  string   `json:"history_id,omitempty"` // Compact form of Moves
	PositionID string   `json:"position_id"`          // Board ID of the position
	Player     int      `json:"player"`          // Color to move
	Winner     int      `json:"winner"`          // Color that wins with best play
	Table      []int    `json:"table"`           // 64 entries: winner per action, 255 if illegal
	Legal      int      `json:"legal"`           // Number of legal actions
	Winning    []string `json:"winning"`         // Actions that win for the player to move
	Source     string   `json:"source"`          // "book" or "solver"
}

// ErrorResponse is returned when an error occurs.
type ErrorResponse struct {
	Error   string `json:"error"`             // Error message
	Code    string `json:"code,omitempty"`    // Error code
	Details string `json:"details,omitempty"` // Additional details
}

// HealthResponse is the response for health check.
type HealthResponse struct {
	Status     string     `json:"status"`         // "ok"
	Version    string     `json:"version"`        // Server version
	BookLoaded bool       `json:"book_loaded"`    // Whether an opening book is loaded
	BookDepth  int        `json:"book_depth"`     // Deepest history the book answers
	Pool       *PoolStats `json:"pool,omitempty"` // Worker pool statistics
}

// BookStatsResponse is the build summary of the loaded book.
type BookStatsResponse struct {
	book.Summary
	MaxDepth int `json:"max_depth"`
}

// ============================================================================
// Helper Functions
// ============================================================================

// TableToResponse converts an outcome table to an API response.
func TableToResponse(history []quantik.Action, board quantik.Board, player quantik.Color, table quantik.Outcomes, source string) *LookupResponse {
	resp := &LookupResponse{
		Moves:      quantik.FormatMoves(history),
		HistoryID:  positionid.HistoryID(quantik.ActionIndices(history)),
		PositionID: boardID(board),
		Player:     int(player),
		Winner:     int(book.DecideWinner(table, player)),
		Table:      make([]int, quantik.NumActions),
		Legal:      table.Legal(),
		Winning:    []string{},
		Source:     source,
	}
	for e, v := range table {
		resp.Table[e] = int(v)
		if v == uint8(player) {
			resp.Winning = append(resp.Winning, quantik.ActionFromIndex(e).String())
		}
	}
	return resp
}
