package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/muesli/termenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/yourusername/quantikbook/internal/quantik"
	"github.com/yourusername/quantikbook/pkg/book"
)

var (
	evalBook    string
	evalSolve   bool
	evalTimeout time.Duration

	evalCmd = &cobra.Command{
		Use:   "eval [moves...]",
		Short: "Show the outcome of every action after a move history",
		Long: `eval plays the given moves ("xys" per move: row, column, zero-based
shape) and prints the outcome table of the resulting position. Positions
inside the book horizon are read from the book; deeper ones are solved.`,
		Example: `  qtbook eval
  qtbook eval 000 121
  qtbook eval --solve 231 020 310 033 222 120 111 002 103 302`,
		RunE: runEval,
	}
)

func init() {
	evalCmd.Flags().StringVar(&evalBook, "book", "", "Opening book file (default from config)")
	evalCmd.Flags().BoolVar(&evalSolve, "solve", false, "Ignore the book and solve the position")
	evalCmd.Flags().DurationVar(&evalTimeout, "timeout", 0, "Solve time limit (default from config)")
}

func runEval(cmd *cobra.Command, args []string) error {
	history, err := quantik.ParseMoves(strings.Join(args, " "))
	if err != nil {
		return err
	}
	st := quantik.NewState()
	if err := st.Play(history); err != nil {
		return err
	}
	if n := len(history); n > 0 && st.CompletionWin(history[n-1]) {
		return fmt.Errorf("%s completes a region; the game is over", history[n-1])
	}

	var bk *book.Book
	if !evalSolve {
		path := evalBook
		if path == "" {
			path = cfg.Server.BookPath
		}
		if bk, err = loadBook(path); err != nil {
			return err
		}
	}

	timeout := evalTimeout
	if timeout <= 0 {
		timeout = cfg.Server.SolveTimeout
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	table, source, err := evaluate(ctx, bk, st, history, cfg.Server.CacheSize, cfg.Build.Workers)
	if err != nil {
		return err
	}

	o := termenv.NewOutput(cmd.OutOrStdout())
	renderTable(o, st.Board(), st.Player(), table)
	fmt.Fprintf(o, "\nsource: %s\nwinning: %s\n", source, strings.Join(winningMoves(table, st.Player()), " "))
	return nil
}

// evaluate reads the position from bk when it is within the horizon and
// solves it otherwise. st must be the position reached by history.
func evaluate(ctx context.Context, bk *book.Book, st *quantik.State, history []quantik.Action, cacheSize uint32, workers int) (quantik.Outcomes, string, error) {
	if bk != nil && len(history) <= bk.MaxDepth() {
		table, err := bk.Lookup(history)
		if err == nil {
			return table, "book", nil
		}
		if !errors.Is(err, book.ErrNotInBook) {
			return table, "", err
		}
		log.Warn().Str("moves", quantik.FormatMoves(history)).Msg("position missing from book, solving")
	}

	start := time.Now()
	table, err := quantik.WinningMoves(ctx, st, quantik.NewSolver(cacheSize), workers)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return table, "", fmt.Errorf("solve did not finish in time: %w", err)
		}
		return table, "", err
	}
	log.Debug().Dur("elapsed", time.Since(start)).Msg("position solved")
	return table, "solver", nil
}

// loadBook loads a book for lookups. A missing file is not an error; the
// caller falls back to solving.
func loadBook(path string) (*book.Book, error) {
	if path == "" {
		return nil, nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		log.Warn().Str("path", path).Msg("opening book not found, positions will be solved")
		return nil, nil
	}
	group, err := book.DefaultGroup()
	if err != nil {
		return nil, err
	}
	bk, err := book.Load(path, group.Order())
	if err != nil {
		return nil, err
	}
	log.Info().Str("path", path).Int("records", len(bk.Records)).Int("max_depth", bk.MaxDepth()).Msg("opening book loaded")
	return bk, nil
}
