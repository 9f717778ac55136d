package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/yourusername/quantikbook/internal/quantik"
	"github.com/yourusername/quantikbook/internal/symmetry"
	"github.com/yourusername/quantikbook/pkg/book"
)

// Artifact file names written into the output directory.
const (
	bookFile       = "opening_book.bin"
	treeFile       = "opening_book.json"
	symmetriesFile = "symmetries.json"
	dotFile        = "opening_book.dot"
)

var (
	buildDepth   int
	buildOut     string
	buildWorkers int
	buildDOT     bool

	buildCmd = &cobra.Command{
		Use:   "build",
		Short: "Build the opening book by solving every horizon position",
		Long: `build expands the game tree up to --max-depth plies, keeping one move
per symmetry orbit and per new shape label, solves every horizon position
and writes the binary book together with JSON checkpoints.`,
		Args: cobra.NoArgs,
		RunE: runBuild,
	}
)

func init() {
	buildCmd.Flags().IntVar(&buildDepth, "max-depth", -1, "Search horizon (default from config)")
	buildCmd.Flags().StringVarP(&buildOut, "out", "o", "", "Output directory (default from config)")
	buildCmd.Flags().IntVar(&buildWorkers, "workers", -1, "Concurrent horizon solves, 0 = NumCPU")
	buildCmd.Flags().BoolVar(&buildDOT, "dot", false, "Also write the tree as Graphviz DOT")
}

func runBuild(cmd *cobra.Command, args []string) error {
	bc := cfg.Build
	if buildDepth >= 0 {
		bc.MaxDepth = buildDepth
	}
	if buildOut != "" {
		bc.OutDir = buildOut
	}
	if buildWorkers >= 0 {
		bc.Workers = buildWorkers
	}
	bc.DOT = bc.DOT || buildDOT

	group, err := book.DefaultGroup()
	if err != nil {
		return err
	}
	game := quantik.NewGame(quantik.Options{CacheSize: bc.CacheSize, Workers: bc.Workers})

	start := time.Now()
	tree, err := buildTree(game, group, bc.MaxDepth)
	if err != nil {
		return err
	}
	ev := log.Info().
		Int("nodes", tree.Len()).
		Uint64("solver_nodes", game.Solver().Nodes()).
		Dur("elapsed", time.Since(start))
	if c := game.Solver().Cache(); c != nil {
		ev = ev.Float64("cache_hit_pct", c.HitRate())
	}
	ev.Msg("book built")

	if err := writeArtifacts(bc.OutDir, group, tree, bc.DOT); err != nil {
		return err
	}
	return printSummary(cmd.OutOrStdout(), book.Summarize(tree, group))
}

func buildTree(engine book.GameEngine, group *symmetry.Group, maxDepth int) (*book.Tree, error) {
	b, err := book.NewBuilder(engine, group, book.BuildOptions{MaxDepth: maxDepth})
	if err != nil {
		return nil, err
	}
	return b.Build()
}

// writeArtifacts writes the JSON checkpoints first so a failed encode still
// leaves the solved tree on disk.
func writeArtifacts(dir string, group *symmetry.Group, tree *book.Tree, dot bool) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := writeWith(filepath.Join(dir, treeFile), func(f *bufio.Writer) error {
		return book.WriteTreeJSON(f, tree)
	}); err != nil {
		return err
	}
	if err := writeWith(filepath.Join(dir, symmetriesFile), func(f *bufio.Writer) error {
		return book.WriteSymmetriesJSON(f, group)
	}); err != nil {
		return err
	}
	if dot {
		if err := writeWith(filepath.Join(dir, dotFile), func(f *bufio.Writer) error {
			return book.WriteDOT(f, tree)
		}); err != nil {
			return err
		}
	}

	path := filepath.Join(dir, bookFile)
	if err := book.WriteFile(path, group, tree); err != nil {
		return err
	}
	log.Info().Str("path", path).Int("bytes", book.EncodedSize(group.Order(), tree.Len())).Msg("wrote opening book")
	return nil
}

func writeWith(path string, write func(*bufio.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if err := write(w); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	log.Debug().Str("path", path).Msg("wrote checkpoint")
	return f.Close()
}
