package book

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/yourusername/quantikbook/internal/quantik"
	"github.com/yourusername/quantikbook/internal/symmetry"
)

// DefaultMaxDepth is the search horizon of the standard book.
const DefaultMaxDepth = 3

// BuildOptions configures a Builder.
type BuildOptions struct {
	// MaxDepth is the depth at which the engine resolves positions instead
	// of the tree. It cannot exceed the move stack size of a record.
	MaxDepth int
}

// DefaultBuildOptions returns the options for the standard three-ply book.
func DefaultBuildOptions() BuildOptions {
	return BuildOptions{MaxDepth: DefaultMaxDepth}
}

// Builder grows the book tree by driving a single engine state forward and
// back.
type Builder struct {
	engine GameEngine
	group  *symmetry.Group
	opts   BuildOptions
	tree   *Tree
	logger zerolog.Logger

	horizonCalls int
}

// NewBuilder creates a builder rooted at the engine's current position.
func NewBuilder(engine GameEngine, group *symmetry.Group, opts BuildOptions) (*Builder, error) {
	if opts.MaxDepth < 0 || opts.MaxDepth > StackSize {
		return nil, fmt.Errorf("max depth %d out of range [0, %d]", opts.MaxDepth, StackSize)
	}
	return &Builder{
		engine: engine,
		group:  group,
		opts:   opts,
		tree:   NewTree(engine.Board(), engine.Player()),
		logger: log.With().Str("component", "book").Logger(),
	}, nil
}

// Tree returns the tree built so far.
func (b *Builder) Tree() *Tree {
	return b.tree
}

// HorizonCalls returns how many times the engine was asked to resolve a
// horizon position.
func (b *Builder) HorizonCalls() int {
	return b.horizonCalls
}

// Build expands the whole tree from the root and returns it. Calling Build
// again on the same builder does no engine work.
func (b *Builder) Build() (*Tree, error) {
	start := time.Now()
	b.logger.Info().Int("max_depth", b.opts.MaxDepth).Int("symmetries", b.group.Order()).Msg("building opening book")

	if err := b.Expand(0, 0); err != nil {
		return nil, err
	}

	counts := b.tree.LevelCounts()
	for d, n := range counts {
		b.logger.Info().Int("depth", d).Int("nodes", n).Msg("level")
	}
	root := b.tree.Root()
	b.logger.Info().
		Int("nodes", b.tree.Len()).
		Int("horizon_calls", b.horizonCalls).
		Uint8("root_winner", uint8(root.Winner)).
		Dur("elapsed", time.Since(start)).
		Msg("opening book built")
	return b.tree, nil
}

// Expand grows the subtree below node id, which must match the engine's
// current position, and resolves its outcome table. Nodes that are already
// resolved are left untouched.
func (b *Builder) Expand(id int, depth int) error {
	n := b.tree.Nodes[id]
	if n.Depth != depth {
		return violation(n.History, "node depth %d expanded at depth %d", n.Depth, depth)
	}
	if board := b.engine.Board(); board != n.Board {
		return violation(n.History, "engine board diverged from node")
	}

	bound := ShapeBound(n.Board)
	if n.ShapeBound != 0 && n.ShapeBound != bound {
		return violation(n.History, "shape bound %d, recorded %d", bound, n.ShapeBound)
	}
	n.ShapeBound = bound

	if n.Resolved {
		return nil
	}

	if depth == b.opts.MaxDepth {
		b.resolveHorizon(n)
		return nil
	}

	orbits := b.group.Stabilizer(n.Board.Occupied()).Orbits()
	if err := symmetry.CheckPartition(orbits); err != nil {
		return violation(n.History, "orbits: %v", err)
	}

	for shape := 1; shape <= bound; shape++ {
		for _, o := range orbits {
			a := quantik.NewAction(o[0], shape)
			if !b.engine.ValidMove(a) {
				continue
			}
			if err := b.descend(id, a, o, depth); err != nil {
				return err
			}
		}
	}

	return b.induce(id, orbits)
}

// descend plays a, expands the resulting child and always restores the
// engine, even when the subtree fails.
func (b *Builder) descend(parent int, a quantik.Action, orbit symmetry.Orbit, depth int) error {
	b.engine.Forward(a)
	defer b.engine.Backward(a)

	child, err := b.tree.attach(parent, a, orbit, b.engine.Board(), b.engine.Player())
	if err != nil {
		return err
	}
	b.logger.Debug().
		Str("history", quantik.FormatMoves(b.tree.Nodes[child].History)).
		Ints("orbit", orbit).
		Msg("expand")

	return b.Expand(child, depth+1)
}

// resolveHorizon takes the engine's table for a leaf as is.
func (b *Builder) resolveHorizon(n *Node) {
	b.horizonCalls++
	n.Outcomes = b.engine.WinningMoves()
	n.Winner = DecideWinner(n.Outcomes, n.Player)
	n.Resolved = true

	b.logger.Debug().
		Str("history", quantik.FormatMoves(n.History)).
		Int("legal", n.Outcomes.Legal()).
		Uint8("winner", uint8(n.Winner)).
		Msg("horizon")
}
