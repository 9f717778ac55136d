package book

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/yourusername/quantikbook/internal/quantik"
	"github.com/yourusername/quantikbook/internal/symmetry"
)

// Book file layout constants
const (
	PermSize   = symmetry.NumCells     // bytes per symmetry
	StackSize  = 4                     // move stack bytes per record
	TableSize  = quantik.NumActions    // outcome bytes per record
	RecordSize = StackSize + TableSize // 68 bytes per record
	EmptyPly   = 0xFF                  // unused move stack byte
)

// EncodedSize returns the size of a book with the given group order and
// node count.
func EncodedSize(groupOrder, nodes int) int {
	return groupOrder*PermSize + nodes*RecordSize
}

// EncodeStack packs a move history into a record's move stack, one action
// index per ply, padded with EmptyPly.
func EncodeStack(history []quantik.Action) ([StackSize]byte, error) {
	var stack [StackSize]byte
	if len(history) > StackSize {
		return stack, fmt.Errorf("history of %d plies exceeds move stack of %d", len(history), StackSize)
	}
	for i := range stack {
		stack[i] = EmptyPly
	}
	for i, a := range history {
		if !a.InRange() {
			return stack, fmt.Errorf("action %d out of range: %+v", i, a)
		}
		stack[i] = byte(a.Index())
	}
	return stack, nil
}

// Encode writes the symmetry table followed by one record per node in
// breadth-first order. Every node must be resolved.
func Encode(w io.Writer, group *symmetry.Group, tree *Tree) error {
	for _, n := range tree.Nodes {
		if !n.Resolved {
			return fmt.Errorf("node [%s]: %w", quantik.FormatMoves(n.History), ErrIncompleteTree)
		}
	}

	bw := bufio.NewWriter(w)

	for _, p := range group.Elements() {
		if _, err := bw.Write(p[:]); err != nil {
			return fmt.Errorf("failed to write symmetries: %w", err)
		}
	}

	for _, id := range tree.BreadthFirst() {
		n := tree.Nodes[id]
		stack, err := EncodeStack(n.History)
		if err != nil {
			return fmt.Errorf("node [%s]: %w", quantik.FormatMoves(n.History), err)
		}
		if _, err := bw.Write(stack[:]); err != nil {
			return fmt.Errorf("failed to write record: %w", err)
		}
		if _, err := bw.Write(n.Outcomes[:]); err != nil {
			return fmt.Errorf("failed to write record: %w", err)
		}
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to flush book: %w", err)
	}
	return nil
}

// WriteFile encodes the book into a temporary file next to path and renames
// it into place, so a failed encode never leaves a partial book behind.
func WriteFile(path string, group *symmetry.Group, tree *Tree) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".opening_book-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if err := Encode(tmp, group, tree); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to set book permissions: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync book: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close book: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to move book into place: %w", err)
	}
	return nil
}
