package book

import (
	"fmt"
	"os"

	"github.com/yourusername/quantikbook/internal/quantik"
	"github.com/yourusername/quantikbook/internal/symmetry"
)

// Record is one node of a decoded book.
type Record struct {
	Stack    [StackSize]byte
	Outcomes quantik.Outcomes
}

// Depth returns the number of plies in the move stack.
func (r Record) Depth() int {
	d := 0
	for d < StackSize && r.Stack[d] != EmptyPly {
		d++
	}
	return d
}

// History returns the moves that reach this record.
func (r Record) History() []quantik.Action {
	d := r.Depth()
	if d == 0 {
		return nil
	}
	h := make([]quantik.Action, d)
	for i := 0; i < d; i++ {
		h[i] = quantik.ActionFromIndex(int(r.Stack[i]))
	}
	return h
}

// Player returns the color to move at this record.
func (r Record) Player() quantik.Color {
	return quantik.Color(r.Depth() % quantik.NumColors)
}

// Winner returns the color that wins the record's position.
func (r Record) Winner() quantik.Color {
	return DecideWinner(r.Outcomes, r.Player())
}

// Book is a decoded opening book. It is read-only and safe for concurrent
// lookups.
type Book struct {
	Symmetries []symmetry.Perm
	Records    []Record
	maxDepth   int
}

// Load reads and decodes a book file.
func Load(path string, groupOrder int) (*Book, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read opening book: %w", err)
	}
	return Decode(data, groupOrder)
}

// Decode parses a book image. groupOrder is the number of symmetries at the
// front of the file.
func Decode(data []byte, groupOrder int) (*Book, error) {
	symBytes := groupOrder * PermSize
	if groupOrder <= 0 || len(data) < symBytes+RecordSize {
		return nil, fmt.Errorf("%w: %d bytes is too short", ErrCorruptBook, len(data))
	}
	if (len(data)-symBytes)%RecordSize != 0 {
		return nil, fmt.Errorf("%w: %d record bytes is not a multiple of %d", ErrCorruptBook, len(data)-symBytes, RecordSize)
	}

	b := &Book{
		Symmetries: make([]symmetry.Perm, groupOrder),
		Records:    make([]Record, (len(data)-symBytes)/RecordSize),
	}

	for i := range b.Symmetries {
		copy(b.Symmetries[i][:], data[i*PermSize:(i+1)*PermSize])
		if !b.Symmetries[i].Valid() {
			return nil, fmt.Errorf("%w: symmetry %d is not a permutation", ErrCorruptBook, i)
		}
	}

	prevDepth := 0
	for i := range b.Records {
		off := symBytes + i*RecordSize
		r := &b.Records[i]
		copy(r.Stack[:], data[off:off+StackSize])
		copy(r.Outcomes[:], data[off+StackSize:off+RecordSize])

		d := r.Depth()
		for k := 0; k < StackSize; k++ {
			v := r.Stack[k]
			if k < d && v >= quantik.NumActions {
				return nil, fmt.Errorf("%w: record %d has action byte %d", ErrCorruptBook, i, v)
			}
			if k >= d && v != EmptyPly {
				return nil, fmt.Errorf("%w: record %d has a gap in its move stack", ErrCorruptBook, i)
			}
		}
		if d < prevDepth {
			return nil, fmt.Errorf("%w: record %d is out of breadth-first order", ErrCorruptBook, i)
		}
		prevDepth = d

		for e, v := range r.Outcomes {
			if v != 0 && v != 1 && v != quantik.Illegal {
				return nil, fmt.Errorf("%w: record %d entry %d is %d", ErrCorruptBook, i, e, v)
			}
		}
	}

	if b.Records[0].Depth() != 0 {
		return nil, fmt.Errorf("%w: first record is not the root", ErrCorruptBook)
	}
	b.maxDepth = prevDepth
	return b, nil
}

// MaxDepth returns the deepest history the book covers.
func (b *Book) MaxDepth() int {
	return b.maxDepth
}

// Lookup returns the outcome table for the position reached by history,
// expressed in the caller's cell and shape labels.
//
// Shapes are relabelled in order of first use, then the book is searched for
// a record at the same depth with the same relabelled shapes whose cells are
// the image of the history under one symmetry. The stored table is mapped
// back through the inverse of both relabelings.
func (b *Book) Lookup(history []quantik.Action) (quantik.Outcomes, error) {
	var out quantik.Outcomes
	if len(history) > b.maxDepth {
		return out, ErrNotInBook
	}
	for i, a := range history {
		if !a.InRange() {
			return out, fmt.Errorf("action %d out of range: %+v", i, a)
		}
	}

	shapePerm := relabelShapes(history)

	for ri := range b.Records {
		r := &b.Records[ri]
		if r.Depth() != len(history) || !shapesMatch(r, history, shapePerm) {
			continue
		}
		for pi := range b.Symmetries {
			p := &b.Symmetries[pi]
			if !cellsMatch(r, history, p) {
				continue
			}

			var invShape [quantik.NumShapes]int
			for s, t := range shapePerm {
				invShape[t] = s
			}
			inv := p.Inverse()
			for e, v := range r.Outcomes {
				idx := quantik.BoardSize*invShape[e/quantik.BoardSize] + int(inv[e%quantik.BoardSize])
				out[idx] = v
			}
			return out, nil
		}
	}
	return out, ErrNotInBook
}

// relabelShapes maps each zero-based shape to its rank in order of first
// use; unused shapes follow in ascending order.
func relabelShapes(history []quantik.Action) [quantik.NumShapes]int {
	var perm [quantik.NumShapes]int
	var seen [quantik.NumShapes]bool
	next := 0
	for _, a := range history {
		s := a.Shape - 1
		if !seen[s] {
			seen[s] = true
			perm[s] = next
			next++
		}
	}
	for s := range perm {
		if !seen[s] {
			perm[s] = next
			next++
		}
	}
	return perm
}

func shapesMatch(r *Record, history []quantik.Action, shapePerm [quantik.NumShapes]int) bool {
	for d, a := range history {
		if int(r.Stack[d]>>4) != shapePerm[a.Shape-1] {
			return false
		}
	}
	return true
}

func cellsMatch(r *Record, history []quantik.Action, p *symmetry.Perm) bool {
	for d, a := range history {
		if r.Stack[d]&0x0f != p[a.Cell()] {
			return false
		}
	}
	return true
}
