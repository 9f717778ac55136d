// Package symmetry builds the permutation group of 4x4 board symmetries used
// to collapse equivalent Quantik positions.
//
// A Perm maps cells to cells: p[i] is the image of cell i. Cells are numbered
// row-major from 0 to 15.
package symmetry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/pkg/errors"
)

// NumCells is the number of board cells a permutation acts on.
const NumCells = 16

// ErrNotClosed is returned when a generated element has no inverse in the
// generated set.
var ErrNotClosed = errors.New("symmetry group is not closed under inversion")

// Perm is a permutation of the 16 board cells.
type Perm [NumCells]uint8

// Identity returns the identity permutation.
func Identity() Perm {
	var p Perm
	for i := range p {
		p[i] = uint8(i)
	}
	return p
}

// FromCycles builds a permutation from disjoint cycles; each cycle (a b c)
// maps a to b, b to c and c to a.
func FromCycles(cycles ...[]int) Perm {
	p := Identity()
	for _, c := range cycles {
		for k, a := range c {
			p[a] = uint8(c[(k+1)%len(c)])
		}
	}
	return p
}

// Compose returns p after q: the result maps i to p[q[i]].
func (p Perm) Compose(q Perm) Perm {
	var r Perm
	for i := range r {
		r[i] = p[q[i]]
	}
	return r
}

// Inverse returns the inverse permutation.
func (p Perm) Inverse() Perm {
	var r Perm
	for i, v := range p {
		r[v] = uint8(i)
	}
	return r
}

// Fixes reports whether p maps every listed cell to itself.
func (p Perm) Fixes(cells []int) bool {
	for _, c := range cells {
		if int(p[c]) != c {
			return false
		}
	}
	return true
}

// Valid reports whether p is a bijection on the cells.
func (p Perm) Valid() bool {
	var seen [NumCells]bool
	for _, v := range p {
		if int(v) >= NumCells || seen[v] {
			return false
		}
		seen[v] = true
	}
	return true
}

// Orbit is a sorted set of cells that the group permutes among themselves.
type Orbit []int

// Group is a finite permutation group with a stable element order.
type Group struct {
	elems []Perm
	index map[Perm]int
}

// Build generates the closure of gens under composition. Elements are listed
// breadth-first from the identity, trying generators in the given order, so
// the result is deterministic.
func Build(gens []Perm) (*Group, error) {
	for i, g := range gens {
		if !g.Valid() {
			return nil, fmt.Errorf("generator %d is not a permutation", i)
		}
	}

	id := Identity()
	g := &Group{
		elems: []Perm{id},
		index: map[Perm]int{id: 0},
	}

	for head := 0; head < len(g.elems); head++ {
		cur := g.elems[head]
		for _, gen := range gens {
			next := gen.Compose(cur)
			if _, ok := g.index[next]; ok {
				continue
			}
			g.index[next] = len(g.elems)
			g.elems = append(g.elems, next)
		}
	}

	for _, p := range g.elems {
		if !g.Contains(p.Inverse()) {
			return nil, errors.WithStack(ErrNotClosed)
		}
	}
	return g, nil
}

// FromElements builds a group from an explicit element list, e.g. one read
// back from a checkpoint. The list must contain the identity and be closed
// under composition.
func FromElements(elems []Perm) (*Group, error) {
	g := &Group{
		elems: make([]Perm, len(elems)),
		index: make(map[Perm]int, len(elems)),
	}
	copy(g.elems, elems)
	for i, p := range elems {
		if !p.Valid() {
			return nil, fmt.Errorf("element %d is not a permutation", i)
		}
		if _, dup := g.index[p]; dup {
			return nil, fmt.Errorf("element %d is duplicated", i)
		}
		g.index[p] = i
	}
	if !g.Contains(Identity()) {
		return nil, errors.Wrap(ErrNotClosed, "identity missing")
	}
	for _, p := range elems {
		for _, q := range elems {
			if !g.Contains(p.Compose(q)) {
				return nil, errors.Wrap(ErrNotClosed, "not closed under composition")
			}
		}
	}
	return g, nil
}

// Order returns the number of elements.
func (g *Group) Order() int {
	return len(g.elems)
}

// Elements returns the elements in generation order. The slice must not be
// modified.
func (g *Group) Elements() []Perm {
	return g.elems
}

// Contains reports whether p is an element of the group.
func (g *Group) Contains(p Perm) bool {
	_, ok := g.index[p]
	return ok
}

// Stabilizer returns the subgroup of elements that fix every listed cell.
// Element order follows the parent group.
func (g *Group) Stabilizer(fixed []int) *Group {
	h := &Group{index: make(map[Perm]int)}
	for _, p := range g.elems {
		if p.Fixes(fixed) {
			h.index[p] = len(h.elems)
			h.elems = append(h.elems, p)
		}
	}
	return h
}

// Orbits partitions the cells into orbits under the group. Each orbit is
// sorted ascending and orbits are ordered by their smallest cell.
func (g *Group) Orbits() []Orbit {
	var assigned [NumCells]bool
	var orbits []Orbit

	for c := 0; c < NumCells; c++ {
		if assigned[c] {
			continue
		}
		var orbit Orbit
		for _, p := range g.elems {
			img := int(p[c])
			if !assigned[img] {
				assigned[img] = true
				orbit = append(orbit, img)
			}
		}
		sort.Ints(orbit)
		orbits = append(orbits, orbit)
	}
	return orbits
}

// CheckPartition verifies that orbits cover every cell exactly once.
func CheckPartition(orbits []Orbit) error {
	var seen [NumCells]bool
	for _, o := range orbits {
		if len(o) == 0 {
			return errors.New("empty orbit")
		}
		for _, c := range o {
			if c < 0 || c >= NumCells {
				return errors.Errorf("cell %d out of range", c)
			}
			if seen[c] {
				return errors.Errorf("cell %d appears in two orbits", c)
			}
			seen[c] = true
		}
	}
	for c, ok := range seen {
		if !ok {
			return errors.Errorf("cell %d is not covered", c)
		}
	}
	return nil
}

// Generators returns the seven board symmetries that generate the group:
// the quarter turn, the four half-board flips and the two half-board swaps.
func Generators() []Perm {
	return []Perm{
		// rotation
		FromCycles([]int{0, 12, 15, 3}, []int{1, 8, 14, 7}, []int{2, 4, 13, 11}, []int{5, 9, 10, 6}),
		// top half flip
		FromCycles([]int{0, 4}, []int{1, 5}, []int{2, 6}, []int{3, 7}),
		// bottom half flip
		FromCycles([]int{8, 12}, []int{9, 13}, []int{10, 14}, []int{11, 15}),
		// top/bottom swap
		FromCycles([]int{0, 8}, []int{1, 9}, []int{2, 10}, []int{3, 11}, []int{4, 12}, []int{5, 13}, []int{6, 14}, []int{7, 15}),
		// left half flip
		FromCycles([]int{0, 1}, []int{4, 5}, []int{8, 9}, []int{12, 13}),
		// right half flip
		FromCycles([]int{2, 3}, []int{6, 7}, []int{10, 11}, []int{14, 15}),
		// left/right swap
		FromCycles([]int{0, 2}, []int{4, 6}, []int{8, 10}, []int{12, 14}, []int{1, 3}, []int{5, 7}, []int{9, 11}, []int{13, 15}),
	}
}

var (
	defaultOnce  sync.Once
	defaultGroup *Group
	defaultErr   error
)

// Default returns the group generated by Generators, built once.
func Default() (*Group, error) {
	defaultOnce.Do(func() {
		defaultGroup, defaultErr = Build(Generators())
	})
	return defaultGroup, defaultErr
}
