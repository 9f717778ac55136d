package symmetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDefault(t *testing.T) *Group {
	t.Helper()
	g, err := Default()
	require.NoError(t, err)
	return g
}

func TestDefaultGroupOrder(t *testing.T) {
	g := mustDefault(t)
	assert.Equal(t, 128, g.Order())
	assert.Equal(t, Identity(), g.Elements()[0])
}

func TestGeneratorsArePermutations(t *testing.T) {
	gens := Generators()
	require.Len(t, gens, 7)
	for i, p := range gens {
		assert.True(t, p.Valid(), "generator %d", i)
		assert.NotEqual(t, Identity(), p, "generator %d", i)
	}
}

func TestRotation(t *testing.T) {
	rot := Generators()[0]
	assert.Equal(t, uint8(12), rot[0])
	assert.Equal(t, uint8(0), rot[3])

	// four quarter turns are the identity
	r := Identity()
	for i := 0; i < 4; i++ {
		r = rot.Compose(r)
	}
	assert.Equal(t, Identity(), r)
}

func TestGroupClosure(t *testing.T) {
	g := mustDefault(t)
	elems := g.Elements()
	for _, p := range elems {
		require.True(t, g.Contains(p.Inverse()))
		assert.Equal(t, Identity(), p.Compose(p.Inverse()))
	}
	for _, p := range elems {
		for _, q := range elems {
			require.True(t, g.Contains(p.Compose(q)))
		}
	}
}

func TestBuildDeterministic(t *testing.T) {
	a, err := Build(Generators())
	require.NoError(t, err)
	b, err := Build(Generators())
	require.NoError(t, err)
	assert.Equal(t, a.Elements(), b.Elements())
}

func TestBuildRejectsInvalidGenerator(t *testing.T) {
	bad := Identity()
	bad[0] = 1
	_, err := Build([]Perm{bad})
	assert.Error(t, err)
}

func TestBuildSingleGenerator(t *testing.T) {
	g, err := Build(Generators()[:1])
	require.NoError(t, err)
	assert.Equal(t, 4, g.Order())
}

func TestFullGroupSingleOrbit(t *testing.T) {
	orbits := mustDefault(t).Orbits()
	require.Len(t, orbits, 1)
	assert.Len(t, orbits[0], NumCells)
}

func TestStabilizerOfCorner(t *testing.T) {
	h := mustDefault(t).Stabilizer([]int{0})
	assert.Equal(t, 8, h.Order())
	for _, p := range h.Elements() {
		assert.Equal(t, uint8(0), p[0])
	}

	want := []Orbit{
		{0},
		{1, 4},
		{2, 3, 8, 12},
		{5},
		{6, 7, 9, 13},
		{10, 11, 14, 15},
	}
	assert.Equal(t, want, h.Orbits())
	assert.NoError(t, CheckPartition(h.Orbits()))
}

func TestStabilizerOfEmptySet(t *testing.T) {
	g := mustDefault(t)
	h := g.Stabilizer(nil)
	assert.Equal(t, g.Order(), h.Order())
	assert.Equal(t, g.Elements(), h.Elements())
}

func TestStabilizerFixesCells(t *testing.T) {
	g := mustDefault(t)
	fixed := []int{0, 5}
	h := g.Stabilizer(fixed)
	require.Positive(t, h.Order())
	for _, o := range h.Orbits() {
		if o[0] == 0 || o[0] == 5 {
			assert.Len(t, o, 1)
		}
	}
}

func TestCheckPartition(t *testing.T) {
	tests := []struct {
		name   string
		orbits []Orbit
		ok     bool
	}{
		{"identity", mustDefault(t).Stabilizer([]int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15}).Orbits(), true},
		{"overlap", []Orbit{{0, 1, 2, 3, 4, 5, 6, 7}, {7, 8, 9, 10, 11, 12, 13, 14, 15}}, false},
		{"missing", []Orbit{{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14}}, false},
		{"out of range", []Orbit{{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}}, false},
		{"empty orbit", []Orbit{{}}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := CheckPartition(tc.orbits)
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestFromElements(t *testing.T) {
	g := mustDefault(t)
	h, err := FromElements(g.Elements())
	require.NoError(t, err)
	assert.Equal(t, g.Order(), h.Order())
	assert.Equal(t, g.Elements(), h.Elements())

	_, err = FromElements(g.Elements()[1:])
	assert.ErrorIs(t, err, ErrNotClosed)

	_, err = FromElements([]Perm{Identity(), Generators()[0]})
	assert.ErrorIs(t, err, ErrNotClosed)
}

func TestFromCycles(t *testing.T) {
	p := FromCycles([]int{0, 1, 2})
	assert.Equal(t, uint8(1), p[0])
	assert.Equal(t, uint8(2), p[1])
	assert.Equal(t, uint8(0), p[2])
	assert.Equal(t, uint8(3), p[3])
	assert.True(t, p.Fixes([]int{3, 4}))
	assert.False(t, p.Fixes([]int{0}))
}
