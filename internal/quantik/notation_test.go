package quantik

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMoves(t *testing.T) {
	moves, err := ParseMoves("001 232,310")
	require.NoError(t, err)
	assert.Equal(t, []Action{
		{Row: 0, Col: 0, Shape: 2},
		{Row: 2, Col: 3, Shape: 3},
		{Row: 3, Col: 1, Shape: 1},
	}, moves)
	assert.Equal(t, "001 232 310", FormatMoves(moves))
}

func TestParseMovesEmpty(t *testing.T) {
	moves, err := ParseMoves("  ")
	require.NoError(t, err)
	assert.Empty(t, moves)
}

func TestParseMovesInvalid(t *testing.T) {
	for _, in := range []string{"00", "0011", "400", "04a", "0,0,1"} {
		_, err := ParseMoves(in)
		assert.Error(t, err, "input %q", in)
	}
}

func TestActionIndex(t *testing.T) {
	tests := []struct {
		a     Action
		index int
	}{
		{Action{Row: 0, Col: 0, Shape: 1}, 0},
		{Action{Row: 1, Col: 2, Shape: 3}, 38},
		{Action{Row: 0, Col: 3, Shape: 4}, 51},
		{Action{Row: 3, Col: 3, Shape: 4}, 63},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.index, tc.a.Index(), "action %v", tc.a)
		assert.Equal(t, tc.a, ActionFromIndex(tc.index))
	}

	for e := 0; e < NumActions; e++ {
		a := ActionFromIndex(e)
		require.Equal(t, e, a.Index())
		require.Equal(t, e%BoardSize, a.Cell())
		require.Equal(t, e/BoardSize+1, a.Shape)
	}
}

func TestActionIndicesRoundTrip(t *testing.T) {
	moves, err := ParseMoves("000 123 332")
	require.NoError(t, err)
	assert.Equal(t, moves, ActionsFromIndices(ActionIndices(moves)))
}
