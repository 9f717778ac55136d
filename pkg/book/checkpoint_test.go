package book

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTreeJSONRoundTrip(t *testing.T) {
	tree, _ := buildStub(t)

	var buf bytes.Buffer
	require.NoError(t, WriteTreeJSON(&buf, tree))

	got, err := ReadTreeJSON(&buf)
	require.NoError(t, err)
	require.Equal(t, tree.Len(), got.Len())
	assert.Equal(t, tree.Nodes, got.Nodes)

	// the reloaded tree encodes to the same bytes
	var a, b bytes.Buffer
	require.NoError(t, Encode(&a, defaultGroup(t), tree))
	require.NoError(t, Encode(&b, defaultGroup(t), got))
	assert.True(t, bytes.Equal(a.Bytes(), b.Bytes()))
}

func TestTreeJSONShape(t *testing.T) {
	tree, _ := buildStub(t)

	var buf bytes.Buffer
	require.NoError(t, WriteTreeJSON(&buf, tree))

	var root map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &root))
	assert.Empty(t, root["id"])
	assert.NotContains(t, root, "edge")
	assert.Len(t, root["moves"], 64)
	assert.Len(t, root["board"], 16)

	children := root["children"].([]interface{})
	require.Len(t, children, 1)
	child := children[0].(map[string]interface{})
	assert.Equal(t, []interface{}{0.0, 0.0, 1.0}, child["id"])
	edge := child["edge"].(map[string]interface{})
	assert.Equal(t, 1.0, edge["shape"])
	assert.Len(t, edge["orbit"], 16)
}

func TestReadTreeJSONUnresolved(t *testing.T) {
	tree, _ := buildStub(t)
	tree.Nodes[5].Resolved = false

	var buf bytes.Buffer
	require.NoError(t, WriteTreeJSON(&buf, tree))
	got, err := ReadTreeJSON(&buf)
	require.NoError(t, err)

	assert.False(t, got.Nodes[5].Resolved)
	var out bytes.Buffer
	assert.ErrorIs(t, Encode(&out, defaultGroup(t), got), ErrIncompleteTree)
}

func TestReadTreeJSONErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"not json", "{"},
		{"root with history", `{"id":[0,0,1],"board":[0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0],"depth":1}`},
		{"short board", `{"id":[],"board":[0,0],"depth":0}`},
		{"bad depth", `{"id":[],"board":[0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0],"depth":2}`},
		{"child without edge", `{"id":[],"board":[0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0],"depth":0,
			"children":[{"id":[0,0,1],"board":[1,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0],"depth":1}]}`},
		{"short table", `{"id":[],"board":[0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0],"depth":0,"winner":0,"moves":[1]}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ReadTreeJSON(strings.NewReader(tc.input))
			assert.Error(t, err)
		})
	}
}

func TestSymmetriesJSONRoundTrip(t *testing.T) {
	g := defaultGroup(t)

	var buf bytes.Buffer
	require.NoError(t, WriteSymmetriesJSON(&buf, g))

	got, err := ReadSymmetriesJSON(&buf)
	require.NoError(t, err)
	assert.Equal(t, g.Elements(), got.Elements())

	_, err = ReadSymmetriesJSON(strings.NewReader(`[[0,1,2]]`))
	assert.Error(t, err)
	_, err = ReadSymmetriesJSON(strings.NewReader(`[[0,1,2,3,4,5,6,7,8,9,10,11,12,13,14,16]]`))
	assert.Error(t, err)
}

func TestWriteDOT(t *testing.T) {
	tree, _ := buildStub(t)

	var buf bytes.Buffer
	require.NoError(t, WriteDOT(&buf, tree))
	out := buf.String()

	assert.Contains(t, out, "digraph opening_book {")
	assert.Contains(t, out, "root")
	assert.Contains(t, out, "fillcolor")
	assert.Equal(t, tree.Len()-1, strings.Count(out, " -> "))
}

func TestSummarize(t *testing.T) {
	tree, _ := buildStub(t)
	g := defaultGroup(t)

	s := Summarize(tree, g)
	assert.Equal(t, 131, s.Nodes)
	assert.Equal(t, 128, s.Symmetries)
	assert.Equal(t, 10956, s.Bytes)
	assert.Equal(t, int(tree.Root().Winner), s.RootWinner)

	require.Len(t, s.Levels, 4)
	var nodes []int
	for _, l := range s.Levels {
		nodes = append(nodes, l.Nodes)
	}
	assert.Equal(t, []int{1, 1, 7, 122}, nodes)
	assert.Equal(t, 1.0, s.Levels[0].MeanBranching)
	assert.Equal(t, 0.0, s.Levels[0].StdBranching)
	assert.Equal(t, 64.0, s.Levels[0].MeanLegal)
	assert.Equal(t, 7.0, s.Levels[1].MeanBranching)
	assert.Equal(t, 0.0, s.Levels[3].MeanBranching)
}

func TestBookSummaryMatchesTree(t *testing.T) {
	data, tree := encodeStub(t)
	b, err := Decode(data, 128)
	require.NoError(t, err)

	want := Summarize(tree, defaultGroup(t))
	got := b.Summary()

	assert.Equal(t, want.Nodes, got.Nodes)
	assert.Equal(t, want.Symmetries, got.Symmetries)
	assert.Equal(t, want.Bytes, got.Bytes)
	assert.Equal(t, want.RootWinner, got.RootWinner)
	require.Len(t, got.Levels, len(want.Levels))
	for i := range want.Levels {
		w, g := want.Levels[i], got.Levels[i]
		assert.Equal(t, w.Nodes, g.Nodes)
		assert.Equal(t, w.MoverWins, g.MoverWins)
		assert.InDelta(t, w.MeanBranching, g.MeanBranching, 1e-9)
		assert.InDelta(t, w.StdBranching, g.StdBranching, 1e-9)
		assert.InDelta(t, w.MeanLegal, g.MeanLegal, 1e-9)
	}
}
