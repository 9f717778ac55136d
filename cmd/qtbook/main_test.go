package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/muesli/termenv"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/quantikbook/internal/config"
	"github.com/yourusername/quantikbook/internal/quantik"
	"github.com/yourusername/quantikbook/internal/symmetry"
	"github.com/yourusername/quantikbook/pkg/book"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.Disabled)
	os.Exit(m.Run())
}

// opponentEngine reports every legal action as a win for the opponent, so a
// full-depth tree builds without solving.
type opponentEngine struct {
	*quantik.State
}

func (e opponentEngine) WinningMoves() quantik.Outcomes {
	out := quantik.IllegalOutcomes()
	for _, a := range e.LegalActions() {
		out[a.Index()] = uint8(e.Player().Opponent())
	}
	return out
}

func stubTree(t *testing.T) (*book.Tree, *symmetry.Group) {
	t.Helper()
	group, err := symmetry.Default()
	require.NoError(t, err)
	tree, err := buildTree(opponentEngine{quantik.NewState()}, group, book.DefaultMaxDepth)
	require.NoError(t, err)
	return tree, group
}

func TestRenderTable(t *testing.T) {
	table := quantik.IllegalOutcomes()
	table[quantik.Action{Row: 0, Col: 0, Shape: 1}.Index()] = 0
	table[quantik.Action{Row: 0, Col: 1, Shape: 1}.Index()] = 1
	table[quantik.Action{Row: 3, Col: 2, Shape: 4}.Index()] = 1

	var buf bytes.Buffer
	o := termenv.NewOutput(&buf, termenv.WithProfile(termenv.Ascii))
	renderTable(o, quantik.Board{}, 0, table)

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "[....]\n"))
	assert.Contains(t, out, "to move: 0, winner: 0, legal: 3\n")
	assert.Contains(t, out, "shape 0\n  w l . .\n  . . . .\n")
	assert.Contains(t, out, "shape 3\n  . . . .\n  . . . .\n  . . . .\n  . . l .\n")
	assert.Equal(t, []string{"000"}, winningMoves(table, 0))
	assert.Equal(t, []string{"010", "323"}, winningMoves(table, 1))
}

func TestRenderTableColors(t *testing.T) {
	table := quantik.IllegalOutcomes()
	table[0] = 0

	var buf bytes.Buffer
	o := termenv.NewOutput(&buf, termenv.WithProfile(termenv.ANSI))
	renderTable(o, quantik.Board{}, 0, table)
	assert.Contains(t, buf.String(), "\x1b[")
}

func TestPrintSummary(t *testing.T) {
	tree, group := stubTree(t)

	var buf bytes.Buffer
	require.NoError(t, printSummary(&buf, book.Summarize(tree, group)))

	out := buf.String()
	assert.Contains(t, out, "nodes: 131  symmetries: 128  bytes: 10956")
	assert.Contains(t, out, "depth")
	assert.Equal(t, 2+4, strings.Count(out, "\n"))
}

func TestWriteArtifactsAndBinarize(t *testing.T) {
	tree, group := stubTree(t)
	dir := filepath.Join(t.TempDir(), "out")

	require.NoError(t, writeArtifacts(dir, group, tree, true))
	for _, name := range []string{bookFile, treeFile, symmetriesFile, dotFile} {
		assert.FileExists(t, filepath.Join(dir, name))
	}
	info, err := os.Stat(filepath.Join(dir, bookFile))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())

	built, err := os.ReadFile(filepath.Join(dir, bookFile))
	require.NoError(t, err)
	assert.Len(t, built, book.EncodedSize(128, 131))

	// re-encoding the checkpoints reproduces the book byte for byte
	again := filepath.Join(t.TempDir(), "again.bin")
	require.NoError(t, binarize(filepath.Join(dir, treeFile), filepath.Join(dir, symmetriesFile), again))
	rebuilt, err := os.ReadFile(again)
	require.NoError(t, err)
	assert.Equal(t, built, rebuilt)
}

func TestWriteArtifactsWithoutDOT(t *testing.T) {
	tree, group := stubTree(t)
	dir := t.TempDir()

	require.NoError(t, writeArtifacts(dir, group, tree, false))
	assert.NoFileExists(t, filepath.Join(dir, dotFile))
}

func TestBinarizeErrors(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, "missing.json")
	assert.Error(t, binarize(missing, missing, filepath.Join(dir, "book.bin")))

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0o644))
	assert.Error(t, binarize(bad, bad, filepath.Join(dir, "book.bin")))
	assert.NoFileExists(t, filepath.Join(dir, "book.bin"))
}

func TestPrintSymmetries(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printSymmetries(&buf, nil, false))
	assert.Equal(t, "order: 128\norbit: 0 1 2 3 4 5 6 7 8 9 10 11 12 13 14 15\n", buf.String())

	buf.Reset()
	require.NoError(t, printSymmetries(&buf, []int{0}, false))
	assert.Contains(t, buf.String(), "order: 8\n")
	assert.Contains(t, buf.String(), "orbit: 1 4\n")
	assert.Contains(t, buf.String(), "orbit: 10 11 14 15\n")

	buf.Reset()
	require.NoError(t, printSymmetries(&buf, nil, true))
	var perms [][]int
	require.NoError(t, json.Unmarshal(buf.Bytes(), &perms))
	assert.Len(t, perms, 128)

	assert.Error(t, printSymmetries(&buf, []int{16}, false))
}

func TestEvaluate(t *testing.T) {
	tree, group := stubTree(t)
	dir := t.TempDir()
	require.NoError(t, writeArtifacts(dir, group, tree, false))

	bk, err := loadBook(filepath.Join(dir, bookFile))
	require.NoError(t, err)
	require.NotNil(t, bk)

	history, err := quantik.ParseMoves("000 121")
	require.NoError(t, err)
	st := quantik.NewState()
	require.NoError(t, st.Play(history))

	table, source, err := evaluate(context.Background(), bk, st, history, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, "book", source)
	assert.Equal(t, len(st.LegalActions()), table.Legal())

	// past the horizon the position is solved
	history, err = quantik.ParseMoves("231 020 310 033 222 120 111 002 103 302")
	require.NoError(t, err)
	st = quantik.NewState()
	require.NoError(t, st.Play(history))

	table, source, err = evaluate(context.Background(), bk, st, history, 1<<12, 2)
	require.NoError(t, err)
	assert.Equal(t, "solver", source)
	assert.Equal(t, []string{"210", "132", "203", "213", "323"}, winningMoves(table, st.Player()))
}

func TestEvaluateTimeout(t *testing.T) {
	st := quantik.NewState()
	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	defer cancel()

	_, _, err := evaluate(ctx, nil, st, nil, 0, 1)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestLoadBookMissing(t *testing.T) {
	bk, err := loadBook(filepath.Join(t.TempDir(), "none.bin"))
	assert.NoError(t, err)
	assert.Nil(t, bk)

	bk, err = loadBook("")
	assert.NoError(t, err)
	assert.Nil(t, bk)

	corrupt := filepath.Join(t.TempDir(), "corrupt.bin")
	require.NoError(t, os.WriteFile(corrupt, []byte("short"), 0o644))
	_, err = loadBook(corrupt)
	assert.Error(t, err)
}

func TestAPIConfig(t *testing.T) {
	sc := config.Default().Server
	sc.Port = 9999
	sc.SolverWorkers = 3

	ac := apiConfig(sc)
	assert.Equal(t, 9999, ac.Port)
	assert.Equal(t, 3, ac.SolverWorkers)
	assert.Equal(t, sc.SolveTimeout, ac.SolveTimeout)
	assert.Equal(t, sc.MaxSlowWorkers, ac.MaxSlowWorkers)
}

func TestSetupAppliesLogLevel(t *testing.T) {
	configPath = ""
	logLevel = "debug"
	t.Cleanup(func() {
		logLevel = ""
		zerolog.SetGlobalLevel(zerolog.Disabled)
	})

	require.NoError(t, setup(rootCmd, nil))
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())

	logLevel = "loud"
	assert.Error(t, setup(rootCmd, nil))
}
