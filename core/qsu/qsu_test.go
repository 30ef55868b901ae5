package qsu

import (
	"errors"
	"testing"

	"github.com/quasar-analytics/quasar/core/identity"
	"github.com/quasar-analytics/quasar/core/qscript"
	"github.com/stretchr/testify/require"
)

func TestNameGeneratorNeverRepeats(t *testing.T) {
	gen := NewNameGenerator()
	seen := make(map[Symbol]bool)
	for i := 0; i < 100; i++ {
		sym := gen.Fresh()
		require.False(t, seen[sym], "symbol %s reused", sym)
		seen[sym] = true
	}
}

func TestNameGeneratorsDoNotCollideAcrossInstances(t *testing.T) {
	a, b := NewNameGenerator(), NewNameGenerator()
	for i := 0; i < 10; i++ {
		require.NotEqual(t, a.Fresh(), b.Fresh())
	}
}

func readGraph(gen *NameGenerator, path string) (Graph, Symbol) {
	sym := gen.Fresh()
	g := Graph{Root: sym, Vertices: map[Symbol]Pattern{
		sym: {Kind: qscript.KindRead, Path: path},
	}}
	return g, sym
}

func TestMergeCombinesDisjointGraphs(t *testing.T) {
	gen := NewNameGenerator()
	a, aRoot := readGraph(gen, "orders")
	b, bRoot := readGraph(gen, "customers")

	merged, err := Merge(a, b)
	require.NoError(t, err)
	require.Equal(t, a.Root, merged.Root)
	require.Len(t, merged.Vertices, 2)
	require.Contains(t, merged.Vertices, aRoot)
	require.Contains(t, merged.Vertices, bRoot)
}

func TestMergeAcceptsIdenticalCoincidentPatterns(t *testing.T) {
	gen := NewNameGenerator()
	a, root := readGraph(gen, "orders")
	b := Graph{Root: root, Vertices: map[Symbol]Pattern{root: a.Vertices[root]}}

	merged, err := Merge(a, b)
	require.NoError(t, err)
	require.Len(t, merged.Vertices, 1)
}

func TestMergeRejectsConflictingCoincidentPatterns(t *testing.T) {
	gen := NewNameGenerator()
	a, root := readGraph(gen, "orders")
	b := Graph{Root: root, Vertices: map[Symbol]Pattern{
		root: {Kind: qscript.KindRead, Path: "customers"},
	}}

	_, err := Merge(a, b)
	require.Error(t, err)
}

func TestOverwriteAtRootReplacesOnlyRoot(t *testing.T) {
	gen := NewNameGenerator()
	g, root := readGraph(gen, "orders")

	rewritten := g.OverwriteAtRoot(Pattern{Kind: qscript.KindRead, Path: "customers"})
	require.Equal(t, root, rewritten.Root)
	require.Equal(t, "customers", rewritten.Vertices[root].Path)
}

func TestRootedRepointsRootWithoutTouchingVertices(t *testing.T) {
	gen := NewNameGenerator()
	a, aRoot := readGraph(gen, "orders")
	b, bRoot := readGraph(gen, "customers")
	merged, err := Merge(a, b)
	require.NoError(t, err)

	rerooted := merged.Rooted(bRoot)
	require.Equal(t, bRoot, rerooted.Root)
	require.Len(t, rerooted.Vertices, 2)
	require.Equal(t, aRoot, aRoot) // aRoot still present, unreachable but not deleted
	require.Contains(t, rerooted.Vertices, aRoot)
}

func TestGenerateRevIndexTracksReferrers(t *testing.T) {
	gen := NewNameGenerator()
	readG, readSym := readGraph(gen, "orders")
	mapSym := gen.Fresh()
	g := Graph{Root: mapSym, Vertices: map[Symbol]Pattern{
		readSym: readG.Vertices[readSym],
		mapSym:  {Kind: qscript.KindMap, Src: readSym},
	}}

	idx := GenerateRevIndex(g)
	require.Equal(t, []Symbol{mapSym}, idx[readSym])
}

func TestRewriteMAppliesBottomUpAndReportsIdentity(t *testing.T) {
	gen := NewNameGenerator()
	readG, readSym := readGraph(gen, "orders")
	mapSym := gen.Fresh()
	g := Graph{Root: mapSym, Vertices: map[Symbol]Pattern{
		readSym: readG.Vertices[readSym],
		mapSym:  {Kind: qscript.KindMap, Src: readSym},
	}}

	out, same, err := RewriteM(g, func(sym Symbol, p Pattern) (Pattern, bool, error) {
		if p.Kind == qscript.KindRead {
			p.Path = p.Path + "!"
			return p, true, nil
		}
		return p, false, nil
	})
	require.NoError(t, err)
	require.Equal(t, identity.New, same)
	require.Equal(t, "orders!", out.Vertices[readSym].Path)

	out2, same2, err := RewriteM(g, func(Symbol, Pattern) (Pattern, bool, error) {
		return Pattern{}, false, nil
	})
	require.NoError(t, err)
	require.Equal(t, identity.Same, same2)
	require.Equal(t, g.Vertices, out2.Vertices)
}

func TestReachableVisitsEveryVertexOnce(t *testing.T) {
	gen := NewNameGenerator()
	readG, readSym := readGraph(gen, "orders")
	mapSym := gen.Fresh()
	g := Graph{Root: mapSym, Vertices: map[Symbol]Pattern{
		readSym: readG.Vertices[readSym],
		mapSym:  {Kind: qscript.KindMap, Src: readSym},
	}}

	reachable := Reachable(g)
	require.Len(t, reachable, 2)
	require.True(t, reachable[readSym])
	require.True(t, reachable[mapSym])
}

func TestCheckInvariantsCatchesDanglingReference(t *testing.T) {
	gen := NewNameGenerator()
	mapSym := gen.Fresh()
	g := Graph{Root: mapSym, Vertices: map[Symbol]Pattern{
		mapSym: {Kind: qscript.KindMap, Src: gen.Fresh()},
	}}
	require.Error(t, CheckInvariants(g))
}

func TestCheckInvariantsAcceptsWellFormedGraph(t *testing.T) {
	gen := NewNameGenerator()
	readG, readSym := readGraph(gen, "orders")
	mapSym := gen.Fresh()
	g := Graph{Root: mapSym, Vertices: map[Symbol]Pattern{
		readSym: readG.Vertices[readSym],
		mapSym:  {Kind: qscript.KindMap, Src: readSym},
	}}
	require.NoError(t, CheckInvariants(g))
}

func TestParallelRewritePreservesOrderAndPropagatesErrors(t *testing.T) {
	gen := NewNameGenerator()
	syms := []Symbol{gen.Fresh(), gen.Fresh(), gen.Fresh()}

	out, err := ParallelRewrite(syms, func(sym Symbol) (string, error) {
		return string(sym) + "-done", nil
	})
	require.NoError(t, err)
	for i, sym := range syms {
		require.Equal(t, string(sym)+"-done", out[i])
	}

	_, err = ParallelRewrite(syms, func(sym Symbol) (string, error) {
		if sym == syms[1] {
			return "", errors.New("boom")
		}
		return "ok", nil
	})
	require.Error(t, err)
}
