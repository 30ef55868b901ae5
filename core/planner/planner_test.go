package planner

import (
	"testing"

	"github.com/quasar-analytics/quasar/core/lp"
	"github.com/quasar-analytics/quasar/core/mapfunc"
	"github.com/quasar-analytics/quasar/core/planner/testutil"
	"github.com/quasar-analytics/quasar/core/qauth"
	"github.com/quasar-analytics/quasar/core/qscript"
	"github.com/quasar-analytics/quasar/core/qsu"
	"github.com/stretchr/testify/require"
)

func newTestContext() *Context {
	return NewContext(HostEffects{})
}

func TestLPtoQSCompilesAReadProjectPlan(t *testing.T) {
	ctx := newTestContext()
	plan := lp.Project(lp.ReadFile("orders.json"), mapfunc.Leaf(mapfunc.Hole{}))

	result, err := LPtoQS(ctx, NewBuilder(), plan)
	require.NoError(t, err)

	want := qscript.MapOp(qscript.ReadOp("orders.json"), mapfunc.Leaf(mapfunc.Hole{}))
	require.Empty(t, testutil.Diff(want, result.Tree), "compiled tree diverged from the expected shape")
}

func TestLPtoQSCompilesAGroupByPlan(t *testing.T) {
	ctx := newTestContext()
	hole := mapfunc.Leaf(mapfunc.Hole{})
	plan := &lp.LogicalPlan{
		Kind: lp.KindGroupBy,
		Src:  lp.ReadFile("orders.json"),
		Buckets: []mapfunc.Free[mapfunc.Hole]{
			mapfunc.ProjectKeyS(hole, "customer_id"),
		},
		Reducers: []lp.GroupReducer{
			{Name: "count", Arg: hole},
		},
	}

	result, err := LPtoQS(ctx, NewBuilder(), plan)
	require.NoError(t, err)

	want := qscript.ReduceOp(
		qscript.ReadOp("orders.json"),
		[]qscript.HoleExpr{mapfunc.ProjectKeyS(hole, "customer_id")},
		[]qscript.ReduceFunc{{Kind: qscript.ReduceCount, Arg: hole}},
		mapfunc.MakeMapS(indexKey(0), qscript.ReduceOutput(0)),
	)
	require.Empty(t, testutil.Diff(want, result.Tree), "compiled tree diverged from the expected shape")
}

func TestLPtoQSRejectsNilPlan(t *testing.T) {
	ctx := newTestContext()
	_, err := LPtoQS(ctx, NewBuilder(), nil)
	require.Error(t, err)
}

func TestBuilderInsertBeforeAndAfterPreserveOrdering(t *testing.T) {
	b := NewBuilder()
	marker := Rule{Name: "Marker", Run: func(ctx *Context, a qauth.AuthenticatedQSU) (qauth.AuthenticatedQSU, qsu.TreeIdentity, error) {
		return a, qsu.SameTree, nil
	}}
	b.InsertBefore("ExpandShifts", marker)

	rules := b.Build()
	var markerIdx, expandIdx int
	for i, r := range rules {
		if r.Name == "Marker" {
			markerIdx = i
		}
		if r.Name == "ExpandShifts" {
			expandIdx = i
		}
	}
	require.Equal(t, expandIdx-1, markerIdx)

	b2 := NewBuilder()
	b2.InsertAfter("ExpandShifts", marker)
	rules2 := b2.Build()
	for i, r := range rules2 {
		if r.Name == "Marker" {
			markerIdx = i
		}
		if r.Name == "ExpandShifts" {
			expandIdx = i
		}
	}
	require.Equal(t, expandIdx+1, markerIdx)
}

func buildReadMapGraph() (qauth.AuthenticatedQSU, qsu.Symbol, qsu.Symbol) {
	gen := qsu.NewNameGenerator()
	readSym := gen.Fresh()
	mapSym := gen.Fresh()
	g := qsu.Graph{Root: mapSym, Vertices: map[qsu.Symbol]qsu.Pattern{
		readSym: {Kind: qscript.KindRead, Path: "orders"},
		mapSym:  {Kind: qscript.KindMap, Src: readSym, Fn: mapfunc.Leaf(mapfunc.Hole{})},
	}}
	authed, err := qauth.ApplyProvenance(g)
	if err != nil {
		panic(err)
	}
	return authed, readSym, mapSym
}

func TestEliminateUnaryFoldsDoubleNot(t *testing.T) {
	ctx := newTestContext()
	gen := qsu.NewNameGenerator()
	filterSym := gen.Fresh()
	readSym := gen.Fresh()
	pred := mapfunc.Not(mapfunc.Not(mapfunc.Leaf(mapfunc.Hole{})))
	g := qsu.Graph{Root: filterSym, Vertices: map[qsu.Symbol]qsu.Pattern{
		readSym:   {Kind: qscript.KindRead, Path: "orders"},
		filterSym: {Kind: qscript.KindFilter, Src: readSym, Predicate: pred},
	}}
	authed, err := qauth.ApplyProvenance(g)
	require.NoError(t, err)

	out, same, err := eliminateUnary(ctx, authed)
	require.NoError(t, err)
	require.Equal(t, qsu.NewTree, same)
	require.True(t, out.Graph.Vertices[filterSym].Predicate.IsLeaf())
}

func TestRecognizeDistinctCollapsesIdentityMapOverFirstReduce(t *testing.T) {
	ctx := newTestContext()
	gen := qsu.NewNameGenerator()
	readSym := gen.Fresh()
	reduceSym := gen.Fresh()
	mapSym := gen.Fresh()
	hole := mapfunc.Leaf(mapfunc.Hole{})
	g := qsu.Graph{Root: mapSym, Vertices: map[qsu.Symbol]qsu.Pattern{
		readSym: {Kind: qscript.KindRead, Path: "orders"},
		reduceSym: {
			Kind: qscript.KindReduce, Src: readSym,
			Bucket:   []qscript.HoleExpr{hole},
			Reducers: []qscript.ReduceFunc{{Kind: qscript.ReduceFirst, Arg: hole}},
		},
		mapSym: {Kind: qscript.KindMap, Src: reduceSym, Fn: hole},
	}}
	authed, err := qauth.ApplyProvenance(g)
	require.NoError(t, err)

	out, same, err := recognizeDistinct(ctx, authed)
	require.NoError(t, err)
	require.Equal(t, qsu.NewTree, same)
	require.Equal(t, qscript.KindReduce, out.Graph.Vertices[mapSym].Kind)
}

func TestExtractFreeMapFusesNestedMaps(t *testing.T) {
	ctx := newTestContext()
	gen := qsu.NewNameGenerator()
	readSym := gen.Fresh()
	innerSym := gen.Fresh()
	outerSym := gen.Fresh()
	g := qsu.Graph{Root: outerSym, Vertices: map[qsu.Symbol]qsu.Pattern{
		readSym:  {Kind: qscript.KindRead, Path: "orders"},
		innerSym: {Kind: qscript.KindMap, Src: readSym, Fn: mapfunc.ProjectKeyS(mapfunc.Leaf(mapfunc.Hole{}), "a")},
		outerSym: {Kind: qscript.KindMap, Src: innerSym, Fn: mapfunc.ToString(mapfunc.Leaf(mapfunc.Hole{}))},
	}}
	authed, err := qauth.ApplyProvenance(g)
	require.NoError(t, err)

	out, same, err := extractFreeMap(ctx, authed)
	require.NoError(t, err)
	require.Equal(t, qsu.NewTree, same)

	fused := out.Graph.Vertices[outerSym]
	require.Equal(t, readSym, fused.Src)
	kind, ok := fused.Fn.Kind()
	require.True(t, ok)
	require.Equal(t, mapfunc.KindToString, kind)
}

func TestReifyBucketsCombinesMultipleBucketsIntoOne(t *testing.T) {
	ctx := newTestContext()
	gen := qsu.NewNameGenerator()
	readSym := gen.Fresh()
	reduceSym := gen.Fresh()
	hole := mapfunc.Leaf(mapfunc.Hole{})
	g := qsu.Graph{Root: reduceSym, Vertices: map[qsu.Symbol]qsu.Pattern{
		readSym: {Kind: qscript.KindRead, Path: "orders"},
		reduceSym: {
			Kind: qscript.KindReduce, Src: readSym,
			Bucket: []qscript.HoleExpr{
				mapfunc.ProjectKeyS(hole, "a"),
				mapfunc.ProjectKeyS(hole, "b"),
			},
		},
	}}
	authed, err := qauth.ApplyProvenance(g)
	require.NoError(t, err)

	out, same, err := reifyBuckets(ctx, authed)
	require.NoError(t, err)
	require.Equal(t, qsu.NewTree, same)
	require.Len(t, out.Graph.Vertices[reduceSym].Bucket, 1)
}

func TestResolveOwnIdentitiesRejectsIncompleteProvenance(t *testing.T) {
	ctx := newTestContext()
	authed, _, mapSym := buildReadMapGraph()
	broken := qauth.NewMap().Set(mapSym, qauth.Void())
	_, _, err := resolveOwnIdentities(ctx, qauth.AuthenticatedQSU{Graph: authed.Graph, Auth: broken})
	require.Error(t, err)
}

func TestReifyIdentitiesPromotesLiveShiftedReadAxis(t *testing.T) {
	ctx := newTestContext()
	gen := qsu.NewNameGenerator()
	readSym := gen.Fresh()
	g := qsu.Graph{Root: readSym, Vertices: map[qsu.Symbol]qsu.Pattern{
		readSym: {Kind: qscript.KindShiftedRead, Path: "orders", IDStatus: qscript.ExcludeId},
	}}
	authed, err := qauth.ApplyProvenance(g)
	require.NoError(t, err)

	researched, err := ReifyIdentities(ctx, authed)
	require.NoError(t, err)
	require.Equal(t, qscript.IncludeId, researched.Auth.Graph.Vertices[readSym].IDStatus)
	require.Equal(t, readSym, researched.OwnIdentity[readSym])
}

func TestExpandShiftsLowersMultiLeftShiftIntoASingleChain(t *testing.T) {
	ctx := newTestContext()
	gen := qsu.NewNameGenerator()
	readSym := gen.Fresh()
	shiftSym := gen.Fresh()
	hole := mapfunc.Leaf(mapfunc.Hole{})

	shifts := []qscript.ShiftEntry{
		{Struct: mapfunc.ProjectKeyS(hole, "a"), IDStatus: qscript.ExcludeId, Rotation: qscript.RotationShiftArray},
		{Struct: mapfunc.ProjectKeyS(hole, "b"), IDStatus: qscript.ExcludeId, Rotation: qscript.RotationShiftMap},
	}
	repair := qscript.ShiftLeftLeaf()

	g := qsu.Graph{Root: shiftSym, Vertices: map[qsu.Symbol]qsu.Pattern{
		readSym:  {Kind: qscript.KindRead, Path: "orders"},
		shiftSym: {Kind: qscript.KindMultiLeftShift, Src: readSym, Shifts: shifts, ShiftRepair: repair},
	}}
	authed, err := qauth.ApplyProvenance(g)
	require.NoError(t, err)

	out, same, err := expandShiftsRule(ctx, authed)
	require.NoError(t, err)
	require.Equal(t, qsu.NewTree, same)
	require.NoError(t, qsu.CheckInvariants(out.Graph))

	for sym := range qsu.Reachable(out.Graph) {
		require.NotEqual(t, qscript.KindMultiLeftShift, out.Graph.Vertices[sym].Kind,
			"ExpandShifts must not leave any MultiLeftShift node behind")
	}

	require.Equal(t, qscript.KindMap, out.Graph.Vertices[shiftSym].Kind,
		"the original symbol keeps its identity as the final projecting Map")

	// S4: RotationShiftArray and RotationShiftMap belong to different
	// ShiftType families, so the induction step's repair is the raw
	// repairK expression, with no Cond identity guard wrapped around it.
	final := out.Graph.Vertices[shiftSym]
	last := out.Graph.Vertices[final.Src]
	require.Equal(t, qscript.KindLeftShift, last.Kind)
	kind, ok := last.Repair.Kind()
	require.True(t, ok, "incompatible rotations must not leave the repair a bare leaf")
	require.NotEqual(t, mapfunc.KindCond, kind,
		"incompatible rotations must not install the identity guard")
}

func TestExpandShiftsCompatibleRotationsInstallIdentityGuard(t *testing.T) {
	ctx := newTestContext()
	gen := qsu.NewNameGenerator()
	readSym := gen.Fresh()
	shiftSym := gen.Fresh()
	hole := mapfunc.Leaf(mapfunc.Hole{})

	// ShiftArray and FlattenArray share a ShiftType family, so the second
	// shift's repair must be wrapped in the Cond(Eq(...), repairK,
	// Undefined) identity guard (spec.md §8 scenario S3).
	shifts := []qscript.ShiftEntry{
		{Struct: mapfunc.ProjectKeyS(hole, "a"), IDStatus: qscript.ExcludeId, Rotation: qscript.RotationShiftArray},
		{Struct: mapfunc.ProjectKeyS(hole, "b"), IDStatus: qscript.ExcludeId, Rotation: qscript.RotationFlattenArray},
	}
	repair := qscript.ShiftLeftLeaf()

	g := qsu.Graph{Root: shiftSym, Vertices: map[qsu.Symbol]qsu.Pattern{
		readSym:  {Kind: qscript.KindRead, Path: "orders"},
		shiftSym: {Kind: qscript.KindMultiLeftShift, Src: readSym, Shifts: shifts, ShiftRepair: repair},
	}}
	authed, err := qauth.ApplyProvenance(g)
	require.NoError(t, err)

	out, same, err := expandShiftsRule(ctx, authed)
	require.NoError(t, err)
	require.Equal(t, qsu.NewTree, same)
	require.NoError(t, qsu.CheckInvariants(out.Graph))

	final := out.Graph.Vertices[shiftSym]
	require.Equal(t, qscript.KindMap, final.Kind)
	last := out.Graph.Vertices[final.Src]
	require.Equal(t, qscript.KindLeftShift, last.Kind)

	kind, ok := last.Repair.Kind()
	require.True(t, ok)
	require.Equal(t, mapfunc.KindCond, kind, "compatible rotations must install the identity guard")

	node, ok := last.Repair.AsNode()
	require.True(t, ok)
	require.Len(t, node.Children, 3, "Cond(pred, ifTrue, ifFalse)")

	guardKind, ok := node.Children[0].Kind()
	require.True(t, ok)
	require.Equal(t, mapfunc.KindEq, guardKind, "the guard compares the previous and new shift's identity")

	fallbackKind, ok := node.Children[2].Kind()
	require.True(t, ok)
	require.Equal(t, mapfunc.KindUndefined, fallbackKind, "the cross product collapses to Undefined when the guard fails")
}

func TestExpandShiftsReindexesOutOfOrderShifts(t *testing.T) {
	ctx := newTestContext()
	gen := qsu.NewNameGenerator()
	readSym := gen.Fresh()
	shiftSym := gen.Fresh()
	hole := mapfunc.Leaf(mapfunc.Hole{})

	// Input order is [ShiftMap, ShiftArray, ShiftMap] (original indices
	// 0, 1, 2). The stable sort by Rotation.Less groups the two ShiftMap
	// entries (original 0, then 2) ahead of the ShiftArray entry
	// (original 1), so the final mapper must translate a ShiftRight(1)
	// reference in the caller's repair into sorted slot "2", not "1"
	// (spec.md §8 scenario S5, §9 open question 1's sortedPosOf).
	shifts := []qscript.ShiftEntry{
		{Struct: mapfunc.ProjectKeyS(hole, "a"), IDStatus: qscript.ExcludeId, Rotation: qscript.RotationShiftMap},
		{Struct: mapfunc.ProjectKeyS(hole, "b"), IDStatus: qscript.ExcludeId, Rotation: qscript.RotationShiftArray},
		{Struct: mapfunc.ProjectKeyS(hole, "c"), IDStatus: qscript.ExcludeId, Rotation: qscript.RotationShiftMap},
	}
	repair := qscript.ShiftRightLeaf(1)

	g := qsu.Graph{Root: shiftSym, Vertices: map[qsu.Symbol]qsu.Pattern{
		readSym:  {Kind: qscript.KindRead, Path: "orders"},
		shiftSym: {Kind: qscript.KindMultiLeftShift, Src: readSym, Shifts: shifts, ShiftRepair: repair},
	}}
	authed, err := qauth.ApplyProvenance(g)
	require.NoError(t, err)

	out, same, err := expandShiftsRule(ctx, authed)
	require.NoError(t, err)
	require.Equal(t, qsu.NewTree, same)
	require.NoError(t, qsu.CheckInvariants(out.Graph))

	final := out.Graph.Vertices[shiftSym]
	require.Equal(t, qscript.KindMap, final.Kind)

	want := mapfunc.ProjectKeyS[mapfunc.Hole](mapfunc.Leaf(mapfunc.Hole{}), "2")
	require.Empty(t, testutil.Diff(want, final.Fn),
		"ShiftRight(1) must reindex through sortedPosOf to sorted slot 2")
}

func TestExpandShiftsDegradesEmptyShiftListToItsSource(t *testing.T) {
	ctx := newTestContext()
	gen := qsu.NewNameGenerator()
	readSym := gen.Fresh()
	shiftSym := gen.Fresh()
	g := qsu.Graph{Root: shiftSym, Vertices: map[qsu.Symbol]qsu.Pattern{
		readSym:  {Kind: qscript.KindRead, Path: "orders"},
		shiftSym: {Kind: qscript.KindMultiLeftShift, Src: readSym},
	}}
	authed, err := qauth.ApplyProvenance(g)
	require.NoError(t, err)

	out, _, err := expandShiftsRule(ctx, authed)
	require.NoError(t, err)
	require.Equal(t, qscript.KindRead, out.Graph.Vertices[shiftSym].Kind)
}

func TestGraduateRejectsLeakedIntermediateConstructs(t *testing.T) {
	ctx := newTestContext()
	gen := qsu.NewNameGenerator()
	readSym := gen.Fresh()
	shiftSym := gen.Fresh()
	g := qsu.Graph{Root: shiftSym, Vertices: map[qsu.Symbol]qsu.Pattern{
		readSym:  {Kind: qscript.KindRead, Path: "orders"},
		shiftSym: {Kind: qscript.KindMultiLeftShift, Src: readSym},
	}}
	authed, err := qauth.ApplyProvenance(g)
	require.NoError(t, err)
	researched, err := ReifyIdentities(ctx, authed)
	require.NoError(t, err)

	_, err = Graduate(ctx, researched)
	require.Error(t, err)
}

func TestGraduateThenReadEducatedIsIdempotent(t *testing.T) {
	ctx := newTestContext()
	plan := lp.Project(lp.ReadFile("orders.json"), mapfunc.Leaf(mapfunc.Hole{}))
	result, err := LPtoQS(ctx, NewBuilder(), plan)
	require.NoError(t, err)

	g2 := ReadEducated(result.Tree)
	authed2, err := qauth.ApplyProvenance(g2)
	require.NoError(t, err)
	researched2, err := ReifyIdentities(ctx, authed2)
	require.NoError(t, err)
	result2, err := Graduate(ctx, researched2)
	require.NoError(t, err)

	require.Equal(t, result.Tree.Node.Kind, result2.Tree.Node.Kind)
	require.Equal(t, result.Tree.Node.Src.Node.Kind, result2.Tree.Node.Src.Node.Kind)
	require.Equal(t, result.Tree.Node.Src.Node.Path, result2.Tree.Node.Src.Node.Path)
}
