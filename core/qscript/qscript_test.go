package qscript

import (
	"testing"

	"github.com/quasar-analytics/quasar/core/mapfunc"
	"github.com/stretchr/testify/require"
)

func TestChildCarriersMatchesKindArity(t *testing.T) {
	tests := []struct {
		name string
		tree Fix
		want int
	}{
		{"Map has one child", MapOp(ReadOp("a"), mapfunc.Leaf(mapfunc.Hole{})), 1},
		{"Filter has one child", FilterOp(ReadOp("a"), mapfunc.Leaf(mapfunc.Hole{})), 1},
		{"Subset has two children", SubsetOpNode(ReadOp("a"), HoleOp(), Take, mapfunc.Constant[mapfunc.Hole](1)), 2},
		{"Union has three children", UnionOp(ReadOp("a"), HoleOp(), HoleOp()), 3},
		{"ThetaJoin has three children", ThetaJoinOp(ReadOp("a"), HoleOp(), HoleOp(), LeftTargetLeaf(), Inner, LeftTargetLeaf()), 3},
		{"Read has no children", ReadOp("a"), 0},
		{"Root has no children", RootOp(), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Len(t, tt.tree.Children(), tt.want)
		})
	}
}

func TestWithChildCarriersRoundTrips(t *testing.T) {
	src := ReadOp("orders")
	tree := MapOp(src, mapfunc.Leaf(mapfunc.Hole{}))

	replacement := ReadOp("customers")
	rebuilt := tree.Node.WithChildCarriers([]Fix{replacement})

	require.Equal(t, KindMap, rebuilt.Kind)
	require.Equal(t, "customers", rebuilt.Src.Node.Path)
}

func TestKindStringNamesEveryDeclaredKind(t *testing.T) {
	for k, name := range kindNames {
		require.Equal(t, name, k.String())
	}
	require.Equal(t, "Unknown", Kind(9999).String())
}

func TestRotationsCompatiblePartitionsIntoArrayAndMap(t *testing.T) {
	tests := []struct {
		a, b Rotation
		want bool
	}{
		{RotationShiftArray, RotationFlattenArray, true},
		{RotationShiftMap, RotationFlattenMap, true},
		{RotationShiftArray, RotationShiftMap, false},
		{RotationFlattenArray, RotationFlattenMap, false},
		{RotationShiftArray, RotationShiftArray, true},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, RotationsCompatible(tt.a, tt.b), "%s vs %s", tt.a, tt.b)
	}
}

func TestRotationLessIsATotalOrder(t *testing.T) {
	all := []Rotation{RotationShiftMap, RotationShiftArray, RotationFlattenMap, RotationFlattenArray}
	for i := range all {
		require.False(t, all[i].Less(all[i]), "irreflexive")
		for j := range all {
			if i == j {
				continue
			}
			require.NotEqual(t, all[i].Less(all[j]), all[j].Less(all[i]), "antisymmetric")
		}
	}
}

func TestJoinLeafConstructorsTagTheRightSide(t *testing.T) {
	l, ok := LeftTargetLeaf().AsLeaf()
	require.True(t, ok)
	require.Equal(t, LeftTarget, l.Side)

	r, ok := RightTargetLeaf().AsLeaf()
	require.True(t, ok)
	require.Equal(t, RightTarget, r.Side)

	a, ok := AccessLeftTarget(RightTargetLeaf()).AsLeaf()
	require.True(t, ok)
	require.Equal(t, AccessLeftTargetSide, a.Side)
}

func TestShiftLeafIndexCarriesThroughConstruction(t *testing.T) {
	left, ok := ShiftLeftLeaf().AsLeaf()
	require.True(t, ok)
	require.Equal(t, ShiftLeft, left.Side)

	right, ok := ShiftRightLeaf(3).AsLeaf()
	require.True(t, ok)
	require.Equal(t, ShiftRight, right.Side)
	require.Equal(t, 3, right.Index)
}
