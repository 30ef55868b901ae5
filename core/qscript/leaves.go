package qscript

import "github.com/quasar-analytics/quasar/core/mapfunc"

// JoinSide discriminates the leaves of a JoinFunc (a LeftShift, ThetaJoin
// or EquiJoin repair/combine expression): either the left target (the
// pre-shift or left-branch row), the right target (the shifted value, or
// right-branch row), or an access into a provenance-tagged projection of
// the left target.
type JoinSide int

const (
	LeftTarget JoinSide = iota
	RightTarget
	AccessLeftTargetSide
)

// JoinLeaf is the leaf type of a JoinFunc. AccessLeftTargetSide carries an
// access expression describing which projection of the left target's
// identity is being read.
type JoinLeaf struct {
	Side   JoinSide
	Access JoinFunc
}

// JoinFunc is a scalar expression whose leaves reference the left/right
// sides of a shift or join repair.
type JoinFunc = mapfunc.Free[JoinLeaf]

// LeftTargetLeaf builds a JoinFunc leaf referencing the pre-shift/left
// row itself.
func LeftTargetLeaf() JoinFunc { return mapfunc.Leaf(JoinLeaf{Side: LeftTarget}) }

// RightTargetLeaf builds a JoinFunc leaf referencing the shifted
// value/right row.
func RightTargetLeaf() JoinFunc { return mapfunc.Leaf(JoinLeaf{Side: RightTarget}) }

// AccessLeftTarget builds a JoinFunc leaf projecting access out of the
// left target's provenance-tagged identity.
func AccessLeftTarget(access JoinFunc) JoinFunc {
	return mapfunc.Leaf(JoinLeaf{Side: AccessLeftTargetSide, Access: access})
}

// ShiftLeafSide discriminates the leaves of a MultiLeftShift repair: the
// original row, or the i-th shifted value.
type ShiftLeafSide int

const (
	ShiftLeft ShiftLeafSide = iota
	ShiftRight
)

// ShiftLeaf is the leaf type of a MultiLeftShift repair.
type ShiftLeaf struct {
	Side  ShiftLeafSide
	Index int // meaningful only when Side == ShiftRight
}

// ShiftRepairFunc is a scalar expression over Left(())|Right(i) leaves.
type ShiftRepairFunc = mapfunc.Free[ShiftLeaf]

// ShiftLeftLeaf builds the Left(()) leaf of a MultiLeftShift repair.
func ShiftLeftLeaf() ShiftRepairFunc { return mapfunc.Leaf(ShiftLeaf{Side: ShiftLeft}) }

// ShiftRightLeaf builds the Right(i) leaf of a MultiLeftShift repair.
func ShiftRightLeaf(i int) ShiftRepairFunc {
	return mapfunc.Leaf(ShiftLeaf{Side: ShiftRight, Index: i})
}

// ReduceLeaf is the leaf type of a Reduce repair: a reference to the
// output of the i-th reducer.
type ReduceLeaf struct {
	Index int
}

// ReduceRepairFunc is a scalar expression referencing reducer outputs by
// index.
type ReduceRepairFunc = mapfunc.Free[ReduceLeaf]

// ReduceOutput builds a ReduceRepairFunc leaf referencing the i-th
// reducer's output.
func ReduceOutput(i int) ReduceRepairFunc { return mapfunc.Leaf(ReduceLeaf{Index: i}) }
