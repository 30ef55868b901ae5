package qscript

// IdStatus reports whether a Read/LeftShift yields the value, the
// identity, or both, per the GLOSSARY.
type IdStatus int

const (
	IncludeId IdStatus = iota
	ExcludeId
	IdOnly
)

func (s IdStatus) String() string {
	switch s {
	case IncludeId:
		return "IncludeId"
	case ExcludeId:
		return "ExcludeId"
	case IdOnly:
		return "IdOnly"
	default:
		return "Unknown"
	}
}

// ShiftType is the public coarsening of Rotation carried on LeftShift:
// does the shifted struct unnest an array or a map.
type ShiftType int

const (
	ShiftTypeArray ShiftType = iota
	ShiftTypeMap
)

func (s ShiftType) String() string {
	if s == ShiftTypeArray {
		return "Array"
	}
	return "Map"
}

// Rotation is the internal four-way shift mode, needed for the
// compatibility rule ExpandShifts applies between adjacent shifts (§4.6).
// ShiftType is the two-way public coarsening carried on the finished
// LeftShift node.
type Rotation int

const (
	RotationShiftMap Rotation = iota
	RotationShiftArray
	RotationFlattenMap
	RotationFlattenArray
)

// rotationOrder fixes the total order used to sort shifts in ExpandShifts
// step 1. The exact order is not semantically meaningful (any total order
// is equally correct, per spec.md §4.6 step 1); what matters is that it
// is total and that Sort is stable, so it is declared once, here.
var rotationOrder = map[Rotation]int{
	RotationShiftMap:     0,
	RotationShiftArray:   1,
	RotationFlattenMap:   2,
	RotationFlattenArray: 3,
}

// Less implements the total order over Rotation used to sort a
// MultiLeftShift's shifts (spec.md §4.6 step 1).
func (r Rotation) Less(other Rotation) bool {
	return rotationOrder[r] < rotationOrder[other]
}

// ShiftType returns the public two-way coarsening of r.
func (r Rotation) ShiftType() ShiftType {
	switch r {
	case RotationShiftArray, RotationFlattenArray:
		return ShiftTypeArray
	default:
		return ShiftTypeMap
	}
}

func (r Rotation) String() string {
	switch r {
	case RotationShiftMap:
		return "ShiftMap"
	case RotationShiftArray:
		return "ShiftArray"
	case RotationFlattenMap:
		return "FlattenMap"
	case RotationFlattenArray:
		return "FlattenArray"
	default:
		return "Unknown"
	}
}

// RotationsCompatible groups {FlattenArray, ShiftArray} as compatible with
// each other, and {FlattenMap, ShiftMap} with each other; no other pairs
// are compatible. This is reflexive, symmetric, and partitions Rotation
// into exactly {array, map} (spec.md §8 property 6).
func RotationsCompatible(a, b Rotation) bool {
	return a.ShiftType() == b.ShiftType()
}

// JoinType enumerates the four join kinds ThetaJoin/EquiJoin support.
type JoinType int

const (
	Inner JoinType = iota
	LeftOuter
	RightOuter
	FullOuter
)

func (j JoinType) String() string {
	switch j {
	case Inner:
		return "Inner"
	case LeftOuter:
		return "LeftOuter"
	case RightOuter:
		return "RightOuter"
	case FullOuter:
		return "FullOuter"
	default:
		return "Unknown"
	}
}

// SubsetOp enumerates Subset's three operations.
type SubsetOp int

const (
	Take SubsetOp = iota
	Drop
	Sample
)

func (o SubsetOp) String() string {
	switch o {
	case Take:
		return "Take"
	case Drop:
		return "Drop"
	case Sample:
		return "Sample"
	default:
		return "Unknown"
	}
}

// SortDir is one Sort bucket's direction.
type SortDir int

const (
	Asc SortDir = iota
	Desc
)

func (d SortDir) String() string {
	if d == Asc {
		return "Asc"
	}
	return "Desc"
}

// ReduceFuncKind enumerates the aggregate functions a Reduce bucket can
// apply. The exact catalog of aggregates is a backend planning concern;
// the core only needs to carry the tag and the argument expression
// through the pipeline unevaluated (Non-goal: expression evaluation).
type ReduceFuncKind int

const (
	ReduceCount ReduceFuncKind = iota
	ReduceSum
	ReduceAvg
	ReduceMin
	ReduceMax
	ReduceArray
	ReduceUnshiftArray
	ReduceFirst
)

func (r ReduceFuncKind) String() string {
	switch r {
	case ReduceCount:
		return "Count"
	case ReduceSum:
		return "Sum"
	case ReduceAvg:
		return "Avg"
	case ReduceMin:
		return "Min"
	case ReduceMax:
		return "Max"
	case ReduceArray:
		return "Array"
	case ReduceUnshiftArray:
		return "UnshiftArray"
	case ReduceFirst:
		return "First"
	default:
		return "Unknown"
	}
}
