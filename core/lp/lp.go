// Package lp defines the minimal external LogicalPlan shape ReadLP
// consumes (spec.md §6 "Input type", SPEC_FULL.md §5.1). It is not a SQL
// parser and performs no I/O — LogicalPlan trees are constructed directly,
// the way the teacher's own analyzer tests build plan.Node trees by hand
// rather than going through a SQL front end.
package lp

import "github.com/quasar-analytics/quasar/core/mapfunc"

// Kind discriminates the LogicalPlan operator family ReadLP understands.
type Kind int

const (
	KindReadFile Kind = iota
	KindProject
	KindFilterOp
	KindJoin
	KindGroupBy
	KindSortOp
	KindTakeOp
	KindDropOp
	// KindShift marks an array/object unnest: "SELECT a[*] FROM ...".
	KindShift
	KindDistinctOp
)

// JoinKind mirrors qscript.JoinType at the LogicalPlan level, kept
// separate so lp has no dependency on qscript (ReadLP is the only bridge
// between the two).
type JoinKind int

const (
	JoinInner JoinKind = iota
	JoinLeftOuter
	JoinRightOuter
	JoinFullOuter
)

// LogicalPlan is a node in the externally-owned plan tree ReadLP lowers.
// Field population is Kind-dependent, the same tagged-struct idiom used
// for qscript.Pattern.
type LogicalPlan struct {
	Kind Kind

	// KindReadFile
	Path string

	// KindProject / KindFilterOp / KindSortOp / KindTakeOp / KindDropOp /
	// KindShift / KindDistinctOp / KindGroupBy all have a single Src.
	Src *LogicalPlan

	// KindProject
	Projection mapfunc.Free[mapfunc.Hole]

	// KindFilterOp
	Predicate mapfunc.Free[mapfunc.Hole]

	// KindJoin
	Left, Right *LogicalPlan
	JoinOn      mapfunc.Free[mapfunc.Hole]
	JoinKind    JoinKind

	// KindGroupBy
	Buckets  []mapfunc.Free[mapfunc.Hole]
	Reducers []GroupReducer

	// KindSortOp
	SortKeys []SortKey

	// KindTakeOp / KindDropOp
	Count int64

	// KindShift
	ShiftStruct mapfunc.Free[mapfunc.Hole]
	ShiftIsMap  bool
}

// GroupReducer names an aggregate applied over a bucket.
type GroupReducer struct {
	Name string
	Arg  mapfunc.Free[mapfunc.Hole]
}

// SortKey pairs a sort expression with its direction.
type SortKey struct {
	Expr mapfunc.Free[mapfunc.Hole]
	Desc bool
}

// ReadFile builds a leaf LogicalPlan reading path.
func ReadFile(path string) *LogicalPlan { return &LogicalPlan{Kind: KindReadFile, Path: path} }

// Project builds a projection over src.
func Project(src *LogicalPlan, proj mapfunc.Free[mapfunc.Hole]) *LogicalPlan {
	return &LogicalPlan{Kind: KindProject, Src: src, Projection: proj}
}

// FilterOp builds a filter over src.
func FilterOp(src *LogicalPlan, pred mapfunc.Free[mapfunc.Hole]) *LogicalPlan {
	return &LogicalPlan{Kind: KindFilterOp, Src: src, Predicate: pred}
}

// Shift builds an unnest of struct out of each row of src.
func Shift(src *LogicalPlan, strct mapfunc.Free[mapfunc.Hole], isMap bool) *LogicalPlan {
	return &LogicalPlan{Kind: KindShift, Src: src, ShiftStruct: strct, ShiftIsMap: isMap}
}
