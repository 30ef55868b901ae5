// Package qscript implements the QScript algebra from spec.md §3: the
// family of composable relational/collection operators a LogicalPlan is
// lowered into. Operators are expressed as a single tagged struct,
// Pattern[R], generic over the child carrier R — the "two concrete
// carriers" spec.md §9 calls for: Fix for a finished tree, qsu.Symbol for
// a graph pattern under rewrite.
package qscript

import "github.com/quasar-analytics/quasar/core/mapfunc"

// Kind discriminates the QScript operator family.
type Kind int

const (
	KindMap Kind = iota
	KindLeftShift
	KindReduce
	KindSort
	KindFilter
	KindUnion
	KindSubset
	KindUnreferenced
	KindThetaJoin
	KindEquiJoin
	KindRead
	KindShiftedRead
	KindRoot
	// KindSrcHole is the placeholder leaf used only inside a Union,
	// Subset, ThetaJoin or EquiJoin branch: "the row flowing into this
	// sub-plan" from the enclosing node's src, per the GLOSSARY's Hole.
	KindSrcHole
	// KindMultiLeftShift is the intermediate n-ary shift node ExpandShifts
	// lowers (spec.md §3 "MultiLeftShift", §4.6). It never survives past
	// ExpandShifts and so never appears in QScriptEducated.
	KindMultiLeftShift
)

var kindNames = map[Kind]string{
	KindMap: "Map", KindLeftShift: "LeftShift", KindReduce: "Reduce",
	KindSort: "Sort", KindFilter: "Filter", KindUnion: "Union",
	KindSubset: "Subset", KindUnreferenced: "Unreferenced",
	KindThetaJoin: "ThetaJoin", KindEquiJoin: "EquiJoin",
	KindRead: "Read", KindShiftedRead: "ShiftedRead", KindRoot: "Root",
	KindSrcHole: "Hole", KindMultiLeftShift: "MultiLeftShift",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return "Unknown"
}

// HoleExpr is a FreeMap over Hole: a scalar expression whose leaf means
// "the row flowing into this node".
type HoleExpr = mapfunc.Free[mapfunc.Hole]

// SortKey pairs a bucket expression with its direction.
type SortKey struct {
	Expr HoleExpr
	Dir  SortDir
}

// ReduceFunc pairs an aggregate kind with the scalar expression it
// aggregates.
type ReduceFunc struct {
	Kind ReduceFuncKind
	Arg  HoleExpr
}

// EquiJoinKey pairs a left-side and right-side key expression.
type EquiJoinKey struct {
	Left, Right HoleExpr
}

// Pattern is one QScript node, parameterized over the carrier type R used
// for its child positions (and branch roots). Only the fields relevant
// to Kind are populated; this mirrors spec.md §9's "tagged enum" guidance
// directly rather than one Go type per Kind, because Pattern must be
// instantiated at two different carriers (Fix and qsu.Symbol) and Go
// generics don't let an interface vary its field set per implementation.
type Pattern[R any] struct {
	Kind Kind

	// Map
	Src R
	Fn  HoleExpr

	// LeftShift
	Struct   HoleExpr
	IDStatus IdStatus
	ShiftTy  ShiftType
	Repair   JoinFunc

	// Reduce
	Bucket       []HoleExpr
	Reducers     []ReduceFunc
	ReduceRepair ReduceRepairFunc

	// Sort
	SortKeys []SortKey

	// Filter
	Predicate HoleExpr

	// Union / ThetaJoin / EquiJoin branches
	LBranch, RBranch R

	// Subset: Src is the node Count's Take/Drop/Sample is computed over,
	// From is the Hole-rooted sub-plan it's applied to, the same
	// Src/branch split Union and the joins use (spec.md §3 "Branches of
	// join/union/subset are themselves sub-plans rooted at a Hole
	// placeholder").
	From     R
	SubsetOp SubsetOp
	Count    HoleExpr

	// ThetaJoin
	On       JoinFunc
	JoinType JoinType
	Combine  JoinFunc

	// EquiJoin
	Keys []EquiJoinKey

	// Read / ShiftedRead
	Path string

	// MultiLeftShift
	Shifts      []ShiftEntry
	ShiftRepair ShiftRepairFunc
}

// ShiftEntry is one of a MultiLeftShift's n shift triples
// (struct_i, idStatus_i, rotation_i) from spec.md §4.6.
type ShiftEntry struct {
	Struct   HoleExpr
	IDStatus IdStatus
	Rotation Rotation
}

// Fix is the finished-tree carrier: a QScript node whose children are
// themselves boxed Patterns. This recursive generic instantiation
// (Pattern[Fix] referencing Fix, which wraps Pattern[Fix]) is exactly
// the "fixpoint" carrier spec.md §9 asks for.
type Fix struct {
	Node *Pattern[Fix]
}

func embed(p Pattern[Fix]) Fix { return Fix{Node: &p} }

// Children returns f's child carriers in a fixed, Kind-dependent order
// (the order rewrite/walk helpers visit them in).
func (f Fix) Children() []Fix {
	if f.Node == nil {
		return nil
	}
	return f.Node.ChildCarriers()
}

// ChildCarriers returns p's child carriers in a fixed, Kind-dependent
// order. It is generic over R so both the Fix tree carrier and the graph
// Symbol carrier (qsu.Graph) can reuse the same Kind-dispatch table
// instead of duplicating it per carrier.
func (p Pattern[R]) ChildCarriers() []R {
	switch p.Kind {
	case KindMap, KindLeftShift, KindReduce, KindSort, KindFilter, KindMultiLeftShift:
		return []R{p.Src}
	case KindUnion:
		return []R{p.Src, p.LBranch, p.RBranch}
	case KindSubset:
		return []R{p.Src, p.From}
	case KindThetaJoin, KindEquiJoin:
		return []R{p.Src, p.LBranch, p.RBranch}
	default:
		return nil
	}
}

// WithChildCarriers returns a copy of p with its child carriers replaced,
// in the same order ChildCarriers reported them. Panics if the count
// doesn't match p.Kind's arity — a programmer error, not a runtime one.
func (p Pattern[R]) WithChildCarriers(children []R) Pattern[R] {
	np := p
	switch p.Kind {
	case KindMap, KindLeftShift, KindReduce, KindSort, KindFilter, KindMultiLeftShift:
		np.Src = children[0]
	case KindUnion:
		np.Src, np.LBranch, np.RBranch = children[0], children[1], children[2]
	case KindSubset:
		np.Src, np.From = children[0], children[1]
	case KindThetaJoin, KindEquiJoin:
		np.Src, np.LBranch, np.RBranch = children[0], children[1], children[2]
	}
	return np
}
