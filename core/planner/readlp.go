package planner

import (
	"strconv"

	"github.com/quasar-analytics/quasar/core/lp"
	"github.com/quasar-analytics/quasar/core/mapfunc"
	"github.com/quasar-analytics/quasar/core/qscript"
	"github.com/quasar-analytics/quasar/core/qsu"
)

// ReadLP is pass 1 of LPtoQS (spec.md §4.4): translate a LogicalPlan into
// the initial QSU graph. It is the one place the core touches the
// external LogicalPlan type; everything downstream only ever sees
// qsu.Graph.
func ReadLP(ctx *Context, plan *lp.LogicalPlan) (qsu.Graph, error) {
	if plan == nil {
		return qsu.Graph{}, MalformedInput("nil LogicalPlan")
	}
	return readLP(ctx, plan)
}

func readLP(ctx *Context, plan *lp.LogicalPlan) (qsu.Graph, error) {
	switch plan.Kind {
	case lp.KindReadFile:
		return qsu.WithName(ctx.Names, qsu.Pattern{Kind: qscript.KindRead, Path: plan.Path}), nil

	case lp.KindProject:
		src, err := readLP(ctx, plan.Src)
		if err != nil {
			return qsu.Graph{}, err
		}
		node := qsu.WithName(ctx.Names, qsu.Pattern{Kind: qscript.KindMap, Src: src.Root, Fn: plan.Projection})
		return merge(src, node)

	case lp.KindFilterOp:
		src, err := readLP(ctx, plan.Src)
		if err != nil {
			return qsu.Graph{}, err
		}
		node := qsu.WithName(ctx.Names, qsu.Pattern{Kind: qscript.KindFilter, Src: src.Root, Predicate: plan.Predicate})
		return merge(src, node)

	case lp.KindSortOp:
		src, err := readLP(ctx, plan.Src)
		if err != nil {
			return qsu.Graph{}, err
		}
		keys := make([]qscript.SortKey, len(plan.SortKeys))
		for i, k := range plan.SortKeys {
			dir := qscript.Asc
			if k.Desc {
				dir = qscript.Desc
			}
			keys[i] = qscript.SortKey{Expr: k.Expr, Dir: dir}
		}
		node := qsu.WithName(ctx.Names, qsu.Pattern{Kind: qscript.KindSort, Src: src.Root, SortKeys: keys})
		return merge(src, node)

	case lp.KindTakeOp, lp.KindDropOp:
		src, err := readLP(ctx, plan.Src)
		if err != nil {
			return qsu.Graph{}, err
		}
		op := qscript.Take
		if plan.Kind == lp.KindDropOp {
			op = qscript.Drop
		}
		hole := qsu.WithName(ctx.Names, qsu.Pattern{Kind: qscript.KindSrcHole})
		merged, err := merge(src, hole)
		if err != nil {
			return qsu.Graph{}, err
		}
		node := qsu.WithName(ctx.Names, qsu.Pattern{Kind: qscript.KindSubset, Src: src.Root, From: hole.Root, SubsetOp: op, Count: mapfunc.Constant[mapfunc.Hole](plan.Count)})
		return merge(merged, node)

	case lp.KindShift:
		src, err := readLP(ctx, plan.Src)
		if err != nil {
			return qsu.Graph{}, err
		}
		shiftTy := qscript.ShiftTypeArray
		if plan.ShiftIsMap {
			shiftTy = qscript.ShiftTypeMap
		}
		node := qsu.WithName(ctx.Names, qsu.Pattern{
			Kind:     qscript.KindLeftShift,
			Src:      src.Root,
			Struct:   plan.ShiftStruct,
			IDStatus: qscript.ExcludeId,
			ShiftTy:  shiftTy,
			Repair:   qscript.RightTargetLeaf(),
		})
		return merge(src, node)

	case lp.KindDistinctOp:
		src, err := readLP(ctx, plan.Src)
		if err != nil {
			return qsu.Graph{}, err
		}
		hole := mapfunc.Leaf[mapfunc.Hole](mapfunc.Hole{})
		node := qsu.WithName(ctx.Names, qsu.Pattern{
			Kind:         qscript.KindReduce,
			Src:          src.Root,
			Bucket:       []qscript.HoleExpr{hole},
			Reducers:     []qscript.ReduceFunc{{Kind: qscript.ReduceFirst, Arg: hole}},
			ReduceRepair: qscript.ReduceOutput(0),
		})
		return merge(src, node)

	case lp.KindGroupBy:
		src, err := readLP(ctx, plan.Src)
		if err != nil {
			return qsu.Graph{}, err
		}
		reducers := make([]qscript.ReduceFunc, len(plan.Reducers))
		for i, r := range plan.Reducers {
			reducers[i] = qscript.ReduceFunc{Kind: reduceKindFromName(r.Name), Arg: r.Arg}
		}
		repair := defaultReduceRepair(len(reducers))
		node := qsu.WithName(ctx.Names, qsu.Pattern{
			Kind:         qscript.KindReduce,
			Src:          src.Root,
			Bucket:       plan.Buckets,
			Reducers:     reducers,
			ReduceRepair: repair,
		})
		return merge(src, node)

	case lp.KindJoin:
		left, err := readLP(ctx, plan.Left)
		if err != nil {
			return qsu.Graph{}, err
		}
		right, err := readLP(ctx, plan.Right)
		if err != nil {
			return qsu.Graph{}, err
		}
		joined, err := merge(left, right)
		if err != nil {
			return qsu.Graph{}, err
		}
		unref := qsu.WithName(ctx.Names, qsu.Pattern{Kind: qscript.KindUnreferenced})
		joined, err = merge(joined, unref)
		if err != nil {
			return qsu.Graph{}, err
		}
		on := mapfunc.MapLeaves(plan.JoinOn, func(mapfunc.Hole) qscript.JoinFunc {
			return qscript.LeftTargetLeaf()
		})
		combine := mapfunc.ConcatMaps(
			mapfunc.MakeMapS[qscript.JoinLeaf]("left", qscript.LeftTargetLeaf()),
			mapfunc.MakeMapS[qscript.JoinLeaf]("right", qscript.RightTargetLeaf()),
		)
		node := qsu.WithName(ctx.Names, qsu.Pattern{
			Kind:     qscript.KindThetaJoin,
			Src:      unref.Root,
			LBranch:  left.Root,
			RBranch:  right.Root,
			On:       on,
			JoinType: joinTypeFromLP(plan.JoinKind),
			Combine:  combine,
		})
		return merge(joined, node)

	default:
		return qsu.Graph{}, MalformedInput("unrecognized LogicalPlan kind")
	}
}

func merge(a, b qsu.Graph) (qsu.Graph, error) {
	m, err := qsu.Merge(a, b)
	if err != nil {
		return qsu.Graph{}, err
	}
	return m.Rooted(b.Root), nil
}

func reduceKindFromName(name string) qscript.ReduceFuncKind {
	switch name {
	case "count":
		return qscript.ReduceCount
	case "sum":
		return qscript.ReduceSum
	case "avg":
		return qscript.ReduceAvg
	case "min":
		return qscript.ReduceMin
	case "max":
		return qscript.ReduceMax
	case "array":
		return qscript.ReduceArray
	case "unshift_array":
		return qscript.ReduceUnshiftArray
	default:
		return qscript.ReduceFirst
	}
}

func joinTypeFromLP(k lp.JoinKind) qscript.JoinType {
	switch k {
	case lp.JoinLeftOuter:
		return qscript.LeftOuter
	case lp.JoinRightOuter:
		return qscript.RightOuter
	case lp.JoinFullOuter:
		return qscript.FullOuter
	default:
		return qscript.Inner
	}
}

// defaultReduceRepair builds the canonical "MakeMap each reducer output
// under its stringified index" repair ReadLP assigns every Reduce it
// builds from a GroupBy; no later pass rewrites it.
func defaultReduceRepair(n int) qscript.ReduceRepairFunc {
	if n == 0 {
		return mapfunc.Undefined[qscript.ReduceLeaf]()
	}
	repair := mapfunc.MakeMapS(indexKey(0), qscript.ReduceOutput(0))
	for i := 1; i < n; i++ {
		repair = mapfunc.ConcatMaps(repair, mapfunc.MakeMapS(indexKey(i), qscript.ReduceOutput(i)))
	}
	return repair
}

func indexKey(i int) string { return strconv.Itoa(i) }
