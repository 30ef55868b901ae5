package planner

import (
	"github.com/quasar-analytics/quasar/core/qauth"
	"github.com/quasar-analytics/quasar/core/qscript"
	"github.com/quasar-analytics/quasar/core/qsu"
)

// Graduate is spec.md §4.4 item 13 / §4.7: the final projection from the
// post-identity-reification QSUGraph onto QScriptEducated, the restricted
// coproduct spec.md §6 publishes as the core's output type. It walks the
// graph from its root, materializing a Fix tree (a KindSrcHole branch root
// becomes qscript.HoleOp), and treats any node that survived this far but
// has no place in QScriptEducated — KindMultiLeftShift, strictly
// intermediate — as a bug in an earlier pass (ErrUnexpectedConstruct), not
// a recoverable condition.
func Graduate(ctx *Context, researched qauth.ResearchedQSU) (EducatedResult, error) {
	g := researched.Auth.Graph
	memo := make(map[qsu.Symbol]qscript.Fix, len(g.Vertices))

	var build func(qsu.Symbol) (qscript.Fix, error)
	build = func(sym qsu.Symbol) (qscript.Fix, error) {
		if fix, ok := memo[sym]; ok {
			return fix, nil
		}
		p, ok := g.Vertices[sym]
		if !ok {
			return qscript.Fix{}, UnresolvedReference(sym)
		}

		var fix qscript.Fix
		var err error
		switch p.Kind {
		case qscript.KindSrcHole:
			fix = qscript.HoleOp()
		case qscript.KindMultiLeftShift:
			err = UnexpectedConstruct(sym, "MultiLeftShift not eliminated by ExpandShifts")

		case qscript.KindUnreferenced:
			fix = qscript.UnreferencedOp()
		case qscript.KindRoot:
			fix = qscript.RootOp()
		case qscript.KindRead:
			fix = qscript.ReadOp(p.Path)
		case qscript.KindShiftedRead:
			fix = qscript.ShiftedReadOp(p.Path, p.IDStatus)

		case qscript.KindMap:
			fix, err = graduateUnary(build, p.Src, func(src qscript.Fix) qscript.Fix {
				return qscript.MapOp(src, p.Fn)
			})
		case qscript.KindFilter:
			fix, err = graduateUnary(build, p.Src, func(src qscript.Fix) qscript.Fix {
				return qscript.FilterOp(src, p.Predicate)
			})
		case qscript.KindSort:
			fix, err = graduateUnary(build, p.Src, func(src qscript.Fix) qscript.Fix {
				return qscript.SortOp(src, p.SortKeys)
			})
		case qscript.KindLeftShift:
			fix, err = graduateUnary(build, p.Src, func(src qscript.Fix) qscript.Fix {
				return qscript.LeftShiftOp(src, p.Struct, p.IDStatus, p.ShiftTy, p.Repair)
			})
		case qscript.KindReduce:
			fix, err = graduateUnary(build, p.Src, func(src qscript.Fix) qscript.Fix {
				return qscript.ReduceOp(src, p.Bucket, p.Reducers, p.ReduceRepair)
			})
		case qscript.KindSubset:
			fix, err = graduateBinary(build, p.Src, p.From, func(src, from qscript.Fix) qscript.Fix {
				return qscript.SubsetOpNode(src, from, p.SubsetOp, p.Count)
			})

		case qscript.KindUnion:
			fix, err = graduateTernary(build, p.Src, p.LBranch, p.RBranch, func(src, l, r qscript.Fix) qscript.Fix {
				return qscript.UnionOp(src, l, r)
			})
		case qscript.KindThetaJoin:
			fix, err = graduateTernary(build, p.Src, p.LBranch, p.RBranch, func(src, l, r qscript.Fix) qscript.Fix {
				return qscript.ThetaJoinOp(src, l, r, p.On, p.JoinType, p.Combine)
			})
		case qscript.KindEquiJoin:
			fix, err = graduateTernary(build, p.Src, p.LBranch, p.RBranch, func(src, l, r qscript.Fix) qscript.Fix {
				return qscript.EquiJoinOp(src, l, r, p.Keys, p.JoinType, p.Combine)
			})

		default:
			err = UnexpectedConstruct(sym, p.Kind.String())
		}
		if err != nil {
			return qscript.Fix{}, err
		}
		memo[sym] = fix
		return fix, nil
	}

	tree, err := build(g.Root)
	if err != nil {
		return EducatedResult{}, err
	}
	return EducatedResult{Tree: tree}, nil
}

func graduateUnary(build func(qsu.Symbol) (qscript.Fix, error), child qsu.Symbol, wrap func(qscript.Fix) qscript.Fix) (qscript.Fix, error) {
	src, err := build(child)
	if err != nil {
		return qscript.Fix{}, err
	}
	return wrap(src), nil
}

func graduateBinary(build func(qsu.Symbol) (qscript.Fix, error), a, b qsu.Symbol, wrap func(a, b qscript.Fix) qscript.Fix) (qscript.Fix, error) {
	aFix, err := build(a)
	if err != nil {
		return qscript.Fix{}, err
	}
	bFix, err := build(b)
	if err != nil {
		return qscript.Fix{}, err
	}
	return wrap(aFix, bFix), nil
}

func graduateTernary(build func(qsu.Symbol) (qscript.Fix, error), src, l, r qsu.Symbol, wrap func(src, l, r qscript.Fix) qscript.Fix) (qscript.Fix, error) {
	srcFix, err := build(src)
	if err != nil {
		return qscript.Fix{}, err
	}
	lFix, err := build(l)
	if err != nil {
		return qscript.Fix{}, err
	}
	rFix, err := build(r)
	if err != nil {
		return qscript.Fix{}, err
	}
	return wrap(srcFix, lFix, rFix), nil
}

// ReadEducated rebuilds a QSUGraph from an already-educated Fix tree,
// giving every node a fresh symbol. Composing Graduate(ReadEducated(t))
// for a t that Graduate itself produced is the direct witness for
// spec.md §8 property 4 (Graduate ∘ Graduate is idempotent on its range):
// since t is built exclusively from Kinds Graduate accepts, round-tripping
// it through ReadEducated and back is a no-op up to tree shape. Exercised
// by the planner tests rather than called from LPtoQS.
func ReadEducated(tree qscript.Fix) qsu.Graph {
	gen := qsu.NewNameGenerator()
	vertices := make(map[qsu.Symbol]qsu.Pattern)
	var walk func(qscript.Fix) qsu.Symbol
	walk = func(f qscript.Fix) qsu.Symbol {
		if f.Node == nil {
			sym := gen.Fresh()
			vertices[sym] = qsu.Pattern{Kind: qscript.KindUnreferenced}
			return sym
		}
		p := *f.Node
		np := qsu.Pattern{
			Kind: p.Kind, Fn: p.Fn, Struct: p.Struct, IDStatus: p.IDStatus, ShiftTy: p.ShiftTy,
			Repair: p.Repair, Bucket: p.Bucket, Reducers: p.Reducers, ReduceRepair: p.ReduceRepair,
			SortKeys: p.SortKeys, Predicate: p.Predicate, SubsetOp: p.SubsetOp, Count: p.Count,
			On: p.On, JoinType: p.JoinType, Combine: p.Combine, Keys: p.Keys, Path: p.Path,
		}
		children := p.ChildCarriers()
		symChildren := make([]qsu.Symbol, len(children))
		for i, c := range children {
			symChildren[i] = walk(c)
		}
		np = np.WithChildCarriers(symChildren)
		sym := gen.Fresh()
		vertices[sym] = np
		return sym
	}
	root := walk(tree)
	return qsu.Graph{Root: root, Vertices: vertices}
}
