package planner

import (
	"sort"
	"strconv"

	"github.com/quasar-analytics/quasar/core/mapfunc"
	"github.com/quasar-analytics/quasar/core/qauth"
	"github.com/quasar-analytics/quasar/core/qscript"
	"github.com/quasar-analytics/quasar/core/qsu"
)

// expandShiftsRule is the Rule wrapper ExpandShifts runs as within the
// Builder's fixed-point loop (spec.md §4.4 item 10, fully specified in
// §4.6). It locates every MultiLeftShift reachable in the graph and
// lowers each into a chain of single LeftShift nodes plus a trailing
// Map, in post-order so a MultiLeftShift nested inside another branch's
// source is expanded before the outer one is touched.
func expandShiftsRule(ctx *Context, authed qauth.AuthenticatedQSU) (qauth.AuthenticatedQSU, qsu.TreeIdentity, error) {
	targets := multiShiftPostorder(authed.Graph)
	if len(targets) == 0 {
		return authed, qsu.SameTree, nil
	}

	vertices := make(map[qsu.Symbol]qsu.Pattern, len(authed.Graph.Vertices))
	for sym, p := range authed.Graph.Vertices {
		vertices[sym] = p
	}
	auth := authed.Auth

	for _, sym := range targets {
		p := vertices[sym]
		var err error
		vertices, auth, err = expandOneShift(ctx, vertices, auth, sym, p)
		if err != nil {
			return authed, qsu.SameTree, err
		}
	}

	g := qsu.Graph{Root: authed.Graph.Root, Vertices: vertices}
	if err := qsu.CheckInvariants(g); err != nil {
		return authed, qsu.SameTree, Internalf("ExpandShifts: %s", err)
	}
	return qauth.AuthenticatedQSU{Graph: g, Auth: auth}, qsu.NewTree, nil
}

// multiShiftPostorder returns every MultiLeftShift symbol reachable in g,
// children-before-parents, so nested occurrences lower innermost-first.
func multiShiftPostorder(g qsu.Graph) []qsu.Symbol {
	var order []qsu.Symbol
	visited := make(map[qsu.Symbol]bool)
	var visit func(qsu.Symbol)
	visit = func(sym qsu.Symbol) {
		if visited[sym] {
			return
		}
		visited[sym] = true
		p, ok := g.Vertices[sym]
		if !ok {
			return
		}
		for _, child := range p.ChildCarriers() {
			visit(child)
		}
		if p.Kind == qscript.KindMultiLeftShift {
			order = append(order, sym)
		}
	}
	visit(g.Root)
	return order
}

// expandOneShift runs the §4.6 algorithm for a single MultiLeftShift at
// sym, returning the updated vertex map and provenance map with sym's
// definition overwritten to the final Map and the intervening LeftShift
// chain merged in under fresh symbols.
func expandOneShift(ctx *Context, vertices map[qsu.Symbol]qsu.Pattern, auth qauth.Map, sym qsu.Symbol, p qsu.Pattern) (map[qsu.Symbol]qsu.Pattern, qauth.Map, error) {
	// Step 5: an empty shift list degrades to the source unchanged. sym
	// keeps its own identity (other nodes reference it) but its
	// definition becomes an exact copy of source's.
	if len(p.Shifts) == 0 {
		srcPattern, ok := vertices[p.Src]
		if !ok {
			return nil, auth, UnresolvedReference(p.Src)
		}
		vertices[sym] = srcPattern
		prov, ok := auth.Get(p.Src)
		if !ok {
			return nil, auth, UnresolvedReference(p.Src)
		}
		auth = auth.Set(sym, prov)
		return vertices, auth, nil
	}

	// Step 1: stable sort by rotation; π records each sorted slot's
	// original index so the final mapper can translate Right(i) (an
	// original-index reference) into the sorted key it actually landed
	// under. Open Question 1 (spec.md §9) is resolved here by tracking
	// this permutation explicitly rather than assuming sort preserves
	// input order.
	type indexed struct {
		entry    qscript.ShiftEntry
		original int
	}
	sorted := make([]indexed, len(p.Shifts))
	for i, s := range p.Shifts {
		sorted[i] = indexed{entry: s, original: i}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].entry.Rotation.Less(sorted[j].entry.Rotation)
	})
	sortedPosOf := make(map[int]int, len(sorted))
	for pos, s := range sorted {
		sortedPosOf[s.original] = pos
	}

	var err error

	// Step 2: base shift N0.
	s0 := sorted[0].entry
	repair0 := mapfunc.ConcatMaps(
		mapfunc.MakeMapS[qscript.JoinLeaf]("original", qscript.LeftTargetLeaf()),
		mapfunc.MakeMapS[qscript.JoinLeaf]("0", qscript.RightTargetLeaf()),
	)
	n0 := qsu.Pattern{
		Kind: qscript.KindLeftShift, Src: p.Src, Struct: s0.Struct,
		IDStatus: s0.IDStatus, ShiftTy: s0.Rotation.ShiftType(), Repair: repair0,
	}
	n0Sym := ctx.Fresh()
	vertices[n0Sym] = n0
	if auth, err = qauth.RecomputeFor(n0Sym, n0, auth); err != nil {
		return nil, auth, err
	}

	current := n0Sym
	currentRotation := s0.Rotation

	// Step 3: induction over the remaining sorted shifts.
	for k := 1; k < len(sorted); k++ {
		sk := sorted[k].entry

		staticAbove := mapfunc.MakeMapS[qscript.JoinLeaf]("original", mapfunc.ProjectKeyS(qscript.LeftTargetLeaf(), "original"))
		for j := 0; j < k; j++ {
			key := strconv.Itoa(j)
			staticAbove = mapfunc.ConcatMaps(staticAbove, mapfunc.MakeMapS[qscript.JoinLeaf](key, mapfunc.ProjectKeyS(qscript.LeftTargetLeaf(), key)))
		}
		repairK := mapfunc.ConcatMaps(staticAbove, mapfunc.MakeMapS[qscript.JoinLeaf](strconv.Itoa(k), qscript.RightTargetLeaf()))

		structK := mapfunc.MapLeaves(sk.Struct, func(mapfunc.Hole) qscript.HoleExpr {
			return mapfunc.ProjectKeyS(mapfunc.Leaf(mapfunc.Hole{}), "original")
		})

		nk := qsu.Pattern{
			Kind: qscript.KindLeftShift, Src: current, Struct: structK,
			IDStatus: sk.IDStatus, ShiftTy: sk.Rotation.ShiftType(), Repair: repairK,
		}
		nkSym := ctx.Fresh()

		// Identity guard: suppresses the cross product when the new shift
		// is over the same axis family as the previous one. "identity of
		// N_{k-1}" is read as the most recently materialized shift slot
		// ("k-1", or "0" when k==1); "identity of N_k" is the value this
		// shift is about to produce (RightTarget).
		if qscript.RotationsCompatible(currentRotation, sk.Rotation) {
			prevKey := strconv.Itoa(k - 1)
			guard := mapfunc.Eq(
				qscript.AccessLeftTarget(mapfunc.ProjectKeyS(qscript.LeftTargetLeaf(), prevKey)),
				qscript.AccessLeftTarget(qscript.RightTargetLeaf()),
			)
			nk.Repair = mapfunc.Cond(guard, repairK, mapfunc.Undefined[qscript.JoinLeaf]())
		}

		vertices[nkSym] = nk
		if auth, err = qauth.RecomputeFor(nkSym, nk, auth); err != nil {
			return nil, auth, err
		}

		current = nkSym
		currentRotation = sk.Rotation
	}

	// Step 4: final mapper, substituting Left(())->ProjectKeyS(Hole,
	// "original") and Right(i)->ProjectKeyS(Hole, π⁻¹(i).toString), where
	// π⁻¹ is sortedPosOf (original index -> sorted slot).
	mapper := mapfunc.MapLeaves(p.ShiftRepair, func(leaf qscript.ShiftLeaf) qscript.HoleExpr {
		if leaf.Side == qscript.ShiftLeft {
			return mapfunc.ProjectKeyS[mapfunc.Hole](mapfunc.Leaf(mapfunc.Hole{}), "original")
		}
		pos, ok := sortedPosOf[leaf.Index]
		if !ok {
			pos = leaf.Index
		}
		return mapfunc.ProjectKeyS[mapfunc.Hole](mapfunc.Leaf(mapfunc.Hole{}), strconv.Itoa(pos))
	})

	final := qsu.Pattern{Kind: qscript.KindMap, Src: current, Fn: mapper}
	vertices[sym] = final
	if auth, err = qauth.RecomputeFor(sym, final, auth); err != nil {
		return nil, auth, err
	}

	return vertices, auth, nil
}
