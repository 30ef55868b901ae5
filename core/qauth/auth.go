package qauth

import (
	"fmt"

	"github.com/quasar-analytics/quasar/core/qscript"
	"github.com/quasar-analytics/quasar/core/qsu"
)

// Map is QAuth: the mapping from graph symbols to provenance polynomials
// (spec.md §3). Invariant: every reachable graph symbol has an entry;
// renaming/rewriting a pass performs must update it consistently.
type Map struct {
	byID map[qsu.Symbol]*Provenance
}

// NewMap constructs an empty Map.
func NewMap() Map { return Map{byID: make(map[qsu.Symbol]*Provenance)} }

// Get returns sym's provenance, or nil and false if absent.
func (m Map) Get(sym qsu.Symbol) (*Provenance, bool) {
	p, ok := m.byID[sym]
	return p, ok
}

// Set installs sym's provenance in a copy of m and returns the copy; m
// itself is left unchanged. The Provenance values are shared by pointer.
func (m Map) Set(sym qsu.Symbol, p *Provenance) Map {
	out := make(map[qsu.Symbol]*Provenance, len(m.byID)+1)
	for k, v := range m.byID {
		out[k] = v
	}
	out[sym] = p
	return Map{byID: out}
}

// Len reports the number of symbols with recorded provenance.
func (m Map) Len() int { return len(m.byID) }

// AuthenticatedQSU pairs a graph with the provenance computed for it
// (spec.md §3).
type AuthenticatedQSU struct {
	Graph qsu.Graph
	Auth  Map
}

// ResearchedQSU wraps an AuthenticatedQSU with resolved identity
// bookkeeping, the form ReifyIdentities hands to Graduate (spec.md §3).
// OwnIdentity records, for every symbol whose rows now carry a
// materialized identity column, which provenance axis that column
// reifies. ReifyIdentities fills it in; Graduate does not read it and
// takes each node's IDStatus as it stands in the graph.
type ResearchedQSU struct {
	Auth        AuthenticatedQSU
	OwnIdentity map[qsu.Symbol]qsu.Symbol
}

// ApplyProvenance assigns every symbol in g a provenance polynomial,
// following the rules sketched in spec.md §4.5:
//
//   - Read/ShiftedRead introduces base identities (PFresh tagged by its
//     own symbol).
//   - Map/Filter/Sort preserve their source's provenance.
//   - Reduce replaces it with bucket provenance (a PProject of the
//     source's provenance by its first bucket expression, which after
//     ReifyBuckets is the single combined one).
//   - ThetaJoin/EquiJoin multiply (PThen) their two branches'
//     provenance; the src's provenance is not included.
//   - LeftShift introduces a new identity axis tagged with the shifted
//     node's own symbol, composed with its source's provenance (PThen).
//   - Union merges (PBoth) its branches.
//   - Unreferenced/Root contribute none (PVoid).
//
// It computes provenance bottom-up so a node's computation can assume
// its children are already recorded, and returns a Map whose domain is
// exactly g's reachable symbols (spec.md §8 property 2).
func ApplyProvenance(g qsu.Graph) (AuthenticatedQSU, error) {
	layers := layeredOrder(g)
	m := NewMap()
	for _, layer := range layers {
		// Every symbol within a layer depends only on symbols in earlier
		// layers (already recorded in m), so their provenance can be
		// computed concurrently — the §5 note that "parallelizing
		// independent subtree rewrites within a single pass is safe but
		// not required," exercised here via qsu.ParallelRewrite.
		results, err := qsu.ParallelRewrite(layer, func(sym qsu.Symbol) (*Provenance, error) {
			p, ok := g.Vertices[sym]
			if !ok {
				return nil, fmt.Errorf("qauth: dangling symbol %s", sym)
			}
			return provenanceFor(sym, p, m)
		})
		if err != nil {
			return AuthenticatedQSU{}, err
		}
		for i, sym := range layer {
			m = m.Set(sym, results[i])
		}
	}
	return AuthenticatedQSU{Graph: g, Auth: m}, nil
}

// layeredOrder groups g's reachable symbols into dependency layers:
// layer 0 holds every leaf (no children), layer k+1 holds every symbol
// whose children are all at layer <= k. Symbols within one layer never
// depend on each other, so ApplyProvenance can compute them concurrently.
func layeredOrder(g qsu.Graph) [][]qsu.Symbol {
	order := topoOrder(g)
	depth := make(map[qsu.Symbol]int, len(order))
	maxDepth := 0
	for _, sym := range order {
		p, ok := g.Vertices[sym]
		if !ok {
			depth[sym] = 0
			continue
		}
		d := 0
		for _, c := range p.ChildCarriers() {
			if cd := depth[c] + 1; cd > d {
				d = cd
			}
		}
		depth[sym] = d
		if d > maxDepth {
			maxDepth = d
		}
	}
	layers := make([][]qsu.Symbol, maxDepth+1)
	for _, sym := range order {
		d := depth[sym]
		layers[d] = append(layers[d], sym)
	}
	return layers
}

// RecomputeFor recomputes and records provenance for a single newly
// emitted symbol whose children's provenance is already present in m —
// the refresh call ExpandShifts needs after emitting each LeftShift in
// its induction (spec.md §4.6 step 2/3, §9 open question 2).
func RecomputeFor(sym qsu.Symbol, p qsu.Pattern, m Map) (Map, error) {
	prov, err := provenanceFor(sym, p, m)
	if err != nil {
		return m, err
	}
	return m.Set(sym, prov), nil
}

func provenanceFor(sym qsu.Symbol, p qsu.Pattern, m Map) (*Provenance, error) {
	childProv := func(child qsu.Symbol) (*Provenance, error) {
		prov, ok := m.Get(child)
		if !ok {
			return nil, fmt.Errorf("qauth: missing provenance for child symbol %s of %s", child, sym)
		}
		return prov, nil
	}

	switch p.Kind {
	case qscript.KindUnreferenced, qscript.KindRoot, qscript.KindSrcHole:
		return Void(), nil

	case qscript.KindRead, qscript.KindShiftedRead:
		return Fresh(sym), nil

	case qscript.KindMap, qscript.KindFilter, qscript.KindSort:
		return childProv(p.Src)

	case qscript.KindSubset:
		return childProv(p.Src)

	case qscript.KindReduce:
		srcProv, err := childProv(p.Src)
		if err != nil {
			return nil, err
		}
		bucket := qscript.HoleExpr{}
		if len(p.Bucket) > 0 {
			bucket = p.Bucket[0]
		}
		return Project(srcProv, bucket), nil

	case qscript.KindLeftShift:
		srcProv, err := childProv(p.Src)
		if err != nil {
			return nil, err
		}
		return Then(srcProv, Fresh(sym)), nil

	case qscript.KindUnion:
		lProv, err := childProv(p.LBranch)
		if err != nil {
			return nil, err
		}
		rProv, err := childProv(p.RBranch)
		if err != nil {
			return nil, err
		}
		return Both(lProv, rProv), nil

	case qscript.KindThetaJoin, qscript.KindEquiJoin:
		lProv, err := childProv(p.LBranch)
		if err != nil {
			return nil, err
		}
		rProv, err := childProv(p.RBranch)
		if err != nil {
			return nil, err
		}
		return Then(lProv, rProv), nil

	case qscript.KindMultiLeftShift:
		srcProv, err := childProv(p.Src)
		if err != nil {
			return nil, err
		}
		prov := srcProv
		for range p.Shifts {
			prov = Then(prov, Fresh(sym))
		}
		return prov, nil

	default:
		return nil, fmt.Errorf("qauth: unhandled node kind %s at %s", p.Kind, sym)
	}
}

// topoOrder returns g's symbols in dependency order (children before
// parents), the same traversal ApplyProvenance and RewriteM rely on.
func topoOrder(g qsu.Graph) []qsu.Symbol {
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
		order = append(order, sym)
	}
	visit(g.Root)
	return order
}

// CheckComplete verifies the post-provenance invariant every later pass
// must preserve (spec.md §8 property 2): dom(auth) superset of every
// symbol reachable in g.
func CheckComplete(g qsu.Graph, m Map) error {
	for sym := range qsu.Reachable(g) {
		if _, ok := m.Get(sym); !ok {
			return fmt.Errorf("qauth: provenance invariant violated: symbol %s has no recorded provenance", sym)
		}
	}
	return nil
}
