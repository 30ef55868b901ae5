package qsu

import (
	"fmt"
	"reflect"

	"github.com/mitchellh/hashstructure"

	"github.com/quasar-analytics/quasar/core/identity"
	"github.com/quasar-analytics/quasar/core/qscript"
)

// Pattern is a QScript node under rewrite: the graph carrier instantiation
// of qscript.Pattern, whose child positions carry only Symbols (spec.md
// §3 "QSUGraph").
type Pattern = qscript.Pattern[Symbol]

// Graph is a DAG-with-named-nodes view of a QScript plan (spec.md §3):
// every node has a fresh Symbol, references use Symbols, and duplicate
// subtrees share nodes. Invariants: every Symbol referenced by any
// pattern is present in Vertices; the graph is acyclic; Root reaches
// every Symbol.
type Graph struct {
	Root     Symbol
	Vertices map[Symbol]Pattern
}

// NewGraph constructs an empty graph rooted at root, with vertices
// pre-populated. Callers normally build graphs via WithName and Merge
// rather than this constructor directly.
func NewGraph(root Symbol, vertices map[Symbol]Pattern) Graph {
	return Graph{Root: root, Vertices: vertices}
}

// WithName allocates a fresh Symbol via gen, installs pattern under it,
// and returns a singleton-rooted graph (spec.md §4.2).
func WithName(gen *NameGenerator, pattern Pattern) Graph {
	sym := gen.Fresh()
	return Graph{Root: sym, Vertices: map[Symbol]Pattern{sym: pattern}}
}

// patternHash is used by Merge to decide, cheaply, whether two
// coincident symbols carry the same pattern before falling back to an
// exact structural comparison (reflect.DeepEqual). Grounded on the teacher's own
// mitchellh/hashstructure dependency.
func patternHash(p Pattern) (uint64, error) {
	return hashstructure.Hash(p, nil)
}

// Merge implements "a :++ b" from spec.md §4.2: a disjoint-symbol union
// of two graphs. It fails if a symbol present in both graphs carries
// incompatible patterns; coincident symbols must carry identical
// patterns. The merged graph keeps a's root.
func Merge(a, b Graph) (Graph, error) {
	out := make(map[Symbol]Pattern, len(a.Vertices)+len(b.Vertices))
	for sym, p := range a.Vertices {
		out[sym] = p
	}
	for sym, p := range b.Vertices {
		existing, ok := out[sym]
		if !ok {
			out[sym] = p
			continue
		}
		eh, err := patternHash(existing)
		if err != nil {
			return Graph{}, fmt.Errorf("qsu: hashing pattern for %s: %w", sym, err)
		}
		ph, err := patternHash(p)
		if err != nil {
			return Graph{}, fmt.Errorf("qsu: hashing pattern for %s: %w", sym, err)
		}
		if eh != ph || !reflect.DeepEqual(existing, p) {
			return Graph{}, fmt.Errorf("qsu: merge conflict at symbol %s: incompatible patterns", sym)
		}
	}
	return Graph{Root: a.Root, Vertices: out}, nil
}

// OverwriteAtRoot replaces the root's pattern, leaving every other edge
// and symbol unchanged (spec.md §4.2).
func (g Graph) OverwriteAtRoot(pattern Pattern) Graph {
	out := make(map[Symbol]Pattern, len(g.Vertices))
	for sym, p := range g.Vertices {
		out[sym] = p
	}
	out[g.Root] = pattern
	return Graph{Root: g.Root, Vertices: out}
}

// Rooted returns a copy of g re-rooted at sym (sym must already be a
// member of g.Vertices, typically the symbol of a freshly merged-in
// vertex).
func (g Graph) Rooted(sym Symbol) Graph {
	return Graph{Root: sym, Vertices: g.Vertices}
}

// RevIndex is the reverse adjacency of a graph: for each symbol, the set
// of symbols whose pattern references it (spec.md §4.2
// generateRevIndex).
type RevIndex map[Symbol][]Symbol

// GenerateRevIndex builds g's reverse index.
func GenerateRevIndex(g Graph) RevIndex {
	idx := make(RevIndex, len(g.Vertices))
	for sym, p := range g.Vertices {
		for _, child := range p.ChildCarriers() {
			idx[child] = append(idx[child], sym)
		}
	}
	return idx
}

// postorder returns g's symbols in bottom-up (children-before-parents)
// order reachable from root, visiting each symbol once even if it is
// shared by multiple parents. Acyclicity (a graph invariant) guarantees
// termination.
func postorder(g Graph, root Symbol) []Symbol {
	var order []Symbol
	visited := make(map[Symbol]bool)
	var visit func(Symbol)
	visit = func(sym Symbol) {
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
	visit(root)
	return order
}

// RewriteFunc is a partial bottom-up rewrite over a graph vertex: given a
// symbol and its (already-rewritten) pattern, it either returns a
// replacement pattern (ok=true) or leaves the vertex unchanged (ok=false).
type RewriteFunc func(Symbol, Pattern) (Pattern, bool, error)

// RewriteM performs g's bottom-up monadic rewrite (spec.md §4.2
// rewriteM): for each node in post-order, if fn is defined, the current
// focus is replaced with its result; otherwise it recurses unchanged.
// Termination is guaranteed by acyclicity.
func RewriteM(g Graph, fn RewriteFunc) (Graph, identity.TreeIdentity, error) {
	order := postorder(g, g.Root)
	out := make(map[Symbol]Pattern, len(g.Vertices))
	for sym, p := range g.Vertices {
		out[sym] = p
	}

	overall := identity.Same
	for _, sym := range order {
		current := out[sym]
		next, ok, err := fn(sym, current)
		if err != nil {
			return g, identity.Same, err
		}
		if !ok {
			continue
		}
		out[sym] = next
		overall = identity.New
	}
	return Graph{Root: g.Root, Vertices: out}, overall, nil
}

// Reachable returns the set of symbols reachable from g.Root, inclusive.
func Reachable(g Graph) map[Symbol]bool {
	set := make(map[Symbol]bool)
	for _, sym := range postorder(g, g.Root) {
		set[sym] = true
	}
	return set
}

// CheckInvariants verifies the two structural invariants every pass must
// preserve (spec.md §4.4 (a), §8 property 1): no dangling symbol
// references, and acyclicity (enforced implicitly by postorder visiting
// each symbol exactly once without looping — a cycle would otherwise
// recurse forever, so CheckInvariants also bounds the walk defensively).
func CheckInvariants(g Graph) error {
	if _, ok := g.Vertices[g.Root]; !ok {
		return fmt.Errorf("qsu: root %s not present in graph", g.Root)
	}
	seen := make(map[Symbol]int)
	var walk func(Symbol) error
	walk = func(sym Symbol) error {
		if seen[sym] > len(g.Vertices)+1 {
			return fmt.Errorf("qsu: cycle detected at symbol %s", sym)
		}
		seen[sym]++
		p, ok := g.Vertices[sym]
		if !ok {
			return fmt.Errorf("qsu: dangling reference to symbol %s", sym)
		}
		for _, child := range p.ChildCarriers() {
			if err := walk(child); err != nil {
				return err
			}
		}
		return nil
	}
	return walk(g.Root)
}
