package mapfunc

import "github.com/quasar-analytics/quasar/core/identity"

// Visitor mirrors the teacher's sql.Visitor / Walk pattern from
// sql/expression/walk_test.go: Walk visits f at every node, pre-order,
// and recurses into children using whatever Visitor f.Visit returns (nil
// stops recursion into that subtree).
type Visitor[A any] interface {
	Visit(f Free[A]) Visitor[A]
}

type visitorFunc[A any] func(Free[A]) Visitor[A]

func (f visitorFunc[A]) Visit(n Free[A]) Visitor[A] { return f(n) }

// VisitorFunc adapts a plain function to a Visitor.
func VisitorFunc[A any](f func(Free[A]) Visitor[A]) Visitor[A] {
	return visitorFunc[A](f)
}

// Walk visits every node of f pre-order.
func Walk[A any](v Visitor[A], f Free[A]) {
	if v = v.Visit(f); v == nil {
		return
	}
	for _, c := range f.Children() {
		Walk(v, c)
	}
}

// RewriteFunc is a bottom-up partial rewrite: returning ok=false leaves
// the node untouched.
type RewriteFunc[A any] func(Free[A]) (Free[A], bool, error)

// Rewrite performs a bottom-up rewrite of f, applying fn at every node
// after its children have already been rewritten, mirroring the
// teacher's transform.Node bottom-up contract (§4.2 rewriteM): if fn is
// undefined at a node (ok=false) the node recurses unchanged.
func Rewrite[A any](f Free[A], fn RewriteFunc[A]) (Free[A], identity.TreeIdentity, error) {
	n, same := f.AsNode()
	if !same {
		out, ok, err := fn(f)
		if err != nil {
			return f, identity.Same, err
		}
		if !ok {
			return f, identity.Same, nil
		}
		return out, identity.New, nil
	}

	overall := identity.Same
	newChildren := make([]Free[A], len(n.Children))
	for i, c := range n.Children {
		rc, same, err := Rewrite(c, fn)
		if err != nil {
			return f, identity.Same, err
		}
		newChildren[i] = rc
		overall = overall.And(same)
	}

	var current Free[A]
	if overall == identity.New {
		current = Free[A]{node: &Node[A]{Kind: n.Kind, Children: newChildren, Const: n.Const, Part: n.Part, CaseInsensitive: n.CaseInsensitive}}
	} else {
		current = f
	}

	out, ok, err := fn(current)
	if err != nil {
		return f, identity.Same, err
	}
	if !ok {
		return current, overall, nil
	}
	return out, identity.New, nil
}

// MapLeaves replaces every leaf of f via fn, a common need when lowering
// one leaf domain into another (e.g. substituting Hole for
// ProjectKeyS(Hole, "original") in ExpandShifts).
func MapLeaves[A, B any](f Free[A], fn func(A) Free[B]) Free[B] {
	if leaf, ok := f.AsLeaf(); ok {
		return fn(leaf)
	}
	n, _ := f.AsNode()
	children := make([]Free[B], len(n.Children))
	for i, c := range n.Children {
		children[i] = MapLeaves(c, fn)
	}
	return Free[B]{node: &Node[B]{Kind: n.Kind, Children: children, Const: n.Const, Part: n.Part, CaseInsensitive: n.CaseInsensitive}}
}
