// Package identity holds the TreeIdentity type shared by every rewrite
// engine in the module (mapfunc's scalar rewrites, qsu's graph rewrites).
// It is split out from qsu so that mapfunc — a leaf dependency of qscript,
// which qsu itself depends on — can report rewrite identity without
// importing qsu and creating a cycle.
package identity

// TreeIdentity reports whether a rewrite produced a structurally new tree
// or handed back the same one, mirroring the teacher's
// transform.TreeIdentity (sql/transform/node_test.go, TestTransformUp).
type TreeIdentity bool

const (
	// Same means the rewrite left the node (and everything under it)
	// unchanged; callers may reuse cached derived state.
	Same TreeIdentity = false
	// New means the rewrite produced a structurally different node.
	New TreeIdentity = true
)

func (t TreeIdentity) String() string {
	if t == Same {
		return "SameTree"
	}
	return "NewTree"
}

// And combines two TreeIdentity results from sibling rewrites: the
// combination is New whenever either side is New.
func (t TreeIdentity) And(other TreeIdentity) TreeIdentity {
	return t || other
}
