package planner

import (
	"github.com/quasar-analytics/quasar/core/qauth"
	"github.com/quasar-analytics/quasar/core/qscript"
	"github.com/quasar-analytics/quasar/core/qsu"
)

// resolveOwnIdentities is spec.md §4.4 item 11: by the time ExpandShifts
// has run, every identity axis a later node might still need is either
// live in the graph's root provenance or has already been consumed (by a
// Reduce's bucket projection, or a join's combine). This pass settles
// that by checking the QAuth invariant (spec.md §7
// ProvenanceInvariantViolated) one last time before ReifyIdentities
// decides which axes must be materialized as real columns; it performs
// no structural rewrite of its own; lowering the number of axes it
// leaves for ReifyIdentities to reify is ReifyBuckets'/ReifyAutoJoins'
// job earlier in the pipeline, not this pass's.
func resolveOwnIdentities(ctx *Context, authed qauth.AuthenticatedQSU) (qauth.AuthenticatedQSU, qsu.TreeIdentity, error) {
	if err := qauth.CheckComplete(authed.Graph, authed.Auth); err != nil {
		return authed, qsu.SameTree, ErrProvenanceInvariantViolated.New(err.Error())
	}
	return authed, qsu.SameTree, nil
}

// ReifyIdentities is spec.md §4.4 item 12: it decides, for every
// identity-introducing node with an IDStatus (ShiftedRead, LeftShift)
// whose axis is still referenced by the graph's root provenance, that the
// axis must be materialized — its IDStatus is set to IncludeId so the row
// the node emits actually carries that identity column forward. An axis
// counts as referenced whenever Provenance.Axes finds it in the root
// polynomial, including beneath a Reduce's PProject; axes absent from it
// keep their IDStatus, since nothing downstream can observe them. The
// result is a ResearchedQSU recording, in OwnIdentity, which symbol owns
// which reified axis. Graduate itself reads only each node's IDStatus,
// not OwnIdentity.
func ReifyIdentities(ctx *Context, authed qauth.AuthenticatedQSU) (qauth.ResearchedQSU, error) {
	rootProv, ok := authed.Auth.Get(authed.Graph.Root)
	if !ok {
		return qauth.ResearchedQSU{}, ErrProvenanceInvariantViolated.New("no provenance recorded for graph root")
	}
	live := make(map[qsu.Symbol]bool)
	for _, axis := range rootProv.Axes() {
		live[axis] = true
	}

	vertices := make(map[qsu.Symbol]qsu.Pattern, len(authed.Graph.Vertices))
	for sym, p := range authed.Graph.Vertices {
		vertices[sym] = p
	}

	ownIdentity := make(map[qsu.Symbol]qsu.Symbol)
	for sym, p := range vertices {
		if !isIdentityOwner(p.Kind) {
			continue
		}
		if !live[sym] {
			continue
		}
		np := p
		np.IDStatus = qscript.IncludeId
		vertices[sym] = np
		ownIdentity[sym] = sym
	}

	g := qsu.Graph{Root: authed.Graph.Root, Vertices: vertices}
	if err := qsu.CheckInvariants(g); err != nil {
		return qauth.ResearchedQSU{}, Internalf("ReifyIdentities: %s", err)
	}

	return qauth.ResearchedQSU{
		Auth:        qauth.AuthenticatedQSU{Graph: g, Auth: authed.Auth},
		OwnIdentity: ownIdentity,
	}, nil
}

// isIdentityOwner reports whether p's Kind carries an IDStatus a pass can
// promote. A bare Read has no such toggle — spec.md's algebra only gives
// idStatus to ShiftedRead and LeftShift, so a plain Read's row identity
// is always implicitly available and never needs reification here.
func isIdentityOwner(k qscript.Kind) bool {
	return k == qscript.KindShiftedRead || k == qscript.KindLeftShift
}
