package qsu

import "github.com/quasar-analytics/quasar/core/identity"

// TreeIdentity reports whether a pass rewrote a graph into a structurally
// new one or handed back the same one, the way the teacher's
// transform.TreeIdentity lets a caller skip re-deriving anything
// downstream of an unchanged rewrite. Grounded on
// sql/transform/node_test.go (TestTransformUp). Re-exported from the
// shared identity package so mapfunc's scalar rewrites and qsu's graph
// rewrites agree on one vocabulary.
type TreeIdentity = identity.TreeIdentity

const (
	SameTree = identity.Same
	NewTree  = identity.New
)
