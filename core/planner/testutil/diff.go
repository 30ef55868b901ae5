// Package testutil holds helpers shared by the planner package's tests:
// a structural diff over qscript.Fix trees and qsu.Graph values, built on
// github.com/google/go-cmp since reflect.DeepEqual gives no readable
// output once a pipeline smoke test's expected and actual trees diverge
// somewhere deep in a FreeMap.
package testutil

import (
	"reflect"

	"github.com/google/go-cmp/cmp"
)

// exportAll lets cmp walk into mapfunc.Free's unexported leaf/node fields
// (and any other unexported state the compared trees carry) without every
// caller having to enumerate cmp.AllowUnexported per instantiated type.
var exportAll = cmp.Exporter(func(reflect.Type) bool { return true })

// Diff renders a human-readable structural diff between two values of the
// same shape (a qscript.Fix tree, a qsu.Graph, a qscript.Pattern), or the
// empty string if they're equal. Intended for pipeline smoke tests that
// want more than require.Equal's single-line failure on a multi-level
// tree.
func Diff(want, got interface{}, opts ...cmp.Option) string {
	return cmp.Diff(want, got, append([]cmp.Option{exportAll}, opts...)...)
}

// Equal reports whether want and got are structurally identical.
func Equal(want, got interface{}, opts ...cmp.Option) bool {
	return cmp.Equal(want, got, append([]cmp.Option{exportAll}, opts...)...)
}
