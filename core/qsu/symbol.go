// Package qsu implements the QSUGraph substrate: the symbol-indexed DAG
// representation a QScript plan is rewritten under while it passes through
// the LPtoQS pipeline, plus the fresh-name generator and bottom-up rewrite
// engine the pipeline's passes are built on.
package qsu

import (
	"fmt"
	"sync/atomic"

	uuid "github.com/satori/go.uuid"
)

// Symbol is a fresh, collision-free reference to a node in a QSUGraph.
// Symbols are never reused across distinct node identities; every one
// in circulation came from a NameGenerator's fresh call.
type Symbol string

// String implements fmt.Stringer.
func (s Symbol) String() string { return string(s) }

// NameGenerator is the single authority for minting Symbols. Passes never
// construct a Symbol directly; they always go through fresh().
//
// Each generator instance is tagged with its own UUID run-tag so that
// symbols minted by two independently constructed generators — two
// concurrent test cases, say, or two pipeline runs sharing a log stream —
// can never collide even before either one's counter has advanced.
type NameGenerator struct {
	tag     string
	counter int64
}

// NewNameGenerator constructs a generator with a fresh run-tag.
func NewNameGenerator() *NameGenerator {
	return &NameGenerator{tag: uuid.NewV4().String()[:8]}
}

// Fresh returns a Symbol distinct from every Symbol this generator (or any
// other generator) has returned before.
func (g *NameGenerator) Fresh() Symbol {
	n := atomic.AddInt64(&g.counter, 1)
	return Symbol(fmt.Sprintf("__qsu_%s_%d", g.tag, n))
}
