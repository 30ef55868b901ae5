// Package qauth implements the provenance/identity tracking subsystem:
// QAuth, the mapping from graph symbols to the provenance polynomials
// describing which input identities a row originates from (spec.md §3
// "Provenance (QProv)", §4.5).
package qauth

import (
	"github.com/quasar-analytics/quasar/core/qscript"
	"github.com/quasar-analytics/quasar/core/qsu"
)

// PKind discriminates a Provenance polynomial's shape.
type PKind int

const (
	// PVoid is the provenance of a node with no input identities
	// (Unreferenced, Root).
	PVoid PKind = iota
	// PFresh introduces a new identity axis tagged by the symbol of the
	// node that produced it (a Read, ShiftedRead, or the new axis a
	// LeftShift adds on top of its source's provenance).
	PFresh
	// PProject narrows a base provenance by a structural access (used
	// when a Reduce replaces row-identity with bucket-identity).
	PProject
	// PThen is the product of two provenances: the identities of a join
	// or a post-shift row are drawn from both the pre-shift/left-hand
	// provenance and the newly introduced axis.
	PThen
	// PBoth is the sum of two provenances: a Union's rows may originate
	// from either branch's identities.
	PBoth
)

// Provenance is a polynomial of identity accesses and structural
// projections describing a row's origin coordinates (spec.md §3).
type Provenance struct {
	Kind        PKind
	Axis        qsu.Symbol // meaningful for PFresh
	Access      qscript.HoleExpr // meaningful for PProject
	Left, Right *Provenance // meaningful for PProject (Left only), PThen, PBoth
}

// Void is the provenance of a node that contributes no input identities.
func Void() *Provenance { return &Provenance{Kind: PVoid} }

// Fresh introduces a new identity axis tagged by axis.
func Fresh(axis qsu.Symbol) *Provenance { return &Provenance{Kind: PFresh, Axis: axis} }

// Project narrows base by access.
func Project(base *Provenance, access qscript.HoleExpr) *Provenance {
	return &Provenance{Kind: PProject, Left: base, Access: access}
}

// Then composes l and r as a product (joins multiply, shifts extend).
func Then(l, r *Provenance) *Provenance {
	return &Provenance{Kind: PThen, Left: l, Right: r}
}

// Both composes l and r as a sum (unions merge).
func Both(l, r *Provenance) *Provenance {
	return &Provenance{Kind: PBoth, Left: l, Right: r}
}

// Axes returns every PFresh axis symbol reachable within p, depth-first.
// Two provenances are "over the same axis set" iff Axes agree as sets;
// ReifyIdentities uses Axes of the root provenance to find live axes.
func (p *Provenance) Axes() []qsu.Symbol {
	if p == nil {
		return nil
	}
	switch p.Kind {
	case PFresh:
		return []qsu.Symbol{p.Axis}
	case PProject:
		return p.Left.Axes()
	case PThen, PBoth:
		return append(p.Left.Axes(), p.Right.Axes()...)
	default:
		return nil
	}
}
