package planner

import (
	"fmt"

	goerrors "gopkg.in/src-d/go-errors.v1"

	"github.com/quasar-analytics/quasar/core/qsu"
)

// The PlannerError taxonomy from spec.md §6/§7, declared with
// gopkg.in/src-d/go-errors.v1's errors.NewKind, exactly the way the
// teacher declares ErrMaxAnalysisIters and friends
// (sql/analyzer/analyzer_test.go).
var (
	// ErrMalformedInput: the incoming LogicalPlan violates an expected
	// shape.
	ErrMalformedInput = goerrors.NewKind("malformed input: %s")
	// ErrUnresolvedReference: a symbol references a node absent from the
	// graph.
	ErrUnresolvedReference = goerrors.NewKind("unresolved reference to symbol %s")
	// ErrUnboundVariable mirrors spec.md §6's PlannerError variant of the
	// same name.
	ErrUnboundVariable = goerrors.NewKind("unbound variable %s")
	// ErrProvenanceInvariantViolated: QAuth missing an entry after a pass
	// declared it complete.
	ErrProvenanceInvariantViolated = goerrors.NewKind("provenance invariant violated: %s")
	// ErrUnexpectedConstruct: Graduate encountered a node an earlier pass
	// was supposed to eliminate.
	ErrUnexpectedConstruct = goerrors.NewKind("unexpected construct at %s: %s")
	// ErrNonRepresentableInExpr mirrors spec.md §6.
	ErrNonRepresentableInExpr = goerrors.NewKind("not representable as an expression: %s")
	// ErrNoFilePathFound mirrors spec.md §6.
	ErrNoFilePathFound = goerrors.NewKind("no file path found for symbol %s")
	// ErrInternal: any assertion failure.
	ErrInternal = goerrors.NewKind("internal error: %s")
	// ErrMaxAnalysisIters bounds the pipeline's fixed-point iteration,
	// mirroring the teacher's own sentinel of the same name.
	ErrMaxAnalysisIters = goerrors.NewKind("exceeded max analysis iterations (%d)")
)

// MalformedInput builds an ErrMalformedInput including the offending
// detail.
func MalformedInput(detail string) error { return ErrMalformedInput.New(detail) }

// UnresolvedReference builds an ErrUnresolvedReference including the
// offending symbol.
func UnresolvedReference(sym qsu.Symbol) error {
	return ErrUnresolvedReference.New(sym.String())
}

// UnexpectedConstruct builds an ErrUnexpectedConstruct including the
// offending symbol and a description of the construct Graduate refused.
func UnexpectedConstruct(sym qsu.Symbol, what string) error {
	return ErrUnexpectedConstruct.New(sym.String(), what)
}

// Internalf builds an ErrInternal with a formatted message.
func Internalf(format string, args ...interface{}) error {
	return ErrInternal.New(fmt.Sprintf(format, args...))
}
