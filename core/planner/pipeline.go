// Package planner implements LPtoQS, the deterministic sequence of
// transformations that threads a LogicalPlan through to a QScriptEducated
// tree (spec.md §4.4), plus the ExpandShifts and Graduate passes that do
// the heaviest lifting in that sequence.
package planner

import (
	"github.com/quasar-analytics/quasar/core/lp"
	"github.com/quasar-analytics/quasar/core/qauth"
	"github.com/quasar-analytics/quasar/core/qscript"
	"github.com/quasar-analytics/quasar/core/qsu"
)

// lpLogicalPlan is an unexported alias kept local to this file purely so
// LPtoQS's signature reads in terms of the package's own vocabulary; it
// is exactly lp.LogicalPlan.
type lpLogicalPlan = lp.LogicalPlan

// EducatedResult is LPtoQS's final artifact: the QScriptEducated tree
// Graduate produced.
type EducatedResult struct {
	Tree qscript.Fix
}

// Rule is one pass in the pipeline: a pure or stateful transformation
// over an AuthenticatedQSU, returning whether it changed anything. This
// mirrors the teacher's analyzer Rule signature
// (func(*sql.Context, *Analyzer, sql.Node, *plan.Scope, RuleSelector) (sql.Node, transform.TreeIdentity, error)),
// generalized to the core's AuthenticatedQSU ⇄ QSUGraph vocabulary.
type Rule struct {
	Name string
	Run  func(*Context, qauth.AuthenticatedQSU) (qauth.AuthenticatedQSU, qsu.TreeIdentity, error)
}

// MaxAnalysisIterations bounds LPtoQS's fixed-point loop, mirroring the
// teacher's own maxAnalysisIterations/ErrMaxAnalysisIters guard.
const MaxAnalysisIterations = 8

// Builder assembles an ordered rule list, letting a host insert extra
// passes the way the teacher's analyzer.Builder supports
// AddPreAnalyzeRule/AddPostAnalyzeRule.
type Builder struct {
	rules []Rule
}

// NewBuilder starts from LPtoQS's default ordering (spec.md §4.4).
func NewBuilder() *Builder {
	return &Builder{rules: append([]Rule(nil), defaultRules...)}
}

// InsertBefore inserts rule immediately before the named pass (for hosts
// that need a pre-pass hook).
func (b *Builder) InsertBefore(name string, rule Rule) *Builder {
	for i, r := range b.rules {
		if r.Name == name {
			b.rules = append(b.rules[:i:i], append([]Rule{rule}, b.rules[i:]...)...)
			return b
		}
	}
	b.rules = append(b.rules, rule)
	return b
}

// InsertAfter inserts rule immediately after the named pass.
func (b *Builder) InsertAfter(name string, rule Rule) *Builder {
	for i, r := range b.rules {
		if r.Name == name {
			b.rules = append(b.rules[:i+1:i+1], append([]Rule{rule}, b.rules[i+1:]...)...)
			return b
		}
	}
	b.rules = append(b.rules, rule)
	return b
}

// Build returns the assembled rule sequence.
func (b *Builder) Build() []Rule {
	return append([]Rule(nil), b.rules...)
}

// defaultRules is LPtoQS's pass ordering (spec.md §4.4 items 2-5 and
// 7-11; ReadLP, ApplyProvenance, ReifyIdentities and Graduate are driven
// separately since they change the carried type — ApplyProvenance
// produces the first AuthenticatedQSU and ReifyIdentities consumes the
// last one).
var defaultRules = []Rule{
	{Name: "RewriteGroupByArrays", Run: rewriteGroupByArrays},
	{Name: "EliminateUnary", Run: eliminateUnary},
	{Name: "RecognizeDistinct", Run: recognizeDistinct},
	{Name: "ExtractFreeMap", Run: extractFreeMap},
	{Name: "ReifyBuckets", Run: reifyBuckets},
	{Name: "MinimizeAutoJoins", Run: minimizeAutoJoins},
	{Name: "ReifyAutoJoins", Run: reifyAutoJoins},
	{Name: "ExpandShifts", Run: expandShiftsRule},
	{Name: "ResolveOwnIdentities", Run: resolveOwnIdentities},
}

// LPtoQS runs spec.md §4.4's full sequence: ReadLP, the Builder's default
// (or host-customized) rule list run to a fixed point, ReifyIdentities,
// and finally Graduate. plan is the LogicalPlan tree to compile.
func LPtoQS(ctx *Context, builder *Builder, plan *lpLogicalPlan) (EducatedResult, error) {
	g, err := ReadLP(ctx, plan)
	if err != nil {
		return EducatedResult{}, err
	}
	ctx.Trace("ReadLP", g)

	authed, err := qauth.ApplyProvenance(g)
	if err != nil {
		return EducatedResult{}, err
	}
	ctx.Trace("ApplyProvenance", authed.Graph)

	rules := builder.Build()
	for iter := 0; ; iter++ {
		if iter >= MaxAnalysisIterations {
			return EducatedResult{}, ErrMaxAnalysisIters.New(MaxAnalysisIterations)
		}
		changedThisPass := false
		for _, rule := range rules {
			next, same, err := rule.Run(ctx, authed)
			if err != nil {
				return EducatedResult{}, err
			}
			ctx.Trace(rule.Name, next.Graph)
			if same == qsu.NewTree {
				changedThisPass = true
			}
			authed = next
		}
		if !changedThisPass {
			break
		}
	}

	researched, err := ReifyIdentities(ctx, authed)
	if err != nil {
		return EducatedResult{}, err
	}
	ctx.Trace("ReifyIdentities", researched.Auth.Graph)

	educated, err := Graduate(ctx, researched)
	if err != nil {
		return EducatedResult{}, err
	}
	ctx.Log.WithField("pass", "Graduate").Debug("pass boundary")

	return educated, nil
}
