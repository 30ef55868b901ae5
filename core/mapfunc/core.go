package mapfunc

import "github.com/spf13/cast"

// This file holds the Core family constructors from spec.md §3: one
// helper per MapFunc constructor, each rolling exactly one layer. None
// of these allocate fresh symbols or perform evaluation — construction
// is pure, per §4.1's contract.

func unary[A any](k Kind, x Free[A]) Free[A]            { return rolled(k, x) }
func binary[A any](k Kind, l, r Free[A]) Free[A]        { return rolled(k, l, r) }
func ternary[A any](k Kind, a, b, c Free[A]) Free[A]    { return rolled(k, a, b, c) }
func nilary[A any](k Kind) Free[A]                      { return rolled[A](k) }

// Constant rolls a literal value node. v is whatever concrete Go value
// the host's constant domain uses (ints, strings, bools, decimals, ...).
func Constant[A any](v interface{}) Free[A] {
	return Free[A]{node: &Node[A]{Kind: KindConstant, Const: v}}
}

// ConstantOf is Constant with the literal coerced onto this package's
// canonical constant domain first, via cast — the entry point builders
// that only have a loosely-typed literal in hand (a parsed query's token
// text, a host value pulled from reflection) should use instead of
// Constant so every MapFunc constant downstream sees one of int64,
// float64, string, bool or nil, never a stray host-specific numeric
// type (int32, json.Number, ...).
func ConstantOf[A any](v interface{}) Free[A] {
	return Free[A]{node: &Node[A]{Kind: KindConstant, Const: canonicalConstant(v)}}
}

func canonicalConstant(v interface{}) interface{} {
	switch v.(type) {
	case nil, int64, float64, string, bool:
		return v
	case float32:
		return cast.ToFloat64(v)
	}
	if i, err := cast.ToInt64E(v); err == nil {
		return i
	}
	if f, err := cast.ToFloat64E(v); err == nil {
		return f
	}
	if b, err := cast.ToBoolE(v); err == nil {
		return b
	}
	if s, err := cast.ToStringE(v); err == nil {
		return s
	}
	return v
}

func Undefined[A any]() Free[A] { return nilary[A](KindUndefined) }
func Now[A any]() Free[A]       { return nilary[A](KindNow) }

// arithmetic
func Add[A any](l, r Free[A]) Free[A]      { return binary(KindAdd, l, r) }
func Subtract[A any](l, r Free[A]) Free[A] { return binary(KindSubtract, l, r) }
func Multiply[A any](l, r Free[A]) Free[A] { return binary(KindMultiply, l, r) }
func Divide[A any](l, r Free[A]) Free[A]   { return binary(KindDivide, l, r) }
func Modulo[A any](l, r Free[A]) Free[A]   { return binary(KindModulo, l, r) }
func Power[A any](l, r Free[A]) Free[A]    { return binary(KindPower, l, r) }
func Negate[A any](x Free[A]) Free[A]      { return unary(KindNegate, x) }

// comparison
func Eq[A any](l, r Free[A]) Free[A]  { return binary(KindEq, l, r) }
func Neq[A any](l, r Free[A]) Free[A] { return binary(KindNeq, l, r) }
func Lt[A any](l, r Free[A]) Free[A]  { return binary(KindLt, l, r) }
func Lte[A any](l, r Free[A]) Free[A] { return binary(KindLte, l, r) }
func Gt[A any](l, r Free[A]) Free[A]  { return binary(KindGt, l, r) }
func Gte[A any](l, r Free[A]) Free[A] { return binary(KindGte, l, r) }

// logical
func And[A any](l, r Free[A]) Free[A] { return binary(KindAnd, l, r) }
func Or[A any](l, r Free[A]) Free[A]  { return binary(KindOr, l, r) }
func Not[A any](x Free[A]) Free[A]    { return unary(KindNot, x) }

// structural
func MakeArray[A any](x Free[A]) Free[A]          { return unary(KindMakeArray, x) }
func MakeMap[A any](k, v Free[A]) Free[A]         { return binary(KindMakeMap, k, v) }
func ConcatArrays[A any](l, r Free[A]) Free[A]    { return binary(KindConcatArrays, l, r) }
func ConcatMaps[A any](l, r Free[A]) Free[A]      { return binary(KindConcatMaps, l, r) }
func ProjectKey[A any](src, key Free[A]) Free[A]  { return binary(KindProjectKey, src, key) }
func ProjectIndex[A any](src, idx Free[A]) Free[A] { return binary(KindProjectIndex, src, idx) }
func DeleteKey[A any](src, key Free[A]) Free[A]   { return binary(KindDeleteKey, src, key) }

// ProjectKeyS is sugar for ProjectKey(src, Constant(str key)).
func ProjectKeyS[A any](src Free[A], key string) Free[A] {
	return ProjectKey(src, Constant[A](key))
}

// MakeMapS is sugar for MakeMap(Constant(str key), v).
func MakeMapS[A any](key string, v Free[A]) Free[A] {
	return MakeMap(Constant[A](key), v)
}

// DeleteKeyS is sugar for DeleteKey(src, Constant(str key)).
func DeleteKeyS[A any](src Free[A], key string) Free[A] {
	return DeleteKey(src, Constant[A](key))
}

// ProjectIndexI is sugar for ProjectIndex(src, Constant(int idx)).
func ProjectIndexI[A any](src Free[A], idx int) Free[A] {
	return ProjectIndex(src, Constant[A](idx))
}

// conversions
func Bool[A any](x Free[A]) Free[A]         { return unary(KindBool, x) }
func Integer[A any](x Free[A]) Free[A]      { return unary(KindInteger, x) }
func Decimal[A any](x Free[A]) Free[A]      { return unary(KindDecimal, x) }
func Null[A any](x Free[A]) Free[A]         { return unary(KindNull, x) }
func ToString[A any](x Free[A]) Free[A]     { return unary(KindToString, x) }
func ToID[A any](x Free[A]) Free[A]         { return unary(KindToID, x) }
func ToTimestamp[A any](x Free[A]) Free[A]  { return unary(KindToTimestamp, x) }
func TypeOf[A any](x Free[A]) Free[A]       { return unary(KindTypeOf, x) }
func Meta[A any](x Free[A]) Free[A]         { return unary(KindMeta, x) }

// temporal
func Extract[A any](part TemporalPart, x Free[A]) Free[A] {
	return Free[A]{node: &Node[A]{Kind: KindExtract, Children: []Free[A]{x}, Part: part}}
}

func TemporalTrunc[A any](part TemporalPart, x Free[A]) Free[A] {
	return Free[A]{node: &Node[A]{Kind: KindTemporalTrunc, Children: []Free[A]{x}, Part: part}}
}

func Date[A any](x Free[A]) Free[A]       { return unary(KindDate, x) }
func Time[A any](x Free[A]) Free[A]       { return unary(KindTime, x) }
func Timestamp[A any](x Free[A]) Free[A]  { return unary(KindTimestamp, x) }
func Interval[A any](x Free[A]) Free[A]   { return unary(KindInterval, x) }
func StartOfDay[A any](x Free[A]) Free[A] { return unary(KindStartOfDay, x) }
func TimeOfDay[A any](x Free[A]) Free[A]  { return unary(KindTimeOfDay, x) }

// string
func Length[A any](x Free[A]) Free[A] { return unary(KindLength, x) }
func Lower[A any](x Free[A]) Free[A]  { return unary(KindLower, x) }
func Upper[A any](x Free[A]) Free[A]  { return unary(KindUpper, x) }

func Substring[A any](str, start, length Free[A]) Free[A] {
	return ternary(KindSubstring, str, start, length)
}
func Split[A any](str, delim Free[A]) Free[A] { return binary(KindSplit, str, delim) }

// Search matches str against pattern; caseInsensitive toggles LIKE-style
// case folding.
func Search[A any](str, pattern Free[A], caseInsensitive bool) Free[A] {
	return Free[A]{node: &Node[A]{Kind: KindSearch, Children: []Free[A]{str, pattern}, CaseInsensitive: caseInsensitive}}
}

// collection
func Range[A any](from, to Free[A]) Free[A]   { return binary(KindRange, from, to) }
func Within[A any](x, arr Free[A]) Free[A]    { return binary(KindWithin, x, arr) }

// control
func IfUndefined[A any](x, fallback Free[A]) Free[A] { return binary(KindIfUndefined, x, fallback) }
func Cond[A any](pred, ifTrue, ifFalse Free[A]) Free[A] {
	return ternary(KindCond, pred, ifTrue, ifFalse)
}
func Between[A any](x, lo, hi Free[A]) Free[A] { return ternary(KindBetween, x, lo, hi) }

// Guard narrows src to typ, evaluating cont if the runtime type check
// succeeds and fallback otherwise.
func Guard[A any](src, typ, cont, fallback Free[A]) Free[A] {
	return Free[A]{node: &Node[A]{Kind: KindGuard, Children: []Free[A]{src, typ, cont, fallback}}}
}

// JoinSideName tags which join side (by name) a projected column came
// from; used while reifying auto-joins.
func JoinSideName[A any](side string) Free[A] {
	return Free[A]{node: &Node[A]{Kind: KindJoinSideName, Const: side}}
}
