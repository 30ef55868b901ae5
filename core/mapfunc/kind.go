package mapfunc

// Kind discriminates the tagged union of scalar expression constructors
// described in spec.md §3 ("MapFunc"). A MapFunc tree is a Kind at every
// internal node; leaves are either a KindConstant node or a free
// variable of the generic leaf type A (see Free[A] in free.go).
type Kind int

const (
	KindConstant Kind = iota
	KindUndefined
	KindNow

	// arithmetic
	KindAdd
	KindSubtract
	KindMultiply
	KindDivide
	KindModulo
	KindPower
	KindNegate

	// comparison
	KindEq
	KindNeq
	KindLt
	KindLte
	KindGt
	KindGte

	// logical
	KindAnd
	KindOr
	KindNot

	// structural
	KindMakeArray
	KindMakeMap
	KindConcatArrays
	KindConcatMaps
	KindProjectKey
	KindProjectIndex
	KindDeleteKey

	// conversions
	KindBool
	KindInteger
	KindDecimal
	KindNull
	KindToString
	KindToID
	KindToTimestamp
	KindTypeOf
	KindMeta

	// temporal
	KindExtract
	KindDate
	KindTime
	KindTimestamp
	KindInterval
	KindStartOfDay
	KindTimeOfDay
	KindTemporalTrunc

	// string
	KindLength
	KindLower
	KindUpper
	KindSubstring
	KindSplit
	KindSearch

	// collection
	KindRange
	KindWithin

	// control
	KindIfUndefined
	KindCond
	KindBetween
	KindGuard
	KindJoinSideName

	// derived
	KindAbs
	KindCeil
	KindFloor
	KindTrunc
	KindRound
	KindFloorScale
	KindCeilScale
	KindRoundScale
)

var kindNames = map[Kind]string{
	KindConstant: "Constant", KindUndefined: "Undefined", KindNow: "Now",
	KindAdd: "Add", KindSubtract: "Subtract", KindMultiply: "Multiply",
	KindDivide: "Divide", KindModulo: "Modulo", KindPower: "Power", KindNegate: "Negate",
	KindEq: "Eq", KindNeq: "Neq", KindLt: "Lt", KindLte: "Lte", KindGt: "Gt", KindGte: "Gte",
	KindAnd: "And", KindOr: "Or", KindNot: "Not",
	KindMakeArray: "MakeArray", KindMakeMap: "MakeMap",
	KindConcatArrays: "ConcatArrays", KindConcatMaps: "ConcatMaps",
	KindProjectKey: "ProjectKey", KindProjectIndex: "ProjectIndex", KindDeleteKey: "DeleteKey",
	KindBool: "Bool", KindInteger: "Integer", KindDecimal: "Decimal", KindNull: "Null",
	KindToString: "ToString", KindToID: "ToId", KindToTimestamp: "ToTimestamp",
	KindTypeOf: "TypeOf", KindMeta: "Meta",
	KindExtract: "Extract", KindDate: "Date", KindTime: "Time", KindTimestamp: "Timestamp",
	KindInterval: "Interval", KindStartOfDay: "StartOfDay", KindTimeOfDay: "TimeOfDay",
	KindTemporalTrunc: "TemporalTrunc",
	KindLength:        "Length", KindLower: "Lower", KindUpper: "Upper",
	KindSubstring: "Substring", KindSplit: "Split", KindSearch: "Search",
	KindRange: "Range", KindWithin: "Within",
	KindIfUndefined: "IfUndefined", KindCond: "Cond", KindBetween: "Between",
	KindGuard: "Guard", KindJoinSideName: "JoinSideName",
	KindAbs: "Abs", KindCeil: "Ceil", KindFloor: "Floor", KindTrunc: "Trunc",
	KindRound: "Round", KindFloorScale: "FloorScale", KindCeilScale: "CeilScale",
	KindRoundScale: "RoundScale",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return "Unknown"
}

// TemporalPart enumerates the field extracted by an Extract node. Over
// twenty parts per spec.md §3.
type TemporalPart int

const (
	PartCentury TemporalPart = iota
	PartDayOfMonth
	PartDecade
	PartDayOfWeek
	PartDayOfYear
	PartEpoch
	PartHour
	PartIsoDayOfWeek
	PartIsoYear
	PartMicroseconds
	PartMillennium
	PartMilliseconds
	PartMinute
	PartMonth
	PartQuarter
	PartSecond
	PartTimezone
	PartTimezoneHour
	PartTimezoneMinute
	PartWeek
	PartYear
)
