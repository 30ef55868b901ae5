package qscript

// This file is the Fix-carrier half of the construction DSL (spec.md
// §4.1): one helper per QScript constructor, embedding its pattern into
// Fix via embed. Constructions are pure and never allocate fresh
// symbols — equality of constructed trees is structural (Go's built-in
// struct/slice-free comparison would need reflect.DeepEqual since Pattern
// holds slices; callers compare with reflect.DeepEqual or
// github.com/google/go-cmp as the teacher's tests do).

func MapOp(src Fix, fn HoleExpr) Fix {
	return embed(Pattern[Fix]{Kind: KindMap, Src: src, Fn: fn})
}

func LeftShiftOp(src Fix, strct HoleExpr, idStatus IdStatus, shiftTy ShiftType, repair JoinFunc) Fix {
	return embed(Pattern[Fix]{Kind: KindLeftShift, Src: src, Struct: strct, IDStatus: idStatus, ShiftTy: shiftTy, Repair: repair})
}

func ReduceOp(src Fix, bucket []HoleExpr, reducers []ReduceFunc, repair ReduceRepairFunc) Fix {
	return embed(Pattern[Fix]{Kind: KindReduce, Src: src, Bucket: bucket, Reducers: reducers, ReduceRepair: repair})
}

func SortOp(src Fix, keys []SortKey) Fix {
	return embed(Pattern[Fix]{Kind: KindSort, Src: src, SortKeys: keys})
}

func FilterOp(src Fix, predicate HoleExpr) Fix {
	return embed(Pattern[Fix]{Kind: KindFilter, Src: src, Predicate: predicate})
}

func UnionOp(src, lBranch, rBranch Fix) Fix {
	return embed(Pattern[Fix]{Kind: KindUnion, Src: src, LBranch: lBranch, RBranch: rBranch})
}

func SubsetOpNode(src, from Fix, op SubsetOp, count HoleExpr) Fix {
	return embed(Pattern[Fix]{Kind: KindSubset, Src: src, From: from, SubsetOp: op, Count: count})
}

func UnreferencedOp() Fix {
	return embed(Pattern[Fix]{Kind: KindUnreferenced})
}

func ThetaJoinOp(src, lBranch, rBranch Fix, on JoinFunc, joinType JoinType, combine JoinFunc) Fix {
	return embed(Pattern[Fix]{Kind: KindThetaJoin, Src: src, LBranch: lBranch, RBranch: rBranch, On: on, JoinType: joinType, Combine: combine})
}

func EquiJoinOp(src, lBranch, rBranch Fix, keys []EquiJoinKey, joinType JoinType, combine JoinFunc) Fix {
	return embed(Pattern[Fix]{Kind: KindEquiJoin, Src: src, LBranch: lBranch, RBranch: rBranch, Keys: keys, JoinType: joinType, Combine: combine})
}

func ReadOp(path string) Fix {
	return embed(Pattern[Fix]{Kind: KindRead, Path: path})
}

func ShiftedReadOp(path string, idStatus IdStatus) Fix {
	return embed(Pattern[Fix]{Kind: KindShiftedRead, Path: path, IDStatus: idStatus})
}

func RootOp() Fix {
	return embed(Pattern[Fix]{Kind: KindRoot})
}

// HoleOp is the polymorphic Hole leaf for branch sub-plans: "the row
// flowing into this sub-plan" from the enclosing node's src.
func HoleOp() Fix {
	return embed(Pattern[Fix]{Kind: KindSrcHole})
}

// MultiLeftShiftOp builds the intermediate n-ary shift node ExpandShifts
// consumes (spec.md §3/§4.6).
func MultiLeftShiftOp(src Fix, shifts []ShiftEntry, repair ShiftRepairFunc) Fix {
	return embed(Pattern[Fix]{Kind: KindMultiLeftShift, Src: src, Shifts: shifts, ShiftRepair: repair})
}
