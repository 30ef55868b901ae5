package mapfunc

// Derived family: arithmetic functions expressible as sugar over Core,
// kept as first-class constructors per spec.md §3 rather than expanded
// inline, so later passes can pattern-match on them directly.

func Abs[A any](x Free[A]) Free[A]   { return unary(KindAbs, x) }
func Ceil[A any](x Free[A]) Free[A]  { return unary(KindCeil, x) }
func Floor[A any](x Free[A]) Free[A] { return unary(KindFloor, x) }
func Trunc[A any](x Free[A]) Free[A] { return unary(KindTrunc, x) }
func Round[A any](x Free[A]) Free[A] { return unary(KindRound, x) }

func FloorScale[A any](x, scale Free[A]) Free[A] { return binary(KindFloorScale, x, scale) }
func CeilScale[A any](x, scale Free[A]) Free[A]  { return binary(KindCeilScale, x, scale) }
func RoundScale[A any](x, scale Free[A]) Free[A] { return binary(KindRoundScale, x, scale) }
