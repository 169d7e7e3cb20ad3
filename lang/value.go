package lang

import (
	"iter"
	"log/slog"
	"math"
	"math/big"
	"strconv"
	"strings"
)

// Kind identifies the variant held by a [Value].
type Kind uint8

const (
	KindInteger Kind = iota
	KindDecimal
	KindText
)

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "integer"
	case KindDecimal:
		return "decimal"
	case KindText:
		return "text"
	default:
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Value is a single datum produced by evaluation: an integer, a decimal, or
// a text string. Integers are exact: those outside the int64 range are held
// as a [big.Int]. The zero Value is the integer 0.
type Value struct {
	kind Kind
	num  int64
	big  *big.Int // set only when the integer does not fit num
	dec  float64
	text string
}

// Integer returns a Value holding n.
func Integer(n int64) Value { return Value{kind: KindInteger, num: n} }

// BigInteger returns a Value holding n, which must not be modified
// afterwards.
func BigInteger(n *big.Int) Value {
	if n.IsInt64() {
		return Integer(n.Int64())
	}

	return Value{kind: KindInteger, big: n}
}

// Decimal returns a Value holding f.
func Decimal(f float64) Value { return Value{kind: KindDecimal, dec: f} }

// Text returns a Value holding s.
func Text(s string) Value { return Value{kind: KindText, text: s} }

// Kind returns the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// String returns the canonical rendering of v: integers in base 10,
// decimals in shortest round-trip form (integral decimals keep a trailing
// ".0"), and text verbatim.
func (v Value) String() string {
	switch v.kind {
	case KindDecimal:
		return formatDecimal(v.dec)
	case KindText:
		return v.text
	}

	if v.big != nil {
		return v.big.String()
	}

	return strconv.FormatInt(v.num, 10)
}

// LogValue implements slog.LogValuer.
func (v Value) LogValue() slog.Value {
	switch v.kind {
	case KindDecimal:
		return slog.Float64Value(v.dec)
	case KindText:
		return slog.StringValue(v.text)
	}

	if v.big != nil {
		return slog.StringValue(v.big.String())
	}

	return slog.Int64Value(v.num)
}

// Native returns v as an int64, float64, or string. Integers outside the
// int64 range become their nearest float64.
func (v Value) Native() any {
	switch v.kind {
	case KindDecimal:
		return v.dec
	case KindText:
		return v.text
	}

	if v.big != nil {
		return v.float()
	}

	return v.num
}

func formatDecimal(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}

	if abs := math.Abs(f); abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}

	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(s, ".") {
		s += ".0"
	}

	return s
}

// count converts v to a repetition count: integers as is, decimals
// truncated toward zero, text parsed as a base-10 integer.
func (v Value) count() (int64, error) {
	switch v.kind {
	case KindDecimal:
		if math.IsNaN(v.dec) || math.IsInf(v.dec, 0) {
			return 0, ErrInvalidCount.With(slog.Any("value", v))
		}

		return int64(v.dec), nil
	case KindText:
		n, err := strconv.ParseInt(strings.TrimSpace(v.text), 10, 64)
		if err != nil {
			return 0, ErrInvalidCount.Wrap(err).With(slog.String("value", v.text))
		}

		return n, nil
	}

	if v.big != nil {
		return 0, ErrInvalidCount.With(slog.Any("value", v))
	}

	return v.num, nil
}

func (v Value) float() float64 {
	if v.kind == KindDecimal {
		return v.dec
	}

	if v.big != nil {
		f, _ := new(big.Float).SetInt(v.big).Float64()

		return f
	}

	return float64(v.num)
}

func (v Value) bigInt() *big.Int {
	if v.big != nil {
		return v.big
	}

	return big.NewInt(v.num)
}

func (v Value) numeric() bool { return v.kind != KindText }

// Operator names one of the four arithmetic macros.
type Operator string

const (
	OpAdd Operator = "add"
	OpSub Operator = "sub"
	OpMul Operator = "mul"
	OpDiv Operator = "div"
)

// Apply combines a and b under op.
//
// Two integers produce an integer, except under division which always
// produces a decimal. Any decimal operand promotes the result to decimal.
// Text operands support concatenation (text + text) and repetition
// (text * integer, integer * text); every other pairing fails with
// [ErrOperandType].
func (op Operator) Apply(a, b Value) (Value, error) {
	switch {
	case a.numeric() && b.numeric():
		return op.numeric(a, b)

	case op == OpAdd && a.kind == KindText && b.kind == KindText:
		return Text(a.text + b.text), nil

	case op == OpMul && a.kind == KindText && b.kind == KindInteger:
		return repeatText(a.text, b)

	case op == OpMul && a.kind == KindInteger && b.kind == KindText:
		return repeatText(b.text, a)
	}

	return Value{}, ErrOperandType.With(
		slog.String("macro", string(op)),
		slog.String("left", a.kind.String()),
		slog.String("right", b.kind.String()),
	)
}

func (op Operator) numeric(a, b Value) (Value, error) {
	if op == OpDiv {
		if b.float() == 0 {
			return Value{}, ErrDivisionByZero.With(slog.Any("dividend", a))
		}

		return Decimal(a.float() / b.float()), nil
	}

	if a.kind == KindInteger && b.kind == KindInteger {
		if a.big == nil && b.big == nil {
			if n, ok := op.exact(a.num, b.num); ok {
				return Integer(n), nil
			}
		}

		x, y, z := a.bigInt(), b.bigInt(), new(big.Int)

		switch op {
		case OpAdd:
			z.Add(x, y)
		case OpSub:
			z.Sub(x, y)
		default:
			z.Mul(x, y)
		}

		return BigInteger(z), nil
	}

	x, y := a.float(), b.float()

	switch op {
	case OpAdd:
		return Decimal(x + y), nil
	case OpSub:
		return Decimal(x - y), nil
	default:
		return Decimal(x * y), nil
	}
}

// exact applies op to x and y, reporting false if the result overflows
// int64.
func (op Operator) exact(x, y int64) (int64, bool) {
	switch op {
	case OpAdd:
		n := x + y

		return n, (n > x) == (y > 0)
	case OpSub:
		n := x - y

		return n, (n < x) == (y > 0)
	}

	if x == 0 || y == 0 {
		return 0, true
	}

	if (x == -1 && y == math.MinInt64) || (y == -1 && x == math.MinInt64) {
		return 0, false
	}

	n := x * y

	return n, n/y == x
}

// repeatText repeats s n times; a count of zero or less yields "".
func repeatText(s string, n Value) (Value, error) {
	if (n.big != nil && n.big.Sign() < 0) || (n.big == nil && n.num <= 0) {
		return Text(""), nil
	}

	if n.big != nil || n.num > math.MaxInt/max(int64(len(s)), 1) {
		return Value{}, ErrInvalidCount.With(slog.Any("value", n))
	}

	return Text(strings.Repeat(s, int(n.num))), nil
}

// Seq is a lazy, pull-based stream of values. Producers stop as soon as
// the consumer stops ranging, and report failures through the error
// element, after which the stream ends.
type Seq = iter.Seq2[Value, error]

// Values returns a Seq yielding vs in order.
func Values(vs ...Value) Seq {
	return func(yield func(Value, error) bool) {
		for _, v := range vs {
			if !yield(v, nil) {
				return
			}
		}
	}
}

// Collect drains s into a slice, stopping at the first error.
func Collect(s Seq) ([]Value, error) {
	var out []Value

	for v, err := range s {
		if err != nil {
			return out, err
		}

		out = append(out, v)
	}

	return out, nil
}

// first evaluates every element of s and returns the first one. The rest
// are evaluated for their side effects and discarded.
func first(s Seq) (Value, bool, error) {
	vals, err := Collect(s)
	if err != nil || len(vals) == 0 {
		return Value{}, false, err
	}

	return vals[0], true, nil
}
