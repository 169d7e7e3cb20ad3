package lang

import (
	"fmt"
	"log/slog"
	"math/big"
	"reflect"
	"slices"
	"strings"

	"github.com/expr-lang/expr"
)

// Macro transforms a lazy argument sequence into a lazy result sequence.
//
// Once a macro starts reading args it reads them all, even those it
// ignores. A macro that never ranges over args leaves them unevaluated.
// Side effects happen when the returned sequence is ranged over, not when
// the macro is called.
type Macro func(c *Context, args Seq) Seq

var registry map[string]Macro

func init() {
	registry = map[string]Macro{
		"dbg":          macroDebug,
		"concat":       macroConcat,
		"add":          arithmetic(OpAdd),
		"sub":          arithmetic(OpSub),
		"mul":          arithmetic(OpMul),
		"div":          arithmetic(OpDiv),
		"include":      macroInclude,
		"include_eval": macroIncludeEval,
		"no_outline":   macroNoOutline,
		"repeat":       macroRepeat,
		"separated":    macroSeparated,
		"expr":         macroExpr,
	}
}

// LookupMacro returns the built-in macro with the given name.
func LookupMacro(name string) (Macro, bool) {
	m, ok := registry[name]

	return m, ok
}

// MacroNames returns the names of all built-in macros in sorted order.
func MacroNames() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}

func macroDebug(c *Context, args Seq) Seq {
	return func(yield func(Value, error) bool) {
		vals, err := Collect(args)
		if err != nil {
			yield(Value{}, err)

			return
		}

		text := make([]string, len(vals))
		for i, v := range vals {
			text[i] = v.String()
		}

		c.debug(strings.Join(text, " "))
	}
}

func macroConcat(_ *Context, args Seq) Seq {
	return func(yield func(Value, error) bool) {
		var sb strings.Builder

		for v, err := range args {
			if err != nil {
				yield(Value{}, err)

				return
			}

			sb.WriteString(v.String())
		}

		yield(Text(sb.String()), nil)
	}
}

func arithmetic(op Operator) Macro {
	return func(_ *Context, args Seq) Seq {
		return func(yield func(Value, error) bool) {
			var (
				acc  Value
				seen bool
			)

			for v, err := range args {
				if err == nil && seen {
					acc, err = op.Apply(acc, v)
				}

				if err != nil {
					yield(Value{}, err)

					return
				}

				if !seen {
					acc, seen = v, true
				}
			}

			if !seen {
				yield(Value{}, ErrArithmeticArgumentMissing.With(slog.String("macro", string(op))))

				return
			}

			yield(acc, nil)
		}
	}
}

func macroInclude(c *Context, args Seq) Seq {
	return func(yield func(Value, error) bool) {
		name, err := pathArgument(args)
		if err != nil {
			yield(Value{}, err)

			return
		}

		path, err := c.locate(name)
		if err != nil {
			yield(Value{}, err)

			return
		}

		lines, err := readLines(path)
		if err != nil {
			yield(Value{}, err)

			return
		}

		for _, line := range lines {
			if !yield(Text(line), nil) {
				return
			}
		}
	}
}

func macroIncludeEval(c *Context, args Seq) Seq {
	return func(yield func(Value, error) bool) {
		name, err := pathArgument(args)
		if err != nil {
			yield(Value{}, err)

			return
		}

		lines, err := c.IncludeEval(name)
		if err != nil {
			yield(Value{}, err)

			return
		}

		for _, line := range lines {
			if !yield(Text(line), nil) {
				return
			}
		}
	}
}

func pathArgument(args Seq) (string, error) {
	v, ok, err := first(args)
	if err != nil {
		return "", err
	}

	if !ok {
		return "", ErrArgumentMissing.With(slog.String("argument", "path"))
	}

	return v.String(), nil
}

func macroNoOutline(c *Context, _ Seq) Seq {
	return func(func(Value, error) bool) {
		c.EmitOutline = false
	}
}

// macroRepeat evaluates every argument once and yields them count times.
func macroRepeat(_ *Context, args Seq) Seq {
	return func(yield func(Value, error) bool) {
		var (
			count int64
			seen  bool
			vals  []Value
		)

		for v, err := range args {
			if err == nil && !seen {
				count, err = v.count()
				seen = true

				if err == nil {
					continue
				}
			}

			if err != nil {
				yield(Value{}, err)

				return
			}

			vals = append(vals, v)
		}

		if !seen {
			yield(Value{}, ErrArgumentMissing.With(slog.String("argument", "count")))

			return
		}

		for range count {
			for _, v := range vals {
				if !yield(v, nil) {
					return
				}
			}
		}
	}
}

// macroSeparated yields its arguments after the first, with the first
// between each consecutive pair.
func macroSeparated(_ *Context, args Seq) Seq {
	return func(yield func(Value, error) bool) {
		var (
			sep              Value
			haveSep, emitted bool
		)

		for v, err := range args {
			if err != nil {
				yield(Value{}, err)

				return
			}

			if !haveSep {
				sep, haveSep = v, true

				continue
			}

			if emitted && !yield(sep, nil) {
				return
			}

			emitted = true

			if !yield(v, nil) {
				return
			}
		}
	}
}

// macroExpr evaluates its first argument with expr-lang. The current
// variables form the environment. A list result yields each element.
func macroExpr(c *Context, args Seq) Seq {
	return func(yield func(Value, error) bool) {
		v, ok, err := first(args)
		if err != nil {
			yield(Value{}, err)

			return
		}

		if !ok {
			yield(Value{}, ErrArgumentMissing.With(slog.String("argument", "expression")))

			return
		}

		src := v.String()
		env := make(map[string]any, c.vars.Len())

		for name, val := range c.vars.All() {
			env[name] = val.Native()
		}

		prog, hit, err := compileExpr(src)
		if err != nil {
			yield(Value{}, ErrExprEvaluate.Wrap(err).With(slog.String("expression", src)))

			return
		}

		c.proc.logger.TraceContext(c.ctx, "expr",
			slog.String("expression", src),
			slog.Bool("cache_hit", hit),
		)

		out, err := expr.Run(prog, env)
		if err != nil {
			yield(Value{}, ErrExprEvaluate.Wrap(err).With(slog.String("expression", src)))

			return
		}

		for _, val := range fromNative(out) {
			if !yield(val, nil) {
				return
			}
		}
	}
}

// fromNative converts an expression result into values. Nil yields
// nothing and slices yield one value per element.
func fromNative(x any) []Value {
	if x == nil {
		return nil
	}

	rv := reflect.ValueOf(x)

	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return []Value{Integer(rv.Int())}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return []Value{BigInteger(new(big.Int).SetUint64(rv.Uint()))}
	case reflect.Float32, reflect.Float64:
		return []Value{Decimal(rv.Float())}
	case reflect.String:
		return []Value{Text(rv.String())}
	case reflect.Slice, reflect.Array:
		var out []Value
		for i := range rv.Len() {
			out = append(out, fromNative(rv.Index(i).Interface())...)
		}

		return out
	default:
		return []Value{Text(fmt.Sprint(x))}
	}
}
