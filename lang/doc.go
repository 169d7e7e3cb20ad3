// Package lang implements the directive language embedded in processed
// files: the tokenizer, the lazy evaluator, the built-in macros, and the
// line processor that expands blocks and drives nested inclusion.
//
// # Blocks
//
// A block is delimited by a start and an end marker chosen per file by a
// [Resolver]. The default pair is {@ and @}:
//
//	Hello, {@ $name @}!
//	{@ no_outline include_eval "header.txt" @}
//
// Python sources use """@@ and @@""", JavaScript uses /*@ and @*/, HTML and
// XML use <!--@ and @-->. A block must end on the line it starts on.
//
// # Grammar
//
// Informal EBNF:
//
//	Block     → Expr* END
//	Expr      → Variable | Literal | Macro | Group
//	Variable  → '$' Identifier
//	Literal   → Integer | Decimal | String
//	String    → '"' <text, \" is the only escape> '"'
//	Macro     → Identifier Expr*
//	Group     → '(' Expr* ')'
//
// A macro takes every expression that follows it on the same nesting level
// as its arguments. Use a group to bound them:
//
//	{@ concat (add 1 2) "x" @}    →  3x
//	{@ concat add 1 2 "x" @}      →  unsupported operand types
//
// # Evaluation
//
// Every expression yields zero or more values, each an integer, a decimal,
// or text. Evaluation is lazy: an argument is evaluated only when the macro
// receiving it pulls it, so the side effects of dbg, no_outline, and
// include_eval happen exactly when their result is demanded. A macro that
// reads its arguments reads all of them; only no_outline leaves its
// arguments unevaluated.
//
// # Macros
//
//	dbg ARGS...         print the arguments to the diagnostic stream
//	concat ARGS...      join the arguments into one text value
//	add|sub|mul|div     left-fold arithmetic over one or more arguments
//	include PATH        the raw lines of a file
//	include_eval PATH   the processed lines of a file
//	no_outline          drop the text around blocks on the current line
//	repeat N ARGS...    the arguments, evaluated once, repeated N times
//	separated SEP ARGS  the arguments with SEP between each pair
//	expr SOURCE         an expr-lang expression over the variables
//
// # Output
//
// Text outside blocks is copied verbatim and each block is replaced by the
// text of its values. When no_outline runs in the first block of a line,
// the surrounding text of that line is dropped and only the block output
// and the line terminator remain.
package lang
