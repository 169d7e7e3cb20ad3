package lang

import (
	"log/slog"
)

// tokenStream adds one token of lookahead and nesting depth tracking to a
// [Tokenizer]. The first error is sticky.
type tokenStream struct {
	tok    *Tokenizer
	peeked Token
	ok     bool
	filled bool
	err    error
	depth  int
}

func newTokenStream(t *Tokenizer) *tokenStream { return &tokenStream{tok: t} }

func (s *tokenStream) peek() (Token, bool, error) {
	if !s.filled && s.err == nil {
		s.peeked, s.ok, s.err = s.tok.Next()
		s.filled = true
	}

	return s.peeked, s.ok && s.err == nil, s.err
}

func (s *tokenStream) next() (Token, bool, error) {
	tok, ok, err := s.peek()
	if !ok {
		return tok, ok, err
	}

	s.filled = false

	switch tok.Kind {
	case TokenGroupOpen:
		s.depth++
	case TokenGroupClose:
		s.depth--
	}

	return tok, true, nil
}

// skip discards tokens without evaluating them until the stream is back
// at depth and positioned at a group close or the end of the block.
// Skipped tokens are still checked: groups must be closed and macro names
// must exist.
func (s *tokenStream) skip(depth int) error {
	for {
		tok, ok, err := s.peek()
		if err != nil {
			return err
		}

		if !ok {
			if s.depth > depth {
				return ErrUnclosedGroup.With(slog.Int("offset", s.tok.Offset()))
			}

			return nil
		}

		if s.depth < depth || (s.depth == depth && tok.Kind == TokenGroupClose) {
			return nil
		}

		if tok.Kind == TokenMacro {
			if _, found := LookupMacro(tok.Text); !found {
				return ErrMacroNotFound.With(
					slog.String("name", tok.Text),
					slog.Int("offset", tok.Offset),
				)
			}
		}

		s.next()
	}
}

// evaluator turns a token stream into lazy value sequences.
type evaluator struct {
	ctx    *Context
	tokens *tokenStream
}

// body yields the values of the expressions at the current nesting level
// until a group close or the end of the stream, which is left unconsumed.
func (e *evaluator) body() Seq {
	return func(yield func(Value, error) bool) {
		for {
			tok, ok, err := e.tokens.peek()
			if err != nil {
				yield(Value{}, err)

				return
			}

			if !ok || tok.Kind == TokenGroupClose {
				return
			}

			e.tokens.next()

			var seq Seq

			switch tok.Kind {
			case TokenGroupOpen:
				seq = e.group()

			case TokenVariable:
				v, found := e.ctx.vars.Get(tok.Text)
				if !found {
					yield(Value{}, ErrVariableNotFound.With(
						slog.String("name", tok.Text),
						slog.Int("offset", tok.Offset),
					))

					return
				}

				if !yield(v, nil) {
					return
				}

			case TokenLiteral:
				if !yield(tok.Value, nil) {
					return
				}

			case TokenMacro:
				m, found := LookupMacro(tok.Text)
				if !found {
					yield(Value{}, ErrMacroNotFound.With(
						slog.String("name", tok.Text),
						slog.Int("offset", tok.Offset),
					))

					return
				}

				seq = e.invoke(tok.Text, m)
			}

			if seq == nil {
				continue
			}

			for v, err := range seq {
				if !yield(v, err) || err != nil {
					return
				}
			}
		}
	}
}

// group yields the values of a parenthesized body and then requires the
// closing parenthesis.
func (e *evaluator) group() Seq {
	return func(yield func(Value, error) bool) {
		for v, err := range e.body() {
			if !yield(v, err) || err != nil {
				return
			}
		}

		tok, ok, err := e.tokens.next()

		switch {
		case err != nil:
			yield(Value{}, err)
		case !ok:
			yield(Value{}, ErrUnclosedGroup.With(slog.Int("offset", e.tokens.tok.Offset())))
		case tok.Kind != TokenGroupClose:
			yield(Value{}, ErrUnexpectedToken.With(
				slog.String("token", tok.String()),
				slog.Int("offset", tok.Offset),
			))
		}
	}
}

// invoke calls m with the rest of the current level as its arguments.
// Arguments m does not pull are skipped unevaluated once m finishes.
func (e *evaluator) invoke(name string, m Macro) Seq {
	return func(yield func(Value, error) bool) {
		depth := e.tokens.depth

		for v, err := range m(e.ctx, e.body()) {
			if err != nil {
				if ee := WrapError(err); !ee.hasAttr("macro") {
					err = ee.With(slog.String("macro", name))
				}

				yield(Value{}, err)

				return
			}

			if !yield(v, nil) {
				return
			}
		}

		if err := e.tokens.skip(depth); err != nil {
			yield(Value{}, err)
		}
	}
}

// block evaluates every top-level expression of a block and renders the
// values as text, in order.
func (e *evaluator) block() ([]string, error) {
	var out []string

	for v, err := range e.body() {
		if err != nil {
			return nil, err
		}

		out = append(out, v.String())
	}

	tok, ok, err := e.tokens.next()
	if err != nil {
		return nil, err
	}

	if ok {
		return nil, ErrUnexpectedToken.With(
			slog.String("token", tok.String()),
			slog.Int("offset", tok.Offset),
		)
	}

	return out, nil
}
