package lang

import (
	"log/slog"
	"math/big"
	"regexp"
	"strconv"
	"strings"
)

// TokenKind identifies the lexical class of a [Token].
type TokenKind uint8

const (
	TokenVariable TokenKind = iota
	TokenMacro
	TokenLiteral
	TokenGroupOpen
	TokenGroupClose
)

// String returns the name of the token kind.
func (k TokenKind) String() string {
	switch k {
	case TokenVariable:
		return "variable"
	case TokenMacro:
		return "macro"
	case TokenLiteral:
		return "literal"
	case TokenGroupOpen:
		return "("
	case TokenGroupClose:
		return ")"
	default:
		return "TokenKind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Token is a lexical unit of a directive block.
type Token struct {
	Kind   TokenKind
	Text   string // variable (without '$') or macro name
	Value  Value  // literal value
	Offset int    // position of the token in the source
}

// String returns the token as it would appear in source.
func (t Token) String() string {
	switch t.Kind {
	case TokenVariable:
		return "$" + t.Text
	case TokenMacro:
		return t.Text
	case TokenLiteral:
		if t.Value.Kind() == KindText {
			return strconv.Quote(t.Value.String())
		}

		return t.Value.String()
	default:
		return t.Kind.String()
	}
}

type ruleKind uint8

const (
	ruleVariable ruleKind = iota
	ruleMacro
	ruleLiteral
	ruleGroupOpen
	ruleGroupClose
	ruleSpace
)

// tokenRules are tried in order at each position; the first match wins.
// The block-end marker is tried before all of them.
var tokenRules = []struct {
	kind ruleKind
	re   *regexp.Regexp
}{
	{ruleVariable, regexp.MustCompile(`^\$[\p{L}\p{N}_]+`)},
	{ruleMacro, regexp.MustCompile(`^[a-zA-Z][\p{L}\p{N}_]*`)},
	{ruleLiteral, regexp.MustCompile(`^(?:[0-9]+(?:\.[0-9]+)?|"(?:\\?.)*?")`)},
	{ruleGroupOpen, regexp.MustCompile(`^\(`)},
	{ruleGroupClose, regexp.MustCompile(`^\)`)},
	{ruleSpace, regexp.MustCompile(`^[\s\v\p{Z}]+`)},
}

var offendingText = regexp.MustCompile(`^[^\s\v\p{Z}]+`)

// Tokenizer scans directive source one token at a time, starting at an
// offset and stopping at the block-end marker.
type Tokenizer struct {
	src  string
	pos  int
	end  *regexp.Regexp
	done bool
}

// NewTokenizer returns a Tokenizer reading src from pos.
//
// The stream ends when end matches at the current position. If end is nil,
// the stream ends with the input instead; otherwise running out of input
// fails with [ErrUnterminatedBlock].
func NewTokenizer(src string, pos int, end *regexp.Regexp) *Tokenizer {
	return &Tokenizer{src: src, pos: pos, end: end}
}

// Offset returns the position just after the last consumed match,
// including whitespace and the block-end marker.
func (t *Tokenizer) Offset() int { return t.pos }

// Next returns the next token. The boolean result is false once the
// stream has ended.
func (t *Tokenizer) Next() (Token, bool, error) {
	for !t.done {
		rest := t.src[t.pos:]

		if t.end != nil {
			if loc := t.end.FindStringIndex(rest); loc != nil && loc[0] == 0 {
				t.pos += loc[1]
				t.done = true

				break
			}
		}

		if rest == "" {
			t.done = true

			if t.end != nil {
				return Token{}, false, ErrUnterminatedBlock.With(slog.Int("offset", t.pos))
			}

			break
		}

		tok, skip, err := t.match(rest)
		if err != nil {
			t.done = true

			return Token{}, false, err
		}

		if !skip {
			return tok, true, nil
		}
	}

	return Token{}, false, nil
}

func (t *Tokenizer) match(rest string) (tok Token, skip bool, err error) {
	for _, rule := range tokenRules {
		loc := rule.re.FindStringIndex(rest)
		if loc == nil || loc[1] == 0 {
			continue
		}

		text := rest[:loc[1]]
		tok = Token{Offset: t.pos}
		t.pos += loc[1]

		switch rule.kind {
		case ruleVariable:
			tok.Kind, tok.Text = TokenVariable, text[1:]
		case ruleMacro:
			tok.Kind, tok.Text = TokenMacro, text
		case ruleLiteral:
			tok.Kind = TokenLiteral
			tok.Value, err = parseLiteral(text)
		case ruleGroupOpen:
			tok.Kind = TokenGroupOpen
		case ruleGroupClose:
			tok.Kind = TokenGroupClose
		case ruleSpace:
			skip = true
		}

		if err != nil {
			err = WrapError(err).With(slog.Int("offset", tok.Offset))
		}

		return tok, skip, err
	}

	return Token{}, false, ErrSyntax.With(
		slog.String("text", offendingText.FindString(rest)),
		slog.Int("offset", t.pos),
	)
}

// parseLiteral converts matched literal text to a Value. Quoted strings
// recognize only the \" escape; every other backslash is kept.
func parseLiteral(text string) (Value, error) {
	if strings.HasPrefix(text, `"`) {
		return Text(strings.ReplaceAll(text[1:len(text)-1], `\"`, `"`)), nil
	}

	if strings.Contains(text, ".") {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return Value{}, ErrInvalidLiteral.Wrap(err).With(slog.String("text", text))
		}

		return Decimal(f), nil
	}

	n, ok := new(big.Int).SetString(text, 10)
	if !ok {
		return Value{}, ErrInvalidLiteral.With(slog.String("text", text))
	}

	return BigInteger(n), nil
}
