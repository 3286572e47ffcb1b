package symcalc

import (
	"errors"
	"io"
	"strconv"
	"strings"
	"unicode"
)

// MaxInputLength is the maximum number of runes the lexer accepts in a single
// expression.
const MaxInputLength = 1024

type lexToken struct {
	text string
	kind tokenKind
	pos  int
	// fn is the function identity for tokenFunc.
	fn Func
}

func (t lexToken) String() string {
	return t.kind.String() + ":" + t.text + "@" + strconv.Itoa(t.pos)
}

type tokenKind int

const (
	tokenNone tokenKind = iota
	// tokenEOF indicates the end of the input.
	tokenEOF
	// tokenInt is a decimal literal with no point or exponent.
	tokenInt
	// tokenFloat is a decimal literal with a point or exponent.
	tokenFloat
	// tokenOp is an operator, including comparisons.
	tokenOp
	// tokenOpen is an open parenthesis.
	tokenOpen
	// tokenClose is a close parenthesis.
	tokenClose
	// tokenSep is the function argument separator.
	tokenSep
	// tokenFunc is a name from the function table. fn holds the function.
	tokenFunc
	// tokenConst is a name from the constants table. text holds the
	// canonical name.
	tokenConst
	// tokenIdent is any other name.
	tokenIdent
)

var tokenKindNames = [...]string{
	tokenNone:  "None",
	tokenEOF:   "EOF",
	tokenInt:   "Int",
	tokenFloat: "Float",
	tokenOp:    "Op",
	tokenOpen:  "Open",
	tokenClose: "Close",
	tokenSep:   "Sep",
	tokenFunc:  "Func",
	tokenConst: "Const",
	tokenIdent: "Ident",
}

func (k tokenKind) String() string {
	if k < 0 || int(k) >= len(tokenKindNames) {
		return "tokenKind(" + strconv.Itoa(int(k)) + ")"
	}
	return tokenKindNames[k]
}

// isNum returns whether the token is a numeric literal.
func (t lexToken) isNum() bool {
	return t.kind == tokenInt || t.kind == tokenFloat
}

type lexer struct {
	src  io.RuneScanner
	buf  strings.Builder
	rune int
	// back holds runes that were read and given back, most recent last.
	back []rune
	eof  bool
	// max is the number of runes the lexer accepts.
	max int
}

func lex(src io.RuneScanner) *lexer {
	return &lexer{
		src:  src,
		rune: 1,
		max:  MaxInputLength,
	}
}

// readRune reads a rune and updates the lexer's position info.
func (l *lexer) readRune() (rune, error) {
	if n := len(l.back); n > 0 {
		r := l.back[n-1]
		l.back = l.back[:n-1]
		l.rune++
		return r, nil
	}
	r, sz, err := l.src.ReadRune()
	if err != nil {
		return r, err
	}
	if sz > 0 {
		l.rune++
	}
	if l.rune-1 > l.max {
		return r, &LexError{
			Text: "input longer than " + strconv.Itoa(l.max) + " characters",
			Kind: "input",
			Col:  l.rune - 1,
		}
	}
	return r, nil
}

// unreadRune gives back a rune so that the next readRune returns it. Any
// number of runes may be given back.
func (l *lexer) unreadRune(r rune) {
	l.back = append(l.back, r)
	l.rune--
}

// next scans the next token from the input. Once the input is exhausted, the
// result is always an EOF token with a nil error.
func (l *lexer) next() (lexToken, error) {
	if l.eof {
		return lexToken{kind: tokenEOF, pos: l.rune}, nil
	}
	defer l.buf.Reset()
	tok := lexToken{pos: l.rune}
	for {
		r, err := l.readRune()
		if err != nil {
			if errors.Is(err, io.EOF) {
				tok.kind = tokenEOF
				l.eof = true
				return tok, nil
			}
			return tok, err
		}
		switch {
		case unicode.IsSpace(r):
			tok.pos++
			continue
		case '0' <= r && r <= '9', r == '.':
			l.unreadRune(r)
			kind, err := l.scanNum()
			if err != nil {
				return tok, err
			}
			tok.text = l.buf.String()
			tok.kind = kind
			return tok, nil
		case r == '_', unicode.IsLetter(r):
			l.unreadRune(r)
			if err := l.scanIdent(); err != nil {
				return tok, err
			}
			tok.text = l.buf.String()
			if fn, ok := LookupFunc(tok.text); ok {
				tok.kind = tokenFunc
				tok.fn = fn
				return tok, nil
			}
			if c, ok := lookupConst(tok.text); ok {
				tok.kind = tokenConst
				tok.text = c
				return tok, nil
			}
			tok.kind = tokenIdent
			return tok, nil
		case r == ',':
			tok.text = ","
			tok.kind = tokenSep
			return tok, nil
		case r == '(':
			tok.text = "("
			tok.kind = tokenOpen
			return tok, nil
		case r == ')':
			tok.text = ")"
			tok.kind = tokenClose
			return tok, nil
		case r == '+', r == '-', r == '*', r == '/', r == '^':
			tok.text = string(r)
			tok.kind = tokenOp
			return tok, nil
		case r == '×':
			tok.text = "*"
			tok.kind = tokenOp
			return tok, nil
		case r == '÷':
			tok.text = "/"
			tok.kind = tokenOp
			return tok, nil
		case r == '<', r == '>', r == '=', r == '!':
			if err := l.scanCmp(r); err != nil {
				return tok, err
			}
			tok.text = l.buf.String()
			tok.kind = tokenOp
			return tok, nil
		default:
			// Write the rune so that it shows up in the error message.
			l.buf.WriteRune(r)
			return tok, l.error("")
		}
	}
}

// scanNum scans a decimal literal. The result is tokenInt unless the literal
// has a point or an exponent.
func (l *lexer) scanNum() (tokenKind, error) {
	kind := tokenInt
	var dig, dot bool
	for {
		r, err := l.readRune()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return tokenNone, err
		}
		switch {
		case '0' <= r && r <= '9':
			dig = true
			l.buf.WriteRune(r)
			continue
		case r == '.':
			l.buf.WriteRune(r)
			if dot {
				return tokenNone, l.error("number")
			}
			dot = true
			kind = tokenFloat
			continue
		case r == 'e' || r == 'E':
			if !dig {
				l.unreadRune(r)
				break
			}
			ok, err := l.scanExp(r)
			if err != nil {
				return tokenNone, err
			}
			if ok {
				kind = tokenFloat
			}
		default:
			l.unreadRune(r)
		}
		break
	}
	if !dig {
		return tokenNone, l.error("number")
	}
	return kind, nil
}

// scanExp scans an exponent after the marker e. If the marker is not followed
// by a digit or by a sign and a digit, then the marker is given back and the
// result is false, unless a sign follows it, which is an error.
func (l *lexer) scanExp(e rune) (bool, error) {
	r, err := l.readRune()
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	switch {
	case err != nil:
		l.unreadRune(e)
		return false, nil
	case '0' <= r && r <= '9':
		l.buf.WriteRune(e)
	case r == '+' || r == '-':
		s, serr := l.readRune()
		if serr != nil && !errors.Is(serr, io.EOF) {
			return false, serr
		}
		if serr != nil || s < '0' || '9' < s {
			l.buf.WriteRune(e)
			l.buf.WriteRune(r)
			err := l.error("number")
			if serr == nil {
				l.unreadRune(s)
			}
			return false, err
		}
		l.buf.WriteRune(e)
		l.buf.WriteRune(r)
		r = s
	default:
		// 3e means 3 times e.
		l.unreadRune(r)
		l.unreadRune(e)
		return false, nil
	}
	l.buf.WriteRune(r)
	for {
		r, err := l.readRune()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return true, nil
			}
			return false, err
		}
		if r < '0' || '9' < r {
			l.unreadRune(r)
			return true, nil
		}
		l.buf.WriteRune(r)
	}
}

func (l *lexer) scanIdent() error {
	for {
		r, err := l.readRune()
		if err != nil {
			if errors.Is(err, io.EOF) {
				// next gives back the rune that decides ident scanning before
				// calling scanIdent, so we have scanned at least one rune.
				return nil
			}
			return err
		}
		switch {
		case r == '_', unicode.IsLetter(r), unicode.IsDigit(r):
			l.buf.WriteRune(r)
		default:
			l.unreadRune(r)
			return nil
		}
	}
}

// scanCmp scans a comparison operator starting with r. = and ! are only
// valid when followed by =.
func (l *lexer) scanCmp(r rune) error {
	l.buf.WriteRune(r)
	s, err := l.readRune()
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	if err == nil {
		if s == '=' {
			l.buf.WriteRune(s)
			return nil
		}
		l.unreadRune(s)
	}
	if r == '=' || r == '!' {
		return l.error("operator")
	}
	return nil
}

func (l *lexer) error(kind string) error {
	return &LexError{
		Text: l.buf.String(),
		Kind: kind,
		Col:  l.rune - 1,
	}
}

// LexError indicates an invalid token. It implements InputError.
type LexError struct {
	// Text is the token the lexer was scanning when the invalid rune was
	// encountered, plus the invalid rune.
	Text string
	// Kind is the type of token the lexer was scanning. This may be "number",
	// "operator", "input" for input that is too long, or the empty string if
	// a token kind hadn't been decided.
	Kind string
	// Col is the total number of runes scanned by the lexer up to and
	// including this error.
	Col int
}

func (err *LexError) Error() string {
	pos := "column " + strconv.Itoa(err.Col)
	if err.Kind == "" {
		return "invalid token at " + pos + ": " + err.Text
	}
	if err.Kind == "input" {
		return "invalid input at " + pos + ": " + err.Text
	}
	return "invalid " + err.Kind + " token at " + pos + ": " + err.Text
}

func (err *LexError) Pos() int {
	return err.Col
}
