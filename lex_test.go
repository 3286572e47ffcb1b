package symcalc

import (
	"errors"
	"strings"
	"testing"
)

func TestLex(t *testing.T) {
	cases := []struct {
		src    string
		tokens []lexToken
		errs   int
	}{
		// spaces
		{"", nil, 0},
		{" \t \r\n ", nil, 0},
		// numbers
		{"0", []lexToken{{text: "0", kind: tokenInt, pos: 1}}, 0},
		{"9876543210", []lexToken{{text: "9876543210", kind: tokenInt, pos: 1}}, 0},
		{"1 0", []lexToken{{text: "1", kind: tokenInt, pos: 1}, {text: "0", kind: tokenInt, pos: 3}}, 0},
		{"1.0", []lexToken{{text: "1.0", kind: tokenFloat, pos: 1}}, 0},
		{"1.", []lexToken{{text: "1.", kind: tokenFloat, pos: 1}}, 0},
		{"-1", []lexToken{{text: "-", kind: tokenOp, pos: 1}, {text: "1", kind: tokenInt, pos: 2}}, 0},
		{"1e1", []lexToken{{text: "1e1", kind: tokenFloat, pos: 1}}, 0},
		{"1e+1", []lexToken{{text: "1e+1", kind: tokenFloat, pos: 1}}, 0},
		{"1e-1", []lexToken{{text: "1e-1", kind: tokenFloat, pos: 1}}, 0},
		{"1E-30", []lexToken{{text: "1E-30", kind: tokenFloat, pos: 1}}, 0},
		{"1.0e1", []lexToken{{text: "1.0e1", kind: tokenFloat, pos: 1}}, 0},
		{".1", []lexToken{{text: ".1", kind: tokenFloat, pos: 1}}, 0},
		{".1e1", []lexToken{{text: ".1e1", kind: tokenFloat, pos: 1}}, 0},
		{"3e", []lexToken{{text: "3", kind: tokenInt, pos: 1}, {text: "e", kind: tokenConst, pos: 2}}, 0},
		{"2exp", []lexToken{{text: "2", kind: tokenInt, pos: 1}, {text: "exp", kind: tokenFunc, pos: 2, fn: Exp}}, 0},
		{"1a", []lexToken{{text: "1", kind: tokenInt, pos: 1}, {text: "a", kind: tokenIdent, pos: 2}}, 0},
		{"1e+", []lexToken{{pos: 1}}, 1},
		{"1e-x", []lexToken{{pos: 1}, {text: "x", kind: tokenIdent, pos: 4}}, 1},
		{"1.1.1", []lexToken{{pos: 1}, {text: "1", kind: tokenInt, pos: 5}}, 1},
		{".", []lexToken{{pos: 1}}, 1},
		{".e1", []lexToken{{pos: 1}, {text: "e1", kind: tokenIdent, pos: 2}}, 1},
		{"1+0", []lexToken{{text: "1", kind: tokenInt, pos: 1}, {text: "+", kind: tokenOp, pos: 2}, {text: "0", kind: tokenInt, pos: 3}}, 0},
		{"1*0", []lexToken{{text: "1", kind: tokenInt, pos: 1}, {text: "*", kind: tokenOp, pos: 2}, {text: "0", kind: tokenInt, pos: 3}}, 0},
		{"(1)", []lexToken{{text: "(", kind: tokenOpen, pos: 1}, {text: "1", kind: tokenInt, pos: 2}, {text: ")", kind: tokenClose, pos: 3}}, 0},
		// identifiers
		{"e", []lexToken{{text: "e", kind: tokenConst, pos: 1}}, 0},
		{"E", []lexToken{{text: "e", kind: tokenConst, pos: 1}}, 0},
		{"PI", []lexToken{{text: "pi", kind: tokenConst, pos: 1}}, 0},
		{"π", []lexToken{{text: "pi", kind: tokenConst, pos: 1}}, 0},
		{"e1", []lexToken{{text: "e1", kind: tokenIdent, pos: 1}}, 0},
		{"eπ", []lexToken{{text: "eπ", kind: tokenIdent, pos: 1}}, 0},
		{"_1234_", []lexToken{{text: "_1234_", kind: tokenIdent, pos: 1}}, 0},
		{"sin(", []lexToken{{text: "sin", kind: tokenFunc, pos: 1, fn: Sin}, {text: "(", kind: tokenOpen, pos: 4}}, 0},
		{"arctan2", []lexToken{{text: "arctan2", kind: tokenFunc, pos: 1, fn: Atan2}}, 0},
		{"ln", []lexToken{{text: "ln", kind: tokenFunc, pos: 1, fn: Log}}, 0},
		// operators
		{"+", []lexToken{{text: "+", kind: tokenOp, pos: 1}}, 0},
		{"++", []lexToken{{text: "+", kind: tokenOp, pos: 1}, {text: "+", kind: tokenOp, pos: 2}}, 0},
		{"a--b", []lexToken{{text: "a", kind: tokenIdent, pos: 1}, {text: "-", kind: tokenOp, pos: 2}, {text: "-", kind: tokenOp, pos: 3}, {text: "b", kind: tokenIdent, pos: 4}}, 0},
		{"×÷", []lexToken{{text: "*", kind: tokenOp, pos: 1}, {text: "/", kind: tokenOp, pos: 2}}, 0},
		{"<", []lexToken{{text: "<", kind: tokenOp, pos: 1}}, 0},
		{"<=", []lexToken{{text: "<=", kind: tokenOp, pos: 1}}, 0},
		{">1", []lexToken{{text: ">", kind: tokenOp, pos: 1}, {text: "1", kind: tokenInt, pos: 2}}, 0},
		{">=", []lexToken{{text: ">=", kind: tokenOp, pos: 1}}, 0},
		{"==", []lexToken{{text: "==", kind: tokenOp, pos: 1}}, 0},
		{"!=", []lexToken{{text: "!=", kind: tokenOp, pos: 1}}, 0},
		{"=", []lexToken{{pos: 1}}, 1},
		{"!1", []lexToken{{pos: 1}, {text: "1", kind: tokenInt, pos: 2}}, 1},
		{",", []lexToken{{text: ",", kind: tokenSep, pos: 1}}, 0},
		// erroneous symbols
		{"$", []lexToken{{pos: 1}}, 1},
		{"a$", []lexToken{{text: "a", kind: tokenIdent, pos: 1}, {pos: 2}}, 1},
		{"$a", []lexToken{{pos: 1}, {text: "a", kind: tokenIdent, pos: 2}}, 1},
		{"$0", []lexToken{{pos: 1}, {text: "0", kind: tokenInt, pos: 2}}, 1},
		{"$$", []lexToken{{pos: 1}, {pos: 2}}, 2},
		{"[1]", []lexToken{{pos: 1}, {text: "1", kind: tokenInt, pos: 2}, {pos: 3}}, 2},
	}

	for _, c := range cases {
		scan := lex(strings.NewReader(c.src))
		for _, want := range c.tokens {
			got, err := scan.next()
			if got.kind == tokenEOF {
				t.Errorf("scanning %q: expected token %v but got EOF", c.src, want)
				continue
			}
			if got != want {
				t.Errorf("scanning %q: want %v, got %v", c.src, want, got)
			}
			if err != nil {
				if c.errs > 0 {
					c.errs--
					continue
				}
				t.Errorf("scanning %q: unexpected error %v", c.src, err)
			}
		}
		for got, err := scan.next(); got.kind != tokenEOF; got, err = scan.next() {
			if c.errs > 0 {
				c.errs--
			}
			t.Errorf("scanning %q: extra token %v with error: %v", c.src, got, err)
		}
		if c.errs > 0 {
			t.Errorf("scanning %q: not enough errors", c.src)
		}
	}
}

func TestLexEOFPersists(t *testing.T) {
	scan := lex(strings.NewReader("1"))
	if tok, err := scan.next(); err != nil || tok.kind != tokenInt {
		t.Fatalf("wrong first token %v (%v)", tok, err)
	}
	for i := 0; i < 3; i++ {
		tok, err := scan.next()
		if err != nil {
			t.Errorf("unexpected error %v", err)
		}
		if tok.kind != tokenEOF {
			t.Errorf("want EOF, got %v", tok)
		}
	}
}

func TestLexTooLong(t *testing.T) {
	src := strings.Repeat("1+", MaxInputLength/2) + "1"
	scan := lex(strings.NewReader(src))
	for {
		tok, err := scan.next()
		if err != nil {
			var le *LexError
			if !errors.As(err, &le) {
				t.Fatalf("wrong error type %T: %v", err, err)
			}
			if le.Kind != "input" {
				t.Errorf("wrong error kind %q", le.Kind)
			}
			if le.Col != MaxInputLength+1 {
				t.Errorf("wrong error column: want %d, got %d", MaxInputLength+1, le.Col)
			}
			return
		}
		if tok.kind == tokenEOF {
			t.Fatal("no error on input that is too long")
		}
	}
}
