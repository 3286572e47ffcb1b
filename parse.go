package symcalc

import (
	"io"
	"math/big"
	"strings"
)

// Expr  = Cmp
// Cmp   = Sum { ('==' | '!=' | '<' | '<=' | '>' | '>=') Sum }
// Sum   = Prod { ('+' | '-') Prod }
// Prod  = Pow { ('*' | '/') Pow | Pow }
// Pow   = Unary [ '^' Pow ]
// Unary = ('+' | '-') Unary | Atom
// Atom  = num | const | var | func '(' Expr { ',' Expr } ')' | '(' Expr ')'
//
// The juxtaposed Pow in Prod is an implied multiplication. It applies only
// when the token before it and its first token form one of the pairs listed
// in implicitMul.

// MaxImplicitMul is the maximum number of consecutive implied
// multiplications.
const MaxImplicitMul = 1000

// Parse parses an expression so it can be evaluated or simplified with a
// context. The given options are applied in order.
func Parse(src io.RuneScanner, opts ...ParseOption) (*Expr, error) {
	p := parsectx{
		prec:     Precision(),
		maxDepth: DefaultMaxDepth,
		names:    make(map[string]bool),
	}
	for _, opt := range opts {
		p = opt.parseOption(p)
	}
	ps := parser{scan: lex(src), p: &p}
	if err := ps.advance(); err != nil {
		return nil, err
	}
	n, err := ps.parseterm(exprprec)
	if err != nil {
		return nil, err
	}
	if ps.cur.kind != tokenEOF {
		return nil, itShouldNotHaveEndedThisWay(ps.cur, false)
	}
	ex := Expr{
		n:     n,
		names: make([]string, 0, len(p.names)),
	}
	for k := range p.names {
		ex.names = append(ex.names, k)
	}
	sortstrs(ex.names)
	return &ex, nil
}

// ParseString is a shortcut to parse a string expression.
func ParseString(src string, opts ...ParseOption) (*Expr, error) {
	return Parse(strings.NewReader(src), opts...)
}

// sortstrs sorts a string slice without using package sort because that has
// reflection and allocation problems.
func sortstrs(names []string) {
	for i := 1; i < len(names); i++ {
		for j := i; j > 0 && names[j] < names[j-1]; j-- {
			names[j], names[j-1] = names[j-1], names[j]
		}
	}
}

// parser holds the token window and recursion state of a parse.
type parser struct {
	scan *lexer
	p    *parsectx
	// prev is the last consumed token, and cur is the next token to consume.
	prev, cur lexToken
	depth     int
}

// advance consumes the current token and scans the next.
func (ps *parser) advance() error {
	tok, err := ps.scan.next()
	if err != nil {
		return err
	}
	ps.prev, ps.cur = ps.cur, tok
	return nil
}

// enter increases the recursion depth. Each successful call must be paired
// with a call to leave.
func (ps *parser) enter() error {
	if ps.depth >= ps.p.maxDepth {
		return &DepthError{Col: ps.cur.pos, Max: ps.p.maxDepth}
	}
	ps.depth++
	return nil
}

func (ps *parser) leave() {
	ps.depth--
}

// parseterm parses operators which bind more tightly than until, including
// implied multiplications. On return, ps.cur is the first token which is not
// part of the term.
func (ps *parser) parseterm(until operator) (*node, error) {
	if err := ps.enter(); err != nil {
		return nil, err
	}
	defer ps.leave()
	n, err := ps.parseunary()
	if err != nil {
		return nil, err
	}
	implied := 0
	for {
		tok := ps.cur
		switch {
		case tok.kind == tokenOp:
			prec := binop(tok.text)
			if prec.op == nodeNone {
				return nil, &OperatorError{Col: tok.pos, Operator: tok.text, Unary: false}
			}
			if !prec.moreBinding(until) {
				return n, nil
			}
			if err := ps.advance(); err != nil {
				return nil, err
			}
			rhs, err := ps.parseterm(prec)
			if err != nil {
				return nil, err
			}
			n = binNode(prec.op, n, rhs)
			implied = 0
		case implicitMul(ps.prev, tok):
			// (parsed) x -> (parsed) * (x)
			// (parsed) x^(expr) -> (parsed) * (x^(expr))
			// a^(parsed) x -> (a^(parsed)) * (x)
			if !termprec.moreBinding(until) {
				return n, nil
			}
			implied++
			if implied > MaxImplicitMul {
				return nil, &ImplicitMulError{Col: tok.pos}
			}
			rhs, err := ps.parseterm(termprec)
			if err != nil {
				return nil, err
			}
			n = binNode(nodeMul, n, rhs)
		default:
			return n, nil
		}
	}
}

// implicitMul returns whether a multiplication is implied between the last
// token of one term and the first token of the next.
func implicitMul(prev, cur lexToken) bool {
	switch {
	case prev.isNum():
		switch cur.kind {
		case tokenOpen, tokenInt, tokenFloat, tokenFunc, tokenConst, tokenIdent:
			return true
		}
	case prev.kind == tokenClose:
		switch cur.kind {
		case tokenOpen, tokenInt, tokenFloat, tokenFunc, tokenConst, tokenIdent:
			return true
		}
	case prev.kind == tokenConst, prev.kind == tokenIdent:
		return cur.isNum() || cur.kind == tokenOpen
	}
	return false
}

// parseunary parses a chain of prefix operators and the atom they apply to.
func (ps *parser) parseunary() (*node, error) {
	if ps.cur.kind != tokenOp {
		return ps.parseatom()
	}
	if err := ps.enter(); err != nil {
		return nil, err
	}
	defer ps.leave()
	tok := ps.cur
	op := unop(tok.text)
	if op.op == nodeNone {
		return nil, &OperatorError{Col: tok.pos, Operator: tok.text, Unary: true}
	}
	if err := ps.advance(); err != nil {
		return nil, err
	}
	rhs, err := ps.parseunary()
	if err != nil {
		return nil, err
	}
	return &node{kind: op.op, left: rhs}, nil
}

// parseatom parses a literal, name, call, or parenthesized expression.
func (ps *parser) parseatom() (*node, error) {
	tok := ps.cur
	var n *node
	switch tok.kind {
	case tokenInt, tokenFloat:
		x, err := ps.parsenum(tok)
		if err != nil {
			return nil, err
		}
		n = x
	case tokenConst:
		n = &node{kind: nodeConst, name: tok.text}
	case tokenIdent:
		if !ps.p.vars[tok.text] {
			return nil, &NameError{Col: tok.pos, Name: tok.text}
		}
		ps.p.names[tok.text] = true
		n = &node{kind: nodeVar, name: tok.text}
	case tokenFunc:
		return ps.parsecall()
	case tokenOpen:
		if err := ps.advance(); err != nil {
			return nil, err
		}
		rhs, err := ps.parseterm(exprprec)
		if err != nil {
			return nil, err
		}
		if ps.cur.kind != tokenClose {
			return nil, itShouldNotHaveEndedThisWay(ps.cur, true)
		}
		n = rhs
	case tokenClose:
		return nil, &EmptyExpressionError{Col: tok.pos, End: tok.text}
	case tokenSep:
		return nil, &SeparatorError{Col: tok.pos, Sep: tok.text}
	case tokenEOF:
		return nil, &EmptyExpressionError{Col: tok.pos, End: ""}
	default:
		panic("symcalc: unknown token: " + tok.String())
	}
	if err := ps.advance(); err != nil {
		return nil, err
	}
	return n, nil
}

// parsenum converts a literal token to a number node. Integer literals are
// exact regardless of the parse precision.
func (ps *parser) parsenum(tok lexToken) (*node, error) {
	if tok.kind == tokenInt {
		i, ok := new(big.Int).SetString(tok.text, 10)
		if !ok {
			return nil, &LexError{Text: tok.text, Kind: "number", Col: tok.pos}
		}
		n := intNode(i, ps.p.prec)
		n.name = tok.text
		return n, nil
	}
	x, _, err := new(big.Float).SetPrec(ps.p.prec).Parse(tok.text, 10)
	if err != nil {
		// The lexer only produces well-formed literals, so this is an
		// exponent out of range.
		return nil, &LexError{Text: tok.text, Kind: "number", Col: tok.pos}
	}
	n := numNode(x, false)
	n.name = tok.text
	return n, nil
}

// parsecall parses a function name and its argument list.
func (ps *parser) parsecall() (*node, error) {
	tok := ps.cur
	fn := tok.fn
	if err := ps.advance(); err != nil {
		return nil, err
	}
	open := ps.cur
	if open.kind != tokenOpen {
		return nil, &CallError{Col: open.pos, Func: tok.text, Len: 0, Want: fn.Arity()}
	}
	if err := ps.advance(); err != nil {
		return nil, err
	}
	var args []*node
	if ps.cur.kind != tokenClose {
		for {
			arg, err := ps.parseterm(exprprec)
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if ps.cur.kind != tokenSep {
				break
			}
			if err := ps.advance(); err != nil {
				return nil, err
			}
		}
		if ps.cur.kind != tokenClose {
			return nil, itShouldNotHaveEndedThisWay(ps.cur, true)
		}
	}
	if len(args) != fn.Arity() {
		return nil, &CallError{Col: open.pos, Func: tok.text, Len: len(args), Want: fn.Arity()}
	}
	if err := ps.advance(); err != nil {
		return nil, err
	}
	return callNode(fn, args...), nil
}

// itShouldNotHaveEndedThisWay returns an error appropriate for an unexpected
// token at the end of a subexpression. open is whether the expression is
// inside parentheses.
func itShouldNotHaveEndedThisWay(tok lexToken, open bool) error {
	switch tok.kind {
	case tokenEOF:
		if open {
			// Unexpected EOF implies an open bracket that was not closed.
			return &BracketError{Col: tok.pos, Left: "("}
		}
		panic("symcalc: expression ended at EOF")
	case tokenClose:
		return &BracketError{Col: tok.pos, Right: tok.text}
	case tokenSep:
		// Separator outside a function call.
		return &SeparatorError{Col: tok.pos, Sep: tok.text}
	default:
		return &TokenError{Col: tok.pos, Text: tok.text}
	}
}

type operator struct {
	// prec is the precedence value. Higher is more binding.
	prec int8
	// right indicates right-associativity.
	right bool
	// op is the node kind to use when this operator is selected.
	op nodeKind
}

func (p operator) moreBinding(than operator) bool {
	if p.prec != than.prec {
		return p.prec > than.prec
	}
	return p.right
}

// binop gets a binary operator for a token string. If there is no such binary
// operator, then the result has an op of nodeNone.
func binop(text string) operator {
	switch text {
	case "==":
		return operator{0, false, nodeEq}
	case "!=":
		return operator{0, false, nodeNe}
	case "<":
		return operator{0, false, nodeLt}
	case "<=":
		return operator{0, false, nodeLe}
	case ">":
		return operator{0, false, nodeGt}
	case ">=":
		return operator{0, false, nodeGe}
	case "+":
		return operator{1, false, nodeAdd}
	case "-":
		return operator{1, false, nodeSub}
	case "*":
		return operator{5, false, nodeMul}
	case "/":
		return operator{5, false, nodeDiv}
	case "^":
		return operator{15, true, nodePow}
	default:
		return operator{}
	}
}

// unop gets a unary operator for a token string. If there is no such unary
// operator, then the result has an op of nodeNone.
func unop(text string) operator {
	switch text {
	case "+":
		return operator{20, true, nodePlus}
	case "-":
		return operator{20, true, nodeNeg}
	default:
		return operator{}
	}
}

var (
	// termprec is the precedence of implied multiplication. It must match
	// that of explicit multiplication.
	termprec = binop("*")
	// exprprec is the precedence required to parse an entire subexpression.
	exprprec = operator{-128, true, nodeNone}
)
