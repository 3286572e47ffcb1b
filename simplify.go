package symcalc

import "math/big"

// Simplify rewrites an expression into a simpler, equivalent form using
// algebraic identities. The input expression is not modified, and the result
// shares no nodes with it.
//
// Children are simplified before their parents, and operands of + and * are
// put into the order defined by Compare, so that expressions differing only
// in the order of those operands simplify to equal results. Simplifying a
// simplified expression returns an equal expression.
//
// A division by a literal zero is replaced by 0, and the returned error
// reports it. Integer literals fold exactly regardless of the context's
// precision; other literals are never evaluated.
func (ctx *Context) Simplify(e *Expr) (*Expr, error) {
	s := simplifier{prec: ctx.Prec()}
	n := s.simplify(e.n)
	return &Expr{n: n, names: varnames(n)}, s.err
}

// Simplify simplifies an expression using the default context, discarding
// any error.
func Simplify(e *Expr) *Expr {
	r, _ := Default().Simplify(e)
	return r
}

// sqrtFactorLimit bounds the trial divisors used to extract square factors
// from integers under sqrt. Square factors are exact for integers below
// sqrtFactorLimit^3.
const sqrtFactorLimit = 1 << 16

type simplifier struct {
	// prec is the minimum precision of new literals.
	prec uint
	// err is the first error.
	err error
}

func (s *simplifier) fail(err error) {
	if s.err == nil {
		s.err = err
	}
}

func (s *simplifier) int(x *big.Int) *node {
	return intNode(x, s.prec)
}

func (s *simplifier) small(x int64) *node {
	return smallNode(x, s.prec)
}

// simplify returns a new tree equivalent to n.
func (s *simplifier) simplify(n *node) *node {
	switch {
	case n.kind == nodeNum, n.kind == nodeConst, n.kind == nodeVar:
		return n.clone()
	case n.kind == nodeCall:
		args := make([]*node, len(n.args))
		for i, arg := range n.args {
			args[i] = s.simplify(arg)
		}
		return s.call(n.fn, args)
	case n.kind.binary():
		return s.binary(n.kind, s.simplify(n.left), s.simplify(n.right))
	case n.kind.unary():
		return s.unary(n.kind, s.simplify(n.left))
	default:
		panic("symcalc: invalid AST node " + n.kind.String())
	}
}

func isZero(n *node) bool {
	return n.kind == nodeNum && n.num.Sign() == 0
}

func isOne(n *node) bool {
	return n.kind == nodeNum && n.num.Cmp(one) == 0
}

func isInt(n *node) bool {
	return n.kind == nodeNum && n.isInt
}

func isConst(n *node, name string) bool {
	return n.kind == nodeConst && n.name == name
}

// isPiOver returns whether n is pi/d.
func isPiOver(n *node, d int64) bool {
	return n.kind == nodeDiv && isConst(n.left, "pi") &&
		n.right.kind == nodeNum && n.right.num.Cmp(big.NewFloat(float64(d))) == 0
}

// bigint returns the value of an integer literal.
func bigint(n *node) *big.Int {
	x, _ := n.num.Int(nil)
	return x
}

// binary simplifies a binary operation on already simplified operands. It
// takes ownership of l and r.
func (s *simplifier) binary(kind nodeKind, l, r *node) *node {
	if (kind == nodeAdd || kind == nodeMul) && l.compare(r) > 0 {
		l, r = r, l
	}
	switch kind {
	case nodeAdd:
		switch {
		case isZero(r):
			return l
		case isZero(l):
			return r
		case isInt(l) && isInt(r):
			return s.int(new(big.Int).Add(bigint(l), bigint(r)))
		case l.equal(r):
			return s.binary(nodeMul, s.small(2), l)
		case l.kind == nodeMul && l.right.equal(r):
			return s.binary(nodeMul, s.binary(nodeAdd, l.left, s.small(1)), l.right)
		case r.kind == nodeMul && l.equal(r.right):
			return s.binary(nodeMul, s.binary(nodeAdd, s.small(1), r.left), r.right)
		case l.kind == nodeMul && r.kind == nodeMul && l.right.equal(r.right):
			return s.binary(nodeMul, s.binary(nodeAdd, l.left, r.left), l.right)
		}
	case nodeSub:
		switch {
		case isZero(r):
			return l
		case l.equal(r):
			return s.small(0)
		}
	case nodeMul:
		switch {
		case isZero(l), isZero(r):
			return s.small(0)
		case isOne(r):
			return l
		case isOne(l):
			return r
		case isInt(l) && isInt(r):
			return s.int(new(big.Int).Mul(bigint(l), bigint(r)))
		case l.kind == nodeCall && l.fn == Sqrt && r.kind == nodeCall && r.fn == Sqrt:
			return s.call(Sqrt, []*node{s.binary(nodeMul, l.args[0], r.args[0])})
		}
	case nodeDiv:
		return s.quo(l, r)
	case nodePow:
		switch {
		case isZero(r):
			return s.small(1)
		case isOne(r):
			return l
		case isZero(l):
			return s.small(0)
		case isOne(l):
			return s.small(1)
		}
	}
	return binNode(kind, l, r)
}

func (s *simplifier) quo(l, r *node) *node {
	switch {
	case isZero(r):
		s.fail(&DomainError{X: new(big.Float), Arg: 2, Func: "/"})
		return s.small(0)
	case isOne(r):
		return l
	case l.equal(r):
		return s.small(1)
	case isZero(l):
		return s.small(0)
	case l.kind == nodeMul && l.right.equal(r):
		return l.left
	case l.kind == nodeMul && l.left.equal(r):
		return l.right
	case r.kind == nodeMul && r.right.equal(l):
		return s.binary(nodeDiv, s.small(1), r.left)
	case r.kind == nodeMul && r.left.equal(l):
		return s.binary(nodeDiv, s.small(1), r.right)
	case l.kind == nodeAdd, l.kind == nodeSub:
		a := s.binary(nodeDiv, l.left, r.clone())
		b := s.binary(nodeDiv, l.right, r)
		return s.binary(l.kind, a, b)
	case isInt(l) && isInt(r):
		q, m := new(big.Int).QuoRem(bigint(l), bigint(r), new(big.Int))
		if m.Sign() == 0 {
			return s.int(q)
		}
	case r.kind == nodeCall && r.fn == Sqrt:
		b := r.args[0].clone()
		return s.binary(nodeDiv, s.binary(nodeMul, l, r), b)
	}
	return binNode(nodeDiv, l, r)
}

func (s *simplifier) unary(kind nodeKind, x *node) *node {
	if kind == nodePlus {
		return x
	}
	switch {
	case x.kind == nodeNeg:
		return x.left
	case x.kind == nodeNum:
		if x.num.Sign() == 0 {
			return x
		}
		return numNode(new(big.Float).Neg(x.num), x.isInt)
	}
	return &node{kind: kind, left: x}
}

// call simplifies a function call with already simplified arguments.
func (s *simplifier) call(fn Func, args []*node) *node {
	x := args[0]
	switch fn {
	case Sin:
		switch {
		case isZero(x), isConst(x, "pi"):
			return s.small(0)
		case isPiOver(x, 2):
			return s.small(1)
		}
	case Cos:
		switch {
		case isZero(x):
			return s.small(1)
		case isConst(x, "pi"):
			return s.small(-1)
		case isPiOver(x, 2):
			return s.small(0)
		}
	case Tan:
		switch {
		case isZero(x), isConst(x, "pi"):
			return s.small(0)
		case isPiOver(x, 4):
			return s.small(1)
		}
	case Log:
		switch {
		case isOne(x):
			return s.small(0)
		case isConst(x, "e"):
			return s.small(1)
		}
	case Log10:
		switch {
		case isOne(x):
			return s.small(0)
		case isInt(x) && x.num.Cmp(big.NewFloat(10)) == 0:
			return s.small(1)
		}
	case Exp:
		switch {
		case isZero(x):
			return s.small(1)
		case isOne(x):
			return &node{kind: nodeConst, name: "e"}
		}
	case Abs:
		if x.kind == nodeNum {
			if x.num.Sign() >= 0 {
				return x
			}
			return numNode(new(big.Float).Neg(x.num), x.isInt)
		}
	case Sqrt:
		switch {
		case isZero(x):
			return s.small(0)
		case isOne(x):
			return s.small(1)
		case isInt(x) && x.num.Sign() > 0:
			if r := s.sqrtInt(bigint(x)); r != nil {
				return r
			}
		}
	}
	return callNode(fn, args...)
}

// sqrtInt rewrites the square root of a positive integer n as an integer if n
// is a perfect square, or as k*sqrt(m) where k^2 is the largest square
// factor of n. The result is nil if neither applies.
//
// Trial division runs up to the cube root of what remains of n, after which
// the cofactor has at most two prime factors and is square only if it is a
// perfect square. Beyond sqrtFactorLimit, a square factor is found only if it
// is the whole cofactor.
func (s *simplifier) sqrtInt(n *big.Int) *node {
	r := new(big.Int).Sqrt(n)
	if new(big.Int).Mul(r, r).Cmp(n) == 0 {
		return s.int(r)
	}
	// n = k^2 * f * c, with f squarefree over the trial divisors and c free
	// of them.
	c := new(big.Int).Set(n)
	k, f := big.NewInt(1), big.NewInt(1)
	i, ii, iii := new(big.Int), new(big.Int), new(big.Int)
	q, rem := new(big.Int), new(big.Int)
	for d := int64(2); d <= sqrtFactorLimit; d++ {
		i.SetInt64(d)
		ii.Mul(i, i)
		if iii.Mul(ii, i).Cmp(c) > 0 {
			break
		}
		for {
			q.QuoRem(c, ii, rem)
			if rem.Sign() != 0 {
				break
			}
			c.Set(q)
			k.Mul(k, i)
		}
		// Removing the last odd power keeps composite d from dividing c.
		q.QuoRem(c, i, rem)
		if rem.Sign() == 0 {
			c.Set(q)
			f.Mul(f, i)
		}
	}
	if c.BitLen() > 1 {
		r.Sqrt(c)
		if q.Mul(r, r).Cmp(c) == 0 {
			k.Mul(k, r)
			c.SetInt64(1)
		}
	}
	if k.BitLen() == 1 {
		return nil
	}
	return binNode(nodeMul, s.int(k), callNode(Sqrt, s.int(f.Mul(f, c))))
}

// varnames lists the variables in a tree in sorted order.
func varnames(n *node) []string {
	seen := make(map[string]bool)
	var walk func(*node)
	walk = func(n *node) {
		if n == nil {
			return
		}
		if n.kind == nodeVar && !seen[n.name] {
			seen[n.name] = true
		}
		for _, arg := range n.args {
			walk(arg)
		}
		walk(n.left)
		walk(n.right)
	}
	walk(n)
	if len(seen) == 0 {
		return nil
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sortstrs(names)
	return names
}
