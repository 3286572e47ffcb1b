package symcalc

import (
	"io"
	"math/big"
	"strings"
)

// Eval evaluates an expression to the context's precision and returns the
// result rounded with the context's rounding mode.
//
// Intermediate results carry GuardBits extra bits. A function argument outside
// the function's domain, a division by zero, or a variable with no value is a
// soft error: the failing subexpression evaluates to zero, evaluation
// continues, and Eval returns the result together with the first such error.
// If the context is strict, the result is nil instead. Function results whose
// magnitude is below 2^-(prec+10) become exactly zero, so that sin(pi) is 0.
func (ctx *Context) Eval(e *Expr) (r *big.Float, err error) {
	s := ctx.settings()
	ev := evaluator{settings: s, consts: ctx.consts, work: s.prec + GuardBits}
	defer func() {
		// binary catches indeterminate forms before big.Float sees them.
		if p := recover(); p != nil {
			nan, ok := p.(big.ErrNaN)
			if !ok {
				panic(p)
			}
			r, err = nil, &DomainError{Reason: nan.Error()}
		}
	}()
	x, err := ev.eval(e.n, s.prec)
	if err != nil {
		return nil, err
	}
	return x, ev.err
}

// evaluator holds the state of a single evaluation.
type evaluator struct {
	settings
	consts *Constants
	// work is the precision of intermediate results.
	work uint
	// err is the first soft error.
	err error
}

// newf returns a zero with the given precision and the evaluation's rounding
// mode.
func (ev *evaluator) newf(prec uint) *big.Float {
	return new(big.Float).SetPrec(prec).SetMode(ev.mode)
}

// round returns a copy of x rounded to prec.
func (ev *evaluator) round(x *big.Float, prec uint) *big.Float {
	return ev.newf(prec).Set(x)
}

// fail records a soft error. In strict mode, it returns the error to stop
// evaluation. Otherwise, it returns zero as the value of the failing
// subexpression.
func (ev *evaluator) fail(err error, prec uint) (*big.Float, error) {
	if ev.strict {
		return nil, err
	}
	if ev.err == nil {
		ev.err = err
	}
	return ev.newf(prec), nil
}

// eval computes the value of n to prec bits.
func (ev *evaluator) eval(n *node, prec uint) (*big.Float, error) {
	switch {
	case n.kind == nodeNum:
		return ev.round(n.num, prec), nil
	case n.kind == nodeConst:
		v := ev.consts.work(n.name)
		if v == nil {
			return ev.fail(&NameError{Name: n.name}, prec)
		}
		return ev.round(v, prec), nil
	case n.kind == nodeVar:
		v := ev.names[n.name]
		if v == nil {
			return ev.fail(&NameError{Name: n.name}, prec)
		}
		return ev.round(v, prec), nil
	case n.kind == nodeCall:
		return ev.call(n, prec)
	case n.kind.binary():
		return ev.binary(n, prec)
	case n.kind.unary():
		x, err := ev.eval(n.left, prec)
		if err != nil {
			return nil, err
		}
		if n.kind == nodeNeg {
			x.Neg(x)
		}
		return x, nil
	default:
		panic("symcalc: invalid AST node " + n.kind.String())
	}
}

func (ev *evaluator) call(n *node, prec uint) (*big.Float, error) {
	args := make([]*big.Float, len(n.args))
	for i, arg := range n.args {
		x, err := ev.eval(arg, ev.work)
		if err != nil {
			return nil, err
		}
		args[i] = x
	}
	if err := n.fn.CheckDomain(args...); err != nil {
		return ev.fail(err, prec)
	}
	z := ev.newf(ev.work)
	funcs[n.fn].eval(z, args)
	r := ev.round(z, prec)
	if r.Sign() != 0 && !r.IsInf() && r.MantExp(nil) <= -(int(ev.prec)+10) {
		r.SetInt64(0)
	}
	return r, nil
}

func (ev *evaluator) binary(n *node, prec uint) (*big.Float, error) {
	x, err := ev.eval(n.left, ev.work)
	if err != nil {
		return nil, err
	}
	y, err := ev.eval(n.right, ev.work)
	if err != nil {
		return nil, err
	}
	if r := indeterminate(n.kind, x, y); r != "" {
		return ev.fail(&DomainError{Func: strings.TrimSpace(opText[n.kind]), Reason: r}, prec)
	}
	z := ev.newf(prec)
	switch n.kind {
	case nodeAdd:
		z.Add(x, y)
	case nodeSub:
		z.Sub(x, y)
	case nodeMul:
		z.Mul(x, y)
	case nodeDiv:
		if y.Sign() == 0 {
			return ev.fail(&DomainError{X: y, Arg: 2, Func: "/"}, prec)
		}
		z.Quo(x, y)
	case nodePow:
		args := []*big.Float{x, y}
		if x.IsInf() || y.IsInf() {
			return ev.fail(&DomainError{Func: "^", Reason: "infinite operand"}, prec)
		}
		if err := powDomain(args); err != nil {
			err.Func = "^"
			return ev.fail(err, prec)
		}
		w := ev.newf(ev.work)
		pow(w, x, y)
		z.Set(w)
	default:
		c := x.Cmp(y)
		var t bool
		switch n.kind {
		case nodeEq:
			t = c == 0
		case nodeNe:
			t = c != 0
		case nodeLt:
			t = c < 0
		case nodeLe:
			t = c <= 0
		case nodeGt:
			t = c > 0
		case nodeGe:
			t = c >= 0
		}
		if t {
			z.SetInt64(1)
		}
	}
	return z, nil
}

// indeterminate describes the combination of infinite or zero operands for
// which the arithmetic operation kind has no value, or returns the empty
// string if the operation is defined.
func indeterminate(kind nodeKind, x, y *big.Float) string {
	switch kind {
	case nodeAdd:
		if x.IsInf() && y.IsInf() && x.Signbit() != y.Signbit() {
			return "sum of infinities with opposite signs"
		}
	case nodeSub:
		if x.IsInf() && y.IsInf() && x.Signbit() == y.Signbit() {
			return "difference of infinities with equal signs"
		}
	case nodeMul:
		if x.IsInf() && y.Sign() == 0 || x.Sign() == 0 && y.IsInf() {
			return "product of zero and infinity"
		}
	case nodeDiv:
		if x.IsInf() && y.IsInf() {
			return "quotient of infinities"
		}
	}
	return ""
}

// Eval is a shortcut to parse an expression and evaluate it with a clone of
// the default context to which opts are applied.
func Eval(src io.RuneScanner, opts ...ContextOption) (*big.Float, error) {
	ctx := Default().Clone(opts...)
	a, err := Parse(src, ctx)
	if err != nil {
		return nil, err
	}
	return ctx.Eval(a)
}

// EvalString is a shortcut to parse and evaluate a string expression.
func EvalString(src string, opts ...ContextOption) (*big.Float, error) {
	return Eval(strings.NewReader(src), opts...)
}
