package symcalc

import (
	"errors"
	"math/big"
	"strconv"

	"github.com/zephyrtronium/bigfloat"
)

// Func identifies one of the built-in functions.
type Func int8

// Built-in functions.
const (
	funcNone Func = iota

	Sin
	Cos
	Tan
	Asin
	Acos
	Atan
	Atan2
	Sinh
	Cosh
	Tanh
	Asinh
	Acosh
	Atanh
	Sqrt
	Log
	Log10
	Exp
	Abs
	Floor
	Ceil
	Pow

	funcCount
)

type funcInfo struct {
	name  string
	arity int
	// domain returns a non-nil error if args are outside the function's
	// domain. The error's Func field is filled in by the caller.
	domain func(args []*big.Float) *DomainError
	// eval sets z, which already has its precision, to the function value.
	eval func(z *big.Float, args []*big.Float) *big.Float
}

var funcs = [funcCount]funcInfo{
	Sin:   {"sin", 1, trigDomain, sin},
	Cos:   {"cos", 1, trigDomain, cos},
	Tan:   {"tan", 1, tanDomain, tan},
	Asin:  {"asin", 1, unitDomain, asin},
	Acos:  {"acos", 1, unitDomain, acos},
	Atan:  {"atan", 1, nil, atan},
	Atan2: {"atan2", 2, nil, atan2},
	Sinh:  {"sinh", 1, nil, sinh},
	Cosh:  {"cosh", 1, nil, cosh},
	Tanh:  {"tanh", 1, nil, tanh},
	Asinh: {"asinh", 1, nil, asinh},
	Acosh: {"acosh", 1, acoshDomain, acosh},
	Atanh: {"atanh", 1, atanhDomain, atanh},
	Sqrt:  {"sqrt", 1, sqrtDomain, sqrt},
	Log:   {"log", 1, logDomain, log},
	Log10: {"log10", 1, logDomain, log10},
	Exp:   {"exp", 1, nil, exp},
	Abs:   {"abs", 1, nil, abs},
	Floor: {"floor", 1, nil, floor},
	Ceil:  {"ceil", 1, nil, ceil},
	Pow:   {"pow", 2, powDomain, func(z *big.Float, args []*big.Float) *big.Float { return pow(z, args[0], args[1]) }},
}

// funcnames maps every accepted spelling to its function.
var funcnames = map[string]Func{
	"sin":     Sin,
	"cos":     Cos,
	"tan":     Tan,
	"asin":    Asin,
	"arcsin":  Asin,
	"acos":    Acos,
	"arccos":  Acos,
	"atan":    Atan,
	"arctan":  Atan,
	"atan2":   Atan2,
	"arctan2": Atan2,
	"sinh":    Sinh,
	"cosh":    Cosh,
	"tanh":    Tanh,
	"asinh":   Asinh,
	"arcsinh": Asinh,
	"acosh":   Acosh,
	"arccosh": Acosh,
	"atanh":   Atanh,
	"arctanh": Atanh,
	"sqrt":    Sqrt,
	"log":     Log,
	"ln":      Log,
	"log10":   Log10,
	"exp":     Exp,
	"abs":     Abs,
	"floor":   Floor,
	"ceil":    Ceil,
	"pow":     Pow,
}

// LookupFunc finds a function by name.
func LookupFunc(name string) (Func, bool) {
	fn, ok := funcnames[name]
	return fn, ok
}

func (f Func) valid() bool {
	return funcNone < f && f < funcCount
}

// String returns the canonical name of the function.
func (f Func) String() string {
	if !f.valid() {
		return "Func(" + strconv.Itoa(int(f)) + ")"
	}
	return funcs[f].name
}

// Arity returns the number of arguments the function takes.
func (f Func) Arity() int {
	if !f.valid() {
		return -1
	}
	return funcs[f].arity
}

// CheckDomain returns a *DomainError if args are outside the domain of f.
func (f Func) CheckDomain(args ...*big.Float) error {
	if err := f.checkArgs(args); err != nil {
		return err
	}
	for i, x := range args {
		if x.IsInf() {
			return &DomainError{X: x, Arg: i + 1, Func: f.String(), Reason: "argument is infinite"}
		}
	}
	if d := funcs[f].domain; d != nil {
		if err := d(args); err != nil {
			err.Func = f.String()
			return err
		}
	}
	return nil
}

func (f Func) checkArgs(args []*big.Float) error {
	if !f.valid() {
		return errors.New("symcalc: invalid function " + f.String())
	}
	if len(args) != funcs[f].arity {
		return &CallError{Func: f.String(), Len: len(args), Want: funcs[f].arity}
	}
	return nil
}

// Call evaluates f on args to prec bits. Arguments are not modified. If the
// arguments are outside the domain of f, the result is nil with a
// *DomainError.
func (f Func) Call(prec uint, args ...*big.Float) (*big.Float, error) {
	if err := f.CheckDomain(args...); err != nil {
		return nil, err
	}
	z := new(big.Float).SetPrec(prec)
	funcs[f].eval(z, args)
	return z, nil
}

// ErrDomain is the error that a *DomainError unwraps to when a function is
// evaluated outside its domain.
var ErrDomain = errors.New("argument outside domain")

// ErrDivisionByZero is the error that a *DomainError unwraps to for a
// division by zero.
var ErrDivisionByZero = errors.New("division by zero")

// DomainError is an error returned when a function is called on arguments
// outside its domain. It unwraps to ErrDivisionByZero if Func is "/" and
// Reason is empty, and to ErrDomain otherwise.
type DomainError struct {
	// X is the out-of-domain argument.
	X *big.Float
	// Arg is the 1-based index of the argument.
	Arg int
	// Func is a name identifying the function or operator.
	Func string
	// Reason describes the domain.
	Reason string
}

func (err *DomainError) Error() string {
	if err.divByZero() {
		return "division by zero"
	}
	var r string
	if err.X != nil {
		r = err.X.String() + " "
	}
	r += "outside domain"
	if err.Func != "" {
		r += " of " + err.Func
	}
	if err.Arg > 0 {
		r += " (argument " + strconv.Itoa(err.Arg) + ")"
	}
	if err.Reason != "" {
		r += ": " + err.Reason
	}
	return r
}

func (err *DomainError) Unwrap() error {
	if err.divByZero() {
		return ErrDivisionByZero
	}
	return ErrDomain
}

// divByZero is whether err is a division by zero rather than another error
// of the / operator.
func (err *DomainError) divByZero() bool {
	return err.Func == "/" && err.Reason == ""
}

func unitDomain(args []*big.Float) *DomainError {
	x := args[0]
	if cmpAbs(x, one) > 0 {
		return &DomainError{X: x, Arg: 1, Reason: "argument must be in [-1, 1]"}
	}
	return nil
}

// maxReduceExp is the largest binary exponent of an argument to the
// trigonometric functions.
const maxReduceExp = 1 << 16

func trigDomain(args []*big.Float) *DomainError {
	if args[0].MantExp(nil) > maxReduceExp {
		return &DomainError{X: args[0], Arg: 1, Reason: "argument too large to reduce"}
	}
	return nil
}

func tanDomain(args []*big.Float) *DomainError {
	if err := trigDomain(args); err != nil {
		return err
	}
	// Only an exact zero cosine is out of domain. Rounded multiples of pi/2
	// produce large finite values instead.
	if args[0].Sign() == 0 {
		return nil
	}
	var c big.Float
	c.SetPrec(args[0].Prec() + 32)
	if cos(&c, args).Sign() == 0 {
		return &DomainError{X: args[0], Arg: 1, Reason: "cosine is zero"}
	}
	return nil
}

func acoshDomain(args []*big.Float) *DomainError {
	if args[0].Cmp(one) < 0 {
		return &DomainError{X: args[0], Arg: 1, Reason: "argument must be at least 1"}
	}
	return nil
}

func atanhDomain(args []*big.Float) *DomainError {
	if cmpAbs(args[0], one) >= 0 {
		return &DomainError{X: args[0], Arg: 1, Reason: "argument must be in (-1, 1)"}
	}
	return nil
}

func sqrtDomain(args []*big.Float) *DomainError {
	if args[0].Sign() < 0 {
		return &DomainError{X: args[0], Arg: 1, Reason: "argument must be non-negative"}
	}
	return nil
}

func logDomain(args []*big.Float) *DomainError {
	if args[0].Sign() <= 0 {
		return &DomainError{X: args[0], Arg: 1, Reason: "argument must be positive"}
	}
	return nil
}

func powDomain(args []*big.Float) *DomainError {
	x, y := args[0], args[1]
	switch {
	case x.Sign() == 0 && y.Sign() < 0:
		return &DomainError{X: y, Arg: 2, Reason: "zero to a negative power"}
	case x.Sign() < 0 && !y.IsInt():
		return &DomainError{X: x, Arg: 1, Reason: "negative base with a non-integer exponent"}
	}
	return nil
}

var one = big.NewFloat(1)

func log(z *big.Float, args []*big.Float) *big.Float {
	x := new(big.Float).SetPrec(z.Prec()).Set(args[0])
	return bigfloat.Log(z, x)
}

func log10(z *big.Float, args []*big.Float) *big.Float {
	prec := z.Prec() + 32
	x := new(big.Float).SetPrec(prec).Set(args[0])
	bigfloat.Log(x, x)
	ten := new(big.Float).SetPrec(prec).SetInt64(10)
	bigfloat.Log(ten, ten)
	return z.Quo(x, ten)
}

func exp(z *big.Float, args []*big.Float) *big.Float {
	return expf(z, args[0])
}

// expf sets z to e^x. Beyond |x| = 2^30, the result overflows to +Inf or
// underflows to 0.
func expf(z, x *big.Float) *big.Float {
	if x.MantExp(nil) > 30 {
		if x.Sign() > 0 {
			return z.SetInf(false)
		}
		return z.SetInt64(0)
	}
	xx := new(big.Float).SetPrec(z.Prec()).Set(x)
	return bigfloat.Exp(z, xx)
}

func sqrt(z *big.Float, args []*big.Float) *big.Float {
	return z.Sqrt(args[0])
}

func abs(z *big.Float, args []*big.Float) *big.Float {
	return z.Abs(args[0])
}

func floor(z *big.Float, args []*big.Float) *big.Float {
	x := args[0]
	if x.IsInt() || x.IsInf() {
		return z.Set(x)
	}
	i, _ := x.Int(nil)
	if x.Sign() < 0 {
		i.Sub(i, big.NewInt(1))
	}
	return z.SetInt(i)
}

func ceil(z *big.Float, args []*big.Float) *big.Float {
	x := args[0]
	if x.IsInt() || x.IsInf() {
		return z.Set(x)
	}
	i, _ := x.Int(nil)
	if x.Sign() > 0 {
		i.Add(i, big.NewInt(1))
	}
	return z.SetInt(i)
}

// pow sets z to x^y. The arguments must be in the domain checked by
// powDomain.
func pow(z, x, y *big.Float) *big.Float {
	switch {
	case y.Sign() == 0:
		return z.SetInt64(1)
	case x.Sign() == 0:
		return z.SetInt64(0)
	}
	if y.IsInt() {
		if n, acc := y.Int64(); acc == big.Exact && n > -1<<62 && n < 1<<62 {
			return integerPower(z, x, n)
		}
		// Huge integer exponent. The sign follows the parity.
		ax := new(big.Float).SetPrec(z.Prec()).Abs(x)
		powReal(z, ax, y)
		if i, _ := y.Int(nil); x.Sign() < 0 && i.Bit(0) == 1 {
			z.Neg(z)
		}
		return z
	}
	return powReal(z, x, y)
}

// powReal sets z to x^y for positive x.
func powReal(z, x, y *big.Float) *big.Float {
	// Estimate y log(x) to catch results that overflow or underflow.
	t := new(big.Float).SetPrec(64)
	bigfloat.Log(t, new(big.Float).SetPrec(64).Set(x))
	t.Mul(t, y)
	if t.MantExp(nil) > 30 {
		return expf(z, t)
	}
	xx := new(big.Float).SetPrec(z.Prec()).Set(x)
	yy := new(big.Float).SetPrec(z.Prec()).Set(y)
	return bigfloat.Pow(z, xx, yy)
}

// integerPower sets z to x^n by repeated squaring, with enough extra bits
// that the accumulated rounding error stays below the precision of z.
func integerPower(z, x *big.Float, n int64) *big.Float {
	neg := n < 0
	if neg {
		n = -n
	}
	prec := z.Prec() + 2*uint(bitlen64(n)) + 16
	r := new(big.Float).SetPrec(prec).SetInt64(1)
	sq := new(big.Float).SetPrec(prec).Set(x)
	for n > 0 {
		if n&1 != 0 {
			r.Mul(r, sq)
		}
		n >>= 1
		if n > 0 {
			sq.Mul(sq, sq)
		}
	}
	if neg {
		r.Quo(new(big.Float).SetPrec(prec).SetInt64(1), r)
	}
	return z.Set(r)
}

func bitlen64(n int64) int {
	k := 0
	for ; n != 0; n >>= 1 {
		k++
	}
	return k
}
