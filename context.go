package symcalc

import (
	"math"
	"math/big"
	"sync"
)

// Precision limits, in bits.
const (
	MinPrec     = 2
	MaxPrec     = 8192
	DefaultPrec = 256
)

// GuardBits is the number of extra bits carried by intermediate results
// during evaluation.
const GuardBits = 128

// Context is a context for evaluating and simplifying expressions. It holds
// the precision and rounding mode of calculations, the values of variables,
// and a registry of constants memoized at the context's precision. A Context
// is safe for concurrent use, but changing its settings while an evaluation
// is in progress affects only later evaluations.
type Context struct {
	mu     sync.Mutex
	prec   uint
	mode   big.RoundingMode
	strict bool
	names  map[string]*big.Float
	consts *Constants
}

// ContextOption is an option used when creating a context.
type ContextOption interface {
	ctxOption()
}

type (
	varopt struct {
		name string
		val  *big.Float
	}
	varsopt   map[string]*big.Float
	precopt   uint
	modeopt   big.RoundingMode
	strictopt bool
)

func (varopt) ctxOption()    {}
func (varsopt) ctxOption()   {}
func (precopt) ctxOption()   {}
func (modeopt) ctxOption()   {}
func (strictopt) ctxOption() {}

// SetVar sets the value of a variable in the context.
func SetVar(name string, val *big.Float) ContextOption {
	return varopt{name, val}
}

// SetVars sets the values of any number of variables in the context.
func SetVars(vars map[string]*big.Float) ContextOption {
	return varsopt(vars)
}

// Prec sets the precision of calculations in bits. The value is clamped to
// [MinPrec, MaxPrec].
func Prec(prec uint) ContextOption {
	return precopt(prec)
}

// Rounding sets the rounding mode of results.
func Rounding(mode big.RoundingMode) ContextOption {
	return modeopt(mode)
}

// Strict sets whether evaluation stops at the first domain error. By
// default, a domain error substitutes zero for the failing subexpression and
// evaluation continues.
func Strict(strict bool) ContextOption {
	return strictopt(strict)
}

// NewContext creates a new evaluation context. If no precision is given, the
// default is DefaultPrec.
func NewContext(opts ...ContextOption) *Context {
	ctx := Context{prec: DefaultPrec, mode: big.ToNearestEven, consts: newConstants(DefaultPrec)}
	return ctx.Clone(opts...)
}

// clampPrec limits a precision to the supported range.
func clampPrec(prec uint) uint {
	switch {
	case prec < MinPrec:
		return MinPrec
	case prec > MaxPrec:
		return MaxPrec
	default:
		return prec
	}
}

// DecimalDigits returns the number of decimal digits represented by a
// precision in bits.
func DecimalDigits(prec uint) int {
	return int(float64(prec) * math.Log10(2))
}

// Clone creates a copy of a context and applies options to it.
func (ctx *Context) Clone(opts ...ContextOption) *Context {
	ctx.mu.Lock()
	n := Context{
		prec:   ctx.prec,
		mode:   ctx.mode,
		strict: ctx.strict,
		names:  make(map[string]*big.Float, len(ctx.names)),
	}
	// First, check for a precision setting. Loop backward so we apply the last
	// precision.
	for i := len(opts) - 1; i >= 0; i-- {
		if p, ok := opts[i].(precopt); ok {
			n.prec = clampPrec(uint(p))
			break
		}
	}
	// Copy variables. (We always need a copy in case of Set.) If we have the
	// same precision, we can just copy pointers.
	if n.prec == ctx.prec {
		for name, val := range ctx.names {
			n.names[name] = val
		}
	} else {
		for name, val := range ctx.names {
			n.names[name] = new(big.Float).SetPrec(n.prec).Set(val)
		}
	}
	consts := ctx.consts
	ctx.mu.Unlock()
	n.consts = consts.clone(n.prec)
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		switch opt := opt.(type) {
		case varopt:
			n.names[opt.name] = new(big.Float).SetPrec(n.prec).Set(opt.val)
		case varsopt:
			for k, v := range opt {
				n.names[k] = new(big.Float).SetPrec(n.prec).Set(v)
			}
		case precopt:
			// Already done. Do nothing.
		case modeopt:
			n.mode = big.RoundingMode(opt)
		case strictopt:
			n.strict = bool(opt)
		default:
			panic("symcalc: unknown option type")
		}
	}
	return &n
}

// Prec returns the precision to which values are computed in the context.
func (ctx *Context) Prec() uint {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	return ctx.prec
}

// SetPrec sets the precision of the context, clamped to [MinPrec, MaxPrec],
// and returns the precision actually set. Memoized constants are discarded
// if the precision changes. Variable values keep their own precision.
func (ctx *Context) SetPrec(prec uint) uint {
	prec = clampPrec(prec)
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	ctx.prec = prec
	ctx.consts.SetPrec(prec)
	return prec
}

// Mode returns the rounding mode of the context.
func (ctx *Context) Mode() big.RoundingMode {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	return ctx.mode
}

// Strict returns whether the context stops evaluation at domain errors.
func (ctx *Context) Strict() bool {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	return ctx.strict
}

// Constants returns the context's registry of constants.
func (ctx *Context) Constants() *Constants {
	return ctx.consts
}

// Set sets the value of a variable. Returns ctx for chaining.
func (ctx *Context) Set(name string, value *big.Float) *Context {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	if ctx.names == nil {
		ctx.names = make(map[string]*big.Float)
	}
	ctx.names[name] = new(big.Float).SetPrec(ctx.prec).Set(value)
	return ctx
}

// Lookup returns a copy of the value of a variable. If there is no such
// variable in the context, then the result is nil.
func (ctx *Context) Lookup(name string) *big.Float {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	v := ctx.names[name]
	if v == nil {
		return nil
	}
	return new(big.Float).Copy(v)
}

// settings is a snapshot of a context's configuration for one operation.
type settings struct {
	prec   uint
	mode   big.RoundingMode
	strict bool
	names  map[string]*big.Float
}

func (ctx *Context) settings() settings {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	s := settings{
		prec:   ctx.prec,
		mode:   ctx.mode,
		strict: ctx.strict,
		names:  make(map[string]*big.Float, len(ctx.names)),
	}
	for k, v := range ctx.names {
		s.names[k] = v
	}
	return s
}

var defaultContext = NewContext()

// Default returns the package's default context, which is used by functions
// that do not take a context.
func Default() *Context {
	return defaultContext
}

// SetPrecision sets the precision of the default context and returns the
// precision actually set.
func SetPrecision(bits uint) uint {
	return defaultContext.SetPrec(bits)
}

// Precision returns the precision of the default context.
func Precision() uint {
	return defaultContext.Prec()
}
