package symcalc

import (
	"math/big"
	"sync"

	"github.com/zephyrtronium/bigfloat"
)

// constGuard is the number of bits beyond the working precision at which
// constants are computed before being rounded.
const constGuard = 32

type constInfo struct {
	name string
	// compute sets z, which already has its precision, to the constant.
	compute func(z *big.Float) *big.Float
}

var constants = []constInfo{
	{"pi", bigfloat.Pi},
	{"e", func(z *big.Float) *big.Float {
		x := newf(z.Prec()).SetInt64(1)
		return bigfloat.Exp(z, x)
	}},
	{"ln2", func(z *big.Float) *big.Float {
		x := newf(z.Prec()).SetInt64(2)
		return bigfloat.Log(z, x)
	}},
	{"ln10", func(z *big.Float) *big.Float {
		x := newf(z.Prec()).SetInt64(10)
		return bigfloat.Log(z, x)
	}},
	{"gamma", eulerGamma},
	{"sqrt2", func(z *big.Float) *big.Float {
		return z.Sqrt(newf(z.Prec()).SetInt64(2))
	}},
	{"phi", func(z *big.Float) *big.Float {
		z.Sqrt(newf(z.Prec()).SetInt64(5))
		z.Add(z, one)
		return z.SetMantExp(z, -1)
	}},
}

// constnames maps every accepted spelling of a constant to its canonical
// name.
var constnames = map[string]string{
	"pi":    "pi",
	"PI":    "pi",
	"π":     "pi",
	"e":     "e",
	"E":     "e",
	"ln2":   "ln2",
	"LN2":   "ln2",
	"ln10":  "ln10",
	"LN10":  "ln10",
	"gamma": "gamma",
	"GAMMA": "gamma",
	"sqrt2": "sqrt2",
	"SQRT2": "sqrt2",
	"phi":   "phi",
	"PHI":   "phi",
}

func lookupConst(name string) (string, bool) {
	c, ok := constnames[name]
	return c, ok
}

func constIndex(name string) int {
	for i, c := range constants {
		if c.name == name {
			return i
		}
	}
	return -1
}

// ConstantNames returns the canonical names of the built-in constants.
func ConstantNames() []string {
	r := make([]string, len(constants))
	for i, c := range constants {
		r[i] = c.name
	}
	return r
}

// Constants is a registry of named constants memoized at a precision. It is
// safe for concurrent use.
type Constants struct {
	mu    sync.Mutex
	prec  uint
	cache []cachedConst
}

type cachedConst struct {
	// val holds the constant to prec+GuardBits bits.
	val   *big.Float
	prec  uint
	valid bool
}

func newConstants(prec uint) *Constants {
	return &Constants{prec: prec, cache: make([]cachedConst, len(constants))}
}

// Prec returns the precision for which the registry memoizes constants.
func (c *Constants) Prec() uint {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.prec
}

// SetPrec changes the registry's precision. Memoized values are invalidated
// if the precision changes.
func (c *Constants) SetPrec(prec uint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if prec != c.prec {
		c.prec = prec
		c.invalidate()
	}
}

// Invalidate discards all memoized values.
func (c *Constants) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidate()
}

func (c *Constants) invalidate() {
	for i := range c.cache {
		c.cache[i] = cachedConst{}
	}
}

// IsCached returns whether the named constant is memoized at the registry's
// current precision.
func (c *Constants) IsCached(name string) bool {
	k := constKey(name)
	if k < 0 {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	e := c.cache[k]
	return e.valid && e.prec == c.prec
}

// Get returns a copy of the named constant rounded to the registry's
// precision. The second result is false if there is no such constant.
func (c *Constants) Get(name string) (*big.Float, bool) {
	k := constKey(name)
	if k < 0 {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return newf(c.prec).Set(c.get(k)), true
}

// work returns a copy of the named constant to the registry's precision plus
// GuardBits. The result is nil if there is no such constant.
func (c *Constants) work(name string) *big.Float {
	k := constKey(name)
	if k < 0 {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return new(big.Float).Copy(c.get(k))
}

// get returns the memoized constant with index k, computing it if needed.
// c.mu must be held.
func (c *Constants) get(k int) *big.Float {
	e := &c.cache[k]
	if !e.valid || e.prec != c.prec {
		wp := c.prec + GuardBits
		v := constants[k].compute(newf(wp + constGuard))
		e.val = newf(wp).Set(v)
		e.prec = c.prec
		e.valid = true
	}
	return e.val
}

// constKey finds the index of a constant by any of its spellings.
func constKey(name string) int {
	if cn, ok := lookupConst(name); ok {
		name = cn
	}
	return constIndex(name)
}

// clone copies the registry, keeping memoized values if the precision is
// unchanged.
func (c *Constants) clone(prec uint) *Constants {
	r := newConstants(prec)
	c.mu.Lock()
	defer c.mu.Unlock()
	if prec == c.prec {
		copy(r.cache, c.cache)
	}
	return r
}

// eulerGamma sets z to the Euler-Mascheroni constant using the Brent-McMillan
// algorithm: with A_0 = -log(n), B_0 = 1,
//
//	B_k = B_{k-1} n^2 / k^2
//	A_k = (A_{k-1} n^2 / k + B_k) / k
//
// gamma is the ratio of the sums of the A_k and B_k, with an error of about
// e^-4n.
func eulerGamma(z *big.Float) *big.Float {
	prec := z.Prec() + 64
	// e^-4n < 2^-prec
	n := int64(float64(prec)*0.1733) + 2
	n2 := newf(prec).SetInt64(n * n)
	a := newf(prec).SetInt64(n)
	bigfloat.Log(a, a)
	a.Neg(a)
	b := newf(prec).SetInt64(1)
	u := newf(prec).Set(a)
	v := newf(prec).SetInt64(1)
	kk := newf(prec)
	for k := int64(1); ; k++ {
		kk.SetInt64(k)
		b.Mul(b, n2)
		b.Quo(b, kk)
		b.Quo(b, kk)
		a.Mul(a, n2)
		a.Quo(a, kk)
		a.Add(a, b)
		a.Quo(a, kk)
		u.Add(u, a)
		v.Add(v, b)
		if k > n && converged(a, u, prec) && converged(b, v, prec) {
			break
		}
	}
	return z.Quo(u, v)
}
