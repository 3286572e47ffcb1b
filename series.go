package symcalc

import (
	"math/big"
	"sync"

	"github.com/zephyrtronium/bigfloat"
)

// seriesGuard is the number of extra bits carried by series evaluations.
const seriesGuard = 32

// picache holds the most precise value of pi computed so far.
var picache struct {
	sync.Mutex
	v *big.Float
}

// pi returns pi to prec bits.
func pi(prec uint) *big.Float {
	picache.Lock()
	defer picache.Unlock()
	if picache.v == nil || picache.v.Prec() < prec {
		picache.v = bigfloat.Pi(new(big.Float).SetPrec(prec))
	}
	return new(big.Float).SetPrec(prec).Set(picache.v)
}

// newf returns a zero with the given precision.
func newf(prec uint) *big.Float {
	return new(big.Float).SetPrec(prec)
}

// cmpAbs compares |x| and |y|.
func cmpAbs(x, y *big.Float) int {
	var a, b big.Float
	return a.Abs(x).Cmp(b.Abs(y))
}

// converged returns whether term is negligible relative to sum at prec bits.
func converged(term, sum *big.Float, prec uint) bool {
	if term.Sign() == 0 {
		return true
	}
	if sum.Sign() == 0 {
		return false
	}
	return term.MantExp(nil) < sum.MantExp(nil)-int(prec)-1
}

// reduce reduces x to r in [-pi, pi] with r = x - 2k*pi, carrying enough extra
// bits that the subtraction loses nothing at prec bits.
func reduce(x *big.Float, prec uint) (r, p *big.Float) {
	wp := prec
	if e := x.MantExp(nil); e > 0 {
		wp += uint(e)
	}
	p = pi(wp)
	r = newf(wp).Set(x)
	if cmpAbs(x, p) <= 0 {
		return r, p
	}
	twopi := newf(wp).Add(p, p)
	q := newf(wp).Quo(x, twopi)
	// Round to nearest integer.
	half := newf(wp).SetFloat64(0.5)
	if q.Sign() < 0 {
		half.Neg(half)
	}
	k, _ := q.Add(q, half).Int(nil)
	t := newf(wp).SetInt(k)
	t.Mul(t, twopi)
	r.Sub(r, t)
	return r, p
}

// sin sets z to sin(x) by Taylor series after reducing x to [0, pi/2].
func sin(z *big.Float, args []*big.Float) *big.Float {
	x := args[0]
	if x.Sign() == 0 {
		return z.SetInt64(0)
	}
	prec := z.Prec() + seriesGuard
	r, p := reduce(x, prec)
	neg := r.Sign() < 0
	r.Abs(r)
	halfpi := newf(r.Prec()).Quo(p, big.NewFloat(2))
	if r.Cmp(halfpi) > 0 {
		// sin(pi - r) = sin(r)
		r.Sub(p, r)
	}
	r.SetPrec(prec)
	s := sinSeries(r, prec)
	if neg {
		s.Neg(s)
	}
	return z.Set(s)
}

// sinSeries computes sin(x) for 0 <= x <= pi/2.
func sinSeries(x *big.Float, prec uint) *big.Float {
	sum := newf(prec).Set(x)
	term := newf(prec).Set(x)
	x2 := newf(prec).Mul(x, x)
	d := newf(prec)
	for n := int64(1); ; n++ {
		term.Mul(term, x2)
		term.Quo(term, d.SetInt64(2*n*(2*n+1)))
		term.Neg(term)
		sum.Add(sum, term)
		if converged(term, sum, prec) {
			return sum
		}
	}
}

// cos sets z to cos(x) by Taylor series after reducing x to [0, pi/2].
func cos(z *big.Float, args []*big.Float) *big.Float {
	x := args[0]
	if x.Sign() == 0 {
		return z.SetInt64(1)
	}
	prec := z.Prec() + seriesGuard
	r, p := reduce(x, prec)
	r.Abs(r)
	halfpi := newf(r.Prec()).Quo(p, big.NewFloat(2))
	neg := false
	if r.Cmp(halfpi) > 0 {
		// cos(pi - r) = -cos(r)
		r.Sub(p, r)
		neg = true
	}
	r.SetPrec(prec)
	c := cosSeries(r, prec)
	if neg {
		c.Neg(c)
	}
	return z.Set(c)
}

// cosSeries computes cos(x) for 0 <= x <= pi/2.
func cosSeries(x *big.Float, prec uint) *big.Float {
	sum := newf(prec).SetInt64(1)
	term := newf(prec).SetInt64(1)
	x2 := newf(prec).Mul(x, x)
	d := newf(prec)
	for n := int64(1); ; n++ {
		term.Mul(term, x2)
		term.Quo(term, d.SetInt64((2*n-1)*(2*n)))
		term.Neg(term)
		sum.Add(sum, term)
		if converged(term, sum, prec) {
			return sum
		}
	}
}

func tan(z *big.Float, args []*big.Float) *big.Float {
	prec := z.Prec() + seriesGuard
	s := sin(newf(prec), args)
	c := cos(newf(prec), args)
	return z.Quo(s, c)
}

// atan sets z to atan(x). Arguments above 1 use atan(x) = pi/2 - atan(1/x).
// The rest are halved with atan(x) = 2 atan(x / (1 + sqrt(1 + x^2))) until
// the series converges quickly.
func atan(z *big.Float, args []*big.Float) *big.Float {
	x := args[0]
	if x.Sign() == 0 {
		return z.SetInt64(0)
	}
	prec := z.Prec() + seriesGuard
	t := newf(prec).Abs(x)
	inv := t.Cmp(one) > 0
	if inv {
		t.Quo(newf(prec).SetInt64(1), t)
	}
	k := 0
	limit := big.NewFloat(1.0 / 16)
	u := newf(prec)
	for t.Cmp(limit) > 0 {
		u.Mul(t, t)
		u.Add(u, one)
		u.Sqrt(u)
		u.Add(u, one)
		t.Quo(t, u)
		k++
	}
	r := atanSeries(t, prec)
	r.SetMantExp(r, k)
	if inv {
		h := pi(prec)
		h.SetMantExp(h, -1)
		r.Sub(h, r)
	}
	if x.Sign() < 0 {
		r.Neg(r)
	}
	return z.Set(r)
}

// atanSeries computes atan(x) for small non-negative x.
func atanSeries(x *big.Float, prec uint) *big.Float {
	sum := newf(prec).Set(x)
	pow := newf(prec).Set(x)
	x2 := newf(prec).Mul(x, x)
	term := newf(prec)
	d := newf(prec)
	for n := int64(3); ; n += 2 {
		pow.Mul(pow, x2)
		pow.Neg(pow)
		term.Quo(pow, d.SetInt64(n))
		sum.Add(sum, term)
		if converged(term, sum, prec) {
			return sum
		}
	}
}

// asin sets z to asin(x) = atan(x / sqrt(1 - x^2)), with the endpoints
// handled exactly.
func asin(z *big.Float, args []*big.Float) *big.Float {
	x := args[0]
	prec := z.Prec() + seriesGuard
	if cmpAbs(x, one) == 0 {
		h := pi(prec)
		h.SetMantExp(h, -1)
		if x.Sign() < 0 {
			h.Neg(h)
		}
		return z.Set(h)
	}
	// 1 - x^2 = (1 - x)(1 + x) loses less near the endpoints.
	a := newf(prec).Sub(one, x)
	b := newf(prec).Add(one, x)
	a.Mul(a, b)
	a.Sqrt(a)
	a.Quo(x, a)
	return atan(z, []*big.Float{a})
}

// acos sets z to acos(x) = 2 atan(sqrt((1 - x) / (1 + x))), which keeps full
// relative precision near x = 1.
func acos(z *big.Float, args []*big.Float) *big.Float {
	x := args[0]
	prec := z.Prec() + seriesGuard
	if x.Cmp(big.NewFloat(-1)) == 0 {
		return z.Set(pi(prec))
	}
	a := newf(prec).Sub(one, x)
	b := newf(prec).Add(one, x)
	a.Quo(a, b)
	a.Sqrt(a)
	atan(a, []*big.Float{a})
	return z.SetMantExp(a, 1)
}

// atan2 sets z to the angle of the point (x, y), where args are y then x.
func atan2(z *big.Float, args []*big.Float) *big.Float {
	y, x := args[0], args[1]
	prec := z.Prec() + seriesGuard
	switch x.Sign() {
	case 0:
		if y.Sign() == 0 {
			return z.SetInt64(0)
		}
		h := pi(prec)
		h.SetMantExp(h, -1)
		if y.Sign() < 0 {
			h.Neg(h)
		}
		return z.Set(h)
	case 1:
		q := newf(prec).Quo(y, x)
		return atan(z, []*big.Float{q})
	}
	q := newf(prec).Quo(y, x)
	r := atan(newf(prec), []*big.Float{q})
	if y.Sign() < 0 {
		r.Sub(r, pi(prec))
	} else {
		r.Add(r, pi(prec))
	}
	return z.Set(r)
}

// smallGuard is the number of bits to add so that a function behaving like x
// near zero keeps its relative precision.
func smallGuard(x *big.Float) uint {
	if x.Sign() == 0 {
		return 0
	}
	if e := x.MantExp(nil); e < 0 {
		return uint(-e)
	}
	return 0
}

// tiny returns whether x is small enough that an odd function behaving like x
// near zero rounds to x itself at prec bits.
func tiny(x *big.Float, prec uint) bool {
	return x.MantExp(nil) < -int(prec)
}

// exps returns e^x and e^-x to prec bits.
func exps(x *big.Float, prec uint) (*big.Float, *big.Float) {
	ep := expf(newf(prec), x)
	en := newf(prec).Quo(newf(prec).SetInt64(1), ep)
	return ep, en
}

func sinh(z *big.Float, args []*big.Float) *big.Float {
	x := args[0]
	if x.Sign() == 0 {
		return z.SetInt64(0)
	}
	if tiny(x, z.Prec()) {
		return z.Set(x)
	}
	ep, en := exps(x, z.Prec()+seriesGuard+smallGuard(x))
	ep.Sub(ep, en)
	return z.SetMantExp(ep, -1)
}

func cosh(z *big.Float, args []*big.Float) *big.Float {
	ep, en := exps(args[0], z.Prec()+seriesGuard)
	ep.Add(ep, en)
	return z.SetMantExp(ep, -1)
}

func tanh(z *big.Float, args []*big.Float) *big.Float {
	x := args[0]
	if x.Sign() == 0 {
		return z.SetInt64(0)
	}
	if tiny(x, z.Prec()) {
		return z.Set(x)
	}
	if x.MantExp(nil) > 30 {
		// e^-2x is far below any representable precision.
		return z.SetInt64(int64(x.Sign()))
	}
	ep, en := exps(x, z.Prec()+seriesGuard+smallGuard(x))
	s := newf(ep.Prec()).Sub(ep, en)
	ep.Add(ep, en)
	return z.Quo(s, ep)
}

// asinh sets z to sign(x) log(|x| + sqrt(x^2 + 1)).
func asinh(z *big.Float, args []*big.Float) *big.Float {
	x := args[0]
	if x.Sign() == 0 {
		return z.SetInt64(0)
	}
	if tiny(x, z.Prec()) {
		return z.Set(x)
	}
	prec := z.Prec() + seriesGuard + smallGuard(x)
	t := newf(prec).Abs(x)
	u := newf(prec).Mul(t, t)
	u.Add(u, one)
	u.Sqrt(u)
	u.Add(u, t)
	bigfloat.Log(u, u)
	if x.Sign() < 0 {
		u.Neg(u)
	}
	return z.Set(u)
}

// acosh sets z to log(x + sqrt(x^2 - 1)) for x >= 1.
func acosh(z *big.Float, args []*big.Float) *big.Float {
	x := args[0]
	if x.Cmp(one) == 0 {
		return z.SetInt64(0)
	}
	prec := z.Prec() + seriesGuard
	d := newf(prec).Sub(x, one)
	prec += smallGuard(d)
	// x^2 - 1 = (x - 1)(x + 1)
	d.SetPrec(prec)
	u := newf(prec).Add(x, one)
	u.Mul(u, d)
	u.Sqrt(u)
	u.Add(u, x)
	bigfloat.Log(u, u)
	return z.Set(u)
}

// atanh sets z to log((1 + x) / (1 - x)) / 2 for |x| < 1.
func atanh(z *big.Float, args []*big.Float) *big.Float {
	x := args[0]
	if x.Sign() == 0 {
		return z.SetInt64(0)
	}
	if tiny(x, z.Prec()) {
		return z.Set(x)
	}
	prec := z.Prec() + seriesGuard + smallGuard(x)
	a := newf(prec).Add(one, x)
	b := newf(prec).Sub(one, x)
	a.Quo(a, b)
	bigfloat.Log(a, a)
	return z.SetMantExp(a, -1)
}
