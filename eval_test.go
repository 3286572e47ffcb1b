package symcalc_test

import (
	"errors"
	"math"
	"math/big"
	"strings"
	"testing"

	"github.com/zephyrtronium/symcalc"
)

func TestEval(t *testing.T) {
	type vv struct {
		n string
		v float64
	}
	type vc struct {
		vars []vv
		r    float64
	}
	cases := []struct {
		name string
		src  string
		r    []vc
	}{
		{"num", "1", []vc{{nil, 1}}},
		{"ident", "x", []vc{
			{[]vv{{"x", 4}}, 4},
			{[]vv{{"x", 5}}, 5},
			{[]vv{{"x", 6}}, 6},
		}},
		{"plus", "+x", []vc{
			{[]vv{{"x", 4}}, 4},
			{[]vv{{"x", -5}}, -5},
		}},
		{"neg", "-x", []vc{
			{[]vv{{"x", 4}}, -4},
			{[]vv{{"x", -5}}, 5},
		}},
		{"poly", "x^2 - 2x + 1", []vc{
			{[]vv{{"x", 1}}, 0},
			{[]vv{{"x", 3}}, 4},
			{[]vv{{"x", -1}}, 4},
		}},
		{"add", "4+5+6", []vc{{nil, 4 + 5 + 6}}},
		{"sub", "4-5-6", []vc{{nil, 4 - 5 - 6}}},
		{"mul", "4*5*6", []vc{{nil, 4 * 5 * 6}}},
		{"div", "4/5/6", []vc{{nil, 4.0 / 5.0 / 6.0}}},
		{"prec", "2+3*4", []vc{{nil, 14}}},
		{"pow", "2^3^2", []vc{{nil, 512}}},
		{"negpow", "-2^2", []vc{{nil, 4}}},
		{"negofpow", "-(2^2)", []vc{{nil, -4}}},
		{"negbase", "(-2)^3", []vc{{nil, -8}}},
		{"recip", "2^-2", []vc{{nil, 0.25}}},
		{"fracpow", "4^0.5", []vc{{nil, 2}}},
		{"implied", "2(3+4)", []vc{{nil, 14}}},
		{"implied-parens", "(2+1)(3+1)", []vc{{nil, 12}}},
		{"implied-const", "2pi", []vc{{nil, 2 * math.Pi}}},
		{"implied-var", "3x", []vc{{[]vv{{"x", 7}}, 21}}},
		{"lt", "1 < 2", []vc{{nil, 1}}},
		{"le", "2 <= 2", []vc{{nil, 1}}},
		{"gt", "1 > 2", []vc{{nil, 0}}},
		{"ge", "1 >= 2", []vc{{nil, 0}}},
		{"eq", "2 == 3", []vc{{nil, 0}}},
		{"ne", "2 != 3", []vc{{nil, 1}}},
		{"pi", "pi", []vc{{nil, math.Pi}}},
		{"e", "e", []vc{{nil, math.E}}},
		{"ln2", "ln2", []vc{{nil, math.Ln2}}},
		{"ln10", "ln10", []vc{{nil, math.Ln10}}},
		{"sqrt2", "sqrt2", []vc{{nil, math.Sqrt2}}},
		{"phi", "phi", []vc{{nil, math.Phi}}},
		{"gamma", "gamma", []vc{{nil, 0.5772156649015329}}},
		{"sin", "sin(1)", []vc{{nil, math.Sin(1)}}},
		{"sin-big", "sin(100)", []vc{{nil, math.Sin(100)}}},
		{"sin-neg", "sin(-2)", []vc{{nil, math.Sin(-2)}}},
		{"cos", "cos(1)", []vc{{nil, math.Cos(1)}}},
		{"cos-big", "cos(-7)", []vc{{nil, math.Cos(-7)}}},
		{"tan", "tan(1)", []vc{{nil, math.Tan(1)}}},
		{"asin", "asin(0.5)", []vc{{nil, math.Asin(0.5)}}},
		{"asin-one", "asin(-1)", []vc{{nil, -math.Pi / 2}}},
		{"acos", "acos(0.5)", []vc{{nil, math.Acos(0.5)}}},
		{"acos-neg", "acos(-1)", []vc{{nil, math.Pi}}},
		{"atan", "atan(2)", []vc{{nil, math.Atan(2)}}},
		{"atan-small", "atan(0.01)", []vc{{nil, math.Atan(0.01)}}},
		{"atan2", "atan2(1, -1)", []vc{{nil, math.Atan2(1, -1)}}},
		{"atan2-neg", "atan2(-1, -1)", []vc{{nil, math.Atan2(-1, -1)}}},
		{"atan2-axis", "atan2(1, 0)", []vc{{nil, math.Pi / 2}}},
		{"sinh", "sinh(1)", []vc{{nil, math.Sinh(1)}}},
		{"cosh", "cosh(1)", []vc{{nil, math.Cosh(1)}}},
		{"tanh", "tanh(0.5)", []vc{{nil, math.Tanh(0.5)}}},
		{"asinh", "asinh(1)", []vc{{nil, math.Asinh(1)}}},
		{"acosh", "acosh(2)", []vc{{nil, math.Acosh(2)}}},
		{"atanh", "atanh(0.5)", []vc{{nil, math.Atanh(0.5)}}},
		{"sqrt", "sqrt(2)", []vc{{nil, math.Sqrt2}}},
		{"log", "log(10)", []vc{{nil, math.Ln10}}},
		{"ln", "ln(e)", []vc{{nil, 1}}},
		{"log10", "log10(1000)", []vc{{nil, 3}}},
		{"exp", "exp(2)", []vc{{nil, math.Exp(2)}}},
		{"abs", "abs(-3)", []vc{{nil, 3}}},
		{"floor", "floor(-2.5)", []vc{{nil, -3}}},
		{"ceil", "ceil(2.1)", []vc{{nil, 3}}},
		{"pow-func", "pow(2, 10)", []vc{{nil, 1024}}},
		{"pow-frac", "pow(2, 0.5)", []vc{{nil, math.Sqrt2}}},
		{"identity", "sin(x)^2 + cos(x)^2", []vc{
			{[]vv{{"x", 0.5}}, 1},
			{[]vv{{"x", 3}}, 1},
			{[]vv{{"x", -10}}, 1},
		}},
	}
	ctx := symcalc.NewContext(symcalc.Prec(64))
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			a, err := symcalc.ParseString(c.src, symcalc.Vars("x"))
			if err != nil {
				t.Fatal(c.src, "failed to parse:", err)
			}
			for _, v := range c.r {
				ctx := ctx.Clone()
				for _, x := range v.vars {
					ctx.Set(x.n, new(big.Float).SetFloat64(x.v))
				}
				r, err := ctx.Eval(a)
				if err != nil {
					t.Error("evaluation error:", err)
				}
				if r == nil {
					t.Fatal("nil result")
				}
				if r.Prec() != 64 {
					t.Errorf("result has prec %d, want 64", r.Prec())
				}
				f, _ := r.Float64()
				if !near(f, v.r) {
					t.Errorf("%s with %v: want %g, got %g", c.src, v.vars, v.r, f)
				}
			}
		})
	}
}

// near returns whether got is within a few float64 ulps of want.
func near(got, want float64) bool {
	if got == want {
		return true
	}
	return math.Abs(got-want) <= 1e-14*math.Max(1, math.Abs(want))
}

func TestEvalExact(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want string
	}{
		{"sinpi", "sin(pi)", "0"},
		{"cospi2", "cos(pi/2)", "0"},
		{"tanpi", "tan(pi)", "0"},
		{"sin2pi", "sin(2pi)", "0"},
		{"log1", "log(1)", "0"},
		{"pow", "2^100", "1267650600228229401496703205376"},
		{"bigint", "123456789012345678901234567890 + 1", "123456789012345678901234567891"},
		{"mul", "99999999999 * 99999999999", "9999999999800000000001"},
		{"cmp", "pi > 3", "1"},
		{"floor", "floor(pi)", "3"},
		{"ceil", "ceil(-pi)", "-3"},
	}
	ctx := symcalc.NewContext()
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			a, err := symcalc.ParseString(c.src, ctx)
			if err != nil {
				t.Fatal(c.src, "failed to parse:", err)
			}
			r, err := ctx.Eval(a)
			if err != nil {
				t.Fatal("evaluation error:", err)
			}
			if got := r.Text('f', 0); got != c.want || !r.IsInt() {
				t.Errorf("%s: want exactly %s, got %s", c.src, c.want, r.Text('g', 50))
			}
		})
	}
}

func TestEvalPrecision(t *testing.T) {
	r, err := symcalc.EvalString("1+1e-30", symcalc.Prec(128))
	if err != nil {
		t.Fatal(err)
	}
	if r.Cmp(big.NewFloat(1)) <= 0 {
		t.Fatalf("1+1e-30 at 128 bits lost the small term: %v", r.Text('g', 40))
	}
	d := new(big.Float).Sub(r, big.NewFloat(1))
	f, _ := d.Float64()
	if math.Abs(f-1e-30) > 1e-36 {
		t.Errorf("1+1e-30 - 1 = %g, want 1e-30", f)
	}
	r, err = symcalc.EvalString("1+1e-30", symcalc.Prec(53))
	if err != nil {
		t.Fatal(err)
	}
	if r.Cmp(big.NewFloat(1)) != 0 {
		t.Errorf("1+1e-30 at 53 bits: want 1, got %v", r.Text('g', 40))
	}
}

func TestEvalConstantDigits(t *testing.T) {
	cases := []struct {
		src    string
		digits string
	}{
		{"pi", "3.14159265358979323846264338327950288419716939937510"},
		{"e", "2.71828182845904523536028747135266249775724709369995"},
		{"gamma", "0.57721566490153286060651209008240243104215933593992"},
		{"ln2", "0.69314718055994530941723212145817656807550013436025"},
		{"ln10", "2.30258509299404568401799145468436420760110148862877"},
		{"sqrt2", "1.41421356237309504880168872420969807856967187537694"},
		{"phi", "1.61803398874989484820458683436563811772030917980576"},
		{"sqrt(2)", "1.41421356237309504880168872420969807856967187537694"},
		{"4atan(1)", "3.14159265358979323846264338327950288419716939937510"},
		{"exp(1)", "2.71828182845904523536028747135266249775724709369995"},
		{"log(2)", "0.69314718055994530941723212145817656807550013436025"},
		{"2asin(1)", "3.14159265358979323846264338327950288419716939937510"},
		{"(1+sqrt(5))/2", "1.61803398874989484820458683436563811772030917980576"},
	}
	// 2^-160 is well below the 50 given decimal places.
	tol := new(big.Float).SetMantExp(big.NewFloat(1), -160)
	for _, c := range cases {
		t.Run(c.src, func(t *testing.T) {
			r, err := symcalc.EvalString(c.src, symcalc.Prec(200))
			if err != nil {
				t.Fatal(err)
			}
			want, _, err := new(big.Float).SetPrec(200).Parse(c.digits, 10)
			if err != nil {
				t.Fatal(err)
			}
			d := new(big.Float).Sub(r, want)
			if d.Abs(d).Cmp(tol) > 0 {
				t.Errorf("%s: want %s, got %s", c.src, c.digits, r.Text('f', 55))
			}
		})
	}
}

func TestEvalSoftErrors(t *testing.T) {
	cases := []struct {
		name   string
		src    string
		r      float64
		sentry error
		fn     string
	}{
		{"sqrt", "sqrt(-1)", 0, symcalc.ErrDomain, "sqrt"},
		{"log", "log(0)", 0, symcalc.ErrDomain, "log"},
		{"log-neg", "log(-5)", 0, symcalc.ErrDomain, "log"},
		{"log10", "log10(0)", 0, symcalc.ErrDomain, "log10"},
		{"asin", "asin(2)", 0, symcalc.ErrDomain, "asin"},
		{"acos", "acos(-1.5)", 0, symcalc.ErrDomain, "acos"},
		{"acosh", "acosh(0.5)", 0, symcalc.ErrDomain, "acosh"},
		{"atanh", "atanh(1)", 0, symcalc.ErrDomain, "atanh"},
		{"div", "1/0", 0, symcalc.ErrDivisionByZero, "/"},
		{"div-expr", "1/(2-2)", 0, symcalc.ErrDivisionByZero, "/"},
		{"pow-negfrac", "(-8)^(1/3)", 0, symcalc.ErrDomain, "^"},
		{"pow-zeroneg", "0^-1", 0, symcalc.ErrDomain, "^"},
		{"pow-func", "pow(-2, 0.5)", 0, symcalc.ErrDomain, "pow"},
		{"continue", "sqrt(-1) + 5", 5, symcalc.ErrDomain, "sqrt"},
		{"first", "sqrt(-1) + log(0) + 1/0", 0, symcalc.ErrDomain, "sqrt"},
		{"nested", "2 * (1 + 1/0)", 2, symcalc.ErrDivisionByZero, "/"},
		{"inf-sub", "exp(2^40) - exp(2^40) + 1", 1, symcalc.ErrDomain, "-"},
		{"inf-add", "-exp(2^40) + exp(2^40) + 1", 1, symcalc.ErrDomain, "+"},
		{"zero-mul-inf", "0*exp(2^40) + 1", 1, symcalc.ErrDomain, "*"},
		{"inf-mul-zero", "2 + exp(2^40)*(3-3)", 2, symcalc.ErrDomain, "*"},
		{"inf-quo", "exp(2^40)/exp(2^40) + 1", 1, symcalc.ErrDomain, "/"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r, err := symcalc.EvalString(c.src)
			if err == nil {
				t.Fatalf("%s: no error", c.src)
			}
			if r == nil {
				t.Fatalf("%s: nil result with soft error %v", c.src, err)
			}
			if f, _ := r.Float64(); f != c.r {
				t.Errorf("%s: want %g, got %g", c.src, c.r, f)
			}
			if !errors.Is(err, c.sentry) {
				t.Errorf("%s: error %v is not %v", c.src, err, c.sentry)
			}
			var de *symcalc.DomainError
			if !errors.As(err, &de) {
				t.Fatalf("%s: error %#v is not a *DomainError", c.src, err)
			}
			if de.Func != c.fn {
				t.Errorf("%s: error from %q, want %q", c.src, de.Func, c.fn)
			}
		})
	}
}

func TestEvalStrict(t *testing.T) {
	ctx := symcalc.NewContext(symcalc.Strict(true))
	if !ctx.Strict() {
		t.Fatal("context is not strict")
	}
	a, err := symcalc.ParseString("sqrt(-1) + 5")
	if err != nil {
		t.Fatal(err)
	}
	r, err := ctx.Eval(a)
	if r != nil {
		t.Errorf("strict evaluation gave result %v", r)
	}
	if !errors.Is(err, symcalc.ErrDomain) {
		t.Errorf("wrong error %v", err)
	}
	a, err = symcalc.ParseString("exp(2^40) - exp(2^40) + 5")
	if err != nil {
		t.Fatal(err)
	}
	r, err = ctx.Eval(a)
	if r != nil {
		t.Errorf("strict evaluation of inf-inf gave result %v", r)
	}
	if !errors.Is(err, symcalc.ErrDomain) {
		t.Errorf("wrong error %v for inf-inf", err)
	}
	a, err = symcalc.ParseString("sqrt(4) + 5")
	if err != nil {
		t.Fatal(err)
	}
	r, err = ctx.Eval(a)
	if err != nil {
		t.Fatal(err)
	}
	if f, _ := r.Float64(); f != 7 {
		t.Errorf("want 7, got %g", f)
	}
}

func TestEvalUnboundVar(t *testing.T) {
	a, err := symcalc.ParseString("x + 1", symcalc.Vars("x"))
	if err != nil {
		t.Fatal(err)
	}
	r, err := symcalc.NewContext().Eval(a)
	var ne *symcalc.NameError
	if !errors.As(err, &ne) {
		t.Fatalf("want *NameError, got %#v", err)
	}
	if ne.Name != "x" {
		t.Errorf("wrong name in error: %q", ne.Name)
	}
	if f, _ := r.Float64(); f != 1 {
		t.Errorf("want 1 with x substituted by 0, got %g", f)
	}
}

func TestEvalNoLeakedErrors(t *testing.T) {
	ctx := symcalc.NewContext()
	bad, _ := symcalc.ParseString("1/0")
	good, _ := symcalc.ParseString("1/2")
	if _, err := ctx.Eval(bad); err == nil {
		t.Fatal("no error from 1/0")
	}
	if _, err := ctx.Eval(good); err != nil {
		t.Errorf("error from earlier evaluation leaked: %v", err)
	}
}

func TestEvalRounding(t *testing.T) {
	near, err := symcalc.EvalString("1/3", symcalc.Prec(8))
	if err != nil {
		t.Fatal(err)
	}
	down, err := symcalc.EvalString("1/3", symcalc.Prec(8), symcalc.Rounding(big.ToZero))
	if err != nil {
		t.Fatal(err)
	}
	if down.Cmp(near) >= 0 {
		t.Errorf("rounding toward zero gave %v, not less than %v", down, near)
	}
	if down.Mode() != big.ToZero {
		t.Errorf("result has mode %v", down.Mode())
	}
}

func TestEvalParseErrors(t *testing.T) {
	_, err := symcalc.EvalString("2 +")
	var ie symcalc.InputError
	if !errors.As(err, &ie) {
		t.Fatalf("want InputError, got %#v", err)
	}
	_, err = symcalc.Eval(strings.NewReader("sin(1, 2)"))
	var ce *symcalc.CallError
	if !errors.As(err, &ce) {
		t.Fatalf("want *CallError, got %#v", err)
	}
}

func TestEvalConcurrent(t *testing.T) {
	ctx := symcalc.NewContext(symcalc.Prec(128))
	a, err := symcalc.ParseString("sin(1)^2 + cos(1)^2 + pi - pi")
	if err != nil {
		t.Fatal(err)
	}
	errs := make(chan error, 8)
	results := make(chan *big.Float, 8)
	for i := 0; i < 8; i++ {
		go func() {
			r, err := ctx.Eval(a)
			errs <- err
			results <- r
		}()
	}
	for i := 0; i < 8; i++ {
		if err := <-errs; err != nil {
			t.Error(err)
		}
		r := <-results
		if f, _ := r.Float64(); !near(f, 1) {
			t.Errorf("want 1, got %v", r)
		}
	}
}

func BenchmarkEval(b *testing.B) {
	cases := []struct {
		name string
		src  string
	}{
		{"arith", "2+3*4-5/6"},
		{"pow", "2^100 + 3^0.5"},
		{"trig", "sin(1) + cos(2) + tan(3)"},
		{"consts", "pi + e + gamma"},
	}
	for _, c := range cases {
		b.Run(c.name, func(b *testing.B) {
			ctx := symcalc.NewContext()
			a, err := symcalc.ParseString(c.src, ctx)
			if err != nil {
				b.Fatal(err)
			}
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				ctx.Eval(a)
			}
		})
	}
}
