// Package symcalc implements an arbitrary-precision calculator with a small
// symbolic simplifier.
//
// The syntax of expressions is the usual infix notation, with a few
// conveniences for writing math the way you would in your notes. "2(3+4)",
// "2pi", and "(x+1)(x-1)" are implied multiplications. "2^3^2" is "2^(3^2)",
// and prefix operators bind more tightly than exponentiation, so "-2^2" is 4.
// Comparisons produce 1 or 0.
//
// Numbers are math/big.Float values. A Context holds the precision and
// rounding mode of calculations, the values of variables, and the constants
// pi, e, gamma and friends memoized at that precision. Integer literals are
// exact at any size. Intermediate results carry GuardBits extra bits, so a
// result is usually correct to the last bit of the context's precision.
//
// Evaluation is forgiving by default: sqrt(-1), log(0), and 1/0 evaluate to
// zero and report an error alongside the value. Strict contexts stop instead.
//
// Simplify rewrites an expression with algebraic identities, such as x*0 = 0
// and sqrt(8) = 2*sqrt(2), without evaluating anything that isn't exact.
package symcalc
