package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"math/big"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/zephyrtronium/symcalc"
)

// calc evaluates expressions and formats their results.
type calc struct {
	ctx *symcalc.Context
	// verb is a fmt verb for results. If empty, results are printed with all
	// the digits the precision carries.
	verb     string
	echo     bool
	simplify bool
	sci      bool
}

// eval parses and evaluates or simplifies one expression and returns its
// output line. Soft errors are reported after the value. The error result is
// an input error or an error in strict mode.
func (c *calc) eval(src string) (string, error) {
	// run may call eval concurrently.
	ctx := c.ctx.Clone()
	a, err := symcalc.ParseString(src, ctx)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	if c.echo {
		b.WriteString(a.String())
		b.WriteString(" : ")
	}
	if c.simplify {
		s, err := ctx.Simplify(a)
		b.WriteString(s.String())
		if err != nil {
			fmt.Fprintf(&b, " (%v)", err)
		}
		return b.String(), nil
	}
	r, err := ctx.Eval(a)
	if r == nil {
		return "", err
	}
	b.WriteString(c.format(r))
	if err != nil {
		fmt.Fprintf(&b, " (%v)", err)
	}
	return b.String(), nil
}

// format formats a result.
func (c *calc) format(r *big.Float) string {
	if c.verb != "" {
		return fmt.Sprintf(c.verb, r)
	}
	digits := symcalc.DecimalDigits(r.Prec())
	if digits < 1 {
		digits = 1
	}
	if c.sci {
		return r.Text('e', digits-1)
	}
	return r.Text('g', digits)
}

// run evaluates srcs with up to jobs expressions at a time and prints the
// results in input order. Failed expressions are logged. The result is false
// if any expression failed.
func (c *calc) run(w io.Writer, srcs []string, jobs int) bool {
	out := make([]string, len(srcs))
	errs := make([]error, len(srcs))
	var g errgroup.Group
	g.SetLimit(jobs)
	for i, src := range srcs {
		i, src := i, src
		g.Go(func() error {
			out[i], errs[i] = c.eval(src)
			return nil
		})
	}
	g.Wait()
	ok := true
	for i, err := range errs {
		if err != nil {
			log.Print(describe(srcs[i], err))
			ok = false
			continue
		}
		fmt.Fprintln(w, out[i])
	}
	return ok
}

// describe formats an error for an expression, marking the column of input
// errors.
func describe(src string, err error) string {
	var ie symcalc.InputError
	if !errors.As(err, &ie) || ie.Pos() < 1 {
		return fmt.Sprintf("%s: %v", src, err)
	}
	return fmt.Sprintf("%v\n\t%s\n\t%s^", err, src, caret(src, ie.Pos()))
}

// caret returns the padding that puts a mark under the 1-based rune column
// pos of src.
func caret(src string, pos int) string {
	var b strings.Builder
	n := 0
	for _, r := range src {
		n++
		if n >= pos {
			break
		}
		if r == '\t' {
			b.WriteByte('\t')
		} else {
			b.WriteByte(' ')
		}
	}
	return b.String()
}
