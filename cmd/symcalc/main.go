package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/zephyrtronium/symcalc"
)

// isTTY reports whether a file descriptor is a terminal. It is replaced on
// platforms that can tell.
var isTTY = func(fd uintptr) bool { return false }

func main() {
	log.SetFlags(0)
	log.SetPrefix("symcalc: ")
	var (
		inname, verb string
		with         [][2]string
		nl, echo     bool
		strict, simp bool
		sci, watch   bool
		prec, jobs   int
	)
	addwith := func(s string) error {
		d := strings.SplitN(s, "=", 2)
		if len(d) != 2 {
			return fmt.Errorf(`variable definitions must be "name=value", not %q`, s)
		}
		with = append(with, [2]string{strings.TrimSpace(d[0]), strings.TrimSpace(d[1])})
		return nil
	}
	flag.StringVar(&inname, "in", "", "input file (default stdin if no args given)")
	flag.StringVar(&verb, "fmt", "", "result formatting string (default all significant digits)")
	flag.Func("given", "name=value variable definition (any number of times)", addwith)
	flag.IntVar(&prec, "p", symcalc.DefaultPrec, "precision of calculations in bits")
	flag.IntVar(&jobs, "j", 1, "number of expressions to evaluate in parallel")
	flag.BoolVar(&nl, "n", false, "parse separate input lines as separate expressions")
	flag.BoolVar(&echo, "echo", false, "print each expression before its result")
	flag.BoolVar(&strict, "strict", false, "treat domain errors as fatal to the expression")
	flag.BoolVar(&simp, "simplify", false, "print simplified expressions instead of values")
	flag.BoolVar(&sci, "sci", false, "print results in scientific notation")
	flag.BoolVar(&watch, "watch", false, "evaluate the -in file again whenever it changes")
	flag.Parse()
	if prec < symcalc.MinPrec || prec > symcalc.MaxPrec {
		log.Fatalf("precision (%d) must be between %d and %d", prec, symcalc.MinPrec, symcalc.MaxPrec)
	}
	if jobs < 1 {
		log.Fatalf("parallelism (%d) must be positive", jobs)
	}

	ctx := symcalc.NewContext(symcalc.Prec(uint(prec)), symcalc.Strict(strict))
	for _, d := range with {
		nm, vl := d[0], d[1]
		r, err := symcalc.EvalString(vl, symcalc.Prec(uint(prec)))
		if err != nil {
			log.Fatalf("setting %s: %v", nm, err)
		}
		ctx.Set(nm, r)
	}
	c := &calc{ctx: ctx, verb: verb, echo: echo, simplify: simp, sci: sci}

	switch {
	case watch:
		if inname == "" || inname == "-" {
			log.Fatal("-watch needs a file given with -in")
		}
		if err := watchFile(c, inname, nl, jobs, os.Stdout); err != nil {
			log.Fatal(err)
		}
		return
	case inname == "" && flag.NArg() == 0 && isTTY(os.Stdin.Fd()):
		if err := repl(c, os.Stdout); err != nil {
			log.Fatal(err)
		}
		return
	}

	var srcs []string
	f, err := infile(inname, flag.NArg() == 0)
	if err != nil {
		log.Fatal(err)
	}
	if f != nil {
		s, err := readExprs(f, nl)
		f.Close()
		if err != nil {
			log.Fatal(err)
		}
		srcs = append(srcs, s...)
	}
	srcs = append(srcs, flag.Args()...)
	if !c.run(os.Stdout, srcs, jobs) {
		os.Exit(1)
	}
}

func infile(inname string, std bool) (io.ReadCloser, error) {
	switch {
	case inname != "" && inname != "-":
		return os.Open(inname)
	case inname == "-", std:
		return io.NopCloser(os.Stdin), nil
	}
	return nil, nil
}

// readExprs reads expressions from r. If nl is set, each non-blank line is a
// separate expression. Otherwise, the entire input is one expression.
func readExprs(r io.Reader, nl bool) ([]string, error) {
	if !nl {
		b, err := io.ReadAll(r)
		if err != nil {
			return nil, err
		}
		s := strings.TrimSpace(string(b))
		if s == "" {
			return nil, nil
		}
		return []string{s}, nil
	}
	var srcs []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if s := strings.TrimSpace(sc.Text()); s != "" {
			srcs = append(srcs, s)
		}
	}
	return srcs, sc.Err()
}
