package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/peterh/liner"

	"github.com/zephyrtronium/symcalc"
)

const (
	prompt      = "> "
	historyFile = ".symcalc_history"
)

// session is the state of an interactive session.
type session struct {
	c    *calc
	hist []string
}

func repl(c *calc, w io.Writer) error {
	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	histPath := historyFile
	if home, err := os.UserHomeDir(); err == nil {
		histPath = filepath.Join(home, historyFile)
	}
	if f, err := os.Open(histPath); err == nil {
		ln.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			ln.WriteHistory(f)
			f.Close()
		}
	}()

	s := session{c: c}
	fmt.Fprintln(w, `symcalc: type an expression, "help", or "quit"`)
	for {
		line, err := ln.Prompt(prompt)
		switch {
		case errors.Is(err, liner.ErrPromptAborted):
			continue
		case errors.Is(err, io.EOF):
			fmt.Fprintln(w)
			return nil
		case err != nil:
			return err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		ln.AppendHistory(line)
		if s.do(w, line) {
			return nil
		}
	}
}

// do handles one line of input and returns whether the session is over.
func (s *session) do(w io.Writer, line string) bool {
	s.hist = append(s.hist, line)
	name, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)
	switch name {
	case "quit", "exit":
		return true
	case "help":
		fmt.Fprint(w, help)
		return false
	case "precision":
		if arg != "" {
			n, err := strconv.ParseUint(arg, 10, 0)
			if err != nil || n == 0 {
				fmt.Fprintf(w, "invalid precision: %s\n", arg)
				return false
			}
			s.c.ctx.SetPrec(uint(n))
		}
		p := s.c.ctx.Prec()
		fmt.Fprintf(w, "precision: %d bits (%d decimal digits)\n", p, symcalc.DecimalDigits(p))
		return false
	case "mode":
		if s.c.sci {
			fmt.Fprintln(w, "mode: scientific")
		} else {
			fmt.Fprintln(w, "mode: normal")
		}
		return false
	case "scientific":
		s.c.sci = true
		return false
	case "normal":
		s.c.sci = false
		return false
	case "history":
		for i, h := range s.hist[:len(s.hist)-1] {
			fmt.Fprintf(w, "%4d  %s\n", i+1, h)
		}
		return false
	}
	out, err := s.c.eval(line)
	if err != nil {
		var ie symcalc.InputError
		if errors.As(err, &ie) && ie.Pos() > 0 {
			fmt.Fprintf(w, "%s%s^\n", strings.Repeat(" ", len(prompt)), caret(line, ie.Pos()))
		}
		fmt.Fprintln(w, err)
		return false
	}
	fmt.Fprintln(w, out)
	return false
}

const help = `Examples:
  2+3*4         -> 14
  2(3+4)        -> 14 (implied multiplication)
  (3+4)(2+1)    -> 21
  2^3^2         -> 512 (right-associative)
  5>3           -> 1 (true)
  sqrt(-1) + 2  -> 2 (with a domain error)
Commands:
  precision [N] show or set the precision in bits
  scientific    print results in scientific notation
  normal        print results normally
  mode          show the notation
  history       show previous lines
  quit, exit    leave
`
