package symcalc

import "strings"

// Compare imposes a total order on expressions. Numbers sort first by value,
// then constants and variables by name, then function calls by function and
// arguments, then operations by operator and operands. The result is -1, 0,
// or +1.
func Compare(a, b *Expr) int {
	return a.n.compare(b.n)
}

// Equal returns whether two expressions are structurally identical. Numbers
// are equal if their values are equal and both or neither are exact integers.
func Equal(a, b *Expr) bool {
	return a.n.compare(b.n) == 0
}

func (n *node) compare(m *node) int {
	if n.kind != m.kind {
		if n.kind < m.kind {
			return -1
		}
		return 1
	}
	switch {
	case n.kind == nodeNum:
		if c := n.num.Cmp(m.num); c != 0 {
			return c
		}
		switch {
		case n.isInt == m.isInt:
			return 0
		case n.isInt:
			return -1
		default:
			return 1
		}
	case n.kind == nodeConst, n.kind == nodeVar:
		return strings.Compare(n.name, m.name)
	case n.kind == nodeCall:
		if n.fn != m.fn {
			if n.fn < m.fn {
				return -1
			}
			return 1
		}
		if len(n.args) != len(m.args) {
			if len(n.args) < len(m.args) {
				return -1
			}
			return 1
		}
		for i, arg := range n.args {
			if c := arg.compare(m.args[i]); c != 0 {
				return c
			}
		}
		return 0
	case n.kind.binary():
		if c := n.left.compare(m.left); c != 0 {
			return c
		}
		return n.right.compare(m.right)
	case n.kind.unary():
		return n.left.compare(m.left)
	default:
		panic("symcalc: invalid AST node " + n.kind.String())
	}
}

func (n *node) equal(m *node) bool {
	return n.compare(m) == 0
}
