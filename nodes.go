package symcalc

import (
	"math/big"
	"strconv"
	"strings"
)

// node is a node in the abstract syntax tree of an expression. Every node
// exclusively owns its children.
type node struct {
	kind nodeKind

	// num is the value of a nodeNum. isInt marks literals written without a
	// point or exponent and the results of exact integer folds.
	num   *big.Float
	isInt bool
	// name is the literal text of a nodeNum, or the name of a nodeConst or
	// nodeVar.
	name string

	fn   Func
	args []*node

	left  *node
	right *node
}

// nodeKind identifies the shape of a node. The order of the kinds is the
// order of node shapes used by Compare.
type nodeKind int8

const (
	nodeNone nodeKind = iota

	nodeNum   // value num
	nodeConst // lookup constant name
	nodeVar   // lookup variable name

	nodeCall // call fn with args

	nodeAdd // left + right
	nodeSub // left - right
	nodeMul // left * right
	nodeDiv // left / right
	nodePow // left ^ right
	nodeEq  // left == right
	nodeNe  // left != right
	nodeLt  // left < right
	nodeLe  // left <= right
	nodeGt  // left > right
	nodeGe  // left >= right

	nodeNeg  // -left
	nodePlus // +left
)

var nodeKindNames = [...]string{
	nodeNone:  "None",
	nodeNum:   "Num",
	nodeConst: "Const",
	nodeVar:   "Var",
	nodeCall:  "Call",
	nodeAdd:   "Add",
	nodeSub:   "Sub",
	nodeMul:   "Mul",
	nodeDiv:   "Div",
	nodePow:   "Pow",
	nodeEq:    "Eq",
	nodeNe:    "Ne",
	nodeLt:    "Lt",
	nodeLe:    "Le",
	nodeGt:    "Gt",
	nodeGe:    "Ge",
	nodeNeg:   "Neg",
	nodePlus:  "Plus",
}

func (k nodeKind) String() string {
	if k < 0 || int(k) >= len(nodeKindNames) {
		return "nodeKind(" + strconv.Itoa(int(k)) + ")"
	}
	return nodeKindNames[k]
}

func (k nodeKind) binary() bool {
	return nodeAdd <= k && k <= nodeGe
}

func (k nodeKind) unary() bool {
	return k == nodeNeg || k == nodePlus
}

// opText is the operator spelling of binary and unary kinds.
var opText = [...]string{
	nodeAdd:  " + ",
	nodeSub:  " - ",
	nodeMul:  "*",
	nodeDiv:  "/",
	nodePow:  "^",
	nodeEq:   " == ",
	nodeNe:   " != ",
	nodeLt:   " < ",
	nodeLe:   " <= ",
	nodeGt:   " > ",
	nodeGe:   " >= ",
	nodeNeg:  "-",
	nodePlus: "+",
}

// level is the binding level of the node as it is printed. Higher binds more
// tightly.
func (n *node) level() int {
	switch n.kind {
	case nodeEq, nodeNe, nodeLt, nodeLe, nodeGt, nodeGe:
		return 1
	case nodeAdd, nodeSub:
		return 2
	case nodeMul, nodeDiv:
		return 3
	case nodePow:
		return 4
	case nodeNeg, nodePlus:
		return 5
	case nodeNum:
		if n.num.Signbit() {
			// Prints with a leading minus, like a negation.
			return 5
		}
	}
	return 6
}

func (n *node) String() string {
	var b strings.Builder
	n.fmt(&b)
	return b.String()
}

// fmt writes n in infix notation, parenthesizing only where the grammar
// requires it.
func (n *node) fmt(b *strings.Builder) {
	switch {
	case n.kind == nodeNum:
		b.WriteString(n.text())
	case n.kind == nodeConst, n.kind == nodeVar:
		b.WriteString(n.name)
	case n.kind == nodeCall:
		b.WriteString(n.fn.String())
		b.WriteByte('(')
		for i, arg := range n.args {
			if i > 0 {
				b.WriteString(", ")
			}
			arg.fmt(b)
		}
		b.WriteByte(')')
	case n.kind.binary():
		lv := n.level()
		ll, rl := n.left.level(), n.right.level()
		right := n.kind == nodePow
		n.left.fmtparen(b, ll < lv || ll == lv && right)
		b.WriteString(opText[n.kind])
		n.right.fmtparen(b, rl < lv || rl == lv && !right)
	case n.kind.unary():
		b.WriteString(opText[n.kind])
		n.left.fmtparen(b, n.left.level() < 5)
	default:
		panic("symcalc: invalid node kind " + n.kind.String() + " after writing " + b.String())
	}
}

func (n *node) fmtparen(b *strings.Builder, paren bool) {
	if paren {
		b.WriteByte('(')
		defer b.WriteByte(')')
	}
	n.fmt(b)
}

// text is the decimal representation of a nodeNum.
func (n *node) text() string {
	if n.name != "" {
		return n.name
	}
	if n.isInt {
		return n.num.Text('f', 0)
	}
	return n.num.Text('g', -1)
}

// clone deep-copies the subtree rooted at n.
func (n *node) clone() *node {
	if n == nil {
		return nil
	}
	r := &node{
		kind:  n.kind,
		isInt: n.isInt,
		name:  n.name,
		fn:    n.fn,
		left:  n.left.clone(),
		right: n.right.clone(),
	}
	if n.num != nil {
		r.num = new(big.Float).Copy(n.num)
	}
	if n.args != nil {
		r.args = make([]*node, len(n.args))
		for i, arg := range n.args {
			r.args[i] = arg.clone()
		}
	}
	return r
}

// numNode creates a number node. If isInt, then x must be an integer.
func numNode(x *big.Float, isInt bool) *node {
	return &node{kind: nodeNum, num: x, isInt: isInt}
}

// intNode creates an exact integer node, widening the precision if needed to
// hold x exactly.
func intNode(x *big.Int, prec uint) *node {
	if bl := uint(x.BitLen()); bl > prec {
		prec = bl
	}
	return numNode(new(big.Float).SetPrec(prec).SetInt(x), true)
}

// smallNode creates an exact integer node with a small value.
func smallNode(x int64, prec uint) *node {
	return intNode(big.NewInt(x), prec)
}

func binNode(kind nodeKind, left, right *node) *node {
	return &node{kind: kind, left: left, right: right}
}

func callNode(fn Func, args ...*node) *node {
	return &node{kind: nodeCall, fn: fn, args: args}
}

// Expr is a parsed expression that can be evaluated or simplified with a
// context.
type Expr struct {
	// n is the root node of the expression.
	n *node
	// names is the sorted list of variable names used in the expression.
	names []string
}

// Vars returns the variable names used in the expression.
func (e *Expr) Vars() []string {
	return append(([]string)(nil), e.names...)
}

// String formats the expression in the syntax accepted by Parse, with
// parentheses only where they are needed and explicit multiplication signs.
func (e *Expr) String() string {
	return e.n.String()
}

// Clone returns a deep copy of the expression.
func (e *Expr) Clone() *Expr {
	return &Expr{n: e.n.clone(), names: e.Vars()}
}
