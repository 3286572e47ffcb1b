package symcalc

// ParseOption is an option for parsing. A *Context is also a ParseOption: it
// sets the precision of numeric literals to the context's precision and
// declares every variable bound in the context.
type ParseOption interface {
	parseOption(parsectx) parsectx
}

// DefaultMaxDepth is the default recursion limit of the parser.
const DefaultMaxDepth = 100

type (
	depthopt int
	declopt  []string
)

// parsectx holds general data for parsing.
type parsectx struct {
	// prec is the precision of non-integer literals.
	prec uint
	// maxDepth is the recursion limit.
	maxDepth int
	// vars is the set of names that parse as variables.
	vars map[string]bool
	// names is the set of variable names that have been seen this parse.
	names map[string]bool
}

// MaxDepth sets the maximum recursion depth of the parser. Each level of
// parentheses costs one level of recursion, as does each prefix operator and
// the right operand of each binary operator while it is being parsed. Values
// less than 1 restore DefaultMaxDepth.
func MaxDepth(n int) ParseOption {
	return depthopt(n)
}

func (o depthopt) parseOption(p parsectx) parsectx {
	p.maxDepth = int(o)
	if p.maxDepth < 1 {
		p.maxDepth = DefaultMaxDepth
	}
	return p
}

// Vars declares names that parse as symbolic variables. Without a
// declaration, a name that is not a function or constant is an error.
// Variables cannot shadow functions or constants.
func Vars(names ...string) ParseOption {
	return declopt(names)
}

func (o declopt) parseOption(p parsectx) parsectx {
	p.vars = copyset(p.vars, len(o))
	for _, name := range o {
		p.vars[name] = true
	}
	return p
}

func (ctx *Context) parseOption(p parsectx) parsectx {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	p.prec = ctx.prec
	if len(ctx.names) != 0 {
		p.vars = copyset(p.vars, len(ctx.names))
		for name := range ctx.names {
			p.vars[name] = true
		}
	}
	return p
}

// copyset copies a set so that options never modify each other's maps.
func copyset(m map[string]bool, extra int) map[string]bool {
	r := make(map[string]bool, len(m)+extra)
	for k := range m {
		r[k] = true
	}
	return r
}
