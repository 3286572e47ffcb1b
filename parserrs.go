package symcalc

import "strconv"

// OperatorError is an error indicating an operator token that is not
// understood by the parser. It implements InputError.
type OperatorError struct {
	// Col is the position of the operator.
	Col int
	// Operator is the token that was not understood.
	Operator string
	// Unary is whether the parser expected a unary operator at the time.
	Unary bool
}

func (err *OperatorError) Error() string {
	s := "binary"
	if err.Unary {
		s = "unary"
	}
	return errpos(err.Col, "unknown "+s+" operator "+strconv.Quote(err.Operator))
}

func (err *OperatorError) Pos() int {
	return err.Col
}

// BracketError is an error indicating mismatched parentheses in the
// input. It implements InputError.
type BracketError struct {
	// Col is the position of the parenthesis or the end of input.
	Col int
	// Left is the opening parenthesis, or empty if there was none.
	Left string
	// Right is the closing parenthesis, or empty if there was none.
	Right string
}

func (err *BracketError) Error() string {
	if err.Left == "" {
		return errpos(err.Col, "close bracket "+err.Right+" with no open bracket")
	}
	return errpos(err.Col, "open bracket "+err.Left+" with no close bracket")
}

func (err *BracketError) Pos() int {
	return err.Col
}

// SeparatorError is an error indicating a comma outside of a function
// argument list. It implements InputError.
type SeparatorError struct {
	// Col is the position of the separator.
	Col int
	// Sep is the separator.
	Sep string
}

func (err *SeparatorError) Error() string {
	return errpos(err.Col, "invalid occurrence of separator "+strconv.Quote(err.Sep))
}

func (err *SeparatorError) Pos() int {
	return err.Col
}

// CallError is an error indicating a function call with the wrong number of
// arguments, including a function name with no argument list at all. It
// implements InputError.
type CallError struct {
	// Col is the position of the argument list, or of the token that should
	// have opened it.
	Col int
	// Func is the function name that was called.
	Func string
	// Len is the number of arguments the function call tried to imply.
	Len int
	// Want is the arity of the function.
	Want int
}

func (err *CallError) Error() string {
	return errpos(err.Col, "cannot call "+err.Func+" with "+strconv.Itoa(err.Len)+" arguments (want "+strconv.Itoa(err.Want)+")")
}

func (err *CallError) Pos() int {
	return err.Col
}

// EmptyExpressionError is an error indicating an empty subexpression.
type EmptyExpressionError struct {
	// Col is the position of the token that ended the subexpression.
	Col int
	// End is the token that ended the subexpression.
	End string
}

func (err *EmptyExpressionError) Error() string {
	if err.End == "" {
		if err.Col <= 1 {
			return errpos(err.Col, "no expression")
		}
		return errpos(err.Col, "no expression at end")
	}
	return errpos(err.Col, "no expression up to "+strconv.Quote(err.End))
}

func (err *EmptyExpressionError) Pos() int {
	return err.Col
}

// TokenError is an error indicating a token that cannot follow the
// expression before it, e.g. two adjacent constants.
type TokenError struct {
	// Col is the position of the token.
	Col int
	// Text is the token.
	Text string
}

func (err *TokenError) Error() string {
	return errpos(err.Col, "unexpected "+strconv.Quote(err.Text))
}

func (err *TokenError) Pos() int {
	return err.Col
}

// NameError is an error indicating a name that is neither a function, a
// constant, nor a declared variable. During evaluation, it also indicates a
// variable with no value, in which case Col is 0.
type NameError struct {
	// Col is the position of the name in the input.
	Col int
	// Name is the name that was missing.
	Name string
}

func (err *NameError) Error() string {
	if err.Col <= 0 {
		return "undefined name: " + strconv.Quote(err.Name)
	}
	return errpos(err.Col, "unknown name "+strconv.Quote(err.Name))
}

func (err *NameError) Pos() int {
	return err.Col
}

// DepthError is an error indicating input nested more deeply than the
// parser's recursion limit.
type DepthError struct {
	// Col is the position of the token at which the limit was reached.
	Col int
	// Max is the recursion limit.
	Max int
}

func (err *DepthError) Error() string {
	return errpos(err.Col, "expression nested too deeply (limit "+strconv.Itoa(err.Max)+")")
}

func (err *DepthError) Pos() int {
	return err.Col
}

// ImplicitMulError is an error indicating too many consecutive implied
// multiplications.
type ImplicitMulError struct {
	// Col is the position of the term that exceeded the limit.
	Col int
}

func (err *ImplicitMulError) Error() string {
	return errpos(err.Col, "more than "+strconv.Itoa(MaxImplicitMul)+" consecutive implied multiplications")
}

func (err *ImplicitMulError) Pos() int {
	return err.Col
}

// errpos is a shortcut to create an error message with a position.
func errpos(pos int, msg string) string {
	return strconv.Itoa(pos) + ": " + msg
}

// InputError is an error with position information. Every error resulting from
// invalid input implements InputError.
type InputError interface {
	error
	// Pos returns the position of the error as the number of runes up to and
	// including the start of the token that caused the error.
	Pos() int
}

var (
	_ InputError = (*OperatorError)(nil)
	_ InputError = (*BracketError)(nil)
	_ InputError = (*SeparatorError)(nil)
	_ InputError = (*CallError)(nil)
	_ InputError = (*EmptyExpressionError)(nil)
	_ InputError = (*TokenError)(nil)
	_ InputError = (*NameError)(nil)
	_ InputError = (*DepthError)(nil)
	_ InputError = (*ImplicitMulError)(nil)
	_ InputError = (*LexError)(nil)
)
