package horn

type operatorKind int

const (
	xfx operatorKind = iota // non-associative
	yfx                     // left-associative
)

type operator struct {
	functor  string
	priority int
	kind     operatorKind
}

// The operator table is fixed; lower priority binds tighter.
var infixOperators = map[TokenType]operator{
	TokenIs:       {functor: "is", priority: 700, kind: xfx},
	TokenPlus:     {functor: "+", priority: 500, kind: yfx},
	TokenMinus:    {functor: "-", priority: 500, kind: yfx},
	TokenMultiply: {functor: "*", priority: 400, kind: yfx},
}

const maxOperandPriority = 999

func operatorByFunctor(functor string) (operator, bool) {
	for _, op := range infixOperators {
		if op.functor == functor {
			return op, true
		}
	}
	return operator{}, false
}

// argPriorities returns the highest priority allowed for the left and right
// operands of op.
func (op operator) argPriorities() (left, right int) {
	if op.kind == yfx {
		return op.priority, op.priority - 1
	}
	return op.priority - 1, op.priority - 1
}

// termPriority is the priority of t when rendered: the operator priority for
// infix structures and 0 for everything else.
func termPriority(t Term) int {
	s, ok := t.(*Structure)
	if !ok || s.Arity != 2 {
		return 0
	}
	if op, ok := operatorByFunctor(s.Functor); ok {
		return op.priority
	}
	return 0
}
