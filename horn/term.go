package horn

import (
	"fmt"
	"strconv"
)

// Term is a node of a parsed term tree. Every node exclusively owns its
// children; trees are never shared between clauses.
type Term interface {
	fmt.Stringer
	termNode()
}

// Atom is a nullary symbolic constant. Integer literals are folded into
// atoms holding their canonical decimal text.
type Atom struct {
	Name string
}

// Variable is a named logic variable. The parser does not intern variables:
// each occurrence is its own node.
type Variable struct {
	Name string
}

// Structure is a compound term. Arity always equals len(Args); build values
// with NewStructure.
type Structure struct {
	Functor string
	Arity   int
	Args    []Term
}

// List is a bracketed sequence of terms.
type List struct {
	Elements []Term
}

func (*Atom) termNode()      {}
func (*Variable) termNode()  {}
func (*Structure) termNode() {}
func (*List) termNode()      {}

// NewAtom returns an atom term.
func NewAtom(name string) *Atom { return &Atom{Name: name} }

// NewNumber returns the atom an integer literal is folded into.
func NewNumber(n int64) *Atom { return &Atom{Name: strconv.FormatInt(n, 10)} }

// NewVariable returns a variable term.
func NewVariable(name string) *Variable { return &Variable{Name: name} }

// NewStructure returns a compound term whose arity is the number of args.
func NewStructure(functor string, args ...Term) *Structure {
	return &Structure{Functor: functor, Arity: len(args), Args: args}
}

// NewList returns a list term.
func NewList(elements ...Term) *List {
	return &List{Elements: elements}
}

// Clause is a head with an ordered body. A fact has an empty body.
type Clause struct {
	Head Term
	Body []Term
	Pos  Position
}

// IsFact reports whether c has no body goals.
func (c Clause) IsFact() bool {
	return len(c.Body) == 0
}

// Indicator identifies a predicate by name and arity, written name/arity.
type Indicator struct {
	Name  string
	Arity int
}

func (i Indicator) String() string {
	return i.Name + "/" + strconv.Itoa(i.Arity)
}

// IndicatorOf returns the indicator of a callable term. Variables and lists
// are not callable.
func IndicatorOf(t Term) (Indicator, bool) {
	switch t := t.(type) {
	case *Atom:
		return Indicator{Name: t.Name}, true
	case *Structure:
		return Indicator{Name: t.Functor, Arity: t.Arity}, true
	}
	return Indicator{}, false
}

// Equal reports whether a and b are structurally identical.
func Equal(a, b Term) bool {
	switch a := a.(type) {
	case *Atom:
		b, ok := b.(*Atom)
		return ok && a.Name == b.Name
	case *Variable:
		b, ok := b.(*Variable)
		return ok && a.Name == b.Name
	case *Structure:
		b, ok := b.(*Structure)
		return ok && a.Functor == b.Functor && a.Arity == b.Arity && termsEqual(a.Args, b.Args)
	case *List:
		b, ok := b.(*List)
		return ok && termsEqual(a.Elements, b.Elements)
	case nil:
		return b == nil
	}
	return false
}

// ClausesEqual compares heads and bodies; positions are ignored.
func ClausesEqual(a, b []Clause) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i].Head, b[i].Head) || !termsEqual(a[i].Body, b[i].Body) {
			return false
		}
	}
	return true
}

func termsEqual(a, b []Term) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

// Walk visits t and its subterms in pre-order. Returning false from fn skips
// the children of the visited node.
func Walk(t Term, fn func(Term) bool) {
	if t == nil || !fn(t) {
		return
	}
	switch t := t.(type) {
	case *Structure:
		for _, arg := range t.Args {
			Walk(arg, fn)
		}
	case *List:
		for _, el := range t.Elements {
			Walk(el, fn)
		}
	}
}

// VariableCount is a variable name and how often it occurs in a clause.
type VariableCount struct {
	Name  string
	Count int
}

// Variables returns the variables of c in order of first occurrence.
func Variables(c Clause) []VariableCount {
	var out []VariableCount
	index := make(map[string]int)
	visit := func(t Term) bool {
		v, ok := t.(*Variable)
		if !ok {
			return true
		}
		if i, seen := index[v.Name]; seen {
			out[i].Count++
			return true
		}
		index[v.Name] = len(out)
		out = append(out, VariableCount{Name: v.Name, Count: 1})
		return true
	}
	Walk(c.Head, visit)
	for _, goal := range c.Body {
		Walk(goal, visit)
	}
	return out
}
