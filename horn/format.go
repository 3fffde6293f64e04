package horn

import "strings"

func (a *Atom) String() string { return a.Name }

func (v *Variable) String() string { return v.Name }

func (s *Structure) String() string {
	var b strings.Builder
	writeStructure(&b, s)
	return b.String()
}

func (l *List) String() string {
	var b strings.Builder
	b.WriteByte('[')
	writeTerms(&b, l.Elements)
	b.WriteByte(']')
	return b.String()
}

// String renders c as source text that parses back to an equal clause.
func (c Clause) String() string {
	var b strings.Builder
	writeTerm(&b, c.Head, maxOperandPriority)
	if len(c.Body) > 0 {
		b.WriteString(" :- ")
		writeTerms(&b, c.Body)
	}
	b.WriteByte('.')
	return b.String()
}

// FormatClauses renders one clause per line.
func FormatClauses(clauses []Clause) string {
	var b strings.Builder
	for _, c := range clauses {
		b.WriteString(c.String())
		b.WriteByte('\n')
	}
	return b.String()
}

func writeTerms(b *strings.Builder, terms []Term) {
	for i, t := range terms {
		if i > 0 {
			b.WriteString(", ")
		}
		writeTerm(b, t, maxOperandPriority)
	}
}

func writeTerm(b *strings.Builder, t Term, maxPriority int) {
	if termPriority(t) > maxPriority {
		b.WriteByte('(')
		writeTerm(b, t, maxOperandPriority)
		b.WriteByte(')')
		return
	}
	switch t := t.(type) {
	case *Structure:
		writeStructure(b, t)
	case nil:
		b.WriteString("<nil>")
	default:
		b.WriteString(t.String())
	}
}

func writeStructure(b *strings.Builder, s *Structure) {
	if op, ok := operatorByFunctor(s.Functor); ok && s.Arity == 2 {
		left, right := op.argPriorities()
		writeTerm(b, s.Args[0], left)
		b.WriteByte(' ')
		b.WriteString(op.functor)
		b.WriteByte(' ')
		writeTerm(b, s.Args[1], right)
		return
	}
	b.WriteString(s.Functor)
	if s.Arity == 0 {
		b.WriteString("()")
		return
	}
	b.WriteByte('(')
	writeTerms(b, s.Args)
	b.WriteByte(')')
}
