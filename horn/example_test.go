package horn_test

import (
	"errors"
	"fmt"

	"github.com/hornlang/horn/horn"
)

func ExampleTokenize() {
	tokens, err := horn.Tokenize("a, % comment\n b.")
	if err != nil {
		panic(err)
	}
	for _, tok := range tokens {
		fmt.Printf("%s %q\n", tok.Type, tok.String())
	}
	// Output:
	// ATOM "a"
	// , ","
	// ATOM "b"
	// . "."
}

func ExampleParse() {
	clauses, err := horn.Parse("grandparent(X, Z) :- parent(X, Y), parent(Y, Z).")
	if err != nil {
		panic(err)
	}
	c := clauses[0]
	ind, _ := horn.IndicatorOf(c.Head)
	fmt.Println("predicate:", ind)
	for _, goal := range c.Body {
		fmt.Println("goal:", goal)
	}
	// Output:
	// predicate: grandparent/2
	// goal: parent(X, Y)
	// goal: parent(Y, Z)
}

func ExampleParse_error() {
	_, err := horn.Parse("foo(bar")
	fmt.Println(errors.Is(err, horn.ErrUnexpectedEndOfInput))
	fmt.Println(err)
	// Output:
	// true
	// parse error at 1:8: unexpected end of input
	//   --> line 1, column 8
	//  1 | foo(bar
	//   |        ^
}

func ExampleParseTermString() {
	term, err := horn.ParseTermString("X is A + B * 2")
	if err != nil {
		panic(err)
	}
	s := term.(*horn.Structure)
	fmt.Println(s.Functor, s.Arity)
	fmt.Println(s.Args[1].(*horn.Structure).Functor)
	fmt.Println(term)
	// Output:
	// is 2
	// +
	// X is A + B * 2
}
