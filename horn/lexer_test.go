package horn

import (
	"errors"
	"testing"
)

var (
	lparen   = PunctToken(TokenLParen)
	rparen   = PunctToken(TokenRParen)
	lbracket = PunctToken(TokenLBracket)
	rbracket = PunctToken(TokenRBracket)
	comma    = PunctToken(TokenComma)
	dot      = PunctToken(TokenDot)
	ifTok    = PunctToken(TokenIf)
	andTok   = PunctToken(TokenAnd)
	plus     = PunctToken(TokenPlus)
	minus    = PunctToken(TokenMinus)
	times    = PunctToken(TokenMultiply)
	isTok    = PunctToken(TokenIs)
)

func mustTokenize(t *testing.T, source string) []Token {
	t.Helper()
	tokens, err := Tokenize(source)
	if err != nil {
		t.Fatalf("tokenize %q: %v", source, err)
	}
	return tokens
}

func assertTokens(t *testing.T, got, want []Token) {
	t.Helper()
	if !TokensEqual(got, want) {
		t.Fatalf("unexpected tokens\n got: %v\nwant: %v", got, want)
	}
}

func TestTokenizeAtomsAndVariables(t *testing.T) {
	got := mustTokenize(t, "likes(X, food).")
	assertTokens(t, got, []Token{
		AtomToken("likes"), lparen, VariableToken("X"), comma, AtomToken("food"), rparen, dot,
	})
}

func TestTokenizeSkipsLineComments(t *testing.T) {
	got := mustTokenize(t, "a, % comment\n b.")
	assertTokens(t, got, []Token{AtomToken("a"), comma, AtomToken("b"), dot})

	got = mustTokenize(t, `
            % A comment
            % Another comment
            a, % Inline comment
            b.
        `)
	assertTokens(t, got, []Token{AtomToken("a"), comma, AtomToken("b"), dot})
}

func TestTokenizeCommentAtEndOfInput(t *testing.T) {
	got := mustTokenize(t, "a. % trailing")
	assertTokens(t, got, []Token{AtomToken("a"), dot})
}

func TestTokenizeNestedBlockComments(t *testing.T) {
	got := mustTokenize(t, "/* outer /* inner */ still outer */ foo. /**/ bar.")
	assertTokens(t, got, []Token{AtomToken("foo"), dot, AtomToken("bar"), dot})
}

func TestTokenizeUnterminatedBlockComment(t *testing.T) {
	_, err := Tokenize("a. /* open /* nested */ never closed")
	if err == nil {
		t.Fatalf("expected unterminated comment error")
	}
	if !errors.Is(err, ErrUnterminatedComment) {
		t.Fatalf("expected ErrUnterminatedComment, got %v", err)
	}
	var lexErr *LexError
	if !errors.As(err, &lexErr) {
		t.Fatalf("expected *LexError, got %T", err)
	}
	if lexErr.Pos != (Position{Line: 1, Column: 4}) {
		t.Fatalf("expected error at comment start, got %v", lexErr.Pos)
	}
}

func TestTokenizeIsOperatorAndArithmetic(t *testing.T) {
	got := mustTokenize(t, `
            % Let's test whether an is expression is parsable
            plus(A, B, C) :- C is A + B.
        `)
	assertTokens(t, got, []Token{
		AtomToken("plus"), lparen,
		VariableToken("A"), comma, VariableToken("B"), comma, VariableToken("C"),
		rparen, ifTok,
		VariableToken("C"), isTok, VariableToken("A"), plus, VariableToken("B"),
		dot,
	})
}

func TestTokenizeIsOnlyAsWholeName(t *testing.T) {
	got := mustTokenize(t, "is island is_a Is isis")
	assertTokens(t, got, []Token{
		isTok, AtomToken("island"), AtomToken("is_a"), VariableToken("Is"), AtomToken("isis"),
	})
}

func TestTokenizeVariablesStartWithUppercaseOrUnderscore(t *testing.T) {
	got := mustTokenize(t, "_ _foo Foo1 foo_Bar9")
	assertTokens(t, got, []Token{
		VariableToken("_"), VariableToken("_foo"), VariableToken("Foo1"), AtomToken("foo_Bar9"),
	})
}

func TestTokenizeExpression(t *testing.T) {
	got := mustTokenize(t, "1 + 1 - 2 * 3")
	assertTokens(t, got, []Token{
		NumberToken(1), plus, NumberToken(1), minus, NumberToken(2), times, NumberToken(3),
	})
}

func TestTokenizeMinus(t *testing.T) {
	cases := []struct {
		source string
		want   []Token
	}{
		{"-", []Token{minus}},
		{"*", []Token{times}},
		{"-5", []Token{NumberToken(-5)}},
		{"- 5", []Token{minus, NumberToken(5)}},
		{"3-5", []Token{NumberToken(3), minus, NumberToken(5)}},
		{"X-1", []Token{VariableToken("X"), minus, NumberToken(1)}},
		{"f(-1)", []Token{AtomToken("f"), lparen, NumberToken(-1), rparen}},
		{"[-1]", []Token{lbracket, NumberToken(-1), rbracket}},
		{"X is -2", []Token{VariableToken("X"), isTok, NumberToken(-2)}},
		{"X - -2", []Token{VariableToken("X"), minus, NumberToken(-2)}},
		{"(1)-2", []Token{lparen, NumberToken(1), rparen, minus, NumberToken(2)}},
	}
	for _, tc := range cases {
		got := mustTokenize(t, tc.source)
		if !TokensEqual(got, tc.want) {
			t.Fatalf("%q: got %v want %v", tc.source, got, tc.want)
		}
	}
}

func TestTokenizeSeparators(t *testing.T) {
	got := mustTokenize(t, "a :- b; c, d.")
	assertTokens(t, got, []Token{
		AtomToken("a"), ifTok, AtomToken("b"), andTok, AtomToken("c"), comma, AtomToken("d"), dot,
	})
}

func TestTokenizeIntegerOverflow(t *testing.T) {
	_, err := Tokenize("big(99999999999999999999).")
	if !errors.Is(err, ErrInvalidInteger) {
		t.Fatalf("expected ErrInvalidInteger, got %v", err)
	}
	var lexErr *LexError
	if !errors.As(err, &lexErr) {
		t.Fatalf("expected *LexError, got %T", err)
	}
	if lexErr.Text != "99999999999999999999" {
		t.Fatalf("unexpected offending text %q", lexErr.Text)
	}
	if lexErr.Pos != (Position{Line: 1, Column: 5}) {
		t.Fatalf("unexpected position %v", lexErr.Pos)
	}
}

func TestTokenizeMinInt64(t *testing.T) {
	got := mustTokenize(t, "-9223372036854775808")
	assertTokens(t, got, []Token{NumberToken(-9223372036854775808)})
}

func TestTokenizeUnexpectedCharacters(t *testing.T) {
	cases := []struct {
		source string
		char   rune
		pos    Position
	}{
		{":", ':', Position{Line: 1, Column: 1}},
		{"a :b.", ':', Position{Line: 1, Column: 3}},
		{"foo(@)", '@', Position{Line: 1, Column: 5}},
		{"a /b", '/', Position{Line: 1, Column: 3}},
		{"a.\n  ü.", 'ü', Position{Line: 2, Column: 3}},
	}
	for _, tc := range cases {
		_, err := Tokenize(tc.source)
		var lexErr *LexError
		if !errors.As(err, &lexErr) {
			t.Fatalf("%q: expected *LexError, got %v", tc.source, err)
		}
		if lexErr.Kind != UnexpectedChar || lexErr.Char != tc.char {
			t.Fatalf("%q: unexpected error %v", tc.source, lexErr)
		}
		if lexErr.Pos != tc.pos {
			t.Fatalf("%q: expected position %v, got %v", tc.source, tc.pos, lexErr.Pos)
		}
	}
}

func TestTokenizeSkipsOtherUnicodeWhitespace(t *testing.T) {
	got := mustTokenize(t, "\u00a0a\u2003.")
	assertTokens(t, got, []Token{AtomToken("a"), dot})
}

func TestTokenizeEmptyInput(t *testing.T) {
	got := mustTokenize(t, "  \n\t% nothing here\n")
	if len(got) != 0 {
		t.Fatalf("expected no tokens, got %v", got)
	}
}

func TestTokenPositions(t *testing.T) {
	got := mustTokenize(t, "foo(\n  Bar) :- baz.")
	want := []Position{
		{Line: 1, Column: 1},
		{Line: 1, Column: 4},
		{Line: 2, Column: 3},
		{Line: 2, Column: 6},
		{Line: 2, Column: 8},
		{Line: 2, Column: 11},
		{Line: 2, Column: 14},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d tokens, got %v", len(want), got)
	}
	for i := range want {
		if got[i].Pos != want[i] {
			t.Fatalf("token %d (%v): expected %v, got %v", i, got[i], want[i], got[i].Pos)
		}
	}
}

func TestTokenEqualIgnoresPosition(t *testing.T) {
	a := Token{Type: TokenAtom, Text: "x", Pos: Position{Line: 1, Column: 1}}
	b := Token{Type: TokenAtom, Text: "x", Pos: Position{Line: 9, Column: 9}}
	if !a.Equal(b) {
		t.Fatalf("expected tokens to be equal")
	}
	if a.Equal(VariableToken("x")) {
		t.Fatalf("expected atom and variable to differ")
	}
	if NumberToken(1).Equal(NumberToken(2)) {
		t.Fatalf("expected numbers to differ")
	}
}

func TestIsValidAtom(t *testing.T) {
	valid := []string{"example_atom", "atom_with_underscore", "a1", "x"}
	invalid := []string{"AtomWithUppercase", "atom with spaces", "123_invalid_start", "", "_x", "is", "héllo"}
	for _, name := range valid {
		if !IsValidAtom(name) {
			t.Fatalf("expected %q to be a valid atom", name)
		}
	}
	for _, name := range invalid {
		if IsValidAtom(name) {
			t.Fatalf("expected %q to be rejected", name)
		}
	}
}

func TestIsVariableName(t *testing.T) {
	for _, name := range []string{"X", "_", "_tmp", "Who2", "Long_Name"} {
		if !IsVariableName(name) {
			t.Fatalf("expected %q to be a variable name", name)
		}
	}
	for _, name := range []string{"", "x", "is", "Ärger", "X-1", "9X"} {
		if IsVariableName(name) {
			t.Fatalf("expected %q to be rejected", name)
		}
	}
}
