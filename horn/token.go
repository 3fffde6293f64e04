package horn

import (
	"fmt"
	"strconv"
)

// TokenType identifies the lexical category of a token.
type TokenType string

const (
	TokenAtom     TokenType = "ATOM"
	TokenVariable TokenType = "VARIABLE"
	TokenNumber   TokenType = "NUMBER"

	TokenLParen   TokenType = "("
	TokenRParen   TokenType = ")"
	TokenLBracket TokenType = "["
	TokenRBracket TokenType = "]"
	TokenComma    TokenType = ","
	TokenDot      TokenType = "."
	TokenIf       TokenType = ":-"
	TokenAnd      TokenType = ";"

	TokenPlus     TokenType = "+"
	TokenMinus    TokenType = "-"
	TokenMultiply TokenType = "*"
	TokenIs       TokenType = "IS"
)

// Token captures lexical information for the parser. Text holds the name of
// atoms and variables; Int holds the value of numbers.
type Token struct {
	Type TokenType
	Text string
	Int  int64
	Pos  Position
}

// Position identifies a 1-based line and column in the source text.
type Position struct {
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Equal reports whether t and o have the same tag and payload. Positions
// are ignored.
func (t Token) Equal(o Token) bool {
	return t.Type == o.Type && t.Text == o.Text && t.Int == o.Int
}

func (t Token) String() string {
	switch t.Type {
	case TokenAtom, TokenVariable:
		return t.Text
	case TokenNumber:
		return strconv.FormatInt(t.Int, 10)
	case TokenIs:
		return "is"
	default:
		return string(t.Type)
	}
}

// AtomToken returns an atom token with the given name.
func AtomToken(name string) Token { return Token{Type: TokenAtom, Text: name} }

// VariableToken returns a variable token with the given name.
func VariableToken(name string) Token { return Token{Type: TokenVariable, Text: name} }

// NumberToken returns an integer token.
func NumberToken(n int64) Token { return Token{Type: TokenNumber, Int: n} }

// PunctToken returns a payload-free token of the given type.
func PunctToken(tt TokenType) Token { return Token{Type: tt} }

// TokensEqual reports whether both sequences hold structurally equal tokens.
func TokensEqual(a, b []Token) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

func tokenLabel(tok Token) string {
	switch tok.Type {
	case TokenAtom:
		return fmt.Sprintf("atom %q", tok.Text)
	case TokenVariable:
		return fmt.Sprintf("variable %q", tok.Text)
	case TokenNumber:
		return fmt.Sprintf("number %d", tok.Int)
	case TokenIs:
		return "'is'"
	case "":
		return "end of input"
	default:
		return fmt.Sprintf("%q", string(tok.Type))
	}
}
