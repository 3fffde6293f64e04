package horn

import (
	"strconv"
	"unicode"
	"unicode/utf8"
)

const tokenEOF TokenType = "EOF"

type lexer struct {
	input string

	offset int
	width  int

	line   int
	column int

	ch rune

	// type of the last emitted token, used to tell subtraction from a
	// negative literal
	prev TokenType
}

// Tokenize converts source text into tokens, skipping whitespace and
// comments. It stops at the first invalid input and returns a *LexError.
func Tokenize(source string) ([]Token, error) {
	l := newLexer(source)
	var tokens []Token
	for {
		tok, err := l.NextToken()
		if err != nil {
			return nil, err
		}
		if tok.Type == tokenEOF {
			return tokens, nil
		}
		tokens = append(tokens, tok)
	}
}

func newLexer(input string) *lexer {
	l := &lexer{input: input, line: 1, column: 0}
	l.readRune()
	return l
}

func (l *lexer) readRune() {
	if l.offset >= len(l.input) {
		l.width = 0
		l.ch = 0
		return
	}

	r, w := utf8.DecodeRuneInString(l.input[l.offset:])
	l.width = w
	l.offset += w

	if l.ch == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}

	l.ch = r
}

func (l *lexer) peekRune() rune {
	if l.offset >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.offset:])
	return r
}

func (l *lexer) atEOF() bool {
	return l.width == 0
}

func (l *lexer) currentOffset() int {
	return l.offset - l.width
}

func (l *lexer) pos() Position {
	return Position{Line: l.line, Column: l.column}
}

// NextToken returns the next token, or a token of type EOF once the input
// is exhausted.
func (l *lexer) NextToken() (Token, error) {
	if err := l.skipWhitespaceAndComments(); err != nil {
		return Token{}, err
	}

	pos := l.pos()
	if l.atEOF() {
		return Token{Type: tokenEOF, Pos: pos}, nil
	}

	var tok Token
	switch l.ch {
	case '(':
		tok = l.punct(TokenLParen)
	case ')':
		tok = l.punct(TokenRParen)
	case '[':
		tok = l.punct(TokenLBracket)
	case ']':
		tok = l.punct(TokenRBracket)
	case ',':
		tok = l.punct(TokenComma)
	case '.':
		tok = l.punct(TokenDot)
	case ';':
		tok = l.punct(TokenAnd)
	case '+':
		tok = l.punct(TokenPlus)
	case '*':
		tok = l.punct(TokenMultiply)
	case '-':
		if isDigit(l.peekRune()) && !endsOperand(l.prev) {
			var err error
			if tok, err = l.readNumber(); err != nil {
				return Token{}, err
			}
		} else {
			tok = l.punct(TokenMinus)
		}
	case ':':
		if l.peekRune() != '-' {
			return Token{}, l.errorf(UnexpectedChar, pos)
		}
		l.readRune()
		l.readRune()
		tok = Token{Type: TokenIf, Pos: pos}
	default:
		switch {
		case isNameStart(l.ch):
			tok = l.readName()
		case isDigit(l.ch):
			var err error
			if tok, err = l.readNumber(); err != nil {
				return Token{}, err
			}
		default:
			return Token{}, l.errorf(UnexpectedChar, pos)
		}
	}

	l.prev = tok.Type
	return tok, nil
}

func (l *lexer) punct(tt TokenType) Token {
	tok := Token{Type: tt, Pos: l.pos()}
	l.readRune()
	return tok
}

func (l *lexer) errorf(kind LexErrorKind, pos Position) *LexError {
	return &LexError{Kind: kind, Char: l.ch, Pos: pos, source: l.input}
}

func (l *lexer) skipWhitespaceAndComments() error {
	for !l.atEOF() {
		switch {
		case l.ch == ' ', l.ch == '\t', l.ch == '\n', l.ch == '\r':
			l.readRune()
		case l.ch == '%':
			l.skipLineComment()
		case l.ch == '/' && l.peekRune() == '*':
			if err := l.skipBlockComment(); err != nil {
				return err
			}
		case unicode.IsSpace(l.ch):
			l.readRune()
		default:
			return nil
		}
	}
	return nil
}

func (l *lexer) skipLineComment() {
	for !l.atEOF() && l.ch != '\n' {
		l.readRune()
	}
}

// skipBlockComment consumes a /* */ comment. Comments nest.
func (l *lexer) skipBlockComment() error {
	start := l.pos()
	l.readRune()
	l.readRune()

	depth := 1
	for depth > 0 {
		if l.atEOF() {
			return &LexError{Kind: UnterminatedComment, Pos: start, source: l.input}
		}
		switch {
		case l.ch == '*' && l.peekRune() == '/':
			l.readRune()
			l.readRune()
			depth--
		case l.ch == '/' && l.peekRune() == '*':
			l.readRune()
			l.readRune()
			depth++
		default:
			l.readRune()
		}
	}
	return nil
}

func (l *lexer) readName() Token {
	pos := l.pos()
	start := l.currentOffset()
	for isNameRune(l.peekRune()) {
		l.readRune()
	}
	literal := l.input[start:l.offset]
	l.readRune()

	switch {
	case literal == "is":
		return Token{Type: TokenIs, Pos: pos}
	case isVariableStart(rune(literal[0])):
		return Token{Type: TokenVariable, Text: literal, Pos: pos}
	default:
		return Token{Type: TokenAtom, Text: literal, Pos: pos}
	}
}

// readNumber scans an optionally negative decimal integer. The current rune
// is either the first digit or a '-' directly followed by one.
func (l *lexer) readNumber() (Token, error) {
	pos := l.pos()
	start := l.currentOffset()
	if l.ch == '-' {
		l.readRune()
	}
	for isDigit(l.peekRune()) {
		l.readRune()
	}
	literal := l.input[start:l.offset]
	l.readRune()

	n, err := strconv.ParseInt(literal, 10, 64)
	if err != nil {
		return Token{}, &LexError{Kind: InvalidInteger, Text: literal, Pos: pos, source: l.input}
	}
	return Token{Type: TokenNumber, Int: n, Pos: pos}, nil
}

// endsOperand reports whether a '-' following a token of type tt is the
// subtraction operator rather than the sign of a literal.
func endsOperand(tt TokenType) bool {
	switch tt {
	case TokenAtom, TokenVariable, TokenNumber, TokenRParen, TokenRBracket:
		return true
	}
	return false
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isLower(r rune) bool {
	return r >= 'a' && r <= 'z'
}

func isUpper(r rune) bool {
	return r >= 'A' && r <= 'Z'
}

func isNameStart(r rune) bool {
	return isLower(r) || isUpper(r) || r == '_'
}

func isNameRune(r rune) bool {
	return isNameStart(r) || isDigit(r)
}

func isVariableStart(r rune) bool {
	return isUpper(r) || r == '_'
}

// IsValidAtom reports whether name lexes as a single plain atom.
func IsValidAtom(name string) bool {
	if name == "" || name == "is" || !isLower(rune(name[0])) {
		return false
	}
	for _, r := range name {
		if !isNameRune(r) {
			return false
		}
	}
	return true
}

// IsVariableName reports whether name lexes as a single variable token.
func IsVariableName(name string) bool {
	if name == "" || !isVariableStart(rune(name[0])) {
		return false
	}
	for _, r := range name {
		if !isNameRune(r) {
			return false
		}
	}
	return true
}
