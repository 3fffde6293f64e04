package horn

import (
	"errors"
	"fmt"
	"strings"
)

// LexErrorKind classifies tokenizer failures.
type LexErrorKind int

const (
	UnexpectedChar LexErrorKind = iota + 1
	InvalidInteger
	UnterminatedComment
)

func (k LexErrorKind) String() string {
	switch k {
	case UnexpectedChar:
		return "unexpected character"
	case InvalidInteger:
		return "invalid integer"
	case UnterminatedComment:
		return "unterminated comment"
	default:
		return "lex error"
	}
}

// ParseErrorKind classifies parser failures.
type ParseErrorKind int

const (
	LexFailure ParseErrorKind = iota + 1
	UnexpectedToken
	UnexpectedEndOfInput
	InvalidToken
)

func (k ParseErrorKind) String() string {
	switch k {
	case LexFailure:
		return "lex failure"
	case UnexpectedToken:
		return "unexpected token"
	case UnexpectedEndOfInput:
		return "unexpected end of input"
	case InvalidToken:
		return "invalid token"
	default:
		return "parse error"
	}
}

// Sentinels matched by errors.Is against *LexError and *ParseError values.
var (
	ErrUnexpectedChar       = errors.New("unexpected character")
	ErrInvalidInteger       = errors.New("invalid integer")
	ErrUnterminatedComment  = errors.New("unterminated comment")
	ErrUnexpectedToken      = errors.New("unexpected token")
	ErrUnexpectedEndOfInput = errors.New("unexpected end of input")
	ErrInvalidToken         = errors.New("invalid token")
)

// LexError reports the first character sequence the tokenizer rejected.
type LexError struct {
	Kind LexErrorKind
	Char rune   // offending rune for UnexpectedChar
	Text string // offending digits for InvalidInteger
	Pos  Position

	source string
}

func (e *LexError) Error() string {
	var b strings.Builder
	b.WriteString("lex error")
	writeErrorPosition(&b, e.Pos)
	b.WriteString(e.message())
	if frame := formatCodeFrame(e.source, e.Pos); frame != "" {
		b.WriteString("\n")
		b.WriteString(frame)
	}
	return b.String()
}

func (e *LexError) message() string {
	switch e.Kind {
	case UnexpectedChar:
		return fmt.Sprintf("unexpected character %q", e.Char)
	case InvalidInteger:
		return fmt.Sprintf("invalid integer %q", e.Text)
	default:
		return e.Kind.String()
	}
}

func (e *LexError) Is(target error) bool {
	switch target {
	case ErrUnexpectedChar:
		return e.Kind == UnexpectedChar
	case ErrInvalidInteger:
		return e.Kind == InvalidInteger
	case ErrUnterminatedComment:
		return e.Kind == UnterminatedComment
	}
	return false
}

// ParseError reports the first failure of a Parse call. For LexFailure the
// tokenizer error is available through Lex and errors.Unwrap.
type ParseError struct {
	Kind  ParseErrorKind
	Token Token
	Lex   *LexError
	Pos   Position

	expected string
	source   string
}

func (e *ParseError) Error() string {
	if e.Kind == LexFailure && e.Lex != nil {
		return e.Lex.Error()
	}
	var b strings.Builder
	b.WriteString("parse error")
	writeErrorPosition(&b, e.Pos)
	b.WriteString(e.Message())
	if frame := formatCodeFrame(e.source, e.Pos); frame != "" {
		b.WriteString("\n")
		b.WriteString(frame)
	}
	return b.String()
}

// Message is the single-line description without position or code frame.
func (e *ParseError) Message() string {
	switch e.Kind {
	case LexFailure:
		if e.Lex != nil {
			return e.Lex.message()
		}
		return e.Kind.String()
	case UnexpectedToken:
		if e.expected != "" {
			return fmt.Sprintf("expected %s, got %s", e.expected, tokenLabel(e.Token))
		}
		return fmt.Sprintf("unexpected token %s", tokenLabel(e.Token))
	case InvalidToken:
		return fmt.Sprintf("%s cannot start a clause", tokenLabel(e.Token))
	default:
		return e.Kind.String()
	}
}

func (e *ParseError) Unwrap() error {
	if e.Lex == nil {
		return nil
	}
	return e.Lex
}

func (e *ParseError) Is(target error) bool {
	switch target {
	case ErrUnexpectedToken:
		return e.Kind == UnexpectedToken
	case ErrUnexpectedEndOfInput:
		return e.Kind == UnexpectedEndOfInput
	case ErrInvalidToken:
		return e.Kind == InvalidToken
	}
	return false
}

func wrapLexError(err error) error {
	var lexErr *LexError
	if errors.As(err, &lexErr) {
		return &ParseError{Kind: LexFailure, Lex: lexErr, Pos: lexErr.Pos, source: lexErr.source}
	}
	return err
}

// writeErrorPosition writes " at L:C: ", or just ": " for tokens built
// without positions.
func writeErrorPosition(b *strings.Builder, pos Position) {
	if pos == (Position{}) {
		b.WriteString(": ")
		return
	}
	fmt.Fprintf(b, " at %d:%d: ", pos.Line, pos.Column)
}
