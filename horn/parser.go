package horn

import "log/slog"

// parser holds what diagnostics need; the token stream itself is threaded
// through every method as a slice, and each method returns the remainder it
// did not consume.
type parser struct {
	source string
	end    Position
	trace  *slog.Logger
}

// Parse tokenizes source and parses every clause in it. The first failure
// aborts the whole call and is returned as a *ParseError.
func Parse(source string, opts ...Option) ([]Clause, error) {
	o := newOptions(opts)

	tokens, err := Tokenize(source)
	if err != nil {
		return nil, wrapLexError(err)
	}

	p := &parser{source: source, end: endPosition(source), trace: o.tracer}
	p.traceTokens(tokens)

	var clauses []Clause
	rest := tokens
	for len(rest) > 0 {
		clause, next, err := p.parseClause(rest)
		if err != nil {
			return nil, err
		}
		p.traceClause(clause)
		clauses = append(clauses, clause)
		rest = next
	}
	return clauses, nil
}

// ParseTerm parses one term from the front of tokens and returns it with
// the tokens it did not consume.
func ParseTerm(tokens []Token) (Term, []Token, error) {
	p := &parser{}
	if len(tokens) > 0 {
		p.end = tokens[len(tokens)-1].Pos
	}
	return p.parseTerm(tokens)
}

// ParseTermString parses source as exactly one term.
func ParseTermString(source string) (Term, error) {
	tokens, err := Tokenize(source)
	if err != nil {
		return nil, wrapLexError(err)
	}
	p := &parser{source: source, end: endPosition(source)}
	term, rest, err := p.parseTerm(tokens)
	if err != nil {
		return nil, err
	}
	if len(rest) > 0 {
		return nil, p.unexpected(rest[0], "end of input")
	}
	return term, nil
}

func (p *parser) parseClause(tokens []Token) (Clause, []Token, error) {
	first := tokens[0]
	if !startsTerm(first) {
		return Clause{}, nil, &ParseError{Kind: InvalidToken, Token: first, Pos: first.Pos, source: p.source}
	}

	head, rest, err := p.parseTerm(tokens)
	if err != nil {
		return Clause{}, nil, err
	}

	var body []Term
	if len(rest) > 0 && rest[0].Type == TokenIf {
		body, rest, err = p.parseBody(rest[1:])
		if err != nil {
			return Clause{}, nil, err
		}
	}

	rest, err = p.expectToken(TokenDot, rest)
	if err != nil {
		return Clause{}, nil, err
	}
	return Clause{Head: head, Body: body, Pos: first.Pos}, rest, nil
}

// parseBody parses goals separated by ',' or ';'. A separator that is not
// followed by the start of a term ends the body.
func (p *parser) parseBody(tokens []Token) ([]Term, []Token, error) {
	goal, rest, err := p.parseTerm(tokens)
	if err != nil {
		return nil, nil, err
	}
	body := []Term{goal}

	for len(rest) > 0 && isBodySeparator(rest[0].Type) {
		rest = rest[1:]
		if len(rest) == 0 || !startsTerm(rest[0]) {
			break
		}
		goal, rest, err = p.parseTerm(rest)
		if err != nil {
			return nil, nil, err
		}
		body = append(body, goal)
	}
	return body, rest, nil
}

func (p *parser) parseTerm(tokens []Token) (Term, []Token, error) {
	return p.parseExpression(tokens, maxOperandPriority)
}

// parseExpression parses a primary term followed by infix operators whose
// priority does not exceed maxPriority.
func (p *parser) parseExpression(tokens []Token, maxPriority int) (Term, []Token, error) {
	left, rest, err := p.parsePrimary(tokens)
	if err != nil {
		return nil, nil, err
	}

	leftPriority := 0
	for len(rest) > 0 {
		op, ok := infixOperators[rest[0].Type]
		if !ok || op.priority > maxPriority {
			break
		}
		leftMax, rightMax := op.argPriorities()
		if leftPriority > leftMax {
			break
		}
		var right Term
		right, rest, err = p.parseExpression(rest[1:], rightMax)
		if err != nil {
			return nil, nil, err
		}
		left = NewStructure(op.functor, left, right)
		leftPriority = op.priority
	}
	return left, rest, nil
}

func (p *parser) parsePrimary(tokens []Token) (Term, []Token, error) {
	tok, rest, err := p.expectAnyToken(tokens)
	if err != nil {
		return nil, nil, err
	}

	switch tok.Type {
	case TokenAtom:
		// one token of lookahead decides between an atom and a structure;
		// the lookahead stays in the remainder when it is not '('
		if len(rest) > 0 && rest[0].Type == TokenLParen {
			args, rest, err := p.parseArguments(rest[1:])
			if err != nil {
				return nil, nil, err
			}
			return NewStructure(tok.Text, args...), rest, nil
		}
		return NewAtom(tok.Text), rest, nil
	case TokenVariable:
		return NewVariable(tok.Text), rest, nil
	case TokenNumber:
		return NewNumber(tok.Int), rest, nil
	case TokenLParen:
		term, rest, err := p.parseTerm(rest)
		if err != nil {
			return nil, nil, err
		}
		rest, err = p.expectToken(TokenRParen, rest)
		if err != nil {
			return nil, nil, err
		}
		return term, rest, nil
	case TokenLBracket:
		elements, rest, err := p.parseListElements(rest)
		if err != nil {
			return nil, nil, err
		}
		rest, err = p.expectToken(TokenRBracket, rest)
		if err != nil {
			return nil, nil, err
		}
		return NewList(elements...), rest, nil
	default:
		return nil, nil, p.unexpected(tok, "")
	}
}

// parseArguments parses a non-empty, comma separated argument list and the
// closing parenthesis. Trailing commas are rejected.
func (p *parser) parseArguments(tokens []Token) ([]Term, []Token, error) {
	var args []Term
	rest := tokens
	for {
		arg, next, err := p.parseTerm(rest)
		if err != nil {
			return nil, nil, err
		}
		args = append(args, arg)

		tok, next, err := p.expectAnyToken(next)
		if err != nil {
			return nil, nil, err
		}
		switch tok.Type {
		case TokenRParen:
			return args, next, nil
		case TokenComma:
			rest = next
		default:
			return nil, nil, p.unexpected(tok, `"," or ")"`)
		}
	}
}

// parseListElements parses terms while each is followed by a comma. It stops
// without error at the first token that cannot start a term.
func (p *parser) parseListElements(tokens []Token) ([]Term, []Token, error) {
	var elements []Term
	rest := tokens
	for len(rest) > 0 && startsTerm(rest[0]) {
		el, next, err := p.parseTerm(rest)
		if err != nil {
			return nil, nil, err
		}
		elements = append(elements, el)
		rest = next

		if len(rest) == 0 || rest[0].Type != TokenComma {
			break
		}
		rest = rest[1:]
	}
	return elements, rest, nil
}

func (p *parser) expectToken(tt TokenType, tokens []Token) ([]Token, error) {
	if len(tokens) == 0 {
		return nil, p.endOfInput()
	}
	if tokens[0].Type != tt {
		return nil, p.unexpected(tokens[0], tokenLabel(Token{Type: tt}))
	}
	return tokens[1:], nil
}

func (p *parser) expectAnyToken(tokens []Token) (Token, []Token, error) {
	if len(tokens) == 0 {
		return Token{}, nil, p.endOfInput()
	}
	return tokens[0], tokens[1:], nil
}

func (p *parser) unexpected(tok Token, expected string) *ParseError {
	return &ParseError{Kind: UnexpectedToken, Token: tok, Pos: tok.Pos, expected: expected, source: p.source}
}

func (p *parser) endOfInput() *ParseError {
	return &ParseError{Kind: UnexpectedEndOfInput, Pos: p.end, source: p.source}
}

func startsTerm(tok Token) bool {
	switch tok.Type {
	case TokenAtom, TokenVariable, TokenNumber, TokenLParen, TokenLBracket:
		return true
	}
	return false
}

func isBodySeparator(tt TokenType) bool {
	return tt == TokenComma || tt == TokenAnd
}

// endPosition is the position just past the last rune of source.
func endPosition(source string) Position {
	pos := Position{Line: 1, Column: 1}
	for _, r := range source {
		if r == '\n' {
			pos.Line++
			pos.Column = 1
			continue
		}
		pos.Column++
	}
	return pos
}
