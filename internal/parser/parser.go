package parser

import (
	"fmt"
	"log/slog"

	"lox/internal/ast"
	"lox/internal/diag"
	"lox/internal/object"
	"lox/internal/token"
)

// ParseError is raised inside the parser when a grammar rule cannot be satisfied. It
// has already been reported by the time it is returned.
type ParseError struct {
	Token   token.Token
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("[line %d] Error%s: %s", e.Token.Line, where(e.Token), e.Message)
}

func where(tok token.Token) string {
	if tok.Type == token.EOF {
		return " at end"
	}
	return " at '" + tok.Lexeme + "'"
}

type Parser struct {
	tokens   []token.Token
	current  int // index of the next token to consume
	reporter diag.Reporter

	loops      []int // IDs of the loops whose bodies are being parsed, innermost last
	nextLoopID int
}

func New(tokens []token.Token, reporter diag.Reporter) *Parser {
	if reporter == nil {
		reporter = diag.Discard
	}
	if len(tokens) == 0 || tokens[len(tokens)-1].Type != token.EOF {
		line := 1
		if len(tokens) > 0 {
			line = tokens[len(tokens)-1].Line
		}
		tokens = append(tokens, token.Token{Type: token.EOF, Line: line})
	}
	return &Parser{
		tokens:   tokens,
		reporter: reporter,
	}
}

// Parse parses the whole token stream. Statements containing syntax errors are
// reported, skipped, and parsing resumes at the next statement boundary.
func (p *Parser) Parse() []ast.Stmt {
	statements := []ast.Stmt{}

	for !p.isAtEnd() {
		if stmt := p.declaration(); stmt != nil {
			statements = append(statements, stmt)
		}
	}

	return statements
}

func (p *Parser) declaration() ast.Stmt {
	var stmt ast.Stmt
	var err error

	if p.match(token.VAR) {
		stmt, err = p.varDeclaration()
	} else {
		stmt, err = p.statement()
	}

	if err != nil {
		p.synchronize()
		return nil
	}
	return stmt
}

func (p *Parser) varDeclaration() (ast.Stmt, error) {
	name, err := p.consume(token.IDENTIFIER, "Expected variable name.")
	if err != nil {
		return nil, err
	}

	var initializer ast.Expr = &ast.Unknown{Name: name}
	if p.match(token.EQUAL) {
		if initializer, err = p.expression(); err != nil {
			return nil, err
		}
	}

	if _, err := p.consume(token.SEMICOLON, "Expected ';' after variable declaration."); err != nil {
		return nil, err
	}
	return &ast.Var{Name: name, Initializer: initializer}, nil
}

func (p *Parser) statement() (ast.Stmt, error) {
	switch {
	case p.match(token.IF):
		return p.ifStatement()
	case p.match(token.BREAK):
		return p.breakStatement()
	case p.match(token.PRINT):
		return p.printStatement()
	case p.match(token.WHILE):
		return p.whileStatement()
	case p.match(token.FOR):
		return p.forStatement()
	case p.match(token.LEFT_BRACE):
		statements, err := p.block()
		if err != nil {
			return nil, err
		}
		return &ast.Block{Statements: statements}, nil
	default:
		return p.expressionStatement()
	}
}

func (p *Parser) block() ([]ast.Stmt, error) {
	statements := []ast.Stmt{}

	for !p.check(token.RIGHT_BRACE) && !p.isAtEnd() {
		if stmt := p.declaration(); stmt != nil {
			statements = append(statements, stmt)
		}
	}

	if _, err := p.consume(token.RIGHT_BRACE, "Expected '}' after block."); err != nil {
		return nil, err
	}
	return statements, nil
}

func (p *Parser) ifStatement() (ast.Stmt, error) {
	if _, err := p.consume(token.LEFT_PAREN, "Expected '(' after 'if'."); err != nil {
		return nil, err
	}
	condition, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.RIGHT_PAREN, "Expected ')' after if condition."); err != nil {
		return nil, err
	}

	thenBranch, err := p.statement()
	if err != nil {
		return nil, err
	}

	var elseBranch ast.Stmt
	if p.match(token.ELSE) {
		if elseBranch, err = p.statement(); err != nil {
			return nil, err
		}
	}

	return &ast.If{Condition: condition, Then: thenBranch, Else: elseBranch}, nil
}

func (p *Parser) breakStatement() (ast.Stmt, error) {
	keyword := p.previous()
	if len(p.loops) == 0 {
		return nil, p.errorAt(keyword, "Expected 'break' inside a loop")
	}
	if _, err := p.consume(token.SEMICOLON, "Expected ';' after 'break'."); err != nil {
		return nil, err
	}
	return &ast.Break{Keyword: keyword, Loop: p.loops[len(p.loops)-1]}, nil
}

func (p *Parser) printStatement() (ast.Stmt, error) {
	keyword := p.previous()
	value, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.SEMICOLON, "Expected ';' after value."); err != nil {
		return nil, err
	}
	return &ast.Print{Keyword: keyword, Expression: value}, nil
}

func (p *Parser) expressionStatement() (ast.Stmt, error) {
	expr, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.SEMICOLON, "Expected ';' after expression."); err != nil {
		return nil, err
	}
	return &ast.Expression{Expression: expr}, nil
}

func (p *Parser) whileStatement() (ast.Stmt, error) {
	if _, err := p.consume(token.LEFT_PAREN, "Expected '(' after 'while'."); err != nil {
		return nil, err
	}
	condition, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.RIGHT_PAREN, "Expected ')' after while condition."); err != nil {
		return nil, err
	}

	id, body, err := p.loopBody()
	if err != nil {
		return nil, err
	}
	return &ast.While{ID: id, Condition: condition, Body: body}, nil
}

// forStatement desugars
//
//	for (init; cond; incr) body
//
// into
//
//	{ init; while (cond) { body; incr; } }
func (p *Parser) forStatement() (ast.Stmt, error) {
	if _, err := p.consume(token.LEFT_PAREN, "Expected '(' after 'for'."); err != nil {
		return nil, err
	}

	var initializer ast.Stmt
	var err error
	switch {
	case p.match(token.SEMICOLON):
		initializer = nil
	case p.match(token.VAR):
		initializer, err = p.varDeclaration()
	default:
		initializer, err = p.expressionStatement()
	}
	if err != nil {
		return nil, err
	}

	var condition ast.Expr
	if !p.check(token.SEMICOLON) {
		if condition, err = p.expression(); err != nil {
			return nil, err
		}
	}
	if _, err := p.consume(token.SEMICOLON, "Expected ';' after loop condition."); err != nil {
		return nil, err
	}

	var increment ast.Expr
	if !p.check(token.RIGHT_PAREN) {
		if increment, err = p.expression(); err != nil {
			return nil, err
		}
	}
	if _, err := p.consume(token.RIGHT_PAREN, "Expected ')' after for clauses."); err != nil {
		return nil, err
	}

	id, body, err := p.loopBody()
	if err != nil {
		return nil, err
	}

	if increment != nil {
		body = &ast.Block{Statements: []ast.Stmt{body, &ast.Expression{Expression: increment}}}
	}
	if condition == nil {
		condition = &ast.Literal{Value: object.TRUE}
	}

	var loop ast.Stmt = &ast.While{ID: id, Condition: condition, Body: body}
	if initializer != nil {
		loop = &ast.Block{Statements: []ast.Stmt{initializer, loop}}
	}
	return loop, nil
}

// loopBody parses a loop body with a fresh loop ID on the loop stack so that any
// `break` inside it can record which loop it belongs to.
func (p *Parser) loopBody() (int, ast.Stmt, error) {
	p.nextLoopID++
	id := p.nextLoopID

	p.loops = append(p.loops, id)
	body, err := p.statement()
	p.loops = p.loops[:len(p.loops)-1]

	return id, body, err
}

func (p *Parser) expression() (ast.Expr, error) {
	return p.assignment()
}

// assignment parses the left side as an ordinary expression and only afterwards
// checks, on seeing '=', that it is a valid target.
func (p *Parser) assignment() (ast.Expr, error) {
	expr, err := p.logicOr()
	if err != nil {
		return nil, err
	}

	if p.match(token.EQUAL) {
		equals := p.previous()
		value, err := p.assignment()
		if err != nil {
			return nil, err
		}

		if variable, ok := expr.(*ast.Variable); ok {
			return &ast.Assign{Name: variable.Name, Value: value}, nil
		}
		return nil, p.errorAt(equals, "Invalid assignment target.")
	}

	return expr, nil
}

func (p *Parser) logicOr() (ast.Expr, error) {
	expr, err := p.logicAnd()
	if err != nil {
		return nil, err
	}

	for p.match(token.OR) {
		operator := p.previous()
		right, err := p.logicAnd()
		if err != nil {
			return nil, err
		}
		expr = &ast.Logical{Left: expr, Operator: operator, Right: right}
	}

	return expr, nil
}

func (p *Parser) logicAnd() (ast.Expr, error) {
	expr, err := p.comma()
	if err != nil {
		return nil, err
	}

	for p.match(token.AND) {
		operator := p.previous()
		right, err := p.comma()
		if err != nil {
			return nil, err
		}
		expr = &ast.Logical{Left: expr, Operator: operator, Right: right}
	}

	return expr, nil
}

func (p *Parser) comma() (ast.Expr, error) {
	return p.binary(p.ternary, token.COMMA)
}

func (p *Parser) ternary() (ast.Expr, error) {
	expr, err := p.equality()
	if err != nil {
		return nil, err
	}

	for p.match(token.QUESTION) {
		question := p.previous()
		thenBranch, err := p.equality()
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(token.COLON, "Expected ':' after then branch of ternary."); err != nil {
			return nil, err
		}
		elseBranch, err := p.ternary()
		if err != nil {
			return nil, err
		}
		expr = &ast.Ternary{Token: question, Clause: expr, Then: thenBranch, Else: elseBranch}
	}

	return expr, nil
}

func (p *Parser) equality() (ast.Expr, error) {
	return p.binary(p.comparison, token.BANG_EQUAL, token.EQUAL_EQUAL)
}

func (p *Parser) comparison() (ast.Expr, error) {
	return p.binary(p.term, token.GREATER, token.GREATER_EQUAL, token.LESS, token.LESS_EQUAL)
}

func (p *Parser) term() (ast.Expr, error) {
	return p.binary(p.factor, token.MINUS, token.PLUS)
}

func (p *Parser) factor() (ast.Expr, error) {
	return p.binary(p.unary, token.SLASH, token.STAR)
}

// binary parses a left-associative chain of operand (op operand)*.
func (p *Parser) binary(operand func() (ast.Expr, error), operators ...token.TokenType) (ast.Expr, error) {
	expr, err := operand()
	if err != nil {
		return nil, err
	}

	for p.match(operators...) {
		operator := p.previous()
		right, err := operand()
		if err != nil {
			return nil, err
		}
		expr = &ast.Binary{Left: expr, Operator: operator, Right: right}
	}

	return expr, nil
}

func (p *Parser) unary() (ast.Expr, error) {
	if p.match(token.BANG, token.MINUS) {
		operator := p.previous()
		right, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &ast.Unary{Operator: operator, Right: right}, nil
	}
	return p.primary()
}

func (p *Parser) primary() (ast.Expr, error) {
	switch {
	case p.match(token.FALSE):
		return &ast.Literal{Value: object.FALSE}, nil
	case p.match(token.TRUE):
		return &ast.Literal{Value: object.TRUE}, nil
	case p.match(token.NIL):
		return &ast.Literal{Value: object.NIL}, nil
	case p.match(token.NUMBER):
		value, _ := p.previous().Literal.(float64)
		return &ast.Literal{Value: &object.Number{Value: value}}, nil
	case p.match(token.STRING):
		value, _ := p.previous().Literal.(string)
		return &ast.Literal{Value: &object.String{Value: value}}, nil
	case p.match(token.IDENTIFIER):
		return &ast.Variable{Name: p.previous()}, nil
	case p.match(token.LEFT_PAREN):
		expr, err := p.expression()
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(token.RIGHT_PAREN, "Expected ')' after expression."); err != nil {
			return nil, err
		}
		return &ast.Grouping{Expression: expr}, nil
	}

	return nil, p.errorAt(p.peek(), "Expected expression.")
}

// synchronize discards tokens until just after a ';' or just before a keyword that
// starts a statement.
func (p *Parser) synchronize() {
	from := p.peek()
	p.advance()

	for !p.isAtEnd() {
		if p.previous().Type == token.SEMICOLON {
			break
		}
		if token.StatementStarts[p.peek().Type] {
			break
		}
		p.advance()
	}

	slog.Debug("parser synchronized",
		slog.Int("from-line", from.Line),
		slog.Int("to-line", p.peek().Line))
}

func (p *Parser) match(types ...token.TokenType) bool {
	for _, t := range types {
		if p.check(t) {
			p.advance()
			return true
		}
	}
	return false
}

func (p *Parser) check(t token.TokenType) bool {
	if p.isAtEnd() {
		return false
	}
	return p.peek().Type == t
}

func (p *Parser) consume(t token.TokenType, message string) (token.Token, error) {
	if p.check(t) {
		return p.advance(), nil
	}
	return token.Token{}, p.errorAt(p.peek(), message)
}

func (p *Parser) advance() token.Token {
	if !p.isAtEnd() {
		p.current++
	}
	return p.previous()
}

func (p *Parser) isAtEnd() bool {
	return p.peek().Type == token.EOF
}

func (p *Parser) peek() token.Token {
	return p.tokens[p.current]
}

func (p *Parser) previous() token.Token {
	if p.current == 0 {
		return token.Token{}
	}
	return p.tokens[p.current-1]
}

func (p *Parser) errorAt(tok token.Token, message string) *ParseError {
	p.reporter.Report(tok.Line, where(tok), message)
	return &ParseError{Token: tok, Message: message}
}
