package ast

import (
	"bytes"
	"strconv"
	"strings"

	"lox/internal/object"
	"lox/internal/token"
)

// The base Node interface
type Node interface {
	String() string
}

// Expr is the closed family of expression nodes.
type Expr interface {
	Node
	expressionNode()
}

// Stmt is the closed family of statement nodes.
type Stmt interface {
	Node
	statementNode()
}

// Expressions

type Binary struct {
	Left     Expr
	Operator token.Token
	Right    Expr
}

func (b *Binary) expressionNode() {}
func (b *Binary) String() string {
	return "(" + b.Left.String() + " " + b.Operator.Lexeme + " " + b.Right.String() + ")"
}

// Logical is a short-circuiting `and` / `or`.
type Logical struct {
	Left     Expr
	Operator token.Token
	Right    Expr
}

func (l *Logical) expressionNode() {}
func (l *Logical) String() string {
	return "(" + l.Left.String() + " " + l.Operator.Lexeme + " " + l.Right.String() + ")"
}

type Grouping struct {
	Expression Expr
}

func (g *Grouping) expressionNode() {}
func (g *Grouping) String() string  { return "(group " + g.Expression.String() + ")" }

type Literal struct {
	Value object.Object
}

func (l *Literal) expressionNode() {}
func (l *Literal) String() string {
	if s, ok := l.Value.(*object.String); ok {
		return strconv.Quote(s.Value)
	}
	return l.Value.Inspect()
}

type Unary struct {
	Operator token.Token
	Right    Expr
}

func (u *Unary) expressionNode() {}
func (u *Unary) String() string  { return "(" + u.Operator.Lexeme + u.Right.String() + ")" }

type Ternary struct {
	Token  token.Token // the '?' token
	Clause Expr
	Then   Expr
	Else   Expr
}

func (t *Ternary) expressionNode() {}
func (t *Ternary) String() string {
	return "(" + t.Clause.String() + " ? " + t.Then.String() + " : " + t.Else.String() + ")"
}

type Variable struct {
	Name token.Token
}

func (v *Variable) expressionNode() {}
func (v *Variable) String() string  { return v.Name.Lexeme }

type Assign struct {
	Name  token.Token
	Value Expr
}

func (a *Assign) expressionNode() {}
func (a *Assign) String() string  { return "(" + a.Name.Lexeme + " = " + a.Value.String() + ")" }

// Unknown is the initializer of a `var` declared without one.
type Unknown struct {
	Name token.Token
}

func (u *Unknown) expressionNode() {}
func (u *Unknown) String() string  { return "<unknown>" }

// Statements

type Expression struct {
	Expression Expr
}

func (es *Expression) statementNode() {}
func (es *Expression) String() string { return es.Expression.String() + ";" }

type Print struct {
	Keyword    token.Token
	Expression Expr
}

func (ps *Print) statementNode() {}
func (ps *Print) String() string { return "print " + ps.Expression.String() + ";" }

type Var struct {
	Name        token.Token
	Initializer Expr
}

func (vs *Var) statementNode() {}
func (vs *Var) String() string {
	var out bytes.Buffer

	out.WriteString("var ")
	out.WriteString(vs.Name.Lexeme)

	if _, ok := vs.Initializer.(*Unknown); !ok && vs.Initializer != nil {
		out.WriteString(" = ")
		out.WriteString(vs.Initializer.String())
	}

	out.WriteString(";")

	return out.String()
}

type Block struct {
	Statements []Stmt
}

func (bs *Block) statementNode() {}
func (bs *Block) String() string {
	parts := make([]string, 0, len(bs.Statements))
	for _, s := range bs.Statements {
		parts = append(parts, s.String())
	}
	return "{ " + strings.Join(parts, " ") + " }"
}

type If struct {
	Condition Expr
	Then      Stmt
	Else      Stmt // may be nil
}

func (is *If) statementNode() {}
func (is *If) String() string {
	var out bytes.Buffer

	out.WriteString("if (")
	out.WriteString(is.Condition.String())
	out.WriteString(") ")
	out.WriteString(is.Then.String())

	if is.Else != nil {
		out.WriteString(" else ")
		out.WriteString(is.Else.String())
	}

	return out.String()
}

// While carries a parser-assigned ID that Break statements inside its body refer to.
type While struct {
	ID        int
	Condition Expr
	Body      Stmt
}

func (ws *While) statementNode() {}
func (ws *While) String() string {
	return "while (" + ws.Condition.String() + ") " + ws.Body.String()
}

type Break struct {
	Keyword token.Token
	Loop    int // ID of the innermost enclosing While
}

func (bs *Break) statementNode() {}
func (bs *Break) String() string { return "break;" }
