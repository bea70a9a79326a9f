package token

import (
	"fmt"
	"strings"
)

type TokenType string

const (
	EOF = "EOF"

	// Identifiers + literals
	IDENTIFIER = "IDENTIFIER" // add, foobar, x, y, ...
	STRING     = "STRING"     // "foobar"
	NUMBER     = "NUMBER"     // 1343456, 3.14

	// Single-character punctuation
	LEFT_PAREN  = "("
	RIGHT_PAREN = ")"
	LEFT_BRACE  = "{"
	RIGHT_BRACE = "}"
	COMMA       = ","
	COLON       = ":"
	DOT         = "."
	MINUS       = "-"
	PLUS        = "+"
	QUESTION    = "?"
	SEMICOLON   = ";"
	SLASH       = "/"
	STAR        = "*"

	// One or two character operators
	BANG          = "!"
	BANG_EQUAL    = "!="
	EQUAL         = "="
	EQUAL_EQUAL   = "=="
	GREATER       = ">"
	GREATER_EQUAL = ">="
	LESS          = "<"
	LESS_EQUAL    = "<="

	// Keywords
	AND    = "AND"
	CLASS  = "CLASS"
	ELSE   = "ELSE"
	FALSE  = "FALSE"
	FUN    = "FUN"
	FOR    = "FOR"
	IF     = "IF"
	NIL    = "NIL"
	OR     = "OR"
	PRINT  = "PRINT"
	RETURN = "RETURN"
	SUPER  = "SUPER"
	THIS   = "THIS"
	TRUE   = "TRUE"
	VAR    = "VAR"
	WHILE  = "WHILE"
	BREAK  = "BREAK"
)

// Token is a classified lexeme. Lexeme is empty only for the synthetic EOF token and
// Literal holds the decoded float64 or string for NUMBER and STRING tokens.
type Token struct {
	Type    TokenType
	Lexeme  string
	Literal any
	Line    int // 1-based source line
}

// Equal reports whether two tokens have the same type, lexeme and literal.
// The line is not part of a token's identity.
func (t Token) Equal(other Token) bool {
	return t.Type == other.Type &&
		t.Lexeme == other.Lexeme &&
		t.Literal == other.Literal
}

func (t Token) String() string {
	parts := []string{string(t.Type)}
	if t.Lexeme != "" {
		parts = append(parts, t.Lexeme)
	}
	switch lit := t.Literal.(type) {
	case string:
		parts = append(parts, fmt.Sprintf("%q", lit))
	case float64:
		parts = append(parts, fmt.Sprintf("%g", lit))
	}
	parts = append(parts, fmt.Sprintf(":%d", t.Line))
	return strings.Join(parts, " ")
}

var keywords = map[string]TokenType{
	// constants
	"nil":   NIL,
	"true":  TRUE,
	"false": FALSE,

	// logic
	"and": AND,
	"or":  OR,

	// declarations
	"var":   VAR,
	"fun":   FUN,
	"class": CLASS,
	"this":  THIS,
	"super": SUPER,

	// flow control
	"if":     IF,
	"else":   ELSE,
	"for":    FOR,
	"while":  WHILE,
	"break":  BREAK,
	"return": RETURN,
	"print":  PRINT,
}

func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENTIFIER
}

// StatementStarts lists the keywords the parser treats as the beginning of a new
// statement when recovering from a syntax error.
var StatementStarts = map[TokenType]bool{
	CLASS:  true,
	FUN:    true,
	VAR:    true,
	FOR:    true,
	IF:     true,
	WHILE:  true,
	PRINT:  true,
	RETURN: true,
}
