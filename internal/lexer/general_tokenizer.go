package lexer

import (
	"errors"
	"strconv"

	"lox/internal/token"
)

func (l *Lexer) scanToken() {
	ch := l.readChar()

	switch ch {
	case '(':
		l.addToken(token.LEFT_PAREN)
	case ')':
		l.addToken(token.RIGHT_PAREN)
	case '{':
		l.addToken(token.LEFT_BRACE)
	case '}':
		l.addToken(token.RIGHT_BRACE)
	case ',':
		l.addToken(token.COMMA)
	case ':':
		l.addToken(token.COLON)
	case '.':
		l.addToken(token.DOT)
	case '-':
		l.addToken(token.MINUS)
	case '+':
		l.addToken(token.PLUS)
	case '?':
		l.addToken(token.QUESTION)
	case ';':
		l.addToken(token.SEMICOLON)
	case '*':
		l.addToken(token.STAR)
	case '!':
		l.handleCompoundToken(token.BANG, '=', token.BANG_EQUAL)
	case '=':
		l.handleCompoundToken(token.EQUAL, '=', token.EQUAL_EQUAL)
	case '<':
		l.handleCompoundToken(token.LESS, '=', token.LESS_EQUAL)
	case '>':
		l.handleCompoundToken(token.GREATER, '=', token.GREATER_EQUAL)
	case '/':
		switch {
		case l.match('/'):
			l.skipToLineEnd()
		case l.match('*'):
			l.skipBlockComment()
		default:
			l.addToken(token.SLASH)
		}
	case ' ', '\r', '\t':
		// skip
	case '\n':
		l.line++
	case '"':
		l.readString()
	default:
		switch {
		case isDigit(ch):
			l.readNumber()
		case isAlpha(ch):
			l.readIdentifier()
		default:
			l.error("Unexpected character.")
		}
	}
}

func (l *Lexer) readIdentifier() {
	for isAlphaNumeric(l.peekChar()) {
		l.readChar()
	}
	l.addToken(token.LookupIdent(l.lexeme()))
}

// readNumber reads digits with an optional fraction. The '.' is only consumed when a
// digit follows it so that `1.foo` stays NUMBER DOT IDENTIFIER.
func (l *Lexer) readNumber() {
	for isDigit(l.peekChar()) {
		l.readChar()
	}
	if l.peekChar() == '.' && isDigit(l.peekTwoChars()) {
		l.readChar() // consume '.'
		for isDigit(l.peekChar()) {
			l.readChar()
		}
	}

	value, err := strconv.ParseFloat(l.lexeme(), 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		l.error("Invalid number literal.")
		return
	}
	l.addLiteralToken(token.NUMBER, value)
}
