package lexer

import (
	"lox/internal/token"
)

// readString reads a string literal whose opening `"` has already been consumed.
// Strings may span lines; there are no escape sequences.
func (l *Lexer) readString() {
	for l.peekChar() != '"' && !l.isAtEnd() {
		if l.peekChar() == '\n' {
			l.line++
		}
		l.readChar()
	}

	if l.isAtEnd() {
		l.error("Unterminated string.")
		return
	}

	l.readChar() // the closing "

	value := l.input[l.start+1 : l.current-1]
	l.addLiteralToken(token.STRING, value)
}
