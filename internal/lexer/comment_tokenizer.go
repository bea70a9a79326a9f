package lexer

func (l *Lexer) skipToLineEnd() {
	for l.peekChar() != '\n' && !l.isAtEnd() {
		l.readChar()
	}
}

// skipBlockComment consumes a block comment whose opening "/*" has already been read.
// Nested /* ... */ pairs are tracked with a depth counter.
func (l *Lexer) skipBlockComment() {
	depth := 1
	for !l.isAtEnd() {
		switch {
		case l.peekChar() == '/' && l.peekTwoChars() == '*':
			l.readChar()
			l.readChar()
			depth++
		case l.peekChar() == '*' && l.peekTwoChars() == '/':
			l.readChar()
			l.readChar()
			depth--
			if depth == 0 {
				return
			}
		default:
			if l.readChar() == '\n' {
				l.line++
			}
		}
	}
	l.error("Unterminated multiline comment block.")
}
