package lexer

import (
	"log/slog"
	"unicode/utf8"

	"lox/internal/diag"
	"lox/internal/token"
)

// Lexer turns source text into tokens. It never fails: malformed input is reported
// to the diag.Reporter and scanning resumes at the next character.
type Lexer struct {
	input   string
	start   int // byte offset of the first rune of the lexeme being scanned
	current int // byte offset of the next rune to read
	line    int

	tokens   []token.Token
	reporter diag.Reporter
}

func New(input string, reporter diag.Reporter) *Lexer {
	if reporter == nil {
		reporter = diag.Discard
	}
	return &Lexer{
		input:    input,
		line:     1,
		reporter: reporter,
	}
}

// ScanTokens scans the whole input. The result always ends with a single EOF token
// carrying the final line number.
func (l *Lexer) ScanTokens() []token.Token {
	for !l.isAtEnd() {
		l.start = l.current
		l.scanToken()
	}

	l.tokens = append(l.tokens, token.Token{Type: token.EOF, Line: l.line})

	slog.Debug("scanned source",
		slog.Int("tokens", len(l.tokens)),
		slog.Int("lines", l.line))

	return l.tokens
}

func (l *Lexer) isAtEnd() bool {
	return l.current >= len(l.input)
}

// readChar consumes one UTF-8 rune and returns it
func (l *Lexer) readChar() rune {
	r, size := utf8.DecodeRuneInString(l.input[l.current:])
	l.current += size
	return r
}

// peekChar returns the next rune without advancing; returns 0 at EOF
func (l *Lexer) peekChar() rune {
	if l.isAtEnd() {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.current:])
	return r
}

// peekTwoChars returns the rune after next without advancing; returns 0 if unavailable
func (l *Lexer) peekTwoChars() rune {
	if l.isAtEnd() {
		return 0
	}
	_, size := utf8.DecodeRuneInString(l.input[l.current:])
	idx := l.current + size
	if idx >= len(l.input) {
		return 0
	}
	r2, _ := utf8.DecodeRuneInString(l.input[idx:])
	return r2
}

// match consumes the next rune only if it is the expected one
func (l *Lexer) match(expected rune) bool {
	if l.peekChar() != expected || l.isAtEnd() {
		return false
	}
	l.readChar()
	return true
}

func (l *Lexer) lexeme() string {
	return l.input[l.start:l.current]
}

func (l *Lexer) addToken(t token.TokenType) {
	l.addLiteralToken(t, nil)
}

func (l *Lexer) addLiteralToken(t token.TokenType, literal any) {
	l.tokens = append(l.tokens, token.Token{
		Type:    t,
		Lexeme:  l.lexeme(),
		Literal: literal,
		Line:    l.line,
	})
}

// handleCompoundToken emits t1 when the next rune is ch1, otherwise t
func (l *Lexer) handleCompoundToken(t token.TokenType, ch1 rune, t1 token.TokenType) {
	if l.match(ch1) {
		l.addToken(t1)
		return
	}
	l.addToken(t)
}

func (l *Lexer) error(message string) {
	l.reporter.Report(l.line, "", message)
}

func isAlpha(ch rune) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_'
}

func isDigit(ch rune) bool {
	return ch >= '0' && ch <= '9'
}

func isAlphaNumeric(ch rune) bool {
	return isAlpha(ch) || isDigit(ch)
}
