package lexer

import (
	"slate/internal/token"
	"strings"
	"unicode"
	"unicode/utf8"
)

type Lexer struct {
	input        string
	position     int  // current byte position in input (points to start of current rune)
	readPosition int  // next byte position in input (start of next rune)
	ch           rune // current rune under examination; 0 means EOF
}

func New(input string) *Lexer {
	l := &Lexer{input: input}
	l.readChar()
	return l
}

func (l *Lexer) NextToken() token.Token {
	l.skipWhitespace()

	start := l.position
	switch l.ch {
	case 0:
		return token.Token{Type: token.EOF, Literal: "", Position: start}
	case '(', '[':
		tok := newToken(token.LPAREN, l.ch, start)
		l.readChar()
		return tok
	case ')', ']':
		tok := newToken(token.RPAREN, l.ch, start)
		l.readChar()
		return tok
	case '\'':
		l.readChar()
		return token.Token{Type: token.QUOTE, Literal: "'", Position: start}
	case '`':
		l.readChar()
		return token.Token{Type: token.QUASIQUOTE, Literal: "`", Position: start}
	case ',':
		l.readChar()
		if l.ch == '@' {
			l.readChar()
			return token.Token{Type: token.UNQUOTE_SPLICING, Literal: ",@", Position: start}
		}
		return token.Token{Type: token.UNQUOTE, Literal: ",", Position: start}
	case '"':
		lit, ok := l.readString()
		if !ok {
			return token.Token{Type: token.ILLEGAL, Literal: "unterminated string", Position: start}
		}
		return token.Token{Type: token.STRING, Literal: lit, Position: start}
	}

	atom := l.readAtom()
	switch {
	case atom == ".":
		return token.Token{Type: token.DOT, Literal: atom, Position: start}
	case atom == "#t" || atom == "#true" || atom == "#f" || atom == "#false":
		return token.Token{Type: token.BOOLEAN, Literal: atom, Position: start}
	case isNumber(atom):
		return token.Token{Type: token.NUMBER, Literal: atom, Position: start}
	case strings.HasPrefix(atom, "#"):
		return token.Token{Type: token.ILLEGAL, Literal: atom, Position: start}
	}
	return token.Token{Type: token.SYMBOL, Literal: atom, Position: start}
}

func (l *Lexer) skipWhitespace() {
	for {
		switch {
		case l.ch == ';':
			l.skipToLineEnd()
		case l.ch != 0 && unicode.IsSpace(l.ch):
			l.readChar()
		default:
			return
		}
	}
}

func (l *Lexer) skipToLineEnd() {
	for l.ch != '\n' && l.ch != 0 {
		l.readChar()
	}
}

// readChar advances by one UTF-8 rune, updating byte positions
func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0
		l.position = l.readPosition
		return
	}
	r, size := utf8.DecodeRuneInString(l.input[l.readPosition:])
	l.ch = r
	l.position = l.readPosition
	l.readPosition += size
}

// readAtom consumes runes up to the next delimiter
func (l *Lexer) readAtom() string {
	start := l.position
	for l.ch != 0 && !isDelimiter(l.ch) {
		l.readChar()
	}
	return l.input[start:l.position]
}

// readString consumes a string literal including both quotes and returns
// the unescaped body
func (l *Lexer) readString() (string, bool) {
	var out strings.Builder
	l.readChar() // opening quote
	for {
		switch l.ch {
		case 0:
			return out.String(), false
		case '"':
			l.readChar()
			return out.String(), true
		case '\\':
			l.readChar()
			switch l.ch {
			case 'n':
				out.WriteRune('\n')
			case 't':
				out.WriteRune('\t')
			case 'r':
				out.WriteRune('\r')
			case '0':
				out.WriteRune(0)
			case 0:
				return out.String(), false
			default:
				out.WriteRune(l.ch)
			}
		default:
			out.WriteRune(l.ch)
		}
		l.readChar()
	}
}

func isDelimiter(ch rune) bool {
	switch ch {
	case '(', ')', '[', ']', '"', ';', '\'', '`', ',':
		return true
	}
	return unicode.IsSpace(ch)
}

// isNumber accepts integers and decimal reals with an optional sign and
// exponent, plus the scheme spellings of the non-finite reals.
func isNumber(s string) bool {
	switch s {
	case "+inf.0", "-inf.0", "+nan.0", "-nan.0":
		return true
	}
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	digits := 0
	for i < len(s) && isDigit(s[i]) {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && isDigit(s[i]) {
			i++
			digits++
		}
	}
	if digits == 0 {
		return false
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		i++
		if i < len(s) && (s[i] == '+' || s[i] == '-') {
			i++
		}
		exp := 0
		for i < len(s) && isDigit(s[i]) {
			i++
			exp++
		}
		if exp == 0 {
			return false
		}
	}
	return i == len(s)
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

func newToken(tokenType token.TokenType, ch rune, position int) token.Token {
	return token.Token{Type: tokenType, Literal: string(ch), Position: position}
}
