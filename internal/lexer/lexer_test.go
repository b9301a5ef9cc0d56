package lexer

import (
	"slate/internal/token"
	"testing"
)

func TestNextToken(t *testing.T) {
	input := `(define (f x) ; doubles
  (* x 2.5))
'(a . b) [1 -2 +3e2]
` + "`(,x ,@xs)" + `
"a\"b\n" #t #false vec2-x +inf.0 1e #q`

	tests := []struct {
		expectedType    token.TokenType
		expectedLiteral string
	}{
		{token.LPAREN, "("},
		{token.SYMBOL, "define"},
		{token.LPAREN, "("},
		{token.SYMBOL, "f"},
		{token.SYMBOL, "x"},
		{token.RPAREN, ")"},
		{token.LPAREN, "("},
		{token.SYMBOL, "*"},
		{token.SYMBOL, "x"},
		{token.NUMBER, "2.5"},
		{token.RPAREN, ")"},
		{token.RPAREN, ")"},

		{token.QUOTE, "'"},
		{token.LPAREN, "("},
		{token.SYMBOL, "a"},
		{token.DOT, "."},
		{token.SYMBOL, "b"},
		{token.RPAREN, ")"},
		{token.LPAREN, "["},
		{token.NUMBER, "1"},
		{token.NUMBER, "-2"},
		{token.NUMBER, "+3e2"},
		{token.RPAREN, "]"},

		{token.QUASIQUOTE, "`"},
		{token.LPAREN, "("},
		{token.UNQUOTE, ","},
		{token.SYMBOL, "x"},
		{token.UNQUOTE_SPLICING, ",@"},
		{token.SYMBOL, "xs"},
		{token.RPAREN, ")"},

		{token.STRING, "a\"b\n"},
		{token.BOOLEAN, "#t"},
		{token.BOOLEAN, "#false"},
		{token.SYMBOL, "vec2-x"},
		{token.NUMBER, "+inf.0"},
		{token.SYMBOL, "1e"},
		{token.ILLEGAL, "#q"},
		{token.EOF, ""},
	}

	l := New(input)
	for i, tt := range tests {
		tok := l.NextToken()
		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%q, got=%q (%q)", i, tt.expectedType, tok.Type, tok.Literal)
		}
		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - literal wrong. expected=%q, got=%q", i, tt.expectedLiteral, tok.Literal)
		}
	}
}

func TestTokenPositions(t *testing.T) {
	l := New("(é  x)")
	want := []int{0, 1, 5, 6}
	for i, pos := range want {
		if tok := l.NextToken(); tok.Position != pos {
			t.Errorf("token %d (%q) at %d, want %d", i, tok.Literal, tok.Position, pos)
		}
	}
}

func TestUnterminatedString(t *testing.T) {
	tok := New(`"abc`).NextToken()
	if tok.Type != token.ILLEGAL {
		t.Fatalf("expected ILLEGAL token, got %q: %q", tok.Type, tok.Literal)
	}
}
