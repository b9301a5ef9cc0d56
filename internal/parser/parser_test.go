package parser

import (
	"slate/internal/lexer"
	"testing"
)

func parse(t *testing.T, input string) ([]string, []string) {
	t.Helper()
	p := New(lexer.New(input))
	forms := p.ParseProgram()
	out := make([]string, 0, len(forms))
	for _, f := range forms {
		out = append(out, f.Inspect())
	}
	return out, p.Errors()
}

func TestParseProgram(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"integer", "42", []string{"42"}},
		{"negative real", "-1.5", []string{"-1.5"}},
		{"exponent", "1e3", []string{"1000.0"}},
		{"string escapes", `"a\nb\"c"`, []string{`"a\nb\"c"`}},
		{"booleans", "#t #f", []string{"#t", "#f"}},
		{"symbols", "+ vec2-x set-vec2-x!", []string{"+", "vec2-x", "set-vec2-x!"}},
		{"call", "(+ 1 2)", []string{"(+ 1 2)"}},
		{"nested", "(define (f x) (* x 2))", []string{"(define (f x) (* x 2))"}},
		{"dotted", "(1 . 2)", []string{"(1 . 2)"}},
		{"quote", "'(a b)", []string{"'(a b)"}},
		{"quasiquote", "`(a ,b ,@c)", []string{"`(a ,b ,@c)"}},
		{"brackets", "[let ((x 1)) x]", []string{"(let ((x 1)) x)"}},
		{"nested mixed brackets", "[a (b [c]) . d]", []string{"(a (b (c)) . d)"}},
		{"comments", "; leading\n(+ 1 2) ; trailing\n3", []string{"(+ 1 2)", "3"}},
		{"multiple forms", "(define x 1)\n(+ x 1)\n", []string{"(define x 1)", "(+ x 1)"}},
		{"whitespace only", " \r\n\t", []string{}},
	}

	for _, tt := range tests {
		got, errs := parse(t, tt.input)
		if len(errs) != 0 {
			t.Errorf("%s: unexpected errors %v", tt.name, errs)
			continue
		}
		if len(got) != len(tt.want) {
			t.Errorf("%s: got %d forms %v, want %v", tt.name, len(got), got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("%s: form %d = %q, want %q", tt.name, i, got[i], tt.want[i])
			}
		}
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"(+ 1", "missing close paren"},
		{")", "unexpected close paren"},
		{`"abc`, "unterminated string"},
		{"( . 1)", "unexpected dot"},
		{"'", "unexpected end of input"},
		{"#q", "unknown sharp constant #q"},
		{"[1 2)", "mismatched close paren"},
		{"(1 2]", "mismatched close paren"},
		{"(a . b]", "mismatched close paren"},
		{"[(1 2]]", "mismatched close paren"},
	}

	for _, tt := range tests {
		_, errs := parse(t, tt.input)
		if len(errs) == 0 {
			t.Errorf("%q: expected error %q, got none", tt.input, tt.want)
			continue
		}
		if errs[0] != tt.want {
			t.Errorf("%q: error = %q, want %q", tt.input, errs[0], tt.want)
		}
	}
}
