package token

type TokenType string

const (
	ILLEGAL = "ILLEGAL"
	EOF     = "EOF"

	// Atoms
	SYMBOL  = "SYMBOL"  // car, vec2-x, +
	NUMBER  = "NUMBER"  // 42, -1.5, 1e3
	STRING  = "STRING"  // "foobar"
	BOOLEAN = "BOOLEAN" // #t #f

	// Delimiters
	LPAREN = "("
	RPAREN = ")"
	DOT    = "."

	// Reader abbreviations
	QUOTE            = "'"
	QUASIQUOTE       = "`"
	UNQUOTE          = ","
	UNQUOTE_SPLICING = ",@"
)

type Token struct {
	Type     TokenType
	Literal  string
	Position int // byte offset of the token start
}
