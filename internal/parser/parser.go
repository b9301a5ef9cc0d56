package parser

import (
	"fmt"
	"math"
	"slate/internal/lexer"
	"slate/internal/object"
	"slate/internal/token"
	"strconv"
	"strings"
)

var (
	quoteSym           = object.InternSymbol("quote")
	quasiquoteSym      = object.InternSymbol("quasiquote")
	unquoteSym         = object.InternSymbol("unquote")
	unquoteSplicingSym = object.InternSymbol("unquote-splicing")
)

// Parser turns source text into data. Code is data here: the result of a
// parse is the list of top-level forms, ready for evaluation.
type Parser struct {
	l      *lexer.Lexer
	errors []string

	curToken  token.Token
	peekToken token.Token
}

func New(l *lexer.Lexer) *Parser {
	p := &Parser{
		l:      l,
		errors: []string{},
	}
	// Read two tokens, so curToken and peekToken are both set
	p.nextToken()
	p.nextToken()
	return p
}

func (p *Parser) Errors() []string {
	return p.errors
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

func (p *Parser) addError(format string, a ...interface{}) {
	p.errors = append(p.errors, fmt.Sprintf(format, a...))
}

// ParseProgram reads every top-level form. Parsing stops at the first error.
func (p *Parser) ParseProgram() []object.Object {
	var forms []object.Object
	for p.curToken.Type != token.EOF {
		form := p.parseForm()
		if len(p.errors) > 0 {
			return forms
		}
		forms = append(forms, form)
		p.nextToken()
	}
	return forms
}

func (p *Parser) parseForm() object.Object {
	switch p.curToken.Type {
	case token.LPAREN:
		return p.parseList()
	case token.RPAREN:
		p.addError("unexpected close paren")
		return nil
	case token.DOT:
		p.addError("unexpected dot")
		return nil
	case token.QUOTE:
		return p.parseAbbreviation(quoteSym)
	case token.QUASIQUOTE:
		return p.parseAbbreviation(quasiquoteSym)
	case token.UNQUOTE:
		return p.parseAbbreviation(unquoteSym)
	case token.UNQUOTE_SPLICING:
		return p.parseAbbreviation(unquoteSplicingSym)
	case token.NUMBER:
		return p.parseNumber()
	case token.STRING:
		return &object.String{Value: p.curToken.Literal}
	case token.BOOLEAN:
		return object.NativeBool(strings.HasPrefix(p.curToken.Literal, "#t"))
	case token.SYMBOL:
		return object.InternSymbol(p.curToken.Literal)
	case token.EOF:
		p.addError("unexpected end of input")
		return nil
	case token.ILLEGAL:
		if strings.HasPrefix(p.curToken.Literal, "#") {
			p.addError("unknown sharp constant %s", p.curToken.Literal)
		} else {
			p.addError("%s", p.curToken.Literal)
		}
		return nil
	}
	p.addError("unexpected token %q", p.curToken.Literal)
	return nil
}

var closers = map[string]string{"(": ")", "[": "]"}

// parseList is entered on '(' or '[' and leaves curToken on the matching
// ')' or ']'.
func (p *Parser) parseList() object.Object {
	var items []object.Object
	var tail object.Object = object.NIL
	closer := closers[p.curToken.Literal]

	p.nextToken()
	for p.curToken.Type != token.RPAREN {
		switch p.curToken.Type {
		case token.EOF:
			p.addError("missing close paren")
			return nil
		case token.DOT:
			if len(items) == 0 {
				p.addError("unexpected dot")
				return nil
			}
			p.nextToken()
			tail = p.parseForm()
			if len(p.errors) > 0 {
				return nil
			}
			p.nextToken()
			if p.curToken.Type != token.RPAREN {
				p.addError("expected close paren after dotted tail")
				return nil
			}
			continue
		}
		item := p.parseForm()
		if len(p.errors) > 0 {
			return nil
		}
		items = append(items, item)
		p.nextToken()
	}
	if p.curToken.Literal != closer {
		p.addError("mismatched close paren")
		return nil
	}

	result := tail
	for i := len(items) - 1; i >= 0; i-- {
		result = object.Cons(items[i], result)
	}
	return result
}

func (p *Parser) parseAbbreviation(sym *object.Symbol) object.Object {
	p.nextToken()
	form := p.parseForm()
	if len(p.errors) > 0 {
		return nil
	}
	return object.List(sym, form)
}

func (p *Parser) parseNumber() object.Object {
	lit := p.curToken.Literal
	switch lit {
	case "+inf.0":
		return &object.Real{Value: math.Inf(1)}
	case "-inf.0":
		return &object.Real{Value: math.Inf(-1)}
	case "+nan.0", "-nan.0":
		return &object.Real{Value: math.NaN()}
	}
	if !strings.ContainsAny(lit, ".eE") {
		if n, err := strconv.ParseInt(lit, 10, 64); err == nil {
			return &object.Integer{Value: n}
		}
	}
	f, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		p.addError("bad number %q", lit)
		return nil
	}
	return &object.Real{Value: f}
}
