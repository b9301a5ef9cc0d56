package object

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	NIL_OBJ         = "NIL"
	UNSPECIFIED_OBJ = "UNSPECIFIED"
	UNDEFINED_OBJ   = "UNDEFINED"
	EOF_OBJ         = "EOF"
	BOOLEAN_OBJ     = "BOOLEAN"
	INTEGER_OBJ     = "INTEGER"
	REAL_OBJ        = "REAL"
	STRING_OBJ      = "STRING"
	SYMBOL_OBJ      = "SYMBOL"
	PAIR_OBJ        = "PAIR"

	PROCEDURE_OBJ     = "PROCEDURE"
	FOREIGN_OBJ       = "FOREIGN"
	FOREIGN_VALUE_OBJ = "FOREIGN_VALUE"
	ERROR_OBJ         = "ERROR"
	PORT_OBJ          = "PORT"
)

var (
	NIL         = &Nil{}
	UNSPECIFIED = &Unspecified{}
	UNDEFINED   = &Undefined{}
	EOF         = &Eof{}
	TRUE        = &Boolean{Value: true}
	FALSE       = &Boolean{Value: false}
)

// EvaluatorContext is the view of the interpreter handed to native
// functions. It lets a binding raise errors, call back into script code
// and wrap native records as foreign values.
type EvaluatorContext interface {
	NewError(tag string, format string, a ...interface{}) *Error
	Apply(fn Object, args []Object) Object
	NewForeignValue(t *ForeignType, payload any) *ForeignValue
	Registry() *Registry
	CurrentOutputPort() *Port
	CurrentErrorPort() *Port
}

type ForeignFunction func(ctx EvaluatorContext, args ...Object) Object

type ObjectType string

type Object interface {
	Type() ObjectType
	Inspect() string
}

type Nil struct{}

func (n *Nil) Type() ObjectType { return NIL_OBJ }
func (n *Nil) Inspect() string  { return "()" }

type Unspecified struct{}

func (u *Unspecified) Type() ObjectType { return UNSPECIFIED_OBJ }
func (u *Unspecified) Inspect() string  { return "#<unspecified>" }

// Undefined is what reading past the end of an argument list yields.
type Undefined struct{}

func (u *Undefined) Type() ObjectType { return UNDEFINED_OBJ }
func (u *Undefined) Inspect() string  { return "#<undefined>" }

type Eof struct{}

func (e *Eof) Type() ObjectType { return EOF_OBJ }
func (e *Eof) Inspect() string  { return "#<eof>" }

type Boolean struct {
	Value bool
}

func (b *Boolean) Type() ObjectType { return BOOLEAN_OBJ }
func (b *Boolean) Inspect() string {
	if b.Value {
		return "#t"
	}
	return "#f"
}

type Integer struct {
	Value int64
}

func (i *Integer) Type() ObjectType { return INTEGER_OBJ }
func (i *Integer) Inspect() string  { return strconv.FormatInt(i.Value, 10) }

type Real struct {
	Value float64
}

func (r *Real) Type() ObjectType { return REAL_OBJ }
func (r *Real) Inspect() string  { return FormatReal(r.Value) }

// FormatReal renders a float the way the reader accepts it back: always
// with a fractional part or exponent, and with the scheme spellings for
// the non-finite values.
func FormatReal(f float64) string {
	switch {
	case math.IsNaN(f):
		return "+nan.0"
	case math.IsInf(f, 1):
		return "+inf.0"
	case math.IsInf(f, -1):
		return "-inf.0"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}

type String struct {
	Value string
}

func (s *String) Type() ObjectType { return STRING_OBJ }
func (s *String) Inspect() string  { return strconv.Quote(s.Value) }

type Pair struct {
	Car Object
	Cdr Object
}

func (p *Pair) Type() ObjectType { return PAIR_OBJ }
func (p *Pair) Inspect() string  { return writePair(p, false) }

type Procedure struct {
	Name   string
	Params []*Symbol
	Rest   *Symbol
	Body   []Object
	Env    *Environment
}

func (p *Procedure) Type() ObjectType { return PROCEDURE_OBJ }
func (p *Procedure) Inspect() string {
	var out bytes.Buffer
	if p.Name != "" {
		out.WriteString("#<")
		out.WriteString(p.Name)
		out.WriteString(">")
		return out.String()
	}
	params := make([]string, 0, len(p.Params))
	for _, param := range p.Params {
		params = append(params, param.Name)
	}
	out.WriteString("#<lambda (")
	out.WriteString(strings.Join(params, " "))
	if p.Rest != nil {
		if len(params) > 0 {
			out.WriteString(" ")
		}
		out.WriteString(". ")
		out.WriteString(p.Rest.Name)
	}
	out.WriteString(")>")
	return out.String()
}

// Foreign is a native function bound into the environment. MaxArgs < 0
// means variadic. Setter, when present, is what (set! (name obj) v)
// dispatches to.
type Foreign struct {
	Name    string
	MinArgs int
	MaxArgs int
	Fn      ForeignFunction
	Setter  *Foreign
}

func (f *Foreign) Type() ObjectType { return FOREIGN_OBJ }
func (f *Foreign) Inspect() string  { return "#<" + f.Name + ">" }

// ForeignValue is an opaque handle to a native record. Its lifetime is
// managed by the interpreter: once unreachable, the record is handed back
// to Tag.Free on the interpreter goroutine.
type ForeignValue struct {
	Tag     *ForeignType
	Payload any
}

func (fv *ForeignValue) Type() ObjectType { return FOREIGN_VALUE_OBJ }
func (fv *ForeignValue) Inspect() string {
	if fv.Tag != nil && fv.Tag.String != nil {
		return fv.Tag.String(fv.Payload)
	}
	name := "foreign"
	if fv.Tag != nil {
		name = fv.Tag.Name
	}
	return fmt.Sprintf("#<%s %p>", name, fv.Payload)
}

// Error is a catchable script-level error. Wrong-type-arg errors carry the
// caller, the 1-based argument position, the offending value and the
// expected type name.
type Error struct {
	Tag      string
	Message  string
	Caller   string
	Position int
	Irritant Object
	Expected string
}

func (e *Error) Type() ObjectType { return ERROR_OBJ }
func (e *Error) Inspect() string  { return e.Message }

func (e *Error) Error() string { return e.Message }

// Display renders obj the way display does: like Inspect except strings
// are written raw.
func Display(obj Object) string {
	switch o := obj.(type) {
	case *String:
		return o.Value
	case *Pair:
		return writePair(o, true)
	default:
		return obj.Inspect()
	}
}

var quoteAbbrev = map[string]string{
	"quote":            "'",
	"quasiquote":       "`",
	"unquote":          ",",
	"unquote-splicing": ",@",
}

func writePair(p *Pair, display bool) string {
	render := func(o Object) string {
		if display {
			return Display(o)
		}
		return o.Inspect()
	}

	if sym, ok := p.Car.(*Symbol); ok {
		if prefix, ok := quoteAbbrev[sym.Name]; ok {
			if rest, ok := p.Cdr.(*Pair); ok && rest.Cdr == NIL {
				return prefix + render(rest.Car)
			}
		}
	}

	var out bytes.Buffer
	out.WriteString("(")
	var cur Object = p
	first := true
	for {
		switch c := cur.(type) {
		case *Pair:
			if !first {
				out.WriteString(" ")
			}
			out.WriteString(render(c.Car))
			first = false
			cur = c.Cdr
			continue
		case *Nil:
		default:
			out.WriteString(" . ")
			out.WriteString(render(c))
		}
		break
	}
	out.WriteString(")")
	return out.String()
}

func NativeBool(b bool) *Boolean {
	if b {
		return TRUE
	}
	return FALSE
}

func IsTruthy(obj Object) bool {
	return obj != FALSE
}

func IsError(obj Object) bool {
	if obj != nil {
		return obj.Type() == ERROR_OBJ
	}
	return false
}

func IsNumber(obj Object) bool {
	switch obj.(type) {
	case *Integer, *Real:
		return true
	}
	return false
}

// ToFloat converts a numeric object to float64.
func ToFloat(obj Object) (float64, bool) {
	switch n := obj.(type) {
	case *Integer:
		return float64(n.Value), true
	case *Real:
		return n.Value, true
	}
	return 0, false
}

func Cons(car, cdr Object) *Pair {
	return &Pair{Car: car, Cdr: cdr}
}

// List builds a proper list from items.
func List(items ...Object) Object {
	var result Object = NIL
	for i := len(items) - 1; i >= 0; i-- {
		result = Cons(items[i], result)
	}
	return result
}

// ListToSlice flattens a proper list. ok is false for improper lists.
func ListToSlice(obj Object) ([]Object, bool) {
	var items []Object
	for {
		switch o := obj.(type) {
		case *Nil:
			return items, true
		case *Pair:
			items = append(items, o.Car)
			obj = o.Cdr
		default:
			return items, false
		}
	}
}
