// Package args validates the arguments of native bindings against a typed
// descriptor list in one pass.
package args

import (
	"fmt"
	"slate/internal/object"
)

type Kind int

const (
	Any Kind = iota
	Float
	Int
	String
	Symbol
	ForeignKind
)

// Param describes one positional argument. Type is only used by
// ForeignKind.
type Param struct {
	Name string
	Kind Kind
	Type *object.ForeignType
}

func Foreign(name string, t *object.ForeignType) Param {
	return Param{Name: name, Kind: ForeignKind, Type: t}
}

// Expected is the type name used in wrong-type-arg messages.
func (p Param) Expected() string {
	switch p.Kind {
	case Float:
		return "number"
	case Int:
		return "integer"
	case String:
		return "string"
	case Symbol:
		return "symbol"
	case ForeignKind:
		if p.Type != nil {
			return p.Type.Name
		}
		return "foreign value"
	}
	return "value"
}

func (p Param) accepts(obj object.Object) bool {
	switch p.Kind {
	case Float:
		return object.IsNumber(obj)
	case Int:
		_, ok := obj.(*object.Integer)
		return ok
	case String:
		_, ok := obj.(*object.String)
		return ok
	case Symbol:
		_, ok := obj.(*object.Symbol)
		return ok
	case ForeignKind:
		return object.IsForeign(obj, p.Type)
	}
	return obj != object.UNDEFINED
}

// Values holds a validated argument list. Accessors assume the index was
// described by a Param of the matching kind.
type Values struct {
	items []object.Object
}

// Parse checks args against params. Missing arguments read as Undefined,
// which no kind accepts, so a short list fails at the first missing
// position. The first mismatch is returned as a wrong-type-arg error.
// Arguments beyond len(params) are ignored.
func Parse(caller string, params []Param, args []object.Object) (Values, *object.Error) {
	items := make([]object.Object, len(params))
	for i, p := range params {
		var arg object.Object = object.UNDEFINED
		if i < len(args) {
			arg = args[i]
		}
		if !p.accepts(arg) {
			return Values{}, object.WrongTypeArg(caller, i+1, arg, p.Expected())
		}
		items[i] = arg
	}
	return Values{items: items}, nil
}

func (v Values) Len() int { return len(v.items) }

func (v Values) Object(i int) object.Object { return v.items[i] }

func (v Values) Float(i int) float64 {
	f, _ := object.ToFloat(v.items[i])
	return f
}

func (v Values) Int(i int) int64 {
	return v.items[i].(*object.Integer).Value
}

func (v Values) String(i int) string {
	return v.items[i].(*object.String).Value
}

func (v Values) Symbol(i int) *object.Symbol {
	return v.items[i].(*object.Symbol)
}

func (v Values) Handle(i int) *object.ForeignValue {
	return v.items[i].(*object.ForeignValue)
}

// Payload returns the native record behind a foreign argument.
func (v Values) Payload(i int) any {
	return v.Handle(i).Payload
}

// Format compiles a compact descriptor string: f float, i integer,
// s string, y symbol, o any value, v a foreign value of the next type in
// types.
func Format(format string, types ...*object.ForeignType) ([]Param, error) {
	params := make([]Param, 0, len(format))
	next := 0
	for i, c := range format {
		name := fmt.Sprintf("arg%d", i+1)
		switch c {
		case 'f':
			params = append(params, Param{Name: name, Kind: Float})
		case 'i':
			params = append(params, Param{Name: name, Kind: Int})
		case 's':
			params = append(params, Param{Name: name, Kind: String})
		case 'y':
			params = append(params, Param{Name: name, Kind: Symbol})
		case 'o':
			params = append(params, Param{Name: name, Kind: Any})
		case 'v':
			if next >= len(types) {
				return nil, fmt.Errorf("args: format %q: token %q at %d has no foreign type", format, c, i)
			}
			params = append(params, Foreign(name, types[next]))
			next++
		default:
			return nil, fmt.Errorf("args: format %q: unknown token %q at %d", format, c, i)
		}
	}
	return params, nil
}

// MustFormat is Format for descriptor strings fixed at compile time.
func MustFormat(format string, types ...*object.ForeignType) []Param {
	params, err := Format(format, types...)
	if err != nil {
		panic(err)
	}
	return params
}
