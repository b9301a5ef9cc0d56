package evaluator

import (
	"runtime"
	"slate/internal/lexer"
	"slate/internal/object"
	"slate/internal/parser"
	"strconv"
	"strings"
)

func fnStringAppend() *object.Foreign {
	return &object.Foreign{
		Name:    "string-append",
		MaxArgs: -1,
		Fn: func(ctx object.EvaluatorContext, args ...object.Object) object.Object {
			var out strings.Builder
			for i, arg := range args {
				s, ok := arg.(*object.String)
				if !ok {
					return object.WrongTypeArg("string-append", i+1, arg, "string")
				}
				out.WriteString(s.Value)
			}
			return &object.String{Value: out.String()}
		},
	}
}

func fnStringLength() *object.Foreign {
	return &object.Foreign{
		Name:    "string-length",
		MinArgs: 1,
		MaxArgs: 1,
		Fn: func(ctx object.EvaluatorContext, args ...object.Object) object.Object {
			s, ok := args[0].(*object.String)
			if !ok {
				return object.WrongTypeArg("string-length", 1, args[0], "string")
			}
			return &object.Integer{Value: int64(len(s.Value))}
		},
	}
}

func fnSubstring() *object.Foreign {
	return &object.Foreign{
		Name:    "substring",
		MinArgs: 2,
		MaxArgs: 3,
		Fn: func(ctx object.EvaluatorContext, args ...object.Object) object.Object {
			s, ok := args[0].(*object.String)
			if !ok {
				return object.WrongTypeArg("substring", 1, args[0], "string")
			}
			start, ok := args[1].(*object.Integer)
			if !ok {
				return object.WrongTypeArg("substring", 2, args[1], "integer")
			}
			end := int64(len(s.Value))
			if len(args) == 3 {
				e, ok := args[2].(*object.Integer)
				if !ok {
					return object.WrongTypeArg("substring", 3, args[2], "integer")
				}
				end = e.Value
			}
			if start.Value < 0 || end > int64(len(s.Value)) || start.Value > end {
				return newError(object.OutOfRangeTag, "substring: range %d..%d is out of range", start.Value, end)
			}
			return &object.String{Value: s.Value[start.Value:end]}
		},
	}
}

func fnStringEq() *object.Foreign {
	return &object.Foreign{
		Name:    "string=?",
		MinArgs: 1,
		MaxArgs: -1,
		Fn: func(ctx object.EvaluatorContext, args ...object.Object) object.Object {
			first, ok := args[0].(*object.String)
			if !ok {
				return object.WrongTypeArg("string=?", 1, args[0], "string")
			}
			result := true
			for i, arg := range args[1:] {
				s, ok := arg.(*object.String)
				if !ok {
					return object.WrongTypeArg("string=?", i+2, arg, "string")
				}
				result = result && s.Value == first.Value
			}
			return object.NativeBool(result)
		},
	}
}

func fnNumberToString() *object.Foreign {
	return &object.Foreign{
		Name:    "number->string",
		MinArgs: 1,
		MaxArgs: 1,
		Fn: func(ctx object.EvaluatorContext, args ...object.Object) object.Object {
			if !object.IsNumber(args[0]) {
				return object.WrongTypeArg("number->string", 1, args[0], "number")
			}
			return &object.String{Value: args[0].Inspect()}
		},
	}
}

// fnStringToNumber returns #f when the text is not a number.
func fnStringToNumber() *object.Foreign {
	return &object.Foreign{
		Name:    "string->number",
		MinArgs: 1,
		MaxArgs: 1,
		Fn: func(ctx object.EvaluatorContext, args ...object.Object) object.Object {
			s, ok := args[0].(*object.String)
			if !ok {
				return object.WrongTypeArg("string->number", 1, args[0], "string")
			}
			if n, err := strconv.ParseInt(s.Value, 10, 64); err == nil {
				return &object.Integer{Value: n}
			}
			if f, err := strconv.ParseFloat(s.Value, 64); err == nil {
				return &object.Real{Value: f}
			}
			return object.FALSE
		},
	}
}

func fnSymbolToString() *object.Foreign {
	return &object.Foreign{
		Name:    "symbol->string",
		MinArgs: 1,
		MaxArgs: 1,
		Fn: func(ctx object.EvaluatorContext, args ...object.Object) object.Object {
			sym, ok := args[0].(*object.Symbol)
			if !ok {
				return object.WrongTypeArg("symbol->string", 1, args[0], "symbol")
			}
			return &object.String{Value: sym.Name}
		},
	}
}

func fnStringToSymbol() *object.Foreign {
	return &object.Foreign{
		Name:    "string->symbol",
		MinArgs: 1,
		MaxArgs: 1,
		Fn: func(ctx object.EvaluatorContext, args ...object.Object) object.Object {
			s, ok := args[0].(*object.String)
			if !ok {
				return object.WrongTypeArg("string->symbol", 1, args[0], "string")
			}
			return object.InternSymbol(s.Value)
		},
	}
}

// fnObjectToString renders in write form unless the second argument is #f.
func fnObjectToString() *object.Foreign {
	return &object.Foreign{
		Name:    "object->string",
		MinArgs: 1,
		MaxArgs: 2,
		Fn: func(ctx object.EvaluatorContext, args ...object.Object) object.Object {
			if len(args) == 2 && args[1] == object.FALSE {
				return &object.String{Value: object.Display(args[0])}
			}
			return &object.String{Value: args[0].Inspect()}
		},
	}
}

// portArg resolves the optional port argument at pos (0-based).
func portArg(ctx object.EvaluatorContext, caller string, args []object.Object, pos int) (*object.Port, *object.Error) {
	if len(args) <= pos {
		return ctx.CurrentOutputPort(), nil
	}
	p, ok := args[pos].(*object.Port)
	if !ok {
		return nil, object.WrongTypeArg(caller, pos+1, args[pos], "output port")
	}
	return p, nil
}

func writeTo(ctx object.EvaluatorContext, caller string, args []object.Object, pos int, text string) object.Object {
	p, errObj := portArg(ctx, caller, args, pos)
	if errObj != nil {
		return errObj
	}
	if err := p.WriteString(text); err != nil {
		return newError(object.IOErrorTag, "%s: %s", caller, err)
	}
	return object.UNSPECIFIED
}

func fnDisplay() *object.Foreign {
	return &object.Foreign{
		Name:    "display",
		MinArgs: 1,
		MaxArgs: 2,
		Fn: func(ctx object.EvaluatorContext, args ...object.Object) object.Object {
			return writeTo(ctx, "display", args, 1, object.Display(args[0]))
		},
	}
}

func fnWrite() *object.Foreign {
	return &object.Foreign{
		Name:    "write",
		MinArgs: 1,
		MaxArgs: 2,
		Fn: func(ctx object.EvaluatorContext, args ...object.Object) object.Object {
			return writeTo(ctx, "write", args, 1, args[0].Inspect())
		},
	}
}

func fnNewline() *object.Foreign {
	return &object.Foreign{
		Name:    "newline",
		MaxArgs: 1,
		Fn: func(ctx object.EvaluatorContext, args ...object.Object) object.Object {
			return writeTo(ctx, "newline", args, 0, "\n")
		},
	}
}

func fnWriteString() *object.Foreign {
	return &object.Foreign{
		Name:    "write-string",
		MinArgs: 1,
		MaxArgs: 2,
		Fn: func(ctx object.EvaluatorContext, args ...object.Object) object.Object {
			s, ok := args[0].(*object.String)
			if !ok {
				return object.WrongTypeArg("write-string", 1, args[0], "string")
			}
			return writeTo(ctx, "write-string", args, 1, s.Value)
		},
	}
}

func fnCurrentOutputPort() *object.Foreign {
	return &object.Foreign{
		Name: "current-output-port",
		Fn: func(ctx object.EvaluatorContext, args ...object.Object) object.Object {
			return ctx.CurrentOutputPort()
		},
	}
}

func fnCurrentErrorPort() *object.Foreign {
	return &object.Foreign{
		Name: "current-error-port",
		Fn: func(ctx object.EvaluatorContext, args ...object.Object) object.Object {
			return ctx.CurrentErrorPort()
		},
	}
}

// fnError raises a catchable error. A leading symbol becomes the error tag;
// the remaining arguments are displayed to form the message.
func fnError() *object.Foreign {
	return &object.Foreign{
		Name:    "error",
		MaxArgs: -1,
		Fn: func(ctx object.EvaluatorContext, args ...object.Object) object.Object {
			tag := object.UserErrorTag
			if len(args) > 0 {
				if sym, ok := args[0].(*object.Symbol); ok {
					tag = sym.Name
					args = args[1:]
				}
			}
			parts := make([]string, 0, len(args))
			for _, arg := range args {
				parts = append(parts, object.Display(arg))
			}
			msg := strings.Join(parts, " ")
			if msg == "" {
				msg = tag
			}
			return &object.Error{Tag: tag, Message: msg}
		},
	}
}

// fnCatch calls thunk. An error whose tag matches (#t matches every tag)
// is handed to (handler tag message) instead of propagating.
func fnCatch() *object.Foreign {
	return &object.Foreign{
		Name:    "catch",
		MinArgs: 3,
		MaxArgs: 3,
		Fn: func(ctx object.EvaluatorContext, args ...object.Object) object.Object {
			result := ctx.Apply(args[1], nil)
			errObj, ok := result.(*object.Error)
			if !ok {
				return result
			}
			switch tag := args[0].(type) {
			case *object.Boolean:
				if !tag.Value {
					return errObj
				}
			case *object.Symbol:
				if tag.Name != errObj.Tag {
					return errObj
				}
			default:
				return object.WrongTypeArg("catch", 1, args[0], "symbol or #t")
			}
			return ctx.Apply(args[2], []object.Object{
				object.InternSymbol(errObj.Tag),
				&object.String{Value: errObj.Message},
			})
		},
	}
}

func fnEval() *object.Foreign {
	return &object.Foreign{
		Name:    "eval",
		MinArgs: 1,
		MaxArgs: 1,
		Fn: func(ctx object.EvaluatorContext, args ...object.Object) object.Object {
			in := ctx.(*Interpreter)
			return in.Eval(args[0], in.Global)
		},
	}
}

func fnLoad() *object.Foreign {
	return &object.Foreign{
		Name:    "load",
		MinArgs: 1,
		MaxArgs: 1,
		Fn: func(ctx object.EvaluatorContext, args ...object.Object) object.Object {
			path, ok := args[0].(*object.String)
			if !ok {
				return object.WrongTypeArg("load", 1, args[0], "string")
			}
			if err := ctx.(*Interpreter).LoadFile(path.Value); err != nil {
				return newError(object.IOErrorTag, "%s", err)
			}
			return object.UNSPECIFIED
		},
	}
}

// fnGC forces a collection and releases whatever handles it freed. The
// runtime runs cleanups asynchronously, so handles collected by this cycle
// may only be released at the next reclaim.
func fnGC() *object.Foreign {
	return &object.Foreign{
		Name: "gc",
		Fn: func(ctx object.EvaluatorContext, args ...object.Object) object.Object {
			runtime.GC()
			return &object.Integer{Value: int64(ctx.(*Interpreter).Reclaim())}
		},
	}
}

// readForms parses src into data, for callers that need code as data.
func readForms(src string) ([]object.Object, *object.Error) {
	p := parser.New(lexer.New(src))
	forms := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		return nil, newError(object.ReadErrorTag, "%s", strings.Join(errs, "; "))
	}
	return forms, nil
}
