package evaluator

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"slate/internal/object"
)

// maxDepth bounds nested non-tail evaluation so runaway recursion becomes a
// script error instead of exhausting the goroutine stack.
const maxDepth = 10000

var ErrUndefined = errors.New("undefined procedure")

// Interpreter owns the global environment, the current ports, the foreign
// type registry and the queue of handles waiting to be reclaimed. It is not
// safe for concurrent use: every method runs on the goroutine that owns it,
// except for the reclaim queue which the garbage collector feeds.
type Interpreter struct {
	Global *object.Environment

	registry *object.Registry
	out      *object.Port
	errPort  *object.Port
	reclaim  *reclaimQueue
	depth    int
}

// New creates an interpreter with the core built-ins bound and the current
// output and error ports writing to stdout and stderr.
func New(stdout, stderr io.Writer) *Interpreter {
	in := &Interpreter{
		Global:   object.NewEnvironment(),
		registry: object.NewRegistry(),
		out:      object.NewWriterPort("stdout", stdout),
		errPort:  object.NewWriterPort("stderr", stderr),
		reclaim:  newReclaimQueue(),
	}
	for name, fn := range getBuiltins() {
		in.Global.Define(name, fn)
	}
	return in
}

// Define binds name in the global environment.
func (in *Interpreter) Define(name string, obj object.Object) {
	in.Global.Define(name, obj)
}

// Lookup resolves name in the global environment.
func (in *Interpreter) Lookup(name string) (object.Object, bool) {
	return in.Global.Get(name)
}

func (in *Interpreter) NewError(tag string, format string, a ...interface{}) *object.Error {
	return object.NewError(tag, format, a...)
}

func (in *Interpreter) Registry() *object.Registry {
	return in.registry
}

func (in *Interpreter) CurrentOutputPort() *object.Port {
	return in.out
}

func (in *Interpreter) CurrentErrorPort() *object.Port {
	return in.errPort
}

// SetCurrentOutputPort installs p and returns the previous port.
func (in *Interpreter) SetCurrentOutputPort(p *object.Port) *object.Port {
	prev := in.out
	in.out = p
	return prev
}

// SetCurrentErrorPort installs p and returns the previous port.
func (in *Interpreter) SetCurrentErrorPort(p *object.Port) *object.Port {
	prev := in.errPort
	in.errPort = p
	return prev
}

// NewForeignValue wraps payload in a handle. When the handle becomes
// unreachable its payload is queued for t.Free, which runs on the next
// Reclaim.
func (in *Interpreter) NewForeignValue(t *object.ForeignType, payload any) *object.ForeignValue {
	fv := &object.ForeignValue{Tag: t, Payload: payload}
	if t != nil && t.Free != nil {
		runtime.AddCleanup(fv, in.reclaim.push, pendingFree{tag: t, payload: payload})
	}
	return fv
}

// Reclaim runs Free for every handle collected since the last call and
// returns how many were released.
func (in *Interpreter) Reclaim() int {
	pending := in.reclaim.drain()
	for _, p := range pending {
		p.tag.Free(p.payload)
	}
	if len(pending) > 0 {
		slog.Debug("reclaimed foreign values", slog.Int("count", len(pending)))
	}
	return len(pending)
}

// EvalString reads and evaluates every form in src in the global
// environment and returns the value of the last one. Evaluation stops at
// the first error, which is also written to the current error port.
func (in *Interpreter) EvalString(src string) object.Object {
	forms, errObj := readForms(src)
	if errObj != nil {
		return in.report(errObj)
	}

	var result object.Object = object.UNSPECIFIED
	for _, form := range forms {
		result = in.Eval(form, in.Global)
		if isError(result) {
			return in.report(result.(*object.Error))
		}
	}
	return result
}

// LoadFile evaluates a script file in the global environment.
func (in *Interpreter) LoadFile(path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	result := in.EvalString(string(src))
	if errObj, ok := result.(*object.Error); ok {
		return fmt.Errorf("load %s: %w", path, errObj)
	}
	slog.Info("loaded script", slog.String("path", path))
	return nil
}

// Call applies the global procedure name to args. ErrUndefined is
// returned when nothing is bound to name. A script error is returned as the
// *object.Error it produced.
func (in *Interpreter) Call(name string, args ...object.Object) (object.Object, error) {
	fn, ok := in.Global.Get(name)
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, ErrUndefined)
	}
	result := in.Apply(fn, args)
	if errObj, ok := result.(*object.Error); ok {
		return result, errObj
	}
	return result, nil
}

func (in *Interpreter) report(err *object.Error) *object.Error {
	if werr := in.errPort.WriteString(";" + err.Message); werr != nil {
		slog.Warn("failed to write error to port",
			slog.String("port", in.errPort.Name),
			slog.Any("error", werr))
	}
	return err
}

func newError(tag string, format string, a ...interface{}) *object.Error {
	return object.NewError(tag, format, a...)
}

func isError(obj object.Object) bool {
	return object.IsError(obj)
}

// Eval evaluates expr in env. Calls in tail position loop rather than
// recurse, so tail-recursive scripts run in constant stack.
func (in *Interpreter) Eval(expr object.Object, env *object.Environment) object.Object {
	in.depth++
	defer func() { in.depth-- }()
	if in.depth > maxDepth {
		return newError(object.UserErrorTag, "stack overflow: nesting deeper than %d", maxDepth)
	}

	for {
		switch node := expr.(type) {
		case *object.Symbol:
			return evalSymbol(node, env)
		case *object.Pair:
			if sym, ok := node.Car.(*object.Symbol); ok {
				if form, ok := specialForms[sym.Name]; ok {
					next, nextEnv, result := form(in, node, env)
					if next == nil {
						return result
					}
					expr, env = next, nextEnv
					continue
				}
			}

			fn := in.Eval(node.Car, env)
			if isError(fn) {
				return fn
			}
			args, errObj := in.evalArgs(node.Cdr, env)
			if errObj != nil {
				return errObj
			}

			proc, ok := fn.(*object.Procedure)
			if !ok {
				return in.Apply(fn, args)
			}
			procEnv, errObj := bindParams(proc, args)
			if errObj != nil {
				return errObj
			}
			if len(proc.Body) == 0 {
				return object.UNSPECIFIED
			}
			for _, form := range proc.Body[:len(proc.Body)-1] {
				if result := in.Eval(form, procEnv); isError(result) {
					return result
				}
			}
			expr, env = proc.Body[len(proc.Body)-1], procEnv
		default:
			return expr
		}
	}
}

func evalSymbol(sym *object.Symbol, env *object.Environment) object.Object {
	if val, ok := env.Get(sym.Name); ok {
		return val
	}
	return newError(object.UnboundVariableTag, "unbound variable %s", sym.Name)
}

func (in *Interpreter) evalArgs(list object.Object, env *object.Environment) ([]object.Object, *object.Error) {
	var args []object.Object
	for {
		switch cell := list.(type) {
		case *object.Nil:
			return args, nil
		case *object.Pair:
			val := in.Eval(cell.Car, env)
			if isError(val) {
				return nil, val.(*object.Error)
			}
			args = append(args, val)
			list = cell.Cdr
		default:
			return nil, newError(object.SyntaxErrorTag, "improper argument list")
		}
	}
}

// Apply calls fn with already evaluated arguments.
func (in *Interpreter) Apply(fn object.Object, args []object.Object) object.Object {
	switch f := fn.(type) {
	case *object.Procedure:
		env, errObj := bindParams(f, args)
		if errObj != nil {
			return errObj
		}
		var result object.Object = object.UNSPECIFIED
		for _, form := range f.Body {
			result = in.Eval(form, env)
			if isError(result) {
				return result
			}
		}
		return result

	case *object.Foreign:
		if len(args) < f.MinArgs {
			return newError(object.WrongArgsNumberTag, "%s: not enough arguments: got %d, need %d", f.Name, len(args), f.MinArgs)
		}
		if f.MaxArgs >= 0 && len(args) > f.MaxArgs {
			return newError(object.WrongArgsNumberTag, "%s: too many arguments: got %d, max %d", f.Name, len(args), f.MaxArgs)
		}
		result := f.Fn(in, args...)
		if result == nil {
			return object.UNSPECIFIED
		}
		return result

	default:
		return newError(object.SyntaxErrorTag, "attempt to apply %s %s", object.Describe(fn), fn.Inspect())
	}
}

func bindParams(proc *object.Procedure, args []object.Object) (*object.Environment, *object.Error) {
	name := proc.Name
	if name == "" {
		name = "lambda"
	}
	if len(args) < len(proc.Params) {
		return nil, newError(object.WrongArgsNumberTag, "%s: not enough arguments: got %d, need %d", name, len(args), len(proc.Params))
	}
	if proc.Rest == nil && len(args) > len(proc.Params) {
		return nil, newError(object.WrongArgsNumberTag, "%s: too many arguments: got %d, max %d", name, len(args), len(proc.Params))
	}

	env := object.NewEnclosedEnvironment(proc.Env)
	for i, param := range proc.Params {
		env.Bindings[param.Name] = args[i]
	}
	if proc.Rest != nil {
		env.Bindings[proc.Rest.Name] = object.List(args[len(proc.Params):]...)
	}
	return env, nil
}
