package evaluator

import (
	"slate/internal/object"
)

// specialForm evaluates a form whose arguments are not evaluated up front.
// A non-nil next expression is evaluated by the caller in nextEnv, which is
// how tail positions avoid growing the Go stack.
type specialForm func(in *Interpreter, form *object.Pair, env *object.Environment) (next object.Object, nextEnv *object.Environment, result object.Object)

var specialForms map[string]specialForm

var (
	elseSym            = object.InternSymbol("else")
	arrowSym           = object.InternSymbol("=>")
	unquoteSym         = object.InternSymbol("unquote")
	unquoteSplicingSym = object.InternSymbol("unquote-splicing")
)

func init() {
	specialForms = map[string]specialForm{
		"quote":      evalQuote,
		"quasiquote": evalQuasiquote,
		"if":         evalIf,
		"define":     evalDefine,
		"set!":       evalSet,
		"lambda":     evalLambda,
		"let":        evalLet,
		"let*":       evalLetStar,
		"letrec":     evalLetrec,
		"letrec*":    evalLetrec,
		"begin":      evalBegin,
		"and":        evalAnd,
		"or":         evalOr,
		"cond":       evalCond,
		"when":       evalWhen,
		"unless":     evalUnless,
	}
}

func done(result object.Object) (object.Object, *object.Environment, object.Object) {
	return nil, nil, result
}

func syntaxError(form *object.Pair) *object.Error {
	return newError(object.SyntaxErrorTag, "%s: bad syntax in %s", form.Car.Inspect(), form.Inspect())
}

// formArgs returns the operands of form, which must be a proper list.
func formArgs(form *object.Pair) ([]object.Object, bool) {
	return object.ListToSlice(form.Cdr)
}

// evalBody evaluates all but the last form and hands the last one back for
// evaluation in tail position.
func (in *Interpreter) evalBody(body []object.Object, env *object.Environment) (object.Object, *object.Environment, object.Object) {
	if len(body) == 0 {
		return done(object.UNSPECIFIED)
	}
	for _, form := range body[:len(body)-1] {
		if result := in.Eval(form, env); isError(result) {
			return done(result)
		}
	}
	return body[len(body)-1], env, nil
}

func evalQuote(in *Interpreter, form *object.Pair, env *object.Environment) (object.Object, *object.Environment, object.Object) {
	args, ok := formArgs(form)
	if !ok || len(args) != 1 {
		return done(syntaxError(form))
	}
	return done(args[0])
}

func evalQuasiquote(in *Interpreter, form *object.Pair, env *object.Environment) (object.Object, *object.Environment, object.Object) {
	args, ok := formArgs(form)
	if !ok || len(args) != 1 {
		return done(syntaxError(form))
	}
	return done(in.quasi(args[0], env))
}

func (in *Interpreter) quasi(tmpl object.Object, env *object.Environment) object.Object {
	pair, ok := tmpl.(*object.Pair)
	if !ok {
		return tmpl
	}
	if pair.Car == unquoteSym {
		args, ok := object.ListToSlice(pair.Cdr)
		if !ok || len(args) != 1 {
			return syntaxError(pair)
		}
		return in.Eval(args[0], env)
	}

	rest := in.quasi(pair.Cdr, env)
	if isError(rest) {
		return rest
	}

	if inner, ok := pair.Car.(*object.Pair); ok && inner.Car == unquoteSplicingSym {
		args, ok := object.ListToSlice(inner.Cdr)
		if !ok || len(args) != 1 {
			return syntaxError(inner)
		}
		spliced := in.Eval(args[0], env)
		if isError(spliced) {
			return spliced
		}
		items, ok := object.ListToSlice(spliced)
		if !ok {
			return object.WrongTypeArg("unquote-splicing", 1, spliced, "list")
		}
		result := rest
		for i := len(items) - 1; i >= 0; i-- {
			result = object.Cons(items[i], result)
		}
		return result
	}

	car := in.quasi(pair.Car, env)
	if isError(car) {
		return car
	}
	return object.Cons(car, rest)
}

func evalIf(in *Interpreter, form *object.Pair, env *object.Environment) (object.Object, *object.Environment, object.Object) {
	args, ok := formArgs(form)
	if !ok || len(args) < 2 || len(args) > 3 {
		return done(syntaxError(form))
	}
	test := in.Eval(args[0], env)
	if isError(test) {
		return done(test)
	}
	if object.IsTruthy(test) {
		return args[1], env, nil
	}
	if len(args) == 3 {
		return args[2], env, nil
	}
	return done(object.UNSPECIFIED)
}

func evalDefine(in *Interpreter, form *object.Pair, env *object.Environment) (object.Object, *object.Environment, object.Object) {
	args, ok := formArgs(form)
	if !ok || len(args) < 1 {
		return done(syntaxError(form))
	}

	switch target := args[0].(type) {
	case *object.Symbol:
		if len(args) != 2 {
			return done(syntaxError(form))
		}
		val := in.Eval(args[1], env)
		if isError(val) {
			return done(val)
		}
		if proc, ok := val.(*object.Procedure); ok && proc.Name == "" {
			proc.Name = target.Name
		}
		return done(env.Define(target.Name, val))

	case *object.Pair:
		name, ok := target.Car.(*object.Symbol)
		if !ok {
			return done(syntaxError(form))
		}
		proc, errObj := makeProcedure(name.Name, target.Cdr, args[1:], env)
		if errObj != nil {
			return done(errObj)
		}
		return done(env.Define(name.Name, proc))
	}
	return done(syntaxError(form))
}

// evalSet handles both (set! name v) and the generalized
// (set! (accessor obj ...) v), which calls accessor's setter with the
// accessor arguments followed by v.
func evalSet(in *Interpreter, form *object.Pair, env *object.Environment) (object.Object, *object.Environment, object.Object) {
	args, ok := formArgs(form)
	if !ok || len(args) != 2 {
		return done(syntaxError(form))
	}

	switch target := args[0].(type) {
	case *object.Symbol:
		val := in.Eval(args[1], env)
		if isError(val) {
			return done(val)
		}
		if _, err := env.Assign(target.Name, val); err != nil {
			return done(newError(object.UnboundVariableTag, "set!: %s", err))
		}
		return done(val)

	case *object.Pair:
		accessor := in.Eval(target.Car, env)
		if isError(accessor) {
			return done(accessor)
		}
		fn, ok := accessor.(*object.Foreign)
		if !ok || fn.Setter == nil {
			return done(newError(object.SyntaxErrorTag, "set!: %s has no setter", accessor.Inspect()))
		}
		setterArgs, errObj := in.evalArgs(target.Cdr, env)
		if errObj != nil {
			return done(errObj)
		}
		val := in.Eval(args[1], env)
		if isError(val) {
			return done(val)
		}
		return done(in.Apply(fn.Setter, append(setterArgs, val)))
	}
	return done(syntaxError(form))
}

func evalLambda(in *Interpreter, form *object.Pair, env *object.Environment) (object.Object, *object.Environment, object.Object) {
	rest, ok := form.Cdr.(*object.Pair)
	if !ok {
		return done(syntaxError(form))
	}
	body, ok := object.ListToSlice(rest.Cdr)
	if !ok {
		return done(syntaxError(form))
	}
	proc, errObj := makeProcedure("", rest.Car, body, env)
	if errObj != nil {
		return done(errObj)
	}
	return done(proc)
}

func makeProcedure(name string, params object.Object, body []object.Object, env *object.Environment) (*object.Procedure, *object.Error) {
	proc := &object.Procedure{Name: name, Body: body, Env: env}
	for {
		switch p := params.(type) {
		case *object.Nil:
			return proc, nil
		case *object.Symbol:
			proc.Rest = p
			return proc, nil
		case *object.Pair:
			sym, ok := p.Car.(*object.Symbol)
			if !ok {
				return nil, newError(object.SyntaxErrorTag, "lambda: parameter %s is not a symbol", p.Car.Inspect())
			}
			proc.Params = append(proc.Params, sym)
			params = p.Cdr
		default:
			return nil, newError(object.SyntaxErrorTag, "lambda: bad parameter list %s", params.Inspect())
		}
	}
}

// parseBindings splits ((name init) ...) into names and init forms.
func parseBindings(form *object.Pair, bindings object.Object) ([]*object.Symbol, []object.Object, *object.Error) {
	items, ok := object.ListToSlice(bindings)
	if !ok {
		return nil, nil, syntaxError(form)
	}
	names := make([]*object.Symbol, 0, len(items))
	inits := make([]object.Object, 0, len(items))
	for _, item := range items {
		parts, ok := object.ListToSlice(item)
		if !ok || len(parts) < 1 || len(parts) > 2 {
			return nil, nil, syntaxError(form)
		}
		sym, ok := parts[0].(*object.Symbol)
		if !ok {
			return nil, nil, syntaxError(form)
		}
		names = append(names, sym)
		if len(parts) == 2 {
			inits = append(inits, parts[1])
		} else {
			inits = append(inits, object.UNSPECIFIED)
		}
	}
	return names, inits, nil
}

func evalLet(in *Interpreter, form *object.Pair, env *object.Environment) (object.Object, *object.Environment, object.Object) {
	args, ok := formArgs(form)
	if !ok || len(args) < 1 {
		return done(syntaxError(form))
	}

	if name, ok := args[0].(*object.Symbol); ok {
		return in.evalNamedLet(form, name, args[1:], env)
	}

	names, inits, errObj := parseBindings(form, args[0])
	if errObj != nil {
		return done(errObj)
	}
	letEnv := object.NewEnclosedEnvironment(env)
	for i, init := range inits {
		val := in.Eval(init, env)
		if isError(val) {
			return done(val)
		}
		letEnv.Bindings[names[i].Name] = val
	}
	return in.evalBody(args[1:], letEnv)
}

// evalNamedLet binds name to a procedure over the loop variables, visible
// only inside the loop body, and enters it with the initial values.
func (in *Interpreter) evalNamedLet(form *object.Pair, name *object.Symbol, args []object.Object, env *object.Environment) (object.Object, *object.Environment, object.Object) {
	if len(args) < 1 {
		return done(syntaxError(form))
	}
	names, inits, errObj := parseBindings(form, args[0])
	if errObj != nil {
		return done(errObj)
	}
	vals := make([]object.Object, 0, len(inits))
	for _, init := range inits {
		val := in.Eval(init, env)
		if isError(val) {
			return done(val)
		}
		vals = append(vals, val)
	}

	loopEnv := object.NewEnclosedEnvironment(env)
	proc := &object.Procedure{Name: name.Name, Params: names, Body: args[1:], Env: loopEnv}
	loopEnv.Bindings[name.Name] = proc

	procEnv, errObj := bindParams(proc, vals)
	if errObj != nil {
		return done(errObj)
	}
	return in.evalBody(proc.Body, procEnv)
}

func evalLetStar(in *Interpreter, form *object.Pair, env *object.Environment) (object.Object, *object.Environment, object.Object) {
	args, ok := formArgs(form)
	if !ok || len(args) < 1 {
		return done(syntaxError(form))
	}
	names, inits, errObj := parseBindings(form, args[0])
	if errObj != nil {
		return done(errObj)
	}
	letEnv := object.NewEnclosedEnvironment(env)
	for i, init := range inits {
		val := in.Eval(init, letEnv)
		if isError(val) {
			return done(val)
		}
		letEnv = object.NewEnclosedEnvironment(letEnv)
		letEnv.Bindings[names[i].Name] = val
	}
	return in.evalBody(args[1:], letEnv)
}

func evalLetrec(in *Interpreter, form *object.Pair, env *object.Environment) (object.Object, *object.Environment, object.Object) {
	args, ok := formArgs(form)
	if !ok || len(args) < 1 {
		return done(syntaxError(form))
	}
	names, inits, errObj := parseBindings(form, args[0])
	if errObj != nil {
		return done(errObj)
	}
	letEnv := object.NewEnclosedEnvironment(env)
	for _, name := range names {
		letEnv.Bindings[name.Name] = object.UNDEFINED
	}
	for i, init := range inits {
		val := in.Eval(init, letEnv)
		if isError(val) {
			return done(val)
		}
		if proc, ok := val.(*object.Procedure); ok && proc.Name == "" {
			proc.Name = names[i].Name
		}
		letEnv.Bindings[names[i].Name] = val
	}
	return in.evalBody(args[1:], letEnv)
}

func evalBegin(in *Interpreter, form *object.Pair, env *object.Environment) (object.Object, *object.Environment, object.Object) {
	args, ok := formArgs(form)
	if !ok {
		return done(syntaxError(form))
	}
	return in.evalBody(args, env)
}

func evalAnd(in *Interpreter, form *object.Pair, env *object.Environment) (object.Object, *object.Environment, object.Object) {
	args, ok := formArgs(form)
	if !ok {
		return done(syntaxError(form))
	}
	if len(args) == 0 {
		return done(object.TRUE)
	}
	for _, arg := range args[:len(args)-1] {
		val := in.Eval(arg, env)
		if isError(val) || !object.IsTruthy(val) {
			return done(val)
		}
	}
	return args[len(args)-1], env, nil
}

func evalOr(in *Interpreter, form *object.Pair, env *object.Environment) (object.Object, *object.Environment, object.Object) {
	args, ok := formArgs(form)
	if !ok {
		return done(syntaxError(form))
	}
	if len(args) == 0 {
		return done(object.FALSE)
	}
	for _, arg := range args[:len(args)-1] {
		val := in.Eval(arg, env)
		if isError(val) || object.IsTruthy(val) {
			return done(val)
		}
	}
	return args[len(args)-1], env, nil
}

func evalCond(in *Interpreter, form *object.Pair, env *object.Environment) (object.Object, *object.Environment, object.Object) {
	clauses, ok := formArgs(form)
	if !ok {
		return done(syntaxError(form))
	}
	for _, clause := range clauses {
		parts, ok := object.ListToSlice(clause)
		if !ok || len(parts) == 0 {
			return done(syntaxError(form))
		}
		if parts[0] == elseSym {
			return in.evalBody(parts[1:], env)
		}
		test := in.Eval(parts[0], env)
		if isError(test) {
			return done(test)
		}
		if !object.IsTruthy(test) {
			continue
		}
		if len(parts) == 1 {
			return done(test)
		}
		if parts[1] == arrowSym {
			if len(parts) != 3 {
				return done(syntaxError(form))
			}
			fn := in.Eval(parts[2], env)
			if isError(fn) {
				return done(fn)
			}
			return done(in.Apply(fn, []object.Object{test}))
		}
		return in.evalBody(parts[1:], env)
	}
	return done(object.UNSPECIFIED)
}

func evalWhen(in *Interpreter, form *object.Pair, env *object.Environment) (object.Object, *object.Environment, object.Object) {
	return in.evalGuarded(form, env, true)
}

func evalUnless(in *Interpreter, form *object.Pair, env *object.Environment) (object.Object, *object.Environment, object.Object) {
	return in.evalGuarded(form, env, false)
}

func (in *Interpreter) evalGuarded(form *object.Pair, env *object.Environment, want bool) (object.Object, *object.Environment, object.Object) {
	args, ok := formArgs(form)
	if !ok || len(args) < 1 {
		return done(syntaxError(form))
	}
	test := in.Eval(args[0], env)
	if isError(test) {
		return done(test)
	}
	if object.IsTruthy(test) != want {
		return done(object.UNSPECIFIED)
	}
	return in.evalBody(args[1:], env)
}
