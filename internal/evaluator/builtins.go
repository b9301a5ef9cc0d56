package evaluator

import (
	"math"
	"slate/internal/object"
)

// getBuiltins returns the core procedures bound into every interpreter.
func getBuiltins() map[string]*object.Foreign {
	return map[string]*object.Foreign{
		// numbers
		"+":              fnAdd(),
		"-":              fnSub(),
		"*":              fnMul(),
		"/":              fnDiv(),
		"=":              fnCompare("=", func(c int) bool { return c == 0 }),
		"<":              fnCompare("<", func(c int) bool { return c < 0 }),
		">":              fnCompare(">", func(c int) bool { return c > 0 }),
		"<=":             fnCompare("<=", func(c int) bool { return c <= 0 }),
		">=":             fnCompare(">=", func(c int) bool { return c >= 0 }),
		"abs":            fnAbs(),
		"min":            fnMinMax("min", -1),
		"max":            fnMinMax("max", 1),
		"floor":          fnRound("floor", math.Floor),
		"ceiling":        fnRound("ceiling", math.Ceil),
		"round":          fnRound("round", math.RoundToEven),
		"truncate":       fnRound("truncate", math.Trunc),
		"sqrt":           fnSqrt(),
		"expt":           fnExpt(),
		"quotient":       fnIntDiv("quotient", func(a, b int64) int64 { return a / b }),
		"remainder":      fnIntDiv("remainder", func(a, b int64) int64 { return a % b }),
		"modulo":         fnIntDiv("modulo", modulo),
		"exact->inexact": fnExactToInexact(),
		"inexact->exact": fnInexactToExact(),

		// predicates
		"number?":    fnTypePredicate("number?", object.IsNumber),
		"integer?":   fnTypePredicate("integer?", func(o object.Object) bool { _, ok := o.(*object.Integer); return ok }),
		"real?":      fnTypePredicate("real?", object.IsNumber),
		"string?":    fnTypePredicate("string?", func(o object.Object) bool { _, ok := o.(*object.String); return ok }),
		"symbol?":    fnTypePredicate("symbol?", func(o object.Object) bool { _, ok := o.(*object.Symbol); return ok }),
		"pair?":      fnTypePredicate("pair?", func(o object.Object) bool { _, ok := o.(*object.Pair); return ok }),
		"null?":      fnTypePredicate("null?", func(o object.Object) bool { return o == object.NIL }),
		"list?":      fnTypePredicate("list?", func(o object.Object) bool { _, ok := object.ListToSlice(o); return ok }),
		"boolean?":   fnTypePredicate("boolean?", func(o object.Object) bool { _, ok := o.(*object.Boolean); return ok }),
		"procedure?": fnTypePredicate("procedure?", isProcedure),
		"zero?":      fnSign("zero?", func(f float64) bool { return f == 0 }),
		"positive?":  fnSign("positive?", func(f float64) bool { return f > 0 }),
		"negative?":  fnSign("negative?", func(f float64) bool { return f < 0 }),
		"even?":      fnParity("even?", 0),
		"odd?":       fnParity("odd?", 1),
		"not":        fnTypePredicate("not", func(o object.Object) bool { return o == object.FALSE }),
		"eq?":        fnEquivalence("eq?", isEq),
		"eqv?":       fnEquivalence("eqv?", isEqv),
		"equal?":     fnEquivalence("equal?", isEqual),

		// lists
		"cons":      fnCons(),
		"car":       fnCar(),
		"cdr":       fnCdr(),
		"cadr":      fnCxr("cadr", "ad"),
		"cddr":      fnCxr("cddr", "dd"),
		"caar":      fnCxr("caar", "aa"),
		"caddr":     fnCxr("caddr", "add"),
		"list":      fnList(),
		"length":    fnLength(),
		"append":    fnAppend(),
		"reverse":   fnReverse(),
		"list-ref":  fnListRef(),
		"list-tail": fnListTail(),
		"memq":      fnMember("memq", isEq),
		"member":    fnMember("member", isEqual),
		"assq":      fnAssoc("assq", isEq),
		"assoc":     fnAssoc("assoc", isEqual),
		"map":       fnMap(),
		"for-each":  fnForEach(),
		"apply":     fnApply(),

		// strings
		"string-append":  fnStringAppend(),
		"string-length":  fnStringLength(),
		"substring":      fnSubstring(),
		"string=?":       fnStringEq(),
		"number->string": fnNumberToString(),
		"string->number": fnStringToNumber(),
		"symbol->string": fnSymbolToString(),
		"string->symbol": fnStringToSymbol(),
		"object->string": fnObjectToString(),

		// ports
		"display":             fnDisplay(),
		"write":               fnWrite(),
		"newline":             fnNewline(),
		"write-string":        fnWriteString(),
		"current-output-port": fnCurrentOutputPort(),
		"current-error-port":  fnCurrentErrorPort(),

		// control
		"error": fnError(),
		"catch": fnCatch(),
		"eval":  fnEval(),
		"load":  fnLoad(),
		"gc":    fnGC(),
	}
}

func isProcedure(obj object.Object) bool {
	switch obj.(type) {
	case *object.Procedure, *object.Foreign:
		return true
	}
	return false
}

func fnTypePredicate(name string, pred func(object.Object) bool) *object.Foreign {
	return &object.Foreign{
		Name:    name,
		MinArgs: 1,
		MaxArgs: 1,
		Fn: func(ctx object.EvaluatorContext, args ...object.Object) object.Object {
			return object.NativeBool(pred(args[0]))
		},
	}
}

func fnEquivalence(name string, eq func(a, b object.Object) bool) *object.Foreign {
	return &object.Foreign{
		Name:    name,
		MinArgs: 2,
		MaxArgs: 2,
		Fn: func(ctx object.EvaluatorContext, args ...object.Object) object.Object {
			return object.NativeBool(eq(args[0], args[1]))
		},
	}
}

// isEq is identity, except that equal small values (booleans, integers,
// symbols) are always the same object to scripts, and two handles to the
// same native record are the same object.
func isEq(a, b object.Object) bool {
	if a == b {
		return true
	}
	switch x := a.(type) {
	case *object.Integer:
		y, ok := b.(*object.Integer)
		return ok && x.Value == y.Value
	case *object.ForeignValue:
		y, ok := b.(*object.ForeignValue)
		return ok && object.ForeignEqual(x, y)
	}
	return false
}

func isEqv(a, b object.Object) bool {
	if x, ok := a.(*object.Real); ok {
		y, ok := b.(*object.Real)
		return ok && x.Value == y.Value
	}
	return isEq(a, b)
}

func isEqual(a, b object.Object) bool {
	switch x := a.(type) {
	case *object.String:
		y, ok := b.(*object.String)
		return ok && x.Value == y.Value
	case *object.Pair:
		y, ok := b.(*object.Pair)
		return ok && isEqual(x.Car, y.Car) && isEqual(x.Cdr, y.Cdr)
	}
	return isEqv(a, b)
}
