package evaluator

import (
	"math"
	"slate/internal/object"
)

func checkNumbers(caller string, args []object.Object) (allInts bool, errObj *object.Error) {
	allInts = true
	for i, arg := range args {
		switch arg.(type) {
		case *object.Integer:
		case *object.Real:
			allInts = false
		default:
			return false, object.WrongTypeArg(caller, i+1, arg, "number")
		}
	}
	return allInts, nil
}

func intValue(obj object.Object) int64 {
	return obj.(*object.Integer).Value
}

func floatValue(obj object.Object) float64 {
	f, _ := object.ToFloat(obj)
	return f
}

func fnAdd() *object.Foreign {
	return &object.Foreign{
		Name:    "+",
		MaxArgs: -1,
		Fn: func(ctx object.EvaluatorContext, args ...object.Object) object.Object {
			allInts, errObj := checkNumbers("+", args)
			if errObj != nil {
				return errObj
			}
			if allInts {
				var sum int64
				for _, arg := range args {
					sum += intValue(arg)
				}
				return &object.Integer{Value: sum}
			}
			var sum float64
			for _, arg := range args {
				sum += floatValue(arg)
			}
			return &object.Real{Value: sum}
		},
	}
}

func fnSub() *object.Foreign {
	return &object.Foreign{
		Name:    "-",
		MinArgs: 1,
		MaxArgs: -1,
		Fn: func(ctx object.EvaluatorContext, args ...object.Object) object.Object {
			allInts, errObj := checkNumbers("-", args)
			if errObj != nil {
				return errObj
			}
			if allInts {
				if len(args) == 1 {
					return &object.Integer{Value: -intValue(args[0])}
				}
				acc := intValue(args[0])
				for _, arg := range args[1:] {
					acc -= intValue(arg)
				}
				return &object.Integer{Value: acc}
			}
			if len(args) == 1 {
				return &object.Real{Value: -floatValue(args[0])}
			}
			acc := floatValue(args[0])
			for _, arg := range args[1:] {
				acc -= floatValue(arg)
			}
			return &object.Real{Value: acc}
		},
	}
}

func fnMul() *object.Foreign {
	return &object.Foreign{
		Name:    "*",
		MaxArgs: -1,
		Fn: func(ctx object.EvaluatorContext, args ...object.Object) object.Object {
			allInts, errObj := checkNumbers("*", args)
			if errObj != nil {
				return errObj
			}
			if allInts {
				var acc int64 = 1
				for _, arg := range args {
					acc *= intValue(arg)
				}
				return &object.Integer{Value: acc}
			}
			acc := 1.0
			for _, arg := range args {
				acc *= floatValue(arg)
			}
			return &object.Real{Value: acc}
		},
	}
}

// fnDiv keeps integer results only when the division is exact.
func fnDiv() *object.Foreign {
	return &object.Foreign{
		Name:    "/",
		MinArgs: 1,
		MaxArgs: -1,
		Fn: func(ctx object.EvaluatorContext, args ...object.Object) object.Object {
			if _, errObj := checkNumbers("/", args); errObj != nil {
				return errObj
			}
			if len(args) == 1 {
				return divide(&object.Integer{Value: 1}, args[0])
			}
			acc := args[0]
			for _, arg := range args[1:] {
				acc = divide(acc, arg)
				if isError(acc) {
					return acc
				}
			}
			return acc
		},
	}
}

func divide(a, b object.Object) object.Object {
	x, xInt := a.(*object.Integer)
	y, yInt := b.(*object.Integer)
	if xInt && yInt {
		if y.Value == 0 {
			return newError(object.DivisionByZeroTag, "/: division by zero")
		}
		if x.Value%y.Value == 0 {
			return &object.Integer{Value: x.Value / y.Value}
		}
	}
	return &object.Real{Value: floatValue(a) / floatValue(b)}
}

func compareNumbers(a, b object.Object) int {
	if x, ok := a.(*object.Integer); ok {
		if y, ok := b.(*object.Integer); ok {
			switch {
			case x.Value < y.Value:
				return -1
			case x.Value > y.Value:
				return 1
			}
			return 0
		}
	}
	fa, fb := floatValue(a), floatValue(b)
	switch {
	case fa < fb:
		return -1
	case fa > fb:
		return 1
	case fa == fb:
		return 0
	}
	// NaN compares false every way; 2 fails every predicate below.
	return 2
}

func fnCompare(name string, holds func(int) bool) *object.Foreign {
	return &object.Foreign{
		Name:    name,
		MinArgs: 1,
		MaxArgs: -1,
		Fn: func(ctx object.EvaluatorContext, args ...object.Object) object.Object {
			if _, errObj := checkNumbers(name, args); errObj != nil {
				return errObj
			}
			for i := 1; i < len(args); i++ {
				c := compareNumbers(args[i-1], args[i])
				if c == 2 || !holds(c) {
					return object.FALSE
				}
			}
			return object.TRUE
		},
	}
}

func fnAbs() *object.Foreign {
	return &object.Foreign{
		Name:    "abs",
		MinArgs: 1,
		MaxArgs: 1,
		Fn: func(ctx object.EvaluatorContext, args ...object.Object) object.Object {
			switch n := args[0].(type) {
			case *object.Integer:
				if n.Value < 0 {
					return &object.Integer{Value: -n.Value}
				}
				return n
			case *object.Real:
				return &object.Real{Value: math.Abs(n.Value)}
			}
			return object.WrongTypeArg("abs", 1, args[0], "number")
		},
	}
}

// fnMinMax returns a real if any argument is real.
func fnMinMax(name string, want int) *object.Foreign {
	return &object.Foreign{
		Name:    name,
		MinArgs: 1,
		MaxArgs: -1,
		Fn: func(ctx object.EvaluatorContext, args ...object.Object) object.Object {
			allInts, errObj := checkNumbers(name, args)
			if errObj != nil {
				return errObj
			}
			best := args[0]
			for _, arg := range args[1:] {
				if compareNumbers(arg, best) == want {
					best = arg
				}
			}
			if !allInts {
				return &object.Real{Value: floatValue(best)}
			}
			return best
		},
	}
}

func fnRound(name string, op func(float64) float64) *object.Foreign {
	return &object.Foreign{
		Name:    name,
		MinArgs: 1,
		MaxArgs: 1,
		Fn: func(ctx object.EvaluatorContext, args ...object.Object) object.Object {
			switch n := args[0].(type) {
			case *object.Integer:
				return n
			case *object.Real:
				return &object.Real{Value: op(n.Value)}
			}
			return object.WrongTypeArg(name, 1, args[0], "number")
		},
	}
}

// fnSqrt keeps perfect squares exact.
func fnSqrt() *object.Foreign {
	return &object.Foreign{
		Name:    "sqrt",
		MinArgs: 1,
		MaxArgs: 1,
		Fn: func(ctx object.EvaluatorContext, args ...object.Object) object.Object {
			if !object.IsNumber(args[0]) {
				return object.WrongTypeArg("sqrt", 1, args[0], "number")
			}
			root := math.Sqrt(floatValue(args[0]))
			if n, ok := args[0].(*object.Integer); ok && n.Value >= 0 {
				if r := int64(root); r*r == n.Value {
					return &object.Integer{Value: r}
				}
			}
			return &object.Real{Value: root}
		},
	}
}

func fnExpt() *object.Foreign {
	return &object.Foreign{
		Name:    "expt",
		MinArgs: 2,
		MaxArgs: 2,
		Fn: func(ctx object.EvaluatorContext, args ...object.Object) object.Object {
			allInts, errObj := checkNumbers("expt", args)
			if errObj != nil {
				return errObj
			}
			if allInts && intValue(args[1]) >= 0 {
				return &object.Integer{Value: ipow(intValue(args[0]), intValue(args[1]))}
			}
			return &object.Real{Value: math.Pow(floatValue(args[0]), floatValue(args[1]))}
		},
	}
}

// ipow raises base to a non-negative exp by squaring. Like the other
// integer operators it wraps on overflow.
func ipow(base, exp int64) int64 {
	var acc int64 = 1
	for exp > 0 {
		if exp&1 == 1 {
			acc *= base
		}
		base *= base
		exp >>= 1
	}
	return acc
}

func modulo(a, b int64) int64 {
	m := a % b
	if m != 0 && (m < 0) != (b < 0) {
		m += b
	}
	return m
}

func fnIntDiv(name string, op func(a, b int64) int64) *object.Foreign {
	return &object.Foreign{
		Name:    name,
		MinArgs: 2,
		MaxArgs: 2,
		Fn: func(ctx object.EvaluatorContext, args ...object.Object) object.Object {
			for i, arg := range args {
				if _, ok := arg.(*object.Integer); !ok {
					return object.WrongTypeArg(name, i+1, arg, "integer")
				}
			}
			if intValue(args[1]) == 0 {
				return newError(object.DivisionByZeroTag, "%s: division by zero", name)
			}
			return &object.Integer{Value: op(intValue(args[0]), intValue(args[1]))}
		},
	}
}

func fnExactToInexact() *object.Foreign {
	return &object.Foreign{
		Name:    "exact->inexact",
		MinArgs: 1,
		MaxArgs: 1,
		Fn: func(ctx object.EvaluatorContext, args ...object.Object) object.Object {
			if !object.IsNumber(args[0]) {
				return object.WrongTypeArg("exact->inexact", 1, args[0], "number")
			}
			return &object.Real{Value: floatValue(args[0])}
		},
	}
}

func fnInexactToExact() *object.Foreign {
	return &object.Foreign{
		Name:    "inexact->exact",
		MinArgs: 1,
		MaxArgs: 1,
		Fn: func(ctx object.EvaluatorContext, args ...object.Object) object.Object {
			switch n := args[0].(type) {
			case *object.Integer:
				return n
			case *object.Real:
				if math.IsNaN(n.Value) || math.IsInf(n.Value, 0) {
					return newError(object.OutOfRangeTag, "inexact->exact: %s has no exact value", n.Inspect())
				}
				return &object.Integer{Value: int64(math.Round(n.Value))}
			}
			return object.WrongTypeArg("inexact->exact", 1, args[0], "number")
		},
	}
}

func fnSign(name string, pred func(float64) bool) *object.Foreign {
	return &object.Foreign{
		Name:    name,
		MinArgs: 1,
		MaxArgs: 1,
		Fn: func(ctx object.EvaluatorContext, args ...object.Object) object.Object {
			f, ok := object.ToFloat(args[0])
			if !ok {
				return object.WrongTypeArg(name, 1, args[0], "number")
			}
			return object.NativeBool(pred(f))
		},
	}
}

func fnParity(name string, rem int64) *object.Foreign {
	return &object.Foreign{
		Name:    name,
		MinArgs: 1,
		MaxArgs: 1,
		Fn: func(ctx object.EvaluatorContext, args ...object.Object) object.Object {
			n, ok := args[0].(*object.Integer)
			if !ok {
				return object.WrongTypeArg(name, 1, args[0], "integer")
			}
			return object.NativeBool(modulo(n.Value, 2) == rem)
		},
	}
}
