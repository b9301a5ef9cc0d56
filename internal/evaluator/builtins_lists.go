package evaluator

import (
	"slate/internal/object"
)

func fnCons() *object.Foreign {
	return &object.Foreign{
		Name:    "cons",
		MinArgs: 2,
		MaxArgs: 2,
		Fn: func(ctx object.EvaluatorContext, args ...object.Object) object.Object {
			return object.Cons(args[0], args[1])
		},
	}
}

func fnCar() *object.Foreign {
	return &object.Foreign{
		Name:    "car",
		MinArgs: 1,
		MaxArgs: 1,
		Fn: func(ctx object.EvaluatorContext, args ...object.Object) object.Object {
			p, ok := args[0].(*object.Pair)
			if !ok {
				return object.WrongTypeArg("car", 1, args[0], "pair")
			}
			return p.Car
		},
	}
}

func fnCdr() *object.Foreign {
	return &object.Foreign{
		Name:    "cdr",
		MinArgs: 1,
		MaxArgs: 1,
		Fn: func(ctx object.EvaluatorContext, args ...object.Object) object.Object {
			p, ok := args[0].(*object.Pair)
			if !ok {
				return object.WrongTypeArg("cdr", 1, args[0], "pair")
			}
			return p.Cdr
		},
	}
}

// fnCxr composes car and cdr; path is applied right to left, as the name
// reads.
func fnCxr(name, path string) *object.Foreign {
	return &object.Foreign{
		Name:    name,
		MinArgs: 1,
		MaxArgs: 1,
		Fn: func(ctx object.EvaluatorContext, args ...object.Object) object.Object {
			cur := args[0]
			for i := len(path) - 1; i >= 0; i-- {
				p, ok := cur.(*object.Pair)
				if !ok {
					return object.WrongTypeArg(name, 1, args[0], "list of sufficient length")
				}
				if path[i] == 'a' {
					cur = p.Car
				} else {
					cur = p.Cdr
				}
			}
			return cur
		},
	}
}

func fnList() *object.Foreign {
	return &object.Foreign{
		Name:    "list",
		MaxArgs: -1,
		Fn: func(ctx object.EvaluatorContext, args ...object.Object) object.Object {
			return object.List(args...)
		},
	}
}

func fnLength() *object.Foreign {
	return &object.Foreign{
		Name:    "length",
		MinArgs: 1,
		MaxArgs: 1,
		Fn: func(ctx object.EvaluatorContext, args ...object.Object) object.Object {
			items, ok := object.ListToSlice(args[0])
			if !ok {
				return object.WrongTypeArg("length", 1, args[0], "proper list")
			}
			return &object.Integer{Value: int64(len(items))}
		},
	}
}

// fnAppend copies every list but the last, which becomes the shared tail.
func fnAppend() *object.Foreign {
	return &object.Foreign{
		Name:    "append",
		MaxArgs: -1,
		Fn: func(ctx object.EvaluatorContext, args ...object.Object) object.Object {
			if len(args) == 0 {
				return object.NIL
			}
			result := args[len(args)-1]
			for i := len(args) - 2; i >= 0; i-- {
				items, ok := object.ListToSlice(args[i])
				if !ok {
					return object.WrongTypeArg("append", i+1, args[i], "proper list")
				}
				for j := len(items) - 1; j >= 0; j-- {
					result = object.Cons(items[j], result)
				}
			}
			return result
		},
	}
}

func fnReverse() *object.Foreign {
	return &object.Foreign{
		Name:    "reverse",
		MinArgs: 1,
		MaxArgs: 1,
		Fn: func(ctx object.EvaluatorContext, args ...object.Object) object.Object {
			items, ok := object.ListToSlice(args[0])
			if !ok {
				return object.WrongTypeArg("reverse", 1, args[0], "proper list")
			}
			var result object.Object = object.NIL
			for _, item := range items {
				result = object.Cons(item, result)
			}
			return result
		},
	}
}

func listIndex(caller string, args []object.Object) ([]object.Object, int64, *object.Error) {
	items, ok := object.ListToSlice(args[0])
	if !ok {
		return nil, 0, object.WrongTypeArg(caller, 1, args[0], "proper list")
	}
	k, ok := args[1].(*object.Integer)
	if !ok {
		return nil, 0, object.WrongTypeArg(caller, 2, args[1], "integer")
	}
	return items, k.Value, nil
}

func fnListRef() *object.Foreign {
	return &object.Foreign{
		Name:    "list-ref",
		MinArgs: 2,
		MaxArgs: 2,
		Fn: func(ctx object.EvaluatorContext, args ...object.Object) object.Object {
			items, k, errObj := listIndex("list-ref", args)
			if errObj != nil {
				return errObj
			}
			if k < 0 || k >= int64(len(items)) {
				return newError(object.OutOfRangeTag, "list-ref second argument, %d, is out of range", k)
			}
			return items[k]
		},
	}
}

func fnListTail() *object.Foreign {
	return &object.Foreign{
		Name:    "list-tail",
		MinArgs: 2,
		MaxArgs: 2,
		Fn: func(ctx object.EvaluatorContext, args ...object.Object) object.Object {
			k, ok := args[1].(*object.Integer)
			if !ok {
				return object.WrongTypeArg("list-tail", 2, args[1], "integer")
			}
			cur := args[0]
			for i := int64(0); i < k.Value; i++ {
				p, ok := cur.(*object.Pair)
				if !ok {
					return newError(object.OutOfRangeTag, "list-tail second argument, %d, is out of range", k.Value)
				}
				cur = p.Cdr
			}
			return cur
		},
	}
}

func fnMember(name string, eq func(a, b object.Object) bool) *object.Foreign {
	return &object.Foreign{
		Name:    name,
		MinArgs: 2,
		MaxArgs: 2,
		Fn: func(ctx object.EvaluatorContext, args ...object.Object) object.Object {
			for cur := args[1]; ; {
				p, ok := cur.(*object.Pair)
				if !ok {
					return object.FALSE
				}
				if eq(args[0], p.Car) {
					return p
				}
				cur = p.Cdr
			}
		},
	}
}

func fnAssoc(name string, eq func(a, b object.Object) bool) *object.Foreign {
	return &object.Foreign{
		Name:    name,
		MinArgs: 2,
		MaxArgs: 2,
		Fn: func(ctx object.EvaluatorContext, args ...object.Object) object.Object {
			items, ok := object.ListToSlice(args[1])
			if !ok {
				return object.WrongTypeArg(name, 2, args[1], "proper list")
			}
			for _, item := range items {
				entry, ok := item.(*object.Pair)
				if ok && eq(args[0], entry.Car) {
					return entry
				}
			}
			return object.FALSE
		},
	}
}

// columns turns the list arguments of map and for-each into argument rows.
// Iteration stops at the shortest list.
func columns(caller string, lists []object.Object) ([][]object.Object, *object.Error) {
	var shortest = -1
	cols := make([][]object.Object, len(lists))
	for i, l := range lists {
		items, ok := object.ListToSlice(l)
		if !ok {
			return nil, object.WrongTypeArg(caller, i+2, l, "proper list")
		}
		cols[i] = items
		if shortest < 0 || len(items) < shortest {
			shortest = len(items)
		}
	}
	rows := make([][]object.Object, shortest)
	for r := range rows {
		row := make([]object.Object, len(cols))
		for c := range cols {
			row[c] = cols[c][r]
		}
		rows[r] = row
	}
	return rows, nil
}

func fnMap() *object.Foreign {
	return &object.Foreign{
		Name:    "map",
		MinArgs: 2,
		MaxArgs: -1,
		Fn: func(ctx object.EvaluatorContext, args ...object.Object) object.Object {
			if !isProcedure(args[0]) {
				return object.WrongTypeArg("map", 1, args[0], "procedure")
			}
			rows, errObj := columns("map", args[1:])
			if errObj != nil {
				return errObj
			}
			results := make([]object.Object, 0, len(rows))
			for _, row := range rows {
				val := ctx.Apply(args[0], row)
				if isError(val) {
					return val
				}
				results = append(results, val)
			}
			return object.List(results...)
		},
	}
}

func fnForEach() *object.Foreign {
	return &object.Foreign{
		Name:    "for-each",
		MinArgs: 2,
		MaxArgs: -1,
		Fn: func(ctx object.EvaluatorContext, args ...object.Object) object.Object {
			if !isProcedure(args[0]) {
				return object.WrongTypeArg("for-each", 1, args[0], "procedure")
			}
			rows, errObj := columns("for-each", args[1:])
			if errObj != nil {
				return errObj
			}
			for _, row := range rows {
				if val := ctx.Apply(args[0], row); isError(val) {
					return val
				}
			}
			return object.UNSPECIFIED
		},
	}
}

// fnApply spreads its last argument, which must be a list.
func fnApply() *object.Foreign {
	return &object.Foreign{
		Name:    "apply",
		MinArgs: 1,
		MaxArgs: -1,
		Fn: func(ctx object.EvaluatorContext, args ...object.Object) object.Object {
			if !isProcedure(args[0]) {
				return object.WrongTypeArg("apply", 1, args[0], "procedure")
			}
			if len(args) == 1 {
				return ctx.Apply(args[0], nil)
			}
			last := args[len(args)-1]
			tail, ok := object.ListToSlice(last)
			if !ok {
				return object.WrongTypeArg("apply", len(args), last, "proper list")
			}
			callArgs := append(append([]object.Object{}, args[1:len(args)-1]...), tail...)
			return ctx.Apply(args[0], callArgs)
		},
	}
}
