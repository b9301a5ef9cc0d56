package foreign

import (
	"slate/internal/args"
	"slate/internal/mathx"
	"slate/internal/object"
)

func fnUnary(name string, op func(float64) float64) *object.Foreign {
	params := args.MustFormat("f")
	return &object.Foreign{
		Name:    name,
		MaxArgs: 1,
		Fn: func(ctx object.EvaluatorContext, argv ...object.Object) object.Object {
			vals, errObj := args.Parse(name, params, argv)
			if errObj != nil {
				return errObj
			}
			return &object.Real{Value: op(vals.Float(0))}
		},
	}
}

func fnTernary(name string, op func(a, b, c float64) float64) *object.Foreign {
	params := args.MustFormat("fff")
	return &object.Foreign{
		Name:    name,
		MaxArgs: 3,
		Fn: func(ctx object.EvaluatorContext, argv ...object.Object) object.Object {
			vals, errObj := args.Parse(name, params, argv)
			if errObj != nil {
				return errObj
			}
			return &object.Real{Value: op(vals.Float(0), vals.Float(1), vals.Float(2))}
		},
	}
}

func fnHermite() *object.Foreign {
	params := args.MustFormat("fffff")
	return &object.Foreign{
		Name:    "hermite",
		MaxArgs: 5,
		Fn: func(ctx object.EvaluatorContext, argv ...object.Object) object.Object {
			vals, errObj := args.Parse("hermite", params, argv)
			if errObj != nil {
				return errObj
			}
			return &object.Real{Value: mathx.Hermite(
				vals.Float(0), vals.Float(1), vals.Float(2), vals.Float(3), vals.Float(4))}
		},
	}
}

func fnFuzzyEqual() *object.Foreign {
	params := args.MustFormat("ff")
	return &object.Foreign{
		Name:    "fuzzy-equal?",
		MaxArgs: 2,
		Fn: func(ctx object.EvaluatorContext, argv ...object.Object) object.Object {
			vals, errObj := args.Parse("fuzzy-equal?", params, argv)
			if errObj != nil {
				return errObj
			}
			return object.NativeBool(mathx.FuzzyEqual(vals.Float(0), vals.Float(1)))
		},
	}
}

func (b *Bindings) fnRnd01() *object.Foreign {
	return &object.Foreign{
		Name: "rnd01",
		Fn: func(ctx object.EvaluatorContext, argv ...object.Object) object.Object {
			return &object.Real{Value: b.rand.Float01()}
		},
	}
}

// fnRnd scales rnd01 into the range between its two arguments, in either
// order.
func (b *Bindings) fnRnd() *object.Foreign {
	params := args.MustFormat("ff")
	return &object.Foreign{
		Name:    "rnd",
		MaxArgs: 2,
		Fn: func(ctx object.EvaluatorContext, argv ...object.Object) object.Object {
			vals, errObj := args.Parse("rnd", params, argv)
			if errObj != nil {
				return errObj
			}
			return &object.Real{Value: b.rand.Between(vals.Float(0), vals.Float(1))}
		},
	}
}
