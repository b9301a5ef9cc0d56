package foreign

import (
	"fmt"
	"log/slog"
	"math"
	"slate/internal/args"
	"slate/internal/dispatch"
	"slate/internal/mathx"
	"slate/internal/object"
	"slate/internal/pool"
	"strconv"
)

// vec2 handles carry the pool.Ref of their record. Two handles are equal
// only when they name the same record.
func (b *Bindings) vec2Behavior() object.ForeignBehavior {
	return object.ForeignBehavior{
		Free: func(payload any) {
			ref := payload.(pool.Ref)
			if err := b.Pool.Release(ref); err != nil {
				slog.Error("failed to release vec2", slog.Any("error", err))
			}
		},
		Equal: func(x, y any) bool {
			return x.(pool.Ref) == y.(pool.Ref)
		},
		String: func(payload any) string {
			v := b.Pool.Get(payload.(pool.Ref))
			if v == nil {
				return "<vec2 invalid>"
			}
			return fmt.Sprintf("<vec2 %s %s>", formatField(v.X), formatField(v.Y))
		},
	}
}

// formatField prints four decimals, and inf, -inf or nan for the
// non-finite values.
func formatField(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case math.IsNaN(f):
		return "nan"
	}
	return strconv.FormatFloat(f, 'f', 4, 64)
}

// newVec2 copies v into a fresh pool record and wraps it in a handle.
func (b *Bindings) newVec2(ctx object.EvaluatorContext, v mathx.Vec2) object.Object {
	ref, rec := b.Pool.Allocate()
	*rec = v
	return ctx.NewForeignValue(b.Vec2Type, ref)
}

func (b *Bindings) vec2At(vals args.Values, i int) *mathx.Vec2 {
	return b.Pool.Get(vals.Payload(i).(pool.Ref))
}

// params compiles format, where every v is a vec2. Vec2Type must already
// be registered.
func (b *Bindings) params(format string) []args.Param {
	types := make([]*object.ForeignType, 0, len(format))
	for _, c := range format {
		if c == 'v' {
			types = append(types, b.Vec2Type)
		}
	}
	return args.MustFormat(format, types...)
}

func (b *Bindings) fnMakeVec2() *object.Foreign {
	params := b.params("ff")
	return &object.Foreign{
		Name:    "make-vec2",
		MaxArgs: 2,
		Fn: func(ctx object.EvaluatorContext, argv ...object.Object) object.Object {
			vals, errObj := args.Parse("make-vec2", params, argv)
			if errObj != nil {
				return errObj
			}
			return b.newVec2(ctx, mathx.Vec2{X: vals.Float(0), Y: vals.Float(1)})
		},
	}
}

func (b *Bindings) fnVec2P() *object.Foreign {
	return &object.Foreign{
		Name:    "vec2?",
		MinArgs: 1,
		MaxArgs: 1,
		Fn: func(ctx object.EvaluatorContext, argv ...object.Object) object.Object {
			return object.NativeBool(object.IsForeign(argv[0], b.Vec2Type))
		},
	}
}

func (b *Bindings) fnVec2X(setter *object.Foreign) *object.Foreign {
	params := b.params("v")
	return &object.Foreign{
		Name:    "vec2-x",
		MaxArgs: 1,
		Setter:  setter,
		Fn: func(ctx object.EvaluatorContext, argv ...object.Object) object.Object {
			vals, errObj := args.Parse("vec2-x", params, argv)
			if errObj != nil {
				return errObj
			}
			return &object.Real{Value: b.vec2At(vals, 0).X}
		},
	}
}

func (b *Bindings) fnVec2Y(setter *object.Foreign) *object.Foreign {
	params := b.params("v")
	return &object.Foreign{
		Name:    "vec2-y",
		MaxArgs: 1,
		Setter:  setter,
		Fn: func(ctx object.EvaluatorContext, argv ...object.Object) object.Object {
			vals, errObj := args.Parse("vec2-y", params, argv)
			if errObj != nil {
				return errObj
			}
			return &object.Real{Value: b.vec2At(vals, 0).Y}
		},
	}
}

// Setters return the value they stored, as given.
func (b *Bindings) fnSetVec2X() *object.Foreign {
	params := b.params("vf")
	return &object.Foreign{
		Name:    "set-vec2-x!",
		MaxArgs: 2,
		Fn: func(ctx object.EvaluatorContext, argv ...object.Object) object.Object {
			vals, errObj := args.Parse("set-vec2-x!", params, argv)
			if errObj != nil {
				return errObj
			}
			b.vec2At(vals, 0).X = vals.Float(1)
			return vals.Object(1)
		},
	}
}

func (b *Bindings) fnSetVec2Y() *object.Foreign {
	params := b.params("vf")
	return &object.Foreign{
		Name:    "set-vec2-y!",
		MaxArgs: 2,
		Fn: func(ctx object.EvaluatorContext, argv ...object.Object) object.Object {
			vals, errObj := args.Parse("set-vec2-y!", params, argv)
			if errObj != nil {
				return errObj
			}
			b.vec2At(vals, 0).Y = vals.Float(1)
			return vals.Object(1)
		},
	}
}

func (b *Bindings) fnVec2Scalar(name string, op func(mathx.Vec2) float64) *object.Foreign {
	params := b.params("v")
	return &object.Foreign{
		Name:    name,
		MaxArgs: 1,
		Fn: func(ctx object.EvaluatorContext, argv ...object.Object) object.Object {
			vals, errObj := args.Parse(name, params, argv)
			if errObj != nil {
				return errObj
			}
			return &object.Real{Value: op(*b.vec2At(vals, 0))}
		},
	}
}

func (b *Bindings) fnVec2Pair(name string, op func(mathx.Vec2, mathx.Vec2) float64) *object.Foreign {
	params := b.params("vv")
	return &object.Foreign{
		Name:    name,
		MaxArgs: 2,
		Fn: func(ctx object.EvaluatorContext, argv ...object.Object) object.Object {
			vals, errObj := args.Parse(name, params, argv)
			if errObj != nil {
				return errObj
			}
			return &object.Real{Value: op(*b.vec2At(vals, 0), *b.vec2At(vals, 1))}
		},
	}
}

func (b *Bindings) fnVec2Map(name string, op func(mathx.Vec2) mathx.Vec2) *object.Foreign {
	params := b.params("v")
	return &object.Foreign{
		Name:    name,
		MaxArgs: 1,
		Fn: func(ctx object.EvaluatorContext, argv ...object.Object) object.Object {
			vals, errObj := args.Parse(name, params, argv)
			if errObj != nil {
				return errObj
			}
			return b.newVec2(ctx, op(*b.vec2At(vals, 0)))
		},
	}
}

func (b *Bindings) fnVec2Lerp() *object.Foreign {
	params := b.params("vvf")
	return &object.Foreign{
		Name:    "vec2-lerp",
		MaxArgs: 3,
		Fn: func(ctx object.EvaluatorContext, argv ...object.Object) object.Object {
			vals, errObj := args.Parse("vec2-lerp", params, argv)
			if errObj != nil {
				return errObj
			}
			return b.newVec2(ctx, b.vec2At(vals, 0).Lerp(*b.vec2At(vals, 1), vals.Float(2)))
		},
	}
}

func (b *Bindings) fnVec2Rotate() *object.Foreign {
	params := b.params("vf")
	return &object.Foreign{
		Name:    "vec2-rotate",
		MaxArgs: 2,
		Fn: func(ctx object.EvaluatorContext, argv ...object.Object) object.Object {
			vals, errObj := args.Parse("vec2-rotate", params, argv)
			if errObj != nil {
				return errObj
			}
			return b.newVec2(ctx, b.vec2At(vals, 0).Rotate(vals.Float(1)))
		},
	}
}

// installOperators extends + and - for two vec2s, and * and / for a vec2
// and a number. Every other call reaches the original operator unchanged.
func (b *Bindings) installOperators(h Host) error {
	isVec2 := dispatch.IsType(b.Vec2Type)
	vecVec := dispatch.Arity2(isVec2, isVec2)
	vecNum := dispatch.Arity2(isVec2, dispatch.IsNumber)

	binary := func(op func(a, c mathx.Vec2) mathx.Vec2) object.ForeignFunction {
		return func(ctx object.EvaluatorContext, argv ...object.Object) object.Object {
			a := b.Pool.Get(argv[0].(*object.ForeignValue).Payload.(pool.Ref))
			c := b.Pool.Get(argv[1].(*object.ForeignValue).Payload.(pool.Ref))
			return b.newVec2(ctx, op(*a, *c))
		}
	}
	scalar := func(op func(a mathx.Vec2, s float64) mathx.Vec2) object.ForeignFunction {
		return func(ctx object.EvaluatorContext, argv ...object.Object) object.Object {
			a := b.Pool.Get(argv[0].(*object.ForeignValue).Payload.(pool.Ref))
			s, _ := object.ToFloat(argv[1])
			return b.newVec2(ctx, op(*a, s))
		}
	}

	overrides := []struct {
		name string
		c    dispatch.Case
	}{
		{"+", dispatch.Case{Name: "vec2+vec2", Match: vecVec, Apply: binary(mathx.Vec2.Add)}},
		{"-", dispatch.Case{Name: "vec2-vec2", Match: vecVec, Apply: binary(mathx.Vec2.Sub)}},
		{"*", dispatch.Case{Name: "vec2*number", Match: vecNum, Apply: scalar(mathx.Vec2.Scale)}},
		{"/", dispatch.Case{Name: "vec2/number", Match: vecNum, Apply: scalar(mathx.Vec2.Div)}},
	}
	for _, o := range overrides {
		if _, err := dispatch.Install(h, o.name, o.c); err != nil {
			return fmt.Errorf("install %s: %w", o.c.Name, err)
		}
	}
	return nil
}
