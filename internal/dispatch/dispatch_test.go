package dispatch

import (
	"io"
	"slate/internal/evaluator"
	"slate/internal/object"
	"testing"
)

type point struct{ x, y float64 }

func setup(t *testing.T) (*evaluator.Interpreter, *object.ForeignType, *int) {
	t.Helper()
	in := evaluator.New(io.Discard, io.Discard)
	typ, err := in.Registry().Register("point", object.ForeignBehavior{})
	if err != nil {
		t.Fatal(err)
	}

	fallbacks := new(int)
	plus, _ := in.Lookup("+")
	in.Define("+", &object.Foreign{
		Name:    "+",
		MaxArgs: -1,
		Fn: func(ctx object.EvaluatorContext, args ...object.Object) object.Object {
			*fallbacks++
			return plus.(*object.Foreign).Fn(ctx, args...)
		},
	})
	in.Define("pt", &object.Foreign{
		Name:    "pt",
		MinArgs: 2,
		MaxArgs: 2,
		Fn: func(ctx object.EvaluatorContext, args ...object.Object) object.Object {
			x, _ := object.ToFloat(args[0])
			y, _ := object.ToFloat(args[1])
			return ctx.NewForeignValue(typ, &point{x, y})
		},
	})
	return in, typ, fallbacks
}

func TestInstallDispatchesMatchingCase(t *testing.T) {
	in, typ, fallbacks := setup(t)
	if _, err := Install(in, "+", Case{
		Name:  "point+point",
		Match: Arity2(IsType(typ), IsType(typ)),
		Apply: func(ctx object.EvaluatorContext, args ...object.Object) object.Object {
			a := args[0].(*object.ForeignValue).Payload.(*point)
			b := args[1].(*object.ForeignValue).Payload.(*point)
			return ctx.NewForeignValue(typ, &point{a.x + b.x, a.y + b.y})
		},
	}); err != nil {
		t.Fatal(err)
	}

	got := in.EvalString("(+ (pt 1 2) (pt 3 4))")
	fv, ok := got.(*object.ForeignValue)
	if !ok {
		t.Fatalf("got %s, want a point", got.Inspect())
	}
	if p := fv.Payload.(*point); p.x != 4 || p.y != 6 {
		t.Errorf("sum = %+v", *p)
	}
	if *fallbacks != 0 {
		t.Errorf("original + was invoked %d times for a matching call", *fallbacks)
	}
}

func TestInstallFallsThroughUnchanged(t *testing.T) {
	in, typ, fallbacks := setup(t)
	if _, err := Install(in, "+", Case{
		Match: Arity2(IsType(typ), IsType(typ)),
		Apply: func(ctx object.EvaluatorContext, args ...object.Object) object.Object {
			return object.UNSPECIFIED
		},
	}); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"numbers", "(+ 1 2)", "3"},
		{"variadic", "(+ 1 2 3 4)", "10"},
		{"no arguments", "(+)", "0"},
		{"mixed reals", "(+ 1 2.5)", "3.5"},
	}
	for _, tt := range tests {
		before := *fallbacks
		got := in.EvalString(tt.input)
		if got.Inspect() != tt.want {
			t.Errorf("%s: got %q, want %q", tt.name, got.Inspect(), tt.want)
		}
		if *fallbacks != before+1 {
			t.Errorf("%s: original invoked %d times, want 1", tt.name, *fallbacks-before)
		}
	}

	got := in.EvalString("(+ (pt 1 2) 3)")
	if !object.IsError(got) {
		t.Errorf("point+number fell through without the original's type error: %s", got.Inspect())
	}
}

func TestInstallUnboundName(t *testing.T) {
	in, _, _ := setup(t)
	if _, err := Install(in, "no-such-op"); err == nil {
		t.Errorf("installing over an unbound name succeeded")
	}
}
