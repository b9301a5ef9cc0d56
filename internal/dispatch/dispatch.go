// Package dispatch extends existing global procedures with typed cases.
// An installed chain tries its cases in order and otherwise forwards the
// untouched argument list to the binding it replaced.
package dispatch

import (
	"fmt"
	"log/slog"
	"slate/internal/object"
)

// Binder is the part of the interpreter a chain is installed into.
type Binder interface {
	Lookup(name string) (object.Object, bool)
	Define(name string, obj object.Object)
}

type Matcher func(args []object.Object) bool

type Case struct {
	Name  string
	Match Matcher
	Apply object.ForeignFunction
}

// Chain is the replacement binding for one operator.
type Chain struct {
	Name     string
	Cases    []Case
	Fallback object.Object
}

// Install captures the current binding of name once and rebinds name to a
// chain over cases. Installing twice stacks: the second chain falls back
// to the first.
func Install(b Binder, name string, cases ...Case) (*Chain, error) {
	original, ok := b.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("dispatch: %s is not bound", name)
	}
	chain := &Chain{Name: name, Cases: cases, Fallback: original}
	b.Define(name, chain.Foreign())
	slog.Debug("installed operator override",
		slog.String("name", name),
		slog.Int("cases", len(cases)))
	return chain, nil
}

// Foreign wraps the chain as a variadic native procedure.
func (c *Chain) Foreign() *object.Foreign {
	return &object.Foreign{
		Name:    c.Name,
		MaxArgs: -1,
		Fn:      c.call,
	}
}

func (c *Chain) call(ctx object.EvaluatorContext, args ...object.Object) object.Object {
	for _, cs := range c.Cases {
		if cs.Match(args) {
			return cs.Apply(ctx, args...)
		}
	}
	return ctx.Apply(c.Fallback, args)
}

// Arity2 matches exactly two arguments satisfying first and second.
func Arity2(first, second func(object.Object) bool) Matcher {
	return func(args []object.Object) bool {
		return len(args) == 2 && first(args[0]) && second(args[1])
	}
}

// IsType returns a predicate for handles of t.
func IsType(t *object.ForeignType) func(object.Object) bool {
	return func(obj object.Object) bool {
		return object.IsForeign(obj, t)
	}
}

func IsNumber(obj object.Object) bool {
	return object.IsNumber(obj)
}
