package object

import (
	"fmt"
	"log/slog"
	"sync/atomic"
)

var nextID atomic.Uint64

// Environment is a lexical scope. The interpreter is single threaded so
// bindings are not locked.
type Environment struct {
	ID       uint64
	Bindings map[string]Object
	Outer    *Environment
}

func nextEnvID() uint64 {
	return nextID.Add(1)
}

func NewEnvironment() *Environment {
	return &Environment{
		ID:       nextEnvID(),
		Bindings: make(map[string]Object),
	}
}

// NewEnclosedEnvironment initializes an environment with a parent.
func NewEnclosedEnvironment(outer *Environment) *Environment {
	env := NewEnvironment()
	env.Outer = outer
	return env
}

func (e *Environment) Get(name string) (Object, bool) {
	for env := e; env != nil; env = env.Outer {
		if val, ok := env.Bindings[name]; ok {
			return val, true
		}
	}
	return nil, false
}

// GetLocal returns a binding from this environment only (it does not walk outers).
func (e *Environment) GetLocal(name string) (Object, bool) {
	val, ok := e.Bindings[name]
	return val, ok
}

// Define adds or replaces a binding in this environment and returns the value.
func (e *Environment) Define(name string, val Object) Object {
	e.Bindings[name] = val
	slog.Debug("binding value",
		slog.String("name", name),
		slog.Any("type", val.Type()))
	return val
}

// Assign updates the nearest existing binding for name.
func (e *Environment) Assign(name string, val Object) (Object, error) {
	for env := e; env != nil; env = env.Outer {
		if _, ok := env.Bindings[name]; ok {
			env.Bindings[name] = val
			return val, nil
		}
	}
	return nil, fmt.Errorf("unbound variable %s", name)
}
