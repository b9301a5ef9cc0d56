package object

import (
	"fmt"
	"log/slog"
)

// ForeignType describes one native record type exposed to scripts. The
// behaviors are resolved once, at registration time.
type ForeignType struct {
	ID     int
	Name   string
	Free   func(payload any)
	Equal  func(a, b any) bool
	String func(payload any) string
}

// ForeignBehavior is what a native type supplies when it registers.
type ForeignBehavior struct {
	Free   func(payload any)
	Equal  func(a, b any) bool
	String func(payload any) string
}

// Registry hands out stable type ids to foreign types.
type Registry struct {
	types  []*ForeignType
	byName map[string]*ForeignType
}

func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]*ForeignType)}
}

// Register adds a foreign type under name. Registering the same name twice
// is an error so type tags stay unique.
func (r *Registry) Register(name string, b ForeignBehavior) (*ForeignType, error) {
	if _, exists := r.byName[name]; exists {
		return nil, fmt.Errorf("foreign type %q already registered", name)
	}
	t := &ForeignType{
		ID:     len(r.types) + 1,
		Name:   name,
		Free:   b.Free,
		Equal:  b.Equal,
		String: b.String,
	}
	r.types = append(r.types, t)
	r.byName[name] = t
	slog.Debug("registered foreign type",
		slog.String("name", name),
		slog.Int("id", t.ID))
	return t, nil
}

func (r *Registry) Lookup(name string) (*ForeignType, bool) {
	t, ok := r.byName[name]
	return t, ok
}

// IsForeign reports whether obj is a handle tagged with t.
func IsForeign(obj Object, t *ForeignType) bool {
	fv, ok := obj.(*ForeignValue)
	return ok && fv.Tag == t
}

// ForeignEqual compares two foreign values through their type's Equal
// behavior. Values of different types are never equal.
func ForeignEqual(a, b *ForeignValue) bool {
	if a.Tag != b.Tag {
		return false
	}
	if a.Tag.Equal != nil {
		return a.Tag.Equal(a.Payload, b.Payload)
	}
	return a.Payload == b.Payload
}
