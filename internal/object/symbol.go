package object

import (
	"sync"
)

type Symbol struct {
	Name string
	id   uint64
}

func (s *Symbol) Type() ObjectType { return SYMBOL_OBJ }
func (s *Symbol) Inspect() string  { return s.Name }

var (
	symbolMu    sync.Mutex
	symbolTable = map[string]*Symbol{}
	nextSymbol  uint64
)

// InternSymbol returns the unique symbol for name, so symbols compare by
// pointer.
func InternSymbol(name string) *Symbol {
	symbolMu.Lock()
	defer symbolMu.Unlock()

	if sym, ok := symbolTable[name]; ok {
		return sym
	}
	nextSymbol++
	sym := &Symbol{Name: name, id: nextSymbol}
	symbolTable[name] = sym
	return sym
}
