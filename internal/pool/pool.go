// Package pool implements a slab arena for fixed-size native records.
// Records live in blocks that are allocated grow records at a time and are
// never returned to the runtime while the pool lives. Released records are
// reused in LIFO order.
package pool

import (
	"errors"
	"fmt"
	"log/slog"
)

var (
	ErrDoubleRelease = errors.New("pool: record released twice")
	ErrInvalidRef    = errors.New("pool: reference does not name a record")
)

const DefaultGrow = 256

// Ref names a record by block and slot index, never by address.
type Ref struct {
	Block int
	Index int
}

func (r Ref) String() string {
	return fmt.Sprintf("%d:%d", r.Block, r.Index)
}

// Stats is a snapshot of pool usage.
type Stats struct {
	Blocks       int
	Capacity     int
	InUse        int
	Free         int
	TotalAlloc   uint64
	TotalRelease uint64
}

// Pool is not safe for concurrent use. It is owned by the interpreter
// goroutine, which is also where handle reclamation releases records.
type Pool[T any] struct {
	grow   int
	blocks [][]T
	live   [][]bool
	free   []Ref

	inUse        int
	totalAlloc   uint64
	totalRelease uint64
}

// New creates an empty pool that grows by grow records at a time.
func New[T any](grow int) *Pool[T] {
	if grow <= 0 {
		grow = DefaultGrow
	}
	return &Pool[T]{grow: grow}
}

// Allocate pops a record off the free list, adding a block when the list
// is empty. The record is zeroed.
func (p *Pool[T]) Allocate() (Ref, *T) {
	if len(p.free) == 0 {
		p.addBlock()
	}
	ref := p.free[len(p.free)-1]
	p.free = p.free[:len(p.free)-1]

	p.live[ref.Block][ref.Index] = true
	p.inUse++
	p.totalAlloc++

	rec := &p.blocks[ref.Block][ref.Index]
	var zero T
	*rec = zero
	return ref, rec
}

func (p *Pool[T]) addBlock() {
	block := len(p.blocks)
	p.blocks = append(p.blocks, make([]T, p.grow))
	p.live = append(p.live, make([]bool, p.grow))
	// Pushed in reverse so the lowest index is handed out first.
	for i := p.grow - 1; i >= 0; i-- {
		p.free = append(p.free, Ref{Block: block, Index: i})
	}
	slog.Debug("pool grew",
		slog.Int("blocks", len(p.blocks)),
		slog.Int("capacity", len(p.blocks)*p.grow))
}

func (p *Pool[T]) valid(ref Ref) bool {
	return ref.Block >= 0 && ref.Block < len(p.blocks) &&
		ref.Index >= 0 && ref.Index < p.grow
}

// Get returns the record named by ref, or nil if ref is out of range.
func (p *Pool[T]) Get(ref Ref) *T {
	if !p.valid(ref) {
		return nil
	}
	return &p.blocks[ref.Block][ref.Index]
}

// Release pushes the record back on the free list.
func (p *Pool[T]) Release(ref Ref) error {
	if !p.valid(ref) {
		return fmt.Errorf("release %s: %w", ref, ErrInvalidRef)
	}
	if !p.live[ref.Block][ref.Index] {
		return fmt.Errorf("release %s: %w", ref, ErrDoubleRelease)
	}
	p.live[ref.Block][ref.Index] = false
	p.free = append(p.free, ref)
	p.inUse--
	p.totalRelease++
	return nil
}

// Clear rebuilds the free list from every owned block, forgetting which
// records were handed out. Outstanding refs become dangling; call it only
// when no handle to a record is reachable.
func (p *Pool[T]) Clear() {
	p.free = p.free[:0]
	for b := len(p.blocks) - 1; b >= 0; b-- {
		for i := p.grow - 1; i >= 0; i-- {
			p.live[b][i] = false
			p.free = append(p.free, Ref{Block: b, Index: i})
		}
	}
	p.inUse = 0
	slog.Debug("pool cleared", slog.Int("blocks", len(p.blocks)))
}

func (p *Pool[T]) Stats() Stats {
	return Stats{
		Blocks:       len(p.blocks),
		Capacity:     len(p.blocks) * p.grow,
		InUse:        p.inUse,
		Free:         len(p.free),
		TotalAlloc:   p.totalAlloc,
		TotalRelease: p.totalRelease,
	}
}
