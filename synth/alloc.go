package synth

import (
	"errors"
	"fmt"
	"sync"
)

// ErrOutOfMemory is returned when an allocator cannot serve a request.
var ErrOutOfMemory = errors.New("out of real-time memory")

// Allocator hands out the memory of synth instances and their units. All the
// allocations happen during construction and all the releases during Free,
// never in Run.
type Allocator interface {
	Allocate(size int) error
	Free(size int)
}

// HeapAllocator leaves the memory management to the Go runtime and never
// fails.
type HeapAllocator struct{}

func (HeapAllocator) Allocate(int) error { return nil }
func (HeapAllocator) Free(int)           {}

// Pool is a bounded memory budget, modelling the real-time memory pool of the
// engine. It counts the outstanding allocations, so it can be used to check
// that everything allocated is released again.
type Pool struct {
	mu          sync.Mutex
	capacity    int
	inUse       int
	allocations int
}

// NewPool returns a pool of capacity bytes. Zero capacity means unlimited.
func NewPool(capacity int) *Pool {
	return &Pool{capacity: capacity}
}

func (p *Pool) Allocate(size int) error {
	if size < 0 {
		return fmt.Errorf("invalid allocation size %d", size)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.capacity > 0 && p.inUse+size > p.capacity {
		return fmt.Errorf("%w: %d bytes requested, %d of %d in use", ErrOutOfMemory, size, p.inUse, p.capacity)
	}
	p.inUse += size
	p.allocations++
	return nil
}

// Free returns size bytes to the pool. Releasing more than was allocated is a
// programming error and panics.
func (p *Pool) Free(size int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.allocations == 0 || size > p.inUse {
		panic("synth: pool release without a matching allocation")
	}
	p.inUse -= size
	p.allocations--
}

// InUse returns the number of bytes currently allocated.
func (p *Pool) InUse() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.inUse
}

// Allocations returns the number of outstanding allocations.
func (p *Pool) Allocations() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.allocations
}

// Capacity returns the size of the pool, 0 meaning unlimited.
func (p *Pool) Capacity() int {
	return p.capacity
}
