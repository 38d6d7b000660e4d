package batch

import "sync/atomic"

// Allocator hands out sequential sample identifiers. Concurrent callers
// receive distinct values and, once every caller is done, the values issued
// form the contiguous range [start, start+n).
type Allocator struct {
	next atomic.Int64
}

// NewAllocator returns an Allocator whose first identifier is start.
func NewAllocator(start int) *Allocator {
	a := &Allocator{}
	a.next.Store(int64(start))
	return a
}

// Next returns the next identifier.
func (a *Allocator) Next() int {
	return int(a.next.Add(1) - 1)
}
