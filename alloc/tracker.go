// Package alloc tracks live device-memory allocations against the
// hardware-reported ceiling.
//
// Vulkan devices advertise maxMemoryAllocationCount, the number of
// simultaneous vkAllocateMemory allocations the implementation supports.
// Exceeding it is undefined behavior at the driver level, so the renderer
// gates every allocation through a Tracker. The Tracker performs no device
// work itself; it only issues and retires IDs.
package alloc

import (
	"errors"
	"fmt"
)

// ErrTooManyAllocations is returned by Allocate when issuing another ID
// would exceed the device's maximum allocation count. It is recoverable
// only by freeing existing allocations first.
var ErrTooManyAllocations = errors.New("alloc: the maximum number of device allocations was reached")

// ID identifies one live device-memory allocation. IDs are never reused
// within the lifetime of a Tracker.
type ID uint64

// Tracker gates device-memory allocations against a fixed ceiling.
// It is not safe for concurrent use; the renderer drives it from a single
// thread.
type Tracker struct {
	max  int
	live map[ID]struct{}
	next ID
}

// New creates a Tracker with the given allocation ceiling, typically the
// device's maxMemoryAllocationCount limit.
func New(max int) *Tracker {
	return &Tracker{
		max:  max,
		live: make(map[ID]struct{}),
	}
}

// Allocate issues a new ID, or returns ErrTooManyAllocations if the
// number of live IDs has reached the ceiling. On failure the live count
// is unchanged.
func (t *Tracker) Allocate() (ID, error) {
	if len(t.live) >= t.max {
		return 0, fmt.Errorf("%w (%d)", ErrTooManyAllocations, t.max)
	}
	t.next++
	id := t.next
	t.live[id] = struct{}{}
	return id, nil
}

// Free retires a live ID. Freeing an unknown or already-freed ID is a
// programming error and panics: the caller's resource bookkeeping is
// corrupt and continuing risks double-freeing device memory.
func (t *Tracker) Free(id ID) {
	if _, ok := t.live[id]; !ok {
		panic(fmt.Sprintf("alloc: Free of unknown allocation ID %d", id))
	}
	delete(t.live, id)
}

// Live reports the number of outstanding IDs.
func (t *Tracker) Live() int { return len(t.live) }

// Max reports the allocation ceiling.
func (t *Tracker) Max() int { return t.max }
