// Package handle manages stable integer identities backed by a slot table.
//
// A Table hands out 1-based handles. Released handles are queued on a
// free-list and reused front first, so identities stay small and dense.
package handle

import (
	"errors"
	"math"

	"github.com/gammazero/deque"
)

// ErrOverflow is returned when the table cannot represent another handle.
var ErrOverflow = errors.New("handle space exhausted")

// Handle is an opaque external identity. The zero value is never allocated.
type Handle uint32

// Nil is the invalid handle.
const Nil Handle = 0

type slot[T any] struct {
	value T
	live  bool
}

// Table maps handles to values of type T.
type Table[T any] struct {
	slots []slot[T]
	free  deque.Deque[Handle]
	limit uint32
}

// NewTable creates a table holding at most limit slots.
// A zero limit means the full uint32 range.
func NewTable[T any](limit uint32) *Table[T] {
	if limit == 0 {
		limit = math.MaxUint32
	}
	return &Table[T]{limit: limit}
}

// Allocate stores v under a new or recycled handle.
// On ErrOverflow the table is left untouched.
func (t *Table[T]) Allocate(v T) (Handle, error) {
	if t.free.Len() > 0 {
		h := t.free.PopFront()
		t.slots[h-1] = slot[T]{value: v, live: true}
		return h, nil
	}
	if uint64(len(t.slots)) >= uint64(t.limit) {
		return Nil, ErrOverflow
	}
	t.slots = append(t.slots, slot[T]{value: v, live: true})
	return Handle(len(t.slots)), nil
}

// Release frees h. Releasing the last slot shrinks the table instead of
// queueing the handle. Once every slot is free the table drops its storage.
func (t *Table[T]) Release(h Handle) {
	if !t.Contains(h) {
		return
	}
	i := int(h) - 1
	t.slots[i] = slot[T]{}
	if i == len(t.slots)-1 {
		t.slots = t.slots[:i]
	} else {
		t.free.PushBack(h)
	}
	if t.free.Len() == len(t.slots) {
		t.Reset()
	}
}

// Reset drops every handle and releases the backing storage.
func (t *Table[T]) Reset() {
	t.slots = nil
	t.free.Clear()
}

// Contains reports whether h is a live handle.
func (t *Table[T]) Contains(h Handle) bool {
	return h != Nil && int(h) <= len(t.slots) && t.slots[h-1].live
}

// Get returns the value stored for h. h must be live.
func (t *Table[T]) Get(h Handle) T {
	return t.slots[h-1].value
}

// Lookup returns the value for h and whether h is live.
func (t *Table[T]) Lookup(h Handle) (T, bool) {
	if !t.Contains(h) {
		var zero T
		return zero, false
	}
	return t.slots[h-1].value, true
}

// Set overwrites the value stored for h. h must be live.
func (t *Table[T]) Set(h Handle, v T) {
	t.slots[h-1].value = v
}

// Ptr returns a pointer to the value stored for h. The pointer is
// invalidated by the next Allocate.
func (t *Table[T]) Ptr(h Handle) *T {
	return &t.slots[h-1].value
}

// Len returns the number of slots, free ones included.
func (t *Table[T]) Len() int {
	return len(t.slots)
}

// Free returns the number of queued free handles.
func (t *Table[T]) Free() int {
	return t.free.Len()
}

// Live returns the number of live handles.
func (t *Table[T]) Live() int {
	return len(t.slots) - t.free.Len()
}

// Each calls fn for every live handle in slot order.
func (t *Table[T]) Each(fn func(h Handle, v *T)) {
	for i := range t.slots {
		if t.slots[i].live {
			fn(Handle(i+1), &t.slots[i].value)
		}
	}
}
