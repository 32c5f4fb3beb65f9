// Package slot holds the single handler that native callbacks reach.
//
// OS hook callbacks on Windows and macOS are plain C function pointers with
// no user data, so the active handler has to live in a package-level slot.
// Only one hook per adapter can own the slot at a time.
package slot

import "sync/atomic"

type Slot[T any] struct {
	p atomic.Pointer[T]
}

// Claim stores v if the slot is empty and reports whether it did.
func (s *Slot[T]) Claim(v T) bool {
	return s.p.CompareAndSwap(nil, &v)
}

// Load returns the current value.
func (s *Slot[T]) Load() (T, bool) {
	p := s.p.Load()
	if p == nil {
		var zero T
		return zero, false
	}
	return *p, true
}

// Release empties the slot.
func (s *Slot[T]) Release() {
	s.p.Store(nil)
}
