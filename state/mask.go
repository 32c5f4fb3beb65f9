// Package state tracks which mouse buttons and keyboard modifiers are held.
//
// A Mask is a single machine word updated only through atomic operations, so
// the platform callback thread and any observer see one total order of
// updates without locking.
package state

import "sync/atomic"

// Modifier bits.
const (
	Shift      uint32 = 1 << 0
	Ctrl       uint32 = 1 << 1
	Alt        uint32 = 1 << 2
	Meta       uint32 = 1 << 3
	CapsLock   uint32 = 1 << 4
	NumLock    uint32 = 1 << 5
	ScrollLock uint32 = 1 << 6
)

// Mouse button bits.
const (
	Button1 uint32 = 1 << 8
	Button2 uint32 = 1 << 9
	Button3 uint32 = 1 << 10
	Button4 uint32 = 1 << 11
	Button5 uint32 = 1 << 12
)

const (
	// Modifiers is the union of all modifier bits.
	Modifiers = Shift | Ctrl | Alt | Meta | CapsLock | NumLock | ScrollLock
	// Buttons is the union of all mouse button bits.
	Buttons = Button1 | Button2 | Button3 | Button4 | Button5
)

// Mask is an atomic bitset of held buttons and modifiers.
// The zero value is an empty mask ready for use.
type Mask struct {
	v atomic.Uint32
}

var global Mask

// Default returns the process-wide mask shared by all adapters unless a
// hook is configured with its own.
func Default() *Mask {
	return &global
}

// New returns an independent mask.
func New() *Mask {
	return &Mask{}
}

// Set ORs bits into the mask.
func (m *Mask) Set(bits uint32) {
	m.v.Or(bits)
}

// Unset clears bits from the mask.
func (m *Mask) Unset(bits uint32) {
	m.v.And(^bits)
}

// Toggle flips bits and returns the new value.
func (m *Mask) Toggle(bits uint32) uint32 {
	for {
		old := m.v.Load()
		next := old ^ bits
		if m.v.CompareAndSwap(old, next) {
			return next
		}
	}
}

// Get returns a snapshot of the mask.
func (m *Mask) Get() uint32 {
	return m.v.Load()
}

// Reset clears every bit.
func (m *Mask) Reset() {
	m.v.Store(0)
}

// Has reports whether all of bits are set.
func (m *Mask) Has(bits uint32) bool {
	return m.v.Load()&bits == bits
}

// IsButtonHeld reports whether any mouse button bit is set.
func (m *Mask) IsButtonHeld() bool {
	return m.v.Load()&Buttons != 0
}

// ButtonMask returns the bit for 1-indexed button n, or 0 when n has no bit.
func ButtonMask(n uint8) uint32 {
	if n < 1 || n > 5 {
		return 0
	}
	return Button1 << (n - 1)
}

func IsShift(mask uint32) bool { return mask&Shift != 0 }
func IsCtrl(mask uint32) bool  { return mask&Ctrl != 0 }
func IsAlt(mask uint32) bool   { return mask&Alt != 0 }
func IsMeta(mask uint32) bool  { return mask&Meta != 0 }
