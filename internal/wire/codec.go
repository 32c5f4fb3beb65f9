// Package wire encodes events in the protobuf wire format and frames them
// with a 4-byte big-endian length prefix for streaming.
//
// The message layout is:
//
//	Event    { 1: type varint, 2: unix nanos varint, 3: mask varint,
//	           4: Keyboard, 5: Mouse, 6: Wheel }
//	Keyboard { 1: key varint, 2: raw code varint, 3: char varint }
//	Mouse    { 1: button varint (0 = none), 2: x double, 3: y double, 4: clicks varint }
//	Wheel    { 1: x double, 2: y double, 3: direction varint, 4: delta double }
package wire

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/bnema/inputhook/event"
	"google.golang.org/protobuf/encoding/protowire"
)

const (
	fieldType     protowire.Number = 1
	fieldTime     protowire.Number = 2
	fieldMask     protowire.Number = 3
	fieldKeyboard protowire.Number = 4
	fieldMouse    protowire.Number = 5
	fieldWheel    protowire.Number = 6
)

var errBadWireType = errors.New("unexpected wire type")

// Marshal encodes ev.
func Marshal(ev event.Event) []byte {
	b := make([]byte, 0, 48)
	b = appendVarint(b, fieldType, uint64(ev.Type))
	if !ev.Time.IsZero() {
		b = appendVarint(b, fieldTime, uint64(ev.Time.UnixNano()))
	}
	b = appendVarint(b, fieldMask, uint64(ev.Mask))

	if kb := ev.Keyboard; kb != nil {
		var m []byte
		m = appendVarint(m, 1, uint64(kb.Key))
		m = appendVarint(m, 2, uint64(kb.RawCode))
		if kb.Char != 0 {
			m = appendVarint(m, 3, uint64(kb.Char))
		}
		b = appendMessage(b, fieldKeyboard, m)
	}
	if ms := ev.Mouse; ms != nil {
		var m []byte
		if ms.Button != nil {
			m = appendVarint(m, 1, uint64(*ms.Button))
		}
		m = appendDouble(m, 2, ms.X)
		m = appendDouble(m, 3, ms.Y)
		m = appendVarint(m, 4, uint64(ms.Clicks))
		b = appendMessage(b, fieldMouse, m)
	}
	if w := ev.Wheel; w != nil {
		var m []byte
		m = appendDouble(m, 1, w.X)
		m = appendDouble(m, 2, w.Y)
		m = appendVarint(m, 3, uint64(w.Direction))
		m = appendDouble(m, 4, w.Delta)
		b = appendMessage(b, fieldWheel, m)
	}
	return b
}

// Unmarshal decodes an event written by Marshal. Unknown fields are
// skipped so newer writers stay readable.
func Unmarshal(b []byte) (event.Event, error) {
	var ev event.Event
	err := walk(b, func(num protowire.Number, typ protowire.Type, v uint64, sub []byte) error {
		switch num {
		case fieldType:
			ev.Type = event.Type(v)
		case fieldTime:
			ev.Time = time.Unix(0, int64(v))
		case fieldMask:
			ev.Mask = uint32(v)
		case fieldKeyboard, fieldMouse, fieldWheel:
			if typ != protowire.BytesType {
				return fmt.Errorf("field %d: %w", num, errBadWireType)
			}
		}

		switch num {
		case fieldKeyboard:
			kb, err := unmarshalKeyboard(sub)
			if err != nil {
				return err
			}
			ev.Keyboard = kb
		case fieldMouse:
			ms, err := unmarshalMouse(sub)
			if err != nil {
				return err
			}
			ev.Mouse = ms
		case fieldWheel:
			w, err := unmarshalWheel(sub)
			if err != nil {
				return err
			}
			ev.Wheel = w
		}
		return nil
	})
	if err != nil {
		return event.Event{}, fmt.Errorf("failed to decode event: %w", err)
	}
	return ev, nil
}

func unmarshalKeyboard(b []byte) (*event.KeyboardData, error) {
	kb := &event.KeyboardData{}
	return kb, walk(b, func(num protowire.Number, _ protowire.Type, v uint64, _ []byte) error {
		switch num {
		case 1:
			kb.Key = event.Key(v)
		case 2:
			kb.RawCode = uint32(v)
		case 3:
			kb.Char = rune(v)
		}
		return nil
	})
}

func unmarshalMouse(b []byte) (*event.MouseData, error) {
	ms := &event.MouseData{}
	return ms, walk(b, func(num protowire.Number, _ protowire.Type, v uint64, _ []byte) error {
		switch num {
		case 1:
			btn := event.Button(v)
			ms.Button = &btn
		case 2:
			ms.X = math.Float64frombits(v)
		case 3:
			ms.Y = math.Float64frombits(v)
		case 4:
			ms.Clicks = uint8(v)
		}
		return nil
	})
}

func unmarshalWheel(b []byte) (*event.WheelData, error) {
	w := &event.WheelData{}
	return w, walk(b, func(num protowire.Number, _ protowire.Type, v uint64, _ []byte) error {
		switch num {
		case 1:
			w.X = math.Float64frombits(v)
		case 2:
			w.Y = math.Float64frombits(v)
		case 3:
			w.Direction = event.ScrollDirection(v)
		case 4:
			w.Delta = math.Float64frombits(v)
		}
		return nil
	})
}

// walk calls fn for every field in b. Scalars arrive in v (fixed64 fields
// as raw bits), length-delimited fields in sub.
func walk(b []byte, fn func(num protowire.Number, typ protowire.Type, v uint64, sub []byte) error) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]

		var v uint64
		var sub []byte
		switch typ {
		case protowire.VarintType:
			v, n = protowire.ConsumeVarint(b)
		case protowire.Fixed64Type:
			v, n = protowire.ConsumeFixed64(b)
		case protowire.BytesType:
			sub, n = protowire.ConsumeBytes(b)
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			b = b[n:]
			continue
		}
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]

		if err := fn(num, typ, v, sub); err != nil {
			return err
		}
	}
	return nil
}

func appendVarint(b []byte, num protowire.Number, v uint64) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendDouble(b []byte, num protowire.Number, v float64) []byte {
	b = protowire.AppendTag(b, num, protowire.Fixed64Type)
	return protowire.AppendFixed64(b, math.Float64bits(v))
}

func appendMessage(b []byte, num protowire.Number, m []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, m)
}
