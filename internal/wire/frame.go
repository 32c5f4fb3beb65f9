package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/bnema/inputhook/event"
)

// MaxFrameSize bounds a single frame. Events are a few dozen bytes, so
// anything larger means the stream is out of sync.
const MaxFrameSize = 64 << 10

var ErrFrameTooLarge = errors.New("frame exceeds maximum size")

// WriteFrame writes payload with its length prefix. If w can flush, it is
// flushed after the payload.
func WriteFrame(w io.Writer, payload []byte) error {
	if len(payload) > MaxFrameSize {
		return ErrFrameTooLarge
	}

	var lengthBuf [4]byte
	binary.BigEndian.PutUint32(lengthBuf[:], uint32(len(payload)))
	if _, err := w.Write(lengthBuf[:]); err != nil {
		return fmt.Errorf("failed to write length: %w", err)
	}
	if _, err := w.Write(payload); err != nil {
		return fmt.Errorf("failed to write data: %w", err)
	}

	if flusher, ok := w.(interface{ Flush() error }); ok {
		_ = flusher.Flush()
	}
	return nil
}

// ReadFrame reads one length-prefixed payload. A clean end of stream
// before the prefix returns io.EOF.
func ReadFrame(r io.Reader) ([]byte, error) {
	var length uint32
	if err := binary.Read(r, binary.BigEndian, &length); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("failed to read message length: %w", err)
	}
	if length > MaxFrameSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, length)
	}

	data := make([]byte, length)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, fmt.Errorf("failed to read message data: %w", err)
	}
	return data, nil
}

// Encoder writes framed events. It is safe for concurrent use.
type Encoder struct {
	mu sync.Mutex
	w  io.Writer
}

func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

func (e *Encoder) Encode(ev event.Event) error {
	data := Marshal(ev)
	e.mu.Lock()
	defer e.mu.Unlock()
	return WriteFrame(e.w, data)
}

// Decoder reads framed events.
type Decoder struct {
	r io.Reader
}

func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: r}
}

// Decode returns the next event, or io.EOF at a clean end of stream.
func (d *Decoder) Decode() (event.Event, error) {
	data, err := ReadFrame(d.r)
	if err != nil {
		return event.Event{}, err
	}
	return Unmarshal(data)
}
