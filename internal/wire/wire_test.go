package wire

import (
	"bytes"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/bnema/inputhook/event"
	"github.com/bnema/inputhook/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"
)

func TestCodecPayloads(t *testing.T) {
	now := time.Unix(1700000000, 123456789)
	tests := []struct {
		name string
		ev   event.Event
	}{
		{"lifecycle", event.NewHookEnabled(0)},
		{"key", event.NewKeyPressed(event.KeyA, 30, state.Shift)},
		{"typed", event.NewKeyTyped(event.KeyA, 30, 'Å', state.Shift)},
		{"unknown key", event.NewKeyReleased(event.Unknown(240), 240, 0)},
		{"click", event.NewMouseClicked(event.Right, 10.5, -20, 2, state.Button2)},
		{"motion", event.NewMouseMoved(-1920, 1080.25, 0)},
		{"wheel", event.NewMouseWheel(1, 2, event.ScrollLeft, -1.5, state.Ctrl)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.ev.Time = now
			got, err := Unmarshal(Marshal(tt.ev))
			require.NoError(t, err)

			assert.Equal(t, tt.ev.Type, got.Type)
			assert.True(t, tt.ev.Time.Equal(got.Time))
			assert.Equal(t, tt.ev.Mask, got.Mask)
			assert.Equal(t, tt.ev.Keyboard, got.Keyboard)
			assert.Equal(t, tt.ev.Mouse, got.Mouse)
			assert.Equal(t, tt.ev.Wheel, got.Wheel)
		})
	}
}

func TestMotionHasNoButton(t *testing.T) {
	got, err := Unmarshal(Marshal(event.NewMouseMoved(1, 2, 0)))
	require.NoError(t, err)
	require.NotNil(t, got.Mouse)
	assert.Nil(t, got.Mouse.Button)
}

func TestUnmarshalSkipsUnknownFields(t *testing.T) {
	b := Marshal(event.NewKeyPressed(event.KeyB, 48, 0))
	b = protowire.AppendTag(b, 99, protowire.BytesType)
	b = protowire.AppendBytes(b, []byte("future"))
	b = protowire.AppendTag(b, 98, protowire.Fixed32Type)
	b = protowire.AppendFixed32(b, 7)

	got, err := Unmarshal(b)
	require.NoError(t, err)
	assert.Equal(t, event.KeyB, got.Keyboard.Key)
}

func TestUnmarshalErrors(t *testing.T) {
	b := Marshal(event.NewKeyPressed(event.KeyB, 48, 0))
	_, err := Unmarshal(b[:len(b)-1])
	assert.Error(t, err)

	bad := protowire.AppendTag(nil, fieldMouse, protowire.VarintType)
	bad = protowire.AppendVarint(bad, 1)
	_, err = Unmarshal(bad)
	assert.ErrorIs(t, err, errBadWireType)
}

func TestFrames(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFrame(&buf, []byte("abc")))
	require.NoError(t, WriteFrame(&buf, nil))
	assert.Equal(t, []byte{0, 0, 0, 3, 'a', 'b', 'c', 0, 0, 0, 0}, buf.Bytes())

	p, err := ReadFrame(&buf)
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), p)
	p, err = ReadFrame(&buf)
	require.NoError(t, err)
	assert.Empty(t, p)
	_, err = ReadFrame(&buf)
	assert.Equal(t, io.EOF, err)
}

func TestFrameLimits(t *testing.T) {
	assert.ErrorIs(t, WriteFrame(io.Discard, make([]byte, MaxFrameSize+1)), ErrFrameTooLarge)

	_, err := ReadFrame(bytes.NewReader([]byte{0xff, 0xff, 0xff, 0xff}))
	assert.ErrorIs(t, err, ErrFrameTooLarge)

	_, err = ReadFrame(bytes.NewReader([]byte{0, 0, 0, 5, 'x'}))
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestEncoderDecoder(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	evs := []event.Event{
		event.NewKeyPressed(event.KeyA, 30, 0),
		event.NewMouseDragged(5, 6, state.Button1),
		event.NewHookDisabled(0),
	}
	for _, ev := range evs {
		require.NoError(t, enc.Encode(ev))
	}

	dec := NewDecoder(&buf)
	for _, want := range evs {
		got, err := dec.Decode()
		require.NoError(t, err)
		assert.Equal(t, want.Type, got.Type)
	}
	_, err := dec.Decode()
	assert.Equal(t, io.EOF, err)
}

type syncBuffer struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.Write(p)
}

func (s *syncBuffer) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.Len()
}

func TestBufferedWriterFlushesAfterDelay(t *testing.T) {
	out := &syncBuffer{}
	bw := NewBufferedWriter(out, 50*time.Millisecond, 1024)
	defer bw.Close()

	_, err := bw.Write([]byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, 0, out.Len())
	assert.Eventually(t, func() bool { return out.Len() == 5 }, time.Second, time.Millisecond)
}

func TestBufferedWriterFlushesWhenFull(t *testing.T) {
	out := &syncBuffer{}
	bw := NewBufferedWriter(out, time.Hour, 4)

	_, err := bw.Write([]byte("abc"))
	require.NoError(t, err)
	_, err = bw.Write([]byte("de"))
	require.NoError(t, err)
	assert.Equal(t, 3, out.Len())

	require.NoError(t, bw.Close())
	assert.Equal(t, 5, out.Len())
}

type failWriter struct{}

func (failWriter) Write([]byte) (int, error) { return 0, errors.New("broken pipe") }

func TestBufferedWriterKeepsError(t *testing.T) {
	bw := NewBufferedWriter(failWriter{}, time.Hour, 16)
	_, err := bw.Write([]byte("x"))
	require.NoError(t, err)
	assert.Error(t, bw.Flush())
	_, err = bw.Write([]byte("y"))
	assert.Error(t, err)
	assert.Error(t, bw.Close())
}
