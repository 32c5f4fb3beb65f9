// Package platform selects the input backend for the running OS and offers
// package-level helpers on a shared default backend.
package platform

import (
	"fmt"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/bnema/inputhook/channel"
	"github.com/bnema/inputhook/display"
	"github.com/bnema/inputhook/event"
	"github.com/bnema/inputhook/hook"
	"github.com/bnema/inputhook/internal/translate"
	"github.com/bnema/inputhook/platform/virtual"
	"github.com/bnema/inputhook/state"
)

// Backend names accepted by Config.Backend.
const (
	BackendAuto    = "auto"
	BackendEvdev   = "evdev"
	BackendWindows = "windows"
	BackendDarwin  = "darwin"
	BackendVirtual = "virtual"
)

// Backend is everything an adapter provides.
type Backend interface {
	hook.Adapter
	hook.Simulator
	display.Provider
}

// Config chooses and tunes a backend. The zero value picks the native
// backend with default settings.
type Config struct {
	Backend string

	// Mask is shared with hooks built on the backend. Nil means the
	// process-wide mask.
	Mask *state.Mask

	// NoClickSynthesis disables MouseClicked events.
	NoClickSynthesis bool
	// DoubleClick is the multi-click interval. Zero uses the system or
	// default value.
	DoubleClick time.Duration

	// Linux only.
	Devices         []string
	Exclude         []string
	GrabPassthrough bool
}

func (c Config) translateOptions() []translate.Option {
	opts := []translate.Option{translate.WithClickSynthesis(!c.NoClickSynthesis)}
	if c.DoubleClick > 0 {
		opts = append(opts, translate.WithDoubleClick(c.DoubleClick))
	}
	return opts
}

func (c Config) mask() *state.Mask {
	if c.Mask != nil {
		return c.Mask
	}
	return state.Default()
}

// New builds the backend named by cfg.Backend.
func New(cfg Config) (Backend, error) {
	name := strings.ToLower(strings.TrimSpace(cfg.Backend))
	switch name {
	case "", BackendAuto, runtimeBackend():
		return newNative(cfg)
	case BackendVirtual:
		return virtual.New(virtual.WithTranslator(cfg.translateOptions()...)), nil
	case BackendEvdev, BackendWindows, BackendDarwin:
		return nil, hook.NotSupported(fmt.Sprintf("backend %q is not available on %s", name, runtime.GOOS))
	}
	return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
}

func runtimeBackend() string {
	switch runtime.GOOS {
	case "linux":
		return BackendEvdev
	case "windows":
		return BackendWindows
	case "darwin":
		return BackendDarwin
	}
	return ""
}

var (
	defaultMu      sync.Mutex
	defaultBackend Backend
)

// Default returns the shared native backend, creating it on first use.
func Default() (Backend, error) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultBackend != nil {
		return defaultBackend, nil
	}
	b, err := New(Config{GrabPassthrough: true})
	if err != nil {
		return nil, err
	}
	defaultBackend = b
	return b, nil
}

// SetDefault replaces the shared backend, e.g. with one built from
// configuration.
func SetDefault(b Backend) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultBackend = b
}

func withDefault(fn func(Backend) error) error {
	b, err := Default()
	if err != nil {
		return err
	}
	return fn(b)
}

// Listen hooks the default backend into a bounded channel.
func Listen(capacity int) (*channel.Receiver, *channel.Handle, error) {
	b, err := Default()
	if err != nil {
		return nil, nil, err
	}
	return channel.Listen(b, capacity)
}

// Grab hooks the default backend in grab mode; see channel.Grab.
func Grab(capacity int, filter channel.Filter) (*channel.Receiver, *channel.Handle, error) {
	b, err := Default()
	if err != nil {
		return nil, nil, err
	}
	return channel.Grab(b, capacity, filter)
}

func Simulate(ev event.Event) error {
	return withDefault(func(b Backend) error { return b.Simulate(ev) })
}

func KeyPress(k event.Key) error {
	return withDefault(func(b Backend) error { return b.KeyPress(k) })
}

func KeyRelease(k event.Key) error {
	return withDefault(func(b Backend) error { return b.KeyRelease(k) })
}

// KeyTap presses and releases k.
func KeyTap(k event.Key) error {
	return withDefault(func(b Backend) error { return Tap(b, k) })
}

func MousePress(btn event.Button) error {
	return withDefault(func(b Backend) error { return b.MousePress(btn) })
}

func MouseRelease(btn event.Button) error {
	return withDefault(func(b Backend) error { return b.MouseRelease(btn) })
}

// MouseClick presses and releases btn.
func MouseClick(btn event.Button) error {
	return withDefault(func(b Backend) error { return Click(b, btn) })
}

func MouseMove(x, y float64) error {
	return withDefault(func(b Backend) error { return b.MouseMove(x, y) })
}

func Scroll(dir event.ScrollDirection, delta float64) error {
	return withDefault(func(b Backend) error { return b.Scroll(dir, delta) })
}

// Tap presses and releases k on s.
func Tap(s hook.Simulator, k event.Key) error {
	if err := s.KeyPress(k); err != nil {
		return err
	}
	return s.KeyRelease(k)
}

// Click presses and releases btn on s.
func Click(s hook.Simulator, btn event.Button) error {
	if err := s.MousePress(btn); err != nil {
		return err
	}
	return s.MouseRelease(btn)
}

func Displays() ([]display.Info, error) {
	b, err := Default()
	if err != nil {
		return nil, err
	}
	return b.Displays()
}

func PrimaryDisplay() (display.Info, error) {
	b, err := Default()
	if err != nil {
		return display.Info{}, err
	}
	return display.Primary(b)
}

// DisplayAt returns the display containing the point, or nil.
func DisplayAt(x, y float64) (*display.Info, error) {
	b, err := Default()
	if err != nil {
		return nil, err
	}
	return display.At(b, x, y)
}

func SystemSettings() (display.SystemSettings, error) {
	b, err := Default()
	if err != nil {
		return display.SystemSettings{}, err
	}
	return b.SystemSettings()
}
