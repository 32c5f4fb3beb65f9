//go:build linux

// Package evdev hooks Linux input through /dev/input event devices and
// simulates input through uinput.
package evdev

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bnema/inputhook/display"
	"github.com/bnema/inputhook/event"
	"github.com/bnema/inputhook/hook"
	"github.com/bnema/inputhook/internal/desktop"
	"github.com/bnema/inputhook/internal/logger"
	"github.com/bnema/inputhook/internal/translate"
	"github.com/bnema/inputhook/state"
	evdev "github.com/gvalkov/golang-evdev"
	"golang.org/x/sync/errgroup"
)

// pollInterval is how often the dispatch loop rechecks the running flag.
const pollInterval = 100 * time.Millisecond

// Config selects and handles devices.
type Config struct {
	// Devices are explicit event device paths. Empty means every suitable
	// device.
	Devices []string
	// Exclude lists device name fragments to skip. Nil means DefaultExclude.
	Exclude []string
	// GrabPassthrough re-injects events a grab handler lets through.
	GrabPassthrough bool
	// Mask defaults to the process-wide mask.
	Mask      *state.Mask
	Translate []translate.Option
}

// DefaultConfig hooks every suitable device and passes grabbed events through.
func DefaultConfig() Config {
	return Config{GrabPassthrough: true}
}

type rawEvent struct {
	dev int
	ev  evdev.InputEvent
}

// Adapter implements hook.Adapter, hook.Simulator and display.Provider.
type Adapter struct {
	cfg     Config
	mask    *state.Mask
	tr      *translate.Translator
	desktop *desktop.Detector

	mu      sync.Mutex
	stop    chan struct{}
	sim     *Simulator
	simErr  error
	simOnce sync.Once
}

func New(cfg Config) *Adapter {
	mask := cfg.Mask
	if mask == nil {
		mask = state.Default()
	}
	if cfg.Exclude == nil {
		cfg.Exclude = DefaultExclude
	}
	return &Adapter{
		cfg:     cfg,
		mask:    mask,
		tr:      translate.New(mask, cfg.Translate...),
		desktop: desktop.New(),
	}
}

func (a *Adapter) Mask() *state.Mask {
	return a.mask
}

// simulator creates the uinput devices on first use.
func (a *Adapter) simulator() (*Simulator, error) {
	a.simOnce.Do(func() {
		a.sim, a.simErr = NewSimulator()
		if a.simErr == nil {
			x, y := a.tr.Position()
			a.sim.Warp(x, y)
		}
	})
	return a.sim, a.simErr
}

func (a *Adapter) exclude() []string {
	return append([]string{VirtualDeviceName}, a.cfg.Exclude...)
}

func (a *Adapter) RunHook(running *atomic.Bool, h hook.EventHandler) error {
	devices, err := openDevices(a.cfg.Devices, a.exclude())
	if err != nil {
		return err
	}
	return a.run(running, devices, h.HandleEvent)
}

func (a *Adapter) RunGrabHook(running *atomic.Bool, h hook.GrabHandler) error {
	var sim *Simulator
	if a.cfg.GrabPassthrough {
		// Created before enumeration so its own devices are excluded by name.
		s, err := a.simulator()
		if err != nil {
			return hook.StartFailed("grab pass-through needs uinput", err)
		}
		sim = s
	}

	devices, err := openDevices(a.cfg.Devices, a.exclude())
	if err != nil {
		return err
	}

	var grabbed []*evdev.InputDevice
	for _, dev := range devices {
		if err := dev.Grab(); err != nil {
			logger.Warnf("evdev: cannot grab %s (%s): %v", dev.Fn, dev.Name, err)
			dev.File.Close()
			continue
		}
		grabbed = append(grabbed, dev)
	}
	if len(grabbed) == 0 {
		return hook.PermissionDenied("no input device could be grabbed", nil)
	}
	// Grabs end when run closes the devices.
	return a.run(running, grabbed, func(ev event.Event) {
		out := h.HandleGrab(ev)
		if out == nil || sim == nil || ev.Type.IsLifecycle() || ev.Type == event.MouseClicked {
			return
		}
		if err := sim.Simulate(*out); err != nil {
			logger.Debugf("evdev: pass-through of %s failed: %v", out.Type, err)
		}
	})
}

func (a *Adapter) run(running *atomic.Bool, devices []*evdev.InputDevice, deliver func(event.Event)) error {
	stop := make(chan struct{})
	a.mu.Lock()
	a.stop = stop
	a.mu.Unlock()

	raw := make(chan rawEvent, 256)
	quit := make(chan struct{})
	var g errgroup.Group
	for i, dev := range devices {
		g.Go(func() error {
			return readDevice(i, dev, raw, quit)
		})
	}
	readersDone := make(chan error, 1)
	go func() { readersDone <- g.Wait() }()

	frames := make([]*frame, len(devices))
	for i := range frames {
		frames[i] = newFrame(a.tr)
	}

	a.tr.Reset()
	deliver(a.tr.HookEnabled())
	logger.Debugf("evdev: reading %d devices", len(devices))

	poll := time.NewTicker(pollInterval)
	defer poll.Stop()

	var runErr error
	readersExited := false
loop:
	for running.Load() {
		select {
		case r := <-raw:
			for _, ev := range frames[r.dev].feed(r.ev) {
				deliver(ev)
			}
		case <-stop:
			break loop
		case err := <-readersDone:
			readersExited = true
			if err == nil {
				err = errors.New("all input devices closed")
			}
			runErr = hook.Platform("evdev readers stopped", err)
			break loop
		case <-poll.C:
		}
	}

	close(quit)
	closeDevices(devices)
	if !readersExited {
		<-readersDone
	}

	deliver(a.tr.HookDisabled())
	return runErr
}

// readDevice forwards events until the device is closed. A device that
// disappears ends only its own reader.
func readDevice(i int, dev *evdev.InputDevice, raw chan<- rawEvent, quit <-chan struct{}) error {
	for {
		events, err := dev.Read()
		if err != nil {
			select {
			case <-quit:
			default:
				logger.Warnf("evdev: %s (%s) stopped: %v", dev.Fn, dev.Name, err)
			}
			return nil
		}
		for _, ev := range events {
			select {
			case raw <- rawEvent{dev: i, ev: ev}:
			case <-quit:
				return nil
			}
		}
	}
}

func (a *Adapter) StopHook() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.stop != nil {
		close(a.stop)
		a.stop = nil
	}
	return nil
}

func (a *Adapter) Simulate(ev event.Event) error {
	return hook.SimulateEvent(a, ev)
}

func (a *Adapter) KeyPress(k event.Key) error {
	return a.withSim(func(s *Simulator) error { return s.KeyPress(k) })
}

func (a *Adapter) KeyRelease(k event.Key) error {
	return a.withSim(func(s *Simulator) error { return s.KeyRelease(k) })
}

func (a *Adapter) MouseMove(x, y float64) error {
	return a.withSim(func(s *Simulator) error { return s.MouseMove(x, y) })
}

func (a *Adapter) MousePress(b event.Button) error {
	return a.withSim(func(s *Simulator) error { return s.MousePress(b) })
}

func (a *Adapter) MouseRelease(b event.Button) error {
	return a.withSim(func(s *Simulator) error { return s.MouseRelease(b) })
}

func (a *Adapter) Scroll(dir event.ScrollDirection, delta float64) error {
	return a.withSim(func(s *Simulator) error { return s.Scroll(dir, delta) })
}

func (a *Adapter) withSim(fn func(*Simulator) error) error {
	s, err := a.simulator()
	if err != nil {
		return hook.SimulateFailed("uinput unavailable", err)
	}
	return fn(s)
}

func (a *Adapter) Displays() ([]display.Info, error) {
	return a.desktop.Displays()
}

func (a *Adapter) SystemSettings() (display.SystemSettings, error) {
	return a.desktop.SystemSettings()
}

// Close releases the uinput devices, if any were created.
func (a *Adapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.sim == nil {
		return nil
	}
	if err := a.sim.Close(); err != nil {
		return fmt.Errorf("close uinput devices: %w", err)
	}
	return nil
}
